package domain

// IntersectsBounds reports whether two envelopes overlap or touch.
//
// The boxes are separated only if one lies strictly east, north, west or
// south of the other. This is a conservative pre-filter: it may report
// shapes whose envelopes touch but whose shapes do not, but never misses
// overlapping envelopes.
func IntersectsBounds(b1, b2 Bounds) bool {
	var d CardinalDirection
	separated := d.IsEastOf(b1.SouthWest(), b2.SouthEast()) ||
		d.IsSouthOf(b1.NorthWest(), b2.SouthWest()) ||
		d.IsWestOf(b1.SouthEast(), b2.SouthWest()) ||
		d.IsNorthOf(b1.SouthWest(), b2.NorthWest())
	return !separated
}

// Intersects is the shared intersection entry point of all shapes.
//
// A point is always tested exactly through Contains, whichever side it is
// on. Otherwise, without precise, only the envelopes are compared; with
// precise, every segment of g is tested against every segment of other.
// A shape without points intersects nothing.
func Intersects(g, other Geometry, precise bool) bool {
	if len(g.Points()) == 0 || len(other.Points()) == 0 {
		return false
	}
	if c, ok := asPoint(other); ok {
		return g.Contains(c)
	}
	if c, ok := asPoint(g); ok {
		return other.Contains(c)
	}
	if !precise {
		return IntersectsBounds(g.Bounds(), other.Bounds())
	}
	return anySegmentsIntersect(g.Segments(), other.Segments())
}

// asPoint returns the single coordinate of a point-kind geometry.
func asPoint(g Geometry) (Coordinate, bool) {
	if !g.Kind().IsPoint() {
		return Coordinate{}, false
	}
	points := g.Points()
	if len(points) != 1 {
		return Coordinate{}, false
	}
	return points[0], true
}

// anySegmentsIntersect returns on the first crossing pair and false once
// both sequences are exhausted.
func anySegmentsIntersect(a, b []Line) bool {
	for _, s1 := range a {
		for _, s2 := range b {
			if s1.IntersectsLine(s2) {
				return true
			}
		}
	}
	return false
}

// Relation reports both intersection tiers for a pair of shapes.
type Relation struct {
	BoundsIntersect bool // Envelopes overlap (points: exact containment)
	Intersects      bool // Shapes intersect precisely
}

// Relate evaluates the bounds and precise intersection of a and b.
func Relate(a, b Geometry) Relation {
	return Relation{
		BoundsIntersect: Intersects(a, b, false),
		Intersects:      Intersects(a, b, true),
	}
}
