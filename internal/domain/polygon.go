package domain

// Polygon is an ordered ring of coordinates. The ring is closed when the
// last point repeats the first; the polygon never closes it implicitly.
//
// Points are appended during a build phase. A polygon must not be modified
// while other goroutines query it.
type Polygon struct {
	points []Coordinate
	bounds Bounds
}

// NewPolygon creates a polygon from points.
func NewPolygon(points ...Coordinate) *Polygon {
	p := &Polygon{}
	p.AddPoints(points...)
	return p
}

// AddPoint appends a point and grows the envelope.
func (p *Polygon) AddPoint(c Coordinate) {
	if len(p.points) == 0 {
		p.bounds = c.Bounds()
	} else {
		p.bounds = p.bounds.extend(c)
	}
	p.points = append(p.points, c)
}

// AddPoints appends points in order.
func (p *Polygon) AddPoints(points ...Coordinate) {
	for _, c := range points {
		p.AddPoint(c)
	}
}

// NumberOfPoints returns the number of points in the ring.
func (p *Polygon) NumberOfPoints() int {
	return len(p.points)
}

// IsClosed reports whether the last point equals the first.
func (p *Polygon) IsClosed() bool {
	n := len(p.points)
	return n > 1 && p.points[0].Equals(p.points[n-1])
}

// Validate reports whether the ring can meaningfully support containment.
func (p *Polygon) Validate() error {
	n := len(p.points)
	if n < 3 {
		return &ShapeError{Kind: KindPolygon, Points: n, Reason: "at least 3 points are required"}
	}
	if !p.IsClosed() {
		return &ShapeError{Kind: KindPolygon, Points: n, Reason: "ring is not closed"}
	}
	return nil
}

// Kind implements Geometry.
func (p *Polygon) Kind() Kind { return KindPolygon }

// Points implements Geometry. The returned slice is a copy.
func (p *Polygon) Points() []Coordinate {
	out := make([]Coordinate, len(p.points))
	copy(out, p.points)
	return out
}

// Bounds implements Geometry. An empty polygon has zero bounds, which
// Intersects never compares.
func (p *Polygon) Bounds() Bounds {
	return p.bounds
}

// Segments implements Geometry. It returns one segment per consecutive
// pair of points and is empty for fewer than two points.
func (p *Polygon) Segments() []Line {
	return segmentsOf(p.points)
}

// Contains reports whether c lies strictly inside the ring.
//
// Points exactly on an edge or vertex are outside. Everything else is
// classified by casting a ray towards increasing longitude and counting the
// edges it crosses.
func (p *Polygon) Contains(c Coordinate) bool {
	if len(p.points) < 3 || !p.bounds.Contains(c) {
		return false
	}

	segments := p.Segments()
	for _, s := range segments {
		if s.Contains(c) {
			return false
		}
	}

	inside := false
	for _, s := range segments {
		if crossesRay(s, c) {
			inside = !inside
		}
	}
	return inside
}

// Intersects implements Geometry.
func (p *Polygon) Intersects(other Geometry, precise bool) bool {
	return Intersects(p, other, precise)
}

// crossesRay reports whether s crosses the ray from c towards increasing
// longitude: exactly one endpoint lies strictly north of c and the crossing
// longitude lies strictly east of it.
func crossesRay(s Line, c Coordinate) bool {
	a, b := s.start, s.end
	if (a.lat > c.lat) == (b.lat > c.lat) {
		return false
	}
	// a.lat != b.lat here, so the division is defined.
	crossing := a.lng + (c.lat-a.lat)*(b.lng-a.lng)/(b.lat-a.lat)
	return crossing > c.lng
}

// segmentsOf returns one segment per consecutive pair of points.
func segmentsOf(points []Coordinate) []Line {
	if len(points) < 2 {
		return []Line{}
	}
	segments := make([]Line, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		segments = append(segments, NewLine(points[i], points[i+1]))
	}
	return segments
}
