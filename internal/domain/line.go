package domain

// Line is an ordered segment between two coordinates.
type Line struct {
	start Coordinate
	end   Coordinate
}

// NewLine creates a segment. Zero-length segments are allowed and behave
// like points in intersection tests.
func NewLine(start, end Coordinate) Line {
	return Line{start: start, end: end}
}

// Start returns the first point.
func (l Line) Start() Coordinate { return l.start }

// End returns the second point.
func (l Line) End() Coordinate { return l.end }

// IsDegenerate reports whether start and end coincide.
func (l Line) IsDegenerate() bool {
	return l.start.Equals(l.end)
}

// Reverse returns the segment with swapped endpoints.
func (l Line) Reverse() Line {
	return Line{start: l.end, end: l.start}
}

// Kind implements Geometry.
func (l Line) Kind() Kind { return KindLine }

// Points implements Geometry.
func (l Line) Points() []Coordinate {
	return []Coordinate{l.start, l.end}
}

// Bounds implements Geometry.
func (l Line) Bounds() Bounds {
	return l.start.Bounds().extend(l.end)
}

// Segments implements Geometry. A line is its own only segment.
func (l Line) Segments() []Line {
	return []Line{l}
}

// Contains reports whether c lies on the segment, endpoints included.
func (l Line) Contains(c Coordinate) bool {
	if l.IsDegenerate() {
		return l.start.Equals(c)
	}
	return orientation(l.start, l.end, c) == collinear && withinExtent(l.start, l.end, c)
}

// Intersects implements Geometry.
func (l Line) Intersects(other Geometry, precise bool) bool {
	return Intersects(l, other, precise)
}

// IntersectsLine reports whether the two segments share at least one point,
// treating latitude/longitude as a local plane. Touching endpoints and
// overlapping collinear segments intersect.
func (l Line) IntersectsLine(other Line) bool {
	switch {
	case l.IsDegenerate():
		return other.Contains(l.start)
	case other.IsDegenerate():
		return l.Contains(other.start)
	}

	p1, p2 := l.start, l.end
	q1, q2 := other.start, other.end

	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if straddles(d1, d2) && straddles(d3, d4) {
		return true
	}

	// An endpoint on the other segment's supporting line counts only if it
	// lies within that segment. This also resolves collinear overlap.
	switch {
	case d1 == collinear && withinExtent(q1, q2, p1):
		return true
	case d2 == collinear && withinExtent(q1, q2, p2):
		return true
	case d3 == collinear && withinExtent(p1, p2, q1):
		return true
	case d4 == collinear && withinExtent(p1, p2, q2):
		return true
	}

	return false
}
