package domain

// Polyline is an open chain of coordinates.
type Polyline struct {
	points []Coordinate
	bounds Bounds
}

// NewPolyline creates a polyline from points.
func NewPolyline(points ...Coordinate) *Polyline {
	p := &Polyline{}
	p.AddPoints(points...)
	return p
}

// AddPoint appends a point and grows the envelope.
func (p *Polyline) AddPoint(c Coordinate) {
	if len(p.points) == 0 {
		p.bounds = c.Bounds()
	} else {
		p.bounds = p.bounds.extend(c)
	}
	p.points = append(p.points, c)
}

// AddPoints appends points in order.
func (p *Polyline) AddPoints(points ...Coordinate) {
	for _, c := range points {
		p.AddPoint(c)
	}
}

// NumberOfPoints returns the number of points.
func (p *Polyline) NumberOfPoints() int {
	return len(p.points)
}

// Validate reports whether the chain has at least one segment.
func (p *Polyline) Validate() error {
	if len(p.points) < 2 {
		return &ShapeError{Kind: KindPolyline, Points: len(p.points), Reason: "at least 2 points are required"}
	}
	return nil
}

// Kind implements Geometry.
func (p *Polyline) Kind() Kind { return KindPolyline }

// Points implements Geometry. The returned slice is a copy.
func (p *Polyline) Points() []Coordinate {
	out := make([]Coordinate, len(p.points))
	copy(out, p.points)
	return out
}

// Bounds implements Geometry. An empty polyline has zero bounds.
func (p *Polyline) Bounds() Bounds {
	return p.bounds
}

// Segments implements Geometry.
func (p *Polyline) Segments() []Line {
	return segmentsOf(p.points)
}

// Contains reports whether c lies on any segment of the chain.
func (p *Polyline) Contains(c Coordinate) bool {
	if len(p.points) == 1 {
		return p.points[0].Equals(c)
	}
	for _, s := range p.Segments() {
		if s.Contains(c) {
			return true
		}
	}
	return false
}

// Intersects implements Geometry.
func (p *Polyline) Intersects(other Geometry, precise bool) bool {
	return Intersects(p, other, precise)
}
