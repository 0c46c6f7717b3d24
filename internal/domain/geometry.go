package domain

// Kind declares what sort of shape a Geometry is. The intersection engine
// branches on the declared kind, never on the concrete Go type.
type Kind int

// Geometry kinds.
const (
	KindPoint Kind = iota + 1
	KindLine
	KindPolyline
	KindPolygon
)

// String returns the GeoJSON-style name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindLine:
		return "Line"
	case KindPolyline:
		return "Polyline"
	case KindPolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// IsPoint reports whether the kind is zero-dimensional.
func (k Kind) IsPoint() bool {
	return k == KindPoint
}

// Geometry is the capability set every shape implements to take part in
// intersection queries. New shapes integrate by implementing it.
type Geometry interface {
	// Kind declares the shape kind.
	Kind() Kind

	// Points returns the shape's coordinates in order.
	Points() []Coordinate

	// Bounds returns the latitude/longitude envelope of the shape.
	Bounds() Bounds

	// Segments returns the boundary segments. Points have none.
	Segments() []Line

	// Contains reports whether the coordinate lies in (or, for lines, on) the shape.
	Contains(c Coordinate) bool

	// Intersects reports whether the shape intersects other. With precise
	// false only the bounds are compared, unless other is a point.
	Intersects(other Geometry, precise bool) bool
}

// ValidateGeometry checks that g is present and, for shapes with structural
// rules, well formed.
func ValidateGeometry(g Geometry) error {
	if g == nil {
		return ErrEmptyGeometry
	}
	if v, ok := g.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

// DistanceCalculator computes the distance between two coordinates in meters.
type DistanceCalculator interface {
	Distance(a, b Coordinate) (float64, error)
}

// Formatter renders a coordinate as text.
type Formatter interface {
	Format(c Coordinate) string
}
