package domain

// Ellipsoid is a reference earth model. It is a plain value: every accessor
// hands out a copy, so a shared default can never be changed by a caller.
type Ellipsoid struct {
	name string
	a    float64 // semi-major axis in meters
	f    float64 // flattening
}

var (
	wgs84 = Ellipsoid{name: "WGS-84", a: 6378137.0, f: 1 / 298.257223563}
	grs80 = Ellipsoid{name: "GRS-80", a: 6378137.0, f: 1 / 298.257222101}
)

// WGS84 returns the WGS-84 ellipsoid, the default for new coordinates.
func WGS84() Ellipsoid { return wgs84 }

// GRS80 returns the GRS-80 ellipsoid.
func GRS80() Ellipsoid { return grs80 }

// NewEllipsoid creates an ellipsoid from its semi-major axis and inverse flattening.
func NewEllipsoid(name string, a, inverseFlattening float64) (Ellipsoid, error) {
	if a <= 0 {
		return Ellipsoid{}, &ValidationError{
			Field:      "a",
			Value:      a,
			Constraint: "> 0",
			Message:    "semi-major axis must be positive",
		}
	}
	if inverseFlattening <= 1 {
		return Ellipsoid{}, &ValidationError{
			Field:      "inverse_flattening",
			Value:      inverseFlattening,
			Constraint: "> 1",
			Message:    "inverse flattening must be greater than 1",
		}
	}
	return Ellipsoid{name: name, a: a, f: 1 / inverseFlattening}, nil
}

// Name returns the ellipsoid name.
func (e Ellipsoid) Name() string { return e.name }

// A returns the semi-major axis in meters.
func (e Ellipsoid) A() float64 { return e.a }

// F returns the flattening.
func (e Ellipsoid) F() float64 { return e.f }

// B returns the semi-minor axis in meters.
func (e Ellipsoid) B() float64 { return e.a * (1 - e.f) }

// MeanRadius returns the arithmetic mean radius (2a + b) / 3.
func (e Ellipsoid) MeanRadius() float64 {
	return (2*e.a + e.B()) / 3
}

// IsZero reports whether e is the zero value.
func (e Ellipsoid) IsZero() bool {
	return e.a == 0
}
