package domain

import (
	"errors"
	"math"
	"testing"
)

func TestNewCoordinate(t *testing.T) {
	c, err := NewCoordinate(52.5, 13.4)
	if err != nil {
		t.Fatalf("NewCoordinate() error = %v", err)
	}

	if c.Lat() != 52.5 {
		t.Errorf("Lat() = %f, want 52.5", c.Lat())
	}
	if c.Lng() != 13.4 {
		t.Errorf("Lng() = %f, want 13.4", c.Lng())
	}
	if c.Ellipsoid() != WGS84() {
		t.Errorf("Ellipsoid() = %v, want WGS-84", c.Ellipsoid().Name())
	}
}

func TestNewCoordinateValidation(t *testing.T) {
	tests := []struct {
		name      string
		lat       float64
		lng       float64
		wantErr   bool
		wantField string
	}{
		{name: "valid", lat: 52.5, lng: 13.4},
		{name: "origin", lat: 0, lng: 0},
		{name: "max bounds", lat: 90, lng: 180},
		{name: "min bounds", lat: -90, lng: -180},
		{name: "latitude too high", lat: 90.0001, lng: 0, wantErr: true, wantField: "latitude"},
		{name: "latitude too low", lat: -91, lng: 0, wantErr: true, wantField: "latitude"},
		{name: "longitude too high", lat: 0, lng: 180.5, wantErr: true, wantField: "longitude"},
		{name: "longitude too low", lat: 0, lng: -181, wantErr: true, wantField: "longitude"},
		{name: "NaN latitude", lat: math.NaN(), lng: 0, wantErr: true, wantField: "latitude"},
		{name: "infinite longitude", lat: 0, lng: math.Inf(1), wantErr: true, wantField: "longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinate(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCoordinate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("error should be *ValidationError, got %T", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", validationErr.Field, tt.wantField)
			}
			if !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("NewCoordinate() error = %v, want ErrInvalidCoordinate", err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Error("error should unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		input     string
		wantLat   float64
		wantLng   float64
		wantErr   bool
		wantField string
	}{
		{input: "52.5,13.4", wantLat: 52.5, wantLng: 13.4},
		{input: " -33.9 , 151.2 ", wantLat: -33.9, wantLng: 151.2},
		{input: "90,-180", wantLat: 90, wantLng: -180},
		{input: "52.5", wantErr: true, wantField: "coordinate"},
		{input: "", wantErr: true, wantField: "coordinate"},
		{input: "north,13.4", wantErr: true, wantField: "latitude"},
		{input: "52.5,east", wantErr: true, wantField: "longitude"},
		{input: "1,2,3", wantErr: true, wantField: "longitude"},
		{input: "95,0", wantErr: true, wantField: "latitude"},
		{input: "0,190", wantErr: true, wantField: "longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseCoordinate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCoordinate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("ParseCoordinate(%q) error = %T, want *ValidationError", tt.input, err)
				}
				if validationErr.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", validationErr.Field, tt.wantField)
				}
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Errorf("ParseCoordinate(%q) error = %v, want ErrInvalidCoordinate", tt.input, err)
				}
				return
			}
			if c.Lat() != tt.wantLat || c.Lng() != tt.wantLng {
				t.Errorf("ParseCoordinate(%q) = (%v, %v), want (%v, %v)", tt.input, c.Lat(), c.Lng(), tt.wantLat, tt.wantLng)
			}
		})
	}
}

func TestNewCoordinateOn(t *testing.T) {
	c, err := NewCoordinateOn(10, 20, GRS80())
	if err != nil {
		t.Fatalf("NewCoordinateOn() error = %v", err)
	}
	if c.Ellipsoid().Name() != "GRS-80" {
		t.Errorf("Ellipsoid().Name() = %q, want GRS-80", c.Ellipsoid().Name())
	}

	c, err = NewCoordinateOn(10, 20, Ellipsoid{})
	if err != nil {
		t.Fatalf("NewCoordinateOn() error = %v", err)
	}
	if c.Ellipsoid() != WGS84() {
		t.Error("zero ellipsoid should select WGS-84")
	}
}

func TestCoordinateZeroValueEllipsoid(t *testing.T) {
	var c Coordinate
	if c.Ellipsoid() != WGS84() {
		t.Error("zero coordinate should report WGS-84")
	}
}

func TestCoordinateEquals(t *testing.T) {
	a := MustCoordinate(52.5, 13.4)

	tests := []struct {
		name  string
		other Coordinate
		want  bool
	}{
		{"identical", MustCoordinate(52.5, 13.4), true},
		{"different latitude", MustCoordinate(52.500001, 13.4), false},
		{"different longitude", MustCoordinate(52.5, 13.400001), false},
		{"swapped components", MustCoordinate(13.4, 52.5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equals(tt.other); got != tt.want {
				t.Errorf("Equals() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Equals(a); got != tt.want {
				t.Errorf("Equals() is not symmetric: got %v, want %v", got, tt.want)
			}
		})
	}

	if !a.Equals(a) {
		t.Error("Equals() should be reflexive")
	}
}

func TestCoordinateEqualsIgnoresEllipsoid(t *testing.T) {
	a := MustCoordinate(1, 2)
	b, err := NewCoordinateOn(1, 2, GRS80())
	if err != nil {
		t.Fatalf("NewCoordinateOn() error = %v", err)
	}
	if !a.Equals(b) {
		t.Error("coordinates with equal lat/lng should be equal regardless of ellipsoid")
	}
}

func TestCoordinateGeometry(t *testing.T) {
	c := MustCoordinate(52.5, 13.4)

	if c.Kind() != KindPoint {
		t.Errorf("Kind() = %v, want Point", c.Kind())
	}

	points := c.Points()
	if len(points) != 1 || !points[0].Equals(c) {
		t.Errorf("Points() = %v, want [%v]", points, c)
	}

	if len(c.Segments()) != 0 {
		t.Errorf("len(Segments()) = %d, want 0", len(c.Segments()))
	}

	b := c.Bounds()
	if b.North() != 52.5 || b.South() != 52.5 || b.East() != 13.4 || b.West() != 13.4 {
		t.Errorf("Bounds() = %+v, want degenerate box at the point", b)
	}

	if !c.Contains(MustCoordinate(52.5, 13.4)) {
		t.Error("Contains() should be true for an equal coordinate")
	}
	if c.Contains(MustCoordinate(52.5, 13.5)) {
		t.Error("Contains() should be false for a different coordinate")
	}
}

type fixedDistance struct {
	meters float64
	err    error
}

func (f fixedDistance) Distance(_, _ Coordinate) (float64, error) {
	return f.meters, f.err
}

func TestCoordinateHasSameLocation(t *testing.T) {
	a := MustCoordinate(52.5, 13.4)
	b := MustCoordinate(52.5000001, 13.4)

	tests := []struct {
		name    string
		calc    DistanceCalculator
		allowed float64
		want    bool
		wantErr bool
	}{
		{"within tolerance", fixedDistance{meters: 0.0005}, 0.001, true, false},
		{"exactly at tolerance", fixedDistance{meters: 0.001}, 0.001, true, false},
		{"beyond tolerance", fixedDistance{meters: 0.5}, 0.001, false, false},
		{"calculator error", fixedDistance{err: ErrNotConverging}, 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.HasSameLocation(b, tt.calc, tt.allowed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HasSameLocation() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("HasSameLocation() = %v, want %v", got, tt.want)
			}
		})
	}
}

type upperFormatter struct{}

func (upperFormatter) Format(c Coordinate) string { return "X" + c.String() }

func TestCoordinateFormat(t *testing.T) {
	c := MustCoordinate(52.5, 13.4)
	if got := c.Format(upperFormatter{}); got != "XPOINT(13.400000 52.500000)" {
		t.Errorf("Format() = %q", got)
	}
}

func TestCoordinateString(t *testing.T) {
	c := MustCoordinate(52.5, 9.9)
	if got := c.String(); got != "POINT(9.900000 52.500000)" {
		t.Errorf("String() = %q, want %q", got, "POINT(9.900000 52.500000)")
	}
}

func TestEllipsoid(t *testing.T) {
	e := WGS84()

	if e.A() != 6378137.0 {
		t.Errorf("A() = %f, want 6378137", e.A())
	}
	if math.Abs(e.B()-6356752.314245) > 1e-3 {
		t.Errorf("B() = %f, want 6356752.314245", e.B())
	}
	if math.Abs(e.MeanRadius()-6371008.7714) > 1e-3 {
		t.Errorf("MeanRadius() = %f, want 6371008.7714", e.MeanRadius())
	}
}

func TestNewEllipsoid(t *testing.T) {
	tests := []struct {
		name    string
		a       float64
		invF    float64
		wantErr bool
	}{
		{"bessel", 6377397.155, 299.1528128, false},
		{"zero axis", 0, 298, true},
		{"negative axis", -1, 298, true},
		{"flattening too large", 6378137, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEllipsoid(tt.name, tt.a, tt.invF)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEllipsoid() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultEllipsoidIsACopy(t *testing.T) {
	e := WGS84()
	e.a = 1 // mutate the local copy

	if WGS84().A() != 6378137.0 {
		t.Error("modifying a returned ellipsoid must not change the default")
	}
}
