// Package domain contains the geometry entities and the intersection engine.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is an immutable geodetic point on a reference ellipsoid.
type Coordinate struct {
	lat       float64
	lng       float64
	ellipsoid Ellipsoid
}

// NewCoordinate creates a WGS-84 coordinate.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	return NewCoordinateOn(lat, lng, WGS84())
}

// NewCoordinateOn creates a coordinate on the given ellipsoid. A zero
// ellipsoid selects WGS-84.
func NewCoordinateOn(lat, lng float64, ellipsoid Ellipsoid) (Coordinate, error) {
	if !isInRange(lat, -90, 90) {
		return Coordinate{}, &ValidationError{
			Field:      "latitude",
			Value:      lat,
			Constraint: "[-90, 90]",
			Message:    "latitude must be between -90 and 90",
			Err:        ErrInvalidCoordinate,
		}
	}
	if !isInRange(lng, -180, 180) {
		return Coordinate{}, &ValidationError{
			Field:      "longitude",
			Value:      lng,
			Constraint: "[-180, 180]",
			Message:    "longitude must be between -180 and 180",
			Err:        ErrInvalidCoordinate,
		}
	}
	if ellipsoid.IsZero() {
		ellipsoid = WGS84()
	}
	return Coordinate{lat: lat, lng: lng, ellipsoid: ellipsoid}, nil
}

// ParseCoordinate parses a WGS-84 coordinate written as "lat,lng" in
// decimal degrees. Spaces around either number are ignored.
func ParseCoordinate(s string) (Coordinate, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return Coordinate{}, &ValidationError{
			Field:      "coordinate",
			Value:      s,
			Constraint: "lat,lng",
			Message:    "coordinate must be lat,lng",
			Err:        ErrInvalidCoordinate,
		}
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Coordinate{}, &ValidationError{
			Field:      "latitude",
			Value:      latStr,
			Constraint: "number",
			Message:    "latitude must be a number",
			Err:        ErrInvalidCoordinate,
		}
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return Coordinate{}, &ValidationError{
			Field:      "longitude",
			Value:      lngStr,
			Constraint: "number",
			Message:    "longitude must be a number",
			Err:        ErrInvalidCoordinate,
		}
	}

	return NewCoordinate(lat, lng)
}

// MustCoordinate is like NewCoordinate but panics on invalid input.
// It is intended for literals in tests and fixtures.
func MustCoordinate(lat, lng float64) Coordinate {
	c, err := NewCoordinate(lat, lng)
	if err != nil {
		panic(err)
	}
	return c
}

// isInRange also rejects NaN, which fails every comparison.
func isInRange(v, lower, upper float64) bool {
	return v >= lower && v <= upper
}

// Lat returns the latitude in degrees.
func (c Coordinate) Lat() float64 { return c.lat }

// Lng returns the longitude in degrees.
func (c Coordinate) Lng() float64 { return c.lng }

// Ellipsoid returns the reference ellipsoid.
func (c Coordinate) Ellipsoid() Ellipsoid {
	if c.ellipsoid.IsZero() {
		return WGS84()
	}
	return c.ellipsoid
}

// Equals reports whether both coordinates have equal latitude and longitude.
func (c Coordinate) Equals(other Coordinate) bool {
	return c.lat == other.lat && c.lng == other.lng
}

// Kind implements Geometry.
func (c Coordinate) Kind() Kind { return KindPoint }

// Points implements Geometry. A coordinate is its own single point.
func (c Coordinate) Points() []Coordinate {
	return []Coordinate{c}
}

// Bounds implements Geometry. The envelope of a point is the point itself.
func (c Coordinate) Bounds() Bounds {
	return Bounds{southWest: c, northEast: c}
}

// Segments implements Geometry. A point has no segments.
func (c Coordinate) Segments() []Line {
	return nil
}

// Contains implements Geometry. For a point it degenerates to equality.
func (c Coordinate) Contains(other Coordinate) bool {
	return c.Equals(other)
}

// Intersects implements Geometry.
func (c Coordinate) Intersects(other Geometry, precise bool) bool {
	return Intersects(c, other, precise)
}

// Distance returns the distance to other as computed by calc.
func (c Coordinate) Distance(other Coordinate, calc DistanceCalculator) (float64, error) {
	return calc.Distance(c, other)
}

// HasSameLocation reports whether other lies within allowed meters of c.
func (c Coordinate) HasSameLocation(other Coordinate, calc DistanceCalculator, allowed float64) (bool, error) {
	d, err := calc.Distance(c, other)
	if err != nil {
		return false, err
	}
	return d <= allowed, nil
}

// Format renders the coordinate with f.
func (c Coordinate) Format(f Formatter) string {
	return f.Format(c)
}

// String returns a string representation of the coordinate.
func (c Coordinate) String() string {
	return fmt.Sprintf("POINT(%f %f)", c.lng, c.lat)
}
