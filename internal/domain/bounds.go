package domain

import "math"

// Bounds is an axis-aligned latitude/longitude envelope.
//
// Longitude is treated as a linear axis. A shape crossing the antimeridian
// gets the wide envelope spanning its literal minimum and maximum longitude;
// no wrapped representation exists.
type Bounds struct {
	southWest Coordinate
	northEast Coordinate
}

// NewBounds creates bounds from its south-west and north-east corners.
func NewBounds(southWest, northEast Coordinate) (Bounds, error) {
	if southWest.Lat() > northEast.Lat() {
		return Bounds{}, &ValidationError{
			Field:      "south",
			Value:      southWest.Lat(),
			Constraint: "<= north",
			Message:    "south edge must not lie north of the north edge",
			Err:        ErrInvalidBounds,
		}
	}
	if southWest.Lng() > northEast.Lng() {
		return Bounds{}, &ValidationError{
			Field:      "west",
			Value:      southWest.Lng(),
			Constraint: "<= east",
			Message:    "west edge must not lie east of the east edge",
			Err:        ErrInvalidBounds,
		}
	}
	return Bounds{southWest: southWest, northEast: northEast}, nil
}

// BoundsOf returns the min/max envelope of points.
func BoundsOf(points []Coordinate) (Bounds, error) {
	if len(points) == 0 {
		return Bounds{}, ErrEmptyGeometry
	}
	b := points[0].Bounds()
	for _, p := range points[1:] {
		b = b.extend(p)
	}
	return b, nil
}

// extend grows the envelope to include c.
func (b Bounds) extend(c Coordinate) Bounds {
	e := b.southWest.Ellipsoid()
	return Bounds{
		southWest: Coordinate{
			lat:       math.Min(b.southWest.lat, c.lat),
			lng:       math.Min(b.southWest.lng, c.lng),
			ellipsoid: e,
		},
		northEast: Coordinate{
			lat:       math.Max(b.northEast.lat, c.lat),
			lng:       math.Max(b.northEast.lng, c.lng),
			ellipsoid: e,
		},
	}
}

// North returns the northern edge latitude.
func (b Bounds) North() float64 { return b.northEast.lat }

// South returns the southern edge latitude.
func (b Bounds) South() float64 { return b.southWest.lat }

// East returns the eastern edge longitude.
func (b Bounds) East() float64 { return b.northEast.lng }

// West returns the western edge longitude.
func (b Bounds) West() float64 { return b.southWest.lng }

// SouthWest returns the south-west corner.
func (b Bounds) SouthWest() Coordinate { return b.southWest }

// NorthEast returns the north-east corner.
func (b Bounds) NorthEast() Coordinate { return b.northEast }

// NorthWest returns the north-west corner.
func (b Bounds) NorthWest() Coordinate {
	return Coordinate{lat: b.North(), lng: b.West(), ellipsoid: b.southWest.ellipsoid}
}

// SouthEast returns the south-east corner.
func (b Bounds) SouthEast() Coordinate {
	return Coordinate{lat: b.South(), lng: b.East(), ellipsoid: b.southWest.ellipsoid}
}

// Center returns the midpoint of the envelope.
func (b Bounds) Center() Coordinate {
	return Coordinate{
		lat:       (b.North() + b.South()) / 2,
		lng:       (b.East() + b.West()) / 2,
		ellipsoid: b.southWest.ellipsoid,
	}
}

// Width returns the longitude span in degrees.
func (b Bounds) Width() float64 {
	return b.East() - b.West()
}

// Height returns the latitude span in degrees.
func (b Bounds) Height() float64 {
	return b.North() - b.South()
}

// Contains reports whether c lies within the envelope, edges included.
func (b Bounds) Contains(c Coordinate) bool {
	return c.lat >= b.South() && c.lat <= b.North() &&
		c.lng >= b.West() && c.lng <= b.East()
}

// Intersects reports whether the envelope overlaps or touches other.
func (b Bounds) Intersects(other Bounds) bool {
	return IntersectsBounds(b, other)
}
