package domain

// CardinalDirection compares coordinates by latitude or longitude only.
// It carries no state; the zero value is ready to use.
type CardinalDirection struct{}

// IsNorthOf reports whether a lies north of b.
func (CardinalDirection) IsNorthOf(a, b Coordinate) bool {
	return a.Lat() > b.Lat()
}

// IsSouthOf reports whether a lies south of b.
func (CardinalDirection) IsSouthOf(a, b Coordinate) bool {
	return a.Lat() < b.Lat()
}

// IsEastOf reports whether a lies east of b.
func (CardinalDirection) IsEastOf(a, b Coordinate) bool {
	return a.Lng() > b.Lng()
}

// IsWestOf reports whether a lies west of b.
func (CardinalDirection) IsWestOf(a, b Coordinate) bool {
	return a.Lng() < b.Lng()
}
