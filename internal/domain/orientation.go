package domain

// Turn direction of an ordered point triple.
const (
	clockwise        = -1
	collinear        = 0
	counterClockwise = 1
)

// orientation returns the sign of the cross product (q-p) x (r-p) with
// longitude as x and latitude as y. The sign is compared exactly against
// zero; no epsilon is applied, so equal input always yields the same answer.
func orientation(p, q, r Coordinate) int {
	v := (q.lng-p.lng)*(r.lat-p.lat) - (q.lat-p.lat)*(r.lng-p.lng)
	switch {
	case v > 0:
		return counterClockwise
	case v < 0:
		return clockwise
	default:
		return collinear
	}
}

// straddles reports whether two orientations lie strictly on opposite sides.
func straddles(a, b int) bool {
	return a != collinear && b != collinear && a != b
}

// withinExtent reports whether r lies inside the axis-aligned extent of p
// and q on both axes. For r collinear with p and q this means r is on the
// segment.
func withinExtent(p, q, r Coordinate) bool {
	return r.lng >= min(p.lng, q.lng) && r.lng <= max(p.lng, q.lng) &&
		r.lat >= min(p.lat, q.lat) && r.lat <= max(p.lat, q.lat)
}
