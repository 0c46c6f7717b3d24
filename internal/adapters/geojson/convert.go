// Package geojson converts between GeoJSON documents and domain shapes.
package geojson

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/jobrunner/locus/internal/domain"
)

// FromOrb converts an orb geometry into a domain shape.
//
// A two point LineString becomes a Line, longer ones a Polyline. Polygons
// keep their outer ring only if they have no holes; holes and multi
// geometries are rejected with domain.ErrUnsupportedGeometry.
func FromOrb(g orb.Geometry) (domain.Geometry, error) {
	switch v := g.(type) {
	case orb.Point:
		return coordinate(v)
	case orb.LineString:
		points, err := coordinates(v)
		if err != nil {
			return nil, err
		}
		if len(points) == 2 {
			return domain.NewLine(points[0], points[1]), nil
		}
		return domain.NewPolyline(points...), nil
	case orb.Ring:
		return ring(v)
	case orb.Polygon:
		switch len(v) {
		case 0:
			return nil, domain.ErrEmptyGeometry
		case 1:
			return ring(v[0])
		default:
			return nil, fmt.Errorf("polygon with %d holes: %w", len(v)-1, domain.ErrUnsupportedGeometry)
		}
	case nil:
		return nil, domain.ErrEmptyGeometry
	default:
		return nil, fmt.Errorf("%s: %w", g.GeoJSONType(), domain.ErrUnsupportedGeometry)
	}
}

// ToOrb converts a domain shape into an orb geometry by its declared kind.
func ToOrb(g domain.Geometry) (orb.Geometry, error) {
	if g == nil {
		return nil, domain.ErrEmptyGeometry
	}

	points := g.Points()
	switch g.Kind() {
	case domain.KindPoint:
		if len(points) != 1 {
			return nil, domain.ErrEmptyGeometry
		}
		return toPoint(points[0]), nil
	case domain.KindLine, domain.KindPolyline:
		return orb.LineString(toPoints(points)), nil
	case domain.KindPolygon:
		return orb.Polygon{orb.Ring(toPoints(points))}, nil
	default:
		return nil, fmt.Errorf("%s: %w", g.Kind(), domain.ErrUnsupportedGeometry)
	}
}

// ToBound converts domain bounds into an orb bound.
func ToBound(b domain.Bounds) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West(), b.South()},
		Max: orb.Point{b.East(), b.North()},
	}
}

func ring(r orb.Ring) (domain.Geometry, error) {
	points, err := coordinates(r)
	if err != nil {
		return nil, err
	}
	return domain.NewPolygon(points...), nil
}

// coordinate maps an orb point, which is ordered lon/lat.
func coordinate(p orb.Point) (domain.Coordinate, error) {
	return domain.NewCoordinate(p.Lat(), p.Lon())
}

func coordinates(points []orb.Point) ([]domain.Coordinate, error) {
	out := make([]domain.Coordinate, 0, len(points))
	for i, p := range points {
		c, err := coordinate(p)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func toPoint(c domain.Coordinate) orb.Point {
	return orb.Point{c.Lng(), c.Lat()}
}

func toPoints(points []domain.Coordinate) []orb.Point {
	out := make([]orb.Point, 0, len(points))
	for _, c := range points {
		out = append(out, toPoint(c))
	}
	return out
}
