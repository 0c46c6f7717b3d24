package geojson

import (
	"encoding/json"

	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/locus/internal/domain"
)

// NewFeatureCollection converts features into a GeoJSON FeatureCollection.
func NewFeatureCollection(features []domain.Feature) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf, err := NewFeature(f)
		if err != nil {
			return nil, err
		}
		fc.Append(gf)
	}
	return fc, nil
}

// NewFeature converts a domain feature into a GeoJSON feature.
func NewFeature(f domain.Feature) (*geojson.Feature, error) {
	g, err := ToOrb(f.Geometry)
	if err != nil {
		return nil, err
	}

	gf := geojson.NewFeature(g)
	gf.ID = f.ID
	for k, v := range f.Properties {
		gf.Properties[k] = v
	}
	return gf, nil
}

// MarshalGeometry renders a domain shape as a GeoJSON geometry object.
func MarshalGeometry(g domain.Geometry) (json.RawMessage, error) {
	og, err := ToOrb(g)
	if err != nil {
		return nil, err
	}
	return geojson.NewGeometry(og).MarshalJSON()
}

// Formatter renders a coordinate as a GeoJSON Point.
type Formatter struct{}

// Format implements domain.Formatter.
func (Formatter) Format(c domain.Coordinate) string {
	data, err := MarshalGeometry(c)
	if err != nil {
		return ""
	}
	return string(data)
}
