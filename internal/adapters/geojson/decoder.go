package geojson

import (
	"fmt"
	"io"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/locus/internal/domain"
)

// Decoder reads GeoJSON FeatureCollections into domain features.
type Decoder struct {
	// NameProperty is the property used as feature display name.
	NameProperty string
}

// NewDecoder creates a decoder using the "name" property as display name.
func NewDecoder() *Decoder {
	return &Decoder{NameProperty: "name"}
}

// Decode reads a FeatureCollection from r. Features are tagged with
// collectionID; features without an id get their index as id.
func (d *Decoder) Decode(r io.Reader, collectionID string) ([]domain.Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &domain.DecodeError{Source: collectionID, Err: err}
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &domain.DecodeError{Source: collectionID, Err: err}
	}

	features := make([]domain.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		feature, err := d.feature(f, i, collectionID)
		if err != nil {
			return nil, &domain.DecodeError{Source: collectionID, Err: err}
		}
		features = append(features, feature)
	}
	return features, nil
}

func (d *Decoder) feature(f *geojson.Feature, index int, collectionID string) (domain.Feature, error) {
	id := featureID(f.ID, index)

	g, err := FromOrb(f.Geometry)
	if err != nil {
		return domain.Feature{}, fmt.Errorf("feature %s: %w", id, err)
	}

	props := map[string]interface{}(f.Properties)
	if props == nil {
		props = map[string]interface{}{}
	}

	name := id
	if n, ok := props[d.NameProperty].(string); ok && n != "" {
		name = n
	}

	return domain.Feature{
		ID:           id,
		CollectionID: collectionID,
		Name:         name,
		Geometry:     g,
		Properties:   props,
	}, nil
}

// featureID renders a GeoJSON id, which may be a string or a number.
func featureID(id interface{}, index int) string {
	switch v := id.(type) {
	case nil:
		return strconv.Itoa(index)
	case string:
		if v == "" {
			return strconv.Itoa(index)
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// DecodeGeometry parses a bare GeoJSON geometry object.
func DecodeGeometry(data []byte) (domain.Geometry, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, &domain.DecodeError{Source: "request", Err: err}
	}

	shape, err := FromOrb(g.Geometry())
	if err != nil {
		return nil, &domain.DecodeError{Source: "request", Err: err}
	}
	return shape, nil
}
