package domain

import "time"

// Collection is a named set of features loaded from one storage object.
type Collection struct {
	ID       string    // Unique identifier (derived from the object key)
	Name     string    // Display name
	Key      string    // Storage object key
	Size     int64     // Object size in bytes
	Features []Feature // Loaded features
	LoadedAt time.Time // Load timestamp
}

// FeatureCount returns the number of features.
func (c *Collection) FeatureCount() int {
	return len(c.Features)
}

// GetFeature returns a feature by ID.
func (c *Collection) GetFeature(id string) (*Feature, bool) {
	for i := range c.Features {
		if c.Features[i].ID == id {
			return &c.Features[i], true
		}
	}
	return nil, false
}

// Bounds returns the envelope of all features, or false for an empty collection.
func (c *Collection) Bounds() (Bounds, bool) {
	var (
		b     Bounds
		found bool
	)
	for i := range c.Features {
		if c.Features[i].Geometry == nil {
			continue
		}
		fb := c.Features[i].Geometry.Bounds()
		if !found {
			b, found = fb, true
			continue
		}
		b = b.extend(fb.SouthWest()).extend(fb.NorthEast())
	}
	return b, found
}

// CollectionStatus represents the load state of a collection.
type CollectionStatus string

const (
	StatusLoading   CollectionStatus = "loading"
	StatusReady     CollectionStatus = "ready"
	StatusError     CollectionStatus = "error"
	StatusUnloading CollectionStatus = "unloading"
)
