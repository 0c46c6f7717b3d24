package domain

// Feature is a named shape with attribute data.
type Feature struct {
	ID           string                 // Feature identifier, unique within its collection
	CollectionID string                 // Owning collection
	Name         string                 // Display name (from the "name" property if present)
	Geometry     Geometry               // Shape
	Properties   map[string]interface{} // Attribute data
}

// Validate checks that the feature has a usable shape.
func (f *Feature) Validate() error {
	return ValidateGeometry(f.Geometry)
}

// GetProperty returns a property value by key.
func (f *Feature) GetProperty(key string) (interface{}, bool) {
	if f.Properties == nil {
		return nil, false
	}
	v, ok := f.Properties[key]
	return v, ok
}

// GetStringProperty returns a property as string.
func (f *Feature) GetStringProperty(key string) string {
	if v, ok := f.GetProperty(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetFloatProperty returns a numeric property as float64.
func (f *Feature) GetFloatProperty(key string) float64 {
	if v, ok := f.GetProperty(key); ok {
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return 0
}

// FilterProperties returns a copy of the feature keeping only the named properties.
func (f Feature) FilterProperties(keys []string) Feature {
	if len(keys) == 0 {
		return f
	}
	filtered := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if v, ok := f.Properties[k]; ok {
			filtered[k] = v
		}
	}
	f.Properties = filtered
	return f
}
