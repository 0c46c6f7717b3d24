package http

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// getOpenAPIJSON returns the OpenAPI document as JSON, converted once.
var getOpenAPIJSON = sync.OnceValues(func() ([]byte, error) {
	return yamlToJSON(openAPIYAML)
})

// yamlToJSON converts a YAML document into indented JSON.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing openapi.yaml: %w", err)
	}
	return json.MarshalIndent(stringKeys(doc), "", "  ")
}

// stringKeys rewrites map keys as strings, which encoding/json requires.
// Non-string keys such as response codes are formatted with %v.
func stringKeys(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		for key, value := range v {
			v[key] = stringKeys(value)
		}
		return v
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			out[fmt.Sprint(key)] = stringKeys(value)
		}
		return out
	case []interface{}:
		for i, value := range v {
			v[i] = stringKeys(value)
		}
		return v
	default:
		return v
	}
}
