// Package storage provides object storage adapters.
package storage

import (
	"path"
	"strings"
)

// CollectionExtensions lists the document types the decoders understand.
var CollectionExtensions = []string{".geojson", ".json", ".gpkg"}

// IsCollectionKey reports whether key names a collection document.
func IsCollectionKey(key string) bool {
	ext := strings.ToLower(path.Ext(key))
	for _, e := range CollectionExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// joinPrefix returns the full remote key including prefix.
func joinPrefix(prefix, key string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// trimPrefix strips the configured prefix from a remote key.
func trimPrefix(prefix, key string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
}
