package output

import (
	"io"

	"github.com/jobrunner/locus/internal/domain"
)

// CollectionDecoder turns an encoded collection document into features.
type CollectionDecoder interface {
	// Decode reads all features from r and tags them with collectionID.
	Decode(r io.Reader, collectionID string) ([]domain.Feature, error)
}
