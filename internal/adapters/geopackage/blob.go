package geopackage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/jobrunner/locus/internal/domain"
)

// Flag bits of the GeoPackage binary header.
const (
	flagLittleEndian = 0x01
	flagEnvelope     = 0x0E
	flagEmpty        = 0x10
)

// envelopeSizes maps the envelope indicator to its length in bytes.
var envelopeSizes = [...]int{0, 32, 48, 48, 64}

var errNotGeoPackageBlob = errors.New("not a GeoPackage geometry blob")

// parseBlob decodes a GeoPackage geometry blob: a "GP" header with an
// optional envelope followed by standard WKB.
func parseBlob(b []byte) (orb.Geometry, int32, error) {
	if len(b) < 8 || b[0] != 'G' || b[1] != 'P' {
		return nil, 0, errNotGeoPackageBlob
	}

	flags := b[3]
	var order binary.ByteOrder = binary.BigEndian
	if flags&flagLittleEndian != 0 {
		order = binary.LittleEndian
	}
	srsID := int32(order.Uint32(b[4:8])) //#nosec G115 -- srs_id is a signed 32 bit field

	indicator := int(flags&flagEnvelope) >> 1
	if indicator >= len(envelopeSizes) {
		return nil, srsID, fmt.Errorf("envelope indicator %d: %w", indicator, errNotGeoPackageBlob)
	}
	if flags&flagEmpty != 0 {
		return nil, srsID, domain.ErrEmptyGeometry
	}

	offset := 8 + envelopeSizes[indicator]
	if len(b) <= offset {
		return nil, srsID, fmt.Errorf("truncated blob: %w", errNotGeoPackageBlob)
	}

	g, err := wkb.Unmarshal(b[offset:])
	if err != nil {
		return nil, srsID, fmt.Errorf("decoding wkb: %w", err)
	}
	return g, srsID, nil
}
