// Package geopackage reads GeoPackage feature tables into domain features.
package geopackage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/jobrunner/locus/internal/adapters/geojson"
	"github.com/jobrunner/locus/internal/domain"
)

// SRIDWGS84 is the only spatial reference system accepted.
const SRIDWGS84 = 4326

// layer describes one feature table from gpkg_contents.
type layer struct {
	Name           string
	GeometryColumn string
	SRID           int
}

// Decoder implements output.CollectionDecoder for GeoPackage files.
//
// SQLite needs a file, so the document is spooled to a temporary file
// which is removed once all features are read.
type Decoder struct {
	// TempDir holds the spooled files. Empty uses the OS default.
	TempDir string
	// NameProperty is the column used as feature display name.
	NameProperty string
}

// NewDecoder creates a GeoPackage decoder.
func NewDecoder(tempDir string) *Decoder {
	return &Decoder{TempDir: tempDir, NameProperty: "name"}
}

// Decode reads every feature table of the GeoPackage in r. Feature IDs
// are "<table>/<fid>".
func (d *Decoder) Decode(r io.Reader, collectionID string) ([]domain.Feature, error) {
	path, err := d.spool(r)
	if err != nil {
		return nil, &domain.DecodeError{Source: collectionID, Err: err}
	}
	defer func() { _ = os.Remove(path) }()

	ctx := context.Background()
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, &domain.DecodeError{Source: collectionID, Err: err}
	}
	defer func() { _ = db.Close() }()

	layers, err := readLayers(ctx, db)
	if err != nil {
		return nil, &domain.DecodeError{Source: collectionID, Err: err}
	}

	var features []domain.Feature
	for _, l := range layers {
		lf, err := d.readFeatures(ctx, db, l, collectionID)
		if err != nil {
			return nil, &domain.DecodeError{Source: collectionID, Err: fmt.Errorf("layer %s: %w", l.Name, err)}
		}
		features = append(features, lf...)
	}
	return features, nil
}

func (d *Decoder) spool(r io.Reader) (string, error) {
	f, err := os.CreateTemp(d.TempDir, "locus-*.gpkg")
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// openDB opens the spooled file read-only.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&immutable=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// readLayers reads the feature tables from gpkg_contents.
func readLayers(ctx context.Context, db *sql.DB) ([]layer, error) {
	query := `
		SELECT c.table_name, g.column_name, g.srs_id
		FROM gpkg_contents c
		JOIN gpkg_geometry_columns g ON c.table_name = g.table_name
		WHERE c.data_type = 'features'
		ORDER BY c.table_name
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading layers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var layers []layer
	for rows.Next() {
		var l layer
		if err := rows.Scan(&l.Name, &l.GeometryColumn, &l.SRID); err != nil {
			return nil, fmt.Errorf("scanning layer: %w", err)
		}
		if l.SRID != SRIDWGS84 {
			return nil, fmt.Errorf("layer %s uses srs %d: %w", l.Name, l.SRID, domain.ErrUnsupported)
		}
		layers = append(layers, l)
	}
	return layers, rows.Err()
}

func (d *Decoder) readFeatures(ctx context.Context, db *sql.DB, l layer, collectionID string) ([]domain.Feature, error) {
	query := fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(l.Name)) //#nosec G201 -- table name from gpkg_contents, quoted

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var features []domain.Feature
	for index := 0; rows.Next(); index++ {
		f, err := d.scanFeature(rows, columns, l, index)
		if err != nil {
			return nil, err
		}
		f.CollectionID = collectionID
		features = append(features, f)
	}
	return features, rows.Err()
}

// scanFeature scans a row into a Feature.
func (d *Decoder) scanFeature(rows *sql.Rows, columns []string, l layer, index int) (domain.Feature, error) {
	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return domain.Feature{}, err
	}

	fid := strconv.Itoa(index)
	feature := domain.Feature{
		Properties: make(map[string]interface{}),
	}

	for i, col := range columns {
		switch col {
		case "fid":
			if v, ok := values[i].(int64); ok {
				fid = strconv.FormatInt(v, 10)
			}
		case l.GeometryColumn:
			blob, ok := values[i].([]byte)
			if !ok {
				return domain.Feature{}, fmt.Errorf("row %d: %w", index, domain.ErrEmptyGeometry)
			}
			g, _, err := parseBlob(blob)
			if err != nil {
				return domain.Feature{}, fmt.Errorf("row %d: %w", index, err)
			}
			shape, err := geojson.FromOrb(g)
			if err != nil {
				return domain.Feature{}, fmt.Errorf("row %d: %w", index, err)
			}
			feature.Geometry = shape
		default:
			if values[i] != nil {
				feature.Properties[col] = values[i]
			}
		}
	}

	feature.ID = l.Name + "/" + fid
	feature.Name = feature.ID
	if n, ok := feature.Properties[d.NameProperty].(string); ok && n != "" {
		feature.Name = n
	}
	return feature, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
