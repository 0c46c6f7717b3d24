package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobrunner/locus/internal/domain"
)

func newIndexServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/index.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "# collections\n\ndistricts.geojson\nnotes.txt\n  parcels.gpkg  \n")
	})
	mux.HandleFunc("/districts.geojson", func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "u" || pass != "p" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPStorageList(t *testing.T) {
	srv := newIndexServer(t)
	storage := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL + "/"})

	objects, err := storage.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"districts.geojson", "parcels.gpkg"}
	if len(objects) != len(want) {
		t.Fatalf("len(objects) = %d, want %d", len(objects), len(want))
	}
	for i, obj := range objects {
		if obj.Key != want[i] {
			t.Errorf("objects[%d].Key = %q, want %q", i, obj.Key, want[i])
		}
	}
}

func TestHTTPStorageListMissingIndex(t *testing.T) {
	srv := newIndexServer(t)
	storage := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL, IndexFile: "missing.txt"})

	_, err := storage.List(context.Background())
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Errorf("List() error = %v, want ErrStorageUnavailable", err)
	}
}

func TestHTTPStorageGetReader(t *testing.T) {
	srv := newIndexServer(t)

	authed := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL, Username: "u", Password: "p"})
	reader, err := authed.GetReader(context.Background(), "districts.geojson")
	if err != nil {
		t.Fatalf("GetReader() error = %v", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("GetReader() returned empty body")
	}

	anonymous := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL})
	if _, err := anonymous.GetReader(context.Background(), "districts.geojson"); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Errorf("GetReader() without auth error = %v, want ErrStorageUnavailable", err)
	}
	if _, err := anonymous.GetReader(context.Background(), "missing.geojson"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetReader() missing error = %v, want ErrNotFound", err)
	}
}

func TestHTTPStorageExists(t *testing.T) {
	srv := newIndexServer(t)
	storage := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL, Username: "u", Password: "p"})

	tests := []struct {
		key     string
		want    bool
		wantErr bool
	}{
		{"districts.geojson", true, false},
		{"missing.geojson", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := storage.Exists(context.Background(), tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Exists() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
