package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jobrunner/locus/internal/config"
	"github.com/jobrunner/locus/internal/domain"
)

func execute(t *testing.T, args ...string) (map[string]interface{}, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	var body map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatalf("decoding output %q: %v", out.String(), err)
	}
	return body, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestRelateCommand(t *testing.T) {
	square := writeFile(t, "square.geojson",
		`{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`)
	crossing := writeFile(t, "crossing.geojson",
		`{"type":"LineString","coordinates":[[-5,5],[15,5]]}`)
	inside := writeFile(t, "inside.geojson",
		`{"type":"LineString","coordinates":[[2,2],[4,4]]}`)

	tests := []struct {
		name       string
		a, b       string
		wantBounds bool
		wantExact  bool
	}{
		{"line crossing edges", square, crossing, true, true},
		{"line inside polygon", square, inside, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := execute(t, "relate", tt.a, tt.b)
			if err != nil {
				t.Fatalf("relate error = %v", err)
			}
			if body["bounds_intersect"] != tt.wantBounds {
				t.Errorf("bounds_intersect = %v, want %v", body["bounds_intersect"], tt.wantBounds)
			}
			if body["intersects"] != tt.wantExact {
				t.Errorf("intersects = %v, want %v", body["intersects"], tt.wantExact)
			}
			if body["a"] != "Polygon" {
				t.Errorf("a = %v, want Polygon", body["a"])
			}
		})
	}
}

func TestRelateCommandErrors(t *testing.T) {
	bad := writeFile(t, "bad.geojson", `{"type":"Polygon"`)

	if _, err := execute(t, "relate", bad, bad); err == nil {
		t.Error("relate with malformed file error = nil, want error")
	}
	if _, err := execute(t, "relate", filepath.Join(t.TempDir(), "missing.geojson"), bad); err == nil {
		t.Error("relate with missing file error = nil, want error")
	}
}

func TestRelateCommandRejectsMalformedShapes(t *testing.T) {
	square := writeFile(t, "square.geojson",
		`{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`)

	tests := []struct {
		name    string
		content string
	}{
		{"empty ring", `{"type":"Polygon","coordinates":[[]]}`},
		{"open ring", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1]]]}`},
		{"single point line", `{"type":"LineString","coordinates":[[-1,-1]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := writeFile(t, "shape.geojson", tt.content)
			for _, args := range [][]string{{shape, square}, {square, shape}} {
				_, err := execute(t, "relate", args[0], args[1])
				if !errors.Is(err, domain.ErrMalformedShape) {
					t.Errorf("relate %v error = %v, want ErrMalformedShape", args, err)
				}
			}
		})
	}
}

func TestDistanceCommand(t *testing.T) {
	body, err := execute(t, "distance", "0,0", "0,1", "--method", "haversine", "--format", "decimal")
	if err != nil {
		t.Fatalf("distance error = %v", err)
	}
	meters, _ := body["meters"].(float64)
	if meters < 111000 || meters > 111400 {
		t.Errorf("meters = %v, want about 111195", meters)
	}
	if body["method"] != "haversine" {
		t.Errorf("method = %v, want haversine", body["method"])
	}

	if _, err := execute(t, "distance", "0,0", "0,1", "--method", "flat", "--format", "decimal"); err == nil ||
		!strings.Contains(err.Error(), "vincenty") {
		t.Errorf("unknown method error = %v, want list of methods", err)
	}
}

func TestDistanceCommandRejectsBadCoordinates(t *testing.T) {
	for _, args := range [][]string{
		{"52.5", "0,1"},
		{"0,0", "north,1"},
		{"95,0", "0,1"},
	} {
		_, err := execute(t, "distance", args[0], args[1], "--method", "haversine", "--format", "decimal")
		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("distance %v error = %v, want *domain.ValidationError", args, err)
		}
		if !errors.Is(err, domain.ErrInvalidCoordinate) {
			t.Errorf("distance %v error = %v, want ErrInvalidCoordinate", args, err)
		}
	}
}

func TestSetupLogger(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		if setupLogger(config.LoggingConfig{Level: "debug", Format: format}) == nil {
			t.Errorf("setupLogger(%q) = nil", format)
		}
	}
}
