package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:      "longitude",
		Value:      200.0,
		Constraint: "[-180, 180]",
		Message:    "longitude must be between -180 and 180",
	}

	got := err.Error()
	if got == "" {
		t.Error("Error() should not return empty string")
	}

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}

	err.Err = ErrInvalidCoordinate
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Error("ValidationError should unwrap to its sentinel")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError with sentinel should unwrap to ErrInvalidInput")
	}
	if errors.Is(err, ErrInvalidBounds) {
		t.Error("ValidationError should not match another sentinel")
	}
}

func TestShapeError(t *testing.T) {
	err := &ShapeError{Kind: KindPolygon, Points: 2, Reason: "at least 3 points are required"}

	got := err.Error()
	if !strings.Contains(got, "Polygon") || !strings.Contains(got, "2 points") {
		t.Errorf("Error() = %q, want kind and point count", got)
	}

	if !errors.Is(err, ErrMalformedShape) {
		t.Error("ShapeError should unwrap to ErrMalformedShape")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ShapeError should unwrap to ErrInvalidInput")
	}
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name       string
		err        *DecodeError
		wantSource bool
	}{
		{
			name:       "with source",
			err:        &DecodeError{Source: "districts.geojson", Err: ErrUnsupportedGeometry},
			wantSource: true,
		},
		{
			name: "without source",
			err:  &DecodeError{Err: errors.New("unexpected EOF")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got == "" {
				t.Error("Error() should not return empty string")
			}
			if tt.wantSource && !strings.Contains(got, tt.err.Source) {
				t.Errorf("Error() = %q, want source %q", got, tt.err.Source)
			}

			if !errors.Is(tt.err, tt.err.Err) {
				t.Error("Unwrap should return the underlying error")
			}
		})
	}
}

func TestStorageError(t *testing.T) {
	tests := []struct {
		name string
		err  *StorageError
	}{
		{
			name: "with key",
			err: &StorageError{
				Operation: "read",
				Key:       "districts.geojson",
				Err:       errors.New("network error"),
			},
		},
		{
			name: "without key",
			err: &StorageError{
				Operation: "list",
				Err:       errors.New("permission denied"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got == "" {
				t.Error("Error() should not return empty string")
			}
			if tt.err.Key != "" && !strings.Contains(got, tt.err.Key) {
				t.Errorf("Error() = %q, want key %q", got, tt.err.Key)
			}

			if !errors.Is(tt.err, tt.err.Err) {
				t.Error("Unwrap should return the underlying error")
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "server.port",
		Message: "must be between 1 and 65535",
	}

	if err.Error() == "" {
		t.Error("Error() should not return empty string")
	}

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ConfigError should unwrap to ErrInvalidInput")
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		parent error
	}{
		{"collection not found", ErrCollectionNotFound, ErrNotFound},
		{"invalid coordinate", ErrInvalidCoordinate, ErrInvalidInput},
		{"invalid bounds", ErrInvalidBounds, ErrInvalidInput},
		{"malformed shape", ErrMalformedShape, ErrInvalidInput},
		{"empty geometry", ErrEmptyGeometry, ErrInvalidInput},
		{"unsupported geometry", ErrUnsupportedGeometry, ErrUnsupported},
		{"ellipsoid mismatch", ErrEllipsoidMismatch, ErrInvalidInput},
		{"not converging", ErrNotConverging, ErrInternal},
		{"not ready", ErrNotReady, ErrUnavailable},
		{"storage unavailable", ErrStorageUnavailable, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.parent) {
				t.Errorf("%v should wrap %v", tt.err, tt.parent)
			}
		})
	}
}
