package distance

import (
	"errors"
	"math"
	"testing"

	"github.com/jobrunner/locus/internal/domain"
)

func TestDistance(t *testing.T) {
	hawaiiA := domain.MustCoordinate(19.820664, -155.468066)
	hawaiiB := domain.MustCoordinate(20.709722, -156.253333)
	equatorA := domain.MustCoordinate(0, 0)
	equatorB := domain.MustCoordinate(0, 1)

	tests := []struct {
		name string
		calc domain.DistanceCalculator
		a, b domain.Coordinate
		want float64
	}{
		{"haversine reference pair", NewHaversine(), hawaiiA, hawaiiB, 128384.515},
		{"vincenty reference pair", NewVincenty(), hawaiiA, hawaiiB, 128130.850},
		{"haversine one degree on equator", NewHaversine(), equatorA, equatorB, 111195.080},
		{"vincenty one degree on equator", NewVincenty(), equatorA, equatorB, 111319.491},
		{"haversine same point", NewHaversine(), hawaiiA, hawaiiA, 0},
		{"vincenty same point", NewVincenty(), hawaiiA, hawaiiA, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.calc.Distance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Distance() error = %v", err)
			}
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("Distance() = %.4f, want %.3f", got, tt.want)
			}
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := domain.MustCoordinate(52.5, 13.4)
	b := domain.MustCoordinate(48.1, 11.6)

	for _, calc := range []domain.DistanceCalculator{NewHaversine(), NewVincenty()} {
		ab, err := calc.Distance(a, b)
		if err != nil {
			t.Fatalf("Distance(a, b) error = %v", err)
		}
		ba, err := calc.Distance(b, a)
		if err != nil {
			t.Fatalf("Distance(b, a) error = %v", err)
		}
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("%T: Distance(a, b) = %f, Distance(b, a) = %f", calc, ab, ba)
		}
	}
}

func TestDistanceEllipsoidMismatch(t *testing.T) {
	a := domain.MustCoordinate(52.5, 13.4)
	b, err := domain.NewCoordinateOn(48.1, 11.6, domain.GRS80())
	if err != nil {
		t.Fatalf("NewCoordinateOn() error = %v", err)
	}

	for _, calc := range []domain.DistanceCalculator{NewHaversine(), NewVincenty()} {
		if _, err := calc.Distance(a, b); !errors.Is(err, domain.ErrEllipsoidMismatch) {
			t.Errorf("%T: Distance() error = %v, want ErrEllipsoidMismatch", calc, err)
		}
	}
}

func TestVincentyNotConverging(t *testing.T) {
	// Nearly antipodal points do not converge within a tight iteration limit.
	a := domain.MustCoordinate(0, 0)
	b := domain.MustCoordinate(0.5, 179.7)

	_, err := NewVincenty().WithMaxIterations(1).Distance(a, b)
	if !errors.Is(err, domain.ErrNotConverging) {
		t.Errorf("Distance() error = %v, want ErrNotConverging", err)
	}
}

func TestHasSameLocation(t *testing.T) {
	a := domain.MustCoordinate(52.5, 13.4)
	b := domain.MustCoordinate(52.5, 13.40001) // ~0.68 m east

	tests := []struct {
		name    string
		allowed float64
		want    bool
	}{
		{"one meter", 1, true},
		{"ten centimeters", 0.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.HasSameLocation(b, NewVincenty(), tt.allowed)
			if err != nil {
				t.Fatalf("HasSameLocation() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasSameLocation() = %v, want %v", got, tt.want)
			}
		})
	}
}
