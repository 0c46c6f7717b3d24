// Package format provides text renderings of coordinates.
package format

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jobrunner/locus/internal/domain"
)

// DecimalDegrees renders "lat<sep>lng" with a fixed number of digits.
type DecimalDegrees struct {
	Separator string
	Digits    int
}

// NewDecimalDegrees returns the default "52.50000 13.40000" rendering.
func NewDecimalDegrees() DecimalDegrees {
	return DecimalDegrees{Separator: " ", Digits: 5}
}

// Format implements domain.Formatter.
func (f DecimalDegrees) Format(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lat(), 'f', f.Digits, 64) +
		f.Separator +
		strconv.FormatFloat(c.Lng(), 'f', f.Digits, 64)
}

// DMS renders degrees, minutes and seconds.
type DMS struct {
	Separator       string
	CardinalLetters bool
}

// NewDMS returns the default rendering with cardinal letters,
// e.g. "52° 30′ 00″ N 013° 24′ 00″ E".
func NewDMS() DMS {
	return DMS{Separator: " ", CardinalLetters: true}
}

// Format implements domain.Formatter.
func (f DMS) Format(c domain.Coordinate) string {
	lat := f.part(c.Lat(), 2, "N", "S")
	lng := f.part(c.Lng(), 3, "E", "W")
	return lat + f.Separator + lng
}

func (f DMS) part(v float64, width int, positive, negative string) string {
	total := int(math.Round(math.Abs(v) * 3600))
	deg := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if !f.CardinalLetters {
		sign := ""
		if v < 0 && total > 0 {
			sign = "-"
		}
		return fmt.Sprintf("%s%0*d° %02d′ %02d″", sign, width, deg, minutes, seconds)
	}

	letter := positive
	if v < 0 {
		letter = negative
	}
	return fmt.Sprintf("%0*d° %02d′ %02d″ %s", width, deg, minutes, seconds, letter)
}
