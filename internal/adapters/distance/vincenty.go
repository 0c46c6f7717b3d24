package distance

import (
	"math"

	"github.com/jobrunner/locus/internal/domain"
)

// DefaultMaxIterations bounds the lambda iteration of Vincenty.
const DefaultMaxIterations = 200

// convergence is the lambda change below which the iteration stops (~0.06 mm).
const convergence = 1e-12

// Vincenty computes geodesic distances on the ellipsoid with Vincenty's
// inverse formula. Nearly antipodal points may not converge.
type Vincenty struct {
	maxIterations int
}

// NewVincenty creates a Vincenty calculator.
func NewVincenty() Vincenty {
	return Vincenty{maxIterations: DefaultMaxIterations}
}

// WithMaxIterations returns a copy using n iterations at most.
func (v Vincenty) WithMaxIterations(n int) Vincenty {
	v.maxIterations = n
	return v
}

// Distance returns the distance between a and b in meters, or
// domain.ErrNotConverging if the iteration limit is reached.
func (v Vincenty) Distance(a, b domain.Coordinate) (float64, error) {
	if a.Ellipsoid() != b.Ellipsoid() {
		return 0, domain.ErrEllipsoidMismatch
	}
	if a.Equals(b) {
		return 0, nil
	}

	maxIterations := v.maxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	e := a.Ellipsoid()
	f := e.F()
	majorAxis := e.A()
	minorAxis := e.B()

	lat1 := toRad(a.Lat())
	lat2 := toRad(b.Lat())
	l := toRad(b.Lng() - a.Lng())

	u1 := math.Atan((1 - f) * math.Tan(lat1))
	u2 := math.Atan((1 - f) * math.Tan(lat2))
	sinU1, cosU1 := math.Sin(u1), math.Cos(u1)
	sinU2, cosU2 := math.Sin(u2), math.Cos(u2)

	var (
		sinSigma, cosSigma, sigma float64
		cosSqAlpha, cos2SigmaM    float64
	)

	lambda := l
	converged := false
	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sin(lambda), math.Cos(lambda)

		sinSigma = math.Sqrt((cosU2*sinLambda)*(cosU2*sinLambda) +
			(cosU1*sinU2-sinU1*cosU2*cosLambda)*(cosU1*sinU2-sinU1*cosU2*cosLambda))
		if sinSigma == 0 {
			return 0, nil
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha

		// Equatorial line: cosSqAlpha is zero.
		cos2SigmaM = 0
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		c := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
		prev := lambda
		lambda = l + (1-c)*f*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < convergence {
			converged = true
			break
		}
	}
	if !converged {
		return 0, domain.ErrNotConverging
	}

	uSq := cosSqAlpha * (majorAxis*majorAxis - minorAxis*minorAxis) / (minorAxis * minorAxis)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
		(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return minorAxis * bigA * (sigma - deltaSigma), nil
}
