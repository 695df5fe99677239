// Package classify chooses between candidate formant analyses by Mahalanobis
// distance to per-class reference distributions.
package classify

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimension is returned when vector and matrix sizes disagree.
	ErrDimension = errors.New("classify: dimension mismatch")

	// ErrNegativeForm is returned when the quadratic form is negative, which
	// means the inverse covariance is not positive semi-definite.
	ErrNegativeForm = errors.New("classify: negative quadratic form")
)

// tolerance for rounding noise in the quadratic form
const formEpsilon = 1e-9

// Mahalanobis returns sqrt((x-mean)ᵀ inv (x-mean)).
func Mahalanobis(x, mean []float64, inv mat.Matrix) (float64, error) {
	if len(x) != len(mean) {
		return 0, fmt.Errorf("%w: vector %d, mean %d", ErrDimension, len(x), len(mean))
	}
	r, c := inv.Dims()
	if r != len(x) || c != len(x) {
		return 0, fmt.Errorf("%w: vector %d, matrix %dx%d", ErrDimension, len(x), r, c)
	}

	diff := mat.NewVecDense(len(x), nil)
	for i := range x {
		diff.SetVec(i, x[i]-mean[i])
	}

	q := mat.Inner(diff, inv, diff)
	if q < 0 {
		if q > -formEpsilon {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %g", ErrNegativeForm, q)
	}
	return math.Sqrt(q), nil
}
