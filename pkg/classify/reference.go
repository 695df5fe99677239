package classify

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MinFitSamples is the smallest sample that Fit accepts.
const MinFitSamples = 7

// ErrSingular is returned when a covariance matrix cannot be inverted.
var ErrSingular = errors.New("classify: singular covariance matrix")

// Reference is the distribution of one vowel class.
type Reference struct {
	Mean   []float64
	InvCov *mat.Dense
}

// Distance returns the Mahalanobis distance from x to the reference mean.
func (r Reference) Distance(x []float64) (float64, error) {
	return Mahalanobis(x, r.Mean, r.InvCov)
}

// ReferenceSet maps Plotnik vowel classes to reference distributions.
type ReferenceSet map[string]Reference

// NewReferenceSet pairs means with inverse covariances. Classes missing
// either half are left out.
func NewReferenceSet(means map[string][]float64, invCovs map[string]*mat.Dense) (ReferenceSet, error) {
	set := make(ReferenceSet, len(means))
	for class, mean := range means {
		inv, ok := invCovs[class]
		if !ok {
			continue
		}
		if r, c := inv.Dims(); r != len(mean) || c != len(mean) {
			return nil, fmt.Errorf("%w: class %s has %d means and a %dx%d covariance", ErrDimension, class, len(mean), r, c)
		}
		set[class] = Reference{Mean: mean, InvCov: inv}
	}
	return set, nil
}

// LoadMeans reads tab-delimited lines of a class label followed by its mean
// values.
func LoadMeans(r io.Reader) (map[string][]float64, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read means: %w", err)
	}
	means := make(map[string][]float64, len(rows))
	for class, values := range rows {
		means[class] = values
	}
	return means, nil
}

// LoadCovariances reads tab-delimited lines of a class label followed by a
// row-major square covariance matrix, and returns the inverted matrices.
func LoadCovariances(r io.Reader) (map[string]*mat.Dense, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read covariances: %w", err)
	}
	invs := make(map[string]*mat.Dense, len(rows))
	for class, values := range rows {
		n := int(math.Round(math.Sqrt(float64(len(values)))))
		if n*n != len(values) || n == 0 {
			return nil, fmt.Errorf("%w: class %s has %d covariance values", ErrDimension, class, len(values))
		}
		inv, err := invert(mat.NewDense(n, n, values))
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", class, err)
		}
		invs[class] = inv
	}
	return invs, nil
}

func readTable(r io.Reader) (map[string][]float64, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	out := make(map[string][]float64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		values := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", record[0], err)
			}
			values = append(values, v)
		}
		out[strings.TrimSpace(record[0])] = values
	}
	return out, nil
}

func invert(m mat.Matrix) (*mat.Dense, error) {
	if mat.Det(m) == 0 {
		return nil, ErrSingular
	}
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
	}
	return &inv, nil
}

// Fit estimates a reference from observation vectors using the sample mean
// and the unbiased covariance. It reports false with fewer than
// MinFitSamples observations or a singular covariance.
func Fit(samples [][]float64) (Reference, bool) {
	if len(samples) < MinFitSamples {
		return Reference{}, false
	}
	dim := len(samples[0])
	data := mat.NewDense(len(samples), dim, nil)
	for i, s := range samples {
		if len(s) != dim {
			return Reference{}, false
		}
		data.SetRow(i, s)
	}

	mean := make([]float64, dim)
	for j := range dim {
		mean[j] = stat.Mean(mat.Col(nil, j, data), nil)
	}

	cov := mat.NewSymDense(dim, nil)
	stat.CovarianceMatrix(cov, data, nil)

	inv, err := invert(cov)
	if err != nil {
		return Reference{}, false
	}
	return Reference{Mean: mean, InvCov: inv}, true
}
