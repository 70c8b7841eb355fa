package tablz

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary statistics over a Series, computed on the non-missing values
// only. Every statistic fails with ErrAllNull when the column holds no
// usable values and ErrNonNumeric for non-numeric columns; fits
// propagate those failures rather than substituting defaults.

// Min returns the smallest non-missing value.
func (s Series) Min() (float64, error) {
	vals, err := s.statValues("min")
	if err != nil {
		return 0, err
	}
	return floats.Min(vals), nil
}

// Max returns the largest non-missing value.
func (s Series) Max() (float64, error) {
	vals, err := s.statValues("max")
	if err != nil {
		return 0, err
	}
	return floats.Max(vals), nil
}

// Mean returns the arithmetic mean of the non-missing values.
func (s Series) Mean() (float64, error) {
	vals, err := s.statValues("mean")
	if err != nil {
		return 0, err
	}
	return stat.Mean(vals, nil), nil
}

// Std returns the sample standard deviation of the non-missing values.
func (s Series) Std() (float64, error) {
	vals, err := s.statValues("std")
	if err != nil {
		return 0, err
	}
	if len(vals) < 2 {
		return 0, nil
	}
	return stat.StdDev(vals, nil), nil
}

// Median returns the median of the non-missing values, interpolating
// between the two central values for even counts.
func (s Series) Median() (float64, error) {
	vals, err := s.statValues("median")
	if err != nil {
		return 0, err
	}
	return median(vals), nil
}

// MAD returns the median absolute deviation of the non-missing values,
// the robust spread measure used by the outlier smoothers.
func (s Series) MAD() (float64, error) {
	vals, err := s.statValues("mad")
	if err != nil {
		return 0, err
	}
	med := median(vals)
	devs := make([]float64, len(vals))
	for i, v := range vals {
		devs[i] = math.Abs(v - med)
	}
	return median(devs), nil
}

func (s Series) statValues(op string) ([]float64, error) {
	if !s.dtype.IsNumeric() {
		return nil, fmt.Errorf("%s of %s series %q: %w", op, s.dtype, s.name, ErrNonNumeric)
	}
	vals := s.validFloats()
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s of series %q: %w", op, s.name, ErrAllNull)
	}
	return vals, nil
}

// Helpers shared with the rolling window implementation. Each operates
// on a non-empty window of non-missing values.

func mean(vals []float64) float64 {
	return stat.Mean(vals, nil)
}

// median is the midpoint median: the central value for odd counts, the
// mean of the two central values for even counts. gonum's quantile
// conventions interpolate the empirical CDF instead, which is not what
// the imputers and smoothers are calibrated against.
func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func minimum(vals []float64) float64 {
	return floats.Min(vals)
}

func maximum(vals []float64) float64 {
	return floats.Max(vals)
}
