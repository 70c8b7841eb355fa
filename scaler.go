package tablz

import (
	"context"
	"fmt"
)

// stabilizer keeps scale denominators away from zero so constant
// columns scale to zero instead of dividing by zero.
const stabilizer = 1e-8

// madConsistency rescales the median absolute deviation to estimate the
// standard deviation of normally distributed data.
const madConsistency = 1.4826

// MinMaxScaler scales a numeric column into [0, 1] using the minimum
// and maximum learned at fit time. Missing entries pass through
// untouched. The denominator carries a small stabilizer, so outputs can
// exceed the unit interval by a sliver on constant columns.
type MinMaxScaler struct {
	min   float64
	max   float64
	isFit bool
}

// NewMinMaxScaler creates an unfitted MinMaxScaler.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{}
}

// Name identifies the transformer in errors and events.
func (m *MinMaxScaler) Name() Name { return "minmax_scaler" }

// RequiresFit reports true: scaling needs the fitted min and max.
func (m *MinMaxScaler) RequiresFit() bool { return true }

// Fitted reports whether a successful Fit has happened.
func (m *MinMaxScaler) Fitted() bool { return m.isFit }

// Clone returns an unfitted copy.
func (m *MinMaxScaler) Clone() ColumnTransformer { return &MinMaxScaler{} }

// Fit learns the column's minimum and maximum. A column with no usable
// values fails with ErrAllNull.
func (m *MinMaxScaler) Fit(_ context.Context, s Series) error {
	mn, err := s.Min()
	if err != nil {
		return fmt.Errorf("minmax scaler: %w", err)
	}
	mx, err := s.Max()
	if err != nil {
		return fmt.Errorf("minmax scaler: %w", err)
	}
	m.min, m.max = mn, mx
	m.isFit = true
	return nil
}

// Transform scales each value to (x - min) / (max - min + stabilizer),
// preserving missing entries and the column's declared type.
func (m *MinMaxScaler) Transform(_ context.Context, s Series) (Series, error) {
	if !m.isFit {
		return Series{}, fmt.Errorf("minmax scaler: %w", ErrNotFitted)
	}
	span := m.max - m.min + stabilizer
	out, err := s.mapValid(func(x float64) float64 {
		return (x - m.min) / span
	})
	if err != nil {
		return Series{}, fmt.Errorf("minmax scaler: %w", err)
	}
	return out, nil
}

// StandardScaler scales a numeric column to zero mean and unit variance
// using the mean and standard deviation learned at fit time.
type StandardScaler struct {
	mean  float64
	std   float64
	isFit bool
}

// NewStandardScaler creates an unfitted StandardScaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Name identifies the transformer in errors and events.
func (st *StandardScaler) Name() Name { return "standard_scaler" }

// RequiresFit reports true: scaling needs the fitted mean and std.
func (st *StandardScaler) RequiresFit() bool { return true }

// Fitted reports whether a successful Fit has happened.
func (st *StandardScaler) Fitted() bool { return st.isFit }

// Clone returns an unfitted copy.
func (st *StandardScaler) Clone() ColumnTransformer { return &StandardScaler{} }

// Fit learns the column's mean and sample standard deviation. A column
// with no usable values fails with ErrAllNull.
func (st *StandardScaler) Fit(_ context.Context, s Series) error {
	mean, err := s.Mean()
	if err != nil {
		return fmt.Errorf("standard scaler: %w", err)
	}
	std, err := s.Std()
	if err != nil {
		return fmt.Errorf("standard scaler: %w", err)
	}
	st.mean, st.std = mean, std
	st.isFit = true
	return nil
}

// Transform scales each value to (x - mean) / (std + stabilizer),
// preserving missing entries and the column's declared type.
func (st *StandardScaler) Transform(_ context.Context, s Series) (Series, error) {
	if !st.isFit {
		return Series{}, fmt.Errorf("standard scaler: %w", ErrNotFitted)
	}
	denom := st.std + stabilizer
	out, err := s.mapValid(func(x float64) float64 {
		return (x - st.mean) / denom
	})
	if err != nil {
		return Series{}, fmt.Errorf("standard scaler: %w", err)
	}
	return out, nil
}

// RobustScaler scales a numeric column using the median and the median
// absolute deviation learned at fit time, so a handful of outliers
// cannot dominate the scale the way they can with StandardScaler.
type RobustScaler struct {
	median float64
	mad    float64
	isFit  bool
}

// NewRobustScaler creates an unfitted RobustScaler.
func NewRobustScaler() *RobustScaler {
	return &RobustScaler{}
}

// Name identifies the transformer in errors and events.
func (r *RobustScaler) Name() Name { return "robust_scaler" }

// RequiresFit reports true: scaling needs the fitted median and MAD.
func (r *RobustScaler) RequiresFit() bool { return true }

// Fitted reports whether a successful Fit has happened.
func (r *RobustScaler) Fitted() bool { return r.isFit }

// Clone returns an unfitted copy.
func (r *RobustScaler) Clone() ColumnTransformer { return &RobustScaler{} }

// Fit learns the column's median and median absolute deviation. A
// column with no usable values fails with ErrAllNull.
func (r *RobustScaler) Fit(_ context.Context, s Series) error {
	med, err := s.Median()
	if err != nil {
		return fmt.Errorf("robust scaler: %w", err)
	}
	mad, err := s.MAD()
	if err != nil {
		return fmt.Errorf("robust scaler: %w", err)
	}
	r.median, r.mad = med, mad
	r.isFit = true
	return nil
}

// Transform scales each value to (x - median) / (MAD*1.4826 +
// stabilizer), preserving missing entries and the column's declared
// type.
func (r *RobustScaler) Transform(_ context.Context, s Series) (Series, error) {
	if !r.isFit {
		return Series{}, fmt.Errorf("robust scaler: %w", ErrNotFitted)
	}
	denom := r.mad*madConsistency + stabilizer
	out, err := s.mapValid(func(x float64) float64 {
		return (x - r.median) / denom
	})
	if err != nil {
		return Series{}, fmt.Errorf("robust scaler: %w", err)
	}
	return out, nil
}
