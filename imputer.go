package tablz

import (
	"context"
	"fmt"
)

// ImputeStrategy selects how an Imputer derives the value that replaces
// missing entries. The set is closed; there is no way to register
// additional strategies.
type ImputeStrategy int

const (
	// ImputeMean fills with the column mean learned at fit time.
	ImputeMean ImputeStrategy = iota + 1
	// ImputeMedian fills with the column median learned at fit time.
	ImputeMedian
	// ImputeMin fills with the column minimum learned at fit time.
	ImputeMin
	// ImputeMax fills with the column maximum learned at fit time.
	ImputeMax
	// ImputeZero fills with 0, or "0" for string columns.
	ImputeZero
	// ImputeOne fills with 1, or "1" for string columns.
	ImputeOne
	// ImputeForward propagates the previous non-missing value.
	ImputeForward
	// ImputeBackward propagates the next non-missing value.
	ImputeBackward
)

// String returns the strategy name.
func (s ImputeStrategy) String() string {
	switch s {
	case ImputeMean:
		return "mean"
	case ImputeMedian:
		return "median"
	case ImputeMin:
		return "min"
	case ImputeMax:
		return "max"
	case ImputeZero:
		return "zero"
	case ImputeOne:
		return "one"
	case ImputeForward:
		return "forward"
	case ImputeBackward:
		return "backward"
	default:
		return "unknown"
	}
}

// requiresFit reports whether the strategy learns its fill value from
// the fitted column. Forward and backward fills derive everything from
// the column being transformed.
func (s ImputeStrategy) requiresFit() bool {
	switch s {
	case ImputeForward, ImputeBackward:
		return false
	default:
		return true
	}
}

// Imputer replaces missing entries in a column, either with a constant
// value or with a value derived from the fitted column by a strategy.
// Exactly one of the two modes is chosen at construction: NewImputer
// for a strategy, NewValueImputer for a constant.
type Imputer struct {
	strategy ImputeStrategy
	value    any
	fitted   any
	isFit    bool
}

// NewImputer creates an Imputer that fills missing entries using the
// given strategy. An unknown strategy is a configuration error.
func NewImputer(strategy ImputeStrategy) (*Imputer, error) {
	if strategy < ImputeMean || strategy > ImputeBackward {
		return nil, fmt.Errorf("imputer: unknown strategy %d: %w", strategy, ErrConflictingConfig)
	}
	return &Imputer{strategy: strategy}, nil
}

// NewValueImputer creates an Imputer that fills missing entries with a
// constant. The value's Go type must fit the column it will be applied
// to: float64 or int for numeric columns, string for string columns.
func NewValueImputer(value any) (*Imputer, error) {
	switch value.(type) {
	case float64, int, int64, string:
		return &Imputer{value: value}, nil
	default:
		return nil, fmt.Errorf("imputer: unsupported fill value %T: %w", value, ErrConflictingConfig)
	}
}

// Name identifies the transformer in errors and events.
func (im *Imputer) Name() Name { return "imputer" }

// RequiresFit reports whether Transform depends on fitted state.
// Constant-value, forward, and backward imputers derive everything
// from their input.
func (im *Imputer) RequiresFit() bool {
	return im.value == nil && im.strategy.requiresFit()
}

// Fitted reports whether a successful Fit has happened.
func (im *Imputer) Fitted() bool { return im.isFit }

// Clone returns an unfitted copy carrying only configuration.
func (im *Imputer) Clone() ColumnTransformer {
	return &Imputer{strategy: im.strategy, value: im.value}
}

// Fit learns the fill value for statistical strategies. A column with
// no usable values fails with ErrAllNull; the failure propagates, it is
// never replaced by a default. Refitting overwrites the previous state.
func (im *Imputer) Fit(_ context.Context, s Series) error {
	if !im.RequiresFit() {
		im.isFit = true
		return nil
	}
	switch im.strategy {
	case ImputeMean:
		v, err := s.Mean()
		if err != nil {
			return fmt.Errorf("imputer: %w", err)
		}
		im.fitted = v
	case ImputeMedian:
		v, err := s.Median()
		if err != nil {
			return fmt.Errorf("imputer: %w", err)
		}
		im.fitted = v
	case ImputeMin:
		v, err := s.Min()
		if err != nil {
			return fmt.Errorf("imputer: %w", err)
		}
		im.fitted = v
	case ImputeMax:
		v, err := s.Max()
		if err != nil {
			return fmt.Errorf("imputer: %w", err)
		}
		im.fitted = v
	case ImputeZero:
		if s.DType() == String {
			im.fitted = "0"
		} else {
			im.fitted = 0.0
		}
	case ImputeOne:
		if s.DType() == String {
			im.fitted = "1"
		} else {
			im.fitted = 1.0
		}
	}
	im.isFit = true
	return nil
}

// Transform replaces missing entries, casting the result back to the
// column's declared type.
func (im *Imputer) Transform(_ context.Context, s Series) (Series, error) {
	switch {
	case im.value != nil:
		out, err := s.FillNull(im.value)
		if err != nil {
			return Series{}, fmt.Errorf("imputer: %w", err)
		}
		return out.castBack(s.DType()), nil
	case im.strategy == ImputeForward:
		return s.FillForward(), nil
	case im.strategy == ImputeBackward:
		return s.FillBackward(), nil
	default:
		if !im.isFit {
			return Series{}, fmt.Errorf("imputer[%s]: %w", im.strategy, ErrNotFitted)
		}
		out, err := s.FillNull(im.fitted)
		if err != nil {
			return Series{}, fmt.Errorf("imputer: %w", err)
		}
		return out.castBack(s.DType()), nil
	}
}

// RollingStrategy selects the rolling statistic used by RollingImputer.
type RollingStrategy int

const (
	// RollingMean fills from a rolling window mean.
	RollingMean RollingStrategy = iota
	// RollingMedian fills from a rolling window median.
	RollingMedian
	// RollingMin fills from a rolling window minimum.
	RollingMin
	// RollingMax fills from a rolling window maximum.
	RollingMax
)

// String returns the strategy name.
func (s RollingStrategy) String() string {
	switch s {
	case RollingMean:
		return "rolling_mean"
	case RollingMedian:
		return "rolling_median"
	case RollingMin:
		return "rolling_min"
	case RollingMax:
		return "rolling_max"
	default:
		return "unknown"
	}
}

// RollingImputer fills missing entries from a rolling statistic over
// the column itself, then linearly interpolates anything the window
// could not cover, forward-fills, and finally zero-fills. It derives
// all state from its input and needs no fitting.
type RollingImputer struct {
	strategy   RollingStrategy
	window     int
	minSamples int
	center     bool
}

// NewRollingImputer creates a RollingImputer with the given window size
// and statistic. Window sizes below 1 are clamped to 1.
func NewRollingImputer(window int, strategy RollingStrategy) *RollingImputer {
	if window < 1 {
		window = 1
	}
	return &RollingImputer{strategy: strategy, window: window, minSamples: 1}
}

// WithMinSamples sets the minimum number of non-missing values a window
// must contain before the statistic is computed. Defaults to 1.
func (r *RollingImputer) WithMinSamples(n int) *RollingImputer {
	if n < 1 {
		n = 1
	}
	r.minSamples = n
	return r
}

// WithCenter centers the window on each row instead of ending it there.
// Trailing windows are the default because they are safe for
// time-series data.
func (r *RollingImputer) WithCenter(center bool) *RollingImputer {
	r.center = center
	return r
}

// Name identifies the transformer in errors and events.
func (r *RollingImputer) Name() Name { return "rolling_imputer" }

// RequiresFit reports false: the rolling statistic is derived from the
// column being transformed.
func (r *RollingImputer) RequiresFit() bool { return false }

// Fitted reports true; there is no fitted state to be missing.
func (r *RollingImputer) Fitted() bool { return true }

// Clone returns a copy with the same configuration.
func (r *RollingImputer) Clone() ColumnTransformer {
	out := *r
	return &out
}

// Fit is a no-op for contract compatibility.
func (r *RollingImputer) Fit(_ context.Context, _ Series) error { return nil }

// Transform fills missing entries from the rolling statistic and
// resolves the remainder with interpolation, forward fill, and a final
// zero fill, so the output never contains missing entries.
func (r *RollingImputer) Transform(_ context.Context, s Series) (Series, error) {
	var stat Series
	var err error
	switch r.strategy {
	case RollingMedian:
		stat, err = s.RollingMedian(r.window, r.minSamples, r.center)
	case RollingMin:
		stat, err = s.RollingMin(r.window, r.minSamples, r.center)
	case RollingMax:
		stat, err = s.RollingMax(r.window, r.minSamples, r.center)
	default:
		stat, err = s.RollingMean(r.window, r.minSamples, r.center)
	}
	if err != nil {
		return Series{}, fmt.Errorf("rolling imputer: %w", err)
	}
	out := s.coalesce(stat)
	out, err = out.Interpolate()
	if err != nil {
		return Series{}, fmt.Errorf("rolling imputer: %w", err)
	}
	out = out.FillForward()
	out, err = out.FillNull(0.0)
	if err != nil {
		return Series{}, fmt.Errorf("rolling imputer: %w", err)
	}
	return out.castBack(s.DType()), nil
}
