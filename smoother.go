package tablz

import (
	"context"
	"fmt"
)

// Defaults shared by the robust z-score smoothers.
const (
	// defaultMaxZScore is the z-score magnitude beyond which a value is
	// treated as an outlier.
	defaultMaxZScore = 3.0
	// defaultZeroThreshold is the magnitude below which a MAD is
	// considered zero.
	defaultZeroThreshold = 1e-5
	// defaultMADFill replaces a zero MAD so z-scores stay finite.
	defaultMADFill = 1e-4
)

// Smoother clamps outliers in a numeric column using the median/MAD
// z-score. Values whose robust z-score exceeds the threshold are pulled
// back to median ± maxZScore*MAD, everything else passes through
// unchanged. The median and MAD are learned at fit time.
type Smoother struct {
	maxZScore     float64
	zeroThreshold float64
	fillValue     float64
	median        float64
	mad           float64
	isFit         bool
}

// NewSmoother creates an unfitted Smoother with a z-score threshold of
// 3.0.
func NewSmoother() *Smoother {
	return &Smoother{
		maxZScore:     defaultMaxZScore,
		zeroThreshold: defaultZeroThreshold,
		fillValue:     defaultMADFill,
	}
}

// WithMaxZScore sets the z-score magnitude beyond which values are
// clamped. Defaults to 3.0.
func (sm *Smoother) WithMaxZScore(z float64) *Smoother {
	sm.maxZScore = z
	return sm
}

// WithZeroThreshold sets the magnitude below which a fitted MAD is
// considered zero and replaced by the fill value. Defaults to 1e-5.
func (sm *Smoother) WithZeroThreshold(t float64) *Smoother {
	sm.zeroThreshold = t
	return sm
}

// WithFillValue sets the replacement for a zero MAD. Defaults to 1e-4.
func (sm *Smoother) WithFillValue(v float64) *Smoother {
	sm.fillValue = v
	return sm
}

// Name identifies the transformer in errors and events.
func (sm *Smoother) Name() Name { return "smoother" }

// RequiresFit reports true: clamping needs the fitted median and MAD.
func (sm *Smoother) RequiresFit() bool { return true }

// Fitted reports whether a successful Fit has happened.
func (sm *Smoother) Fitted() bool { return sm.isFit }

// Clone returns an unfitted copy with the same configuration.
func (sm *Smoother) Clone() ColumnTransformer {
	return &Smoother{
		maxZScore:     sm.maxZScore,
		zeroThreshold: sm.zeroThreshold,
		fillValue:     sm.fillValue,
	}
}

// Fit learns the column's median and MAD. A MAD below the zero
// threshold is replaced with the fill value so transform never divides
// by zero. A column with no usable values fails with ErrAllNull.
func (sm *Smoother) Fit(_ context.Context, s Series) error {
	med, err := s.Median()
	if err != nil {
		return fmt.Errorf("smoother: %w", err)
	}
	mad, err := s.MAD()
	if err != nil {
		return fmt.Errorf("smoother: %w", err)
	}
	if mad < sm.zeroThreshold {
		mad = sm.fillValue
	}
	sm.median, sm.mad = med, mad
	sm.isFit = true
	return nil
}

// Transform clamps outliers to median ± maxZScore*MAD, preserving
// missing entries and the column's declared type.
func (sm *Smoother) Transform(_ context.Context, s Series) (Series, error) {
	if !sm.isFit {
		return Series{}, fmt.Errorf("smoother: %w", ErrNotFitted)
	}
	denom := sm.mad*madConsistency + stabilizer
	out, err := s.mapValid(func(x float64) float64 {
		z := (x - sm.median) / denom
		switch {
		case z >= sm.maxZScore:
			return sm.median + sm.maxZScore*sm.mad
		case z <= -sm.maxZScore:
			return sm.median - sm.maxZScore*sm.mad
		default:
			return x
		}
	})
	if err != nil {
		return Series{}, fmt.Errorf("smoother: %w", err)
	}
	return out, nil
}

// RollingZScore computes the robust z-score of each value against a
// rolling median and rolling MAD over the given window. It returns the
// z-score series plus the rolling median and MAD series it was computed
// from, named "z_score", "rolling_median", and "rolling_mad". Rows
// whose window holds fewer than minSamples non-missing values are
// missing in all three outputs.
func RollingZScore(s Series, window, minSamples int, center bool) (z, med, mad Series, err error) {
	return rollingZScore(s, window, minSamples, center, defaultZeroThreshold, defaultMADFill)
}

func rollingZScore(s Series, window, minSamples int, center bool, zeroThreshold, fillValue float64) (z, med, mad Series, err error) {
	med, err = s.RollingMedian(window, minSamples, center)
	if err != nil {
		return Series{}, Series{}, Series{}, err
	}

	// Absolute deviation from the rolling median, then its own rolling
	// median: the rolling MAD.
	dev := s.clone()
	for i := range dev.valid {
		if !s.valid[i] || !med.valid[i] {
			dev.setNull(i)
			continue
		}
		d := s.floats[i] - med.floats[i]
		if d < 0 {
			d = -d
		}
		dev.floats[i] = d
	}
	mad, err = dev.RollingMedian(window, minSamples, center)
	if err != nil {
		return Series{}, Series{}, Series{}, err
	}
	for i := range mad.valid {
		if mad.valid[i] && mad.floats[i] > -zeroThreshold && mad.floats[i] < zeroThreshold {
			mad.floats[i] = fillValue
		}
	}

	z = s.clone()
	for i := range z.valid {
		if !s.valid[i] || !med.valid[i] || !mad.valid[i] {
			z.setNull(i)
			continue
		}
		z.floats[i] = (s.floats[i] - med.floats[i]) / (mad.floats[i]*madConsistency + stabilizer)
	}
	return z.Rename("z_score"), med.Rename("rolling_median"), mad.Rename("rolling_mad"), nil
}

// RollingSmoother clamps outliers against a rolling median and rolling
// MAD instead of whole-column statistics, which tracks regime changes
// in long series. It derives all state from its input and needs no
// fitting.
type RollingSmoother struct {
	window        int
	minSamples    int
	maxZScore     float64
	zeroThreshold float64
	fillValue     float64
	center        bool
}

// NewRollingSmoother creates a RollingSmoother with the given window
// size and a z-score threshold of 3.0. Window sizes below 1 are clamped
// to 1.
func NewRollingSmoother(window int) *RollingSmoother {
	if window < 1 {
		window = 1
	}
	return &RollingSmoother{
		window:        window,
		minSamples:    1,
		maxZScore:     defaultMaxZScore,
		zeroThreshold: defaultZeroThreshold,
		fillValue:     defaultMADFill,
	}
}

// WithMinSamples sets the minimum number of non-missing values a window
// must contain. Defaults to 1.
func (r *RollingSmoother) WithMinSamples(n int) *RollingSmoother {
	if n < 1 {
		n = 1
	}
	r.minSamples = n
	return r
}

// WithMaxZScore sets the z-score magnitude beyond which values are
// clamped. Defaults to 3.0.
func (r *RollingSmoother) WithMaxZScore(z float64) *RollingSmoother {
	r.maxZScore = z
	return r
}

// WithCenter centers the window on each row. Trailing windows are the
// default because they are safe for time-series data.
func (r *RollingSmoother) WithCenter(center bool) *RollingSmoother {
	r.center = center
	return r
}

// Name identifies the transformer in errors and events.
func (r *RollingSmoother) Name() Name { return "rolling_smoother" }

// RequiresFit reports false: the rolling statistics are derived from
// the column being transformed.
func (r *RollingSmoother) RequiresFit() bool { return false }

// Fitted reports true; there is no fitted state to be missing.
func (r *RollingSmoother) Fitted() bool { return true }

// Clone returns a copy with the same configuration.
func (r *RollingSmoother) Clone() ColumnTransformer {
	out := *r
	return &out
}

// Fit is a no-op for contract compatibility.
func (r *RollingSmoother) Fit(_ context.Context, _ Series) error { return nil }

// Transform clamps each value against its rolling median ±
// maxZScore*rolling MAD. Rows without enough window samples, and
// missing entries, pass through unchanged.
func (r *RollingSmoother) Transform(_ context.Context, s Series) (Series, error) {
	if !s.DType().IsNumeric() {
		return Series{}, fmt.Errorf("rolling smoother on %s series %q: %w", s.DType(), s.Name(), ErrNonNumeric)
	}
	z, med, mad, err := rollingZScore(s, r.window, r.minSamples, r.center, r.zeroThreshold, r.fillValue)
	if err != nil {
		return Series{}, fmt.Errorf("rolling smoother: %w", err)
	}
	out := s.clone()
	for i := range out.valid {
		if !out.valid[i] || !z.valid[i] {
			continue
		}
		switch {
		case z.floats[i] >= r.maxZScore:
			out.floats[i] = med.floats[i] + r.maxZScore*mad.floats[i]
		case z.floats[i] <= -r.maxZScore:
			out.floats[i] = med.floats[i] - r.maxZScore*mad.floats[i]
		}
	}
	return out.castBack(s.DType()), nil
}
