package tablz

import (
	"context"
	"fmt"
)

// Lag shifts a column by a lag period, producing past values as a
// feature for forecasting models. Positive lags shift toward the past,
// negative lags toward the future. It derives all state from its input
// and needs no fitting.
type Lag struct {
	lag  int
	fill *float64
}

// NewLag creates a Lag transformer for the given lag period.
func NewLag(lag int) *Lag {
	return &Lag{lag: lag}
}

// WithFillValue fills the positions vacated by the shift instead of
// leaving them missing. Only numeric columns accept a fill value.
func (l *Lag) WithFillValue(v float64) *Lag {
	l.fill = &v
	return l
}

// Name identifies the transformer in errors and events.
func (l *Lag) Name() Name { return "lag" }

// RequiresFit reports false: shifting needs no learned state.
func (l *Lag) RequiresFit() bool { return false }

// Fitted reports true; there is no fitted state to be missing.
func (l *Lag) Fitted() bool { return true }

// Clone returns a copy with the same configuration.
func (l *Lag) Clone() ColumnTransformer {
	out := *l
	return &out
}

// Fit is a no-op for contract compatibility.
func (l *Lag) Fit(_ context.Context, _ Series) error { return nil }

// Transform shifts the column by the lag period, filling vacated
// positions when a fill value is configured.
func (l *Lag) Transform(_ context.Context, s Series) (Series, error) {
	out := s.Shift(l.lag)
	if l.fill != nil {
		filled, err := out.FillNull(*l.fill)
		if err != nil {
			return Series{}, fmt.Errorf("lag: %w", err)
		}
		out = filled
	}
	return out, nil
}

// Diff applies differencing to a column for stationarity: each pass
// replaces x[t] with x[t] - x[t-periods], repeated order times. Fit
// captures the leading raw values of every pass so InverseTransform
// can reconstruct the original scale.
type Diff struct {
	order   int
	periods int
	initial []Series
	isFit   bool
}

// NewDiff creates a Diff transformer. Order is the number of
// differencing passes; periods is the shift within each pass (use the
// season length for seasonal differencing). Both must be at least 1.
func NewDiff(order, periods int) (*Diff, error) {
	if order < 1 {
		return nil, fmt.Errorf("diff: order must be at least 1: %w", ErrConflictingConfig)
	}
	if periods < 1 {
		return nil, fmt.Errorf("diff: periods must be at least 1: %w", ErrConflictingConfig)
	}
	return &Diff{order: order, periods: periods}, nil
}

// Name identifies the transformer in errors and events.
func (d *Diff) Name() Name { return "diff" }

// RequiresFit reports true: inversion state is captured at fit time and
// Transform is guarded to keep fit and apply paired.
func (d *Diff) RequiresFit() bool { return true }

// Fitted reports whether a successful Fit has happened.
func (d *Diff) Fitted() bool { return d.isFit }

// Clone returns an unfitted copy with the same configuration.
func (d *Diff) Clone() ColumnTransformer {
	return &Diff{order: d.order, periods: d.periods}
}

// Fit stores the leading values ahead of each differencing pass. Pass k
// starts with k*periods missing rows, so its seed has to reach
// (k+1)*periods rows for integration to find a valid base.
// Refitting overwrites the previous state.
func (d *Diff) Fit(_ context.Context, s Series) error {
	initial := make([]Series, 0, d.order)
	current := s
	for pass := range d.order {
		initial = append(initial, current.Head((pass+1)*d.periods))
		next, err := current.Diff(d.periods)
		if err != nil {
			return fmt.Errorf("diff: %w", err)
		}
		current = next
	}
	d.initial = initial
	d.isFit = true
	return nil
}

// Transform applies order differencing passes to the column.
func (d *Diff) Transform(_ context.Context, s Series) (Series, error) {
	if !d.isFit {
		return Series{}, fmt.Errorf("diff: %w", ErrNotFitted)
	}
	out := s
	for range d.order {
		next, err := out.Diff(d.periods)
		if err != nil {
			return Series{}, fmt.Errorf("diff: %w", err)
		}
		out = next
	}
	return out, nil
}

// InverseTransform reconstructs the original scale from a differenced
// column, seeding each integration pass with the raw values captured at
// fit time. It fails with ErrNotFitted before a successful Fit.
func (d *Diff) InverseTransform(_ context.Context, s Series) (Series, error) {
	if !d.isFit {
		return Series{}, fmt.Errorf("diff: %w", ErrNotFitted)
	}
	if !s.DType().IsNumeric() {
		return Series{}, fmt.Errorf("diff inverse on %s series %q: %w", s.DType(), s.Name(), ErrNonNumeric)
	}
	out := s
	for pass := d.order - 1; pass >= 0; pass-- {
		out = integrate(out, d.initial[pass], d.periods)
	}
	return out.castBack(s.DType()), nil
}

// integrate undoes one differencing pass: rows covered by the seed come
// from the captured values, every later row is the cumulative sum
// out[i-periods] + diff[i].
func integrate(diff, seed Series, periods int) Series {
	out := diff.clone()
	for i := 0; i < out.Len(); i++ {
		if i < seed.Len() {
			if seed.valid[i] {
				out.setFloat(i, seed.floats[i])
			} else {
				out.setNull(i)
			}
			continue
		}
		if !out.valid[i-periods] || !diff.valid[i] {
			out.setNull(i)
			continue
		}
		out.setFloat(i, out.floats[i-periods]+diff.floats[i])
	}
	return out
}
