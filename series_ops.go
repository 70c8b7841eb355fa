package tablz

import (
	"fmt"
	"time"
)

// Shift returns the series moved by n positions. Positive n shifts
// toward the past (the value at row i comes from row i-n), negative n
// shifts forward. Vacated positions become missing.
func (s Series) Shift(n int) Series {
	out := s.clone()
	length := s.Len()
	for i := 0; i < length; i++ {
		j := i - n
		if j < 0 || j >= length || !s.valid[j] {
			out.setNull(i)
			continue
		}
		out.valid[i] = true
		switch s.dtype {
		case Float64, Int64:
			out.floats[i] = s.floats[j]
		case String:
			out.strs[i] = s.strs[j]
		case Time:
			out.times[i] = s.times[j]
		}
	}
	return out
}

// Diff returns the discrete difference x[i] - x[i-periods]. The first
// periods rows, and any row whose operand is missing, become missing.
// Only numeric series can be differenced.
func (s Series) Diff(periods int) (Series, error) {
	if !s.dtype.IsNumeric() {
		return Series{}, fmt.Errorf("diff on %s series %q: %w", s.dtype, s.name, ErrNonNumeric)
	}
	out := s.clone()
	for i := s.Len() - 1; i >= 0; i-- {
		j := i - periods
		if j < 0 || !s.valid[i] || !s.valid[j] {
			out.setNull(i)
			continue
		}
		out.floats[i] = s.floats[i] - s.floats[j]
	}
	return out, nil
}

// FillNull returns the series with missing entries replaced by value.
// The value's Go type must match the series type: float64 or int for
// numeric series, string for string series, time.Time for time series.
func (s Series) FillNull(value any) (Series, error) {
	out := s.clone()
	switch v := value.(type) {
	case float64:
		if !s.dtype.IsNumeric() {
			return Series{}, fmt.Errorf("fill %s series %q with float: %w", s.dtype, s.name, ErrNonNumeric)
		}
		for i, ok := range out.valid {
			if !ok {
				out.setFloat(i, v)
			}
		}
	case int:
		return s.FillNull(float64(v))
	case int64:
		return s.FillNull(float64(v))
	case string:
		if s.dtype != String {
			return Series{}, fmt.Errorf("fill %s series %q with string: %w", s.dtype, s.name, ErrConflictingConfig)
		}
		for i, ok := range out.valid {
			if !ok {
				out.valid[i] = true
				out.strs[i] = v
			}
		}
	case time.Time:
		if s.dtype != Time {
			return Series{}, fmt.Errorf("fill %s series %q with time: %w", s.dtype, s.name, ErrConflictingConfig)
		}
		for i, ok := range out.valid {
			if !ok {
				out.valid[i] = true
				out.times[i] = v
			}
		}
	default:
		return Series{}, fmt.Errorf("fill series %q with %T: %w", s.name, value, ErrConflictingConfig)
	}
	return out, nil
}

// FillForward replaces each missing entry with the most recent
// non-missing value before it. Leading missing entries are untouched.
func (s Series) FillForward() Series {
	out := s.clone()
	last := -1
	for i := 0; i < s.Len(); i++ {
		if s.valid[i] {
			last = i
			continue
		}
		if last < 0 {
			continue
		}
		out.valid[i] = true
		switch s.dtype {
		case Float64, Int64:
			out.floats[i] = s.floats[last]
		case String:
			out.strs[i] = s.strs[last]
		case Time:
			out.times[i] = s.times[last]
		}
	}
	return out
}

// FillBackward replaces each missing entry with the next non-missing
// value after it. Trailing missing entries are untouched.
func (s Series) FillBackward() Series {
	out := s.clone()
	next := -1
	for i := s.Len() - 1; i >= 0; i-- {
		if s.valid[i] {
			next = i
			continue
		}
		if next < 0 {
			continue
		}
		out.valid[i] = true
		switch s.dtype {
		case Float64, Int64:
			out.floats[i] = s.floats[next]
		case String:
			out.strs[i] = s.strs[next]
		case Time:
			out.times[i] = s.times[next]
		}
	}
	return out
}

// Interpolate fills interior gaps of a numeric series linearly between
// the surrounding non-missing values. Leading and trailing gaps are
// left missing.
func (s Series) Interpolate() (Series, error) {
	if !s.dtype.IsNumeric() {
		return Series{}, fmt.Errorf("interpolate %s series %q: %w", s.dtype, s.name, ErrNonNumeric)
	}
	out := s.clone()
	prev := -1
	for i := 0; i < s.Len(); i++ {
		if !s.valid[i] {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (s.floats[i] - s.floats[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				out.setFloat(j, s.floats[prev]+step*float64(j-prev))
			}
		}
		prev = i
	}
	return out, nil
}

// coalesce takes the value from other wherever s is missing. Both
// series must share dtype and length; callers guarantee that.
func (s Series) coalesce(other Series) Series {
	out := s.clone()
	for i, ok := range out.valid {
		if ok || !other.valid[i] {
			continue
		}
		out.valid[i] = true
		switch s.dtype {
		case Float64, Int64:
			out.floats[i] = other.floats[i]
		case String:
			out.strs[i] = other.strs[i]
		case Time:
			out.times[i] = other.times[i]
		}
	}
	return out
}

// mapValid applies fn to every non-missing value of a numeric series,
// leaving missing entries untouched, and casts the result back to the
// series' declared type.
func (s Series) mapValid(fn func(float64) float64) (Series, error) {
	if !s.dtype.IsNumeric() {
		return Series{}, fmt.Errorf("numeric transform on %s series %q: %w", s.dtype, s.name, ErrNonNumeric)
	}
	out := s.clone()
	for i, ok := range out.valid {
		if ok {
			out.floats[i] = fn(out.floats[i])
		}
	}
	return out.castBack(s.dtype), nil
}

// RollingMean returns the mean over a trailing window of the given
// size. A row's window must contain at least minSamples non-missing
// values or the row becomes missing. With center set, the window is
// centered on the row instead of ending at it.
func (s Series) RollingMean(window, minSamples int, center bool) (Series, error) {
	return s.rolling(window, minSamples, center, mean)
}

// RollingMedian returns the median over a rolling window. See
// RollingMean for window semantics.
func (s Series) RollingMedian(window, minSamples int, center bool) (Series, error) {
	return s.rolling(window, minSamples, center, median)
}

// RollingMin returns the minimum over a rolling window. See
// RollingMean for window semantics.
func (s Series) RollingMin(window, minSamples int, center bool) (Series, error) {
	return s.rolling(window, minSamples, center, minimum)
}

// RollingMax returns the maximum over a rolling window. See
// RollingMean for window semantics.
func (s Series) RollingMax(window, minSamples int, center bool) (Series, error) {
	return s.rolling(window, minSamples, center, maximum)
}

func (s Series) rolling(window, minSamples int, center bool, stat func([]float64) float64) (Series, error) {
	if !s.dtype.IsNumeric() {
		return Series{}, fmt.Errorf("rolling statistic on %s series %q: %w", s.dtype, s.name, ErrNonNumeric)
	}
	if window < 1 {
		window = 1
	}
	if minSamples < 1 {
		minSamples = 1
	}
	out := s.clone()
	length := s.Len()
	buf := make([]float64, 0, window)
	for i := 0; i < length; i++ {
		end := i
		if center {
			end = i + window/2
		}
		start := end - window + 1
		if start < 0 {
			start = 0
		}
		if end >= length {
			end = length - 1
		}
		buf = buf[:0]
		for j := start; j <= end; j++ {
			if s.valid[j] {
				buf = append(buf, s.floats[j])
			}
		}
		if len(buf) < minSamples {
			out.setNull(i)
			continue
		}
		out.setFloat(i, stat(buf))
	}
	return out, nil
}
