package tablz

import (
	"math"
	"time"
)

// Series is a named, typed, ordered sequence of values, possibly
// containing missing entries. Series values are immutable by
// convention: every operation returns a modified copy, so a fitted
// transformer can never corrupt the column it learned from.
//
// Row order is significant. Nothing in this package reorders a Series.
type Series struct {
	name   string
	dtype  DType
	floats []float64
	strs   []string
	times  []time.Time
	valid  []bool
}

// Floats builds a Float64 Series. NaN entries are treated as missing
// values, which makes constructing columns with gaps direct:
//
//	s := tablz.Floats("price", 1.5, math.NaN(), 3.2)
func Floats(name string, vals ...float64) Series {
	s := Series{
		name:   name,
		dtype:  Float64,
		floats: make([]float64, len(vals)),
		valid:  make([]bool, len(vals)),
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		s.floats[i] = v
		s.valid[i] = true
	}
	return s
}

// Ints builds an Int64 Series with no missing entries. Use WithNulls
// to mark positions missing.
func Ints(name string, vals ...int64) Series {
	s := Series{
		name:   name,
		dtype:  Int64,
		floats: make([]float64, len(vals)),
		valid:  make([]bool, len(vals)),
	}
	for i, v := range vals {
		s.floats[i] = float64(v)
		s.valid[i] = true
	}
	return s
}

// Strings builds a String Series with no missing entries. Use WithNulls
// to mark positions missing.
func Strings(name string, vals ...string) Series {
	s := Series{
		name:  name,
		dtype: String,
		strs:  append([]string(nil), vals...),
		valid: make([]bool, len(vals)),
	}
	for i := range s.valid {
		s.valid[i] = true
	}
	return s
}

// Times builds a Time Series with no missing entries. Use WithNulls to
// mark positions missing.
func Times(name string, vals ...time.Time) Series {
	s := Series{
		name:  name,
		dtype: Time,
		times: append([]time.Time(nil), vals...),
		valid: make([]bool, len(vals)),
	}
	for i := range s.valid {
		s.valid[i] = true
	}
	return s
}

// WithNulls returns a copy of the series with the given positions
// marked missing. Out-of-range positions are ignored.
func (s Series) WithNulls(idx ...int) Series {
	out := s.clone()
	for _, i := range idx {
		if i >= 0 && i < len(out.valid) {
			out.setNull(i)
		}
	}
	return out
}

// Name returns the column name.
func (s Series) Name() string { return s.name }

// DType returns the declared data type.
func (s Series) DType() DType { return s.dtype }

// Len returns the number of rows.
func (s Series) Len() int { return len(s.valid) }

// Rename returns a copy of the series under a new name.
func (s Series) Rename(name string) Series {
	out := s.clone()
	out.name = name
	return out
}

// IsNull reports whether the value at position i is missing.
func (s Series) IsNull(i int) bool { return !s.valid[i] }

// NullCount returns the number of missing entries.
func (s Series) NullCount() int {
	n := 0
	for _, v := range s.valid {
		if !v {
			n++
		}
	}
	return n
}

// Float returns the numeric value at position i. For Int64 series the
// stored integer is returned as a float64. The result is 0 for missing
// entries; check IsNull to distinguish.
func (s Series) Float(i int) float64 {
	if !s.valid[i] {
		return 0
	}
	return s.floats[i]
}

// Int returns the value at position i rounded to an integer.
func (s Series) Int(i int) int64 {
	return int64(math.Round(s.Float(i)))
}

// Str returns the string value at position i, or "" for missing entries.
func (s Series) Str(i int) string {
	if !s.valid[i] || s.dtype != String {
		return ""
	}
	return s.strs[i]
}

// TimeAt returns the timestamp at position i.
func (s Series) TimeAt(i int) time.Time {
	if !s.valid[i] || s.dtype != Time {
		return time.Time{}
	}
	return s.times[i]
}

// Float64s returns the series as a float64 slice with NaN in missing
// positions. Only valid for numeric series.
func (s Series) Float64s() []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		if s.valid[i] {
			out[i] = s.floats[i]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Head returns the first n rows of the series.
func (s Series) Head(n int) Series {
	if n > s.Len() {
		n = s.Len()
	}
	out := s.clone()
	if out.floats != nil {
		out.floats = out.floats[:n]
	}
	if out.strs != nil {
		out.strs = out.strs[:n]
	}
	if out.times != nil {
		out.times = out.times[:n]
	}
	out.valid = out.valid[:n]
	return out
}

// Equal reports whether two series have the same name, type, length,
// and element-for-element values (missing entries compare equal to
// missing entries).
func (s Series) Equal(other Series) bool {
	if s.name != other.name || s.dtype != other.dtype || s.Len() != other.Len() {
		return false
	}
	for i := range s.valid {
		if s.valid[i] != other.valid[i] {
			return false
		}
		if !s.valid[i] {
			continue
		}
		switch s.dtype {
		case Float64, Int64:
			if s.floats[i] != other.floats[i] {
				return false
			}
		case String:
			if s.strs[i] != other.strs[i] {
				return false
			}
		case Time:
			if !s.times[i].Equal(other.times[i]) {
				return false
			}
		}
	}
	return true
}

func (s Series) clone() Series {
	out := s
	out.floats = append([]float64(nil), s.floats...)
	out.strs = append([]string(nil), s.strs...)
	out.times = append([]time.Time(nil), s.times...)
	out.valid = append([]bool(nil), s.valid...)
	return out
}

func (s *Series) setNull(i int) {
	s.valid[i] = false
	if s.floats != nil {
		s.floats[i] = 0
	}
	if s.strs != nil {
		s.strs[i] = ""
	}
	if s.times != nil {
		s.times[i] = time.Time{}
	}
}

func (s *Series) setFloat(i int, v float64) {
	s.valid[i] = true
	s.floats[i] = v
}

// validFloats returns the non-missing numeric values in row order.
func (s Series) validFloats() []float64 {
	out := make([]float64, 0, s.Len())
	for i, ok := range s.valid {
		if ok {
			out = append(out, s.floats[i])
		}
	}
	return out
}

// castBack rounds numeric storage for integer series. Transforms
// compute in floating point; the output column must keep the input
// column's declared type.
func (s Series) castBack(dtype DType) Series {
	out := s.clone()
	out.dtype = dtype
	if dtype == Int64 {
		for i, ok := range out.valid {
			if ok {
				out.floats[i] = math.Round(out.floats[i])
			}
		}
	}
	return out
}
