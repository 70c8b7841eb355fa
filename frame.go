package tablz

import (
	"fmt"
)

// Frame is the materialized table: an ordered collection of
// uniquely-named Series sharing a row count. Operations return new
// frames; the receiver is never mutated.
type Frame struct {
	cols []Series
}

// NewFrame builds a Frame from the given columns. Column order is the
// argument order and is preserved by every operation. Construction
// fails if two columns share a name or lengths differ.
func NewFrame(cols ...Series) (*Frame, error) {
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if _, dup := seen[c.name]; dup {
			return nil, fmt.Errorf("column %q: %w", c.name, ErrDuplicateColumn)
		}
		seen[c.name] = struct{}{}
		if i > 0 && c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, want %d: %w",
				c.name, c.Len(), cols[0].Len(), ErrHeightMismatch)
		}
	}
	return &Frame{cols: append([]Series(nil), cols...)}, nil
}

// Schema returns the ordered name/type pairs of the frame.
func (f *Frame) Schema() Schema {
	out := make(Schema, len(f.cols))
	for i, c := range f.cols {
		out[i] = Field{Name: c.name, DType: c.dtype}
	}
	return out
}

// Height returns the row count.
func (f *Frame) Height() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// Columns returns the column names in declaration order.
func (f *Frame) Columns() []string {
	return f.Schema().Names()
}

// Column returns the named column.
func (f *Frame) Column(name string) (Series, error) {
	for _, c := range f.cols {
		if c.name == name {
			return c, nil
		}
	}
	return Series{}, fmt.Errorf("column %q: %w", name, ErrUnknownColumn)
}

// Apply replaces the named column's values with the output of fn,
// keeping the column's position. The rewritten series must keep the
// column's name, type, and row count.
func (f *Frame) Apply(name string, fn ColumnFunc) (Table, error) {
	idx := -1
	for i, c := range f.cols {
		if c.name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q: %w", name, ErrUnknownColumn)
	}
	out, err := fn(f.cols[idx])
	if err != nil {
		return nil, err
	}
	if err := checkRewrite(f.cols[idx], out); err != nil {
		return nil, err
	}
	cols := append([]Series(nil), f.cols...)
	cols[idx] = out
	return &Frame{cols: cols}, nil
}

// WithColumn returns a frame with the given series replacing the column
// of the same name, or appended when no such column exists. The series
// must match the frame's row count.
func (f *Frame) WithColumn(s Series) (*Frame, error) {
	if len(f.cols) > 0 && s.Len() != f.Height() {
		return nil, fmt.Errorf("column %q has %d rows, want %d: %w",
			s.name, s.Len(), f.Height(), ErrHeightMismatch)
	}
	cols := append([]Series(nil), f.cols...)
	for i, c := range cols {
		if c.name == s.name {
			cols[i] = s
			return &Frame{cols: cols}, nil
		}
	}
	return &Frame{cols: append(cols, s)}, nil
}

// Collect returns the frame itself; a materialized table has no
// pending plan.
func (f *Frame) Collect() (*Frame, error) {
	return f, nil
}

// IsLazy reports false: a Frame is always materialized.
func (f *Frame) IsLazy() bool { return false }

// Lazy returns a deferred view of the frame with an empty plan.
func (f *Frame) Lazy() *LazyFrame {
	return &LazyFrame{src: f}
}

// Equal reports whether two frames hold the same columns in the same
// order with equal values.
func (f *Frame) Equal(other *Frame) bool {
	if len(f.cols) != len(other.cols) {
		return false
	}
	for i := range f.cols {
		if !f.cols[i].Equal(other.cols[i]) {
			return false
		}
	}
	return true
}

func checkRewrite(in, out Series) error {
	if out.name != in.name {
		return fmt.Errorf("rewrite renamed column %q to %q: %w", in.name, out.name, ErrConflictingConfig)
	}
	if out.dtype != in.dtype {
		return fmt.Errorf("rewrite changed column %q from %s to %s: %w", in.name, in.dtype, out.dtype, ErrConflictingConfig)
	}
	if out.Len() != in.Len() {
		return fmt.Errorf("rewrite of column %q changed row count: %w", in.name, ErrHeightMismatch)
	}
	return nil
}
