package tablz

// colOp is one deferred column rewrite in a lazy plan.
type colOp struct {
	name string
	fn   ColumnFunc
}

// LazyFrame is the deferred table: a source frame plus an ordered plan
// of per-column value rewrites that only run when Collect is called.
// Because the plan rewrites values in place and never adds, removes, or
// reorders columns, the schema and height are known without executing
// anything.
//
// LazyFrame values are immutable: Apply returns a new view sharing the
// source and extending the plan.
type LazyFrame struct {
	src *Frame
	ops []colOp
}

// Schema returns the source frame's schema; the plan cannot change it.
func (l *LazyFrame) Schema() Schema {
	return l.src.Schema()
}

// Height returns the source frame's row count; the plan cannot change it.
func (l *LazyFrame) Height() int {
	return l.src.Height()
}

// Column materializes the named column by running only that column's
// pending rewrites against the source. Other columns' rewrites are not
// executed. This is the minimal aggregation path fits use when they
// need a scalar parameter out of a deferred table.
func (l *LazyFrame) Column(name string) (Series, error) {
	s, err := l.src.Column(name)
	if err != nil {
		return Series{}, err
	}
	for _, op := range l.ops {
		if op.name != name {
			continue
		}
		out, err := op.fn(s)
		if err != nil {
			return Series{}, err
		}
		if err := checkRewrite(s, out); err != nil {
			return Series{}, err
		}
		s = out
	}
	return s, nil
}

// Apply records a rewrite of the named column in the plan and returns
// the extended view. Nothing executes until Collect. The column must
// exist in the schema.
func (l *LazyFrame) Apply(name string, fn ColumnFunc) (Table, error) {
	if _, err := l.src.Column(name); err != nil {
		return nil, err
	}
	ops := make([]colOp, len(l.ops), len(l.ops)+1)
	copy(ops, l.ops)
	return &LazyFrame{src: l.src, ops: append(ops, colOp{name: name, fn: fn})}, nil
}

// Collect executes the plan in order and returns the materialized
// frame. The first failing rewrite aborts execution.
func (l *LazyFrame) Collect() (*Frame, error) {
	out := l.src
	for _, op := range l.ops {
		next, err := out.Apply(op.name, op.fn)
		if err != nil {
			return nil, err
		}
		out = next.(*Frame)
	}
	return out, nil
}

// IsLazy reports true: a LazyFrame always defers its plan.
func (l *LazyFrame) IsLazy() bool { return true }
