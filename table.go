package tablz

// ColumnFunc rewrites the values of a single column. Implementations
// must return a series with the same name, type, and length as its
// input; the table engine rejects anything else at materialization.
type ColumnFunc func(Series) (Series, error)

// Field is one entry of a table schema: a column name and its declared
// data type.
type Field struct {
	Name  string
	DType DType
}

// Schema is the ordered list of a table's columns. Order matters: it is
// the declaration order used for type-based column selection and it is
// preserved by every transform.
type Schema []Field

// Names returns the column names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// Table is the abstraction the composition layer consumes: an ordered
// set of uniquely-named columns sharing a row count, available in two
// evaluation modes. Frame is the materialized mode; LazyFrame records a
// plan of column rewrites and defers execution until Collect.
//
// Every transformer in this package accepts either mode and returns the
// mode it was given. Transform never forces materialization of a lazy
// plan; only Collect does. Fit may execute the minimal per-column work
// needed to produce scalar parameters (a mean, a min/max pair), which
// is why Column on a LazyFrame runs only that column's pending rewrites.
type Table interface {
	// Schema returns the ordered name/type pairs of the table.
	Schema() Schema

	// Height returns the row count.
	Height() int

	// Column returns the named column's values. On a LazyFrame this
	// executes the pending rewrites for that column only.
	Column(name string) (Series, error)

	// Apply replaces the named column's values with the output of fn,
	// preserving column set, order, and row count. On a LazyFrame the
	// rewrite is recorded, not executed.
	Apply(name string, fn ColumnFunc) (Table, error)

	// Collect materializes the table, executing any pending plan.
	Collect() (*Frame, error)

	// IsLazy reports the evaluation mode.
	IsLazy() bool
}
