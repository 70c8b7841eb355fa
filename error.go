package tablz

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for structurally invalid configuration. These are
// returned at construction time, before any data is seen.
var (
	// ErrNoTransformers is returned when a MultiColumnTransformer is
	// constructed with an empty ColumnSpec list.
	ErrNoTransformers = errors.New("must have at least one column spec")

	// ErrConflictingConfig is returned when a transformer is configured
	// with mutually exclusive or missing parameters.
	ErrConflictingConfig = errors.New("conflicting transformer configuration")
)

// Sentinel errors for lifecycle and data failures. These are returned
// by Fit, Transform, and InverseTransform and always propagate to the
// caller; nothing in this package substitutes a default on failure.
var (
	// ErrNotFitted is returned when Transform or InverseTransform is
	// invoked on a component whose fitted state is required but absent.
	ErrNotFitted = errors.New("has not been fitted")

	// ErrNotInvertible is returned by InverseTransform helpers when the
	// transformer does not support inversion.
	ErrNotInvertible = errors.New("does not support inverse transformation")

	// ErrUnknownColumn is returned when a column name does not exist in
	// the table being resolved against.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateColumn is returned when a Frame is constructed with
	// two columns sharing a name.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrHeightMismatch is returned when columns of differing lengths
	// are combined into one Frame, or a replacement column does not
	// match the table's row count.
	ErrHeightMismatch = errors.New("column lengths differ")

	// ErrAllNull is returned when a fit cannot produce a meaningful
	// statistic because the column holds no non-null values.
	ErrAllNull = errors.New("column contains no non-null values")

	// ErrNonNumeric is returned when a numeric statistic or transform
	// is requested on a non-numeric column.
	ErrNonNumeric = errors.New("requires a numeric column")
)

// Error provides rich context about a fit or transform failure.
// It wraps the underlying error with the path of component names the
// failure traveled through, the column being processed when the failure
// occurred, and timing information.
//
// Composite transformers prepend their own name to Path as the error
// propagates, so a failure deep inside a pipeline reads like
// ["preprocess", "impute-step", "col_a"].
type Error struct {
	Timestamp time.Time
	Err       error
	Column    string
	Path      []Name
	Duration  time.Duration
}

// Error implements the error interface, providing a detailed message.
func (e *Error) Error() string {
	location := pathString(e.Path)
	if e.Column != "" {
		return fmt.Sprintf("%s: column %q: %v", location, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", location, e.Err)
}

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

func pathString(path []Name) string {
	if len(path) == 0 {
		return "tablz"
	}
	out := string(path[0])
	for _, p := range path[1:] {
		out += " -> " + string(p)
	}
	return out
}

// newError wraps err with component and timing context. If err is
// already an *Error, the component name is prepended to its path and
// the original context is preserved.
func newError(name Name, column string, start, now time.Time, err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		te.Path = append([]Name{name}, te.Path...)
		return te
	}
	return &Error{
		Timestamp: now,
		Err:       err,
		Column:    column,
		Path:      []Name{name},
		Duration:  now.Sub(start),
	}
}
