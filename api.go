package tablz

import "context"

// Name identifies transformers, column specs, and pipeline steps.
// Using this type encourages storing names as constants rather than
// inline strings; names appear in Error.Path when a fit or transform
// fails, so stable names make failures traceable.
//
// Example:
//
//	const (
//	    ImputeStepName Name = "impute-sensors"
//	    ScaleStepName  Name = "scale-sensors"
//	)
type Name = string

// ColumnTransformer is the contract every single-column transformer
// implements. A transformer's lifecycle is unfitted -> fitted ->
// applied: Fit learns whatever parameters Transform needs from one
// column, Transform applies them to a column, and refitting overwrites
// the previous state.
//
// Contract requirements:
//   - Fit must be safe to call repeatedly; the last call wins.
//   - Transform must fail with ErrNotFitted when fitted state is
//     required but absent. Transformers that derive everything from
//     their input (rolling windows, shifts) report RequiresFit false
//     and accept Transform without a prior Fit.
//   - Transform must preserve the input column's name and declared
//     type, casting numeric results back when necessary.
//   - Clone must return an unfitted copy carrying only configuration.
//     MultiColumnTransformer clones a spec's transformer once per
//     resolved column so fitted parameters never alias across columns.
type ColumnTransformer interface {
	// Name identifies the transformer kind in errors and events.
	Name() Name

	// Fit learns the parameters Transform needs from the column.
	Fit(ctx context.Context, s Series) error

	// Transform applies the learned parameters to the column.
	Transform(ctx context.Context, s Series) (Series, error)

	// RequiresFit reports whether Transform depends on fitted state.
	RequiresFit() bool

	// Fitted reports whether a successful Fit has happened.
	Fitted() bool

	// Clone returns an unfitted copy with the same configuration.
	Clone() ColumnTransformer
}

// Invertible is implemented by column transformers that can reconstruct
// the original column from their own output, using state captured at
// fit time. Callers discover support with a type assertion:
//
//	if inv, ok := tf.(tablz.Invertible); ok {
//	    restored, err := inv.InverseTransform(ctx, transformed)
//	}
type Invertible interface {
	InverseTransform(ctx context.Context, s Series) (Series, error)
}

// TableTransformer is the contract for table-level steps: anything that
// can be fit against a whole table and then applied to tables of the
// same shape. MultiColumnTransformer and Pipeline both implement it,
// which is what lets pipelines nest.
type TableTransformer interface {
	// Name identifies the step in errors and events.
	Name() Name

	// Fit learns per-column parameters from the table.
	Fit(ctx context.Context, t Table) error

	// Transform applies the learned parameters, rewriting assigned
	// columns in place and passing everything else through. The
	// output table has the same columns, order, row count, and
	// evaluation mode as the input.
	Transform(ctx context.Context, t Table) (Table, error)

	// FitTransform fits on the table and transforms that same table.
	FitTransform(ctx context.Context, t Table) (Table, error)

	// Fitted reports whether a successful Fit has happened.
	Fitted() bool
}

// FitTransform fits a column transformer on s and transforms that same
// series, the single-column equivalent of TableTransformer.FitTransform.
func FitTransform(ctx context.Context, tf ColumnTransformer, s Series) (Series, error) {
	if err := tf.Fit(ctx, s); err != nil {
		return Series{}, err
	}
	return tf.Transform(ctx, s)
}
