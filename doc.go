// Package tablz provides stateful, composable data-cleaning and
// feature-engineering steps for tabular, time-ordered data.
//
// # Overview
//
// tablz is built around the fit/transform lifecycle familiar from
// machine-learning preprocessing: a transformer learns parameters from
// data once (fit) and applies them repeatedly (transform), including to
// data it has never seen. Single-column transformers — imputers,
// scalers, outlier smoothers, lag and difference generators — are fanned
// out across whole tables by MultiColumnTransformer and chained into
// sequential pipelines by Pipeline.
//
// # Core Concepts
//
// Two small interfaces carry the whole library:
//
//	type ColumnTransformer interface {
//	    Name() Name
//	    Fit(context.Context, Series) error
//	    Transform(context.Context, Series) (Series, error)
//	    RequiresFit() bool
//	    Fitted() bool
//	    Clone() ColumnTransformer
//	}
//
//	type TableTransformer interface {
//	    Name() Name
//	    Fit(context.Context, Table) error
//	    Transform(context.Context, Table) (Table, error)
//	    FitTransform(context.Context, Table) (Table, error)
//	    Fitted() bool
//	}
//
// Every leaf transformer implements ColumnTransformer. Composites hold
// leaves only through that interface, so any third-party transformer
// plugs in. MultiColumnTransformer and Pipeline both implement
// TableTransformer, which is what lets pipelines nest.
//
// Lifecycle rules are strict: transforming before fitting fails with
// ErrNotFitted, refitting overwrites previous state, and a transformer
// reused across several columns is cloned per column so fitted
// parameters never alias.
//
// # Tables
//
// Tables come in two evaluation modes behind one interface: Frame is
// materialized, LazyFrame records a plan of column rewrites and defers
// execution until Collect. Every transformer accepts either mode and
// returns the mode it was given; transform never forces a lazy plan to
// execute, and fit materializes only the individual columns it needs
// scalar parameters from.
//
// # Quick Start
//
//	df, _ := tablz.NewFrame(
//	    tablz.Floats("temp", 21.5, math.NaN(), 23.1, 22.8),
//	    tablz.Floats("load", 0.31, 0.42, math.NaN(), 0.55),
//	)
//
//	imputer, _ := tablz.NewImputer(tablz.ImputeMean)
//	impute, _ := tablz.NewMultiColumnTransformer("impute",
//	    tablz.ColumnSpec{
//	        Name:        "impute-sensors",
//	        Columns:     tablz.ByType(tablz.Float64),
//	        Transformer: imputer,
//	    },
//	)
//	scale, _ := tablz.NewMultiColumnTransformer("scale",
//	    tablz.ColumnSpec{
//	        Name:        "scale-load",
//	        Columns:     tablz.Cols("load"),
//	        Transformer: tablz.NewMinMaxScaler(),
//	    },
//	)
//
//	pipeline := tablz.NewPipeline("preprocess", impute, scale)
//	clean, err := pipeline.FitTransform(ctx, df)
//
// The same pipeline applies to fresh data with Transform, reproducing
// exactly the parameters learned during fit.
//
// # Error Handling
//
// Failures wrap sentinel errors (ErrNotFitted, ErrNoTransformers,
// ErrAllNull, ...) in an Error carrying the path of component names the
// failure traveled through:
//
//	if _, err := pipeline.Transform(ctx, df); err != nil {
//	    var te *tablz.Error
//	    if errors.As(err, &te) {
//	        log.Printf("failed at %v, column %q: %v", te.Path, te.Column, te.Err)
//	    }
//	}
//
// All failures propagate synchronously to the caller. There are no
// retries and no partial recovery: a failing column aborts its whole
// fit, a failing step aborts its whole pipeline pass.
//
// # Observability
//
// Composites expose metrics (metricz), spans (tracez), and typed event
// hooks (hookz):
//
//	impute.OnColumnFitted(func(_ context.Context, ev tablz.ColumnEvent) error {
//	    log.Printf("fitted %s on %q in %v", ev.Transformer, ev.Column, ev.Duration)
//	    return nil
//	})
//
// Clocks are injectable (WithClock) for deterministic tests.
package tablz
