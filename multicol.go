package tablz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for MultiColumnTransformer.
const (
	// Metrics.
	MultiColFitsTotal         = metricz.Key("multicol.fits.total")
	MultiColFitFailures       = metricz.Key("multicol.fit.failures")
	MultiColTransformsTotal   = metricz.Key("multicol.transforms.total")
	MultiColTransformFailures = metricz.Key("multicol.transform.failures")
	MultiColColumnsAssigned   = metricz.Key("multicol.columns.assigned")
	MultiColFitDurationMs     = metricz.Key("multicol.fit.duration.ms")

	// Spans.
	MultiColFitSpan       = tracez.Key("multicol.fit")
	MultiColTransformSpan = tracez.Key("multicol.transform")
	MultiColColumnSpan    = tracez.Key("multicol.column")

	// Tags.
	MultiColTagColumnCount = tracez.Tag("multicol.column_count")
	MultiColTagColumn      = tracez.Tag("multicol.column")
	MultiColTagTransformer = tracez.Tag("multicol.transformer")
	MultiColTagLazy        = tracez.Tag("multicol.lazy")
	MultiColTagSuccess     = tracez.Tag("multicol.success")
	MultiColTagError       = tracez.Tag("multicol.error")

	// Hook event keys.
	MultiColEventColumnFitted = hookz.Key("multicol.column_fitted")
	MultiColEventFitComplete  = hookz.Key("multicol.fit_complete")
)

// ColumnEvent represents a column fitting event. It is emitted via
// hookz as each column's transformer is fitted and once the whole
// assignment is committed.
type ColumnEvent struct {
	Name         Name          // Transformer name
	Spec         Name          // ColumnSpec the column resolved from
	Column       string        // Concrete column name
	Transformer  Name          // Leaf transformer kind
	ColumnNumber int           // Current column number (1-based)
	TotalColumns int           // Total resolved columns
	Success      bool          // Whether the fit succeeded
	Error        error         // Error if the fit failed
	Duration     time.Duration // How long this column's fit took
	Timestamp    time.Time     // When the event occurred
}

// ColumnSpec binds a column selector to a transformer within a
// MultiColumnTransformer. The transformer is an unfitted template: each
// column the selector resolves to receives its own clone, so fitted
// parameters never alias across columns.
type ColumnSpec struct {
	// Name identifies the spec in errors and events.
	Name Name

	// Columns selects the columns this spec applies to, by literal
	// names or by data type.
	Columns ColumnSelector

	// Transformer is the unfitted template cloned per resolved column.
	Transformer ColumnTransformer
}

// MultiColumnTransformer fans single-column transformers out across a
// table. At fit time it resolves each ColumnSpec against the table's
// schema into a concrete column set, clones the spec's transformer once
// per column, fits every clone on its column, and records the
// column-to-transformer assignment. At transform time it rewrites each
// assigned column in place and passes every other column through
// untouched.
//
// Resolution is deterministic: specs resolve in list order, and
// type-based selection follows the table's column declaration order.
// When two specs resolve to the same column, the later spec's
// transformer wins; the column keeps its original position in the
// application order.
//
// The resolved name set is frozen at fit time. Transforming a table
// whose schema no longer contains an assigned column fails.
//
// A fit failure in any column aborts the whole fit; no partial
// assignment is committed.
//
// # Observability
//
// Metrics:
//   - multicol.fits.total: Counter of fit operations
//   - multicol.fit.failures: Counter of failed fits
//   - multicol.transforms.total: Counter of transform operations
//   - multicol.transform.failures: Counter of failed transforms
//   - multicol.columns.assigned: Gauge of columns in the assignment
//   - multicol.fit.duration.ms: Gauge of last fit duration
//
// Traces:
//   - multicol.fit / multicol.transform: Parent spans
//   - multicol.column: Child span per column
//
// Events (via hooks):
//   - multicol.column_fitted: Fired as each column's clone is fitted
//   - multicol.fit_complete: Fired when the assignment is committed
type MultiColumnTransformer struct {
	name       Name
	specs      []ColumnSpec
	mu         sync.RWMutex
	assignment map[string]ColumnTransformer
	order      []string
	fitted     bool
	clock      clockz.Clock
	metrics    *metricz.Registry
	tracer     *tracez.Tracer
	hooks      *hookz.Hooks[ColumnEvent]
}

// NewMultiColumnTransformer creates a MultiColumnTransformer from an
// ordered list of ColumnSpecs. An empty list, or a spec without a
// transformer, is a configuration error.
func NewMultiColumnTransformer(name Name, specs ...ColumnSpec) (*MultiColumnTransformer, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoTransformers)
	}
	for _, spec := range specs {
		if spec.Transformer == nil {
			return nil, fmt.Errorf("%s: spec %q has no transformer: %w", name, spec.Name, ErrConflictingConfig)
		}
	}

	metrics := metricz.New()
	metrics.Counter(MultiColFitsTotal)
	metrics.Counter(MultiColFitFailures)
	metrics.Counter(MultiColTransformsTotal)
	metrics.Counter(MultiColTransformFailures)
	metrics.Gauge(MultiColColumnsAssigned)
	metrics.Gauge(MultiColFitDurationMs)

	return &MultiColumnTransformer{
		name:    name,
		specs:   append([]ColumnSpec(nil), specs...),
		clock:   clockz.RealClock,
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[ColumnEvent](),
	}, nil
}

// Name returns the name of this transformer.
func (m *MultiColumnTransformer) Name() Name { return m.name }

// Fitted reports whether a successful Fit has happened.
func (m *MultiColumnTransformer) Fitted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fitted
}

// binding pairs a resolved column with the spec that claimed it.
type binding struct {
	column string
	spec   ColumnSpec
}

// resolveSpecs freezes the concrete column set for each spec against
// the schema. Later specs override earlier ones on conflicts, keeping
// the column's original position.
func (m *MultiColumnTransformer) resolveSpecs(schema Schema) ([]binding, error) {
	var out []binding
	pos := make(map[string]int)
	for _, spec := range m.specs {
		names, err := spec.Columns.resolve(schema)
		if err != nil {
			return nil, fmt.Errorf("spec %q: %w", spec.Name, err)
		}
		for _, col := range names {
			if i, seen := pos[col]; seen {
				out[i].spec = spec
				continue
			}
			pos[col] = len(out)
			out = append(out, binding{column: col, spec: spec})
		}
	}
	return out, nil
}

// Fit resolves the column specs against the table's schema, fits one
// transformer clone per resolved column, and commits the assignment.
// The resolved name set is frozen; it is not re-evaluated at transform
// time. On a lazy table only the resolved columns are materialized,
// each through its own minimal plan.
//
// Refitting on success overwrites the previous assignment. Any
// column's fit failure aborts the call and commits nothing: a first
// fit stays unfitted, a refit keeps the previous assignment.
func (m *MultiColumnTransformer) Fit(ctx context.Context, t Table) error {
	clock := m.getClock()
	m.metrics.Counter(MultiColFitsTotal).Inc()
	start := clock.Now()

	ctx, span := m.tracer.StartSpan(ctx, MultiColFitSpan)
	span.SetTag(MultiColTagLazy, fmt.Sprintf("%t", t.IsLazy()))
	var failure error
	defer func() {
		m.metrics.Gauge(MultiColFitDurationMs).Set(float64(clock.Now().Sub(start).Milliseconds()))
		if failure == nil {
			span.SetTag(MultiColTagSuccess, "true")
		} else {
			span.SetTag(MultiColTagSuccess, "false")
			span.SetTag(MultiColTagError, failure.Error())
			m.metrics.Counter(MultiColFitFailures).Inc()
		}
		span.Finish()
	}()

	bindings, err := m.resolveSpecs(t.Schema())
	if err != nil {
		failure = newError(m.name, "", start, clock.Now(), err)
		return failure
	}
	span.SetTag(MultiColTagColumnCount, fmt.Sprintf("%d", len(bindings)))

	staged := make(map[string]ColumnTransformer, len(bindings))
	order := make([]string, 0, len(bindings))
	for i, b := range bindings {
		select {
		case <-ctx.Done():
			failure = newError(m.name, b.column, start, clock.Now(), ctx.Err())
			return failure
		default:
		}

		colCtx, colSpan := m.tracer.StartSpan(ctx, MultiColColumnSpan)
		colSpan.SetTag(MultiColTagColumn, b.column)
		colSpan.SetTag(MultiColTagTransformer, string(b.spec.Transformer.Name()))

		colStart := clock.Now()
		clone := b.spec.Transformer.Clone()
		series, err := t.Column(b.column)
		if err == nil {
			err = clone.Fit(colCtx, series)
		}
		colSpan.Finish()

		_ = m.hooks.Emit(ctx, MultiColEventColumnFitted, ColumnEvent{ //nolint:errcheck
			Name:         m.name,
			Spec:         b.spec.Name,
			Column:       b.column,
			Transformer:  b.spec.Transformer.Name(),
			ColumnNumber: i + 1,
			TotalColumns: len(bindings),
			Success:      err == nil,
			Error:        err,
			Duration:     clock.Now().Sub(colStart),
			Timestamp:    clock.Now(),
		})

		if err != nil {
			te := newError(b.spec.Name, b.column, colStart, clock.Now(), err)
			te.Path = append([]Name{m.name}, te.Path...)
			failure = te
			return failure
		}
		staged[b.column] = clone
		order = append(order, b.column)
	}

	m.mu.Lock()
	m.assignment = staged
	m.order = order
	m.fitted = true
	m.mu.Unlock()

	m.metrics.Gauge(MultiColColumnsAssigned).Set(float64(len(order)))
	_ = m.hooks.Emit(ctx, MultiColEventFitComplete, ColumnEvent{ //nolint:errcheck
		Name:         m.name,
		TotalColumns: len(order),
		Success:      true,
		Duration:     clock.Now().Sub(start),
		Timestamp:    clock.Now(),
	})
	return nil
}

// Transform rewrites every assigned column with its fitted transformer
// and passes all other columns through unchanged. The output table has
// exactly the input's column set, order, row count, and evaluation
// mode: on a lazy table the rewrites are recorded in the plan, never
// executed here.
//
// Transform fails with ErrNotFitted before a successful Fit.
func (m *MultiColumnTransformer) Transform(ctx context.Context, t Table) (Table, error) {
	clock := m.getClock()
	m.metrics.Counter(MultiColTransformsTotal).Inc()
	start := clock.Now()

	m.mu.RLock()
	fitted := m.fitted
	assignment := m.assignment
	order := m.order
	m.mu.RUnlock()

	ctx, span := m.tracer.StartSpan(ctx, MultiColTransformSpan)
	span.SetTag(MultiColTagLazy, fmt.Sprintf("%t", t.IsLazy()))
	defer span.Finish()

	if !fitted {
		span.SetTag(MultiColTagSuccess, "false")
		m.metrics.Counter(MultiColTransformFailures).Inc()
		return nil, &Error{
			Timestamp: clock.Now(),
			Err:       ErrNotFitted,
			Path:      []Name{m.name},
		}
	}
	span.SetTag(MultiColTagColumnCount, fmt.Sprintf("%d", len(order)))

	out := t
	for _, col := range order {
		select {
		case <-ctx.Done():
			m.metrics.Counter(MultiColTransformFailures).Inc()
			return nil, newError(m.name, col, start, clock.Now(), ctx.Err())
		default:
		}

		tf := assignment[col]
		name := m.name
		next, err := out.Apply(col, func(s Series) (Series, error) {
			res, err := tf.Transform(ctx, s)
			if err != nil {
				return Series{}, newError(name, s.Name(), start, clock.Now(), err)
			}
			return res, nil
		})
		if err != nil {
			m.metrics.Counter(MultiColTransformFailures).Inc()
			var te *Error
			if errors.As(err, &te) {
				return nil, err
			}
			return nil, newError(m.name, col, start, clock.Now(), err)
		}
		out = next
	}
	span.SetTag(MultiColTagSuccess, "true")
	return out, nil
}

// FitTransform fits on the table and transforms that same table.
// Fitting and application always target the same data when both happen
// in one call.
func (m *MultiColumnTransformer) FitTransform(ctx context.Context, t Table) (Table, error) {
	if err := m.Fit(ctx, t); err != nil {
		return nil, err
	}
	return m.Transform(ctx, t)
}

// GetTransformer returns the fitted transformer assigned to the column.
// The second return distinguishes a column with no assignment (a valid,
// silent pass-through state) from the error of asking before Fit.
func (m *MultiColumnTransformer) GetTransformer(column string) (ColumnTransformer, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.fitted {
		return nil, false, &Error{
			Timestamp: m.getClock().Now(),
			Err:       ErrNotFitted,
			Path:      []Name{m.name},
		}
	}
	tf, ok := m.assignment[column]
	return tf, ok, nil
}

// AssignedColumns returns the columns in the fitted assignment, in
// application order. It returns nil before Fit.
func (m *MultiColumnTransformer) AssignedColumns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Len returns the number of column specs.
func (m *MultiColumnTransformer) Len() int { return len(m.specs) }

// Metrics returns the metrics registry for this transformer.
func (m *MultiColumnTransformer) Metrics() *metricz.Registry { return m.metrics }

// Tracer returns the tracer for this transformer.
func (m *MultiColumnTransformer) Tracer() *tracez.Tracer { return m.tracer }

// Close gracefully shuts down observability components.
func (m *MultiColumnTransformer) Close() error {
	if m.tracer != nil {
		m.tracer.Close()
	}
	m.hooks.Close()
	return nil
}

// WithClock sets a custom clock for testing.
func (m *MultiColumnTransformer) WithClock(clock clockz.Clock) *MultiColumnTransformer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
	return m
}

func (m *MultiColumnTransformer) getClock() clockz.Clock {
	if m.clock == nil {
		return clockz.RealClock
	}
	return m.clock
}

// OnColumnFitted registers a handler called asynchronously as each
// column's transformer clone finishes fitting, whether it succeeds or
// fails.
func (m *MultiColumnTransformer) OnColumnFitted(handler func(context.Context, ColumnEvent) error) error {
	_, err := m.hooks.Hook(MultiColEventColumnFitted, handler)
	return err
}

// OnFitComplete registers a handler called asynchronously after the
// whole assignment has been fitted and committed.
func (m *MultiColumnTransformer) OnFitComplete(handler func(context.Context, ColumnEvent) error) error {
	_, err := m.hooks.Hook(MultiColEventFitComplete, handler)
	return err
}
