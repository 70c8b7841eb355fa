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

// Observability constants for Pipeline.
const (
	// Metrics.
	PipelineFitsTotal       = metricz.Key("pipeline.fits.total")
	PipelineTransformsTotal = metricz.Key("pipeline.transforms.total")
	PipelineFailuresTotal   = metricz.Key("pipeline.failures.total")
	PipelineStepsTotal      = metricz.Key("pipeline.steps.total")
	PipelineStepsCompleted  = metricz.Key("pipeline.steps.completed")
	PipelineDurationMs      = metricz.Key("pipeline.duration.ms")

	// Spans.
	PipelineFitSpan       = tracez.Key("pipeline.fit")
	PipelineTransformSpan = tracez.Key("pipeline.transform")
	PipelineStepSpan      = tracez.Key("pipeline.step")

	// Tags.
	PipelineTagStepCount  = tracez.Tag("pipeline.step_count")
	PipelineTagStepNumber = tracez.Tag("pipeline.step_number")
	PipelineTagStepName   = tracez.Tag("pipeline.step_name")
	PipelineTagLazy       = tracez.Tag("pipeline.lazy")
	PipelineTagSuccess    = tracez.Tag("pipeline.success")
	PipelineTagError      = tracez.Tag("pipeline.error")

	// Hook event keys.
	PipelineEventStepComplete = hookz.Key("pipeline.step_complete")
	PipelineEventAllComplete  = hookz.Key("pipeline.all_complete")
)

// PipelineEvent represents a pipeline step event. It is emitted via
// hookz as each step completes during fit or transform, and once when
// all steps have finished.
type PipelineEvent struct {
	Name           Name          // Pipeline name
	StepName       Name          // Name of the step
	StepNumber     int           // Current step number (1-based)
	TotalSteps     int           // Total number of steps
	Fitting        bool          // Whether the pass was a fit pass
	Success        bool          // Whether the step succeeded
	Error          error         // Error if the step failed
	Duration       time.Duration // How long this step took
	CompletedSteps int           // Steps completed (for all_complete)
	TotalDuration  time.Duration // Total time (for all_complete)
	Timestamp      time.Time     // When the event occurred
}

// Pipeline sequentially composes table-level steps. Order is
// significant and caller-controlled: during both fit and transform,
// each step consumes the previous step's output, so a scaler fit after
// an imputer sees already-imputed data and learns the exact
// distribution production data will have.
//
// Fit threads the table through each step's FitTransform and discards
// the final result; the pipeline only needs every step fitted against
// its predecessor's output. Transform threads through each step's
// Transform. The first failing step aborts either pass; later steps are
// not attempted.
//
// Pipeline itself implements TableTransformer, so pipelines nest as
// steps of larger pipelines.
//
// # Observability
//
// Metrics:
//   - pipeline.fits.total: Counter of fit passes
//   - pipeline.transforms.total: Counter of transform passes
//   - pipeline.failures.total: Counter of failed passes
//   - pipeline.steps.total: Gauge of registered steps
//   - pipeline.steps.completed: Gauge of steps completed in the last pass
//   - pipeline.duration.ms: Gauge of last pass duration
//
// Traces:
//   - pipeline.fit / pipeline.transform: Parent spans
//   - pipeline.step: Child span per step
//
// Events (via hooks):
//   - pipeline.step_complete: Fired as each step completes
//   - pipeline.all_complete: Fired when a whole pass succeeds
type Pipeline struct {
	name    Name
	steps   []TableTransformer
	mu      sync.RWMutex
	fitted  bool
	clock   clockz.Clock
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[PipelineEvent]
}

// NewPipeline creates a Pipeline with the given steps. Steps can be
// added later with Register; a pipeline with no steps passes tables
// through unchanged.
func NewPipeline(name Name, steps ...TableTransformer) *Pipeline {
	metrics := metricz.New()
	metrics.Counter(PipelineFitsTotal)
	metrics.Counter(PipelineTransformsTotal)
	metrics.Counter(PipelineFailuresTotal)
	metrics.Gauge(PipelineStepsTotal)
	metrics.Gauge(PipelineStepsCompleted)
	metrics.Gauge(PipelineDurationMs)

	p := &Pipeline{
		name:    name,
		steps:   append([]TableTransformer(nil), steps...),
		clock:   clockz.RealClock,
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[PipelineEvent](),
	}
	p.metrics.Gauge(PipelineStepsTotal).Set(float64(len(steps)))
	return p
}

// Register appends steps to the pipeline. Steps execute in registration
// order. Registering after a fit leaves the pipeline unfitted again.
func (p *Pipeline) Register(steps ...TableTransformer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, steps...)
	p.fitted = false
	p.metrics.Gauge(PipelineStepsTotal).Set(float64(len(p.steps)))
}

// Name returns the name of this pipeline.
func (p *Pipeline) Name() Name { return p.name }

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.steps)
}

// Names returns the step names in execution order.
func (p *Pipeline) Names() []Name {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Name, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.Name()
	}
	return out
}

// Fitted reports whether a successful Fit has happened.
func (p *Pipeline) Fitted() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fitted
}

// Fit fits every step in order, feeding each step's FitTransform output
// forward as the next step's input, and discards the final table. The
// first failing step aborts the pass and leaves the pipeline unfitted.
func (p *Pipeline) Fit(ctx context.Context, t Table) error {
	_, err := p.run(ctx, t, true)
	return err
}

// Transform threads the table through every step's Transform in order.
// It fails with ErrNotFitted before a successful Fit; an individual
// unfitted step surfaces its own error the same way.
func (p *Pipeline) Transform(ctx context.Context, t Table) (Table, error) {
	clock := p.getClock()
	if !p.Fitted() {
		p.metrics.Counter(PipelineFailuresTotal).Inc()
		return nil, &Error{
			Timestamp: clock.Now(),
			Err:       ErrNotFitted,
			Path:      []Name{p.name},
		}
	}
	return p.run(ctx, t, false)
}

// FitTransform fits every step in order and returns the final
// transformed table. It is Fit without discarding the result.
func (p *Pipeline) FitTransform(ctx context.Context, t Table) (Table, error) {
	return p.run(ctx, t, true)
}

// run threads the table through the steps, calling FitTransform during
// a fit pass and Transform otherwise.
func (p *Pipeline) run(ctx context.Context, t Table, fitting bool) (Table, error) {
	clock := p.getClock()
	start := clock.Now()

	p.mu.RLock()
	steps := make([]TableTransformer, len(p.steps))
	copy(steps, p.steps)
	p.mu.RUnlock()

	spanKey := PipelineTransformSpan
	counter := PipelineTransformsTotal
	if fitting {
		spanKey = PipelineFitSpan
		counter = PipelineFitsTotal
	}
	p.metrics.Counter(counter).Inc()

	ctx, span := p.tracer.StartSpan(ctx, spanKey)
	span.SetTag(PipelineTagStepCount, fmt.Sprintf("%d", len(steps)))
	span.SetTag(PipelineTagLazy, fmt.Sprintf("%t", t.IsLazy()))
	var failure error
	defer func() {
		elapsed := clock.Now().Sub(start)
		p.metrics.Gauge(PipelineDurationMs).Set(float64(elapsed.Milliseconds()))
		if failure == nil {
			span.SetTag(PipelineTagSuccess, "true")
		} else {
			span.SetTag(PipelineTagSuccess, "false")
			span.SetTag(PipelineTagError, failure.Error())
			p.metrics.Counter(PipelineFailuresTotal).Inc()
		}
		span.Finish()
	}()

	out := t
	completed := 0
	for i, step := range steps {
		select {
		case <-ctx.Done():
			failure = newError(p.name, "", start, clock.Now(), ctx.Err())
			return nil, failure
		default:
		}

		stepCtx, stepSpan := p.tracer.StartSpan(ctx, PipelineStepSpan)
		stepSpan.SetTag(PipelineTagStepNumber, fmt.Sprintf("%d", i+1))
		stepSpan.SetTag(PipelineTagStepName, string(step.Name()))

		stepStart := clock.Now()
		var err error
		var next Table
		if fitting {
			next, err = step.FitTransform(stepCtx, out)
		} else {
			next, err = step.Transform(stepCtx, out)
		}
		stepDuration := clock.Now().Sub(stepStart)
		stepSpan.Finish()

		_ = p.hooks.Emit(ctx, PipelineEventStepComplete, PipelineEvent{ //nolint:errcheck
			Name:       p.name,
			StepName:   step.Name(),
			StepNumber: i + 1,
			TotalSteps: len(steps),
			Fitting:    fitting,
			Success:    err == nil,
			Error:      err,
			Duration:   stepDuration,
			Timestamp:  clock.Now(),
		})

		if err != nil {
			var te *Error
			if errors.As(err, &te) {
				te.Path = append([]Name{p.name}, te.Path...)
				failure = te
			} else {
				failure = newError(p.name, "", stepStart, clock.Now(), err)
			}
			return nil, failure
		}
		out = next
		completed++
		p.metrics.Gauge(PipelineStepsCompleted).Set(float64(completed))
	}

	if fitting {
		p.mu.Lock()
		p.fitted = true
		p.mu.Unlock()
	}

	_ = p.hooks.Emit(ctx, PipelineEventAllComplete, PipelineEvent{ //nolint:errcheck
		Name:           p.name,
		TotalSteps:     len(steps),
		CompletedSteps: completed,
		Fitting:        fitting,
		Success:        true,
		TotalDuration:  clock.Now().Sub(start),
		Timestamp:      clock.Now(),
	})
	return out, nil
}

// Metrics returns the metrics registry for this pipeline.
func (p *Pipeline) Metrics() *metricz.Registry { return p.metrics }

// Tracer returns the tracer for this pipeline.
func (p *Pipeline) Tracer() *tracez.Tracer { return p.tracer }

// Close gracefully shuts down observability components.
func (p *Pipeline) Close() error {
	if p.tracer != nil {
		p.tracer.Close()
	}
	p.hooks.Close()
	return nil
}

// WithClock sets a custom clock for testing.
func (p *Pipeline) WithClock(clock clockz.Clock) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock = clock
	return p
}

func (p *Pipeline) getClock() clockz.Clock {
	if p.clock == nil {
		return clockz.RealClock
	}
	return p.clock
}

// OnStepComplete registers a handler called asynchronously as each step
// finishes, during both fit and transform passes.
func (p *Pipeline) OnStepComplete(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.hooks.Hook(PipelineEventStepComplete, handler)
	return err
}

// OnAllComplete registers a handler called asynchronously after a whole
// pass succeeds.
func (p *Pipeline) OnAllComplete(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.hooks.Hook(PipelineEventAllComplete, handler)
	return err
}
