package core

import (
	"context"
	"time"
)

// MetricsRecorder observes the outcome of contract operations. Implementations
// must be safe for concurrent use.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts spans around contract operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan finishes a span started by a Tracer.
type TraceSpan interface {
	End(err error)
}

// Option configures optional contract collaborators.
type Option func(*contractOptions)

type contractOptions struct {
	metrics  MetricsRecorder
	tracer   Tracer
	archiver *SnapshotArchiver
}

// WithMetricsRecorder attaches a metrics recorder; every instantiate, execute,
// and query is observed with its operation name, success flag, and duration.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(o *contractOptions) { o.metrics = recorder }
}

// WithTracer attaches a tracer that spans every contract operation.
func WithTracer(tracer Tracer) Option {
	return func(o *contractOptions) { o.tracer = tracer }
}

// WithArchiver attaches a snapshot archiver; a state snapshot is written to
// the blob store after every committed execute.
func WithArchiver(archiver *SnapshotArchiver) Option {
	return func(o *contractOptions) { o.archiver = archiver }
}

// instrument wraps fn with tracing and metrics for the named operation.
func (o contractOptions) instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	start := time.Now()
	var span TraceSpan
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, operation)
	}
	err := fn(ctx)
	if span != nil {
		span.End(err)
	}
	if o.metrics != nil {
		o.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	}
	return err
}
