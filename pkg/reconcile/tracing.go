package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/navsync/pkg/transition"
)

// startSpan opens a span for a transition. Returns a no-op span handle when
// tracing is disabled.
func (r *Reconciler) startSpan(t *transition.Transition) trace.Span {
	if r.tracer == nil {
		return nil
	}
	_, span := r.tracer.Start(
		context.Background(),
		fmt.Sprintf("navsync.transition.%d", t.ID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int64("navsync.transition_id", int64(t.ID)),
			attribute.String("navsync.trigger", t.Trigger.String()),
			attribute.String("navsync.initial_url", r.serializer.Serialize(t.InitialURL)),
		),
		trace.WithTimestamp(time.Now()),
	)
	return span
}

// endSpanOK closes a transition span successfully.
func endSpanOK(span trace.Span, outcome string) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.String("navsync.outcome", outcome))
	span.SetStatus(codes.Ok, "")
	span.End()
}

// endSpanErr closes a transition span with an error.
func endSpanErr(span trace.Span, outcome string, err error) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.String("navsync.outcome", outcome))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// resolveTracer resolves the tracer from the global provider. An empty name
// disables tracing.
func resolveTracer(name string) trace.Tracer {
	if name == "" {
		return nil
	}
	return otel.Tracer(name)
}
