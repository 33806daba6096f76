package oteltrace

import (
	"context"

	"github.com/sellauth-tools/stockbot/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New returns a Tracer backed by the globally registered OpenTelemetry provider.
// Spans are no-ops until NewTracerProvider installs an exporting provider.
func New(name string) observability.Tracer {
	if name == "" {
		name = "stockbot"
	}
	return &tracer{t: otel.Tracer(name)}
}

// NewWithProvider binds the Tracer to an explicit provider instead of the global one.
func NewWithProvider(tp trace.TracerProvider, name string) observability.Tracer {
	if tp == nil {
		return New(name)
	}
	if name == "" {
		name = "stockbot"
	}
	return &tracer{t: tp.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
