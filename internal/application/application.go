package application

import (
	"context"
	"errors"
	"time"

	"github.com/sellauth-tools/stockbot/internal/domain/commerce"
	"github.com/sellauth-tools/stockbot/internal/observability"
	"github.com/sellauth-tools/stockbot/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

const spanPrefix = "UC."

// Envelope wraps use case bodies with a span, RED metrics and a use_case_done log line.
type Envelope struct {
	tel observability.Observability
	log observability.Logger

	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewEnvelope(service string, tel observability.Observability) *Envelope {
	tel = observability.OrNop(tel)
	baseLog := tel.Logger()
	metricsProvider := tel.Metrics()
	return &Envelope{
		tel:          tel,
		log:          baseLog.With(observability.F("service", service)),
		reqCounter:   metricsProvider.Counter(observability.MUsecaseRequests),
		durHistogram: metricsProvider.Histogram(observability.MUsecaseDuration),
	}
}

// Outcome classifies an error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, commerce.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// Run executes body under useCase. Fields are attached to the log line; attrs to the span.
// The span and context logger are visible to body through ctx.
func (e *Envelope) Run(
	ctx context.Context,
	useCase, spanName string,
	fields []observability.Field,
	attrs []attribute.KeyValue,
	body func(ctx context.Context, span trace.Span) error,
) (err error) {
	logger := logctx.FromOr(ctx, e.log).With(observability.F("use_case", useCase))

	ctx, span := e.tel.Tracer().Start(ctx, spanPrefix+spanName,
		append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)...,
	)
	ctx = logctx.With(ctx, logger)
	start := time.Now()

	defer func() {
		outcome := Outcome(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		latency := time.Since(start).Seconds()
		e.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
		e.durHistogram.Observe(latency,
			observability.L("use_case", useCase),
		)

		logFields := append([]observability.Field{
			observability.F("outcome", outcome),
			observability.F("latency_seconds", latency),
		}, fields...)
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			logFields = append(logFields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			logFields = append(logFields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", logFields...)
	}()

	return body(ctx, span)
}
