// Package sellauth talks to the SellAuth REST API.
package sellauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sellauth-tools/stockbot/internal/observability"
	"github.com/sellauth-tools/stockbot/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	peer            = "sellauth"
	spanPrefix      = "SellAuth."
	maxResponseSize = 10 << 20
	outcomeSuccess  = "success"
	outcomeError    = "error"

	DefaultBaseURL = "https://api.sellauth.com/v1"
	DefaultTimeout = 15 * time.Second
)

// ErrEmptyBody reports a response whose body was missing or not JSON.
var ErrEmptyBody = errors.New("sellauth: empty or non-JSON body")

// StatusError reports a response with a status other than 200.
type StatusError struct {
	Endpoint string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sellauth: %s: unexpected status %d", e.Endpoint, e.Status)
}

// Request is one call to the API. Endpoint names the operation for metrics and logs.
type Request struct {
	Endpoint string
	Method   string
	URL      string
	Body     any
}

// Result is the outcome of a call. A transport failure leaves Status at 0 and
// sets Err. A body that is not valid JSON leaves Body nil without an error.
type Result struct {
	Status int
	Body   json.RawMessage
	Err    error
}

// OK reports a 200 response carrying a JSON body.
func (r Result) OK() bool {
	return r.Err == nil && r.Status == http.StatusOK && len(r.Body) > 0
}

// Failure explains why OK is false; it returns nil when OK is true.
func (r Result) Failure(endpoint string) error {
	switch {
	case r.Err != nil:
		return r.Err
	case r.Status != http.StatusOK:
		return &StatusError{Endpoint: endpoint, Status: r.Status}
	case len(r.Body) == 0:
		return ErrEmptyBody
	}
	return nil
}

// Client performs authenticated calls. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	http   *http.Client
	apiKey string
	tel    observability.Observability
	log    observability.Logger

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}

	// Instruments pre-bound for the known endpoints; read-only after NewClient.
	boundCalls   map[string]observability.BoundCounter   // endpoint + "/" + outcome
	boundLatency map[string]observability.BoundHistogram // endpoint
}

// NewClient builds a Client. A nil httpClient gets one with DefaultTimeout.
func NewClient(httpClient *http.Client, apiKey string, tel observability.Observability) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	tel = observability.OrNop(tel)
	baseLog := tel.Logger()
	metricsProvider := tel.Metrics()
	c := &Client{
		http:         httpClient,
		apiKey:       apiKey,
		tel:          tel,
		log:          baseLog.With(observability.F("component", "sellauth_client")),
		extCounter:   metricsProvider.Counter(observability.MExternalRequests),
		extHistogram: metricsProvider.Histogram(observability.MExternalRequestDuration),
		boundCalls:   make(map[string]observability.BoundCounter, 2*len(endpoints)),
		boundLatency: make(map[string]observability.BoundHistogram, len(endpoints)),
	}
	for _, endpoint := range endpoints {
		for _, outcome := range []string{outcomeSuccess, outcomeError} {
			c.boundCalls[endpoint+"/"+outcome] = c.extCounter.Bind(
				observability.L("peer", peer),
				observability.L("endpoint", endpoint),
				observability.L("outcome", outcome),
			)
		}
		c.boundLatency[endpoint] = c.extHistogram.Bind(
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
		)
	}
	return c
}

// record counts one call. Endpoints outside the known set fall back to labelled instruments.
func (c *Client) record(endpoint, outcome string, latency float64) {
	if b, ok := c.boundCalls[endpoint+"/"+outcome]; ok {
		b.Add(1)
	} else {
		c.extCounter.Add(1,
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
	}
	if b, ok := c.boundLatency[endpoint]; ok {
		b.Observe(latency)
	} else {
		c.extHistogram.Observe(latency,
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
		)
	}
}

// Do sends req once. It never retries and never returns a Go error; failures
// are reported through Result.
func (c *Client) Do(ctx context.Context, req Request) (res Result) {
	ctx, span := c.tel.Tracer().Start(ctx, spanPrefix+req.Endpoint,
		attribute.String("peer.service", peer),
		attribute.String("http.request.method", req.Method),
		attribute.String("sellauth.endpoint", req.Endpoint),
	)
	logger := logctx.FromOr(ctx, c.log).With(
		observability.F("peer", peer),
		observability.F("endpoint", req.Endpoint),
	)
	start := time.Now()

	defer func() {
		outcome := outcomeSuccess
		if !res.OK() {
			outcome = outcomeError
		}
		latency := time.Since(start).Seconds()
		c.record(req.Endpoint, outcome, latency)

		span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
		fields := []observability.Field{
			observability.F("method", req.Method),
			observability.F("status", res.Status),
			observability.F("outcome", outcome),
			observability.F("latency_seconds", latency),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err := res.Failure(req.Endpoint); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			fields = append(fields, observability.F("error", err.Error()))
			logger.Warn("sellauth_request_failed", fields...)
		} else {
			span.SetStatus(codes.Ok, "OK")
			logger.Debug("sellauth_request_done", fields...)
		}
		span.End()
	}()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return Result{Err: fmt.Errorf("sellauth: %s: marshal body: %w", req.Endpoint, err)}
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return Result{Err: fmt.Errorf("sellauth: %s: build request: %w", req.Endpoint, err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{Err: fmt.Errorf("sellauth: %s: %w", req.Endpoint, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Result{Err: fmt.Errorf("sellauth: %s: read body: %w", req.Endpoint, err)}
	}

	res.Status = resp.StatusCode
	if json.Valid(raw) {
		res.Body = raw
	}
	return res
}
