package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/rench/internal/metrics"
	"github.com/torosent/rench/internal/runner"
)

type tracingIssuer struct {
	inner  runner.Issuer
	tracer trace.Tracer
}

// WithTracing wraps an issuer so every request runs inside a client span.
// The span context travels in ctx, where transports configured with a
// propagator pick it up.
func WithTracing(issuer runner.Issuer, tracer trace.Tracer) runner.Issuer {
	if tracer == nil {
		return issuer
	}
	return &tracingIssuer{inner: issuer, tracer: tracer}
}

func (t *tracingIssuer) Issue(ctx context.Context, target, method string) metrics.Outcome {
	ctx, span := t.tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", target),
		),
	)
	defer span.End()

	o := t.inner.Issue(ctx, target, method)
	if o.Failed() {
		kind := o.Kind
		if kind == "" {
			kind = metrics.ClassifyError(o.Err)
		}
		span.SetAttributes(attribute.String("error.type", string(kind)))
		span.RecordError(o.Err)
		span.SetStatus(codes.Error, o.Err.Error())
		return o
	}

	span.SetAttributes(
		attribute.Int("http.response.status_code", o.StatusCode),
		attribute.Int64("http.response.body.size", o.Bytes),
	)
	if o.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(o.StatusCode))
	}
	return o
}
