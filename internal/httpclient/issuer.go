package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/propagation"

	"github.com/torosent/rench/internal/metrics"
)

// Issuer performs requests with net/http.
type Issuer struct {
	client     *http.Client
	headers    http.Header
	propagator propagation.TextMapPropagator
}

// Option customizes an Issuer.
type Option func(*Issuer)

// WithPropagator injects trace context from the request context into every
// outgoing request.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(i *Issuer) { i.propagator = p }
}

// NewIssuer returns an issuer that sends headers with every request.
func NewIssuer(client *http.Client, headers http.Header, opts ...Option) *Issuer {
	if client == nil {
		client = http.DefaultClient
	}
	i := &Issuer{client: client, headers: headers.Clone()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue sends one request and drains the response body. Bytes are counted as
// they are read, so chunked and mislabelled responses are measured correctly.
func (i *Issuer) Issue(ctx context.Context, target, method string) metrics.Outcome {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return metrics.Failure(err)
	}
	for key, values := range i.headers {
		req.Header[key] = values
	}
	if i.propagator != nil {
		i.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return metrics.Failure(err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		o := metrics.Failure(fmt.Errorf("read body after %d bytes: %w", n, err))
		if o.Kind == metrics.ErrorKindOther {
			o.Kind = metrics.ErrorKindMalformed
		}
		return o
	}
	return metrics.Success(resp.StatusCode, n)
}
