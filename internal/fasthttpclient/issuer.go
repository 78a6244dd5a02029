// Package fasthttpclient is the valyala/fasthttp request transport.
package fasthttpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/propagation"

	"github.com/torosent/rench/internal/metrics"
)

// Options configure an Issuer.
type Options struct {
	Timeout         time.Duration
	MaxConnsPerHost int
	Headers         http.Header
	Propagator      propagation.TextMapPropagator
}

// Issuer performs requests with a shared fasthttp.Client.
type Issuer struct {
	client     *fasthttp.Client
	timeout    time.Duration
	headers    http.Header
	propagator propagation.TextMapPropagator
}

// NewIssuer returns an issuer backed by a client sized for MaxConnsPerHost
// concurrent workers per target.
func NewIssuer(opt Options) *Issuer {
	if opt.Timeout < 0 {
		opt.Timeout = 0
	}
	if opt.MaxConnsPerHost < 1 {
		opt.MaxConnsPerHost = fasthttp.DefaultMaxConnsPerHost
	}
	client := &fasthttp.Client{
		ReadTimeout:         opt.Timeout,
		WriteTimeout:        opt.Timeout,
		MaxConnsPerHost:     opt.MaxConnsPerHost,
		MaxConnWaitTimeout:  opt.Timeout,
		MaxIdleConnDuration: 90 * time.Second,
		// One attempt per request; a failed attempt is a recorded outcome.
		MaxIdemponentCallAttempts: 1,
	}
	return &Issuer{
		client:     client,
		timeout:    opt.Timeout,
		headers:    opt.Headers.Clone(),
		propagator: opt.Propagator,
	}
}

// Issue sends one request. fasthttp reads the whole body before returning,
// decoding chunked transfer, and the outcome carries its decoded length.
func (i *Issuer) Issue(ctx context.Context, target, method string) metrics.Outcome {
	if err := ctx.Err(); err != nil {
		return metrics.Failure(err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(method)
	for name, values := range i.headers {
		for idx, value := range values {
			if idx == 0 {
				req.Header.Set(name, value)
			} else {
				req.Header.Add(name, value)
			}
		}
	}
	if i.propagator != nil {
		i.propagator.Inject(ctx, headerCarrier{h: &req.Header})
	}
	resp.SkipBody = method == http.MethodHead

	if err := i.do(ctx, req, resp); err != nil {
		return metrics.Failure(err)
	}
	return metrics.Success(resp.StatusCode(), int64(len(resp.Body())))
}

func (i *Issuer) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		if i.timeout > 0 {
			if own := time.Now().Add(i.timeout); own.Before(deadline) {
				deadline = own
			}
		}
		return i.client.DoDeadline(req, resp, deadline)
	}
	if i.timeout > 0 {
		return i.client.DoTimeout(req, resp, i.timeout)
	}
	return i.client.Do(req, resp)
}

// headerCarrier adapts fasthttp request headers to propagation.TextMapCarrier.
type headerCarrier struct {
	h *fasthttp.RequestHeader
}

func (c headerCarrier) Get(key string) string {
	return string(c.h.Peek(key))
}

func (c headerCarrier) Set(key, value string) {
	c.h.Set(key, value)
}

func (c headerCarrier) Keys() []string {
	var keys []string
	for key := range c.h.All() {
		keys = append(keys, string(key))
	}
	return keys
}
