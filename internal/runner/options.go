package runner

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/torosent/rench/internal/metrics"
)

// Issuer performs one request against target and reports what happened.
// Transport failures are returned as error outcomes, never as panics, and
// an HTTP status of any class is a successful outcome. Latency is measured
// by the caller.
type Issuer interface {
	Issue(ctx context.Context, target, method string) metrics.Outcome
}

// IssuerFunc adapts a function to the Issuer interface.
type IssuerFunc func(ctx context.Context, target, method string) metrics.Outcome

func (f IssuerFunc) Issue(ctx context.Context, target, method string) metrics.Outcome {
	return f(ctx, target, method)
}

// Recorder accepts outcomes from workers. It must be safe for concurrent use.
type Recorder interface {
	Record(metrics.Outcome) error
}

// ArrivalModel selects how request start times are spaced when a rate is set.
type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// Options configure the Runner.
type Options struct {
	Concurrency    int                         // number of worker goroutines
	TotalRequests  int64                       // exact number of requests to issue
	Method         string                      // GET or HEAD
	Targets        []string                    // URLs chosen round-robin
	Issuer         Issuer                      // request transport (required)
	Recorder       Recorder                    // outcome sink (required)
	RatePerSecond  int                         // pacing across all workers (0 means unlimited)
	ArrivalModel   ArrivalModel                // uniform or poisson pacing
	RandomSeed     int64                       // seed for the poisson sampler
	PoissonSampler func() float64              // optional injection for tests
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
	Logger         *zap.Logger
}

func (o *Options) normalize() {
	if o.Method == "" {
		o.Method = http.MethodGet
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.ArrivalModel == "" {
		o.ArrivalModel = ArrivalModelUniform
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			return rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

func (o *Options) validate() error {
	switch {
	case o.Concurrency < 1:
		return &ConfigError{Field: "concurrency", Reason: "must be at least 1"}
	case o.TotalRequests < 1:
		return &ConfigError{Field: "requests", Reason: "must be at least 1"}
	case o.Issuer == nil:
		return &ConfigError{Field: "issuer", Reason: "is required"}
	case o.Recorder == nil:
		return &ConfigError{Field: "recorder", Reason: "is required"}
	}
	switch o.Method {
	case http.MethodGet, http.MethodHead:
	default:
		return &ConfigError{Field: "method", Reason: "must be GET or HEAD, got " + o.Method}
	}
	switch o.ArrivalModel {
	case ArrivalModelUniform, ArrivalModelPoisson:
	default:
		return &ConfigError{Field: "arrival_model", Reason: "must be uniform or poisson"}
	}
	return nil
}

// ConfigError reports options that prevent a run from starting.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return "invalid " + e.Field + ": " + e.Err.Error()
	}
	return "invalid " + e.Field + ": " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }
