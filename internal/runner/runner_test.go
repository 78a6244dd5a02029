package runner_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/torosent/rench/internal/metrics"
	"github.com/torosent/rench/internal/runner"
)

// fakeIssuer simulates a transport with random latency and a configurable
// failure ratio.
type fakeIssuer struct {
	calls     atomic.Int64
	maxDelay  time.Duration
	failEvery int64

	mu      sync.Mutex
	targets map[string]int
	seq     []string
}

func (f *fakeIssuer) Issue(_ context.Context, target, _ string) metrics.Outcome {
	n := f.calls.Add(1)
	if f.maxDelay > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(f.maxDelay))))
	}
	f.mu.Lock()
	if f.targets == nil {
		f.targets = make(map[string]int)
	}
	f.targets[target]++
	f.seq = append(f.seq, target)
	f.mu.Unlock()

	if f.failEvery > 0 && n%f.failEvery == 0 {
		return metrics.Failure(errors.New("connection refused"))
	}
	return metrics.Success(200, 16)
}

func TestRunnerIssuesExactTotal(t *testing.T) {
	tests := []struct {
		concurrency int
		total       int64
	}{
		{1, 25},
		{4, 25},
		{10, 3},
		{7, 1000},
	}
	for _, tt := range tests {
		issuer := &fakeIssuer{}
		collector := metrics.NewCollector(int(tt.total))
		r, err := runner.New(runner.Options{
			Concurrency:   tt.concurrency,
			TotalRequests: tt.total,
			Targets:       []string{"http://a"},
			Issuer:        issuer,
			Recorder:      collector,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res := r.Run(context.Background())
		if res.Total != tt.total {
			t.Fatalf("expected total %d, got %d", tt.total, res.Total)
		}
		if got := issuer.calls.Load(); got != tt.total {
			t.Fatalf("expected issuer called %d times, got %d", tt.total, got)
		}
		if got := collector.Count(); got != tt.total {
			t.Fatalf("expected %d recorded outcomes, got %d", tt.total, got)
		}
	}
}

func TestRunnerStress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress run")
	}
	const total = 10000
	issuer := &fakeIssuer{maxDelay: 100 * time.Microsecond, failEvery: 7}
	collector := metrics.NewCollector(total)
	r, err := runner.New(runner.Options{
		Concurrency:   50,
		TotalRequests: total,
		Targets:       []string{"http://a", "http://b", "http://c", "http://d"},
		Issuer:        issuer,
		Recorder:      collector,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := r.Run(context.Background())

	report := metrics.BuildReport(collector.Freeze(), res.Duration, 50)
	var hist int64
	for _, n := range report.StatusHistogram {
		hist += n
	}
	if report.TotalRequests != total || hist+report.Errors != total {
		t.Fatalf("expected %d outcomes, got histogram %d + errors %d", total, hist, report.Errors)
	}
	if report.Errors != total/7 || res.Errors != total/7 {
		t.Fatalf("expected %d errors, got report %d result %d", total/7, report.Errors, res.Errors)
	}
	for _, url := range []string{"http://a", "http://b", "http://c", "http://d"} {
		if issuer.targets[url] != total/4 {
			t.Fatalf("expected %d requests to %s, got %d", total/4, url, issuer.targets[url])
		}
	}
}

func TestRunnerSingleWorkerPreservesOrder(t *testing.T) {
	issuer := &fakeIssuer{}
	r, err := runner.New(runner.Options{
		Concurrency:   1,
		TotalRequests: 7,
		Targets:       []string{"a", "b", "c"},
		Issuer:        issuer,
		Recorder:      metrics.NewCollector(0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Run(context.Background())

	want := []string{"a", "b", "c", "a", "b", "c", "a"}
	for i, url := range want {
		if issuer.seq[i] != url {
			t.Fatalf("request %d: expected %s, got %s", i, url, issuer.seq[i])
		}
	}
}

func TestRunnerAllErrors(t *testing.T) {
	collector := metrics.NewCollector(0)
	r, err := runner.New(runner.Options{
		Concurrency:   3,
		TotalRequests: 12,
		Targets:       []string{"http://127.0.0.1:1"},
		Issuer: runner.IssuerFunc(func(context.Context, string, string) metrics.Outcome {
			return metrics.Failure(errors.New("dial tcp 127.0.0.1:1: connection refused"))
		}),
		Recorder: collector,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := r.Run(context.Background())
	if res.Total != 12 || res.Errors != 12 {
		t.Fatalf("expected 12 total and 12 errors, got %+v", res)
	}
	report := metrics.BuildReport(collector.Freeze(), res.Duration, 10)
	if report.Errors != 12 || len(report.StatusHistogram) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.ErrorKinds[metrics.ErrorKindConnRefused] != 12 {
		t.Fatalf("expected 12 connection_refused, got %v", report.ErrorKinds)
	}
}

func TestRunnerMeasuresLatency(t *testing.T) {
	collector := metrics.NewCollector(0)
	r, err := runner.New(runner.Options{
		Concurrency:   2,
		TotalRequests: 4,
		Targets:       []string{"x"},
		Issuer: runner.IssuerFunc(func(context.Context, string, string) metrics.Outcome {
			time.Sleep(5 * time.Millisecond)
			return metrics.Success(204, 0)
		}),
		Recorder: collector,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Run(context.Background())
	for _, l := range collector.Freeze().Latencies {
		if l < 5*time.Millisecond {
			t.Fatalf("expected latency >= 5ms, got %s", l)
		}
	}
}

func TestRunnerCancelledContextStillRecordsBudget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	core, logs := observer.New(zapcore.DebugLevel)
	collector := metrics.NewCollector(0)
	r, err := runner.New(runner.Options{
		Logger:        zap.New(core),
		Concurrency:   4,
		TotalRequests: 40,
		Targets:       []string{"x"},
		Issuer: runner.IssuerFunc(func(ctx context.Context, _, _ string) metrics.Outcome {
			if err := ctx.Err(); err != nil {
				return metrics.Failure(err)
			}
			return metrics.Success(200, 0)
		}),
		Recorder:      collector,
		RatePerSecond: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := r.Run(ctx)
	if res.Total != 40 || res.Errors != 40 {
		t.Fatalf("expected all 40 requests recorded as errors, got %+v", res)
	}
	if got := collector.Freeze().ErrorKinds[metrics.ErrorKindCanceled]; got != 40 {
		t.Fatalf("expected 40 canceled outcomes, got %d", got)
	}
	if n := logs.FilterMessage("pacing wait interrupted").Len(); n != 40 {
		t.Fatalf("expected 40 interrupted pacing logs, got %d", n)
	}
}

func TestRunnerRateLimit(t *testing.T) {
	issuer := &fakeIssuer{}
	r, err := runner.New(runner.Options{
		Concurrency:   4,
		TotalRequests: 6,
		Targets:       []string{"x"},
		Issuer:        issuer,
		Recorder:      metrics.NewCollector(0),
		RatePerSecond: 50,
		LimiterFactory: func(rps int) *rate.Limiter {
			return rate.NewLimiter(rate.Limit(rps), 1)
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := r.Run(context.Background())
	// Six starts at 50/s with burst 1 need at least five 20ms gaps.
	if res.Duration < 90*time.Millisecond {
		t.Fatalf("expected pacing to take at least 90ms, took %s", res.Duration)
	}
	if res.Total != 6 {
		t.Fatalf("expected 6 requests, got %d", res.Total)
	}
}

func TestRunnerPoissonArrival(t *testing.T) {
	r, err := runner.New(runner.Options{
		Concurrency:    2,
		TotalRequests:  5,
		Targets:        []string{"x"},
		Issuer:         &fakeIssuer{},
		Recorder:       metrics.NewCollector(0),
		RatePerSecond:  100,
		ArrivalModel:   runner.ArrivalModelPoisson,
		PoissonSampler: func() float64 { return 1 },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := r.Run(context.Background())
	if res.Duration < 35*time.Millisecond {
		t.Fatalf("expected four 10ms gaps, took %s", res.Duration)
	}
}

func TestWithLoggingLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	issuer := runner.WithLogging(runner.IssuerFunc(func(_ context.Context, target, _ string) metrics.Outcome {
		if target == "bad" {
			return metrics.Failure(errors.New("i/o timeout"))
		}
		return metrics.Success(500, 0)
	}), zap.New(core))

	issuer.Issue(context.Background(), "good", "GET")
	issuer.Issue(context.Background(), "bad", "HEAD")

	entries := logs.FilterMessage("request failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 failure log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["target"] != "bad" || fields["kind"] != "timeout" || fields["method"] != "HEAD" {
		t.Fatalf("unexpected log fields: %v", fields)
	}
}

func TestWithLoggingNilLogger(t *testing.T) {
	inner := runner.IssuerFunc(func(context.Context, string, string) metrics.Outcome { return metrics.Success(200, 0) })
	if got := runner.WithLogging(inner, nil); got == nil {
		t.Fatalf("expected inner issuer back")
	}
}

func TestRunnerLogsDroppedOutcomes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	collector := metrics.NewCollector(0)
	collector.Freeze()

	r, err := runner.New(runner.Options{
		Concurrency:   1,
		TotalRequests: 2,
		Targets:       []string{"x"},
		Issuer:        &fakeIssuer{},
		Recorder:      collector,
		Logger:        zap.New(core),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Run(context.Background())
	if n := logs.FilterMessage("dropping outcome").Len(); n != 2 {
		t.Fatalf("expected 2 dropped outcome logs, got %d", n)
	}
	if n := logs.FilterMessage("workers finished").Len(); n != 1 {
		t.Fatalf("expected finish log, got %d", n)
	}
}
