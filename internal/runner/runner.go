package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/torosent/rench/internal/metrics"
	"github.com/torosent/rench/internal/target"
)

// Result captures execution summary.
type Result struct {
	Total    int64
	Errors   int64
	Duration time.Duration
}

// Runner issues a fixed number of requests with a fixed number of workers.
type Runner struct {
	opt      Options
	selector *target.Selector
	arrival  arrivalController
}

// New validates opt and prepares a run. No worker is started.
func New(opt Options) (*Runner, error) {
	opt.normalize()
	selector, err := target.NewSelector(opt.Targets)
	if err != nil {
		return nil, &ConfigError{Field: "targets", Err: err}
	}
	if err := opt.validate(); err != nil {
		return nil, err
	}
	return &Runner{opt: opt, selector: selector, arrival: newArrivalController(opt)}, nil
}

// Run blocks until every request of the budget has been issued and recorded.
// ctx is handed to the issuer; cancelling it makes the remaining requests fail
// quickly but does not shrink the budget.
func (r *Runner) Run(ctx context.Context) Result {
	log := r.opt.Logger
	log.Debug("starting workers",
		zap.Int("concurrency", r.opt.Concurrency),
		zap.Int64("requests", r.opt.TotalRequests),
	)

	start := time.Now()
	var remaining, total, errs atomic.Int64
	remaining.Store(r.opt.TotalRequests)

	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for i := 0; i < r.opt.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for remaining.Add(-1) >= 0 {
				// A claimed unit is always issued; an interrupted wait only
				// loses its pacing.
				if r.arrival != nil {
					if err := r.arrival.Wait(ctx); err != nil {
						log.Debug("pacing wait interrupted", zap.Error(err))
					}
				}
				o := r.issue(ctx)
				total.Add(1)
				if o.Failed() {
					errs.Add(1)
				}
				if err := r.opt.Recorder.Record(o); err != nil {
					log.Warn("dropping outcome", zap.Error(err))
				}
			}
		}()
	}
	wg.Wait()

	res := Result{
		Total:    total.Load(),
		Errors:   errs.Load(),
		Duration: time.Since(start),
	}
	log.Debug("workers finished",
		zap.Int64("total", res.Total),
		zap.Int64("errors", res.Errors),
		zap.Duration("elapsed", res.Duration),
	)
	return res
}

func (r *Runner) issue(ctx context.Context) metrics.Outcome {
	url := r.selector.Next()
	began := time.Now()
	o := r.opt.Issuer.Issue(ctx, url, r.opt.Method)
	o.Latency = time.Since(began)
	if o.Failed() && o.Kind == "" {
		o.Kind = metrics.ClassifyError(o.Err)
	}
	return o
}
