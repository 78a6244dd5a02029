// Package runner executes a fixed request budget with a fixed pool of workers.
//
// Every worker repeatedly claims one unit of a shared atomic budget, picks the
// next target round-robin, times one call to the [Issuer] and hands the
// [metrics.Outcome] to the [Recorder]. The run ends when the budget is
// exhausted and every worker has returned; there are no retries and no
// early exit, so exactly TotalRequests outcomes are recorded.
//
//	r, err := runner.New(runner.Options{
//		Concurrency:   10,
//		TotalRequests: 1000,
//		Targets:       []string{"http://localhost:8080/"},
//		Issuer:        issuer,
//		Recorder:      collector,
//	})
//	if err != nil {
//		return err // *ConfigError
//	}
//	result := r.Run(ctx)
//
// # Arrival Models
//
// With RatePerSecond set, request starts are paced across all workers:
//   - [ArrivalModelUniform]: fixed spacing via golang.org/x/time/rate
//   - [ArrivalModelPoisson]: exponentially distributed spacing
//
// # Middleware
//
// [WithLogging] logs failed requests without touching the worker loop.
package runner
