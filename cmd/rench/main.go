package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/torosent/rench/internal/config"
	"github.com/torosent/rench/internal/fasthttpclient"
	"github.com/torosent/rench/internal/httpclient"
	"github.com/torosent/rench/internal/logging"
	"github.com/torosent/rench/internal/metrics"
	"github.com/torosent/rench/internal/output"
	"github.com/torosent/rench/internal/runner"
	"github.com/torosent/rench/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return execute(args, os.Stdout, os.Stderr)
}

// execute runs the CLI with explicit output streams. An empty argument list
// prints usage and succeeds; anything else must yield a valid configuration.
func execute(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.NewLoader().WithOutput(stdout).Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return benchmark(context.Background(), cfg, stdout, stderr)
}

func benchmark(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	logger := logging.New(cfg.Log, stderr)
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings() {
		logger.Warn("configuration warning", zap.String("warning", w))
	}

	provider, err := tracing.Init(ctx, cfg.Tracing,
		attribute.String("rench.engine", string(cfg.Engine)),
		attribute.Int("rench.concurrency", cfg.Concurrency),
		attribute.Int64("rench.requests", cfg.Requests),
	)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	issuer, err := newIssuer(cfg, provider)
	if err != nil {
		return err
	}
	issuer = provider.Wrap(issuer)
	if cfg.LogErrors {
		issuer = runner.WithLogging(issuer, logger)
	}

	text := cfg.Output == config.OutputText
	collector := metrics.NewCollector(int(min(cfg.Requests, 1<<20)))
	if text && !cfg.LiveProgress {
		collector.WithProgress(output.NewMilestonePrinter(stdout), cfg.Requests)
	}

	r, err := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.Requests,
		Method:        cfg.Method,
		Targets:       cfg.Targets,
		Issuer:        issuer,
		Recorder:      collector,
		RatePerSecond: cfg.Rate,
		ArrivalModel:  toRunnerArrivalModel(cfg.Arrival.Model),
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	if text {
		fmt.Fprintln(stdout, "Beginning requests")
	}
	var progress *output.ProgressReporter
	if text && cfg.LiveProgress {
		progress = output.NewProgressReporter(collector, cfg.Requests, progressInterval, stdout)
		progress.Start()
	}

	result := r.Run(ctx)

	if progress != nil {
		progress.Stop()
	}
	if text {
		fmt.Fprintln(stdout, "Finished!")
		fmt.Fprintln(stdout)
	}

	size := output.ChartSizeByName(string(cfg.ChartSize))
	report := metrics.BuildReport(collector.Freeze(), result.Duration, size.Buckets)
	logger.Info("run complete",
		zap.String("run_id", report.RunID),
		zap.Int64("requests", report.TotalRequests),
		zap.Int64("errors", report.Errors),
		zap.Duration("elapsed", report.Elapsed))

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile, report); err != nil {
			return err
		}
	}

	switch cfg.Output {
	case config.OutputJSON:
		return output.PrintJSONReport(stdout, report)
	case config.OutputYAML:
		return output.PrintYAMLReport(stdout, report)
	default:
		output.PrintReport(stdout, report, size)
		return nil
	}
}

func newIssuer(cfg *config.Config, provider *tracing.Provider) (runner.Issuer, error) {
	headers, err := httpclient.ParseHeaders(cfg.Headers)
	if err != nil {
		return nil, err
	}
	switch cfg.Engine {
	case config.EngineFastHTTP:
		return fasthttpclient.NewIssuer(fasthttpclient.Options{
			Timeout:         cfg.Timeout,
			MaxConnsPerHost: cfg.Concurrency,
			Headers:         headers,
			Propagator:      provider.Propagator(),
		}), nil
	case config.EngineNetHTTP, "":
		var opts []httpclient.Option
		if p := provider.Propagator(); p != nil {
			opts = append(opts, httpclient.WithPropagator(p))
		}
		client := httpclient.NewClient(cfg.Timeout, cfg.Concurrency)
		return httpclient.NewIssuer(client, headers, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported engine %q", cfg.Engine)
	}
}

func toRunnerArrivalModel(model config.ArrivalModel) runner.ArrivalModel {
	if model == config.ArrivalModelPoisson {
		return runner.ArrivalModelPoisson
	}
	return runner.ArrivalModelUniform
}
