package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Engine string

const (
	EngineNetHTTP  Engine = "nethttp"
	EngineFastHTTP Engine = "fasthttp"
)

type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

type ChartSize string

const (
	ChartSizeNone   ChartSize = "none"
	ChartSizeSmall  ChartSize = "small"
	ChartSizeMedium ChartSize = "medium"
	ChartSizeLarge  ChartSize = "large"
)

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

type Config struct {
	Targets      []string          `mapstructure:"targets"`
	Method       string            `mapstructure:"method"`
	Headers      map[string]string `mapstructure:"headers"`
	Requests     int64             `mapstructure:"requests"`
	Concurrency  int               `mapstructure:"concurrency"`
	Engine       Engine            `mapstructure:"engine"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	Rate         int               `mapstructure:"rate"`
	Arrival      ArrivalConfig     `mapstructure:"arrival"`
	ChartSize    ChartSize         `mapstructure:"chart_size"`
	Output       OutputFormat      `mapstructure:"output"`
	LiveProgress bool              `mapstructure:"live_progress"`
	LogErrors    bool              `mapstructure:"log_errors"`
	MetricsFile  string            `mapstructure:"metrics_file"`
	Log          LogConfig         `mapstructure:"log"`
	Tracing      TracingConfig     `mapstructure:"tracing"`
	ConfigFile   string            `mapstructure:"-"`
}

type ArrivalConfig struct {
	Model ArrivalModel `mapstructure:"model"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`     // OTLP collector address; empty disables tracing
	Protocol    string  `mapstructure:"protocol"`     // grpc or http
	Insecure    bool    `mapstructure:"insecure"`     // plaintext connection to the collector
	SampleRate  float64 `mapstructure:"sample_rate"`  // 0.0 to 1.0
	ServiceName string  `mapstructure:"service_name"` // resource service.name
	Propagate   *bool   `mapstructure:"propagate"`    // inject traceparent into requests; nil means on
}

// Enabled reports whether an exporter endpoint is configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate returns true when trace context should be injected into
// outgoing requests.
func (t TracingConfig) ShouldPropagate() bool {
	if !t.Enabled() {
		return false
	}
	return t.Propagate == nil || *t.Propagate
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Method:      http.MethodGet,
		Headers:     map[string]string{},
		Requests:    1000,
		Concurrency: 1,
		Engine:      EngineNetHTTP,
		Timeout:     30 * time.Second,
		Arrival:     ArrivalConfig{Model: ArrivalModelUniform},
		ChartSize:   ChartSizeMedium,
		Output:      OutputText,
		Log:         LogConfig{Level: "warn", Format: "console"},
		Tracing: TracingConfig{
			Protocol:    "grpc",
			SampleRate:  1.0,
			ServiceName: "rench",
		},
	}
}

// ParseChartSize accepts the long and single-letter chart size names.
func ParseChartSize(s string) (ChartSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n":
		return ChartSizeNone, nil
	case "small", "s":
		return ChartSizeSmall, nil
	case "", "medium", "m":
		return ChartSizeMedium, nil
	case "large", "l":
		return ChartSizeLarge, nil
	default:
		return "", fmt.Errorf("unknown chart size %q (want none, small, medium or large)", s)
	}
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if len(c.Targets) == 0 {
		issues = append(issues, "at least one target URL is required (use --help for usage information)")
	}
	for _, target := range c.Targets {
		if issue := validateTarget(target); issue != "" {
			issues = append(issues, issue)
		}
	}

	switch c.Method {
	case http.MethodGet, http.MethodHead:
	default:
		issues = append(issues, fmt.Sprintf("method must be GET or HEAD, got %q", c.Method))
	}
	if c.Requests < 1 {
		issues = append(issues, "requests must be >= 1")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}

	switch c.Engine {
	case EngineNetHTTP, EngineFastHTTP:
	default:
		issues = append(issues, fmt.Sprintf("engine must be %s or %s, got %q", EngineNetHTTP, EngineFastHTTP, c.Engine))
	}
	switch c.Arrival.Model {
	case "", ArrivalModelUniform, ArrivalModelPoisson:
	default:
		issues = append(issues, fmt.Sprintf("arrival model must be uniform or poisson, got %q", c.Arrival.Model))
	}
	switch c.ChartSize {
	case ChartSizeNone, ChartSizeSmall, ChartSizeMedium, ChartSizeLarge:
	default:
		issues = append(issues, fmt.Sprintf("chart size must be none, small, medium or large, got %q", c.ChartSize))
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		issues = append(issues, fmt.Sprintf("output must be text, json or yaml, got %q", c.Output))
	}
	if c.LiveProgress && c.Output != OutputText {
		issues = append(issues, "live-progress requires text output")
	}

	issues = append(issues, validateHeaders(c.Headers)...)
	issues = append(issues, validateLogConfig(c.Log)...)
	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// Warnings returns non-fatal observations about the configuration.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Rate > 1000 {
		warnings = append(warnings, fmt.Sprintf("high rate limit configured (%d RPS); ensure you have authorization to test the target system", c.Rate))
	}
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("high concurrency configured (%d workers); ensure you have authorization to test the target system", c.Concurrency))
	}
	if c.Requests > 0 && int64(c.Concurrency) > c.Requests {
		warnings = append(warnings, fmt.Sprintf("concurrency %d exceeds request count %d; extra workers will idle", c.Concurrency, c.Requests))
	}
	return warnings
}

func validateTarget(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Sprintf("target %q: %v", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("target %q: scheme must be http or https", target)
	}
	if u.Host == "" {
		return fmt.Sprintf("target %q: host is required", target)
	}
	return ""
}

func validateHeaders(headers map[string]string) []string {
	var issues []string
	for key, value := range headers {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "\r\n") {
			issues = append(issues, fmt.Sprintf("invalid header key %q", key))
			continue
		}
		if strings.ContainsAny(value, "\r\n") {
			issues = append(issues, fmt.Sprintf("invalid header value for %s", key))
		}
	}
	return issues
}

func validateLogConfig(log LogConfig) []string {
	var issues []string
	switch strings.ToLower(log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("log level must be debug, info, warn or error, got %q", log.Level))
	}
	switch strings.ToLower(log.Format) {
	case "", "console", "json":
	default:
		issues = append(issues, fmt.Sprintf("log format must be console or json, got %q", log.Format))
	}
	return issues
}

func validateTracingConfig(t TracingConfig) []string {
	if !t.Enabled() {
		return nil
	}
	var issues []string
	switch t.Protocol {
	case "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol must be grpc or http, got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, "tracing sample rate must be between 0 and 1")
	}
	return issues
}
