package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/torosent/rench/internal/metrics"
	"github.com/torosent/rench/internal/target"
)

type nopRecorder struct{}

func (nopRecorder) Record(metrics.Outcome) error { return nil }

var nopIssuer = IssuerFunc(func(_ context.Context, _, _ string) metrics.Outcome {
	return metrics.Success(200, 0)
})

func TestOptionsNormalize(t *testing.T) {
	o := Options{RatePerSecond: -1}
	o.normalize()
	if o.Method != "GET" {
		t.Errorf("Method = %q, want GET", o.Method)
	}
	if o.ArrivalModel != ArrivalModelUniform {
		t.Errorf("ArrivalModel = %q, want %q", o.ArrivalModel, ArrivalModelUniform)
	}
	if o.RatePerSecond != 0 {
		t.Errorf("RatePerSecond = %d, want 0", o.RatePerSecond)
	}
	if o.RandomSeed == 0 {
		t.Error("RandomSeed should be non-zero")
	}
	if o.LimiterFactory == nil {
		t.Error("LimiterFactory should not be nil")
	}
	if o.Logger == nil {
		t.Error("Logger should not be nil")
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	valid := func() Options {
		return Options{
			Concurrency:   2,
			TotalRequests: 10,
			Targets:       []string{"http://a"},
			Issuer:        nopIssuer,
			Recorder:      nopRecorder{},
		}
	}
	tests := []struct {
		name   string
		mutate func(*Options)
		field  string
	}{
		{"no targets", func(o *Options) { o.Targets = nil }, "targets"},
		{"zero concurrency", func(o *Options) { o.Concurrency = 0 }, "concurrency"},
		{"negative concurrency", func(o *Options) { o.Concurrency = -3 }, "concurrency"},
		{"zero requests", func(o *Options) { o.TotalRequests = 0 }, "requests"},
		{"nil issuer", func(o *Options) { o.Issuer = nil }, "issuer"},
		{"nil recorder", func(o *Options) { o.Recorder = nil }, "recorder"},
		{"post method", func(o *Options) { o.Method = "POST" }, "method"},
		{"bad arrival", func(o *Options) { o.ArrivalModel = "burst" }, "arrival_model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := valid()
			tt.mutate(&opt)
			r, err := New(opt)
			if err == nil {
				t.Fatalf("expected error, got runner %+v", r)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}

	if _, err := New(valid()); err != nil {
		t.Fatalf("expected valid options to pass, got %v", err)
	}
}

func TestNewNoTargetsWrapsSentinel(t *testing.T) {
	_, err := New(Options{Concurrency: 1, TotalRequests: 1, Issuer: nopIssuer, Recorder: nopRecorder{}})
	if !errors.Is(err, target.ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
}
