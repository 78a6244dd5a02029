package runner

import (
	"context"
	"testing"
	"time"
)

func TestPoissonArrivalNextDelayUsesSampler(t *testing.T) {
	ctrl := &poissonArrival{rate: 200, sample: func() float64 { return 1 }}
	delay := ctrl.nextDelay()
	expected := time.Second / 200
	if delay != expected {
		t.Fatalf("expected delay %s, got %s", expected, delay)
	}
}

func TestPoissonArrivalReserveSpacesSlots(t *testing.T) {
	ctrl := &poissonArrival{rate: 10, sample: func() float64 { return 1 }}
	now := time.Unix(1000, 0)

	if d := ctrl.reserve(now); d != 0 {
		t.Fatalf("expected first slot immediately, got %s", d)
	}
	if d := ctrl.reserve(now); d != 100*time.Millisecond {
		t.Fatalf("expected second slot after 100ms, got %s", d)
	}
	if d := ctrl.reserve(now); d != 200*time.Millisecond {
		t.Fatalf("expected third slot after 200ms, got %s", d)
	}
}

func TestPoissonArrivalWaitCancelledContext(t *testing.T) {
	ctrl := &poissonArrival{rate: 0.000001, sample: func() float64 { return 1 }}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = ctrl.Wait(ctx) // first slot is free
	if err := ctrl.Wait(ctx); err == nil {
		t.Fatalf("expected context error when cancelled")
	}
}

func TestNewArrivalControllerUnlimited(t *testing.T) {
	opt := Options{}
	opt.normalize()
	if ctrl := newArrivalController(opt); ctrl != nil {
		t.Fatalf("expected no pacing without a rate, got %T", ctrl)
	}
}

func TestNewArrivalControllerModels(t *testing.T) {
	opt := Options{RatePerSecond: 50}
	opt.normalize()
	if _, ok := newArrivalController(opt).(*uniformArrival); !ok {
		t.Fatalf("expected uniform arrival by default")
	}
	opt.ArrivalModel = ArrivalModelPoisson
	if _, ok := newArrivalController(opt).(*poissonArrival); !ok {
		t.Fatalf("expected poisson arrival")
	}
}
