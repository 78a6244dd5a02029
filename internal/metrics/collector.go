package metrics

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// ErrFrozen is returned by Record once the collector has been frozen.
var ErrFrozen = errors.New("metrics: collector is frozen")

// ProgressObserver receives milestone notifications while a run is in flight.
// It is called outside the collector lock.
type ProgressObserver interface {
	Progress(completed, total int64)
}

// Collector records per-request outcomes in a thread-safe manner.
// Latencies are appended under a single lock, so outcomes recorded by one
// goroutine keep their order in the frozen sample set.
type Collector struct {
	mu         sync.Mutex
	latencies  []time.Duration
	statuses   map[int]int64
	errors     int64
	errorKinds map[ErrorKind]int64
	bytes      int64
	frozen     bool

	// Approximate view for live progress; the report uses exact samples.
	hist *hdrhistogram.Histogram

	count    atomic.Int64
	observer ProgressObserver
	total    int64
	step     int64
}

// Snapshot is the frozen, read-only sample set handed to the reducer.
type Snapshot struct {
	Latencies  []time.Duration
	Statuses   map[int]int64
	Errors     int64
	ErrorKinds map[ErrorKind]int64
	Bytes      int64
}

// Total is the number of outcomes in the snapshot.
func (s Snapshot) Total() int64 {
	total := s.Errors
	for _, c := range s.Statuses {
		total += c
	}
	return total
}

// LiveStats is the approximate mid-run view used by progress reporting.
type LiveStats struct {
	Completed int64
	Errors    int64
	P50       time.Duration
	P99       time.Duration
}

// NewCollector returns an empty collector. capacity pre-sizes the latency
// sample buffer and may be zero.
func NewCollector(capacity int) *Collector {
	if capacity < 0 {
		capacity = 0
	}
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		latencies:  make([]time.Duration, 0, capacity),
		statuses:   make(map[int]int64),
		errorKinds: make(map[ErrorKind]int64),
		hist:       h,
	}
}

// WithProgress registers an observer notified every max(total/10, 1)
// recorded outcomes. It must be called before recording starts.
func (c *Collector) WithProgress(observer ProgressObserver, total int64) *Collector {
	c.observer = observer
	c.total = total
	c.step = total / 10
	if c.step < 1 {
		c.step = 1
	}
	return c
}

// Record adds one outcome to the aggregate.
func (c *Collector) Record(o Outcome) error {
	latency := o.Latency
	if latency < 0 {
		latency = 0
	}

	c.mu.Lock()
	if c.frozen {
		c.mu.Unlock()
		return ErrFrozen
	}
	if o.Failed() {
		c.errors++
		kind := o.Kind
		if kind == "" {
			kind = ClassifyError(o.Err)
		}
		c.errorKinds[kind]++
	} else {
		c.latencies = append(c.latencies, latency)
		c.statuses[o.StatusCode]++
		c.bytes += o.Bytes
		c.recordLive(latency)
	}
	c.mu.Unlock()

	n := c.count.Add(1)
	if c.observer != nil && n%c.step == 0 {
		c.observer.Progress(n, c.total)
	}
	return nil
}

func (c *Collector) recordLive(latency time.Duration) {
	us := latency.Microseconds()
	if us < c.hist.LowestTrackableValue() {
		us = c.hist.LowestTrackableValue()
	}
	if us > c.hist.HighestTrackableValue() {
		us = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(us)
}

// Count returns the number of outcomes recorded so far.
func (c *Collector) Count() int64 {
	return c.count.Load()
}

// Live returns approximate statistics for the outcomes recorded so far.
func (c *Collector) Live() LiveStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := LiveStats{
		Completed: c.count.Load(),
		Errors:    c.errors,
	}
	if c.hist.TotalCount() > 0 {
		live.P50 = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		live.P99 = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}
	return live
}

// Freeze stops accepting outcomes and returns the collected samples.
// Calling Freeze again returns the same data.
func (c *Collector) Freeze() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frozen = true
	statuses := make(map[int]int64, len(c.statuses))
	for code, n := range c.statuses {
		statuses[code] = n
	}
	kinds := make(map[ErrorKind]int64, len(c.errorKinds))
	for kind, n := range c.errorKinds {
		kinds[kind] = n
	}
	return Snapshot{
		Latencies:  c.latencies,
		Statuses:   statuses,
		Errors:     c.errors,
		ErrorKinds: kinds,
		Bytes:      c.bytes,
	}
}
