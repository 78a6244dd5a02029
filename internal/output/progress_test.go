package output

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/torosent/rench/internal/metrics"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressReporterWritesLiveLine(t *testing.T) {
	c := metrics.NewCollector(4)
	o := metrics.Success(200, 1)
	o.Latency = 5 * time.Millisecond
	_ = c.Record(o)

	out := &syncBuffer{}
	p := NewProgressReporter(c, 10, 10*time.Millisecond, out)
	p.Start()
	p.Start()
	time.Sleep(50 * time.Millisecond)
	p.Stop()
	p.Stop()

	got := out.String()
	if !strings.Contains(got, "\rRequests: 1/10 | Errors: 0") {
		t.Fatalf("unexpected progress output %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Fatalf("progress line should be terminated on stop: %q", got)
	}
}

func TestMilestonePrinter(t *testing.T) {
	var buf bytes.Buffer
	c := metrics.NewCollector(20).WithProgress(NewMilestonePrinter(&buf), 20)
	for i := 0; i < 20; i++ {
		_ = c.Record(metrics.Success(200, 0))
	}
	var want strings.Builder
	for n := 2; n <= 20; n += 2 {
		fmt.Fprintf(&want, "%d requests\n", n)
	}
	if buf.String() != want.String() {
		t.Fatalf("got %q want %q", buf.String(), want.String())
	}
}
