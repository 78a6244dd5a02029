package metrics_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/torosent/rench/internal/metrics"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want metrics.ErrorKind
	}{
		{"nil", nil, ""},
		{"canceled", fmt.Errorf("do: %w", context.Canceled), metrics.ErrorKindCanceled},
		{"deadline", context.DeadlineExceeded, metrics.ErrorKindTimeout},
		{"net timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, metrics.ErrorKindTimeout},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, metrics.ErrorKindConnRefused},
		{"dns", &net.DNSError{Err: "no such host", Name: "nope.invalid"}, metrics.ErrorKindDNS},
		{"unexpected eof", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), metrics.ErrorKindMalformed},
		{"text refused", errors.New("dial tcp 127.0.0.1:1: connection refused"), metrics.ErrorKindConnRefused},
		{"text timeout", errors.New("timeout"), metrics.ErrorKindTimeout},
		{"other", errors.New("boom"), metrics.ErrorKindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := metrics.ClassifyError(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFriendlyKindName(t *testing.T) {
	if got := metrics.FriendlyKindName(metrics.ErrorKindConnRefused); got != "Connection refused" {
		t.Fatalf("expected Connection refused, got %q", got)
	}
	if got := metrics.FriendlyKindName("tls_handshake"); got != "Tls handshake" {
		t.Fatalf("expected Tls handshake, got %q", got)
	}
	if got := metrics.FriendlyKindName(""); got != "Unknown error" {
		t.Fatalf("expected Unknown error, got %q", got)
	}
}

func TestSortedStatuses(t *testing.T) {
	rows := metrics.SortedStatuses(map[int]int64{500: 1, 200: 9, 404: 2})
	if len(rows) != 3 || rows[0].Code != 200 || rows[1].Code != 404 || rows[2].Code != 500 {
		t.Fatalf("unexpected order: %+v", rows)
	}
	if metrics.SortedStatuses(nil) != nil {
		t.Fatalf("expected nil for empty histogram")
	}
}

func TestSortedKinds(t *testing.T) {
	rows := metrics.SortedKinds(map[metrics.ErrorKind]int64{
		metrics.ErrorKindDNS:     1,
		metrics.ErrorKindTimeout: 4,
		metrics.ErrorKindOther:   1,
	})
	if len(rows) != 3 || rows[0].Kind != metrics.ErrorKindTimeout || rows[1].Kind != metrics.ErrorKindDNS {
		t.Fatalf("unexpected order: %+v", rows)
	}
}
