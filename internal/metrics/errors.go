package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

var kindLabels = map[ErrorKind]string{
	ErrorKindTimeout:     "Timeout",
	ErrorKindConnRefused: "Connection refused",
	ErrorKindDNS:         "DNS lookup failed",
	ErrorKindMalformed:   "Malformed response",
	ErrorKindCanceled:    "Canceled",
	ErrorKindOther:       "Other error",
}

// ClassifyError maps a transport error onto an ErrorKind.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return ErrorKindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return ErrorKindTimeout
		}
		return ErrorKindDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrorKindConnRefused
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorKindTimeout
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return ErrorKindMalformed
	}

	// Some clients only surface these conditions as text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return ErrorKindConnRefused
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return ErrorKindTimeout
	case strings.Contains(msg, "no such host"):
		return ErrorKindDNS
	case strings.Contains(msg, "malformed"), strings.Contains(msg, "unexpected eof"):
		return ErrorKindMalformed
	}
	return ErrorKindOther
}

// FriendlyKindName returns a human-readable label for an ErrorKind.
func FriendlyKindName(kind ErrorKind) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	if strings.TrimSpace(string(kind)) == "" {
		return "Unknown error"
	}
	words := strings.Fields(strings.ReplaceAll(string(kind), "_", " "))
	if len(words) == 0 {
		return "Unknown error"
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}
