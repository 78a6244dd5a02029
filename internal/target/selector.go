// Package target hands out request URLs to workers in round-robin order.
package target

import (
	"errors"
	"sync/atomic"
)

// ErrNoTargets is returned when a Selector is built from an empty list.
var ErrNoTargets = errors.New("at least one target URL is required")

// Selector yields configured URLs in round-robin order. It is safe for
// concurrent use; every call to Next claims exactly one sequence position.
type Selector struct {
	urls []string
	next atomic.Uint64
}

// NewSelector copies urls into a new Selector.
func NewSelector(urls []string) (*Selector, error) {
	if len(urls) == 0 {
		return nil, ErrNoTargets
	}
	return &Selector{urls: append([]string(nil), urls...)}, nil
}

// Next returns the URL at the next sequence position, starting at index 0.
func (s *Selector) Next() string {
	pos := s.next.Add(1) - 1
	return s.urls[pos%uint64(len(s.urls))]
}

// Len reports how many targets the selector cycles through.
func (s *Selector) Len() int {
	return len(s.urls)
}

// Targets returns a copy of the configured URLs in order.
func (s *Selector) Targets() []string {
	return append([]string(nil), s.urls...)
}
