package target_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torosent/rench/internal/target"
)

func TestNewSelectorRejectsEmptyList(t *testing.T) {
	_, err := target.NewSelector(nil)
	if !errors.Is(err, target.ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
	_, err = target.NewSelector([]string{})
	if !errors.Is(err, target.ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets for empty slice, got %v", err)
	}
}

func TestSelectorRoundRobinWraps(t *testing.T) {
	s, err := target.NewSelector([]string{"a", "b", "c"})
	require.NoError(t, err)

	want := []string{"a", "b", "c", "a", "b", "c", "a"}
	for i, w := range want {
		assert.Equal(t, w, s.Next(), "position %d", i)
	}
}

func TestSelectorCopiesInput(t *testing.T) {
	urls := []string{"a", "b"}
	s, err := target.NewSelector(urls)
	require.NoError(t, err)

	urls[0] = "mutated"
	assert.Equal(t, "a", s.Next())

	got := s.Targets()
	got[1] = "mutated"
	assert.Equal(t, []string{"a", "b"}, s.Targets())
	assert.Equal(t, 2, s.Len())
}

func TestSelectorConcurrentFairness(t *testing.T) {
	urls := []string{"a", "b", "c", "d"}
	s, err := target.NewSelector(urls)
	require.NoError(t, err)

	const workers = 16
	const perWorker = 1000

	var mu sync.Mutex
	counts := map[string]int{}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			local := map[string]int{}
			for j := 0; j < perWorker; j++ {
				local[s.Next()]++
			}
			mu.Lock()
			for k, v := range local {
				counts[k] += v
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	expected := workers * perWorker / len(urls)
	for _, u := range urls {
		assert.Equal(t, expected, counts[u], "target %s", u)
	}
}
