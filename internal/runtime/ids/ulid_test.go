package ids

import (
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestIDParses(t *testing.T) {
	id := NewRequestID()
	require.Len(t, id, 26)
	_, err := ulid.ParseStrict(id)
	assert.NoError(t, err)
}

func TestNewRequestIDMonotonic(t *testing.T) {
	prev := NewRequestID()
	for i := 0; i < 100; i++ {
		next := NewRequestID()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestNewRequestIDConcurrent(t *testing.T) {
	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- NewRequestID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
