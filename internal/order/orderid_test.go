package order

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderID_Format(t *testing.T) {
	now := time.Date(2026, 8, 29, 13, 45, 7, 0, time.UTC)

	id := NewOrderID(now, 42)

	assert.True(t, strings.HasPrefix(id, "2026082913450742"), "id %q should start with timestamp and user id", id)
	// 14 timestamp digits + user id + 12 hex chars
	assert.Len(t, id, 14+2+12)
}

func TestNewOrderID_DistinctWithinSameSecond(t *testing.T) {
	now := time.Now()

	first := NewOrderID(now, 42)
	second := NewOrderID(now, 42)

	// same instant, same user: the random suffix must still differ
	assert.NotEqual(t, first, second)
}

func TestNewOrderID_ConcurrentUniqueness(t *testing.T) {
	const n = 1000

	now := time.Now()
	ids := make([]string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = NewOrderID(now, int64(i%10))
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate order id %q", id)
		seen[id] = struct{}{}
	}
}
