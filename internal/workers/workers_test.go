package workers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWidth(t *testing.T) {
	assert.Equal(t, 10, Width(10, 250))
	assert.Equal(t, 3, Width(10, 3))
	assert.Equal(t, 1, Width(10, 0))
	assert.Equal(t, 1, Width(0, 5))
}

func TestForEachBoundsParallelism(t *testing.T) {
	var running, peak int32
	items := make([]int, 20)

	ForEach(items, 4, func(int) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	})

	assert.LessOrEqual(t, peak, int32(4))
	assert.Greater(t, peak, int32(0))
}

func TestForEachVisitsEveryItem(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}

	ForEach([]string{"a", "b", "c"}, 10, func(s string) {
		mu.Lock()
		defer mu.Unlock()
		seen[s] = true
	})

	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, seen)
}

func TestMapKeepsOrder(t *testing.T) {
	got := Map([]int{5, 1, 4, 2}, 2, func(i int) int {
		time.Sleep(time.Duration(i) * time.Millisecond)
		return i * 10
	})

	assert.Equal(t, []int{50, 10, 40, 20}, got)
}

func TestMapEmpty(t *testing.T) {
	assert.Empty(t, Map([]int{}, 5, func(i int) int { return i }))
}
