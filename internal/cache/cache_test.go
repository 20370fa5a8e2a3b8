package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIsStableAndBounded(t *testing.T) {
	a := Key("job text", "Go,Python", "4")
	b := Key("job text", "Go,Python", "4")
	c := Key("other job", "Go,Python", "4")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}

func TestKeyPartBoundaries(t *testing.T) {
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"), "part boundaries must affect the digest")
}

func TestGetSetRoundTrip(t *testing.T) {
	c := New("test", time.Hour, nil)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "payload")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "payload", v)
}

func TestExpiryEvictsOnRead(t *testing.T) {
	c := New("test", time.Hour, nil)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("k", "payload")

	current = current.Add(59 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok, "fresh within TTL")

	current = current.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "expired after TTL")

	stats := c.Stats()
	assert.Zero(t, stats.TotalEntries, "expired entry evicted on read")
}

func TestGetOrComputeMissTriggersCompute(t *testing.T) {
	c := New("test", time.Hour, nil)
	calls := 0

	v := c.GetOrCompute("k", func() any {
		calls++
		return "computed"
	})
	assert.Equal(t, "computed", v)

	v = c.GetOrCompute("k", func() any {
		calls++
		return "recomputed"
	})
	assert.Equal(t, "computed", v, "second call served from cache")
	assert.Equal(t, 1, calls)
}

func TestGetOrComputeExpiryRegenerates(t *testing.T) {
	c := New("test", time.Hour, nil)
	current := time.Now()
	c.now = func() time.Time { return current }
	calls := 0
	compute := func() any {
		calls++
		return calls
	}

	assert.Equal(t, 1, c.GetOrCompute("k", compute))

	current = current.Add(2 * time.Hour)
	assert.Equal(t, 2, c.GetOrCompute("k", compute), "expired entry recomputed")
}

func TestGetOrComputeCollapsesConcurrentMisses(t *testing.T) {
	c := New("test", time.Hour, nil)
	var computes atomic.Int32
	gate := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-gate
			v := c.GetOrCompute("k", func() any {
				computes.Add(1)
				time.Sleep(10 * time.Millisecond)
				return "shared"
			})
			assert.Equal(t, "shared", v)
		}()
	}
	close(gate)
	wg.Wait()

	assert.LessOrEqual(t, computes.Load(), int32(2), "concurrent misses collapse to at most a straggler")
}

func TestClear(t *testing.T) {
	c := New("test", time.Hour, nil)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().TotalEntries)
}

func TestStats(t *testing.T) {
	c := New("plans", 30*time.Minute, nil)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("old", 1)
	current = current.Add(45 * time.Minute)
	c.Set("new", 2)

	stats := c.Stats()
	assert.Equal(t, "plans", stats.Name)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.FreshEntries)
	assert.Equal(t, 30*time.Minute, stats.TTL)
}

func TestDefaultTTLApplied(t *testing.T) {
	c := New("test", 0, nil)
	assert.Equal(t, DefaultTTL, c.Stats().TTL)
}
