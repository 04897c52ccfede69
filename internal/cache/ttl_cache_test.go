package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/vanity/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestTTLCacheSetGet(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache[string, int](clk)

	c.Set("a", 1, time.Minute)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestTTLCacheLazyExpiry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache[string, int](clk)

	c.Set("a", 1, time.Minute)
	clk.Advance(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok, "read at the deadline is a miss")
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache[string, int](clock.NewSystemClock())
	c.Set("a", 1, time.Minute)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTTLCacheZeroTTLIgnored(t *testing.T) {
	c := NewTTLCache[string, int](clock.NewSystemClock())
	c.Set("a", 1, 0)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTTLCacheConcurrentAccess(t *testing.T) {
	c := NewTTLCache[int, int](clock.NewSystemClock())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Set(j%10, n, time.Minute)
				c.Get(j % 10)
				if j%50 == 0 {
					c.Delete(j % 10)
				}
			}
		}(i)
	}
	wg.Wait()
}
