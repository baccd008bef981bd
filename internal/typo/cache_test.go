package typo

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_GetSet(t *testing.T) {
	c := newResultCache(4)
	_, ok := c.Get("hund|0")
	assert.False(t, ok)

	want := Result{Status: StatusNew, Normalized: "hund"}
	c.Set("hund|0", want)
	got, ok := c.Get("hund|0")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResultCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newResultCache(2)
	c.Set("a|0", Result{Normalized: "a"})
	c.Set("b|0", Result{Normalized: "b"})

	// Touch "a" so "b" becomes the eviction victim.
	_, ok := c.Get("a|0")
	require.True(t, ok)
	c.Set("c|0", Result{Normalized: "c"})

	_, ok = c.Get("b|0")
	assert.False(t, ok)
	_, ok = c.Get("a|0")
	assert.True(t, ok)
	_, ok = c.Get("c|0")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestResultCache_SetUpdatesExisting(t *testing.T) {
	c := newResultCache(2)
	c.Set("a|0", Result{Normalized: "a", Confidence: 0.1})
	c.Set("a|0", Result{Normalized: "a", Confidence: 0.9})
	got, ok := c.Get("a|0")
	require.True(t, ok)
	assert.Equal(t, 0.9, got.Confidence)
	assert.Equal(t, 1, c.Len())
}

func TestResultCache_Clear(t *testing.T) {
	c := newResultCache(8)
	c.Set("a|0", Result{})
	c.Set("b|1", Result{})
	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a|0")
	assert.False(t, ok)
}

func TestResultCache_ConcurrentAccess(t *testing.T) {
	c := newResultCache(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("tok%d|0", i%32)
				c.Set(key, Result{Normalized: key})
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 64)
}
