package light

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ChunkCache is a small, strictly-correctness-irrelevant cache: it only
// saves the scheduler a TryChunk round trip for
// chunks it just touched. Disabling it must never change propagation
// results, only how many times TryChunk gets called.
type ChunkCache struct {
	mu      sync.Mutex
	cache   *lru.Cache[ChunkPos, *Guard]
	enabled bool
}

// cacheSize is fixed at 2: the two neighbor chunks the scheduler touched
// most recently. The chunk being lit is never stored here.
const cacheSize = 2

// NewChunkCache builds a ChunkCache. Passing enabled=false makes every
// Get a miss, matching an uncached scheduler exactly.
func NewChunkCache(enabled bool) *ChunkCache {
	c, err := lru.NewWithEvict[ChunkPos, *Guard](cacheSize, func(_ ChunkPos, guard *Guard) {
		guard.Release()
	})
	if err != nil {
		// cacheSize is a positive compile-time constant; lru.New only
		// errors on size <= 0.
		panic(err)
	}
	return &ChunkCache{cache: c, enabled: enabled}
}

// Get returns a cached guard for pos, if one is present and the cache is
// enabled.
func (c *ChunkCache) Get(pos ChunkPos) (*Guard, bool) {
	if !c.enabled {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(pos)
}

// Put stores guard under pos, evicting the least recently used entry if
// the cache is full. When the cache is disabled, Put releases guard
// immediately instead of dropping the reference, matching the behavior of
// a cache that stores and instantly evicts everything — the scheduler's
// call sites must not need to know which case they're in.
func (c *ChunkCache) Put(pos ChunkPos, guard *Guard) {
	if !c.enabled {
		guard.Release()
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(pos, guard)
}

// Clear empties the cache. Every evicted entry runs the eviction callback
// registered in NewChunkCache, which releases that entry's guard — so
// Clear is also how a caller (LightChunk, at the end of a run) gives back
// every lock the cache is still holding.
func (c *ChunkCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}
