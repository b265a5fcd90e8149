package light

import (
	"log"
	"runtime"
	"sort"

	"github.com/google/uuid"
)

// pending collects crossings produced during a round, keyed by the chunk
// they're trying to enter.
type pending map[ChunkPos][]Crossing

// LightChunk runs the full lighting pipeline for the chunk at center:
// sky initialization, then intra-chunk flood fill for both channels, then
// round-based draining of whatever crossed into neighbors, until no
// crossings remain or every neighbor chunk is unreachable.
//
// holder and neighbors are supplied by the caller (pkg/world); cache may be
// nil, which behaves like a disabled ChunkCache.
func LightChunk(center ChunkPos, holder ChunkHolder, neighbors NeighborMap, registry BlockRegistry, cache *ChunkCache, cfg Config) {
	runID := uuid.New().String()
	logger := log.Default()

	guard, ok := holder.TryChunk(center, AccessFull)
	if !ok {
		logger.Printf("light[%s]: chunk %s not available for lighting, skipping", runID, center)
		return
	}
	view := &chunkView{pos: center, sections: guard.Sections, registry: registry, holder: holder, logger: logger}

	initializeSkyLight(view)
	skyQueue := newBucketQueue()
	selectiveEnqueue(view, skyQueue, gatherNeighborHeightmaps(center, holder, neighbors))
	blockQueue := newBucketQueue()
	scanEmitters(view, blockQueue)

	allCrossings := runIntraChunk(view, ChannelSky, skyQueue)
	allCrossings = append(allCrossings, runIntraChunk(view, ChannelBlock, blockQueue)...)

	// The center's own pass is done; drop its lock before draining so no
	// worker waits on a neighbor while still holding its own center.
	guard.Release()

	if len(allCrossings) == 0 {
		return
	}

	p := pending{}
	for _, c := range allCrossings {
		dst := c.Pos.ChunkOf()
		p[dst] = append(p[dst], c)
	}

	drainCrossings(center, p, holder, registry, cache, cfg, logger, runID)

	// Any guards the cache is still holding from this run must be released
	// before returning — the cache only defers release, it never owns a
	// lock past the call that populated it.
	if cache != nil {
		cache.Clear()
	}
}

// InitializeLight is the reserved entry point for a future section-status
// step ahead of LightChunk; it currently does nothing and always succeeds.
func InitializeLight(holder ChunkHolder, enabled bool) error {
	return nil
}

// drainCrossings repeatedly locks target chunks, applies whatever crossings
// are pending for them, and re-runs the intra-chunk flood fill there,
// collecting any further crossings those produce, until no pending work
// remains.
//
// original is the chunk LightChunk was called for. Only that fixed chunk is
// ever skipped as a target; a chunk that becomes a producer partway through
// a later round is still a valid target.
//
// failures is a round-level counter, not a per-target one: a round where
// every target was contended bumps it once, a round where anything at all
// got locked resets it. Once it reaches
// cfg.StallYieldThreshold the goroutine actually yields via
// runtime.Gosched() and the counter resets, so a single sustained stall
// yields repeatedly (once per StallYieldThreshold contended rounds) instead
// of spinning forever or logging on every subsequent failure.
func drainCrossings(original ChunkPos, p pending, holder ChunkHolder, registry BlockRegistry, cache *ChunkCache, cfg Config, logger *log.Logger, runID string) {
	failures := 0

	for len(p) > 0 {
		targets := make([]ChunkPos, 0, len(p))
		for t := range p {
			targets = append(targets, t)
		}
		sort.Slice(targets, func(i, j int) bool { return targets[i].Less(targets[j]) })

		next := pending{}
		acquiredAny := false

		for _, target := range targets {
			if target == original {
				continue
			}
			crossings := p[target]

			guard, ok := acquireChunk(target, holder, cache)
			if !ok {
				next[target] = append(next[target], crossings...)
				continue
			}
			acquiredAny = true

			view := &chunkView{pos: target, sections: guard.Sections, registry: registry, holder: holder, logger: logger}
			skyQueue := newBucketQueue()
			blockQueue := newBucketQueue()
			for _, c := range crossings {
				if c.Channel == ChannelSky {
					applyCrossing(view, skyQueue, c)
				} else {
					applyCrossing(view, blockQueue, c)
				}
			}

			bySky := runIntraChunk(view, ChannelSky, skyQueue)
			byBlock := runIntraChunk(view, ChannelBlock, blockQueue)

			if cache != nil {
				cache.Put(target, guard)
			} else {
				guard.Release()
			}

			for _, c := range bySky {
				next[c.Pos.ChunkOf()] = append(next[c.Pos.ChunkOf()], c)
			}
			for _, c := range byBlock {
				next[c.Pos.ChunkOf()] = append(next[c.Pos.ChunkOf()], c)
			}
		}

		if acquiredAny {
			failures = 0
		} else if len(next) > 0 {
			failures++
			if failures >= cfg.StallYieldThreshold {
				logger.Printf("light[%s]: yielding after %d contended rounds", runID, failures)
				runtime.Gosched()
				failures = 0
			}
		}

		p = next
	}
}

// gatherNeighborHeightmaps briefly try-locks each of the four edge-adjacent
// neighbor chunks just long enough to copy its heightmap, so no neighbor
// lock is ever held across the main propagation pass. A neighbor that isn't
// loaded yet or is already locked by another worker is simply omitted;
// selectiveEnqueue treats a nil heightmap as "unknown, no span to seed from
// that side."
func gatherNeighborHeightmaps(center ChunkPos, holder ChunkHolder, neighbors NeighborMap) neighborHeightmaps {
	get := func(dx, dz int32) *[ColumnSize]int32 {
		pos := neighbors.At(center, dx, dz)
		guard, ok := holder.TryChunk(pos, AccessFull)
		if !ok {
			return nil
		}
		hm := guard.Sections.Heightmap.Snapshot()
		guard.Release()
		return &hm
	}
	return neighborHeightmaps{
		west:  get(-1, 0),
		east:  get(1, 0),
		north: get(0, -1),
		south: get(0, 1),
	}
}

// acquireChunk checks the cache before asking the holder for a fresh lock.
func acquireChunk(target ChunkPos, holder ChunkHolder, cache *ChunkCache) (*Guard, bool) {
	if cache != nil {
		if g, hit := cache.Get(target); hit {
			return g, true
		}
	}
	return holder.TryChunk(target, AccessFull)
}

// applyCrossing writes a crossing's resulting light value into view and
// enqueues it for further propagation, if it actually raises the target
// voxel's level.
func applyCrossing(view *chunkView, queue *bucketQueue, c Crossing) {
	targetMeta := view.Meta(c.Pos)
	newLevel := decrement(c.Dir, targetMeta, c.Level, c.SourceIsEmptyShape, c.Channel == ChannelSky)
	if newLevel == 0 {
		return
	}
	if view.GetLight(c.Channel, c.Pos) >= newLevel {
		return
	}
	view.SetLight(c.Channel, c.Pos, newLevel)
	queue.enqueue(QueueEntry{
		Pos:     c.Pos,
		Level:   newLevel,
		DirMask: exceptOpposite(c.Dir),
	})
}
