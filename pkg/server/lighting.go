package server

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// chunkQueueSize is the buffered capacity of Player.ChunkQueue: enough to
// hold a full view-distance square at once (sendSpawnChunks/sendChunkUpdates
// use a non-blocking send and simply drop a chunk request if the queue is
// already full, since a later sendChunkUpdates call will re-queue anything
// still in range).
const chunkQueueSize = (2*ViewDistance + 1) * (2*ViewDistance + 1)

// chunkStreamConcurrency bounds how many chunk columns a single player's
// stream worker will light and serialize at once. Lighting a column runs
// the full engine in pkg/light (flood fill plus any cross-chunk
// scheduler rounds it triggers), which is the expensive part of
// sendChunkColumn; capping concurrency keeps one fast-moving player from
// saturating every worker goroutine the process has.
const chunkStreamConcurrency = 4

// chunkStreamWorker drains player.ChunkQueue for the lifetime of the
// connection, fanning each queued column out to sendChunkColumn under a
// bounded semaphore. This is the chunk-streaming path sendSpawnChunks/
// sendChunkUpdates (chunk.go) queue into; the concurrency bound sits
// around GetChunkData's call into the lighting engine.
func (s *Server) chunkStreamWorker(player *Player, stop chan struct{}) {
	sem := semaphore.NewWeighted(chunkStreamConcurrency)
	ctx := context.Background()

	for {
		select {
		case <-stop:
			// Wait for any in-flight sends to finish before returning.
			// handlePlay closes stop without waiting for this return, so a
			// send still in flight can run after the connection is closed.
			sem.Acquire(ctx, chunkStreamConcurrency)
			return
		case pos, ok := <-player.ChunkQueue:
			if !ok {
				return
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			go func(pos ChunkPos) {
				defer sem.Release(1)
				s.sendChunkColumn(player, pos.X, pos.Z)
			}(pos)
		}
	}
}
