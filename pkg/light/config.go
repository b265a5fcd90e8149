package light

// Config controls the engine's tunables, mirroring how pkg/server.Config
// holds its own small set of server-wide knobs. There are exactly four:
// ChunkMinY, WorldHeight, CacheEnabled, StallYieldThreshold.
type Config struct {
	// ChunkMinY is the world's lowest block Y. The engine's actual Y-bounds
	// arithmetic reads the types.go ChunkMinY/ChunkMaxY constants, not this
	// field; a dimension with a different floor is not handled yet. The
	// field documents the knob's place in the configuration surface.
	ChunkMinY int32

	// WorldHeight is the world's total height in blocks (ChunkMaxY -
	// ChunkMinY). Same caveat as ChunkMinY above: not consulted by the
	// engine internals.
	WorldHeight int32

	// CacheEnabled turns on the scheduler's chunk cache. Results must be
	// identical whether this is true or false; it only affects how many
	// TryChunk calls the scheduler makes.
	CacheEnabled bool

	// StallYieldThreshold is how many consecutive contended rounds the
	// scheduler tolerates before yielding the goroutine once and resetting.
	StallYieldThreshold int
}

// DefaultConfig returns the engine's default configuration.
func DefaultConfig() Config {
	return Config{
		ChunkMinY:           ChunkMinY,
		WorldHeight:         ChunkMaxY - ChunkMinY,
		CacheEnabled:        true,
		StallYieldThreshold: 10,
	}
}
