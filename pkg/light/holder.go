package light

// ChunkAccess tags what a ChunkHolder is currently willing to hand out.
// Modeled as a tagged enum rather than an interface: callers switch on the
// tag, since the set of access levels is small and closed.
type ChunkAccess int

const (
	// AccessProto means only protochunk data (partial generation) is
	// available — lighting must not run yet.
	AccessProto ChunkAccess = iota
	// AccessFull means the chunk is fully generated and safe to light.
	AccessFull
)

// Guard is a held lock on one chunk's Sections, released by calling
// Release. The scheduler never holds more than one Guard across a
// propagation step beyond what runIntraChunk needs.
type Guard struct {
	Pos      ChunkPos
	Sections *Sections
	release  func()
}

// Release unlocks the chunk this guard was holding. Safe to call once.
func (g *Guard) Release() {
	if g.release != nil {
		g.release()
	}
}

// NewGuard builds a Guard for a ChunkHolder implementation. release is
// called exactly once, by Release.
func NewGuard(pos ChunkPos, sections *Sections, release func()) *Guard {
	return &Guard{Pos: pos, Sections: sections, release: release}
}

// ChunkHolder is the world-side collaborator that owns chunk storage and
// lock state behind a non-blocking try-lock. Implementations live in
// pkg/world; this package only depends on the interface.
type ChunkHolder interface {
	// TryChunk attempts to acquire the chunk at pos at the given access
	// level without blocking. ok is false if the chunk isn't loaded to that
	// level or is already locked by another worker.
	TryChunk(pos ChunkPos, access ChunkAccess) (guard *Guard, ok bool)

	// MarkLightStorageSectionChanged records that the light section at
	// sectionIdx (in the padded S+2 numbering) changed, for whatever dirty
	// tracking/persistence/network-resend scheme the caller uses.
	MarkLightStorageSectionChanged(pos ChunkPos, sectionIdx int, isSky bool)
}

// NeighborMap resolves the eight neighbors (and self) of a chunk position
// by relative offset, for the 3x3 lookups the scheduler and selective
// boundary enqueue need.
type NeighborMap interface {
	// At returns the chunk position at (dx,dz) relative to center, where
	// dx and dz are each in {-1,0,1}.
	At(center ChunkPos, dx, dz int32) ChunkPos
}

// offsetNeighborMap is the straightforward NeighborMap: flat coordinate
// arithmetic, no wraparound or dimension borders.
type offsetNeighborMap struct{}

// NewOffsetNeighborMap returns a NeighborMap that just adds (dx,dz) to the
// center position — correct for any world without hard chunk borders.
func NewOffsetNeighborMap() NeighborMap {
	return offsetNeighborMap{}
}

func (offsetNeighborMap) At(center ChunkPos, dx, dz int32) ChunkPos {
	return ChunkPos{X: center.X + dx, Z: center.Z + dz}
}
