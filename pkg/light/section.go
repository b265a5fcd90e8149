package light

import "sync"

// blockSection is one 16x16x16 slice of block state, stored as a flat
// array. Reader-writer guarded.
type blockSection struct {
	mu     sync.RWMutex
	states [SectionVolume]BlockStateID
}

func (s *blockSection) get(x, y, z int) BlockStateID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[voxelIndex(x, y, z)]
}

func (s *blockSection) set(x, y, z int, id BlockStateID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[voxelIndex(x, y, z)] = id
}

// snapshot copies the whole section under a single read lock, for bulk
// scans (e.g. the homogeneous-section emitter scan in engine.go).
func (s *blockSection) snapshot() [SectionVolume]BlockStateID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states
}

// lightSection is one padded light section: a reader-writer guarded nibble
// array.
type lightSection struct {
	mu   sync.RWMutex
	data nibbleArray
}

func (s *lightSection) get(x, y, z int) uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.get(x, y, z)
}

func (s *lightSection) set(x, y, z int, v uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.set(x, y, z, v)
}

// fill sets every voxel in the section to the same level in one pass, for
// sections known to be homogeneous.
func (s *lightSection) fill(v uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := (v << 4) | (v & 0x0F)
	for i := range s.data.data {
		s.data.data[i] = b
	}
}

// Heightmap holds, for each of the 256 columns, the Y of the first opaque
// block found scanning down from the world top, or HeightmapNone for a
// column with no opaque block at all.
type Heightmap struct {
	mu     sync.RWMutex
	values [ColumnSize]int32
}

// NewHeightmap returns a heightmap with every column set to HeightmapNone.
func NewHeightmap() *Heightmap {
	h := &Heightmap{}
	for i := range h.values {
		h.values[i] = HeightmapNone
	}
	return h
}

func columnIndex(x, z int) int { return z*SectionHeight + x }

// Get returns the heightmap value for local column (x,z).
func (h *Heightmap) Get(x, z int) int32 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.values[columnIndex(x, z)]
}

// Set stores the heightmap value for local column (x,z).
func (h *Heightmap) Set(x, z int, y int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values[columnIndex(x, z)] = y
}

// Snapshot copies all 256 values out under a single short read lock, so a
// caller never holds another chunk's lock across its own propagation pass.
func (h *Heightmap) Snapshot() [ColumnSize]int32 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.values
}

// Sections is per-chunk storage: S block-state sections plus
// S+2 light sections per channel, and the sky-light heightmap.
type Sections struct {
	blocks    [SectionsPerChunk]*blockSection
	blockLite [LightSectionsPerChunk]*lightSection
	skyLite   [LightSectionsPerChunk]*lightSection
	Heightmap *Heightmap
}

// NewSections allocates empty (air) storage for one chunk.
func NewSections() *Sections {
	s := &Sections{Heightmap: NewHeightmap()}
	for i := range s.blocks {
		s.blocks[i] = &blockSection{}
	}
	for i := range s.blockLite {
		s.blockLite[i] = &lightSection{}
	}
	for i := range s.skyLite {
		s.skyLite[i] = &lightSection{}
	}
	return s
}

// relY converts a world Y to a chunk-relative Y (0 at ChunkMinY).
func relY(y int32) int { return int(y - ChunkMinY) }

// GetBlockState returns the block state at chunk-relative (lx, y, lz).
// Out-of-range Y (outside the S block sections) returns state 0 (air),
// keeping boundary propagation branch-free.
func (s *Sections) GetBlockState(lx int, y int32, lz int) BlockStateID {
	ry := relY(y)
	if ry < 0 || ry >= SectionsPerChunk*SectionHeight {
		return 0
	}
	sec := ry / SectionHeight
	return s.blocks[sec].get(lx, ry%SectionHeight, lz)
}

// SetBlockState sets the block state at chunk-relative (lx, y, lz). Writes
// outside the S block sections are silently dropped.
func (s *Sections) SetBlockState(lx int, y int32, lz int, id BlockStateID) {
	ry := relY(y)
	if ry < 0 || ry >= SectionsPerChunk*SectionHeight {
		return
	}
	sec := ry / SectionHeight
	s.blocks[sec].set(lx, ry%SectionHeight, lz, id)
}

// lightArrayFor returns the per-channel light section array.
func (s *Sections) lightArrayFor(ch Channel) *[LightSectionsPerChunk]*lightSection {
	if ch == ChannelSky {
		return &s.skyLite
	}
	return &s.blockLite
}

// lightSectionIndex maps a relative Y to its (padded) light section index,
// or ok=false if y falls entirely outside the S+2 padded range.
func lightSectionIndex(ry int) (idx, local int, ok bool) {
	// The padded array covers ry in [-SectionHeight, (S+1)*SectionHeight).
	// Shifting by one section keeps the index math in non-negative range,
	// where integer division rounds the right way.
	shifted := ry + SectionHeight
	if shifted < 0 || shifted >= LightSectionsPerChunk*SectionHeight {
		return 0, 0, false
	}
	return shifted / SectionHeight, shifted % SectionHeight, true
}

// GetLight returns the light value at chunk-relative (lx, y, lz). Positions
// entirely outside the padded S+2 range return 0 for both channels.
func (s *Sections) GetLight(ch Channel, lx int, y int32, lz int) uint8 {
	idx, local, ok := lightSectionIndex(relY(y))
	if !ok {
		return 0
	}
	arr := s.lightArrayFor(ch)
	return arr[idx].get(lx, local, lz)
}

// SetLight sets the light value at chunk-relative (lx, y, lz). Writes
// outside the padded S+2 range are silently dropped. Returns whether the
// write landed.
func (s *Sections) SetLight(ch Channel, lx int, y int32, lz int, v uint8) bool {
	idx, local, ok := lightSectionIndex(relY(y))
	if !ok {
		return false
	}
	arr := s.lightArrayFor(ch)
	arr[idx].set(lx, local, lz, v)
	return true
}

// LightSectionIndex returns the padded light-section index (in the same
// S+2 numbering GetLight/SetLight use internally) that world Y falls into,
// or ok=false if y is entirely outside the padded range. Callers use this
// to report which section a successful SetLight touched.
func (s *Sections) LightSectionIndex(y int32) (idx int, ok bool) {
	idx, _, ok = lightSectionIndex(relY(y))
	return idx, ok
}
