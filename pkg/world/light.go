package world

import (
	"sync"

	"github.com/StoreStation/VibeShitCraft/pkg/light"
)

// blockRegistry adapts the flat (blockID<<4|metadata) block states this
// package already uses into the metadata the lighting engine needs. Only
// blockID matters for opacity/luminance/shape here — no block in this
// server varies those by metadata.
type blockRegistry struct {
	byBlockID map[uint16]light.BlockMeta
}

func (r *blockRegistry) ByStateID(id light.BlockStateID) (light.BlockMeta, bool) {
	blockID := uint16(id) >> 4
	meta, ok := r.byBlockID[blockID]
	return meta, ok
}

// opaqueMeta is the metadata for a normal full, solid block.
func opaqueMeta() light.BlockMeta {
	return light.BlockMeta{Luminance: 0, Opacity: 15, HasCollision: true, ShapeEmpty: false}
}

// thinMeta is the metadata for a block that blocks some light but has no
// collision shape filling the whole voxel (leaves, ice, etc.).
func thinMeta(opacity uint8) light.BlockMeta {
	return light.BlockMeta{Luminance: 0, Opacity: opacity, HasCollision: true, ShapeEmpty: false}
}

func emitterMeta(luminance uint8) light.BlockMeta {
	return light.BlockMeta{Luminance: luminance, Opacity: 0, HasCollision: false, ShapeEmpty: true}
}

// newBlockRegistry builds the light.BlockRegistry for this server's block
// palette, grounded on the block IDs BlockToItemID and IsInstantBreak
// already enumerate.
func newBlockRegistry() *blockRegistry {
	m := map[uint16]light.BlockMeta{
		0: light.AirMeta,

		// Light-blocking terrain and building blocks.
		1: opaqueMeta(),   // stone
		2: opaqueMeta(),   // grass block
		3: opaqueMeta(),   // dirt
		4: opaqueMeta(),   // cobblestone
		5: opaqueMeta(),   // planks
		7: opaqueMeta(),   // bedrock
		12: opaqueMeta(),  // sand
		13: opaqueMeta(),  // gravel
		24: opaqueMeta(),  // sandstone
		35: opaqueMeta(),  // wool
		43: opaqueMeta(),  // double stone slab
		54: opaqueMeta(),  // chest (treated as full for simplicity)
		56: opaqueMeta(),  // diamond ore
		61: opaqueMeta(),  // furnace
		62: opaqueMeta(),  // lit furnace
		73: opaqueMeta(),  // redstone ore
		82: opaqueMeta(),  // clay
		97: opaqueMeta(),  // monster egg
		98: opaqueMeta(),  // stone bricks
		129: opaqueMeta(), // emerald ore
		153: opaqueMeta(), // quartz ore
		155: opaqueMeta(), // quartz block
		159: opaqueMeta(), // stained clay
		168: opaqueMeta(), // prismarine
		169: opaqueMeta(), // sea lantern
		171: opaqueMeta(), // carpet
		179: opaqueMeta(), // red sandstone
		16:  opaqueMeta(), // coal ore
		17:  opaqueMeta(), // log
		162: opaqueMeta(), // log2

		// Light-emitting blocks.
		50: emitterMeta(14), // torch
		89: emitterMeta(15), // glowstone
		76: emitterMeta(9),  // redstone torch (lit)
		91: emitterMeta(13), // jack o'lantern
		10: emitterMeta(15), // lava (flowing)
		11: emitterMeta(15), // lava (still)

		// Translucent/thin blocks: not fully opaque; leaves and water dim
		// light, the rest let it through unchanged.
		18:  thinMeta(1), // leaves
		161: thinMeta(1), // leaves2
		20:  thinMeta(0), // glass
		95:  thinMeta(0), // stained glass
		102: thinMeta(0), // glass pane
		160: thinMeta(0), // stained glass pane
		79:  thinMeta(0), // ice
		8:   thinMeta(2), // water (flowing)
		9:   thinMeta(2), // water (still)
		78:  thinMeta(0), // snow layer

		// Non-collidable, non-opaque decorations.
		6:   light.AirMeta, // sapling
		31:  light.AirMeta, // tall grass
		32:  light.AirMeta, // dead bush
		37:  light.AirMeta, // dandelion
		38:  light.AirMeta, // flowers
		59:  light.AirMeta, // wheat
		83:  light.AirMeta, // sugar cane
		106: light.AirMeta, // vine
		175: light.AirMeta, // double plant
	}
	return &blockRegistry{byBlockID: m}
}

var (
	sharedRegistry     *blockRegistry
	sharedRegistryOnce sync.Once
)

// BlockRegistry returns the shared light.BlockRegistry for this server's
// block palette.
func BlockRegistry() light.BlockRegistry {
	sharedRegistryOnce.Do(func() {
		sharedRegistry = newBlockRegistry()
	})
	return sharedRegistry
}

// stoneState is the block state used to floor the extended chunk range
// below this server's native y=0 (bedrock is already placed at y=0 by the
// generator; everything under that is solid stone for lighting purposes).
const stoneState uint16 = 1 << 4

// newLightSections builds a light.Sections for chunk, embedding the
// server's native y=0..255 block data into the engine's extended
// -64..320 range: solid stone below y=0, air above y=255. The native
// section's (ly*16+lz)*16+lx index is identical to the engine's nibble
// voxel index, so no per-voxel transform is needed within the shared
// range.
func newLightSections(chunk *Chunk) *light.Sections {
	s := light.NewSections()
	for y := int32(light.ChunkMinY); y < light.ChunkMaxY; y++ {
		var state uint16
		switch {
		case y < 0:
			state = stoneState
		case y > 255:
			state = 0
		default:
			sec := y >> 4
			ly := y & 0x0F
			for lz := int32(0); lz < 16; lz++ {
				for lx := int32(0); lx < 16; lx++ {
					v := chunk.Sections[sec][(ly*16+lz)*16+lx]
					s.SetBlockState(int(lx), y, int(lz), light.BlockStateID(v))
				}
			}
			continue
		}
		for lz := 0; lz < 16; lz++ {
			for lx := 0; lx < 16; lx++ {
				s.SetBlockState(lx, y, lz, light.BlockStateID(state))
			}
		}
	}
	return s
}

// chunkHolder implements light.ChunkHolder over World's chunk map.
//
// TryChunk deliberately does NOT generate ungenerated neighbors: it only
// succeeds for chunks already present in the world's chunk cache. A
// crossing into an unloaded neighbor is simply unavailable (ok=false) and
// gets dropped by the scheduler, the same way a real server defers lighting
// a boundary until the neighbor itself loads. The one chunk that does get
// generated as part of a lighting pass is the center chunk passed to
// lightChunk, and that happens in realizeChunk before lightChunk runs —
// never inside TryChunk.
type chunkHolder struct {
	w *World
}

func (h *chunkHolder) TryChunk(pos light.ChunkPos, access light.ChunkAccess) (*light.Guard, bool) {
	cp := ChunkPos{X: pos.X, Z: pos.Z}
	h.w.mu.RLock()
	chunk, ok := h.w.chunks[cp]
	h.w.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !chunk.lightMu.TryLock() {
		return nil, false
	}
	if chunk.Light == nil {
		chunk.Light = newLightSections(chunk)
	}
	sections := chunk.Light
	mu := &chunk.lightMu
	return light.NewGuard(pos, sections, mu.Unlock), true
}

// MarkLightStorageSectionChanged records that the light section at
// sectionIdx changed, for a future incremental-resend path to consult
// instead of re-sending every section. The caller already holds pos's
// lightMu via the Guard TryChunk gave it, so this needs no locking of its
// own.
func (h *chunkHolder) MarkLightStorageSectionChanged(pos light.ChunkPos, sectionIdx int, isSky bool) {
	cp := ChunkPos{X: pos.X, Z: pos.Z}
	h.w.mu.RLock()
	chunk, ok := h.w.chunks[cp]
	h.w.mu.RUnlock()
	if !ok || sectionIdx < 0 || sectionIdx >= light.LightSectionsPerChunk {
		return
	}
	if isSky {
		chunk.DirtySkyLight[sectionIdx] = true
	} else {
		chunk.DirtyBlockLight[sectionIdx] = true
	}
}

// LightLevels returns the computed block and sky light at a world position,
// or ok=false when the chunk there hasn't been realized and lit yet. It
// never triggers generation or lighting itself, so callers can poll it from
// hot loops (mob spawning, debug commands) without stalling.
func (w *World) LightLevels(x, y, z int32) (block, sky uint8, ok bool) {
	cp := ChunkPos{X: x >> 4, Z: z >> 4}
	w.mu.RLock()
	chunk, found := w.chunks[cp]
	w.mu.RUnlock()
	if !found {
		return 0, 0, false
	}

	chunk.lightMu.Lock()
	sections := chunk.Light
	chunk.lightMu.Unlock()
	if sections == nil {
		return 0, 0, false
	}

	lx, lz := int(x&0x0F), int(z&0x0F)
	return sections.GetLight(light.ChannelBlock, lx, y, lz),
		sections.GetLight(light.ChannelSky, lx, y, lz), true
}
