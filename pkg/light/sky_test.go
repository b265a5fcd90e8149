package light

import "testing"

// TestFlatPlainSkyLight lights a chunk whose only opaque surface is a single
// ground layer at y=0 (opacity 2), with open sky above and a transparent
// basement below. It checks the three distinct regions the sky pipeline
// produces: full light above the surface, the opacity-dimmed value at the
// surface voxel itself, and the basement — which the dimmed surface value
// seeps into, one level per block, until it runs out.
func TestFlatPlainSkyLight(t *testing.T) {
	const groundID BlockStateID = 7
	reg := NewStaticRegistry(map[BlockStateID]BlockMeta{
		0:        {Opacity: 0, ShapeEmpty: true},
		groundID: {Opacity: 2, HasCollision: true},
	})

	w := newTestWorld()
	chunk := w.chunkAt(ChunkPos{X: 0, Z: 0})
	for lz := 0; lz < SectionHeight; lz++ {
		for lx := 0; lx < SectionHeight; lx++ {
			chunk.sections.SetBlockState(lx, 0, lz, groundID)
		}
	}

	LightChunk(ChunkPos{X: 0, Z: 0}, w, w, reg, nil, DefaultConfig())

	if got := chunk.sections.Heightmap.Get(8, 8); got != 0 {
		t.Errorf("heightmap(8,8) = %d, want 0", got)
	}
	if got := chunk.sections.GetLight(ChannelSky, 8, 0, 8); got != 13 {
		t.Errorf("sky light at the ground surface = %d, want 13 (15-opacity)", got)
	}
	if got := chunk.sections.GetLight(ChannelSky, 8, 50, 8); got != MaxLight {
		t.Errorf("sky light above ground = %d, want %d", got, MaxLight)
	}
	// 13 at the surface, minus 1 per block of depth: 3 by ten blocks down.
	if got := chunk.sections.GetLight(ChannelSky, 8, -10, 8); got != 3 {
		t.Errorf("sky light 10 below the surface = %d, want 3", got)
	}
	if got := chunk.sections.GetLight(ChannelSky, 8, -60, 8); got != 0 {
		t.Errorf("sky light in the deep basement = %d, want 0", got)
	}
}

// TestSkySeedsStayMinimal checks the selective-enqueue property directly:
// on flat terrain with no loaded neighbors, the horizontal sky pass seeds
// one voxel per column (the heightmap voxel), not one per sunlit voxel.
func TestSkySeedsStayMinimal(t *testing.T) {
	const groundID BlockStateID = 7
	reg := NewStaticRegistry(map[BlockStateID]BlockMeta{
		0:        {Opacity: 0, ShapeEmpty: true},
		groundID: {Opacity: 2, HasCollision: true},
	})

	w := newTestWorld()
	chunk := w.chunkAt(ChunkPos{X: 0, Z: 0})
	for lz := 0; lz < SectionHeight; lz++ {
		for lx := 0; lx < SectionHeight; lx++ {
			chunk.sections.SetBlockState(lx, 0, lz, groundID)
		}
	}

	guard, ok := w.TryChunk(ChunkPos{X: 0, Z: 0}, AccessFull)
	if !ok {
		t.Fatal("TryChunk failed on an unlocked test chunk")
	}
	defer guard.Release()

	view := &chunkView{pos: ChunkPos{X: 0, Z: 0}, sections: guard.Sections, registry: reg}
	initializeSkyLight(view)

	queue := newBucketQueue()
	selectiveEnqueue(view, queue, neighborHeightmaps{})
	if queue.size != ColumnSize {
		t.Errorf("selective enqueue seeded %d entries, want %d (one per column)", queue.size, ColumnSize)
	}
}

// TestCliffFeedsShadowedNeighbor builds a low open chunk at (0,0) next to a
// chunk at (1,0) that is dark below an opaque roof at y=100. Lighting the
// roofed chunk first (nothing to do) and then the open one must push sky
// light sideways under the roof: the open chunk's east edge columns sit
// below the neighbor's heightmap, so the selective enqueue seeds their
// whole span and the scheduler carries it across the boundary.
func TestCliffFeedsShadowedNeighbor(t *testing.T) {
	const stoneID BlockStateID = 7
	reg := NewStaticRegistry(map[BlockStateID]BlockMeta{
		0:       {Opacity: 0, ShapeEmpty: true},
		stoneID: {Opacity: 15, HasCollision: true},
	})

	w := newTestWorld()
	open := w.chunkAt(ChunkPos{X: 0, Z: 0})
	roofed := w.chunkAt(ChunkPos{X: 1, Z: 0})
	for lz := 0; lz < SectionHeight; lz++ {
		for lx := 0; lx < SectionHeight; lx++ {
			open.sections.SetBlockState(lx, 0, lz, stoneID)
			roofed.sections.SetBlockState(lx, 100, lz, stoneID)
		}
	}

	LightChunk(ChunkPos{X: 1, Z: 0}, w, w, reg, nil, DefaultConfig())
	LightChunk(ChunkPos{X: 0, Z: 0}, w, w, reg, nil, DefaultConfig())

	if got := roofed.sections.Heightmap.Get(8, 8); got != 100 {
		t.Fatalf("roofed chunk heightmap = %d, want 100", got)
	}
	if got := roofed.sections.GetLight(ChannelSky, 8, 150, 8); got != MaxLight {
		t.Errorf("sky light above the roof = %d, want %d", got, MaxLight)
	}
	// One decrement crossing the boundary, then one per block of depth
	// eastward under the roof.
	if got := roofed.sections.GetLight(ChannelSky, 0, 50, 8); got != 14 {
		t.Errorf("sky light at the roofed chunk's west face = %d, want 14", got)
	}
	if got := roofed.sections.GetLight(ChannelSky, 3, 50, 8); got != 11 {
		t.Errorf("sky light 3 in under the roof = %d, want 11", got)
	}
	if got := roofed.sections.GetLight(ChannelSky, 0, 99, 8); got != 14 {
		t.Errorf("sky light just under the roof's west face = %d, want 14", got)
	}
	// The open chunk's own basement stays dark: its surface voxel holds 0
	// (opacity 15), so nothing seeps below the ground layer.
	if got := open.sections.GetLight(ChannelSky, 8, -5, 8); got != 0 {
		t.Errorf("sky light below the open chunk's ground = %d, want 0", got)
	}
}

// TestEnclosedCavityStaysDark builds a chunk that is opaque everywhere
// (every default voxel resolves to an opaque state) except for one sealed
// air pocket and, far away, a single torch voxel that is itself surrounded
// by opaque neighbors on all six sides. Neither block light nor sky light
// should ever reach the sealed pocket, and the torch's light should not
// escape its own voxel.
func TestEnclosedCavityStaysDark(t *testing.T) {
	const (
		airID   BlockStateID = 1
		torchID BlockStateID = 2
	)
	reg := NewStaticRegistry(map[BlockStateID]BlockMeta{
		0:       {Opacity: 15, HasCollision: true},
		airID:   {Opacity: 0, ShapeEmpty: true},
		torchID: {Opacity: 0, Luminance: 14, ShapeEmpty: true},
	})

	w := newTestWorld()
	chunk := w.chunkAt(ChunkPos{X: 0, Z: 0})
	chunk.sections.SetBlockState(8, 100, 8, airID)
	chunk.sections.SetBlockState(0, 200, 0, torchID)

	LightChunk(ChunkPos{X: 0, Z: 0}, w, w, reg, nil, DefaultConfig())

	cavity := chunk.sections.GetLight(ChannelBlock, 8, 100, 8)
	if cavity != 0 {
		t.Errorf("block light in the sealed cavity = %d, want 0", cavity)
	}
	if got := chunk.sections.GetLight(ChannelSky, 8, 100, 8); got != 0 {
		t.Errorf("sky light in the sealed cavity = %d, want 0", got)
	}

	if got := chunk.sections.GetLight(ChannelBlock, 0, 200, 0); got != 14 {
		t.Errorf("block light at the torch voxel = %d, want 14", got)
	}
	// Every neighbor of the torch voxel is opaque (state 0), so light
	// cannot leave it.
	for _, d := range AllDirections {
		dx, dy, dz := d.Offset()
		x, y, z := 0+int(dx), 200+int(dy), 0+int(dz)
		if x < 0 || x >= SectionHeight || z < 0 || z >= SectionHeight {
			continue
		}
		if got := chunk.sections.GetLight(ChannelBlock, x, int32(y), z); got != 0 {
			t.Errorf("block light at torch neighbor (%d,%d,%d) = %d, want 0", x, y, z, got)
		}
	}
}
