package light

// initializeSkyLight walks every column of view from the world top down,
// setting the heightmap to the Y of the first opaque block found and
// filling the sky-light column above and at that block.
// It is purely local: vertical propagation happens by construction, so no
// queue entries are produced here — seeding the flood fill is
// selectiveEnqueue's job.
//
// Above the heightmap every voxel is full sky light (15). At the heightmap
// voxel itself the value is 15 minus that block's opacity. Below it the
// column is left at 0 for the flood fill to propagate into.
func initializeSkyLight(view *chunkView) {
	for lz := 0; lz < SectionHeight; lz++ {
		for lx := 0; lx < SectionHeight; lx++ {
			initializeSkyColumn(view, lx, lz)
		}
	}
}

func initializeSkyColumn(view *chunkView, lx, lz int) {
	worldX := view.pos.X<<4 + int32(lx)
	worldZ := view.pos.Z<<4 + int32(lz)

	opaqueY := HeightmapNone
	for y := int32(ChunkMaxY - 1); y >= ChunkMinY; y-- {
		meta := view.Meta(BlockPos{X: worldX, Y: y, Z: worldZ})
		if meta.Opacity > 0 {
			opaqueY = y
			break
		}
	}
	view.sections.Heightmap.Set(lx, lz, opaqueY)

	bottom := int32(ChunkMinY)
	if opaqueY != HeightmapNone {
		bottom = opaqueY
	}

	for y := int32(ChunkMaxY - 1); y >= bottom; y-- {
		pos := BlockPos{X: worldX, Y: y, Z: worldZ}
		level := MaxLight
		if opaqueY != HeightmapNone && y == opaqueY {
			level = clampLight(int(MaxLight) - int(view.Meta(pos).Opacity))
		}
		if level == 0 {
			continue
		}
		view.SetLight(ChannelSky, pos, level)
	}
}

// neighborHeightmaps is the set of up to four edge-adjacent heightmap
// snapshots used to compute the minimal boundary enqueue set.
// A nil entry means that neighbor isn't loaded/available.
type neighborHeightmaps struct {
	west, east, north, south *[ColumnSize]int32
}

// selectiveEnqueue computes the minimal set of voxels that must seed the
// horizontal sky-light flood fill. For each column with
// heightmap h it enqueues the voxel at (x,h,z) — the lowest voxel still
// holding sunlight, which feeds light down and sideways below the surface —
// and, for edge columns whose tallest adjacent neighbor column reaches
// hmax > h, the span y in [h, hmax) that sits below the neighbor's surface
// and must push light sideways into it. Interior columns have no hmax, and
// fully open columns (no opaque block at all) contribute nothing a
// neighbor's own vertical fill doesn't already have.
//
// This is what keeps the queue at a few hundred entries on typical terrain
// instead of one per sunlit voxel: interior voxels above the surface
// already hold 15 and can never be raised, so skipping them cannot change
// any final value.
func selectiveEnqueue(view *chunkView, queue *bucketQueue, nb neighborHeightmaps) {
	own := view.sections.Heightmap.Snapshot()

	for lz := 0; lz < SectionHeight; lz++ {
		for lx := 0; lx < SectionHeight; lx++ {
			h := own[columnIndex(lx, lz)]
			if h == HeightmapNone {
				continue
			}

			top := h
			if hmax := neighborMaxHeight(nb, lx, lz); hmax != HeightmapNone && hmax-1 > top {
				top = hmax - 1
			}

			worldX := view.pos.X<<4 + int32(lx)
			worldZ := view.pos.Z<<4 + int32(lz)
			for y := h; y <= top; y++ {
				pos := BlockPos{X: worldX, Y: y, Z: worldZ}
				level := view.GetLight(ChannelSky, pos)
				if level == 0 {
					continue
				}
				queue.enqueue(QueueEntry{
					Pos:          pos,
					Level:        level,
					DirMask:      AllDirectionsMask,
					FromEmission: true,
				})
			}
		}
	}
}

// neighborMaxHeight returns the maximum heightmap value across the
// edge-adjacent neighbor columns of local column (lx,lz) — at most two, for
// a corner column — or HeightmapNone for interior columns and columns whose
// neighbors are unavailable.
func neighborMaxHeight(nb neighborHeightmaps, lx, lz int) int32 {
	max := HeightmapNone
	consider := func(hm *[ColumnSize]int32, nx, nz int) {
		if hm == nil {
			return
		}
		if v := hm[columnIndex(nx, nz)]; v != HeightmapNone && v > max {
			max = v
		}
	}
	if lx == 0 {
		consider(nb.west, SectionHeight-1, lz)
	}
	if lx == SectionHeight-1 {
		consider(nb.east, 0, lz)
	}
	if lz == 0 {
		consider(nb.north, lx, SectionHeight-1)
	}
	if lz == SectionHeight-1 {
		consider(nb.south, lx, 0)
	}
	return max
}
