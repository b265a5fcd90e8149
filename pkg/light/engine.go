package light

import "log"

// chunkView binds one chunk's storage to its block registry, holder, and
// logger so the flood fill can read/write light, resolve block metadata,
// and report dirty sections without threading those collaborators through
// every call.
type chunkView struct {
	pos      ChunkPos
	sections *Sections
	registry BlockRegistry
	holder   ChunkHolder
	logger   *log.Logger
}

// toLocal converts a world position to this chunk's local (lx, lz). Callers
// must only use this for positions inside the chunk column; Y stays in
// world coordinates since Sections already works in world Y.
func (v *chunkView) toLocal(p BlockPos) (int, int) {
	return int(p.X & 15), int(p.Z & 15)
}

func (v *chunkView) GetLight(ch Channel, p BlockPos) uint8 {
	lx, lz := v.toLocal(p)
	return v.sections.GetLight(ch, lx, p.Y, lz)
}

// SetLight writes value at p and, on a landed write, reports the affected
// section as dirty through the holder.
func (v *chunkView) SetLight(ch Channel, p BlockPos, value uint8) bool {
	lx, lz := v.toLocal(p)
	if !v.sections.SetLight(ch, lx, p.Y, lz, value) {
		return false
	}
	if v.holder != nil {
		if idx, ok := v.sections.LightSectionIndex(p.Y); ok {
			v.holder.MarkLightStorageSectionChanged(v.pos, idx, ch == ChannelSky)
		}
	}
	return true
}

func (v *chunkView) Meta(p BlockPos) BlockMeta {
	lx, lz := v.toLocal(p)
	id := v.sections.GetBlockState(lx, p.Y, lz)
	return lookupMeta(v.registry, id, v.logger)
}

// Crossing records a propagation step that
// wants to enter a neighboring chunk. The scheduler applies it once it can
// lock that neighbor.
type Crossing struct {
	Pos                BlockPos
	Level              uint8
	Channel            Channel
	Dir                Direction
	SourceIsEmptyShape bool
}

// decrement computes the light level a value of sourceLevel produces after
// crossing into targetMeta going in direction dir, including the
// straight-down sunlight free-fall rule. It is shared by the intra-chunk flood fill and the
// cross-chunk scheduler so both sides of a chunk boundary apply the exact
// same rule.
func decrement(dir Direction, targetMeta BlockMeta, sourceLevel uint8, sourceEmptyShape bool, isSky bool) uint8 {
	if isSky && dir == DirDown && sourceLevel == MaxLight && sourceEmptyShape && targetMeta.Opacity == 0 {
		return MaxLight
	}
	cost := opacityDecrement(targetMeta.Opacity)
	if cost >= sourceLevel {
		return 0
	}
	return sourceLevel - cost
}

// runIntraChunk drains queue, propagating ch-channel light across the
// voxels owned by view, and returns every step that wanted to cross into a
// neighboring chunk instead. The caller is responsible for
// feeding those crossings to the scheduler.
func runIntraChunk(view *chunkView, ch Channel, queue *bucketQueue) []Crossing {
	var crossings []Crossing

	for {
		entry, ok := queue.pop()
		if !ok {
			break
		}
		if entry.Level <= 1 {
			// No decrement can leave anything above 0, in this chunk or a
			// neighbor; don't burn a direction loop or emit dead crossings.
			continue
		}

		current := view.GetLight(ch, entry.Pos)
		if current > entry.Level {
			// Already brighter than this entry from an earlier, higher-priority
			// entry; nothing left for this entry to contribute.
			continue
		}

		srcMeta := view.Meta(entry.Pos)

		for _, d := range AllDirections {
			if !entry.DirMask.Allows(d) {
				continue
			}
			next := entry.Pos.Add(d)

			if next.ChunkOf() != view.pos {
				crossings = append(crossings, Crossing{
					Pos:                next,
					Level:              entry.Level,
					Channel:            ch,
					Dir:                d,
					SourceIsEmptyShape: srcMeta.ShapeEmpty,
				})
				continue
			}

			targetMeta := view.Meta(next)
			newLevel := decrement(d, targetMeta, entry.Level, srcMeta.ShapeEmpty, ch == ChannelSky)
			if newLevel == 0 {
				continue
			}
			if view.GetLight(ch, next) >= newLevel {
				continue
			}
			view.SetLight(ch, next, newLevel)
			queue.enqueue(QueueEntry{
				Pos:     next,
				Level:   newLevel,
				DirMask: exceptOpposite(d),
			})
		}
	}

	return crossings
}

// scanEmitters walks every block section looking for light-emitting blocks
// (luminance > 0), seeds their voxel with that luminance, and enqueues them
// as emission sources. Uniform sections (every voxel the same state) are
// detected via a single snapshot and resolve their block metadata once
// instead of per voxel; their voxels are still seeded one by one.
func scanEmitters(view *chunkView, queue *bucketQueue) {
	for sec := 0; sec < SectionsPerChunk; sec++ {
		states := view.sections.blocks[sec].snapshot()
		baseY := ChunkMinY + int32(sec*SectionHeight)

		uniform, uniformID := uniformSection(&states)
		if uniform {
			meta := lookupMeta(view.registry, uniformID, view.logger)
			if meta.Luminance == 0 {
				continue
			}
			fillEmitterSection(view, queue, sec, baseY, meta.Luminance)
			continue
		}

		for i, id := range states {
			if id == 0 {
				continue
			}
			meta := lookupMeta(view.registry, id, view.logger)
			if meta.Luminance == 0 {
				continue
			}
			lx, ly, lz := devoxelIndex(i)
			pos := BlockPos{X: view.pos.X<<4 + int32(lx), Y: baseY + int32(ly), Z: view.pos.Z<<4 + int32(lz)}
			seedEmitter(view, queue, pos, meta.Luminance)
		}
	}
}

// uniformSection reports whether every voxel in states holds the same
// block state, and if so, which one.
func uniformSection(states *[SectionVolume]BlockStateID) (bool, BlockStateID) {
	first := states[0]
	for _, id := range states[1:] {
		if id != first {
			return false, 0
		}
	}
	return true, first
}

// fillEmitterSection seeds every voxel of a uniform emitting section and
// enqueues each as an emission source. It still enqueues one entry per
// voxel — the fast path saves the block-metadata lookups and the
// heterogeneity check, not the propagation work itself.
func fillEmitterSection(view *chunkView, queue *bucketQueue, sec int, baseY int32, luminance uint8) {
	for ly := 0; ly < SectionHeight; ly++ {
		for lz := 0; lz < SectionHeight; lz++ {
			for lx := 0; lx < SectionHeight; lx++ {
				pos := BlockPos{X: view.pos.X<<4 + int32(lx), Y: baseY + int32(ly), Z: view.pos.Z<<4 + int32(lz)}
				seedEmitter(view, queue, pos, luminance)
			}
		}
	}
}

func seedEmitter(view *chunkView, queue *bucketQueue, pos BlockPos, luminance uint8) {
	if view.GetLight(ChannelBlock, pos) >= luminance {
		return
	}
	view.SetLight(ChannelBlock, pos, luminance)
	queue.enqueue(QueueEntry{
		Pos:          pos,
		Level:        luminance,
		DirMask:      AllDirectionsMask,
		FromEmission: true,
	})
}

// devoxelIndex is the inverse of voxelIndex.
func devoxelIndex(idx int) (x, y, z int) {
	x = idx & 0xF
	z = (idx >> 4) & 0xF
	y = idx >> 8
	return
}
