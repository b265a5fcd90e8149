package world

// Hamlets are small torch-lit settlements placed deterministically on a
// sparse grid. Every hamletCellSize blocks in X and Z forms a cell; each
// cell independently rolls whether it holds a hamlet, and structures are
// rendered per chunk from the hamlet's world-space center so the same
// buildings come out identical no matter which chunk streams in first.
const (
	hamletCellSize = 96
	hamletRadius   = 16 // structures stay within this range of the center
)

// VillageGrid decides where hamlets go and renders their structures.
type VillageGrid struct {
	seed int64
	temp *Perlin
	rain *Perlin
}

// NewVillageGrid creates a VillageGrid. The temperature and rainfall noise
// are the generator's biome fields; hamlets only settle biomes with a
// grass surface.
func NewVillageGrid(seed int64, temp, rain *Perlin) *VillageGrid {
	return &VillageGrid{seed: seed, temp: temp, rain: rain}
}

// mix returns a deterministic non-negative value in [0, mod) for cell
// (cx, cz) and a salt distinguishing independent rolls on the same cell.
func (v *VillageGrid) mix(cx, cz, salt, mod int64) int64 {
	h := uint64(v.seed) ^ uint64(cx)*0x9E3779B97F4A7C15 ^ uint64(cz)*0xC2B2AE3D27D4EB4F ^ uint64(salt)*0x165667B19E3779F9
	h ^= h >> 30
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 27
	h *= 0x94D049BB133111EB
	h ^= h >> 31
	return int64(h % uint64(mod))
}

// floorDiv divides rounding toward negative infinity, so cell lookups work
// in every coordinate quadrant.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// center returns the world (x, z) of the hamlet in grid cell (cellX, cellZ)
// and whether that cell holds one at all. Roughly one cell in three rolls a
// hamlet; the center is then jittered inside the cell, kept far enough from
// the cell edge that the whole settlement stays inside it, and finally
// gated on the biome: only grass-surfaced biomes get settled.
func (v *VillageGrid) center(cellX, cellZ int) (wx, wz int, ok bool) {
	cx, cz := int64(cellX), int64(cellZ)
	if v.mix(cx, cz, 1, 3) != 0 {
		return 0, 0, false
	}

	span := int64(hamletCellSize - 2*hamletRadius)
	wx = cellX*hamletCellSize + hamletRadius + int(v.mix(cx, cz, 2, span))
	wz = cellZ*hamletCellSize + hamletRadius + int(v.mix(cx, cz, 3, span))

	if v.temp != nil && v.rain != nil {
		b := BiomeAt(v.temp, v.rain, wx, wz)
		if b.SurfaceBlock != BiomePlains.SurfaceBlock {
			return 0, 0, false
		}
	}
	return wx, wz, true
}

// IsInVillage reports whether (wx, wz) falls inside a hamlet's footprint,
// used by the generator to keep trees and boulders off the settlement.
func (v *VillageGrid) IsInVillage(wx, wz int) bool {
	cellX := floorDiv(wx, hamletCellSize)
	cellZ := floorDiv(wz, hamletCellSize)
	// A footprint never crosses a cell edge (the center jitter guarantees
	// it), so only this cell's hamlet can cover the point.
	hx, hz, ok := v.center(cellX, cellZ)
	if !ok {
		return false
	}
	dx, dz := wx-hx, wz-hz
	return dx >= -hamletRadius && dx <= hamletRadius && dz >= -hamletRadius && dz <= hamletRadius
}

// generateVillage writes the parts of any nearby hamlet that intersect
// chunk (chunkX, chunkZ) into sections. heightAt resolves the surface
// height at a world position; it is always evaluated at the hamlet's own
// center, so every chunk renders the same buildings at the same height no
// matter which chunk streams in first.
func (v *VillageGrid) generateVillage(chunkX, chunkZ int, heightAt func(wx, wz int) int, sections *[SectionsPerChunk][ChunkSectionSize]uint16) {
	minCellX := floorDiv(chunkX*16-hamletRadius, hamletCellSize)
	maxCellX := floorDiv(chunkX*16+15+hamletRadius, hamletCellSize)
	minCellZ := floorDiv(chunkZ*16-hamletRadius, hamletCellSize)
	maxCellZ := floorDiv(chunkZ*16+15+hamletRadius, hamletCellSize)

	for cellX := minCellX; cellX <= maxCellX; cellX++ {
		for cellZ := minCellZ; cellZ <= maxCellZ; cellZ++ {
			if hx, hz, ok := v.center(cellX, cellZ); ok {
				renderHamlet(hx, hz, heightAt(hx, hz), chunkX, chunkZ, sections)
			}
		}
	}
}

// Block states used by hamlet structures.
const (
	hamletCobble    = 4 << 4
	hamletPlanks    = 5 << 4
	hamletLog       = 17 << 4
	hamletDoor      = 64 << 4
	hamletFence     = 85 << 4
	hamletGlowstone = 89 << 4
	hamletGlassPane = 102 << 4
	hamletWater     = 9 << 4
	hamletTorch     = 50<<4 | 5 // standing torch
	hamletAir       = 0
)

// renderHamlet writes every structure of the hamlet centered at world
// (hx, hz) that falls inside chunk (chunkX, chunkZ). Rendering is a pure
// function of the center, so adjacent chunks always agree about the blocks
// on their shared border.
func renderHamlet(hx, hz, surfY, chunkX, chunkZ int, sections *[SectionsPerChunk][ChunkSectionSize]uint16) {
	place := func(wx, y, wz int, state uint16) {
		lx := wx - chunkX*16
		lz := wz - chunkZ*16
		if lx < 0 || lx > 15 || lz < 0 || lz > 15 || y < 0 || y > 255 {
			return
		}
		sections[y>>4][((y&15)*16+lz)*16+lx] = state
	}

	renderWell(hx, hz, surfY, place)

	// Four cabins on the cardinal points, doors facing the well.
	renderCabin(hx-11, hz, surfY, 5, place) // west cabin, door on +x
	renderCabin(hx+7, hz, surfY, 4, place)  // east cabin, door on -x
	renderCabin(hx, hz-11, surfY, 3, place) // north cabin, door on +z
	renderCabin(hx, hz+7, surfY, 2, place)  // south cabin, door on -z

	// Torch posts at the path corners so the paths stay lit after dark.
	for _, c := range [4][2]int{{-5, -5}, {-5, 5}, {5, -5}, {5, 5}} {
		renderTorchPost(hx+c[0], hz+c[1], surfY, place)
	}
}

// renderWell builds the central well: a 3x3 cobble ring holding water, with
// a fence post carrying a glowstone lamp on the rim.
func renderWell(hx, hz, surfY int, place func(wx, y, wz int, state uint16)) {
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			place(hx+dx, surfY, hz+dz, hamletCobble)
			if dx == 0 && dz == 0 {
				place(hx, surfY+1, hz, hamletWater)
			} else {
				place(hx+dx, surfY+1, hz+dz, hamletCobble)
			}
		}
	}
	place(hx-1, surfY+2, hz-1, hamletFence)
	place(hx-1, surfY+3, hz-1, hamletGlowstone)
}

// renderCabin builds a 5x5 plank cabin with log corners, a glass pane on
// each closed wall, a door on the side given by face (2=-z 3=+z 4=-x 5=+x,
// the block-face convention the rest of the server uses), and a torch just
// outside the door.
func renderCabin(cx, cz, surfY, face int, place func(wx, y, wz int, state uint16)) {
	const half = 2

	// Foundation and floor.
	for dx := -half; dx <= half; dx++ {
		for dz := -half; dz <= half; dz++ {
			place(cx+dx, surfY, cz+dz, hamletCobble)
		}
	}

	// Walls with log corners; interior stays air.
	for y := surfY + 1; y <= surfY+3; y++ {
		for dx := -half; dx <= half; dx++ {
			for dz := -half; dz <= half; dz++ {
				onEdge := dx == -half || dx == half || dz == -half || dz == half
				if !onEdge {
					place(cx+dx, y, cz+dz, hamletAir)
					continue
				}
				corner := (dx == -half || dx == half) && (dz == -half || dz == half)
				if corner {
					place(cx+dx, y, cz+dz, hamletLog)
				} else {
					place(cx+dx, y, cz+dz, hamletPlanks)
				}
			}
		}
	}

	// Flat plank roof.
	for dx := -half; dx <= half; dx++ {
		for dz := -half; dz <= half; dz++ {
			place(cx+dx, surfY+4, cz+dz, hamletPlanks)
		}
	}

	// Door, window panes, and the door torch.
	doorX, doorZ := cx, cz
	outX, outZ := cx, cz
	switch face {
	case 2:
		doorZ, outZ = cz-half, cz-half-1
	case 3:
		doorZ, outZ = cz+half, cz+half+1
	case 4:
		doorX, outX = cx-half, cx-half-1
	default:
		doorX, outX = cx+half, cx+half+1
	}
	place(doorX, surfY+1, doorZ, hamletDoor)
	place(doorX, surfY+2, doorZ, hamletDoor|8) // upper half
	place(outX, surfY+1, outZ, hamletTorch)

	// A pane centered on each wall that doesn't hold the door.
	for _, w := range [4][2]int{{0, -half}, {0, half}, {-half, 0}, {half, 0}} {
		px, pz := cx+w[0], cz+w[1]
		if px == doorX && pz == doorZ {
			continue
		}
		place(px, surfY+2, pz, hamletGlassPane)
	}
}

// renderTorchPost builds a two-block fence post with a torch on top.
func renderTorchPost(px, pz, surfY int, place func(wx, y, wz int, state uint16)) {
	place(px, surfY+1, pz, hamletFence)
	place(px, surfY+2, pz, hamletFence)
	place(px, surfY+3, pz, hamletTorch)
}
