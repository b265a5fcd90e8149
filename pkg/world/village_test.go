package world

import "testing"

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b int
		want int
	}{
		{10, 3, 3},
		{-10, 3, -4},
		{16, 16, 1},
		{-16, 16, -1},
		{0, 16, 0},
		{-1, 16, -1},
		{-17, 16, -2},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestHamletCenterDeterministicAndInBounds(t *testing.T) {
	v := NewVillageGrid(12345, nil, nil)

	found := false
	for cellX := -10; cellX <= 10; cellX++ {
		for cellZ := -10; cellZ <= 10; cellZ++ {
			x1, z1, ok1 := v.center(cellX, cellZ)
			x2, z2, ok2 := v.center(cellX, cellZ)
			if ok1 != ok2 || x1 != x2 || z1 != z2 {
				t.Fatalf("center(%d,%d) not deterministic", cellX, cellZ)
			}
			if !ok1 {
				continue
			}
			found = true
			// The whole footprint must stay inside the cell, so footprints
			// from different cells can never overlap.
			minX := cellX*hamletCellSize + hamletRadius
			maxX := (cellX+1)*hamletCellSize - hamletRadius
			if x1 < minX || x1 >= maxX {
				t.Errorf("center(%d,%d) x=%d outside [%d,%d)", cellX, cellZ, x1, minX, maxX)
			}
			if !v.IsInVillage(x1, z1) {
				t.Errorf("IsInVillage(%d,%d) = false at a hamlet center", x1, z1)
			}
			// Probe just past the footprint, but only while still inside
			// this cell, where no other hamlet can reach.
			px, pz := x1+hamletRadius+1, z1+hamletRadius+1
			if px < (cellX+1)*hamletCellSize && pz < (cellZ+1)*hamletCellSize && v.IsInVillage(px, pz) {
				t.Errorf("IsInVillage true outside the footprint of (%d,%d)", x1, z1)
			}
		}
	}
	if !found {
		t.Fatal("no hamlet found in a 21x21 cell scan; roll chance is broken")
	}
}

// TestHamletRenderContinuity renders a hamlet whose center sits exactly on
// the border between chunks (0,0) and (1,0) into each chunk independently
// and checks the shared structures come out consistent: the well ring spans
// the border without gaps, and both chunks carry lit structures (torches or
// the well lamp) for the lighting engine to pick up.
func TestHamletRenderContinuity(t *testing.T) {
	const surfY = 64
	var left, right [SectionsPerChunk][ChunkSectionSize]uint16

	// Center at world x=16: the well ring covers x 15..17.
	renderHamlet(16, 8, surfY, 0, 0, &left)
	renderHamlet(16, 8, surfY, 1, 0, &right)

	at := func(s *[SectionsPerChunk][ChunkSectionSize]uint16, lx, y, lz int) uint16 {
		return s[y>>4][((y&15)*16+lz)*16+lx]
	}

	// Well rim at y=surfY+1: x=15 lands in the left chunk, x=16 in the right.
	if got := at(&left, 15, surfY+1, 8-1); got != hamletCobble {
		t.Errorf("left chunk well rim = %#x, want cobble %#x", got, hamletCobble)
	}
	if got := at(&right, 0, surfY+1, 8-1); got != hamletCobble {
		t.Errorf("right chunk well rim = %#x, want cobble %#x", got, hamletCobble)
	}
	if got := at(&right, 0, surfY+1, 8); got != hamletWater {
		t.Errorf("well water = %#x, want %#x", got, hamletWater)
	}

	// The well lamp (x=15, one west and north of center) is the left
	// chunk's light source.
	if got := at(&left, 15, surfY+3, 7); got != hamletGlowstone {
		t.Errorf("well lamp = %#x, want glowstone %#x", got, hamletGlowstone)
	}

	// Each chunk must hold at least one torch from cabins or torch posts.
	for name, s := range map[string]*[SectionsPerChunk][ChunkSectionSize]uint16{"left": &left, "right": &right} {
		found := false
		for sec := range s {
			for _, state := range s[sec] {
				if state == hamletTorch {
					found = true
				}
			}
		}
		if !found {
			t.Errorf("%s chunk rendered no torches", name)
		}
	}
}
