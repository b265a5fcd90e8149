package light

import "testing"

func TestSectionsBlockStateRoundTrip(t *testing.T) {
	s := NewSections()
	s.SetBlockState(3, 10, 7, 42)
	if got := s.GetBlockState(3, 10, 7); got != 42 {
		t.Errorf("GetBlockState = %d, want 42", got)
	}
}

func TestSectionsBlockStateOutOfBoundsReadsAir(t *testing.T) {
	s := NewSections()
	if got := s.GetBlockState(0, ChunkMinY-1, 0); got != 0 {
		t.Errorf("GetBlockState below world = %d, want 0", got)
	}
	if got := s.GetBlockState(0, ChunkMaxY, 0); got != 0 {
		t.Errorf("GetBlockState above world = %d, want 0", got)
	}
}

func TestSectionsBlockStateOutOfBoundsWriteDropped(t *testing.T) {
	s := NewSections()
	// Must not panic, and must not be observable through any in-bounds read.
	s.SetBlockState(0, ChunkMaxY+100, 0, 7)
	s.SetBlockState(0, ChunkMinY-100, 0, 7)
	if got := s.GetBlockState(0, ChunkMaxY-1, 0); got != 0 {
		t.Errorf("GetBlockState at top in-world voxel = %d, want 0", got)
	}
	if got := s.GetBlockState(0, ChunkMinY, 0); got != 0 {
		t.Errorf("GetBlockState at bottom in-world voxel = %d, want 0", got)
	}
}

func TestSectionsLightRoundTrip(t *testing.T) {
	s := NewSections()
	if ok := s.SetLight(ChannelBlock, 5, 0, 5, 12); !ok {
		t.Fatal("SetLight at an in-bounds position returned false")
	}
	if got := s.GetLight(ChannelBlock, 5, 0, 5); got != 12 {
		t.Errorf("GetLight = %d, want 12", got)
	}
	// Sky and block channels are independent.
	if got := s.GetLight(ChannelSky, 5, 0, 5); got != 0 {
		t.Errorf("GetLight(sky) = %d, want 0 (untouched)", got)
	}
}

func TestSectionsLightCoversPaddingSections(t *testing.T) {
	s := NewSections()
	// One section below ChunkMinY and one above ChunkMaxY are valid padded
	// light sections (S+2), even though there's no block storage there.
	if ok := s.SetLight(ChannelSky, 0, ChunkMinY-1, 0, 7); !ok {
		t.Error("SetLight in the bottom padding section returned false")
	}
	if got := s.GetLight(ChannelSky, 0, ChunkMinY-1, 0); got != 7 {
		t.Errorf("GetLight in bottom padding = %d, want 7", got)
	}
	// The padding write must not alias any in-world voxel.
	if got := s.GetLight(ChannelSky, 0, ChunkMinY+SectionHeight-1, 0); got != 0 {
		t.Errorf("bottom-padding write aliased in-world voxel: got %d, want 0", got)
	}
	if ok := s.SetLight(ChannelSky, 0, ChunkMaxY, 0, 9); !ok {
		t.Error("SetLight in the top padding section returned false")
	}
	if got := s.GetLight(ChannelSky, 0, ChunkMaxY, 0); got != 9 {
		t.Errorf("GetLight in top padding = %d, want 9", got)
	}
}

func TestSectionsLightOutOfBounds(t *testing.T) {
	s := NewSections()

	if got := s.GetLight(ChannelBlock, 0, ChunkMinY-SectionHeight-1, 0); got != 0 {
		t.Errorf("GetLight far below padded range = %d, want 0", got)
	}
	if got := s.GetLight(ChannelBlock, 0, ChunkMaxY+SectionHeight, 0); got != 0 {
		t.Errorf("GetLight far above padded range = %d, want 0", got)
	}
	if ok := s.SetLight(ChannelBlock, 0, ChunkMaxY+SectionHeight, 0, 5); ok {
		t.Error("SetLight far outside the padded range returned true")
	}
}

func TestHeightmapDefaultsToNone(t *testing.T) {
	h := NewHeightmap()
	for z := 0; z < SectionHeight; z++ {
		for x := 0; x < SectionHeight; x++ {
			if got := h.Get(x, z); got != HeightmapNone {
				t.Fatalf("Get(%d,%d) = %d, want HeightmapNone", x, z, got)
			}
		}
	}
}

func TestHeightmapSetAndSnapshot(t *testing.T) {
	h := NewHeightmap()
	h.Set(1, 2, 63)

	if got := h.Get(1, 2); got != 63 {
		t.Errorf("Get(1,2) = %d, want 63", got)
	}

	snap := h.Snapshot()
	if snap[columnIndex(1, 2)] != 63 {
		t.Errorf("Snapshot()[columnIndex(1,2)] = %d, want 63", snap[columnIndex(1, 2)])
	}
	if snap[columnIndex(0, 0)] != HeightmapNone {
		t.Errorf("Snapshot()[columnIndex(0,0)] = %d, want HeightmapNone", snap[columnIndex(0, 0)])
	}
}

func TestLightSectionFillSetsEveryVoxel(t *testing.T) {
	ls := &lightSection{}
	ls.fill(11)

	for y := 0; y < SectionHeight; y++ {
		for z := 0; z < SectionHeight; z++ {
			for x := 0; x < SectionHeight; x++ {
				if got := ls.get(x, y, z); got != 11 {
					t.Fatalf("get(%d,%d,%d) = %d, want 11", x, y, z, got)
				}
			}
		}
	}
}
