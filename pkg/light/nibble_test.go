package light

import "testing"

func TestNibbleArrayRoundTrip(t *testing.T) {
	var n nibbleArray

	for y := 0; y < SectionHeight; y++ {
		for z := 0; z < SectionHeight; z++ {
			for x := 0; x < SectionHeight; x++ {
				v := uint8((x + y + z) % 16)
				n.set(x, y, z, v)
				if got := n.get(x, y, z); got != v {
					t.Fatalf("get(%d,%d,%d) = %d, want %d", x, y, z, got, v)
				}
			}
		}
	}
}

func TestNibbleArrayLowNibbleAtEvenIndex(t *testing.T) {
	var n nibbleArray

	// Index 0 (0,0,0) and index 1 (1,0,0) share data[0]: index 0 is the low
	// nibble, index 1 the high nibble.
	n.set(0, 0, 0, 0x5)
	n.set(1, 0, 0, 0xA)

	if n.data[0] != 0xA5 {
		t.Fatalf("data[0] = %#x, want 0xa5", n.data[0])
	}
	if got := n.get(0, 0, 0); got != 0x5 {
		t.Errorf("get(0,0,0) = %#x, want 0x5", got)
	}
	if got := n.get(1, 0, 0); got != 0xA {
		t.Errorf("get(1,0,0) = %#x, want 0xa", got)
	}
}

func TestNibbleArraySetClearsOnlyItsOwnNibble(t *testing.T) {
	var n nibbleArray
	n.set(0, 0, 0, 0xF)
	n.set(1, 0, 0, 0xF)

	n.set(0, 0, 0, 0x0)
	if got := n.get(1, 0, 0); got != 0xF {
		t.Errorf("clearing the even nibble disturbed the odd one: got %#x, want 0xf", got)
	}
	if got := n.get(0, 0, 0); got != 0x0 {
		t.Errorf("get(0,0,0) = %#x, want 0", got)
	}
}

func TestVoxelIndexDevoxelIndexInverse(t *testing.T) {
	for y := 0; y < SectionHeight; y++ {
		for z := 0; z < SectionHeight; z++ {
			for x := 0; x < SectionHeight; x++ {
				idx := voxelIndex(x, y, z)
				gx, gy, gz := devoxelIndex(idx)
				if gx != x || gy != y || gz != z {
					t.Fatalf("devoxelIndex(voxelIndex(%d,%d,%d)) = (%d,%d,%d)", x, y, z, gx, gy, gz)
				}
			}
		}
	}
}
