package world

import (
	"bytes"
	"encoding/binary"

	"github.com/StoreStation/VibeShitCraft/pkg/light"
)

const (
	ChunkSectionSize = 16 * 16 * 16
	ChunkHeight      = 256
	SectionsPerChunk = ChunkHeight / 16
)

// SerializeSections converts populated section arrays into 1.8 chunk wire
// format: block data for every non-empty section, then block light, then
// sky light, then biomes. lightSections supplies the computed per-voxel
// light for the column; pass nil to fall back to full-bright (0xFF).
func SerializeSections(sections *[SectionsPerChunk][ChunkSectionSize]uint16, biomes [256]byte, lightSections *light.Sections) ([]byte, uint16) {
	var primaryBitMask uint16
	for s := 0; s < SectionsPerChunk; s++ {
		for _, b := range sections[s] {
			if b != 0 {
				primaryBitMask |= 1 << uint(s)
				break
			}
		}
	}

	var buf bytes.Buffer
	forEachActive := func(write func(s int)) {
		for s := 0; s < SectionsPerChunk; s++ {
			if primaryBitMask&(1<<uint(s)) != 0 {
				write(s)
			}
		}
	}

	// Block data first, for every active section.
	forEachActive(func(s int) {
		for _, b := range sections[s] {
			binary.Write(&buf, binary.LittleEndian, b)
		}
	})
	// Then the two light channels, same section order. Interleaving these
	// per section instead shifts every section after the first by 4 KiB and
	// garbles the client render.
	forEachActive(func(s int) {
		buf.Write(sectionLightBytes(lightSections, light.ChannelBlock, s))
	})
	forEachActive(func(s int) {
		buf.Write(sectionLightBytes(lightSections, light.ChannelSky, s))
	})

	buf.Write(biomes[:])
	return buf.Bytes(), primaryBitMask
}

// sectionLightBytes packs one section's light nibbles into the wire's
// 2-nibbles-per-byte layout (low nibble at the even voxel index), in the
// same (y*16+z)*16+x voxel order the block data uses. ls nil means full
// bright, the server's behavior before the lighting engine existed.
func sectionLightBytes(ls *light.Sections, ch light.Channel, sec int) []byte {
	out := make([]byte, 2048)
	if ls == nil {
		for i := range out {
			out[i] = 0xFF
		}
		return out
	}
	baseY := int32(sec * 16)
	for ly := 0; ly < 16; ly++ {
		for lz := 0; lz < 16; lz++ {
			for lx := 0; lx < 16; lx++ {
				v := ls.GetLight(ch, lx, baseY+int32(ly), lz)
				idx := ly<<8 | lz<<4 | lx
				b := idx / 2
				if idx%2 == 0 {
					out[b] = (out[b] & 0xF0) | (v & 0x0F)
				} else {
					out[b] = (out[b] & 0x0F) | (v << 4)
				}
			}
		}
	}
	return out
}
