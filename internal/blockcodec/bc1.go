package blockcodec

import "encoding/binary"

// decodeRGB565 expands a 5:6:5-packed color into 8-bit channels by
// replicating each channel's high bits into its low bits — the standard
// bit-expansion every BC1 decoder uses so 0x1F maps to 0xFF and not 0xF8.
func decodeRGB565(v uint16) (r, g, b byte) {
	r5 := byte(v >> 11 & 0x1F)
	g6 := byte(v >> 5 & 0x3F)
	b5 := byte(v & 0x1F)
	r = r5<<3 | r5>>2
	g = g6<<2 | g6>>4
	b = b5<<3 | b5>>2
	return
}

// decodeColorBlock decodes the 8-byte color sub-block shared by BC1 and
// BC3's embedded color data: two RGB565 endpoints, a derived 4-entry
// palette, and the 2-bit-per-pixel index stream selecting from it.
//
// Endpoint ordering picks the palette's shape: c0 > c1 (as raw uint16)
// gives the plain 4-color interpolated ramp; c0 <= c1 gives the 3-color
// ramp, whose fourth palette slot is either BC1a's transparent black
// (bc1a true, the convention BC3 relies on for its embedded color block)
// or opaque black (bc1a false, standalone BC1/DXT1 with no alpha channel
// of its own).
func decodeColorBlock(block []byte, bc1a bool) (palette [4]RGBA, indices [16]byte) {
	c0 := binary.LittleEndian.Uint16(block[0:2])
	c1 := binary.LittleEndian.Uint16(block[2:4])
	idx := binary.LittleEndian.Uint32(block[4:8])

	r0, g0, b0 := decodeRGB565(c0)
	r1, g1, b1 := decodeRGB565(c1)

	palette[0] = RGBA{r0, g0, b0, 255}
	palette[1] = RGBA{r1, g1, b1, 255}
	if c0 > c1 {
		palette[2] = RGBA{
			byte((2*int(r0) + int(r1)) / 3),
			byte((2*int(g0) + int(g1)) / 3),
			byte((2*int(b0) + int(b1)) / 3),
			255,
		}
		palette[3] = RGBA{
			byte((int(r0) + 2*int(r1)) / 3),
			byte((int(g0) + 2*int(g1)) / 3),
			byte((int(b0) + 2*int(b1)) / 3),
			255,
		}
	} else {
		palette[2] = RGBA{
			byte((int(r0) + int(r1)) / 2),
			byte((int(g0) + int(g1)) / 2),
			byte((int(b0) + int(b1)) / 2),
			255,
		}
		if bc1a {
			palette[3] = RGBA{0, 0, 0, 0}
		} else {
			palette[3] = RGBA{0, 0, 0, 255}
		}
	}

	for i := 0; i < 16; i++ {
		indices[i] = byte(idx>>uint(2*i)) & 0x3
	}
	return
}

// DecodeBC1 decodes a BC1 (DXT1) compressed image into tightly packed
// RGBA8 of length width*height*4.
func DecodeBC1(data []byte, width, height int) ([]byte, error) {
	return decodeBlocks(data, width, height, 8, func(block []byte) [16]RGBA {
		palette, indices := decodeColorBlock(block, false)
		var out [16]RGBA
		for i, ix := range indices {
			out[i] = palette[ix]
		}
		return out
	})
}
