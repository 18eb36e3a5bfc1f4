package blockcodec

import "testing"

// TestDecodeBC1SolidWhite covers spec.md §8's BC1 solid-white-block
// scenario: both endpoints white, every index 0, every decoded pixel
// opaque white.
func TestDecodeBC1SolidWhite(t *testing.T) {
	block := []byte{
		0xFF, 0xFF, // c0 = white (565)
		0xFF, 0xFF, // c1 = white (565)
		0x00, 0x00, 0x00, 0x00, // indices: all 0
	}
	out, err := DecodeBC1(block, 4, 4)
	if err != nil {
		t.Fatalf("DecodeBC1: %v", err)
	}
	for i := 0; i < 16; i++ {
		px := out[i*4 : i*4+4]
		want := [4]byte{255, 255, 255, 255}
		if px[0] != want[0] || px[1] != want[1] || px[2] != want[2] || px[3] != want[3] {
			t.Fatalf("pixel %d = %v, want %v", i, px, want)
		}
	}
}

// TestDecodeBC1ThreeColorModeIsOpaque covers standalone BC1/DXT1 decode
// (no alpha channel of its own): c0 <= c1 selects the 3-color ramp, whose
// fourth palette slot is opaque black, not BC1a's transparent black (that
// convention only applies to BC3's embedded color sub-block, exercised by
// TestDecodeColorBlockBC1aTransparent).
func TestDecodeBC1ThreeColorModeIsOpaque(t *testing.T) {
	block := []byte{
		0x00, 0x00, // c0 = black
		0xFF, 0xFF, // c1 = white
		0xFF, 0xFF, 0xFF, 0xFF, // indices: all 3
	}
	out, err := DecodeBC1(block, 4, 4)
	if err != nil {
		t.Fatalf("DecodeBC1: %v", err)
	}
	for i := 0; i < 16; i++ {
		if out[i*4+3] != 255 {
			t.Fatalf("pixel %d alpha = %d, want 255 (opaque)", i, out[i*4+3])
		}
	}
}

// TestDecodeColorBlockBC1aTransparent covers BC1a's transparent-black
// convention directly against decodeColorBlock, since DecodeBC3 always
// overwrites palette alpha with its own alpha ramp and so can't observe it.
func TestDecodeColorBlockBC1aTransparent(t *testing.T) {
	block := []byte{
		0x00, 0x00, // c0 = black
		0xFF, 0xFF, // c1 = white
		0xFF, 0xFF, 0xFF, 0xFF, // indices: all 3
	}
	palette, _ := decodeColorBlock(block, true)
	if palette[3].A != 0 {
		t.Fatalf("palette[3].A = %d, want 0 (transparent)", palette[3].A)
	}
}

func packIndices3bit(idx [16]byte) []byte {
	var bits uint64
	for i, v := range idx {
		bits |= uint64(v&0x7) << uint(3*i)
	}
	out := make([]byte, 6)
	for i := range out {
		out[i] = byte(bits >> uint(8*i))
	}
	return out
}

// TestDecodeBC3AlphaGradientAllZeroIndices and
// TestDecodeBC3AlphaGradientAllOnesIndices cover spec.md §8's BC3
// gradient-alpha scenario for both of its named index streams.
func TestDecodeBC3AlphaGradientAllZeroIndices(t *testing.T) {
	var idx [16]byte // all zero -> ramp[0] == alpha0
	alphaBlock := append([]byte{0, 255}, packIndices3bit(idx)...)
	colorBlock := []byte{0x00, 0x00, 0xFF, 0xFF, 0, 0, 0, 0}
	block := append(alphaBlock, colorBlock...)

	out, err := DecodeBC3(block, 4, 4)
	if err != nil {
		t.Fatalf("DecodeBC3: %v", err)
	}
	for i := 0; i < 16; i++ {
		if out[i*4+3] != 0 {
			t.Fatalf("pixel %d alpha = %d, want 0", i, out[i*4+3])
		}
	}
}

func TestDecodeBC3AlphaGradientAllOnesIndices(t *testing.T) {
	var idx [16]byte
	for i := range idx {
		idx[i] = 1 // -> ramp[1] == alpha1
	}
	alphaBlock := append([]byte{0, 255}, packIndices3bit(idx)...)
	colorBlock := []byte{0x00, 0x00, 0xFF, 0xFF, 0, 0, 0, 0}
	block := append(alphaBlock, colorBlock...)

	out, err := DecodeBC3(block, 4, 4)
	if err != nil {
		t.Fatalf("DecodeBC3: %v", err)
	}
	for i := 0; i < 16; i++ {
		if out[i*4+3] != 255 {
			t.Fatalf("pixel %d alpha = %d, want 255", i, out[i*4+3])
		}
	}
}

// TestDecodeBC1ClipsTrailingPartialBlock checks a 5x5 image (needing a
// 2x2 block grid whose trailing row and column are clipped) decodes to
// exactly width*height*4 bytes without panicking on the overhang.
func TestDecodeBC1ClipsTrailingPartialBlock(t *testing.T) {
	data := make([]byte, 4*8) // 2x2 blocks, 8 bytes each
	out, err := DecodeBC1(data, 5, 5)
	if err != nil {
		t.Fatalf("DecodeBC1: %v", err)
	}
	if len(out) != 5*5*4 {
		t.Fatalf("len(out) = %d, want %d", len(out), 5*5*4)
	}
}

func TestDecodeBC1InputTooSmall(t *testing.T) {
	if _, err := DecodeBC1(make([]byte, 4), 4, 4); err == nil {
		t.Fatal("expected error for undersized input")
	}
}
