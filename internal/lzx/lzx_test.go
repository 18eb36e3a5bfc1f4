package lzx

import (
	"testing"

	"github.com/deepteams/magicka/internal/bitio"
	"github.com/deepteams/magicka/internal/byteio"
)

func TestExtraBitsTable(t *testing.T) {
	cases := []struct {
		slot int
		want int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 1}, {34, 17}, {35, 17}, {50, 17},
	}
	for _, c := range cases {
		if extraBits[c.slot] != c.want {
			t.Errorf("extraBits[%d] = %d, want %d", c.slot, extraBits[c.slot], c.want)
		}
	}
}

func TestPositionBaseTable(t *testing.T) {
	if positionBase[0] != 0 {
		t.Errorf("positionBase[0] = %d, want 0", positionBase[0])
	}
	if positionBase[1] != 1 {
		t.Errorf("positionBase[1] = %d, want 1", positionBase[1])
	}
	if positionBase[2] != 2 {
		t.Errorf("positionBase[2] = %d, want 2", positionBase[2])
	}
	if positionBase[3] != 4 {
		t.Errorf("positionBase[3] = %d, want 4", positionBase[3])
	}
}

func TestBuildTableTwoEqualLengthSymbols(t *testing.T) {
	tbl, err := buildTable(1, []uint8{1, 1})
	if err != nil {
		t.Fatalf("buildTable: %v", err)
	}
	if tbl.codes[0] != 0 || tbl.codes[1] != 1 {
		t.Errorf("codes = %v, want [0 1]", tbl.codes[:2])
	}
}

func TestBuildTableAllZeroIsEmptyNotError(t *testing.T) {
	if _, err := buildTable(3, make([]uint8, 20)); err != nil {
		t.Fatalf("all-zero code lengths should build an empty table, got: %v", err)
	}
}

func TestBuildTableUnfilledIsErroneous(t *testing.T) {
	// A single nonzero-length symbol can never fully occupy the table.
	lens := make([]uint8, 4)
	lens[0] = 1
	if _, err := buildTable(2, lens); err == nil {
		t.Fatal("expected erroneous table error")
	}
}

func TestTableReadSymDirectLookup(t *testing.T) {
	tbl, err := buildTable(1, []uint8{1, 1})
	if err != nil {
		t.Fatalf("buildTable: %v", err)
	}
	// group = 0x8000 -> top bit 1 -> symbol 1.
	src := byteio.NewSource([]byte{0x00, 0x80, 0x00, 0x00})
	bb := bitio.New(src)
	sym, err := tbl.readSym(bb)
	if err != nil {
		t.Fatalf("readSym: %v", err)
	}
	if sym != 1 {
		t.Errorf("readSym = %d, want 1", sym)
	}
}

// bitWriter packs a sequence of MSB-first bit fields into the byte layout
// BitBuffer expects: 16-bit little-endian word groups, each read back
// high-byte-bits-first then low-byte-bits. See bitio.BitBuffer.Ensure.
type bitWriter struct {
	bits []byte
}

func (w *bitWriter) push(value uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, byte((value>>uint(i))&1))
	}
}

// padLookahead appends extra zero bits so a trailing Ensure(16) lookahead
// (issued by the last Huffman symbol read in a stream) never runs past
// true end of buffer. Only needed when the bitstream ends on Huffman-coded
// content; raw/uncompressed payloads that follow a bit-coded header don't
// need it, since their bytes are read directly rather than through the bit
// buffer.
func (w *bitWriter) padLookahead() {
	w.bits = append(w.bits, make([]byte, 32)...)
}

func (w *bitWriter) bytes() []byte {
	bits := append([]byte{}, w.bits...)
	for len(bits)%16 != 0 {
		bits = append(bits, 0)
	}
	out := make([]byte, 0, len(bits)/8)
	for i := 0; i < len(bits); i += 16 {
		var v uint16
		for j := 0; j < 16; j++ {
			v = v<<1 | uint16(bits[i+j])
		}
		out = append(out, byte(v&0xFF), byte(v>>8))
	}
	return out
}

// TestDecodeFrameUncompressedBlock exercises the uncompressed-block path
// end to end: a 1-bit intel flag, a 3-bit block kind, a 24-bit block
// length, r0/r1/r2 reinitialization, and a raw byte copy into the window.
func TestDecodeFrameUncompressedBlock(t *testing.T) {
	w := &bitWriter{}
	w.push(0, 1)             // intel flag: off
	w.push(blockUncompressed, 3)
	w.push(0, 16) // block length hi
	w.push(2, 8)  // block length lo -> length 2

	buf := w.bytes()
	// The 28 header bits round up to exactly two 16-bit groups (4 bytes)
	// with no spare group left over, so RealignUncompressed's rewind
	// lands the source cursor exactly at offset 4: r0/r1/r2 and the raw
	// payload bytes can follow immediately with no gap.
	raw := []byte{'A', 'B'}
	r0r1r2 := []byte{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}
	full := append(append([]byte{}, buf...), append(r0r1r2, raw...)...)

	src := byteio.NewSource(full)
	d := NewDecoder(src)
	out, err := d.DecodeFrame(len(full), 2)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if string(out) != "AB" {
		t.Errorf("DecodeFrame output = %q, want %q", out, "AB")
	}
	if d.r0 != 1 || d.r1 != 1 || d.r2 != 1 {
		t.Errorf("r0/r1/r2 = %d/%d/%d, want 1/1/1", d.r0, d.r1, d.r2)
	}
}

// TestDecodeFrameVerbatimLiterals builds a minimal verbatim block whose
// main tree assigns exactly two one-bit codes (to the literals 'A' and
// 'B') via a two-symbol pretree (symbols 0 and 16) reused across all three
// code-length segments (literal main lengths, length-header main lengths,
// length-tree lengths), and checks the decoded output.
func TestDecodeFrameVerbatimLiterals(t *testing.T) {
	w := &bitWriter{}
	w.push(0, 1) // intel flag off
	w.push(blockVerbatim, 3)
	w.push(0, 16)
	w.push(2, 8) // block length = 2

	pushPretreeHeader := func() {
		for sym := 0; sym < pretreeNumSymbols; sym++ {
			if sym == 0 || sym == 16 {
				w.push(1, 4)
			} else {
				w.push(0, 4)
			}
		}
	}
	// Two-symbol pretree: symbol 0 -> code 0 (1 bit), symbol 16 -> code 1
	// (1 bit), matching buildTable's direct-fill ordering by symbol index.
	pushZero := func() { w.push(0, 1) }  // pretree symbol 0: delta 0, length stays 0
	pushSetOne := func() { w.push(1, 1) } // pretree symbol 16: delta 16 -> length 1

	// Segment 1: mainLen[0:256]. Only 'A' (65) and 'B' (66) get length 1.
	pushPretreeHeader()
	for sym := 0; sym < 256; sym++ {
		if sym == 'A' || sym == 'B' {
			pushSetOne()
		} else {
			pushZero()
		}
	}
	// Segment 2: mainLen[256:mainElements], all zero.
	pushPretreeHeader()
	for i := 256; i < mainElements; i++ {
		pushZero()
	}
	// Segment 3: lenLen[0:lengthNumSymbols], all zero.
	pushPretreeHeader()
	for i := 0; i < lengthNumSymbols; i++ {
		pushZero()
	}

	// Payload: 'A' then 'B', each a single bit per the two-symbol main
	// tree's direct-fill ordering (lower symbol index -> code 0).
	w.push(0, 1) // 'A'
	w.push(1, 1) // 'B'
	w.padLookahead()

	buf := w.bytes()
	src := byteio.NewSource(buf)
	d := NewDecoder(src)
	out, err := d.DecodeFrame(len(buf), 2)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if string(out) != "AB" {
		t.Errorf("DecodeFrame output = %q, want %q", out, "AB")
	}
}
