package lzx

import (
	"fmt"

	"github.com/deepteams/magicka/internal/bitio"
	"github.com/deepteams/magicka/internal/byteio"
	"github.com/deepteams/magicka/internal/ferr"
	"github.com/deepteams/magicka/internal/pool"
)

// Decoder is a persistent LZX decompressor: its sliding window, repeated-
// offset cache, and in-progress block state survive across calls to
// DecodeFrame, because a single compressed block can span more than one
// container frame.
//
// Grounded on the WIM LZX decompressor's decompressor struct (see
// constants.go), adapted from its one-shot io.Reader interface to the
// frame-at-a-time contract spec.md requires: the container reader knows how
// many compressed bytes each frame occupies and how many decompressed
// bytes it should yield, and re-syncs the byte source to that boundary
// after every call regardless of how many bytes the bit buffer actually
// looked at.
type Decoder struct {
	source *byteio.Source
	bb     *bitio.BitBuffer

	window     []byte
	windowPosn int

	r0, r1, r2 uint32

	headerRead     bool
	intelStarted   bool
	intelFilesize  uint32

	blockKind      int
	blockRemaining int
	pendingOddPad  bool

	mainLen []uint8
	lenLen  []uint8

	mainTable    *table
	lengthTable  *table
	alignedTable *table
}

// NewDecoder creates an LZX decoder reading compressed frames from source.
// The repeated-offset cache starts at {1,1,1} per spec.md; code-length
// arrays start all-zero, since the first block's pretree RLE deltas are
// relative to an implicit all-zero history.
func NewDecoder(source *byteio.Source) *Decoder {
	return &Decoder{
		source:  source,
		bb:      bitio.New(source),
		window:  pool.Get(WindowSize),
		r0:      1,
		r1:      1,
		r2:      1,
		mainLen: make([]uint8, mainElements),
		lenLen:  make([]uint8, lengthNumSymbols),
	}
}

// Close returns the decoder's sliding window to the shared buffer pool. It
// must be called once the decoder (and every frame it produced copies of)
// is no longer needed; calling any other method afterward is undefined.
func (d *Decoder) Close() {
	if d.window != nil {
		pool.Put(d.window)
		d.window = nil
	}
}

// IntelE8Detected reports whether the first frame's Intel E8 header flag
// was set, or any block processed so far carried the Intel E8
// call-translation marker (an uncompressed block, or a verbatim/aligned
// block whose main tree assigns symbol 0xE8 a nonzero code length).
//
// spec.md's documented limitation applies here: this decoder detects the
// marker but does not perform the E8 jump-address postprocessing pass, so
// frames decoded from a stream that set it are returned un-translated.
func (d *Decoder) IntelE8Detected() bool { return d.intelStarted }

// IntelFilesize returns the Intel E8 filesize field read from the first
// bit of the very first frame, if the Intel E8 flag was set there. Only
// meaningful after the first DecodeFrame call.
func (d *Decoder) IntelFilesize() uint32 { return d.intelFilesize }

// DecodeFrame decompresses exactly frameSize bytes, consuming compressed
// bytes from the underlying source, and leaves the source positioned
// blockSize bytes past where it started — the container frame's declared
// compressed size — even if the bit buffer's two-byte-at-a-time refill
// cached bytes beyond what this frame's blocks actually needed. Those
// surplus cached bits belong to the next frame's realignment, not this
// one's output, and are discarded along with the rest of the bit buffer's
// state before returning.
func (d *Decoder) DecodeFrame(blockSize, frameSize int) ([]byte, error) {
	startPos := d.source.Pos()

	if !d.headerRead {
		flag, err := d.bb.Take(1)
		if err != nil {
			return nil, fmt.Errorf("lzx: reading intel e8 flag: %w", err)
		}
		if flag != 0 {
			d.intelStarted = true
			hi, err := d.bb.Take(16)
			if err != nil {
				return nil, fmt.Errorf("lzx: reading intel filesize: %w", err)
			}
			lo, err := d.bb.Take(16)
			if err != nil {
				return nil, fmt.Errorf("lzx: reading intel filesize: %w", err)
			}
			d.intelFilesize = hi<<16 | lo
		}
		d.headerRead = true
	}

	togo := frameSize
	for togo > 0 {
		if d.blockRemaining == 0 {
			if err := d.readBlockHeader(); err != nil {
				return nil, err
			}
		}
		thisRun := d.blockRemaining
		if thisRun > togo {
			thisRun = togo
		}
		togo -= thisRun
		d.blockRemaining -= thisRun
		if err := d.runBlock(thisRun); err != nil {
			return nil, err
		}
	}

	out, err := d.emit(frameSize)
	if err != nil {
		return nil, err
	}

	if err := d.source.Seek(startPos + blockSize); err != nil {
		return nil, fmt.Errorf("lzx: resyncing to frame boundary: %w", err)
	}
	d.bb.Clear()
	return out, nil
}

func (d *Decoder) readBlockHeader() error {
	if d.pendingOddPad {
		if _, err := byteio.U8(d.source); err != nil {
			return fmt.Errorf("lzx: odd-length uncompressed block padding byte: %w", err)
		}
		d.bb.Clear()
		d.pendingOddPad = false
	}

	kind, err := d.bb.Take(3)
	if err != nil {
		return fmt.Errorf("lzx: reading block kind: %w", err)
	}
	lenHi, err := d.bb.Take(16)
	if err != nil {
		return fmt.Errorf("lzx: reading block length: %w", err)
	}
	lenLo, err := d.bb.Take(8)
	if err != nil {
		return fmt.Errorf("lzx: reading block length: %w", err)
	}

	d.blockKind = int(kind)
	d.blockRemaining = int(lenHi)<<8 | int(lenLo)

	switch d.blockKind {
	case blockAligned:
		var alignedLen [alignedNumSymbols]uint8
		for i := range alignedLen {
			v, err := d.bb.Take(3)
			if err != nil {
				return fmt.Errorf("lzx: reading aligned tree lengths: %w", err)
			}
			alignedLen[i] = uint8(v)
		}
		at, err := buildTable(alignedTableBits, alignedLen[:])
		if err != nil {
			return fmt.Errorf("lzx: building aligned table: %w", err)
		}
		d.alignedTable = at
		fallthrough

	case blockVerbatim:
		if d.blockKind != blockAligned {
			d.alignedTable = nil
		}
		if err := d.readCodeLengths(d.mainLen[:256]); err != nil {
			return fmt.Errorf("lzx: reading main tree literal lengths: %w", err)
		}
		if err := d.readCodeLengths(d.mainLen[256:]); err != nil {
			return fmt.Errorf("lzx: reading main tree length-header lengths: %w", err)
		}
		if d.mainLen[0xE8] != 0 {
			d.intelStarted = true
		}
		if err := d.readCodeLengths(d.lenLen); err != nil {
			return fmt.Errorf("lzx: reading length tree lengths: %w", err)
		}
		mt, err := buildTable(mainTreeTableBits, d.mainLen)
		if err != nil {
			return fmt.Errorf("lzx: building main table: %w", err)
		}
		d.mainTable = mt
		lt, err := buildTable(lengthTableBits, d.lenLen)
		if err != nil {
			return fmt.Errorf("lzx: building length table: %w", err)
		}
		d.lengthTable = lt

	case blockUncompressed:
		d.intelStarted = true
		if err := d.bb.RealignUncompressed(); err != nil {
			return fmt.Errorf("lzx: realigning uncompressed block: %w", err)
		}
		r0, err := byteio.U32LE(d.source)
		if err != nil {
			return fmt.Errorf("lzx: reading r0: %w", err)
		}
		r1, err := byteio.U32LE(d.source)
		if err != nil {
			return fmt.Errorf("lzx: reading r1: %w", err)
		}
		r2, err := byteio.U32LE(d.source)
		if err != nil {
			return fmt.Errorf("lzx: reading r2: %w", err)
		}
		d.r0, d.r1, d.r2 = r0, r1, r2

	default:
		return fmt.Errorf("lzx: block kind %d: %w", d.blockKind, ferr.ErrInvalidBlock)
	}

	if d.blockKind == blockUncompressed && d.blockRemaining%2 == 1 {
		d.pendingOddPad = true
	}
	return nil
}

// readCodeLengths implements spec.md's pretree-driven code-length RLE: a
// 20-symbol pretree (one 4-bit length per symbol) decodes a stream of
// symbols that either delta-code a single length against its previous
// value (0-16), or run-length a stretch of zeros (17, 18) or a repeat of
// one delta-coded length (19) across lens.
func (d *Decoder) readCodeLengths(lens []uint8) error {
	var pretreeLen [pretreeNumSymbols]uint8
	for i := range pretreeLen {
		v, err := d.bb.Take(4)
		if err != nil {
			return fmt.Errorf("reading pretree lengths: %w", err)
		}
		pretreeLen[i] = uint8(v)
	}
	pretree, err := buildTable(pretreeTableBits, pretreeLen[:])
	if err != nil {
		return fmt.Errorf("building pretree: %w", err)
	}

	i := 0
	for i < len(lens) {
		c, err := pretree.readSym(d.bb)
		if err != nil {
			return fmt.Errorf("reading pretree symbol: %w", err)
		}
		switch {
		case c <= 16:
			lens[i] = mod17(lens[i] + 17 - uint8(c))
			i++

		case c == 17:
			v, err := d.bb.Take(4)
			if err != nil {
				return fmt.Errorf("reading zero-run (short) count: %w", err)
			}
			n := int(v) + 4
			if i+n > len(lens) {
				return fmt.Errorf("lzx: zero-run overruns code-length vector: %w", ferr.ErrInvalidBlock)
			}
			for j := 0; j < n; j++ {
				lens[i+j] = 0
			}
			i += n

		case c == 18:
			v, err := d.bb.Take(5)
			if err != nil {
				return fmt.Errorf("reading zero-run (long) count: %w", err)
			}
			n := int(v) + 20
			if i+n > len(lens) {
				return fmt.Errorf("lzx: zero-run overruns code-length vector: %w", ferr.ErrInvalidBlock)
			}
			for j := 0; j < n; j++ {
				lens[i+j] = 0
			}
			i += n

		case c == 19:
			v, err := d.bb.Take(1)
			if err != nil {
				return fmt.Errorf("reading same-run count: %w", err)
			}
			n := int(v) + 4
			if i+n > len(lens) {
				return fmt.Errorf("lzx: same-run overruns code-length vector: %w", ferr.ErrInvalidBlock)
			}
			c2, err := pretree.readSym(d.bb)
			if err != nil {
				return fmt.Errorf("reading same-run delta symbol: %w", err)
			}
			if c2 > 16 {
				return fmt.Errorf("lzx: same-run delta symbol %d out of range: %w", c2, ferr.ErrInvalidBlock)
			}
			l := mod17(lens[i] + 17 - uint8(c2))
			for j := 0; j < n; j++ {
				lens[i+j] = l
			}
			i += n

		default:
			return fmt.Errorf("lzx: invalid pretree symbol %d: %w", c, ferr.ErrInvalidBlock)
		}
	}
	return nil
}

// runBlock decodes exactly thisRun bytes of output from the current block
// (whose kind and tables are already loaded) into the window.
func (d *Decoder) runBlock(thisRun int) error {
	if d.blockKind == blockUncompressed {
		data, err := d.source.ReadExact(thisRun)
		if err != nil {
			return fmt.Errorf("lzx: reading uncompressed payload: %w", err)
		}
		return d.writeRaw(data)
	}

	remaining := thisRun
	for remaining > 0 {
		sym, err := d.mainTable.readSym(d.bb)
		if err != nil {
			return fmt.Errorf("lzx: reading main tree symbol: %w", err)
		}
		if sym < 256 {
			if err := d.writeLiteral(byte(sym)); err != nil {
				return err
			}
			remaining--
			continue
		}

		element := int(sym) - 256
		lengthHeader := element & 7
		slot := element >> 3

		length := lengthHeader
		if lengthHeader == 7 {
			lsym, err := d.lengthTable.readSym(d.bb)
			if err != nil {
				return fmt.Errorf("lzx: reading length tree symbol: %w", err)
			}
			length += int(lsym)
		}
		length += minMatch

		offset, err := d.decodeOffset(slot)
		if err != nil {
			return err
		}
		if err := d.copyMatch(int(offset), length); err != nil {
			return err
		}
		remaining -= length
	}
	return nil
}

// decodeOffset resolves a position slot into a match offset and applies the
// resulting repeated-offset cache update, per spec.md's LRU rule: slot 0
// repeats r0 unchanged; slots 1 and 2 swap r0 with r1 or r2 respectively;
// any other slot computes a fresh offset (verbatim bits, or verbatim bits
// plus an aligned-tree symbol once the block kind is aligned and the slot's
// extra-bit count allows it) and pushes it to the front of the cache.
func (d *Decoder) decodeOffset(slot int) (uint32, error) {
	switch slot {
	case 0:
		return d.r0, nil
	case 1:
		off := d.r1
		d.r1 = d.r0
		d.r0 = off
		return off, nil
	case 2:
		off := d.r2
		d.r2 = d.r0
		d.r0 = off
		return off, nil
	}

	extra := extraBits[slot]
	var offset uint32

	if d.blockKind == blockAligned {
		switch {
		case extra > 3:
			vbits, err := d.bb.Take(uint(extra - 3))
			if err != nil {
				return 0, fmt.Errorf("lzx: reading verbatim offset bits: %w", err)
			}
			asym, err := d.alignedTable.readSym(d.bb)
			if err != nil {
				return 0, fmt.Errorf("lzx: reading aligned offset symbol: %w", err)
			}
			offset = positionBase[slot] - 2 + (vbits << 3) + uint32(asym)
		case extra == 3:
			asym, err := d.alignedTable.readSym(d.bb)
			if err != nil {
				return 0, fmt.Errorf("lzx: reading aligned offset symbol: %w", err)
			}
			offset = positionBase[slot] - 2 + uint32(asym)
		case extra > 0:
			vbits, err := d.bb.Take(uint(extra))
			if err != nil {
				return 0, fmt.Errorf("lzx: reading verbatim offset bits: %w", err)
			}
			offset = positionBase[slot] - 2 + vbits
		default:
			offset = 1
		}
	} else {
		if extra > 0 {
			vbits, err := d.bb.Take(uint(extra))
			if err != nil {
				return 0, fmt.Errorf("lzx: reading verbatim offset bits: %w", err)
			}
			offset = positionBase[slot] - 2 + vbits
		} else {
			offset = positionBase[slot] - 2
		}
	}

	d.r2 = d.r1
	d.r1 = d.r0
	d.r0 = offset
	return offset, nil
}

func (d *Decoder) writeLiteral(b byte) error {
	pos := d.windowPosn
	if pos+1 > WindowSize {
		return fmt.Errorf("lzx: literal write past window end: %w", ferr.ErrSomethingBad)
	}
	d.window[pos] = b
	d.windowPosn = (pos + 1) % WindowSize
	return nil
}

func (d *Decoder) writeRaw(data []byte) error {
	pos := d.windowPosn
	if pos+len(data) > WindowSize {
		return fmt.Errorf("lzx: uncompressed run crosses window end: %w", ferr.ErrSomethingBad)
	}
	copy(d.window[pos:pos+len(data)], data)
	d.windowPosn = (pos + len(data)) % WindowSize
	return nil
}

// copyMatch appends a length-byte run copied from offset bytes behind the
// write cursor, wrapping the read side around the window when the match
// reaches back past its start. A run whose destination would itself cross
// the window end is rejected rather than wrapped: spec.md requires frame
// boundaries to keep window_posn's advance within a single pass over the
// buffer.
func (d *Decoder) copyMatch(offset, length int) error {
	pos := d.windowPosn
	if offset <= 0 || offset > WindowSize {
		return fmt.Errorf("lzx: match offset %d out of window range: %w", offset, ferr.ErrInvalidBlock)
	}
	if pos+length > WindowSize {
		return fmt.Errorf("lzx: match run crosses window end: %w", ferr.ErrSomethingBad)
	}

	src := pos - offset
	if src < 0 {
		src += WindowSize
	}
	for i := 0; i < length; i++ {
		d.window[pos+i] = d.window[src]
		src++
		if src == WindowSize {
			src = 0
		}
	}
	d.windowPosn = (pos + length) % WindowSize
	return nil
}

// emit slices the most recently produced frameSize bytes out of the
// window, wrapping the read if the window boundary falls inside the slice.
func (d *Decoder) emit(frameSize int) ([]byte, error) {
	if frameSize > WindowSize {
		return nil, fmt.Errorf("lzx: frame size %d exceeds window size: %w", frameSize, ferr.ErrOutputDataTooSmall)
	}
	end := d.windowPosn
	if end == 0 {
		end = WindowSize
	}
	start := end - frameSize
	out := make([]byte, frameSize)
	if start >= 0 {
		copy(out, d.window[start:end])
		return out, nil
	}
	start += WindowSize
	n1 := WindowSize - start
	copy(out[:n1], d.window[start:WindowSize])
	copy(out[n1:], d.window[0:end])
	return out, nil
}
