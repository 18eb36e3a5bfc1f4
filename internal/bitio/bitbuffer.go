// Package bitio implements the big-endian bit reservoir the LZX decoder
// reads its Huffman codes and block headers from.
//
// This is a sibling of, not a reuse of, the teacher webp codec's
// internal/bitio.BoolReader: that type implements VP8's arithmetic
// (range) coder, a different contract entirely. What carries over is the
// shape — cache look-ahead bits in a fixed-width register, track how many
// are valid, refill lazily — applied here to LZX's plain Huffman bit
// packing instead of VP8's probability-weighted interval coding.
package bitio

import (
	"fmt"

	"github.com/deepteams/magicka/internal/byteio"
)

// BitBuffer is a 32-bit reservoir over a byteio.Source. Bits are injected
// two bytes (one little-endian 16-bit group) at a time into the high side
// of the register, and peeked from the high side, matching the LZX
// bitstream convention of spec.md §4.2.
type BitBuffer struct {
	src      *byteio.Source
	buffer   uint32
	bitsLeft uint
}

// New creates a BitBuffer reading from src. The buffer starts empty; the
// first Ensure call performs the initial refill.
func New(src *byteio.Source) *BitBuffer {
	return &BitBuffer{src: src}
}

// Ensure refills the buffer until at least n bits are available. n must be
// <= 17: a refill only happens while at most 16 bits are cached, so the new
// 16-bit group always fits in the 32-bit register.
func (b *BitBuffer) Ensure(n uint) error {
	if n > 17 {
		panic("bitio: Ensure(n) with n > 17")
	}
	for b.bitsLeft < n {
		lo, err := byteio.U8(b.src)
		if err != nil {
			return fmt.Errorf("bitio: refill: %w", err)
		}
		hi, err := byteio.U8(b.src)
		if err != nil {
			return fmt.Errorf("bitio: refill: %w", err)
		}
		group := uint32(hi)<<8 | uint32(lo)
		shift := 32 - 16 - b.bitsLeft
		b.buffer |= group << shift
		b.bitsLeft += 16
	}
	return nil
}

// Peek returns the top n bits of the buffer without consuming them.
// Callers must Ensure(n) first.
func (b *BitBuffer) Peek(n uint) uint32 {
	if n == 0 {
		return 0
	}
	return b.buffer >> (32 - n)
}

// Consume shifts out the top n bits.
func (b *BitBuffer) Consume(n uint) {
	if n == 0 {
		return
	}
	b.buffer <<= n
	b.bitsLeft -= n
}

// Take is Ensure(n) followed by Peek(n) and Consume(n): the common case of
// reading n verbatim bits as a single value.
func (b *BitBuffer) Take(n uint) (uint32, error) {
	if err := b.Ensure(n); err != nil {
		return 0, err
	}
	v := b.Peek(n)
	b.Consume(n)
	return v, nil
}

// BitsLeft reports how many valid bits remain cached.
func (b *BitBuffer) BitsLeft() uint { return b.bitsLeft }

// Clear resets the buffer and bit count, used when realigning after an
// uncompressed LZX block of odd length.
func (b *BitBuffer) Clear() {
	b.buffer = 0
	b.bitsLeft = 0
}

// RealignUncompressed implements the uncompressed-block entry sequence from
// spec.md §4.3: ensure 16 bits are cached, then if more than 16 are cached
// (i.e. a refill happened that over-shot into the next aligned word),
// rewind the underlying byte source by two bytes so the uncompressed
// block's raw words start on a clean boundary.
func (b *BitBuffer) RealignUncompressed() error {
	if err := b.Ensure(16); err != nil {
		return err
	}
	if b.bitsLeft > 16 {
		if err := b.src.Rewind(2); err != nil {
			return fmt.Errorf("bitio: realign rewind: %w", err)
		}
	}
	b.Clear()
	return nil
}

// Source exposes the underlying byte source for readers (such as the LZX
// uncompressed-block path) that need to fall through to raw byte reads.
func (b *BitBuffer) Source() *byteio.Source { return b.src }
