package container

import (
	"fmt"

	"github.com/deepteams/magicka/internal/byteio"
	"github.com/deepteams/magicka/internal/ferr"
	"github.com/deepteams/magicka/internal/lzx"
)

// DecodeInfo reports diagnostics surfaced by the LZX decoder that outlive
// the decoder itself, since ReadPayload closes it before returning.
type DecodeInfo struct {
	IntelE8Detected bool
	IntelFilesize   uint32
}

// ReadPayload returns the fully decompressed asset-graph payload for a
// container whose Header has already been parsed from src (src's cursor
// must already sit at the first payload byte).
//
// Uncompressed containers are passed through verbatim. Compressed
// containers are unpacked frame by frame through a persistent LZX
// decoder, per spec.md's frame-prefix convention: a 0xFF lead byte
// introduces an explicit pair of big-endian 16-bit fields (frame_size,
// then block_size); any other lead byte combines with the following byte
// as a big-endian block_size and implies the format's default 0x8000-byte
// frame_size. A zero block_size or frame_size ends the stream before the
// declared uncompressed size is reached, which is valid and simply means
// there was nothing left to decompress.
func ReadPayload(src *byteio.Source, h *Header) ([]byte, DecodeInfo, error) {
	if !h.Compressed {
		n := int(h.CompressedSize) - h.HeaderSize
		if n < 0 {
			return nil, DecodeInfo{}, fmt.Errorf("container: compressed size %d smaller than header: %w", h.CompressedSize, ferr.ErrInputDataTooSmall)
		}
		data, err := src.ReadExact(n)
		return data, DecodeInfo{}, err
	}

	dec := lzx.NewDecoder(src)
	defer dec.Close()
	out := make([]byte, 0, h.UncompressedSize)

	for len(out) < int(h.UncompressedSize) {
		hiByte, err := byteio.U8(src)
		if err != nil {
			return nil, DecodeInfo{}, fmt.Errorf("container: reading frame prefix: %w", err)
		}

		var frameSize, blockSize int
		if hiByte == 0xFF {
			fs, err := byteio.U16BE(src)
			if err != nil {
				return nil, DecodeInfo{}, fmt.Errorf("container: reading explicit frame size: %w", err)
			}
			bs, err := byteio.U16BE(src)
			if err != nil {
				return nil, DecodeInfo{}, fmt.Errorf("container: reading explicit block size: %w", err)
			}
			frameSize, blockSize = int(fs), int(bs)
		} else {
			lo, err := byteio.U8(src)
			if err != nil {
				return nil, DecodeInfo{}, fmt.Errorf("container: reading default block size: %w", err)
			}
			blockSize = int(hiByte)<<8 | int(lo)
			frameSize = 0x8000
		}

		if blockSize == 0 || frameSize == 0 {
			break
		}

		frame, err := dec.DecodeFrame(blockSize, frameSize)
		if err != nil {
			return nil, DecodeInfo{}, fmt.Errorf("container: decoding frame: %w", err)
		}
		out = append(out, frame...)
	}

	return out, DecodeInfo{IntelE8Detected: dec.IntelE8Detected(), IntelFilesize: dec.IntelFilesize()}, nil
}
