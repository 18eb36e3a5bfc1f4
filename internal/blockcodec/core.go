// Package blockcodec decodes BC1 and BC3 block-compressed texture data
// into tightly packed 32-bit RGBA, per spec.md's texture pixel-format
// requirements.
//
// Grounded on the block-count/linear-size conventions documented in
// other_examples/.../evrFileTools/pkg/texture/texture.go (its
// calculateLinearSize helper establishes the "ceil(dimension/4) blocks,
// each a fixed byte size" precondition this package validates against),
// and on the teacher webp codec's lossy macroblock decoder
// (internal/lossy/decode_mb.go) for the general shape of "iterate a block
// grid, clip the trailing row/column against the true image size."
package blockcodec

import (
	"fmt"

	"github.com/deepteams/magicka/internal/ferr"
)

// RGBA is one decoded, straight-alpha pixel.
type RGBA struct {
	R, G, B, A byte
}

const blockDim = 4

// blocksAcross rounds n up to a whole number of 4-pixel blocks; the last
// block in each dimension may extend past the true image edge and gets
// clipped when its pixels are written out.
func blocksAcross(n int) int {
	return (n + blockDim - 1) / blockDim
}

// decodeBlocks drives the shared block-grid walk: it validates that data
// holds at least as many fixed-size blocks as the image's block grid
// requires (trailing bytes are ignored), then calls decode once per block and scatters its 16 pixels
// into a tightly packed width*height*4 RGBA8 buffer, clipping any block
// that overhangs the right or bottom edge.
func decodeBlocks(data []byte, width, height, blockSize int, decode func(block []byte) [16]RGBA) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("blockcodec: invalid dimensions %dx%d: %w", width, height, ferr.ErrUnsupportedTexture)
	}
	bw := blocksAcross(width)
	bh := blocksAcross(height)
	want := bw * bh * blockSize
	if len(data) < want {
		return nil, fmt.Errorf("blockcodec: need %d bytes for a %dx%d image, have %d: %w", want, width, height, len(data), ferr.ErrInputDataTooSmall)
	}

	out := make([]byte, width*height*4)
	for byi := 0; byi < bh; byi++ {
		baseY := byi * blockDim
		maxY := blockDim
		if baseY+maxY > height {
			maxY = height - baseY
		}
		for bxi := 0; bxi < bw; bxi++ {
			off := (byi*bw + bxi) * blockSize
			pixels := decode(data[off : off+blockSize])

			baseX := bxi * blockDim
			maxX := blockDim
			if baseX+maxX > width {
				maxX = width - baseX
			}
			for y := 0; y < maxY; y++ {
				for x := 0; x < maxX; x++ {
					p := pixels[y*blockDim+x]
					o := ((baseY+y)*width + (baseX + x)) * 4
					out[o+0] = p.R
					out[o+1] = p.G
					out[o+2] = p.B
					out[o+3] = p.A
				}
			}
		}
	}
	return out, nil
}
