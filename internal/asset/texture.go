package asset

import "github.com/deepteams/magicka/internal/pool"

// PixelFormat is the on-disk texture pixel format tag. Only color, bc1, and
// bc3 decode; any other recorded value parses fine but fails with
// UnsupportedTextureFormat on decode, per spec.md §3/§4.8.
type PixelFormat uint32

const (
	PixelFormatColor PixelFormat = 0
	PixelFormatBC1   PixelFormat = 28
	PixelFormatBC3   PixelFormat = 30
)

// Texture2D is a 2D mip chain of stored (possibly block-compressed) pixel
// payloads.
type Texture2D struct {
	Format PixelFormat
	Width  uint32
	Height uint32
	Mips   [][]byte
}

func (*Texture2D) Kind() Kind { return KindTexture2D }

func (t *Texture2D) Release() {
	if t == nil {
		return
	}
	for _, m := range t.Mips {
		pool.Put(m)
	}
	t.Mips = nil
}

// Texture3D is a volume texture's mip chain.
type Texture3D struct {
	Format PixelFormat
	Width  uint32
	Height uint32
	Depth  uint32
	Mips   [][]byte
}

func (*Texture3D) Kind() Kind { return KindTexture3D }

func (t *Texture3D) Release() {
	if t == nil {
		return
	}
	for _, m := range t.Mips {
		pool.Put(m)
	}
	t.Mips = nil
}
