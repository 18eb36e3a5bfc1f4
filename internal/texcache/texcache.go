// Package texcache memoizes decode_mip results (spec.md §4.8): decoding a
// block-compressed mip to RGBA8 is pure given its format, dimensions, and
// stored bytes, so repeated requests for the same mip (a texture atlas
// shared across many meshes, a UI re-render) can skip the block-codec pass
// entirely.
//
// Entries are keyed on an xxhash content hash of the stored mip bytes, a
// cheap way to recognize identical inputs without an equality deep-walk.
package texcache

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/deepteams/magicka/internal/blockcodec"
	"github.com/deepteams/magicka/internal/ferr"
)

// PixelFormat mirrors asset.PixelFormat without importing it, keeping this
// package usable independently of the asset graph's ownership model.
type PixelFormat uint32

const (
	PixelFormatColor PixelFormat = 0
	PixelFormatBC1   PixelFormat = 28
	PixelFormatBC3   PixelFormat = 30
)

type key struct {
	hash          uint64
	format        PixelFormat
	width, height int
}

// Cache is a mutex-guarded decode_mip memoization table. The zero value is
// not usable; construct with New.
type Cache struct {
	mu      sync.Mutex
	entries map[key][]byte
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[key][]byte)}
}

// DecodeMip decodes mipData (format, width, height) to tightly packed
// RGBA8, returning a cached copy if this exact (format, width, height,
// content) combination was decoded before.
//
// The returned slice is owned by the cache; callers must not mutate it.
func (c *Cache) DecodeMip(format PixelFormat, width, height int, mipData []byte) ([]byte, error) {
	k := key{hash: xxhash.Sum64(mipData), format: format, width: width, height: height}

	c.mu.Lock()
	if cached, ok := c.entries[k]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	out, err := decode(format, width, height, mipData)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[k] = out
	c.mu.Unlock()
	return out, nil
}

// decodeColorFormat reorders stored BGRA8 pixels to RGBA8.
func decodeColorFormat(data []byte, width, height int) ([]byte, error) {
	n := width * height * 4
	if len(data) < n {
		return nil, ferr.ErrInputDataTooSmall
	}
	out := make([]byte, n)
	copy(out, data[:n])
	for i := 0; i < n; i += 4 {
		out[i], out[i+2] = out[i+2], out[i] // swap B and R
	}
	return out, nil
}

func decode(format PixelFormat, width, height int, data []byte) ([]byte, error) {
	switch format {
	case PixelFormatColor:
		return decodeColorFormat(data, width, height)
	case PixelFormatBC1:
		return blockcodec.DecodeBC1(data, width, height)
	case PixelFormatBC3:
		return blockcodec.DecodeBC3(data, width, height)
	default:
		return nil, ferr.ErrUnsupportedTexture
	}
}
