package magicka

import (
	"testing"

	"github.com/deepteams/magicka/internal/asset"
	"github.com/stretchr/testify/require"
)

func sevenBit(v int) []byte {
	var out []byte
	u := uint32(v)
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

func sevenBitString(s string) []byte {
	out := sevenBit(len(s))
	return append(out, []byte(s)...)
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// buildUncompressedContainer assembles a minimal XNB-style container whose
// payload is a single Texture2DReader entry decoding a 4x4 BC1 texture with
// one mip, matching spec.md §8 scenario 7's shape.
func buildUncompressedContainer() []byte {
	var payload []byte
	payload = append(payload, sevenBit(1)...)
	payload = append(payload, sevenBitString("Microsoft.Xna.Framework.Content.Texture2DReader")...)
	payload = append(payload, le32(0)...) // version
	payload = append(payload, sevenBit(0)...) // shared asset count
	payload = append(payload, sevenBit(1)...) // type-id 1

	mip := []byte{
		0xFF, 0xFF, 0xFF, 0xFF, // c0, c1 = white
		0x00, 0x00, 0x00, 0x00, // indices: all 0
	}
	payload = append(payload, le32(28)...) // format: bc1
	payload = append(payload, le32(4)...)  // width
	payload = append(payload, le32(4)...)  // height
	payload = append(payload, le32(1)...)  // mip count
	payload = append(payload, le32(uint32(len(mip)))...)
	payload = append(payload, mip...)

	header := append([]byte("XNB"), 'w', 4, 0x00)
	header = append(header, le32(uint32(10+len(payload)))...)
	return append(header, payload...)
}

func TestOpenUncompressedTexture2D(t *testing.T) {
	data := buildUncompressedContainer()
	c, err := Open(data)
	require.NoError(t, err)
	defer c.Close()

	require.Equal(t, "windows", c.Platform)
	require.False(t, c.Compressed)

	tex, ok := c.Asset.(*asset.Texture2D)
	require.True(t, ok, "Asset is %T, want *asset.Texture2D", c.Asset)

	rgba, err := DecodeMip(c, tex, 0)
	require.NoError(t, err)
	require.Len(t, rgba, 4*4*4)
	for i := 0; i < len(rgba); i += 4 {
		require.Equal(t, []byte{255, 255, 255, 255}, rgba[i:i+4], "pixel %d", i/4)
	}
}
