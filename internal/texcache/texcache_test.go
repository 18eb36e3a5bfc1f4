package texcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeMipColorSwapsChannels(t *testing.T) {
	c := New()
	bgra := []byte{10, 20, 30, 255} // B,G,R,A for a single pixel
	out, err := c.DecodeMip(PixelFormatColor, 1, 1, bgra)
	require.NoError(t, err)
	require.Equal(t, []byte{30, 20, 10, 255}, out)
}

func TestDecodeMipCachesByContent(t *testing.T) {
	c := New()
	bgra := []byte{1, 2, 3, 4}
	a, err := c.DecodeMip(PixelFormatColor, 1, 1, bgra)
	require.NoError(t, err)
	b, err := c.DecodeMip(PixelFormatColor, 1, 1, bgra)
	require.NoError(t, err)
	require.Same(t, &a[0], &b[0], "expected second call to return the cached slice")
}

func TestDecodeMipUnsupportedFormat(t *testing.T) {
	c := New()
	_, err := c.DecodeMip(PixelFormat(999), 4, 4, make([]byte, 64))
	require.Error(t, err)
}
