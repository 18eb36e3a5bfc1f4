package container

import (
	"testing"

	"github.com/deepteams/magicka/internal/byteio"
)

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// TestReadHeaderUncompressed covers spec.md §8 scenario 1: an uncompressed
// header's happy path.
func TestReadHeaderUncompressed(t *testing.T) {
	buf := append([]byte("XNB"), 'w', versionV31, 0x00)
	buf = append(buf, le32(123)...)
	src := byteio.NewSource(buf)

	h, err := ReadHeader(src)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Platform != PlatformWindows || h.Compressed || h.HeaderSize != 10 || h.CompressedSize != 123 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

// TestReadHeaderCompressed covers spec.md §8 scenario 2: a compressed
// header's happy path, including the extra uncompressed-size field.
func TestReadHeaderCompressed(t *testing.T) {
	buf := append([]byte("XNB"), 'x', versionV31, 0x80)
	buf = append(buf, le32(200)...)
	buf = append(buf, le32(4096)...)
	src := byteio.NewSource(buf)

	h, err := ReadHeader(src)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if !h.Compressed || h.HeaderSize != 14 || h.CompressedSize != 200 || h.UncompressedSize != 4096 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

// TestReadHeaderWrongMagic covers spec.md §8 scenario 3: wrong-magic
// rejection.
func TestReadHeaderWrongMagic(t *testing.T) {
	src := byteio.NewSource([]byte("BAD!wv\x00\x00\x00\x00\x00"))
	if _, err := ReadHeader(src); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestReadHeaderWindowsPhone(t *testing.T) {
	buf := append([]byte("XNB"), 'm', versionV31, 0x00)
	buf = append(buf, le32(10)...)
	src := byteio.NewSource(buf)

	h, err := ReadHeader(src)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Platform != PlatformWindowsPhone {
		t.Fatalf("Platform = %q, want %q", h.Platform, PlatformWindowsPhone)
	}
}

func TestReadHeaderRejectsV40(t *testing.T) {
	buf := append([]byte("XNB"), 'w', versionV40, 0x00)
	buf = append(buf, le32(10)...)
	src := byteio.NewSource(buf)
	if _, err := ReadHeader(src); err == nil {
		t.Fatal("expected error rejecting XNA 4.0 version byte")
	}
}

func TestReadHeaderUnknownPlatform(t *testing.T) {
	buf := append([]byte("XNB"), 'z', versionV31, 0x00)
	buf = append(buf, le32(10)...)
	src := byteio.NewSource(buf)
	if _, err := ReadHeader(src); err == nil {
		t.Fatal("expected error for unknown platform byte")
	}
}

func TestReadPayloadUncompressedPassthrough(t *testing.T) {
	h := &Header{HeaderSize: 10, CompressedSize: 21}
	src := byteio.NewSource([]byte("hello world"))
	out, _, err := ReadPayload(src, h)
	if err != nil {
		t.Fatalf("ReadPayload: %v", err)
	}
	if string(out) != "hello world" {
		t.Errorf("out = %q", out)
	}
}

func TestReadPayloadTerminatesOnZeroBlockSize(t *testing.T) {
	h := &Header{Compressed: true, HeaderSize: 14, UncompressedSize: 1000}
	src := byteio.NewSource([]byte{0x00, 0x00}) // hi=0, lo=0 -> block_size 0
	out, _, err := ReadPayload(src, h)
	if err != nil {
		t.Fatalf("ReadPayload: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("out = %v, want empty", out)
	}
}
