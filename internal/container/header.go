// Package container parses the fixed XNB-style header that opens every
// Magicka content file and streams its (optionally LZX-compressed)
// payload out as a flat byte slice for the asset-graph reader to consume.
//
// Grounded on the teacher webp codec's internal/container/parser.go for
// the overall shape (a Header value read up front, fixed-magic validation,
// chunk/frame dispatch that keeps going until a size-derived terminator),
// and internal/container/constants.go for the fixed-tag-byte validation
// style, adapted from RIFF's four-character codes to XNB's single-byte
// platform/version/flags fields.
package container

import (
	"fmt"

	"github.com/deepteams/magicka/internal/byteio"
	"github.com/deepteams/magicka/internal/ferr"
)

// Platform identifies the target runtime a container was built for.
type Platform byte

const (
	PlatformWindows      Platform = 'w'
	PlatformWindowsPhone Platform = 'm'
	PlatformXbox360      Platform = 'x'
)

const (
	versionV31 = 4 // XNA 3.1: the only version this reader supports.
	versionV40 = 5 // XNA 4.0: rejected outright, see spec.md's Non-goals.
)

// Header is the container's 10- or 14-byte preamble: a fixed magic tag,
// target platform, format version, compression/profile flags, and the
// on-disk (compressed) size plus, when compressed, the decompressed
// payload size.
type Header struct {
	Platform         Platform
	HiDef            bool
	Compressed       bool
	CompressedSize   uint32
	UncompressedSize uint32

	// HeaderSize is 14 when Compressed (the uncompressed-size field is
	// present) or 10 otherwise, matching spec.md's header_size rule.
	HeaderSize int
}

// ReadHeader parses a Header from the front of src.
func ReadHeader(src *byteio.Source) (*Header, error) {
	magic, err := src.ReadExact(3)
	if err != nil {
		return nil, fmt.Errorf("container: reading magic: %w", err)
	}
	if string(magic) != "XNB" {
		return nil, fmt.Errorf("container: magic %q is not XNB: %w", magic, ferr.ErrNotContainerFile)
	}

	platformByte, err := byteio.U8(src)
	if err != nil {
		return nil, fmt.Errorf("container: reading platform: %w", err)
	}
	platform := Platform(platformByte)
	switch platform {
	case PlatformWindows, PlatformWindowsPhone, PlatformXbox360:
	default:
		return nil, fmt.Errorf("container: platform byte %q: %w", platformByte, ferr.ErrUnknownPlatform)
	}

	version, err := byteio.U8(src)
	if err != nil {
		return nil, fmt.Errorf("container: reading version: %w", err)
	}
	switch version {
	case versionV31:
		// supported
	case versionV40:
		return nil, fmt.Errorf("container: version %d (XNA 4.0): %w", version, ferr.ErrUnsupportedVer)
	default:
		return nil, fmt.Errorf("container: version byte %d: %w", version, ferr.ErrUnknownVersion)
	}

	flags, err := byteio.U8(src)
	if err != nil {
		return nil, fmt.Errorf("container: reading flags: %w", err)
	}

	h := &Header{
		Platform:   platform,
		HiDef:      flags&0x01 != 0,
		Compressed: flags&0x80 != 0,
	}

	compSize, err := byteio.U32LE(src)
	if err != nil {
		return nil, fmt.Errorf("container: reading compressed size: %w", err)
	}
	h.CompressedSize = compSize

	if h.Compressed {
		uncompSize, err := byteio.U32LE(src)
		if err != nil {
			return nil, fmt.Errorf("container: reading uncompressed size: %w", err)
		}
		h.UncompressedSize = uncompSize
		h.HeaderSize = 14
	} else {
		h.HeaderSize = 10
	}

	return h, nil
}
