// Package ferr defines the error taxonomy shared by every subsystem of the
// Magicka container reader: format errors, codec errors, and the I/O
// failures surfaced by a byte source running out of data.
//
// Every subsystem wraps one of the sentinel errors below with context via
// fmt.Errorf's %w verb, so callers can test the kind with errors.Is while
// still getting a human-readable message.
package ferr

import "errors"

// Format errors: the container header or asset graph is structurally wrong.
var (
	ErrNotContainerFile  = errors.New("magicka: not a container file")
	ErrUnknownPlatform   = errors.New("magicka: unknown platform byte")
	ErrUnknownVersion    = errors.New("magicka: unknown version byte")
	ErrUnsupportedVer    = errors.New("magicka: unsupported container version")
	ErrUnexpectedAsset   = errors.New("magicka: unexpected asset type")
	ErrUnimplemented     = errors.New("magicka: unimplemented type-reader")
)

// Codec errors: the LZX bitstream or a block-compressed texture is corrupt.
var (
	ErrInvalidBlock        = errors.New("magicka: invalid lzx block")
	ErrBufferOverrun       = errors.New("magicka: buffer overrun")
	ErrReadHuffSymFailed   = errors.New("magicka: huffman symbol read failed")
	ErrTableOverrun        = errors.New("magicka: huffman table overrun")
	ErrErroneousTable      = errors.New("magicka: erroneous huffman table")
	ErrInvalidWindowSize   = errors.New("magicka: invalid lzx window size")
	ErrInputDataTooSmall   = errors.New("magicka: input data too small")
	ErrOutputDataTooSmall  = errors.New("magicka: output data too small")
	ErrUnsupportedTexture  = errors.New("magicka: unsupported texture pixel format")
)

// I/O errors.
var (
	ErrUnexpectedEOF = errors.New("magicka: unexpected end of stream")
)

// ErrSomethingBad is the internal-error kind spec.md reserves for invariant
// breaches that should be impossible for well-formed input (e.g. a window
// copy that would straddle the end of the sliding window).
var ErrSomethingBad = errors.New("magicka: internal decoder invariant violated")

