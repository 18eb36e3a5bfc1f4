// Package byteio implements the fixed- and variable-width primitive decoders
// that every higher-level reader in this module is built from: endian-aware
// integers and floats, booleans, 7-bit-encoded varints and strings, and the
// vector/matrix readers used by vertex and transform data.
//
// A Source yields exact byte slices or fails; running out of data is always
// a fatal error, never a short read, matching how the teacher's container
// parser treats truncated chunks.
package byteio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/deepteams/magicka/internal/ferr"
)

// Source is a cursor over an in-memory byte buffer.
type Source struct {
	buf []byte
	pos int
}

// NewSource wraps buf for sequential reading starting at offset 0.
func NewSource(buf []byte) *Source {
	return &Source{buf: buf}
}

// Pos returns the current read offset.
func (s *Source) Pos() int { return s.pos }

// Len returns the number of unread bytes remaining.
func (s *Source) Len() int { return len(s.buf) - s.pos }

// Seek repositions the cursor to an absolute offset.
func (s *Source) Seek(pos int) error {
	if pos < 0 || pos > len(s.buf) {
		return fmt.Errorf("byteio: seek %d out of range [0,%d]: %w", pos, len(s.buf), ferr.ErrBufferOverrun)
	}
	s.pos = pos
	return nil
}

// Rewind moves the cursor back n bytes, used by the LZX uncompressed-block
// realignment path to undo a bit-buffer refill.
func (s *Source) Rewind(n int) error {
	return s.Seek(s.pos - n)
}

// ReadExact returns the next n bytes, failing if fewer remain.
func (s *Source) ReadExact(n int) ([]byte, error) {
	if n < 0 || s.pos+n > len(s.buf) {
		return nil, fmt.Errorf("byteio: read %d bytes at %d: %w", n, s.pos, ferr.ErrUnexpectedEOF)
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// U8 reads a single byte.
func U8(s *Source) (uint8, error) {
	b, err := s.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool reads one byte, true if nonzero.
func Bool(s *Source) (bool, error) {
	v, err := U8(s)
	return v != 0, err
}

// U16LE reads a little-endian 16-bit unsigned integer.
func U16LE(s *Source) (uint16, error) {
	b, err := s.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U16BE reads a big-endian 16-bit unsigned integer.
func U16BE(s *Source) (uint16, error) {
	b, err := s.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U32LE reads a little-endian 32-bit unsigned integer.
func U32LE(s *Source) (uint32, error) {
	b, err := s.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// I32LE reads a little-endian 32-bit signed integer.
func I32LE(s *Source) (int32, error) {
	v, err := U32LE(s)
	return int32(v), err
}

// F32LE reads a little-endian IEEE-754 32-bit float.
func F32LE(s *Source) (float32, error) {
	v, err := U32LE(s)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Read7BitEncodedInt reads a little-endian base-128 varint: 7 low bits per
// byte, terminating on the first byte whose high bit is clear. Consuming
// more than 5 bytes without termination is a format error (the .NET
// BinaryReader convention this wire format follows caps at 5 bytes for a
// 32-bit value).
func Read7BitEncodedInt(s *Source) (int32, error) {
	var result int32
	var shift uint
	for i := 0; i < 5; i++ {
		b, err := U8(s)
		if err != nil {
			return 0, err
		}
		result |= int32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, fmt.Errorf("byteio: 7-bit varint exceeds 5 bytes: %w", ferr.ErrInvalidBlock)
}

// Read7BitLengthString reads a 7-bit-encoded length followed by exactly
// that many bytes of UTF-8 string payload.
func Read7BitLengthString(s *Source) (string, error) {
	n, err := Read7BitEncodedInt(s)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("byteio: negative string length %d: %w", n, ferr.ErrInvalidBlock)
	}
	b, err := s.ReadExact(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Vec3 reads three little-endian floats (x, y, z).
func Vec3(s *Source) ([3]float32, error) {
	var v [3]float32
	for i := range v {
		f, err := F32LE(s)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// Quat reads four little-endian floats (x, y, z, w).
func Quat(s *Source) ([4]float32, error) {
	var v [4]float32
	for i := range v {
		f, err := F32LE(s)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// Mat4x4 reads sixteen little-endian floats in row-major order.
func Mat4x4(s *Source) ([16]float32, error) {
	var m [16]float32
	for i := range m {
		f, err := F32LE(s)
		if err != nil {
			return m, err
		}
		m[i] = f
	}
	return m, nil
}

// BoneRef reads a bone reference: a u8 when numBones <= 255, else a u32LE,
// per spec.md's "Bone references" wire rule.
func BoneRef(s *Source, numBones int) (uint32, error) {
	if numBones <= 255 {
		v, err := U8(s)
		return uint32(v), err
	}
	return U32LE(s)
}
