// Package magicka opens Magicka's packaged content files: it parses the
// XNB-style container header, streams the optional LZX-compressed payload
// through to a flat byte buffer, and recursively reconstructs the typed
// asset graph the payload describes. Texture decoding to RGBA8 (BC1, BC3,
// uncompressed color) is exposed separately as an on-demand transform
// (DecodeMip) over a parsed Texture2D's stored mip payloads, since not
// every caller needs every mip decoded. Texture3D mips are parsed and kept
// as stored bytes; this package has no decode function for them.
//
// The reader is single-threaded and synchronous: Open performs one
// complete deserialization pass and returns an owning Container. Distinct
// Containers opened from distinct byte slices may be decoded concurrently
// from separate goroutines; nothing here holds process-wide state.
package magicka
