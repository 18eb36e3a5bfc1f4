// Package asset implements the tagged union of content-file asset kinds
// (spec.md §3's "Asset Variant") and the recursive reader that reconstructs
// a tree of them from a decompressed container payload, driven by the
// type-reader registry.
//
// Grounded on the teacher webp codec's chunk-parsing style (mux/demux.go:
// read a header, dispatch on a small tag set, build one Go value per
// chunk kind) generalized from a flat chunk list to a recursive graph, and
// on internal/lossless's tree-shaped Huffman-group reader for the
// recursion/ownership pattern BiTreeNode reuses.
package asset

import "fmt"

// Kind tags a Variant's concrete type. It mirrors typereader.Kind without
// KindList (which has no variant of its own), plus the None sentinel every
// asset slot may decode to.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindTexture2D
	KindTexture3D
	KindVertexDeclaration
	KindVertexBuffer
	KindIndexBuffer
	KindModel
	KindBiTreeModel
	KindRenderDeferredEffect
	KindLevelModel
)

func (k Kind) String() string {
	names := [...]string{
		"none", "string", "texture_2d", "texture_3d", "vertex_declaration",
		"vertex_buffer", "index_buffer", "model", "bi_tree_model",
		"render_deferred_effect", "level_model",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("asset.Kind(%d)", int(k))
}

// Variant is the common interface every concrete asset record implements.
// Release tears down the variant and every child it exclusively owns,
// returning pooled buffers (texture mips, vertex/index bytes) to the shared
// pool; it is safe to call on a partially constructed value, which is what
// lets the reader roll back cleanly on a mid-graph parse error.
type Variant interface {
	Kind() Kind
	Release()
}

// None is the sentinel empty variant: type-ID 0 on the wire.
type None struct{}

func (None) Kind() Kind { return KindNone }
func (None) Release()   {}

// String is a length-prefixed UTF-8 value.
type String struct {
	Value string
}

func (*String) Kind() Kind { return KindString }
func (*String) Release()   {}

// release is a small helper used throughout the package: it calls Release
// on v if v is non-nil, tolerating the nil-interface/nil-pointer cases that
// come up constantly while unwinding a partially built graph.
func release(v Variant) {
	if v == nil {
		return
	}
	v.Release()
}
