// Package typereader maps the type-reader names recorded at the front of a
// decompressed container payload to the tagged asset kind the asset-graph
// reader should use to decode that slot.
//
// Grounded on the teacher webp demuxer's FourCC-keyed chunk dispatch
// (mux/chunk.go, mux/demux.go switch over ChunkID): that package re-exports
// a small fixed set of four-byte tags and switches on them to pick a parse
// path. Type-reader names serve the identical role here but are variable-
// length strings with an assembly-qualified suffix, so the registry is a
// map keyed by the matched prefix rather than a switch over a fixed-width
// constant.
package typereader

import (
	"fmt"
	"strings"
)

// Kind tags which concrete asset.Variant a type-reader name resolves to.
type Kind int

const (
	KindString Kind = iota
	KindTexture2D
	KindTexture3D
	KindModel
	KindVertexDeclaration
	KindVertexBuffer
	KindIndexBuffer
	KindList
	KindBiTreeModel
	KindRenderDeferredEffect
	KindLevelModel
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindTexture2D:
		return "texture_2d"
	case KindTexture3D:
		return "texture_3d"
	case KindModel:
		return "model"
	case KindVertexDeclaration:
		return "vertex_declaration"
	case KindVertexBuffer:
		return "vertex_buffer"
	case KindIndexBuffer:
		return "index_buffer"
	case KindList:
		return "list"
	case KindBiTreeModel:
		return "bi_tree_model"
	case KindRenderDeferredEffect:
		return "render_deferred_effect"
	case KindLevelModel:
		return "level_model"
	default:
		return fmt.Sprintf("typereader.Kind(%d)", int(k))
	}
}

// defaultNames is the built-in set of recognized type-reader name prefixes,
// per spec.md §4.6. Matching is exact-prefix: only the portion of a recorded
// name up to its first comma (the assembly-qualified suffix XNA content
// files append) is looked up here.
var defaultNames = map[string]Kind{
	"Microsoft.Xna.Framework.Content.StringReader":             KindString,
	"Microsoft.Xna.Framework.Content.Texture2DReader":           KindTexture2D,
	"Microsoft.Xna.Framework.Content.Texture3DReader":           KindTexture3D,
	"Microsoft.Xna.Framework.Content.ModelReader":               KindModel,
	"Microsoft.Xna.Framework.Content.VertexDeclarationReader":   KindVertexDeclaration,
	"Microsoft.Xna.Framework.Content.VertexBufferReader":        KindVertexBuffer,
	"Microsoft.Xna.Framework.Content.IndexBufferReader":         KindIndexBuffer,
	"Microsoft.Xna.Framework.Content.ListReader":                KindList,
	"PolygonHead.Pipeline.BiTreeModelReader":                    KindBiTreeModel,
	"PolygonHead.Pipeline.RenderDeferredEffectReader":           KindRenderDeferredEffect,
	"Magicka.ContentReaders.LevelModelReader":                   KindLevelModel,
}

// Registry resolves type-reader names to asset kinds. The zero value is not
// usable; construct with New.
type Registry struct {
	names map[string]Kind
}

// New returns a Registry seeded with the 11 built-in type-reader names.
func New() *Registry {
	names := make(map[string]Kind, len(defaultNames))
	for k, v := range defaultNames {
		names[k] = v
	}
	return &Registry{names: names}
}

// Resolve looks up prefix (the portion of a recorded type-reader name before
// its first comma) and reports whether it is recognized.
func (r *Registry) Resolve(prefix string) (Kind, bool) {
	k, ok := r.names[prefix]
	return k, ok
}

// Register adds or overrides a single name -> kind mapping.
func (r *Registry) Register(name string, kind Kind) {
	r.names[name] = kind
}

// TrimAssemblyQualifier returns the portion of a recorded type-reader name
// up to (but excluding) its first comma. XNA content files record fully
// assembly-qualified names (e.g. "...Texture2DReader, MyGame, Version=...");
// only the leading part identifies the reader.
func TrimAssemblyQualifier(name string) string {
	if i := strings.IndexByte(name, ','); i >= 0 {
		return name[:i]
	}
	return name
}
