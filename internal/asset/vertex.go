package asset

import "github.com/deepteams/magicka/internal/pool"

// VertexElement describes one field of a vertex declaration's fixed-function
// layout, per spec.md §6's wire format.
type VertexElement struct {
	Stream     uint16
	Offset     uint16
	Format     uint8
	Method     uint8
	Usage      uint8
	UsageIndex uint8
}

// VertexDeclaration is an ordered list of VertexElement.
type VertexDeclaration struct {
	Elements []VertexElement
}

func (*VertexDeclaration) Kind() Kind { return KindVertexDeclaration }
func (*VertexDeclaration) Release()   {}

// VertexBuffer is a raw vertex byte payload, pool-backed.
type VertexBuffer struct {
	Bytes []byte
}

func (*VertexBuffer) Kind() Kind { return KindVertexBuffer }

func (v *VertexBuffer) Release() {
	if v == nil {
		return
	}
	pool.Put(v.Bytes)
	v.Bytes = nil
}

// IndexBuffer is a raw index byte payload; Is16Bit selects the element
// width consumers should interpret Bytes with.
type IndexBuffer struct {
	Is16Bit bool
	Bytes   []byte
}

func (*IndexBuffer) Kind() Kind { return KindIndexBuffer }

func (b *IndexBuffer) Release() {
	if b == nil {
		return
	}
	pool.Put(b.Bytes)
	b.Bytes = nil
}
