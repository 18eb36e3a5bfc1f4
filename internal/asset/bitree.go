package asset

import (
	"fmt"

	"github.com/deepteams/magicka/internal/ferr"
)

// maxBiTreeDepth bounds BiTreeNode recursion per spec.md §9's guidance to
// cap recursion depth defensively against a hostile or corrupt file rather
// than let it blow the Go stack.
const maxBiTreeDepth = 256

// BoundingBox is an axis-aligned min/max pair.
type BoundingBox struct {
	Min [3]float32
	Max [3]float32
}

// BiTreeNode is a binary spatial-partition node owning 0, 1, or 2 children.
type BiTreeNode struct {
	PrimitiveCount int32
	StartIndex     int32
	Bounds         BoundingBox
	ChildA         *BiTreeNode
	ChildB         *BiTreeNode
}

func (n *BiTreeNode) release() {
	if n == nil {
		return
	}
	n.ChildA.release()
	n.ChildB.release()
	n.ChildA = nil
	n.ChildB = nil
}

// BiTreeEntry is one tree within a BiTreeModel's Trees list.
type BiTreeEntry struct {
	Visibility      bool
	CastShadows     bool
	Sway            float32
	EntityInfluence float32
	GroundLevel     float32
	VertexCount     int32
	VertexStride    int32

	VertexDeclaration *VertexDeclaration
	VertexBuffer      *VertexBuffer
	IndexBuffer       *IndexBuffer
	Effect            Variant
	RootNode          *BiTreeNode
}

func (e *BiTreeEntry) release() {
	release(e.VertexDeclaration)
	release(e.VertexBuffer)
	release(e.IndexBuffer)
	release(e.Effect)
	e.RootNode.release()
	e.VertexDeclaration = nil
	e.VertexBuffer = nil
	e.IndexBuffer = nil
	e.Effect = nil
	e.RootNode = nil
}

// BiTreeModel is an ordered list of spatially-partitioned mesh trees.
type BiTreeModel struct {
	Trees []*BiTreeEntry
}

func (*BiTreeModel) Kind() Kind { return KindBiTreeModel }

func (m *BiTreeModel) Release() {
	if m == nil {
		return
	}
	for _, e := range m.Trees {
		e.release()
	}
	m.Trees = nil
}

// errTooDeep reports a BiTreeNode recursion that exceeded maxBiTreeDepth.
func errTooDeep() error {
	return fmt.Errorf("asset: bi-tree node nesting exceeds %d levels: %w", maxBiTreeDepth, ferr.ErrInvalidBlock)
}
