package asset

// Bone is one node of a Model's bone hierarchy. ParentIndex is -1 for a
// root bone (the parent-ref sentinel this reader uses, rather than a
// separate presence flag); Children holds indices into the owning Model's
// Bones slice.
type Bone struct {
	Name        string
	Transform   [16]float32
	ParentIndex int32
	Children    []uint32
}

// Mesh is one drawable part of a Model: its own vertex declaration
// reference, shared vertex/index buffers, and an optional effect.
type Mesh struct {
	Name                 string
	ParentBoneIndex      uint32
	BoundingSphereCenter [3]float32
	BoundingSphereRadius float32
	VertexDeclIndex      uint32
	PrimitiveCount       int32
	StartIndex           int32
	NumVertices          int32

	VertexBuffer *VertexBuffer
	IndexBuffer  *IndexBuffer
	Effect       Variant // *RenderDeferredEffect or None
}

func (m *Mesh) release() {
	release(m.VertexBuffer)
	release(m.IndexBuffer)
	release(m.Effect)
	m.VertexBuffer = nil
	m.IndexBuffer = nil
	m.Effect = nil
}

// Model is a bone hierarchy plus the meshes skinned to it.
type Model struct {
	Bones              []Bone
	VertexDeclarations []*VertexDeclaration
	Meshes             []*Mesh
	RootBoneIndex      uint32
	Tag                string
}

func (*Model) Kind() Kind { return KindModel }

func (m *Model) Release() {
	if m == nil {
		return
	}
	for _, vd := range m.VertexDeclarations {
		release(vd)
	}
	for _, mesh := range m.Meshes {
		mesh.release()
	}
	m.VertexDeclarations = nil
	m.Meshes = nil
}
