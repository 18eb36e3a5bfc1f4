package asset

import (
	"fmt"

	"github.com/deepteams/magicka/internal/byteio"
	"github.com/deepteams/magicka/internal/ferr"
	"github.com/deepteams/magicka/internal/pool"
	"github.com/deepteams/magicka/internal/typereader"
)

// Reader drives the recursive asset-graph decode described in spec.md §4.6:
// a flat list of type-reader names is read once up front, then every asset
// slot in the graph is a 7-bit type-ID into that list (0 meaning None).
type Reader struct {
	src      *byteio.Source
	registry *typereader.Registry

	typeReaderKinds []Kind
	typeReaderNames []string
}

// NewReader wraps src (positioned at the start of a decompressed container
// payload) for a single graph-reading pass against registry.
func NewReader(src *byteio.Source, registry *typereader.Registry) *Reader {
	return &Reader{src: src, registry: registry}
}

func kindFromTypeReader(k typereader.Kind) Kind {
	switch k {
	case typereader.KindString:
		return KindString
	case typereader.KindTexture2D:
		return KindTexture2D
	case typereader.KindTexture3D:
		return KindTexture3D
	case typereader.KindModel:
		return KindModel
	case typereader.KindVertexDeclaration:
		return KindVertexDeclaration
	case typereader.KindVertexBuffer:
		return KindVertexBuffer
	case typereader.KindIndexBuffer:
		return KindIndexBuffer
	case typereader.KindBiTreeModel:
		return KindBiTreeModel
	case typereader.KindRenderDeferredEffect:
		return KindRenderDeferredEffect
	case typereader.KindLevelModel:
		return KindLevelModel
	default:
		// typereader.KindList has no direct asset.Kind: list element type is
		// implicit at the call site, per spec.md §4.6. A ListReader slot
		// therefore maps to KindNone here and fails with ErrUnimplemented
		// if the graph visits it.
		return KindNone
	}
}

// ReadTypeReaders parses the fixed-length type-reader name table at the
// front of the payload and resolves each name against the registry.
// Unresolved names are kept (as KindNone) so that an asset slot referencing
// them fails with ErrUnimplemented only if the graph actually visits it.
func (r *Reader) ReadTypeReaders() error {
	count, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		return fmt.Errorf("asset: reading type-reader count: %w", err)
	}
	if count < 0 {
		return fmt.Errorf("asset: negative type-reader count %d: %w", count, ferr.ErrInvalidBlock)
	}

	r.typeReaderKinds = make([]Kind, count)
	r.typeReaderNames = make([]string, count)
	for i := 0; i < int(count); i++ {
		name, err := byteio.Read7BitLengthString(r.src)
		if err != nil {
			return fmt.Errorf("asset: reading type-reader name %d: %w", i, err)
		}
		if _, err := byteio.I32LE(r.src); err != nil { // version, unused
			return fmt.Errorf("asset: reading type-reader version %d: %w", i, err)
		}
		r.typeReaderNames[i] = name
		prefix := typereader.TrimAssemblyQualifier(name)
		if k, ok := r.registry.Resolve(prefix); ok {
			r.typeReaderKinds[i] = kindFromTypeReader(k)
		} else {
			r.typeReaderKinds[i] = KindNone
		}
	}
	return nil
}

// TypeReaderNames returns the recorded type-reader names in on-wire order,
// valid after ReadTypeReaders.
func (r *Reader) TypeReaderNames() []string {
	return r.typeReaderNames
}

// ReadGraph reads the shared-asset list (parsed but, per spec.md §9,
// discarded once read) and then the primary asset, returning it.
func (r *Reader) ReadGraph() (Variant, error) {
	sharedCount, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading shared asset count: %w", err)
	}
	if sharedCount < 0 {
		return nil, fmt.Errorf("asset: negative shared asset count %d: %w", sharedCount, ferr.ErrInvalidBlock)
	}
	for i := 0; i < int(sharedCount); i++ {
		shared, err := r.readAny()
		if err != nil {
			return nil, fmt.Errorf("asset: reading shared asset %d: %w", i, err)
		}
		release(shared)
	}

	primary, err := r.readAny()
	if err != nil {
		return nil, fmt.Errorf("asset: reading primary asset: %w", err)
	}
	return primary, nil
}

// readAny reads one asset slot with no kind constraint.
func (r *Reader) readAny() (Variant, error) {
	id, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading type-id: %w", err)
	}
	if id == 0 {
		return None{}, nil
	}
	idx := int(id) - 1
	if idx < 0 || idx >= len(r.typeReaderKinds) {
		return nil, fmt.Errorf("asset: type-id %d out of range [0,%d]: %w", id, len(r.typeReaderKinds), ferr.ErrUnimplemented)
	}
	kind := r.typeReaderKinds[idx]
	if kind == KindNone {
		return nil, fmt.Errorf("asset: type-reader %q: %w", r.typeReaderNames[idx], ferr.ErrUnimplemented)
	}
	return r.decode(kind)
}

// readExpect reads one asset slot and requires it to be either None or the
// given kind, per spec.md §4.6's "a mismatch yields UnexpectedAssetType".
func (r *Reader) readExpect(want Kind) (Variant, error) {
	v, err := r.readAny()
	if err != nil {
		return nil, err
	}
	if v.Kind() != KindNone && v.Kind() != want {
		release(v)
		return nil, fmt.Errorf("asset: expected %v, got %v: %w", want, v.Kind(), ferr.ErrUnexpectedAsset)
	}
	return v, nil
}

func (r *Reader) decode(kind Kind) (Variant, error) {
	switch kind {
	case KindString:
		return r.decodeString()
	case KindTexture2D:
		return r.decodeTexture2D()
	case KindTexture3D:
		return r.decodeTexture3D()
	case KindVertexDeclaration:
		return r.decodeVertexDeclaration()
	case KindVertexBuffer:
		return r.decodeVertexBuffer()
	case KindIndexBuffer:
		return r.decodeIndexBuffer()
	case KindModel:
		return r.decodeModel()
	case KindBiTreeModel:
		return r.decodeBiTreeModel()
	case KindRenderDeferredEffect:
		return r.decodeRenderDeferredEffect()
	case KindLevelModel:
		return r.decodeLevelModel()
	default:
		return nil, fmt.Errorf("asset: kind %v: %w", kind, ferr.ErrUnimplemented)
	}
}

func (r *Reader) decodeString() (Variant, error) {
	s, err := byteio.Read7BitLengthString(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading string payload: %w", err)
	}
	return &String{Value: s}, nil
}

func readMip(src *byteio.Source) ([]byte, error) {
	size, err := byteio.U32LE(src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading mip size: %w", err)
	}
	data, err := src.ReadExact(int(size))
	if err != nil {
		return nil, fmt.Errorf("asset: reading mip payload: %w", err)
	}
	buf := pool.Get(len(data))
	copy(buf, data)
	return buf, nil
}

func (r *Reader) decodeTexture2D() (Variant, error) {
	format, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading texture2d format: %w", err)
	}
	width, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading texture2d width: %w", err)
	}
	height, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading texture2d height: %w", err)
	}
	mipCount, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading texture2d mip count: %w", err)
	}

	t := &Texture2D{Format: PixelFormat(format), Width: width, Height: height}
	for i := uint32(0); i < mipCount; i++ {
		mip, err := readMip(r.src)
		if err != nil {
			t.Release()
			return nil, err
		}
		t.Mips = append(t.Mips, mip)
	}
	return t, nil
}

func (r *Reader) decodeTexture3D() (Variant, error) {
	format, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading texture3d format: %w", err)
	}
	width, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading texture3d width: %w", err)
	}
	height, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading texture3d height: %w", err)
	}
	depth, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading texture3d depth: %w", err)
	}
	mipCount, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading texture3d mip count: %w", err)
	}

	t := &Texture3D{Format: PixelFormat(format), Width: width, Height: height, Depth: depth}
	for i := uint32(0); i < mipCount; i++ {
		mip, err := readMip(r.src)
		if err != nil {
			t.Release()
			return nil, err
		}
		t.Mips = append(t.Mips, mip)
	}
	return t, nil
}

func (r *Reader) decodeVertexDeclaration() (Variant, error) {
	count, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading vertex declaration element count: %w", err)
	}
	vd := &VertexDeclaration{Elements: make([]VertexElement, count)}
	for i := range vd.Elements {
		stream, err := byteio.U16LE(r.src)
		if err != nil {
			return nil, fmt.Errorf("asset: reading vertex element stream: %w", err)
		}
		offset, err := byteio.U16LE(r.src)
		if err != nil {
			return nil, fmt.Errorf("asset: reading vertex element offset: %w", err)
		}
		format, err := byteio.U8(r.src)
		if err != nil {
			return nil, fmt.Errorf("asset: reading vertex element format: %w", err)
		}
		method, err := byteio.U8(r.src)
		if err != nil {
			return nil, fmt.Errorf("asset: reading vertex element method: %w", err)
		}
		usage, err := byteio.U8(r.src)
		if err != nil {
			return nil, fmt.Errorf("asset: reading vertex element usage: %w", err)
		}
		usageIndex, err := byteio.U8(r.src)
		if err != nil {
			return nil, fmt.Errorf("asset: reading vertex element usage index: %w", err)
		}
		vd.Elements[i] = VertexElement{stream, offset, format, method, usage, usageIndex}
	}
	return vd, nil
}

func readSizedBytes(src *byteio.Source) ([]byte, error) {
	size, err := byteio.U32LE(src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading byte payload size: %w", err)
	}
	data, err := src.ReadExact(int(size))
	if err != nil {
		return nil, fmt.Errorf("asset: reading byte payload: %w", err)
	}
	buf := pool.Get(len(data))
	copy(buf, data)
	return buf, nil
}

func (r *Reader) decodeVertexBuffer() (Variant, error) {
	data, err := readSizedBytes(r.src)
	if err != nil {
		return nil, err
	}
	return &VertexBuffer{Bytes: data}, nil
}

func (r *Reader) decodeIndexBuffer() (Variant, error) {
	is16, err := byteio.Bool(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading index buffer width flag: %w", err)
	}
	data, err := readSizedBytes(r.src)
	if err != nil {
		return nil, err
	}
	return &IndexBuffer{Is16Bit: is16, Bytes: data}, nil
}

func (r *Reader) decodeModel() (Variant, error) {
	boneCount, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading bone count: %w", err)
	}
	m := &Model{Bones: make([]Bone, boneCount)}

	for i := range m.Bones {
		name, err := byteio.Read7BitLengthString(r.src)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("asset: reading bone name: %w", err)
		}
		transform, err := byteio.Mat4x4(r.src)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("asset: reading bone transform: %w", err)
		}
		m.Bones[i] = Bone{Name: name, Transform: transform, ParentIndex: -1}
	}

	for i := range m.Bones {
		hasParent, err := byteio.Bool(r.src)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("asset: reading bone parent flag: %w", err)
		}
		if hasParent {
			ref, err := byteio.BoneRef(r.src, len(m.Bones))
			if err != nil {
				m.Release()
				return nil, fmt.Errorf("asset: reading bone parent ref: %w", err)
			}
			if int(ref) >= len(m.Bones) {
				m.Release()
				return nil, fmt.Errorf("asset: bone parent ref %d out of range [0,%d): %w", ref, len(m.Bones), ferr.ErrInvalidBlock)
			}
			m.Bones[i].ParentIndex = int32(ref)
		}

		childCount, err := byteio.Read7BitEncodedInt(r.src)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("asset: reading bone child count: %w", err)
		}
		children := make([]uint32, childCount)
		for j := range children {
			ref, err := byteio.BoneRef(r.src, len(m.Bones))
			if err != nil {
				m.Release()
				return nil, fmt.Errorf("asset: reading bone child ref: %w", err)
			}
			if int(ref) >= len(m.Bones) {
				m.Release()
				return nil, fmt.Errorf("asset: bone child ref %d out of range [0,%d): %w", ref, len(m.Bones), ferr.ErrInvalidBlock)
			}
			children[j] = ref
		}
		m.Bones[i].Children = children
	}

	vdCount, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("asset: reading model vertex declaration count: %w", err)
	}
	for i := 0; i < int(vdCount); i++ {
		v, err := r.readExpect(KindVertexDeclaration)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("asset: reading model vertex declaration %d: %w", i, err)
		}
		vd, _ := v.(*VertexDeclaration)
		m.VertexDeclarations = append(m.VertexDeclarations, vd)
	}

	meshCount, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("asset: reading mesh count: %w", err)
	}
	for i := 0; i < int(meshCount); i++ {
		mesh, err := r.decodeMesh(len(m.Bones))
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("asset: reading mesh %d: %w", i, err)
		}
		m.Meshes = append(m.Meshes, mesh)
	}

	rootRef, err := byteio.BoneRef(r.src, len(m.Bones))
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("asset: reading root bone ref: %w", err)
	}
	m.RootBoneIndex = rootRef

	hasTag, err := byteio.Bool(r.src)
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("asset: reading model tag flag: %w", err)
	}
	if hasTag {
		tag, err := byteio.Read7BitLengthString(r.src)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("asset: reading model tag: %w", err)
		}
		m.Tag = tag
	}

	return m, nil
}

func (r *Reader) decodeMesh(numBones int) (*Mesh, error) {
	name, err := byteio.Read7BitLengthString(r.src)
	if err != nil {
		return nil, fmt.Errorf("reading mesh name: %w", err)
	}
	parentRef, err := byteio.BoneRef(r.src, numBones)
	if err != nil {
		return nil, fmt.Errorf("reading mesh parent bone ref: %w", err)
	}
	center, err := byteio.Vec3(r.src)
	if err != nil {
		return nil, fmt.Errorf("reading mesh bounding sphere center: %w", err)
	}
	radius, err := byteio.F32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("reading mesh bounding sphere radius: %w", err)
	}

	mesh := &Mesh{Name: name, ParentBoneIndex: parentRef, BoundingSphereCenter: center, BoundingSphereRadius: radius}

	vbAsset, err := r.readExpect(KindVertexBuffer)
	if err != nil {
		return nil, err
	}
	mesh.VertexBuffer, _ = vbAsset.(*VertexBuffer)

	ibAsset, err := r.readExpect(KindIndexBuffer)
	if err != nil {
		mesh.release()
		return nil, err
	}
	mesh.IndexBuffer, _ = ibAsset.(*IndexBuffer)

	vdRef, err := byteio.U32LE(r.src)
	if err != nil {
		mesh.release()
		return nil, fmt.Errorf("reading mesh vertex declaration ref: %w", err)
	}
	mesh.VertexDeclIndex = vdRef

	primCount, err := byteio.I32LE(r.src)
	if err != nil {
		mesh.release()
		return nil, fmt.Errorf("reading mesh primitive count: %w", err)
	}
	mesh.PrimitiveCount = primCount

	startIndex, err := byteio.I32LE(r.src)
	if err != nil {
		mesh.release()
		return nil, fmt.Errorf("reading mesh start index: %w", err)
	}
	mesh.StartIndex = startIndex

	numVertices, err := byteio.I32LE(r.src)
	if err != nil {
		mesh.release()
		return nil, fmt.Errorf("reading mesh vertex count: %w", err)
	}
	mesh.NumVertices = numVertices

	effect, err := r.readAny()
	if err != nil {
		mesh.release()
		return nil, fmt.Errorf("reading mesh effect: %w", err)
	}
	mesh.Effect = effect

	return mesh, nil
}

func (r *Reader) decodeBiTreeModel() (Variant, error) {
	count, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading bi-tree entry count: %w", err)
	}
	bm := &BiTreeModel{}
	for i := 0; i < int(count); i++ {
		entry, err := r.decodeBiTreeEntry()
		if err != nil {
			bm.Release()
			return nil, fmt.Errorf("asset: reading bi-tree entry %d: %w", i, err)
		}
		bm.Trees = append(bm.Trees, entry)
	}
	return bm, nil
}

func (r *Reader) decodeBiTreeEntry() (*BiTreeEntry, error) {
	e := &BiTreeEntry{}
	var err error
	if e.Visibility, err = byteio.Bool(r.src); err != nil {
		return nil, fmt.Errorf("reading visibility: %w", err)
	}
	if e.CastShadows, err = byteio.Bool(r.src); err != nil {
		return nil, fmt.Errorf("reading cast shadows: %w", err)
	}
	if e.Sway, err = byteio.F32LE(r.src); err != nil {
		return nil, fmt.Errorf("reading sway: %w", err)
	}
	if e.EntityInfluence, err = byteio.F32LE(r.src); err != nil {
		return nil, fmt.Errorf("reading entity influence: %w", err)
	}
	if e.GroundLevel, err = byteio.F32LE(r.src); err != nil {
		return nil, fmt.Errorf("reading ground level: %w", err)
	}
	if e.VertexCount, err = byteio.I32LE(r.src); err != nil {
		return nil, fmt.Errorf("reading vertex count: %w", err)
	}
	if e.VertexStride, err = byteio.I32LE(r.src); err != nil {
		return nil, fmt.Errorf("reading vertex stride: %w", err)
	}

	vd, err := r.readExpect(KindVertexDeclaration)
	if err != nil {
		return nil, err
	}
	e.VertexDeclaration, _ = vd.(*VertexDeclaration)

	vb, err := r.readExpect(KindVertexBuffer)
	if err != nil {
		e.release()
		return nil, err
	}
	e.VertexBuffer, _ = vb.(*VertexBuffer)

	ib, err := r.readExpect(KindIndexBuffer)
	if err != nil {
		e.release()
		return nil, err
	}
	e.IndexBuffer, _ = ib.(*IndexBuffer)

	effect, err := r.readAny()
	if err != nil {
		e.release()
		return nil, fmt.Errorf("reading bi-tree entry effect: %w", err)
	}
	e.Effect = effect

	node, err := r.decodeBiTreeNode(0)
	if err != nil {
		e.release()
		return nil, err
	}
	e.RootNode = node

	return e, nil
}

func (r *Reader) decodeBiTreeNode(depth int) (*BiTreeNode, error) {
	if depth > maxBiTreeDepth {
		return nil, errTooDeep()
	}

	n := &BiTreeNode{}
	var err error
	if n.PrimitiveCount, err = byteio.I32LE(r.src); err != nil {
		return nil, fmt.Errorf("reading node primitive count: %w", err)
	}
	if n.StartIndex, err = byteio.I32LE(r.src); err != nil {
		return nil, fmt.Errorf("reading node start index: %w", err)
	}
	if n.Bounds.Min, err = byteio.Vec3(r.src); err != nil {
		return nil, fmt.Errorf("reading node bounds min: %w", err)
	}
	if n.Bounds.Max, err = byteio.Vec3(r.src); err != nil {
		return nil, fmt.Errorf("reading node bounds max: %w", err)
	}

	hasA, err := byteio.Bool(r.src)
	if err != nil {
		return nil, fmt.Errorf("reading has-child-a flag: %w", err)
	}
	if hasA {
		n.ChildA, err = r.decodeBiTreeNode(depth + 1)
		if err != nil {
			return nil, err
		}
	}

	hasB, err := byteio.Bool(r.src)
	if err != nil {
		n.release()
		return nil, fmt.Errorf("reading has-child-b flag: %w", err)
	}
	if hasB {
		n.ChildB, err = r.decodeBiTreeNode(depth + 1)
		if err != nil {
			n.release()
			return nil, err
		}
	}

	return n, nil
}

func readOptionalString(src *byteio.Source) (string, error) {
	hasValue, err := byteio.Bool(src)
	if err != nil {
		return "", err
	}
	if !hasValue {
		return "", nil
	}
	return byteio.Read7BitLengthString(src)
}

func (r *Reader) decodeMaterial() (Material, error) {
	var mat Material
	var err error
	if mat.DiffuseMapName, err = readOptionalString(r.src); err != nil {
		return mat, fmt.Errorf("reading material diffuse map: %w", err)
	}
	if mat.NormalMapName, err = readOptionalString(r.src); err != nil {
		return mat, fmt.Errorf("reading material normal map: %w", err)
	}
	if mat.SpecularPower, err = byteio.F32LE(r.src); err != nil {
		return mat, fmt.Errorf("reading material specular power: %w", err)
	}
	if mat.SpecularIntensity, err = byteio.F32LE(r.src); err != nil {
		return mat, fmt.Errorf("reading material specular intensity: %w", err)
	}
	return mat, nil
}

func (r *Reader) decodeRenderDeferredEffect() (Variant, error) {
	e := &RenderDeferredEffect{}
	var err error
	if e.Alpha, err = byteio.F32LE(r.src); err != nil {
		return nil, fmt.Errorf("asset: reading effect alpha: %w", err)
	}
	if e.Sharpness, err = byteio.F32LE(r.src); err != nil {
		return nil, fmt.Errorf("asset: reading effect sharpness: %w", err)
	}
	if e.VertexColorEnabled, err = byteio.Bool(r.src); err != nil {
		return nil, fmt.Errorf("asset: reading vertex color flag: %w", err)
	}
	if e.ReflectivenessFromMaterial, err = byteio.Bool(r.src); err != nil {
		return nil, fmt.Errorf("asset: reading reflectiveness flag: %w", err)
	}
	if e.ReflectionMapName, err = readOptionalString(r.src); err != nil {
		return nil, fmt.Errorf("asset: reading reflection map name: %w", err)
	}
	if e.Material0, err = r.decodeMaterial(); err != nil {
		return nil, fmt.Errorf("asset: reading material0: %w", err)
	}
	hasMaterial1, err := byteio.Bool(r.src)
	if err != nil {
		return nil, fmt.Errorf("asset: reading has-material1 flag: %w", err)
	}
	if hasMaterial1 {
		mat, err := r.decodeMaterial()
		if err != nil {
			return nil, fmt.Errorf("asset: reading material1: %w", err)
		}
		e.Material1 = &mat
	}
	return e, nil
}

func (r *Reader) readTriangleMesh() (*TriangleMesh, error) {
	vertexCount, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("reading triangle mesh vertex count: %w", err)
	}
	tm := &TriangleMesh{Vertices: make([][3]float32, vertexCount)}
	for i := range tm.Vertices {
		v, err := byteio.Vec3(r.src)
		if err != nil {
			return nil, fmt.Errorf("reading triangle mesh vertex: %w", err)
		}
		tm.Vertices[i] = v
	}

	indexCount, err := byteio.U32LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("reading triangle mesh index count: %w", err)
	}
	tm.Indices = make([]uint32, indexCount)
	for i := range tm.Indices {
		v, err := byteio.U32LE(r.src)
		if err != nil {
			return nil, fmt.Errorf("reading triangle mesh index: %w", err)
		}
		tm.Indices[i] = v
	}

	if indexCount%3 != 0 {
		return nil, fmt.Errorf("asset: triangle mesh index count %d not a multiple of 3: %w", indexCount, ferr.ErrInvalidBlock)
	}
	tm.Materials = make([]CollisionMaterial, indexCount/3)
	for i := range tm.Materials {
		b, err := byteio.U8(r.src)
		if err != nil {
			return nil, fmt.Errorf("reading triangle mesh material: %w", err)
		}
		mat, err := validCollisionMaterial(b)
		if err != nil {
			return nil, fmt.Errorf("asset: %w: %w", err, ferr.ErrInvalidBlock)
		}
		tm.Materials[i] = mat
	}

	return tm, nil
}

func (r *Reader) decodeNavMesh() (*NavMesh, error) {
	numVertices, err := byteio.U16LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("reading nav mesh vertex count: %w", err)
	}
	nm := &NavMesh{Vertices: make([][3]float32, numVertices)}
	for i := range nm.Vertices {
		v, err := byteio.Vec3(r.src)
		if err != nil {
			return nil, fmt.Errorf("reading nav mesh vertex: %w", err)
		}
		nm.Vertices[i] = v
	}

	numTriangles, err := byteio.U16LE(r.src)
	if err != nil {
		return nil, fmt.Errorf("reading nav mesh triangle count: %w", err)
	}
	nm.Triangles = make([]NavTriangle, numTriangles)
	for i := range nm.Triangles {
		var t NavTriangle
		for j := range t.Refs {
			ref, err := byteio.U16LE(r.src)
			if err != nil {
				return nil, fmt.Errorf("reading nav mesh triangle ref: %w", err)
			}
			t.Refs[j] = ref
		}
		for j := range t.Costs {
			c, err := byteio.F32LE(r.src)
			if err != nil {
				return nil, fmt.Errorf("reading nav mesh triangle cost: %w", err)
			}
			t.Costs[j] = c
		}
		props, err := byteio.U8(r.src)
		if err != nil {
			return nil, fmt.Errorf("reading nav mesh movement properties: %w", err)
		}
		t.Water = props&0x01 != 0
		t.Jump = props&0x02 != 0
		t.Fly = props&0x04 != 0
		t.Dynamic = props&0x80 != 0
		nm.Triangles[i] = t
	}

	return nm, nil
}

func (r *Reader) decodeLevelModel() (Variant, error) {
	l := &LevelModel{
		Lights:                make(map[string]Light),
		EffectStorages:        make(map[string][]byte),
		PhysicsEntityStorages: make(map[string][]byte),
		TriggerAreas:          make(map[string]TriggerArea),
		Locators:              make(map[string]Locator),
	}

	biTree, err := r.readExpect(KindBiTreeModel)
	if err != nil {
		return nil, fmt.Errorf("asset: reading level bi-tree model: %w", err)
	}
	l.BiTreeModel, _ = biTree.(*BiTreeModel)

	partCount, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		l.Release()
		return nil, fmt.Errorf("asset: reading animated part count: %w", err)
	}
	for i := 0; i < int(partCount); i++ {
		name, err := byteio.Read7BitLengthString(r.src)
		if err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading animated part name: %w", err)
		}
		bt, err := r.readExpect(KindBiTreeModel)
		if err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading animated part bi-tree model: %w", err)
		}
		btm, _ := bt.(*BiTreeModel)
		l.AnimatedParts = append(l.AnimatedParts, &AnimatedLevelPart{Name: name, BiTreeModel: btm})
	}

	lightCount, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		l.Release()
		return nil, fmt.Errorf("asset: reading light count: %w", err)
	}
	for i := 0; i < int(lightCount); i++ {
		name, err := byteio.Read7BitLengthString(r.src)
		if err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading light name: %w", err)
		}
		var lt Light
		if lt.Position, err = byteio.Vec3(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading light position: %w", err)
		}
		if lt.Color, err = byteio.Vec3(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading light color: %w", err)
		}
		if lt.Radius, err = byteio.F32LE(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading light radius: %w", err)
		}
		if lt.Intensity, err = byteio.F32LE(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading light intensity: %w", err)
		}
		l.Lights[name] = lt
	}

	if err := r.readNamedBlobs(l.EffectStorages); err != nil {
		l.Release()
		return nil, fmt.Errorf("asset: reading effect storages: %w", err)
	}
	if err := r.readNamedBlobs(l.PhysicsEntityStorages); err != nil {
		l.Release()
		return nil, fmt.Errorf("asset: reading physics entity storages: %w", err)
	}

	liquidCount, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		l.Release()
		return nil, fmt.Errorf("asset: reading liquid count: %w", err)
	}
	for i := 0; i < int(liquidCount); i++ {
		if _, err := byteio.Read7BitLengthString(r.src); err != nil { // name, unused by Liquid itself
			l.Release()
			return nil, fmt.Errorf("asset: reading liquid name: %w", err)
		}
		liq := &Liquid{}
		if liq.Level, err = byteio.F32LE(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading liquid level: %w", err)
		}
		if liq.Mesh, err = r.readTriangleMesh(); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading liquid mesh: %w", err)
		}
		l.Liquids = append(l.Liquids, liq)
	}

	ffCount, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		l.Release()
		return nil, fmt.Errorf("asset: reading force field count: %w", err)
	}
	for i := 0; i < int(ffCount); i++ {
		if _, err := byteio.Read7BitLengthString(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading force field name: %w", err)
		}
		ff := &ForceField{}
		if ff.Position, err = byteio.Vec3(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading force field position: %w", err)
		}
		if ff.Radius, err = byteio.F32LE(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading force field radius: %w", err)
		}
		if ff.Strength, err = byteio.F32LE(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading force field strength: %w", err)
		}
		l.ForceFields = append(l.ForceFields, ff)
	}

	for i := 0; i < 10; i++ {
		present, err := byteio.Bool(r.src)
		if err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading collision mesh %d presence: %w", i, err)
		}
		if !present {
			continue
		}
		mesh, err := r.readTriangleMesh()
		if err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading collision mesh %d: %w", i, err)
		}
		l.CollisionMeshes = append(l.CollisionMeshes, mesh)
	}

	hasCameraMesh, err := byteio.Bool(r.src)
	if err != nil {
		l.Release()
		return nil, fmt.Errorf("asset: reading camera collision mesh presence: %w", err)
	}
	if hasCameraMesh {
		if l.CameraCollisionMesh, err = r.readTriangleMesh(); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading camera collision mesh: %w", err)
		}
	}

	triggerCount, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		l.Release()
		return nil, fmt.Errorf("asset: reading trigger area count: %w", err)
	}
	for i := 0; i < int(triggerCount); i++ {
		name, err := byteio.Read7BitLengthString(r.src)
		if err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading trigger area name: %w", err)
		}
		var ta TriggerArea
		if ta.Bounds.Min, err = byteio.Vec3(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading trigger area min: %w", err)
		}
		if ta.Bounds.Max, err = byteio.Vec3(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading trigger area max: %w", err)
		}
		l.TriggerAreas[name] = ta
	}

	locatorCount, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		l.Release()
		return nil, fmt.Errorf("asset: reading locator count: %w", err)
	}
	for i := 0; i < int(locatorCount); i++ {
		name, err := byteio.Read7BitLengthString(r.src)
		if err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading locator name: %w", err)
		}
		var loc Locator
		if loc.Position, err = byteio.Vec3(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading locator position: %w", err)
		}
		if loc.Rotation, err = byteio.Quat(r.src); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading locator rotation: %w", err)
		}
		l.Locators[name] = loc
	}

	hasNavMesh, err := byteio.Bool(r.src)
	if err != nil {
		l.Release()
		return nil, fmt.Errorf("asset: reading nav mesh presence: %w", err)
	}
	if hasNavMesh {
		if l.NavMesh, err = r.decodeNavMesh(); err != nil {
			l.Release()
			return nil, fmt.Errorf("asset: reading nav mesh: %w", err)
		}
	}

	return l, nil
}

func (r *Reader) readNamedBlobs(dst map[string][]byte) error {
	count, err := byteio.Read7BitEncodedInt(r.src)
	if err != nil {
		return fmt.Errorf("reading blob count: %w", err)
	}
	for i := 0; i < int(count); i++ {
		name, err := byteio.Read7BitLengthString(r.src)
		if err != nil {
			return fmt.Errorf("reading blob name: %w", err)
		}
		data, err := readSizedBytes(r.src)
		if err != nil {
			return fmt.Errorf("reading blob %q: %w", name, err)
		}
		dst[name] = data
	}
	return nil
}
