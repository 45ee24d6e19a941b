package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/corex/voxel"
)

// MaterialPropertyBinding models how one material property reaches the
// shader: either a plain scalar/vector pushed into a small per-material
// uniform buffer, or a slice of a texture array. Grounded on
// impact_voxel/src/voxel_types.rs's VoxelColor::Uniform/Textured and
// VoxelRoughness::Uniform/Textured, generalized into one sum type
// consumed identically by the geometry pass's per-pipeline bind step
// (§4.13, added).
type MaterialPropertyBinding struct {
	kind      materialBindingKind
	uniform   [4]float32
	texture   uint32
	hasFormat bool
	format    NormalMapFormat
}

type materialBindingKind int

const (
	bindingUniform materialBindingKind = iota
	bindingTextured
)

// NormalMapFormat is the voxel type registry's normal-map convention
// enum, reused here since the same mixed-format rejection rule (§9)
// applies at this layer's material binding registration.
type NormalMapFormat = voxel.NormalMapFormat

const (
	NormalMapFormatOpenGL  = voxel.NormalMapFormatOpenGL
	NormalMapFormatDirectX = voxel.NormalMapFormatDirectX
)

// UniformMaterialProperty creates a plain scalar/vector binding, stored
// as up to 4 components (e.g. a flat color or a single roughness
// scalar in component 0).
func UniformMaterialProperty(values ...float32) MaterialPropertyBinding {
	if len(values) > 4 {
		panic("gpu: a uniform material property supports at most 4 components")
	}
	var b MaterialPropertyBinding
	b.kind = bindingUniform
	copy(b.uniform[:], values)
	return b
}

// TexturedMaterialProperty creates a binding into slice textureIndex
// of the material's texture array. format is only meaningful for
// normal-map properties; callers binding a non-normal-map texture
// should pass hasFormat=false.
func TexturedMaterialProperty(textureIndex uint32, format NormalMapFormat, hasFormat bool) MaterialPropertyBinding {
	return MaterialPropertyBinding{kind: bindingTextured, texture: textureIndex, format: format, hasFormat: hasFormat}
}

// IsTextured reports whether this binding reads from a texture array
// rather than a uniform buffer.
func (b MaterialPropertyBinding) IsTextured() bool { return b.kind == bindingTextured }

// Uniform returns the up-to-4-component value for a uniform binding;
// panics if the binding is textured.
func (b MaterialPropertyBinding) Uniform() [4]float32 {
	if b.kind != bindingUniform {
		panic("gpu: Uniform called on a textured material property binding")
	}
	return b.uniform
}

// TextureIndex returns the texture array slice for a textured binding;
// panics if the binding is uniform.
func (b MaterialPropertyBinding) TextureIndex() uint32 {
	if b.kind != bindingTextured {
		panic("gpu: TextureIndex called on a uniform material property binding")
	}
	return b.texture
}

// NormalMapFormat returns the binding's declared normal map format and
// whether one was declared at all (non-normal-map textures don't
// carry one).
func (b MaterialPropertyBinding) NormalMapFormat() (NormalMapFormat, bool) {
	return b.format, b.hasFormat
}

// ValidateNormalMapFormats rejects a set of textured normal-map
// bindings that mix OpenGL and DirectX conventions, per voxel_types.rs's
// "Mixed normal map formats for voxel types is not supported" check,
// retained here as an explicit invariant-violation error at
// registration time rather than promoted to a common format (§9).
func ValidateNormalMapFormats(bindings []MaterialPropertyBinding) error {
	var seen bool
	var want NormalMapFormat
	for _, b := range bindings {
		format, ok := b.NormalMapFormat()
		if !ok {
			continue
		}
		if !seen {
			want, seen = format, true
			continue
		}
		if format != want {
			return fmt.Errorf("gpu: mixed normal map formats for voxel types is not supported")
		}
	}
	return nil
}

// FeatureColumn is one GPU-side array of a single per-instance feature
// (typically a model-view transform, optionally a per-instance color
// or material-blend weight for voxel-extracted meshes). It carries its
// own (capacity, validLength) independent of every other column, and an
// initial range recording the instance span of the last Write (replaced,
// not extended, by each Write), consumed by the geometry pass's indexed
// draw call exactly as a submesh's vertex_range is.
type FeatureColumn struct {
	buffer       *Buffer
	stride       uint64
	initialRange Range
}

// NewFeatureColumn creates an empty column for a feature whose encoded
// size is stride bytes per instance. The underlying buffer's label is
// suffixed with a unique id (DebugLabel) since every model's
// "transform"/"color" column shares the same logical name.
func NewFeatureColumn(device *wgpu.Device, label string, stride uint64) (*FeatureColumn, error) {
	buf, err := NewBuffer(device, BufferTypeVertex, DebugLabel(label), stride*16)
	if err != nil {
		return nil, err
	}
	return &FeatureColumn{buffer: buf, stride: stride}, nil
}

// Buffer returns the underlying GPU buffer for binding as a vertex
// buffer in the geometry pass.
func (c *FeatureColumn) Buffer() *Buffer { return c.buffer }

// InitialRange returns the instance span written this frame.
func (c *FeatureColumn) InitialRange() Range { return c.initialRange }

// HasFeaturesInInitialRange reports whether this column has any
// instances buffered this frame, matching
// InstanceFeatureBufferManager::has_features_in_initial_range's role
// in deciding whether a model needs a geometry-pass pipeline at all.
func (c *FeatureColumn) HasFeaturesInInitialRange() bool { return !c.initialRange.IsEmpty() }

// Write uploads one frame's worth of per-instance feature data and
// records the instance count as the new initial range, growing the
// backing buffer first if it's too small.
func (c *FeatureColumn) Write(device *wgpu.Device, queue *wgpu.Queue, data []byte) (bool, error) {
	recreated, err := c.buffer.Write(device, queue, data)
	if err != nil {
		return false, err
	}
	c.initialRange = Range{Start: 0, End: uint32(uint64(len(data)) / c.stride)}
	return recreated, nil
}

// InstanceFeatureStore holds the set of feature columns for one model,
// plus the slot allocator handing out stable per-instance slots shared
// across every column (generalized from manager.go's SlotAllocator
// use for voxel sectors/bricks, per §4.9's "added" note).
type InstanceFeatureStore struct {
	alloc   SlotAllocator
	columns map[string]*FeatureColumn
}

// NewInstanceFeatureStore creates an empty store.
func NewInstanceFeatureStore() *InstanceFeatureStore {
	return &InstanceFeatureStore{columns: make(map[string]*FeatureColumn)}
}

// AddColumn registers a new per-instance feature column under name
// (e.g. "transform", "color", "material_blend_weights").
func (s *InstanceFeatureStore) AddColumn(name string, column *FeatureColumn) {
	s.columns[name] = column
}

// Column returns the named feature column, if registered.
func (s *InstanceFeatureStore) Column(name string) (*FeatureColumn, bool) {
	c, ok := s.columns[name]
	return c, ok
}

// AllocateInstanceSlot hands out a stable per-instance slot shared
// across every column in this store.
func (s *InstanceFeatureStore) AllocateInstanceSlot() uint32 { return s.alloc.Alloc() }

// ReleaseInstanceSlot returns a slot to the free list for reuse.
func (s *InstanceFeatureStore) ReleaseInstanceSlot(slot uint32) { s.alloc.FreeSlot(slot) }
