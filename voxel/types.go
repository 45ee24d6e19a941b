package voxel

import "fmt"

// MaterialProperties are the position-independent material properties
// of a voxel type consumed by the geometry pass's material binding
// step, grounded on FixedVoxelMaterialProperties in voxel_types.rs.
type MaterialProperties struct {
	SpecularReflectance float32
	RoughnessScale      float32
	Metalness           float32
	EmissiveLuminance   float32
}

// DefaultMaterialProperties mirrors the original engine's Default impl.
func DefaultMaterialProperties() MaterialProperties {
	return MaterialProperties{SpecularReflectance: 0.5, RoughnessScale: 0.5}
}

// NormalMapFormat distinguishes the two supported normal map texture
// encodings. Asset decoding itself is out of scope; this only exists so
// the "mixed formats rejected" invariant can be checked.
type NormalMapFormat int

const (
	NormalMapFormatOpenGL NormalMapFormat = iota
	NormalMapFormatDirectX
)

// TypeSpec declares one registrable voxel material type.
type TypeSpec struct {
	Name            string
	MassDensity     float32
	Properties      MaterialProperties
	HasNormalMap    bool
	NormalMapFormat NormalMapFormat
}

// TypeRegistry holds the names, mass densities, and fixed material
// properties of every registered voxel type, grounded on
// VoxelTypeRegistry in voxel_types.rs. Texture array loading is out of
// scope (asset I/O is excluded); only the in-memory tables survive.
type TypeRegistry struct {
	names              []string
	nameToIndex        map[string]uint8
	massDensities      []float32
	materialProperties []MaterialProperties
	sawNormalMap       bool
	normalMapFormat    NormalMapFormat
}

// EmptyTypeRegistry returns a registry with no registered types.
func EmptyTypeRegistry() *TypeRegistry {
	return &TypeRegistry{nameToIndex: make(map[string]uint8)}
}

// NewTypeRegistry validates and registers the given specs in order,
// assigning them sequential indices starting at 0.
//
// Returns an error if there are too many types, if any name is
// duplicated, or if more than one distinct normal map format is used
// across the registered types (mixed normal-map formats are rejected,
// not promoted, per design note: this restriction is retained
// deliberately rather than invented around).
func NewTypeRegistry(specs []TypeSpec) (*TypeRegistry, error) {
	if len(specs) >= MaxVoxelTypes {
		return nil, fmt.Errorf("voxel: too many voxel types for registry (max %d)", MaxVoxelTypes-1)
	}

	reg := EmptyTypeRegistry()
	for idx, spec := range specs {
		if _, exists := reg.nameToIndex[spec.Name]; exists {
			return nil, fmt.Errorf("voxel: duplicate voxel type name %q", spec.Name)
		}
		if spec.HasNormalMap {
			if reg.sawNormalMap && spec.NormalMapFormat != reg.normalMapFormat {
				return nil, fmt.Errorf("voxel: mixed normal map formats for voxel types is not supported")
			}
			reg.sawNormalMap = true
			reg.normalMapFormat = spec.NormalMapFormat
		}

		reg.names = append(reg.names, spec.Name)
		reg.massDensities = append(reg.massDensities, spec.MassDensity)
		reg.materialProperties = append(reg.materialProperties, spec.Properties)
		reg.nameToIndex[spec.Name] = uint8(idx)
	}
	return reg, nil
}

// NVoxelTypes returns the number of registered voxel types.
func (r *TypeRegistry) NVoxelTypes() int { return len(r.names) }

// TypeForName returns the voxel type index registered under name.
func (r *TypeRegistry) TypeForName(name string) (uint8, bool) {
	idx, ok := r.nameToIndex[name]
	return idx, ok
}

// Name returns the name of the given voxel type index.
func (r *TypeRegistry) Name(voxelType uint8) (string, bool) {
	if int(voxelType) >= len(r.names) {
		return "", false
	}
	return r.names[voxelType], true
}

// MassDensity returns the mass density of the given voxel type, used
// by the inertial manager (§4.5) to weight volume into mass.
func (r *TypeRegistry) MassDensity(voxelType uint8) float32 {
	if int(voxelType) >= len(r.massDensities) {
		return 0
	}
	return r.massDensities[voxelType]
}

// MaterialProperties returns the fixed material properties of the
// given voxel type.
func (r *TypeRegistry) MaterialProperties(voxelType uint8) MaterialProperties {
	if int(voxelType) >= len(r.materialProperties) {
		return MaterialProperties{}
	}
	return r.materialProperties[voxelType]
}
