// Package mesh implements the triangle mesh store: vertex-attribute
// columns with independent dirty-mask bits, geometric transforms, and
// smooth-normal/tangent generation, grounded on the original engine's
// triangle mesh crate and the teacher's dirty-bit idiom.
package mesh

import "github.com/go-gl/mathgl/mgl32"

type (
	Vec2 = mgl32.Vec2
	Vec3 = mgl32.Vec3
	Vec4 = mgl32.Vec4
	Quat = mgl32.Quat
	Mat4 = mgl32.Mat4
)

// DirtyMask is a bitset of which attribute columns changed since the
// resource registry's changelog last observed this mesh, implementing
// resource.DirtyMask.
type DirtyMask uint32

const (
	DirtyPositions DirtyMask = 1 << iota
	DirtyNormals
	DirtyTexCoords
	DirtyTangents
	DirtyColors
	DirtyIndices
)

// IsEmpty reports whether no attribute column changed.
func (d DirtyMask) IsEmpty() bool { return d == 0 }

// Color is a per-vertex RGBA color.
type Color = Vec4

// Mesh is the columnar triangle mesh: a position column plus optional
// normal/texcoord/tangent/color columns that must each be either empty
// or the same length as positions, and a 32-bit index column whose
// length must be a multiple of 3.
type Mesh struct {
	Positions []Vec3
	Normals   []Vec3
	TexCoords []Vec2
	Tangents  []Quat // handedness encoded in the sign of the scalar component
	Colors    []Color
	Indices   []uint32
}

// New creates a mesh from positions and indices, with every optional
// column empty. Panics if len(indices) is not a multiple of 3,
// matching §7's "fail fast at the API boundary" for invariant
// violations.
func New(positions []Vec3, indices []uint32) *Mesh {
	if len(indices)%3 != 0 {
		panic("mesh: index count must be a multiple of 3")
	}
	return &Mesh{Positions: positions, Indices: indices}
}

// NTriangles returns the number of triangles described by Indices.
func (m *Mesh) NTriangles() int { return len(m.Indices) / 3 }

// checkColumnLen panics if n (an optional column's length) is non-zero
// and does not match the position column's length, enforcing the
// "empty or length-equal" invariant for optional columns.
func (m *Mesh) checkColumnLen(name string, n int) {
	if n != 0 && n != len(m.Positions) {
		panic("mesh: " + name + " column length must be 0 or equal to the position column length")
	}
}

// Validate panics if any structural invariant is violated: optional
// column length mismatch, or a non-multiple-of-3 index count.
func (m *Mesh) Validate() {
	if len(m.Indices)%3 != 0 {
		panic("mesh: index count must be a multiple of 3")
	}
	m.checkColumnLen("normal", len(m.Normals))
	m.checkColumnLen("texcoord", len(m.TexCoords))
	m.checkColumnLen("tangent", len(m.Tangents))
	m.checkColumnLen("color", len(m.Colors))
}

// SetColors replaces the color column, ORing DirtyColors into dirty.
func (m *Mesh) SetColors(colors []Color, dirty *DirtyMask) {
	m.checkColumnLen("color", len(colors))
	m.Colors = colors
	*dirty |= DirtyColors
}

// Scale multiplies every position by factor, ORing DirtyPositions into
// dirty. A negative factor also negates every normal, when normals are
// present, and ORs DirtyNormals into dirty; a positive factor leaves
// normals untouched.
func (m *Mesh) Scale(factor float32, dirty *DirtyMask) {
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Mul(factor)
	}
	*dirty |= DirtyPositions
	if len(m.Normals) > 0 && factor < 0 {
		for i := range m.Normals {
			m.Normals[i] = m.Normals[i].Mul(-1)
		}
		*dirty |= DirtyNormals
	}
}

// Translate adds offset to every position, ORing DirtyPositions into
// dirty.
func (m *Mesh) Translate(offset Vec3, dirty *DirtyMask) {
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Add(offset)
	}
	*dirty |= DirtyPositions
}

// Rotate applies rotation to every position and, if present, every
// normal and tangent direction, ORing the affected dirty bits into
// dirty.
func (m *Mesh) Rotate(rotation Quat, dirty *DirtyMask) {
	for i := range m.Positions {
		m.Positions[i] = rotation.Rotate(m.Positions[i])
	}
	*dirty |= DirtyPositions

	if len(m.Normals) > 0 {
		for i := range m.Normals {
			m.Normals[i] = rotation.Rotate(m.Normals[i])
		}
		*dirty |= DirtyNormals
	}

	if len(m.Tangents) > 0 {
		for i := range m.Tangents {
			handedness := float32(1)
			if m.Tangents[i].W < 0 {
				handedness = -1
			}
			rotated := rotation.Mul(m.Tangents[i])
			rotated = rotated.Normalize()
			if (rotated.W < 0) != (handedness < 0) {
				rotated.W = -rotated.W
				rotated.V = rotated.V.Mul(-1)
			}
			m.Tangents[i] = rotated
		}
		*dirty |= DirtyTangents
	}
}

// Transform applies an arbitrary affine 4x4 transform to every
// position, and the inverse transpose of the transform's linear part
// to normals (renormalizing them), ORing the affected dirty bits into
// dirty.
func (m *Mesh) Transform(transform Mat4, dirty *DirtyMask) {
	for i := range m.Positions {
		transformed := transform.Mul4x1(Vec4{m.Positions[i][0], m.Positions[i][1], m.Positions[i][2], 1})
		m.Positions[i] = Vec3{transformed[0], transformed[1], transformed[2]}
	}
	*dirty |= DirtyPositions

	if len(m.Normals) > 0 {
		linear := transform.Mat3()
		normalMatrix := linear.Inv().Transpose()
		for i := range m.Normals {
			m.Normals[i] = normalMatrix.Mul3x1(m.Normals[i]).Normalize()
		}
		*dirty |= DirtyNormals
	}
}

// FlipWinding reverses every triangle's vertex order and negates every
// normal, ORing DirtyIndices and (if present) DirtyNormals into dirty.
func (m *Mesh) FlipWinding(dirty *DirtyMask) {
	for t := 0; t+2 < len(m.Indices); t += 3 {
		m.Indices[t+1], m.Indices[t+2] = m.Indices[t+2], m.Indices[t+1]
	}
	*dirty |= DirtyIndices

	if len(m.Normals) > 0 {
		for i := range m.Normals {
			m.Normals[i] = m.Normals[i].Mul(-1)
		}
		*dirty |= DirtyNormals
	}
}

// MergeWith appends other's vertices and (index-offset) triangles onto
// m. Optional columns are merged only if both meshes have them
// populated for every vertex; otherwise the merged mesh drops that
// column entirely, since a partially-populated column would violate
// the "empty or length-equal" invariant. ORs every affected dirty bit
// into dirty.
func (m *Mesh) MergeWith(other *Mesh, dirty *DirtyMask) {
	indexOffset := uint32(len(m.Positions))

	m.Positions = append(m.Positions, other.Positions...)
	*dirty |= DirtyPositions

	m.Normals = mergeColumn(m.Normals, other.Normals, len(m.Positions)-len(other.Positions), len(other.Positions))
	if len(m.Normals) > 0 {
		*dirty |= DirtyNormals
	}
	m.TexCoords = mergeColumnVec2(m.TexCoords, other.TexCoords, len(m.Positions)-len(other.Positions), len(other.Positions))
	if len(m.TexCoords) > 0 {
		*dirty |= DirtyTexCoords
	}
	m.Tangents = mergeColumnQuat(m.Tangents, other.Tangents, len(m.Positions)-len(other.Positions), len(other.Positions))
	if len(m.Tangents) > 0 {
		*dirty |= DirtyTangents
	}
	m.Colors = mergeColumnColor(m.Colors, other.Colors, len(m.Positions)-len(other.Positions), len(other.Positions))
	if len(m.Colors) > 0 {
		*dirty |= DirtyColors
	}

	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, idx+indexOffset)
	}
	*dirty |= DirtyIndices
}

func mergeColumn(a, b []Vec3, aLenBefore, bLen int) []Vec3 {
	if len(a) != aLenBefore || len(b) != bLen {
		return nil
	}
	return append(a, b...)
}

func mergeColumnVec2(a, b []Vec2, aLenBefore, bLen int) []Vec2 {
	if len(a) != aLenBefore || len(b) != bLen {
		return nil
	}
	return append(a, b...)
}

func mergeColumnQuat(a, b []Quat, aLenBefore, bLen int) []Quat {
	if len(a) != aLenBefore || len(b) != bLen {
		return nil
	}
	return append(a, b...)
}

func mergeColumnColor(a, b []Color, aLenBefore, bLen int) []Color {
	if len(a) != aLenBefore || len(b) != bLen {
		return nil
	}
	return append(a, b...)
}
