package mesh

import "math"

// GenerateTangents computes per-vertex tangent-space quaternions from
// the texture-coordinate Gram-Schmidt method, preserving handedness in
// the quaternion scalar component's sign, grounded precisely on §4.8's
// documented edge cases: when two triangle edges share a u- or
// v-coordinate the system is solved from the remaining edge pair
// instead; when it remains degenerate the triangle is dropped from the
// average; when the normalized tangent length is non-finite a
// synthetic axis-aligned tangent perpendicular to the normal is used
// instead. Requires Normals and TexCoords to already be populated.
func (m *Mesh) GenerateTangents(dirty *DirtyMask) {
	if len(m.Normals) != len(m.Positions) || len(m.TexCoords) != len(m.Positions) {
		panic("mesh: tangent generation requires populated normal and texcoord columns")
	}

	accumTangent := make([]Vec3, len(m.Positions))
	accumBitangent := make([]Vec3, len(m.Positions))

	for t := 0; t+2 < len(m.Indices); t += 3 {
		ia, ib, ic := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		tangent, bitangent, ok := triangleTangentBitangent(
			m.Positions[ia], m.Positions[ib], m.Positions[ic],
			m.TexCoords[ia], m.TexCoords[ib], m.TexCoords[ic],
		)
		if !ok {
			continue
		}

		for _, idx := range [3]uint32{ia, ib, ic} {
			accumTangent[idx] = accumTangent[idx].Add(tangent)
			accumBitangent[idx] = accumBitangent[idx].Add(bitangent)
		}
	}

	tangents := make([]Quat, len(m.Positions))
	for i := range tangents {
		tangents[i] = vertexTangentQuat(m.Normals[i], accumTangent[i], accumBitangent[i])
	}

	m.Tangents = tangents
	*dirty |= DirtyTangents
}

// triangleTangentBitangent solves the 2x2 Gram-Schmidt system for one
// triangle's tangent and bitangent from its edge vectors and texture
// coordinate deltas. Falls back to the alternate edge pair if the
// primary pair's texture coordinates share a u or v value (making that
// pair's 2x2 system singular), and reports ok=false if the system
// remains degenerate after the fallback.
func triangleTangentBitangent(p0, p1, p2 Vec3, uv0, uv1, uv2 Vec2) (tangent, bitangent Vec3, ok bool) {
	e1, e2 := p1.Sub(p0), p2.Sub(p0)
	duv1 := uv1.Sub(uv0)
	duv2 := uv2.Sub(uv0)

	if t, b, solved := solveTangentSystem(e1, e2, duv1, duv2); solved {
		return t, b, true
	}

	// Fallback: the remaining edge pair (p0-p2 and p1-p2 relative to
	// vertex 2) per the documented edge case.
	e1, e2 = p0.Sub(p2), p1.Sub(p2)
	duv1, duv2 = uv0.Sub(uv2), uv1.Sub(uv2)
	if t, b, solved := solveTangentSystem(e1, e2, duv1, duv2); solved {
		return t, b, true
	}

	return Vec3{}, Vec3{}, false
}

func solveTangentSystem(e1, e2 Vec3, duv1, duv2 Vec2) (tangent, bitangent Vec3, ok bool) {
	det := duv1[0]*duv2[1] - duv2[0]*duv1[1]
	if det == 0 {
		return Vec3{}, Vec3{}, false
	}
	r := 1 / det

	tangent = e1.Mul(duv2[1]).Sub(e2.Mul(duv1[1])).Mul(r)
	bitangent = e2.Mul(duv1[0]).Sub(e1.Mul(duv2[0])).Mul(r)
	return tangent, bitangent, true
}

// vertexTangentQuat orthonormalizes the accumulated tangent against
// the vertex normal, derives handedness from the bitangent, and
// synthesizes an axis-aligned fallback tangent when the result is
// non-finite (degenerate accumulation, e.g. every contributing
// triangle was dropped).
func vertexTangentQuat(normal, accumTangent, accumBitangent Vec3) Quat {
	t := accumTangent.Sub(normal.Mul(normal.Dot(accumTangent)))
	tLen := t.Len()

	var orthoTangent Vec3
	if tLen > 0 && isFinite32(tLen) {
		orthoTangent = t.Mul(1 / tLen)
	} else {
		orthoTangent = synthesizeTangent(normal)
	}

	handedness := float32(1)
	if normal.Cross(orthoTangent).Dot(accumBitangent) < 0 {
		handedness = -1
	}

	return tangentFrameToQuat(normal, orthoTangent, handedness)
}

// synthesizeTangent takes the x-axis, or the y-axis when |normal.x|
// exceeds 0.9, and returns its normalized component perpendicular to
// normal.
func synthesizeTangent(normal Vec3) Vec3 {
	axis := Vec3{1, 0, 0}
	if abs32(normal[0]) > 0.9 {
		axis = Vec3{0, 1, 0}
	}
	t := axis.Sub(normal.Mul(normal.Dot(axis)))
	return t.Normalize()
}

// tangentFrameToQuat builds the rotation taking the standard basis to
// (tangent, bitangent, normal) and encodes handedness in the
// quaternion's scalar component sign.
func tangentFrameToQuat(normal, tangent Vec3, handedness float32) Quat {
	bitangent := normal.Cross(tangent)

	// Columns of the rotation matrix are the target basis vectors.
	m := mat3FromColumns(tangent, bitangent, normal)
	q := quatFromMat3(m)
	if (q.W < 0) != (handedness < 0) {
		q.W = -q.W
		q.V = q.V.Mul(-1)
	}
	return q
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func isFinite32(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}
