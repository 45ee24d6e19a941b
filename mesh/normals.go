package mesh

// GenerateSmoothNormals (re)computes the normal column by averaging,
// at each vertex, the area-weighted face normal of every triangle that
// references it, then normalizing. ORs DirtyNormals into dirty.
func (m *Mesh) GenerateSmoothNormals(dirty *DirtyMask) {
	normals := make([]Vec3, len(m.Positions))

	for t := 0; t+2 < len(m.Indices); t += 3 {
		ia, ib, ic := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		pa, pb, pc := m.Positions[ia], m.Positions[ib], m.Positions[ic]

		edge1 := pb.Sub(pa)
		edge2 := pc.Sub(pa)
		faceNormal := edge1.Cross(edge2) // magnitude proportional to triangle area: area-weighted accumulation

		normals[ia] = normals[ia].Add(faceNormal)
		normals[ib] = normals[ib].Add(faceNormal)
		normals[ic] = normals[ic].Add(faceNormal)
	}

	for i := range normals {
		if lenSq := normals[i].Dot(normals[i]); lenSq > 0 {
			normals[i] = normals[i].Normalize()
		} else {
			normals[i] = Vec3{0, 1, 0}
		}
	}

	m.Normals = normals
	*dirty |= DirtyNormals
}
