package mesh

import "testing"

func TestGenerateSmoothNormalsOfFlatTriangleAreUnitLength(t *testing.T) {
	m := New(
		[]Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		[]uint32{0, 1, 2},
	)
	var dirty DirtyMask
	m.GenerateSmoothNormals(&dirty)

	if dirty&DirtyNormals == 0 {
		t.Fatal("expected DirtyNormals to be set")
	}
	for _, n := range m.Normals {
		if lenSq := n.Dot(n); lenSq < 0.99 || lenSq > 1.01 {
			t.Fatalf("expected unit-length normal, got length^2 %v", lenSq)
		}
	}
}

func TestGenerateSmoothNormalsAveragesSharedVertex(t *testing.T) {
	// Two triangles sharing vertex 0, forming a right angle fold.
	m := New(
		[]Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[]uint32{0, 1, 2, 0, 2, 3},
	)
	var dirty DirtyMask
	m.GenerateSmoothNormals(&dirty)

	n := m.Normals[0]
	if lenSq := n.Dot(n); lenSq < 0.99 || lenSq > 1.01 {
		t.Fatalf("expected averaged normal to be renormalized, got length^2 %v", lenSq)
	}
}
