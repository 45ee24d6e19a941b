package mesh

import "testing"

func squareMeshWithUVs() *Mesh {
	m := New(
		[]Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
		[]uint32{0, 1, 2, 0, 2, 3},
	)
	m.Normals = []Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}}
	m.TexCoords = []Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	return m
}

func TestGenerateTangentsProducesUnitQuaternions(t *testing.T) {
	m := squareMeshWithUVs()
	var dirty DirtyMask
	m.GenerateTangents(&dirty)

	if dirty&DirtyTangents == 0 {
		t.Fatal("expected DirtyTangents to be set")
	}
	for _, q := range m.Tangents {
		lenSq := q.W*q.W + q.V.Dot(q.V)
		if lenSq < 0.99 || lenSq > 1.01 {
			t.Fatalf("expected unit quaternion, got length^2 %v", lenSq)
		}
	}
}

func TestGenerateTangentsPanicsWithoutNormalsOrTexCoords(t *testing.T) {
	m := triangleMesh()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when normals/texcoords are missing")
		}
	}()
	var dirty DirtyMask
	m.GenerateTangents(&dirty)
}

func TestDegenerateTexCoordsFallBackToSynthesizedTangent(t *testing.T) {
	// Every texture coordinate identical: both edge pairs are singular,
	// forcing the synthesized-axis-aligned-tangent fallback.
	m := New(
		[]Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		[]uint32{0, 1, 2},
	)
	m.Normals = []Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}}
	m.TexCoords = []Vec2{{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}}

	var dirty DirtyMask
	m.GenerateTangents(&dirty)

	for _, q := range m.Tangents {
		lenSq := q.W*q.W + q.V.Dot(q.V)
		if lenSq < 0.99 || lenSq > 1.01 {
			t.Fatalf("expected a valid synthesized unit quaternion even in the fully degenerate case, got length^2 %v", lenSq)
		}
	}
}
