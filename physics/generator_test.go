package physics

import "testing"

func TestSphereSphereGeometry(t *testing.T) {
	g := NewContactGenerator()
	a := Sphere{Center: Vec3{0, 0, 0}, Radius: 1}
	b := Sphere{Center: Vec3{0, 1.9, 0}, Radius: 1}

	manifold := g.SphereSphere(0, 1, a, b, MaterialResponse{})
	if manifold == nil {
		t.Fatal("expected a contact for overlapping spheres")
	}
	contact := manifold.Contacts[0].Contact
	if contact.Geometry.SurfaceNormal != (Vec3{0, -1, 0}) {
		t.Fatalf("expected normal pointing from B to A, got %v", contact.Geometry.SurfaceNormal)
	}
	wantDepth := float32(2 - 1.9)
	if !almostEqual32(contact.Geometry.PenetrationDepth, wantDepth, 1e-5) {
		t.Fatalf("expected penetration depth %v, got %v", wantDepth, contact.Geometry.PenetrationDepth)
	}
}

func TestSphereSphereNoContactWhenSeparated(t *testing.T) {
	g := NewContactGenerator()
	a := Sphere{Center: Vec3{0, 0, 0}, Radius: 1}
	b := Sphere{Center: Vec3{0, 5, 0}, Radius: 1}

	if manifold := g.SphereSphere(0, 1, a, b, MaterialResponse{}); manifold != nil {
		t.Fatalf("expected no contact for separated spheres, got %v", manifold)
	}
}

func TestSpherePlaneGeometry(t *testing.T) {
	g := NewContactGenerator()
	sphere := Sphere{Center: Vec3{0, 0.5, 0}, Radius: 1}
	plane := Plane{Normal: Vec3{0, 1, 0}, Point: Vec3{0, 0, 0}}

	manifold := g.SpherePlane(0, 1, sphere, plane, MaterialResponse{})
	if manifold == nil {
		t.Fatal("expected a contact for a sphere penetrating the plane")
	}
	contact := manifold.Contacts[0].Contact
	wantDepth := float32(1 - 0.5)
	if !almostEqual32(contact.Geometry.PenetrationDepth, wantDepth, 1e-5) {
		t.Fatalf("expected penetration depth %v, got %v", wantDepth, contact.Geometry.PenetrationDepth)
	}
}

func TestSpherePlaneNoContactWhenAbove(t *testing.T) {
	g := NewContactGenerator()
	sphere := Sphere{Center: Vec3{0, 5, 0}, Radius: 1}
	plane := Plane{Normal: Vec3{0, 1, 0}, Point: Vec3{0, 0, 0}}

	if manifold := g.SpherePlane(0, 1, sphere, plane, MaterialResponse{}); manifold != nil {
		t.Fatalf("expected no contact, got %v", manifold)
	}
}

func TestPlanePlaneAndStubsProduceNoContact(t *testing.T) {
	g := NewContactGenerator()
	if m := g.PlanePlane(0, 1, Plane{}, Plane{}, MaterialResponse{}); m != nil {
		t.Fatal("plane/plane must be a permanent no-op")
	}
	if m := g.PlaneVoxelObject(0, 1, Plane{}, VoxelObjectCollidable{}, MaterialResponse{}); m != nil {
		t.Fatal("plane/voxel-object is an unimplemented stub")
	}
	if m := g.VoxelObjectVoxelObject(0, 1, VoxelObjectCollidable{}, VoxelObjectCollidable{}, MaterialResponse{}); m != nil {
		t.Fatal("voxel-object/voxel-object is an unimplemented stub")
	}
}

func almostEqual32(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
