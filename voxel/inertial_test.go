package voxel

import "testing"

func almostEqual(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestDeriveInertialPropertiesOfSingleVoxel(t *testing.T) {
	reg, err := NewTypeRegistry([]TypeSpec{{Name: "rock", MassDensity: 2}})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	im := NewInertialManager(reg, 1)
	im.AddVoxel(VoxelIndices{}, solidVoxel(0), Vec3{1, 1, 1})

	props := im.DeriveInertialProperties()
	if !almostEqual(props.Mass, 2, 1e-5) {
		t.Fatalf("expected mass 2, got %v", props.Mass)
	}
	if !almostEqual(props.CenterOfMass[0], 1, 1e-5) {
		t.Fatalf("expected center of mass at voxel position, got %v", props.CenterOfMass)
	}
}

func TestDeriveInertialPropertiesOfEmptyManagerIsZero(t *testing.T) {
	reg := EmptyTypeRegistry()
	im := NewInertialManager(reg, 1)
	props := im.DeriveInertialProperties()
	if props.Mass != 0 {
		t.Fatalf("expected zero mass, got %v", props.Mass)
	}
}

func TestAddThenRemoveVoxelReturnsToZeroMass(t *testing.T) {
	reg, err := NewTypeRegistry([]TypeSpec{{Name: "rock", MassDensity: 2}})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	im := NewInertialManager(reg, 1)
	v := solidVoxel(0)
	pos := Vec3{3, -2, 5}

	im.AddVoxel(VoxelIndices{}, v, pos)
	im.RemoveVoxel(VoxelIndices{}, v, pos)

	if im.TotalMass() != 0 {
		t.Fatalf("expected mass to return to 0 after add+remove, got %v", im.TotalMass())
	}
}

func TestOffsetReferencePointPreservesMassAndShiftsCenterOfMass(t *testing.T) {
	reg, err := NewTypeRegistry([]TypeSpec{{Name: "rock", MassDensity: 1}})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	im := NewInertialManager(reg, 1)
	im.AddVoxel(VoxelIndices{}, solidVoxel(0), Vec3{0, 0, 0})
	im.AddVoxel(VoxelIndices{}, solidVoxel(0), Vec3{2, 0, 0})

	before := im.DeriveInertialProperties()
	im.OffsetReferencePoint(Vec3{5, 0, 0})
	after := im.DeriveInertialProperties()

	if !almostEqual(before.Mass, after.Mass, 1e-5) {
		t.Fatalf("expected mass unaffected by reference point offset, before=%v after=%v", before.Mass, after.Mass)
	}
	if !almostEqual(after.CenterOfMass[0], before.CenterOfMass[0]+5, 1e-4) {
		t.Fatalf("expected center of mass to shift by the offset, before=%v after=%v", before.CenterOfMass, after.CenterOfMass)
	}
}
