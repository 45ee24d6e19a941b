package voxel

import "testing"

func TestNewTypeRegistryAssignsSequentialIndices(t *testing.T) {
	reg, err := NewTypeRegistry([]TypeSpec{
		{Name: "rock", MassDensity: 2.6},
		{Name: "wood", MassDensity: 0.6},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idx, ok := reg.TypeForName("wood")
	if !ok || idx != 1 {
		t.Fatalf("expected wood at index 1, got %d ok=%v", idx, ok)
	}
	if got := reg.MassDensity(0); got != 2.6 {
		t.Fatalf("expected rock density 2.6, got %v", got)
	}
}

func TestNewTypeRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewTypeRegistry([]TypeSpec{
		{Name: "rock"},
		{Name: "rock"},
	})
	if err == nil {
		t.Fatal("expected error for duplicate name")
	}
}

func TestNewTypeRegistryRejectsMixedNormalMapFormats(t *testing.T) {
	_, err := NewTypeRegistry([]TypeSpec{
		{Name: "a", HasNormalMap: true, NormalMapFormat: NormalMapFormatOpenGL},
		{Name: "b", HasNormalMap: true, NormalMapFormat: NormalMapFormatDirectX},
	})
	if err == nil {
		t.Fatal("expected error for mixed normal map formats")
	}
}

func TestNewTypeRegistryAllowsSameNormalMapFormat(t *testing.T) {
	_, err := NewTypeRegistry([]TypeSpec{
		{Name: "a", HasNormalMap: true, NormalMapFormat: NormalMapFormatOpenGL},
		{Name: "b", HasNormalMap: true, NormalMapFormat: NormalMapFormatOpenGL},
		{Name: "c", HasNormalMap: false},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewTypeRegistryRejectsTooManyTypes(t *testing.T) {
	specs := make([]TypeSpec, MaxVoxelTypes)
	for i := range specs {
		specs[i] = TypeSpec{Name: string(rune('a' + i%26)) + string(rune(i))}
	}
	_, err := NewTypeRegistry(specs)
	if err == nil {
		t.Fatal("expected error for too many voxel types")
	}
}

func TestUnknownVoxelTypeQueriesReturnZeroValues(t *testing.T) {
	reg := EmptyTypeRegistry()
	if got := reg.MassDensity(DummyVoxelType); got != 0 {
		t.Fatalf("expected 0 density for unregistered type, got %v", got)
	}
	if _, ok := reg.Name(DummyVoxelType); ok {
		t.Fatal("expected no name for unregistered type")
	}
}
