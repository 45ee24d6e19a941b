package voxel

import "testing"

func TestNewEmptyChunkIsFullyEmpty(t *testing.T) {
	c := NewEmptyChunk()
	if !c.IsFullyEmpty() {
		t.Fatal("expected fresh chunk to be fully empty")
	}
	if _, uniform := c.UniformMaterial(); !uniform {
		t.Fatal("expected empty chunk to report a uniform (trivial) material")
	}
}

func TestSingleVoxelIsSurfaceAndUniform(t *testing.T) {
	c := NewEmptyChunk()
	c.Set(3, 3, 3, Voxel{MaterialID: 7, SignedDistance: -1})

	if c.IsFullyEmpty() {
		t.Fatal("expected chunk with one voxel to not be fully empty")
	}
	if !c.IsSurfaceVoxel(3, 3, 3) {
		t.Fatal("isolated voxel must be a surface voxel")
	}
	id, uniform := c.UniformMaterial()
	if !uniform || id != 7 {
		t.Fatalf("expected uniform material 7, got id=%d uniform=%v", id, uniform)
	}
}

func TestInteriorVoxelIsNotSurface(t *testing.T) {
	c := NewEmptyChunk()
	// Fill a solid 3x3x3 block centered in the chunk so its center voxel
	// has non-empty neighbors on all six sides.
	for x := 2; x <= 4; x++ {
		for y := 2; y <= 4; y++ {
			for z := 2; z <= 4; z++ {
				c.Set(x, y, z, Voxel{MaterialID: 1, SignedDistance: -1})
			}
		}
	}
	if c.IsSurfaceVoxel(3, 3, 3) {
		t.Fatal("fully interior voxel must not be a surface voxel")
	}
	if !c.IsSurfaceVoxel(2, 3, 3) {
		t.Fatal("block face voxel must be a surface voxel")
	}
}

func TestMixedMaterialsAreNotUniform(t *testing.T) {
	c := NewEmptyChunk()
	c.Set(0, 0, 0, Voxel{MaterialID: 1, SignedDistance: -1})
	c.Set(1, 0, 0, Voxel{MaterialID: 2, SignedDistance: -1})

	if _, uniform := c.UniformMaterial(); uniform {
		t.Fatal("expected mixed materials to not be uniform")
	}
}

func TestTwoDisjointVoxelsAreSeparateLocalRegions(t *testing.T) {
	c := NewEmptyChunk()
	c.Set(0, 0, 0, Voxel{MaterialID: 1, SignedDistance: -1})
	c.Set(7, 7, 7, Voxel{MaterialID: 1, SignedDistance: -1})

	if c.nLocalRegions() != 2 {
		t.Fatalf("expected 2 local regions, got %d", c.nLocalRegions())
	}
	if c.regionLabelAt(0, 0, 0) == c.regionLabelAt(7, 7, 7) {
		t.Fatal("expected disjoint voxels to have different region labels")
	}
}

func TestAdjacentVoxelsShareLocalRegion(t *testing.T) {
	c := NewEmptyChunk()
	c.Set(0, 0, 0, Voxel{MaterialID: 1, SignedDistance: -1})
	c.Set(1, 0, 0, Voxel{MaterialID: 1, SignedDistance: -1})

	if c.nLocalRegions() != 1 {
		t.Fatalf("expected 1 local region, got %d", c.nLocalRegions())
	}
	if c.regionLabelAt(0, 0, 0) != c.regionLabelAt(1, 0, 0) {
		t.Fatal("expected adjacent voxels to share a region label")
	}
}
