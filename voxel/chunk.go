package voxel

// surfaceBitmap is a fixed-size bitset over the voxelsPerChunk voxels
// of a chunk, one bit per voxel, set iff that voxel is non-empty and
// touches at least one empty (or out-of-chunk) neighbor.
type surfaceBitmap [(voxelsPerChunk + 63) / 64]uint64

func (b *surfaceBitmap) set(i int)         { b[i/64] |= 1 << uint(i%64) }
func (b *surfaceBitmap) get(i int) bool    { return b[i/64]&(1<<uint(i%64)) != 0 }
func (b *surfaceBitmap) clear()            { *b = surfaceBitmap{} }
func (b *surfaceBitmap) any() bool {
	for _, word := range b {
		if word != 0 {
			return true
		}
	}
	return false
}

// Chunk holds the dense voxel storage and derived classification state
// for one ChunkSize^3 region of a ChunkedVoxelObject, grounded on the
// teacher's per-brick payload plus classification caches in
// xbrickmap.go, generalized from uint8 materials to full Voxel values.
type Chunk struct {
	voxels [voxelsPerChunk]Voxel

	surface        surfaceBitmap
	uniformMat     bool
	uniformMatID   uint8
	fullyEmpty     bool
	classification bool // whether the caches above are valid

	// regionLabels maps each non-empty voxel's flat index to a connected
	// component id local to this chunk, assigned by floodFillRegions.
	// Cross-chunk merging happens in the owning object's union-find.
	regionLabels   []int32
	regionCount    int
	regionsValid   bool
}

// NewEmptyChunk returns a chunk with every voxel empty.
func NewEmptyChunk() *Chunk {
	c := &Chunk{}
	for i := range c.voxels {
		c.voxels[i] = EmptyVoxel
	}
	c.fullyEmpty = true
	c.uniformMat = true
	c.classification = true
	return c
}

// At returns the voxel at local coordinates (each in [0, ChunkSize)).
func (c *Chunk) At(x, y, z int) Voxel {
	return c.voxels[localIndex(x, y, z)]
}

// Set writes the voxel at local coordinates and invalidates the
// chunk's derived classification caches.
func (c *Chunk) Set(x, y, z int, v Voxel) {
	c.voxels[localIndex(x, y, z)] = v
	c.classification = false
	c.regionsValid = false
}

// IsFullyEmpty reports whether every voxel in the chunk is empty,
// recomputing the cached flag if stale.
func (c *Chunk) IsFullyEmpty() bool {
	c.ensureClassified()
	return c.fullyEmpty
}

// UniformMaterial returns the single material id shared by every
// non-empty voxel in the chunk, and whether such a uniform material
// exists (true also when the chunk is fully empty, with id 0).
func (c *Chunk) UniformMaterial() (uint8, bool) {
	c.ensureClassified()
	return c.uniformMatID, c.uniformMat
}

// IsSurfaceVoxel reports whether the voxel at local coordinates is
// non-empty and adjacent to an empty voxel or a chunk boundary.
func (c *Chunk) IsSurfaceVoxel(x, y, z int) bool {
	c.ensureClassified()
	return c.surface.get(localIndex(x, y, z))
}

// ensureClassified recomputes the fully-empty flag, the uniform
// material flag, and the surface bitmap if they have been invalidated
// by a Set call since they were last computed.
func (c *Chunk) ensureClassified() {
	if c.classification {
		return
	}
	c.classification = true
	c.surface.clear()

	fullyEmpty := true
	uniform := true
	var uniformID uint8
	haveUniform := false

	for z := 0; z < ChunkSize; z++ {
		for y := 0; y < ChunkSize; y++ {
			for x := 0; x < ChunkSize; x++ {
				v := c.At(x, y, z)
				if v.IsEmpty() {
					continue
				}
				fullyEmpty = false
				if !haveUniform {
					uniformID = v.MaterialID
					haveUniform = true
				} else if v.MaterialID != uniformID {
					uniform = false
				}
				if c.touchesEmptyNeighbor(x, y, z) {
					c.surface.set(localIndex(x, y, z))
				}
			}
		}
	}

	c.fullyEmpty = fullyEmpty
	c.uniformMat = uniform
	if haveUniform {
		c.uniformMatID = uniformID
	} else {
		c.uniformMatID = 0
	}
}

// touchesEmptyNeighbor reports whether any of the voxel's six
// face-neighbors is empty. Neighbors outside the chunk are treated as
// empty for this local classification; the owning object refines
// cross-chunk adjacency separately when it needs it (mesh extraction,
// union-find merging).
func (c *Chunk) touchesEmptyNeighbor(x, y, z int) bool {
	offsets := [6][3]int{
		{-1, 0, 0}, {1, 0, 0},
		{0, -1, 0}, {0, 1, 0},
		{0, 0, -1}, {0, 0, 1},
	}
	for _, o := range offsets {
		nx, ny, nz := x+o[0], y+o[1], z+o[2]
		if nx < 0 || ny < 0 || nz < 0 || nx >= ChunkSize || ny >= ChunkSize || nz >= ChunkSize {
			return true
		}
		if c.At(nx, ny, nz).IsEmpty() {
			return true
		}
	}
	return false
}

// regionLabelAt returns the local connected-region label of the voxel
// at local coordinates, or -1 if the voxel is empty. Labels are
// assigned by floodFillRegions and are only unique within this chunk.
func (c *Chunk) regionLabelAt(x, y, z int) int32 {
	c.ensureRegions()
	return c.regionLabels[localIndex(x, y, z)]
}

func (c *Chunk) nLocalRegions() int {
	c.ensureRegions()
	return c.regionCount
}

// ensureRegions performs a flood fill over the chunk's non-empty
// voxels (6-connectivity) to assign each a local region label,
// grounded on the teacher's splitting_test.go connectivity semantics.
func (c *Chunk) ensureRegions() {
	if c.regionsValid {
		return
	}
	c.regionsValid = true
	labels := make([]int32, voxelsPerChunk)
	for i := range labels {
		labels[i] = -1
	}

	nextLabel := int32(0)
	var stack []int

	for z := 0; z < ChunkSize; z++ {
		for y := 0; y < ChunkSize; y++ {
			for x := 0; x < ChunkSize; x++ {
				start := localIndex(x, y, z)
				if c.voxels[start].IsEmpty() || labels[start] != -1 {
					continue
				}
				stack = append(stack[:0], start)
				labels[start] = nextLabel
				for len(stack) > 0 {
					cur := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					cz, rem := cur/(ChunkSize*ChunkSize), cur%(ChunkSize*ChunkSize)
					cy, cx := rem/ChunkSize, rem%ChunkSize
					for _, o := range [6][3]int{
						{-1, 0, 0}, {1, 0, 0},
						{0, -1, 0}, {0, 1, 0},
						{0, 0, -1}, {0, 0, 1},
					} {
						nx, ny, nz := cx+o[0], cy+o[1], cz+o[2]
						if nx < 0 || ny < 0 || nz < 0 || nx >= ChunkSize || ny >= ChunkSize || nz >= ChunkSize {
							continue
						}
						ni := localIndex(nx, ny, nz)
						if c.voxels[ni].IsEmpty() || labels[ni] != -1 {
							continue
						}
						labels[ni] = nextLabel
						stack = append(stack, ni)
					}
				}
				nextLabel++
			}
		}
	}

	c.regionLabels = labels
	c.regionCount = int(nextLabel)
}
