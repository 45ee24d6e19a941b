package voxel

import "sort"

// MaxVoxelsForSplitting is the safety limit on the AABB voxel count a
// disconnection split will process. Objects whose AABB spans more
// voxels than this are left untouched by
// SplitOffAnyDisconnectedRegionWithTransferrer, which returns no
// components, grounded on the corresponding guard in splitting_test.go.
const MaxVoxelsForSplitting = 4_000_000

// VoxelMutator is called once per voxel visited by ModifyVoxelsInSphere
// or ModifyVoxelsInCapsule. squaredDistance is the squared distance
// from the query center (sphere) or the query segment (capsule) to the
// voxel's center. The mutator may modify *v in place and returns
// whether it consumed (accepted) the voxel; consumed voxels contribute
// to the invalidated-chunk tracking.
type VoxelMutator func(indices VoxelIndices, squaredDistance float32, v *Voxel) (consumed bool)

// ChunkedVoxelObject is a sparse grid of Chunks, each a dense
// ChunkSize^3 block of voxels, together with the bookkeeping needed to
// track surface state, connectivity, and which chunks need mesh
// re-extraction, grounded on the teacher's XBrickMap generalized from a
// single dense brick array to a sparse chunk map.
type ChunkedVoxelObject struct {
	VoxelExtent float32

	chunks map[ChunkIndex]*Chunk

	invalidatedChunks map[ChunkIndex]struct{}

	// originOffset is this object's chunk-index offset from the parent
	// object it was split off from (zero for an object that was never
	// produced by a split), set by
	// SplitOffAnyDisconnectedRegionWithTransferrer.
	originOffset ChunkIndex
}

// NewChunkedVoxelObject creates an object with no chunks and the given
// per-voxel world-space extent (edge length of one voxel's cube).
func NewChunkedVoxelObject(voxelExtent float32) *ChunkedVoxelObject {
	return &ChunkedVoxelObject{
		VoxelExtent:       voxelExtent,
		chunks:            make(map[ChunkIndex]*Chunk),
		invalidatedChunks: make(map[ChunkIndex]struct{}),
	}
}

// NChunks returns the number of allocated (not necessarily non-empty)
// chunks.
func (o *ChunkedVoxelObject) NChunks() int { return len(o.chunks) }

// OriginOffset returns the chunk-index offset of this object's grid
// origin from the parent object it was split off from, or the zero
// offset for an object that was never produced by a split.
func (o *ChunkedVoxelObject) OriginOffset() ChunkIndex { return o.originOffset }

// IsEffectivelyEmpty reports whether the object holds no chunks, or
// every allocated chunk is fully empty.
func (o *ChunkedVoxelObject) IsEffectivelyEmpty() bool {
	for _, c := range o.chunks {
		if !c.IsFullyEmpty() {
			return false
		}
	}
	return true
}

func (o *ChunkedVoxelObject) chunkAt(ci ChunkIndex) *Chunk {
	return o.chunks[ci]
}

func (o *ChunkedVoxelObject) chunkOrCreate(ci ChunkIndex) *Chunk {
	c, ok := o.chunks[ci]
	if !ok {
		c = NewEmptyChunk()
		o.chunks[ci] = c
	}
	return c
}

// VoxelAt returns the voxel at global coordinates (gx, gy, gz), or the
// empty voxel if the containing chunk has not been allocated.
func (o *ChunkedVoxelObject) VoxelAt(gx, gy, gz int) Voxel {
	vi := globalToChunkLocal(gx, gy, gz)
	c := o.chunkAt(vi.Chunk)
	if c == nil {
		return EmptyVoxel
	}
	return c.At(vi.Local[0], vi.Local[1], vi.Local[2])
}

// SetVoxel writes the voxel at global coordinates, allocating its
// chunk if necessary, and marks the chunk (and its face neighbors, in
// case the write changed surface classification across the boundary)
// as needing mesh re-extraction.
func (o *ChunkedVoxelObject) SetVoxel(gx, gy, gz int, v Voxel) {
	vi := globalToChunkLocal(gx, gy, gz)
	c := o.chunkOrCreate(vi.Chunk)
	c.Set(vi.Local[0], vi.Local[1], vi.Local[2], v)
	o.invalidateChunkAndNeighbors(vi.Chunk, vi.Local)
}

func (o *ChunkedVoxelObject) invalidateChunkAndNeighbors(ci ChunkIndex, local [3]int) {
	o.invalidatedChunks[ci] = struct{}{}
	for axis := 0; axis < 3; axis++ {
		if local[axis] == 0 {
			n := ci
			n[axis]--
			o.invalidatedChunks[n] = struct{}{}
		}
		if local[axis] == ChunkSize-1 {
			n := ci
			n[axis]++
			o.invalidatedChunks[n] = struct{}{}
		}
	}
}

// InvalidatedChunkIndices returns the indices of chunks whose mesh
// needs re-extraction since the last call to ClearInvalidatedChunks.
func (o *ChunkedVoxelObject) InvalidatedChunkIndices() []ChunkIndex {
	out := make([]ChunkIndex, 0, len(o.invalidatedChunks))
	for ci := range o.invalidatedChunks {
		out = append(out, ci)
	}
	return out
}

// ClearInvalidatedChunks empties the invalidated-chunk set.
func (o *ChunkedVoxelObject) ClearInvalidatedChunks() {
	o.invalidatedChunks = make(map[ChunkIndex]struct{})
}

func (o *ChunkedVoxelObject) voxelCenterWorld(gx, gy, gz int) Vec3 {
	e := o.VoxelExtent
	return Vec3{
		(float32(gx) + 0.5) * e,
		(float32(gy) + 0.5) * e,
		(float32(gz) + 0.5) * e,
	}
}

// ForEachSurfaceVoxelInSphere calls fn with the global coordinates of
// every surface voxel whose center lies within radius of center. fn
// may return false to stop iteration early.
func (o *ChunkedVoxelObject) ForEachSurfaceVoxelInSphere(center Vec3, radius float32, fn func(gx, gy, gz int) bool) {
	e := o.VoxelExtent
	minG := worldToVoxelFloor(center.Sub(Vec3{radius, radius, radius}), e)
	maxG := worldToVoxelFloor(center.Add(Vec3{radius, radius, radius}), e)
	r2 := radius * radius

	for gz := minG[2]; gz <= maxG[2]; gz++ {
		for gy := minG[1]; gy <= maxG[1]; gy++ {
			for gx := minG[0]; gx <= maxG[0]; gx++ {
				vi := globalToChunkLocal(gx, gy, gz)
				c := o.chunkAt(vi.Chunk)
				if c == nil || !c.IsSurfaceVoxel(vi.Local[0], vi.Local[1], vi.Local[2]) {
					continue
				}
				d := o.voxelCenterWorld(gx, gy, gz).Sub(center)
				if d.Dot(d) > r2 {
					continue
				}
				if !fn(gx, gy, gz) {
					return
				}
			}
		}
	}
}

func worldToVoxelFloor(p Vec3, voxelExtent float32) [3]int {
	return [3]int{
		floorDivF(p[0], voxelExtent),
		floorDivF(p[1], voxelExtent),
		floorDivF(p[2], voxelExtent),
	}
}

func floorDivF(a, b float32) int {
	q := a / b
	i := int(q)
	if q < 0 && float32(i) != q {
		i--
	}
	return i
}

// ModifyVoxelsInSphere visits every voxel (not just surface voxels)
// whose center lies within radius of center and calls mutator on it,
// writing the voxel back and invalidating affected chunks only when the
// mutator reports it consumed.
func (o *ChunkedVoxelObject) ModifyVoxelsInSphere(center Vec3, radius float32, mutator VoxelMutator) {
	o.modifyVoxelsWhere(center, radius, radius, func(p Vec3) float32 {
		d := p.Sub(center)
		return d.Dot(d)
	}, mutator)
}

// ModifyVoxelsInCapsule visits every voxel whose center lies within
// radius of the segment [a, b] and calls mutator on it.
func (o *ChunkedVoxelObject) ModifyVoxelsInCapsule(a, b Vec3, radius float32, mutator VoxelMutator) {
	ab := b.Sub(a)
	abLenSq := ab.Dot(ab)

	distSq := func(p Vec3) float32 {
		if abLenSq == 0 {
			d := p.Sub(a)
			return d.Dot(d)
		}
		t := p.Sub(a).Dot(ab) / abLenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		closest := a.Add(ab.Mul(t))
		d := p.Sub(closest)
		return d.Dot(d)
	}

	lo := Vec3{minF(a[0], b[0]), minF(a[1], b[1]), minF(a[2], b[2])}
	hi := Vec3{maxF(a[0], b[0]), maxF(a[1], b[1]), maxF(a[2], b[2])}
	center := lo.Add(hi).Mul(0.5)
	boundRadius := lo.Sub(hi).Len()/2 + radius

	o.modifyVoxelsWhere(center, boundRadius, radius, distSq, mutator)
}

func (o *ChunkedVoxelObject) modifyVoxelsWhere(center Vec3, boundRadius, radius float32, distSq func(Vec3) float32, mutator VoxelMutator) {
	e := o.VoxelExtent
	minG := worldToVoxelFloor(center.Sub(Vec3{boundRadius, boundRadius, boundRadius}), e)
	maxG := worldToVoxelFloor(center.Add(Vec3{boundRadius, boundRadius, boundRadius}), e)
	r2 := radius * radius

	for gz := minG[2]; gz <= maxG[2]; gz++ {
		for gy := minG[1]; gy <= maxG[1]; gy++ {
			for gx := minG[0]; gx <= maxG[0]; gx++ {
				p := o.voxelCenterWorld(gx, gy, gz)
				d2 := distSq(p)
				if d2 > r2 {
					continue
				}
				vi := globalToChunkLocal(gx, gy, gz)
				c := o.chunkOrCreate(vi.Chunk)
				v := c.At(vi.Local[0], vi.Local[1], vi.Local[2])
				if mutator(vi, d2, &v) {
					c.Set(vi.Local[0], vi.Local[1], vi.Local[2], v)
					o.invalidateChunkAndNeighbors(vi.Chunk, vi.Local)
				}
			}
		}
	}
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// globalRegionID identifies a connected region as seen from the
// union-find: one entry per (chunk, local region label) pair produced
// during chunk flood fills.
type globalRegionID struct {
	chunk ChunkIndex
	local int32
}

// unionFind is a standard union-find over a dense id space, used to
// merge each chunk's locally flood-filled regions across chunk
// boundaries into globally connected components.
type unionFind struct {
	parent []int32
	rank   []int32
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int32, n), rank: make([]int32, n)}
	for i := range uf.parent {
		uf.parent[i] = int32(i)
	}
	return uf
}

func (uf *unionFind) find(x int32) int32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int32) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// ResolveConnectedRegionsBetweenAllChunks flood-fills every allocated
// chunk internally, then merges regions across chunk boundaries
// wherever two face-adjacent non-empty voxels straddle the boundary,
// returning the set of global voxel indices belonging to each
// resulting connected component. The AABB safety limit does not apply
// here; it only gates SplitOffAnyDisconnectedRegionWithTransferrer.
func (o *ChunkedVoxelObject) ResolveConnectedRegionsBetweenAllChunks() [][]VoxelIndices {
	chunkOrder := make([]ChunkIndex, 0, len(o.chunks))
	base := make(map[ChunkIndex]int32)
	total := int32(0)
	for ci, c := range o.chunks {
		chunkOrder = append(chunkOrder, ci)
		base[ci] = total
		total += int32(c.nLocalRegions())
	}
	sort.Slice(chunkOrder, func(i, j int) bool {
		a, b := chunkOrder[i], chunkOrder[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})

	if total == 0 {
		return nil
	}
	uf := newUnionFind(int(total))

	globalLabel := func(ci ChunkIndex, local int32) int32 {
		return base[ci] + local
	}

	for _, ci := range chunkOrder {
		c := o.chunkAt(ci)
		for axis := 0; axis < 3; axis++ {
			neighborCi := ci
			neighborCi[axis]++
			nc := o.chunkAt(neighborCi)
			if nc == nil {
				continue
			}
			for u := 0; u < ChunkSize; u++ {
				for v := 0; v < ChunkSize; v++ {
					var ax, ay, az, bx, by, bz int
					switch axis {
					case 0:
						ax, ay, az = ChunkSize-1, u, v
						bx, by, bz = 0, u, v
					case 1:
						ax, ay, az = u, ChunkSize-1, v
						bx, by, bz = u, 0, v
					default:
						ax, ay, az = u, v, ChunkSize-1
						bx, by, bz = u, v, 0
					}
					if c.At(ax, ay, az).IsEmpty() || nc.At(bx, by, bz).IsEmpty() {
						continue
					}
					la := c.regionLabelAt(ax, ay, az)
					lb := nc.regionLabelAt(bx, by, bz)
					uf.union(globalLabel(ci, la), globalLabel(neighborCi, lb))
				}
			}
		}
	}

	components := make(map[int32][]VoxelIndices)
	for _, ci := range chunkOrder {
		c := o.chunkAt(ci)
		for z := 0; z < ChunkSize; z++ {
			for y := 0; y < ChunkSize; y++ {
				for x := 0; x < ChunkSize; x++ {
					if c.At(x, y, z).IsEmpty() {
						continue
					}
					local := c.regionLabelAt(x, y, z)
					root := uf.find(globalLabel(ci, local))
					components[root] = append(components[root], VoxelIndices{Chunk: ci, Local: [3]int{x, y, z}})
				}
			}
		}
	}

	out := make([][]VoxelIndices, 0, len(components))
	for _, voxels := range components {
		out = append(out, voxels)
	}
	return out
}

// InertiaTransferrer receives the voxels moving into a newly split-off
// component (Add) and the voxels removed from this object in the same
// operation (Remove), so a caller can keep a paired InertialManager's
// accumulated mass/moments conserved across the split.
type InertiaTransferrer interface {
	AddVoxel(indices VoxelIndices, v Voxel, worldPos Vec3)
	RemoveVoxel(indices VoxelIndices, v Voxel, worldPos Vec3)
}

// SplitOffAnyDisconnectedRegionWithTransferrer finds the connected
// components of the object's voxels; if there is more than one, it
// keeps whichever component contains this object's origin voxel (global
// coordinates (0, 0, 0)) and removes every other component from this
// object, returning a new ChunkedVoxelObject per removed component and
// reporting each voxel's transfer to transferrer. Each new object's
// voxels are rebased into a grid whose own origin is the component's
// minimum chunk index, with that offset recorded on the new object
// (see OriginOffset). If no component contains the origin voxel, the
// first component found is kept, matching the degenerate case of a
// hollow object whose origin voxel was never solid. If the object's
// AABB spans more than MaxVoxelsForSplitting voxels, or the object is
// already a single connected component (or empty), it returns no
// components, grounded on the safety limit exercised in
// splitting_test.go.
func (o *ChunkedVoxelObject) SplitOffAnyDisconnectedRegionWithTransferrer(transferrer InertiaTransferrer) []*ChunkedVoxelObject {
	if o.aabbVoxelCount() > MaxVoxelsForSplitting {
		return nil
	}

	components := o.ResolveConnectedRegionsBetweenAllChunks()
	if len(components) <= 1 {
		return nil
	}

	kept := indexOfComponentContainingOrigin(components)

	var split []*ChunkedVoxelObject
	for i, comp := range components {
		if i == kept {
			continue
		}
		minChunk := minChunkIndexOf(comp)

		newObj := NewChunkedVoxelObject(o.VoxelExtent)
		newObj.originOffset = minChunk

		for _, vi := range comp {
			gc := vi.GlobalCoords()
			c := o.chunkAt(vi.Chunk)
			v := c.At(vi.Local[0], vi.Local[1], vi.Local[2])
			worldPos := o.voxelCenterWorld(gc[0], gc[1], gc[2])

			rebasedChunk := ChunkIndex{
				vi.Chunk[0] - minChunk[0],
				vi.Chunk[1] - minChunk[1],
				vi.Chunk[2] - minChunk[2],
			}
			newObj.SetVoxel(
				rebasedChunk[0]*ChunkSize+vi.Local[0],
				rebasedChunk[1]*ChunkSize+vi.Local[1],
				rebasedChunk[2]*ChunkSize+vi.Local[2],
				v,
			)
			c.Set(vi.Local[0], vi.Local[1], vi.Local[2], EmptyVoxel)
			o.invalidateChunkAndNeighbors(vi.Chunk, vi.Local)

			if transferrer != nil {
				transferrer.RemoveVoxel(vi, v, worldPos)
				transferrer.AddVoxel(vi, v, worldPos)
			}
		}
		split = append(split, newObj)
	}
	return split
}

// indexOfComponentContainingOrigin returns the index of the component
// that contains the voxel at global coordinates (0, 0, 0), or 0 if none
// does.
func indexOfComponentContainingOrigin(components [][]VoxelIndices) int {
	for i, comp := range components {
		for _, vi := range comp {
			gc := vi.GlobalCoords()
			if gc[0] == 0 && gc[1] == 0 && gc[2] == 0 {
				return i
			}
		}
	}
	return 0
}

// minChunkIndexOf returns the per-axis minimum chunk index spanned by
// comp.
func minChunkIndexOf(comp []VoxelIndices) ChunkIndex {
	min := comp[0].Chunk
	for _, vi := range comp[1:] {
		for axis := 0; axis < 3; axis++ {
			if vi.Chunk[axis] < min[axis] {
				min[axis] = vi.Chunk[axis]
			}
		}
	}
	return min
}

// aabbVoxelCount returns the number of voxels spanned by the bounding
// box of the object's allocated chunks (including empty voxels within
// that box), matching the teacher's coarse AABB-based safety check
// rather than an exact non-empty-voxel count.
func (o *ChunkedVoxelObject) aabbVoxelCount() int {
	if len(o.chunks) == 0 {
		return 0
	}
	first := true
	var minC, maxC ChunkIndex
	for ci := range o.chunks {
		if first {
			minC, maxC = ci, ci
			first = false
			continue
		}
		for axis := 0; axis < 3; axis++ {
			if ci[axis] < minC[axis] {
				minC[axis] = ci[axis]
			}
			if ci[axis] > maxC[axis] {
				maxC[axis] = ci[axis]
			}
		}
	}
	nx := (maxC[0] - minC[0] + 1) * ChunkSize
	ny := (maxC[1] - minC[1] + 1) * ChunkSize
	nz := (maxC[2] - minC[2] + 1) * ChunkSize
	return nx * ny * nz
}
