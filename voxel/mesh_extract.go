package voxel

import "sort"

// SurfaceMeshVertex is one vertex produced by ExtractSurfaceMesh.
type SurfaceMeshVertex struct {
	Position   Vec3
	Normal     Vec3
	MaterialID uint8
}

// Range is a half-open index range, [Start, End), into a flat vertex
// or index buffer.
type Range struct {
	Start uint32
	End   uint32
}

// SubmeshInfo describes the portion of a SurfaceMesh's buffers
// contributed by one chunk, letting a renderer cull or update chunks
// independently, grounded on the per-chunk submesh records of the
// original engine's voxel mesh crate.
type SubmeshInfo struct {
	Chunk       ChunkIndex
	VertexRange Range
	IndexRange  Range
	ChunkCenter Vec3
	ChunkRadius float32
}

// SurfaceMesh is the flat triangle mesh extracted from a
// ChunkedVoxelObject's non-empty voxels, plus one SubmeshInfo per
// contributing chunk.
type SurfaceMesh struct {
	Vertices  []SurfaceMeshVertex
	Indices   []uint32
	Submeshes []SubmeshInfo
}

// ExtractSurfaceMesh builds a cube-faces surface mesh: one quad
// (two triangles) is emitted per exposed face of every non-empty
// voxel, where "exposed" means the voxel's face-neighbor (within this
// object or across a chunk boundary) is empty. This is a direct-cubes
// variant of the original engine's surface-net extraction, chosen for
// its much simpler Go implementation while preserving the same
// per-chunk submesh contract (vertex/index ranges, chunk center and
// bounding radius) that the renderer's geometry pass depends on.
func (o *ChunkedVoxelObject) ExtractSurfaceMesh() *SurfaceMesh {
	mesh := &SurfaceMesh{}

	chunkOrder := make([]ChunkIndex, 0, len(o.chunks))
	for ci := range o.chunks {
		chunkOrder = append(chunkOrder, ci)
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

	e := o.VoxelExtent
	for _, ci := range chunkOrder {
		c := o.chunkAt(ci)
		if c.IsFullyEmpty() {
			continue
		}

		vertexStart := uint32(len(mesh.Vertices))
		indexStart := uint32(len(mesh.Indices))

		for z := 0; z < ChunkSize; z++ {
			for y := 0; y < ChunkSize; y++ {
				for x := 0; x < ChunkSize; x++ {
					v := c.At(x, y, z)
					if v.IsEmpty() {
						continue
					}
					gx := ci[0]*ChunkSize + x
					gy := ci[1]*ChunkSize + y
					gz := ci[2]*ChunkSize + z

					for _, face := range cubeFaces {
						nx, ny, nz := gx+int(face.normal[0]), gy+int(face.normal[1]), gz+int(face.normal[2])
						if !o.VoxelAt(nx, ny, nz).IsEmpty() {
							continue
						}
						o.emitFace(mesh, gx, gy, gz, e, v.MaterialID, face)
					}
				}
			}
		}

		vertexEnd := uint32(len(mesh.Vertices))
		indexEnd := uint32(len(mesh.Indices))
		if vertexEnd == vertexStart {
			continue
		}

		center := Vec3{
			(float32(ci[0]) + 0.5) * ChunkSize * e,
			(float32(ci[1]) + 0.5) * ChunkSize * e,
			(float32(ci[2]) + 0.5) * ChunkSize * e,
		}
		radius := 0.5 * ChunkSize * e * sqrt3

		mesh.Submeshes = append(mesh.Submeshes, SubmeshInfo{
			Chunk:       ci,
			VertexRange: Range{Start: vertexStart, End: vertexEnd},
			IndexRange:  Range{Start: indexStart, End: indexEnd},
			ChunkCenter: center,
			ChunkRadius: radius,
		})
	}

	return mesh
}

const sqrt3 = 1.7320508

type cubeFace struct {
	normal  [3]int8
	corners [4][3]float32 // relative to the voxel's min corner, in units of voxel extent
}

// cubeFaces enumerates the six axis-aligned faces of a unit voxel cube
// with consistent counter-clockwise winding (viewed from outside along
// the outward normal).
var cubeFaces = [6]cubeFace{
	{normal: [3]int8{1, 0, 0}, corners: [4][3]float32{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{normal: [3]int8{-1, 0, 0}, corners: [4][3]float32{{0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {0, 0, 0}}},
	{normal: [3]int8{0, 1, 0}, corners: [4][3]float32{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{normal: [3]int8{0, -1, 0}, corners: [4][3]float32{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {1, 0, 1}}},
	{normal: [3]int8{0, 0, 1}, corners: [4][3]float32{{1, 0, 1}, {1, 1, 1}, {0, 1, 1}, {0, 0, 1}}},
	{normal: [3]int8{0, 0, -1}, corners: [4][3]float32{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
}

func (o *ChunkedVoxelObject) emitFace(mesh *SurfaceMesh, gx, gy, gz int, voxelExtent float32, materialID uint8, face cubeFace) {
	base := uint32(len(mesh.Vertices))
	normal := Vec3{float32(face.normal[0]), float32(face.normal[1]), float32(face.normal[2])}

	for _, corner := range face.corners {
		pos := Vec3{
			(float32(gx) + corner[0]) * voxelExtent,
			(float32(gy) + corner[1]) * voxelExtent,
			(float32(gz) + corner[2]) * voxelExtent,
		}
		mesh.Vertices = append(mesh.Vertices, SurfaceMeshVertex{
			Position:   pos,
			Normal:     normal,
			MaterialID: materialID,
		})
	}

	mesh.Indices = append(mesh.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}
