// Package voxel implements the chunked signed-distance-field voxel
// object: per-voxel material/SDF storage, chunk-level classification
// caches, connected-region tracking, disconnection splitting with
// inertial-property transfer, mesh extraction, and sphere/capsule
// collision queries.
package voxel

import "github.com/go-gl/mathgl/mgl32"

// ChunkSize is the fixed edge length, in voxels, of a chunk. Grounded
// on the teacher's brick payload dimensions (Payload [8][8][8]uint8 in
// xbrickmap.go).
const ChunkSize = 8

const voxelsPerChunk = ChunkSize * ChunkSize * ChunkSize

// DummyVoxelType is the reserved sentinel material id, never valid in
// a registry.
const DummyVoxelType uint8 = 255

// MaxVoxelTypes is the exclusive bound on a registry's type count: a
// registry holds at most MaxVoxelTypes-1 (254) types, indexed 0..253;
// 255 is reserved.
const MaxVoxelTypes = 255

// Voxel stores a material identifier and a signed distance. Emptiness
// is decided by the signed distance alone. EmptyVoxel carries material
// id zero, and zero is also the index of the first registered voxel
// type, so material id zero on a non-empty voxel names that type.
type Voxel struct {
	MaterialID     uint8
	SignedDistance float32
}

// IsEmpty reports whether the voxel holds no solid material.
func (v Voxel) IsEmpty() bool { return v.SignedDistance >= 0 }

// EmptyVoxel is the canonical empty voxel value.
var EmptyVoxel = Voxel{MaterialID: 0, SignedDistance: 1}

// localIndex maps a voxel's position within a chunk (each coordinate in
// [0, ChunkSize)) to its flat storage index.
func localIndex(x, y, z int) int {
	return (z*ChunkSize+y)*ChunkSize + x
}

// ChunkIndex identifies a chunk within a ChunkedVoxelObject's grid.
type ChunkIndex [3]int

// VoxelIndices identifies a single voxel by its chunk plus its local
// coordinates within that chunk.
type VoxelIndices struct {
	Chunk ChunkIndex
	Local [3]int
}

// GlobalCoords returns the voxel's coordinates in the object's global
// voxel grid (chunk-relative, not world-space).
func (vi VoxelIndices) GlobalCoords() [3]int {
	return [3]int{
		vi.Chunk[0]*ChunkSize + vi.Local[0],
		vi.Chunk[1]*ChunkSize + vi.Local[1],
		vi.Chunk[2]*ChunkSize + vi.Local[2],
	}
}

// globalToChunkLocal converts global voxel coordinates (which may be
// negative) to a chunk index plus local coordinates, using Euclidean
// (floor) division so negative coordinates wrap correctly, matching the
// teacher's XBrickMap.SetVoxel index computation.
func globalToChunkLocal(gx, gy, gz int) VoxelIndices {
	cx, lx := floorDivMod(gx, ChunkSize)
	cy, ly := floorDivMod(gy, ChunkSize)
	cz, lz := floorDivMod(gz, ChunkSize)
	return VoxelIndices{Chunk: ChunkIndex{cx, cy, cz}, Local: [3]int{lx, ly, lz}}
}

func floorDivMod(a, b int) (div, mod int) {
	div = a / b
	mod = a % b
	if mod < 0 {
		mod += b
		div--
	}
	return div, mod
}

// Vec3 is an alias used throughout the voxel package for world-space
// and local-space points/directions.
type Vec3 = mgl32.Vec3
