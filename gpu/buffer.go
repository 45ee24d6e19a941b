// Package gpu wraps the graphics-device resources that back the render
// pipeline: typed GPU buffers, a staging belt, the render-resource
// synchronizer, the geometry pass, the timestamp query manager, and the
// material/instance feature store. Grounded on the teacher's
// voxelrt/rt/gpu package (buffer lifecycle, SlotAllocator) and on the
// original engine's impact_gpu/impact_rendering crates for the pieces
// the teacher never needed (timestamp queries, fingerprint-bucketed
// pipelines, per-instance feature columns).
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// BufferType names one of the seven buffer kinds named in the spec.
// Each carries its own base usage flags; CopyDst/CopySrc are always
// added so a buffer can be resized and staged into.
type BufferType int

const (
	BufferTypeVertex BufferType = iota
	BufferTypeIndex
	BufferTypeUniform
	BufferTypeStorage
	BufferTypeQuery
	BufferTypeIndirect
	BufferTypeReadback
)

func (t BufferType) usage() wgpu.BufferUsage {
	switch t {
	case BufferTypeVertex:
		return wgpu.BufferUsageVertex
	case BufferTypeIndex:
		return wgpu.BufferUsageIndex
	case BufferTypeUniform:
		return wgpu.BufferUsageUniform
	case BufferTypeStorage:
		return wgpu.BufferUsageStorage
	case BufferTypeQuery:
		return wgpu.BufferUsageQueryResolve
	case BufferTypeIndirect:
		return wgpu.BufferUsageIndirect
	case BufferTypeReadback:
		return wgpu.BufferUsageMapRead
	default:
		panic(fmt.Sprintf("gpu: unknown buffer type %d", t))
	}
}

func (t BufferType) String() string {
	switch t {
	case BufferTypeVertex:
		return "vertex"
	case BufferTypeIndex:
		return "index"
	case BufferTypeUniform:
		return "uniform"
	case BufferTypeStorage:
		return "storage"
	case BufferTypeQuery:
		return "query"
	case BufferTypeIndirect:
		return "indirect"
	case BufferTypeReadback:
		return "readback"
	default:
		return "unknown"
	}
}

// growthFactor matches the teacher's ensureBuffer 1.5x geometric growth
// policy, applied when an existing buffer's backing store is replaced
// by a larger one rather than when a buffer is first created.
const growthFactor = 1.5

// Buffer is a typed GPU buffer carrying (capacity, valid_length, label,
// usage flags) as named in the spec. Capacity is the backing store's
// byte size; ValidLength is how much of it holds meaningful data.
// Updating a buffer whose new data exceeds capacity allocates a new
// backing store rather than growing the old one in place, since wgpu
// buffers cannot be resized.
type Buffer struct {
	Type        BufferType
	Label       string
	handle      *wgpu.Buffer
	capacity    uint64
	validLength uint64
	usage       wgpu.BufferUsage
}

// NewBuffer creates a buffer of the given type and initial capacity in
// bytes. The initial valid length is zero.
func NewBuffer(device *wgpu.Device, t BufferType, label string, initialCapacity uint64) (*Buffer, error) {
	usage := t.usage() | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	if initialCapacity == 0 {
		initialCapacity = 4
	}
	handle, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             initialCapacity,
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s buffer %q: %w", t, label, err)
	}
	return &Buffer{
		Type:     t,
		Label:    label,
		handle:   handle,
		capacity: initialCapacity,
		usage:    usage,
	}, nil
}

// Handle returns the underlying wgpu buffer.
func (b *Buffer) Handle() *wgpu.Buffer { return b.handle }

// Capacity returns the backing store's byte size.
func (b *Buffer) Capacity() uint64 { return b.capacity }

// ValidLength returns how many bytes of the backing store currently
// hold meaningful data.
func (b *Buffer) ValidLength() uint64 { return b.validLength }

// SetValidLength records how much of the buffer is currently valid,
// without touching the backing store. Used after a partial write (e.g.
// a query resolve) that doesn't go through Write.
func (b *Buffer) SetValidLength(n uint64) {
	if n > b.capacity {
		panic(fmt.Sprintf("gpu: valid length %d exceeds capacity %d for buffer %q", n, b.capacity, b.Label))
	}
	b.validLength = n
}

// EnsureCapacityFor grows the backing store, replacing the old handle,
// if n bytes would exceed the current capacity. Reports whether a new
// backing store was allocated. Existing contents are not preserved;
// callers that need to preserve data across a resize must re-upload
// after this call.
func (b *Buffer) EnsureCapacityFor(device *wgpu.Device, n uint64) (bool, error) {
	if n <= b.capacity {
		return false, nil
	}
	newCapacity := uint64(float64(b.capacity) * growthFactor)
	if newCapacity < n {
		newCapacity = n
	}
	handle, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            b.Label,
		Size:             newCapacity,
		Usage:            b.usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return false, fmt.Errorf("gpu: resize %s buffer %q to %d bytes: %w", b.Type, b.Label, newCapacity, err)
	}
	b.handle = handle
	b.capacity = newCapacity
	b.validLength = 0
	return true, nil
}

// Write uploads data via the queue, growing the backing store first if
// necessary. Reports whether the backing store was replaced.
func (b *Buffer) Write(device *wgpu.Device, queue *wgpu.Queue, data []byte) (bool, error) {
	recreated, err := b.EnsureCapacityFor(device, uint64(len(data)))
	if err != nil {
		return false, err
	}
	queue.WriteBuffer(b.handle, 0, data)
	b.validLength = uint64(len(data))
	return recreated, nil
}

// querySize is the byte size of one resolved timestamp query result
// (a single u64 tick count), per the WebGPU timestamp query spec.
const querySize = 8

// NewQueryBuffer creates a query-resolve buffer sized for n timestamp
// queries, each querySize bytes, per impact_gpu/timestamp_query.rs's
// GPUBuffer::new_query_buffer.
func NewQueryBuffer(device *wgpu.Device, label string, n uint32) (*Buffer, error) {
	return NewBuffer(device, BufferTypeQuery, label, uint64(n)*querySize)
}

// NewResultBuffer creates a CPU-readable result buffer of the given
// byte size, per GPUBuffer::new_result_buffer.
func NewResultBuffer(device *wgpu.Device, label string, size uint64) (*Buffer, error) {
	return NewBuffer(device, BufferTypeReadback, label, size)
}
