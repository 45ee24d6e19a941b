package gpu

// SlotAllocator hands out stable indices into a packed GPU-side array,
// preferring a released slot over growing the tail. Grounded on
// voxelrt/rt/gpu/manager.go's SlotAllocator, originally used to pack
// voxel sectors and bricks; generalized here to any per-instance
// feature array in the material/instance feature store.
type SlotAllocator struct {
	Tail uint32
	Free []uint32
}

// Alloc returns a free slot if one has been released, otherwise grows
// the tail by one and returns the new index.
func (a *SlotAllocator) Alloc() uint32 {
	if n := len(a.Free); n > 0 {
		idx := a.Free[n-1]
		a.Free = a.Free[:n-1]
		return idx
	}
	idx := a.Tail
	a.Tail++
	return idx
}

// FreeSlot releases idx back to the free list for reuse by a later
// Alloc call.
func (a *SlotAllocator) FreeSlot(idx uint32) {
	a.Free = append(a.Free, idx)
}

// Len reports how many slots are currently allocated (tail minus free
// count).
func (a *SlotAllocator) Len() uint32 {
	return a.Tail - uint32(len(a.Free))
}
