// Package resource provides a generic handle/slot-map container with a
// change-log and a monotone revision counter, grounded on the
// ResourceRegistry type in the original engine's impact_resource crate.
package resource

import "sort"

// DirtyMask is the bitflag constraint a resource's dirty-mask type must
// satisfy: the registry needs to know whether a mask is empty to decide
// whether a Modified change is worth recording.
type DirtyMask interface {
	comparable
	IsEmpty() bool
}

// Handle is an opaque identifier for a registry slot. Handles are never
// reused after removal: a handle removed then re-issued is a fresh
// value.
type Handle uint64

// ChangeKind classifies one changelog entry.
type ChangeKind int

const (
	Inserted ChangeKind = iota
	Removed
	Modified
)

// Change is one append-only changelog entry.
type Change[M DirtyMask] struct {
	Handle     Handle
	Kind       ChangeKind
	DirtyMask  M // only meaningful when Kind == Modified
	Revision   uint64
}

// Registry maps opaque handles to resource values of type R, tracking
// mutations in a revision-ordered changelog.
type Registry[R any, M DirtyMask] struct {
	slots     map[Handle]R
	changelog []Change[M]
	revision  uint64
	nextID    uint64
}

// New creates an empty registry.
func New[R any, M DirtyMask]() *Registry[R, M] {
	return &Registry[R, M]{
		slots: make(map[Handle]R),
	}
}

// Len returns the number of live resources.
func (r *Registry[R, M]) Len() int { return len(r.slots) }

// IsEmpty reports whether the registry holds no resources.
func (r *Registry[R, M]) IsEmpty() bool { return len(r.slots) == 0 }

// Revision returns the current monotone revision counter.
func (r *Registry[R, M]) Revision() uint64 { return r.revision }

// Contains reports whether handle currently names a live resource.
func (r *Registry[R, M]) Contains(handle Handle) bool {
	_, ok := r.slots[handle]
	return ok
}

// Get returns the resource for handle, and whether it was found.
func (r *Registry[R, M]) Get(handle Handle) (R, bool) {
	v, ok := r.slots[handle]
	return v, ok
}

// Insert adds value to the registry, appends an Inserted change, and
// returns the handle assigned to it.
func (r *Registry[R, M]) Insert(value R) Handle {
	handle := Handle(r.nextID)
	r.nextID++
	r.slots[handle] = value
	r.pushChange(Change[M]{Handle: handle, Kind: Inserted})
	return handle
}

// Remove deletes the resource named by handle, appending a Removed
// change iff it was present. Returns whether it was present.
func (r *Registry[R, M]) Remove(handle Handle) bool {
	if _, ok := r.slots[handle]; !ok {
		return false
	}
	delete(r.slots, handle)
	r.pushChange(Change[M]{Handle: handle, Kind: Removed})
	return true
}

// MutGuard wraps a mutable reference to a registry resource. The
// caller must call SetDirtyMask (with the combined mask of the
// attributes it mutated) and then Close; Close appends a Modified change and advances the
// revision only if the accumulated mask is non-empty. This is the Go
// translation of the Rust guard's Drop behavior: Go has no destructors,
// so the caller closes explicitly.
type MutGuard[R any, M DirtyMask] struct {
	registry  *Registry[R, M]
	handle    Handle
	value     R
	dirtyMask M
	closed    bool
}

// GetMut returns a mutable guard for handle, or false if absent.
func (r *Registry[R, M]) GetMut(handle Handle) (*MutGuard[R, M], bool) {
	v, ok := r.slots[handle]
	if !ok {
		return nil, false
	}
	return &MutGuard[R, M]{registry: r, handle: handle, value: v}, true
}

// Value returns the wrapped resource for direct mutation by the caller.
func (g *MutGuard[R, M]) Value() *R { return &g.value }

// SetDirtyMask replaces the guard's dirty mask with mask; it does not
// OR into an earlier mask, since DirtyMask is a type parameter with no
// bitwise-or operator in Go's generics. Callers that mutated several
// attributes pass the already-combined mask.
func (g *MutGuard[R, M]) SetDirtyMask(mask M) {
	g.dirtyMask = mask
}

// Close writes the (possibly mutated) value back, and if the dirty
// mask is non-empty, appends a Modified change and advances the
// revision. Close must be called exactly once per guard.
func (g *MutGuard[R, M]) Close() {
	if g.closed {
		return
	}
	g.closed = true
	g.registry.slots[g.handle] = g.value
	if !g.dirtyMask.IsEmpty() {
		g.registry.pushChange(Change[M]{
			Handle:    g.handle,
			Kind:      Modified,
			DirtyMask: g.dirtyMask,
		})
	}
}

// Iter calls fn for every live (handle, resource) pair. Iteration order
// is unspecified, matching a map-backed slot store.
func (r *Registry[R, M]) Iter(fn func(Handle, R)) {
	for h, v := range r.slots {
		fn(h, v)
	}
}

func (r *Registry[R, M]) pushChange(c Change[M]) {
	c.Revision = r.revision
	r.changelog = append(r.changelog, c)
	r.revision++
}

// idxOfFirstChangeSinceRevision returns the index of the first
// changelog entry whose Revision >= rev, using binary search since the
// changelog is revision-sorted by construction (Go's sort.Search is the
// equivalent of Rust's slice::partition_point).
func (r *Registry[R, M]) idxOfFirstChangeSinceRevision(rev uint64) int {
	return sort.Search(len(r.changelog), func(i int) bool {
		return r.changelog[i].Revision >= rev
	})
}

// ChangesSince returns the changelog entries with Revision >= rev, in
// append order. The returned slice aliases the registry's internal
// storage and must not be retained across further mutation.
func (r *Registry[R, M]) ChangesSince(rev uint64) []Change[M] {
	idx := r.idxOfFirstChangeSinceRevision(rev)
	return r.changelog[idx:]
}

// DrainChangesSince removes and returns the changelog entries with
// Revision >= rev; entries with Revision < rev are preserved.
func (r *Registry[R, M]) DrainChangesSince(rev uint64) []Change[M] {
	idx := r.idxOfFirstChangeSinceRevision(rev)
	drained := append([]Change[M](nil), r.changelog[idx:]...)
	r.changelog = r.changelog[:idx]
	return drained
}
