package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dirtyBits uint32

func (d dirtyBits) IsEmpty() bool { return d == 0 }

const dirtyAll dirtyBits = ^dirtyBits(0)

type widget struct {
	Name string
}

func TestInsertRemoveRevisionAdvancesByTwo(t *testing.T) {
	reg := New[widget, dirtyBits]()

	r := reg.Revision()
	h := reg.Insert(widget{Name: "a"})
	reg.Remove(h)

	assert.Equal(t, r+2, reg.Revision())
	assert.False(t, reg.Contains(h))

	changes := reg.ChangesSince(r)
	require.Len(t, changes, 2)
	assert.Equal(t, Inserted, changes[0].Kind)
	assert.Equal(t, h, changes[0].Handle)
	assert.Equal(t, Removed, changes[1].Kind)
	assert.Equal(t, h, changes[1].Handle)
}

func TestChangelogComplexScenario(t *testing.T) {
	reg := New[widget, dirtyBits]()

	ha := reg.Insert(widget{Name: "A"})
	hb := reg.Insert(widget{Name: "B"})

	guard, ok := reg.GetMut(ha)
	require.True(t, ok)
	guard.Value().Name = "A-modified"
	guard.SetDirtyMask(dirtyAll)
	guard.Close()

	reg.Remove(hb)

	assert.Equal(t, uint64(4), reg.Revision())

	drained := reg.DrainChangesSince(0)
	require.Len(t, drained, 4)
	assert.Equal(t, Inserted, drained[0].Kind)
	assert.Equal(t, ha, drained[0].Handle)
	assert.Equal(t, Inserted, drained[1].Kind)
	assert.Equal(t, hb, drained[1].Handle)
	assert.Equal(t, Modified, drained[2].Kind)
	assert.Equal(t, ha, drained[2].Handle)
	assert.Equal(t, dirtyAll, drained[2].DirtyMask)
	assert.Equal(t, Removed, drained[3].Kind)
	assert.Equal(t, hb, drained[3].Handle)

	assert.Empty(t, reg.ChangesSince(0))
}

func TestModifyWithEmptyMaskProducesNoChange(t *testing.T) {
	reg := New[widget, dirtyBits]()
	h := reg.Insert(widget{Name: "a"})
	r := reg.Revision()

	guard, ok := reg.GetMut(h)
	require.True(t, ok)
	guard.Value().Name = "mutated, but undeclared"
	guard.Close()

	assert.Equal(t, r, reg.Revision())
	assert.Empty(t, reg.ChangesSince(r))

	v, _ := reg.Get(h)
	assert.Equal(t, "mutated, but undeclared", v.Name)
}

func TestChangesSincePreservesEarlierEntries(t *testing.T) {
	reg := New[widget, dirtyBits]()
	h1 := reg.Insert(widget{Name: "1"})
	mid := reg.Revision()
	h2 := reg.Insert(widget{Name: "2"})

	drained := reg.DrainChangesSince(mid)
	require.Len(t, drained, 1)
	assert.Equal(t, h2, drained[0].Handle)

	remaining := reg.ChangesSince(0)
	require.Len(t, remaining, 1)
	assert.Equal(t, h1, remaining[0].Handle)
}

func TestRemovedHandleIsNeverReissued(t *testing.T) {
	reg := New[widget, dirtyBits]()
	h1 := reg.Insert(widget{Name: "1"})
	reg.Remove(h1)
	h2 := reg.Insert(widget{Name: "2"})
	assert.NotEqual(t, h1, h2)
}
