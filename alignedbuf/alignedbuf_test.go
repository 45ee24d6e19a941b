package alignedbuf

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasAlignmentOf(b *Buffer, alignment Alignment) bool {
	if b.Capacity() == 0 {
		return true
	}
	return alignment.IsAligned(uint(uintptr(b.AsPtr())))
}

func TestNewAlignmentValidation(t *testing.T) {
	for _, x := range []uint{1, 2, 4, 8, 16, 1024} {
		a, err := NewAlignment(x)
		require.NoError(t, err)
		assert.Equal(t, x, a.Get())
	}

	for _, x := range []uint{0, 3, 5, 6, 7, 9, 100} {
		_, err := NewAlignment(x)
		assert.Error(t, err)
	}
}

func TestEmptyBufferIsDanglingButAligned(t *testing.T) {
	b := New(AlignSixteen)
	assert.Equal(t, 0, b.Capacity())
	assert.Equal(t, 0, b.Len())
	assert.True(t, b.IsEmpty())
	assert.True(t, hasAlignmentOf(b, AlignSixteen))
}

func TestWithCapacityIsAligned(t *testing.T) {
	for _, alignment := range []Alignment{AlignOne, AlignTwo, AlignFour, AlignEight, AlignSixteen} {
		b := WithCapacity(alignment, 37)
		assert.GreaterOrEqual(t, b.Capacity(), 37)
		assert.True(t, hasAlignmentOf(b, alignment))
	}
}

func TestCopiedFromSlicePreservesContent(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5}
	b := CopiedFromSlice(AlignEight, src)
	assert.Equal(t, src, b.AsSlice())
	assert.True(t, hasAlignmentOf(b, AlignEight))
}

func TestExtendFromSliceGrows(t *testing.T) {
	b := New(AlignFour)
	b.ExtendFromSlice([]byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2, 3}, b.AsSlice())
	b.ExtendFromSlice([]byte{4, 5})
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, b.AsSlice())
}

func TestReserveDoublingPolicy(t *testing.T) {
	b := WithCapacity(AlignFour, 8)
	oldCap := b.Capacity()
	b.ExtendFromSlice(make([]byte, oldCap+1))
	assert.GreaterOrEqual(t, b.Capacity(), 2*oldCap)
}

func TestTruncateThenResizeRoundTrip(t *testing.T) {
	b := New(AlignFour)
	b.Resize(10, 0xAB)
	require.Equal(t, 10, b.Len())
	for _, v := range b.AsSlice() {
		assert.Equal(t, byte(0xAB), v)
	}

	b.Truncate(5)
	assert.Equal(t, 5, b.Len())

	b.Resize(10, 0)
	assert.Equal(t, 10, b.Len())
}

func TestResizeThenTruncateReturnsToOriginalLength(t *testing.T) {
	b := CopiedFromSlice(AlignFour, []byte{1, 2, 3})
	n := b.Len()
	b.Resize(n+20, 0x7)
	b.Truncate(n)
	assert.Equal(t, n, b.Len())
	assert.Equal(t, []byte{1, 2, 3}, b.AsSlice())
}

func TestCloneRoundTrip(t *testing.T) {
	b := CopiedFromSlice(AlignEight, []byte{9, 8, 7, 6})
	clone := b.Clone()
	assert.True(t, b.Equal(clone))
	clone.AsMutSlice()[0] = 0
	assert.NotEqual(t, b.AsSlice()[0], clone.AsSlice()[0])
}

func TestCloneOfEmptyIsDangling(t *testing.T) {
	b := New(AlignSixteen)
	clone := b.Clone()
	assert.Equal(t, 0, clone.Capacity())
}

func TestEqualIgnoresCapacity(t *testing.T) {
	a := WithCapacity(AlignFour, 64)
	a.ExtendFromSlice([]byte{1, 2, 3})
	b := CopiedFromSlice(AlignFour, []byte{1, 2, 3})
	assert.NotEqual(t, a.Capacity(), b.Capacity())
	assert.True(t, a.Equal(b))
}

func TestAlignmentOf(t *testing.T) {
	assert.Equal(t, Alignment(unsafe.Alignof(uint64(0))), Of[uint64]())
}
