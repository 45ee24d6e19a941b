package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Range is a half-open [Start, End) span, used both for instance
// ranges drawn by the geometry pass and for per-feature initial
// ranges in the instance feature store.
type Range struct {
	Start uint32
	End   uint32
}

// IsEmpty reports whether the range spans no instances.
func (r Range) IsEmpty() bool { return r.End <= r.Start }

// Len returns the number of instances the range spans.
func (r Range) Len() uint32 {
	if r.IsEmpty() {
		return 0
	}
	return r.End - r.Start
}

func float32ToBytes(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func float32PairToBytes(v [2]float32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(v[1]))
	return b
}

func uint32ToBytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// DebugLabel composes a human-readable GPU object label with a unique
// suffix, so distinct buffers or pipelines sharing a logical name (the
// same feature column name reused across models, the same fingerprint
// compiled more than once during a hot reload) stay distinguishable in
// a GPU debugger or validation layer's diagnostic output. Grounded on
// mod_assets.go's makeAssetId, which tags every loaded mesh/material
// with a fresh uuid.NewString() rather than a name the caller supplies.
func DebugLabel(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
