package gpu

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
)

// TimingResult is one row of a loaded timing report: either a
// per-registered-span duration, or one of the two summary rows
// appended after every per-tag row.
type TimingResult struct {
	Tag      string
	Duration time.Duration
}

// TimestampQueryManager holds a GPU query set sized to a compile-time
// maximum timestamp count and the buffers used to resolve and read
// back recorded timestamps. Grounded precisely on
// impact_gpu/src/timestamp_query.rs's TimestampQueryManager, including
// its exact "Aggregate"/"Start to end" summary-row convention.
type TimestampQueryManager struct {
	device          *wgpu.Device
	queue           *wgpu.Queue
	maxTimestamps   uint32
	querySet        *wgpu.QuerySet
	resolveBuffer   *Buffer
	resultBuffer    *Buffer
	enabled         bool
	tags            []string
	nextBatchOffset uint64
	lastResults     []TimingResult
}

// NewTimestampQueryManager creates the query set and backing buffers
// for up to maxTimestamps timestamp writes (maxTimestamps/2 registered
// spans). When enabled is false the resources are still created, but
// registries created from this manager record no writes.
func NewTimestampQueryManager(device *wgpu.Device, queue *wgpu.Queue, maxTimestamps uint32, enabled bool) (*TimestampQueryManager, error) {
	if maxTimestamps == 0 {
		return nil, fmt.Errorf("gpu: maxTimestamps must be positive")
	}
	resolveBuffer, err := NewQueryBuffer(device, "Timestamp", maxTimestamps)
	if err != nil {
		return nil, err
	}
	resultBuffer, err := NewResultBuffer(device, "Timestamp", resolveBuffer.Capacity())
	if err != nil {
		return nil, err
	}
	querySet, err := device.CreateQuerySet(&wgpu.QuerySetDescriptor{
		Label: "Timestamp query set",
		Count: maxTimestamps,
		Type:  wgpu.QueryTypeTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create timestamp query set: %w", err)
	}
	return &TimestampQueryManager{
		device:        device,
		queue:         queue,
		maxTimestamps: maxTimestamps,
		querySet:      querySet,
		resolveBuffer: resolveBuffer,
		resultBuffer:  resultBuffer,
		enabled:       enabled,
	}, nil
}

// SetEnabled toggles whether registries record timestamp writes.
func (m *TimestampQueryManager) SetEnabled(enabled bool) { m.enabled = enabled }

// Reset clears all registered spans, ready for a new frame.
func (m *TimestampQueryManager) Reset() {
	m.resolveBuffer.SetValidLength(0)
	m.resultBuffer.SetValidLength(0)
	m.tags = m.tags[:0]
	m.nextBatchOffset = 0
}

// Registry hands out (2i, 2i+1) slot pairs for a batch of registered
// spans, to be finished once all spans in the batch have been
// recorded.
type TimestampQueryRegistry struct {
	manager               *TimestampQueryManager
	firstTimestampPairIdx uint32
}

// CreateRegistry starts a new batch, continuing from wherever the
// previous batch (since the last Reset) left off.
func (m *TimestampQueryManager) CreateRegistry() *TimestampQueryRegistry {
	return &TimestampQueryRegistry{manager: m, firstTimestampPairIdx: uint32(len(m.tags))}
}

// RegisterSpan reserves the next (2i, 2i+1) slot pair for tag and
// returns the begin/end write indices to pass to a render or compute
// pass descriptor's timestamp-writes field. Returns ok=false when the
// manager is disabled, in which case the caller should omit timestamp
// writes for this pass entirely.
func (r *TimestampQueryRegistry) RegisterSpan(tag string) (beginIdx, endIdx uint32, ok bool) {
	if !r.manager.enabled {
		return 0, 0, false
	}
	idx := uint32(len(r.manager.tags))
	if 2*idx+1 >= r.manager.maxTimestamps {
		panic(fmt.Sprintf("gpu: tried to write too many timestamps (max timestamps: %d)", r.manager.maxTimestamps))
	}
	r.manager.tags = append(r.manager.tags, tag)
	return 2 * idx, 2*idx + 1, true
}

// QuerySet returns the underlying query set, for use in pass
// descriptors.
func (m *TimestampQueryManager) QuerySet() *wgpu.QuerySet { return m.querySet }

// Finish resolves every span registered in this batch (since it was
// created) into the resolve buffer and copies the result into the
// running result buffer at the next free offset.
func (r *TimestampQueryRegistry) Finish(encoder *wgpu.CommandEncoder) {
	m := r.manager
	if !m.enabled || r.firstTimestampPairIdx >= uint32(len(m.tags)) {
		return
	}
	batchPairCount := uint32(len(m.tags)) - r.firstTimestampPairIdx
	batchQueryCount := 2 * batchPairCount
	rangeStart := 2 * r.firstTimestampPairIdx
	rangeEnd := rangeStart + batchQueryCount
	batchBytes := uint64(batchQueryCount) * querySize

	endOffset := m.nextBatchOffset + batchBytes

	encoder.ResolveQuerySet(m.querySet, rangeStart, rangeEnd, m.resolveBuffer.Handle(), 0)
	m.resolveBuffer.SetValidLength(batchBytes)

	encoder.CopyBufferToBuffer(m.resolveBuffer.Handle(), 0, m.resultBuffer.Handle(), m.nextBatchOffset, batchBytes)
	m.resultBuffer.SetValidLength(endOffset)

	m.nextBatchOffset = endOffset
}

// LoadRecordedTimingResults must be called after queue.Submit has run
// the frame's command buffers. It maps the result buffer, converts raw
// tick deltas into durations using the device's timestamp period, and
// appends "Aggregate" and "Start to end" summary rows after the
// per-tag rows. Results are available afterward via LastTimingResults.
func (m *TimestampQueryManager) LoadRecordedTimingResults() error {
	m.lastResults = m.lastResults[:0]
	if len(m.tags) == 0 {
		return nil
	}

	var mapErr error
	m.resultBuffer.Handle().MapAsync(wgpu.MapModeRead, 0, m.resultBuffer.ValidLength(), func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("gpu: mapping timestamp result buffer failed: %d", status)
		}
	})
	m.device.Poll(true, nil)
	if mapErr != nil {
		return mapErr
	}
	defer m.resultBuffer.Handle().Unmap()

	raw := m.resultBuffer.Handle().GetMappedRange(0, uint(m.resultBuffer.ValidLength()))
	ticks := make([]uint64, 2*len(m.tags))
	for i := range ticks {
		ticks[i] = binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
	}

	period := float64(m.queue.GetTimestampPeriod())
	m.lastResults = computeTimingResults(m.tags, ticks, period)
	return nil
}

// LastTimingResults returns the rows computed by the last call to
// LoadRecordedTimingResults.
func (m *TimestampQueryManager) LastTimingResults() []TimingResult { return m.lastResults }

// computeTimingResults is the pure arithmetic core of
// LoadRecordedTimingResults, split out so it can be tested without a
// real device: given the registered tags and their raw start/end tick
// pairs plus the device's timestamp period (nanoseconds per tick), it
// returns one duration row per tag followed by the two summary rows.
func computeTimingResults(tags []string, ticks []uint64, period float64) []TimingResult {
	if len(tags) == 0 {
		return nil
	}
	results := make([]TimingResult, 0, len(tags)+2)

	var aggregateNanos float64
	for i, tag := range tags {
		start, end := ticks[2*i], ticks[2*i+1]
		durNanos := period * float64(end-start)
		aggregateNanos += durNanos
		results = append(results, TimingResult{Tag: tag, Duration: time.Duration(durNanos)})
	}

	results = append(results, TimingResult{Tag: "Aggregate", Duration: time.Duration(aggregateNanos)})

	startToEndNanos := period * float64(ticks[len(ticks)-1]-ticks[0])
	results = append(results, TimingResult{Tag: "Start to end", Duration: time.Duration(startToEndNanos)})

	return results
}
