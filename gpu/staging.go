package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// StagingBelt batches small, frequently updated uniform writes into a
// single upload per frame rather than one queue write per uniform.
// Grounded on the spec's "staging belt ... one finish/recall pair per
// frame" requirement (§4.9); the teacher's GpuBufferManager instead
// writes uniforms directly via Queue.WriteBuffer, so this type adds
// the batching discipline the teacher never needed.
//
// Usage per frame: call Write for each small uniform update, call
// Finish once to flush the batch, then Recall once after the frame's
// submissions complete to make the belt available for reuse. Calling
// Finish or Recall more than once per frame without an intervening
// Write is a caller error.
type StagingBelt struct {
	queue     *wgpu.Queue
	pending   []pendingWrite
	finished  bool
	recalled  bool
	frameOpen bool
}

type pendingWrite struct {
	dst    *wgpu.Buffer
	offset uint64
	data   []byte
}

// NewStagingBelt creates a belt that writes through the given queue.
func NewStagingBelt(queue *wgpu.Queue) *StagingBelt {
	return &StagingBelt{queue: queue, recalled: true}
}

// Write queues a small write into dst at offset. The write is not
// submitted until Finish is called.
func (s *StagingBelt) Write(dst *Buffer, offset uint64, data []byte) {
	if !s.recalled {
		panic("gpu: StagingBelt.Write called before the previous frame's Recall")
	}
	s.frameOpen = true
	s.finished = false
	s.pending = append(s.pending, pendingWrite{dst: dst.Handle(), offset: offset, data: data})
}

// Finish flushes every queued write through the queue. Must be called
// at most once per frame, after all of that frame's Write calls.
func (s *StagingBelt) Finish() {
	if s.finished {
		panic("gpu: StagingBelt.Finish called twice in the same frame")
	}
	for _, w := range s.pending {
		s.queue.WriteBuffer(w.dst, w.offset, w.data)
	}
	s.finished = true
	s.recalled = false
}

// Recall clears the batch and makes the belt ready to accept writes
// for the next frame. Per the spec's concurrency model, this happens
// exactly once per frame, after the surface render submit.
func (s *StagingBelt) Recall() error {
	if s.frameOpen && !s.finished {
		return fmt.Errorf("gpu: StagingBelt.Recall called without a matching Finish")
	}
	s.pending = s.pending[:0]
	s.finished = false
	s.frameOpen = false
	s.recalled = true
	return nil
}
