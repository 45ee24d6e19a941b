package engine

import (
	"testing"
	"time"
)

func TestTickRunsExactlyOneFixedStepWhenFrameTimeMatchesIt(t *testing.T) {
	step := 16 * time.Millisecond
	fixedCalls := 0
	dynamicCalls := 0

	loop := NewLoop(step, 8,
		func(dt time.Duration) error {
			fixedCalls++
			if dt != step {
				t.Fatalf("expected fixed dt %v, got %v", step, dt)
			}
			return nil
		},
		func(frameTime time.Duration, frame uint64) error {
			dynamicCalls++
			return nil
		},
	)

	if err := loop.Tick(step); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixedCalls != 1 {
		t.Fatalf("expected exactly 1 fixed update, got %d", fixedCalls)
	}
	if dynamicCalls != 1 {
		t.Fatalf("expected exactly 1 dynamic update, got %d", dynamicCalls)
	}
}

func TestTickRunsZeroFixedStepsWhenFrameTimeIsShort(t *testing.T) {
	step := 16 * time.Millisecond
	fixedCalls := 0

	loop := NewLoop(step, 8,
		func(dt time.Duration) error { fixedCalls++; return nil },
		func(frameTime time.Duration, frame uint64) error { return nil },
	)

	if err := loop.Tick(5 * time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixedCalls != 0 {
		t.Fatalf("expected 0 fixed updates for a short frame, got %d", fixedCalls)
	}
}

func TestTickCarriesLeftoverTimeAcrossFrames(t *testing.T) {
	step := 10 * time.Millisecond
	fixedCalls := 0

	loop := NewLoop(step, 8,
		func(dt time.Duration) error { fixedCalls++; return nil },
		func(frameTime time.Duration, frame uint64) error { return nil },
	)

	loop.Tick(6 * time.Millisecond) // accumulated = 6ms, 0 steps
	if fixedCalls != 0 {
		t.Fatalf("expected 0 fixed updates after first short frame, got %d", fixedCalls)
	}
	loop.Tick(6 * time.Millisecond) // accumulated = 12ms, 1 step, 2ms left over
	if fixedCalls != 1 {
		t.Fatalf("expected 1 fixed update once accumulated time crosses the step, got %d", fixedCalls)
	}
}

func TestTickCapsFixedStepsAtMaxStepsAndDropsExcessAccumulation(t *testing.T) {
	step := time.Millisecond
	fixedCalls := 0

	loop := NewLoop(step, 4,
		func(dt time.Duration) error { fixedCalls++; return nil },
		func(frameTime time.Duration, frame uint64) error { return nil },
	)

	if err := loop.Tick(100 * time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixedCalls != 4 {
		t.Fatalf("expected fixed updates capped at maxSteps=4, got %d", fixedCalls)
	}

	// The huge backlog from the first tick must have been dropped, not
	// carried forward into a second runaway catch-up burst.
	fixedCalls = 0
	if err := loop.Tick(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixedCalls != 0 {
		t.Fatalf("expected no leftover accumulation after hitting the step cap, got %d fixed updates", fixedCalls)
	}
}

func TestTickAdvancesFrameCounterMonotonically(t *testing.T) {
	step := time.Millisecond
	loop := NewLoop(step, 4,
		func(dt time.Duration) error { return nil },
		func(frameTime time.Duration, frame uint64) error { return nil },
	)

	for i := uint64(0); i < 5; i++ {
		if loop.Frame() != i {
			t.Fatalf("expected frame counter %d before tick %d, got %d", i, i, loop.Frame())
		}
		if err := loop.Tick(step); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if loop.Frame() != 5 {
		t.Fatalf("expected frame counter 5 after 5 ticks, got %d", loop.Frame())
	}
}

func TestTickPropagatesFixedUpdateErrorWithoutRunningDynamicUpdate(t *testing.T) {
	step := time.Millisecond
	dynamicCalls := 0
	wantErr := errBoom

	loop := NewLoop(step, 4,
		func(dt time.Duration) error { return wantErr },
		func(frameTime time.Duration, frame uint64) error { dynamicCalls++; return nil },
	)

	if err := loop.Tick(step); err != wantErr {
		t.Fatalf("expected fixed update error to propagate, got %v", err)
	}
	if dynamicCalls != 0 {
		t.Fatalf("expected dynamic update to be skipped after a fixed update error, got %d calls", dynamicCalls)
	}
	if loop.Frame() != 0 {
		t.Fatalf("expected frame counter to stay at 0 after an error, got %d", loop.Frame())
	}
}

var errBoom = fixedUpdateTestError("boom")

type fixedUpdateTestError string

func (e fixedUpdateTestError) Error() string { return string(e) }
