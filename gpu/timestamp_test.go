package gpu

import "testing"

func TestComputeTimingResultsAppendsAggregateAndStartToEndAfterPerTagRows(t *testing.T) {
	tags := []string{"shadow", "geometry"}
	// shadow: 100 -> 150 ticks, geometry: 150 -> 400 ticks.
	ticks := []uint64{100, 150, 150, 400}
	period := 1.0 // 1 ns per tick, for simple arithmetic

	results := computeTimingResults(tags, ticks, period)

	if len(results) != 4 {
		t.Fatalf("expected 2 per-tag rows + 2 summary rows, got %d", len(results))
	}
	if results[0].Tag != "shadow" || results[0].Duration != 50 {
		t.Fatalf("unexpected shadow row: %+v", results[0])
	}
	if results[1].Tag != "geometry" || results[1].Duration != 250 {
		t.Fatalf("unexpected geometry row: %+v", results[1])
	}
	if results[2].Tag != "Aggregate" || results[2].Duration != 300 {
		t.Fatalf("expected Aggregate row summing per-tag durations, got %+v", results[2])
	}
	if results[3].Tag != "Start to end" || results[3].Duration != 300 {
		t.Fatalf("expected Start to end row spanning first to last tick, got %+v", results[3])
	}
}

func TestComputeTimingResultsEmptyTagsYieldsNoResults(t *testing.T) {
	if got := computeTimingResults(nil, nil, 1.0); got != nil {
		t.Fatalf("expected nil results for no registered tags, got %v", got)
	}
}

func TestComputeTimingResultsAggregateDiffersFromStartToEndWithGaps(t *testing.T) {
	// Two spans with a gap between them: aggregate sums only the spans'
	// own durations, start-to-end spans the full first-to-last range.
	tags := []string{"a", "b"}
	ticks := []uint64{0, 10, 50, 60}
	period := 2.0

	results := computeTimingResults(tags, ticks, period)

	aggregate := results[2]
	startToEnd := results[3]
	if aggregate.Duration != 40 { // (10 + 10) * 2
		t.Fatalf("expected aggregate duration 40, got %v", aggregate.Duration)
	}
	if startToEnd.Duration != 120 { // (60 - 0) * 2
		t.Fatalf("expected start-to-end duration 120, got %v", startToEnd.Duration)
	}
}

func TestRegisterSpanPanicsWhenExceedingMaxTimestamps(t *testing.T) {
	m := &TimestampQueryManager{maxTimestamps: 2, enabled: true}
	r := m.CreateRegistry()

	if _, _, ok := r.RegisterSpan("first"); !ok {
		t.Fatal("expected first span to register")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic registering a second span when only one pair fits")
		}
	}()
	r.RegisterSpan("second")
}

func TestRegisterSpanNoOpWhenDisabled(t *testing.T) {
	m := &TimestampQueryManager{maxTimestamps: 2, enabled: false}
	r := m.CreateRegistry()

	if _, _, ok := r.RegisterSpan("ignored"); ok {
		t.Fatal("expected disabled manager to register no writes")
	}
	if len(m.tags) != 0 {
		t.Fatal("expected no tags recorded while disabled")
	}
}
