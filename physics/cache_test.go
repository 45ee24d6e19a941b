package physics

import "testing"

func TestClearPreparedFlagsResetsEveryEntry(t *testing.T) {
	cache := NewConstraintCache()
	e := cache.GetOrCreate(ContactID(1))
	e.WasPrepared = true

	cache.ClearPreparedFlags()

	got, ok := cache.Get(ContactID(1))
	if !ok || got.WasPrepared {
		t.Fatal("expected ClearPreparedFlags to reset WasPrepared")
	}
}

func TestPruneUnpreparedRemovesStaleEntries(t *testing.T) {
	cache := NewConstraintCache()
	stale := cache.GetOrCreate(ContactID(1))
	stale.WasPrepared = false

	fresh := cache.GetOrCreate(ContactID(2))
	fresh.WasPrepared = true

	cache.PruneUnprepared()

	if _, ok := cache.Get(ContactID(1)); ok {
		t.Fatal("expected unprepared entry to be pruned")
	}
	if _, ok := cache.Get(ContactID(2)); !ok {
		t.Fatal("expected prepared entry to survive pruning")
	}
}

func TestCanUseWarmImpulsesFromRequiresBothDotProductsStable(t *testing.T) {
	cached := PreparedContact{Normal: Vec3{0, 1, 0}, Tangent: Vec3{1, 0, 0}}
	stableFresh := PreparedContact{Normal: Vec3{0, 1, 0}, Tangent: Vec3{1, 0, 0}}
	if !canUseWarmImpulsesFrom(cached, stableFresh) {
		t.Fatal("expected identical normal/tangent to be reusable")
	}

	unstableFresh := PreparedContact{Normal: Vec3{1, 0, 0}, Tangent: Vec3{0, 1, 0}}
	if canUseWarmImpulsesFrom(cached, unstableFresh) {
		t.Fatal("expected orthogonal normal/tangent to reject warm-impulse reuse")
	}
}

func TestContactIDFromTwoU32AndIndicesDiffersPerIndex(t *testing.T) {
	a := NewContactIDFromTwoU32AndIndices(1, 2, 3)
	b := NewContactIDFromTwoU32AndIndices(1, 2, 4)
	if a == b {
		t.Fatal("expected different feature indices to produce different contact ids")
	}
}
