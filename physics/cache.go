package physics

// BodyPairConstraint is one cached constraint entry: the two bodies it
// references, its prepared (frame-invariant) quantities, its running
// accumulated impulses, and whether it was re-prepared this frame.
type BodyPairConstraint struct {
	BodyAIndex BodyIndex
	BodyBIndex BodyIndex

	Prepared            PreparedContact
	AccumulatedImpulses ContactImpulses

	WasPrepared bool
}

// ConstraintCache is a keyed map from constraint id (contact or joint)
// to its cached body-pair record, letting accumulated impulses survive
// across frames for warm-starting, grounded on the teacher's
// map-based cache idiom generalized to the prepared-contact shape from
// contact.rs/solver.rs.
type ConstraintCache struct {
	entries map[ContactID]*BodyPairConstraint
}

// NewConstraintCache creates an empty cache.
func NewConstraintCache() *ConstraintCache {
	return &ConstraintCache{entries: make(map[ContactID]*BodyPairConstraint)}
}

// ClearPreparedFlags marks every cached entry as not-yet-prepared for
// the current frame, ahead of the prepare pass (step 1 of the
// per-frame sequence).
func (c *ConstraintCache) ClearPreparedFlags() {
	for _, e := range c.entries {
		e.WasPrepared = false
	}
}

// Get returns the cached entry for id, if present.
func (c *ConstraintCache) Get(id ContactID) (*BodyPairConstraint, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// GetOrCreate returns the cached entry for id, creating an empty one
// (WasPrepared false, zero accumulated impulses) if absent.
func (c *ConstraintCache) GetOrCreate(id ContactID) *BodyPairConstraint {
	e, ok := c.entries[id]
	if !ok {
		e = &BodyPairConstraint{}
		c.entries[id] = e
	}
	return e
}

// PruneUnprepared removes every cached entry not marked prepared this
// frame (step 3 of the per-frame sequence): constraints whose contact
// or joint no longer exists lose their warm-start history.
func (c *ConstraintCache) PruneUnprepared() {
	for id, e := range c.entries {
		if !e.WasPrepared {
			delete(c.entries, id)
		}
	}
}

// Len returns the number of cached constraints.
func (c *ConstraintCache) Len() int { return len(c.entries) }

// canUseWarmImpulsesFrom reports whether a cached entry's prepared
// normal and tangent remain close enough to newly computed ones to
// safely reuse its accumulated impulses, grounded precisely on
// can_use_warm_impulses_from in contact.rs: both dot products must
// exceed 1 - 1e-2.
func canUseWarmImpulsesFrom(cached, fresh PreparedContact) bool {
	const stabilityThreshold = 1 - 1e-2

	normalDot := cached.Normal.Dot(fresh.Normal)
	tangentDot := cached.Tangent.Dot(fresh.Tangent)
	return normalDot > stabilityThreshold && tangentDot > stabilityThreshold
}
