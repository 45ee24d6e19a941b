package physics

import "math"

// SolverConfig holds the constraint solver's tunable defaults,
// grounded precisely on the configuration block in solver.rs.
type SolverConfig struct {
	Enabled bool `yaml:"enabled"`

	VelocityIterations   int     `yaml:"velocity_iterations"`
	PositionalIterations int     `yaml:"positional_iterations"`
	PositionalFactor     float32 `yaml:"positional_factor"` // β
	WarmImpulseWeight    float32 `yaml:"warm_impulse_weight"`
}

// DefaultSolverConfig returns the configuration's documented defaults.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Enabled:              true,
		VelocityIterations:   8,
		PositionalIterations: 3,
		PositionalFactor:     0.2,
		WarmImpulseWeight:    0.4,
	}
}

// frictionSlipSpeedThresholdSquared gates which friction coefficient
// (static vs dynamic) a prepared contact uses, based on the squared
// pre-solve relative tangential speed, grounded on the `1e-4` constant
// used in contact.rs's prepare step (the spec's relative-speed
// threshold of `1e-2`, squared).
const frictionSlipSpeedThresholdSquared = 1e-4

// Solver runs the sequential-impulse velocity and positional phases
// over a set of prepared constraints each frame, grounded precisely on
// the seven-step sequence in solver.rs.
type Solver struct {
	Config SolverConfig
	Cache  *ConstraintCache
}

// NewSolver creates a solver with the given configuration and a fresh
// constraint cache.
func NewSolver(config SolverConfig) *Solver {
	return &Solver{Config: config, Cache: NewConstraintCache()}
}

// ManifoldSource supplies the active contact manifolds for one frame;
// the contact generator is the production implementation.
type ManifoldSource interface {
	ActiveManifolds() []ContactManifold
}

// PrepareInput is everything prepare needs for one contact: the two
// bodies' current snapshots and their indices in the body list.
type PrepareInput struct {
	BodyAIndex BodyIndex
	BodyBIndex BodyIndex
	BodyA      *ConstrainedBody
	BodyB      *ConstrainedBody
}

// Solve runs the full seven-step per-frame sequence: clearing prepared
// flags, preparing every active contact (with warm-start reuse),
// pruning stale cache entries, then the velocity and positional solve
// passes over bodies. bodies is indexed by BodyIndex and mutated in
// place; bodyFor resolves a manifold's collidable ids to body indices
// and current snapshots.
func (s *Solver) Solve(manifolds []ContactManifold, bodies []*ConstrainedBody, bodyFor func(CollidableID) (BodyIndex, bool)) {
	if !s.Config.Enabled {
		return
	}

	// Step 1: clear prepared-body list but retain per-constraint caches.
	s.Cache.ClearPreparedFlags()

	// Step 2: prepare every active contact.
	for _, manifold := range manifolds {
		idxA, okA := bodyFor(manifold.BodyA)
		idxB, okB := bodyFor(manifold.BodyB)
		if !okA || !okB {
			continue
		}
		if idxA == idxB {
			panic("physics: a constraint must not reference the same body on both sides")
		}

		for _, cwid := range manifold.Contacts {
			s.prepare(cwid, idxA, idxB, bodies[idxA], bodies[idxB])
		}
	}

	// Step 3: prune cached constraints not prepared this frame.
	s.Cache.PruneUnprepared()

	// Step 5 (step 4, synchronizing snapshot velocities, is the
	// caller's responsibility before invoking Solve: bodies is already
	// expected to hold post-integration velocities).
	s.applyWarmImpulses(bodies)
	s.velocityPhase(bodies)

	// Step 6.
	s.positionalPhase(bodies)

	// Step 7: writing snapshots back to the rigid-body manager is the
	// caller's responsibility; bodies was mutated in place.
}

func (s *Solver) prepare(cwid ContactWithID, idxA, idxB BodyIndex, bodyA, bodyB *ConstrainedBody) {
	entry := s.Cache.GetOrCreate(cwid.ID)
	hadPrevious := entryHasPreviousPrepare(entry)

	fresh := prepareContact(cwid.Contact, bodyA, bodyB)

	if hadPrevious && canUseWarmImpulsesFrom(entry.Prepared, fresh) {
		entry.AccumulatedImpulses = entry.AccumulatedImpulses.Mul(s.Config.WarmImpulseWeight)
	} else {
		entry.AccumulatedImpulses = ContactImpulses{}
	}

	entry.BodyAIndex = idxA
	entry.BodyBIndex = idxB
	entry.Prepared = fresh
	entry.WasPrepared = true
}

// entryHasPreviousPrepare reports whether this cache entry already
// held a prepared contact from an earlier frame (as opposed to having
// just been created by GetOrCreate this frame).
func entryHasPreviousPrepare(e *BodyPairConstraint) bool {
	return e.Prepared.Normal != (Vec3{}) || e.Prepared.Tangent != (Vec3{})
}

func prepareContact(contact Contact, bodyA, bodyB *ConstrainedBody) PreparedContact {
	geom := contact.Geometry
	normal := geom.SurfaceNormal
	tangent, bitangent := constructTangentVectors(normal)

	posA := geom.PositionOnA()
	posB := geom.PositionOnB()

	localA := worldToBodyLocal(bodyA, posA)
	localB := worldToBodyLocal(bodyB, posB)

	// Both bodies' lever arms are taken relative to the single shared
	// reference contact point recorded on surface B, not each body's
	// own surface projection.
	rA := posB.Sub(bodyA.Position)
	rB := posB.Sub(bodyB.Position)

	massNormal := computeEffectiveMass(bodyA, bodyB, rA, rB, normal)
	massTangent := computeEffectiveMass(bodyA, bodyB, rA, rB, tangent)
	massBitangent := computeEffectiveMass(bodyA, bodyB, rA, rB, bitangent)

	relVel := computePointVelocity(bodyA, posB).Sub(computePointVelocity(bodyB, posB))
	tangentialVel := Vec3{relVel.Dot(tangent), relVel.Dot(bitangent), 0}
	friction := contact.DynamicFriction
	if tangentialVel.Dot(tangentialVel) <= frictionSlipSpeedThresholdSquared {
		friction = contact.StaticFriction
	}

	return PreparedContact{
		LocalContactPointA: localA,
		LocalContactPointB: localB,

		Normal:    normal,
		Tangent:   tangent,
		Bitangent: bitangent,

		EffectiveMassNormal:    massNormal,
		EffectiveMassTangent:   massTangent,
		EffectiveMassBitangent: massBitangent,

		FrictionCoefficient: friction,
	}
}

func worldToBodyLocal(body *ConstrainedBody, worldPoint Vec3) Vec3 {
	inv := body.Orientation.Inverse()
	return inv.Rotate(worldPoint.Sub(body.Position))
}

func bodyLocalToWorld(body *ConstrainedBody, localPoint Vec3) Vec3 {
	return body.Position.Add(body.Orientation.Rotate(localPoint))
}

func (s *Solver) applyWarmImpulses(bodies []*ConstrainedBody) {
	for _, e := range s.Cache.entries {
		s.applyImpulseTriple(bodies, e, e.AccumulatedImpulses)
	}
}

func (s *Solver) applyImpulseTriple(bodies []*ConstrainedBody, e *BodyPairConstraint, imp ContactImpulses) {
	bodyA := bodies[e.BodyAIndex]
	bodyB := bodies[e.BodyBIndex]

	// Both bodies' angular response is taken about the shared reference
	// point on surface B, not body A's own surface projection.
	worldPointB := bodyLocalToWorld(bodyB, e.Prepared.LocalContactPointB)

	impulseVec := e.Prepared.Normal.Mul(imp.Normal).
		Add(e.Prepared.Tangent.Mul(imp.Tangent)).
		Add(e.Prepared.Bitangent.Mul(imp.Bitangent))

	bodyA.ApplyImpulse(impulseVec, worldPointB)
	bodyB.ApplyImpulse(impulseVec.Mul(-1), worldPointB)
}

func (s *Solver) velocityPhase(bodies []*ConstrainedBody) {
	for iter := 0; iter < s.Config.VelocityIterations; iter++ {
		for _, e := range s.Cache.entries {
			s.solveVelocityConstraint(bodies, e)
		}
	}
}

func (s *Solver) solveVelocityConstraint(bodies []*ConstrainedBody, e *BodyPairConstraint) {
	bodyA := bodies[e.BodyAIndex]
	bodyB := bodies[e.BodyBIndex]

	// Recomputed each iteration from body B's current orientation; body
	// A's point velocity is evaluated at this same shared point rather
	// than its own surface projection.
	worldPointB := bodyLocalToWorld(bodyB, e.Prepared.LocalContactPointB)

	relVel := computePointVelocity(bodyA, worldPointB).Sub(computePointVelocity(bodyB, worldPointB))

	normalSpeed := relVel.Dot(e.Prepared.Normal)
	tangentSpeed := relVel.Dot(e.Prepared.Tangent)
	bitangentSpeed := relVel.Dot(e.Prepared.Bitangent)

	correctiveNormal := -normalSpeed * e.Prepared.EffectiveMassNormal
	correctiveTangent := -tangentSpeed * e.Prepared.EffectiveMassTangent
	correctiveBitangent := -bitangentSpeed * e.Prepared.EffectiveMassBitangent

	newAccum := e.AccumulatedImpulses.Add(ContactImpulses{
		Normal:    correctiveNormal,
		Tangent:   correctiveTangent,
		Bitangent: correctiveBitangent,
	})

	newAccum = clampContactImpulses(newAccum, e.Prepared.FrictionCoefficient)

	delta := newAccum.Sub(e.AccumulatedImpulses)
	e.AccumulatedImpulses = newAccum

	s.applyImpulseTriple(bodies, e, delta)
}

// clampContactImpulses enforces the contact inequality constraints:
// the normal impulse cannot be negative (no pulling), and the
// tangential impulse magnitude is capped at μ times the clamped normal
// impulse, scaling both tangent components down proportionally if the
// cap is exceeded, grounded precisely on clamp_impulses in contact.rs.
func clampContactImpulses(imp ContactImpulses, friction float32) ContactImpulses {
	normal := imp.Normal
	if normal < 0 {
		normal = 0
	}

	tangentMagSq := imp.Tangent*imp.Tangent + imp.Bitangent*imp.Bitangent
	cap := friction * normal
	if tangentMagSq > cap*cap && tangentMagSq > 0 {
		scale := cap / sqrt32(tangentMagSq)
		imp.Tangent *= scale
		imp.Bitangent *= scale
	}

	imp.Normal = normal
	return imp
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func (s *Solver) positionalPhase(bodies []*ConstrainedBody) {
	for iter := 0; iter < s.Config.PositionalIterations; iter++ {
		for _, e := range s.Cache.entries {
			s.solvePositionalConstraint(bodies, e)
		}
	}
}

func (s *Solver) solvePositionalConstraint(bodies []*ConstrainedBody, e *BodyPairConstraint) {
	bodyA := bodies[e.BodyAIndex]
	bodyB := bodies[e.BodyBIndex]

	worldPointA := bodyLocalToWorld(bodyA, e.Prepared.LocalContactPointA)
	worldPointB := bodyLocalToWorld(bodyB, e.Prepared.LocalContactPointB)

	// Re-derive penetration depth from current positions assuming the
	// normal stays fixed in world space.
	separation := worldPointA.Sub(worldPointB)
	depth := -separation.Dot(e.Prepared.Normal)
	if depth <= 0 {
		return
	}

	pseudoMagnitude := e.Prepared.EffectiveMassNormal * s.Config.PositionalFactor * depth
	pseudoImpulse := e.Prepared.Normal.Mul(pseudoMagnitude)

	// worldPointA only feeds the depth estimate above; the correction
	// itself is applied about the shared reference point on surface B
	// for both bodies, matching the angular lever arms used to prepare
	// the contact.
	bodyA.ApplyPositionalCorrection(pseudoImpulse, worldPointB)
	bodyB.ApplyPositionalCorrection(pseudoImpulse.Mul(-1), worldPointB)
}
