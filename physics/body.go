package physics

// BodyIndex identifies one rigid body within the solver's per-frame
// body snapshot list.
type BodyIndex uint32

// ConstrainedBody is a snapshot of one rigid body's state taken for
// the duration of a solve, written back to the rigid-body manager
// after the positional phase completes.
type ConstrainedBody struct {
	Position    Vec3
	Orientation Quat

	LinearVelocity  Vec3
	AngularVelocity Vec3

	InverseMass          float32
	InverseInertiaTensor Mat3 // in world space
}

// VelocityAtPoint returns the body's linear velocity at worldPoint,
// combining the linear velocity with the angular velocity's
// contribution via the lever arm from the body's position.
func (b *ConstrainedBody) VelocityAtPoint(worldPoint Vec3) Vec3 {
	r := worldPoint.Sub(b.Position)
	return b.LinearVelocity.Add(b.AngularVelocity.Cross(r))
}

// ApplyImpulse applies a linear impulse at worldPoint, updating both
// linear and angular velocity.
func (b *ConstrainedBody) ApplyImpulse(impulse Vec3, worldPoint Vec3) {
	b.LinearVelocity = b.LinearVelocity.Add(impulse.Mul(b.InverseMass))
	r := worldPoint.Sub(b.Position)
	angularImpulse := r.Cross(impulse)
	b.AngularVelocity = b.AngularVelocity.Add(b.InverseInertiaTensor.Mul3x1(angularImpulse))
}

// ApplyPositionalCorrection nudges position and orientation by a
// pseudo-impulse applied at worldPoint without touching velocity,
// grounded on apply_positional_correction_to_body_pair in contact.rs.
func (b *ConstrainedBody) ApplyPositionalCorrection(pseudoImpulse Vec3, worldPoint Vec3) {
	b.Position = b.Position.Add(pseudoImpulse.Mul(b.InverseMass))

	r := worldPoint.Sub(b.Position)
	angularPseudoImpulse := r.Cross(pseudoImpulse)
	pseudoAngularVelocity := b.InverseInertiaTensor.Mul3x1(angularPseudoImpulse)
	b.Orientation = pseudoAdvancedOrientation(b.Orientation, pseudoAngularVelocity, 1)
}

// pseudoAdvancedOrientation integrates a quaternion derivative for one
// unit of pseudo-time and renormalizes, grounded on
// pseudo_advanced_orientation in contact.rs.
func pseudoAdvancedOrientation(orientation Quat, angularVelocity Vec3, dt float32) Quat {
	omega := Quat{W: 0, V: angularVelocity}
	derivative := omega.Mul(orientation)
	derivative.W *= 0.5 * dt
	derivative.V = derivative.V.Mul(0.5 * dt)

	advanced := Quat{
		W: orientation.W + derivative.W,
		V: orientation.V.Add(derivative.V),
	}
	return advanced.Normalize()
}

// computePointVelocity computes a body's velocity at a world point
// from its linear and angular velocity, grounded on
// compute_point_velocity in contact.rs.
func computePointVelocity(body *ConstrainedBody, worldPoint Vec3) Vec3 {
	return body.VelocityAtPoint(worldPoint)
}

// computeEffectiveMass computes the effective mass of a constraint
// along direction axis anchored at the two body-relative lever arms,
// grounded on compute_effective_mass in contact.rs.
func computeEffectiveMass(bodyA, bodyB *ConstrainedBody, rA, rB, axis Vec3) float32 {
	rACrossN := rA.Cross(axis)
	rBCrossN := rB.Cross(axis)

	angularTermA := bodyA.InverseInertiaTensor.Mul3x1(rACrossN).Cross(rA).Dot(axis)
	angularTermB := bodyB.InverseInertiaTensor.Mul3x1(rBCrossN).Cross(rB).Dot(axis)

	denom := bodyA.InverseMass + bodyB.InverseMass + angularTermA + angularTermB
	if denom <= 0 {
		return 0
	}
	return 1 / denom
}
