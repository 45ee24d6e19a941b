// Package physics implements the sequential-impulse constraint solver:
// contact generation between rigid-body collidables, per-frame contact
// preparation with warm-starting, and the velocity/positional solve
// passes, grounded on the original engine's impact_physics constraint
// crate.
package physics

import "github.com/go-gl/mathgl/mgl32"

// Vec3/Quat aliases used throughout this package.
type (
	Vec3 = mgl32.Vec3
	Mat3 = mgl32.Mat3
	Quat = mgl32.Quat
)

// CollidableID identifies one collidable object (a rigid body's
// collision shape) within the physics world.
type CollidableID uint32

// ContactID uniquely identifies one contact, built by folding the two
// collidable ids and, for collidables that can yield multiple contacts
// from a single pair (sphere/voxel), a per-feature index, grounded
// precisely on ContactID::from_two_u32[_and_n_indices] in contact.rs.
type ContactID uint64

// NewContactIDFromTwoU32 packs two collidable indices into a single id,
// the high half holding a and the low half holding b.
func NewContactIDFromTwoU32(a, b uint32) ContactID {
	return ContactID(uint64(a)<<32 | uint64(b))
}

// NewContactIDFromTwoU32AndIndices extends a two-collidable id by
// folding in each of the given feature indices via a multiplicative
// hash, so that multiple contacts from the same collidable pair (for
// example one per intersecting voxel) receive distinct ids.
func NewContactIDFromTwoU32AndIndices(a, b uint32, indices ...uint32) ContactID {
	id := NewContactIDFromTwoU32(a, b)
	for _, idx := range indices {
		id = ContactID(uint64(id)*31 + uint64(idx))
	}
	return id
}

// ContactGeometry is the purely geometric description of a contact
// point between two bodies.
type ContactGeometry struct {
	Position         Vec3
	SurfaceNormal    Vec3 // points from B toward A
	PenetrationDepth float32
}

// PositionOnA returns the contact point projected onto surface A along
// the surface normal by the penetration depth.
func (g ContactGeometry) PositionOnA() Vec3 {
	return g.Position.Sub(g.SurfaceNormal.Mul(g.PenetrationDepth))
}

// PositionOnB returns the contact point as recorded (on surface B).
func (g ContactGeometry) PositionOnB() Vec3 {
	return g.Position
}

// Contact pairs a geometry with its material response parameters.
type Contact struct {
	Geometry        ContactGeometry
	Restitution     float32
	StaticFriction  float32
	DynamicFriction float32
}

// ContactWithID is a contact tagged with its manifold-unique id.
type ContactWithID struct {
	ID      ContactID
	Contact Contact
}

// ContactManifold is the short list of contacts found between two
// specific bodies in one frame.
type ContactManifold struct {
	BodyA    CollidableID
	BodyB    CollidableID
	Contacts []ContactWithID
}

// PreparedContact holds the frame-invariant quantities derived once
// per frame before the solver runs, grounded on PreparedContact in
// contact.rs.
type PreparedContact struct {
	LocalContactPointA Vec3 // body A's local frame
	LocalContactPointB Vec3 // body B's local frame

	Normal    Vec3
	Tangent   Vec3
	Bitangent Vec3

	EffectiveMassNormal    float32
	EffectiveMassTangent   float32
	EffectiveMassBitangent float32

	FrictionCoefficient float32
}

// ContactImpulses holds the accumulated impulse magnitudes along the
// prepared contact's (normal, tangent, bitangent) basis.
type ContactImpulses struct {
	Normal    float32
	Tangent   float32
	Bitangent float32
}

// Add returns the elementwise sum of two impulse triples.
func (a ContactImpulses) Add(b ContactImpulses) ContactImpulses {
	return ContactImpulses{a.Normal + b.Normal, a.Tangent + b.Tangent, a.Bitangent + b.Bitangent}
}

// Sub returns the elementwise difference of two impulse triples.
func (a ContactImpulses) Sub(b ContactImpulses) ContactImpulses {
	return ContactImpulses{a.Normal - b.Normal, a.Tangent - b.Tangent, a.Bitangent - b.Bitangent}
}

// Mul scales every component of the impulse triple by s.
func (a ContactImpulses) Mul(s float32) ContactImpulses {
	return ContactImpulses{a.Normal * s, a.Tangent * s, a.Bitangent * s}
}

// constructTangentVectors builds an orthonormal (tangent, bitangent)
// basis perpendicular to normal, grounded precisely on
// construct_tangent_vectors in contact.rs: the tangent is the normal
// crossed with the x-axis when |normal.x| < 1/sqrt(3), and with the
// y-axis otherwise (where the x-axis would be too close to parallel
// with the normal for a well-conditioned cross product).
func constructTangentVectors(normal Vec3) (tangent, bitangent Vec3) {
	const oneOverSqrt3 = 0.5773502691896258

	var arbitrary Vec3
	if abs32(normal[0]) < oneOverSqrt3 {
		arbitrary = Vec3{1, 0, 0}
	} else {
		arbitrary = Vec3{0, 1, 0}
	}

	tangent = normal.Cross(arbitrary).Normalize()
	bitangent = normal.Cross(tangent).Normalize()
	return tangent, bitangent
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
