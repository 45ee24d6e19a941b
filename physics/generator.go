package physics

import "github.com/gekko3d/corex/voxel"

// Sphere is a collidable sphere shape in world space.
type Sphere struct {
	Center Vec3
	Radius float32
}

// Plane is an infinite collidable plane in world space, defined by a
// unit normal and a point the plane passes through.
type Plane struct {
	Normal Vec3
	Point  Vec3
}

// VoxelObjectCollidable pairs a chunked voxel object with its
// world-space transform, for use as a physics collidable.
type VoxelObjectCollidable struct {
	Object        *voxel.ChunkedVoxelObject
	WorldToObject func(Vec3) Vec3
	ObjectToWorld func(Vec3) Vec3
}

// MaterialResponse is the restitution/friction parameters attached to
// every contact the generator produces for a given collidable pair.
type MaterialResponse struct {
	Restitution     float32
	StaticFriction  float32
	DynamicFriction float32
}

const worldUpAxisFallbackThreshold = 1e-8

// ContactGenerator dispatches on collidable-pair variant and appends
// contacts to a manifold, grounded precisely on the geometric formulas
// in spec §4.6 (themselves grounded on the original engine's narrow
// phase, generalized here to explicit Go functions per pair type
// rather than a trait-dispatch enum, since Go has no closed sum type
// equivalent cheap enough to justify one over a direct switch).
type ContactGenerator struct{}

// NewContactGenerator creates a contact generator. It holds no state;
// pairwise tests are pure functions of their inputs.
func NewContactGenerator() *ContactGenerator { return &ContactGenerator{} }

// SphereSphere appends a contact for two spheres if they intersect.
func (g *ContactGenerator) SphereSphere(idA, idB CollidableID, a, b Sphere, response MaterialResponse) *ContactManifold {
	d := a.Center.Sub(b.Center)
	dist := d.Len()
	if dist > a.Radius+b.Radius {
		return nil
	}

	var normal Vec3
	if dist < worldUpAxisFallbackThreshold {
		normal = Vec3{0, 1, 0}
	} else {
		normal = d.Mul(1 / dist)
	}

	position := b.Center.Add(normal.Mul(b.Radius))
	depth := a.Radius + b.Radius - dist
	if depth < 0 {
		depth = 0
	}

	return &ContactManifold{
		BodyA: idA,
		BodyB: idB,
		Contacts: []ContactWithID{{
			ID: NewContactIDFromTwoU32(uint32(idA), uint32(idB)),
			Contact: Contact{
				Geometry: ContactGeometry{
					Position:         position,
					SurfaceNormal:    normal,
					PenetrationDepth: depth,
				},
				Restitution:     response.Restitution,
				StaticFriction:  response.StaticFriction,
				DynamicFriction: response.DynamicFriction,
			},
		}},
	}
}

// SpherePlane appends a contact for a sphere against an infinite
// plane if the sphere intersects it.
func (g *ContactGenerator) SpherePlane(idA, idB CollidableID, sphere Sphere, plane Plane, response MaterialResponse) *ContactManifold {
	s := plane.Normal.Dot(sphere.Center.Sub(plane.Point))
	if sphere.Radius-s < 0 {
		return nil
	}

	position := sphere.Center.Sub(plane.Normal.Mul(s))
	depth := sphere.Radius - s

	return &ContactManifold{
		BodyA: idA,
		BodyB: idB,
		Contacts: []ContactWithID{{
			ID: NewContactIDFromTwoU32(uint32(idA), uint32(idB)),
			Contact: Contact{
				Geometry: ContactGeometry{
					Position:         position,
					SurfaceNormal:    plane.Normal,
					PenetrationDepth: depth,
				},
				Restitution:     response.Restitution,
				StaticFriction:  response.StaticFriction,
				DynamicFriction: response.DynamicFriction,
			},
		}},
	}
}

// SphereVoxelObject appends one contact per surface voxel of obj whose
// bounding sphere may intersect sphere, with the sphere transformed
// into object space first. Each contact's id additionally hashes the
// voxel's three-component index so that multiple contacts from the
// same collidable pair stay uniquely keyed.
func (g *ContactGenerator) SphereVoxelObject(idA, idB CollidableID, sphere Sphere, obj VoxelObjectCollidable, response MaterialResponse) *ContactManifold {
	localCenter := obj.WorldToObject(sphere.Center)
	voxelExtent := obj.Object.VoxelExtent
	voxelRadius := voxelExtent * 0.5 * 1.7320508

	manifold := &ContactManifold{BodyA: idA, BodyB: idB}

	obj.Object.ForEachSurfaceVoxelInSphere(localCenter, sphere.Radius+voxelRadius, func(gx, gy, gz int) bool {
		voxelCenterLocal := Vec3{
			(float32(gx) + 0.5) * voxelExtent,
			(float32(gy) + 0.5) * voxelExtent,
			(float32(gz) + 0.5) * voxelExtent,
		}

		d := localCenter.Sub(voxelCenterLocal)
		dist := d.Len()
		combined := sphere.Radius + voxelRadius
		if dist > combined {
			return true
		}

		var normalLocal Vec3
		if dist < worldUpAxisFallbackThreshold {
			normalLocal = Vec3{0, 1, 0}
		} else {
			normalLocal = d.Mul(1 / dist)
		}

		positionLocal := voxelCenterLocal.Add(normalLocal.Mul(voxelRadius))
		depth := combined - dist
		if depth < 0 {
			depth = 0
		}

		manifold.Contacts = append(manifold.Contacts, ContactWithID{
			ID: NewContactIDFromTwoU32AndIndices(uint32(idA), uint32(idB), uint32(gx), uint32(gy), uint32(gz)),
			Contact: Contact{
				Geometry: ContactGeometry{
					Position:         obj.ObjectToWorld(positionLocal),
					SurfaceNormal:    obj.ObjectToWorld(normalLocal).Sub(obj.ObjectToWorld(Vec3{})).Normalize(),
					PenetrationDepth: depth,
				},
				Restitution:     response.Restitution,
				StaticFriction:  response.StaticFriction,
				DynamicFriction: response.DynamicFriction,
			},
		})
		return true
	})

	if len(manifold.Contacts) == 0 {
		return nil
	}
	return manifold
}

// PlaneVoxelObject is a stub: per spec §9's Open Question decision,
// plane/voxel-object contact generation does not presume a physical
// response shape and is left unimplemented (always reports no
// contact) until a concrete use case defines one.
func (g *ContactGenerator) PlaneVoxelObject(CollidableID, CollidableID, Plane, VoxelObjectCollidable, MaterialResponse) *ContactManifold {
	return nil
}

// VoxelObjectVoxelObject is a stub for the same reason as
// PlaneVoxelObject.
func (g *ContactGenerator) VoxelObjectVoxelObject(CollidableID, CollidableID, VoxelObjectCollidable, VoxelObjectCollidable, MaterialResponse) *ContactManifold {
	return nil
}

// PlanePlane is a permanent no-op: two infinite planes never produce a
// meaningful contact.
func (g *ContactGenerator) PlanePlane(CollidableID, CollidableID, Plane, Plane, MaterialResponse) *ContactManifold {
	return nil
}
