package voxel

import "github.com/go-gl/mathgl/mgl32"

// InertialProperties are the mass and rotational inertia of a voxel
// object about its own center of mass, derived from the accumulated
// voxel contributions by DeriveInertialProperties.
type InertialProperties struct {
	Mass          float32
	CenterOfMass  Vec3
	InertiaTensor mgl32.Mat3
}

// InertialManager accumulates mass, first-moment (mass times position),
// and second-moment (inertia about the origin) contributions voxel by
// voxel, so the object's inertial properties can be derived in O(1)
// from the running totals and kept correct across incremental voxel
// additions, removals, and disconnection transfers without
// recomputation from scratch, grounded on the accumulator pattern used
// throughout the original engine's rigid body derivation and exercised
// here as the InertiaTransferrer consumed by split operations.
type InertialManager struct {
	registry *TypeRegistry

	totalMass    float32
	firstMoment  Vec3       // sum(mass_i * position_i)
	secondMoment mgl32.Mat3 // sum(mass_i * outer(position_i, position_i)), used to derive inertia about the origin
	voxelVolume  float32
}

// NewInertialManager creates a manager with no accumulated voxels. The
// registry supplies each voxel's mass density; voxelVolume is the
// world-space volume of a single voxel (voxelExtent^3).
func NewInertialManager(registry *TypeRegistry, voxelVolume float32) *InertialManager {
	return &InertialManager{registry: registry, voxelVolume: voxelVolume}
}

func (m *InertialManager) voxelMass(v Voxel) float32 {
	return m.registry.MassDensity(v.MaterialID) * m.voxelVolume
}

// AddVoxel folds one voxel's mass contribution, at worldPos, into the
// running totals.
func (m *InertialManager) AddVoxel(_ VoxelIndices, v Voxel, worldPos Vec3) {
	if v.IsEmpty() {
		return
	}
	mass := m.voxelMass(v)
	m.totalMass += mass
	m.firstMoment = m.firstMoment.Add(worldPos.Mul(mass))
	m.accumulateSecondMoment(mass, worldPos, 1)
}

// RemoveVoxel subtracts one voxel's previously-added mass contribution
// at worldPos from the running totals. Callers must pass the same
// (v, worldPos) that were originally added; this is the voxel package's
// analogue of the original engine's remove-then-add transfer pairing
// used to conserve mass and moments across a disconnection split.
func (m *InertialManager) RemoveVoxel(_ VoxelIndices, v Voxel, worldPos Vec3) {
	if v.IsEmpty() {
		return
	}
	mass := m.voxelMass(v)
	m.totalMass -= mass
	m.firstMoment = m.firstMoment.Sub(worldPos.Mul(mass))
	m.accumulateSecondMoment(mass, worldPos, -1)
}

func (m *InertialManager) accumulateSecondMoment(mass float32, p Vec3, sign float32) {
	s := sign * mass
	m.secondMoment[0] += s * p[0] * p[0]
	m.secondMoment[1] += s * p[0] * p[1]
	m.secondMoment[2] += s * p[0] * p[2]
	m.secondMoment[3] += s * p[1] * p[0]
	m.secondMoment[4] += s * p[1] * p[1]
	m.secondMoment[5] += s * p[1] * p[2]
	m.secondMoment[6] += s * p[2] * p[0]
	m.secondMoment[7] += s * p[2] * p[1]
	m.secondMoment[8] += s * p[2] * p[2]
}

// TotalMass returns the manager's currently accumulated mass.
func (m *InertialManager) TotalMass() float32 { return m.totalMass }

// DeriveInertialProperties computes the mass, center of mass, and
// inertia tensor about the center of mass from the running
// accumulators, applying the parallel axis theorem to shift the
// inertia tensor computed about the origin to one about the center of
// mass.
func (m *InertialManager) DeriveInertialProperties() InertialProperties {
	if m.totalMass == 0 {
		return InertialProperties{}
	}

	com := m.firstMoment.Mul(1 / m.totalMass)

	// Inertia tensor about the origin, as the trace-minus-outer-product
	// form: I_origin = (sum m*|p|^2) * Id - secondMoment, built up
	// componentwise then shifted with the parallel axis theorem.
	var originTensor mgl32.Mat3
	sumSq := m.secondMoment[0] + m.secondMoment[4] + m.secondMoment[8]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			idx := i*3 + j
			diag := float32(0)
			if i == j {
				diag = sumSq
			}
			originTensor[idx] = diag - m.secondMoment[idx]
		}
	}

	// Parallel axis theorem: I_com = I_origin - mass * (|com|^2 * Id - outer(com, com))
	comSq := com.Dot(com)
	var comShift mgl32.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			idx := i*3 + j
			diag := float32(0)
			if i == j {
				diag = comSq
			}
			comShift[idx] = m.totalMass * (diag - com[i]*com[j])
		}
	}

	var comTensor mgl32.Mat3
	for i := range comTensor {
		comTensor[i] = originTensor[i] - comShift[i]
	}

	return InertialProperties{
		Mass:          m.totalMass,
		CenterOfMass:  com,
		InertiaTensor: comTensor,
	}
}

// OffsetReferencePoint rigidly shifts every accumulated moment as if
// every contributing voxel's position had been offset by delta,
// without needing to revisit individual voxels. This lets a caller
// re-anchor the manager's accumulators (for example after recentering
// an object around a new origin) in O(1).
func (m *InertialManager) OffsetReferencePoint(delta Vec3) {
	if m.totalMass == 0 {
		return
	}
	oldCom := m.firstMoment.Mul(1 / m.totalMass)
	newCom := oldCom.Add(delta)

	// Shift the second moment sum(m*outer(p,p)) to be about the
	// translated positions p' = p + delta using the bilinear expansion
	// of outer(p+delta, p+delta).
	var shifted mgl32.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			idx := i*3 + j
			shifted[idx] = m.secondMoment[idx] +
				m.firstMoment[i]*delta[j] + m.firstMoment[j]*delta[i] +
				m.totalMass*delta[i]*delta[j]
		}
	}
	m.secondMoment = shifted
	m.firstMoment = newCom.Mul(m.totalMass)
}
