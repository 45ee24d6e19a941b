package mesh

import "math"

// mat3FromColumns builds a 3x3 matrix (column-major, mathgl convention)
// from three column vectors.
func mat3FromColumns(c0, c1, c2 Vec3) Mat3 {
	return Mat3{
		c0[0], c0[1], c0[2],
		c1[0], c1[1], c1[2],
		c2[0], c2[1], c2[2],
	}
}

// Mat3 is the 3x3 matrix type used locally for tangent-frame
// construction, column-major as mathgl's Mat3 is.
type Mat3 = [9]float32

// quatFromMat3 converts an orthonormal rotation matrix to a unit
// quaternion via Shepperd's method, choosing the numerically largest
// of the four possible derivations based on the matrix trace and
// diagonal.
func quatFromMat3(m Mat3) Quat {
	// Column-major: m[col*3+row].
	m00, m10, m20 := m[0], m[1], m[2]
	m01, m11, m21 := m[3], m[4], m[5]
	m02, m12, m22 := m[6], m[7], m[8]

	trace := m00 + m11 + m22

	var w, x, y, z float32
	switch {
	case trace > 0:
		s := float32(0.5) / sqrtf(trace+1)
		w = 0.25 / s
		x = (m21 - m12) * s
		y = (m02 - m20) * s
		z = (m10 - m01) * s
	case m00 > m11 && m00 > m22:
		s := 2 * sqrtf(1+m00-m11-m22)
		w = (m21 - m12) / s
		x = 0.25 * s
		y = (m01 + m10) / s
		z = (m02 + m20) / s
	case m11 > m22:
		s := 2 * sqrtf(1+m11-m00-m22)
		w = (m02 - m20) / s
		x = (m01 + m10) / s
		y = 0.25 * s
		z = (m12 + m21) / s
	default:
		s := 2 * sqrtf(1+m22-m00-m11)
		w = (m10 - m01) / s
		x = (m02 + m20) / s
		y = (m12 + m21) / s
		z = 0.25 * s
	}

	return Quat{W: w, V: Vec3{x, y, z}}.Normalize()
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
