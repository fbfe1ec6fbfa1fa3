package rotation

import "math"

// DCM is a 3×3 direction cosine matrix, row-major: row i holds the
// destination frame's i-th basis vector expressed in the origin frame.
type DCM [3][3]float64

// Apply computes the matrix-vector product R·v.
func (m DCM) Apply(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Inverse returns the transpose, which for an orthonormal matrix is the
// rotation for the reversed frame pair.
func (m DCM) Inverse() Rotation {
	return DCM{
		{m[0][0], m[1][0], m[2][0]},
		{m[0][1], m[1][1], m[2][1]},
		{m[0][2], m[1][2], m[2][2]},
	}
}

// Kind reports KindDCM.
func (m DCM) Kind() Kind { return KindDCM }

// DCM returns m itself.
func (m DCM) DCM() DCM { return m }

// Quaternion converts the matrix to its quaternion form using
// Shepperd's method (largest-pivot branch for numerical safety).
func (m DCM) Quaternion() Quaternion {
	tr := m[0][0] + m[1][1] + m[2][2]
	var w, x, y, z float64
	switch {
	case tr >= m[0][0] && tr >= m[1][1] && tr >= m[2][2]:
		w = 0.5 * math.Sqrt(1+tr)
		x = (m[1][2] - m[2][1]) / (4 * w)
		y = (m[2][0] - m[0][2]) / (4 * w)
		z = (m[0][1] - m[1][0]) / (4 * w)
	case m[0][0] >= m[1][1] && m[0][0] >= m[2][2]:
		x = 0.5 * math.Sqrt(1+m[0][0]-m[1][1]-m[2][2])
		w = (m[1][2] - m[2][1]) / (4 * x)
		y = (m[0][1] + m[1][0]) / (4 * x)
		z = (m[2][0] + m[0][2]) / (4 * x)
	case m[1][1] >= m[2][2]:
		y = 0.5 * math.Sqrt(1-m[0][0]+m[1][1]-m[2][2])
		w = (m[2][0] - m[0][2]) / (4 * y)
		x = (m[0][1] + m[1][0]) / (4 * y)
		z = (m[1][2] + m[2][1]) / (4 * y)
	default:
		z = 0.5 * math.Sqrt(1-m[0][0]-m[1][1]+m[2][2])
		w = (m[0][1] - m[1][0]) / (4 * z)
		x = (m[2][0] + m[0][2]) / (4 * z)
		y = (m[1][2] + m[2][1]) / (4 * z)
	}
	return Quaternion{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// mul returns the matrix product m·n.
func (m DCM) mul(n DCM) DCM {
	var out DCM
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return out
}

func (m DCM) after(prev Rotation) Rotation {
	return m.mul(prev.DCM())
}

func dcmAboutX(a float64) DCM {
	s, c := math.Sincos(a)
	return DCM{
		{1, 0, 0},
		{0, c, s},
		{0, -s, c},
	}
}

func dcmAboutY(a float64) DCM {
	s, c := math.Sincos(a)
	return DCM{
		{c, 0, -s},
		{0, 1, 0},
		{s, 0, c},
	}
}

func dcmAboutZ(a float64) DCM {
	s, c := math.Sincos(a)
	return DCM{
		{c, s, 0},
		{-s, c, 0},
		{0, 0, 1},
	}
}
