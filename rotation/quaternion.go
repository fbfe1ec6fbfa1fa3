package rotation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quaternion is a unit quaternion rotation. The scalar/vector layout
// follows gonum's quat.Number; the rotation convention matches DCM:
// Apply(v) = q*·v·q, so that AboutZ in either representation produces
// the same frame rotation.
type Quaternion quat.Number

// Apply rotates v by evaluating the quaternion sandwich product.
func (q Quaternion) Apply(v Vec3) Vec3 {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	n := quat.Number(q)
	out := quat.Mul(quat.Conj(n), quat.Mul(p, n))
	return Vec3{X: out.Imag, Y: out.Jmag, Z: out.Kmag}
}

// Inverse returns the conjugate, the rotation for the reversed pair.
func (q Quaternion) Inverse() Rotation {
	return Quaternion(quat.Conj(quat.Number(q)))
}

// Kind reports KindQuaternion.
func (q Quaternion) Kind() Kind { return KindQuaternion }

// Quaternion returns q itself.
func (q Quaternion) Quaternion() Quaternion { return q }

// Norm returns the quaternion norm. Rotations built by this package
// keep it at 1 up to floating-point error.
func (q Quaternion) Norm() float64 {
	return quat.Abs(quat.Number(q))
}

// DCM converts the quaternion to its matrix form.
func (q Quaternion) DCM() DCM {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return DCM{
		{1 - 2*(y*y+z*z), 2 * (x*y + w*z), 2 * (x*z - w*y)},
		{2 * (x*y - w*z), 1 - 2*(x*x+z*z), 2 * (y*z + w*x)},
		{2 * (x*z + w*y), 2 * (y*z - w*x), 1 - 2*(x*x+y*y)},
	}
}

func (q Quaternion) after(prev Rotation) Rotation {
	// Applying p then q is the quaternion product p·q under the
	// q*·v·q convention.
	return Quaternion(quat.Mul(quat.Number(prev.Quaternion()), quat.Number(q)))
}

// quatAboutAxis builds the frame rotation about coordinate axis
// 0 (X), 1 (Y) or 2 (Z).
func quatAboutAxis(angle float64, axis int) Quaternion {
	s, c := math.Sincos(angle / 2)
	q := Quaternion{Real: c}
	switch axis {
	case 0:
		q.Imag = s
	case 1:
		q.Jmag = s
	default:
		q.Kmag = s
	}
	return q
}
