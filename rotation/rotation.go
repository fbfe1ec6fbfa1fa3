// Package rotation provides immutable 3D rotation values in two
// representations: direction cosine matrices and unit quaternions.
//
// All rotations use the frame-rotation (passive) convention: applying
// the rotation for an angle θ about Z re-expresses a fixed vector in a
// frame rotated by +θ, i.e. AboutZ(KindDCM, θ).Apply(v) computes
// R3(θ)·v with R3 as in Vallado, "Fundamentals of Astrodynamics and
// Applications", Section 3.3.
package rotation

// Kind selects the concrete rotation representation.
type Kind int

const (
	// KindDCM represents rotations as 3×3 direction cosine matrices.
	KindDCM Kind = iota
	// KindQuaternion represents rotations as unit quaternions.
	KindQuaternion
)

// Rotation is an immutable rotation from one frame's basis to another's.
// Values are only ever produced by the constructors in this package or
// by Compose/Inverse; they are never mutated.
type Rotation interface {
	// Apply re-expresses v in the destination frame.
	Apply(v Vec3) Vec3
	// Inverse returns the rotation for the reversed frame pair.
	Inverse() Rotation
	// Kind reports the concrete representation.
	Kind() Kind
	// DCM returns the matrix form of the rotation.
	DCM() DCM
	// Quaternion returns the quaternion form of the rotation.
	Quaternion() Quaternion

	// after composes this rotation after prev (prev applied first).
	after(prev Rotation) Rotation
}

// Identity returns the identity rotation in the given representation.
func Identity(k Kind) Rotation {
	if k == KindQuaternion {
		return Quaternion{Real: 1}
	}
	return DCM{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Compose chains rotations in application order: the first argument is
// applied first. Mathematically the result is rn·…·r2·r1 for column
// vectors. The result uses the representation of the first rotation;
// later rotations of the other kind are converted.
func Compose(rs ...Rotation) Rotation {
	if len(rs) == 0 {
		return Identity(KindDCM)
	}
	acc := rs[0]
	for _, r := range rs[1:] {
		acc = r.after(acc)
	}
	return acc
}

// AboutX returns the frame rotation by angle (radians) about the X axis.
func AboutX(k Kind, angle float64) Rotation {
	if k == KindQuaternion {
		return quatAboutAxis(angle, 0)
	}
	return dcmAboutX(angle)
}

// AboutY returns the frame rotation by angle (radians) about the Y axis.
func AboutY(k Kind, angle float64) Rotation {
	if k == KindQuaternion {
		return quatAboutAxis(angle, 1)
	}
	return dcmAboutY(angle)
}

// AboutZ returns the frame rotation by angle (radians) about the Z axis.
func AboutZ(k Kind, angle float64) Rotation {
	if k == KindQuaternion {
		return quatAboutAxis(angle, 2)
	}
	return dcmAboutZ(angle)
}
