package rotation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecsClose(t *testing.T, want, got Vec3, tol float64) {
	t.Helper()
	require.InDelta(t, want.X, got.X, tol)
	require.InDelta(t, want.Y, got.Y, tol)
	require.InDelta(t, want.Z, got.Z, tol)
}

func TestAboutZFrameConvention(t *testing.T) {
	// Passive convention: after rotating the frame +90° about Z, a
	// vector along the old X axis has components (0, -1, 0).
	v := Vec3{X: 1}
	got := AboutZ(KindDCM, math.Pi/2).Apply(v)
	vecsClose(t, Vec3{X: 0, Y: -1, Z: 0}, got, 1e-15)

	// A vector along the rotation axis is unchanged.
	axis := Vec3{Z: 3.5}
	vecsClose(t, axis, AboutZ(KindDCM, 1.2).Apply(axis), 1e-15)
	vecsClose(t, axis, AboutZ(KindQuaternion, 1.2).Apply(axis), 1e-15)
}

func TestDCMQuaternionAgree(t *testing.T) {
	angles := []float64{0, 0.3, -1.1, math.Pi / 2, 2.9}
	v := Vec3{X: 0.2, Y: -1.7, Z: 3.1}
	for _, a := range angles {
		for _, pair := range [][2]Rotation{
			{AboutX(KindDCM, a), AboutX(KindQuaternion, a)},
			{AboutY(KindDCM, a), AboutY(KindQuaternion, a)},
			{AboutZ(KindDCM, a), AboutZ(KindQuaternion, a)},
		} {
			dv := pair[0].Apply(v)
			qv := pair[1].Apply(v)
			vecsClose(t, dv, qv, 1e-13)
		}
	}
}

func TestComposeOrder(t *testing.T) {
	// Rotate about Z then about X; compare against the explicit
	// matrix product R1·R3 applied to a vector.
	r3 := AboutZ(KindDCM, 0.7)
	r1 := AboutX(KindDCM, -0.4)
	v := Vec3{X: 1, Y: 2, Z: 3}

	composed := Compose(r3, r1)
	step := r1.Apply(r3.Apply(v))
	vecsClose(t, step, composed.Apply(v), 1e-14)

	// Same in quaternion form.
	q := Compose(AboutZ(KindQuaternion, 0.7), AboutX(KindQuaternion, -0.4))
	vecsClose(t, step, q.Apply(v), 1e-13)
}

func TestComposeAssociativity(t *testing.T) {
	a := AboutX(KindDCM, 0.21)
	b := AboutY(KindDCM, -1.4)
	c := AboutZ(KindDCM, 2.2)

	left := Compose(Compose(a, b), c).DCM()
	right := Compose(a, Compose(b, c)).DCM()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, left[i][j], right[i][j], 1e-12)
		}
	}
}

func TestInverseRoundTrip(t *testing.T) {
	r := Compose(AboutZ(KindDCM, 1.9), AboutX(KindDCM, 0.5), AboutY(KindDCM, -0.8))
	v := Vec3{X: -4.2, Y: 0.01, Z: 7.7}
	back := r.Inverse().Apply(r.Apply(v))
	vecsClose(t, v, back, 1e-12)

	q := r.Quaternion()
	back = q.Inverse().Apply(q.Apply(v))
	vecsClose(t, v, back, 1e-12)
}

func TestOrthonormality(t *testing.T) {
	r := Compose(AboutZ(KindDCM, 0.9), AboutY(KindDCM, 1.5), AboutX(KindDCM, -2.3)).DCM()
	rt := r.Inverse().DCM()
	prod := rt.mul(r)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, prod[i][j], 1e-10)
		}
	}
}

func TestQuaternionUnitNorm(t *testing.T) {
	q := Compose(
		AboutZ(KindQuaternion, 0.13),
		AboutX(KindQuaternion, -2.71),
		AboutY(KindQuaternion, 1.41),
	).Quaternion()
	assert.InDelta(t, 1.0, q.Norm(), 1e-12)
}

func TestDCMToQuaternionRoundTrip(t *testing.T) {
	r := Compose(AboutZ(KindDCM, -2.9), AboutY(KindDCM, 0.3)).DCM()
	again := r.Quaternion().DCM()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, r[i][j], again[i][j], 1e-12)
		}
	}
}

func TestFromSlice(t *testing.T) {
	_, ok := FromSlice([]float64{1, 2})
	assert.False(t, ok)
	v, ok := FromSlice([]float64{1, 2, 3})
	require.True(t, ok)
	assert.Equal(t, Vec3{X: 1, Y: 2, Z: 3}, v)
}

func TestVecOps(t *testing.T) {
	a := Vec3{X: 1, Y: 0, Z: 0}
	b := Vec3{X: 0, Y: 1, Z: 0}
	assert.Equal(t, Vec3{Z: 1}, a.Cross(b))
	assert.InDelta(t, 0.0, a.Dot(b), 1e-15)
	assert.InDelta(t, math.Sqrt2, a.Add(b).Norm(), 1e-15)
}
