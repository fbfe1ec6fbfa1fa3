// Package orbit converts between Keplerian orbital elements and
// Cartesian states, and re-expresses elements in another reference
// frame by round-tripping through a resolved rotation.
package orbit

import (
	"fmt"
	"math"

	"github.com/star/frames/eop"
	"github.com/star/frames/frames"
	"github.com/star/frames/rotation"
)

// MuEarth is the WGS-84 geocentric gravitational constant in km³/s².
const MuEarth = 398600.4418

// eccTol is the tolerance applied when rejecting eccentricities at the
// elliptical boundary after a round-trip conversion.
const eccTol = 1e-9

var (
	// ErrInvalidEccentricity is returned when an input or computed
	// eccentricity falls outside the elliptical range [0, 1).
	ErrInvalidEccentricity = fmt.Errorf("eccentricity outside elliptical range")
	// ErrDimension is returned by slice entry points whose vectors do
	// not have exactly three components.
	ErrDimension = fmt.Errorf("vector must have exactly 3 components")
)

// Elements are classical Keplerian orbital elements referenced to one
// named frame at one UTC Julian Date. Angles are in radians, the
// semi-major axis in kilometres.
type Elements struct {
	EpochJD     float64
	Frame       frames.Frame
	SMA         float64 // semi-major axis, km
	Ecc         float64
	Inc         float64 // inclination
	RAAN        float64 // right ascension of the ascending node
	ArgPerigee  float64
	TrueAnomaly float64
}

// ToState converts elements to a Cartesian state via the perifocal
// frame.
func ToState(el Elements) (frames.StateVector, error) {
	if el.Ecc < 0 || el.Ecc >= 1 {
		return frames.StateVector{}, fmt.Errorf("%w: e = %v", ErrInvalidEccentricity, el.Ecc)
	}

	p := el.SMA * (1 - el.Ecc*el.Ecc)
	cosNu, sinNu := math.Cos(el.TrueAnomaly), math.Sin(el.TrueAnomaly)
	r := p / (1 + el.Ecc*cosNu)

	rPQW := rotation.Vec3{X: r * cosNu, Y: r * sinNu}
	vs := math.Sqrt(MuEarth / p)
	vPQW := rotation.Vec3{X: -vs * sinNu, Y: vs * (el.Ecc + cosNu)}

	// Perifocal to the reference frame: undo argument of perigee,
	// inclination and RAAN in turn.
	rot := rotation.Compose(
		rotation.AboutZ(rotation.KindDCM, -el.ArgPerigee),
		rotation.AboutX(rotation.KindDCM, -el.Inc),
		rotation.AboutZ(rotation.KindDCM, -el.RAAN),
	)

	return frames.StateVector{
		EpochJD: el.EpochJD,
		Frame:   el.Frame,
		R:       rot.Apply(rPQW),
		V:       rot.Apply(vPQW),
	}, nil
}

// FromState recovers Keplerian elements from a Cartesian state using
// the angular-momentum and eccentricity-vector geometry.
func FromState(sv frames.StateVector) (Elements, error) {
	r := sv.R
	v := sv.V
	rn := r.Norm()
	vn := v.Norm()

	h := r.Cross(v)
	hn := h.Norm()
	n := rotation.Vec3{X: -h.Y, Y: h.X} // node vector, ẑ × h
	nn := n.Norm()

	eVec := r.Scale(vn*vn - MuEarth/rn).Sub(v.Scale(r.Dot(v))).Scale(1 / MuEarth)
	ecc := eVec.Norm()
	if ecc >= 1-eccTol {
		return Elements{}, fmt.Errorf("%w: non-elliptical result, e = %v", ErrInvalidEccentricity, ecc)
	}

	energy := vn*vn/2 - MuEarth/rn
	sma := -MuEarth / (2 * energy)

	inc := math.Acos(h.Z / hn)

	raan := math.Acos(clamp(n.X / nn))
	if n.Y < 0 {
		raan = 2*math.Pi - raan
	}

	argp := math.Acos(clamp(n.Dot(eVec) / (nn * ecc)))
	if eVec.Z < 0 {
		argp = 2*math.Pi - argp
	}

	nu := math.Acos(clamp(eVec.Dot(r) / (ecc * rn)))
	if r.Dot(v) < 0 {
		nu = 2*math.Pi - nu
	}

	return Elements{
		EpochJD:     sv.EpochJD,
		Frame:       sv.Frame,
		SMA:         sma,
		Ecc:         ecc,
		Inc:         inc,
		RAAN:        raan,
		ArgPerigee:  argp,
		TrueAnomaly: nu,
	}, nil
}

// FromVectors builds elements from raw position/velocity slices in km
// and km/s.
func FromVectors(jdUTC float64, frame frames.Frame, r, v []float64) (Elements, error) {
	rv, ok := rotation.FromSlice(r)
	if !ok {
		return Elements{}, fmt.Errorf("%w: position has %d", ErrDimension, len(r))
	}
	vv, ok := rotation.FromSlice(v)
	if !ok {
		return Elements{}, fmt.Errorf("%w: velocity has %d", ErrDimension, len(v))
	}
	return FromState(frames.StateVector{EpochJD: jdUTC, Frame: frame, R: rv, V: vv})
}

// ChangeFrame re-expresses elements in another frame: elements to
// Cartesian, one resolved rotation applied to position and velocity,
// Cartesian back to elements. The EOP table follows the same rules as
// the frame resolver.
func ChangeFrame(el Elements, dest frames.Frame, data eop.Data) (Elements, error) {
	sv, err := ToState(el)
	if err != nil {
		return Elements{}, err
	}

	rot, err := resolve(el.Frame, dest, el.EpochJD, data)
	if err != nil {
		return Elements{}, err
	}

	sv.Frame = dest
	sv.R = rot.Apply(sv.R)
	sv.V = rot.Apply(sv.V)
	return FromState(sv)
}

// resolve picks the class-appropriate resolver call for the pair.
func resolve(origin, dest frames.Frame, jdUTC float64, data eop.Data) (rotation.Rotation, error) {
	const k = rotation.KindDCM
	switch {
	case origin.IsEarthFixed() && dest.IsEarthFixed():
		return frames.ECEFToECEF(k, origin, dest, jdUTC, data)
	case origin.IsEarthFixed():
		return frames.ECEFToECI(k, origin, dest, jdUTC, data)
	case dest.IsEarthFixed():
		return frames.ECIToECEF(k, origin, dest, jdUTC, data)
	}
	return frames.ECIToECI(k, origin, dest, jdUTC, data)
}

// clamp keeps acos arguments inside [-1, 1] against rounding.
func clamp(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
