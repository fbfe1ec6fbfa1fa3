package frames

import (
	"github.com/star/frames/eop"
	"github.com/star/frames/rotation"
)

// EarthAngularSpeed is the nominal Earth rotation rate in rad/s. The
// effective rate is scaled by (1 - LOD/86400) when an EOP table
// supplies the excess length of day.
const EarthAngularSpeed = 7.292115146706979e-5

// StateVector is a position/velocity/acceleration triple expressed in
// one named frame at one UTC Julian Date, as measured by an observer
// co-rotating with that frame. Units are km, km/s, km/s². Values are
// never mutated; transports return new instances at the same epoch.
type StateVector struct {
	EpochJD float64
	Frame   Frame
	R, V, A rotation.Vec3
}

// earthAngularVelocity returns the Earth angular velocity vector in the
// Earth-fixed frame, LOD-corrected when a table is present.
func earthAngularVelocity(jdUTC float64, data eop.Data) rotation.Vec3 {
	w := EarthAngularSpeed
	if data != nil {
		w *= 1 - data.LOD(jdUTC)/86400
	}
	return rotation.Vec3{Z: w}
}

// transportPlain rotates all three vectors identically; valid when the
// origin and destination frames are both Earth-fixed or both inertial,
// whose relative angular velocity is negligible by construction.
func transportPlain(sv StateVector, dest Frame, rot rotation.Rotation) StateVector {
	return StateVector{
		EpochJD: sv.EpochJD,
		Frame:   dest,
		R:       rot.Apply(sv.R),
		V:       rot.Apply(sv.V),
		A:       rot.Apply(sv.A),
	}
}

// earthFixedPivot is the canonical Earth-fixed intermediate frame of a
// theory; the rotation-rate correction is applied there.
func earthFixedPivot(th Theory) Frame {
	if th == TheoryIAU2006 {
		return TIRS
	}
	return PEF
}

// TransportECEFToECEF re-expresses a state between two Earth-fixed
// frames.
func TransportECEFToECEF(sv StateVector, dest Frame, data eop.Data) (StateVector, error) {
	rot, err := ECEFToECEF(rotation.KindDCM, sv.Frame, dest, sv.EpochJD, data)
	if err != nil {
		return StateVector{}, err
	}
	return transportPlain(sv, dest, rot), nil
}

// TransportECIToECI re-expresses a state between two inertial frames at
// the state's epoch.
func TransportECIToECI(sv StateVector, dest Frame, data eop.Data) (StateVector, error) {
	rot, err := ECIToECI(rotation.KindDCM, sv.Frame, dest, sv.EpochJD, data)
	if err != nil {
		return StateVector{}, err
	}
	return transportPlain(sv, dest, rot), nil
}

// TransportECEFToECI re-expresses an Earth-fixed state in an inertial
// frame, adding the Earth-rotation terms of the transport theorem. The
// state is first brought to the theory's canonical Earth-fixed pivot
// (PEF or TIRS), where the angular velocity vector is [0, 0, ω].
func TransportECEFToECI(sv StateVector, dest Frame, data eop.Data) (StateVector, error) {
	th, err := resolveTheory(sv.Frame, dest, data)
	if err != nil {
		return StateVector{}, err
	}
	pivot := earthFixedPivot(th)

	pv := sv
	if sv.Frame != pivot {
		pv, err = TransportECEFToECEF(sv, pivot, data)
		if err != nil {
			return StateVector{}, err
		}
	}

	rot, err := ECEFToECI(rotation.KindDCM, pivot, dest, sv.EpochJD, data)
	if err != nil {
		return StateVector{}, err
	}

	w := earthAngularVelocity(sv.EpochJD, data)
	return StateVector{
		EpochJD: sv.EpochJD,
		Frame:   dest,
		R:       rot.Apply(pv.R),
		V:       rot.Apply(pv.V.Add(w.Cross(pv.R))),
		A: rot.Apply(pv.A.
			Add(w.Cross(w.Cross(pv.R))).
			Add(w.Cross(pv.V).Scale(2))),
	}, nil
}

// TransportECIToECEF re-expresses an inertial state in an Earth-fixed
// frame. The sign and term order mirror TransportECEFToECI exactly;
// the two directions are not symmetric.
func TransportECIToECEF(sv StateVector, dest Frame, data eop.Data) (StateVector, error) {
	th, err := resolveTheory(sv.Frame, dest, data)
	if err != nil {
		return StateVector{}, err
	}
	pivot := earthFixedPivot(th)

	rot, err := ECIToECEF(rotation.KindDCM, sv.Frame, pivot, sv.EpochJD, data)
	if err != nil {
		return StateVector{}, err
	}

	w := earthAngularVelocity(sv.EpochJD, data)
	r := rot.Apply(sv.R)
	v := rot.Apply(sv.V).Sub(w.Cross(r))
	a := rot.Apply(sv.A).
		Sub(w.Cross(w.Cross(r))).
		Sub(w.Cross(v).Scale(2))

	pv := StateVector{EpochJD: sv.EpochJD, Frame: pivot, R: r, V: v, A: a}
	if dest == pivot {
		return pv, nil
	}
	return TransportECEFToECEF(pv, dest, data)
}

// Transport re-expresses a state in the destination frame, dispatching
// on the origin/destination frame classes.
func Transport(sv StateVector, dest Frame, data eop.Data) (StateVector, error) {
	switch {
	case sv.Frame.IsEarthFixed() && dest.IsEarthFixed():
		return TransportECEFToECEF(sv, dest, data)
	case sv.Frame.IsEarthFixed():
		return TransportECEFToECI(sv, dest, data)
	case dest.IsEarthFixed():
		return TransportECIToECEF(sv, dest, data)
	default:
		return TransportECIToECI(sv, dest, data)
	}
}

// transportClass selects how a Transporter applies its resolved
// rotations to a state.
type transportClass int

const (
	classPlain transportClass = iota
	classToInertial
	classToEarthFixed
)

// Transporter re-expresses many states sharing one frame pair and one
// epoch. The rotation chain and the angular velocity are resolved once
// at construction; Apply is then a pure matrix-vector operation and is
// safe for concurrent use.
type Transporter struct {
	origin, dest Frame
	epochJD      float64
	class        transportClass
	toPivot      rotation.Rotation // origin → pivot, identity when origin is the pivot
	fromPivot    rotation.Rotation // pivot → dest, identity when dest is the pivot
	w            rotation.Vec3
}

// NewTransporter resolves the chain from origin to dest at the given
// UTC Julian Date.
func NewTransporter(origin, dest Frame, jdUTC float64, data eop.Data) (*Transporter, error) {
	tr := &Transporter{origin: origin, dest: dest, epochJD: jdUTC}

	switch {
	case origin.IsEarthFixed() == dest.IsEarthFixed():
		tr.class = classPlain
		var err error
		if origin.IsEarthFixed() {
			tr.fromPivot, err = ECEFToECEF(rotation.KindDCM, origin, dest, jdUTC, data)
		} else {
			tr.fromPivot, err = ECIToECI(rotation.KindDCM, origin, dest, jdUTC, data)
		}
		if err != nil {
			return nil, err
		}
		tr.toPivot = rotation.Identity(rotation.KindDCM)

	case origin.IsEarthFixed():
		th, err := resolveTheory(origin, dest, data)
		if err != nil {
			return nil, err
		}
		pivot := earthFixedPivot(th)
		tr.class = classToInertial
		tr.toPivot = rotation.Identity(rotation.KindDCM)
		if origin != pivot {
			tr.toPivot, err = ECEFToECEF(rotation.KindDCM, origin, pivot, jdUTC, data)
			if err != nil {
				return nil, err
			}
		}
		tr.fromPivot, err = ECEFToECI(rotation.KindDCM, pivot, dest, jdUTC, data)
		if err != nil {
			return nil, err
		}
		tr.w = earthAngularVelocity(jdUTC, data)

	default:
		th, err := resolveTheory(origin, dest, data)
		if err != nil {
			return nil, err
		}
		pivot := earthFixedPivot(th)
		tr.class = classToEarthFixed
		tr.toPivot, err = ECIToECEF(rotation.KindDCM, origin, pivot, jdUTC, data)
		if err != nil {
			return nil, err
		}
		tr.fromPivot = rotation.Identity(rotation.KindDCM)
		if dest != pivot {
			tr.fromPivot, err = ECEFToECEF(rotation.KindDCM, pivot, dest, jdUTC, data)
			if err != nil {
				return nil, err
			}
		}
		tr.w = earthAngularVelocity(jdUTC, data)
	}

	return tr, nil
}

// Origin returns the frame Apply expects its input states in.
func (tr *Transporter) Origin() Frame { return tr.origin }

// Destination returns the frame Apply produces states in.
func (tr *Transporter) Destination() Frame { return tr.dest }

// EpochJD returns the UTC Julian Date the chain was resolved at.
func (tr *Transporter) EpochJD() float64 { return tr.epochJD }

// Apply re-expresses one state. The state's Frame and EpochJD fields
// are ignored; the transporter's resolved pair and epoch govern.
func (tr *Transporter) Apply(sv StateVector) StateVector {
	switch tr.class {
	case classToInertial:
		pr := tr.toPivot.Apply(sv.R)
		pvv := tr.toPivot.Apply(sv.V)
		pa := tr.toPivot.Apply(sv.A)
		return StateVector{
			EpochJD: tr.epochJD,
			Frame:   tr.dest,
			R:       tr.fromPivot.Apply(pr),
			V:       tr.fromPivot.Apply(pvv.Add(tr.w.Cross(pr))),
			A: tr.fromPivot.Apply(pa.
				Add(tr.w.Cross(tr.w.Cross(pr))).
				Add(tr.w.Cross(pvv).Scale(2))),
		}

	case classToEarthFixed:
		r := tr.toPivot.Apply(sv.R)
		v := tr.toPivot.Apply(sv.V).Sub(tr.w.Cross(r))
		a := tr.toPivot.Apply(sv.A).
			Sub(tr.w.Cross(tr.w.Cross(r))).
			Sub(tr.w.Cross(v).Scale(2))
		return StateVector{
			EpochJD: tr.epochJD,
			Frame:   tr.dest,
			R:       tr.fromPivot.Apply(r),
			V:       tr.fromPivot.Apply(v),
			A:       tr.fromPivot.Apply(a),
		}

	default:
		return StateVector{
			EpochJD: tr.epochJD,
			Frame:   tr.dest,
			R:       tr.fromPivot.Apply(sv.R),
			V:       tr.fromPivot.Apply(sv.V),
			A:       tr.fromPivot.Apply(sv.A),
		}
	}
}
