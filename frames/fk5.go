package frames

import (
	"fmt"

	"github.com/star/frames/eop"
	"github.com/star/frames/internal/iau"
	"github.com/star/frames/rotation"
	"github.com/star/frames/timeutil"
)

const masToRad = 1e-3 * iau.ArcsecToRad

// fk5Times derives the UT1 and TT Julian Dates for a resolve call. EOP
// series are sampled at JD(UTC); without a table UT1 is taken equal to
// UTC.
func fk5Times(jdUTC float64, d *eop.IAU1980) (jdUT1, jdTT float64) {
	jdUT1 = jdUTC
	if d != nil {
		jdUT1 = timeutil.UT1(jdUTC, d.DUT1(jdUTC))
	}
	return jdUT1, timeutil.TT(jdUTC)
}

// fk5Corrections returns the observed nutation corrections in radians,
// or zeros when the table is absent or the destination chain must stay
// correction-free (the J2000 leg).
func fk5Corrections(jdUTC float64, d *eop.IAU1980, corr bool) (dpsi, deps float64) {
	if d == nil || !corr {
		return 0, 0
	}
	p, e := d.NutationCorrections(jdUTC)
	return p * masToRad, e * masToRad
}

// fk5PolarMotion builds the ITRF -> PEF rotation. Pole coordinates are
// in radians.
func fk5PolarMotion(k rotation.Kind, xp, yp float64) rotation.Rotation {
	return rotation.Compose(
		rotation.AboutX(k, yp),
		rotation.AboutY(k, xp),
	)
}

// fk5NutationMatrix builds the TOD -> MOD rotation from the total
// nutation angles (model plus any EOP correction) in radians.
func fk5NutationMatrix(k rotation.Kind, jdTT, dpsi, deps float64) rotation.Rotation {
	eps := iau.MeanObliquity80(jdTT)
	return rotation.Compose(
		rotation.AboutX(k, eps+deps),
		rotation.AboutZ(k, dpsi),
		rotation.AboutX(k, -eps),
	)
}

// fk5PrecessionMatrix builds the MOD -> J2000/GCRF rotation.
func fk5PrecessionMatrix(k rotation.Kind, jdTT float64) rotation.Rotation {
	p := iau.Precession76(jdTT)
	return rotation.Compose(
		rotation.AboutZ(k, p.Z),
		rotation.AboutY(k, -p.Theta),
		rotation.AboutZ(k, p.Zeta),
	)
}

// fk5PEFToInertial composes the up-chain rotation from PEF to one of
// the FK5 inertial frames. corr selects whether EOP nutation
// corrections enter the chain; for a J2000 destination the caller
// passes false so the chain stays nominally correction-free.
func fk5PEFToInertial(k rotation.Kind, dest Frame, jdUTC float64, d *eop.IAU1980, corr bool) (rotation.Rotation, error) {
	jdUT1, jdTT := fk5Times(jdUTC, d)

	if dest == TEME {
		return rotation.AboutZ(k, -iau.GMST82(jdUT1)), nil
	}

	dpsiC, depsC := fk5Corrections(jdUTC, d, corr)
	dpsi, deps := iau.Nutation80(jdTT)
	dpsi += dpsiC
	deps += depsC

	gast := iau.GMST82(jdUT1) + iau.EquationOfEquinoxes82(jdTT, dpsi)
	rot := rotation.AboutZ(k, -gast)
	if dest == TOD {
		return rot, nil
	}

	rot = rotation.Compose(rot, fk5NutationMatrix(k, jdTT, dpsi, deps))
	if dest == MOD {
		return rot, nil
	}

	if dest != GCRF && dest != J2000 {
		return nil, fmt.Errorf("%s is not an FK5 inertial frame", dest)
	}
	return rotation.Compose(rot, fk5PrecessionMatrix(k, jdTT)), nil
}

// fk5CorrFor reports whether EOP nutation corrections belong in the
// chain reaching the given inertial frame. J2000 is defined without
// them; every other FK5 inertial frame carries them when a table is
// present.
func fk5CorrFor(f Frame, d *eop.IAU1980) bool {
	return d != nil && f != J2000
}

// fk5ECEFToECI resolves origin in {ITRF, PEF} to an FK5 inertial
// destination at one epoch.
func fk5ECEFToECI(k rotation.Kind, origin, dest Frame, jdUTC float64, d *eop.IAU1980) (rotation.Rotation, error) {
	up, err := fk5PEFToInertial(k, dest, jdUTC, d, fk5CorrFor(dest, d))
	if err != nil {
		return nil, err
	}
	if origin == PEF {
		return up, nil
	}
	if origin != ITRF {
		return nil, fmt.Errorf("%s is not an FK5 Earth-fixed frame", origin)
	}

	var xp, yp float64
	if d != nil {
		x, y := d.PolarMotion(jdUTC)
		xp = x * iau.ArcsecToRad
		yp = y * iau.ArcsecToRad
	}
	return rotation.Compose(fk5PolarMotion(k, xp, yp), up), nil
}

// fk5ECIToECI resolves between two FK5 inertial frames at one epoch by
// routing through PEF: down-chain under the origin's correction
// convention, up-chain under the destination's. With EOP present this
// reproduces the correct-then-cancel composition for pairs involving
// J2000, which must stay free of observed corrections; the composition
// order is kept literal rather than simplified algebraically.
func fk5ECIToECI(k rotation.Kind, origin, dest Frame, jdUTC float64, d *eop.IAU1980) (rotation.Rotation, error) {
	down, err := fk5PEFToInertial(k, origin, jdUTC, d, fk5CorrFor(origin, d))
	if err != nil {
		return nil, err
	}
	up, err := fk5PEFToInertial(k, dest, jdUTC, d, fk5CorrFor(dest, d))
	if err != nil {
		return nil, err
	}
	return rotation.Compose(down.Inverse(), up), nil
}

// fk5ECEFToECEF resolves between the FK5 Earth-fixed frames (ITRF and
// PEF) at one epoch.
func fk5ECEFToECEF(k rotation.Kind, origin, dest Frame, jdUTC float64, d *eop.IAU1980) (rotation.Rotation, error) {
	for _, f := range [2]Frame{origin, dest} {
		if f != ITRF && f != PEF {
			return nil, fmt.Errorf("%s is not an FK5 Earth-fixed frame", f)
		}
	}
	if origin == dest {
		return rotation.Identity(k), nil
	}

	var xp, yp float64
	if d != nil {
		x, y := d.PolarMotion(jdUTC)
		xp = x * iau.ArcsecToRad
		yp = y * iau.ArcsecToRad
	}
	pm := fk5PolarMotion(k, xp, yp)
	if origin == ITRF {
		return pm, nil
	}
	return pm.Inverse(), nil
}
