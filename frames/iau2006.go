package frames

import (
	"fmt"
	"math"

	"github.com/star/frames/eop"
	"github.com/star/frames/internal/iau"
	"github.com/star/frames/rotation"
	"github.com/star/frames/timeutil"
)

func cioTimes(jdUTC float64, d *eop.IAU2000A) (jdUT1, jdTT float64) {
	jdUT1 = jdUTC
	if d != nil {
		jdUT1 = timeutil.UT1(jdUTC, d.DUT1(jdUTC))
	}
	return jdUT1, timeutil.TT(jdUTC)
}

// cioPolarMotion builds the ITRF -> TIRS rotation: polar motion plus
// the TIO locator s'. Pole coordinates are in radians.
func cioPolarMotion(k rotation.Kind, jdTT, xp, yp float64) rotation.Rotation {
	return rotation.Compose(
		rotation.AboutX(k, yp),
		rotation.AboutY(k, xp),
		rotation.AboutZ(k, -iau.SPrime(jdTT)),
	)
}

// cioCIRSToGCRF builds the CIRS -> GCRF rotation from the CIP
// coordinates and the CIO locator, with the dX/dY observed corrections
// (radians) folded in when an IAU2000A table is present.
func cioCIRSToGCRF(k rotation.Kind, jdTT, dx, dy float64) rotation.Rotation {
	x, y, s := iau.CIPXYs(jdTT)
	x += dx
	y += dy

	e := math.Atan2(y, x)
	r2 := x*x + y*y
	dang := math.Atan(math.Sqrt(r2 / (1 - r2)))

	gcrfToCIRS := rotation.Compose(
		rotation.AboutZ(k, e),
		rotation.AboutY(k, dang),
		rotation.AboutZ(k, -(e+s)),
	)
	return gcrfToCIRS.Inverse()
}

// eqx06NutationMatrix builds the ERS -> MOD06 rotation from the
// IAU-2006 nutation angles.
func eqx06NutationMatrix(k rotation.Kind, jdTT float64) rotation.Rotation {
	dpsi, deps := iau.Nutation06(jdTT)
	eps := iau.MeanObliquity06(jdTT)
	return rotation.Compose(
		rotation.AboutX(k, eps+deps),
		rotation.AboutZ(k, dpsi),
		rotation.AboutX(k, -eps),
	)
}

// eqx06PrecessionMatrix builds the MOD06 -> MJ2000 rotation.
func eqx06PrecessionMatrix(k rotation.Kind, jdTT float64) rotation.Rotation {
	p := iau.Precession06(jdTT)
	return rotation.Compose(
		rotation.AboutZ(k, p.Z),
		rotation.AboutY(k, -p.Theta),
		rotation.AboutZ(k, p.Zeta),
	)
}

// biasMJ2000ToGCRF is the fixed frame-bias rotation of the IAU-2006
// theory; it is epoch-independent.
func biasMJ2000ToGCRF(k rotation.Kind) rotation.Rotation {
	gcrfToMJ2000 := rotation.Compose(
		rotation.AboutZ(k, iau.BiasDAlpha0),
		rotation.AboutY(k, iau.BiasXi0),
		rotation.AboutX(k, -iau.BiasEta0),
	)
	return gcrfToMJ2000.Inverse()
}

// cioTIRSToInertial composes the up-chain rotation from TIRS to one of
// the IAU-2006/2010 inertial frames. GCRF is reached through the CIO
// path (CIRS plus the CIP matrix, with dX/dY corrections when a table
// is present); ERS, MOD06 and MJ2000 through the equinox path, which
// carries no observed corrections.
func cioTIRSToInertial(k rotation.Kind, dest Frame, jdUTC float64, d *eop.IAU2000A) (rotation.Rotation, error) {
	jdUT1, jdTT := cioTimes(jdUTC, d)

	switch dest {
	case CIRS, GCRF:
		rot := rotation.AboutZ(k, -iau.ERA(jdUT1))
		if dest == CIRS {
			return rot, nil
		}
		var dx, dy float64
		if d != nil {
			cx, cy := d.CIPCorrections(jdUTC)
			dx = cx * masToRad
			dy = cy * masToRad
		}
		return rotation.Compose(rot, cioCIRSToGCRF(k, jdTT, dx, dy)), nil

	case ERS, MOD06, MJ2000:
		dpsi, _ := iau.Nutation06(jdTT)
		rot := rotation.AboutZ(k, -iau.GAST06(jdUT1, jdTT, dpsi))
		if dest == ERS {
			return rot, nil
		}
		rot = rotation.Compose(rot, eqx06NutationMatrix(k, jdTT))
		if dest == MOD06 {
			return rot, nil
		}
		return rotation.Compose(rot, eqx06PrecessionMatrix(k, jdTT)), nil
	}
	return nil, fmt.Errorf("%s is not an IAU-2006 inertial frame", dest)
}

// cioECEFToECI resolves origin in {ITRF, TIRS} to an IAU-2006 inertial
// destination at one epoch.
func cioECEFToECI(k rotation.Kind, origin, dest Frame, jdUTC float64, d *eop.IAU2000A) (rotation.Rotation, error) {
	up, err := cioTIRSToInertial(k, dest, jdUTC, d)
	if err != nil {
		return nil, err
	}
	if origin == TIRS {
		return up, nil
	}
	if origin != ITRF {
		return nil, fmt.Errorf("%s is not an IAU-2006 Earth-fixed frame", origin)
	}

	_, jdTT := cioTimes(jdUTC, d)
	var xp, yp float64
	if d != nil {
		x, y := d.PolarMotion(jdUTC)
		xp = x * iau.ArcsecToRad
		yp = y * iau.ArcsecToRad
	}
	return rotation.Compose(cioPolarMotion(k, jdTT, xp, yp), up), nil
}

// cioECIToECI resolves between two IAU-2006 inertial frames at one
// epoch. GCRF <-> MJ2000 is the fixed bias rotation regardless of
// epoch or EOP presence; every other pair routes through TIRS.
func cioECIToECI(k rotation.Kind, origin, dest Frame, jdUTC float64, d *eop.IAU2000A) (rotation.Rotation, error) {
	switch {
	case origin == MJ2000 && dest == GCRF:
		return biasMJ2000ToGCRF(k), nil
	case origin == GCRF && dest == MJ2000:
		return biasMJ2000ToGCRF(k).Inverse(), nil
	}

	down, err := cioTIRSToInertial(k, origin, jdUTC, d)
	if err != nil {
		return nil, err
	}
	up, err := cioTIRSToInertial(k, dest, jdUTC, d)
	if err != nil {
		return nil, err
	}
	return rotation.Compose(down.Inverse(), up), nil
}

// cioECEFToECEF resolves between the IAU-2006 Earth-fixed frames (ITRF
// and TIRS) at one epoch.
func cioECEFToECEF(k rotation.Kind, origin, dest Frame, jdUTC float64, d *eop.IAU2000A) (rotation.Rotation, error) {
	for _, f := range [2]Frame{origin, dest} {
		if f != ITRF && f != TIRS {
			return nil, fmt.Errorf("%s is not an IAU-2006 Earth-fixed frame", f)
		}
	}
	if origin == dest {
		return rotation.Identity(k), nil
	}

	_, jdTT := cioTimes(jdUTC, d)
	var xp, yp float64
	if d != nil {
		x, y := d.PolarMotion(jdUTC)
		xp = x * iau.ArcsecToRad
		yp = y * iau.ArcsecToRad
	}
	pm := cioPolarMotion(k, jdTT, xp, yp)
	if origin == ITRF {
		return pm, nil
	}
	return pm.Inverse(), nil
}
