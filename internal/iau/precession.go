package iau

import "github.com/star/frames/timeutil"

// PrecessionAngles holds the equatorial precession angles ζ, θ, z in
// radians.
type PrecessionAngles struct {
	Zeta, Theta, Z float64
}

// Precession76 returns the IAU-76 precession angles at the given TT
// Julian Date (Lieske et al. polynomials, mean equator and equinox of
// J2000.0 to mean of date).
func Precession76(jdTT float64) PrecessionAngles {
	t := timeutil.JulianCenturies(jdTT)
	return PrecessionAngles{
		Zeta:  (2306.2181*t + 0.30188*t*t + 0.017998*t*t*t) * ArcsecToRad,
		Theta: (2004.3109*t - 0.42665*t*t - 0.041833*t*t*t) * ArcsecToRad,
		Z:     (2306.2181*t + 1.09468*t*t + 0.018203*t*t*t) * ArcsecToRad,
	}
}

// Precession06 returns the IAU-2006 (Capitaine et al.) equatorial
// precession angles at the given TT Julian Date. These exclude frame
// bias, which is a separate fixed rotation.
func Precession06(jdTT float64) PrecessionAngles {
	t := timeutil.JulianCenturies(jdTT)
	return PrecessionAngles{
		Zeta: (2.650545 +
			t*(2306.083227+
				t*(0.2988499+
					t*(0.01801828+
						t*(-0.000005971+
							t*(-0.0000003173)))))) * ArcsecToRad,
		Theta: (t * (2004.191903 +
			t*(-0.4294934+
				t*(-0.04182264+
					t*(-0.000007089+
						t*(-0.0000001274)))))) * ArcsecToRad,
		Z: (-2.650545 +
			t*(2306.077181+
				t*(1.0927348+
					t*(0.01826837+
						t*(-0.000028596+
							t*(-0.0000002904)))))) * ArcsecToRad,
	}
}

// Frame bias of the GCRS with respect to the J2000.0 mean equator and
// equinox (IERS Conventions 2010), in radians.
const (
	BiasDAlpha0 = -0.0146 * ArcsecToRad
	BiasXi0     = -0.016617 * ArcsecToRad
	BiasEta0    = -0.0068192 * ArcsecToRad
)
