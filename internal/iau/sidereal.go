package iau

import (
	"math"

	"github.com/star/frames/timeutil"
)

// GMST82 computes Greenwich Mean Sidereal Time in radians at the given
// UT1 Julian Date, IAU-82 model (Vallado Eq 3-47).
func GMST82(jdUT1 float64) float64 {
	t := timeutil.JulianCenturies(jdUT1)

	// Seconds of time; 876600h = 3155760000 s.
	sec := 67310.54841 +
		(3155760000.0+8640184.812866)*t +
		0.093104*t*t -
		6.2e-6*t*t*t

	sec = math.Mod(sec, 86400.0)
	if sec < 0 {
		sec += 86400.0
	}
	return sec / 86400.0 * 2.0 * math.Pi
}

// EquationOfEquinoxes82 computes the 1982 equation of the equinoxes in
// radians. dpsi is the total nutation in longitude (including any
// EOP-derived correction) in radians at jdTT. The two complementary
// terms are applied for dates after 1997-02-27 per Vallado.
func EquationOfEquinoxes82(jdTT, dpsi float64) float64 {
	t := timeutil.JulianCenturies(jdTT)
	eps := MeanObliquity80(jdTT)
	eq := dpsi * math.Cos(eps)

	if jdTT > 2450449.5 {
		om := Fundamental(t).Omega
		eq += (0.00264*math.Sin(om) + 0.000063*math.Sin(2*om)) * ArcsecToRad
	}
	return eq
}

// ERA computes the Earth Rotation Angle in radians at the given UT1
// Julian Date (IERS Conventions 2010, Eq 5.15).
func ERA(jdUT1 float64) float64 {
	du := jdUT1 - timeutil.J2000
	f := math.Mod(du, 1.0)
	era := 2 * math.Pi * (0.7790572732640 + 0.00273781191135448*du + f)
	era = math.Mod(era, 2*math.Pi)
	if era < 0 {
		era += 2 * math.Pi
	}
	return era
}

// GMST06 computes Greenwich Mean Sidereal Time in radians consistent
// with the IAU-2006 precession (ERA plus the accumulated precession of
// the equinox in right ascension).
func GMST06(jdUT1, jdTT float64) float64 {
	t := timeutil.JulianCenturies(jdTT)
	poly := 0.014506 +
		t*(4612.156534+
			t*(1.3915817+
				t*(-0.00000044+
					t*(-0.000029956+
						t*(-0.0000000368)))))
	g := ERA(jdUT1) + poly*ArcsecToRad
	g = math.Mod(g, 2*math.Pi)
	if g < 0 {
		g += 2 * math.Pi
	}
	return g
}

// GAST06 computes Greenwich Apparent Sidereal Time for the IAU-2006
// equinox-based chain: GMST06 plus the equation of the equinoxes built
// from the 2006-adjusted nutation in longitude (radians) at jdTT. The
// full equation-of-origins series is not carried; the classical
// complementary terms bound the difference well below the CIP series
// truncation.
func GAST06(jdUT1, jdTT, dpsi float64) float64 {
	t := timeutil.JulianCenturies(jdTT)
	eps := MeanObliquity06(jdTT)
	eq := dpsi * math.Cos(eps)

	om := Fundamental(t).Omega
	eq += (0.00264*math.Sin(om) + 0.000063*math.Sin(2*om)) * ArcsecToRad

	g := GMST06(jdUT1, jdTT) + eq
	g = math.Mod(g, 2*math.Pi)
	if g < 0 {
		g += 2 * math.Pi
	}
	return g
}
