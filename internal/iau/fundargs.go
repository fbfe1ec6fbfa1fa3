// Package iau implements the elementary angle models composed by the
// frame resolver: IAU-76 precession, IAU-80 nutation, IAU-82 sidereal
// time, and the IAU-2006/2010 Earth rotation angle, precession and CIP
// series. Formulas follow Vallado, "Fundamentals of Astrodynamics and
// Applications", Ch. 3, and the IERS Conventions.
//
// The long trigonometric series are truncated to their dominant terms;
// each file documents the truncation and its worst-case error.
package iau

import "math"

// ArcsecToRad converts arcseconds to radians.
const ArcsecToRad = math.Pi / 648000.0

// Turn is one full revolution in arcseconds.
const turnArcsec = 1296000.0

// FundArgs holds the Delaunay fundamental arguments in radians.
type FundArgs struct {
	L     float64 // mean anomaly of the Moon
	LP    float64 // mean anomaly of the Sun
	F     float64 // mean argument of latitude of the Moon
	D     float64 // mean elongation of the Moon from the Sun
	Omega float64 // mean longitude of the Moon's ascending node
}

// Fundamental computes the IAU-80 Delaunay arguments at T Julian
// centuries of TT since J2000.0.
func Fundamental(t float64) FundArgs {
	arg := func(a0, rev, a1, a2, a3 float64) float64 {
		sec := a0 + (rev*turnArcsec+a1)*t + a2*t*t + a3*t*t*t
		return math.Mod(sec*ArcsecToRad, 2*math.Pi)
	}
	return FundArgs{
		L:     arg(485866.733, 1325, 715922.633, 31.310, 0.064),
		LP:    arg(1287099.804, 99, 1292581.224, -0.577, -0.012),
		F:     arg(335778.877, 1342, 295263.137, -13.257, 0.011),
		D:     arg(1072261.307, 1236, 1105601.328, -6.891, 0.019),
		Omega: arg(450160.280, -5, -482890.539, 7.455, 0.008),
	}
}

// combination evaluates nl·l + nlp·l' + nf·F + nd·D + nom·Ω.
func (f FundArgs) combination(nl, nlp, nf, nd, nom int) float64 {
	return float64(nl)*f.L + float64(nlp)*f.LP + float64(nf)*f.F +
		float64(nd)*f.D + float64(nom)*f.Omega
}
