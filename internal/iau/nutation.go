package iau

import (
	"math"

	"github.com/star/frames/timeutil"
)

// nutTerm is one row of the IAU-80 nutation series. Angles are the
// integer multipliers of the Delaunay arguments; coefficients are in
// units of 0.1 mas (1e-4 arcsec), with sp/ep the T-rates.
type nutTerm struct {
	nl, nlp, nf, nd, nom int
	s, sp                float64 // Δψ sine coefficient and rate
	c, cp                float64 // Δε cosine coefficient and rate
}

// nut80 holds the dominant terms of the 1980 IAU nutation theory,
// truncated at roughly |Δψ| ≥ 1 mas. The omitted tail contributes a few
// mas worst case, below the tolerance of every consumer in this module.
var nut80 = []nutTerm{
	{0, 0, 0, 0, 1, -171996, -174.2, 92025, 8.9},
	{0, 0, 2, -2, 2, -13187, -1.6, 5736, -3.1},
	{0, 0, 2, 0, 2, -2274, -0.2, 977, -0.5},
	{0, 0, 0, 0, 2, 2062, 0.2, -895, 0.5},
	{0, 1, 0, 0, 0, 1426, -3.4, 54, -0.1},
	{1, 0, 0, 0, 0, 712, 0.1, -7, 0},
	{0, 1, 2, -2, 2, -517, 1.2, 224, -0.6},
	{0, 0, 2, 0, 1, -386, -0.4, 200, 0},
	{1, 0, 2, 0, 2, -301, 0, 129, -0.1},
	{0, -1, 2, -2, 2, 217, -0.5, -95, 0.3},
	{1, 0, 0, -2, 0, -158, 0, -1, 0},
	{0, 0, 2, -2, 1, 129, 0.1, -70, 0},
	{-1, 0, 2, 0, 2, 123, 0, -53, 0},
	{1, 0, 0, 0, 1, 63, 0.1, -33, 0},
	{0, 0, 0, 2, 0, 63, 0, -2, 0},
	{-1, 0, 2, 2, 2, -59, 0, 26, 0},
	{-1, 0, 0, 0, 1, -58, -0.1, 32, 0},
	{1, 0, 2, 0, 1, -51, 0, 27, 0},
	{2, 0, 0, -2, 0, 48, 0, 1, 0},
	{-2, 0, 2, 0, 1, 46, 0, -24, 0},
	{0, 0, 2, 2, 2, -38, 0, 16, 0},
	{2, 0, 2, 0, 2, -31, 0, 13, 0},
	{2, 0, 0, 0, 0, 29, 0, -1, 0},
	{1, 0, 2, -2, 2, 29, 0, -12, 0},
	{0, 0, 2, 0, 0, 26, 0, -1, 0},
	{0, 0, 2, -2, 0, -22, 0, 0, 0},
	{-1, 0, 2, 0, 1, 21, 0, -10, 0},
	{0, 2, 0, 0, 0, 17, -0.1, 0, 0},
	{0, 2, 2, -2, 2, -16, 0.1, 7, 0},
	{-1, 0, 0, 2, 1, 16, 0, -8, 0},
	{0, 1, 0, 0, 1, -15, 0, 9, 0},
	{1, 0, 0, -2, 1, -13, 0, 7, 0},
	{0, -1, 0, 0, 1, -12, 0, 6, 0},
	{2, 0, -2, 0, 0, 11, 0, 0, 0},
	{-1, 0, 2, 2, 1, -10, 0, 5, 0},
}

// Nutation80 evaluates the truncated IAU-80 nutation series at the
// given TT Julian Date. Returns nutation in longitude Δψ and obliquity
// Δε, both in radians, without any EOP-derived corrections.
func Nutation80(jdTT float64) (dpsi, deps float64) {
	t := timeutil.JulianCenturies(jdTT)
	args := Fundamental(t)

	// 0.1 mas units.
	var ps, es float64
	for _, term := range nut80 {
		a := args.combination(term.nl, term.nlp, term.nf, term.nd, term.nom)
		sin, cos := math.Sincos(a)
		ps += (term.s + term.sp*t) * sin
		es += (term.c + term.cp*t) * cos
	}

	dpsi = ps * 1e-4 * ArcsecToRad
	deps = es * 1e-4 * ArcsecToRad
	return dpsi, deps
}

// Nutation06 evaluates nutation for the IAU-2006 precession framework:
// the IAU-80 series rescaled by the P03 J2-rate and secular
// adjustments (the same adjustment SOFA applies to the 2000A series).
func Nutation06(jdTT float64) (dpsi, deps float64) {
	t := timeutil.JulianCenturies(jdTT)
	dp, de := Nutation80(jdTT)

	fj2 := -2.7774e-6 * t
	dpsi = dp * (1 + 0.4697e-6 + fj2)
	deps = de * (1 + fj2)
	return dpsi, deps
}
