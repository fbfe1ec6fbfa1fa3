package iau

import (
	"math"

	"github.com/star/frames/timeutil"
)

// cipTerm is one periodic term of the truncated X/Y/s series: a sine
// and cosine amplitude in μas for one Delaunay-argument combination,
// with a T power.
type cipTerm struct {
	nl, nlp, nf, nd, nom int
	sin, cos             float64 // μas
	power                int     // multiply by T^power
}

// Dominant periodic terms of the IAU-2006/2010 CIP X coordinate (μas).
// Truncation keeps X good to roughly 0.1 mas over ±1 century.
var cipX = []cipTerm{
	{0, 0, 0, 0, 1, -6844318.44, 1328.67, 0},
	{0, 0, 2, -2, 2, -523908.04, -544.75, 0},
	{0, 0, 2, 0, 2, -90552.22, 111.23, 0},
	{0, 0, 0, 0, 2, 82168.76, -27.64, 0},
	{0, 1, 0, 0, 0, 58707.02, 470.05, 0},
	{0, 0, 0, 0, 1, -3309.73, 205833.11, 1},
	{0, 0, 2, -2, 2, 853.32, 12814.01, 1},
	{0, 0, 2, 0, 2, -303.46, 2187.91, 1},
}

// Dominant periodic terms of the CIP Y coordinate (μas).
var cipY = []cipTerm{
	{0, 0, 0, 0, 1, 1538.18, 9205236.26, 0},
	{0, 0, 2, -2, 2, -458.66, 573033.42, 0},
	{0, 0, 2, 0, 2, 137.41, 97846.69, 0},
	{0, 0, 0, 0, 2, -29.05, -89618.24, 0},
	{0, 1, 0, 0, 0, -17.40, 22438.42, 0},
	{0, 0, 0, 0, 1, 153041.79, 853.32, 1},
	{0, 0, 2, -2, 2, 11714.49, -290.91, 1},
	{0, 0, 2, 0, 2, -1530.00, -17.72, 1},
}

// Dominant periodic terms of s + XY/2 (μas).
var cipS = []cipTerm{
	{0, 0, 0, 0, 1, -2640.73, 0.39, 0},
	{0, 0, 0, 0, 2, -63.53, 0.02, 0},
	{0, 0, 2, -2, 3, -11.75, -0.01, 0},
	{0, 0, 2, -2, 1, -11.21, -0.01, 0},
	{0, 0, 2, -2, 2, 4.57, 0, 0},
	{0, 0, 2, 0, 3, -2.02, 0, 0},
	{0, 0, 2, 0, 1, -1.98, 0, 0},
	{0, 0, 0, 0, 3, 1.72, 0, 0},
	{0, 1, 0, 0, 1, 1.41, 0.01, 0},
	{0, 1, 0, 0, -1, 1.26, 0.01, 0},
	{1, 0, 0, 0, -1, 0.63, 0, 0},
	{1, 0, 0, 0, 1, 0.63, 0, 0},
	{0, 0, 0, 0, 1, 743.52, -0.17, 2},
	{0, 0, 2, -2, 2, 56.91, 0.06, 2},
	{0, 0, 2, 0, 2, 9.84, -0.01, 2},
	{0, 0, 0, 0, 2, -8.85, 0.01, 2},
}

func evalCIPSeries(terms []cipTerm, args FundArgs, t float64) float64 {
	var sum float64 // μas
	for _, term := range terms {
		a := args.combination(term.nl, term.nlp, term.nf, term.nd, term.nom)
		sin, cos := math.Sincos(a)
		v := term.sin*sin + term.cos*cos
		for p := 0; p < term.power; p++ {
			v *= t
		}
		sum += v
	}
	return sum * 1e-6 * ArcsecToRad // μas → rad
}

// CIPXYs returns the CIP coordinates X, Y and the CIO locator s (all
// radians) at the given TT Julian Date, IAU-2006/2010, truncated
// series. No EOP corrections are applied here; the resolver adds
// dX/dY when available.
func CIPXYs(jdTT float64) (x, y, s float64) {
	t := timeutil.JulianCenturies(jdTT)
	args := Fundamental(t)

	xPoly := -0.016617 +
		t*(2004.191898+
			t*(-0.4297829+
				t*(-0.19861834+
					t*(0.000007578+
						t*(0.0000059285)))))
	yPoly := -0.006951 +
		t*(-0.025896+
			t*(-22.4072747+
				t*(0.00190059+
					t*(0.001112526+
						t*(0.0000001358)))))
	sPoly := 0.000094 +
		t*(0.00380865+
			t*(-0.00012268+
				t*(-0.07257411+
					t*(0.00002798+
						t*(0.00001562)))))

	x = xPoly*ArcsecToRad + evalCIPSeries(cipX, args, t)
	y = yPoly*ArcsecToRad + evalCIPSeries(cipY, args, t)
	s = sPoly*ArcsecToRad + evalCIPSeries(cipS, args, t) - x*y/2
	return x, y, s
}

// SPrime returns the TIO locator s' in radians at the given TT Julian
// Date (-47 μas per century).
func SPrime(jdTT float64) float64 {
	return -0.000047 * timeutil.JulianCenturies(jdTT) * ArcsecToRad
}
