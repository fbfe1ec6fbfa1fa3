package iau

import "github.com/star/frames/timeutil"

// MeanObliquity80 returns the IAU-80 mean obliquity of the ecliptic in
// radians at the given TT Julian Date.
func MeanObliquity80(jdTT float64) float64 {
	t := timeutil.JulianCenturies(jdTT)
	sec := 84381.448 - 46.8150*t - 0.00059*t*t + 0.001813*t*t*t
	return sec * ArcsecToRad
}

// MeanObliquity06 returns the IAU-2006 mean obliquity of the ecliptic
// in radians at the given TT Julian Date.
func MeanObliquity06(jdTT float64) float64 {
	t := timeutil.JulianCenturies(jdTT)
	sec := 84381.406 +
		t*(-46.836769+
			t*(-0.0001831+
				t*(0.00200340+
					t*(-0.000000576+
						t*(-0.0000000434)))))
	return sec * ArcsecToRad
}
