// Package timeutil converts between time.Time and Julian dates and
// between the UTC, TT and UT1 time scales used by frame transforms.
package timeutil

import (
	"math"
	"time"
)

// J2000 is the Julian Date of the J2000.0 epoch (2000-01-01 12:00:00 TT).
const J2000 = 2451545.0

// MJDOffset converts Modified Julian Date to Julian Date.
const MJDOffset = 2400000.5

// JulianDate converts a time.Time (interpreted in UTC) to Julian Date.
// Uses the standard astronomical algorithm valid for dates after
// March 1, 4801 BC.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())
	h := float64(t.Hour())
	min := float64(t.Minute())
	s := float64(t.Second()) + float64(t.Nanosecond())/1e9

	// Treat Jan/Feb as months 13/14 of the previous year.
	if m <= 2 {
		y -= 1
		m += 12
	}

	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)

	jd := math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + b - 1524.5
	jd += (h + min/60.0 + s/3600.0) / 24.0

	return jd
}

// FromJulian converts a Julian Date back to a time.Time in UTC.
// Resolution is limited by float64 to roughly a microsecond for
// present-day dates.
func FromJulian(jd float64) time.Time {
	const unixEpochJD = 2440587.5
	sec := (jd - unixEpochJD) * 86400.0
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

// JulianCenturies returns Julian centuries elapsed since J2000.0.
func JulianCenturies(jd float64) float64 {
	return (jd - J2000) / 36525.0
}

// leapStep is one entry of the TAI-UTC table.
type leapStep struct {
	jd  float64 // start of validity (UTC)
	dat float64 // TAI - UTC in seconds
}

// Cumulative leap seconds since 1972 (IERS Bulletin C). Flat before the
// first and after the last entry.
var leapSeconds = []leapStep{
	{41317 + MJDOffset, 10}, // 1972-01-01
	{41499 + MJDOffset, 11}, // 1972-07-01
	{41683 + MJDOffset, 12}, // 1973-01-01
	{42048 + MJDOffset, 13}, // 1974-01-01
	{42413 + MJDOffset, 14}, // 1975-01-01
	{42778 + MJDOffset, 15}, // 1976-01-01
	{43144 + MJDOffset, 16}, // 1977-01-01
	{43509 + MJDOffset, 17}, // 1978-01-01
	{43874 + MJDOffset, 18}, // 1979-01-01
	{44239 + MJDOffset, 19}, // 1980-01-01
	{44786 + MJDOffset, 20}, // 1981-07-01
	{45151 + MJDOffset, 21}, // 1982-07-01
	{45516 + MJDOffset, 22}, // 1983-07-01
	{46247 + MJDOffset, 23}, // 1985-07-01
	{47161 + MJDOffset, 24}, // 1988-01-01
	{47892 + MJDOffset, 25}, // 1990-01-01
	{48257 + MJDOffset, 26}, // 1991-01-01
	{48804 + MJDOffset, 27}, // 1992-07-01
	{49169 + MJDOffset, 28}, // 1993-07-01
	{49534 + MJDOffset, 29}, // 1994-07-01
	{50083 + MJDOffset, 30}, // 1996-01-01
	{50630 + MJDOffset, 31}, // 1997-07-01
	{51179 + MJDOffset, 32}, // 1999-01-01
	{53736 + MJDOffset, 33}, // 2006-01-01
	{54832 + MJDOffset, 34}, // 2009-01-01
	{56109 + MJDOffset, 35}, // 2012-07-01
	{57204 + MJDOffset, 36}, // 2015-07-01
	{57754 + MJDOffset, 37}, // 2017-01-01
}

// LeapSeconds returns TAI-UTC in seconds at the given Julian Date (UTC).
func LeapSeconds(jdUTC float64) float64 {
	dat := leapSeconds[0].dat
	for _, step := range leapSeconds {
		if jdUTC < step.jd {
			break
		}
		dat = step.dat
	}
	return dat
}

// TT converts a UTC Julian Date to Terrestrial Time:
// TT = UTC + ΔAT + 32.184 s.
func TT(jdUTC float64) float64 {
	return jdUTC + (LeapSeconds(jdUTC)+32.184)/86400.0
}

// UT1 converts a UTC Julian Date to UT1 given the ΔUT1 = UT1-UTC offset
// in seconds (from an EOP table; pass 0 for the UT1 ≈ UTC approximation).
func UT1(jdUTC, dut1 float64) float64 {
	return jdUTC + dut1/86400.0
}
