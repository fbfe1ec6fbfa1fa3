// Package eop provides Earth Orientation Parameter tables: polar
// motion, UT1-UTC, length of day, and the theory-specific nutation/CIP
// corrections published by IERS.
//
// Two mutually exclusive table variants exist. IAU1980 carries dPsi/dEps
// nutation corrections for the FK5 (IAU-76) chain; IAU2000A carries
// dX/dY CIP corrections for the IAU-2006/2010 chain. The frame resolver
// rejects a table whose variant does not match the requested transform.
//
// Tables are immutable once built and safe for concurrent readers.
package eop

import (
	"sort"

	"github.com/star/frames/timeutil"
)

// Variant identifies the correction shape a table carries.
type Variant int

const (
	// VariantIAU1980 tables carry dPsi/dEps nutation corrections (FK5).
	VariantIAU1980 Variant = iota
	// VariantIAU2000A tables carry dX/dY CIP corrections (IAU-2006/2010).
	VariantIAU2000A
)

// String returns the IERS name of the variant.
func (v Variant) String() string {
	if v == VariantIAU2000A {
		return "IAU2000A"
	}
	return "IAU1980"
}

// Data is the read-only lookup interface shared by both table variants.
// All accessors take a UTC Julian Date, interpolate linearly between
// the daily tabulated points, and hold the nearest value outside the
// tabulated span.
type Data interface {
	// Variant reports the correction shape of the table.
	Variant() Variant
	// PolarMotion returns the pole coordinates x_p, y_p in arcseconds.
	PolarMotion(jdUTC float64) (xp, yp float64)
	// DUT1 returns UT1-UTC in seconds.
	DUT1(jdUTC float64) float64
	// LOD returns the excess length of day in seconds.
	LOD(jdUTC float64) float64
	// Span returns the first and last tabulated MJD.
	Span() (minMJD, maxMJD float64)
}

// Record is one tabulated day of Earth orientation data. The
// correction fields used depend on the variant the record feeds.
type Record struct {
	MJD    float64 // UTC
	XP, YP float64 // polar motion, arcsec
	DUT1   float64 // UT1-UTC, seconds
	LOD    float64 // excess length of day, seconds
	DPsi   float64 // nutation correction in longitude, mas (IAU1980)
	DEps   float64 // nutation correction in obliquity, mas (IAU1980)
	DX     float64 // CIP x correction, mas (IAU2000A)
	DY     float64 // CIP y correction, mas (IAU2000A)
}

// series is one time-indexed column.
type series struct {
	mjd []float64
	val []float64
}

// at interpolates the series at a UTC Julian Date: linear between
// points, flat beyond the ends.
func (s series) at(jdUTC float64) float64 {
	if len(s.mjd) == 0 {
		return 0
	}
	mjd := jdUTC - timeutil.MJDOffset
	i := sort.SearchFloat64s(s.mjd, mjd)
	switch {
	case i == 0:
		return s.val[0]
	case i == len(s.mjd):
		return s.val[len(s.val)-1]
	}
	lo, hi := s.mjd[i-1], s.mjd[i]
	f := (mjd - lo) / (hi - lo)
	return s.val[i-1] + f*(s.val[i]-s.val[i-1])
}

// base holds the columns common to both variants.
type base struct {
	xp, yp, dut1, lod series
}

func (b base) PolarMotion(jdUTC float64) (float64, float64) {
	return b.xp.at(jdUTC), b.yp.at(jdUTC)
}

func (b base) DUT1(jdUTC float64) float64 { return b.dut1.at(jdUTC) }
func (b base) LOD(jdUTC float64) float64  { return b.lod.at(jdUTC) }

func (b base) Span() (float64, float64) {
	if len(b.xp.mjd) == 0 {
		return 0, 0
	}
	return b.xp.mjd[0], b.xp.mjd[len(b.xp.mjd)-1]
}

// IAU1980 is the FK5-variant table with dPsi/dEps corrections.
type IAU1980 struct {
	base
	dpsi, deps series
}

// Variant reports VariantIAU1980.
func (e *IAU1980) Variant() Variant { return VariantIAU1980 }

// NutationCorrections returns the observed dPsi/dEps corrections in
// milliarcseconds at the given UTC Julian Date.
func (e *IAU1980) NutationCorrections(jdUTC float64) (dpsi, deps float64) {
	return e.dpsi.at(jdUTC), e.deps.at(jdUTC)
}

// IAU2000A is the IAU-2006/2010-variant table with dX/dY corrections.
type IAU2000A struct {
	base
	dx, dy series
}

// Variant reports VariantIAU2000A.
func (e *IAU2000A) Variant() Variant { return VariantIAU2000A }

// CIPCorrections returns the observed dX/dY CIP corrections in
// milliarcseconds at the given UTC Julian Date.
func (e *IAU2000A) CIPCorrections(jdUTC float64) (dx, dy float64) {
	return e.dx.at(jdUTC), e.dy.at(jdUTC)
}

// NewIAU1980 builds an FK5-variant table from records. Records must be
// supplied in ascending MJD order (the parser and fetch path guarantee
// this; out-of-order records are sorted defensively).
func NewIAU1980(recs []Record) *IAU1980 {
	recs = sortRecords(recs)
	t := &IAU1980{}
	for _, r := range recs {
		appendBase(&t.base, r)
		t.dpsi.mjd = append(t.dpsi.mjd, r.MJD)
		t.dpsi.val = append(t.dpsi.val, r.DPsi)
		t.deps.mjd = append(t.deps.mjd, r.MJD)
		t.deps.val = append(t.deps.val, r.DEps)
	}
	return t
}

// NewIAU2000A builds an IAU-2006/2010-variant table from records.
func NewIAU2000A(recs []Record) *IAU2000A {
	recs = sortRecords(recs)
	t := &IAU2000A{}
	for _, r := range recs {
		appendBase(&t.base, r)
		t.dx.mjd = append(t.dx.mjd, r.MJD)
		t.dx.val = append(t.dx.val, r.DX)
		t.dy.mjd = append(t.dy.mjd, r.MJD)
		t.dy.val = append(t.dy.val, r.DY)
	}
	return t
}

func appendBase(b *base, r Record) {
	b.xp.mjd = append(b.xp.mjd, r.MJD)
	b.xp.val = append(b.xp.val, r.XP)
	b.yp.mjd = append(b.yp.mjd, r.MJD)
	b.yp.val = append(b.yp.val, r.YP)
	b.dut1.mjd = append(b.dut1.mjd, r.MJD)
	b.dut1.val = append(b.dut1.val, r.DUT1)
	b.lod.mjd = append(b.lod.mjd, r.MJD)
	b.lod.val = append(b.lod.val, r.LOD)
}

func sortRecords(recs []Record) []Record {
	out := make([]Record, len(recs))
	copy(out, recs)
	sort.Slice(out, func(i, j int) bool { return out[i].MJD < out[j].MJD })
	return out
}
