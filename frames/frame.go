// Package frames resolves rotations between Earth-fixed and inertial
// reference frames under the IAU-76/FK5 and IAU-2006/2010 conventions,
// and transports position/velocity/acceleration states across them.
//
// Frames are a closed set of tags. Each resolve call is stateless:
// given an origin, a destination, one or two UTC Julian Dates and an
// optional EOP table, it composes the elementary rotations of the
// matching theory into a single rotation value. Supplying no EOP table
// is an explicit approximation (corrections zero, UT1 taken equal to
// UTC), not an error.
package frames

import (
	"fmt"

	"github.com/star/frames/eop"
)

// Frame identifies one reference frame realization.
type Frame int

const (
	// ITRF is the International Terrestrial Reference Frame (Earth-fixed).
	ITRF Frame = iota
	// PEF is the Pseudo-Earth-Fixed frame of the FK5 chain.
	PEF
	// TIRS is the Terrestrial Intermediate Reference System (2006/2010).
	TIRS
	// TOD is the True Equator, True Equinox of Date frame (FK5).
	TOD
	// MOD is the Mean Equator, Mean Equinox of Date frame (FK5).
	MOD
	// MOD06 is the mean-of-date frame of the IAU-2006 equinox chain.
	MOD06
	// TEME is the True Equator, Mean Equinox frame used by SGP4.
	TEME
	// J2000 is the mean equator and equinox of J2000.0 (FK5, correction-free).
	J2000
	// GCRF is the Geocentric Celestial Reference Frame.
	GCRF
	// CIRS is the Celestial Intermediate Reference System (CIO chain).
	CIRS
	// ERS is the Earth Reference System of the 2006 equinox chain.
	ERS
	// MJ2000 is the J2000.0 mean frame of the IAU-2006 theory
	// (GCRF less the fixed frame bias).
	MJ2000
)

var frameNames = map[Frame]string{
	ITRF:   "ITRF",
	PEF:    "PEF",
	TIRS:   "TIRS",
	TOD:    "TOD",
	MOD:    "MOD",
	MOD06:  "MOD06",
	TEME:   "TEME",
	J2000:  "J2000",
	GCRF:   "GCRF",
	CIRS:   "CIRS",
	ERS:    "ERS",
	MJ2000: "MJ2000",
}

func (f Frame) String() string {
	if n, ok := frameNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Frame(%d)", int(f))
}

// ParseFrame maps a frame name (as produced by String) back to its tag.
func ParseFrame(s string) (Frame, error) {
	for f, n := range frameNames {
		if n == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown frame %q", s)
}

// IsEarthFixed reports whether the frame co-rotates with the Earth.
func (f Frame) IsEarthFixed() bool {
	switch f {
	case ITRF, PEF, TIRS:
		return true
	}
	return false
}

// Theory labels the convention a frame (or EOP table) belongs to.
type Theory int

const (
	// TheoryAny marks the frames shared by both conventions (ITRF, GCRF).
	TheoryAny Theory = iota
	// TheoryFK5 is the IAU-76/FK5 convention.
	TheoryFK5
	// TheoryIAU2006 is the IAU-2006/2010 convention.
	TheoryIAU2006
)

func (t Theory) String() string {
	switch t {
	case TheoryFK5:
		return "FK5"
	case TheoryIAU2006:
		return "IAU2006"
	}
	return "any"
}

func (f Frame) theory() Theory {
	switch f {
	case PEF, TOD, MOD, TEME, J2000:
		return TheoryFK5
	case TIRS, MOD06, CIRS, ERS, MJ2000:
		return TheoryIAU2006
	}
	return TheoryAny
}

// Sentinel errors for the two contract violations a resolve call can
// report. Both are deterministic functions of the inputs; callers must
// not retry.
var (
	// ErrTheoryMismatch indicates the origin and destination frames
	// belong to different conventions.
	ErrTheoryMismatch = fmt.Errorf("frame theory mismatch")
	// ErrEOPMismatch indicates the supplied EOP table's shape does not
	// match the convention required by the frame pair.
	ErrEOPMismatch = fmt.Errorf("EOP shape mismatch")
)

func eopTheory(data eop.Data) Theory {
	if data == nil {
		return TheoryAny
	}
	if data.Variant() == eop.VariantIAU2000A {
		return TheoryIAU2006
	}
	return TheoryFK5
}

// ResolveTheory reports the convention a frame pair binds to under the
// given EOP table, without resolving a rotation. It fails exactly when
// a resolve call over the same inputs would.
func ResolveTheory(origin, dest Frame, data eop.Data) (Theory, error) {
	return resolveTheory(origin, dest, data)
}

// resolveTheory picks the convention for a frame pair. The shared tags
// ITRF and GCRF bind to the EOP table's variant first, so a shared tag
// paired with a theory-pinned tag under the other variant's table is a
// theory mismatch rather than a shape mismatch. Without an EOP table an
// ambiguous pair defaults to FK5.
func resolveTheory(origin, dest Frame, data eop.Data) (Theory, error) {
	et := eopTheory(data)

	ot := origin.theory()
	if ot == TheoryAny {
		ot = et
	}
	dt := dest.theory()
	if dt == TheoryAny {
		dt = et
	}

	if ot != TheoryAny && dt != TheoryAny && ot != dt {
		return 0, fmt.Errorf("%w: %s is %s but %s is %s",
			ErrTheoryMismatch, origin, ot, dest, dt)
	}

	th := ot
	if th == TheoryAny {
		th = dt
	}
	if th == TheoryAny {
		th = TheoryFK5
	}

	if et != TheoryAny && et != th {
		return 0, fmt.Errorf("%w: %s/%s pair needs %s corrections, table is %s",
			ErrEOPMismatch, origin, dest, th, data.Variant())
	}
	return th, nil
}
