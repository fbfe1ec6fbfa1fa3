package frames

import (
	"fmt"

	"github.com/star/frames/eop"
	"github.com/star/frames/rotation"
)

// castFK5 narrows the EOP interface to the table type the resolved
// theory needs. resolveTheory has already rejected shape mismatches, so
// a failed assertion here means a foreign Data implementation.
func castFK5(data eop.Data) (*eop.IAU1980, error) {
	if data == nil {
		return nil, nil
	}
	d, ok := data.(*eop.IAU1980)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported EOP table %T", ErrEOPMismatch, data)
	}
	return d, nil
}

func cast2000A(data eop.Data) (*eop.IAU2000A, error) {
	if data == nil {
		return nil, nil
	}
	d, ok := data.(*eop.IAU2000A)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported EOP table %T", ErrEOPMismatch, data)
	}
	return d, nil
}

// ECEFToECI resolves the rotation taking vectors from an Earth-fixed
// origin to an inertial destination at the given UTC Julian Date. A
// nil EOP table means zero corrections and UT1 = UTC.
func ECEFToECI(k rotation.Kind, origin, dest Frame, jdUTC float64, data eop.Data) (rotation.Rotation, error) {
	if !origin.IsEarthFixed() {
		return nil, fmt.Errorf("origin %s is not Earth-fixed", origin)
	}
	if dest.IsEarthFixed() {
		return nil, fmt.Errorf("destination %s is not inertial", dest)
	}

	th, err := resolveTheory(origin, dest, data)
	if err != nil {
		return nil, err
	}
	if th == TheoryIAU2006 {
		d, err := cast2000A(data)
		if err != nil {
			return nil, err
		}
		return cioECEFToECI(k, origin, dest, jdUTC, d)
	}
	d, err := castFK5(data)
	if err != nil {
		return nil, err
	}
	return fk5ECEFToECI(k, origin, dest, jdUTC, d)
}

// ECIToECEF resolves an inertial origin to an Earth-fixed destination.
// It is the inverse of the mirrored ECEFToECI resolution.
func ECIToECEF(k rotation.Kind, origin, dest Frame, jdUTC float64, data eop.Data) (rotation.Rotation, error) {
	rot, err := ECEFToECI(k, dest, origin, jdUTC, data)
	if err != nil {
		return nil, err
	}
	return rot.Inverse(), nil
}

// ECEFToECEF resolves between two Earth-fixed frames at one epoch.
func ECEFToECEF(k rotation.Kind, origin, dest Frame, jdUTC float64, data eop.Data) (rotation.Rotation, error) {
	for _, f := range [2]Frame{origin, dest} {
		if !f.IsEarthFixed() {
			return nil, fmt.Errorf("%s is not Earth-fixed", f)
		}
	}

	th, err := resolveTheory(origin, dest, data)
	if err != nil {
		return nil, err
	}
	if th == TheoryIAU2006 {
		d, err := cast2000A(data)
		if err != nil {
			return nil, err
		}
		return cioECEFToECEF(k, origin, dest, jdUTC, d)
	}
	d, err := castFK5(data)
	if err != nil {
		return nil, err
	}
	return fk5ECEFToECEF(k, origin, dest, jdUTC, d)
}

// ECIToECI resolves between two inertial frames at one epoch.
func ECIToECI(k rotation.Kind, origin, dest Frame, jdUTC float64, data eop.Data) (rotation.Rotation, error) {
	for _, f := range [2]Frame{origin, dest} {
		if f.IsEarthFixed() {
			return nil, fmt.Errorf("%s is not inertial", f)
		}
	}

	th, err := resolveTheory(origin, dest, data)
	if err != nil {
		return nil, err
	}
	if th == TheoryIAU2006 {
		d, err := cast2000A(data)
		if err != nil {
			return nil, err
		}
		return cioECIToECI(k, origin, dest, jdUTC, d)
	}
	d, err := castFK5(data)
	if err != nil {
		return nil, err
	}
	return fk5ECIToECI(k, origin, dest, jdUTC, d)
}

// ECIToECIAt resolves between two of-date inertial frames taken at two
// distinct epochs, routing through a time-independent reference frame:
// GCRF when an EOP table is present, otherwise the correction-free
// J2000 (FK5) or MJ2000 (IAU-2006).
func ECIToECIAt(k rotation.Kind, origin Frame, jdo float64, dest Frame, jdf float64, data eop.Data) (rotation.Rotation, error) {
	th, err := resolveTheory(origin, dest, data)
	if err != nil {
		return nil, err
	}

	ref := GCRF
	if data == nil {
		ref = J2000
		if th == TheoryIAU2006 {
			ref = MJ2000
		}
	}

	toRef, err := ECIToECI(k, origin, ref, jdo, data)
	if err != nil {
		return nil, err
	}
	fromRef, err := ECIToECI(k, ref, dest, jdf, data)
	if err != nil {
		return nil, err
	}
	return rotation.Compose(toRef, fromRef), nil
}
