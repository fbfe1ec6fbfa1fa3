package frames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/frames/rotation"
)

var vITRF = rotation.Vec3{X: -3.225636520, Y: -2.872451450, Z: 5.531924446}

func TestTransportValladoVelocity(t *testing.T) {
	sv := StateVector{EpochJD: valladoJD, Frame: ITRF, R: rITRF, V: vITRF}

	out, err := TransportECEFToECI(sv, GCRF, fk5Table())
	require.NoError(t, err)
	assert.Equal(t, GCRF, out.Frame)
	assert.Equal(t, valladoJD, out.EpochJD)

	assertVec(t, rGCRF, out.R, 3e-4)
	want := rotation.Vec3{X: -4.7432201570, Y: 0.7905364970, Z: 5.5337557270}
	assertVec(t, want, out.V, 8e-7)
}

func TestTransportValladoTEME(t *testing.T) {
	sv := StateVector{EpochJD: valladoJD, Frame: ITRF, R: rITRF, V: vITRF}

	out, err := TransportECEFToECI(sv, TEME, fk5Table())
	require.NoError(t, err)
	assertVec(t, rTEME, out.R, 1e-6)
	want := rotation.Vec3{X: -4.746131487, Y: 0.785818041, Z: 5.531931288}
	assertVec(t, want, out.V, 1e-7)
}

func TestTransportRoundTrip(t *testing.T) {
	sv := StateVector{
		EpochJD: valladoJD,
		Frame:   ITRF,
		R:       rITRF,
		V:       vITRF,
		A:       rotation.Vec3{X: 1e-3, Y: -2e-3, Z: 5e-4},
	}

	eci, err := TransportECEFToECI(sv, GCRF, fk5Table())
	require.NoError(t, err)
	back, err := TransportECIToECEF(eci, ITRF, fk5Table())
	require.NoError(t, err)

	assertVec(t, sv.R, back.R, 1e-8)
	assertVec(t, sv.V, back.V, 1e-11)
	assertVec(t, sv.A, back.A, 1e-11)
}

func TestTransportRoundTripCIO(t *testing.T) {
	sv := StateVector{EpochJD: valladoJD, Frame: ITRF, R: rITRF, V: vITRF}

	eci, err := TransportECEFToECI(sv, GCRF, cioTable())
	require.NoError(t, err)
	back, err := TransportECIToECEF(eci, ITRF, cioTable())
	require.NoError(t, err)

	assertVec(t, sv.R, back.R, 1e-8)
	assertVec(t, sv.V, back.V, 1e-11)
}

func TestTransportNoEOP(t *testing.T) {
	// Without a table the transform is the documented UT1 = UTC,
	// zero-correction approximation; it must still round-trip exactly.
	sv := StateVector{EpochJD: valladoJD, Frame: ITRF, R: rITRF, V: vITRF}

	eci, err := TransportECEFToECI(sv, J2000, nil)
	require.NoError(t, err)
	back, err := TransportECIToECEF(eci, ITRF, nil)
	require.NoError(t, err)
	assertVec(t, sv.R, back.R, 1e-8)
	assertVec(t, sv.V, back.V, 1e-11)
}

func TestTransportSameClass(t *testing.T) {
	sv := StateVector{EpochJD: valladoJD, Frame: ITRF, R: rITRF, V: vITRF}
	pef, err := TransportECEFToECEF(sv, PEF, fk5Table())
	require.NoError(t, err)
	assert.Equal(t, PEF, pef.Frame)
	// Polar motion is arcseconds; the position moves metres, not km.
	assert.InDelta(t, sv.R.Norm(), pef.R.Norm(), 1e-9)

	eci := StateVector{EpochJD: valladoJD, Frame: GCRF, R: rGCRF, V: rotation.Vec3{X: 1}}
	j2000, err := TransportECIToECI(eci, J2000, fk5Table())
	require.NoError(t, err)
	assert.Equal(t, J2000, j2000.Frame)
	assert.InDelta(t, eci.R.Norm(), j2000.R.Norm(), 1e-9)
}

func TestTransportTheoryErrors(t *testing.T) {
	sv := StateVector{EpochJD: valladoJD, Frame: ITRF, R: rITRF}
	_, err := TransportECEFToECI(sv, CIRS, fk5Table())
	assert.ErrorIs(t, err, ErrTheoryMismatch)

	sv.Frame = TIRS
	_, err = TransportECEFToECI(sv, CIRS, fk5Table())
	assert.ErrorIs(t, err, ErrEOPMismatch)
}

func TestEarthAngularVelocityLOD(t *testing.T) {
	w := earthAngularVelocity(valladoJD, fk5Table())
	assert.Less(t, w.Z, EarthAngularSpeed)
	assert.InDelta(t, EarthAngularSpeed*(1-0.0015563/86400), w.Z, 1e-18)

	w = earthAngularVelocity(valladoJD, nil)
	assert.Equal(t, EarthAngularSpeed, w.Z)
}

func TestTransporterMatchesTransport(t *testing.T) {
	sv := StateVector{
		EpochJD: valladoJD,
		Frame:   ITRF,
		R:       rITRF,
		V:       vITRF,
		A:       rotation.Vec3{X: 1e-3, Y: -2e-3, Z: 5e-4},
	}

	pairs := []struct {
		origin, dest Frame
	}{
		{ITRF, GCRF},
		{ITRF, TEME},
		{ITRF, PEF},
		{GCRF, ITRF},
		{GCRF, J2000},
	}

	for _, p := range pairs {
		in := sv
		in.Frame = p.origin

		want, err := Transport(in, p.dest, fk5Table())
		require.NoError(t, err, "%s -> %s", p.origin, p.dest)

		tr, err := NewTransporter(p.origin, p.dest, valladoJD, fk5Table())
		require.NoError(t, err, "%s -> %s", p.origin, p.dest)
		got := tr.Apply(in)

		assert.Equal(t, p.dest, got.Frame)
		assertVec(t, want.R, got.R, 1e-12)
		assertVec(t, want.V, got.V, 1e-12)
		assertVec(t, want.A, got.A, 1e-12)
	}
}

func TestTransporterTheoryErrors(t *testing.T) {
	_, err := NewTransporter(TOD, CIRS, valladoJD, nil)
	assert.ErrorIs(t, err, ErrTheoryMismatch)

	_, err = NewTransporter(TIRS, CIRS, valladoJD, fk5Table())
	assert.ErrorIs(t, err, ErrEOPMismatch)
}
