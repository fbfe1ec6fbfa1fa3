package geodetic

import (
	"math"
	"testing"

	"github.com/star/frames/rotation"
)

func TestToECEFMagnitude(t *testing.T) {
	// Sea-level observer at the equator sits at the equatorial radius.
	r := ToECEF(Point{})
	if math.Abs(r.Norm()-6378.137) > 1e-3 {
		t.Errorf("equatorial magnitude = %.4f km, want 6378.137", r.Norm())
	}

	// At the pole the magnitude is the polar radius.
	rp := ToECEF(Point{Lat: math.Pi / 2})
	if math.Abs(rp.Norm()-6356.7523) > 1e-3 {
		t.Errorf("polar magnitude = %.4f km, want ~6356.752", rp.Norm())
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []Point{
		{Lat: 0.6870, Lon: -1.2851, Height: 0.035},
		{Lat: -0.9425, Lon: 2.8362, Height: 1.2},
		{Lat: 0.0, Lon: 0.0, Height: 400.0},
		{Lat: 1.5691, Lon: 0.5, Height: 0.0}, // near-polar
	}
	for _, p := range cases {
		got := FromECEF(ToECEF(p))
		if math.Abs(got.Lat-p.Lat) > 1e-9 {
			t.Errorf("lat: got %v want %v", got.Lat, p.Lat)
		}
		if math.Abs(got.Lon-p.Lon) > 1e-12 {
			t.Errorf("lon: got %v want %v", got.Lon, p.Lon)
		}
		if math.Abs(got.Height-p.Height) > 1e-6 {
			t.Errorf("height: got %v want %v", got.Height, p.Height)
		}
	}
}

func TestObserveOverhead(t *testing.T) {
	obs := Point{}
	target := rotation.Vec3{X: 6378.137 + 400}

	la := Observe(obs, target)
	if math.Abs(la.Elevation-math.Pi/2) > 1e-3 {
		t.Errorf("overhead elevation = %v rad, want pi/2", la.Elevation)
	}
	if math.Abs(la.Range-400) > 0.01 {
		t.Errorf("overhead range = %.3f km, want 400", la.Range)
	}
}

func TestObserveAzimuth(t *testing.T) {
	obs := Point{}
	// Target displaced north of the observer sits at azimuth ~0.
	north := ToECEF(Point{Lat: 0.01, Height: 100})
	la := Observe(obs, north)
	if la.Azimuth > 0.05 && la.Azimuth < 2*math.Pi-0.05 {
		t.Errorf("north target azimuth = %v rad, want ~0", la.Azimuth)
	}

	// Displaced east: azimuth ~pi/2.
	east := ToECEF(Point{Lon: 0.01, Height: 100})
	la = Observe(obs, east)
	if math.Abs(la.Azimuth-math.Pi/2) > 0.05 {
		t.Errorf("east target azimuth = %v rad, want ~pi/2", la.Azimuth)
	}
}
