// Package geodetic converts between WGS-84 geodetic coordinates and
// Earth-fixed Cartesian positions, and computes topocentric look
// angles. All Cartesian values are in kilometres to match the frame
// transforms.
package geodetic

import (
	"math"

	"github.com/star/frames/rotation"
)

// WGS-84 ellipsoid parameters.
const (
	SemiMajorAxis = 6378.137             // km
	Flattening    = 1.0 / 298.257223563  // f
	ecc2          = Flattening * (2 - Flattening)
)

// Point is a geodetic position: latitude and longitude in radians,
// height in kilometres above the WGS-84 ellipsoid.
type Point struct {
	Lat, Lon, Height float64
}

// ToECEF converts a geodetic point to an Earth-fixed Cartesian
// position in kilometres.
func ToECEF(p Point) rotation.Vec3 {
	sinLat, cosLat := math.Sincos(p.Lat)
	sinLon, cosLon := math.Sincos(p.Lon)

	// Radius of curvature in the prime vertical.
	n := SemiMajorAxis / math.Sqrt(1-ecc2*sinLat*sinLat)

	return rotation.Vec3{
		X: (n + p.Height) * cosLat * cosLon,
		Y: (n + p.Height) * cosLat * sinLon,
		Z: (n*(1-ecc2) + p.Height) * sinLat,
	}
}

// FromECEF converts an Earth-fixed position (km) to geodetic
// coordinates by fixed-point iteration on the latitude; it converges
// in a few rounds for any Earth-orbit altitude.
func FromECEF(r rotation.Vec3) Point {
	lon := math.Atan2(r.Y, r.X)
	p := math.Hypot(r.X, r.Y)

	lat := math.Atan2(r.Z, p*(1-ecc2))
	var n float64
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n = SemiMajorAxis / math.Sqrt(1-ecc2*sinLat*sinLat)
		lat = math.Atan2(r.Z+ecc2*n*sinLat, p)
	}

	sinLat, cosLat := math.Sincos(lat)
	var h float64
	if math.Abs(cosLat) > 1e-10 {
		h = p/cosLat - n
	} else {
		h = math.Abs(r.Z)/math.Abs(sinLat) - n*(1-ecc2)
	}

	return Point{Lat: lat, Lon: lon, Height: h}
}

// LookAngles is a topocentric observation: azimuth clockwise from
// north and elevation above the horizon in radians, range in km.
type LookAngles struct {
	Azimuth, Elevation float64
	Range              float64
}

// Observe computes look angles from a geodetic observer to a target
// position given in the same Earth-fixed frame (km), using the SEZ
// (south-east-zenith) topocentric rotation.
func Observe(obs Point, target rotation.Vec3) LookAngles {
	d := target.Sub(ToECEF(obs))

	sinLat, cosLat := math.Sincos(obs.Lat)
	sinLon, cosLon := math.Sincos(obs.Lon)

	south := sinLat*cosLon*d.X + sinLat*sinLon*d.Y - cosLat*d.Z
	east := -sinLon*d.X + cosLon*d.Y
	zenith := cosLat*cosLon*d.X + cosLat*sinLon*d.Y + sinLat*d.Z

	rng := math.Sqrt(south*south + east*east + zenith*zenith)

	az := math.Atan2(east, -south)
	if az < 0 {
		az += 2 * math.Pi
	}

	return LookAngles{
		Azimuth:   az,
		Elevation: math.Asin(zenith / rng),
		Range:     rng,
	}
}
