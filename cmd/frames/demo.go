package main

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/spf13/cobra"

	"github.com/star/frames/frames"
	"github.com/star/frames/geodetic"
	"github.com/star/frames/rotation"
	"github.com/star/frames/timeutil"
)

// ISS, a well-documented reference satellite.
const (
	demoDefaultLine1 = "1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005"
	demoDefaultLine2 = "2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09"
)

var (
	demoLine1 string
	demoLine2 string
	demoSteps int
	demoStep  int
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Propagate a TLE and express the orbit in several frames",
	Long: `Propagate a TLE with SGP4 and print the resulting states in TEME (the
propagator's native frame), GCRF and ITRF, plus the geodetic ground
track. Demonstrates the TEME bridge between flight dynamics tooling and
the celestial frames.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sat := satellite.TLEToSat(demoLine1, demoLine2, satellite.GravityWGS72)

		_, start, err := parseEpoch()
		if err != nil {
			fatal("invalid epoch", err)
		}
		data, err := loadEOP()
		if err != nil {
			fatal("loading EOP table", err)
		}

		fmt.Printf("%-21s %-36s %-36s %-36s %s\n", "epoch (UTC)", "TEME r [km]", "GCRF r [km]", "ITRF r [km]", "lat/lon [deg]")

		for i := 0; i < demoSteps; i++ {
			t := start.Add(time.Duration(i*demoStep) * time.Second)
			pos, vel := satellite.Propagate(sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

			teme := frames.StateVector{
				EpochJD: timeutil.JulianDate(t),
				Frame:   frames.TEME,
				R:       rotation.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z},
				V:       rotation.Vec3{X: vel.X, Y: vel.Y, Z: vel.Z},
			}

			gcrf, err := frames.TransportECIToECI(teme, frames.GCRF, data)
			if err != nil {
				fatal("TEME to GCRF", err)
			}
			itrf, err := frames.TransportECIToECEF(teme, frames.ITRF, data)
			if err != nil {
				fatal("TEME to ITRF", err)
			}

			p := geodetic.FromECEF(itrf.R)
			fmt.Printf("%-21s [%9.3f %9.3f %9.3f]  [%9.3f %9.3f %9.3f]  [%9.3f %9.3f %9.3f]  %7.3f/%8.3f\n",
				t.Format("2006-01-02T15:04:05Z"),
				teme.R.X, teme.R.Y, teme.R.Z,
				gcrf.R.X, gcrf.R.Y, gcrf.R.Z,
				itrf.R.X, itrf.R.Y, itrf.R.Z,
				p.Lat*180/math.Pi, p.Lon*180/math.Pi)
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVar(&demoLine1, "line1", demoDefaultLine1, "TLE line 1")
	demoCmd.Flags().StringVar(&demoLine2, "line2", demoDefaultLine2, "TLE line 2")
	demoCmd.Flags().IntVar(&demoSteps, "steps", 10, "Number of propagation steps")
	demoCmd.Flags().IntVar(&demoStep, "step", 60, "Step size in seconds")
}
