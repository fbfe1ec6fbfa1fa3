package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/star/frames/frames"
)

var (
	transportR    string
	transportV    string
	transportA    string
	transportJSON bool
)

var transportCmd = &cobra.Command{
	Use:   "transport <origin> <destination>",
	Short: "Transport a state vector between two frames",
	Long: `Transport a position/velocity/acceleration state from the origin frame
to the destination frame at the epoch. Crossing the Earth-fixed /
inertial boundary applies the Coriolis and centripetal terms; a --eop
table adds polar motion, UT1 and length-of-day corrections.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		origin, dest, err := parseFramePair(args)
		if err != nil {
			fatal("invalid frame", err)
		}
		jd, epoch, err := parseEpoch()
		if err != nil {
			fatal("invalid epoch", err)
		}
		data, err := loadEOP()
		if err != nil {
			fatal("loading EOP table", err)
		}

		sv := frames.StateVector{EpochJD: jd, Frame: origin}
		if sv.R, err = parseVec(transportR); err != nil {
			fatal("invalid --r", err)
		}
		if transportV != "" {
			if sv.V, err = parseVec(transportV); err != nil {
				fatal("invalid --v", err)
			}
		}
		if transportA != "" {
			if sv.A, err = parseVec(transportA); err != nil {
				fatal("invalid --a", err)
			}
		}

		out, err := frames.Transport(sv, dest, data)
		if err != nil {
			fatal("transporting state", err)
		}

		if transportJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(map[string]any{
				"frame":   dest.String(),
				"epoch":   epoch,
				"r_km":    [3]float64{out.R.X, out.R.Y, out.R.Z},
				"v_km_s":  [3]float64{out.V.X, out.V.Y, out.V.Z},
				"a_km_s2": [3]float64{out.A.X, out.A.Y, out.A.Z},
			}); err != nil {
				fatal("encoding JSON", err)
			}
			return
		}

		fmt.Printf("# %s -> %s at %s\n", origin, dest, epoch.Format("2006-01-02T15:04:05Z"))
		fmt.Printf("r = [%+.9f %+.9f %+.9f] km\n", out.R.X, out.R.Y, out.R.Z)
		fmt.Printf("v = [%+.9f %+.9f %+.9f] km/s\n", out.V.X, out.V.Y, out.V.Z)
		if transportA != "" {
			fmt.Printf("a = [%+.9f %+.9f %+.9f] km/s²\n", out.A.X, out.A.Y, out.A.Z)
		}
	},
}

func init() {
	rootCmd.AddCommand(transportCmd)
	transportCmd.Flags().StringVar(&transportR, "r", "", "Position x,y,z in km (required)")
	transportCmd.Flags().StringVar(&transportV, "v", "", "Velocity x,y,z in km/s")
	transportCmd.Flags().StringVar(&transportA, "a", "", "Acceleration x,y,z in km/s²")
	transportCmd.MarkFlagRequired("r")
}
