package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/star/frames/frames"
	"github.com/star/frames/orbit"
)

var (
	elementsR     string
	elementsV     string
	elementsFrame string
	elementsTo    string
	elementsJSON  bool
)

var elementsCmd = &cobra.Command{
	Use:   "elements",
	Short: "Compute orbital elements from a state vector",
	Long: `Compute Keplerian orbital elements from an inertial position/velocity
state. With --to, the elements are re-expressed in another inertial
frame through the resolver first.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		frame, err := frames.ParseFrame(elementsFrame)
		if err != nil {
			fatal("invalid --frame", err)
		}
		jd, epoch, err := parseEpoch()
		if err != nil {
			fatal("invalid epoch", err)
		}
		data, err := loadEOP()
		if err != nil {
			fatal("loading EOP table", err)
		}

		r, err := parseVec(elementsR)
		if err != nil {
			fatal("invalid --r", err)
		}
		v, err := parseVec(elementsV)
		if err != nil {
			fatal("invalid --v", err)
		}

		el, err := orbit.FromVectors(jd, frame, r.Slice(), v.Slice())
		if err != nil {
			fatal("computing elements", err)
		}

		if elementsTo != "" {
			dest, err := frames.ParseFrame(elementsTo)
			if err != nil {
				fatal("invalid --to", err)
			}
			el, err = orbit.ChangeFrame(el, dest, data)
			if err != nil {
				fatal("changing frame", err)
			}
		}

		if elementsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(map[string]any{
				"frame":    el.Frame.String(),
				"epoch":    epoch,
				"sma_km":   el.SMA,
				"ecc":      el.Ecc,
				"inc_deg":  el.Inc * 180 / math.Pi,
				"raan_deg": el.RAAN * 180 / math.Pi,
				"argp_deg": el.ArgPerigee * 180 / math.Pi,
				"nu_deg":   el.TrueAnomaly * 180 / math.Pi,
			}); err != nil {
				fatal("encoding JSON", err)
			}
			return
		}

		fmt.Printf("# elements in %s at %s\n", el.Frame, epoch.Format("2006-01-02T15:04:05Z"))
		fmt.Printf("a    = %.6f km\n", el.SMA)
		fmt.Printf("e    = %.9f\n", el.Ecc)
		fmt.Printf("i    = %.6f°\n", el.Inc*180/math.Pi)
		fmt.Printf("Ω    = %.6f°\n", el.RAAN*180/math.Pi)
		fmt.Printf("ω    = %.6f°\n", el.ArgPerigee*180/math.Pi)
		fmt.Printf("ν    = %.6f°\n", el.TrueAnomaly*180/math.Pi)
	},
}

func init() {
	rootCmd.AddCommand(elementsCmd)
	elementsCmd.Flags().StringVar(&elementsR, "r", "", "Position x,y,z in km (required)")
	elementsCmd.Flags().StringVar(&elementsV, "v", "", "Velocity x,y,z in km/s (required)")
	elementsCmd.Flags().StringVar(&elementsFrame, "frame", "GCRF", "Inertial frame of the state")
	elementsCmd.Flags().StringVar(&elementsTo, "to", "", "Re-express elements in this inertial frame")
	elementsCmd.Flags().BoolVar(&elementsJSON, "json", false, "Output in JSON format")
	elementsCmd.MarkFlagRequired("r")
	elementsCmd.MarkFlagRequired("v")
}
