package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/star/frames/eop"
	"github.com/star/frames/frames"
	"github.com/star/frames/rotation"
)

var rotateQuat bool

var rotateCmd = &cobra.Command{
	Use:   "rotate <origin> <destination>",
	Short: "Resolve the rotation between two frames",
	Long: `Resolve the rotation taking vectors from the origin frame to the
destination frame at the epoch, printed as a direction cosine matrix
(row major) or as a unit quaternion with --quaternion.`,
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

		kind := rotation.KindDCM
		if rotateQuat {
			kind = rotation.KindQuaternion
		}
		rot, err := resolveAny(kind, origin, dest, jd, data)
		if err != nil {
			fatal("resolving rotation", err)
		}

		th, _ := frames.ResolveTheory(origin, dest, data)
		fmt.Printf("# %s -> %s at %s (%s)\n", origin, dest, epoch.Format("2006-01-02T15:04:05Z"), th)

		if rotateQuat {
			q := rot.Quaternion()
			fmt.Printf("q = [%+.15f %+.15f %+.15f %+.15f]\n", q.Real, q.Imag, q.Jmag, q.Kmag)
			return
		}
		m := rot.DCM()
		for i := 0; i < 3; i++ {
			fmt.Printf("[%+.15f %+.15f %+.15f]\n", m[i][0], m[i][1], m[i][2])
		}
	},
}

// resolveAny dispatches on the frame classes of the pair.
func resolveAny(k rotation.Kind, origin, dest frames.Frame, jd float64, data eop.Data) (rotation.Rotation, error) {
	switch {
	case origin.IsEarthFixed() && dest.IsEarthFixed():
		return frames.ECEFToECEF(k, origin, dest, jd, data)
	case origin.IsEarthFixed():
		return frames.ECEFToECI(k, origin, dest, jd, data)
	case dest.IsEarthFixed():
		return frames.ECIToECEF(k, origin, dest, jd, data)
	default:
		return frames.ECIToECI(k, origin, dest, jd, data)
	}
}

func init() {
	rootCmd.AddCommand(rotateCmd)
	rotateCmd.Flags().BoolVar(&rotateQuat, "quaternion", false, "Print a unit quaternion instead of a DCM")
}
