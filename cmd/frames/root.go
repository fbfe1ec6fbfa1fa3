package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/star/frames/eop"
	"github.com/star/frames/frames"
	"github.com/star/frames/rotation"
	"github.com/star/frames/timeutil"
)

var (
	verbose    bool
	epochStr   string
	eopFile    string
	eopVariant string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "frames",
	Short: "Earth reference-frame transformations (FK5 and IAU-2006/2010)",
	Long: `frames resolves rotations between Earth-fixed and inertial reference
frames (ITRF, PEF, TIRS, TOD, MOD, TEME, J2000, GCRF, CIRS, ...) and
transports position/velocity states across them, with optional Earth
orientation data.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&epochStr, "epoch", "", "Epoch as RFC3339 UTC (default: now)")
	rootCmd.PersistentFlags().StringVar(&eopFile, "eop", "", "Path to an EOP CSV file (default: no corrections)")
	rootCmd.PersistentFlags().StringVar(&eopVariant, "eop-variant", "iau1980", "EOP table variant: iau1980 or iau2000a")
}

// parseEpoch resolves the shared --epoch flag to a UTC Julian Date.
func parseEpoch() (float64, time.Time, error) {
	if epochStr == "" {
		now := time.Now().UTC()
		return timeutil.JulianDate(now), now, nil
	}
	t, err := time.Parse(time.RFC3339, epochStr)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid --epoch: %w", err)
	}
	return timeutil.JulianDate(t), t.UTC(), nil
}

// loadEOP reads the shared --eop flag into a table, nil when unset.
func loadEOP() (eop.Data, error) {
	if eopFile == "" {
		return nil, nil
	}

	f, err := os.Open(eopFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := eop.Parse(f, slog.Default())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s contains no EOP records", eopFile)
	}

	switch strings.ToLower(eopVariant) {
	case "iau1980":
		return eop.NewIAU1980(records), nil
	case "iau2000a":
		return eop.NewIAU2000A(records), nil
	default:
		return nil, fmt.Errorf("invalid --eop-variant %q", eopVariant)
	}
}

// parseFramePair validates two frame-name arguments.
func parseFramePair(args []string) (frames.Frame, frames.Frame, error) {
	origin, err := frames.ParseFrame(args[0])
	if err != nil {
		return 0, 0, err
	}
	dest, err := frames.ParseFrame(args[1])
	if err != nil {
		return 0, 0, err
	}
	return origin, dest, nil
}

// parseVec parses a comma-separated "x,y,z" triple.
func parseVec(s string) (rotation.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return rotation.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return rotation.Vec3{}, fmt.Errorf("component %d of %q: %w", i+1, s, err)
		}
		out[i] = v
	}
	return rotation.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}
