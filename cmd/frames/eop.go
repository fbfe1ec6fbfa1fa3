package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/star/frames/eop"
	"github.com/star/frames/timeutil"
)

var (
	eopFetchURL string
	eopFetchDir string
)

var eopCmd = &cobra.Command{
	Use:   "eop",
	Short: "Manage Earth orientation data",
}

var eopFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download an EOP table into the local cache",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fetcher := eop.NewFetcher(eopFetchURL)

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		slog.Info("fetching EOP table", "source", fetcher.SourceURL())
		raw, err := fetcher.Fetch(ctx)
		if err != nil {
			fatal("fetching EOP table", err)
		}

		records, err := eop.Parse(bytes.NewReader(raw), slog.Default())
		if err != nil {
			fatal("parsing EOP table", err)
		}
		if len(records) == 0 {
			fatal("parsing EOP table", fmt.Errorf("source returned no records"))
		}

		cache := eop.NewCache(eopFetchDir, 5)
		now := time.Now()
		if err := cache.Write(raw, now); err != nil {
			fatal("writing EOP cache", err)
		}

		fmt.Printf("fetched %d records into %s (eop_%d.csv)\n", len(records), eopFetchDir, now.Unix())
	},
}

var eopInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Summarize an EOP CSV file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			fatal("opening file", err)
		}
		defer f.Close()

		records, err := eop.Parse(f, slog.Default())
		if err != nil {
			fatal("parsing EOP file", err)
		}
		if len(records) == 0 {
			fatal("parsing EOP file", fmt.Errorf("no records"))
		}

		data := eop.NewIAU1980(records)
		minMJD, maxMJD := data.Span()
		fmt.Printf("records: %d\n", len(records))
		fmt.Printf("span:    MJD %.1f .. %.1f (%s .. %s)\n",
			minMJD, maxMJD,
			timeutil.FromJulian(minMJD+timeutil.MJDOffset).Format("2006-01-02"),
			timeutil.FromJulian(maxMJD+timeutil.MJDOffset).Format("2006-01-02"))

		xp, yp := data.PolarMotion(maxMJD + timeutil.MJDOffset)
		fmt.Printf("latest:  x_p=%.6f\" y_p=%.6f\" dUT1=%.7fs LOD=%.7fs\n",
			xp, yp,
			data.DUT1(maxMJD+timeutil.MJDOffset),
			data.LOD(maxMJD+timeutil.MJDOffset))
	},
}

func init() {
	rootCmd.AddCommand(eopCmd)
	eopCmd.AddCommand(eopFetchCmd)
	eopCmd.AddCommand(eopInfoCmd)
	eopFetchCmd.Flags().StringVar(&eopFetchURL, "url", "", "Source URL (default: celestrak EOP CSV)")
	eopFetchCmd.Flags().StringVar(&eopFetchDir, "dir", "/tmp/frames/eop", "Cache directory")
}
