package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/nightsky-software/stardb-go/internal/export"
	"github.com/nightsky-software/stardb-go/internal/logger"
)

var (
	dumpOutput       string
	dumpFilterScript string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the merged catalog to a Parquet file",
	Long: `Load the catalog set and write the merged result to a Parquet
file: one row per star with its preferred name, position, magnitude, and
spectral type. A Lua filter script can restrict the dump star by star.`,
	Run: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "stars.parquet", "Output Parquet file")
	dumpCmd.Flags().StringVar(&dumpFilterScript, "filter", "", "Lua filter script")
}

func runDump(cmd *cobra.Command, args []string) {
	log := logger.Get()
	log.Info("Starting Parquet dump",
		zap.String("manifest", cfg.ManifestFile),
		zap.String("output", dumpOutput),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startMetrics(ctx)

	start := time.Now()

	db, err := buildDatabase(ctx)
	if err != nil {
		exitWithError("load failed", err)
	}

	accept, closeFilter, err := loadFilter(dumpFilterScript)
	if err != nil {
		exitWithError("failed to load filter script", err)
	}
	defer closeFilter()

	writer, err := export.NewStarWriter(dumpOutput, cfg.BatchSize)
	if err != nil {
		exitWithError("failed to create Parquet writer", err)
	}

	for i := 0; i < db.Len(); i++ {
		s := db.At(i)
		name := db.StarName(s)

		if accept != nil {
			ok, err := accept(s, name)
			if err != nil {
				exitWithError("star filter failed", err)
			}
			if !ok {
				continue
			}
		}

		if err := writer.Write(s, name); err != nil {
			exitWithError("failed to write star", err)
		}
	}

	total := writer.Total()
	if err := writer.Close(); err != nil {
		exitWithError("failed to close Parquet writer", err)
	}

	elapsed := time.Since(start)

	log.Info("Dump complete",
		zap.Duration("duration", elapsed.Round(time.Millisecond)),
		zap.Int64("stars", total),
		zap.String("output", dumpOutput),
	)
}
