package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/nightsky-software/stardb-go/internal/logger"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load and verify a catalog set",
	Long: `Load every source named by the manifest, resolve cross references,
and build the spatial index.

This stage:
  1. Reads binary catalogs, cross indexes, names, and definition files
  2. Applies Add/Replace/Modify merge semantics in manifest order
  3. Resolves barycenter references and builds the octree

Use it to validate a catalog set before exporting.`,
	Run: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) {
	log := logger.Get()
	log.Info("Starting catalog load", zap.String("manifest", cfg.ManifestFile))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startMetrics(ctx)

	start := time.Now()

	db, err := buildDatabase(ctx)
	if err != nil {
		exitWithError("load failed", err)
	}

	elapsed := time.Since(start)

	log.Info("Load complete",
		zap.Duration("duration", elapsed.Round(time.Millisecond)),
		zap.Int("stars", db.Len()),
		zap.Float64("throughput_stars_s", float64(db.Len())/elapsed.Seconds()),
	)
}
