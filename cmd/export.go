package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/nightsky-software/stardb-go/internal/catalog"
	"github.com/nightsky-software/stardb-go/internal/export"
	"github.com/nightsky-software/stardb-go/internal/logger"
	"github.com/nightsky-software/stardb-go/internal/script"
)

var exportFilterScript string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the merged catalog to PostgreSQL",
	Long: `Load the catalog set and bulk-load the merged result into
PostgreSQL over COPY: a stars table plus a star_names table.

A Lua filter script can restrict the export star by star:

  stardb.accept_star = function(star)
      return star.absmag < 8.0
  end`,
	Run: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFilterScript, "filter", "", "Lua filter script")
}

// loadFilter builds the export accept function from the --filter flag.
// The caller owns the returned closer.
func loadFilter(path string) (export.AcceptFunc, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := script.NewFilterFromFile(path)
	if err != nil {
		return nil, nil, err
	}
	accept := func(s *catalog.Star, name string) (bool, error) {
		return f.Accept(s, name)
	}
	return accept, f.Close, nil
}

func runExport(cmd *cobra.Command, args []string) {
	log := logger.Get()
	log.Info("Starting PostgreSQL export",
		zap.String("manifest", cfg.ManifestFile),
		zap.String("database", cfg.DBName),
		zap.String("host", cfg.DBHost),
		zap.Int("port", cfg.DBPort),
		zap.String("schema", cfg.DBSchema),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startMetrics(ctx)

	start := time.Now()

	db, err := buildDatabase(ctx)
	if err != nil {
		exitWithError("load failed", err)
	}

	accept, closeFilter, err := loadFilter(exportFilterScript)
	if err != nil {
		exitWithError("failed to load filter script", err)
	}
	defer closeFilter()

	exporter, err := export.NewPostgresExporter(cfg)
	if err != nil {
		exitWithError("failed to connect to PostgreSQL", err)
	}
	defer exporter.Close()

	stats, err := exporter.Run(ctx, db, accept)
	if err != nil {
		exitWithError("export failed", err)
	}

	elapsed := time.Since(start)

	log.Info("Export complete",
		zap.Duration("duration", elapsed.Round(time.Second)),
		zap.Int64("stars", stats.StarsExported),
		zap.Int64("names", stats.NamesExported),
		zap.Float64("throughput_stars_s", float64(stats.StarsExported)/elapsed.Seconds()),
	)
}
