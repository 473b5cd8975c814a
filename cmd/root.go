package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spf13/cobra"
	"github.com/nightsky-software/stardb-go/internal/catalog"
	"github.com/nightsky-software/stardb-go/internal/config"
	"github.com/nightsky-software/stardb-go/internal/logger"
	"github.com/nightsky-software/stardb-go/internal/metrics"
	"github.com/nightsky-software/stardb-go/internal/names"
	"github.com/nightsky-software/stardb-go/internal/stardb"
)

var (
	cfg             = config.DefaultConfig()
	verbose         bool
	logFile         string
	metricsInterval time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "stardb",
	Short: "Star catalog loader and spatial index",
	Long: `stardb merges binary star catalogs, cross indexes, and textual star
definitions into one spatial database.

Features:
  - Binary CELSTARS catalogs with memory-mapped reads
  - HD, Gliese, and SAO cross-index resolution
  - Textual .stc definitions with Add/Replace/Modify merge semantics
  - Magnitude-aware octree for frustum and proximity queries
  - Lua-filtered exports to PostgreSQL or Parquet`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg.Verbose = verbose
		cfg.LogFile = logFile
		cfg.MetricsInterval = metricsInterval

		if logFile != "" {
			logger.InitWithFile(verbose, logFile)
		} else {
			logger.Init(verbose)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&cfg.ManifestFile, "manifest", "m", "", "Catalog manifest YAML file")
	rootCmd.PersistentFlags().IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Number of parallel workers")

	// Logging and metrics flags
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file for persistent logging (JSON format)")
	rootCmd.PersistentFlags().DurationVar(&metricsInterval, "metrics-interval", 30*time.Second, "Interval for system metrics logging (e.g., 10s, 1m)")

	// Database flags (persistent so they're available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfg.DBHost, "db-host", cfg.DBHost, "PostgreSQL host")
	rootCmd.PersistentFlags().IntVar(&cfg.DBPort, "db-port", cfg.DBPort, "PostgreSQL port")
	rootCmd.PersistentFlags().StringVarP(&cfg.DBName, "db-name", "d", cfg.DBName, "PostgreSQL database name")
	rootCmd.PersistentFlags().StringVarP(&cfg.DBUser, "db-user", "U", cfg.DBUser, "PostgreSQL user")
	rootCmd.PersistentFlags().StringVarP(&cfg.DBPassword, "db-password", "W", cfg.DBPassword, "PostgreSQL password")
	rootCmd.PersistentFlags().StringVar(&cfg.DBSchema, "db-schema", cfg.DBSchema, "PostgreSQL schema")
}

func exitWithError(msg string, err error) {
	log := logger.Get()
	if err != nil {
		log.Error(msg, zap.Error(err))
	} else {
		log.Error(msg)
	}
	os.Exit(1)
}

// startMetrics launches the periodic system metrics collector.
func startMetrics(ctx context.Context) {
	if cfg.MetricsInterval > 0 {
		collector := metrics.NewCollector(cfg.MetricsInterval, logger.Get())
		go collector.Start(ctx)
	}
}

// buildDatabase loads every catalog source named by the manifest and
// finishes the database: names first, then binary catalogs, cross indexes
// in parallel, then definition files in listed order.
func buildDatabase(ctx context.Context) (*stardb.StarDatabase, error) {
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	manifest, err := config.LoadManifest(cfg.ManifestFile)
	if err != nil {
		return nil, err
	}

	resolver := names.NewDatabase()
	if manifest.Names != "" {
		f, err := os.Open(manifest.Names)
		if err != nil {
			return nil, fmt.Errorf("failed to open name list: %w", err)
		}
		count, err := names.Load(f, resolver)
		f.Close()
		if err != nil {
			return nil, err
		}
		log.Info("Loaded star names", zap.Int("names", count))
	}

	db := stardb.New(resolver)

	for _, path := range manifest.Binary {
		mapped, err := catalog.OpenMapped(path)
		if err != nil {
			return nil, err
		}
		err = db.LoadBinary(mapped.Reader())
		mapped.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	// Cross indexes are independent tables; load them in parallel.
	g, _ := errgroup.WithContext(ctx)
	for key, path := range manifest.CrossIndexes {
		key, path := key, path
		g.Go(func() error {
			cat, err := stardb.ParseCatalog(key)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open cross index: %w", err)
			}
			defer f.Close()
			return db.LoadCrossIndex(cat, f)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, path := range manifest.Definitions {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open definition file: %w", err)
		}
		err = db.LoadSTC(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Info("Applied definition file", zap.String("file", path))
	}

	if err := db.Finish(); err != nil {
		return nil, err
	}
	return db, nil
}
