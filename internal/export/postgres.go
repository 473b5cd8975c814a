// Package export writes a finished star database to external stores:
// PostgreSQL tables over COPY, or Parquet files.
package export

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nightsky-software/stardb-go/internal/catalog"
	"github.com/nightsky-software/stardb-go/internal/config"
	"github.com/nightsky-software/stardb-go/internal/logger"
	"github.com/nightsky-software/stardb-go/internal/stardb"
)

// Stats holds export statistics.
type Stats struct {
	StarsExported int64
	NamesExported int64
}

// AcceptFunc decides whether a star is included in the export. A nil
// function accepts everything.
type AcceptFunc func(s *catalog.Star, name string) (bool, error)

// PostgresExporter bulk-loads stars and their names into PostgreSQL.
type PostgresExporter struct {
	cfg  *config.Config
	pool *pgxpool.Pool
}

// NewPostgresExporter connects to PostgreSQL.
func NewPostgresExporter(cfg *config.Config) (*PostgresExporter, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Workers)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &PostgresExporter{cfg: cfg, pool: pool}, nil
}

// Close closes connections.
func (e *PostgresExporter) Close() error {
	e.pool.Close()
	return nil
}

// Run exports every accepted star from db. Tables are created unlogged,
// filled over COPY, then switched to logged and indexed.
func (e *PostgresExporter) Run(ctx context.Context, db *stardb.StarDatabase, accept AcceptFunc) (*Stats, error) {
	log := logger.Get()
	stats := &Stats{}

	if e.cfg.DBSchema != "public" {
		if _, err := e.pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", e.cfg.DBSchema)); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	starsTable := fmt.Sprintf("%s.stars", e.cfg.DBSchema)
	namesTable := fmt.Sprintf("%s.star_names", e.cfg.DBSchema)

	if err := e.createTables(ctx, starsTable, namesTable); err != nil {
		return nil, err
	}

	starRows := make(chan []interface{}, e.cfg.BatchSize)
	nameRows := make(chan []interface{}, e.cfg.BatchSize)

	// Both COPY streams drain concurrently; a full names buffer must not
	// stall the stars stream.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(starRows)
		defer close(nameRows)
		for i := 0; i < db.Len(); i++ {
			s := db.At(i)
			name := db.StarName(s)

			if accept != nil {
				ok, err := accept(s, name)
				if err != nil {
					return fmt.Errorf("star filter failed: %w", err)
				}
				if !ok {
					continue
				}
			}

			pos := s.Position()
			var spectral string
			if d := s.Details(); d != nil {
				spectral = d.SpectralType()
			}
			var barycenter interface{}
			if b := s.OrbitBarycenter(); b != nil {
				barycenter = int64(b.Number())
			}

			row := []interface{}{
				int64(s.Number()), pos.X, pos.Y, pos.Z,
				s.AbsoluteMagnitude(), s.Extinction(), spectral, barycenter,
			}
			select {
			case starRows <- row:
			case <-gctx.Done():
				return gctx.Err()
			}
			for _, n := range db.Names().Names(s.Number()) {
				select {
				case nameRows <- []interface{}{int64(s.Number()), n}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
		return nil
	})

	g.Go(func() error {
		count, err := e.pool.CopyFrom(gctx,
			pgx.Identifier{e.cfg.DBSchema, "stars"},
			[]string{"number", "x", "y", "z", "abs_mag", "extinction", "spectral_type", "barycenter"},
			&rowSource{rows: starRows})
		if err != nil {
			return fmt.Errorf("stars COPY failed: %w", err)
		}
		stats.StarsExported = count
		return nil
	})

	g.Go(func() error {
		count, err := e.pool.CopyFrom(gctx,
			pgx.Identifier{e.cfg.DBSchema, "star_names"},
			[]string{"number", "name"},
			&rowSource{rows: nameRows})
		if err != nil {
			return fmt.Errorf("star_names COPY failed: %w", err)
		}
		stats.NamesExported = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := e.finishTables(ctx, starsTable, namesTable); err != nil {
		return nil, err
	}

	log.Info("PostgreSQL export complete",
		zap.Int64("stars", stats.StarsExported),
		zap.Int64("names", stats.NamesExported))
	return stats, nil
}

func (e *PostgresExporter) createTables(ctx context.Context, starsTable, namesTable string) error {
	stmts := []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", starsTable),
		fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", namesTable),
		fmt.Sprintf(`
			CREATE UNLOGGED TABLE %s (
				number BIGINT NOT NULL,
				x REAL NOT NULL,
				y REAL NOT NULL,
				z REAL NOT NULL,
				abs_mag REAL NOT NULL,
				extinction REAL NOT NULL,
				spectral_type TEXT,
				barycenter BIGINT
			)
		`, starsTable),
		fmt.Sprintf(`
			CREATE UNLOGGED TABLE %s (
				number BIGINT NOT NULL,
				name TEXT NOT NULL
			)
		`, namesTable),
	}
	for _, sql := range stmts {
		if _, err := e.pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("failed to create export tables: %w", err)
		}
	}
	return nil
}

func (e *PostgresExporter) finishTables(ctx context.Context, starsTable, namesTable string) error {
	stmts := []string{
		fmt.Sprintf("ALTER TABLE %s SET LOGGED", starsTable),
		fmt.Sprintf("ALTER TABLE %s SET LOGGED", namesTable),
		fmt.Sprintf("CREATE UNIQUE INDEX ON %s (number)", starsTable),
		fmt.Sprintf("CREATE INDEX ON %s (abs_mag)", starsTable),
		fmt.Sprintf("CREATE INDEX ON %s (name)", namesTable),
		fmt.Sprintf("ANALYZE %s", starsTable),
		fmt.Sprintf("ANALYZE %s", namesTable),
	}
	for _, sql := range stmts {
		if _, err := e.pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("failed to finish export tables: %w", err)
		}
	}
	return nil
}

// rowSource implements pgx.CopyFromSource for streaming rows.
type rowSource struct {
	rows    <-chan []interface{}
	current []interface{}
}

func (r *rowSource) Next() bool {
	row, ok := <-r.rows
	if !ok {
		return false
	}
	r.current = row
	return true
}

func (r *rowSource) Values() ([]interface{}, error) {
	return r.current, nil
}

func (r *rowSource) Err() error {
	return nil
}
