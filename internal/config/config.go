// Package config holds the runtime configuration and the catalog manifest:
// a YAML file naming the binary catalogs, cross indexes, definition files,
// and name lists that make up one star database.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest lists the catalog files loaded into one database. Binary
// catalogs load first, then cross indexes, then definition files in order;
// later definition files may modify earlier objects.
type Manifest struct {
	// Binary star catalogs (CELSTARS format).
	Binary []string `yaml:"binary"`

	// Cross-index files keyed by secondary catalog: HD, Gliese, or SAO.
	CrossIndexes map[string]string `yaml:"cross_indexes"`

	// Star definition files (.stc), applied in listed order.
	Definitions []string `yaml:"definitions"`

	// Star name list, one "number:Name:Name" line per star.
	Names string `yaml:"names"`
}

// LoadManifest reads and validates a manifest. Relative paths inside the
// manifest are resolved against the manifest's own directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	dir := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i, p := range m.Binary {
		m.Binary[i] = resolve(p)
	}
	for k, p := range m.CrossIndexes {
		m.CrossIndexes[k] = resolve(p)
	}
	for i, p := range m.Definitions {
		m.Definitions[i] = resolve(p)
	}
	m.Names = resolve(m.Names)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the manifest names at least one star source.
func (m *Manifest) Validate() error {
	if len(m.Binary) == 0 && len(m.Definitions) == 0 {
		return fmt.Errorf("manifest names no binary catalogs and no definition files")
	}
	for key := range m.CrossIndexes {
		switch key {
		case "HD", "Gliese", "SAO":
		default:
			return fmt.Errorf("unknown cross-index catalog %q", key)
		}
	}
	return nil
}

// Config holds the global configuration for catalog processing.
type Config struct {
	// Input settings
	ManifestFile string
	FilterScript string // Lua star filter, empty = accept all

	// Database settings
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSchema   string

	// Processing settings
	Workers   int
	BatchSize int

	// Logging and metrics
	Verbose         bool
	LogFile         string        // Path to log file (empty = no file logging)
	MetricsInterval time.Duration // Interval for system metrics logging
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DBHost:          "localhost",
		DBPort:          5432,
		DBName:          "stardb",
		DBUser:          "postgres",
		DBSchema:        "public",
		Workers:         runtime.NumCPU(),
		BatchSize:       50000,
		MetricsInterval: 30 * time.Second,
	}
}

// ConnectionString returns a PostgreSQL connection string.
func (c *Config) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBName, c.DBUser,
	)
	if c.DBPassword != "" {
		connStr += fmt.Sprintf(" password=%s", c.DBPassword)
	}
	return connStr
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.ManifestFile == "" {
		return fmt.Errorf("manifest file is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1")
	}
	return nil
}
