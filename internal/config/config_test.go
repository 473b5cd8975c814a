package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := `
binary:
  - stars.dat
cross_indexes:
  HD: hdxindex.dat
  SAO: /data/saoxindex.dat
definitions:
  - nearstars.stc
  - extrasolar.stc
names: starnames.dat
`
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	if len(m.Binary) != 1 || m.Binary[0] != filepath.Join(dir, "stars.dat") {
		t.Errorf("binary = %v, want path relative to manifest dir", m.Binary)
	}
	if m.CrossIndexes["HD"] != filepath.Join(dir, "hdxindex.dat") {
		t.Errorf("HD index = %q", m.CrossIndexes["HD"])
	}
	if m.CrossIndexes["SAO"] != "/data/saoxindex.dat" {
		t.Errorf("absolute path must pass through, got %q", m.CrossIndexes["SAO"])
	}
	if len(m.Definitions) != 2 || m.Definitions[1] != filepath.Join(dir, "extrasolar.stc") {
		t.Errorf("definitions = %v", m.Definitions)
	}
	if m.Names != filepath.Join(dir, "starnames.dat") {
		t.Errorf("names = %q", m.Names)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"empty", `{}`},
		{"bad catalog key", "binary: [stars.dat]\ncross_indexes:\n  HIP: x.dat\n"},
		{"bad yaml", `binary: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadManifest(path); err == nil {
				t.Fatal("LoadManifest succeeded, want error")
			}
		})
	}

	if _, err := LoadManifest(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("missing file must error")
	}
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err == nil {
		t.Error("empty manifest path must fail validation")
	}

	c.ManifestFile = "catalog.yaml"
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	c.Workers = 0
	if err := c.Validate(); err == nil {
		t.Error("zero workers must fail validation")
	}
}

func TestConnectionString(t *testing.T) {
	c := DefaultConfig()
	c.DBName = "stars"
	c.DBUser = "loader"
	want := "host=localhost port=5432 dbname=stars user=loader sslmode=disable"
	if got := c.ConnectionString(); got != want {
		t.Errorf("ConnectionString = %q, want %q", got, want)
	}

	c.DBPassword = "secret"
	if got := c.ConnectionString(); got != want+" password=secret" {
		t.Errorf("ConnectionString with password = %q", got)
	}
}
