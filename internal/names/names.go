// Package names maps display names to catalog numbers and back. The star
// database only depends on the Resolver interface; the in-memory Database is
// the default implementation.
package names

import (
	"sort"
	"strings"

	"github.com/nightsky-software/stardb-go/internal/catalog"
)

// Resolver is the name lookup service consumed by the star database.
// Implementations must support multiple names per catalog number.
type Resolver interface {
	// Resolve returns the catalog number registered for a display name.
	Resolve(name string) (catalog.CatalogNumber, bool)
	// Add registers a display name for a catalog number. Empty names are
	// ignored.
	Add(n catalog.CatalogNumber, name string)
	// Erase removes every name registered for a catalog number.
	Erase(n catalog.CatalogNumber)
	// Names returns the display names registered for a catalog number, in
	// registration order.
	Names(n catalog.CatalogNumber) []string
	// Completions returns registered names beginning with prefix.
	Completions(prefix string) []string
}

// Database is an in-memory name index.
type Database struct {
	byName   map[string]catalog.CatalogNumber
	byNumber map[catalog.CatalogNumber][]string
}

// NewDatabase creates an empty name database.
func NewDatabase() *Database {
	return &Database{
		byName:   make(map[string]catalog.CatalogNumber),
		byNumber: make(map[catalog.CatalogNumber][]string),
	}
}

// Resolve returns the catalog number registered for name.
func (db *Database) Resolve(name string) (catalog.CatalogNumber, bool) {
	n, ok := db.byName[name]
	if !ok {
		return catalog.InvalidCatalogNumber, false
	}
	return n, true
}

// Add registers a display name for a catalog number.
func (db *Database) Add(n catalog.CatalogNumber, name string) {
	if name == "" {
		return
	}
	db.byName[name] = n
	db.byNumber[n] = append(db.byNumber[n], name)
}

// Erase removes every name registered for a catalog number.
func (db *Database) Erase(n catalog.CatalogNumber) {
	for _, name := range db.byNumber[n] {
		if db.byName[name] == n {
			delete(db.byName, name)
		}
	}
	delete(db.byNumber, n)
}

// Names returns the display names registered for a catalog number.
func (db *Database) Names(n catalog.CatalogNumber) []string {
	return db.byNumber[n]
}

// Completions returns registered names beginning with prefix, sorted.
func (db *Database) Completions(prefix string) []string {
	if prefix == "" {
		return nil
	}
	var out []string
	for name := range db.byName {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
