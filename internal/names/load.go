package names

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nightsky-software/stardb-go/internal/catalog"
)

// Load reads a star name list into db: one line per star, a catalog number
// followed by colon-separated names. Blank lines and # comments are
// skipped. Returns the number of names registered.
func Load(r io.Reader, db *Database) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			return count, fmt.Errorf("line %d: expected number:name", lineNo)
		}

		n, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 32)
		if err != nil || catalog.CatalogNumber(n) == catalog.InvalidCatalogNumber {
			return count, fmt.Errorf("line %d: bad catalog number %q", lineNo, fields[0])
		}

		for _, name := range fields[1:] {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			db.Add(catalog.CatalogNumber(n), name)
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read name list: %w", err)
	}
	return count, nil
}
