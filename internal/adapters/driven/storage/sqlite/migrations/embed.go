// Package migrations holds the versioned schema of the known-users store.
// Files are named NNN_description.up.sql; the numeric prefix is the schema
// version recorded once the file has run.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS

// Migration is one up migration.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// After returns the up migrations in fsys newer than version, oldest first.
// Files without a numeric prefix are skipped.
func After(fsys fs.FS, version int) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var pending []Migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		var v int
		if _, err := fmt.Sscanf(name, "%d_", &v); err != nil || v <= version {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		pending = append(pending, Migration{Version: v, Name: name, SQL: string(content)})
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })
	return pending, nil
}
