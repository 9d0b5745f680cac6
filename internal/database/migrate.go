package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Migration is one numbered pair of SQL scripts from the migrations directory.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m *Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrations = mustLoadMigrations(migrationFS)

func mustLoadMigrations(fsys fs.FS) []Migration {
	loaded, err := loadMigrations(fsys)
	if err != nil {
		panic(err)
	}
	return loaded
}

// loadMigrations reads every NNNNNN_name.up.sql under migrations/ with its matching
// .down.sql, ordered by version.
func loadMigrations(fsys fs.FS) ([]Migration, error) {
	ups, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	loaded := make([]Migration, 0, len(ups))
	seen := make(map[int]string, len(ups))
	for _, upPath := range ups {
		base := strings.TrimSuffix(path.Base(upPath), ".up.sql")
		prefix, name, ok := strings.Cut(base, "_")
		if !ok || name == "" {
			return nil, fmt.Errorf("migration %q: want NNNNNN_name.up.sql", base)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %q: invalid version %q", base, prefix)
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %q and %q share version %d", other, base, version)
		}
		seen[version] = base

		up, err := fs.ReadFile(fsys, upPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", upPath, err)
		}
		down, err := fs.ReadFile(fsys, path.Join("migrations", base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %q has no down script: %w", base, err)
		}

		loaded = append(loaded, Migration{
			Version:    version,
			Name:       name,
			UpScript:   string(up),
			DownScript: string(down),
		})
	}

	sort.Slice(loaded, func(i, j int) bool { return loaded[i].Version < loaded[j].Version })
	return loaded, nil
}

func GetMigrations() []Migration {
	return migrations
}

func GetMigrationByVersion(version int) *Migration {
	for i := range migrations {
		if migrations[i].Version == version {
			m := migrations[i]
			return &m
		}
	}
	return nil
}

// pendingMigrations returns the registered migrations missing from applied, in order.
func pendingMigrations(registered []Migration, applied []int) []Migration {
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	var pending []Migration
	for _, m := range registered {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending
}
