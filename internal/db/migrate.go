package db

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/livinlefevreloca/syncbridge/internal/db/migrations"
)

// Migration is a single schema change loaded from an NNN_name.sql file.
type Migration struct {
	Version      int
	Name         string
	UpSQL        string
	Dependencies []int
}

var (
	migrationFileRegex = regexp.MustCompile(`^(\d{3})_([a-zA-Z0-9_-]+)\.sql$`)
	upMarkerRegex      = regexp.MustCompile(`^--\s*\+migrate\s+Up\s*$`)
	dependsRegex       = regexp.MustCompile(`^--\s*\+migrate\s+Depends:\s*(.+)$`)
)

// Migrate applies every embedded migration that has not been applied yet.
func (db *DB) Migrate(ctx context.Context) error {
	return db.MigrateFS(ctx, migrations.FS)
}

// MigrateFS applies the pending migrations found in fsys, in version order.
func (db *DB) MigrateFS(ctx context.Context, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema table: %w", err)
	}

	all, err := LoadMigrations(fsys)
	if err != nil {
		return err
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}

	for _, m := range all {
		if applied[m.Version] {
			continue
		}
		for _, dep := range m.Dependencies {
			if !applied[dep] {
				return fmt.Errorf("migration %d depends on version %d which has not been applied", m.Version, dep)
			}
		}

		err := db.WithTransaction(ctx, func(tx *Tx) error {
			if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
				return fmt.Errorf("execute SQL: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
				return fmt.Errorf("record migration: %w", err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("apply migration %03d_%s: %w", m.Version, m.Name, err)
		}
		applied[m.Version] = true
	}

	return nil
}

// CurrentVersion returns the highest applied migration version, or 0.
func (db *DB) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// LoadMigrations reads and parses every migration file in fsys, sorted by version.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var result []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		m, err := ParseMigration(entry.Name(), string(content))
		if err != nil {
			return nil, err
		}
		if other, dup := seen[m.Version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s", m.Version, other, entry.Name())
		}
		seen[m.Version] = entry.Name()
		result = append(result, *m)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

// ParseMigration parses the content of a migration file named filename.
func ParseMigration(filename, content string) (*Migration, error) {
	matches := migrationFileRegex.FindStringSubmatch(filename)
	if matches == nil {
		return nil, fmt.Errorf("invalid migration filename format: %s (expected NNN_name.sql)", filename)
	}
	version, _ := strconv.Atoi(matches[1])

	lines := strings.Split(content, "\n")
	upLine := -1
	for i, line := range lines {
		if upMarkerRegex.MatchString(strings.TrimSpace(line)) {
			upLine = i
			break
		}
	}
	if upLine < 0 {
		return nil, fmt.Errorf("missing '-- +migrate Up' marker in migration file: %s", filename)
	}

	var deps []int
	var body []string
	for _, line := range lines[upLine+1:] {
		trimmed := strings.TrimSpace(line)
		if m := dependsRegex.FindStringSubmatch(trimmed); m != nil {
			for _, field := range strings.Fields(m[1]) {
				dep, err := strconv.Atoi(field)
				if err != nil {
					return nil, fmt.Errorf("invalid dependency version '%s' in migration file: %s", field, filename)
				}
				deps = append(deps, dep)
			}
			continue
		}
		body = append(body, line)
	}

	sql := strings.TrimSpace(strings.Join(body, "\n"))
	if sql == "" {
		return nil, fmt.Errorf("migration file contains no SQL statements: %s", filename)
	}

	return &Migration{
		Version:      version,
		Name:         matches[2],
		UpSQL:        sql,
		Dependencies: deps,
	}, nil
}
