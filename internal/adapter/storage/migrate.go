package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Migrations are embedded so the server can bootstrap an empty database
// regardless of its working directory.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// Statements returns every migration statement in apply order. Files are
// applied by name; statements inside a file are separated by ";" at line end.
func Statements() ([]string, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	var stmts []string
	for _, name := range names {
		raw, err := migrationsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		for _, stmt := range strings.Split(string(raw), ";\n") {
			stmt = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
			if stmt != "" {
				stmts = append(stmts, stmt)
			}
		}
	}
	return stmts, nil
}

// Migrate applies the schema and seed data. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts, err := Statements()
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration statement %d: %w", i+1, err)
		}
	}
	return nil
}
