package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema applies the embedded DDL. Every statement uses IF NOT
// EXISTS, so it is safe to run on every startup.
func EnsureSchema(ctx context.Context, db DBTX) error {
	// Statements run one at a time: the pgx stdlib driver rejects
	// multi-statement Exec calls.
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
