// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dialects

import (
	"fmt"
	"strings"
)

// PostgresDialect implements PostgreSQL-specific SQL dialect.
type PostgresDialect struct{}

func init() {
	RegisterDialect("postgres", &PostgresDialect{})
}

// Name returns "postgres".
func (d *PostgresDialect) Name() string {
	return "postgres"
}

// QuoteIdentifier quotes a PostgreSQL identifier using double quotes.
func (d *PostgresDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns PostgreSQL placeholder format ($1, $2, etc.).
func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// UpsertSQL generates PostgreSQL UPSERT syntax using ON CONFLICT.
func (d *PostgresDialect) UpsertSQL(_ string, conflictColumns, updateCols []string) string {
	conflict := make([]string, len(conflictColumns))
	for i, c := range conflictColumns {
		conflict[i] = d.QuoteIdentifier(c)
	}

	if updateCols == nil {
		if len(conflict) > 0 {
			return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(conflict, ", "))
		}
		return " ON CONFLICT DO NOTHING"
	}

	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(conflict, ", "),
		d.buildUpdateSet(updateCols),
	)
}

// buildUpdateSet builds the SET clause for UPDATE.
func (d *PostgresDialect) buildUpdateSet(cols []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		q := d.QuoteIdentifier(col)
		parts[i] = fmt.Sprintf("%s = EXCLUDED.%s", q, q)
	}
	return strings.Join(parts, ", ")
}

// SnapshotSchema returns the PostgreSQL snapshot table.
func (d *PostgresDialect) SnapshotSchema(table string) []string {
	t := d.QuoteIdentifier(table)
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	"id" VARCHAR(36) PRIMARY KEY,
	"created_at" VARCHAR(40) NOT NULL,
	"search_as_you_type" SMALLINT NOT NULL DEFAULT 0,
	"q" TEXT NOT NULL DEFAULT '',
	"expression" TEXT NOT NULL DEFAULT '',
	"format" VARCHAR(16) NOT NULL,
	"payload" BYTEA NOT NULL
)`, t),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s ("created_at")`,
			d.QuoteIdentifier("idx_"+table+"_created_at"), t),
	}
}
