// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dialects

import (
	"fmt"
	"strings"
)

// SQLiteDialect implements SQLite-specific SQL dialect.
type SQLiteDialect struct{}

func init() {
	RegisterDialect("sqlite", &SQLiteDialect{})
	RegisterDialect("sqlite3", &SQLiteDialect{})
}

// Name returns "sqlite".
func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

// QuoteIdentifier quotes a SQLite identifier using double quotes.
func (d *SQLiteDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns SQLite placeholder format (always "?").
func (d *SQLiteDialect) Placeholder(_ int) string {
	return "?"
}

// UpsertSQL generates SQLite UPSERT syntax using ON CONFLICT.
func (d *SQLiteDialect) UpsertSQL(_ string, conflictColumns, updateCols []string) string {
	if updateCols == nil {
		if len(conflictColumns) > 0 {
			return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", d.quoteAll(conflictColumns))
		}
		return " ON CONFLICT DO NOTHING"
	}

	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		q := d.QuoteIdentifier(col)
		updates[i] = fmt.Sprintf("%s = excluded.%s", q, q)
	}

	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		d.quoteAll(conflictColumns),
		strings.Join(updates, ", "))
}

// SnapshotSchema returns the SQLite snapshot table. Times are RFC 3339 text.
func (d *SQLiteDialect) SnapshotSchema(table string) []string {
	t := d.QuoteIdentifier(table)
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	"id" TEXT PRIMARY KEY,
	"created_at" TEXT NOT NULL,
	"search_as_you_type" INTEGER NOT NULL DEFAULT 0,
	"q" TEXT NOT NULL DEFAULT '',
	"expression" TEXT NOT NULL DEFAULT '',
	"format" TEXT NOT NULL,
	"payload" BLOB NOT NULL
)`, t),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s ("created_at")`,
			d.QuoteIdentifier("idx_"+table+"_created_at"), t),
	}
}

func (d *SQLiteDialect) quoteAll(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}
