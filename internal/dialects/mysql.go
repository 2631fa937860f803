// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dialects

import (
	"fmt"
	"strings"
)

// MySQLDialect implements MySQL-specific SQL dialect.
type MySQLDialect struct{}

func init() {
	RegisterDialect("mysql", &MySQLDialect{})
}

// Name returns "mysql".
func (d *MySQLDialect) Name() string {
	return "mysql"
}

// QuoteIdentifier quotes a MySQL identifier using backticks.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Placeholder returns MySQL placeholder format (always "?").
func (d *MySQLDialect) Placeholder(_ int) string {
	return "?"
}

// UpsertSQL generates MySQL UPSERT syntax using ON DUPLICATE KEY UPDATE.
// MySQL has no DO NOTHING form; a nil updateCols yields a self-assignment of
// the first conflict column, which keeps the row unchanged.
func (d *MySQLDialect) UpsertSQL(_ string, conflictColumns, updateCols []string) string {
	if updateCols == nil {
		if len(conflictColumns) == 0 {
			return ""
		}
		q := d.QuoteIdentifier(conflictColumns[0])
		return fmt.Sprintf(" ON DUPLICATE KEY UPDATE %s = %s", q, q)
	}

	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		q := d.QuoteIdentifier(col)
		updates[i] = fmt.Sprintf("%s = VALUES(%s)", q, q)
	}

	return fmt.Sprintf(" ON DUPLICATE KEY UPDATE %s",
		strings.Join(updates, ", "))
}

// SnapshotSchema returns the MySQL snapshot table. MySQL has no
// CREATE INDEX IF NOT EXISTS, so the index is declared inline.
func (d *MySQLDialect) SnapshotSchema(table string) []string {
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n"+
			"\t`id` VARCHAR(36) NOT NULL PRIMARY KEY,\n"+
			"\t`created_at` VARCHAR(40) NOT NULL,\n"+
			"\t`search_as_you_type` TINYINT NOT NULL DEFAULT 0,\n"+
			"\t`q` TEXT NOT NULL,\n"+
			"\t`expression` TEXT NOT NULL,\n"+
			"\t`format` VARCHAR(16) NOT NULL,\n"+
			"\t`payload` LONGBLOB NOT NULL,\n"+
			"\tINDEX %s (`created_at`)\n"+
			") CHARACTER SET utf8mb4",
			d.QuoteIdentifier(table), d.QuoteIdentifier("idx_"+table+"_created_at")),
	}
}
