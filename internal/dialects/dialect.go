// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dialects provides database-specific SQL for PostgreSQL, MySQL and
// SQLite: identifier quoting, placeholders, UPSERT clauses and the schema of
// the request snapshot table.
package dialects

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coregx/searchq/internal/core"
)

// Dialect defines database-specific behaviors.
type Dialect interface {
	// Name returns the canonical dialect name (sqlite, postgres, mysql).
	Name() string
	QuoteIdentifier(string) string
	// Placeholder returns the bind parameter for the 1-based index.
	Placeholder(int) string
	// UpsertSQL returns the clause appended to an INSERT so that a conflict on
	// conflictColumns updates updateCols. A nil updateCols means do nothing.
	UpsertSQL(table string, conflictColumns, updateCols []string) string
	// SnapshotSchema returns the statements creating the snapshot table and
	// its indexes. Every statement is safe to run again.
	SnapshotSchema(table string) []string
}

var (
	mu       sync.RWMutex
	dialects = make(map[string]Dialect)
)

// RegisterDialect registers a database dialect by driver name.
func RegisterDialect(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[name] = d
}

// GetDialect retrieves a registered dialect by driver name.
func GetDialect(name string) (Dialect, error) {
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := dialects[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedDialect, name)
}

// Drivers returns the registered driver names in sorted order.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
