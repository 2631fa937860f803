// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

// Snapshot store drivers. SQLite is served by the pure Go driver
// ("sqlite"); cgo builds also get mattn/go-sqlite3 ("sqlite3").
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)
