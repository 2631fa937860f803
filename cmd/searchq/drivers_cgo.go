// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build cgo

package main

import (
	_ "github.com/mattn/go-sqlite3"
)
