// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command searchq composes search requests from a YAML contributor file.
//
// Logging:
//   - The logger is built from the logging section of the config file
//   - Logs go to stderr, requests and reports to stdout
//   - No global slog configuration (no slog.SetDefault)
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
