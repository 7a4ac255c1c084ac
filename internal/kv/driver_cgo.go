//go:build cgo

package kv

import (
	_ "github.com/mattn/go-sqlite3"
)

// sqlDriverName selects the cgo-based mattn/go-sqlite3 driver when cgo is
// available, matching the teacher's dual-driver build (cgo build for
// production throughput, pure-Go build for cross-compiled/CGO_ENABLED=0
// installs).
const sqlDriverName = "sqlite3"

// sqlDSN builds mattn/go-sqlite3's query-string DSN form; busy_timeout is
// set separately via PRAGMA after open, so no _busy_timeout param is needed
// here.
func sqlDSN(path string) string { return path }
