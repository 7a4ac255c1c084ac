//go:build !cgo

package kv

import (
	_ "modernc.org/sqlite"
)

// sqlDriverName falls back to the pure-Go modernc.org/sqlite driver when cgo
// is unavailable (cross-compiled binaries, CGO_ENABLED=0 installs).
const sqlDriverName = "sqlite"

// sqlDSN builds modernc.org/sqlite's query-string DSN form.
func sqlDSN(path string) string { return path + "?_pragma=busy_timeout(5000)" }
