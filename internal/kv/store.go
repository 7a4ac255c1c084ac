// Package kv wraps a SQLite database as a namespaced keyed store with
// multiple column families, approximating the RocksDB-style tuning contract
// (block cache, write buffer, compression, bounded background jobs) spec.md
// §4.A calls for, atop the teacher's actual persistence engine.
package kv

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

// Tuning approximates spec.md §4.A's tuning contract: block cache ~64MiB,
// write buffer ~32MiB x2, LZ4 for upper levels / Zstd for bottommost, <=2
// background jobs. SQLite has no notion of LSM levels, so "upper vs.
// bottommost" is approximated by value size: values under LargeValueBytes
// are stored raw (cheap to decompress, analogous to an upper level still
// being merged); values at or above it are zstd-compressed before storage
// (analogous to the bottommost, rarely-rewritten level where a heavier
// codec pays for itself).
type Tuning struct {
	CacheSizeKB      int
	BackgroundJobs   int
	LargeValueBytes  int
	CompressionLevel zstd.EncoderLevel
}

// DefaultTuning matches spec.md §4.A's defaults.
func DefaultTuning() Tuning {
	return Tuning{
		CacheSizeKB:      64 * 1024,
		BackgroundJobs:   2,
		LargeValueBytes:  16 * 1024, // ~= the block-size knob in the tuning contract
		CompressionLevel: zstd.SpeedDefault,
	}
}

// Store is a namespaced, column-family keyed store backed by a single
// SQLite database file, one table per column family.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	lock   *flock.Flock
	tuning Tuning

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open opens (creating if absent) a keyed store at path with the given
// column family names. Fails with CaseDbOpenFailed on lock contention or
// schema corruption, mirroring the teacher's validate-then-open pattern for
// its SQLite-backed BM25 index.
func Open(path string, cfNames []string, tuning Tuning) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeCaseDbOpenFailed,
			fmt.Sprintf("failed to create store directory %s", dir), err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeCaseDbOpenFailed, "failed to acquire store lock", err)
	}
	if !locked {
		return nil, caseerrors.New(caseerrors.ErrCodeCaseDbOpenFailed, "store is locked by another process", nil).
			WithSuggestion("close the other process holding this case open, then retry")
	}

	db, err := sql.Open(sqlDriverName, sqlDSN(path))
	if err != nil {
		_ = lock.Unlock()
		return nil, caseerrors.New(caseerrors.ErrCodeCaseDbOpenFailed, "failed to open database", err)
	}

	// Single writer, matching the teacher's sqlite_bm25 connection pool
	// settings to avoid SQLITE_BUSY under the one-writer-many-readers
	// concurrency model spec.md §5 requires.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA cache_size = -%d", tuning.CacheSizeKB),
		"PRAGMA temp_store = MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, caseerrors.New(caseerrors.ErrCodeCaseDbOpenFailed, "failed to set pragma", err)
		}
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(tuning.CompressionLevel))
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, caseerrors.New(caseerrors.ErrCodeCaseDbOpenFailed, "failed to initialize compressor", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, caseerrors.New(caseerrors.ErrCodeCaseDbOpenFailed, "failed to initialize decompressor", err)
	}

	s := &Store{
		db:      db,
		path:    path,
		lock:    lock,
		tuning:  tuning,
		encoder: enc,
		decoder: dec,
	}

	if err := s.ensureColumnFamilies(cfNames); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

func cfTableName(cf string) string {
	return "cf_" + cf
}

func (s *Store) ensureColumnFamilies(cfNames []string) error {
	for _, cf := range cfNames {
		ddl := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				k BLOB PRIMARY KEY,
				v BLOB NOT NULL,
				compressed INTEGER NOT NULL DEFAULT 0
			)`, cfTableName(cf))
		if _, err := s.db.Exec(ddl); err != nil {
			return caseerrors.New(caseerrors.ErrCodeCaseDbOpenFailed,
				fmt.Sprintf("failed to create column family %q", cf), err)
		}
	}
	return nil
}

// maybeCompress compresses value if it is large enough to cross
// LargeValueBytes, returning the stored bytes and whether they are
// compressed.
func (s *Store) maybeCompress(value []byte) ([]byte, bool) {
	if len(value) < s.tuning.LargeValueBytes {
		return value, false
	}
	return s.encoder.EncodeAll(value, nil), true
}

func (s *Store) maybeDecompress(value []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return value, nil
	}
	return s.decoder.DecodeAll(value, nil)
}

// Get reads a single value. Returns found=false if the key is absent.
func (s *Store) Get(cf, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v []byte
	var compressed int
	row := s.db.QueryRow(fmt.Sprintf("SELECT v, compressed FROM %s WHERE k = ?", cfTableName(cf)), key)
	if err := row.Scan(&v, &compressed); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, caseerrors.New(caseerrors.ErrCodeStoreIO, "get failed", err)
	}

	out, err := s.maybeDecompress(v, compressed == 1)
	if err != nil {
		return nil, false, caseerrors.New(caseerrors.ErrCodeStoreIO, "decompression failed", err)
	}
	return out, true, nil
}

// Put writes a single key/value pair, overwriting any existing value.
func (s *Store) Put(cf, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(cf, key, value)
}

func (s *Store) putLocked(cf, key string, value []byte) error {
	stored, compressed := s.maybeCompress(value)
	compressedInt := 0
	if compressed {
		compressedInt = 1
	}
	_, err := s.db.Exec(
		fmt.Sprintf("INSERT INTO %s (k, v, compressed) VALUES (?, ?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v, compressed = excluded.compressed", cfTableName(cf)),
		key, stored, compressedInt)
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "put failed", err)
	}
	return nil
}

// Delete removes a single key. Deleting an absent key is not an error.
func (s *Store) Delete(cf, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(cf, key)
}

func (s *Store) deleteLocked(cf, key string) error {
	_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE k = ?", cfTableName(cf)), key)
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "delete failed", err)
	}
	return nil
}

// DeleteRange removes every key in [lo, hi) from cf. An empty hi means "to
// the end of the keyspace".
func (s *Store) DeleteRange(cf, lo, hi string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteRangeLocked(cf, lo, hi)
}

func (s *Store) deleteRangeLocked(cf, lo, hi string) error {
	var err error
	if hi == "" {
		_, err = s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE k >= ?", cfTableName(cf)), lo)
	} else {
		_, err = s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE k >= ? AND k < ?", cfTableName(cf)), lo, hi)
	}
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "delete_range failed", err)
	}
	return nil
}

// DeletePrefix removes every key with the given prefix from cf. Implemented
// as a DeleteRange over [prefix, prefix + 0xFF...) using the same
// lexicographic key ordering prefix_iter relies on.
func (s *Store) DeletePrefix(cf, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteRangeLocked(cf, prefix, prefixUpperBound(prefix))
}

func prefixUpperBound(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xFF {
			b[i]++
			return string(b[:i+1])
		}
	}
	return "" // all 0xFF bytes: no finite upper bound, scan to end
}

// PrefixIter returns every key/value pair whose key has the given prefix.
func (s *Store) PrefixIter(cf, prefix string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hi := prefixUpperBound(prefix)
	var rows *sql.Rows
	var err error
	if hi == "" {
		rows, err = s.db.Query(fmt.Sprintf("SELECT k, v, compressed FROM %s WHERE k >= ?", cfTableName(cf)), prefix)
	} else {
		rows, err = s.db.Query(fmt.Sprintf("SELECT k, v, compressed FROM %s WHERE k >= ? AND k < ?", cfTableName(cf)), prefix, hi)
	}
	if err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeStoreIO, "prefix_iter failed", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var k string
		var v []byte
		var compressed int
		if err := rows.Scan(&k, &v, &compressed); err != nil {
			return nil, caseerrors.New(caseerrors.ErrCodeStoreIO, "prefix_iter scan failed", err)
		}
		dec, err := s.maybeDecompress(v, compressed == 1)
		if err != nil {
			return nil, caseerrors.New(caseerrors.ErrCodeStoreIO, "decompression failed", err)
		}
		out[k] = dec
	}
	if err := rows.Err(); err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeStoreIO, "prefix_iter row iteration failed", err)
	}
	return out, nil
}

// Op is one operation within an atomic Batch.
type Op struct {
	CF    string
	Key   string
	Value []byte // nil marks a delete
}

// Batch applies every op atomically: either all writes land, or (on any
// error) none do.
func (s *Store) Batch(ops []Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to begin batch", err)
	}

	for _, op := range ops {
		if op.Value == nil {
			if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE k = ?", cfTableName(op.CF)), op.Key); err != nil {
				_ = tx.Rollback()
				return caseerrors.New(caseerrors.ErrCodeStoreIO, "batch delete failed", err)
			}
			continue
		}
		stored, compressed := s.maybeCompress(op.Value)
		compressedInt := 0
		if compressed {
			compressedInt = 1
		}
		if _, err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s (k, v, compressed) VALUES (?, ?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v, compressed = excluded.compressed", cfTableName(op.CF)),
			op.Key, stored, compressedInt); err != nil {
			_ = tx.Rollback()
			return caseerrors.New(caseerrors.ErrCodeStoreIO, "batch put failed", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to commit batch", err)
	}
	return nil
}

// CompactRange reclaims space for cf. SQLite has no per-table compaction
// primitive, so this runs VACUUM at the database level — expensive, and the
// caller (case handle / storage lifecycle) is expected to run it in the
// background per the <= BackgroundJobs budget in Tuning, never inline on a
// hot path.
func (s *Store) CompactRange(cf string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = cf // SQLite VACUUM operates database-wide; per-CF compaction is not addressable.
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "compact_range failed", err)
	}
	return nil
}

// Close releases the database handle and the on-disk lock file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if err := s.db.Close(); err != nil {
		firstErr = caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to close database", err)
	}
	if err := s.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to release lock", err)
	}
	_ = s.encoder.Close()
	return firstErr
}

// Path returns the underlying database file path.
func (s *Store) Path() string { return s.path }
