package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// RotatingWriter implements io.Writer with size-based rotation, so a case
// with years of ingestion/search activity never grows one unbounded log file.
//
// One engine process holds many cases open at once (unlike a single
// project-scoped daemon), so the rotating sink also keeps a running count of
// log bytes attributed to each case_id attribute (added to every record via
// ForCase) since the current file's last rotation. CaseActivity returns these
// counts; no tool or CLI command reports them.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu            sync.Mutex
	file          *os.File
	written       int64
	immediateSync bool // fsync after each write so `tail -f` sees activity live
	caseActivity  map[string]int64
}

// NewRotatingWriter creates a new rotating log writer.
// maxSizeMB is the maximum size in megabytes before rotation.
// maxFiles is the maximum number of rotated files to keep.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:          path,
		maxSize:       int64(maxSizeMB) * 1024 * 1024,
		maxFiles:      maxFiles,
		immediateSync: true,
		caseActivity:  make(map[string]int64),
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if err := w.openFile(); err != nil {
		return nil, err
	}

	return w, nil
}

// SetImmediateSync enables or disables fsync after each write.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.immediateSync = enabled
}

// Write implements io.Writer with automatic rotation.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	n, err = w.file.Write(p)
	w.written += int64(n)

	if caseID, ok := extractCaseID(p); ok {
		w.caseActivity[caseID] += int64(n)
	}

	if w.immediateSync && err == nil {
		_ = w.file.Sync()
	}

	return
}

// CaseActivity returns a snapshot of log bytes written per case_id attribute
// since the current file's last rotation. Lines with no case_id attribute
// (startup/shutdown/registry-level logging) are not attributed to any case.
func (w *RotatingWriter) CaseActivity() map[string]int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string]int64, len(w.caseActivity))
	for id, n := range w.caseActivity {
		out[id] = n
	}
	return out
}

// extractCaseID pulls a case_id attribute's value out of one formatted log
// line, supporting both slog.JSONHandler's `"case_id":"<id>"` and
// slog.TextHandler's `case_id=<id>` (or `case_id="<id with spaces>"`) output.
func extractCaseID(line []byte) (string, bool) {
	if idx := bytes.Index(line, []byte(`"case_id":"`)); idx >= 0 {
		rest := line[idx+len(`"case_id":"`):]
		if end := bytes.IndexByte(rest, '"'); end >= 0 {
			return string(rest[:end]), true
		}
	}
	if idx := bytes.Index(line, []byte("case_id=")); idx >= 0 {
		rest := line[idx+len("case_id="):]
		if len(rest) > 0 && rest[0] == '"' {
			rest = rest[1:]
			if end := bytes.IndexByte(rest, '"'); end >= 0 {
				return string(rest[:end]), true
			}
			return "", false
		}
		end := bytes.IndexAny(rest, " \n")
		if end < 0 {
			end = len(rest)
		}
		if end == 0 {
			return "", false
		}
		return string(rest[:end]), true
	}
	return "", false
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

func (w *RotatingWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = f
	w.written = info.Size()
	return nil
}

// rotate performs log rotation: engine.log -> engine.log.1 -> ... -> delete oldest.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)
	pattern := base + ".*"

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return fmt.Errorf("failed to find rotated files: %w", err)
	}

	type rotatedFile struct {
		path string
		num  int
	}
	var files []rotatedFile
	for _, m := range matches {
		suffix := strings.TrimPrefix(filepath.Base(m), base+".")
		num, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		files = append(files, rotatedFile{path: m, num: num})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].num > files[j].num
	})

	for _, f := range files {
		if f.num >= w.maxFiles {
			_ = os.Remove(f.path)
		}
	}

	for _, f := range files {
		if f.num < w.maxFiles {
			newPath := fmt.Sprintf("%s.%d", w.path, f.num+1)
			_ = os.Rename(f.path, newPath)
		}
	}

	if _, err := os.Stat(w.path); err == nil {
		newPath := w.path + ".1"
		if err := os.Rename(w.path, newPath); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	w.written = 0
	w.caseActivity = make(map[string]int64)
	return w.openFile()
}
