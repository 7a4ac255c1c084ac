package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	"github.com/legalcase/caseintel/internal/ingest"
)

// Action classifies what sync decided to do with one file.
type Action string

const (
	ActionIngest  Action = "ingest"  // no matching document existed
	ActionSkip    Action = "skip"    // hash matches the existing document
	ActionReindex Action = "reindex" // hash differs; delete and re-ingest
	ActionDelete  Action = "delete"  // document's source file no longer exists
	ActionWarn    Action = "warn"    // source file missing, auto_remove_deleted is off
)

// PlanEntry is one decided or executed action in a sync run.
type PlanEntry struct {
	Path   string
	DocID  string // populated for reindex/delete/warn
	Action Action
	Err    error // set if Action was attempted and failed (dry_run never sets this)
}

// Result summarizes one sync() call.
type Result struct {
	Plan   []PlanEntry
	DryRun bool
}

// Extractor turns a file on disk into an ingest.Request. internal/extract
// supplies the concrete implementation; watch only depends on the
// function type so it never needs to know about document formats.
type Extractor func(path string) (ingest.Request, error)

// Sync reconciles w.Folder against h's ingested documents per spec.md
// §4.K: new files are ingested, unchanged files are skipped, changed
// files are reindexed (delete then re-ingest), and documents whose
// source file vanished are deleted (or merely flagged) according to
// w.AutoRemoveDeleted. When dryRun is true, Sync computes and returns the
// full plan without executing any of it.
func Sync(ctx context.Context, h *casehandle.Handle, engine embed.Engine, chunkCfg config.ChunkingConfig, w *Watch, extract Extractor, dryRun bool) (*Result, error) {
	files, err := walkFolder(w.Folder, w.Recursive, w.ExtensionFilter)
	if err != nil {
		return nil, err
	}

	docs, err := h.ListDocuments()
	if err != nil {
		return nil, err
	}
	byPath := make(map[string]*casehandle.Document, len(docs))
	for _, d := range docs {
		if d.SourceFile != "" && underFolder(d.SourceFile, w.Folder) {
			byPath[filepath.Clean(d.SourceFile)] = d
		}
	}

	result := &Result{DryRun: dryRun}

	seen := make(map[string]bool, len(files))
	for _, path := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		clean := filepath.Clean(path)
		seen[clean] = true

		req, err := extract(path)
		if err != nil {
			result.Plan = append(result.Plan, PlanEntry{Path: path, Err: err})
			continue
		}
		hash := ingest.ContentHash(req.RawBytes)

		existing, matched := byPath[clean]
		switch {
		case !matched:
			entry := PlanEntry{Path: path, Action: ActionIngest}
			if !dryRun {
				req.SourceFile = path
				if _, err := ingest.IngestDocument(ctx, h, engine, chunkCfg, req); err != nil {
					entry.Err = err
				}
			}
			result.Plan = append(result.Plan, entry)
		case existing.ContentHash == hash:
			result.Plan = append(result.Plan, PlanEntry{Path: path, DocID: existing.ID, Action: ActionSkip})
		default:
			entry := PlanEntry{Path: path, DocID: existing.ID, Action: ActionReindex}
			if !dryRun {
				req.SourceFile = path
				if err := h.DeleteDocument(existing.ID); err != nil {
					entry.Err = err
				} else if _, err := ingest.IngestDocument(ctx, h, engine, chunkCfg, req); err != nil {
					entry.Err = err
				}
			}
			result.Plan = append(result.Plan, entry)
		}
	}

	for path, d := range byPath {
		if seen[path] {
			continue
		}
		if w.AutoRemoveDeleted {
			entry := PlanEntry{Path: path, DocID: d.ID, Action: ActionDelete}
			if !dryRun {
				if err := h.DeleteDocument(d.ID); err != nil {
					entry.Err = err
				}
			}
			result.Plan = append(result.Plan, entry)
		} else {
			result.Plan = append(result.Plan, PlanEntry{Path: path, DocID: d.ID, Action: ActionWarn})
		}
	}

	return result, nil
}

// walkFolder lists every regular file under folder (recursive respected),
// filtered by extension when exts is non-empty.
func walkFolder(folder string, recursive bool, exts []string) ([]string, error) {
	var out []string
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != folder {
				return filepath.SkipDir
			}
			return nil
		}
		if len(exts) > 0 {
			ok := false
			ext := strings.ToLower(filepath.Ext(path))
			for _, e := range exts {
				if strings.ToLower(e) == ext {
					ok = true
					break
				}
			}
			if !ok {
				return nil
			}
		}
		out = append(out, path)
		return nil
	}
	if err := filepath.WalkDir(folder, walkFn); err != nil {
		return nil, err
	}
	return out, nil
}

// underFolder reports whether path lies under folder.
func underFolder(path, folder string) bool {
	rel, err := filepath.Rel(filepath.Clean(folder), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
