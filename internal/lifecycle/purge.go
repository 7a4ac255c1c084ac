package lifecycle

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/registry"
	"github.com/legalcase/caseintel/internal/schema"
)

// manifest is the `.ctcase` export's manifest.json, per spec.md §6.
type manifest struct {
	SchemaVersion int      `json:"schema_version"`
	CaseID        string   `json:"case_id"`
	Embedders     []string `json:"embedders"`
	Counts        counts   `json:"counts"`
}

type counts struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Entities  int `json:"entities"`
	Citations int `json:"citations"`
}

// compactor is the subset of *casehandle.Handle purge needs.
type compactor interface {
	CompactAll() error
}

// PurgeArchived requires caseID's status already be Archived, compacts its
// store, streams its directory into a ZIP at outputPath with a manifest
// recording schema version/case id/embedder set, verifies the ZIP by
// re-reading that manifest and counting entries, deletes the expanded
// directory, then transitions the case to Purged with export_path set, per
// spec.md §4.L.
func PurgeArchived(reg registryUpdater, h compactor, caseDir, outputPath string, c *registry.Case, embedders []string) (*registry.Case, error) {
	if c.Status != registry.StatusArchived {
		return nil, caseerrors.New(caseerrors.ErrCodeInvalidStatusTransition,
			"case must be Archived before it can be purged", nil)
	}

	if err := h.CompactAll(); err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeStoreIO, "compacting before purge", err)
	}

	m := manifest{
		SchemaVersion: schema.CurrentSchemaVersion,
		CaseID:        c.ID,
		Embedders:     embedders,
		Counts: counts{
			Documents: c.Stats.DocumentCount,
			Chunks:    c.Stats.ChunkCount,
			Entities:  c.Stats.EntityCount,
			Citations: c.Stats.CitationCount,
		},
	}

	entryCount, err := writeZip(caseDir, outputPath, m)
	if err != nil {
		return nil, err
	}

	if err := verifyZip(outputPath, entryCount); err != nil {
		return nil, err
	}

	if err := os.RemoveAll(caseDir); err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeStoreIO, "removing expanded case directory after purge", err)
	}

	return reg.Update(c.ID, func(c *registry.Case) {
		c.Status = registry.StatusPurged
		c.ExportPath = outputPath
	})
}

// writeZip streams caseDir's files plus a manifest.json entry into a ZIP at
// outputPath, returning the number of entries written.
func writeZip(caseDir, outputPath string, m manifest) (int, error) {
	out, err := os.Create(outputPath)
	if err != nil {
		return 0, caseerrors.New(caseerrors.ErrCodeStoreIO, "creating export archive", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	count := 0
	err = filepath.Walk(caseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(caseDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(rel)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(w, f); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		_ = zw.Close()
		return 0, caseerrors.New(caseerrors.ErrCodeStoreIO, "writing export archive", err)
	}

	mw, err := zw.Create("manifest.json")
	if err != nil {
		_ = zw.Close()
		return 0, caseerrors.New(caseerrors.ErrCodeStoreIO, "writing export manifest", err)
	}
	if err := json.NewEncoder(mw).Encode(m); err != nil {
		_ = zw.Close()
		return 0, caseerrors.New(caseerrors.ErrCodeStoreIO, "encoding export manifest", err)
	}
	count++

	if err := zw.Close(); err != nil {
		return 0, caseerrors.New(caseerrors.ErrCodeStoreIO, "finalizing export archive", err)
	}
	return count, nil
}

// verifyZip re-opens outputPath, confirms manifest.json is present and
// decodable, and that the archive holds wantEntries entries, per spec.md
// §4.L's "verify the ZIP by re-reading the manifest and file count".
func verifyZip(outputPath string, wantEntries int) error {
	zr, err := zip.OpenReader(outputPath)
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "reopening export archive for verification", err)
	}
	defer zr.Close()

	if len(zr.File) != wantEntries {
		return caseerrors.New(caseerrors.ErrCodeInvariantViolation,
			"export archive entry count mismatch after write", nil)
	}

	var found *zip.File
	for _, f := range zr.File {
		if f.Name == "manifest.json" {
			found = f
			break
		}
	}
	if found == nil {
		return caseerrors.New(caseerrors.ErrCodeInvariantViolation,
			"export archive missing manifest.json", nil)
	}
	rc, err := found.Open()
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "opening manifest entry for verification", err)
	}
	defer rc.Close()

	var m manifest
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		return caseerrors.New(caseerrors.ErrCodeInvariantViolation, "export manifest is not valid JSON", err)
	}
	return nil
}
