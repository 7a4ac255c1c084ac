package casehandle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/kv"
	"github.com/legalcase/caseintel/internal/lexical"
)

// legacyBleveDirName is the on-disk directory name a pre-migration case may
// hold its Bleve-backed lexical index under, beside case.db. This is
// distinct from the native lexical index's "bm25_index" column family name,
// which lives inside case.db itself.
const legacyBleveDirName = "bleve_index"

// legacyBleveContentField is the stored field name the teacher's BleveBM25Index
// indexed chunk text under.
const legacyBleveContentField = "content"

// migrateLegacyBleveIndex drains a case's Bleve-backed lexical index, if
// present, into the native BM25 posting-list encoding lexical.AddChunk
// builds, resolving spec.md's lexical-backend migration Open Question. If
// native term:* postings already exist alongside a Bleve directory,
// migration refuses to guess which is authoritative and returns
// MigrationRequired rather than silently picking one; the directory is left
// untouched for the operator to resolve by hand. On success the Bleve
// directory is renamed to "<name>.migrated" rather than deleted, so a
// botched migration can be diagnosed after the fact.
func migrateLegacyBleveIndex(store *kv.Store, dir string) error {
	bleveDir := filepath.Join(dir, legacyBleveDirName)
	info, err := os.Stat(bleveDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	existing, err := store.PrefixIter("bm25_index", "term:")
	if err != nil {
		return fmt.Errorf("scanning native lexical index: %w", err)
	}
	if len(existing) > 0 {
		return caseerrors.MigrationRequired("")
	}

	idx, err := bleve.Open(bleveDir)
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeCaseDbOpenFailed, "failed to open legacy bleve index", err)
	}
	defer func() { _ = idx.Close() }()

	docCount, err := idx.DocCount()
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to read legacy bleve doc count", err)
	}
	if docCount == 0 {
		return os.Rename(bleveDir, bleveDir+".migrated")
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(docCount)
	req.Fields = []string{legacyBleveContentField}

	result, err := idx.Search(req)
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to read legacy bleve documents", err)
	}

	for _, hit := range result.Hits {
		content, _ := hit.Fields[legacyBleveContentField].(string)
		if content == "" {
			continue
		}
		if err := lexical.AddChunk(store, hit.ID, content); err != nil {
			return fmt.Errorf("reindexing chunk %s from legacy bleve index: %w", hit.ID, err)
		}
	}

	return os.Rename(bleveDir, bleveDir+".migrated")
}
