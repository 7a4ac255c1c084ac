// Package retrieval implements the four-stage hybrid search pipeline from
// spec.md §4.I: lexical recall, dense+sparse RRF fusion, optional MaxSim
// late-interaction rerank, and neighbor-context attachment.
package retrieval

import "github.com/legalcase/caseintel/internal/provenance"

// SearchResult is one ranked hit returned to a caller.
type SearchResult struct {
	Text          string
	Score         float64
	Provenance    provenance.Provenance
	ContextBefore string // empty if this is the document's first chunk
	ContextAfter  string // empty if this is the document's last chunk
}

// Filter narrows the candidate set. Case scope always applies (a Handle is
// already scoped to one case); DocumentIDs further restricts to a subset of
// that case's documents when non-empty.
type Filter struct {
	DocumentIDs []string
}

func (f Filter) allows(docID string) bool {
	if len(f.DocumentIDs) == 0 {
		return true
	}
	for _, id := range f.DocumentIDs {
		if id == docID {
			return true
		}
	}
	return false
}
