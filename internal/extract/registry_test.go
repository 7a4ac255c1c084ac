package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/provenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DispatchesToRegisteredExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "complaint.txt")
	require.NoError(t, os.WriteFile(path, []byte("the parties stipulate to the following facts"), 0o644))

	r := NewRegistry()
	pages, method, err := r.ExtractPages(casehandle.DocTypeText, path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, provenance.ExtractionNative, method)
}

func TestRegistry_UnregisteredTypeErrors(t *testing.T) {
	r := &Registry{byType: make(map[casehandle.DocumentType]PageExtractor)}
	_, _, err := r.ExtractPages(casehandle.DocTypePDF, "irrelevant.pdf")
	assert.Error(t, err)
}
