package kv

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "case.db"), []string{"documents", "chunks", "embeddings"}, DefaultTuning())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_CreatesColumnFamilies(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("documents", "doc:1", []byte("hello")))
	v, ok, err := s.Get("documents", "doc:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), v)
}

func TestGet_MissingKeyReturnsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Get("documents", "doc:missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPut_OverwritesExistingValue(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("documents", "doc:1", []byte("v1")))
	require.NoError(t, s.Put("documents", "doc:1", []byte("v2")))
	v, ok, err := s.Get("documents", "doc:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), v)
}

func TestDelete_RemovesKey(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("documents", "doc:1", []byte("v1")))
	require.NoError(t, s.Delete("documents", "doc:1"))
	_, ok, err := s.Get("documents", "doc:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete_AbsentKeyIsNotError(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Delete("documents", "doc:nonexistent"))
}

func TestPrefixIter_ReturnsOnlyMatchingKeys(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("chunks", "doc_chunks:doc1:000000", []byte("a")))
	require.NoError(t, s.Put("chunks", "doc_chunks:doc1:000001", []byte("b")))
	require.NoError(t, s.Put("chunks", "doc_chunks:doc2:000000", []byte("c")))

	got, err := s.PrefixIter("chunks", "doc_chunks:doc1:")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []byte("a"), got["doc_chunks:doc1:000000"])
	assert.Equal(t, []byte("b"), got["doc_chunks:doc1:000001"])
}

func TestPrefixIter_EmptyWhenNoMatch(t *testing.T) {
	s := openTestStore(t)
	got, err := s.PrefixIter("chunks", "doc_chunks:nope:")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteRange_RemovesBoundedKeys(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("chunks", "chunk:0001", []byte("a")))
	require.NoError(t, s.Put("chunks", "chunk:0002", []byte("b")))
	require.NoError(t, s.Put("chunks", "chunk:0003", []byte("c")))

	require.NoError(t, s.DeleteRange("chunks", "chunk:0001", "chunk:0003"))

	_, ok1, _ := s.Get("chunks", "chunk:0001")
	_, ok2, _ := s.Get("chunks", "chunk:0002")
	v3, ok3, _ := s.Get("chunks", "chunk:0003")
	assert.False(t, ok1)
	assert.False(t, ok2)
	assert.True(t, ok3)
	assert.Equal(t, []byte("c"), v3)
}

func TestDeletePrefix_RemovesOnlyMatching(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("chunks", "doc_chunks:doc1:000000", []byte("a")))
	require.NoError(t, s.Put("chunks", "doc_chunks:doc2:000000", []byte("b")))

	require.NoError(t, s.DeletePrefix("chunks", "doc_chunks:doc1:"))

	_, ok1, _ := s.Get("chunks", "doc_chunks:doc1:000000")
	_, ok2, _ := s.Get("chunks", "doc_chunks:doc2:000000")
	assert.False(t, ok1)
	assert.True(t, ok2)
}

func TestBatch_AppliesAllOpsAtomically(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("documents", "doc:1", []byte("old")))

	err := s.Batch([]Op{
		{CF: "documents", Key: "doc:1", Value: nil}, // delete
		{CF: "documents", Key: "doc:2", Value: []byte("new")},
	})
	require.NoError(t, err)

	_, ok1, _ := s.Get("documents", "doc:1")
	v2, ok2, _ := s.Get("documents", "doc:2")
	assert.False(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, []byte("new"), v2)
}

func TestLargeValue_RoundTripsThroughCompression(t *testing.T) {
	s := openTestStore(t)
	large := []byte(strings.Repeat("legal-text-chunk-body ", 2000)) // well over LargeValueBytes
	require.NoError(t, s.Put("chunks", "chunk:big", large))

	got, ok, err := s.Get("chunks", "chunk:big")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, large, got)
}

func TestSmallValue_StoredUncompressed(t *testing.T) {
	s := openTestStore(t)
	small := []byte("tiny")
	require.NoError(t, s.Put("documents", "doc:tiny", small))

	got, ok, err := s.Get("documents", "doc:tiny")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, small, got)
}

func TestOpen_SecondOpenOnSamePathFailsWhileFirstHoldsLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.db")

	s1, err := Open(path, []string{"documents"}, DefaultTuning())
	require.NoError(t, err)
	defer s1.Close()

	_, err = Open(path, []string{"documents"}, DefaultTuning())
	require.Error(t, err)
}

func TestCompactRange_DoesNotError(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("documents", "doc:1", []byte("v")))
	require.NoError(t, s.CompactRange("documents"))
}

func TestPrefixUpperBound_AllFFBytesHasNoBound(t *testing.T) {
	assert.Equal(t, "", prefixUpperBound(string([]byte{0xFF, 0xFF})))
}

func TestPrefixUpperBound_IncrementsLastByte(t *testing.T) {
	assert.Equal(t, "b", prefixUpperBound("a"))
}
