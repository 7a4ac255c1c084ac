package ingest

import (
	"strings"
	"testing"

	"github.com/legalcase/caseintel/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunkCfg() config.ChunkingConfig {
	return config.ChunkingConfig{TargetChars: 200, OverlapChars: 20, MinChars: 50, MaxChars: 300}
}

func TestChunk_ShortTextReturnsSingleSpan(t *testing.T) {
	spans := Chunk("a short paragraph of legal text", testChunkCfg())
	require.Len(t, spans, 1)
	assert.Equal(t, "a short paragraph of legal text", spans[0].Text)
}

func TestChunk_EmptyTextReturnsNoSpans(t *testing.T) {
	assert.Empty(t, Chunk("", testChunkCfg()))
	assert.Empty(t, Chunk("   ", testChunkCfg()))
}

func TestChunk_LongTextSplitsAtClauseBoundaries(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 20; i++ {
		b.WriteString("1.")
		b.WriteString(strings.Repeat("x", 0))
		b.WriteString("1 This is clause number filler text that goes on to pad out the length of each numbered paragraph substantially.\n")
	}
	text := b.String()
	spans := Chunk(text, testChunkCfg())
	require.True(t, len(spans) > 1)
	for _, s := range spans {
		assert.LessOrEqual(t, len(s.Text), testChunkCfg().MaxChars+1)
	}
}

func TestChunk_SpansCoverWholeTextWithOverlap(t *testing.T) {
	text := strings.Repeat("word ", 200)
	spans := Chunk(text, testChunkCfg())
	require.True(t, len(spans) > 1)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len(text), spans[len(spans)-1].End)
}

func TestDetectBoundaries_RecognizesQandA(t *testing.T) {
	text := "Q. Where were you on the night in question?\nA. I was at home.\n"
	boundaries := detectBoundaries(text)
	assert.NotEmpty(t, boundaries)
}
