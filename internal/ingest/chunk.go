// Package ingest implements the ingestion pipeline: content hashing,
// document-type detection, legal-aware chunking, and the atomic write of a
// document's chunks, entities, citations, and BM25 postings, per
// spec.md §4.F.
package ingest

import (
	"regexp"
	"strings"

	"github.com/legalcase/caseintel/internal/config"
)

// clausePattern matches hierarchical numbered clauses ("1.1", "4.2.3") at
// the start of a line, the most common paragraph-numbering convention in
// complaints, motions, and contracts.
var clausePattern = regexp.MustCompile(`^(\d+(?:\.\d+)+)\s`)

// headingPattern matches an ALL-CAPS heading line or an "ARTICLE"/"SECTION"
// label, the convention for top-level divisions in pleadings and contracts.
var headingPattern = regexp.MustCompile(`^(?:ARTICLE|SECTION)\s+[IVXLCDM0-9]+\b|^[A-Z][A-Z0-9 ,.'\-]{4,}$`)

// qaPattern matches a deposition/transcript question-or-answer line start.
var qaPattern = regexp.MustCompile(`^(?:Q|A|THE WITNESS|THE COURT|MR\.|MS\.)[.:]\s`)

// boundary is a byte offset into text where a new logical unit begins: a
// clause number, a heading, or a Q&A turn. Chunk prefers to end a chunk at a
// boundary; when none qualifies it splits hard at MaxChars, and each chunk
// after the first starts OverlapChars before the previous chunk's end, so a
// chunk can begin or end inside a clause, heading, or speaker turn.
type boundary struct {
	offset int
}

// detectBoundaries scans text line by line and returns every offset where a
// new clause, heading, or Q&A turn begins, mirroring the line-scan-and-
// classify structure of the legal chunker this is grounded on.
func detectBoundaries(text string) []boundary {
	lines := strings.SplitAfter(text, "\n")
	var boundaries []boundary
	offset := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && (clausePattern.MatchString(trimmed) || headingPattern.MatchString(trimmed) || qaPattern.MatchString(trimmed)) {
			boundaries = append(boundaries, boundary{offset: offset})
		}
		offset += len(line)
	}
	return boundaries
}

// Span is one chunk's byte range within the document's full text.
type Span struct {
	Start int
	End   int
	Text  string
}

// Chunk splits text into Spans sized toward cfg.TargetChars (never above
// MaxChars, never below MinChars except for a final trailing remainder),
// splitting only at detected clause/heading/Q&A boundaries when one falls
// near the target size, and falling back to a hard split only when a
// single logical unit alone exceeds MaxChars.
func Chunk(text string, cfg config.ChunkingConfig) []Span {
	if len(text) <= cfg.MaxChars {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []Span{{Start: 0, End: len(text), Text: text}}
	}

	boundaries := detectBoundaries(text)
	var spans []Span
	start := 0

	for start < len(text) {
		target := start + cfg.TargetChars
		limit := start + cfg.MaxChars
		if limit > len(text) {
			limit = len(text)
		}
		if len(text)-start <= cfg.MaxChars {
			spans = append(spans, makeSpan(text, start, len(text)))
			break
		}

		end := bestBoundaryNear(boundaries, start, target, limit, cfg.MinChars)
		if end <= start {
			end = limit
		}
		spans = append(spans, makeSpan(text, start, end))

		next := end - cfg.OverlapChars
		if next <= start {
			next = end
		}
		start = next
	}

	return spans
}

func makeSpan(text string, start, end int) Span {
	return Span{Start: start, End: end, Text: text[start:end]}
}

// bestBoundaryNear picks the boundary offset closest to target that still
// lies within [start+minChars, limit]; if none qualifies, returns -1 so the
// caller falls back to a hard split at limit.
func bestBoundaryNear(boundaries []boundary, start, target, limit, minChars int) int {
	best := -1
	bestDist := -1
	for _, b := range boundaries {
		if b.offset <= start+minChars || b.offset > limit {
			continue
		}
		dist := b.offset - target
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best = b.offset
			bestDist = dist
		}
	}
	return best
}
