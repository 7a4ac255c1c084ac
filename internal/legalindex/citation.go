package legalindex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// citationPattern pairs a CitationType with the regexp that recognizes it;
// parseFields maps each type's submatch groups to ParsedFields.
type citationPattern struct {
	typ  *regexp.Regexp
	kind CitationType
}

// citationPatterns recognizes the citation styles spec.md §4.J names:
// case law reporter citations, federal/state statutes, regulations,
// procedural rules, and constitutional provisions. Each is matched
// independently over the chunk text, mirroring the teacher's
// find-every-pattern-then-dedup approach to citation extraction.
var citationPatterns = []citationPattern{
	{kind: CitationCaseLaw, typ: regexp.MustCompile(
		`([A-Z][A-Za-z.&'\-]+(?:\s+[A-Z][A-Za-z.&'\-]+)*)\s+v\.?\s+([A-Z][A-Za-z.&'\-]+(?:\s+[A-Z][A-Za-z.&'\-]+)*),\s*(\d+)\s+([A-Z][A-Za-z.0-9]*\.?(?:\s?\d[a-z]*)?)\s+(\d+)(?:,\s*\d+)?\s*\(([A-Za-z.0-9 ]+?)\s+(\d{4})\)`)},
	{kind: CitationStatute, typ: regexp.MustCompile(
		`(\d+)\s+U\.?\s?S\.?\s?C\.?\s*§{0,2}\s*(\d+[a-zA-Z0-9\-]*)`)},
	{kind: CitationRegulation, typ: regexp.MustCompile(
		`(\d+)\s+C\.?\s?F\.?\s?R\.?\s*§{0,2}\s*(\d+(?:\.\d+)*[a-zA-Z0-9\-]*)`)},
	{kind: CitationRule, typ: regexp.MustCompile(
		`(Fed\.?\s*R\.?\s*(?:Civ|Crim|Evid|App)\.?\s*P\.?)\s*(\d+[a-zA-Z0-9()]*)`)},
	{kind: CitationConstitution, typ: regexp.MustCompile(
		`U\.?\s?S\.?\s?Const\.?\s*(amend\.?|art\.?)\s*([IVXLCM0-9]+)`)},
}

// treatmentSignals maps a verb phrase immediately preceding a citation to
// the treatment it implies — a deliberately small, literal vocabulary
// rather than an attempt at general sentiment analysis.
var treatmentSignals = []struct {
	phrase    string
	treatment TreatmentTag
}{
	{"following", TreatmentFollows},
	{"distinguishing", TreatmentDistinguishes},
	{"overruling", TreatmentOverrules},
	{"questioning", TreatmentQuestions},
	{"explaining", TreatmentExplains},
}

// ExtractCitations finds every recognized citation in chunkID's text,
// returning the normalized LegalCitation records (deduplicated by
// canonical form across the whole chunk) and one CitationMention per
// occurrence, per spec.md §4.J.
func ExtractCitations(chunkID, text string) ([]*LegalCitation, []*CitationMention) {
	seenCanonical := map[string]*LegalCitation{}
	var mentions []*CitationMention

	for _, p := range citationPatterns {
		for _, loc := range p.typ.FindAllStringSubmatchIndex(text, -1) {
			groups := make([]string, len(loc)/2)
			for i := range groups {
				if loc[2*i] < 0 {
					continue
				}
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}

			fields := parseFields(p.kind, groups)
			canonical := normalizeCitation(p.kind, fields)
			if canonical == "" {
				continue
			}

			if _, ok := seenCanonical[canonical]; !ok {
				seenCanonical[canonical] = &LegalCitation{Canonical: canonical, Type: p.kind, Fields: fields}
			}

			start, end := loc[0], loc[1]
			mentions = append(mentions, &CitationMention{
				CitationCanonical: canonical,
				ChunkID:           chunkID,
				CharStart:         int64(start),
				CharEnd:           int64(end),
				Treatment:         inferTreatment(text, start),
				Context:           contextWindow(text, start, end),
			})
		}
	}

	citations := make([]*LegalCitation, 0, len(seenCanonical))
	for _, c := range seenCanonical {
		citations = append(citations, c)
	}
	return citations, mentions
}

func parseFields(kind CitationType, g []string) ParsedFields {
	var f ParsedFields
	switch kind {
	case CitationCaseLaw:
		if len(g) > 6 {
			f.Parties = []string{strings.TrimSpace(g[1]), strings.TrimSpace(g[2])}
			f.Volume, _ = strconv.Atoi(g[3])
			f.Reporter = normalizeReporter(g[4])
			f.Page, _ = strconv.Atoi(g[5])
			f.Court = strings.TrimSpace(g[6])
			f.Year, _ = strconv.Atoi(g[7])
		}
	case CitationStatute, CitationRegulation:
		if len(g) > 2 {
			f.Volume, _ = strconv.Atoi(g[1])
			f.Pinpoint = g[2]
		}
	case CitationRule:
		if len(g) > 2 {
			f.Pinpoint = strings.TrimSpace(g[1]) + " " + strings.TrimSpace(g[2])
		}
	case CitationConstitution:
		if len(g) > 2 {
			f.Pinpoint = strings.TrimSpace(g[1]) + " " + strings.TrimSpace(g[2])
		}
	}
	return f
}

func normalizeReporter(raw string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(raw, ".", "")), ".")
}

// normalizeCitation builds the case-wide-unique canonical key a LegalCitation
// is stored and deduplicated under.
func normalizeCitation(kind CitationType, f ParsedFields) string {
	switch kind {
	case CitationCaseLaw:
		if len(f.Parties) < 2 || f.Volume == 0 || f.Page == 0 {
			return ""
		}
		return fmt.Sprintf("%s-v-%s-%d-%s-%d", slug(f.Parties[0]), slug(f.Parties[1]), f.Volume, strings.ToLower(f.Reporter), f.Page)
	case CitationStatute:
		if f.Volume == 0 || f.Pinpoint == "" {
			return ""
		}
		return fmt.Sprintf("%d-usc-%s", f.Volume, f.Pinpoint)
	case CitationRegulation:
		if f.Volume == 0 || f.Pinpoint == "" {
			return ""
		}
		return fmt.Sprintf("%d-cfr-%s", f.Volume, f.Pinpoint)
	case CitationRule, CitationConstitution:
		if f.Pinpoint == "" {
			return ""
		}
		return slug(string(kind) + "-" + f.Pinpoint)
	default:
		return ""
	}
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '.', r == '\'', r == '&':
			return '-'
		default:
			return -1
		}
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

func inferTreatment(text string, citationStart int) TreatmentTag {
	windowStart := citationStart - 40
	if windowStart < 0 {
		windowStart = 0
	}
	preceding := strings.ToLower(text[windowStart:citationStart])
	for _, sig := range treatmentSignals {
		if strings.Contains(preceding, sig.phrase) {
			return sig.treatment
		}
	}
	return TreatmentCites
}

func contextWindow(text string, start, end int) string {
	lo := start - 60
	if lo < 0 {
		lo = 0
	}
	hi := end + 60
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}
