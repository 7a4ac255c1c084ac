package lexical

import (
	"regexp"
	"strings"
	"unicode"
)

// stopwords is the small functional-word list stripped before indexing and
// querying, matching the scope of a typical BM25 implementation (articles,
// conjunctions, common prepositions/auxiliaries) without being aggressive
// enough to drop legally meaningful short words like "not".
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "to": true, "was": true, "were": true,
	"will": true, "with": true, "this": true, "these": true, "those": true,
}

// dottedAbbreviations maps the literal, period-separated legal abbreviation
// as it appears in source text to its single normalized token. Because the
// general tokenizer splits on any non-alphanumeric rune (so "U.S.C." would
// otherwise fall apart into the three single-letter tokens "u"/"s"/"c"),
// these are collapsed by a dedicated regexp pass before the main scan runs.
var dottedAbbreviations = map[string]string{
	"u.s.c.":           "usc",
	"c.f.r.":           "cfr",
	"fed. r. civ. p.":  "frcp",
	"fed.r.civ.p.":     "frcp",
	"fed. r. crim. p.": "frcrp",
	"fed. r. app. p.":  "frap",
	"fed. r. evid.":    "fre",
	"f.r.e.":           "fre",
	"s. ct.":           "sct",
	"s.ct.":            "sct",
	"f. supp.":         "fsupp",
	"f. supp. 2d":      "fsupp",
	"f. supp. 3d":      "fsupp",
	"f.2d":             "f",
	"f.3d":             "f",
}

// abbrevPattern matches runs of single-letter-plus-period tokens (with
// optional spaces) — e.g. "U.S.C." or "Fed. R. Civ. P." — so they can be
// looked up in dottedAbbreviations regardless of exact casing/spacing.
var abbrevPattern = regexp.MustCompile(`(?i)\b(?:[a-z]{1,4}\.\s?){1,5}`)

func foldDottedAbbreviations(text string) string {
	return abbrevPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := strings.ToLower(strings.Join(strings.Fields(match), " "))
		if expanded, ok := dottedAbbreviations[key]; ok {
			return " " + expanded + " "
		}
		// try again without inner spaces, e.g. "u.s.c." vs "u. s. c."
		tight := strings.ReplaceAll(key, " ", "")
		if expanded, ok := dottedAbbreviations[tight]; ok {
			return " " + expanded + " "
		}
		return match
	})
}

// Tokenize lower-cases text, folds recognized dotted legal abbreviations,
// splits on non-alphanumeric runes, and strips stopwords. Grounded on the
// rune-scanning tokenizer shape used for query-term splitting in the
// teacher's search package, adapted here to also strip stopwords and fold
// abbreviations since those are specific to this engine's BM25 index.
func Tokenize(text string) []string {
	text = foldDottedAbbreviations(text)

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		tok := current.String()
		current.Reset()
		if !stopwords[tok] {
			tokens = append(tokens, tok)
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}
