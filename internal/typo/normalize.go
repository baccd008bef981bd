// Package typo implements the unknown-token resolution pipeline: a surface
// token is normalized, gated, searched against the hybrid dictionary/lexicon
// index, ranked with Danish-aware edit costs and resolved into a calibrated
// typo status.
package typo

import (
	"regexp"
	"sort"
	"strings"
)

// Word characters for edge trimming: ASCII \w plus the Danish vowels.
var edgePunctRe = regexp.MustCompile(`^[^\wæøåÆØÅ]+|[^\wæøåÆØÅ]+$`)

// Danish digraph spellings and the letters they stand in for.
var digraphPairs = [3][2]string{
	{"ae", "æ"},
	{"oe", "ø"},
	{"aa", "å"},
}

// ComparisonForms carries the canonical form of a token plus its
// diacritic-alternate spellings used for dictionary and index lookups.
type ComparisonForms struct {
	Normalized string
	Alternates []string
}

// Normalize lowercases, collapses internal whitespace, canonicalizes
// apostrophes and strips leading/trailing non-word punctuation until stable.
// The result is a fixed point: Normalize(Normalize(x)) == Normalize(x).
func Normalize(token string) string {
	cleaned := strings.Join(strings.Fields(strings.ToLower(token)), " ")
	cleaned = strings.NewReplacer("’", "'", "`", "'").Replace(cleaned)
	for {
		updated := edgePunctRe.ReplaceAllString(cleaned, "")
		if updated == cleaned {
			break
		}
		cleaned = updated
	}
	return cleaned
}

// Forms normalizes token and derives its alternate spellings: for each of the
// three digraph pairs, the form with one side substituted for the other
// wherever it occurs. An empty normalized form yields no alternates.
func Forms(token string) ComparisonForms {
	normalized := Normalize(token)
	if normalized == "" {
		return ComparisonForms{Normalized: ""}
	}
	alternates := map[string]struct{}{normalized: {}}
	for _, pair := range digraphPairs {
		digraph, letter := pair[0], pair[1]
		if strings.Contains(normalized, digraph) {
			alternates[strings.ReplaceAll(normalized, digraph, letter)] = struct{}{}
		}
		if strings.Contains(normalized, letter) {
			alternates[strings.ReplaceAll(normalized, letter, digraph)] = struct{}{}
		}
	}
	out := make([]string, 0, len(alternates))
	for form := range alternates {
		if form != "" {
			out = append(out, form)
		}
	}
	sort.Strings(out)
	return ComparisonForms{Normalized: normalized, Alternates: out}
}
