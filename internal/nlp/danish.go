package nlp

import (
	"regexp"
	"strings"
)

// Danish inflection suffixes, longest first so the most specific strip wins
// the front of the candidate list.
var inflectionSuffixes = []string{
	"erne", "ene", "ens", "ets", "ede", "est",
	"es", "en", "et", "er", "te", "st",
	"s", "t",
}

var tokenRe = regexp.MustCompile(`[A-Za-zÆØÅæøå]+|\d+|[^\sA-Za-zÆØÅæøå0-9]`)
var wordRe = regexp.MustCompile(`^[A-Za-zÆØÅæøå]+$`)

// SuffixAdapter is a lightweight Danish lemmatizer: it proposes candidates
// by stripping common inflection suffixes. Good enough to route regular
// noun/verb inflections to their lemma; anything smarter plugs in behind the
// same Adapter interface.
type SuffixAdapter struct {
	// MinStemLength guards against stripping a suffix that would leave an
	// implausibly short stem.
	MinStemLength int
}

func NewSuffixAdapter() *SuffixAdapter {
	return &SuffixAdapter{MinStemLength: 2}
}

func (a *SuffixAdapter) Tokenize(text string) []Token {
	raw := tokenRe.FindAllString(text, -1)
	out := make([]Token, 0, len(raw))
	for _, tok := range raw {
		out = append(out, Token{Surface: tok, IsPunct: !wordRe.MatchString(tok) && !isDigits(tok)})
	}
	return out
}

// LemmaCandidates returns every suffix-stripped stem of the token,
// deduplicated, most specific strip first.
func (a *SuffixAdapter) LemmaCandidates(token string) []string {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" || !wordRe.MatchString(normalized) {
		return nil
	}
	// The token itself is not a candidate: exact lemma matches are resolved
	// before the lemmatizer is consulted.
	var candidates []string
	seen := map[string]struct{}{normalized: {}}
	for _, suffix := range inflectionSuffixes {
		stem, ok := strings.CutSuffix(normalized, suffix)
		if !ok || len([]rune(stem)) < a.MinStemLength {
			continue
		}
		if _, dup := seen[stem]; dup {
			continue
		}
		seen[stem] = struct{}{}
		candidates = append(candidates, stem)
		// Danish doubles the final consonant before some endings
		// (klasser -> klas + se); restore the single-consonant stem too.
		r := []rune(stem)
		if len(r) >= 2 && r[len(r)-1] == r[len(r)-2] {
			single := string(r[:len(r)-1])
			if _, dup := seen[single]; !dup && len([]rune(single)) >= a.MinStemLength {
				seen[single] = struct{}{}
				candidates = append(candidates, single)
			}
		}
	}
	return candidates
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
