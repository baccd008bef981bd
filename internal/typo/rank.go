package typo

import (
	"math"
	"sort"

	"github.com/hbollon/go-edlib"
)

// Candidate source flags.
const (
	SourceUserLexicon = "user_lexicon"
	SourceDictionary  = "dictionary"
)

// Candidate is a raw suggestion from the index, prior to scoring.
type Candidate struct {
	Value       string
	Distance    int
	SourceFlags []string
	Frequency   float64
}

// RankedCandidate adds the blended score and its explainable parts.
type RankedCandidate struct {
	Candidate
	Score           float64
	PriorScore      float64
	ErrorLikelihood float64
}

// Letter pairs a Danish writer plausibly confuses, with substitution costs
// below the unit cost. Symmetric.
var confusablePairs = map[[2]rune]float64{
	{'a', 'å'}: 0.35, {'å', 'a'}: 0.35,
	{'o', 'ø'}: 0.35, {'ø', 'o'}: 0.35,
	{'e', 'æ'}: 0.45, {'æ', 'e'}: 0.45,
}

func substitutionCost(a, b rune) float64 {
	if a == b {
		return 0
	}
	if v, ok := confusablePairs[[2]rune{a, b}]; ok {
		return v
	}
	return 1.0
}

// WeightedEditCost is a Damerau-Levenshtein dynamic program with cheap
// adjacent transpositions and reduced costs for confusable Danish letters.
// Inserts and deletes cost 1.
func WeightedEditCost(a, b string, transposeCost float64) float64 {
	if a == b {
		return 0
	}
	if isOneAdjacentSwap(a, b) {
		return transposeCost
	}
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return float64(lb)
	}
	if lb == 0 {
		return float64(la)
	}
	prev2 := make([]float64, lb+1)
	prev := make([]float64, lb+1)
	curr := make([]float64, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = float64(j)
	}
	for i := 1; i <= la; i++ {
		curr[0] = float64(i)
		for j := 1; j <= lb; j++ {
			best := math.Min(prev[j]+1, curr[j-1]+1)
			best = math.Min(best, prev[j-1]+substitutionCost(ra[i-1], rb[j-1]))
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				best = math.Min(best, prev2[j-2]+transposeCost)
			}
			curr[j] = best
		}
		copy(prev2, prev)
		copy(prev, curr)
	}
	return prev[lb]
}

// isOneAdjacentSwap reports whether b is exactly a with one pair of adjacent
// runes transposed.
func isOneAdjacentSwap(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) || len(ra) < 2 {
		return false
	}
	diff := -1
	for i := range ra {
		if ra[i] != rb[i] {
			diff = i
			break
		}
	}
	if diff == -1 || diff+1 >= len(ra) {
		return false
	}
	if ra[diff] != rb[diff+1] || ra[diff+1] != rb[diff] {
		return false
	}
	for j := diff + 2; j < len(ra); j++ {
		if ra[j] != rb[j] {
			return false
		}
	}
	return true
}

// similarity is a normalized longest-common-subsequence ratio in [0,1].
func similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}
	lcs := edlib.LCS(a, b)
	return 2 * float64(lcs) / float64(la+lb)
}

// RankCandidates scores raw candidates against query. The ordering is total:
// score descending, then distance ascending, then value ascending, so
// repeated calls over the same inputs yield the same order.
func RankCandidates(cfg Config, query string, candidates []Candidate, knownLemmas map[string]struct{}) []RankedCandidate {
	queryLen := len([]rune(query))
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, cand := range candidates {
		maxLen := float64(maxInt(queryLen, len([]rune(cand.Value)), 1))
		distanceScore := math.Max(0, 1-float64(cand.Distance)/maxLen)
		sim := similarity(query, cand.Value)
		prior := clamp01(math.Log1p(cand.Frequency) / math.Log1p(cfg.PriorCap))
		errLikelihood := math.Exp(-WeightedEditCost(query, cand.Value, cfg.TransposeCost) / maxLen)

		total := cfg.DistanceWeight*distanceScore +
			cfg.SimilarityWeight*sim +
			cfg.ErrorWeight*errLikelihood +
			cfg.PriorWeight*prior
		if hasFlag(cand.SourceFlags, SourceUserLexicon) {
			total += cfg.SourceBoost
		}
		if _, ok := knownLemmas[cand.Value]; ok {
			total += cfg.LemmaFamilyBoost
		}

		ranked = append(ranked, RankedCandidate{
			Candidate:       cand,
			Score:           clamp01(total),
			PriorScore:      prior,
			ErrorLikelihood: errLikelihood,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		return ranked[i].Value < ranked[j].Value
	})
	return ranked
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func maxInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
