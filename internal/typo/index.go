package typo

import (
	"bufio"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"stavekontrol/pkg/symspell"
)

// User-lexicon entries outrank every static dictionary entry of equal
// distance; plain word lists default to a low static weight.
const (
	userLexemeFrequency = 1000
	staticFrequency     = 10
)

// fuzzySearcher is the bounded-distance search capability. The accelerated
// index and the brute-force scan must return identical result sets for the
// same inputs; only the cost differs.
type fuzzySearcher interface {
	Add(term string, count int)
	Lookup(term string, maxDistance int) []symspell.Suggestion
}

// bruteForce is the fallback searcher: a linear scan verified with the same
// edit distance the accelerated index uses.
type bruteForce struct {
	mu    sync.RWMutex
	terms map[string]int
}

func newBruteForce() *bruteForce {
	return &bruteForce{terms: make(map[string]int)}
}

func (b *bruteForce) Add(term string, count int) {
	if term == "" {
		return
	}
	b.mu.Lock()
	if prev, ok := b.terms[term]; !ok || count > prev {
		b.terms[term] = count
	}
	b.mu.Unlock()
}

func (b *bruteForce) Lookup(term string, maxDistance int) []symspell.Suggestion {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []symspell.Suggestion
	for word, count := range b.terms {
		if d := symspell.Distance(term, word); d <= maxDistance {
			out = append(out, symspell.Suggestion{Term: word, Distance: d, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// CandidateIndex is the fuzzy-searchable vocabulary: static word lists plus
// a read-derived copy of the user lexicon. Large lists are membership-only.
type CandidateIndex struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.RWMutex
	general    map[string]float64 // suggestible dictionary words with weights
	membership []*membershipDict
	userWords  map[string]struct{}
	fuzzy      fuzzySearcher
	wordCount  int // dictionary entries across all sources
}

// NewCandidateIndex loads the configured dictionaries and seeds the fuzzy
// structure with the given user lemmas. Malformed or missing dictionary
// files degrade the vocabulary, they do not fail construction.
func NewCandidateIndex(cfg Config, logger *slog.Logger, userLemmas []string) *CandidateIndex {
	if logger == nil {
		logger = slog.Default()
	}
	ix := &CandidateIndex{
		cfg:       cfg,
		logger:    logger,
		general:   make(map[string]float64),
		userWords: make(map[string]struct{}),
	}
	for _, path := range cfg.DictionaryPaths {
		if err := ix.loadDictionary(path); err != nil {
			logger.Warn("skipping dictionary source", "path", path, "error", err)
		}
	}
	ix.fuzzy = ix.buildFuzzy(userLemmas)
	for _, lemma := range userLemmas {
		if normalized := Normalize(lemma); normalized != "" {
			ix.userWords[normalized] = struct{}{}
		}
	}
	return ix
}

func (ix *CandidateIndex) loadDictionary(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() >= ix.cfg.MembershipOnlyBytes {
		d, err := openMembershipDict(path)
		if err != nil {
			return err
		}
		ix.membership = append(ix.membership, d)
		ix.wordCount += d.count
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		word := strings.ToLower(fields[0])
		freq := float64(staticFrequency)
		if len(fields) > 1 {
			if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
				freq = v
			}
		}
		if _, seen := ix.general[word]; !seen {
			ix.wordCount++
		}
		if freq > ix.general[word] {
			ix.general[word] = freq
		}
	}
	return s.Err()
}

func (ix *CandidateIndex) buildFuzzy(userLemmas []string) fuzzySearcher {
	var fz fuzzySearcher
	if ix.cfg.UseFuzzyIndex {
		fz = symspell.NewIndex(
			symspell.WithMaxDictionaryEditDistance(ix.cfg.MaxEditDistance),
			symspell.WithPrefixLength(ix.cfg.PrefixLength),
		)
	} else {
		fz = newBruteForce()
	}
	for word, freq := range ix.general {
		fz.Add(word, int(freq))
	}
	for _, lemma := range userLemmas {
		if normalized := Normalize(lemma); normalized != "" {
			fz.Add(normalized, userLexemeFrequency)
		}
	}
	return fz
}

// IsKnownDictionaryWord is exact membership in the static word lists only.
func (ix *CandidateIndex) IsKnownDictionaryWord(token string) bool {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" {
		return false
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if _, ok := ix.general[normalized]; ok {
		return true
	}
	for _, d := range ix.membership {
		if d.Contains(normalized) {
			return true
		}
	}
	return false
}

// IsValidWord is membership in the dictionaries or the user lexicon.
func (ix *CandidateIndex) IsValidWord(token string) bool {
	if ix.IsKnownDictionaryWord(token) {
		return true
	}
	normalized := strings.ToLower(strings.TrimSpace(token))
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.userWords[normalized]
	return ok
}

// IsUserLexeme reports membership in the read-derived user lexicon copy.
func (ix *CandidateIndex) IsUserLexeme(token string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.userWords[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// VocabularySize counts dictionary entries across every loaded source.
func (ix *CandidateIndex) VocabularySize() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.wordCount
}

// KnownLemmas returns a snapshot of the user lexicon copy.
func (ix *CandidateIndex) KnownLemmas() map[string]struct{} {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make(map[string]struct{}, len(ix.userWords))
	for w := range ix.userWords {
		out[w] = struct{}{}
	}
	return out
}

// Suggest searches the fuzzy structure for every alternate form of the
// query, keeps the best occurrence of each value and truncates to
// maxCandidates ordered by (distance asc, frequency desc, value asc).
func (ix *CandidateIndex) Suggest(forms ComparisonForms, maxCandidates, maxDistance int) []Candidate {
	ix.mu.RLock()
	fz := ix.fuzzy
	ix.mu.RUnlock()

	merged := make(map[string]Candidate)
	for _, form := range forms.Alternates {
		for _, sugg := range fz.Lookup(form, maxDistance) {
			prev, ok := merged[sugg.Term]
			if ok && prev.Distance <= sugg.Distance {
				continue
			}
			merged[sugg.Term] = Candidate{
				Value:       sugg.Term,
				Distance:    sugg.Distance,
				SourceFlags: ix.sourceFlags(sugg.Term),
				Frequency:   float64(sugg.Count),
			}
		}
	}
	out := make([]Candidate, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

func (ix *CandidateIndex) sourceFlags(term string) []string {
	var flags []string
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if _, ok := ix.userWords[term]; ok {
		flags = append(flags, SourceUserLexicon)
	}
	if _, ok := ix.general[term]; ok {
		flags = append(flags, SourceDictionary)
	}
	return flags
}

// AddUserLexeme inserts a freshly learned lemma into the live fuzzy
// structure with a weight above any static entry.
func (ix *CandidateIndex) AddUserLexeme(lemma string) {
	normalized := Normalize(lemma)
	if normalized == "" {
		return
	}
	ix.mu.Lock()
	ix.userWords[normalized] = struct{}{}
	fz := ix.fuzzy
	ix.mu.Unlock()
	fz.Add(normalized, userLexemeFrequency)
}

// RefreshUserLexicon rebuilds the fuzzy structure from the current lexicon
// contents; called after bulk changes.
func (ix *CandidateIndex) RefreshUserLexicon(lemmas []string) {
	fz := ix.buildFuzzy(lemmas)
	words := make(map[string]struct{}, len(lemmas))
	for _, lemma := range lemmas {
		if normalized := Normalize(lemma); normalized != "" {
			words[normalized] = struct{}{}
		}
	}
	ix.mu.Lock()
	ix.fuzzy = fz
	ix.userWords = words
	ix.mu.Unlock()
}

// Close releases memory-mapped dictionary sources.
func (ix *CandidateIndex) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	var first error
	for _, d := range ix.membership {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
	}
	ix.membership = nil
	return first
}
