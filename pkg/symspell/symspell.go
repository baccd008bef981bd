// Package symspell implements a symmetric-delete fuzzy index: every indexed
// term is stored under all delete-variants of its prefix, so a bounded
// edit-distance lookup only has to probe the delete-variants of the query.
package symspell

import (
	"sort"
	"sync"
)

// Suggestion is one indexed term within the requested edit distance.
type Suggestion struct {
	Term     string
	Distance int
	Count    int
}

type Index struct {
	opts IndexOptions

	mu      sync.RWMutex
	words   map[string]int
	deletes map[string][]string
}

func NewIndex(opts ...Option) *Index {
	o := DefaultOptions
	for _, opt := range opts {
		opt.Apply(&o)
	}
	return &Index{
		opts:    o,
		words:   make(map[string]int, o.InitialCapacity),
		deletes: make(map[string][]string),
	}
}

// Add indexes term with the given count. Re-adding keeps the higher count.
func (ix *Index) Add(term string, count int) {
	if term == "" || count < ix.opts.CountThreshold {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if prev, ok := ix.words[term]; ok {
		if count > prev {
			ix.words[term] = count
		}
		return
	}
	ix.words[term] = count
	for del := range ix.deleteVariants(term) {
		ix.deletes[del] = append(ix.deletes[del], term)
	}
}

// Contains reports exact membership of term.
func (ix *Index) Contains(term string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.words[term]
	return ok
}

// Len returns the number of indexed terms.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.words)
}

// Lookup returns all indexed terms within maxDistance of term, ordered by
// (distance asc, count desc, term asc). Candidate originals gathered from the
// delete map are verified with the exact edit distance, so hash collisions in
// the variant map cannot produce false positives.
func (ix *Index) Lookup(term string, maxDistance int) []Suggestion {
	if term == "" {
		return nil
	}
	if maxDistance > ix.opts.MaxDictionaryEditDistance {
		maxDistance = ix.opts.MaxDictionaryEditDistance
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []Suggestion
	consider := func(cand string) {
		if _, dup := seen[cand]; dup {
			return
		}
		seen[cand] = struct{}{}
		d := Distance(term, cand)
		if d <= maxDistance {
			out = append(out, Suggestion{Term: cand, Distance: d, Count: ix.words[cand]})
		}
	}

	if _, ok := ix.words[term]; ok {
		consider(term)
	}
	for del := range ix.deleteVariantsWithDistance(term, maxDistance) {
		for _, cand := range ix.deletes[del] {
			consider(cand)
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

func (ix *Index) deleteVariants(term string) map[string]struct{} {
	return ix.deleteVariantsWithDistance(term, ix.opts.MaxDictionaryEditDistance)
}

// deleteVariantsWithDistance generates every string reachable from the prefix
// of term by up to maxDistance single-rune deletions, including the prefix
// itself.
func (ix *Index) deleteVariantsWithDistance(term string, maxDistance int) map[string]struct{} {
	runes := []rune(term)
	if len(runes) > ix.opts.PrefixLength {
		runes = runes[:ix.opts.PrefixLength]
	}
	variants := map[string]struct{}{string(runes): {}}
	frontier := []string{string(runes)}
	for depth := 0; depth < maxDistance; depth++ {
		var next []string
		for _, v := range frontier {
			r := []rune(v)
			if len(r) <= 1 {
				continue
			}
			for i := range r {
				del := string(r[:i]) + string(r[i+1:])
				if _, ok := variants[del]; !ok {
					variants[del] = struct{}{}
					next = append(next, del)
				}
			}
		}
		frontier = next
	}
	return variants
}

// Distance is the optimal-string-alignment edit distance: unit-cost inserts,
// deletes and substitutions plus adjacent transpositions.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			x := prev[j] + 1
			if y := curr[j-1] + 1; y < x {
				x = y
			}
			if z := prev[j-1] + cost; z < x {
				x = z
			}
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := prev2[j-2] + 1; t < x {
					x = t
				}
			}
			curr[j] = x
		}
		copy(prev2, prev)
		copy(prev, curr)
	}
	return prev[lb]
}
