// Package classifier is the externally visible entry point: it resolves each
// token against the known-word store first (exact surface form, exact lemma,
// lemmatizer-assisted variation) and only falls back to the typo pipeline
// for tokens nothing else recognizes.
package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"stavekontrol/internal/nlp"
	"stavekontrol/internal/typo"
	"stavekontrol/pkg/symspell"
)

// Classification of a single token.
type Classification string

const (
	ClassKnown      Classification = "known"
	ClassVariation  Classification = "variation"
	ClassTypoLikely Classification = Classification(typo.StatusTypoLikely)
	ClassUncertain  Classification = Classification(typo.StatusUncertain)
	ClassNew        Classification = Classification(typo.StatusNew)
)

// MatchSource says which lookup produced a known/variation outcome.
type MatchSource string

const (
	MatchExact MatchSource = "exact"
	MatchLemma MatchSource = "lemma"
	MatchNone  MatchSource = "none"
)

// Reason tags owned by the classifier (the typo pipeline's tags pass
// through unchanged).
const (
	TagExactMatch = "exact_match"
	TagLemmaMatch = "lemma_match"
)

// Result is the externally observable outcome per token.
type Result struct {
	Surface            string            `json:"surface"`
	Normalized         string            `json:"normalized"`
	LemmaCandidate     string            `json:"lemma_candidate,omitempty"`
	Classification     Classification    `json:"classification"`
	MatchSource        MatchSource       `json:"match_source"`
	MatchedLemma       string            `json:"matched_lemma,omitempty"`
	MatchedSurfaceForm string            `json:"matched_surface_form,omitempty"`
	Suggestions        []typo.Suggestion `json:"suggestions,omitempty"`
	Confidence         float64           `json:"confidence"`
	ReasonTags         []string          `json:"reason_tags,omitempty"`
}

// Store is the known-word lookup slice of the knowledge store.
type Store interface {
	LookupSurfaceForm(ctx context.Context, form string) (lemma, matched string, ok bool, err error)
	LemmaExists(ctx context.Context, lemma string) (bool, error)
}

type Classifier struct {
	store   Store
	adapter nlp.Adapter
	engine  *typo.Engine
	cfg     typo.Config
	logger  *slog.Logger
}

func New(st Store, adapter nlp.Adapter, engine *typo.Engine, cfg typo.Config, logger *slog.Logger) *Classifier {
	if adapter == nil {
		adapter = nlp.NullAdapter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{store: st, adapter: adapter, engine: engine, cfg: cfg, logger: logger}
}

// Classify resolves one token. sentenceStart marks the first token of the
// text, which suppresses the proper-noun bias in gating.
func (c *Classifier) Classify(ctx context.Context, token string, sentenceStart bool) (Result, error) {
	normalized := typo.Normalize(token)
	if normalized == "" {
		return Result{
			Surface:        token,
			Classification: ClassNew,
			MatchSource:    MatchNone,
		}, nil
	}

	lemma, matchedForm, ok, err := c.store.LookupSurfaceForm(ctx, normalized)
	if err != nil {
		return Result{}, fmt.Errorf("surface form lookup: %w", err)
	}
	if ok {
		return Result{
			Surface:            token,
			Normalized:         normalized,
			LemmaCandidate:     lemma,
			Classification:     ClassKnown,
			MatchSource:        MatchExact,
			MatchedLemma:       lemma,
			MatchedSurfaceForm: matchedForm,
			Confidence:         1,
			ReasonTags:         []string{TagExactMatch},
		}, nil
	}

	// A lemma without an explicit surface-form row still counts as known.
	known, err := c.store.LemmaExists(ctx, normalized)
	if err != nil {
		return Result{}, fmt.Errorf("lemma lookup: %w", err)
	}
	if known {
		return Result{
			Surface:            token,
			Normalized:         normalized,
			LemmaCandidate:     normalized,
			Classification:     ClassKnown,
			MatchSource:        MatchExact,
			MatchedLemma:       normalized,
			MatchedSurfaceForm: normalized,
			Confidence:         1,
			ReasonTags:         []string{TagExactMatch},
		}, nil
	}

	candidates := c.adapter.LemmaCandidates(normalized)
	firstCandidate := ""
	if len(candidates) > 0 {
		firstCandidate = typo.Normalize(candidates[0])
	}

	if matched, err := c.bestKnownLemma(ctx, normalized, candidates); err != nil {
		return Result{}, err
	} else if matched != "" {
		return Result{
			Surface:        token,
			Normalized:     normalized,
			LemmaCandidate: firstCandidate,
			Classification: ClassVariation,
			MatchSource:    MatchLemma,
			MatchedLemma:   matched,
			Confidence:     1,
			ReasonTags:     []string{TagLemmaMatch},
		}, nil
	}

	pipeline := c.engine.ClassifyUnknown(ctx, token, sentenceStart)
	return Result{
		Surface:        token,
		Normalized:     pipeline.Normalized,
		LemmaCandidate: firstCandidate,
		Classification: Classification(pipeline.Status),
		MatchSource:    MatchNone,
		Suggestions:    pipeline.Suggestions,
		Confidence:     pipeline.Confidence,
		ReasonTags:     pipeline.ReasonTags,
	}, nil
}

// bestKnownLemma picks the store-member lemma candidate scoring highest
// under the ranker's rule against the normalized token.
func (c *Classifier) bestKnownLemma(ctx context.Context, normalized string, candidates []string) (string, error) {
	var members []typo.Candidate
	for _, cand := range candidates {
		lemma := typo.Normalize(cand)
		if lemma == "" {
			continue
		}
		known, err := c.store.LemmaExists(ctx, lemma)
		if err != nil {
			return "", fmt.Errorf("lemma candidate lookup: %w", err)
		}
		if !known {
			continue
		}
		members = append(members, typo.Candidate{
			Value:       lemma,
			Distance:    symspell.Distance(normalized, lemma),
			SourceFlags: []string{typo.SourceUserLexicon},
			Frequency:   0,
		})
	}
	if len(members) == 0 {
		return "", nil
	}
	known := make(map[string]struct{}, len(members))
	for _, m := range members {
		known[m.Value] = struct{}{}
	}
	ranked := typo.RankCandidates(c.cfg, normalized, members, known)
	return ranked[0].Value, nil
}

// ClassifyAll processes one note's tokens in order. Only the first token of
// the batch is sentence-initial for gating purposes; punctuation tokens pass
// through as "new" without store or pipeline work.
func (c *Classifier) ClassifyAll(ctx context.Context, tokens []nlp.Token) ([]Result, error) {
	results := make([]Result, 0, len(tokens))
	for i, tok := range tokens {
		if tok.IsPunct {
			results = append(results, Result{
				Surface:        tok.Surface,
				Normalized:     typo.Normalize(tok.Surface),
				Classification: ClassNew,
				MatchSource:    MatchNone,
			})
			continue
		}
		res, err := c.Classify(ctx, tok.Surface, i == 0)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// ClassifyText tokenizes with the configured adapter and classifies the
// resulting tokens in batch.
func (c *Classifier) ClassifyText(ctx context.Context, text string) ([]Result, error) {
	return c.ClassifyAll(ctx, c.adapter.Tokenize(text))
}
