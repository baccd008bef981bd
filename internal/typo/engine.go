package typo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Ignore scopes.
const (
	ScopeSession = "session"
	ScopeGlobal  = "global"
)

// Suggestion is one correction offered to the caller.
type Suggestion struct {
	Value       string   `json:"value"`
	Score       float64  `json:"score"`
	SourceFlags []string `json:"source_flags"`
}

// Result is the typo pipeline's externally observable outcome for a token.
type Result struct {
	Status      Status       `json:"status"`
	Normalized  string       `json:"normalized"`
	Suggestions []Suggestion `json:"suggestions"`
	Confidence  float64      `json:"confidence"`
	ReasonTags  []string     `json:"reason_tags"`
	LatencyMS   float64      `json:"latency_ms"`
}

// IgnoredToken suppresses typo evaluation of a normalized form until expiry.
type IgnoredToken struct {
	Token     string
	Scope     string
	ExpiresAt *time.Time
}

// Feedback is an append-only record of how the user reacted to a prediction.
type Feedback struct {
	RawToken         string
	PredictedStatus  string
	SuggestionsShown []string
	UserAction       string
	ChosenValue      string
}

// TokenEvent is the per-decision log row used for offline analysis.
type TokenEvent struct {
	RawToken      string
	Normalized    string
	Status        string
	TopSuggestion string
	Confidence    float64
	LatencyMS     float64
}

// Store is the slice of the knowledge store the engine depends on.
type Store interface {
	UserLemmas(ctx context.Context) ([]string, error)
	InsertLemma(ctx context.Context, lemma, source string) error
	IgnoredTokens(ctx context.Context) ([]IgnoredToken, error)
	InsertIgnoredToken(ctx context.Context, token IgnoredToken) error
	InsertFeedback(ctx context.Context, fb Feedback) error
	InsertTokenEvent(ctx context.Context, ev TokenEvent) error
}

// UserWordMirror is an optional shared word set (e.g. Redis) that keeps
// learned lemmas visible across engine instances.
type UserWordMirror interface {
	Add(ctx context.Context, word string) error
	All(ctx context.Context) ([]string, error)
}

// Engine owns the mutable pipeline state: the candidate index, the decision
// cache and the in-memory ignored-token set.
type Engine struct {
	cfg    Config
	store  Store
	index  *CandidateIndex
	cache  *resultCache
	mirror UserWordMirror
	logger *slog.Logger

	// mutationMu serializes lexicon mutation with the cache clear so a
	// reader never sees a refreshed index paired with a stale cache.
	mutationMu sync.Mutex

	ignoredMu sync.RWMutex
	ignored   map[string]IgnoredToken
}

// NewEngine builds an engine instance around the given store. mirror may be
// nil. Construction reads the lexicon and ignore list once; later mutations
// go through the engine's own entry points.
func NewEngine(ctx context.Context, cfg Config, st Store, logger *slog.Logger, mirror UserWordMirror) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	lemmas, err := st.UserLemmas(ctx)
	if err != nil {
		return nil, fmt.Errorf("load user lexicon: %w", err)
	}
	if mirror != nil {
		shared, err := mirror.All(ctx)
		if err != nil {
			logger.Warn("user-word mirror unavailable", "error", err)
		} else {
			lemmas = append(lemmas, shared...)
		}
	}
	ignored, err := st.IgnoredTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ignored tokens: %w", err)
	}
	e := &Engine{
		cfg:     cfg,
		store:   st,
		index:   NewCandidateIndex(cfg, logger, lemmas),
		cache:   newResultCache(cfg.CacheSize),
		mirror:  mirror,
		logger:  logger,
		ignored: make(map[string]IgnoredToken, len(ignored)),
	}
	for _, tok := range ignored {
		e.ignored[tok.Token] = tok
	}
	return e, nil
}

// Index exposes the candidate index for exact-membership checks by callers
// composing their own flow around the pipeline.
func (e *Engine) Index() *CandidateIndex { return e.index }

// ClassifyUnknown runs the full pipeline for one token that the surrounding
// classifier failed to resolve against the known-word store.
func (e *Engine) ClassifyUnknown(ctx context.Context, token string, sentenceStart bool) Result {
	started := time.Now()
	forms := Forms(token)

	gate := ShouldRunTypoCheck(token, forms.Normalized, e.cfg.MinTokenLength, sentenceStart)
	if !gate.ShouldRun {
		return e.finish(ctx, token, Result{
			Status:     StatusNew,
			Normalized: forms.Normalized,
			ReasonTags: gate.ReasonTags,
		}, started)
	}

	if e.isIgnored(forms.Normalized) {
		return e.finish(ctx, token, Result{
			Status:     StatusNew,
			Normalized: forms.Normalized,
			ReasonTags: []string{TagSkipIgnored},
		}, started)
	}

	cacheKey := cacheKeyFor(forms.Normalized, sentenceStart)
	if cached, ok := e.cache.Get(cacheKey); ok {
		return cached
	}

	inDictionary := e.anyDictionaryHit(forms)
	if inDictionary {
		result := e.finish(ctx, token, Result{
			Status:     StatusNew,
			Normalized: forms.Normalized,
			ReasonTags: appendTags(gate.ReasonTags, TagSkipDictionaryExact),
		}, started)
		e.cache.Set(cacheKey, result)
		return result
	}

	maxDistance := e.cfg.maxDistanceForLength(len([]rune(forms.Normalized)), e.index.VocabularySize())
	candidates := e.index.Suggest(forms, e.cfg.MaxCandidates, maxDistance)
	ranked := RankCandidates(e.cfg, forms.Normalized, candidates, e.index.KnownLemmas())
	decision := DecideStatus(e.cfg, ranked, gate.ProperNounBias)

	status, overrideTags := ApplyDictionaryOverride(decision.Status, inDictionary)

	suggestions := make([]Suggestion, 0, 3)
	for _, rc := range ranked {
		if len(suggestions) == 3 {
			break
		}
		suggestions = append(suggestions, Suggestion{
			Value:       rc.Value,
			Score:       rc.Score,
			SourceFlags: rc.SourceFlags,
		})
	}

	tags := appendTags(gate.ReasonTags, decision.ReasonTags...)
	tags = appendTags(tags, overrideTags...)
	result := e.finish(ctx, token, Result{
		Status:      status,
		Normalized:  forms.Normalized,
		Suggestions: suggestions,
		Confidence:  decision.Confidence,
		ReasonTags:  tags,
	}, started)
	e.cache.Set(cacheKey, result)
	return result
}

// ApplyDictionaryOverride is the post-decision membership rule: an exact
// dictionary word can never stay "uncertain", and an out-of-dictionary,
// out-of-lexicon token that failed the confidence bar is still treated as a
// probable misspelling rather than silently accepted as new vocabulary.
func ApplyDictionaryOverride(status Status, inDictionary bool) (Status, []string) {
	if inDictionary {
		if status == StatusUncertain {
			return StatusNew, []string{TagUncertainResolvedDict}
		}
		return status, nil
	}
	if status == StatusNew || status == StatusUncertain {
		return StatusTypoLikely, []string{TagDictionaryMissForced}
	}
	return status, nil
}

// LearnWord persists a lemma and makes it immediately visible to subsequent
// classifications: store insert, index update, mirror publish, cache clear.
func (e *Engine) LearnWord(ctx context.Context, lemma string) error {
	normalized := Normalize(lemma)
	if normalized == "" {
		return fmt.Errorf("empty lemma")
	}
	if err := e.store.InsertLemma(ctx, normalized, "user"); err != nil {
		return fmt.Errorf("insert lemma: %w", err)
	}
	e.mutationMu.Lock()
	e.index.AddUserLexeme(normalized)
	e.cache.Clear()
	e.mutationMu.Unlock()
	if e.mirror != nil {
		if err := e.mirror.Add(ctx, normalized); err != nil {
			e.logger.Warn("user-word mirror publish failed", "lemma", normalized, "error", err)
		}
	}
	return nil
}

// RefreshUserLexicon rebuilds the index's lexicon copy after bulk changes.
func (e *Engine) RefreshUserLexicon(ctx context.Context) error {
	lemmas, err := e.store.UserLemmas(ctx)
	if err != nil {
		return fmt.Errorf("load user lexicon: %w", err)
	}
	if e.mirror != nil {
		if shared, err := e.mirror.All(ctx); err == nil {
			lemmas = append(lemmas, shared...)
		}
	}
	e.mutationMu.Lock()
	e.index.RefreshUserLexicon(lemmas)
	e.cache.Clear()
	e.mutationMu.Unlock()
	return nil
}

// IgnoreToken suppresses typo evaluation of the token's normalized form,
// effective immediately.
func (e *Engine) IgnoreToken(ctx context.Context, token, scope string, expiresAt *time.Time) error {
	normalized := Normalize(token)
	if normalized == "" {
		return fmt.Errorf("empty token")
	}
	if scope != ScopeSession && scope != ScopeGlobal {
		return fmt.Errorf("unknown ignore scope %q", scope)
	}
	entry := IgnoredToken{Token: normalized, Scope: scope, ExpiresAt: expiresAt}
	if err := e.store.InsertIgnoredToken(ctx, entry); err != nil {
		return fmt.Errorf("insert ignored token: %w", err)
	}
	e.ignoredMu.Lock()
	e.ignored[normalized] = entry
	e.ignoredMu.Unlock()
	e.cache.Clear()
	return nil
}

// RecordFeedback appends a feedback row; it has no effect on future
// classification.
func (e *Engine) RecordFeedback(ctx context.Context, fb Feedback) error {
	if err := e.store.InsertFeedback(ctx, fb); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// InvalidateCache drops every memoized decision.
func (e *Engine) InvalidateCache() {
	e.cache.Clear()
}

// Close releases index resources.
func (e *Engine) Close() error {
	return e.index.Close()
}

func (e *Engine) isIgnored(normalized string) bool {
	e.ignoredMu.RLock()
	entry, ok := e.ignored[normalized]
	e.ignoredMu.RUnlock()
	if !ok {
		return false
	}
	if entry.ExpiresAt != nil && !entry.ExpiresAt.After(time.Now()) {
		e.ignoredMu.Lock()
		delete(e.ignored, normalized)
		e.ignoredMu.Unlock()
		return false
	}
	return true
}

func (e *Engine) anyDictionaryHit(forms ComparisonForms) bool {
	for _, form := range forms.Alternates {
		if e.index.IsKnownDictionaryWord(form) {
			return true
		}
	}
	return false
}

// finish stamps the latency and logs the terminal decision. Event logging is
// fire-and-forget: a store failure is reported, never surfaced.
func (e *Engine) finish(ctx context.Context, token string, result Result, started time.Time) Result {
	result.LatencyMS = float64(time.Since(started)) / float64(time.Millisecond)
	top := ""
	if len(result.Suggestions) > 0 {
		top = result.Suggestions[0].Value
	}
	if err := e.store.InsertTokenEvent(ctx, TokenEvent{
		RawToken:      token,
		Normalized:    result.Normalized,
		Status:        string(result.Status),
		TopSuggestion: top,
		Confidence:    result.Confidence,
		LatencyMS:     result.LatencyMS,
	}); err != nil {
		e.logger.Warn("token event log failed", "token", result.Normalized, "error", err)
	}
	return result
}

func cacheKeyFor(normalized string, sentenceStart bool) string {
	if sentenceStart {
		return normalized + "|1"
	}
	return normalized + "|0"
}

// appendTags is an ordered-set append: the first occurrence of a tag wins.
func appendTags(tags []string, more ...string) []string {
	out := append([]string(nil), tags...)
	for _, tag := range more {
		if !hasFlag(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
