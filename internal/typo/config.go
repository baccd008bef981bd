package typo

import "fmt"

// Config collects every tunable of the pipeline. Zero values are invalid;
// construct from DefaultConfig and override named fields.
type Config struct {
	// Gating
	MinTokenLength int `yaml:"min_token_length"`

	// Candidate search
	DictionaryPaths     []string `yaml:"dictionary_paths"`
	MembershipOnlyBytes int64    `yaml:"membership_only_bytes"` // larger files are exact-membership only
	MaxCandidates       int      `yaml:"max_candidates"`
	MaxEditDistance     int      `yaml:"max_edit_distance"`
	PrefixLength        int      `yaml:"prefix_length"`
	LargeVocabularySize int      `yaml:"large_vocabulary_size"` // at or above, fuzzy search drops to distance 1
	UseFuzzyIndex       bool     `yaml:"use_fuzzy_index"`       // false selects the brute-force scan

	// Ranking weights
	DistanceWeight   float64 `yaml:"distance_weight"`
	SimilarityWeight float64 `yaml:"similarity_weight"`
	ErrorWeight      float64 `yaml:"error_weight"`
	PriorWeight      float64 `yaml:"prior_weight"`
	SourceBoost      float64 `yaml:"source_boost"`
	LemmaFamilyBoost float64 `yaml:"lemma_family_boost"`
	PriorCap         float64 `yaml:"prior_cap"`
	TransposeCost    float64 `yaml:"transpose_cost"`

	// Decision
	TypoThreshold      float64 `yaml:"typo_threshold"`
	UncertainThreshold float64 `yaml:"uncertain_threshold"`
	MinMargin          float64 `yaml:"min_margin"`
	SoftmaxTemperature float64 `yaml:"softmax_temperature"`

	// Cache
	CacheSize int `yaml:"cache_size"`
}

// DefaultConfig returns the documented defaults for Danish learner text.
func DefaultConfig() Config {
	return Config{
		MinTokenLength:      3,
		MembershipOnlyBytes: 5_000_000,
		MaxCandidates:       20,
		MaxEditDistance:     2,
		PrefixLength:        7,
		LargeVocabularySize: 500_000,
		UseFuzzyIndex:       true,
		DistanceWeight:      0.28,
		SimilarityWeight:    0.22,
		ErrorWeight:         0.20,
		PriorWeight:         0.10,
		SourceBoost:         0.15,
		LemmaFamilyBoost:    0.10,
		PriorCap:            200,
		TransposeCost:       0.6,
		TypoThreshold:       0.78,
		UncertainThreshold:  0.50,
		MinMargin:           0.08,
		SoftmaxTemperature:  0.35,
		CacheSize:           4096,
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.MinTokenLength < 1 {
		return fmt.Errorf("min_token_length must be >= 1, got %d", c.MinTokenLength)
	}
	if c.MaxEditDistance < 1 || c.MaxEditDistance > 2 {
		return fmt.Errorf("max_edit_distance must be 1 or 2, got %d", c.MaxEditDistance)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max_candidates must be >= 1, got %d", c.MaxCandidates)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be >= 1, got %d", c.CacheSize)
	}
	if c.SoftmaxTemperature <= 0 {
		return fmt.Errorf("softmax_temperature must be > 0, got %g", c.SoftmaxTemperature)
	}
	if c.TypoThreshold < c.UncertainThreshold {
		return fmt.Errorf("typo_threshold %g below uncertain_threshold %g", c.TypoThreshold, c.UncertainThreshold)
	}
	for _, v := range []float64{c.TypoThreshold, c.UncertainThreshold, c.MinMargin} {
		if v < 0 || v > 1 {
			return fmt.Errorf("thresholds must be within [0,1], got %g", v)
		}
	}
	return nil
}

// maxDistanceForLength bounds suggestion cost: distance 1 for very short
// tokens, and for every token once the active vocabulary is large enough
// that distance-2 generation stops being affordable.
func (c Config) maxDistanceForLength(length, vocabularySize int) int {
	if vocabularySize >= c.LargeVocabularySize {
		return 1
	}
	if length <= 4 {
		return 1
	}
	return min(2, c.MaxEditDistance)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
