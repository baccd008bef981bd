package typo

import (
	"regexp"
	"strings"
	"unicode"
)

// Stable reason tags shared by gating, decision and the dictionary override.
// Downstream consumers match on these; never reword them.
const (
	TagGatingOK              = "gating_ok"
	TagSkipEmpty             = "gating_skip_empty"
	TagSkipShort             = "gating_skip_short"
	TagSkipEmail             = "gating_skip_email"
	TagSkipURL               = "gating_skip_url"
	TagSkipPath              = "gating_skip_path"
	TagSkipAcronym           = "gating_skip_acronym"
	TagSkipDigitRatio        = "gating_skip_digit_ratio"
	TagSkipNonAlpha          = "gating_skip_non_alpha"
	TagSkipIgnored           = "gating_skip_ignored"
	TagSkipDictionaryExact   = "gating_skip_dictionary_exact"
	TagProperNounBias        = "proper_noun_bias"
	TagHighConfidence        = "candidate_high_confidence"
	TagMediumConfidence      = "candidate_medium_confidence"
	TagClearMargin           = "clear_margin"
	TagSmallMargin           = "small_margin"
	TagWeakEvidence          = "weak_candidate_evidence"
	TagDistanceOneRescue     = "distance_one_rescue"
	TagUncertainResolvedDict = "uncertain_resolved_dictionary_hit"
	TagDictionaryMissForced  = "dictionary_miss_forced_typo"
)

var (
	emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	urlRe   = regexp.MustCompile(`(?i)^(https?://|www\.)\S+`)
	pathRe  = regexp.MustCompile(`^([A-Za-z]:\\|/).`)
)

// GateResult says whether fuzzy matching should run at all, and whether the
// proper-noun dampening applies to the decision.
type GateResult struct {
	ShouldRun      bool
	ReasonTags     []string
	ProperNounBias bool
}

// ShouldRunTypoCheck is the cheap pre-filter in front of the fuzzy pipeline.
// The acronym check looks at the raw surface token (case information is lost
// after normalization); the digit-ratio and alpha checks look at the
// normalized form.
func ShouldRunTypoCheck(token, normalized string, minLen int, sentenceStart bool) GateResult {
	if normalized == "" {
		return GateResult{ReasonTags: []string{TagSkipEmpty}}
	}
	if len([]rune(normalized)) < minLen {
		return GateResult{ReasonTags: []string{TagSkipShort}}
	}
	if emailRe.MatchString(normalized) {
		return GateResult{ReasonTags: []string{TagSkipEmail}}
	}
	if urlRe.MatchString(normalized) {
		return GateResult{ReasonTags: []string{TagSkipURL}}
	}
	// Path shapes are matched on the raw token: normalization strips the
	// leading slash a unix path is recognized by.
	if pathRe.MatchString(strings.TrimSpace(token)) {
		return GateResult{ReasonTags: []string{TagSkipPath}}
	}
	if containsLetter(token) && token == strings.ToUpper(token) {
		return GateResult{ReasonTags: []string{TagSkipAcronym}}
	}

	digits, alphas, total := 0, 0, 0
	for _, r := range normalized {
		total++
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			alphas++
		}
	}
	if total > 0 && float64(digits)/float64(total) > 0.3 {
		return GateResult{ReasonTags: []string{TagSkipDigitRatio}}
	}
	if alphas == 0 {
		return GateResult{ReasonTags: []string{TagSkipNonAlpha}}
	}

	bias := !sentenceStart && startsUpper(token) && containsLetter(token)
	tags := []string{TagGatingOK}
	if bias {
		tags = append(tags, TagProperNounBias)
	}
	return GateResult{ShouldRun: true, ReasonTags: tags, ProperNounBias: bias}
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
