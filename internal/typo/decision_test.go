package typo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rc(value string, score, prior, errLik float64, distance int) RankedCandidate {
	return RankedCandidate{
		Candidate:       Candidate{Value: value, Distance: distance},
		Score:           score,
		PriorScore:      prior,
		ErrorLikelihood: errLik,
	}
}

func TestDecideStatus_Empty(t *testing.T) {
	d := DecideStatus(DefaultConfig(), nil, false)
	assert.Equal(t, StatusNew, d.Status)
	assert.Equal(t, 0.0, d.Confidence)
	assert.Equal(t, []string{TagWeakEvidence}, d.ReasonTags)
}

func TestDecideStatus_HighConfidenceClearMargin(t *testing.T) {
	ranked := []RankedCandidate{
		rc("spiser", 0.95, 0.5, 0.85, 1),
		rc("spise", 0.60, 0.5, 0.70, 1),
	}
	d := DecideStatus(DefaultConfig(), ranked, false)
	assert.Equal(t, StatusTypoLikely, d.Status)
	assert.Equal(t, []string{TagHighConfidence, TagClearMargin}, d.ReasonTags)
	assert.Greater(t, d.Confidence, 0.78)
}

func TestDecideStatus_WeakEvidence(t *testing.T) {
	ranked := []RankedCandidate{rc("fjern", 0.30, 0.5, 0.40, 2)}
	d := DecideStatus(DefaultConfig(), ranked, false)
	assert.Equal(t, StatusNew, d.Status)
	assert.Equal(t, []string{TagWeakEvidence}, d.ReasonTags)
}

func TestDecideStatus_UncertainSmallMargin(t *testing.T) {
	ranked := []RankedCandidate{
		rc("bold", 0.72, 0.5, 0.60, 2),
		rc("bild", 0.70, 0.5, 0.58, 2),
	}
	d := DecideStatus(DefaultConfig(), ranked, false)
	assert.Equal(t, StatusUncertain, d.Status)
	assert.Equal(t, []string{TagMediumConfidence, TagSmallMargin}, d.ReasonTags)
}

func TestDecideStatus_UncertainClearMargin(t *testing.T) {
	ranked := []RankedCandidate{
		rc("bold", 0.75, 0.5, 0.50, 2),
		rc("bild", 0.55, 0.5, 0.40, 2),
	}
	d := DecideStatus(DefaultConfig(), ranked, false)
	assert.Equal(t, StatusUncertain, d.Status)
	assert.Equal(t, []string{TagMediumConfidence}, d.ReasonTags)
}

func TestDecideStatus_DistanceOneRescue(t *testing.T) {
	// Confidence lands just under the typo cut; a strong single-edit top
	// candidate is rescued anyway.
	ranked := []RankedCandidate{
		rc("klasse", 0.78, 0.5, 0.90, 1),
		rc("kasse", 0.55, 0.5, 0.60, 2),
	}
	d := DecideStatus(DefaultConfig(), ranked, false)
	assert.Equal(t, StatusTypoLikely, d.Status)
	assert.Equal(t, []string{TagHighConfidence, TagDistanceOneRescue}, d.ReasonTags)
}

func TestDecideStatus_NoRescueAtDistanceTwo(t *testing.T) {
	ranked := []RankedCandidate{
		rc("klasse", 0.78, 0.5, 0.90, 2),
		rc("kasse", 0.55, 0.5, 0.60, 2),
	}
	d := DecideStatus(DefaultConfig(), ranked, false)
	assert.Equal(t, StatusUncertain, d.Status)
}

func TestDecideStatus_PriorShiftsThreshold(t *testing.T) {
	cfg := DefaultConfig()
	top := rc("hund", 0.785, 0.5, 0.70, 2)
	second := rc("hund", 0.50, 0.5, 0.40, 2)

	// At a neutral prior the blended confidence misses the 0.78 cut.
	d := DecideStatus(cfg, []RankedCandidate{top, second}, false)
	assert.Equal(t, StatusUncertain, d.Status)

	// A saturated prior lowers the cut by 0.02 and the same scores clear it.
	top.PriorScore = 1.0
	d = DecideStatus(cfg, []RankedCandidate{top, second}, false)
	assert.Equal(t, StatusTypoLikely, d.Status)
}

func TestDecideStatus_ProperNounBiasNeverTypoLikely(t *testing.T) {
	strong := []RankedCandidate{
		rc("milkoscan", 0.95, 0.5, 0.90, 1),
		rc("milko", 0.40, 0.5, 0.30, 2),
	}
	d := DecideStatus(DefaultConfig(), strong, true)
	assert.Equal(t, StatusUncertain, d.Status)
	assert.Equal(t, []string{TagProperNounBias, TagMediumConfidence}, d.ReasonTags)

	weak := []RankedCandidate{rc("milko", 0.30, 0.5, 0.30, 2)}
	d = DecideStatus(DefaultConfig(), weak, true)
	assert.Equal(t, StatusNew, d.Status)
	assert.Equal(t, []string{TagProperNounBias}, d.ReasonTags)
}

func TestDecideStatus_SingleCandidateFullPosterior(t *testing.T) {
	// One candidate means no competitor; posterior is 1 and the margin is
	// the score itself.
	ranked := []RankedCandidate{rc("spiser", 0.85, 0.5, 0.85, 1)}
	d := DecideStatus(DefaultConfig(), ranked, false)
	assert.Equal(t, StatusTypoLikely, d.Status)
	// confidence = 0.78*0.85 + 0.22*1.0
	assert.InDelta(t, 0.883, d.Confidence, 1e-9)
}
