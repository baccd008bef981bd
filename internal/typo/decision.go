package typo

import "math"

// Status is the typo pipeline's terminal state for a token.
type Status string

const (
	StatusTypoLikely Status = "typo_likely"
	StatusUncertain  Status = "uncertain"
	StatusNew        Status = "new"
)

// DecisionResult pairs the status with a calibrated confidence and the
// stable reason tags explaining which branch produced it.
type DecisionResult struct {
	Status     Status
	Confidence float64
	ReasonTags []string
}

// DecideStatus resolves a ranked candidate list into a status. The raw top
// score is blended with a softmax posterior over the top two candidates, and
// both thresholds shift by up to ±0.02 with the top candidate's prior: a
// trusted correction source makes the cut slightly easier to clear.
func DecideStatus(cfg Config, ranked []RankedCandidate, properNounBias bool) DecisionResult {
	if len(ranked) == 0 {
		return DecisionResult{Status: StatusNew, Confidence: 0, ReasonTags: []string{TagWeakEvidence}}
	}

	top := ranked[0]
	posterior := 1.0
	margin := top.Score
	if len(ranked) > 1 {
		second := ranked[1]
		margin = top.Score - second.Score
		e1 := math.Exp(top.Score / cfg.SoftmaxTemperature)
		e2 := math.Exp(second.Score / cfg.SoftmaxTemperature)
		posterior = e1 / (e1 + e2)
	}
	confidence := clamp01(0.78*top.Score + 0.22*posterior)

	shift := (0.5 - top.PriorScore) * 0.04
	typoCut := cfg.TypoThreshold + shift
	uncertainCut := cfg.UncertainThreshold + shift

	if properNounBias {
		if confidence >= uncertainCut {
			return DecisionResult{
				Status:     StatusUncertain,
				Confidence: confidence,
				ReasonTags: []string{TagProperNounBias, TagMediumConfidence},
			}
		}
		return DecisionResult{
			Status:     StatusNew,
			Confidence: confidence,
			ReasonTags: []string{TagProperNounBias},
		}
	}

	if confidence >= typoCut && margin >= cfg.MinMargin {
		return DecisionResult{
			Status:     StatusTypoLikely,
			Confidence: confidence,
			ReasonTags: []string{TagHighConfidence, TagClearMargin},
		}
	}
	// Distance-one rescue: a strong single-edit correction that narrowly
	// misses the main bar is still a typo.
	if top.Distance <= 1 && top.ErrorLikelihood >= 0.82 &&
		confidence >= typoCut-0.04 && margin >= 0.75*cfg.MinMargin {
		return DecisionResult{
			Status:     StatusTypoLikely,
			Confidence: confidence,
			ReasonTags: []string{TagHighConfidence, TagDistanceOneRescue},
		}
	}
	if confidence >= uncertainCut {
		tags := []string{TagMediumConfidence}
		if margin < cfg.MinMargin {
			tags = append(tags, TagSmallMargin)
		}
		return DecisionResult{Status: StatusUncertain, Confidence: confidence, ReasonTags: tags}
	}
	return DecisionResult{Status: StatusNew, Confidence: confidence, ReasonTags: []string{TagWeakEvidence}}
}
