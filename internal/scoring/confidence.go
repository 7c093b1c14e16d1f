// Package scoring blends weak grading signals into one bounded, explainable
// confidence value.
package scoring

import (
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/policy"
)

// Adjustment names a cap, bonus, or penalty that fired, for explainability.
type Adjustment struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Named adjustments reported in Result.
const (
	CapModalityMissing          = "modality_missing_cap"
	BonusExtractionHighConf     = "extraction_high_confidence_bonus"
	PenaltyCriteriaWithoutCites = "criteria_without_evidence_penalty"
)

// Signals are the weak inputs the scorer combines.
type Signals struct {
	// ModelConfidence is the grader model's self-reported confidence.
	ModelConfidence float64
	// RequiredCodes / AssessedCodes drive the alignment-agreement term.
	RequiredCodes []criteria.Code
	AssessedCodes []criteria.Code
	// EvidenceCount is the total citations across all checks.
	EvidenceCount int
	// CriteriaCount / CriteriaWithoutEvidence drive evidence density.
	CriteriaCount           int
	CriteriaWithoutEvidence int
	// ModalityMissingCount counts required input modalities (e.g. embedded
	// visuals) the extraction failed to capture.
	ModalityMissingCount int
	// ExtractionConfidence only matters at its maximum (bonus); below that
	// it influences automation through the readiness gate, not this score.
	ExtractionConfidence float64
}

// Result is the bounded final confidence plus everything that shaped it.
type Result struct {
	FinalConfidence float64      `json:"final_confidence"`
	Base            float64      `json:"base"`
	CapsApplied     []Adjustment `json:"caps_applied"`
	Bonuses         []Adjustment `json:"bonuses"`
	Penalties       []Adjustment `json:"penalties"`
}

// Score computes a weighted base from model confidence, criteria alignment,
// and evidence density, then applies hard caps and the bounded bonus in that
// order. A single weak signal can clamp the ceiling no matter how strong the
// rest are; that is the point.
func Score(sig Signals, pol policy.Scoring) Result {
	res := Result{
		CapsApplied: []Adjustment{},
		Bonuses:     []Adjustment{},
		Penalties:   []Adjustment{},
	}

	base := pol.ModelWeight*clamp01(sig.ModelConfidence) +
		pol.AlignmentWeight*alignment(sig.RequiredCodes, sig.AssessedCodes) +
		pol.EvidenceWeight*evidenceDensity(sig, pol)
	res.Base = clamp01(base)
	final := res.Base

	if sig.CriteriaWithoutEvidence > 0 {
		p := pol.NoEvidencePenalty * float64(sig.CriteriaWithoutEvidence)
		res.Penalties = append(res.Penalties, Adjustment{Name: PenaltyCriteriaWithoutCites, Value: p})
		final -= p
	}

	// Hard caps first: they clamp regardless of how high the blend landed.
	if sig.ModalityMissingCount > 0 && final > pol.ModalityMissingCap {
		res.CapsApplied = append(res.CapsApplied, Adjustment{Name: CapModalityMissing, Value: pol.ModalityMissingCap})
		final = pol.ModalityMissingCap
	}

	// Bonus only at maximal extraction confidence; anything below the
	// maximum gets no direct effect here.
	if sig.ExtractionConfidence >= 1.0 {
		res.Bonuses = append(res.Bonuses, Adjustment{Name: BonusExtractionHighConf, Value: pol.ExtractionHighConfidenceBonus})
		final += pol.ExtractionHighConfidenceBonus
		if sig.ModalityMissingCount > 0 && final > pol.ModalityMissingCap {
			final = pol.ModalityMissingCap
		}
	}

	res.FinalConfidence = clamp01(final)
	return res
}

// alignment is the overlap ratio between what the grader assessed and what
// was required. Empty required with extra assessed counts as disagreement.
func alignment(required, assessed []criteria.Code) float64 {
	if len(required) == 0 && len(assessed) == 0 {
		return 1
	}
	reqSet := make(map[criteria.Code]struct{}, len(required))
	for _, c := range required {
		reqSet[c] = struct{}{}
	}
	inter := 0
	union := len(reqSet)
	for _, c := range assessed {
		if _, ok := reqSet[c]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// evidenceDensity scores citations per criterion against the policy target.
func evidenceDensity(sig Signals, pol policy.Scoring) float64 {
	if sig.CriteriaCount <= 0 {
		return 0
	}
	perCriterion := float64(sig.EvidenceCount) / float64(sig.CriteriaCount)
	if pol.EvidencePerCriterionTarget <= 0 {
		return 1
	}
	d := perCriterion / pol.EvidencePerCriterionTarget
	if d > 1 {
		d = 1
	}
	return d
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
