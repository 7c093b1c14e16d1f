// Package policy holds the tunable constants that gate automation, plus the
// injected key-value store they can be overridden through. Core components
// take policy as a passed-in value; nothing reads ambient global state.
package policy

// Readiness gates extraction quality.
type Readiness struct {
	// MinExtractedChars is the blocker threshold for "extracted text too short".
	MinExtractedChars int `yaml:"min_extracted_chars" json:"min_extracted_chars"`
	// CoverMetadataConfidenceBar lets a confident cover page clear a lower
	// character bar on its own.
	CoverMetadataConfidenceBar float64 `yaml:"cover_metadata_confidence_bar" json:"cover_metadata_confidence_bar"`
	CoverMetadataMinChars      int     `yaml:"cover_metadata_min_chars" json:"cover_metadata_min_chars"`
}

// Automation gates the AUTO_READY state.
type Automation struct {
	AutoConfidenceThreshold float64 `yaml:"auto_confidence_threshold" json:"auto_confidence_threshold"`
}

// Scoring tunes the grading confidence blend and its caps/bonuses.
type Scoring struct {
	ModelWeight     float64 `yaml:"model_weight" json:"model_weight"`
	AlignmentWeight float64 `yaml:"alignment_weight" json:"alignment_weight"`
	EvidenceWeight  float64 `yaml:"evidence_weight" json:"evidence_weight"`

	// EvidencePerCriterionTarget is the citations-per-criterion count that
	// scores full evidence density.
	EvidencePerCriterionTarget float64 `yaml:"evidence_per_criterion_target" json:"evidence_per_criterion_target"`
	NoEvidencePenalty          float64 `yaml:"no_evidence_penalty" json:"no_evidence_penalty"`

	// ModalityMissingCap clamps the final confidence whenever any required
	// input modality is absent.
	ModalityMissingCap float64 `yaml:"modality_missing_cap" json:"modality_missing_cap"`
	// ExtractionHighConfidenceBonus applies only when extraction confidence
	// is at its maximum; below-maximum extraction confidence has no direct
	// effect on the final score.
	ExtractionHighConfidenceBonus float64 `yaml:"extraction_high_confidence_bonus" json:"extraction_high_confidence_bonus"`
}

// Equations bounds the external equation re-recognition fallback.
type Equations struct {
	FallbackEnabled       bool    `yaml:"fallback_enabled" json:"fallback_enabled"`
	MaxFallbackCandidates int     `yaml:"max_fallback_candidates" json:"max_fallback_candidates"`
	LowConfidence         float64 `yaml:"low_confidence" json:"low_confidence"`
}

// Feedback tunes the lint pipeline.
type Feedback struct {
	// ToneDowngradeMaxGrade is the grade word at or below which superlative
	// language is downgraded.
	ToneDowngradeMaxGrade string `yaml:"tone_downgrade_max_grade" json:"tone_downgrade_max_grade"`
}

// Policy is the full tunable set.
type Policy struct {
	Readiness  Readiness  `yaml:"readiness" json:"readiness"`
	Automation Automation `yaml:"automation" json:"automation"`
	Scoring    Scoring    `yaml:"scoring" json:"scoring"`
	Equations  Equations  `yaml:"equations" json:"equations"`
	Feedback   Feedback   `yaml:"feedback" json:"feedback"`
}

// Default returns the production defaults. Callers overlay store or file
// values on top of this.
func Default() Policy {
	return Policy{
		Readiness: Readiness{
			MinExtractedChars:          200,
			CoverMetadataConfidenceBar: 0.8,
			CoverMetadataMinChars:      40,
		},
		Automation: Automation{
			AutoConfidenceThreshold: 0.75,
		},
		Scoring: Scoring{
			ModelWeight:                   0.5,
			AlignmentWeight:               0.3,
			EvidenceWeight:                0.2,
			EvidencePerCriterionTarget:    2,
			NoEvidencePenalty:             0.05,
			ModalityMissingCap:            0.65,
			ExtractionHighConfidenceBonus: 0.05,
		},
		Equations: Equations{
			FallbackEnabled:       true,
			MaxFallbackCandidates: 5,
			LowConfidence:         0.6,
		},
		Feedback: Feedback{
			ToneDowngradeMaxGrade: "PASS",
		},
	}
}
