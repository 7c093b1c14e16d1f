// Package readiness decides whether an extraction run is trustworthy enough
// to drive automated grading, and derives the workflow automation state.
package readiness

import (
	"fmt"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/policy"
)

// Metrics are the raw numbers behind a gate decision. They are always
// populated so callers can render diagnostics even on failure.
type Metrics struct {
	ExtractedChars     int                        `json:"extracted_chars"`
	PageCount          int                        `json:"page_count"`
	OverallConfidence  float64                    `json:"overall_confidence"`
	RunStatus          constants.ExtractionStatus `json:"run_status"`
	CoverMetadataReady bool                       `json:"cover_metadata_ready"`
}

// Readiness is the gate outcome. OK implies zero blockers; warnings alone
// never block.
type Readiness struct {
	OK       bool     `json:"ok"`
	Blockers []string `json:"blockers"`
	Warnings []string `json:"warnings"`
	Metrics  Metrics  `json:"metrics"`
}

// Input carries the extraction facts the gate evaluates.
type Input struct {
	Status                  constants.ExtractionStatus
	Text                    string
	PageCount               int
	Confidence              float64
	CoverMetadataReady      bool
	CoverMetadataConfidence float64
	HasPageBreaks           bool
}

// Evaluate applies the deterministic rule set: blockers first (any blocker
// fails the gate), then informational warnings. It never errors; a bad run
// produces a failed gate with full diagnostics.
func Evaluate(in Input, pol policy.Readiness) Readiness {
	r := Readiness{
		Blockers: []string{},
		Warnings: []string{},
		Metrics: Metrics{
			ExtractedChars:     len(in.Text),
			PageCount:          in.PageCount,
			OverallConfidence:  in.Confidence,
			RunStatus:          in.Status,
			CoverMetadataReady: in.CoverMetadataReady,
		},
	}

	switch in.Status {
	case constants.StatusFailed, constants.StatusNeedsOCR:
		r.Blockers = append(r.Blockers, fmt.Sprintf("extraction run status is %s", in.Status))
	}

	if len(in.Text) < pol.MinExtractedChars && !coverClearsBar(in, pol) {
		r.Blockers = append(r.Blockers, fmt.Sprintf(
			"extracted text too short: %d chars (minimum %d)", len(in.Text), pol.MinExtractedChars))
	}

	if in.PageCount < 1 {
		r.Warnings = append(r.Warnings, "missing or implausible page count")
	}
	if !in.HasPageBreaks {
		r.Warnings = append(r.Warnings, "no page-break markers; page attribution unreliable")
	}

	r.OK = len(r.Blockers) == 0
	return r
}

// coverClearsBar lets confident cover-page metadata alone clear a lower
// character bar, so a sparse cover sheet does not block a run whose identity
// fields were read cleanly.
func coverClearsBar(in Input, pol policy.Readiness) bool {
	return in.CoverMetadataReady &&
		in.CoverMetadataConfidence >= pol.CoverMetadataConfidenceBar &&
		len(in.Text) >= pol.CoverMetadataMinChars
}
