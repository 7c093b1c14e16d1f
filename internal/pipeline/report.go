package pipeline

import (
	"encoding/json"
	"time"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/brief"
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/decision"
	"github.com/assessly/docgrader/internal/extract"
	"github.com/assessly/docgrader/internal/feedback"
	"github.com/assessly/docgrader/internal/readiness"
	"github.com/assessly/docgrader/internal/scoring"
)

// Report is everything one run produced. Stages that never ran leave their
// pointer fields nil; the earlier fields are always populated.
type Report struct {
	RunID     string `json:"run_id"`
	UnitTitle string `json:"unit_title,omitempty"`

	Brief         brief.Document  `json:"brief"`
	RequiredCodes []criteria.Code `json:"-"`

	Extraction extract.Result      `json:"extraction"`
	Gate       readiness.Readiness `json:"gate"`

	State constants.AutomationState `json:"state"`

	Decision    *decision.Decision         `json:"decision,omitempty"`
	RawDecision json.RawMessage            `json:"raw_decision,omitempty"`
	Validation  *decision.ValidationResult `json:"validation,omitempty"`
	Confidence  *scoring.Result            `json:"confidence,omitempty"`
	Feedback    *feedback.Result           `json:"feedback,omitempty"`

	Duration time.Duration `json:"-"`
}

// RequiredCodeStrings is the required set in display form.
func (r Report) RequiredCodeStrings() []string {
	return criteria.Strings(r.RequiredCodes)
}

// Graded reports whether the run got as far as a validated decision.
func (r Report) Graded() bool {
	return r.Decision != nil && r.Validation != nil && r.Validation.OK
}
