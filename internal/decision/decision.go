// Package decision models and validates structured grade decisions before
// they are allowed to touch a record.
package decision

import (
	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
)

// Evidence is a page-anchored citation supporting a criterion decision:
// either quoted text or a described visual.
type Evidence struct {
	Page              int    `json:"page"`
	Quote             string `json:"quote,omitempty"`
	VisualDescription string `json:"visual_description,omitempty"`
}

// Empty reports whether the evidence item carries neither a quote nor a
// visual description.
func (e Evidence) Empty() bool {
	return e.Quote == "" && e.VisualDescription == ""
}

// CriterionCheck is the decision for one criterion code.
type CriterionCheck struct {
	Code       criteria.Code           `json:"-"`
	RawCode    string                  `json:"code"`
	Decision   constants.CheckDecision `json:"decision"`
	Rationale  string                  `json:"rationale,omitempty"`
	Confidence float64                 `json:"confidence"`
	Evidence   []Evidence              `json:"evidence,omitempty"`
}

// Decision is a full proposed grading outcome.
type Decision struct {
	OverallGrade         constants.GradeWord `json:"overall_grade"`
	ResubmissionRequired bool                `json:"resubmission_required"`
	Confidence           float64             `json:"confidence"`
	Checks               []CriterionCheck    `json:"criterion_checks"`
}

// CheckFor returns the check for a code, if present.
func (d Decision) CheckFor(code criteria.Code) (CriterionCheck, bool) {
	for _, c := range d.Checks {
		if c.Code == code {
			return c, true
		}
	}
	return CriterionCheck{}, false
}

// OpenCodes returns the codes whose decision is not ACHIEVED.
func (d Decision) OpenCodes() []criteria.Code {
	var out []criteria.Code
	for _, c := range d.Checks {
		if c.Decision != constants.CheckAchieved {
			out = append(out, c.Code)
		}
	}
	criteria.Sort(out)
	return out
}
