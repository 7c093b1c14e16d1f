package decision

import (
	"fmt"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
)

// ValidationResult is the validator outcome. Rejection is an expected,
// frequent, auditable event: one reason per failed check, never an error.
type ValidationResult struct {
	OK      bool     `json:"ok"`
	Reasons []string `json:"reasons,omitempty"`
}

// Validate applies every acceptance rule to a proposed decision. All rules
// run even after the first failure so the audit trail is complete.
func Validate(d Decision, requiredCodes []criteria.Code) ValidationResult {
	var reasons []string

	if !allowedGradeWord(d.OverallGrade) {
		reasons = append(reasons, fmt.Sprintf("overall grade %q is not an allowed grade word", d.OverallGrade))
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		reasons = append(reasons, fmt.Sprintf("decision confidence %.3f outside [0,1]", d.Confidence))
	}

	// Strict set equality between assessed and required codes.
	assessed := make([]criteria.Code, 0, len(d.Checks))
	seen := make(map[criteria.Code]struct{}, len(d.Checks))
	for _, c := range d.Checks {
		if _, dup := seen[c.Code]; dup {
			reasons = append(reasons, "duplicate criterion check for "+c.Code.String())
			continue
		}
		seen[c.Code] = struct{}{}
		assessed = append(assessed, c.Code)
	}
	if missing := diff(requiredCodes, assessed); len(missing) > 0 {
		reasons = append(reasons, "missing required criterion codes: "+join(missing))
	}
	if extra := diff(assessed, requiredCodes); len(extra) > 0 {
		reasons = append(reasons, "unexpected criterion codes: "+join(extra))
	}

	for _, c := range d.Checks {
		code := c.Code.String()
		if !constants.ValidCheckDecision(string(c.Decision)) {
			reasons = append(reasons, fmt.Sprintf("check %s: unknown decision %q", code, c.Decision))
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			reasons = append(reasons, fmt.Sprintf("check %s: confidence %.3f outside [0,1]", code, c.Confidence))
		}
		if c.Decision == constants.CheckAchieved && !hasUsableEvidence(c.Evidence) {
			reasons = append(reasons, fmt.Sprintf("check %s: ACHIEVED without evidence", code))
		}
		for i, ev := range c.Evidence {
			if ev.Page < 1 {
				reasons = append(reasons, fmt.Sprintf("check %s: evidence %d has non-positive page %d", code, i+1, ev.Page))
			}
			if ev.Empty() {
				reasons = append(reasons, fmt.Sprintf("check %s: evidence %d has neither quote nor visual description", code, i+1))
			}
		}
	}

	return ValidationResult{OK: len(reasons) == 0, Reasons: reasons}
}

func allowedGradeWord(g constants.GradeWord) bool {
	for _, w := range constants.GradeWords() {
		if w == string(g) {
			return true
		}
	}
	return false
}

func hasUsableEvidence(evs []Evidence) bool {
	for _, ev := range evs {
		if !ev.Empty() {
			return true
		}
	}
	return false
}

func diff(a, b []criteria.Code) []criteria.Code {
	set := make(map[criteria.Code]struct{}, len(b))
	for _, c := range b {
		set[c] = struct{}{}
	}
	var out []criteria.Code
	for _, c := range a {
		if _, ok := set[c]; !ok {
			out = append(out, c)
		}
	}
	criteria.Sort(out)
	return out
}

func join(codes []criteria.Code) string {
	s := ""
	for i, c := range codes {
		if i > 0 {
			s += ", "
		}
		s += c.String()
	}
	return s
}
