package brief

import (
	"regexp"
	"strconv"
	"strings"
)

var reEqRef = regexp.MustCompile(`\[\[EQ:([^\]]+)\]\]`)

// attachEquations resolves [[EQ:id]] tokens in a task body against the
// extractor's equation list. An orphan token is a warning on the document,
// not a structural failure.
func attachEquations(task *Task, raw string, eqIndex map[string]Equation, doc *Document) {
	seen := make(map[string]struct{})
	for _, m := range reEqRef.FindAllStringSubmatch(raw, -1) {
		id := strings.TrimSpace(m[1])
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		eq, ok := eqIndex[id]
		if !ok {
			doc.Warnings = append(doc.Warnings, "orphan equation token [[EQ:"+id+"]] in task "+strconv.Itoa(task.N))
			continue
		}
		task.Formulas = append(task.Formulas, eq)
	}
}

// FallbackPolicy bounds the selection of equations eligible for an external
// re-recognition pass.
type FallbackPolicy struct {
	Enabled       bool
	MaxCandidates int
	LowConfidence float64
}

// SelectFallbackCandidates picks the equations worth sending to the external
// vision/OCR collaborator: those with no recognized confidence at all, or
// flagged for review with confidence under the policy floor. The result is
// capped so one noisy document can never trigger unbounded external calls.
// With the policy disabled the selection is always empty.
func SelectFallbackCandidates(eqs []Equation, pol FallbackPolicy) []Equation {
	if !pol.Enabled || pol.MaxCandidates <= 0 {
		return nil
	}
	var out []Equation
	for _, eq := range eqs {
		if !fallbackEligible(eq, pol.LowConfidence) {
			continue
		}
		out = append(out, eq)
		if len(out) >= pol.MaxCandidates {
			break
		}
	}
	return out
}

func fallbackEligible(eq Equation, lowConfidence float64) bool {
	if eq.Confidence == nil {
		return true
	}
	return eq.NeedsReview && *eq.Confidence < lowConfidence
}
