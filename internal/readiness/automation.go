package readiness

import (
	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/policy"
)

// Quality bundles the extraction-quality facts the state machine consumes.
type Quality struct {
	Gate       Readiness
	Route      constants.RouteHint
	Confidence float64
}

// Facts are the linkage and history facts for one submission record.
type Facts struct {
	StudentLinked      bool
	AssignmentLinked   bool
	PriorGradingExists bool
}

// DeriveState maps current facts to exactly one automation state. There is
// no persisted machine: the state is recomputed from inputs every time, and
// every input combination maps to a state.
//
// Order matters: an existing grading wins over everything, a hard extraction
// problem wins over linkage, and AUTO_READY requires both links plus a
// quality gate pass clearing the auto threshold. Everything else needs a
// human.
func DeriveState(q Quality, f Facts, pol policy.Automation) constants.AutomationState {
	if f.PriorGradingExists {
		return constants.Completed
	}
	if q.Route == constants.RouteBlocked || len(q.Gate.Blockers) > 0 {
		return constants.Blocked
	}
	if f.StudentLinked && f.AssignmentLinked &&
		q.Gate.OK && q.Confidence >= pol.AutoConfidenceThreshold {
		return constants.AutoReady
	}
	return constants.NeedsHuman
}
