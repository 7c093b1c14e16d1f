package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/decision"
	"github.com/assessly/docgrader/internal/policy"
)

func ctxFor(t *testing.T, overall constants.GradeWord, checks ...decision.CriterionCheck) *Context {
	t.Helper()
	return buildContext(checks, overall, "", policy.Default().Feedback)
}

func TestLeakTermPass_ReplacesUncitedVocabulary(t *testing.T) {
	ctx := ctxFor(t, constants.GradeMerit)

	got := leakTermPass(ctx, "Repeat the reading with the Oscilloscope and log it in the Gantt chart.")

	assert.Equal(t, "Repeat the reading with the measurement equipment and log it in the planning artefact.", got)
}

func TestLeakTermPass_MultiWordCorpusExemption(t *testing.T) {
	ctx := buildContext(nil, constants.GradePass, "we tracked milestones on a gantt chart in week 3", policy.Default().Feedback)

	got := leakTermPass(ctx, "Update the Gantt chart before the next review.")

	assert.Equal(t, "Update the Gantt chart before the next review.", got)
}

func TestTonePass_OnlyAtOrBelowThreshold(t *testing.T) {
	line := "This is an outstanding and flawless submission."

	pass := tonePass(ctxFor(t, constants.GradePass), line)
	assert.Equal(t, "This is a good and competent submission.", pass)

	merit := tonePass(ctxFor(t, constants.GradeMerit), line)
	assert.Equal(t, line, merit)
}

func TestPersonJudgementPass_RewritesToWork(t *testing.T) {
	got := personJudgementPass(nil, "You were rather sloppy in section 2.")
	assert.Equal(t, "the work shows inconsistent presentation in section 2.", got)
}

func TestCommandVerbPass(t *testing.T) {
	got := commandVerbPass(nil, "Make sure that you label axes; you need to cite sources.")
	assert.Equal(t, "ensure that you label axes; the submission should cite sources.", got)
}

func TestOverclaimPass_SoftensUnbackedCriterionClaim(t *testing.T) {
	ctx := ctxFor(t, constants.GradePass,
		decision.CriterionCheck{Code: criteria.Code{Band: criteria.BandMerit, Number: 1}, Decision: constants.CheckNotAchieved},
	)

	got := overclaimPass(ctx, "M1 has been achieved through the test plan.")
	assert.Equal(t, "M1 has been outlined through the test plan.", got)
}

func TestOverclaimPass_HedgedClaimLeftAlone(t *testing.T) {
	ctx := ctxFor(t, constants.GradePass,
		decision.CriterionCheck{Code: criteria.Code{Band: criteria.BandMerit, Number: 1}, Decision: constants.CheckNotAchieved},
	)

	line := "M1 is partially demonstrated, but the analysis stops short."
	assert.Equal(t, line, overclaimPass(ctx, line))
}

func TestOverclaimPass_AchievedCriterionKeepsClaim(t *testing.T) {
	ctx := ctxFor(t, constants.GradeMerit,
		decision.CriterionCheck{Code: criteria.Code{Band: criteria.BandPass, Number: 2}, Decision: constants.CheckAchieved},
	)

	line := "P2 has been achieved with a clear method statement."
	assert.Equal(t, line, overclaimPass(ctx, line))
}

func TestOverclaimPass_BandClaimNeedsOpenBandAndLowerGrade(t *testing.T) {
	open := ctxFor(t, constants.GradePass,
		decision.CriterionCheck{Code: criteria.Code{Band: criteria.BandDistinction, Number: 1}, Decision: constants.CheckUnclear},
	)
	got := overclaimPass(open, "Work at distinction level has been fully met here.")
	assert.Equal(t, "Work at distinction level has been discussed here.", got)

	// overall grade already at the band: claim stands
	earned := ctxFor(t, constants.GradeDistinction,
		decision.CriterionCheck{Code: criteria.Code{Band: criteria.BandDistinction, Number: 1}, Decision: constants.CheckUnclear},
	)
	line := "Work at distinction level has been fully met here."
	assert.Equal(t, line, overclaimPass(earned, line))
}
