package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
)

func code(t *testing.T, raw string) criteria.Code {
	t.Helper()
	c, ok := criteria.Normalize(raw)
	require.True(t, ok, raw)
	return c
}

func validDecision(t *testing.T) Decision {
	return Decision{
		OverallGrade:         constants.GradePass,
		ResubmissionRequired: false,
		Confidence:           0.8,
		Checks: []CriterionCheck{
			{
				Code:       code(t, "P1"),
				Decision:   constants.CheckAchieved,
				Rationale:  "method explained on page 2",
				Confidence: 0.9,
				Evidence:   []Evidence{{Page: 2, Quote: "the resistance was measured using"}},
			},
			{
				Code:       code(t, "M1"),
				Decision:   constants.CheckNotAchieved,
				Rationale:  "no error analysis present",
				Confidence: 0.7,
			},
		},
	}
}

func requiredSet(t *testing.T) []criteria.Code {
	return []criteria.Code{code(t, "P1"), code(t, "M1")}
}

func TestValidate_OK(t *testing.T) {
	res := Validate(validDecision(t), requiredSet(t))
	assert.True(t, res.OK)
	assert.Empty(t, res.Reasons)
}

func TestValidate_AchievedWithoutEvidenceFails(t *testing.T) {
	d := validDecision(t)
	d.Checks[0].Evidence = nil
	res := Validate(d, requiredSet(t))

	assert.False(t, res.OK)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "ACHIEVED without evidence")
}

func TestValidate_EvidenceWithOnlyVisualDescriptionOK(t *testing.T) {
	d := validDecision(t)
	d.Checks[0].Evidence = []Evidence{{Page: 3, VisualDescription: "circuit diagram with labelled resistors"}}
	res := Validate(d, requiredSet(t))
	assert.True(t, res.OK)
}

func TestValidate_MissingAndExtraCodes(t *testing.T) {
	d := validDecision(t)
	res := Validate(d, []criteria.Code{code(t, "P1"), code(t, "M1"), code(t, "D1")})
	assert.False(t, res.OK)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "missing required criterion codes: D1")

	res = Validate(d, []criteria.Code{code(t, "P1")})
	assert.False(t, res.OK)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "unexpected criterion codes: M1")
}

func TestValidate_DuplicateCheck(t *testing.T) {
	d := validDecision(t)
	d.Checks = append(d.Checks, d.Checks[0])
	res := Validate(d, requiredSet(t))
	assert.False(t, res.OK)
	assert.Contains(t, res.Reasons, "duplicate criterion check for P1")
}

func TestValidate_ConfidenceBounds(t *testing.T) {
	d := validDecision(t)
	d.Confidence = 1.2
	d.Checks[1].Confidence = -0.1
	res := Validate(d, requiredSet(t))

	assert.False(t, res.OK)
	assert.Len(t, res.Reasons, 2)
}

func TestValidate_BadGradeWord(t *testing.T) {
	d := validDecision(t)
	d.OverallGrade = "EXCELLENT"
	res := Validate(d, requiredSet(t))
	assert.False(t, res.OK)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "not an allowed grade word")
}

func TestValidate_EvidencePageAndContent(t *testing.T) {
	d := validDecision(t)
	d.Checks[0].Evidence = []Evidence{
		{Page: 0, Quote: "quoted"},
		{Page: 2},
	}
	res := Validate(d, requiredSet(t))
	assert.False(t, res.OK)
	// non-positive page + empty evidence item
	assert.Len(t, res.Reasons, 2)
}

func TestValidate_CollectsAllReasons(t *testing.T) {
	d := validDecision(t)
	d.OverallGrade = "WRONG"
	d.Confidence = 2
	d.Checks[0].Evidence = nil
	res := Validate(d, []criteria.Code{code(t, "P1"), code(t, "M1"), code(t, "D1")})

	assert.False(t, res.OK)
	assert.GreaterOrEqual(t, len(res.Reasons), 4)
}
