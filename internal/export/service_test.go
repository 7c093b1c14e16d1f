package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/decision"
	"github.com/assessly/docgrader/internal/feedback"
	"github.com/assessly/docgrader/internal/pipeline"
	"github.com/assessly/docgrader/internal/readiness"
	"github.com/assessly/docgrader/internal/scoring"
)

func sampleReport(t *testing.T) pipeline.Report {
	t.Helper()
	p1, ok := criteria.Normalize("P1")
	require.True(t, ok)

	dec := &decision.Decision{
		OverallGrade: constants.GradePass,
		Confidence:   0.8,
		Checks: []decision.CriterionCheck{
			{
				Code:       p1,
				RawCode:    "P1",
				Decision:   constants.CheckAchieved,
				Confidence: 0.9,
				Rationale:  "voltage drop computed correctly",
				Evidence:   []decision.Evidence{{Page: 3, Quote: "V = 4.2"}},
			},
		},
	}
	return pipeline.Report{
		RunID:         "run-1",
		UnitTitle:     "Electrical Principles",
		RequiredCodes: []criteria.Code{p1},
		Gate:          readiness.Readiness{OK: true, Blockers: []string{}},
		State:         constants.AutoReady,
		Decision:      dec,
		Confidence:    &scoring.Result{FinalConfidence: 0.81},
		Feedback: &feedback.Result{
			Text:         "first line\nsecond line was rewritten",
			Changed:      true,
			ChangedLines: []int{2},
		},
	}
}

func TestReportXLSX(t *testing.T) {
	svc := NewService(nil)

	raw, err := svc.ReportXLSX([]pipeline.Report{sampleReport(t)})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{sheetSummary, sheetCriteria, sheetLint}, f.GetSheetList())

	runID, err := f.GetCellValue(sheetSummary, "A2")
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)
	state, _ := f.GetCellValue(sheetSummary, "C2")
	assert.Equal(t, "AUTO_READY", state)
	grade, _ := f.GetCellValue(sheetSummary, "G2")
	assert.Equal(t, "PASS", grade)

	code, _ := f.GetCellValue(sheetCriteria, "B2")
	assert.Equal(t, "P1", code)
	page, _ := f.GetCellValue(sheetCriteria, "F2")
	assert.Equal(t, "3", page)

	lintLine, _ := f.GetCellValue(sheetLint, "B2")
	assert.Equal(t, "2", lintLine)
	lintText, _ := f.GetCellValue(sheetLint, "C2")
	assert.Equal(t, "second line was rewritten", lintText)
}

func TestReportXLSX_EmptyInput(t *testing.T) {
	svc := NewService(nil)
	raw, err := svc.ReportXLSX(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}
