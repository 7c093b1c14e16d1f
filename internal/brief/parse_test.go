package brief

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/tables"
)

const sampleBrief = "Unit 5 Assignment Brief\n" +
	"Covers P1, P2 and M1.\n" +
	"\fTask 1: Series circuits\n" +
	"Intro paragraph for task one.\n" +
	"a) Measure the resistance of each component.\n" +
	"b) Record your readings.\n" +
	"R (ohm)  V (volt)  I (amp)\n" +
	"10  5.0  0.5\n" +
	"22  5.0  0.23\n" +
	"47  5.0  0.11\n" +
	"\fTask 2: Analysis\n" +
	"Use the power formula to calculate dissipation.\n" +
	"a) Show your working with [[EQ:eq-1]].\n" +
	"i. for the first resistor\n" +
	"ii. for the second resistor\n" +
	"b) Comment on the results.\n"

func TestParse_TasksAndParts(t *testing.T) {
	doc := Parse(sampleBrief, constants.DocTypeBrief, []Equation{{ID: "eq-1", Raw: "P = V * I"}})

	require.Len(t, doc.Tasks, 2)

	t1 := doc.Tasks[0]
	assert.Equal(t, 1, t1.N)
	assert.Equal(t, "Series circuits", t1.Title)
	assert.Contains(t, t1.Text, "Intro paragraph")
	require.Len(t, t1.Parts, 2)
	assert.Equal(t, "a", t1.Parts[0].Key)
	assert.Equal(t, "b", t1.Parts[1].Key)
	assert.Contains(t, t1.Parts[0].Text, "Measure the resistance")

	t2 := doc.Tasks[1]
	assert.Equal(t, 2, t2.N)
	keys := make([]string, 0, len(t2.Parts))
	for _, p := range t2.Parts {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"a", "a.i", "a.ii", "b"}, keys)
}

func TestParse_PageSpans(t *testing.T) {
	doc := Parse(sampleBrief, constants.DocTypeBrief, nil)
	require.Len(t, doc.Tasks, 2)

	assert.Equal(t, []int{2}, doc.Tasks[0].Pages)
	assert.Equal(t, []int{3}, doc.Tasks[1].Pages)
	for _, task := range doc.Tasks {
		for i := 1; i < len(task.Pages); i++ {
			assert.GreaterOrEqual(t, task.Pages[i], task.Pages[i-1])
		}
	}
}

func TestParse_TableAttachment(t *testing.T) {
	doc := Parse(sampleBrief, constants.DocTypeBrief, nil)
	require.Len(t, doc.Tasks, 2)

	require.Len(t, doc.Tasks[0].Tables, 1)
	tb := doc.Tasks[0].Tables[0]
	assert.Equal(t, tables.KindStructured, tb.Kind)
	assert.Equal(t, []string{"R (ohm)", "V (volt)", "I (amp)"}, tb.Headers)
	assert.Empty(t, doc.Tasks[1].Tables)
}

func TestParse_EquationResolution(t *testing.T) {
	eq := Equation{ID: "eq-1", Raw: "P = V * I", Normalized: "P=V*I"}
	doc := Parse(sampleBrief, constants.DocTypeBrief, []Equation{eq})

	require.Len(t, doc.Tasks, 2)
	require.Len(t, doc.Tasks[1].Formulas, 1)
	assert.Equal(t, "eq-1", doc.Tasks[1].Formulas[0].ID)
	assert.Equal(t, []string{"eq-1"}, doc.Tasks[1].Parts[0].EqRefs)
}

func TestParse_OrphanEquationTokenWarns(t *testing.T) {
	doc := Parse(sampleBrief, constants.DocTypeBrief, nil)
	require.Len(t, doc.Tasks, 2)
	assert.Empty(t, doc.Tasks[1].Formulas)

	found := false
	for _, w := range doc.Warnings {
		if w == "orphan equation token [[EQ:eq-1]] in task 2" {
			found = true
		}
	}
	assert.True(t, found, "expected orphan token warning, got %v", doc.Warnings)
}

func TestParse_DetectedCodes(t *testing.T) {
	doc := Parse(sampleBrief, constants.DocTypeBrief, nil)
	assert.Equal(t, []string{"P1", "P2", "M1"}, criteria.Strings(doc.DetectedCodes()))
}

func TestParse_NoPageBreaksWarns(t *testing.T) {
	doc := Parse("Task 1: only task\nsome text", constants.DocTypeBrief, nil)
	require.Len(t, doc.Tasks, 1)
	assert.Empty(t, doc.Tasks[0].Pages)
	assert.Contains(t, doc.Warnings, WarnNoPageBreaks)
}

func TestParse_NoTaskMarkers(t *testing.T) {
	doc := Parse("just prose\nwith no structure at all\f more prose", constants.DocTypeRaw, nil)
	assert.Empty(t, doc.Tasks)
	assert.Contains(t, doc.Warnings, WarnNoTaskMarkers)
}

func TestParse_EmptyInput(t *testing.T) {
	doc := Parse("   \n ", constants.DocTypeBrief, nil)
	assert.NotNil(t, doc.Tasks)
	assert.Empty(t, doc.Tasks)
	assert.Contains(t, doc.Warnings, WarnEmptyInput)
}

func TestParse_DuplicatePartKeyFoldsIntoText(t *testing.T) {
	text := "Task 1. Dup parts\n" +
		"a) first part\n" +
		"a) shadowing part\n"
	doc := Parse(text, constants.DocTypeBrief, nil)
	require.Len(t, doc.Tasks, 1)
	require.Len(t, doc.Tasks[0].Parts, 1)
	assert.Contains(t, doc.Tasks[0].Parts[0].Text, "shadowing part")
	assert.Contains(t, doc.Warnings, "duplicate part key 1.a")
}

func TestParse_TableRefTokens(t *testing.T) {
	text := "Task 1: With table token\n" +
		"a) Complete [TABLE: tbl-3] using your readings.\n"
	doc := Parse(text, constants.DocTypeBrief, nil)
	require.Len(t, doc.Tasks, 1)
	require.Len(t, doc.Tasks[0].Parts, 1)
	assert.Equal(t, []string{"tbl-3"}, doc.Tasks[0].Parts[0].TableRefs)
}

func TestParse_QuestionMarkerVariants(t *testing.T) {
	for _, line := range []string{"Question 3 Heat transfer", "Q3. Heat transfer", "TASK 3 - Heat transfer"} {
		doc := Parse(line+"\nbody text", constants.DocTypeBrief, nil)
		require.Len(t, doc.Tasks, 1, line)
		assert.Equal(t, 3, doc.Tasks[0].N, line)
	}
}
