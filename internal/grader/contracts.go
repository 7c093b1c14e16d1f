package grader

import (
	"context"

	"github.com/assessly/docgrader/internal/brief"
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/decision"
)

// Request carries everything the model needs to grade one submission
// against one brief.
type Request struct {
	UnitTitle      string
	BriefText      string
	SubmissionText string

	// RequiredCodes is the exact set the returned decision must cover.
	RequiredCodes []criteria.Code

	// Formulas from the brief, included so the model can check working.
	Formulas []brief.Equation

	// ExtractionConfidence of the submission text, forwarded so the model
	// is told when the text may be unreliable.
	ExtractionConfidence float64
}

// DecisionGenerator is the interface the pipeline depends on. GenerateDecision
// returns the decoded decision plus the raw JSON it was decoded from.
type DecisionGenerator interface {
	GenerateDecision(ctx context.Context, req Request) (decision.Decision, []byte, error)
}

// EquationRecognizer re-reads equations whose first-pass recognition was
// low confidence. Implementations return the same slice with Normalized,
// Confidence and NeedsReview updated; IDs are never changed.
type EquationRecognizer interface {
	RecognizeEquations(ctx context.Context, eqs []brief.Equation) ([]brief.Equation, error)
}
