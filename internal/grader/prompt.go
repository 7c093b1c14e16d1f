package grader

import (
	"strings"

	"github.com/assessly/docgrader/internal/criteria"
)

const maxSubmissionChars = 24000

// BuildSystemPrompt states the grading contract: cover exactly the required
// codes, cite evidence for every ACHIEVED, and return schema-conformant JSON.
func BuildSystemPrompt(req Request) string {
	parts := []string{
		"You are an assessor grading a student submission against an assignment brief.",
		"Return ONLY JSON that matches the provided JSON Schema.",
		"Produce exactly one check per required criterion code: " + strings.Join(criteria.Strings(req.RequiredCodes), ", ") + ". No other codes.",
		"A check may only be ACHIEVED when you can cite evidence from the submission: a page number with either a short verbatim quote or a description of a figure or table.",
		"If the evidence is ambiguous, use UNCLEAR rather than guessing.",
		"The overall grade word must be one of REFER, PASS, MERIT, DISTINCTION.",
		"Never output null. If an optional field has no value, omit it.",
	}
	if req.UnitTitle != "" {
		parts = append(parts, "Unit: "+req.UnitTitle+".")
	}
	if req.ExtractionConfidence > 0 && req.ExtractionConfidence < 0.7 {
		parts = append(parts, "The submission text was extracted with low confidence; treat garbled passages charitably and prefer UNCLEAR over NOT_ACHIEVED when the text itself is at fault.")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt lays out the brief, the formula list, and the (possibly
// truncated) submission text.
func BuildUserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Assignment brief:\n")
	b.WriteString(req.BriefText)
	if len(req.Formulas) > 0 {
		b.WriteString("\n\nFormulas referenced by the brief:\n")
		for _, eq := range req.Formulas {
			b.WriteString(eq.ID)
			b.WriteString(": ")
			if eq.Normalized != "" {
				b.WriteString(eq.Normalized)
			} else {
				b.WriteString(eq.Raw)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\nSubmission text")
	text := req.SubmissionText
	if len(text) > maxSubmissionChars {
		text = text[:maxSubmissionChars]
		b.WriteString(" (truncated)")
	}
	b.WriteString(":\n")
	b.WriteString(text)
	return b.String()
}
