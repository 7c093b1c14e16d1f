package extract

import (
	"regexp"

	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/textnorm"
)

var (
	reTaskMarker = regexp.MustCompile(`(?im)^\s*(?:task|question|q)\s*[.:]?\s*\d{1,2}\b`)
	reWordRun    = regexp.MustCompile(`[A-Za-z]{3,}`)
)

// HeuristicConfidence estimates extraction quality from decoded text
// characteristics when the backend reports none. Each signal adds a fixed
// amount; the result is clamped to [0,1].
func HeuristicConfidence(text string) float64 {
	if text == "" {
		return 0
	}
	score := 0.2 // base
	if reTaskMarker.MatchString(text) {
		score += 0.2
	}
	if len(criteria.ExtractFromText(text)) > 0 {
		score += 0.2
	}
	if textnorm.HasPageBreaks(text) {
		score += 0.1
	}
	if len(text) > 800 {
		score += 0.1
	}
	// garbled OCR tends to shred words; require a healthy word density
	if words := reWordRun.FindAllString(text, 200); len(words) >= 50 {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
