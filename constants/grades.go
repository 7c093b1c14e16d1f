package constants

import "strings"

// GradeWord is the overall grade attached to a decision.
type GradeWord string

const (
	GradeRefer       GradeWord = "REFER"
	GradePass        GradeWord = "PASS"
	GradeMerit       GradeWord = "MERIT"
	GradeDistinction GradeWord = "DISTINCTION"
)

var allGradeWords = []GradeWord{GradeRefer, GradePass, GradeMerit, GradeDistinction}

// GradeWords returns the allowed grade words as plain strings.
func GradeWords() []string {
	out := make([]string, len(allGradeWords))
	for i, g := range allGradeWords {
		out[i] = string(g)
	}
	return out
}

// GradeRank orders grade words ascending (REFER=0 .. DISTINCTION=3).
// Unknown words rank below REFER.
func GradeRank(g GradeWord) int {
	for i, w := range allGradeWords {
		if w == g {
			return i
		}
	}
	return -1
}

// CanonicalGradeWord uppercases and maps common synonyms; ok=false when the
// input is not a recognized grade word.
func CanonicalGradeWord(input string) (GradeWord, bool) {
	s := strings.ToUpper(strings.TrimSpace(input))
	switch s {
	case "REFER", "REFERRAL", "FAIL":
		return GradeRefer, true
	case "PASS":
		return GradePass, true
	case "MERIT":
		return GradeMerit, true
	case "DISTINCTION":
		return GradeDistinction, true
	}
	return "", false
}

// CheckDecision is the per-criterion outcome inside a grade decision.
type CheckDecision string

const (
	CheckAchieved    CheckDecision = "ACHIEVED"
	CheckNotAchieved CheckDecision = "NOT_ACHIEVED"
	CheckUnclear     CheckDecision = "UNCLEAR"
)

// ValidCheckDecision reports whether s is one of the three allowed outcomes.
func ValidCheckDecision(s string) bool {
	switch CheckDecision(s) {
	case CheckAchieved, CheckNotAchieved, CheckUnclear:
		return true
	}
	return false
}
