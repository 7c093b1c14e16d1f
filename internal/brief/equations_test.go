package brief

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(f float64) *float64 { return &f }

func TestSelectFallbackCandidates_Disabled(t *testing.T) {
	eqs := []Equation{
		{ID: "e1"},
		{ID: "e2", Confidence: fptr(0.1), NeedsReview: true},
	}
	got := SelectFallbackCandidates(eqs, FallbackPolicy{Enabled: false, MaxCandidates: 5, LowConfidence: 0.6})
	assert.Empty(t, got)
}

func TestSelectFallbackCandidates_Eligibility(t *testing.T) {
	pol := FallbackPolicy{Enabled: true, MaxCandidates: 10, LowConfidence: 0.6}
	eqs := []Equation{
		{ID: "nil-conf"},                                            // no confidence at all: included
		{ID: "low-review", Confidence: fptr(0.3), NeedsReview: true}, // low and flagged: included
		{ID: "low-no-review", Confidence: fptr(0.3)},                // low but not flagged: excluded
		{ID: "high-review", Confidence: fptr(0.9), NeedsReview: true}, // confident: excluded
		{ID: "high", Confidence: fptr(0.95)},                        // confident: excluded
	}
	got := SelectFallbackCandidates(eqs, pol)
	require.Len(t, got, 2)
	assert.Equal(t, "nil-conf", got[0].ID)
	assert.Equal(t, "low-review", got[1].ID)
}

func TestSelectFallbackCandidates_Cap(t *testing.T) {
	pol := FallbackPolicy{Enabled: true, MaxCandidates: 3, LowConfidence: 0.6}
	var eqs []Equation
	for i := 0; i < 10; i++ {
		eqs = append(eqs, Equation{ID: "e"})
	}
	got := SelectFallbackCandidates(eqs, pol)
	assert.Len(t, got, 3)
}

func TestSelectFallbackCandidates_ZeroCap(t *testing.T) {
	got := SelectFallbackCandidates([]Equation{{ID: "e"}}, FallbackPolicy{Enabled: true, MaxCandidates: 0})
	assert.Empty(t, got)
}
