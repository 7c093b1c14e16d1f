package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/brief"
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/grader"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// chatServer returns an OpenAI-shaped chat/completions endpoint whose single
// choice carries content.
func chatServer(t *testing.T, content string, gotBody *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if gotBody != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(gotBody))
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func testClient(baseURL string) *Client {
	return NewClient(Config{
		APIKey:             "test-key",
		BaseURL:            baseURL,
		Model:              "test-model",
		SanitizeOnMismatch: true,
	}, quietLogger())
}

func requiredCodes(t *testing.T, raws ...string) []criteria.Code {
	t.Helper()
	out := make([]criteria.Code, 0, len(raws))
	for _, r := range raws {
		c, ok := criteria.Normalize(r)
		require.True(t, ok, r)
		out = append(out, c)
	}
	return out
}

func TestGenerateDecision_CleanPayload(t *testing.T) {
	payload := `{
		"overall_grade": "MERIT",
		"resubmission_required": false,
		"confidence": 0.84,
		"criterion_checks": [
			{"code": "P1", "decision": "ACHIEVED", "confidence": 0.9,
			 "evidence": [{"page": 2, "quote": "the measured gain was 4.2"}]},
			{"code": "M1", "decision": "ACHIEVED", "confidence": 0.8,
			 "evidence": [{"page": 5, "visual_description": "bode plot with labelled axes"}]}
		]
	}`
	var body map[string]any
	srv := chatServer(t, payload, &body)
	defer srv.Close()

	c := testClient(srv.URL)
	dec, raw, err := c.GenerateDecision(context.Background(), grader.Request{
		BriefText:      "Task 1. Measure the gain.",
		SubmissionText: "The measured gain was 4.2.",
		RequiredCodes:  requiredCodes(t, "P1", "M1"),
	})

	require.NoError(t, err)
	assert.Equal(t, constants.GradeMerit, dec.OverallGrade)
	assert.Len(t, dec.Checks, 2)
	assert.JSONEq(t, payload, string(raw))

	// request carried the schema and the required codes
	assert.Equal(t, "test-model", body["model"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 3)
}

func TestGenerateDecision_SanitizesMessyPayload(t *testing.T) {
	payload := `{
		"grade": "pass",
		"confidence": "0.7",
		"checks": [
			{"criterion": "p1", "decision": "met", "confidence": 0.9,
			 "evidence": [{"page": "1", "quote": "ohm's law applied"}]}
		]
	}`
	srv := chatServer(t, payload, nil)
	defer srv.Close()

	c := testClient(srv.URL)
	dec, _, err := c.GenerateDecision(context.Background(), grader.Request{
		RequiredCodes: requiredCodes(t, "P1"),
	})

	require.NoError(t, err)
	assert.Equal(t, constants.GradePass, dec.OverallGrade)
	require.Len(t, dec.Checks, 1)
	assert.Equal(t, constants.CheckAchieved, dec.Checks[0].Decision)
}

func TestGenerateDecision_StrictModeRejectsMessyPayload(t *testing.T) {
	srv := chatServer(t, `{"grade": "pass"}`, nil)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, SanitizeOnMismatch: false}, quietLogger())
	_, _, err := c.GenerateDecision(context.Background(), grader.Request{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestRecognizeEquations_MergesByID(t *testing.T) {
	payload := `{"equations": [
		{"id": "eq-1", "normalized": "V = I * R", "confidence": 0.95},
		{"id": "eq-2", "normalized": "P = V * I", "confidence": 0.5},
		{"id": "eq-unknown", "normalized": "ignored", "confidence": 1.0}
	]}`
	srv := chatServer(t, payload, nil)
	defer srv.Close()

	c := testClient(srv.URL)
	in := []brief.Equation{
		{ID: "eq-1", Raw: "V=lR", NeedsReview: true},
		{ID: "eq-2", Raw: "P=V1"},
	}

	out, err := c.RecognizeEquations(context.Background(), in)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "V = I * R", out[0].Normalized)
	require.NotNil(t, out[0].Confidence)
	assert.False(t, out[0].NeedsReview)
	assert.Equal(t, "P = V * I", out[1].Normalized)
	assert.True(t, out[1].NeedsReview)
}

func TestRecognizeEquations_EmptyInputSkipsCall(t *testing.T) {
	c := testClient("http://127.0.0.1:0")
	out, err := c.RecognizeEquations(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
