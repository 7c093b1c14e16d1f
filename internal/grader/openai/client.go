package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/assessly/docgrader/internal/brief"
	"github.com/assessly/docgrader/internal/decision"
	"github.com/assessly/docgrader/internal/grader"
)

// GenerateDecision implements grader.DecisionGenerator over chat/completions.
// Schema validation is strict; with SanitizeOnMismatch the payload is
// normalized once and re-validated before giving up.
func (c *Client) GenerateDecision(ctx context.Context, req grader.Request) (decision.Decision, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("grader.decision.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"brief_len", len(req.BriefText),
		"submission_len", len(req.SubmissionText),
		"required_codes", len(req.RequiredCodes),
		"extraction_confidence", req.ExtractionConfidence,
	)

	schema := decision.BuildDecisionJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": grader.BuildSystemPrompt(req)},
			{"role": "user", "content": grader.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	content, err := c.chat(ctx, body)
	if err != nil {
		c.log.Error("grader.decision.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return decision.Decision{}, nil, err
	}
	rawContent := []byte(content)

	if err := decision.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		if !c.cfg.SanitizeOnMismatch {
			c.log.Error("grader.decision.schema_validation_failed",
				"req_id", rid, "error", err, "content", content,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return decision.Decision{}, rawContent, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, dropped, sErr := decision.NormalizeAndSanitizeJSON(rawContent, c.log)
		if sErr != nil {
			c.log.Error("grader.decision.sanitize_failed",
				"req_id", rid, "error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return decision.Decision{}, rawContent, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := decision.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			c.log.Error("grader.decision.schema_validation_failed",
				"req_id", rid, "error", vErr, "content", string(cleaned),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return decision.Decision{}, cleaned, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.log.Warn("grader.decision.sanitize_applied",
			"req_id", rid, "dropped", dropped,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		rawContent = cleaned
	}

	out, err := decision.Decode(rawContent)
	if err != nil {
		c.log.Error("grader.decision.decode_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return decision.Decision{}, rawContent, fmt.Errorf("decode decision: %w", err)
	}

	c.log.Info("grader.decision.ok",
		"req_id", rid,
		"grade", out.OverallGrade,
		"checks", len(out.Checks),
		"confidence", out.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

// Equations below this confidence stay flagged for human review.
const equationReviewBar = 0.8

// RecognizeEquations implements grader.EquationRecognizer. It sends the raw
// token text for each equation and merges the model's readings back by ID.
func (c *Client) RecognizeEquations(ctx context.Context, eqs []brief.Equation) ([]brief.Equation, error) {
	if len(eqs) == 0 {
		return eqs, nil
	}
	rid := uuid.New().String()
	start := time.Now()

	type item struct {
		ID  string `json:"id"`
		Raw string `json:"raw"`
	}
	items := make([]item, len(eqs))
	for i, eq := range eqs {
		items[i] = item{ID: eq.ID, Raw: eq.Raw}
	}

	c.log.Info("grader.equations.start", "req_id", rid, "count", len(eqs))

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": "You read mathematical expressions recovered from scanned documents. " +
				"For each input item return its id, a cleaned plain-text reading under \"normalized\", " +
				"and your confidence 0..1 under \"confidence\". " +
				"Return ONLY JSON of the form {\"equations\": [{\"id\", \"normalized\", \"confidence\"}]}."},
			{"role": "user", "content": mustJSON(map[string]any{"equations": items})},
		},
	}

	content, err := c.chat(ctx, body)
	if err != nil {
		c.log.Error("grader.equations.http_error", "req_id", rid, "error", err)
		return eqs, err
	}

	var parsed struct {
		Equations []struct {
			ID         string  `json:"id"`
			Normalized string  `json:"normalized"`
			Confidence float64 `json:"confidence"`
		} `json:"equations"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		c.log.Error("grader.equations.decode_failed", "req_id", rid, "error", err)
		return eqs, fmt.Errorf("decode equations response: %w", err)
	}

	byID := make(map[string]int, len(eqs))
	for i, eq := range eqs {
		byID[eq.ID] = i
	}
	updated := 0
	for _, p := range parsed.Equations {
		i, ok := byID[p.ID]
		if !ok || strings.TrimSpace(p.Normalized) == "" {
			continue
		}
		conf := p.Confidence
		eqs[i].Normalized = p.Normalized
		eqs[i].Confidence = &conf
		eqs[i].NeedsReview = conf < equationReviewBar
		updated++
	}

	c.log.Info("grader.equations.ok",
		"req_id", rid,
		"updated", updated,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return eqs, nil
}

// chat posts a chat/completions body and returns the first choice's content.
func (c *Client) chat(ctx context.Context, body map[string]any) (string, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := grader.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat response")
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
