package decision

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
)

// NormalizeAndSanitizeJSON cleans a raw grader payload before schema
// validation and typed decode:
//   - renames known synonym keys to the canonical schema
//   - canonicalizes the grade word and criterion codes
//   - coerces numeric-looking confidence strings to numbers
//   - drops null/empty optionals and unknown keys
//
// The dropped/renamed audit list is returned so a rejected payload can be
// explained.
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) synonym keys from observed grader outputs
	rename("grade", "overall_grade")
	rename("overall_grade_word", "overall_grade")
	rename("resubmission", "resubmission_required")
	rename("checks", "criterion_checks")
	rename("criteria", "criterion_checks")

	// 2) canonical grade word
	if v, ok := m["overall_grade"].(string); ok {
		if g, valid := constants.CanonicalGradeWord(v); valid {
			m["overall_grade"] = string(g)
		} else {
			m["overall_grade"] = strings.ToUpper(strings.TrimSpace(v))
		}
	}

	// 3) per-check cleanup
	if arr, ok := m["criterion_checks"].([]any); ok {
		cleaned := make([]any, 0, len(arr))
		for i, it := range arr {
			cm, ok := it.(map[string]any)
			if !ok {
				dropped = append(dropped, fmt.Sprintf("criterion_checks[%d](type)", i))
				continue
			}
			sanitizeCheck(cm, i, &dropped)
			cleaned = append(cleaned, cm)
		}
		m["criterion_checks"] = cleaned
	}

	// 4) coerce confidence, default resubmission flag
	coerceConfidence(m, "confidence", "", &dropped)
	if _, ok := m["resubmission_required"].(bool); !ok {
		if _, present := m["resubmission_required"]; present {
			dropped = append(dropped, "resubmission_required(type)")
		}
		m["resubmission_required"] = false
	}

	// 5) remove unknown top-level keys
	allowed := map[string]struct{}{
		"overall_grade": {}, "resubmission_required": {}, "confidence": {}, "criterion_checks": {},
	}
	for k := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("decision.sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func sanitizeCheck(cm map[string]any, idx int, dropped *[]string) {
	tag := fmt.Sprintf("criterion_checks[%d]", idx)

	if v, ok := cm["criterion"]; ok {
		if _, exists := cm["code"]; !exists {
			cm["code"] = v
		}
		delete(cm, "criterion")
		*dropped = append(*dropped, tag+".criterion->code")
	}
	if v, ok := cm["code"].(string); ok {
		if c, valid := criteria.Normalize(v); valid {
			cm["code"] = c.String()
		}
	}
	if v, ok := cm["decision"].(string); ok {
		d := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v), " ", "_"))
		if d == "NOT_MET" || d == "MISSED" {
			d = string(constants.CheckNotAchieved)
		}
		if d == "MET" || d == "PASSED" {
			d = string(constants.CheckAchieved)
		}
		cm["decision"] = d
	}
	coerceConfidence(cm, "confidence", tag+".", dropped)

	if arr, ok := cm["evidence"].([]any); ok {
		cleaned := make([]any, 0, len(arr))
		for j, it := range arr {
			em, ok := it.(map[string]any)
			if !ok {
				*dropped = append(*dropped, fmt.Sprintf("%s.evidence[%d](type)", tag, j))
				continue
			}
			// pages sometimes arrive as strings
			if s, ok := em["page"].(string); ok {
				var n int
				if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n); err == nil {
					em["page"] = n
				} else {
					*dropped = append(*dropped, fmt.Sprintf("%s.evidence[%d].page(type)", tag, j))
				}
			}
			for _, k := range []string{"quote", "visual_description"} {
				if s, ok := em[k].(string); ok && strings.TrimSpace(s) == "" {
					delete(em, k)
					*dropped = append(*dropped, fmt.Sprintf("%s.evidence[%d].%s(empty)", tag, j, k))
				}
			}
			allowed := map[string]struct{}{"page": {}, "quote": {}, "visual_description": {}}
			for k := range em {
				if _, ok := allowed[k]; !ok {
					delete(em, k)
					*dropped = append(*dropped, fmt.Sprintf("%s.evidence[%d].%s(unknown)", tag, j, k))
				}
			}
			cleaned = append(cleaned, em)
		}
		cm["evidence"] = cleaned
	} else if _, present := cm["evidence"]; present {
		delete(cm, "evidence")
		*dropped = append(*dropped, tag+".evidence(type)")
	}

	allowed := map[string]struct{}{
		"code": {}, "decision": {}, "rationale": {}, "confidence": {}, "evidence": {},
	}
	for k := range cm {
		if _, ok := allowed[k]; !ok {
			delete(cm, k)
			*dropped = append(*dropped, tag+"."+k+"(unknown)")
		}
	}
}

// coerceConfidence normalizes a confidence field: strings parse to numbers,
// null and junk drop.
func coerceConfidence(m map[string]any, key, tag string, dropped *[]string) {
	v, ok := m[key]
	if !ok {
		return
	}
	switch t := v.(type) {
	case float64:
		// already a number
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(t), "%g", &f); err == nil {
			m[key] = f
			*dropped = append(*dropped, tag+key+"(coerced)")
		} else {
			delete(m, key)
			*dropped = append(*dropped, tag+key+"(unparseable)")
		}
	case nil:
		delete(m, key)
		*dropped = append(*dropped, tag+key+"(null)")
	default:
		delete(m, key)
		*dropped = append(*dropped, tag+key+"(type)")
	}
}

// Decode turns sanitized, schema-valid JSON into a typed Decision, binding
// canonical criterion codes on each check. Unparseable codes are reported,
// not silently dropped.
func Decode(raw []byte) (Decision, error) {
	var d Decision
	if err := json.Unmarshal(raw, &d); err != nil {
		return Decision{}, fmt.Errorf("decode decision: %w", err)
	}
	for i := range d.Checks {
		c, ok := criteria.Normalize(d.Checks[i].RawCode)
		if !ok {
			return Decision{}, fmt.Errorf("decode decision: bad criterion code %q", d.Checks[i].RawCode)
		}
		d.Checks[i].Code = c
	}
	return d, nil
}
