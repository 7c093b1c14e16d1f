// Package pipeline coordinates one submission end to end: extract both
// documents, gate on extraction quality, derive the automation state, and
// only then grade, validate, score, and lint.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/brief"
	"github.com/assessly/docgrader/internal/common"
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/decision"
	"github.com/assessly/docgrader/internal/extract"
	"github.com/assessly/docgrader/internal/feedback"
	"github.com/assessly/docgrader/internal/grader"
	"github.com/assessly/docgrader/internal/policy"
	"github.com/assessly/docgrader/internal/readiness"
	"github.com/assessly/docgrader/internal/scoring"
	"github.com/assessly/docgrader/internal/textnorm"
)

// Processor wires the stages together. Equations is optional; everything
// else is required.
type Processor struct {
	Logger    *slog.Logger
	Extractor extract.TextExtractor
	Generator grader.DecisionGenerator
	Equations grader.EquationRecognizer
	Policy    policy.Policy
}

func NewProcessor(logger *slog.Logger, ex extract.TextExtractor, gen grader.DecisionGenerator, eqs grader.EquationRecognizer, pol policy.Policy) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extractor: ex, Generator: gen, Equations: eqs, Policy: pol}
}

// Request identifies one brief/submission pair plus its record linkage.
type Request struct {
	UnitTitle      string
	BriefPath      string
	SubmissionPath string

	// Unit is the published criteria map, when known. Detected codes are
	// expanded through it so implied higher-band codes are graded too.
	Unit []criteria.OutcomeCriteria

	Facts readiness.Facts
}

// Run executes the full flow. A failed gate or a non-AUTO_READY state is not
// an error: the report says how far the run got and why it stopped. Errors
// are reserved for stage failures (extraction or the grader collaborator).
func (p *Processor) Run(ctx context.Context, req Request) (Report, error) {
	start := time.Now()
	rep := Report{RunID: uuid.New().String(), UnitTitle: req.UnitTitle}
	ctx = common.WithRunID(ctx, rep.RunID)
	log := p.Logger.With("run_id", rep.RunID)

	// 1) brief
	doc, err := p.extractBrief(ctx, log, req.BriefPath)
	if err != nil {
		return rep, err
	}
	rep.Brief = doc
	rep.RequiredCodes = criteria.InferMapping(req.Unit, doc.DetectedCodes())
	log.Info("processor.brief.ok",
		"tasks", len(doc.Tasks),
		"required_codes", len(rep.RequiredCodes),
		"warnings", len(doc.Warnings),
	)

	// 2) submission extraction + readiness gate
	sub, err := p.Extractor.Extract(ctx, req.SubmissionPath, constants.DocTypeRaw)
	if err != nil {
		log.Error("processor.extract.failed", "path", req.SubmissionPath, "err", err)
		return rep, fmt.Errorf("extract submission: %w", err)
	}
	sub.Text = textnorm.Normalize(sub.Text)
	rep.Extraction = sub

	rep.Gate = readiness.Evaluate(readiness.Input{
		Status:                  sub.Status,
		Text:                    sub.Text,
		PageCount:               sub.PageCount,
		Confidence:              sub.Confidence,
		CoverMetadataReady:      sub.CoverMetadataReady,
		CoverMetadataConfidence: sub.CoverMetadataConfidence,
		HasPageBreaks:           textnorm.HasPageBreaks(sub.Text),
	}, p.Policy.Readiness)

	quality := readiness.Quality{Gate: rep.Gate, Route: constants.RouteAuto, Confidence: sub.Confidence}
	rep.State = readiness.DeriveState(quality, req.Facts, p.Policy.Automation)
	log.Info("processor.readiness.ok",
		"gate_ok", rep.Gate.OK,
		"blockers", len(rep.Gate.Blockers),
		"state", rep.State,
	)
	if rep.State != constants.AutoReady {
		rep.Duration = time.Since(start)
		return rep, nil
	}

	// 3) grade
	dec, raw, err := p.Generator.GenerateDecision(ctx, grader.Request{
		UnitTitle:            req.UnitTitle,
		BriefText:            briefText(doc),
		SubmissionText:       sub.Text,
		RequiredCodes:        rep.RequiredCodes,
		Formulas:             briefFormulas(doc),
		ExtractionConfidence: sub.Confidence,
	})
	if err != nil {
		log.Error("processor.grade.failed", "err", err)
		rep.Duration = time.Since(start)
		return rep, fmt.Errorf("generate decision: %w", err)
	}
	rep.Decision = &dec
	rep.RawDecision = raw

	val := decision.Validate(dec, rep.RequiredCodes)
	rep.Validation = &val
	if !val.OK {
		log.Warn("processor.validate.rejected", "reasons", val.Reasons)
		rep.State = constants.NeedsHuman
	}

	// 4) score, then re-derive the state with the blended confidence
	score := scoring.Score(signalsFrom(dec, rep.RequiredCodes, sub), p.Policy.Scoring)
	rep.Confidence = &score
	if rep.State == constants.AutoReady {
		quality.Confidence = score.FinalConfidence
		rep.State = readiness.DeriveState(quality, req.Facts, p.Policy.Automation)
	}
	log.Info("processor.score.ok",
		"final_confidence", score.FinalConfidence,
		"caps", len(score.CapsApplied),
		"state", rep.State,
	)

	// 5) feedback lint over the check rationales
	fb := feedback.Sanitize(feedbackText(dec), dec.Checks, dec.OverallGrade, sub.Text, p.Policy.Feedback)
	rep.Feedback = &fb
	if fb.Changed {
		log.Info("processor.feedback.linted", "changed_lines", fb.ChangedLines)
	}

	rep.Duration = time.Since(start)
	log.Info("processor.run.ok",
		"state", rep.State,
		"grade", dec.OverallGrade,
		"elapsed_ms", rep.Duration.Milliseconds(),
	)
	return rep, nil
}

// extractBrief extracts and parses the brief document, running the bounded
// equation re-recognition fallback first when it is enabled and wired.
func (p *Processor) extractBrief(ctx context.Context, log *slog.Logger, path string) (brief.Document, error) {
	res, err := p.Extractor.Extract(ctx, path, constants.DocTypeBrief)
	if err != nil {
		log.Error("processor.extract.failed", "path", path, "err", err)
		return brief.Document{}, fmt.Errorf("extract brief: %w", err)
	}
	text := textnorm.Normalize(res.Text)

	eqs := res.Equations
	if p.Equations != nil {
		candidates := brief.SelectFallbackCandidates(eqs, brief.FallbackPolicy{
			Enabled:       p.Policy.Equations.FallbackEnabled,
			MaxCandidates: p.Policy.Equations.MaxFallbackCandidates,
			LowConfidence: p.Policy.Equations.LowConfidence,
		})
		if len(candidates) > 0 {
			improved, rerr := p.Equations.RecognizeEquations(ctx, candidates)
			if rerr != nil {
				// fallback is best effort; first-pass readings stand
				log.Warn("processor.equations.fallback_failed", "err", rerr)
			} else {
				eqs = mergeEquations(eqs, improved)
				log.Info("processor.equations.fallback_ok", "candidates", len(candidates))
			}
		}
	}

	return brief.Parse(text, constants.DocTypeBrief, eqs), nil
}

func mergeEquations(all, improved []brief.Equation) []brief.Equation {
	byID := make(map[string]brief.Equation, len(improved))
	for _, eq := range improved {
		byID[eq.ID] = eq
	}
	out := make([]brief.Equation, len(all))
	for i, eq := range all {
		if upd, ok := byID[eq.ID]; ok {
			out[i] = upd
		} else {
			out[i] = eq
		}
	}
	return out
}

func briefText(doc brief.Document) string {
	var b strings.Builder
	for _, t := range doc.Tasks {
		if t.Title != "" {
			fmt.Fprintf(&b, "Task %d. %s\n", t.N, t.Title)
		} else {
			fmt.Fprintf(&b, "Task %d.\n", t.N)
		}
		b.WriteString(t.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func briefFormulas(doc brief.Document) []brief.Equation {
	var out []brief.Equation
	for _, t := range doc.Tasks {
		out = append(out, t.Formulas...)
	}
	return out
}

// feedbackText renders the lintable feedback: one rationale line per check.
func feedbackText(dec decision.Decision) string {
	lines := make([]string, 0, len(dec.Checks))
	for _, c := range dec.Checks {
		if strings.TrimSpace(c.Rationale) == "" {
			continue
		}
		lines = append(lines, c.Code.String()+": "+c.Rationale)
	}
	return strings.Join(lines, "\n")
}

func signalsFrom(dec decision.Decision, required []criteria.Code, sub extract.Result) scoring.Signals {
	sig := scoring.Signals{
		ModelConfidence:      dec.Confidence,
		RequiredCodes:        required,
		CriteriaCount:        len(dec.Checks),
		ExtractionConfidence: sub.Confidence,
	}
	for _, c := range dec.Checks {
		sig.AssessedCodes = append(sig.AssessedCodes, c.Code)
		usable := 0
		for _, ev := range c.Evidence {
			if !ev.Empty() {
				usable++
			}
		}
		sig.EvidenceCount += usable
		if usable == 0 {
			sig.CriteriaWithoutEvidence++
		}
	}
	for _, w := range sub.Warnings {
		if strings.Contains(w, "modality missing") {
			sig.ModalityMissingCount++
		}
	}
	return sig
}
