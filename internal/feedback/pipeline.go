// Package feedback rewrites generated feedback text so it never overclaims
// achievement, leaks template vocabulary, or judges the student rather than
// the work. The pipeline is an ordered list of independent, idempotent,
// per-line passes.
package feedback

import (
	"regexp"
	"strings"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/decision"
	"github.com/assessly/docgrader/internal/policy"
)

// Result reports the sanitized text and which lines were altered.
type Result struct {
	Text         string `json:"text"`
	Changed      bool   `json:"changed"`
	ChangedLines []int  `json:"changed_lines,omitempty"` // 1-based
}

// Machine-authored summary lines the pipeline must never touch. These stay
// byte-identical through any number of runs.
var deterministicLine = []*regexp.Regexp{
	regexp.MustCompile(`^Overall grade: `),
	regexp.MustCompile(`^Criteria achieved: `),
	regexp.MustCompile(`^Criteria not achieved: `),
	regexp.MustCompile(`^Resubmission required: `),
}

// Context is the read-only state shared by all passes for one run.
type Context struct {
	overall   constants.GradeWord
	decisions map[criteria.Code]constants.CheckDecision
	openBands map[criteria.Band]bool
	corpus    map[string]struct{}
	pol       policy.Feedback
}

// Pass is one pure line rewrite. Passes must exclude their own replacement
// text from their trigger set so the pipeline is idempotent.
type Pass struct {
	Name  string
	Apply func(ctx *Context, line string) string
}

// Passes returns the pipeline in its fixed order.
func Passes() []Pass {
	return []Pass{
		{Name: "leak_term", Apply: leakTermPass},
		{Name: "tone", Apply: tonePass},
		{Name: "person_judgement", Apply: personJudgementPass},
		{Name: "command_verb", Apply: commandVerbPass},
		{Name: "overclaim", Apply: overclaimPass},
	}
}

// Sanitize runs every pass over every line. sourceContext is the corpus of
// the submission's own citations; vocabulary found there is never stripped
// as leakage. Deterministic outcome lines pass through untouched.
func Sanitize(text string, checks []decision.CriterionCheck, overall constants.GradeWord, sourceContext string, pol policy.Feedback) Result {
	ctx := buildContext(checks, overall, sourceContext, pol)
	passes := Passes()

	lines := strings.Split(text, "\n")
	var changed []int
	for i, line := range lines {
		if isDeterministic(line) {
			continue
		}
		out := line
		for _, p := range passes {
			out = p.Apply(ctx, out)
		}
		if out != line {
			lines[i] = out
			changed = append(changed, i+1)
		}
	}

	return Result{
		Text:         strings.Join(lines, "\n"),
		Changed:      len(changed) > 0,
		ChangedLines: changed,
	}
}

func isDeterministic(line string) bool {
	for _, re := range deterministicLine {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

var reWord = regexp.MustCompile(`[a-zA-Z][a-zA-Z\-]+`)

func buildContext(checks []decision.CriterionCheck, overall constants.GradeWord, sourceContext string, pol policy.Feedback) *Context {
	ctx := &Context{
		overall:   overall,
		decisions: make(map[criteria.Code]constants.CheckDecision, len(checks)),
		openBands: make(map[criteria.Band]bool),
		corpus:    make(map[string]struct{}),
		pol:       pol,
	}
	var corpusText strings.Builder
	corpusText.WriteString(sourceContext)
	for _, c := range checks {
		ctx.decisions[c.Code] = c.Decision
		if c.Decision != constants.CheckAchieved {
			ctx.openBands[c.Code.Band] = true
		}
		for _, ev := range c.Evidence {
			corpusText.WriteString(" ")
			corpusText.WriteString(ev.Quote)
			corpusText.WriteString(" ")
			corpusText.WriteString(ev.VisualDescription)
		}
	}
	for _, w := range reWord.FindAllString(strings.ToLower(corpusText.String()), -1) {
		ctx.corpus[w] = struct{}{}
	}
	return ctx
}

func (c *Context) inCorpus(term string) bool {
	term = strings.ToLower(term)
	if _, ok := c.corpus[term]; ok {
		return true
	}
	// multi-word terms count as cited when every word is
	words := strings.Fields(term)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if _, ok := c.corpus[w]; !ok {
			return false
		}
	}
	return true
}
