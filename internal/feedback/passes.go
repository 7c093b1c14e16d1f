package feedback

import (
	"regexp"
	"strings"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
)

// --- leak_term ------------------------------------------------------------

// Template vocabulary that must not leak into feedback unless the submission
// itself cites it. Keys are matched case-insensitively on word boundaries.
var leakTerms = []struct {
	term        string
	replacement string
}{
	{"oscilloscope", "measurement equipment"},
	{"multimeter", "measurement equipment"},
	{"spectrum analyser", "measurement equipment"},
	{"matlab", "analysis software"},
	{"simulink", "analysis software"},
	{"autocad", "design software"},
	{"solidworks", "design software"},
	{"hysteresis", "physical effect under study"},
	{"eddy current", "physical effect under study"},
	{"scrum", "project methodology"},
	{"kanban", "project methodology"},
	{"gantt chart", "planning artefact"},
}

var leakRes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(leakTerms))
	for i, lt := range leakTerms {
		out[i] = regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(lt.term), ` `, `\s+`) + `\b`)
	}
	return out
}()

func leakTermPass(ctx *Context, line string) string {
	for i, lt := range leakTerms {
		if !leakRes[i].MatchString(line) {
			continue
		}
		if ctx.inCorpus(lt.term) {
			continue
		}
		line = leakRes[i].ReplaceAllString(line, lt.replacement)
	}
	return line
}

// --- tone -----------------------------------------------------------------

// Superlatives downgraded when the overall grade does not support them.
var toneTerms = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\boutstanding\b`), "good"},
	{regexp.MustCompile(`(?i)\bexceptional\b`), "good"},
	{regexp.MustCompile(`(?i)\bexcellent\b`), "good"},
	{regexp.MustCompile(`(?i)\bsuperb\b`), "good"},
	{regexp.MustCompile(`(?i)\bbrilliant\b`), "good"},
	{regexp.MustCompile(`(?i)\bflawless\b`), "competent"},
	{regexp.MustCompile(`(?i)\bperfect\b`), "accurate"},
	{regexp.MustCompile(`(?i)\bmasterful\b`), "capable"},
}

// Downgrading "an outstanding" leaves a stranded article.
var reStrandedAn = regexp.MustCompile(`(?i)\ban (good|competent|capable)\b`)

func tonePass(ctx *Context, line string) string {
	maxGrade, ok := constants.CanonicalGradeWord(ctx.pol.ToneDowngradeMaxGrade)
	if !ok {
		maxGrade = constants.GradePass
	}
	if constants.GradeRank(ctx.overall) > constants.GradeRank(maxGrade) {
		return line
	}
	for _, tt := range toneTerms {
		line = tt.re.ReplaceAllString(line, tt.replacement)
	}
	return reStrandedAn.ReplaceAllString(line, "a $1")
}

// --- person_judgement -----------------------------------------------------

// Judgements of the student are rewritten as observations about the work.
var personTerms = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\byou (?:are|were|seem|appear)(?: \w+)? careless\b`), "the work shows lapses in care"},
	{regexp.MustCompile(`(?i)\byou (?:are|were|seem|appear)(?: \w+)? sloppy\b`), "the work shows inconsistent presentation"},
	{regexp.MustCompile(`(?i)\byou (?:are|were|seem|appear)(?: \w+)? lazy\b`), "the work shows limited engagement with the task"},
	{regexp.MustCompile(`(?i)\byou (?:are|were|seem|appear)(?: \w+)? negligent\b`), "the work misses stated requirements"},
	{regexp.MustCompile(`(?i)\byou (?:are|were|seem|appear)(?: \w+)? (?:disorganised|disorganized)\b`), "the work shows unclear organisation"},
	{regexp.MustCompile(`(?i)\byou (?:are|were|seem|appear)(?: \w+)? incompetent\b`), "the work shows gaps in understanding"},
	{regexp.MustCompile(`(?i)\byou (?:are|were|seem|appear)(?: \w+)? confused\b`), "the work shows points of confusion"},
}

func personJudgementPass(_ *Context, line string) string {
	for _, pt := range personTerms {
		line = pt.re.ReplaceAllString(line, pt.replacement)
	}
	return line
}

// --- command_verb ---------------------------------------------------------

// Informal imperatives normalized to assessment register.
var commandTerms = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bmake sure that\b`), "ensure that"},
	{regexp.MustCompile(`(?i)\bmake sure\b`), "ensure"},
	{regexp.MustCompile(`(?i)\byou (?:need to|must|have to|should)\b`), "the submission should"},
	{regexp.MustCompile(`(?i)\bdouble-check\b`), "verify"},
	{regexp.MustCompile(`(?i)\bredo\b`), "rework"},
	{regexp.MustCompile(`(?i)\bfix up\b`), "revise"},
}

func commandVerbPass(_ *Context, line string) string {
	for _, ct := range commandTerms {
		line = ct.re.ReplaceAllString(line, ct.replacement)
	}
	return line
}

// --- overclaim ------------------------------------------------------------

// Achievement claims softened when the check outcome does not back them.
var overclaimTerms = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bfully met\b`), "discussed"},
	{regexp.MustCompile(`(?i)\bfully meets\b`), "discusses"},
	{regexp.MustCompile(`(?i)\bhas been achieved\b`), "has been outlined"},
	{regexp.MustCompile(`(?i)\bachieved\b`), "outlined"},
	{regexp.MustCompile(`(?i)\bdemonstrated\b`), "outlined"},
	{regexp.MustCompile(`(?i)\bmastered\b`), "engaged with"},
}

// A hedge anywhere on the line means the claim is already qualified.
var reHedge = regexp.MustCompile(`(?i)\b(?:however|although|but|could|partially|partly|not yet|attempted|some)\b`)

var reAchievementClaim = regexp.MustCompile(`(?i)\b(?:fully met|fully meets|achieved|demonstrated|mastered)\b`)

var bandMention = map[criteria.Band]*regexp.Regexp{
	criteria.BandMerit:       regexp.MustCompile(`(?i)\bmerit\s+(?:standard|level|quality|grade)\b`),
	criteria.BandDistinction: regexp.MustCompile(`(?i)\bdistinction\s+(?:standard|level|quality|grade)\b`),
}

var bandGrade = map[criteria.Band]constants.GradeWord{
	criteria.BandMerit:       constants.GradeMerit,
	criteria.BandDistinction: constants.GradeDistinction,
}

func overclaimPass(ctx *Context, line string) string {
	if !reAchievementClaim.MatchString(line) || reHedge.MatchString(line) {
		return line
	}
	if overclaimsCriterion(ctx, line) || overclaimsBand(ctx, line) {
		for _, ot := range overclaimTerms {
			line = ot.re.ReplaceAllString(line, ot.replacement)
		}
	}
	return line
}

// overclaimsCriterion reports whether the line names a criterion code whose
// check outcome is anything other than ACHIEVED.
func overclaimsCriterion(ctx *Context, line string) bool {
	for _, code := range criteria.ExtractFromText(line) {
		d, ok := ctx.decisions[code]
		if !ok {
			continue
		}
		if d != constants.CheckAchieved {
			return true
		}
	}
	return false
}

// overclaimsBand reports whether the line claims a whole band standard that
// the overall grade and open criteria contradict.
func overclaimsBand(ctx *Context, line string) bool {
	for band, re := range bandMention {
		if !re.MatchString(line) {
			continue
		}
		if ctx.openBands[band] && constants.GradeRank(ctx.overall) < constants.GradeRank(bandGrade[band]) {
			return true
		}
	}
	return false
}
