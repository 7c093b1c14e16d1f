package brief

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/tables"
	"github.com/assessly/docgrader/internal/textnorm"
)

// Warning strings surfaced on the Document. These are informational; parsing
// always completes.
const (
	WarnEmptyInput    = "empty input text"
	WarnNoTaskMarkers = "no task markers detected"
	WarnNoPageBreaks  = "no page-break markers; page attribution unavailable"
)

var (
	reTask       = regexp.MustCompile(`(?i)^\s*(?:task|question|q)\s*[.:]?\s*(\d{1,2})\s*[.:)\-]?\s*(.*)$`)
	reLetterPart = regexp.MustCompile(`^\s*\(?([a-z])[.)]\s+(.*)$`)
	reRomanPart  = regexp.MustCompile(`^\s*\(?(i{1,3}|iv|vi{0,3}|ix|x)[.)]\s+(.*)$`)
	reTableRef   = regexp.MustCompile(`\[TABLE:\s*([^\]]+)\]`)
)

type srcLine struct {
	page int // 0 = unknown
	text string
}

// Parse segments flattened text into tasks and parts, attaches detected
// table blocks and referenced equations, and records page spans. It never
// returns an error: malformed input degrades to an empty-but-valid Document
// with warnings.
func Parse(text string, docType constants.DocumentType, eqs []Equation) Document {
	doc := Document{Type: docType, Tasks: []Task{}}

	if strings.TrimSpace(text) == "" {
		doc.Warnings = append(doc.Warnings, WarnEmptyInput)
		return doc
	}
	doc.Codes = criteria.ExtractFromText(text)

	lines := paginate(text, &doc)

	// Task boundaries.
	type marker struct {
		idx   int
		n     int
		title string
	}
	var marks []marker
	for i, ln := range lines {
		if m := reTask.FindStringSubmatch(ln.text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				continue
			}
			marks = append(marks, marker{idx: i, n: n, title: strings.TrimSpace(m[2])})
		}
	}
	if len(marks) == 0 {
		doc.Warnings = append(doc.Warnings, WarnNoTaskMarkers)
		return doc
	}

	eqIndex := make(map[string]Equation, len(eqs))
	for _, e := range eqs {
		eqIndex[e.ID] = e
	}
	seenPartKeys := make(map[string]struct{})

	for i, mk := range marks {
		end := len(lines)
		if i+1 < len(marks) {
			end = marks[i+1].idx
		}
		task := buildTask(mk.n, mk.title, lines[mk.idx+1:end], eqIndex, seenPartKeys, &doc)
		doc.Tasks = append(doc.Tasks, task)
	}
	return doc
}

// paginate splits text into lines annotated with their source page. When the
// text carries no page-break markers, pages stay unknown and a warning is
// recorded rather than guessing.
func paginate(text string, doc *Document) []srcLine {
	var out []srcLine
	if !textnorm.HasPageBreaks(text) {
		doc.Warnings = append(doc.Warnings, WarnNoPageBreaks)
		for _, l := range strings.Split(text, "\n") {
			out = append(out, srcLine{page: 0, text: l})
		}
		return out
	}
	for p, pageText := range textnorm.Pages(text) {
		for _, l := range strings.Split(pageText, "\n") {
			out = append(out, srcLine{page: p + 1, text: l})
		}
	}
	return out
}

func buildTask(n int, title string, body []srcLine, eqIndex map[string]Equation, seenPartKeys map[string]struct{}, doc *Document) Task {
	task := Task{N: n, Title: title}

	// Page span: distinct source pages, ascending.
	pageSet := make(map[int]struct{})
	for _, ln := range body {
		if ln.page > 0 {
			pageSet[ln.page] = struct{}{}
		}
	}
	for p := range pageSet {
		task.Pages = append(task.Pages, p)
	}
	sort.Ints(task.Pages)

	splitParts(&task, body, seenPartKeys, doc)

	raw := joinLines(body)
	task.Tables = tables.Detect(raw, nil)
	attachEquations(&task, raw, eqIndex, doc)
	return task
}

// splitParts walks the task body and carves out lettered parts ("a)", "(b)")
// and roman subparts ("i.", "(ii)") keyed "a.i". Text above the first part
// stays on the task itself. A duplicate part key folds back into the running
// text with a warning instead of shadowing the earlier part.
func splitParts(task *Task, body []srcLine, seen map[string]struct{}, doc *Document) {
	var intro []string
	var current *Part
	var currentLetter string

	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(current.Text)
			task.Parts = append(task.Parts, *current)
			current = nil
		}
	}

	appendLine := func(s string) {
		if current != nil {
			current.Text += s + "\n"
		} else {
			intro = append(intro, s)
		}
	}

	openPart := func(key, rest, letter string) bool {
		qualified := fmt.Sprintf("%d.%s", task.N, key)
		if _, dup := seen[qualified]; dup {
			doc.Warnings = append(doc.Warnings, "duplicate part key "+qualified)
			return false
		}
		seen[qualified] = struct{}{}
		flush()
		current = &Part{Key: key, Text: rest + "\n"}
		currentLetter = letter
		return true
	}

	for _, ln := range body {
		line := ln.text

		if currentLetter != "" {
			if m := reRomanPart.FindStringSubmatch(line); m != nil {
				if openPart(currentLetter+"."+m[1], m[2], currentLetter) {
					continue
				}
				appendLine(line)
				continue
			}
		}
		if m := reLetterPart.FindStringSubmatch(line); m != nil {
			if openPart(m[1], m[2], m[1]) {
				continue
			}
			appendLine(line)
			continue
		}
		appendLine(line)
	}
	flush()

	task.Text = strings.TrimSpace(strings.Join(intro, "\n"))

	// Per-part placeholder references.
	for i := range task.Parts {
		task.Parts[i].TableRefs = findRefs(reTableRef, task.Parts[i].Text)
		task.Parts[i].EqRefs = findRefs(reEqRef, task.Parts[i].Text)
	}
}

func findRefs(re *regexp.Regexp, text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		id := strings.TrimSpace(m[1])
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func joinLines(body []srcLine) string {
	parts := make([]string, len(body))
	for i, ln := range body {
		parts[i] = ln.text
	}
	return strings.Join(parts, "\n")
}
