// Package tables recovers table blocks from flattened document text.
package tables

import (
	"regexp"
	"strings"
)

// WarningUnverified tags a block whose structure could not be trusted.
// Downstream consumers flag these instead of silently trusting bad structure.
const WarningUnverified = "table_structure_unverified"

// BlockKind discriminates the Block variant.
type BlockKind string

const (
	KindStructured   BlockKind = "STRUCTURED"
	KindUnstructured BlockKind = "UNSTRUCTURED"
)

// Block is a tagged variant: either a structured table (headers + rows) or an
// unstructured run of table-looking text carrying a warning.
type Block struct {
	Kind    BlockKind  `json:"kind"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
	Text    string     `json:"text,omitempty"`
	Warning string     `json:"warning,omitempty"`
}

// Hint is an explicit table candidate from a richer extraction backend.
type Hint struct {
	Headers []string
	Rows    [][]string
}

const (
	minRunLines  = 3 // candidate lines needed before a run counts as a table
	aritySlack = 1 // tolerated column-count drift within a run
)

var (
	reSpaceSplit = regexp.MustCompile(` {2,}|\t+`)
	reNumericish = regexp.MustCompile(`^~?[<>]?-?\d{1,3}(,\d{3})*(\.\d+)?\s*(%|[a-zA-Zµ°Ω]{1,4}(/[a-zA-Z]{1,3})?)?$`)
)

// Detect finds table blocks in text. When non-empty structured hints are
// given they are used as-is; each must carry at least one header and one row
// or it is discarded. Otherwise detection runs line heuristics over the text.
// Pure function; absence of tables yields an empty slice, never an error.
func Detect(text string, hints []Hint) []Block {
	if len(hints) > 0 {
		return fromHints(hints)
	}
	return fromLines(text)
}

func fromHints(hints []Hint) []Block {
	out := make([]Block, 0, len(hints))
	for _, h := range hints {
		if len(h.Headers) == 0 || len(h.Rows) == 0 {
			continue
		}
		out = append(out, normalizeArity(Block{
			Kind:    KindStructured,
			Headers: h.Headers,
			Rows:    h.Rows,
		}))
	}
	return out
}

func fromLines(text string) []Block {
	lines := strings.Split(text, "\n")
	var blocks []Block

	var run [][]string
	var runText []string
	flush := func() {
		if len(run) >= minRunLines && consistentArity(run) {
			blocks = append(blocks, classify(run, strings.Join(runText, "\n")))
		}
		run = nil
		runText = nil
	}

	for _, line := range lines {
		cells := SplitColumns(line)
		if len(cells) >= 2 {
			run = append(run, cells)
			runText = append(runText, line)
			continue
		}
		flush()
	}
	flush()

	if blocks == nil {
		return []Block{}
	}
	return blocks
}

// SplitColumns splits a line into cells: pipe-delimited first, falling back
// to runs of two or more spaces or tabs.
func SplitColumns(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	var parts []string
	if strings.Contains(trimmed, "|") {
		parts = strings.Split(trimmed, "|")
	} else {
		parts = reSpaceSplit.Split(trimmed, -1)
	}
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

func consistentArity(run [][]string) bool {
	min, max := len(run[0]), len(run[0])
	for _, cells := range run[1:] {
		if n := len(cells); n < min {
			min = n
		} else if n > max {
			max = n
		}
	}
	return max-min <= aritySlack
}

// classify builds a Structured block from a candidate run, demoting to
// Unstructured when the header row is too narrow or no data row looks mostly
// numeric.
func classify(run [][]string, raw string) Block {
	headers := run[0]
	rows := run[1:]

	if len(headers) < 2 || !anyMostlyNumeric(rows) {
		return Block{Kind: KindUnstructured, Text: raw, Warning: WarningUnverified}
	}
	return normalizeArity(Block{Kind: KindStructured, Headers: headers, Rows: rows})
}

// normalizeArity enforces the structured invariant: every row has the same
// arity as the header. Rows off by the slack are padded or truncated; a wider
// mismatch demotes the whole block.
func normalizeArity(b Block) Block {
	want := len(b.Headers)
	fixed := make([][]string, 0, len(b.Rows))
	for _, row := range b.Rows {
		d := len(row) - want
		if d < -aritySlack || d > aritySlack {
			return Block{Kind: KindUnstructured, Text: renderRows(b), Warning: WarningUnverified}
		}
		for len(row) < want {
			row = append(row, "")
		}
		fixed = append(fixed, row[:want])
	}
	b.Rows = fixed
	return b
}

func renderRows(b Block) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(b.Headers, " | "))
	for _, r := range b.Rows {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(r, " | "))
	}
	return sb.String()
}

// anyMostlyNumeric reports whether at least one data row has numeric-looking
// values (bare numbers, percentages, unit-suffixed quantities) in at least
// half of its cells.
func anyMostlyNumeric(rows [][]string) bool {
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		n := 0
		for _, cell := range row {
			if reNumericish.MatchString(strings.TrimSpace(cell)) {
				n++
			}
		}
		if n*2 >= len(row) {
			return true
		}
	}
	return false
}
