// Package brief recovers document structure (tasks, parts, tables, formulas)
// from flattened assignment text.
package brief

import (
	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/criteria"
	"github.com/assessly/docgrader/internal/tables"
)

// Equation is a recovered inline expression. Flattened text refers to it via
// an embedded [[EQ:<id>]] token.
type Equation struct {
	ID          string   `json:"id"`
	Raw         string   `json:"raw"`
	Normalized  string   `json:"normalized,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	NeedsReview bool     `json:"needs_review"`
}

// Part is a lettered subdivision of a task ("a", "b", "a.i", ...).
type Part struct {
	Key       string   `json:"key"`
	Text      string   `json:"text"`
	TableRefs []string `json:"table_refs,omitempty"`    // ids from [TABLE: id] tokens
	EqRefs    []string `json:"equation_refs,omitempty"` // ids from [[EQ:id]] tokens
}

// Task is one numbered task or question in the document.
type Task struct {
	N        int            `json:"n"`
	Title    string         `json:"title,omitempty"`
	Text     string         `json:"text,omitempty"`
	Parts    []Part         `json:"parts,omitempty"`
	Tables   []tables.Block `json:"tables,omitempty"`
	Formulas []Equation     `json:"formulas,omitempty"`
	Pages    []int          `json:"pages,omitempty"` // ascending, distinct
}

// Document is the structured result of a parse. A malformed input still
// yields a valid Document (possibly with zero tasks) plus warnings; Parse
// never fails.
type Document struct {
	Type     constants.DocumentType `json:"type"`
	Tasks    []Task                 `json:"tasks"`
	Codes    []criteria.Code        `json:"-"`
	Warnings []string               `json:"warnings,omitempty"`
}

// DetectedCodes returns the criterion codes found anywhere in the source
// text, canonical and sorted.
func (d Document) DetectedCodes() []criteria.Code {
	return d.Codes
}
