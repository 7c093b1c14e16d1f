// Package textnorm normalizes flattened document text while preserving the
// page-break control character, so downstream components can recover page
// counts and per-page text without touching the original binary.
package textnorm

import (
	"regexp"
	"strings"
)

// PageBreak is the single control character that marks a page boundary in
// flattened text.
const PageBreak = "\f"

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reRuleNoise  = regexp.MustCompile(`(?m)^\s*[_\-]{4,}\s*$`)
)

// Normalize collapses noisy whitespace and strips common OCR rule-line
// artifacts. Conservative: keeps line breaks, keeps page breaks, collapses
// runs of blank lines into a single blank line.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	// Tabs become a double space so column alignment stays detectable
	// by the table pass, which splits on runs of two or more spaces.
	s = reTabs.ReplaceAllString(s, "  ")
	s = reRuleNoise.ReplaceAllString(s, "")

	// Normalize each page independently so a page break is never swallowed
	// by blank-line collapsing.
	pages := strings.Split(s, PageBreak)
	for i, p := range pages {
		p = reMultiBlank.ReplaceAllString(p, "\n\n")
		lines := strings.Split(p, "\n")
		for j := range lines {
			lines[j] = strings.TrimRight(lines[j], " ")
		}
		pages[i] = strings.Trim(strings.Join(lines, "\n"), "\n")
	}
	return strings.Join(pages, PageBreak)
}

// Pages splits normalized text on the page-break marker.
func Pages(s string) []string {
	return strings.Split(s, PageBreak)
}

// PageCount derives the page count from embedded page breaks. Text without
// any break counts as a single page; empty text counts as zero.
func PageCount(s string) int {
	if strings.TrimSpace(s) == "" {
		return 0
	}
	return strings.Count(s, PageBreak) + 1
}

// HasPageBreaks reports whether the text carries any page-break markers.
// When false, per-page attribution downstream is unreliable.
func HasPageBreaks(s string) bool {
	return strings.Contains(s, PageBreak)
}
