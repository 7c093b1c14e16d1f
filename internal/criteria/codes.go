// Package criteria parses and orders P/M/D criterion codes.
package criteria

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Band is the achievement band of a criterion code.
type Band string

const (
	BandPass        Band = "P"
	BandMerit       Band = "M"
	BandDistinction Band = "D"
)

// BandRank orders bands ascending: P < M < D. Unknown bands rank first.
func BandRank(b Band) int {
	switch b {
	case BandPass:
		return 0
	case BandMerit:
		return 1
	case BandDistinction:
		return 2
	}
	return -1
}

// Code is a canonical criterion code: band letter plus a number with no
// leading zeros, e.g. M3.
type Code struct {
	Band   Band
	Number int
}

func (c Code) String() string {
	return string(c.Band) + strconv.Itoa(c.Number)
}

// Less orders codes band rank first, then number, then lexically as a final
// tie-break.
func (c Code) Less(other Code) bool {
	if br, or := BandRank(c.Band), BandRank(other.Band); br != or {
		return br < or
	}
	if c.Number != other.Number {
		return c.Number < other.Number
	}
	return c.String() < other.String()
}

var (
	reCode    = regexp.MustCompile(`^(?i)([PMD])\s*(\d{1,2})$`)
	reScan    = regexp.MustCompile(`(?i)\b([PMD])\s*(\d{1,2})\b`)
	reEqToken = regexp.MustCompile(`\[\[EQ:[^\]]*\]\]`)
)

// Normalize parses a raw string into a canonical code. Case-insensitive,
// tolerates internal whitespace and leading zeros ("m 03" -> M3). Returns
// ok=false for anything else; it never panics.
func Normalize(raw string) (Code, bool) {
	m := reCode.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Code{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return Code{}, false
	}
	return Code{Band: Band(strings.ToUpper(m[1])), Number: n}, true
}

// UniqueSorted normalizes raws, drops anything unparseable, dedupes, and
// returns codes in canonical order.
func UniqueSorted(raws []string) []Code {
	seen := make(map[Code]struct{}, len(raws))
	out := make([]Code, 0, len(raws))
	for _, r := range raws {
		c, ok := Normalize(r)
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	Sort(out)
	return out
}

// Sort orders codes in place: band rank, then number, then lexical.
func Sort(codes []Code) {
	sort.Slice(codes, func(i, j int) bool { return codes[i].Less(codes[j]) })
}

// ExtractFromText scans free text for criterion codes. Equation placeholder
// tokens are stripped first so a token id with digits next to a P/M/D-like
// substring is never misread as a code.
func ExtractFromText(text string) []Code {
	text = reEqToken.ReplaceAllString(text, " ")
	matches := reScan.FindAllStringSubmatch(text, -1)
	raws := make([]string, 0, len(matches))
	for _, m := range matches {
		raws = append(raws, m[1]+m[2])
	}
	return UniqueSorted(raws)
}

// Strings renders codes in their canonical serialized form.
func Strings(codes []Code) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.String()
	}
	return out
}

// Equal reports strict set equality between two code sets, order-insensitive.
func Equal(a, b []Code) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[Code]struct{}, len(a))
	for _, c := range a {
		set[c] = struct{}{}
	}
	for _, c := range b {
		if _, ok := set[c]; !ok {
			return false
		}
	}
	return true
}
