// Package query implements the compact search mini-language, e.g.
//
//	TN=[mark-a+mark-b]*TC=[35]*SC=[G1+S2]
//
// Each clause names one search dimension and a +-delimited value list.
package query

import "strings"

// Dimension keys understood by the parser. Unknown keys are ignored.
const (
	KeyName           = "TN"
	KeyClassification = "TC"
	KeySimilarityCode = "SC"
)

// DefaultClauseDelimiter separates clauses in the observed query format.
const DefaultClauseDelimiter = "*"

// Dimensions are the three ordered term lists extracted from one query
// text. A missing clause yields an empty list for that dimension.
type Dimensions struct {
	names           []string
	classifications []string
	similarityCodes []string
}

// Names returns the trademark-name terms.
func (d Dimensions) Names() []string { return d.names }

// Classifications returns the classification-code terms.
func (d Dimensions) Classifications() []string { return d.classifications }

// SimilarityCodes returns the similarity-code terms.
func (d Dimensions) SimilarityCodes() []string { return d.similarityCodes }

// Combination is one tuple drawn from the Cartesian product of the three
// dimensions. Each combination drives exactly one registry call.
type Combination struct {
	Name           string
	Classification string
	SimilarityCode string
}

// Combinations expands the full Cartesian product in nested-loop order:
// names outermost, then classifications, then similarity codes. The order
// is stable so fixtures can rely on it. Duplicate terms propagate as
// duplicate combinations; the merge step collapses them later.
func (d Dimensions) Combinations() []Combination {
	if len(d.names) == 0 || len(d.classifications) == 0 || len(d.similarityCodes) == 0 {
		return nil
	}
	out := make([]Combination, 0, len(d.names)*len(d.classifications)*len(d.similarityCodes))
	for _, n := range d.names {
		for _, c := range d.classifications {
			for _, s := range d.similarityCodes {
				out = append(out, Combination{Name: n, Classification: c, SimilarityCode: s})
			}
		}
	}
	return out
}

// Parser splits query text into dimensions. The zero value is not usable;
// construct with NewParser.
type Parser struct {
	clauseDelimiter string
}

// NewParser creates a parser with the default clause delimiter.
func NewParser() Parser {
	return Parser{clauseDelimiter: DefaultClauseDelimiter}
}

// WithClauseDelimiter returns a parser using a custom clause delimiter.
func (p Parser) WithClauseDelimiter(delim string) Parser {
	if delim == "" {
		delim = DefaultClauseDelimiter
	}
	return Parser{clauseDelimiter: delim}
}

// Parse extracts dimensions from query text. Pure and deterministic:
// the same text always yields the same dimensions. Malformed clauses
// (no "=", no brackets) and unknown keys are skipped, never fatal.
func (p Parser) Parse(text string) Dimensions {
	var d Dimensions
	for _, clause := range strings.Split(text, p.clauseDelimiter) {
		key, values, ok := parseClause(clause)
		if !ok {
			continue
		}
		switch key {
		case KeyName:
			d.names = append(d.names, values...)
		case KeyClassification:
			d.classifications = append(d.classifications, values...)
		case KeySimilarityCode:
			d.similarityCodes = append(d.similarityCodes, values...)
		}
	}
	return d
}

// parseClause splits one "KEY=[v1+v2]" clause into its key and values.
func parseClause(clause string) (string, []string, bool) {
	key, rest, found := strings.Cut(strings.TrimSpace(clause), "=")
	if !found {
		return "", nil, false
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "[") || !strings.HasSuffix(rest, "]") {
		return "", nil, false
	}
	body := rest[1 : len(rest)-1]
	if body == "" {
		return "", nil, false
	}
	var values []string
	for _, v := range strings.Split(body, "+") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return "", nil, false
	}
	return strings.ToUpper(strings.TrimSpace(key)), values, true
}
