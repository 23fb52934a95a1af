package main

import (
	"regexp"
	"sort"
	"strings"
)

// MatchMode selects how an OR-block of a prerequisite expression is satisfied.
//
// The two modes are intentionally not unified: the audit feasibility gate
// requires every code of a chosen alternative (MatchStrict), while the
// transcript-chain gate accepts any single code anywhere in the block
// (MatchLoose). The intended semantics differ per call site.
type MatchMode int

const (
	// MatchStrict satisfies a block only when some alternative has all of
	// its codes present in the taken set.
	MatchStrict MatchMode = iota
	// MatchLoose satisfies a block when any code of any alternative is
	// present in the taken set.
	MatchLoose
)

// noise phrases that appear in catalog prerequisite text but carry no
// course-code requirement.
var prereqNoiseRe = regexp.MustCompile(`MINIMUM GRADE OF [A-Z][+-]?|UNDERGRADUATE LEVEL|GRADUATE LEVEL`)

// PrereqBlock is one conjunct of a prerequisite expression: a disjunction of
// alternatives, each alternative being one or more course codes that must be
// taken together.
type PrereqBlock struct {
	Options [][]string
}

// Codes returns the sorted, de-duplicated course codes across all options.
func (b PrereqBlock) Codes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, opt := range b.Options {
		for _, code := range opt {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	sort.Strings(codes)
	return codes
}

// PrereqExpression is a conjunction of OR-blocks parsed from free text.
type PrereqExpression struct {
	Blocks []PrereqBlock
}

// ParsePrerequisites turns a free-text prerequisite clause into an AND of ORs
// over course codes. Options that contain no extractable code (grade minimums
// and similar prose) are stripped, never treated as unsatisfiable. Malformed
// or empty text yields an empty, trivially satisfied expression.
func ParsePrerequisites(text string) PrereqExpression {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" || text == "NONE" || text == "NAN" {
		return PrereqExpression{}
	}
	text = prereqNoiseRe.ReplaceAllString(text, "")

	var expr PrereqExpression
	for _, rawBlock := range strings.Split(text, " AND ") {
		var block PrereqBlock
		for _, option := range strings.Split(rawBlock, " OR ") {
			codes := courseCodeRe.FindAllString(option, -1)
			if len(codes) == 0 {
				continue // free-text noise
			}
			for i, code := range codes {
				codes[i] = NormalizeCode(code)
			}
			block.Options = append(block.Options, codes)
		}
		if len(block.Options) > 0 {
			expr.Blocks = append(expr.Blocks, block)
		}
	}
	return expr
}

// Empty reports whether the expression carries no requirement at all.
func (e PrereqExpression) Empty() bool {
	return len(e.Blocks) == 0
}

// CodeCount is the number of distinct course codes mentioned anywhere in the
// expression.
func (e PrereqExpression) CodeCount() int {
	seen := make(map[string]bool)
	for _, b := range e.Blocks {
		for _, opt := range b.Options {
			for _, code := range opt {
				seen[code] = true
			}
		}
	}
	return len(seen)
}

// Satisfied evaluates the expression against a taken-course set under the
// given match mode. The second return value renders the unsatisfied blocks
// as "(A OR B) AND (C)". The rendered string is display-only; callers must
// never parse it back for ranking decisions.
func (e PrereqExpression) Satisfied(taken map[string]bool, mode MatchMode) (bool, string) {
	if e.Empty() {
		return true, ""
	}

	var missing []string
	for _, block := range e.Blocks {
		if blockSatisfied(block, taken, mode) {
			continue
		}
		missing = append(missing, "("+strings.Join(block.Codes(), " OR ")+")")
	}
	if len(missing) == 0 {
		return true, ""
	}
	return false, strings.Join(missing, " AND ")
}

func blockSatisfied(block PrereqBlock, taken map[string]bool, mode MatchMode) bool {
	for _, opt := range block.Options {
		switch mode {
		case MatchLoose:
			for _, code := range opt {
				if taken[code] {
					return true
				}
			}
		default: // MatchStrict
			ok := true
			for _, code := range opt {
				if !taken[code] {
					ok = false
					break
				}
			}
			if ok {
				return true
			}
		}
	}
	return false
}
