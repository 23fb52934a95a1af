package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownMajor is returned for audit or recommendation requests naming a
// major with no registered rule. Unknown majors never get a silent empty
// report.
var ErrUnknownMajor = errors.New("unknown major code")

// GateType discriminates the math-gate variants of a major rule.
type GateType string

const (
	// GateOneOfDiscard counts exactly one of the options; other taken
	// options are discarded entirely.
	GateOneOfDiscard GateType = "ONE_OF_DISCARD"
	// GateBundleOrDiscard counts one bundle of courses as a fixed credit
	// total; other bundles are discarded.
	GateBundleOrDiscard GateType = "BUNDLE_OR_DISCARD"
)

// Bundle is one alternative of a BUNDLE_OR_DISCARD gate. Every course in the
// bundle must be taken for the bundle to count, and the bundle is worth the
// fixed Credits total regardless of the individual courses.
type Bundle struct {
	Courses []string `yaml:"courses"`
	Credits float64  `yaml:"credits"`
}

// MathGate is the major's math selection rule.
type MathGate struct {
	Type    GateType `yaml:"type"`
	Options []string `yaml:"options,omitempty"` // ONE_OF_DISCARD
	Bundles []Bundle `yaml:"bundles,omitempty"` // BUNDLE_OR_DISCARD
	Message string   `yaml:"message"`
}

// AllCodes returns every course code the gate can consume, in rule order.
func (g *MathGate) AllCodes() []string {
	if g == nil {
		return nil
	}
	switch g.Type {
	case GateOneOfDiscard:
		return append([]string(nil), g.Options...)
	case GateBundleOrDiscard:
		var codes []string
		for _, b := range g.Bundles {
			codes = append(codes, b.Courses...)
		}
		return codes
	}
	return nil
}

// EquivalenceGroup marks two interchangeable course codes. Exactly one of the
// pair satisfies the requirement; if both are taken the secondary cascades to
// the next category instead of being discarded.
type EquivalenceGroup struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
}

// SubRuleType discriminates the extra per-category constraints.
type SubRuleType string

const (
	SubRuleMinCredits          SubRuleType = "MIN_CREDITS"
	SubRuleMinCourseCount      SubRuleType = "MIN_COURSE_COUNT"
	SubRuleFacultyDistribution SubRuleType = "FACULTY_DISTRIBUTION"
)

// SubRule is an additional constraint evaluated against the courses a
// category actually kept, yielding a pass/fail note.
type SubRule struct {
	Type         SubRuleType         `yaml:"type"`
	Pattern      string              `yaml:"pattern,omitempty"`       // MIN_CREDITS
	ValidList    []string            `yaml:"valid_list,omitempty"`    // MIN_COURSE_COUNT
	ValidPattern string              `yaml:"valid_pattern,omitempty"` // MIN_COURSE_COUNT
	MinValue     float64             `yaml:"min_value,omitempty"`
	Pools        map[string][]string `yaml:"pools,omitempty"` // FACULTY_DISTRIBUTION
	MinEach      int                 `yaml:"min_each,omitempty"`
	Message      string              `yaml:"message"`

	pattern      *regexp.Regexp
	validPattern *regexp.Regexp
}

func (r *SubRule) compile() error {
	var err error
	if r.Pattern != "" {
		if r.pattern, err = regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("sub-rule pattern %q: %w", r.Pattern, err)
		}
	}
	if r.ValidPattern != "" {
		if r.validPattern, err = regexp.Compile(r.ValidPattern); err != nil {
			return fmt.Errorf("sub-rule valid pattern %q: %w", r.ValidPattern, err)
		}
	}
	return nil
}

// FacultyRule is a major-wide distribution check across disjoint code pools.
// It is reported as its own pass/fail section, outside the credit waterfall.
type FacultyRule struct {
	Pools    map[string][]string `yaml:"pools"`
	MinTotal int                 `yaml:"min_total"`
	MinEach  int                 `yaml:"min_each"`
	Message  string              `yaml:"message"`
}

// CreditTargets maps each requirement category to its credit total.
type CreditTargets struct {
	University float64 `yaml:"university"`
	Required   float64 `yaml:"required"`
	Core       float64 `yaml:"core"`
	Area       float64 `yaml:"area"`
	Free       float64 `yaml:"free"`
}

// Target returns the credit target for a category.
func (t CreditTargets) Target(c Category) float64 {
	switch c {
	case CategoryUniversity:
		return t.University
	case CategoryRequired:
		return t.Required
	case CategoryCore:
		return t.Core
	case CategoryArea:
		return t.Area
	case CategoryFree:
		return t.Free
	}
	return 0
}

// MajorPools lists the per-major course pools feeding each category.
type MajorPools struct {
	University []string `yaml:"university"`
	Required   []string `yaml:"required"`
	Core       []string `yaml:"core"`
	Area       []string `yaml:"area"`
}

// Pool returns the code list backing an elective category.
func (p MajorPools) Pool(c Category) []string {
	switch c {
	case CategoryUniversity:
		return p.University
	case CategoryRequired:
		return p.Required
	case CategoryCore:
		return p.Core
	case CategoryArea:
		return p.Area
	}
	return nil
}

// MajorRule is the static, per-major requirement definition. Rules are loaded
// once and never mutated.
type MajorRule struct {
	Major          string             `yaml:"major"`
	Credits        CreditTargets      `yaml:"credits"`
	Pools          MajorPools         `yaml:"pools"`
	HumRestriction bool               `yaml:"hum_restriction"`
	MathGate       *MathGate          `yaml:"math_gate,omitempty"`
	Equivalences   []EquivalenceGroup `yaml:"equivalences,omitempty"`
	CoreSubRule    *SubRule           `yaml:"core_sub_rule,omitempty"`
	AreaSubRule    *SubRule           `yaml:"area_sub_rule,omitempty"`
	FacultyRule    *FacultyRule       `yaml:"faculty_rule,omitempty"`
	OverflowChain  []Category         `yaml:"overflow_chain,omitempty"`
}

func (r *MajorRule) validate() error {
	if r.Major == "" {
		return errors.New("rule without major code")
	}
	if g := r.MathGate; g != nil {
		switch g.Type {
		case GateOneOfDiscard:
			if len(g.Options) == 0 {
				return fmt.Errorf("major %s: %s gate without options", r.Major, g.Type)
			}
		case GateBundleOrDiscard:
			if len(g.Bundles) == 0 {
				return fmt.Errorf("major %s: %s gate without bundles", r.Major, g.Type)
			}
		default:
			return fmt.Errorf("major %s: unknown gate type %q", r.Major, g.Type)
		}
	}
	for _, sub := range []*SubRule{r.CoreSubRule, r.AreaSubRule} {
		if sub == nil {
			continue
		}
		switch sub.Type {
		case SubRuleMinCredits, SubRuleMinCourseCount, SubRuleFacultyDistribution:
		default:
			return fmt.Errorf("major %s: unknown sub-rule type %q", r.Major, sub.Type)
		}
		if err := sub.compile(); err != nil {
			return fmt.Errorf("major %s: %w", r.Major, err)
		}
	}
	if len(r.OverflowChain) == 0 {
		r.OverflowChain = []Category{CategoryCore, CategoryArea, CategoryFree}
	}
	return nil
}

// RuleRegistry holds the loaded major rules. It is built once at startup and
// injected into the engines; it is never package-global state.
type RuleRegistry struct {
	rules map[string]*MajorRule
}

// NewRuleRegistry validates and indexes the given rules.
func NewRuleRegistry(rules []*MajorRule) (*RuleRegistry, error) {
	indexed := make(map[string]*MajorRule, len(rules))
	for _, rule := range rules {
		if err := rule.validate(); err != nil {
			return nil, err
		}
		indexed[rule.Major] = rule
	}
	return &RuleRegistry{rules: indexed}, nil
}

// Rule looks up the rule for a major code.
func (r *RuleRegistry) Rule(major string) (*MajorRule, error) {
	rule, ok := r.rules[major]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMajor, major)
	}
	return rule, nil
}

// Majors lists the registered major codes in sorted order.
func (r *RuleRegistry) Majors() []string {
	majors := make([]string, 0, len(r.rules))
	for major := range r.rules {
		majors = append(majors, major)
	}
	sort.Strings(majors)
	return majors
}

type rulesDocument struct {
	Majors []*MajorRule `yaml:"majors"`
}

// ParseRules decodes a YAML rules document.
func ParseRules(data []byte) ([]*MajorRule, error) {
	var doc rulesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(doc.Majors) == 0 {
		return nil, errors.New("rules document defines no majors")
	}
	return doc.Majors, nil
}

// LoadRules reads a rules YAML file from disk.
func LoadRules(path string) ([]*MajorRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

//go:embed rules.yaml
var defaultRulesYAML []byte

// DefaultRules returns the compiled-in faculty rule set.
func DefaultRules() []*MajorRule {
	rules, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rules.yaml is invalid: %v", err))
	}
	return rules
}
