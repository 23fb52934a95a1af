package main

import (
	"fmt"
	"sort"
	"strings"
)

// AuditEngine classifies a transcript against a major's graduation
// requirements. The registry and credit map are loaded once; every call to
// Audit builds fresh state, so one engine is safe for concurrent requests.
type AuditEngine struct {
	registry *RuleRegistry
	credits  map[string]float64
	prereqs  map[string]PrereqExpression
	slack    float64
}

// NewAuditEngine builds an engine over the given rule registry and catalog.
// slack is the credit headroom an elective category may exceed its target by
// before surplus courses cascade down the overflow chain.
func NewAuditEngine(registry *RuleRegistry, catalog []Course, slack float64) *AuditEngine {
	credits := make(map[string]float64, len(catalog))
	prereqs := make(map[string]PrereqExpression, len(catalog))
	for _, c := range catalog {
		if c.Credit > 0 {
			credits[c.Code] = c.Credit
		}
		if expr := c.PrereqExpr(); !expr.Empty() {
			prereqs[c.Code] = expr
		}
	}
	return &AuditEngine{registry: registry, credits: credits, prereqs: prereqs, slack: slack}
}

func (e *AuditEngine) creditOf(code string) float64 {
	if cr, ok := e.credits[code]; ok {
		return cr
	}
	return DefaultCredit
}

func (e *AuditEngine) sumCredits(codes []string) float64 {
	total := 0.0
	for _, c := range codes {
		total += e.creditOf(c)
	}
	return total
}

// Audit runs the single-pass waterfall for the given major. Every taken
// course lands in exactly one category, or nowhere if a logic gate discarded
// it. Unknown majors fail with ErrUnknownMajor.
func (e *AuditEngine) Audit(major string, takenCodes []string) (*AuditReport, error) {
	rule, err := e.registry.Rule(major)
	if err != nil {
		return nil, err
	}

	taken := normalizeTranscript(takenCodes)
	takenSet := make(map[string]bool, len(taken))
	for _, c := range taken {
		takenSet[c] = true
	}

	report := &AuditReport{Major: major, Categories: make(map[Category]CategoryReport)}

	// University category
	uniReport, uniUsed := e.auditUniversity(rule, taken, takenSet)
	report.Categories[CategoryUniversity] = uniReport

	// Required category
	reqReport, reqUsed, discarded, cascades := e.auditRequired(rule, takenSet, uniUsed)
	report.Categories[CategoryRequired] = reqReport

	// Elective waterfall
	used := make(map[string]bool, len(uniUsed)+len(reqUsed)+len(discarded))
	for c := range uniUsed {
		used[c] = true
	}
	for c := range reqUsed {
		used[c] = true
	}
	for c := range discarded {
		used[c] = true
	}
	remaining := make([]string, 0, len(taken))
	for _, c := range taken {
		if !used[c] {
			remaining = append(remaining, c)
		}
	}

	subFailures := make(map[Category]string)
	chain := rule.OverflowChain
	if chain[len(chain)-1] != CategoryFree {
		chain = append(append([]Category(nil), chain...), CategoryFree)
	}
	overflow := make(map[string]bool)
	for i, cat := range chain {
		if cat == CategoryFree {
			report.Categories[CategoryFree] = CategoryReport{
				Taken:   remaining,
				Credits: e.sumCredits(remaining),
				Target:  rule.Credits.Free,
			}
			remaining = nil
			continue
		}

		// The chain's first category also receives equivalence-group
		// secondaries; every later category receives the previous
		// category's cap surplus.
		if i == 0 {
			for c := range cascades {
				overflow[c] = true
			}
		}
		catReport, keep, rejected := e.auditElective(rule, cat, remaining, overflow, subFailures)
		report.Categories[cat] = catReport

		keptSet := make(map[string]bool, len(keep))
		for _, c := range keep {
			keptSet[c] = true
		}
		next := make([]string, 0, len(remaining))
		for _, c := range remaining {
			if !keptSet[c] {
				next = append(next, c)
			}
		}
		remaining = next

		overflow = make(map[string]bool, len(rejected))
		for _, c := range rejected {
			overflow[c] = true
		}
	}

	if rule.FacultyRule != nil {
		report.FacultyCheck = checkFacultyRule(rule.FacultyRule, taken, discarded)
	}

	report.Roadmap = e.generateRoadmap(report, subFailures, takenSet)
	return report, nil
}

// normalizeTranscript upper-cases, de-duplicates and drops companion
// sections, preserving encounter order.
func normalizeTranscript(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, raw := range codes {
		code := NormalizeCode(raw)
		if code == "" || seen[code] || companionRe.MatchString(code) {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// humRestricted reports whether the hum restriction bars this code from the
// university pool (a humanities course that is not 200-level).
func humRestricted(rule *MajorRule, code string) bool {
	return rule.HumRestriction && strings.HasPrefix(code, "HUM") && CourseLevel(code) != 2
}

func (e *AuditEngine) auditUniversity(rule *MajorRule, taken []string, takenSet map[string]bool) (CategoryReport, map[string]bool) {
	used := make(map[string]bool)
	var kept, missing []string
	humSlot := false

	for _, code := range rule.Pools.University {
		if humRestricted(rule, code) {
			continue // excluded from the pool entirely; eligible for free instead
		}
		if strings.HasPrefix(code, "HUM") {
			humSlot = true
			continue // the shared humanities slot, handled below
		}
		if takenSet[code] {
			kept = append(kept, code)
			used[code] = true
		} else {
			missing = append(missing, code)
		}
	}

	// At most one taken 200-level humanities course fills the slot.
	if humSlot {
		filled := false
		for _, code := range taken {
			if strings.HasPrefix(code, "HUM") && CourseLevel(code) == 2 {
				kept = append(kept, code)
				used[code] = true
				filled = true
				break
			}
		}
		if !filled {
			missing = append(missing, "HUM 2xx")
		}
	}

	return CategoryReport{
		Taken:   kept,
		Missing: missing,
		Credits: e.sumCredits(kept),
		Target:  rule.Credits.University,
	}, used
}

// evalMathGate resolves the gate against the transcript. counted lists the
// courses that satisfy it, credits is their counted value, discarded lists
// taken alternatives excluded from every later category.
func (e *AuditEngine) evalMathGate(gate *MathGate, takenSet map[string]bool) (ok bool, counted []string, credits float64, discarded []string) {
	if gate == nil {
		return true, nil, 0, nil
	}
	switch gate.Type {
	case GateOneOfDiscard:
		for _, opt := range gate.Options {
			if !takenSet[opt] {
				continue
			}
			if counted == nil {
				counted = []string{opt}
				credits = e.creditOf(opt)
			} else {
				discarded = append(discarded, opt)
			}
		}
		return counted != nil, counted, credits, discarded

	case GateBundleOrDiscard:
		// A taken single-course bundle wins first and discards the rest.
		for i, bundle := range gate.Bundles {
			if len(bundle.Courses) != 1 || !takenSet[bundle.Courses[0]] {
				continue
			}
			for j, other := range gate.Bundles {
				if j == i {
					continue
				}
				for _, c := range other.Courses {
					if takenSet[c] {
						discarded = append(discarded, c)
					}
				}
			}
			return true, bundle.Courses, bundle.Credits, discarded
		}
		// Otherwise the first fully-taken bundle wins.
		for _, bundle := range gate.Bundles {
			complete := true
			for _, c := range bundle.Courses {
				if !takenSet[c] {
					complete = false
					break
				}
			}
			if complete {
				return true, bundle.Courses, bundle.Credits, nil
			}
		}
	}
	return false, nil, 0, nil
}

func (e *AuditEngine) auditRequired(rule *MajorRule, takenSet, uniUsed map[string]bool) (CategoryReport, map[string]bool, map[string]bool, map[string]bool) {
	gateOK, gateCounted, gateCredits, gateDiscarded := e.evalMathGate(rule.MathGate, takenSet)

	gateCodes := make(map[string]bool)
	for _, c := range rule.MathGate.AllCodes() {
		gateCodes[c] = true
	}
	equivCodes := make(map[string]bool)
	for _, g := range rule.Equivalences {
		equivCodes[g.Primary] = true
		equivCodes[g.Secondary] = true
	}

	var kept, missing []string
	cascades := make(map[string]bool)

	// Equivalence groups: exactly one of the pair counts; a taken secondary
	// cascades to the next category when the primary already counts.
	for _, g := range rule.Equivalences {
		switch {
		case takenSet[g.Primary]:
			kept = append(kept, g.Primary)
			if takenSet[g.Secondary] {
				cascades[g.Secondary] = true
			}
		case takenSet[g.Secondary]:
			kept = append(kept, g.Secondary)
		default:
			missing = append(missing, g.Primary+" / "+g.Secondary)
		}
	}

	for _, code := range rule.Pools.Required {
		if uniUsed[code] || gateCodes[code] || equivCodes[code] || humRestricted(rule, code) {
			continue // consumed elsewhere or barred from this category
		}
		if takenSet[code] {
			kept = append(kept, code)
		} else {
			missing = append(missing, code)
		}
	}

	credits := e.sumCredits(kept)
	if gateOK {
		kept = append(kept, gateCounted...)
		credits += gateCredits
	} else if rule.MathGate != nil {
		missing = append(missing, rule.MathGate.Message)
	}

	used := make(map[string]bool, len(kept))
	for _, c := range kept {
		used[c] = true
	}
	discarded := make(map[string]bool, len(gateDiscarded))
	for _, c := range gateDiscarded {
		discarded[c] = true
	}

	return CategoryReport{
		Taken:   kept,
		Missing: missing,
		Credits: credits,
		Target:  rule.Credits.Required,
	}, used, discarded, cascades
}

// auditElective fills one elective category from the remaining transcript,
// capping kept credits at target+slack in encounter order. admit lists
// courses taken in regardless of pool membership: the previous chain
// category's cap surplus, plus equivalence cascades for the first category.
// Cap-rejected intake is returned so the next chain category absorbs it.
func (e *AuditEngine) auditElective(rule *MajorRule, cat Category, remaining []string, admit map[string]bool, subFailures map[Category]string) (CategoryReport, []string, []string) {
	pool := make(map[string]bool)
	for _, c := range rule.Pools.Pool(cat) {
		pool[c] = true
	}

	var intake []string
	for _, c := range remaining {
		if pool[c] || admit[c] {
			intake = append(intake, c)
		}
	}

	target := rule.Credits.Target(cat)
	var kept, rejected []string
	accumulated := 0.0
	for _, c := range intake {
		// A course is kept while the running total is still below the
		// slack-extended target; the last kept course may exceed the
		// target itself.
		if accumulated < target+e.slack {
			kept = append(kept, c)
			accumulated += e.creditOf(c)
		} else {
			rejected = append(rejected, c)
		}
	}

	var sub *SubRule
	switch cat {
	case CategoryCore:
		sub = rule.CoreSubRule
	case CategoryArea:
		sub = rule.AreaSubRule
	}
	passed, note := e.evalSubRule(sub, kept)
	if !passed {
		subFailures[cat] = note
	}

	return CategoryReport{
		Taken:   kept,
		Credits: accumulated,
		Target:  target,
		Note:    note,
	}, kept, rejected
}

// evalSubRule checks a category constraint against the kept course set only.
func (e *AuditEngine) evalSubRule(rule *SubRule, kept []string) (bool, string) {
	if rule == nil {
		return true, ""
	}
	switch rule.Type {
	case SubRuleMinCredits:
		total := 0.0
		for _, c := range kept {
			if rule.pattern != nil && rule.pattern.MatchString(c) {
				total += e.creditOf(c)
			}
		}
		if total >= rule.MinValue {
			return true, "requirement satisfied"
		}
		return false, fmt.Sprintf("%s (currently %.0f credits)", rule.Message, total)

	case SubRuleMinCourseCount:
		count := 0
		for _, c := range kept {
			if containsString(rule.ValidList, c) || (rule.validPattern != nil && rule.validPattern.MatchString(c)) {
				count++
			}
		}
		if float64(count) >= rule.MinValue {
			return true, "requirement satisfied"
		}
		return false, fmt.Sprintf("%s (currently %d)", rule.Message, count)

	case SubRuleFacultyDistribution:
		counts := poolCounts(kept, rule.Pools)
		var short []string
		for _, pool := range sortedKeys(rule.Pools) {
			if counts[pool] < rule.MinEach {
				short = append(short, fmt.Sprintf("%s (%d/%d)", pool, counts[pool], rule.MinEach))
			}
		}
		if len(short) == 0 {
			return true, "requirement satisfied"
		}
		return false, fmt.Sprintf("%s: %s", rule.Message, strings.Join(short, ", "))
	}
	return true, ""
}

// checkFacultyRule runs the major-wide distribution check over the whole
// transcript, ignoring courses discarded by the math gate.
func checkFacultyRule(rule *FacultyRule, taken []string, discarded map[string]bool) *FacultyCheckReport {
	valid := make([]string, 0, len(taken))
	for _, c := range taken {
		if !discarded[c] {
			valid = append(valid, c)
		}
	}
	counts := poolCounts(valid, rule.Pools)

	total := 0
	for _, n := range counts {
		total += n
	}
	var problems []string
	if total < rule.MinTotal {
		problems = append(problems, fmt.Sprintf("total %d/%d", total, rule.MinTotal))
	}
	for _, pool := range sortedKeys(rule.Pools) {
		if counts[pool] < rule.MinEach {
			problems = append(problems, fmt.Sprintf("%s %d/%d", pool, counts[pool], rule.MinEach))
		}
	}

	if len(problems) == 0 {
		return &FacultyCheckReport{Passed: true, Message: "faculty distribution satisfied", Counts: counts}
	}
	return &FacultyCheckReport{
		Passed:  false,
		Message: fmt.Sprintf("%s (%s)", rule.Message, strings.Join(problems, ", ")),
		Counts:  counts,
	}
}

func poolCounts(codes []string, pools map[string][]string) map[string]int {
	counts := make(map[string]int, len(pools))
	for name := range pools {
		counts[name] = 0
	}
	for _, c := range codes {
		for name, pool := range pools {
			if containsString(pool, c) {
				counts[name]++
				break
			}
		}
	}
	return counts
}

// generateRoadmap derives the deterministic advice lines from the report:
// one line per category with a shortfall, university first, plus the failing
// distribution check. Missing required courses whose own prerequisites are
// not yet met (strict evaluation) get a blocked annotation.
func (e *AuditEngine) generateRoadmap(report *AuditReport, subFailures map[Category]string, takenSet map[string]bool) []string {
	var roadmap []string

	uni := report.Categories[CategoryUniversity]
	if uni.Credits < uni.Target {
		roadmap = append(roadmap, fmt.Sprintf("University: %.0f credits short.", uni.Target-uni.Credits))
	}

	req := report.Categories[CategoryRequired]
	if len(req.Missing) > 0 {
		roadmap = append(roadmap, "Required: complete "+strings.Join(req.Missing, ", ")+".")
		for _, entry := range req.Missing {
			codes := ExtractCourseCodes(entry)
			if len(codes) != 1 {
				continue // gate messages and equivalence pairs list alternatives
			}
			expr, ok := e.prereqs[codes[0]]
			if !ok {
				continue
			}
			if satisfied, missing := expr.Satisfied(takenSet, MatchStrict); !satisfied {
				roadmap = append(roadmap, fmt.Sprintf("  blocked: %s needs %s", codes[0], missing))
			}
		}
	}

	for _, cat := range []Category{CategoryCore, CategoryArea} {
		rep := report.Categories[cat]
		if rep.Credits < rep.Target {
			name := strings.ToUpper(string(cat)[:1]) + string(cat)[1:]
			roadmap = append(roadmap, fmt.Sprintf("%s electives: %.0f more credits needed.", name, rep.Target-rep.Credits))
		}
		if note, ok := subFailures[cat]; ok {
			roadmap = append(roadmap, "  note: "+note)
		}
	}

	if fc := report.FacultyCheck; fc != nil && !fc.Passed {
		roadmap = append(roadmap, "Faculty distribution: "+fc.Message)
	}

	if len(roadmap) == 0 {
		roadmap = append(roadmap, "All academic requirements for graduation are satisfied.")
	}
	return roadmap
}

// Classify derives the scoring-relevant code sets from an audit report:
// codes still missing from the required and university categories, and the
// major's elective pools.
func Classify(report *AuditReport, rule *MajorRule) Classification {
	class := Classification{
		RequiredMissing:   make(map[string]bool),
		UniversityMissing: make(map[string]bool),
		CorePool:          make(map[string]bool),
		AreaPool:          make(map[string]bool),
	}
	for _, entry := range report.Categories[CategoryRequired].Missing {
		for _, code := range ExtractCourseCodes(entry) {
			class.RequiredMissing[code] = true
		}
	}
	for _, entry := range report.Categories[CategoryUniversity].Missing {
		for _, code := range ExtractCourseCodes(entry) {
			class.UniversityMissing[code] = true
		}
	}
	for _, code := range rule.Pools.Core {
		class.CorePool[code] = true
	}
	for _, code := range rule.Pools.Area {
		class.AreaPool[code] = true
	}
	return class
}

func containsString(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
