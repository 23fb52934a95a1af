package main

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultCredit is assumed when the catalog has no credit value for a course.
const DefaultCredit = 3.0

var (
	courseCodeRe    = regexp.MustCompile(`[A-Z]{2,5}\s+\d{3,4}`)
	courseNumberRe  = regexp.MustCompile(`\d{3,4}`)
	subjectPrefixRe = regexp.MustCompile(`^[A-Z]{2,5}`)
	companionRe     = regexp.MustCompile(`\d{3,4}[RLD]$`)
)

// Course is one immutable catalog record. Codes are normalized to the
// "PREFIX NNN" form (uppercase, single space) at the ingestion boundary.
type Course struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Level         int      `json:"level"`
	Credit        float64  `json:"credit"`
	Terms         []string `json:"terms,omitempty"`
	Prerequisites string   `json:"prerequisites,omitempty"`
	Description   string   `json:"description,omitempty"`

	prereq *PrereqExpression
}

// PrereqExpr returns the parsed prerequisite expression, using the copy
// cached at catalog load when available. Caching at load time keeps the
// shared catalog read-only once the server is serving.
func (c Course) PrereqExpr() PrereqExpression {
	if c.prereq != nil {
		return *c.prereq
	}
	return ParsePrerequisites(c.Prerequisites)
}

// Subject returns the letter prefix of the course code, e.g. "CS" for "CS 201".
func (c Course) Subject() string {
	return subjectPrefixRe.FindString(c.Code)
}

// IsCompanion reports whether the course is a recitation, lab or discussion
// section (code ending in R, L or D). Companions are never independently
// creditable or recommendable.
func (c Course) IsCompanion() bool {
	return companionRe.MatchString(c.Code)
}

// OfferedIn reports whether the course runs in the given term. Courses with
// no known term information match every term.
func (c Course) OfferedIn(term string) bool {
	if len(c.Terms) == 0 || term == "" {
		return true
	}
	for _, t := range c.Terms {
		if strings.EqualFold(t, term) {
			return true
		}
	}
	return false
}

// CourseLevel derives the hundreds digit of the numeric part of a course
// code: "CS 201" -> 2, "MATH 101" -> 1, codes without digits -> 0.
func CourseLevel(code string) int {
	num := courseNumberRe.FindString(code)
	if num == "" {
		return 0
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	for n >= 1000 {
		n /= 10
	}
	return n / 100
}

// ExtractCourseCodes pulls every course code (e.g. "CS 201") out of free text.
func ExtractCourseCodes(text string) []string {
	return courseCodeRe.FindAllString(strings.ToUpper(text), -1)
}

// NormalizeCode upper-cases a course code and collapses internal whitespace.
func NormalizeCode(code string) string {
	return strings.Join(strings.Fields(strings.ToUpper(code)), " ")
}

// AcademicLevel is the declared study level of a student.
type AcademicLevel string

const (
	LevelUndergraduate AcademicLevel = "undergraduate"
	LevelGraduate      AcademicLevel = "graduate"
)

// StudentProfile is rebuilt for every request; it is never shared.
type StudentProfile struct {
	Year  int
	Term  string
	Level AcademicLevel
	Taken map[string]bool
}

// NewStudentProfile normalizes the taken-course codes into a set.
func NewStudentProfile(year int, term string, level AcademicLevel, taken []string) *StudentProfile {
	set := make(map[string]bool, len(taken))
	for _, code := range taken {
		if code = NormalizeCode(code); code != "" {
			set[code] = true
		}
	}
	return &StudentProfile{Year: year, Term: term, Level: level, Taken: set}
}

// Category identifies a graduation requirement bucket.
type Category string

const (
	CategoryUniversity Category = "university"
	CategoryRequired   Category = "required"
	CategoryCore       Category = "core"
	CategoryArea       Category = "area"
	CategoryFree       Category = "free"
)

// CategoryReport is the audit outcome for a single requirement category.
type CategoryReport struct {
	Taken   []string `json:"taken"`
	Missing []string `json:"missing"`
	Credits float64  `json:"credits_earned"`
	Target  float64  `json:"credits_target"`
	Note    string   `json:"note,omitempty"`
}

// Progress is the completion fraction for the category, clipped to 1.0.
// A zero-credit target reports 0 rather than dividing by zero.
func (r CategoryReport) Progress() float64 {
	if r.Target <= 0 {
		return 0
	}
	if r.Credits >= r.Target {
		return 1.0
	}
	return r.Credits / r.Target
}

// FacultyCheckReport is the outcome of a major's global faculty-distribution
// rule. It is a pass/fail section, not a credit category.
type FacultyCheckReport struct {
	Passed  bool           `json:"passed"`
	Message string         `json:"message"`
	Counts  map[string]int `json:"counts"`
}

// AuditReport classifies every taken course into exactly one category.
type AuditReport struct {
	Major        string                      `json:"major"`
	Categories   map[Category]CategoryReport `json:"categories"`
	FacultyCheck *FacultyCheckReport         `json:"faculty_check,omitempty"`
	Roadmap      []string                    `json:"roadmap"`
}

// Classification marks which candidate codes matter for scoring: missing
// graduation requirements and the major's elective pools.
type Classification struct {
	RequiredMissing   map[string]bool
	UniversityMissing map[string]bool
	CorePool          map[string]bool
	AreaPool          map[string]bool
}

// CandidateScore carries the per-course sub-scores next to the weighted total.
type CandidateScore struct {
	Urgency   float64 `json:"urgency"`
	Readiness float64 `json:"readiness"`
	Chain     float64 `json:"chain"`
	Scarcity  float64 `json:"scarcity"`
	Interest  float64 `json:"interest"`
	Overlap   float64 `json:"overlap"`
	Penalty   float64 `json:"penalty"`
	Final     float64 `json:"final"`
}

// Recommendation is one ranked row of the advisor output.
type Recommendation struct {
	Course      Course         `json:"course"`
	Score       CandidateScore `json:"score"`
	Category    string         `json:"category"`
	Explanation []string       `json:"explanation"`
}

// TermPlan is an advisory credit-capped subset of the ranked list.
type TermPlan struct {
	Courses      []Recommendation `json:"courses"`
	TotalCredits float64          `json:"total_credits"`
}

// Request structures

type AuditRequest struct {
	Major string   `json:"major"`
	Taken []string `json:"taken"`
}

type AuditResponse struct {
	Report   *AuditReport         `json:"report"`
	Progress map[Category]float64 `json:"progress"`
	Metadata ResponseMetadata     `json:"metadata"`
}

type RecommendationRequest struct {
	Major       string   `json:"major"`
	Year        int      `json:"year"`
	Term        string   `json:"term,omitempty"`
	Level       string   `json:"level,omitempty"`
	Taken       []string `json:"taken"`
	Interests   string   `json:"interests,omitempty"`
	MinScore    *float64 `json:"min_score,omitempty"`
	MaxResults  int      `json:"max_results,omitempty"`
	IncludePlan bool     `json:"include_plan,omitempty"`
	PlanCredits float64  `json:"plan_credits,omitempty"`
}

type RecommendationResponse struct {
	Major           string           `json:"major"`
	Recommendations []Recommendation `json:"recommendations"`
	Plan            *TermPlan        `json:"plan,omitempty"`
	Metadata        ResponseMetadata `json:"metadata"`
}

type ResponseMetadata struct {
	GeneratedAt      time.Time `json:"generated_at"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
}

// UnlockNode is one course in the prerequisite chain tree.
type UnlockNode struct {
	Code  string `json:"code"`
	Name  string `json:"name,omitempty"`
	Depth int    `json:"depth"`
}

// UnlockEdge is a prerequisite -> dependent link.
type UnlockEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// UnlockTree is the set of courses a root course unlocks, to a fixed depth.
type UnlockTree struct {
	Root  string       `json:"root"`
	Nodes []UnlockNode `json:"nodes"`
	Edges []UnlockEdge `json:"edges"`
}
