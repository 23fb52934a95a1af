package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrUnknownProgram is returned for synergy lookups on unregistered programs.
var ErrUnknownProgram = errors.New("unknown program id")

// Program is one degree program (major or minor) with the metadata the
// search and synergy engines consume.
type Program struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Faculty      string   `json:"faculty,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	SubjectCodes []string `json:"subject_codes,omitempty"`
}

// ProgramMatch is one keyword-search hit.
type ProgramMatch struct {
	Program         Program  `json:"program"`
	Type            string   `json:"type"`
	Score           int      `json:"score"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// SynergyMatch scores how well a minor complements a major.
type SynergyMatch struct {
	Minor        Program  `json:"minor"`
	Score        int      `json:"score"`
	SharedCodes  []string `json:"shared_codes,omitempty"`
	SharedTopics []string `json:"shared_topics,omitempty"`
}

// ProgramIndex holds the flattened major and minor lists, loaded once.
type ProgramIndex struct {
	majors []Program
	minors []Program
}

// NewProgramIndex builds an index from already-flattened program lists.
func NewProgramIndex(majors, minors []Program) *ProgramIndex {
	return &ProgramIndex{majors: majors, minors: minors}
}

type programsFile struct {
	Faculties []struct {
		ShortCode string    `json:"short_code"`
		Majors    []Program `json:"majors"`
		Minors    []Program `json:"minors"`
	} `json:"faculties"`
}

// LoadPrograms reads the hierarchical faculty -> program JSON document and
// flattens it, injecting the faculty code into each program.
func LoadPrograms(path string) (*ProgramIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read programs file: %w", err)
	}
	var doc programsFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse programs file: %w", err)
	}

	ix := &ProgramIndex{}
	for _, fac := range doc.Faculties {
		for _, p := range fac.Majors {
			p.Faculty = fac.ShortCode
			ix.majors = append(ix.majors, p)
		}
		for _, p := range fac.Minors {
			p.Faculty = fac.ShortCode
			ix.minors = append(ix.minors, p)
		}
	}
	return ix, nil
}

// Search scores programs against a free-text query: 5 points per name token
// match, 2 per keyword match. searchType is "major", "minor" or "" for both.
func (ix *ProgramIndex) Search(query, searchType string) []ProgramMatch {
	tokens := tokenSet(query)
	if len(tokens) == 0 {
		return nil
	}

	var results []ProgramMatch
	score := func(programs []Program, typ string) {
		for _, prog := range programs {
			nameTokens := tokenSet(prog.Name)
			keywords := tokenSet(strings.Join(prog.Keywords, " "))

			nameMatch := intersectCount(tokens, nameTokens)
			keywordMatch, matched := intersect(tokens, keywords)

			s := nameMatch*5 + keywordMatch*2
			if s > 0 {
				results = append(results, ProgramMatch{
					Program:         prog,
					Type:            typ,
					Score:           s,
					MatchedKeywords: matched,
				})
			}
		}
	}

	if searchType == "" || searchType == "major" {
		score(ix.majors, "major")
	}
	if searchType == "" || searchType == "minor" {
		score(ix.minors, "minor")
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Program.Name < results[j].Program.Name
	})
	return results
}

// Synergy ranks every minor against the given major: shared subject codes
// weigh 3 (course overlap makes a minor cheap to add), shared keywords 1.
func (ix *ProgramIndex) Synergy(majorID string) ([]SynergyMatch, error) {
	var major *Program
	for i := range ix.majors {
		if ix.majors[i].ID == majorID {
			major = &ix.majors[i]
			break
		}
	}
	if major == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, majorID)
	}

	majorCodes := stringSet(major.SubjectCodes)
	majorKeywords := tokenSet(strings.Join(major.Keywords, " "))

	var results []SynergyMatch
	for _, minor := range ix.minors {
		_, sharedCodes := intersect(majorCodes, stringSet(minor.SubjectCodes))
		_, sharedTopics := intersect(majorKeywords, tokenSet(strings.Join(minor.Keywords, " ")))

		s := len(sharedCodes)*3 + len(sharedTopics)
		if s > 0 {
			results = append(results, SynergyMatch{
				Minor:        minor,
				Score:        s,
				SharedCodes:  sharedCodes,
				SharedTopics: sharedTopics,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Minor.Name < results[j].Minor.Name
	})
	return results, nil
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(text)) {
		set[t] = true
	}
	return set
}

func stringSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[strings.ToLower(s)] = true
	}
	return set
}

func intersectCount(a, b map[string]bool) int {
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}

func intersect(a, b map[string]bool) (int, []string) {
	var shared []string
	for k := range a {
		if b[k] {
			shared = append(shared, k)
		}
	}
	sort.Strings(shared)
	return len(shared), shared
}
