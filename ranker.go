package main

import (
	"fmt"
	"sort"
	"strings"
)

// RankOptions bound the recommendation output.
type RankOptions struct {
	MinScore   float64
	MaxResults int
}

// DefaultRankOptions matches the advisor defaults: drop rows scoring 15 or
// below, return at most 20.
func DefaultRankOptions() RankOptions {
	return RankOptions{MinScore: 15, MaxResults: 20}
}

// RankCandidates filters the catalog down to takeable candidates, scores
// them, and returns the ordered recommendation rows. Identical inputs always
// produce identical output: ties are broken by ascending course code.
func RankCandidates(catalog []Course, profile *StudentProfile, class Classification, relevance map[string]float64, keywords []string, opts RankOptions) []Recommendation {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultRankOptions().MaxResults
	}

	candidates := make([]Course, 0, len(catalog))
	for _, c := range catalog {
		if profile.Taken[c.Code] {
			continue
		}
		if c.IsCompanion() {
			continue
		}
		if !levelAppropriate(c, profile.Level) {
			continue
		}
		if !c.OfferedIn(profile.Term) {
			continue
		}
		// Eligibility uses the loose transcript-chain semantics: any single
		// code of a block suffices.
		if ok, _ := c.PrereqExpr().Satisfied(profile.Taken, MatchLoose); !ok {
			continue
		}
		candidates = append(candidates, c)
	}

	scores := ScoreCandidates(candidates, class, profile.Year, relevance, keywords)

	rows := make([]Recommendation, 0, len(candidates))
	for i, c := range candidates {
		if scores[i].Final <= opts.MinScore {
			continue
		}
		rows = append(rows, Recommendation{
			Course:      c,
			Score:       scores[i],
			Category:    categoryLabel(c.Code, class, scores[i]),
			Explanation: explain(c, profile.Year, class, scores[i]),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score.Final != rows[j].Score.Final {
			return rows[i].Score.Final > rows[j].Score.Final
		}
		return rows[i].Course.Code < rows[j].Course.Code
	})

	if len(rows) > opts.MaxResults {
		rows = rows[:opts.MaxResults]
	}
	return rows
}

func levelAppropriate(c Course, level AcademicLevel) bool {
	if level == LevelGraduate {
		return c.Level >= 4
	}
	return c.Level < 5
}

// categoryLabel mirrors the urgency tiers, with strategic-chain and
// general-elective fallbacks for the rest.
func categoryLabel(code string, class Classification, s CandidateScore) string {
	switch {
	case class.RequiredMissing[code]:
		return "required"
	case class.UniversityMissing[code]:
		return "university"
	case class.CorePool[code]:
		return "core-elective"
	case class.AreaPool[code]:
		return "area-elective"
	case s.Chain >= 12:
		return "strategic-chain"
	}
	return "general-elective"
}

// explain lists the reasons that contributed to the score, highest priority
// first: urgency, chain, scarcity, interest, penalty, then a level-mismatch
// note.
func explain(c Course, year int, class Classification, s CandidateScore) []string {
	var reasons []string

	switch {
	case class.RequiredMissing[c.Code]:
		reasons = append(reasons, fmt.Sprintf("fills a missing required course (+%.0f)", s.Urgency))
	case class.UniversityMissing[c.Code]:
		reasons = append(reasons, fmt.Sprintf("fills a missing university requirement (+%.0f)", s.Urgency))
	case class.CorePool[c.Code]:
		reasons = append(reasons, fmt.Sprintf("counts toward core electives (+%.0f)", s.Urgency))
	case class.AreaPool[c.Code]:
		reasons = append(reasons, fmt.Sprintf("counts toward area electives (+%.0f)", s.Urgency))
	}
	if s.Chain > 0 {
		reasons = append(reasons, fmt.Sprintf("prerequisite for other recommended courses (+%.0f)", s.Chain))
	}
	if s.Scarcity > 0 {
		reasons = append(reasons, fmt.Sprintf("offered only in %s (+%.0f)", strings.Join(c.Terms, "/"), s.Scarcity))
	}
	if s.Interest > 0 {
		reasons = append(reasons, fmt.Sprintf("matches your interest query (+%.0f)", s.Interest))
	}
	if s.Penalty > 0 {
		reasons = append(reasons, fmt.Sprintf("outside your declared interest areas (-%.0f)", s.Penalty))
	}
	if c.Level >= year+2 {
		reasons = append(reasons, fmt.Sprintf("level %d00 course, well above year %d", c.Level, year))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "general elective")
	}
	return reasons
}
