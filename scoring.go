package main

import (
	"math"
	"strings"
)

// ScoreWeights are the multipliers applied to each sub-score before summing.
type ScoreWeights struct {
	Urgency   float64
	Readiness float64
	Chain     float64
	Scarcity  float64
	Interest  float64
	Overlap   float64
	Penalty   float64
}

// WeightsForYear returns the adaptive weight set for a student year.
// Seniors shift almost entirely to graduation urgency, first and second
// years toward chain-building and interests.
func WeightsForYear(year int) ScoreWeights {
	w := ScoreWeights{
		Urgency:   1.3,
		Readiness: 1.0,
		Chain:     1.1,
		Scarcity:  1.0,
		Interest:  0.8,
		Overlap:   0.7,
		Penalty:   1.0,
	}
	switch {
	case year >= 4: // graduation panic
		w.Urgency = 2.5
		w.Chain = 0.1
		w.Interest = 0.5
		w.Scarcity = 1.5
	case year <= 2: // exploration
		w.Urgency = 1.0
		w.Chain = 1.6
		w.Interest = 1.2
	default: // year 3
		w.Urgency = 1.5
	}
	return w
}

// batchAggregates are computed once over the whole candidate set, never per
// candidate: chain sizes (how many other candidates require a course) and
// subject prefix counts.
type batchAggregates struct {
	chainSize   map[string]int
	prefixCount map[string]int
}

func aggregate(candidates []Course) batchAggregates {
	agg := batchAggregates{
		chainSize:   make(map[string]int, len(candidates)),
		prefixCount: make(map[string]int),
	}
	for _, c := range candidates {
		agg.prefixCount[c.Subject()]++
		expr := c.PrereqExpr()
		seen := make(map[string]bool)
		for _, block := range expr.Blocks {
			for _, opt := range block.Options {
				for _, code := range opt {
					if code != c.Code && !seen[code] {
						seen[code] = true
						agg.chainSize[code]++
					}
				}
			}
		}
	}
	return agg
}

// ScoreCandidates computes the sub-score vector and weighted final score for
// every candidate. Candidates must already be filtered (eligible, not taken,
// level-appropriate); relevance carries the externally supplied interest
// scores (0-100, zero value when absent).
func ScoreCandidates(candidates []Course, class Classification, year int, relevance map[string]float64, keywords []string) []CandidateScore {
	agg := aggregate(candidates)
	weights := WeightsForYear(year)

	upper := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToUpper(strings.TrimSpace(k)); k != "" {
			upper = append(upper, k)
		}
	}

	scores := make([]CandidateScore, len(candidates))
	for i, c := range candidates {
		s := CandidateScore{
			Urgency:   urgencyScore(c.Code, class),
			Readiness: readinessScore(c, year),
			Chain:     chainScore(agg.chainSize[c.Code]),
			Overlap:   overlapScore(agg.prefixCount[c.Subject()]),
		}
		s.Scarcity = scarcityScore(c, s.Urgency, agg.chainSize[c.Code])
		s.Interest = interestScore(relevance[c.Code], class.CorePool[c.Code] || class.AreaPool[c.Code])
		s.Penalty = subjectPenalty(c.Subject(), s.Urgency, upper)

		total := s.Urgency*weights.Urgency +
			s.Readiness*weights.Readiness +
			s.Chain*weights.Chain +
			s.Scarcity*weights.Scarcity +
			s.Interest*weights.Interest -
			s.Overlap*weights.Overlap -
			s.Penalty*weights.Penalty
		s.Final = math.Max(0, total)
		scores[i] = s
	}
	return scores
}

// urgencyScore is the graduation-relevance tier of a candidate.
func urgencyScore(code string, class Classification) float64 {
	switch {
	case class.RequiredMissing[code]:
		return 40
	case class.UniversityMissing[code]:
		return 35
	case class.CorePool[code]:
		return 25
	case class.AreaPool[code]:
		return 15
	}
	return 0
}

// readinessScore reflects how well the course level and prerequisite load
// match the student's year.
func readinessScore(c Course, year int) float64 {
	score := 20.0
	switch {
	case c.Level == year:
		score += 10
	case c.Level == year+1:
		score += 5
	case c.Level >= year+2:
		score -= 15
	case c.Level < year:
		score -= 5
	}
	switch n := c.PrereqExpr().CodeCount(); {
	case n == 0:
		score += 5
	case n >= 3:
		score -= 10
	}
	return score
}

// chainScore rewards courses that unlock several other candidates.
func chainScore(size int) float64 {
	switch {
	case size >= 3:
		return 20
	case size == 2:
		return 12
	case size == 1:
		return 5
	}
	return 0
}

// scarcityScore rewards courses offered in only one term per year, more so
// when they are also urgency-relevant or chain-relevant.
func scarcityScore(c Course, urgency float64, chainSize int) float64 {
	if len(c.Terms) != 1 {
		return 0
	}
	score := 5.0
	if urgency > 0 {
		score += 10
	}
	if chainSize > 0 {
		score += 5
	}
	return score
}

// interestScore scales the externally supplied relevance score. Elective-pool
// courses weigh interests twice as heavily as the rest.
func interestScore(relevance float64, elective bool) float64 {
	if elective {
		return math.Min(relevance*0.4, 20)
	}
	return math.Min(relevance*0.2, 10)
}

// overlapScore penalizes subject prefixes that dominate the candidate set.
func overlapScore(prefixCount int) float64 {
	switch {
	case prefixCount >= 4:
		return 15
	case prefixCount == 3:
		return 8
	}
	return 0
}

// subjectPenalty penalizes subjects foreign to the declared interest
// keywords. Urgency-relevant courses are never penalized.
func subjectPenalty(subject string, urgency float64, keywords []string) float64 {
	if urgency > 0 || subject == "" {
		return 0
	}
	if len(keywords) == 0 {
		return 0
	}
	partial := false
	for _, k := range keywords {
		if k == subject {
			return 0
		}
		if strings.HasPrefix(k, subject) || strings.HasPrefix(subject, k) {
			partial = true
		}
	}
	if partial {
		return 5
	}
	return 25
}
