package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyClassification() Classification {
	return Classification{
		RequiredMissing:   map[string]bool{},
		UniversityMissing: map[string]bool{},
		CorePool:          map[string]bool{},
		AreaPool:          map[string]bool{},
	}
}

func TestWeightsForYear(t *testing.T) {
	defaults := WeightsForYear(3)
	assert.Equal(t, 1.5, defaults.Urgency)
	assert.Equal(t, 1.1, defaults.Chain)
	assert.Equal(t, 0.8, defaults.Interest)

	senior := WeightsForYear(4)
	assert.Equal(t, 2.5, senior.Urgency)
	assert.Equal(t, 0.1, senior.Chain)
	assert.Equal(t, 0.5, senior.Interest)
	assert.Equal(t, 1.5, senior.Scarcity)

	freshman := WeightsForYear(1)
	assert.Equal(t, 1.0, freshman.Urgency)
	assert.Equal(t, 1.6, freshman.Chain)
	assert.Equal(t, 1.2, freshman.Interest)
}

func TestUrgencyScore_Tiers(t *testing.T) {
	class := emptyClassification()
	class.RequiredMissing["CS 301"] = true
	class.UniversityMissing["ENG 101"] = true
	class.CorePool["CS 401"] = true
	class.AreaPool["EE 417"] = true

	assert.Equal(t, 40.0, urgencyScore("CS 301", class))
	assert.Equal(t, 35.0, urgencyScore("ENG 101", class))
	assert.Equal(t, 25.0, urgencyScore("CS 401", class))
	assert.Equal(t, 15.0, urgencyScore("EE 417", class))
	assert.Equal(t, 0.0, urgencyScore("PHIL 101", class))
}

func TestReadinessScore(t *testing.T) {
	tests := []struct {
		name   string
		course Course
		year   int
		want   float64
	}{
		{"level matches year, no prereqs", Course{Code: "CS 201", Level: 2}, 2, 35},
		{"one level above", Course{Code: "CS 301", Level: 3}, 2, 30},
		{"two levels above", Course{Code: "CS 401", Level: 4}, 2, 10},
		{"below year", Course{Code: "CS 101", Level: 1}, 3, 20},
		{"heavy prereq load", Course{
			Code: "CS 412", Level: 4,
			Prerequisites: "CS 301 and CS 303 and MATH 204",
		}, 4, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readinessScore(tt.course, tt.year))
		})
	}
}

func TestChainAndPrefixAggregates(t *testing.T) {
	candidates := []Course{
		{Code: "CS 201"},
		{Code: "CS 301", Prerequisites: "CS 201"},
		{Code: "CS 303", Prerequisites: "CS 201"},
		{Code: "CS 412", Prerequisites: "CS 201 and CS 301"},
		{Code: "EE 200"},
	}
	agg := aggregate(candidates)

	assert.Equal(t, 3, agg.chainSize["CS 201"])
	assert.Equal(t, 1, agg.chainSize["CS 301"])
	assert.Equal(t, 0, agg.chainSize["EE 200"])
	assert.Equal(t, 4, agg.prefixCount["CS"])
	assert.Equal(t, 1, agg.prefixCount["EE"])
}

func TestChainScore_Tiers(t *testing.T) {
	assert.Equal(t, 20.0, chainScore(3))
	assert.Equal(t, 20.0, chainScore(5))
	assert.Equal(t, 12.0, chainScore(2))
	assert.Equal(t, 5.0, chainScore(1))
	assert.Equal(t, 0.0, chainScore(0))
}

func TestScarcityScore(t *testing.T) {
	single := Course{Code: "CS 405", Terms: []string{"Fall"}}
	assert.Equal(t, 5.0, scarcityScore(single, 0, 0))
	assert.Equal(t, 15.0, scarcityScore(single, 25, 0))
	assert.Equal(t, 20.0, scarcityScore(single, 25, 2))

	both := Course{Code: "CS 201", Terms: []string{"Fall", "Spring"}}
	assert.Equal(t, 0.0, scarcityScore(both, 40, 3))

	unknown := Course{Code: "CS 202"}
	assert.Equal(t, 0.0, scarcityScore(unknown, 40, 3))
}

func TestInterestScore_ElectiveScaling(t *testing.T) {
	assert.Equal(t, 16.0, interestScore(40, true))
	assert.Equal(t, 20.0, interestScore(80, true), "elective cap at 20")
	assert.Equal(t, 8.0, interestScore(40, false))
	assert.Equal(t, 10.0, interestScore(90, false), "non-elective cap at 10")
}

func TestOverlapScore(t *testing.T) {
	assert.Equal(t, 15.0, overlapScore(5))
	assert.Equal(t, 15.0, overlapScore(4))
	assert.Equal(t, 8.0, overlapScore(3))
	assert.Equal(t, 0.0, overlapScore(2))
}

func TestSubjectPenalty(t *testing.T) {
	keywords := []string{"CS", "MATHEMATICS"}

	assert.Equal(t, 0.0, subjectPenalty("PHIL", 25, keywords), "urgency-relevant is never penalized")
	assert.Equal(t, 0.0, subjectPenalty("CS", 0, keywords), "exact keyword match")
	assert.Equal(t, 5.0, subjectPenalty("MATH", 0, keywords), "prefix overlap")
	assert.Equal(t, 25.0, subjectPenalty("PHIL", 0, keywords), "no overlap")
	assert.Equal(t, 0.0, subjectPenalty("PHIL", 0, nil), "no keywords declared")
}

// A year 4 student's missing required course dominates the final score
// through the 2.5x urgency weight, regardless of interest fit.
func TestScoreCandidates_SeniorUrgencyDominates(t *testing.T) {
	class := emptyClassification()
	class.RequiredMissing["CS 204"] = true

	candidates := []Course{
		{Code: "CS 204", Level: 2},
		{Code: "PHIL 101", Level: 1, Description: "ethics"},
	}
	relevance := map[string]float64{"PHIL 101": 100}

	scores := ScoreCandidates(candidates, class, 4, relevance, nil)
	require.Len(t, scores, 2)

	assert.Equal(t, 40.0, scores[0].Urgency)
	assert.Equal(t, 100.0, scores[0].Urgency*2.5)
	assert.Greater(t, scores[0].Final, scores[1].Final)
	assert.GreaterOrEqual(t, scores[0].Final, 100.0)
}

func TestScoreCandidates_FlooredAtZero(t *testing.T) {
	class := emptyClassification()
	// Four same-prefix candidates trigger the overlap penalty; the foreign
	// subject also draws the full relevance penalty.
	candidates := []Course{
		{Code: "PHIL 101", Level: 4, Prerequisites: "PHIL 100 and PHIL 102 and PHIL 103"},
		{Code: "PHIL 102", Level: 4, Prerequisites: "PHIL 100 and PHIL 101 and PHIL 103"},
		{Code: "PHIL 103", Level: 4, Prerequisites: "PHIL 100 and PHIL 101 and PHIL 102"},
		{Code: "PHIL 104", Level: 4, Prerequisites: "PHIL 100 and PHIL 101 and PHIL 102"},
	}

	scores := ScoreCandidates(candidates, class, 1, nil, []string{"CS"})
	for _, s := range scores {
		assert.GreaterOrEqual(t, s.Final, 0.0)
	}
}

func TestScoreCandidates_UrgencyMonotonic(t *testing.T) {
	class := emptyClassification()
	class.RequiredMissing["CS 301"] = true
	class.AreaPool["CS 302"] = true

	// Same shape except for the urgency tier.
	candidates := []Course{
		{Code: "CS 301", Level: 3},
		{Code: "CS 302", Level: 3},
	}
	scores := ScoreCandidates(candidates, class, 3, nil, nil)
	require.Len(t, scores, 2)
	assert.Greater(t, scores[0].Final, scores[1].Final)
}
