package main

// maxPerSubject caps how many courses from one subject prefix a single
// term plan may carry, keeping plans from collapsing into one department.
const maxPerSubject = 3

// BuildTermPlan packs ranked recommendations into one term greedily by
// score, subject to the credit cap and the per-subject limit. The input
// slice is assumed to be sorted best-first, as RankCandidates returns it.
func BuildTermPlan(ranked []Recommendation, maxCredits float64) TermPlan {
	plan := TermPlan{}
	perSubject := make(map[string]int)

	for _, rec := range ranked {
		credit := rec.Course.Credit
		if credit <= 0 {
			credit = DefaultCredit
		}
		if plan.TotalCredits+credit > maxCredits {
			continue
		}
		subject := rec.Course.Subject()
		if perSubject[subject] >= maxPerSubject {
			continue
		}
		plan.Courses = append(plan.Courses, rec)
		plan.TotalCredits += credit
		perSubject[subject]++
	}
	return plan
}
