package service

import (
	"log"
	"sort"

	"eoinrun/coach-bot/internal/domain"
)

// Classify turns one athlete's raw workout records over a checked window into
// a per-athlete verdict plus the list of unsatisfied dates.
//
// Records are grouped by calendar date. A record with completion 0 and none of
// the nine planned_* attributes set is an empty scheduling slot, not an
// assigned session, and is excluded before grouping; a date left with no
// records never counts as complete or incomplete. A date is satisfied if any
// remaining record on it carries completion 1.
func Classify(workouts []domain.Workout) domain.AthleteResult {
	if len(workouts) == 0 {
		return domain.AthleteResult{Verdict: domain.VerdictNoPlan}
	}

	byDate := map[string][]domain.ActivitySummary{}
	for _, w := range workouts {
		if len(w.Activities) == 0 {
			// The platform always attaches at least one activity; a record
			// without one is malformed and skipped on its own.
			log.Printf("ERROR: %v: workout record on %s has no activities", domain.ErrData, w.Date.Format("2006-01-02"))
			continue
		}
		if isPlaceholder(w) {
			continue
		}
		date := w.Date.Format("2006-01-02")
		byDate[date] = append(byDate[date], domain.ActivitySummary{
			Name:      w.Activities[0].TypeName,
			Completed: w.Completed(),
		})
	}

	var incomplete []domain.DayResult
	for date, activities := range byDate {
		satisfied := false
		for _, a := range activities {
			if a.Completed {
				satisfied = true
				break
			}
		}
		if !satisfied {
			incomplete = append(incomplete, domain.DayResult{Date: date, Activities: activities})
		}
	}
	sort.Slice(incomplete, func(i, j int) bool { return incomplete[i].Date < incomplete[j].Date })

	verdict := domain.VerdictComplete
	if len(incomplete) > 0 {
		verdict = domain.VerdictIncomplete
	}
	return domain.AthleteResult{Verdict: verdict, IncompleteDays: incomplete}
}

// isPlaceholder reports whether the record is an empty plan slot. This mirrors
// a quirk of the upstream plan format (completion 0 with every planned_*
// attribute null); revisit if the platform clarifies those semantics.
func isPlaceholder(w domain.Workout) bool {
	return !w.Completed() && !w.Activities[0].Planned()
}
