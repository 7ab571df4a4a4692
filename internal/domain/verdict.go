package domain

// Verdict is the per-athlete outcome of classifying one checked window.
type Verdict string

const (
	VerdictComplete   Verdict = "complete"
	VerdictIncomplete Verdict = "incomplete"
	VerdictNoPlan     Verdict = "no-plan"
)

// ActivitySummary is the classifier's view of one activity on one date.
type ActivitySummary struct {
	Name      string
	Completed bool
}

// DayResult is a single calendar date that ended up unsatisfied: no record on
// that date carried a completion flag. Derived per pass, never stored.
type DayResult struct {
	Date       string // YYYY-MM-DD
	Activities []ActivitySummary
}

// AthleteResult aggregates the classifier's output for one athlete over the
// checked window.
type AthleteResult struct {
	Verdict        Verdict
	IncompleteDays []DayResult
}
