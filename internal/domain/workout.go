package domain

import "time"

// Activity is one activity entry inside a workout record. The planned_* fields
// come back null from the platform whenever the slot carries no assigned
// session, so they are all pointers.
type Activity struct {
	TypeName               string
	PlannedDuration        *float64
	PlannedAmount          *float64
	PlannedAmountType      *string
	PlannedPaceLow         *float64
	PlannedPaceLowType     *string
	PlannedPaceHigh        *float64
	PlannedPaceHighType    *string
	PlannedPaceDisplay     *string
	PlannedPaceDisplayType *string
}

// Planned reports whether any of the nine planned_* attributes is present.
func (a Activity) Planned() bool {
	return a.PlannedDuration != nil ||
		a.PlannedAmount != nil ||
		a.PlannedAmountType != nil ||
		a.PlannedPaceLow != nil ||
		a.PlannedPaceLowType != nil ||
		a.PlannedPaceHigh != nil ||
		a.PlannedPaceHighType != nil ||
		a.PlannedPaceDisplay != nil ||
		a.PlannedPaceDisplayType != nil
}

// Workout is one raw workout record fetched from the platform for a single
// athlete. Completion is the platform's 0/1 flag, kept as an int to preserve
// the wire value.
type Workout struct {
	Date       time.Time
	Completion int
	Activities []Activity
}

// Completed reports whether the platform marked the record done.
func (w Workout) Completed() bool {
	return w.Completion == 1
}
