package domain

// Athlete is one coached athlete as listed by the training platform.
// Snapshots are immutable for the duration of a broadcast pass and re-fetched
// every pass; nothing here is cached across passes.
type Athlete struct {
	UserKey   string
	FirstName string
	LastName  string
	Email     string
}

// FullName joins first and last name for log output.
func (a Athlete) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Team groups the athletes belonging to one coaching team on the platform.
type Team struct {
	Name     string
	Athletes []Athlete
}
