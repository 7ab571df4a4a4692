package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eoinrun/coach-bot/internal/domain"
	"eoinrun/coach-bot/internal/templates"
)

type sentMessage struct {
	UserKey string
	Subject string
	Body    string
}

// stubGateway is an in-memory platform used across the service tests.
type stubGateway struct {
	teams      []domain.Team
	rosterErr  error
	workouts   map[string][]domain.Workout
	workoutErr map[string]error
	inbox      []domain.InboxMessage
	inboxErr   error
	sendErr    error
	sent       []sentMessage
}

func (g *stubGateway) TeamRoster(context.Context, string) ([]domain.Team, error) {
	if g.rosterErr != nil {
		return nil, g.rosterErr
	}
	return g.teams, nil
}

func (g *stubGateway) WorkoutList(_ context.Context, _, userKey string, _, _ time.Time) ([]domain.Workout, error) {
	if err := g.workoutErr[userKey]; err != nil {
		return nil, err
	}
	return g.workouts[userKey], nil
}

func (g *stubGateway) SendMessage(_ context.Context, _, userKey, subject, body string) error {
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, sentMessage{UserKey: userKey, Subject: subject, Body: body})
	return nil
}

func (g *stubGateway) InboxMessages(context.Context, string, string) ([]domain.InboxMessage, error) {
	if g.inboxErr != nil {
		return nil, g.inboxErr
	}
	return g.inbox, nil
}

func newTestCache() *CredentialCache {
	return NewCredentialCache(&stubAuthenticator{tokens: []string{"tok"}}, "coach@example.com", "secret", time.Hour)
}

func passWindow(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	return time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
}

func completedWorkouts(t *testing.T) []domain.Workout {
	return []domain.Workout{{Date: day(t, "2024-06-10T06:00:00"), Completion: 1, Activities: unplanned("Run")}}
}

func missedWorkouts(t *testing.T) []domain.Workout {
	return []domain.Workout{{Date: day(t, "2024-06-11T06:00:00"), Completion: 0, Activities: planned("Run", 30)}}
}

func TestBroadcastSendsOneMessagePerAthleteWithPlan(t *testing.T) {
	gw := &stubGateway{
		teams: []domain.Team{{
			Name: "Tuesday Group",
			Athletes: []domain.Athlete{
				{UserKey: "a1", FirstName: "Aoife"},
				{UserKey: "a2", FirstName: "Brian"},
				{UserKey: "a3", FirstName: "Cara"},
			},
		}},
		workouts: map[string][]domain.Workout{
			"a1": completedWorkouts(t),
			"a2": missedWorkouts(t),
			"a3": nil, // no records in range
		},
	}
	b := NewBroadcaster(newTestCache(), gw, templates.Defaults())

	start, end := passWindow(t)
	report, err := b.Run(context.Background(), start, end)
	require.NoError(t, err)

	require.Equal(t, 3, report.Total)
	require.Equal(t, 1, report.Complete)
	require.Equal(t, 1, report.Incomplete)
	require.Equal(t, 1, report.NoPlan)
	require.Equal(t, 0, report.Skipped)

	// The no-plan athlete receives nothing.
	require.Len(t, gw.sent, 2)
	for _, msg := range gw.sent {
		require.NotEqual(t, "a3", msg.UserKey)
	}
}

func TestBroadcastSameVariantAcrossCategoryWithinOnePass(t *testing.T) {
	athletes := make([]domain.Athlete, 0, 8)
	workouts := map[string][]domain.Workout{}
	for i := range 8 {
		key := fmt.Sprintf("a%d", i)
		athletes = append(athletes, domain.Athlete{UserKey: key, FirstName: "Athlete"})
		workouts[key] = completedWorkouts(t)
	}
	gw := &stubGateway{
		teams:    []domain.Team{{Name: "Club", Athletes: athletes}},
		workouts: workouts,
	}
	b := NewBroadcaster(newTestCache(), gw, templates.Defaults())

	start, end := passWindow(t)
	_, err := b.Run(context.Background(), start, end)
	require.NoError(t, err)

	// The draw happens once per category per pass, so all eight complete
	// athletes get the identical variant even with three in the pool.
	require.Len(t, gw.sent, 8)
	for _, msg := range gw.sent {
		require.Equal(t, gw.sent[0].Subject, msg.Subject)
		require.Equal(t, gw.sent[0].Body, msg.Body)
	}
}

func TestBroadcastSubstitutesAthleteName(t *testing.T) {
	gw := &stubGateway{
		teams: []domain.Team{{
			Name:     "Club",
			Athletes: []domain.Athlete{{UserKey: "a1", FirstName: "Sinead"}},
		}},
		workouts: map[string][]domain.Workout{"a1": missedWorkouts(t)},
	}
	b := NewBroadcaster(newTestCache(), gw, templates.Defaults())

	start, end := passWindow(t)
	_, err := b.Run(context.Background(), start, end)
	require.NoError(t, err)

	require.Len(t, gw.sent, 1)
	require.Equal(t, "Check in", gw.sent[0].Subject)
	require.Contains(t, gw.sent[0].Body, "Sinead")
	require.NotContains(t, gw.sent[0].Body, "$NAME")
}

func TestBroadcastSkipsAthleteOnPlanFetchError(t *testing.T) {
	gw := &stubGateway{
		teams: []domain.Team{{
			Name: "Club",
			Athletes: []domain.Athlete{
				{UserKey: "a1", FirstName: "Aoife"},
				{UserKey: "a2", FirstName: "Brian"},
			},
		}},
		workouts:   map[string][]domain.Workout{"a2": completedWorkouts(t)},
		workoutErr: map[string]error{"a1": fmt.Errorf("%w: status=500", domain.ErrTransient)},
	}
	b := NewBroadcaster(newTestCache(), gw, templates.Defaults())

	start, end := passWindow(t)
	report, err := b.Run(context.Background(), start, end)
	require.NoError(t, err)

	require.Equal(t, 1, report.Skipped)
	require.Equal(t, 1, report.Complete)
	require.Len(t, gw.sent, 1)
	require.Equal(t, "a2", gw.sent[0].UserKey)
}

func TestBroadcastFailsPassWhenRosterUnavailable(t *testing.T) {
	gw := &stubGateway{rosterErr: fmt.Errorf("%w: status=503", domain.ErrTransient)}
	b := NewBroadcaster(newTestCache(), gw, templates.Defaults())

	start, end := passWindow(t)
	_, err := b.Run(context.Background(), start, end)
	require.ErrorIs(t, err, domain.ErrTransient)
	require.Empty(t, gw.sent)
}
