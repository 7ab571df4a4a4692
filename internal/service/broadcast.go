package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eoinrun/coach-bot/internal/domain"
	"eoinrun/coach-bot/internal/observability"
	"eoinrun/coach-bot/internal/templates"
)

// Gateway is the platform API surface the engine depends on. Implemented by
// finalsurge.Client; stubbed in tests.
type Gateway interface {
	TeamRoster(ctx context.Context, token string) ([]domain.Team, error)
	WorkoutList(ctx context.Context, token, userKey string, start, end time.Time) ([]domain.Workout, error)
	SendMessage(ctx context.Context, token, userKey, subject, body string) error
	InboxMessages(ctx context.Context, token, cursor string) ([]domain.InboxMessage, error)
}

// PassReport tallies one broadcast pass. The counts are ephemeral: logged and
// counted into metrics when the pass ends, then discarded.
type PassReport struct {
	Start      time.Time
	End        time.Time
	Total      int
	Complete   int
	Incomplete int
	NoPlan     int
	Skipped    int
}

func (r PassReport) String() string {
	return fmt.Sprintf("period %s to %s: %d athletes, %d complete, %d incomplete, %d no plan, %d skipped",
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"),
		r.Total, r.Complete, r.Incomplete, r.NoPlan, r.Skipped)
}

// Broadcaster runs one full weekly pass over the roster: fetch each athlete's
// plan for the window, classify it, and send the variant drawn for that
// verdict category.
type Broadcaster struct {
	creds *CredentialCache
	gw    Gateway
	pool  *templates.Pool
}

func NewBroadcaster(creds *CredentialCache, gw Gateway, pool *templates.Pool) *Broadcaster {
	return &Broadcaster{creds: creds, gw: gw, pool: pool}
}

// Run executes one broadcast pass over the inclusive window [start, end].
// A returned error means the pass never got going (login or roster fetch
// failed) and should be retried at the next eligible tick; per-athlete
// failures only skip that athlete.
func (b *Broadcaster) Run(ctx context.Context, start, end time.Time) (PassReport, error) {
	report := PassReport{Start: start, End: end}

	token, err := b.creds.Token(ctx)
	if err != nil {
		return report, err
	}

	teams, err := b.gw.TeamRoster(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			b.creds.Invalidate(token)
		}
		return report, fmt.Errorf("fetch roster: %w", err)
	}

	// One draw per category per pass: every athlete in the same verdict
	// category receives the same variant within this pass.
	completeVariant := b.pool.Pick(domain.VerdictComplete)
	incompleteVariant := b.pool.Pick(domain.VerdictIncomplete)

	for _, team := range teams {
		for _, athlete := range team.Athletes {
			report.Total++

			workouts, err := b.gw.WorkoutList(ctx, token, athlete.UserKey, start, end)
			if err != nil {
				if errors.Is(err, domain.ErrAuth) {
					b.creds.Invalidate(token)
				}
				log.Printf("ERROR: fetch plan for %s (%s): %v", athlete.FullName(), team.Name, err)
				report.Skipped++
				continue
			}

			result := Classify(workouts)
			observability.RecordVerdict(result.Verdict)

			var variant domain.Template
			switch result.Verdict {
			case domain.VerdictNoPlan:
				report.NoPlan++
				continue
			case domain.VerdictIncomplete:
				report.Incomplete++
				variant = incompleteVariant
			default:
				report.Complete++
				variant = completeVariant
			}

			subject, body := templates.Personalize(variant, athlete.FirstName)
			if err := b.gw.SendMessage(ctx, token, athlete.UserKey, subject, body); err != nil {
				if errors.Is(err, domain.ErrAuth) {
					b.creds.Invalidate(token)
				}
				log.Printf("ERROR: send to %s (%s): %v", athlete.FullName(), team.Name, err)
				continue
			}
			observability.RecordMessageSent("broadcast")
		}
	}
	return report, nil
}
