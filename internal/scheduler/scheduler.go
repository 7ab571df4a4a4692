// Package scheduler runs the bot's cooperative tick loop: a ~1-second ticker
// that evaluates the weekly broadcast trigger and the inbox poll interval.
// The broadcast pass is dispatched onto its own goroutine so a long roster
// sweep never blocks the loop; the inbox poll runs inline.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"eoinrun/coach-bot/internal/observability"
	"eoinrun/coach-bot/internal/service"
)

// BroadcastRunner is the weekly pass. Implemented by service.Broadcaster.
type BroadcastRunner interface {
	Run(ctx context.Context, start, end time.Time) (service.PassReport, error)
}

// InboxRunner is one inbox poll pass. Implemented by service.InboxPoller.
type InboxRunner interface {
	Poll(ctx context.Context) error
}

// Status is the read-only snapshot served by the status endpoint.
type Status struct {
	GateState    GateState `json:"gate_state"`
	RetryPending bool      `json:"retry_pending"`
	NextFire     time.Time `json:"next_fire"`
	LastPass     time.Time `json:"last_pass,omitzero"`
	LastPoll     time.Time `json:"last_poll,omitzero"`
}

type Scheduler struct {
	gate         *Gate
	loc          *time.Location
	broadcaster  BroadcastRunner
	poller       InboxRunner // nil when the inbox listener is disabled
	pollInterval time.Duration
	tick         time.Duration
	now          func() time.Time

	mu       sync.Mutex
	lastPoll time.Time
	lastPass time.Time
}

func New(gate *Gate, loc *time.Location, broadcaster BroadcastRunner, poller InboxRunner, pollInterval time.Duration) *Scheduler {
	return &Scheduler{
		gate:         gate,
		loc:          loc,
		broadcaster:  broadcaster,
		poller:       poller,
		pollInterval: pollInterval,
		tick:         time.Second,
		now:          time.Now,
	}
}

// Run drives the tick loop until the context is cancelled. Failures inside a
// tick are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tickOnce(ctx)
		}
	}
}

// tickOnce evaluates both scheduled actions for the current instant. The
// weekly check always runs first, so a long inbox pass can delay but never
// starve it within a cycle.
func (s *Scheduler) tickOnce(ctx context.Context) {
	now := s.now().In(s.loc)

	if s.gate.Evaluate(now) {
		start, end := WeekWindow(now)
		log.Printf("broadcast pass dispatched for %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
		go s.runBroadcast(ctx, start, end)
	}

	if s.poller != nil && now.Sub(s.pollWatermark()) >= s.pollInterval {
		s.setPollWatermark(now)
		if err := s.poller.Poll(ctx); err != nil {
			log.Printf("ERROR: inbox poll: %v", err)
			observability.RecordPoll("failure")
		} else {
			observability.RecordPoll("success")
		}
	}
}

func (s *Scheduler) runBroadcast(ctx context.Context, start, end time.Time) {
	report, err := s.broadcaster.Run(ctx, start, end)
	if err != nil {
		log.Printf("ERROR: broadcast pass failed: %v", err)
		observability.RecordPass("failure")
	} else {
		log.Printf("broadcast pass done: %s", report)
		log.Printf("next check: %s", s.nextFire(s.now().In(s.loc)).Format("3:04 PM, Monday, January 02"))
		observability.RecordPass("success")
		s.markPass()
	}
	// Completion is signalled explicitly so the running state clears even if
	// the pass failed; a failure re-arms the retry flag for later ticks.
	s.gate.Complete(err)
}

// Status reports the scheduler watermarks for the status server.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, retry := s.gate.State()
	return Status{
		GateState:    state,
		RetryPending: retry,
		NextFire:     s.nextFire(s.now().In(s.loc)),
		LastPass:     s.lastPass,
		LastPoll:     s.lastPoll,
	}
}

func (s *Scheduler) pollWatermark() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPoll
}

func (s *Scheduler) setPollWatermark(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPoll = t
}

func (s *Scheduler) markPass() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPass = s.now()
}

// nextFire computes the next configured weekly instant strictly after now.
func (s *Scheduler) nextFire(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), s.gate.hour, s.gate.minute, 0, 0, now.Location())
	days := (int(s.gate.weekday) - int(now.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, days)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// WeekWindow is the checked period for a pass fired at now: the start of the
// ISO week (the preceding Sunday boundary) through now.
func WeekWindow(now time.Time) (start, end time.Time) {
	iso := int(now.Weekday())
	if iso == 0 {
		iso = 7
	}
	return now.AddDate(0, 0, -iso), now
}
