package scheduler

import (
	"sync"
	"time"
)

// GateState is the trigger gate's position in its idle -> armed -> running ->
// idle cycle. The armed state is transient: arming and dispatch happen inside
// one Evaluate call, so callers only ever observe idle or running.
type GateState string

const (
	GateIdle    GateState = "idle"
	GateRunning GateState = "running"
)

// Gate guards the weekly broadcast so it fires at most once per qualifying
// minute. Shared between the tick loop and the dispatched broadcast worker,
// so every field is behind the mutex.
type Gate struct {
	weekday time.Weekday
	hour    int
	minute  int

	mu      sync.Mutex
	state   GateState
	retry   bool
	firedAt time.Time // minute window of the last arming
}

func NewGate(weekday time.Weekday, hour, minute int) *Gate {
	return &Gate{weekday: weekday, hour: hour, minute: minute, state: GateIdle}
}

// Evaluate decides whether a broadcast run should be dispatched at the given
// civil instant. Returning true moves the gate to running; the caller must
// eventually call Complete. A second Evaluate within the same qualifying
// minute never fires again, and nothing fires while a run is in flight.
func (g *Gate) Evaluate(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == GateRunning {
		return false
	}

	window := now.Truncate(time.Minute)
	if now.Weekday() == g.weekday && now.Hour() == g.hour && now.Minute() == g.minute && !window.Equal(g.firedAt) {
		g.firedAt = window
		g.retry = false
		g.state = GateRunning
		return true
	}

	// A failed pass retries on later ticks, but only while the qualifying
	// day lasts; after that the attempt is lost until next week.
	if g.retry {
		if now.Weekday() != g.weekday {
			g.retry = false
			return false
		}
		g.retry = false
		g.state = GateRunning
		return true
	}
	return false
}

// Complete signals the dispatched run finished. On failure the retry flag is
// left set so the next eligible tick tries again.
func (g *Gate) Complete(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = GateIdle
	if err != nil {
		g.retry = true
	}
}

// State returns the gate position and whether a retry is pending.
func (g *Gate) State() (GateState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, g.retry
}
