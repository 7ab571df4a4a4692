// Package observability holds the prometheus collectors for the bot.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"eoinrun/coach-bot/internal/domain"
)

var (
	passCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach_bot",
		Subsystem: "broadcast",
		Name:      "passes_total",
		Help:      "Number of weekly broadcast passes by outcome.",
	}, []string{"result"})

	verdictCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach_bot",
		Subsystem: "broadcast",
		Name:      "athletes_classified_total",
		Help:      "Number of athletes classified, grouped by verdict.",
	}, []string{"verdict"})

	messageCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach_bot",
		Subsystem: "mailbox",
		Name:      "messages_sent_total",
		Help:      "Number of outbound mailbox messages by kind.",
	}, []string{"kind"})

	pollCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach_bot",
		Subsystem: "inbox",
		Name:      "polls_total",
		Help:      "Number of inbox poll passes by outcome.",
	}, []string{"result"})

	processedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coach_bot",
		Subsystem: "inbox",
		Name:      "messages_processed_total",
		Help:      "Number of inbound messages successfully processed.",
	})

	lastPassGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coach_bot",
		Subsystem: "broadcast",
		Name:      "last_pass_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed broadcast pass.",
	})

	lastPollGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coach_bot",
		Subsystem: "inbox",
		Name:      "last_poll_timestamp_seconds",
		Help:      "Unix timestamp of the most recent inbox poll.",
	})

	cursorGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coach_bot",
		Subsystem: "inbox",
		Name:      "cursor_timestamp_seconds",
		Help:      "Unix timestamp of the inbox cursor watermark.",
	})
)

func init() {
	prometheus.MustRegister(passCounter, verdictCounter, messageCounter,
		pollCounter, processedCounter, lastPassGauge, lastPollGauge, cursorGauge)
}

// RecordPass counts one finished broadcast pass.
func RecordPass(result string) {
	passCounter.WithLabelValues(result).Inc()
	lastPassGauge.Set(float64(time.Now().Unix()))
}

// RecordVerdict counts one classified athlete.
func RecordVerdict(v domain.Verdict) {
	verdictCounter.WithLabelValues(string(v)).Inc()
}

// RecordMessageSent counts one outbound message ("broadcast" or "reply").
func RecordMessageSent(kind string) {
	messageCounter.WithLabelValues(kind).Inc()
}

// RecordPoll counts one finished inbox poll.
func RecordPoll(result string) {
	pollCounter.WithLabelValues(result).Inc()
	lastPollGauge.Set(float64(time.Now().Unix()))
}

// RecordInboxProcessed counts one successfully processed inbound message.
func RecordInboxProcessed() {
	processedCounter.Inc()
}

// RecordCursor updates the cursor watermark gauge. The platform timestamp is
// an ISO string; values that do not parse leave the gauge untouched.
func RecordCursor(ts string) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, ts); err == nil {
			cursorGauge.Set(float64(parsed.Unix()))
			return
		}
	}
}
