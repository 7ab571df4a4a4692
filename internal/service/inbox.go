package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"eoinrun/coach-bot/internal/domain"
	"eoinrun/coach-bot/internal/observability"
)

// ReplyDecider maps an inbound (subject, body) pair to a reply decision.
// Implemented by reply.Client; stubbed in tests.
type ReplyDecider interface {
	Decide(ctx context.Context, subject, body string) (domain.ReplyDecision, error)
}

// InboxPoller fetches inbox messages newer than its cursor, runs each through
// the reply decider and conditionally replies. The cursor only ever moves
// forward, and only when at least one message was observed.
type InboxPoller struct {
	creds   *CredentialCache
	gw      Gateway
	decider ReplyDecider

	mu     sync.Mutex
	cursor string
}

// NewInboxPoller starts the cursor at initialCursor; messages sent before that
// watermark are never processed.
func NewInboxPoller(creds *CredentialCache, gw Gateway, decider ReplyDecider, initialCursor string) *InboxPoller {
	return &InboxPoller{creds: creds, gw: gw, decider: decider, cursor: initialCursor}
}

// Cursor returns the current watermark.
func (p *InboxPoller) Cursor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Poll runs one inbox pass. A returned error means the fetch itself failed;
// per-message failures skip only that message.
func (p *InboxPoller) Poll(ctx context.Context) error {
	token, err := p.creds.Token(ctx)
	if err != nil {
		return err
	}

	messages, err := p.gw.InboxMessages(ctx, token, p.Cursor())
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			p.creds.Invalidate(token)
		}
		return fmt.Errorf("fetch inbox: %w", err)
	}

	latest := ""
	for _, msg := range messages {
		// Track the watermark for every message bearing a timestamp, even
		// ones we skip, so a permanently malformed message is not refetched
		// on every pass.
		if msg.Timestamp > latest {
			latest = msg.Timestamp
		}
		if err := p.handle(ctx, token, msg); err != nil {
			log.Printf("ERROR: inbox message from %q: %v", msg.SenderName, err)
			continue
		}
		observability.RecordInboxProcessed()
	}

	if latest != "" {
		p.advance(latest)
	}
	return nil
}

func (p *InboxPoller) handle(ctx context.Context, token string, msg domain.InboxMessage) error {
	if msg.SenderKey == "" || msg.Text == "" {
		return fmt.Errorf("%w: missing sender or body", domain.ErrData)
	}
	log.Printf("inbox: %s | %s | %s", msg.SenderName, msg.Subject, msg.Timestamp)

	decision, err := p.decider.Decide(ctx, msg.Subject, msg.Text)
	if err != nil {
		return err
	}
	if !decision.Reply {
		return nil
	}

	if err := p.gw.SendMessage(ctx, token, msg.SenderKey, "RE: "+msg.Subject, decision.Answer); err != nil {
		if errors.Is(err, domain.ErrAuth) {
			p.creds.Invalidate(token)
		}
		return err
	}
	observability.RecordMessageSent("reply")
	return nil
}

func (p *InboxPoller) advance(ts string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ts > p.cursor {
		p.cursor = ts
		observability.RecordCursor(ts)
	}
}
