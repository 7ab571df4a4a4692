package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eoinrun/coach-bot/internal/domain"
)

// Authenticator performs the platform login exchange.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// CredentialCache supplies a valid access token to any caller, refreshing
// lazily once the TTL has elapsed. The mutex is held across the refresh so
// concurrent callers never trigger more than one login per expiry.
type CredentialCache struct {
	auth     Authenticator
	email    string
	password string
	ttl      time.Duration
	now      func() time.Time

	mu         sync.Mutex
	token      string
	acquiredAt time.Time
}

func NewCredentialCache(auth Authenticator, email, password string, ttl time.Duration) *CredentialCache {
	return &CredentialCache{
		auth:     auth,
		email:    email,
		password: password,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Token returns the cached token while it is fresh, otherwise performs one
// login and caches the result. A failed login leaves the previous state
// untouched; an expired token is never returned.
func (c *CredentialCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Sub(c.acquiredAt) < c.ttl {
		return c.token, nil
	}

	token, err := c.auth.Login(ctx, c.email, c.password)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	c.token = token
	c.acquiredAt = c.now()
	return token, nil
}

// Invalidate discards the cached token after a downstream call was rejected
// as unauthorized. The token argument guards against discarding a fresher
// token that another caller already fetched.
func (c *CredentialCache) Invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == token {
		c.token = ""
		c.acquiredAt = time.Time{}
	}
}
