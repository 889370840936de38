package cache

import (
	"sync"
	"time"
)

// TTLPolicy governs expiration of a whole store. A nil TTL means the store
// never expires.
type TTLPolicy struct {
	mutex     sync.Mutex
	ttl       *time.Duration
	expiresAt time.Time
	now       func() time.Time
}

type TTLOption func(*TTLPolicy)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) TTLOption {
	return func(p *TTLPolicy) {
		p.now = now
	}
}

func NewTTLPolicy(ttl *time.Duration, opts ...TTLOption) *TTLPolicy {
	p := &TTLPolicy{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	p.SetTTL(ttl)
	return p
}

// SetTTL stores ttl and, when it is set, restarts the expiration window from now.
func (p *TTLPolicy) SetTTL(ttl *time.Duration) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if ttl == nil {
		p.ttl = nil
		p.expiresAt = time.Time{}
		return
	}

	d := *ttl
	p.ttl = &d
	p.expiresAt = p.now().Add(d)
}

func (p *TTLPolicy) TTL() (time.Duration, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ttl == nil {
		return 0, false
	}
	return *p.ttl, true
}

func (p *TTLPolicy) ExpiresAt() time.Time {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.expiresAt
}

// Expired reports whether the window has elapsed. When it has, the next window
// starts immediately, so exactly one caller observes each expiration.
func (p *TTLPolicy) Expired() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ttl == nil {
		return false
	}

	now := p.now()
	if now.Before(p.expiresAt) {
		return false
	}

	p.expiresAt = now.Add(*p.ttl)
	return true
}
