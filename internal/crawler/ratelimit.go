package crawler

import (
	"context"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/ohack/grantfinder/internal/config"
)

// RateLimiter bounds per-domain concurrency and paces requests.
//
// Each domain gets a weighted semaphore sized by its policy (or the
// global default) and a randomized minimum delay between consecutive
// requests, so request timing does not look mechanical. An optional
// global token bucket caps the aggregate request rate across all domains.
type RateLimiter struct {
	policies     *config.PolicyTable
	maxPerDomain int64
	minDelay     time.Duration
	maxDelay     time.Duration
	global       *rate.Limiter

	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
	last map[string]time.Time
}

// NewRateLimiter builds a limiter from the run configuration. A zero
// GlobalRequestsPerSecond disables the aggregate cap.
func NewRateLimiter(cfg *config.Config) *RateLimiter {
	l := &RateLimiter{
		policies:     cfg.Policies(),
		maxPerDomain: int64(cfg.MaxConcurrentPerDomain),
		minDelay:     cfg.MinDelay,
		maxDelay:     cfg.MaxDelay,
		sems:         make(map[string]*semaphore.Weighted),
		last:         make(map[string]time.Time),
	}
	if cfg.GlobalRequestsPerSecond > 0 {
		l.global = rate.NewLimiter(rate.Limit(cfg.GlobalRequestsPerSecond), cfg.MaxConcurrentRequests)
	}
	return l
}

// Acquire blocks until the URL's domain has a free concurrency slot and
// the randomized inter-request delay has elapsed. On success the caller
// holds one slot and must call Release with the same URL exactly once.
// On error (context cancellation) no slot is held.
func (l *RateLimiter) Acquire(ctx context.Context, rawURL string) error {
	domain := domainOf(rawURL)
	sem := l.semFor(domain)
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}

	if l.global != nil {
		if err := l.global.Wait(ctx); err != nil {
			sem.Release(1)
			return err
		}
	}

	if wait := l.reserveDelay(domain); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			sem.Release(1)
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// Release returns the concurrency slot acquired for the URL's domain.
func (l *RateLimiter) Release(rawURL string) {
	l.semFor(domainOf(rawURL)).Release(1)
}

func (l *RateLimiter) semFor(domain string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.sems[domain]
	if !ok {
		limit := l.maxPerDomain
		if policy := l.policies.Lookup(domain); policy != nil && policy.MaxConcurrent > 0 {
			limit = int64(policy.MaxConcurrent)
		}
		if limit < 1 {
			limit = 1
		}
		sem = semaphore.NewWeighted(limit)
		l.sems[domain] = sem
	}
	return sem
}

// reserveDelay computes how long the caller must wait before hitting the
// domain, and books the wait so concurrent callers stack their delays
// instead of firing together.
func (l *RateLimiter) reserveDelay(domain string) time.Duration {
	minDelay, maxDelay := l.minDelay, l.maxDelay
	if policy := l.policies.Lookup(domain); policy != nil {
		if pmin, pmax := policy.DelayRange(); pmin > 0 || pmax > 0 {
			minDelay, maxDelay = pmin, pmax
		}
	}
	delay := minDelay
	if maxDelay > minDelay {
		delay += rand.N(maxDelay - minDelay)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	next := l.last[domain].Add(delay)
	if next.Before(now) {
		l.last[domain] = now
		return 0
	}
	l.last[domain] = next
	return next.Sub(now)
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
