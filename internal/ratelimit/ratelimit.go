// Package ratelimit implements a per-client token bucket limiter.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration.
type Config struct {
	// Enabled controls whether rate limiting is active.
	Enabled bool

	// RequestsPerMinute sets the sustained rate limit.
	RequestsPerMinute int

	// Burst allows short bursts above the sustained rate.
	// If not set, defaults to RequestsPerMinute.
	Burst int

	// MaxIdle is how long a client can be idle before it is forgotten.
	// Defaults to 30 minutes.
	MaxIdle time.Duration
}

// Limiter tracks one token bucket per client identifier. Idle clients are
// dropped during Allow, at most once per MaxIdle.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	enabled  bool
	maxIdle  time.Duration

	lastSweep time.Time
	now       func() time.Time
}

// New creates a new rate limiter with the given configuration.
func New(config *Config) *Limiter {
	if config == nil {
		config = &Config{Enabled: false}
	}

	burst := config.Burst
	if burst == 0 {
		burst = config.RequestsPerMinute
	}

	maxIdle := config.MaxIdle
	if maxIdle == 0 {
		maxIdle = 30 * time.Minute
	}

	return &Limiter{
		limiters:  make(map[string]*rate.Limiter),
		lastSeen:  make(map[string]time.Time),
		rate:      rate.Limit(float64(config.RequestsPerMinute) / 60.0),
		burst:     burst,
		enabled:   config.Enabled,
		maxIdle:   maxIdle,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether a request from clientID is within limits.
func (l *Limiter) Allow(clientID string) bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) > l.maxIdle {
		for id, seen := range l.lastSeen {
			if now.Sub(seen) > l.maxIdle {
				delete(l.limiters, id)
				delete(l.lastSeen, id)
			}
		}
		l.lastSweep = now
	}

	limiter, exists := l.limiters[clientID]
	if !exists {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[clientID] = limiter
	}
	l.lastSeen[clientID] = now
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Clients returns the number of tracked clients.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
