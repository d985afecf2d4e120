package bucket

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"delphi/internal/ratelimit/models"
)

const defaultIdleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// InMemoryBucketStore keeps one token bucket per key. Buckets idle longer
// than the TTL are evicted on the next sweep.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	limit   models.Limit
	buckets map[string]*entry
	idleTTL time.Duration
	now     func() time.Time
}

type Option func(*InMemoryBucketStore)

// WithClock overrides time.Now; tests use it to step refills.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryBucketStore) {
		s.now = now
	}
}

func WithIdleTTL(ttl time.Duration) Option {
	return func(s *InMemoryBucketStore) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// New creates a bucket store enforcing limit for every key.
func New(limit models.Limit, opts ...Option) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		limit:   limit,
		buckets: make(map[string]*entry),
		idleTTL: defaultIdleTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow takes one token from the bucket for key.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string) (*models.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := s.buckets[key]
	if e == nil {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(s.limit.RPS), s.limit.Burst)}
		s.buckets[key] = e
	}
	e.lastSeen = now

	if e.limiter.AllowN(now, 1) {
		return &models.RateLimitResult{
			Allowed:   true,
			Limit:     s.limit.Burst,
			Remaining: int(math.Max(0, math.Floor(e.limiter.TokensAt(now)))),
		}, nil
	}

	missing := 1 - e.limiter.TokensAt(now)
	retry := time.Duration(missing / s.limit.RPS * float64(time.Second))
	return &models.RateLimitResult{
		Allowed:    false,
		Limit:      s.limit.Burst,
		Remaining:  0,
		RetryAfter: retry,
	}, nil
}

// Sweep evicts buckets idle longer than the TTL and returns how many were dropped.
func (s *InMemoryBucketStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	dropped := 0
	for key, e := range s.buckets {
		if e.lastSeen.Before(cutoff) {
			delete(s.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of tracked keys.
func (s *InMemoryBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
