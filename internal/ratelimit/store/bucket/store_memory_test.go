package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"delphi/internal/ratelimit/models"
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	clock time.Time
	ctx   context.Context
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = New(models.Limit{RPS: 1, Burst: 3}, WithClock(func() time.Time { return s.clock }))
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("burst then deny", func() {
		for i := range 3 {
			result, err := s.store.Allow(s.ctx, "acct-alice")
			s.Require().NoError(err)
			s.True(result.Allowed)
			s.Equal(3, result.Limit)
			s.Equal(2-i, result.Remaining)
		}

		result, err := s.store.Allow(s.ctx, "acct-alice")
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(time.Second, result.RetryAfter)
	})

	s.Run("keys are independent", func() {
		result, err := s.store.Allow(s.ctx, "acct-bob")
		s.Require().NoError(err)
		s.True(result.Allowed)
	})

	s.Run("refills over time", func() {
		s.clock = s.clock.Add(time.Second)
		result, err := s.store.Allow(s.ctx, "acct-alice")
		s.Require().NoError(err)
		s.True(result.Allowed)
	})
}

func (s *InMemoryBucketStoreSuite) TestSweep() {
	_, _ = s.store.Allow(s.ctx, "acct-old")
	s.clock = s.clock.Add(defaultIdleTTL + time.Second)
	_, _ = s.store.Allow(s.ctx, "acct-new")

	s.Equal(1, s.store.Sweep())
	s.Equal(1, s.store.Len())
}

func (s *InMemoryBucketStoreSuite) TestConcurrentAllowNeverExceedsBurst() {
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(s.ctx, "acct-carol")
			if err == nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(3, allowed)
}

func (s *InMemoryBucketStoreSuite) TestLimitValidate() {
	s.Error(models.Limit{RPS: 0, Burst: 1}.Validate())
	s.Error(models.Limit{RPS: 1, Burst: 0}.Validate())
	s.NoError(models.Limit{RPS: 0.5, Burst: 1}.Validate())
}
