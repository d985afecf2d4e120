package models

import (
	"time"

	dErrors "delphi/pkg/domain-errors"
)

// Limit is a token-bucket budget: RPS tokens refill per second up to Burst.
type Limit struct {
	RPS   float64
	Burst int
}

// Validate rejects budgets that would block every request.
func (l Limit) Validate() error {
	if l.RPS <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "rate limit rps must be positive")
	}
	if l.Burst < 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "rate limit burst must be at least 1")
	}
	return nil
}

// RateLimitResult is the outcome of one limiter check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimitExceededResponse is the API response when a caller is throttled.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"` // seconds
}
