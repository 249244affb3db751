package route

import (
	"math"
	"time"
)

// Retry controls how a route is re-sent after 5xx answers. Client errors
// and transport failures are never retried.
type Retry struct {
	// MaxAttempts counts the first attempt too.
	MaxAttempts int `json:"maxAttempts" validate:"gte=1"`
	// InitialWait is the pause after the first failure.
	InitialWait time.Duration `json:"initialWait" validate:"gte=0s"`
	// Scale multiplies the pause after every further failure.
	Scale float64 `json:"scale" validate:"gte=1"`
	// MaxWait caps a single pause. Zero means no cap.
	MaxWait time.Duration `json:"maxWait" validate:"gte=0s"`
}

// DefaultRetry waits 5s, 10s, 20s and 40s between five attempts.
func DefaultRetry() Retry {
	return Retry{
		MaxAttempts: 5,
		InitialWait: 5 * time.Second,
		Scale:       2,
	}
}

// Validate reports whether the policy is usable.
func (r Retry) Validate() error {
	return Validate(r)
}

// Backoff returns the pause after the given number of failed attempts.
func (r Retry) Backoff(failures int) time.Duration {
	if failures < 1 {
		failures = 1
	}

	wait := float64(r.InitialWait) * math.Pow(r.Scale, float64(failures-1))
	if r.MaxWait > 0 && wait > float64(r.MaxWait) {
		return r.MaxWait
	}
	if wait > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(wait)
}
