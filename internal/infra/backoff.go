package infra

import (
	"time"
)

// Backoff computes exponential retry delays: Base * 2^retry, capped at Cap.
type Backoff struct {
	Base time.Duration
	Cap  time.Duration
}

// DefaultBackoff is the submission retry policy: 1s doubling up to 60s.
func DefaultBackoff() Backoff {
	return Backoff{Base: 1 * time.Second, Cap: 60 * time.Second}
}

// Delay returns the backoff duration for a given retry count.
// A negative retry count returns Base.
func (b Backoff) Delay(retry int) time.Duration {
	if retry < 0 {
		return b.Base
	}

	// 2^30 seconds is already beyond any sane cap; shifting further
	// would overflow.
	if retry > 30 {
		return b.Cap
	}

	d := b.Base * time.Duration(1<<retry)
	if d > b.Cap || d < 0 {
		return b.Cap
	}
	return d
}
