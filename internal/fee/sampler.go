// Package fee draws randomized per-transaction commission values from a
// configured closed range.
package fee

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
)

// Sampler draws fees uniformly from the closed interval [min, max].
// Sampling happens on the decimal grid of the range bounds, so both
// endpoints are reachable and min == max always returns exactly that
// value.
//
// A Sampler owns its generator and is not safe for concurrent use: give
// each worker its own independently seeded instance instead of sharing.
type Sampler struct {
	min  decimal.Decimal
	max  decimal.Decimal
	exp  int32 // exponent of the sampling grid (finer bound wins)
	span int64 // grid steps between min and max
	rng  *rand.Rand
}

// NewSampler builds a sampler for [min, max], seeded with seed.
func NewSampler(min, max decimal.Decimal, seed int64) (*Sampler, error) {
	if min.IsNegative() {
		return nil, fmt.Errorf("fee min must not be negative, got %s", min)
	}
	if max.LessThan(min) {
		return nil, fmt.Errorf("fee max %s is below min %s", max, min)
	}

	exp := min.Exponent()
	if max.Exponent() < exp {
		exp = max.Exponent()
	}

	spanDec := max.Sub(min).Shift(-exp)
	if spanDec.GreaterThan(decimal.NewFromInt(math.MaxInt64 - 1)) {
		return nil, fmt.Errorf("fee range [%s, %s] is too wide for its precision", min, max)
	}

	return &Sampler{
		min:  min,
		max:  max,
		exp:  exp,
		span: spanDec.IntPart(),
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

// Sample returns the next fee value.
func (s *Sampler) Sample() decimal.Decimal {
	if s.span == 0 {
		return s.min
	}
	k := s.rng.Int63n(s.span + 1)
	return s.min.Add(decimal.New(k, s.exp))
}

// Range returns the configured bounds.
func (s *Sampler) Range() (min, max decimal.Decimal) {
	return s.min, s.max
}
