package fee

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSampler_EqualBoundsAreDeterministic(t *testing.T) {
	s, err := NewSampler(dec("0.25"), dec("0.25"), 1)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}

	for i := 0; i < 100; i++ {
		if got := s.Sample(); !got.Equal(dec("0.25")) {
			t.Fatalf("sample %d: expected exactly 0.25, got %s", i, got)
		}
	}
}

func TestSampler_StaysInsideClosedRange(t *testing.T) {
	min, max := dec("0.1"), dec("0.5")
	s, err := NewSampler(min, max, 7)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}

	sawMin, sawMax := false, false
	for i := 0; i < 10000; i++ {
		v := s.Sample()
		if v.LessThan(min) || v.GreaterThan(max) {
			t.Fatalf("sample %s escaped [%s, %s]", v, min, max)
		}
		if v.Equal(min) {
			sawMin = true
		}
		if v.Equal(max) {
			sawMax = true
		}
	}

	// The interval is closed: with a 5-value grid and 10k draws both
	// endpoints must show up.
	if !sawMin {
		t.Error("min endpoint never sampled, interval should be inclusive")
	}
	if !sawMax {
		t.Error("max endpoint never sampled, interval should be inclusive")
	}
}

func TestSampler_UsesFinerBoundPrecision(t *testing.T) {
	// min has two fractional digits, so the grid step is 0.01 and
	// values like 0.15 are reachable.
	s, err := NewSampler(dec("0.10"), dec("0.5"), 3)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 20000; i++ {
		seen[s.Sample().String()] = true
	}

	if len(seen) < 30 {
		t.Errorf("expected a fine sampling grid (41 values), saw only %d distinct", len(seen))
	}
	if !seen["0.15"] {
		t.Error("expected off-coarse-grid value 0.15 to be reachable")
	}
}

func TestSampler_SameSeedSameSequence(t *testing.T) {
	a, err := NewSampler(dec("1"), dec("9"), 42)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	b, err := NewSampler(dec("1"), dec("9"), 42)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}

	for i := 0; i < 50; i++ {
		av, bv := a.Sample(), b.Sample()
		if !av.Equal(bv) {
			t.Fatalf("draw %d diverged for identical seeds: %s vs %s", i, av, bv)
		}
	}
}

func TestSampler_MeanNearMidpoint(t *testing.T) {
	s, err := NewSampler(dec("0.1"), dec("0.5"), 1)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}

	const n = 10000
	sum := decimal.Zero
	for i := 0; i < n; i++ {
		sum = sum.Add(s.Sample())
	}
	mean := sum.Div(decimal.NewFromInt(n))

	// Midpoint is 0.3; a uniform mean over 10k draws cannot drift past
	// the middle half of the interval.
	if mean.LessThan(dec("0.25")) || mean.GreaterThan(dec("0.35")) {
		t.Errorf("mean %s too far from midpoint 0.3", mean)
	}
}

func TestSampler_RejectsBadRanges(t *testing.T) {
	if _, err := NewSampler(dec("-0.1"), dec("0.5"), 1); err == nil {
		t.Error("negative min should be rejected")
	}
	if _, err := NewSampler(dec("0.5"), dec("0.1"), 1); err == nil {
		t.Error("max below min should be rejected")
	}
}

func TestSampler_ZeroRange(t *testing.T) {
	s, err := NewSampler(decimal.Zero, decimal.Zero, 1)
	if err != nil {
		t.Fatalf("zero fee range should be allowed: %v", err)
	}
	if got := s.Sample(); !got.IsZero() {
		t.Errorf("expected zero fee, got %s", got)
	}
}
