package infra

import (
	"testing"
	"time"
)

// =====================================================
// Infra Backoff Tests
// =====================================================

func TestBackoff_Delay(t *testing.T) {
	b := DefaultBackoff()

	tests := []struct {
		retry int
		want  time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{10, 60 * time.Second},  // capped
		{100, 60 * time.Second}, // still capped, no overflow
		{-1, 1 * time.Second},   // negative falls back to base
	}

	for _, tt := range tests {
		if got := b.Delay(tt.retry); got != tt.want {
			t.Errorf("Delay(%d) = %s, want %s", tt.retry, got, tt.want)
		}
	}
}

func TestBackoff_CustomPolicy(t *testing.T) {
	b := Backoff{Base: 50 * time.Millisecond, Cap: 200 * time.Millisecond}

	if got := b.Delay(0); got != 50*time.Millisecond {
		t.Errorf("Delay(0) = %s, want 50ms", got)
	}
	if got := b.Delay(1); got != 100*time.Millisecond {
		t.Errorf("Delay(1) = %s, want 100ms", got)
	}
	if got := b.Delay(5); got != 200*time.Millisecond {
		t.Errorf("Delay(5) = %s, want cap 200ms", got)
	}
}

func TestBackoff_HugeRetryCountDoesNotOverflow(t *testing.T) {
	b := DefaultBackoff()

	for _, retry := range []int{31, 62, 63, 1 << 20} {
		if got := b.Delay(retry); got != b.Cap {
			t.Errorf("Delay(%d) = %s, want cap %s", retry, got, b.Cap)
		}
	}
}
