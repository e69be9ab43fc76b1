// Package money provides strict parsing helpers for the decimal amounts
// used throughout the spender. Config files and API responses carry
// amounts as strings; everything internal works on decimal.Decimal so
// budget arithmetic stays exact.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxScale bounds the accepted number of fractional digits.
// Finer precision is rejected rather than silently rounded.
const MaxScale = 9

// Parse converts a decimal string into an exact decimal value.
// Scientific notation and precision beyond MaxScale are rejected.
func Parse(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if strings.ContainsAny(trimmed, "eE") {
		return decimal.Zero, fmt.Errorf("scientific notation not allowed: %q", s)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -MaxScale {
		return decimal.Zero, fmt.Errorf("amount %q exceeds %d fractional digits", s, MaxScale)
	}
	return d, nil
}

// ParsePositive parses an amount and requires it to be strictly positive.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", d)
	}
	return d, nil
}

// ParseNonNegative parses an amount and requires it to be zero or greater.
func ParseNonNegative(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative, got %s", d)
	}
	return d, nil
}
