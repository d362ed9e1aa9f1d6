package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrMoneyOverflow is returned when a money value cannot be stored as an int64 fraction.
var ErrMoneyOverflow = errors.New("money value exceeds storage capacity")

// Money represents a monetary value with precise decimal arithmetic using big.Rat.
// Offer prices are compared and aggregated as exact rationals; Float64 is for display only.
type Money struct {
	rat *big.Rat
}

// NewMoney creates a new Money instance from numerator and denominator.
// Example: NewMoney(249900, 100) represents 2499.00
func NewMoney(numerator, denominator int64) (*Money, error) {
	if denominator == 0 {
		return nil, fmt.Errorf("denominator cannot be zero")
	}
	return &Money{rat: big.NewRat(numerator, denominator)}, nil
}

// ParseMoney parses a decimal ("99.90") or fractional ("999/10") string exactly.
func ParseMoney(s string) (*Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty money value")
	}
	rat, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid money value %q", s)
	}
	return &Money{rat: rat}, nil
}

// ZeroMoney returns a zero value.
func ZeroMoney() *Money {
	return &Money{rat: new(big.Rat)}
}

// Numerator returns the numerator and whether it fits in an int64.
func (m *Money) Numerator() (int64, bool) {
	num := m.rat.Num()
	return num.Int64(), num.IsInt64()
}

// Denominator returns the denominator and whether it fits in an int64.
func (m *Money) Denominator() (int64, bool) {
	denom := m.rat.Denom()
	return denom.Int64(), denom.IsInt64()
}

// IsSafeForStorage reports whether both parts of the fraction fit in int64 columns.
func (m *Money) IsSafeForStorage() bool {
	_, numOK := m.Numerator()
	_, denomOK := m.Denominator()
	return numOK && denomOK
}

// ValidatePrice accepts prices that are present, non-negative and storable.
func ValidatePrice(price *Money) error {
	if price == nil || price.IsNegative() {
		return ErrInvalidPrice
	}
	if !price.IsSafeForStorage() {
		return ErrMoneyOverflow
	}
	return nil
}

// Add adds two Money values and returns a new Money instance.
func (m *Money) Add(other *Money) *Money {
	return &Money{rat: new(big.Rat).Add(m.rat, other.rat)}
}

// Cmp compares two values: -1 if m < other, 0 if equal, +1 if m > other.
func (m *Money) Cmp(other *Money) int {
	return m.rat.Cmp(other.rat)
}

// IsZero returns true if the money value is zero.
func (m *Money) IsZero() bool {
	return m.rat.Sign() == 0
}

// IsNegative returns true if the money value is negative.
func (m *Money) IsNegative() bool {
	return m.rat.Sign() < 0
}

// LessThan returns true if this Money value is less than another.
func (m *Money) LessThan(other *Money) bool {
	return m.rat.Cmp(other.rat) < 0
}

// Equals returns true if this Money value equals another.
func (m *Money) Equals(other *Money) bool {
	return m.rat.Cmp(other.rat) == 0
}

// Float64 returns an approximate float64 representation (for display only, not calculations).
func (m *Money) Float64() float64 {
	f, _ := m.rat.Float64()
	return f
}

// String returns the value rounded to two decimal places.
func (m *Money) String() string {
	return m.rat.FloatString(2)
}

// Copy creates a deep copy of this Money instance.
func (m *Money) Copy() *Money {
	return &Money{rat: new(big.Rat).Set(m.rat)}
}

// MinMoney returns a copy of the smallest value, or nil when values is empty.
func MinMoney(values ...*Money) *Money {
	var lowest *Money
	for _, v := range values {
		if v == nil {
			continue
		}
		if lowest == nil || v.LessThan(lowest) {
			lowest = v
		}
	}
	if lowest == nil {
		return nil
	}
	return lowest.Copy()
}
