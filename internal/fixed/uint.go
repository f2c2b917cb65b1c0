package fixed

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// maxUintDigits is the number of decimal digits in 2^256-1.
const maxUintDigits = 78

// Add returns a+b and fails instead of wrapping.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Sub returns a-b and fails instead of wrapping below zero.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrUnderflow
	}
	return z, nil
}

// SaturatingSub returns a-b, or zero when b > a.
func SaturatingSub(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) <= 0 {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(a, b)
}

// Mul returns a*b and fails instead of wrapping.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Quo returns floor(a/b).
func Quo(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrDivisionByZero
	}
	return new(uint256.Int).Div(a, b), nil
}

// MulDiv returns floor(a*b/d) using a 512-bit intermediate product.
func MulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Sqrt returns the integer square root floor(sqrt(a)).
func Sqrt(a *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sqrt(a)
}

// Min returns a copy of the smaller value.
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) <= 0 {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}

// Pow10 returns 10^exp.
func Pow10(exp uint) (*uint256.Int, error) {
	if exp >= maxUintDigits {
		return nil, ErrOverflow
	}
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(exp))), nil
}

// ParseUint parses a base-10 unsigned integer. Leading zeros are allowed.
func ParseUint(input string) (*uint256.Int, error) {
	if input == "" {
		return nil, fmt.Errorf("%w: empty integer", ErrInvalidDecimal)
	}
	for i := 0; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDecimal, input)
		}
	}

	digits := strings.TrimLeft(input, "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	if len(digits) > maxUintDigits {
		return nil, fmt.Errorf("parse %q: %w", input, ErrOverflow)
	}

	z := new(uint256.Int)
	if err := z.SetFromDecimal(digits); err != nil {
		return nil, fmt.Errorf("parse %q: %w", input, ErrOverflow)
	}
	return z, nil
}

// MustParseUint is ParseUint for constants and tests.
func MustParseUint(input string) *uint256.Int {
	z, err := ParseUint(input)
	if err != nil {
		panic(err)
	}
	return z
}

// FormatUint renders a nil-safe base-10 string.
func FormatUint(value *uint256.Int) string {
	if value == nil {
		return "0"
	}
	return value.Dec()
}
