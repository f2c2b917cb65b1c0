// Package scale converts token amounts between their native precision and
// the 6-decimal comparable form the StableSwap invariant operates on.
package scale

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
)

// ComparableDecimals is the precision every asset is normalised to before
// entering the invariant.
const ComparableDecimals uint8 = 6

// ErrInvalidDecimals is returned for tokens with fewer than
// ComparableDecimals decimals.
var ErrInvalidDecimals = errors.New("invalid decimals")

func factor(nativeDecimals uint8) (*uint256.Int, error) {
	if nativeDecimals < ComparableDecimals {
		return nil, fmt.Errorf("%w: %d is below %d", ErrInvalidDecimals, nativeDecimals, ComparableDecimals)
	}
	return fixed.Pow10(uint(nativeDecimals - ComparableDecimals))
}

// ToComparable returns floor(amount / 10^(nativeDecimals-6)).
func ToComparable(amount *uint256.Int, nativeDecimals uint8) (*uint256.Int, error) {
	f, err := factor(nativeDecimals)
	if err != nil {
		return nil, err
	}
	return fixed.Quo(amount, f)
}

// FromComparable returns amount * 10^(nativeDecimals-6).
func FromComparable(amount *uint256.Int, nativeDecimals uint8) (*uint256.Int, error) {
	f, err := factor(nativeDecimals)
	if err != nil {
		return nil, err
	}
	return fixed.Mul(amount, f)
}

// ToComparableDecimal converts a native amount into a comparable Decimal.
func ToComparableDecimal(amount *uint256.Int, nativeDecimals uint8) (fixed.Decimal, error) {
	units, err := ToComparable(amount, nativeDecimals)
	if err != nil {
		return fixed.Decimal{}, err
	}
	return fixed.NewFromUint(units)
}

// FromComparableDecimal floors a comparable Decimal and restores native
// precision.
func FromComparableDecimal(value fixed.Decimal, nativeDecimals uint8) (*uint256.Int, error) {
	return FromComparable(value.Floor(), nativeDecimals)
}

// Upscale multiplies amount by 10^(to-from) when to > from and returns a
// copy otherwise.
func Upscale(amount *uint256.Int, from, to uint8) (*uint256.Int, error) {
	if to <= from {
		return new(uint256.Int).Set(amount), nil
	}
	f, err := fixed.Pow10(uint(to - from))
	if err != nil {
		return nil, err
	}
	return fixed.Mul(amount, f)
}
