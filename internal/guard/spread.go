// Package guard rejects swaps and deposits that move the price further than
// the caller allowed.
package guard

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/scale"
)

var (
	ErrMaxSpread    = errors.New("operation exceeds max spread limit")
	ErrMaxSlippage  = errors.New("operation exceeds max slippage tolerance")
	ErrInvalidLimit = errors.New("limit cannot be bigger than 1")
)

// SwapAmounts describes a priced swap. Offer is in the offer asset's native
// precision; Return and Spread are in the ask asset's.
type SwapAmounts struct {
	Offer         *uint256.Int
	Return        *uint256.Int
	Spread        *uint256.Int
	OfferDecimals uint8
	AskDecimals   uint8
}

// normalize lifts the lower-precision side so all three amounts share the
// larger decimal count.
func (s SwapAmounts) normalize() (offer, ret, spread *uint256.Int, err error) {
	target := s.OfferDecimals
	if s.AskDecimals > target {
		target = s.AskDecimals
	}
	if offer, err = scale.Upscale(s.Offer, s.OfferDecimals, target); err != nil {
		return nil, nil, nil, err
	}
	if ret, err = scale.Upscale(s.Return, s.AskDecimals, target); err != nil {
		return nil, nil, nil, err
	}
	if spread, err = scale.Upscale(s.Spread, s.AskDecimals, target); err != nil {
		return nil, nil, nil, err
	}
	return offer, ret, spread, nil
}

// AssertMaxSpread checks a swap against the caller's limits. With a belief
// price the return is compared to offer/beliefPrice; with only maxSpread
// the engine's own spread is used. Neither set means no check.
func AssertMaxSpread(beliefPrice, maxSpread *fixed.Decimal, amounts SwapAmounts) error {
	if maxSpread == nil {
		return nil
	}
	if maxSpread.Gt(fixed.One()) {
		return fmt.Errorf("%w: max spread %s", ErrInvalidLimit, maxSpread)
	}

	offer, ret, spread, err := amounts.normalize()
	if err != nil {
		return fmt.Errorf("normalize swap amounts: %w", err)
	}

	if beliefPrice != nil {
		inverse, err := fixed.One().Quo(*beliefPrice)
		if err != nil {
			return fmt.Errorf("belief price: %w", err)
		}
		expected, err := inverse.MulUint(offer)
		if err != nil {
			return fmt.Errorf("expected return: %w", err)
		}
		if !ret.Lt(expected) {
			return nil
		}
		shortfall := new(uint256.Int).Sub(expected, ret)
		ratio, err := fixed.FromRatio(shortfall, expected)
		if err != nil {
			return err
		}
		if ratio.Gt(*maxSpread) {
			return fmt.Errorf("%w: %s > %s", ErrMaxSpread, ratio, maxSpread)
		}
		return nil
	}

	total, err := fixed.Add(ret, spread)
	if err != nil {
		return err
	}
	ratio, err := fixed.FromRatio(spread, total)
	if err != nil {
		return fmt.Errorf("spread ratio: %w", err)
	}
	if ratio.Gt(*maxSpread) {
		return fmt.Errorf("%w: %s > %s", ErrMaxSpread, ratio, maxSpread)
	}
	return nil
}
