// Package cpamm prices swaps and liquidity changes on x*y=k pools.
// Every result is floored; fractional remainders stay in the pool.
package cpamm

import (
	"fmt"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
)

// SwapResult is the outcome of selling a known offer amount.
type SwapResult struct {
	ReturnAmount     *uint256.Int
	SpreadAmount     *uint256.Int
	CommissionAmount *uint256.Int
}

// ReverseResult is the outcome of buying a known ask amount.
type ReverseResult struct {
	OfferAmount      *uint256.Int
	SpreadAmount     *uint256.Int
	CommissionAmount *uint256.Int
}

// Swap computes what offerAmount buys from the ask side. The commission is
// taken from the gross return and stays in the pool.
func Swap(offerPool, askPool, offerAmount *uint256.Int, commissionRate fixed.Decimal) (SwapResult, error) {
	cp, err := fixed.Mul(offerPool, askPool)
	if err != nil {
		return SwapResult{}, fmt.Errorf("pool product: %w", err)
	}
	offerAfter, err := fixed.Add(offerPool, offerAmount)
	if err != nil {
		return SwapResult{}, fmt.Errorf("offer pool after swap: %w", err)
	}

	askDec, err := fixed.NewFromUint(askPool)
	if err != nil {
		return SwapResult{}, err
	}
	askAfter, err := fixed.FromRatio(cp, offerAfter)
	if err != nil {
		return SwapResult{}, fmt.Errorf("ask pool after swap: %w", err)
	}
	grossDec, err := askDec.Sub(askAfter)
	if err != nil {
		return SwapResult{}, fmt.Errorf("gross return: %w", err)
	}
	gross := grossDec.Floor()

	// Spread is measured against the pre-trade price.
	price, err := fixed.FromRatio(askPool, offerPool)
	if err != nil {
		return SwapResult{}, fmt.Errorf("pool price: %w", err)
	}
	ideal, err := price.MulUint(offerAmount)
	if err != nil {
		return SwapResult{}, fmt.Errorf("ideal return: %w", err)
	}
	spread := fixed.SaturatingSub(ideal, gross)

	commission, err := commissionRate.MulUint(gross)
	if err != nil {
		return SwapResult{}, fmt.Errorf("commission: %w", err)
	}
	ret, err := fixed.Sub(gross, commission)
	if err != nil {
		return SwapResult{}, fmt.Errorf("commission exceeds return: %w", err)
	}

	return SwapResult{
		ReturnAmount:     ret,
		SpreadAmount:     spread,
		CommissionAmount: commission,
	}, nil
}

// ReverseSwap computes the offer needed to receive askAmount after
// commission.
func ReverseSwap(offerPool, askPool, askAmount *uint256.Int, commissionRate fixed.Decimal) (ReverseResult, error) {
	cp, err := fixed.Mul(offerPool, askPool)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("pool product: %w", err)
	}

	keep, err := fixed.One().Sub(commissionRate)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("commission rate above 1: %w", err)
	}
	inverse, err := fixed.One().Quo(keep)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("commission rate of 1: %w", err)
	}
	beforeCommission, err := inverse.MulUint(askAmount)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("ask before commission: %w", err)
	}

	askAfter, err := fixed.Sub(askPool, beforeCommission)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("ask amount exceeds pool liquidity: %w", err)
	}
	offerAfter, err := fixed.Quo(cp, askAfter)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("ask amount drains pool: %w", err)
	}
	offer, err := fixed.Sub(offerAfter, offerPool)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("offer amount: %w", err)
	}

	price, err := fixed.FromRatio(askPool, offerPool)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("pool price: %w", err)
	}
	ideal, err := price.MulUint(offer)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("ideal return: %w", err)
	}
	spread := fixed.SaturatingSub(ideal, beforeCommission)

	commission, err := commissionRate.MulUint(beforeCommission)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("commission: %w", err)
	}

	return ReverseResult{
		OfferAmount:      offer,
		SpreadAmount:     spread,
		CommissionAmount: commission,
	}, nil
}
