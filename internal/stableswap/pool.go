package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/scale"
)

// Pool prices operations on native-precision amounts. Reserves and
// Decimals are index-aligned; shares are 6-decimal comparable units.
type Pool struct {
	Reserves       []*uint256.Int
	Decimals       []uint8
	TotalShare     *uint256.Int
	Amp            model.AmpFactor
	CommissionRate fixed.Decimal
	ImbalanceFee   fixed.Decimal
}

// NativeSwap is a swap result in the ask asset's native precision.
type NativeSwap struct {
	ReturnAmount     *uint256.Int
	SpreadAmount     *uint256.Int
	CommissionAmount *uint256.Int
}

func (p Pool) balances(amounts []*uint256.Int) ([]fixed.Decimal, error) {
	if len(amounts) != len(p.Decimals) {
		return nil, fmt.Errorf("%w: %d amounts for %d assets", ErrPoolSize, len(amounts), len(p.Decimals))
	}
	out := make([]fixed.Decimal, len(amounts))
	for i, amount := range amounts {
		v, err := scale.ToComparableDecimal(amount, p.Decimals[i])
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Swap sells offerAmount of asset offerIndex for asset askIndex.
func (p Pool) Swap(offerIndex, askIndex int, offerAmount *uint256.Int) (NativeSwap, error) {
	if err := checkIndexes(offerIndex, askIndex, len(p.Reserves)); err != nil {
		return NativeSwap{}, err
	}
	amp, err := ComputeAmpFactor(p.Amp)
	if err != nil {
		return NativeSwap{}, err
	}
	balances, err := p.balances(p.Reserves)
	if err != nil {
		return NativeSwap{}, err
	}
	offer, err := scale.ToComparableDecimal(offerAmount, p.Decimals[offerIndex])
	if err != nil {
		return NativeSwap{}, err
	}

	res, err := SwapTo(offerIndex, askIndex, offer, balances, amp, p.CommissionRate)
	if err != nil {
		return NativeSwap{}, err
	}

	askDecimals := p.Decimals[askIndex]
	ret, err := scale.FromComparableDecimal(res.ReturnAmount, askDecimals)
	if err != nil {
		return NativeSwap{}, err
	}
	spread, err := scale.FromComparableDecimal(res.SpreadAmount, askDecimals)
	if err != nil {
		return NativeSwap{}, err
	}
	commission, err := scale.FromComparableDecimal(res.CommissionAmount, askDecimals)
	if err != nil {
		return NativeSwap{}, err
	}
	return NativeSwap{ReturnAmount: ret, SpreadAmount: spread, CommissionAmount: commission}, nil
}

// Deposit prices adding amounts, index-aligned with Reserves.
func (p Pool) Deposit(amounts []*uint256.Int) (ShareResult, error) {
	amp, err := ComputeAmpFactor(p.Amp)
	if err != nil {
		return ShareResult{}, err
	}
	deposits, err := p.balances(amounts)
	if err != nil {
		return ShareResult{}, err
	}
	balances, err := p.balances(p.Reserves)
	if err != nil {
		return ShareResult{}, err
	}
	return ComputeShareForDeposit(deposits, balances, p.TotalShare, amp, p.ImbalanceFee)
}

// Withdraw prices removing exact amounts, index-aligned with Reserves.
func (p Pool) Withdraw(amounts []*uint256.Int) (ShareResult, error) {
	amp, err := ComputeAmpFactor(p.Amp)
	if err != nil {
		return ShareResult{}, err
	}
	withdrawals, err := p.balances(amounts)
	if err != nil {
		return ShareResult{}, err
	}
	balances, err := p.balances(p.Reserves)
	if err != nil {
		return ShareResult{}, err
	}
	return ComputeShareForWithdraw(withdrawals, balances, p.TotalShare, amp, p.ImbalanceFee)
}

// Refund returns the pro-rata amounts paid out for burning share.
func (p Pool) Refund(share *uint256.Int) ([]*uint256.Int, error) {
	if share.IsZero() {
		return nil, fmt.Errorf("burn amount: %w", model.ErrZeroShare)
	}
	if share.Gt(p.TotalShare) {
		return nil, fmt.Errorf("burn %s exceeds total share %s: %w", share.Dec(), p.TotalShare.Dec(), fixed.ErrUnderflow)
	}
	out := make([]*uint256.Int, len(p.Reserves))
	for i, reserve := range p.Reserves {
		refund, err := fixed.MulDiv(reserve, share, p.TotalShare)
		if err != nil {
			return nil, fmt.Errorf("refund %d: %w", i, err)
		}
		out[i] = refund
	}
	return out, nil
}
