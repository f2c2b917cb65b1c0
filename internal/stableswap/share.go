package stableswap

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/model"
)

var (
	// ErrInvariantNotIncreased is returned when a deposit does not grow D.
	ErrInvariantNotIncreased = errors.New("deposit does not increase invariant")
	// ErrInvariantNotDecreased is returned when a withdrawal does not shrink D.
	ErrInvariantNotDecreased = errors.New("withdrawal does not decrease invariant")
)

// ShareResult is a deposit or withdrawal priced in share units.
type ShareResult struct {
	// Share is minted on deposit and burned on withdrawal.
	Share *uint256.Int
	// FeePart is the portion of a burn attributable to imbalance fees.
	FeePart *uint256.Int
	// ImbalanceFees holds the per-asset fee the imbalance hook computed.
	ImbalanceFees []fixed.Decimal
}

// ComputeShareForDeposit prices a deposit of any asset mix.
func ComputeShareForDeposit(deposits, balances []fixed.Decimal, totalShare *uint256.Int, amp uint64, fee fixed.Decimal) (ShareResult, error) {
	if len(deposits) != len(balances) {
		return ShareResult{}, fmt.Errorf("%w: %d deposits for %d assets", ErrPoolSize, len(deposits), len(balances))
	}

	if totalShare.IsZero() {
		for i, dep := range deposits {
			if dep.IsZero() {
				return ShareResult{}, fmt.Errorf("initial deposit of asset %d is empty: %w", i, model.ErrZeroShare)
			}
		}
		d0, err := ComputeD(deposits, amp)
		if err != nil {
			return ShareResult{}, err
		}
		share := d0.Floor()
		if share.IsZero() {
			return ShareResult{}, fmt.Errorf("initial invariant below one unit: %w", model.ErrZeroShare)
		}
		return ShareResult{Share: share, FeePart: new(uint256.Int), ImbalanceFees: zeros(len(deposits))}, nil
	}

	d0, err := ComputeD(balances, amp)
	if err != nil {
		return ShareResult{}, err
	}
	newBalances := make([]fixed.Decimal, len(balances))
	for i := range balances {
		newBalances[i], err = balances[i].Add(deposits[i])
		if err != nil {
			return ShareResult{}, fmt.Errorf("balance %d after deposit: %w", i, err)
		}
	}
	d1, err := ComputeD(newBalances, amp)
	if err != nil {
		return ShareResult{}, err
	}
	if !d1.Gt(d0) {
		return ShareResult{}, fmt.Errorf("%w: %s -> %s", ErrInvariantNotIncreased, d0, d1)
	}

	fees, d2, err := imbalance(d0, d1, balances, newBalances, fee)
	if err != nil {
		return ShareResult{}, err
	}
	total, err := fixed.NewFromUint(totalShare)
	if err != nil {
		return ShareResult{}, err
	}
	growth, err := d2.Sub(d0)
	if err != nil {
		return ShareResult{}, err
	}
	minted, err := fixed.MulQuo(total, growth, d0)
	if err != nil {
		return ShareResult{}, err
	}
	share := minted.Floor()
	if share.IsZero() {
		return ShareResult{}, fmt.Errorf("deposit too small: %w", model.ErrZeroShare)
	}
	return ShareResult{Share: share, FeePart: new(uint256.Int), ImbalanceFees: fees}, nil
}

// ComputeShareForWithdraw prices an imbalanced withdrawal of exact amounts.
func ComputeShareForWithdraw(withdrawals, balances []fixed.Decimal, totalShare *uint256.Int, amp uint64, fee fixed.Decimal) (ShareResult, error) {
	if len(withdrawals) != len(balances) {
		return ShareResult{}, fmt.Errorf("%w: %d withdrawals for %d assets", ErrPoolSize, len(withdrawals), len(balances))
	}

	d0, err := ComputeD(balances, amp)
	if err != nil {
		return ShareResult{}, err
	}
	if d0.IsZero() {
		return ShareResult{}, fmt.Errorf("withdraw from empty pool: %w", fixed.ErrDivisionByZero)
	}
	newBalances := make([]fixed.Decimal, len(balances))
	for i := range balances {
		newBalances[i], err = balances[i].Sub(withdrawals[i])
		if err != nil {
			return ShareResult{}, fmt.Errorf("withdrawal %d exceeds reserve: %w", i, err)
		}
	}
	d1, err := ComputeD(newBalances, amp)
	if err != nil {
		return ShareResult{}, err
	}
	if !d1.Lt(d0) {
		return ShareResult{}, fmt.Errorf("%w: %s -> %s", ErrInvariantNotDecreased, d0, d1)
	}

	fees, d2, err := imbalance(d0, d1, balances, newBalances, fee)
	if err != nil {
		return ShareResult{}, err
	}
	total, err := fixed.NewFromUint(totalShare)
	if err != nil {
		return ShareResult{}, err
	}
	burnFrac, err := burnShare(total, d0, d2)
	if err != nil {
		return ShareResult{}, err
	}
	noFeeFrac, err := burnShare(total, d0, d1)
	if err != nil {
		return ShareResult{}, err
	}
	burn := burnFrac.Floor()
	if burn.IsZero() {
		return ShareResult{}, fmt.Errorf("withdrawal too small: %w", model.ErrZeroShare)
	}
	return ShareResult{
		Share:         burn,
		FeePart:       fixed.SaturatingSub(burn, noFeeFrac.Floor()),
		ImbalanceFees: fees,
	}, nil
}

func burnShare(total, d0, d fixed.Decimal) (fixed.Decimal, error) {
	drop, err := d0.Sub(d)
	if err != nil {
		return fixed.Decimal{}, err
	}
	return fixed.MulQuo(total, drop, d0)
}

// imbalance computes, per asset, fee * |D1/D0 * old - new|. The fees are
// reported but not deducted, so the returned D2 equals D1.
func imbalance(d0, d1 fixed.Decimal, oldBalances, newBalances []fixed.Decimal, fee fixed.Decimal) ([]fixed.Decimal, fixed.Decimal, error) {
	fees := make([]fixed.Decimal, len(oldBalances))
	for i := range oldBalances {
		ideal, err := fixed.MulQuo(d1, oldBalances[i], d0)
		if err != nil {
			return nil, fixed.Decimal{}, fmt.Errorf("ideal balance %d: %w", i, err)
		}
		fees[i], err = fee.Mul(ideal.AbsDiff(newBalances[i]))
		if err != nil {
			return nil, fixed.Decimal{}, fmt.Errorf("imbalance fee %d: %w", i, err)
		}
	}
	return fees, d1, nil
}

func zeros(n int) []fixed.Decimal {
	return make([]fixed.Decimal, n)
}
