package cpamm

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/model"
)

// MinimumLiquidityAmount is minted to a sink on the first deposit and never
// redeemed, so the share supply cannot return to zero.
const MinimumLiquidityAmount uint64 = 10

var (
	ErrNotWhitelisted = errors.New("sender is not whitelisted")
	ErrBelowMinimum   = errors.New("deposit below pool minimum")
)

// DepositShare splits the minted share between the depositor and the
// locked sink.
type DepositShare struct {
	Share  *uint256.Int
	Locked *uint256.Int
}

// ComputeShareForDeposit prices a two-sided deposit. deposits and pools are
// index-aligned with the pool's assets.
func ComputeShareForDeposit(sender string, deposits, pools [2]*uint256.Int, totalShare *uint256.Int, req model.Requirements) (DepositShare, error) {
	if totalShare.IsZero() {
		return genesisShare(sender, deposits, req)
	}

	s0, err := fixed.MulDiv(deposits[0], totalShare, pools[0])
	if err != nil {
		return DepositShare{}, fmt.Errorf("share of first asset: %w", err)
	}
	s1, err := fixed.MulDiv(deposits[1], totalShare, pools[1])
	if err != nil {
		return DepositShare{}, fmt.Errorf("share of second asset: %w", err)
	}
	share := fixed.Min(s0, s1)
	if share.IsZero() {
		return DepositShare{}, fmt.Errorf("deposit too small: %w", model.ErrZeroShare)
	}
	return DepositShare{Share: share, Locked: new(uint256.Int)}, nil
}

func genesisShare(sender string, deposits [2]*uint256.Int, req model.Requirements) (DepositShare, error) {
	if !req.Allows(sender) {
		return DepositShare{}, fmt.Errorf("%w: %s", ErrNotWhitelisted, sender)
	}
	if req.FirstAssetMinimum != nil && deposits[0].Lt(req.FirstAssetMinimum) {
		return DepositShare{}, fmt.Errorf("%w: first asset %s < %s", ErrBelowMinimum, deposits[0].Dec(), req.FirstAssetMinimum.Dec())
	}
	if req.SecondAssetMinimum != nil && deposits[1].Lt(req.SecondAssetMinimum) {
		return DepositShare{}, fmt.Errorf("%w: second asset %s < %s", ErrBelowMinimum, deposits[1].Dec(), req.SecondAssetMinimum.Dec())
	}

	product, err := fixed.Mul(deposits[0], deposits[1])
	if err != nil {
		return DepositShare{}, fmt.Errorf("deposit product: %w", err)
	}
	minted := fixed.Sqrt(product)
	locked := uint256.NewInt(MinimumLiquidityAmount)
	if minted.Cmp(locked) <= 0 {
		return DepositShare{}, fmt.Errorf("initial share %s does not exceed locked minimum %d: %w", minted.Dec(), MinimumLiquidityAmount, model.ErrZeroShare)
	}
	return DepositShare{Share: new(uint256.Int).Sub(minted, locked), Locked: locked}, nil
}

// ComputeWithdraw returns the pro-rata refund for burning share.
func ComputeWithdraw(pools []*uint256.Int, totalShare, share *uint256.Int) ([]*uint256.Int, error) {
	if share.IsZero() {
		return nil, fmt.Errorf("burn amount: %w", model.ErrZeroShare)
	}
	if share.Gt(totalShare) {
		return nil, fmt.Errorf("burn %s exceeds total share %s: %w", share.Dec(), totalShare.Dec(), fixed.ErrUnderflow)
	}
	refunds := make([]*uint256.Int, len(pools))
	for i, pool := range pools {
		refund, err := fixed.MulDiv(pool, share, totalShare)
		if err != nil {
			return nil, fmt.Errorf("refund %d: %w", i, err)
		}
		refunds[i] = refund
	}
	return refunds, nil
}
