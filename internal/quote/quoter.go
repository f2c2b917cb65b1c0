// Package quote routes pricing requests to the engine matching the pool's
// curve and applies the caller's spread and slippage limits.
package quote

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"liquidityEngine/internal/cpamm"
	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/guard"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/stableswap"
)

// ErrUnsupported is returned for operations the pool's curve cannot price.
var ErrUnsupported = errors.New("operation not supported for pool type")

// Pool pairs a pool's static config with a reserve snapshot.
type Pool struct {
	Config   model.PoolConfig
	Snapshot model.PoolSnapshot
}

// SwapRequest sells Offer for AskDenom.
type SwapRequest struct {
	Offer       model.Asset
	AskDenom    string
	BeliefPrice *fixed.Decimal
	MaxSpread   *fixed.Decimal
}

// ReverseRequest buys Ask with OfferDenom.
type ReverseRequest struct {
	Ask        model.Asset
	OfferDenom string
}

// ProvideRequest adds liquidity. Denoms missing from Deposits count as zero.
type ProvideRequest struct {
	Sender            string
	Deposits          []model.Asset
	SlippageTolerance *fixed.Decimal
}

// WithdrawRequest removes liquidity either by burning Share for a pro-rata
// refund or, on StableSwap pools, by naming exact Amounts.
type WithdrawRequest struct {
	Share   *uint256.Int
	Amounts []model.Asset
}

// Quoter prices operations against pool snapshots.
type Quoter struct {
	logger *zap.Logger
}

// NewQuoter builds a Quoter.
func NewQuoter(logger *zap.Logger) *Quoter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Quoter{logger: logger}
}

func (p Pool) validate() error {
	if err := p.Config.Validate(); err != nil {
		return err
	}
	if err := p.Snapshot.Validate(); err != nil {
		return err
	}
	if p.Config.Type == model.PoolTypeConstantProduct && len(p.Snapshot.Assets) != 2 {
		return fmt.Errorf("%w: constant product pools hold two assets, got %d", model.ErrInvalidPool, len(p.Snapshot.Assets))
	}
	return nil
}

func (p Pool) stable() stableswap.Pool {
	return stableswap.Pool{
		Reserves:       p.Snapshot.Reserves(),
		Decimals:       p.Snapshot.Decimals,
		TotalShare:     p.Snapshot.TotalShare,
		Amp:            p.Config.Amp.At(p.Snapshot.Timestamp),
		CommissionRate: p.Config.CommissionRate,
		ImbalanceFee:   p.Config.ImbalanceFee,
	}
}

func (p Pool) record(op string) model.QuoteRecord {
	return model.QuoteRecord{
		PoolID:    p.Config.ID,
		PoolType:  string(p.Config.Type),
		Operation: op,
		Timestamp: p.Snapshot.Timestamp,
	}
}

func assets(denoms []model.Asset, amounts []*uint256.Int) []model.Asset {
	out := make([]model.Asset, len(amounts))
	for i, amount := range amounts {
		out[i] = model.Asset{Denom: denoms[i].Denom, Amount: amount}
	}
	return out
}

// Swap prices selling req.Offer and enforces the spread limit.
func (q *Quoter) Swap(pool Pool, req SwapRequest) (model.QuoteRecord, error) {
	if err := pool.validate(); err != nil {
		return model.QuoteRecord{}, err
	}
	if req.Offer.Amount == nil {
		return model.QuoteRecord{}, fmt.Errorf("%w: offer amount is required", model.ErrInvalidAsset)
	}
	snap := pool.Snapshot
	offerIdx, err := snap.Index(req.Offer.Denom)
	if err != nil {
		return model.QuoteRecord{}, err
	}
	askIdx, err := snap.Index(req.AskDenom)
	if err != nil {
		return model.QuoteRecord{}, err
	}
	if offerIdx == askIdx {
		return model.QuoteRecord{}, fmt.Errorf("%w: offer and ask are both %q", model.ErrInvalidAsset, req.AskDenom)
	}

	var ret, spread, commission *uint256.Int
	switch pool.Config.Type {
	case model.PoolTypeConstantProduct:
		res, err := cpamm.Swap(snap.Assets[offerIdx].Amount, snap.Assets[askIdx].Amount, req.Offer.Amount, pool.Config.CommissionRate)
		if err != nil {
			return model.QuoteRecord{}, fmt.Errorf("constant product swap: %w", err)
		}
		ret, spread, commission = res.ReturnAmount, res.SpreadAmount, res.CommissionAmount
	case model.PoolTypeStableSwap:
		res, err := pool.stable().Swap(offerIdx, askIdx, req.Offer.Amount)
		if err != nil {
			return model.QuoteRecord{}, fmt.Errorf("stableswap swap: %w", err)
		}
		ret, spread, commission = res.ReturnAmount, res.SpreadAmount, res.CommissionAmount
	}

	err = guard.AssertMaxSpread(req.BeliefPrice, req.MaxSpread, guard.SwapAmounts{
		Offer:         req.Offer.Amount,
		Return:        ret,
		Spread:        spread,
		OfferDecimals: snap.Decimals[offerIdx],
		AskDecimals:   snap.Decimals[askIdx],
	})
	if err != nil {
		q.logger.Info("swap rejected", zap.String("pool", pool.Config.ID), zap.String("offer", req.Offer.String()), zap.Error(err))
		return model.QuoteRecord{}, err
	}

	rec := pool.record(model.OpSwap)
	rec.Offer = []model.Asset{req.Offer}
	rec.Return = []model.Asset{{Denom: req.AskDenom, Amount: ret}}
	rec.Spread = spread.Dec()
	rec.Commission = commission.Dec()
	q.logger.Debug("swap quoted",
		zap.String("pool", pool.Config.ID),
		zap.String("offer", req.Offer.String()),
		zap.String("return", rec.Return[0].String()),
		zap.String("spread", rec.Spread),
		zap.String("commission", rec.Commission),
	)
	return rec, nil
}

// ReverseSwap prices the offer needed to receive req.Ask. Only constant
// product pools support it.
func (q *Quoter) ReverseSwap(pool Pool, req ReverseRequest) (model.QuoteRecord, error) {
	if err := pool.validate(); err != nil {
		return model.QuoteRecord{}, err
	}
	if pool.Config.Type != model.PoolTypeConstantProduct {
		return model.QuoteRecord{}, fmt.Errorf("%w: reverse swap on %s", ErrUnsupported, pool.Config.Type)
	}
	if req.Ask.Amount == nil {
		return model.QuoteRecord{}, fmt.Errorf("%w: ask amount is required", model.ErrInvalidAsset)
	}
	snap := pool.Snapshot
	offerIdx, err := snap.Index(req.OfferDenom)
	if err != nil {
		return model.QuoteRecord{}, err
	}
	askIdx, err := snap.Index(req.Ask.Denom)
	if err != nil {
		return model.QuoteRecord{}, err
	}
	if offerIdx == askIdx {
		return model.QuoteRecord{}, fmt.Errorf("%w: offer and ask are both %q", model.ErrInvalidAsset, req.OfferDenom)
	}

	res, err := cpamm.ReverseSwap(snap.Assets[offerIdx].Amount, snap.Assets[askIdx].Amount, req.Ask.Amount, pool.Config.CommissionRate)
	if err != nil {
		return model.QuoteRecord{}, fmt.Errorf("constant product reverse swap: %w", err)
	}

	rec := pool.record(model.OpReverseSwap)
	rec.Offer = []model.Asset{{Denom: req.OfferDenom, Amount: res.OfferAmount}}
	rec.Return = []model.Asset{req.Ask}
	rec.Spread = res.SpreadAmount.Dec()
	rec.Commission = res.CommissionAmount.Dec()
	q.logger.Debug("reverse swap quoted",
		zap.String("pool", pool.Config.ID),
		zap.String("ask", req.Ask.String()),
		zap.String("offer", rec.Offer[0].String()),
	)
	return rec, nil
}

// Provide prices a deposit.
func (q *Quoter) Provide(pool Pool, req ProvideRequest) (model.QuoteRecord, error) {
	if err := pool.validate(); err != nil {
		return model.QuoteRecord{}, err
	}
	snap := pool.Snapshot
	deposits, err := snap.Align(req.Deposits)
	if err != nil {
		return model.QuoteRecord{}, err
	}

	rec := pool.record(model.OpProvide)
	rec.Offer = assets(snap.Assets, deposits)

	switch pool.Config.Type {
	case model.PoolTypeConstantProduct:
		pair := [2]*uint256.Int{deposits[0], deposits[1]}
		reserves := [2]*uint256.Int{snap.Assets[0].Amount, snap.Assets[1].Amount}
		if !snap.TotalShare.IsZero() {
			if err := guard.AssertSlippageTolerance(req.SlippageTolerance, pair, reserves); err != nil {
				q.logger.Info("provide rejected", zap.String("pool", pool.Config.ID), zap.Error(err))
				return model.QuoteRecord{}, err
			}
		}
		res, err := cpamm.ComputeShareForDeposit(req.Sender, pair, reserves, snap.TotalShare, pool.Config.Requirements)
		if err != nil {
			return model.QuoteRecord{}, fmt.Errorf("constant product deposit: %w", err)
		}
		rec.Share = res.Share.Dec()
		rec.LockedShare = res.Locked.Dec()
	case model.PoolTypeStableSwap:
		res, err := pool.stable().Deposit(deposits)
		if err != nil {
			return model.QuoteRecord{}, fmt.Errorf("stableswap deposit: %w", err)
		}
		rec.Share = res.Share.Dec()
		rec.FeePart = res.FeePart.Dec()
	}

	q.logger.Debug("provide quoted", zap.String("pool", pool.Config.ID), zap.String("share", rec.Share))
	return rec, nil
}

// Withdraw prices a withdrawal.
func (q *Quoter) Withdraw(pool Pool, req WithdrawRequest) (model.QuoteRecord, error) {
	if err := pool.validate(); err != nil {
		return model.QuoteRecord{}, err
	}
	snap := pool.Snapshot
	rec := pool.record(model.OpWithdraw)

	switch {
	case len(req.Amounts) > 0:
		if pool.Config.Type != model.PoolTypeStableSwap {
			return model.QuoteRecord{}, fmt.Errorf("%w: exact-amount withdrawal on %s", ErrUnsupported, pool.Config.Type)
		}
		amounts, err := snap.Align(req.Amounts)
		if err != nil {
			return model.QuoteRecord{}, err
		}
		res, err := pool.stable().Withdraw(amounts)
		if err != nil {
			return model.QuoteRecord{}, fmt.Errorf("stableswap withdraw: %w", err)
		}
		rec.Return = assets(snap.Assets, amounts)
		rec.Share = res.Share.Dec()
		rec.FeePart = res.FeePart.Dec()
	case req.Share != nil:
		var refunds []*uint256.Int
		var err error
		if pool.Config.Type == model.PoolTypeStableSwap {
			refunds, err = pool.stable().Refund(req.Share)
		} else {
			refunds, err = cpamm.ComputeWithdraw(snap.Reserves(), snap.TotalShare, req.Share)
		}
		if err != nil {
			return model.QuoteRecord{}, fmt.Errorf("withdraw: %w", err)
		}
		rec.Return = assets(snap.Assets, refunds)
		rec.Share = req.Share.Dec()
	default:
		return model.QuoteRecord{}, fmt.Errorf("%w: withdraw needs a share or amounts", model.ErrZeroShare)
	}

	q.logger.Debug("withdraw quoted", zap.String("pool", pool.Config.ID), zap.String("share", rec.Share))
	return rec, nil
}
