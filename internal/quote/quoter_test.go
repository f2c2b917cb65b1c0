package quote

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"liquidityEngine/internal/cpamm"
	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/guard"
	"liquidityEngine/internal/model"
)

func xykPool(a, b, total uint64) Pool {
	return Pool{
		Config: model.PoolConfig{
			ID:             "aura-usdc",
			Type:           model.PoolTypeConstantProduct,
			CommissionRate: fixed.Permille(3),
			Requirements:   model.Requirements{Whitelist: []string{"alice"}},
		},
		Snapshot: model.PoolSnapshot{
			Assets:     []model.Asset{model.NewAsset("uaura", a), model.NewAsset("uusdc", b)},
			Decimals:   []uint8{6, 6},
			TotalShare: uint256.NewInt(total),
			Timestamp:  1_700_000_000,
		},
	}
}

func stablePool() Pool {
	return Pool{
		Config: model.PoolConfig{
			ID:             "usd-3pool",
			Type:           model.PoolTypeStableSwap,
			CommissionRate: fixed.Permille(3),
			Amp:            model.AmpFactor{InitialAmp: 100, TargetAmp: 200, StartRampTs: 1_000, StopRampTs: 2_000},
		},
		Snapshot: model.PoolSnapshot{
			Assets: []model.Asset{
				model.NewAsset("uusdc", 1_000_000_000),
				model.NewAsset("uusdt", 1_000_000_000),
				{Denom: "dai", Amount: fixed.MustParseUint("1000000000000000000000")},
			},
			Decimals:   []uint8{6, 6, 18},
			TotalShare: uint256.NewInt(3_000_000_000),
			Timestamp:  1_500,
		},
	}
}

func TestSwapConstantProduct(t *testing.T) {
	q := NewQuoter(zaptest.NewLogger(t))
	rec, err := q.Swap(xykPool(1_000_000, 1_000_000, 1_000_000), SwapRequest{
		Offer:    model.NewAsset("uaura", 10_000),
		AskDenom: "uusdc",
	})
	require.NoError(t, err)
	require.Equal(t, model.OpSwap, rec.Operation)
	require.Equal(t, "aura-usdc", rec.PoolID)
	require.Equal(t, uint64(1_700_000_000), rec.Timestamp)

	want, err := cpamm.Swap(uint256.NewInt(1_000_000), uint256.NewInt(1_000_000), uint256.NewInt(10_000), fixed.Permille(3))
	require.NoError(t, err)
	require.Equal(t, want.ReturnAmount.Dec(), rec.Return[0].Amount.Dec())
	require.Equal(t, want.SpreadAmount.Dec(), rec.Spread)
	require.Equal(t, want.CommissionAmount.Dec(), rec.Commission)
}

func TestSwapRejectedByMaxSpreadIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	q := NewQuoter(zap.New(core))

	maxSpread := fixed.MustParse("0.001")
	_, err := q.Swap(xykPool(1_000_000, 1_000_000, 1_000_000), SwapRequest{
		Offer:     model.NewAsset("uaura", 100_000),
		AskDenom:  "uusdc",
		MaxSpread: &maxSpread,
	})
	require.ErrorIs(t, err, guard.ErrMaxSpread)
	require.Equal(t, 1, logs.FilterMessage("swap rejected").Len())
}

func TestSwapUnknownDenom(t *testing.T) {
	q := NewQuoter(nil)
	_, err := q.Swap(xykPool(1_000, 1_000, 1_000), SwapRequest{Offer: model.NewAsset("ubtc", 1), AskDenom: "uusdc"})
	require.ErrorIs(t, err, model.ErrInvalidAsset)

	_, err = q.Swap(xykPool(1_000, 1_000, 1_000), SwapRequest{Offer: model.NewAsset("uusdc", 1), AskDenom: "uusdc"})
	require.ErrorIs(t, err, model.ErrInvalidAsset)
}

func TestSwapStableSwap(t *testing.T) {
	q := NewQuoter(zaptest.NewLogger(t))
	rec, err := q.Swap(stablePool(), SwapRequest{
		Offer:    model.NewAsset("uusdc", 1_000_000),
		AskDenom: "dai",
	})
	require.NoError(t, err)
	got := rec.Return[0].Amount
	require.True(t, got.Gt(fixed.MustParseUint("990000000000000000")), got.Dec())
	require.True(t, got.Lt(fixed.MustParseUint("1000000000000000000")), got.Dec())
}

func TestReverseSwap(t *testing.T) {
	q := NewQuoter(zaptest.NewLogger(t))
	rec, err := q.ReverseSwap(xykPool(1_000_000, 1_000_000, 1_000_000), ReverseRequest{
		Ask:        model.NewAsset("uusdc", 10_000),
		OfferDenom: "uaura",
	})
	require.NoError(t, err)
	require.Equal(t, "10131", rec.Offer[0].Amount.Dec())
	require.Equal(t, "101", rec.Spread)
	require.Equal(t, "30", rec.Commission)

	_, err = q.ReverseSwap(stablePool(), ReverseRequest{Ask: model.NewAsset("uusdc", 1), OfferDenom: "uusdt"})
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestProvideGenesisAndSlippage(t *testing.T) {
	q := NewQuoter(zaptest.NewLogger(t))

	rec, err := q.Provide(xykPool(0, 0, 0), ProvideRequest{
		Sender:   "alice",
		Deposits: []model.Asset{model.NewAsset("uaura", 100), model.NewAsset("uusdc", 100)},
	})
	require.NoError(t, err)
	require.Equal(t, "90", rec.Share)
	require.Equal(t, "10", rec.LockedShare)

	tolerance := fixed.Percent(1)
	_, err = q.Provide(xykPool(1_000_000, 1_000_000, 1_000_000), ProvideRequest{
		Sender:            "bob",
		Deposits:          []model.Asset{model.NewAsset("uaura", 98), model.NewAsset("uusdc", 100)},
		SlippageTolerance: &tolerance,
	})
	require.ErrorIs(t, err, guard.ErrMaxSlippage)

	rec, err = q.Provide(xykPool(1_000_000, 1_000_000, 1_000_000), ProvideRequest{
		Sender:            "bob",
		Deposits:          []model.Asset{model.NewAsset("uaura", 99), model.NewAsset("uusdc", 100)},
		SlippageTolerance: &tolerance,
	})
	require.NoError(t, err)
	require.Equal(t, "99", rec.Share)
}

func TestProvideStableSwap(t *testing.T) {
	q := NewQuoter(zaptest.NewLogger(t))
	rec, err := q.Provide(stablePool(), ProvideRequest{
		Deposits: []model.Asset{
			model.NewAsset("uusdc", 1_000_000),
			model.NewAsset("uusdt", 1_000_000),
			{Denom: "dai", Amount: fixed.MustParseUint("1000000000000000000")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "3000000", rec.Share)
	require.Equal(t, "0", rec.FeePart)
}

func TestWithdraw(t *testing.T) {
	q := NewQuoter(zaptest.NewLogger(t))

	rec, err := q.Withdraw(xykPool(1_000, 3_001, 100), WithdrawRequest{Share: uint256.NewInt(10)})
	require.NoError(t, err)
	require.Equal(t, "100", rec.Return[0].Amount.Dec())
	require.Equal(t, "300", rec.Return[1].Amount.Dec())

	_, err = q.Withdraw(xykPool(1_000, 3_001, 100), WithdrawRequest{Amounts: []model.Asset{model.NewAsset("uaura", 1)}})
	require.ErrorIs(t, err, ErrUnsupported)

	rec, err = q.Withdraw(stablePool(), WithdrawRequest{Amounts: []model.Asset{
		model.NewAsset("uusdc", 1_000_000),
		model.NewAsset("uusdt", 1_000_000),
		{Denom: "dai", Amount: fixed.MustParseUint("1000000000000000000")},
	}})
	require.NoError(t, err)
	require.Equal(t, "3000000", rec.Share)

	_, err = q.Withdraw(stablePool(), WithdrawRequest{})
	require.ErrorIs(t, err, model.ErrZeroShare)
}
