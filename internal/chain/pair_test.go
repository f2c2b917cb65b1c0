package chain

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap/zaptest"
)

var (
	testPair   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testToken0 = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testToken1 = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

type fakeCaller struct {
	t         *testing.T
	failFirst int
	calls     int
}

func (f *fakeCaller) BlockRef(_ context.Context, number uint64) (BlockRef, error) {
	if number == 0 {
		number = 4242
	}
	return BlockRef{Number: number, Timestamp: 1_700_000_000 + number}, nil
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	if f.failFirst > 0 {
		f.failFirst--
		return nil, errors.New("connection reset")
	}

	pairABI, err := PairABI()
	if err != nil {
		f.t.Fatalf("pair abi: %v", err)
	}
	erc20, err := erc20ABIStringInstance()
	if err != nil {
		f.t.Fatalf("erc20 abi: %v", err)
	}

	switch *msg.To {
	case testPair:
		return pack(f.t, pairABI, msg.Data, map[string][]interface{}{
			"token0":      {testToken0},
			"token1":      {testToken1},
			"getReserves": {big.NewInt(5_000_000_000), new(big.Int).Mul(big.NewInt(5_000), big.NewInt(1e18)), uint32(1_699_999_000)},
			"totalSupply": {big.NewInt(158_113_883_008)},
		})
	case testToken0:
		return pack(f.t, erc20, msg.Data, map[string][]interface{}{
			"decimals": {uint8(6)},
			"symbol":   {"USDC"},
		})
	case testToken1:
		return pack(f.t, erc20, msg.Data, map[string][]interface{}{
			"decimals": {uint8(18)},
			"symbol":   {"WETH"},
		})
	}
	return nil, errors.New("unknown contract")
}

func pack(t *testing.T, parsed abi.ABI, data []byte, outputs map[string][]interface{}) ([]byte, error) {
	for name, values := range outputs {
		method := parsed.Methods[name]
		if bytes.Equal(data[:4], method.ID) {
			out, err := method.Outputs.Pack(values...)
			if err != nil {
				t.Fatalf("pack %s: %v", name, err)
			}
			return out, nil
		}
	}
	return nil, errors.New("execution reverted")
}

func TestPairSnapshot(t *testing.T) {
	caller := &fakeCaller{t: t}
	reader := NewPairReader(caller, RetryPolicy{MaxRetries: 0}, zaptest.NewLogger(t))

	snap, err := reader.Snapshot(context.Background(), testPair, 0)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if snap.BlockNumber != 4242 || snap.Timestamp != 1_700_004_242 {
		t.Fatalf("unexpected block info: %+v", snap)
	}
	if snap.Assets[0].Denom != testToken0.Hex() || snap.Assets[1].Denom != testToken1.Hex() {
		t.Fatalf("unexpected denoms: %+v", snap.Assets)
	}
	if snap.Assets[0].Amount.Dec() != "5000000000" || snap.Assets[1].Amount.Dec() != "5000000000000000000000" {
		t.Fatalf("unexpected reserves: %+v", snap.Assets)
	}
	if snap.Decimals[0] != 6 || snap.Decimals[1] != 18 {
		t.Fatalf("unexpected decimals: %v", snap.Decimals)
	}
	if snap.TotalShare.Uint64() != 158_113_883_008 {
		t.Fatalf("unexpected total share: %s", snap.TotalShare.Dec())
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("snapshot should validate: %v", err)
	}

	// Token metadata is cached after the first read.
	before := caller.calls
	if _, err := reader.Snapshot(context.Background(), testPair, 10); err != nil {
		t.Fatalf("second snapshot failed: %v", err)
	}
	if got := caller.calls - before; got != 4 {
		t.Fatalf("expected 4 pair calls on a warm cache, got %d", got)
	}
}

func TestPairSnapshotRetries(t *testing.T) {
	caller := &fakeCaller{t: t, failFirst: 2}
	reader := NewPairReader(caller, RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}, nil)
	if _, err := reader.Snapshot(context.Background(), testPair, 1); err != nil {
		t.Fatalf("snapshot should survive transient failures: %v", err)
	}

	caller = &fakeCaller{t: t, failFirst: 3}
	reader = NewPairReader(caller, RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}, nil)
	if _, err := reader.Snapshot(context.Background(), testPair, 1); err == nil {
		t.Fatalf("expected error after retries are spent")
	}
}

func TestRetryPolicyStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour}.Do(ctx, "test", func(context.Context) error {
		attempts++
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(" 0x1111111111111111111111111111111111111111 ")
	if err != nil || addr != testPair {
		t.Fatalf("unexpected address %s (%v)", addr.Hex(), err)
	}
	if _, err := ParseAddress("0x1234"); err == nil {
		t.Fatalf("expected invalid address error")
	}
}
