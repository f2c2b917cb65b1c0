package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityEngine/internal/model"
)

type tokenMeta struct {
	decimals uint8
	symbol   string
}

// PairReader reads constant-product pair state into pool snapshots.
type PairReader struct {
	caller Caller
	retry  RetryPolicy
	logger *zap.Logger

	mu     sync.RWMutex
	tokens map[common.Address]tokenMeta
}

// NewPairReader builds a PairReader.
func NewPairReader(caller Caller, retry RetryPolicy, logger *zap.Logger) *PairReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retry.Logger == nil {
		retry.Logger = logger
	}
	return &PairReader{
		caller: caller,
		retry:  retry,
		logger: logger,
		tokens: make(map[common.Address]tokenMeta),
	}
}

// Snapshot reads reserves, share supply and token decimals of pair at
// block. Block zero means the latest block. The snapshot carries the
// block's timestamp so StableSwap ramps are priced at chain time.
func (r *PairReader) Snapshot(ctx context.Context, pair common.Address, block uint64) (model.PoolSnapshot, error) {
	if r.caller == nil {
		return model.PoolSnapshot{}, fmt.Errorf("chain client is nil")
	}
	pairABI, err := PairABI()
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("parse pair abi: %w", err)
	}

	var ref BlockRef
	err = r.retry.Do(ctx, "blockRef", func(ctx context.Context) error {
		var err error
		ref, err = r.caller.BlockRef(ctx, block)
		return err
	})
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("resolve block: %w", err)
	}
	block = ref.Number
	blockPtr := new(big.Int).SetUint64(block)

	values, err := r.call(ctx, pairABI, "token0", pair, blockPtr)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("token0: %w", err)
	}
	values, err = r.call(ctx, pairABI, "token1", pair, blockPtr)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("token1: %w", err)
	}

	values, err = r.call(ctx, pairABI, "getReserves", pair, blockPtr)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	if len(values) < 2 {
		return model.PoolSnapshot{}, fmt.Errorf("getReserves return size %d", len(values))
	}
	reserve0, err := asUint256(values[0])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asUint256(values[1])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("reserve1: %w", err)
	}

	values, err = r.call(ctx, pairABI, "totalSupply", pair, blockPtr)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	totalSupply, err := asUint256(values[0])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("total supply: %w", err)
	}

	meta0, err := r.tokenMeta(ctx, token0)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("token0 metadata: %w", err)
	}
	meta1, err := r.tokenMeta(ctx, token1)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("token1 metadata: %w", err)
	}

	r.logger.Info("pair snapshot",
		zap.String("pair", pair.Hex()),
		zap.Uint64("block", block),
		zap.String("token0", meta0.symbol),
		zap.String("token1", meta1.symbol),
		zap.String("reserve0", reserve0.Dec()),
		zap.String("reserve1", reserve1.Dec()),
	)

	return model.PoolSnapshot{
		Assets: []model.Asset{
			{Denom: token0.Hex(), Amount: reserve0},
			{Denom: token1.Hex(), Amount: reserve1},
		},
		Decimals:    []uint8{meta0.decimals, meta1.decimals},
		TotalShare:  totalSupply,
		Timestamp:   ref.Timestamp,
		BlockNumber: block,
		Source:      "chain:" + pair.Hex(),
	}, nil
}

func (r *PairReader) call(ctx context.Context, parsed abi.ABI, method string, to common.Address, block *big.Int) ([]interface{}, error) {
	var values []interface{}
	err := r.retry.Do(ctx, method, func(ctx context.Context) error {
		var err error
		values, err = callOnce(ctx, r.caller, parsed, method, to, block)
		return err
	})
	return values, err
}

func callOnce(ctx context.Context, caller Caller, parsed abi.ABI, method string, to common.Address, block *big.Int) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := caller.CallContract(ctx, msg, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned nothing", method)
	}
	return values, nil
}

// tokenMeta loads decimals (required) and symbol (best effort) once per
// token.
func (r *PairReader) tokenMeta(ctx context.Context, token common.Address) (tokenMeta, error) {
	r.mu.RLock()
	meta, ok := r.tokens[token]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := r.call(ctx, stringABI, "decimals", token, nil)
	if err != nil {
		return meta, err
	}
	if meta.decimals, err = asUint8(values[0]); err != nil {
		return meta, err
	}

	if values, err := callOnce(ctx, r.caller, stringABI, "symbol", token, nil); err == nil {
		meta.symbol, _ = values[0].(string)
	} else if values, err := callOnce(ctx, r.caller, bytes32ABI, "symbol", token, nil); err == nil {
		meta.symbol, _ = bytes32ToString(values[0])
	} else {
		r.logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	r.mu.Lock()
	r.tokens[token] = meta
	r.mu.Unlock()
	return meta, nil
}

var _ Caller = (*Client)(nil)
