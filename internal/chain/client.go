package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// BlockRef pins a snapshot to one block. Timestamp is the clock the
// amplification ramp is evaluated at.
type BlockRef struct {
	Number    uint64
	Timestamp uint64
}

// Caller is the chain access a pair snapshot needs: contract reads pinned to
// a block, and the block's number and time.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	// BlockRef resolves number to a block; zero means the latest block.
	BlockRef(ctx context.Context, number uint64) (BlockRef, error)
}

// Client reads pair state over JSON-RPC.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	mu     sync.RWMutex
	blocks map[uint64]BlockRef
}

// NewClient dials rpcURL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return newClient(rpcClient), nil
}

func newClient(rpcClient *rpc.Client) *Client {
	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		blocks:    make(map[uint64]BlockRef),
	}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// BlockRef reads the header of block number, or of the head when number is
// zero, in a single request. Resolved blocks are cached by number.
func (c *Client) BlockRef(ctx context.Context, number uint64) (BlockRef, error) {
	if number != 0 {
		c.mu.RLock()
		ref, ok := c.blocks[number]
		c.mu.RUnlock()
		if ok {
			return ref, nil
		}
	}

	var arg *big.Int
	if number != 0 {
		arg = new(big.Int).SetUint64(number)
	}
	header, err := c.ethClient.HeaderByNumber(ctx, arg)
	if err != nil {
		return BlockRef{}, err
	}
	if header.Number == nil || !header.Number.IsUint64() {
		return BlockRef{}, fmt.Errorf("header without a valid number")
	}

	ref := BlockRef{Number: header.Number.Uint64(), Timestamp: header.Time}
	c.mu.Lock()
	c.blocks[ref.Number] = ref
	c.mu.Unlock()
	return ref, nil
}

// CallContract performs an eth_call pinned to blockNumber.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}
