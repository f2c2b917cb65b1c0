package chain

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

const headBlock = 900

type ethService struct {
	headerCalls atomic.Int32
}

func (s *ethService) GetBlockByNumber(_ context.Context, number string, _ bool) (*types.Header, error) {
	s.headerCalls.Add(1)
	n := uint64(headBlock)
	if number != "latest" {
		parsed, err := hexutil.DecodeUint64(number)
		if err != nil {
			return nil, err
		}
		n = parsed
	}
	return &types.Header{
		Number:     new(big.Int).SetUint64(n),
		Difficulty: new(big.Int),
		Time:       1_700_000_000 + n*3,
	}, nil
}

func newTestClient(t *testing.T) (*Client, *ethService) {
	t.Helper()
	svc := &ethService{}
	server := rpc.NewServer()
	if err := server.RegisterName("eth", svc); err != nil {
		t.Fatalf("register service: %v", err)
	}
	t.Cleanup(server.Stop)

	client := newClient(rpc.DialInProc(server))
	t.Cleanup(client.Close)
	return client, svc
}

func TestClientBlockRef(t *testing.T) {
	client, svc := newTestClient(t)
	ctx := context.Background()

	head, err := client.BlockRef(ctx, 0)
	if err != nil {
		t.Fatalf("latest block: %v", err)
	}
	if head.Number != headBlock || head.Timestamp != 1_700_002_700 {
		t.Fatalf("unexpected head %+v", head)
	}

	ref, err := client.BlockRef(ctx, 100)
	if err != nil {
		t.Fatalf("block 100: %v", err)
	}
	if ref.Number != 100 || ref.Timestamp != 1_700_000_300 {
		t.Fatalf("unexpected block %+v", ref)
	}

	// Both blocks are now cached by number.
	if _, err := client.BlockRef(ctx, 100); err != nil {
		t.Fatalf("cached block 100: %v", err)
	}
	if _, err := client.BlockRef(ctx, headBlock); err != nil {
		t.Fatalf("cached head: %v", err)
	}
	if got := svc.headerCalls.Load(); got != 2 {
		t.Fatalf("expected 2 header requests, got %d", got)
	}

	// Latest is never served from the cache.
	if _, err := client.BlockRef(ctx, 0); err != nil {
		t.Fatalf("latest block again: %v", err)
	}
	if got := svc.headerCalls.Load(); got != 3 {
		t.Fatalf("expected 3 header requests, got %d", got)
	}
}
