package model

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
)

// PoolSnapshot captures pool reserves and share supply at one point in time.
// Assets and Decimals are index-aligned.
type PoolSnapshot struct {
	Assets      []Asset
	Decimals    []uint8
	TotalShare  *uint256.Int
	Timestamp   uint64
	BlockNumber uint64
	Source      string
}

// Validate checks that the snapshot can be priced.
func (s PoolSnapshot) Validate() error {
	if len(s.Assets) < 2 {
		return fmt.Errorf("%w: need at least two assets, got %d", ErrInvalidPool, len(s.Assets))
	}
	if len(s.Assets) != len(s.Decimals) {
		return fmt.Errorf("%w: %d assets but %d decimals", ErrInvalidPool, len(s.Assets), len(s.Decimals))
	}
	seen := make(map[string]struct{}, len(s.Assets))
	for _, asset := range s.Assets {
		if asset.Denom == "" || asset.Amount == nil {
			return fmt.Errorf("%w: incomplete reserve %q", ErrInvalidAsset, asset.Denom)
		}
		if _, ok := seen[asset.Denom]; ok {
			return fmt.Errorf("%w: duplicate denom %q", ErrInvalidAsset, asset.Denom)
		}
		seen[asset.Denom] = struct{}{}
	}
	if s.TotalShare == nil {
		return fmt.Errorf("%w: total share is required", ErrInvalidPool)
	}
	return nil
}

// Index returns the position of denom within the pool.
func (s PoolSnapshot) Index(denom string) (int, error) {
	for i, asset := range s.Assets {
		if asset.Denom == denom {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q is not in the pool", ErrInvalidAsset, denom)
}

// Reserves returns the reserve amounts in asset order.
func (s PoolSnapshot) Reserves() []*uint256.Int {
	out := make([]*uint256.Int, len(s.Assets))
	for i, asset := range s.Assets {
		out[i] = asset.Amount
	}
	return out
}

// Align orders assets to match the pool. Missing denoms are zero; unknown
// or repeated denoms fail.
func (s PoolSnapshot) Align(assets []Asset) ([]*uint256.Int, error) {
	out := make([]*uint256.Int, len(s.Assets))
	for i := range out {
		out[i] = new(uint256.Int)
	}
	seen := make(map[int]struct{}, len(assets))
	for _, asset := range assets {
		idx, err := s.Index(asset.Denom)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[idx]; ok {
			return nil, fmt.Errorf("%w: %q given twice", ErrInvalidAsset, asset.Denom)
		}
		seen[idx] = struct{}{}
		if asset.Amount != nil {
			out[idx].Set(asset.Amount)
		}
	}
	return out, nil
}

type snapshotJSON struct {
	Assets      []Asset `json:"assets"`
	Decimals    []int   `json:"decimals"`
	TotalShare  string  `json:"total_share"`
	Timestamp   uint64  `json:"timestamp"`
	BlockNumber uint64  `json:"block_number,omitempty"`
	Source      string  `json:"source,omitempty"`
}

// MarshalJSON encodes share supply as a base-10 string.
func (s PoolSnapshot) MarshalJSON() ([]byte, error) {
	decimals := make([]int, len(s.Decimals))
	for i, d := range s.Decimals {
		decimals[i] = int(d)
	}
	return json.Marshal(snapshotJSON{
		Assets:      s.Assets,
		Decimals:    decimals,
		TotalShare:  fixed.FormatUint(s.TotalShare),
		Timestamp:   s.Timestamp,
		BlockNumber: s.BlockNumber,
		Source:      s.Source,
	})
}

// UnmarshalJSON decodes a PoolSnapshot from JSON.
func (s *PoolSnapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	total, err := fixed.ParseUint(raw.TotalShare)
	if err != nil {
		return fmt.Errorf("total share: %w", err)
	}
	decimals := make([]uint8, len(raw.Decimals))
	for i, d := range raw.Decimals {
		if d < 0 || d > 77 {
			return fmt.Errorf("%w: decimals %d out of range", ErrInvalidPool, d)
		}
		decimals[i] = uint8(d)
	}
	*s = PoolSnapshot{
		Assets:      raw.Assets,
		Decimals:    decimals,
		TotalShare:  total,
		Timestamp:   raw.Timestamp,
		BlockNumber: raw.BlockNumber,
		Source:      raw.Source,
	}
	return nil
}
