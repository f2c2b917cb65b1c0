package model

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
)

// PoolType selects the pricing curve.
type PoolType string

const (
	PoolTypeConstantProduct PoolType = "constant_product"
	PoolTypeStableSwap      PoolType = "stableswap"
)

// ParsePoolType accepts the canonical names plus the short forms "xyk" and
// "stable".
func ParsePoolType(input string) (PoolType, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "constant_product", "xyk":
		return PoolTypeConstantProduct, nil
	case "stableswap", "stable":
		return PoolTypeStableSwap, nil
	default:
		return "", fmt.Errorf("%w: unknown pool type %q", ErrInvalidPool, input)
	}
}

// AmpFactor describes a linear amplification ramp. CurrentTs is filled in
// from the snapshot being priced.
type AmpFactor struct {
	InitialAmp  uint64 `json:"initial_amp"`
	TargetAmp   uint64 `json:"target_amp"`
	CurrentTs   uint64 `json:"current_ts"`
	StartRampTs uint64 `json:"start_ramp_ts"`
	StopRampTs  uint64 `json:"stop_ramp_ts"`
}

// At returns a copy of the ramp evaluated at ts.
func (a AmpFactor) At(ts uint64) AmpFactor {
	a.CurrentTs = ts
	return a
}

// Requirements gate the first deposit of a constant-product pool.
type Requirements struct {
	Whitelist          []string     `json:"whitelist"`
	FirstAssetMinimum  *uint256.Int `json:"-"`
	SecondAssetMinimum *uint256.Int `json:"-"`
}

// Allows reports whether sender may create the pool's initial liquidity.
func (r Requirements) Allows(sender string) bool {
	for _, addr := range r.Whitelist {
		if addr == sender {
			return true
		}
	}
	return false
}

// PoolConfig is the static description of a pool.
type PoolConfig struct {
	ID             string        `json:"id"`
	Type           PoolType      `json:"type"`
	CommissionRate fixed.Decimal `json:"commission_rate"`
	ImbalanceFee   fixed.Decimal `json:"imbalance_fee"`
	Requirements   Requirements  `json:"requirements"`
	Amp            AmpFactor     `json:"amp"`
}

// Validate checks the settings shared by both curves.
func (c PoolConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidPool)
	}
	if c.Type != PoolTypeConstantProduct && c.Type != PoolTypeStableSwap {
		return fmt.Errorf("%w: unknown pool type %q", ErrInvalidPool, c.Type)
	}
	if c.CommissionRate.Gt(fixed.One()) {
		return fmt.Errorf("%w: commission rate %s is above 1", ErrInvalidPool, c.CommissionRate)
	}
	if c.ImbalanceFee.Gt(fixed.One()) {
		return fmt.Errorf("%w: imbalance fee %s is above 1", ErrInvalidPool, c.ImbalanceFee)
	}
	if c.Type == PoolTypeStableSwap {
		if c.Amp.InitialAmp == 0 || c.Amp.TargetAmp == 0 {
			return fmt.Errorf("%w: amplification must be positive", ErrInvalidPool)
		}
		if c.Amp.StartRampTs > c.Amp.StopRampTs {
			return fmt.Errorf("%w: ramp starts after it stops", ErrInvalidPool)
		}
	}
	return nil
}
