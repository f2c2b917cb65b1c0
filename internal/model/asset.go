package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
)

// Asset is an amount of a single denom in the token's native precision.
type Asset struct {
	Denom  string
	Amount *uint256.Int
}

// NewAsset builds an Asset from a uint64 amount.
func NewAsset(denom string, amount uint64) Asset {
	return Asset{Denom: denom, Amount: uint256.NewInt(amount)}
}

// ParseAsset reads the coin notation "<amount><denom>", e.g. "1000uaura".
func ParseAsset(input string) (Asset, error) {
	split := strings.IndexFunc(input, func(r rune) bool { return r < '0' || r > '9' })
	if split <= 0 {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, input)
	}
	amount, err := fixed.ParseUint(input[:split])
	if err != nil {
		return Asset{}, fmt.Errorf("asset %q: %w", input, err)
	}
	return Asset{Denom: input[split:], Amount: amount}, nil
}

// String renders the coin notation.
func (a Asset) String() string {
	return fixed.FormatUint(a.Amount) + a.Denom
}

type assetJSON struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// MarshalJSON encodes the amount as a base-10 string.
func (a Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal(assetJSON{Denom: a.Denom, Amount: fixed.FormatUint(a.Amount)})
}

// UnmarshalJSON decodes an Asset from JSON.
func (a *Asset) UnmarshalJSON(data []byte) error {
	var raw assetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := fixed.ParseUint(raw.Amount)
	if err != nil {
		return fmt.Errorf("asset %s amount: %w", raw.Denom, err)
	}
	*a = Asset{Denom: raw.Denom, Amount: amount}
	return nil
}
