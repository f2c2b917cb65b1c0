package stableswap

import (
	"fmt"

	"liquidityEngine/internal/fixed"
)

// SwapResult is a swap priced in comparable units.
type SwapResult struct {
	ReturnAmount     fixed.Decimal
	SpreadAmount     fixed.Decimal
	CommissionAmount fixed.Decimal
}

// SwapTo sells offerAmount of balances[offerIndex] for balances[askIndex].
// Spread is the shortfall against a 1:1 exchange.
func SwapTo(offerIndex, askIndex int, offerAmount fixed.Decimal, balances []fixed.Decimal, amp uint64, commissionRate fixed.Decimal) (SwapResult, error) {
	if err := checkIndexes(offerIndex, askIndex, len(balances)); err != nil {
		return SwapResult{}, err
	}

	d, err := ComputeD(balances, amp)
	if err != nil {
		return SwapResult{}, err
	}
	newOffer, err := balances[offerIndex].Add(offerAmount)
	if err != nil {
		return SwapResult{}, fmt.Errorf("offer balance after swap: %w", err)
	}
	y, err := ComputeY(offerIndex, askIndex, newOffer, balances, amp, d)
	if err != nil {
		return SwapResult{}, err
	}
	gross, err := balances[askIndex].Sub(y)
	if err != nil {
		return SwapResult{}, fmt.Errorf("ask balance after swap: %w", err)
	}

	commission, err := gross.Mul(commissionRate)
	if err != nil {
		return SwapResult{}, fmt.Errorf("commission: %w", err)
	}
	ret, err := gross.Sub(commission)
	if err != nil {
		return SwapResult{}, fmt.Errorf("commission exceeds return: %w", err)
	}

	return SwapResult{
		ReturnAmount:     ret,
		SpreadAmount:     offerAmount.SaturatingSub(gross),
		CommissionAmount: commission,
	}, nil
}
