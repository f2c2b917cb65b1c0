package guard

import (
	"fmt"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
)

// AssertSlippageTolerance rejects a two-sided deposit whose ratio, after
// allowing for tolerance, still exceeds the pool ratio in either direction.
// A nil tolerance disables the check.
func AssertSlippageTolerance(tolerance *fixed.Decimal, deposits, pools [2]*uint256.Int) error {
	if tolerance == nil {
		return nil
	}
	if tolerance.Gt(fixed.One()) {
		return fmt.Errorf("%w: slippage tolerance %s", ErrInvalidLimit, tolerance)
	}
	keep, err := fixed.One().Sub(*tolerance)
	if err != nil {
		return err
	}

	for _, order := range [2][2]int{{0, 1}, {1, 0}} {
		i, j := order[0], order[1]
		depositRatio, err := fixed.FromRatio(deposits[i], deposits[j])
		if err != nil {
			return fmt.Errorf("deposit ratio: %w", err)
		}
		poolRatio, err := fixed.FromRatio(pools[i], pools[j])
		if err != nil {
			return fmt.Errorf("pool ratio: %w", err)
		}
		allowed, err := depositRatio.Mul(keep)
		if err != nil {
			return err
		}
		if allowed.Gt(poolRatio) {
			return fmt.Errorf("%w: deposit ratio %s against pool ratio %s", ErrMaxSlippage, depositRatio, poolRatio)
		}
	}
	return nil
}
