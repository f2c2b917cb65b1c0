// Package stableswap implements the Curve StableSwap invariant for pools of
// two or more like-valued assets.
//
// The solvers work on comparable balances: 6-decimal integers lifted into
// fixed.Decimal. Pool converts native amounts at the boundary.
package stableswap

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/model"
)

// MaxIterations caps both Newton solvers.
const MaxIterations = 256

// convergenceAtoms is the largest step, in units of 10^-18, treated as
// converged. A step of exactly one atom also stops the loop (|ΔD| <= 1, as
// Curve does), one atom looser than a strict |ΔD| < 1.
const convergenceAtoms = 1

var (
	// ErrConvergence is returned when a solver exhausts MaxIterations.
	ErrConvergence = errors.New("invariant did not converge")
	// ErrInvalidAmp is returned for a zero amplification.
	ErrInvalidAmp = errors.New("amplification must be positive")
	// ErrPoolSize is returned for fewer than two balances or mismatched
	// slices.
	ErrPoolSize = errors.New("invalid pool size")
)

// leverage returns A*n^n.
func leverage(amp uint64, n int) (*uint256.Int, error) {
	ann := uint256.NewInt(amp)
	count := uint256.NewInt(uint64(n))
	for i := 0; i < n; i++ {
		next, err := fixed.Mul(ann, count)
		if err != nil {
			return nil, fmt.Errorf("amplification leverage: %w", err)
		}
		ann = next
	}
	return ann, nil
}

// ComputeD solves the invariant for the given balances. It converges for
// balanced and moderately skewed pools; a pool drained to a balance around
// 10^-9 of the others at high amp can return ErrConvergence.
func ComputeD(balances []fixed.Decimal, amp uint64) (fixed.Decimal, error) {
	n := len(balances)
	if n < 2 {
		return fixed.Decimal{}, fmt.Errorf("%w: %d balances", ErrPoolSize, n)
	}
	if amp == 0 {
		return fixed.Decimal{}, ErrInvalidAmp
	}
	sum, err := fixed.Sum(balances)
	if err != nil {
		return fixed.Decimal{}, fmt.Errorf("balance sum: %w", err)
	}
	if sum.IsZero() {
		return fixed.Zero(), nil
	}
	ann, err := leverage(amp, n)
	if err != nil {
		return fixed.Decimal{}, err
	}

	d := sum
	for i := 0; i < MaxIterations; i++ {
		dp := d
		for _, x := range balances {
			nx, err := x.MulUint64(uint64(n))
			if err != nil {
				return fixed.Decimal{}, err
			}
			dp, err = fixed.MulQuo(dp, d, nx)
			if err != nil {
				return fixed.Decimal{}, fmt.Errorf("invariant product: %w", err)
			}
		}

		prev := d
		d, err = nextD(d, dp, sum, ann, n)
		if err != nil {
			return fixed.Decimal{}, err
		}
		if d.WithinAtoms(prev, convergenceAtoms) {
			return d, nil
		}
	}
	return fixed.Decimal{}, fmt.Errorf("%w: D after %d iterations", ErrConvergence, MaxIterations)
}

// nextD is one Newton step:
// D * (ann*S + n*D_P) / ((ann-1)*D + (n+1)*D_P).
func nextD(d, dp, sum fixed.Decimal, ann *uint256.Int, n int) (fixed.Decimal, error) {
	annSum, err := sum.MulInt(ann)
	if err != nil {
		return fixed.Decimal{}, err
	}
	ndp, err := dp.MulUint64(uint64(n))
	if err != nil {
		return fixed.Decimal{}, err
	}
	top, err := annSum.Add(ndp)
	if err != nil {
		return fixed.Decimal{}, err
	}

	annLess := new(uint256.Int).SubUint64(ann, 1)
	dAnn, err := d.MulInt(annLess)
	if err != nil {
		return fixed.Decimal{}, err
	}
	n1dp, err := dp.MulUint64(uint64(n + 1))
	if err != nil {
		return fixed.Decimal{}, err
	}
	bottom, err := dAnn.Add(n1dp)
	if err != nil {
		return fixed.Decimal{}, err
	}
	return fixed.MulQuo(d, top, bottom)
}

// ComputeY returns the ask balance that keeps D unchanged once the offer
// balance becomes newOffer.
func ComputeY(offerIndex, askIndex int, newOffer fixed.Decimal, balances []fixed.Decimal, amp uint64, d fixed.Decimal) (fixed.Decimal, error) {
	n := len(balances)
	if err := checkIndexes(offerIndex, askIndex, n); err != nil {
		return fixed.Decimal{}, err
	}
	if amp == 0 {
		return fixed.Decimal{}, ErrInvalidAmp
	}
	ann, err := leverage(amp, n)
	if err != nil {
		return fixed.Decimal{}, err
	}

	c := d
	sum := fixed.Zero()
	for k, x := range balances {
		switch k {
		case askIndex:
			continue
		case offerIndex:
			x = newOffer
		}
		sum, err = sum.Add(x)
		if err != nil {
			return fixed.Decimal{}, err
		}
		nx, err := x.MulUint64(uint64(n))
		if err != nil {
			return fixed.Decimal{}, err
		}
		c, err = fixed.MulQuo(c, d, nx)
		if err != nil {
			return fixed.Decimal{}, fmt.Errorf("y constant: %w", err)
		}
	}

	annN, err := fixed.Mul(ann, uint256.NewInt(uint64(n)))
	if err != nil {
		return fixed.Decimal{}, err
	}
	annNDec, err := fixed.NewFromUint(annN)
	if err != nil {
		return fixed.Decimal{}, err
	}
	c, err = fixed.MulQuo(c, d, annNDec)
	if err != nil {
		return fixed.Decimal{}, err
	}
	dOverAnn, err := d.QuoInt(ann)
	if err != nil {
		return fixed.Decimal{}, err
	}
	b, err := sum.Add(dOverAnn)
	if err != nil {
		return fixed.Decimal{}, err
	}

	y := d
	for i := 0; i < MaxIterations; i++ {
		prev := y
		y, err = nextY(y, b, c, d)
		if err != nil {
			return fixed.Decimal{}, err
		}
		if y.WithinAtoms(prev, convergenceAtoms) {
			return y, nil
		}
	}
	return fixed.Decimal{}, fmt.Errorf("%w: y after %d iterations", ErrConvergence, MaxIterations)
}

// nextY is one Newton step: (y^2 + c) / (2y + b - D).
func nextY(y, b, c, d fixed.Decimal) (fixed.Decimal, error) {
	yy, err := y.Mul(y)
	if err != nil {
		return fixed.Decimal{}, err
	}
	top, err := yy.Add(c)
	if err != nil {
		return fixed.Decimal{}, err
	}
	twoY, err := y.MulUint64(2)
	if err != nil {
		return fixed.Decimal{}, err
	}
	twoYB, err := twoY.Add(b)
	if err != nil {
		return fixed.Decimal{}, err
	}
	bottom, err := twoYB.Sub(d)
	if err != nil {
		return fixed.Decimal{}, fmt.Errorf("y denominator: %w", err)
	}
	return top.Quo(bottom)
}

func checkIndexes(offerIndex, askIndex, n int) error {
	if n < 2 {
		return fmt.Errorf("%w: %d balances", ErrPoolSize, n)
	}
	if offerIndex == askIndex || offerIndex < 0 || askIndex < 0 || offerIndex >= n || askIndex >= n {
		return fmt.Errorf("%w: offer %d ask %d in a pool of %d", model.ErrInvalidAsset, offerIndex, askIndex, n)
	}
	return nil
}
