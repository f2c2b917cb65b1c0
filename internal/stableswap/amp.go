package stableswap

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/model"
)

// ErrInvalidRamp is returned when a ramp starts after it stops.
var ErrInvalidRamp = errors.New("invalid amplification ramp")

// ComputeAmpFactor interpolates the amplification linearly between the
// ramp's start and stop timestamps.
func ComputeAmpFactor(amp model.AmpFactor) (uint64, error) {
	if amp.StartRampTs > amp.StopRampTs {
		return 0, fmt.Errorf("%w: start %d after stop %d", ErrInvalidRamp, amp.StartRampTs, amp.StopRampTs)
	}
	if amp.CurrentTs >= amp.StopRampTs {
		return amp.TargetAmp, nil
	}
	if amp.CurrentTs <= amp.StartRampTs {
		return amp.InitialAmp, nil
	}

	elapsed := uint256.NewInt(amp.CurrentTs - amp.StartRampTs)
	window := uint256.NewInt(amp.StopRampTs - amp.StartRampTs)
	if amp.TargetAmp >= amp.InitialAmp {
		step, err := fixed.MulDiv(uint256.NewInt(amp.TargetAmp-amp.InitialAmp), elapsed, window)
		if err != nil {
			return 0, err
		}
		return amp.InitialAmp + step.Uint64(), nil
	}
	step, err := fixed.MulDiv(uint256.NewInt(amp.InitialAmp-amp.TargetAmp), elapsed, window)
	if err != nil {
		return 0, err
	}
	return amp.InitialAmp - step.Uint64(), nil
}
