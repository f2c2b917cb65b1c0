package model

import "errors"

var (
	// ErrInvalidAsset is returned when a denom is not part of the pool or an
	// asset list does not line up with the pool's assets.
	ErrInvalidAsset = errors.New("invalid asset")
	// ErrZeroShare is returned when a deposit or withdrawal would mint or
	// burn no share.
	ErrZeroShare = errors.New("zero share")
	// ErrInvalidPool is returned for malformed pool configurations.
	ErrInvalidPool = errors.New("invalid pool")
)
