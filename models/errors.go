package models

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to callers. The HTTP layer maps each of these to a
// stable machine-readable code; everything else is reported as internal.
var (
	ErrNotFound            = errors.New("account not found")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrRewardInactive      = errors.New("reward is no longer available")
	ErrInvalidAmount       = errors.New("amount must be a non-zero integer")
	ErrInvalidReason       = errors.New("unknown reason code")
	ErrAlreadyClaimedToday = errors.New("daily bonus already claimed today")
	ErrAlreadyRegistered   = errors.New("registration bonus already granted")
	ErrDuplicateRedemption = errors.New("redemption with this idempotency key already exists")
	ErrInsufficientFunds   = errors.New("insufficient funds")

	// ErrConflict reports a serialization failure detected by the store.
	// The operation had no effect and is safe to re-run from its pre-check.
	ErrConflict = errors.New("concurrent mutation detected, retry")
)

// InsufficientFundsError carries the shortfall so callers can render
// "need N more coins". It matches ErrInsufficientFunds under errors.Is.
type InsufficientFundsError struct {
	Required int64
	Current  int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: have %d, need %d", e.Current, e.Required)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
