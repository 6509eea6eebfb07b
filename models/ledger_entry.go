package models

import (
	"time"

	"github.com/google/uuid"
)

// Reason classifies why a ledger mutation occurred
type Reason string

const (
	ReasonRegistration    Reason = "registration"
	ReasonDailyLogin      Reason = "daily_login"
	ReasonRewardRedeemed  Reason = "reward_redeemed"
	ReasonAdminAdjustment Reason = "admin_adjustment"
)

// ValidReason reports whether r is one of the enumerated reason codes
func ValidReason(r Reason) bool {
	switch r {
	case ReasonRegistration, ReasonDailyLogin, ReasonRewardRedeemed, ReasonAdminAdjustment:
		return true
	}
	return false
}

// LedgerEntry represents an immutable record of one balance change.
// Positive amounts are credits, negative amounts are debits.
// Entries are appended exactly once and never updated or deleted.
type LedgerEntry struct {
	ID             int64          `db:"id"`
	UserID         int64          `db:"user_id"`
	Amount         int64          `db:"amount"`
	Reason         Reason         `db:"reason"`
	RewardID       *int64         `db:"reward_id"`
	Metadata       map[string]any `db:"metadata"`
	IdempotencyKey *uuid.UUID     `db:"idempotency_key"`
	CreatedAt      time.Time      `db:"created_at"`
}

// AdminLedgerEntry is a ledger entry joined with display fields for the
// admin listing (username and reward name may be empty)
type AdminLedgerEntry struct {
	LedgerEntry
	Username   string  `db:"username"`
	RewardName *string `db:"reward_name"`
}

// AdminLedgerFilter narrows the admin ledger listing
type AdminLedgerFilter struct {
	UserID *int64
	Reason *Reason
	Limit  int
	Offset int
}
