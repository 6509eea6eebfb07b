package service

import (
	"context"
	"time"

	"closetcoins/events"
	"closetcoins/models"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByUserID retrieves an account by user ID, returning nil when absent
	GetByUserID(ctx context.Context, userID int64) (*models.Account, error)

	// Create creates a new account with a zero balance
	Create(ctx context.Context, userID int64, username string) (*models.Account, error)

	// ApplyDelta atomically adjusts the balance, refusing changes that would
	// drive it negative, and returns the new balance
	ApplyDelta(ctx context.Context, userID int64, delta int64) (int64, error)

	// GetBalance returns the committed balance for a user
	GetBalance(ctx context.Context, userID int64) (int64, error)
}

// LedgerRepository defines the interface for the append-only transaction log
type LedgerRepository interface {
	// Append durably records one ledger entry
	Append(ctx context.Context, entry *models.LedgerEntry) error

	// ListByUser returns a page of a user's entries, newest first
	ListByUser(ctx context.Context, userID int64, limit, offset int, reason *models.Reason) ([]*models.LedgerEntry, error)

	// ListAll returns a page of entries across all users with display fields
	ListAll(ctx context.Context, filter models.AdminLedgerFilter) ([]*models.AdminLedgerEntry, error)

	// LastDailyLoginAt returns when the user last received the daily bonus
	LastDailyLoginAt(ctx context.Context, userID int64) (*time.Time, error)

	// SumByUser returns the sum of all entry amounts for a user
	SumByUser(ctx context.Context, userID int64) (int64, error)
}

// RewardRepository defines the interface for read-only catalog access
type RewardRepository interface {
	// GetByID retrieves a reward by ID, returning nil when absent
	GetByID(ctx context.Context, id int64) (*models.Reward, error)

	// ListActive returns all redeemable rewards ordered by cost
	ListActive(ctx context.Context) ([]*models.Reward, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	Accounts() AccountRepository
	Ledger() LedgerRepository
	Rewards() RewardRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// CreditRequest describes a credit-type ledger mutation
type CreditRequest struct {
	UserID   int64
	Username string // used only when registration provisions the account
	Amount   int64
	Reason   models.Reason
	Note     string // admin note, recorded in entry metadata
	ActorID  int64  // admin actor for adjustments, zero otherwise
}

// EarningService gatekeeps credit-type mutations before they reach the ledger
type EarningService interface {
	// Credit applies a credit after evaluating the earning rules for its
	// reason and returns the new balance
	Credit(ctx context.Context, req CreditRequest) (int64, error)
}

// RedemptionService executes the spend-coins-for-a-reward workflow
type RedemptionService interface {
	// Redeem debits the reward's cost and returns the new balance together
	// with a point-in-time snapshot of the reward
	Redeem(ctx context.Context, userID, rewardID int64, idemKey *uuid.UUID) (*models.RedemptionResult, error)

	// ListRewards returns the active catalog for the redemption screen
	ListRewards(ctx context.Context) ([]*models.Reward, error)
}

// HistoryService provides paginated read-only access to balances and entries
type HistoryService interface {
	// GetBalance returns the committed balance for a user
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// ListEntries returns a page of the user's entries, newest first.
	// hasMore is a heuristic: true iff the page holds exactly limit items.
	ListEntries(ctx context.Context, userID int64, limit, offset int, reason *models.Reason) (entries []*models.LedgerEntry, hasMore bool, err error)

	// AdminListEntries lists entries across all users with display fields
	AdminListEntries(ctx context.Context, filter models.AdminLedgerFilter) (entries []*models.AdminLedgerEntry, hasMore bool, err error)
}
