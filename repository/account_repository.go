package repository

import (
	"context"
	"fmt"

	"closetcoins/database"
	"closetcoins/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByUserID retrieves an account by user ID, returning nil when absent
func (r *AccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	query := `
		SELECT user_id, username, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Username,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %d: %w", userID, err)
	}

	return &account, nil
}

// Create creates a new account with a zero balance. The registration bonus
// is applied through ApplyDelta so it lands in the ledger like every other
// balance change.
func (r *AccountRepository) Create(ctx context.Context, userID int64, username string) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, username)
		VALUES ($1, $2)
		RETURNING user_id, username, balance, created_at, updated_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, userID, username).Scan(
		&account.UserID,
		&account.Username,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create account for user %d: %w", userID, mapPgError(err))
	}

	return &account, nil
}

// ApplyDelta atomically adjusts the balance by delta, refusing any change
// that would drive it negative. The conditional UPDATE takes the row lock,
// so the read, the non-negative check and the write are one atomic unit and
// concurrent deltas for the same user serialize against each other.
func (r *AccountRepository) ApplyDelta(ctx context.Context, userID int64, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1 AND balance + $2 >= 0
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, userID, delta).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		// No row updated: either the account is missing or the debit
		// would overdraw it. Distinguish with a plain read.
		account, getErr := r.GetByUserID(ctx, userID)
		if getErr != nil {
			return 0, fmt.Errorf("failed to check account after rejected delta: %w", getErr)
		}
		if account == nil {
			return 0, models.ErrNotFound
		}
		return 0, &models.InsufficientFundsError{Required: -delta, Current: account.Balance}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to apply delta for user %d: %w", userID, mapPgError(err))
	}

	return newBalance, nil
}

// GetBalance returns the committed balance for a user
func (r *AccountRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT balance FROM accounts WHERE user_id = $1`

	var balance int64
	err := r.q.QueryRow(ctx, query, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for user %d: %w", userID, err)
	}

	return balance, nil
}
