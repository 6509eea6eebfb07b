package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"closetcoins/database"
	"closetcoins/models"

	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements the service.LedgerRepository interface.
// The ledger is append-only: no update or delete statements exist here.
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Append durably records one ledger entry and fills in its id and timestamp.
// Unique-index violations surface as the matching domain error.
func (r *LedgerRepository) Append(ctx context.Context, entry *models.LedgerEntry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal entry metadata: %w", err)
	}
	if entry.Metadata == nil {
		metadataJSON = []byte("{}")
	}

	query := `
		INSERT INTO ledger_entries (user_id, amount, reason, reward_id, metadata, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.Amount,
		entry.Reason,
		entry.RewardID,
		metadataJSON,
		entry.IdempotencyKey,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		if mapped := mapPgError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to append ledger entry for user %d: %w", entry.UserID, err)
	}

	return nil
}

// ListByUser returns a page of a user's entries, newest first, optionally
// filtered by reason
func (r *LedgerRepository) ListByUser(ctx context.Context, userID int64, limit, offset int, reason *models.Reason) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, user_id, amount, reason, reward_id, metadata, idempotency_key, created_at
		FROM ledger_entries
		WHERE user_id = $1 AND ($2::text IS NULL OR reason = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.q.Query(ctx, query, userID, reason, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// ListAll returns a page of entries across all users with joined display
// fields, newest first. Used by the admin reporting surface.
func (r *LedgerRepository) ListAll(ctx context.Context, filter models.AdminLedgerFilter) ([]*models.AdminLedgerEntry, error) {
	query := `
		SELECT e.id, e.user_id, e.amount, e.reason, e.reward_id, e.metadata,
		       e.idempotency_key, e.created_at, a.username, w.name
		FROM ledger_entries e
		JOIN accounts a ON a.user_id = e.user_id
		LEFT JOIN rewards w ON w.id = e.reward_id
		WHERE ($1::bigint IS NULL OR e.user_id = $1)
		  AND ($2::text IS NULL OR e.reason = $2)
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.q.Query(ctx, query, filter.UserID, filter.Reason, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AdminLedgerEntry
	for rows.Next() {
		var entry models.AdminLedgerEntry
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Amount,
			&entry.Reason,
			&entry.RewardID,
			&metadataJSON,
			&entry.IdempotencyKey,
			&entry.CreatedAt,
			&entry.Username,
			&entry.RewardName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal entry metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// LastDailyLoginAt returns the timestamp of the user's most recent
// daily_login entry, or nil if none exists
func (r *LedgerRepository) LastDailyLoginAt(ctx context.Context, userID int64) (*time.Time, error) {
	query := `
		SELECT created_at
		FROM ledger_entries
		WHERE user_id = $1 AND reason = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var at time.Time
	err := r.q.QueryRow(ctx, query, userID, models.ReasonDailyLogin).Scan(&at)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last daily login for user %d: %w", userID, err)
	}

	return &at, nil
}

// SumByUser returns the sum of all entry amounts for a user. Exists for
// audit checks: the result must always equal the account balance.
func (r *LedgerRepository) SumByUser(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id = $1`

	var sum int64
	if err := r.q.QueryRow(ctx, query, userID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum ledger entries for user %d: %w", userID, err)
	}

	return sum, nil
}

func scanEntry(rows pgx.Rows) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	var metadataJSON []byte

	err := rows.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Amount,
		&entry.Reason,
		&entry.RewardID,
		&metadataJSON,
		&entry.IdempotencyKey,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry metadata: %w", err)
		}
	}

	return &entry, nil
}
