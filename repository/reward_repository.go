package repository

import (
	"context"
	"fmt"

	"closetcoins/database"
	"closetcoins/models"

	"github.com/jackc/pgx/v5"
)

// RewardRepository implements the service.RewardRepository interface.
// Rewards are written by the catalog admin tooling; this service only reads.
type RewardRepository struct {
	q queryable
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *database.DB) *RewardRepository {
	return &RewardRepository{q: db.Pool}
}

// newRewardRepositoryWithTx creates a new reward repository with a transaction
func newRewardRepositoryWithTx(tx queryable) *RewardRepository {
	return &RewardRepository{q: tx}
}

// GetByID retrieves a reward by ID, returning nil when absent
func (r *RewardRepository) GetByID(ctx context.Context, id int64) (*models.Reward, error) {
	query := `
		SELECT id, name, description, cost, active, created_at, updated_at
		FROM rewards
		WHERE id = $1
	`

	var reward models.Reward
	err := r.q.QueryRow(ctx, query, id).Scan(
		&reward.ID,
		&reward.Name,
		&reward.Description,
		&reward.Cost,
		&reward.Active,
		&reward.CreatedAt,
		&reward.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward %d: %w", id, err)
	}

	return &reward, nil
}

// ListActive returns all redeemable rewards ordered by cost ascending
func (r *RewardRepository) ListActive(ctx context.Context) ([]*models.Reward, error) {
	query := `
		SELECT id, name, description, cost, active, created_at, updated_at
		FROM rewards
		WHERE active
		ORDER BY cost ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*models.Reward
	for rows.Next() {
		var reward models.Reward
		err := rows.Scan(
			&reward.ID,
			&reward.Name,
			&reward.Description,
			&reward.Cost,
			&reward.Active,
			&reward.CreatedAt,
			&reward.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, &reward)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rewards: %w", err)
	}

	return rewards, nil
}
