package testutil

import (
	"context"
	"testing"
	"time"

	"closetcoins/models"

	"github.com/stretchr/testify/require"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(userID int64, username string) *models.Account {
	now := time.Now()
	return &models.Account{
		UserID:    userID,
		Username:  username,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestReward creates a test reward with sensible defaults
func CreateTestReward(name string, cost int64) *models.Reward {
	return &models.Reward{
		Name:      name,
		Cost:      cost,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// InsertAccount seeds an account row directly, bypassing the repository
func (td *TestDatabase) InsertAccount(t *testing.T, userID int64, username string, balance int64) {
	_, err := td.DB.Pool.Exec(context.Background(),
		`INSERT INTO accounts (user_id, username, balance) VALUES ($1, $2, $3)`,
		userID, username, balance)
	require.NoError(t, err)
}

// InsertReward seeds a catalog reward and returns its id. The reward
// repository is read-only, so tests write the row directly.
func (td *TestDatabase) InsertReward(t *testing.T, name string, cost int64, active bool) int64 {
	var id int64
	err := td.DB.Pool.QueryRow(context.Background(),
		`INSERT INTO rewards (name, cost, active) VALUES ($1, $2, $3) RETURNING id`,
		name, cost, active).Scan(&id)
	require.NoError(t, err)
	return id
}

// InsertLedgerEntry seeds a ledger row with an explicit created_at, used to
// backdate daily-login entries
func (td *TestDatabase) InsertLedgerEntry(t *testing.T, userID, amount int64, reason models.Reason, createdAt time.Time) {
	_, err := td.DB.Pool.Exec(context.Background(),
		`INSERT INTO ledger_entries (user_id, amount, reason, created_at) VALUES ($1, $2, $3, $4)`,
		userID, amount, reason, createdAt)
	require.NoError(t, err)
}
