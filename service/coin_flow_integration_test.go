package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"closetcoins/events"
	"closetcoins/models"
	"closetcoins/repository"
	"closetcoins/repository/testutil"
	"closetcoins/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCoinFlow_Integration drives the full earn-then-spend lifecycle against
// a real database: registration bonus, daily bonus, a redemption that drains
// the balance to zero, and a second redemption that must be refused.
func TestCoinFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	earning := service.NewEarningService(uowFactory)
	redemption := service.NewRedemptionService(uowFactory)
	history := service.NewHistoryService(uowFactory)

	rewardID := testDB.InsertReward(t, "movie night", 60, true)
	const userID = int64(42)

	// Registration creates the account and grants the bonus
	balance, err := earning.Credit(ctx, service.CreditRequest{
		UserID:   userID,
		Username: "alice",
		Amount:   50,
		Reason:   models.ReasonRegistration,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	// A second registration bonus is refused
	_, err = earning.Credit(ctx, service.CreditRequest{
		UserID:   userID,
		Username: "alice",
		Amount:   50,
		Reason:   models.ReasonRegistration,
	})
	assert.ErrorIs(t, err, models.ErrAlreadyRegistered)

	// Daily bonus lifts the balance to the reward cost
	balance, err = earning.Credit(ctx, service.CreditRequest{
		UserID: userID,
		Amount: 10,
		Reason: models.ReasonDailyLogin,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60), balance)

	// Same-day repeat is refused
	_, err = earning.Credit(ctx, service.CreditRequest{
		UserID: userID,
		Amount: 10,
		Reason: models.ReasonDailyLogin,
	})
	assert.ErrorIs(t, err, models.ErrAlreadyClaimedToday)

	// Redemption drains the balance exactly to zero
	result, err := redemption.Redeem(ctx, userID, rewardID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.NewBalance)
	assert.Equal(t, "movie night", result.Reward.Name)
	assert.Equal(t, int64(60), result.Reward.Cost)

	// A second redemption reports the shortfall
	_, err = redemption.Redeem(ctx, userID, rewardID, nil)
	require.Error(t, err)
	var shortfall *models.InsufficientFundsError
	require.True(t, errors.As(err, &shortfall))
	assert.Equal(t, int64(60), shortfall.Required)
	assert.Equal(t, int64(0), shortfall.Current)

	// The ledger tells the whole story, newest first
	entries, hasMore, err := history.ListEntries(ctx, userID, 10, 0, nil)
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, entries, 3)
	assert.Equal(t, models.ReasonRewardRedeemed, entries[0].Reason)
	assert.Equal(t, int64(-60), entries[0].Amount)
	assert.Equal(t, models.ReasonDailyLogin, entries[1].Reason)
	assert.Equal(t, models.ReasonRegistration, entries[2].Reason)

	// Balance and ledger can never diverge
	ledgerRepo := repository.NewLedgerRepository(testDB.DB)
	sum, err := ledgerRepo.SumByUser(ctx, userID)
	require.NoError(t, err)
	balance, err = history.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, balance, sum)
}

// TestConcurrentRedemptions_Integration fires parallel redemptions at one
// account and checks that exactly floor(balance/cost) of them succeed.
func TestConcurrentRedemptions_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	earning := service.NewEarningService(uowFactory)
	redemption := service.NewRedemptionService(uowFactory)

	const userID = int64(77)
	rewardID := testDB.InsertReward(t, "sticker pack", 30, true)

	_, err := earning.Credit(ctx, service.CreditRequest{
		UserID:   userID,
		Username: "bob",
		Amount:   100,
		Reason:   models.ReasonRegistration,
	})
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := redemption.Redeem(ctx, userID, rewardID, nil)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, models.ErrInsufficientFunds)
	}
	assert.Equal(t, 3, successes) // floor(100 / 30)

	accountRepo := repository.NewAccountRepository(testDB.DB)
	balance, err := accountRepo.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	ledgerRepo := repository.NewLedgerRepository(testDB.DB)
	sum, err := ledgerRepo.SumByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, balance, sum)
}

// TestRedemptionIdempotency_Integration retries a redemption with the same
// key and checks that only the first attempt spends coins.
func TestRedemptionIdempotency_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	earning := service.NewEarningService(uowFactory)
	redemption := service.NewRedemptionService(uowFactory)

	const userID = int64(88)
	rewardID := testDB.InsertReward(t, "sticker pack", 20, true)

	_, err := earning.Credit(ctx, service.CreditRequest{
		UserID:   userID,
		Username: "carol",
		Amount:   100,
		Reason:   models.ReasonRegistration,
	})
	require.NoError(t, err)

	key := uuid.New()

	result, err := redemption.Redeem(ctx, userID, rewardID, &key)
	require.NoError(t, err)
	assert.Equal(t, int64(80), result.NewBalance)

	_, err = redemption.Redeem(ctx, userID, rewardID, &key)
	assert.ErrorIs(t, err, models.ErrDuplicateRedemption)

	accountRepo := repository.NewAccountRepository(testDB.DB)
	balance, err := accountRepo.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(80), balance)
}
