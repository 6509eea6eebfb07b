package service

import (
	"context"
	"testing"
	"time"

	"closetcoins/events"
	"closetcoins/models"
	"closetcoins/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// setupServiceMocks builds a factory whose single unit of work is backed by
// the three repository mocks
func setupServiceMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockLedgerRepository, *MockRewardRepository) {
	accounts := new(MockAccountRepository)
	ledger := new(MockLedgerRepository)
	rewards := new(MockRewardRepository)

	uow := new(MockUnitOfWork)
	uow.SetRepositories(accounts, ledger, rewards)

	factory := new(MockUnitOfWorkFactory)
	factory.On("Create").Return(uow)

	return factory, uow, accounts, ledger, rewards
}

func TestEarningService_Credit_Registration(t *testing.T) {
	ctx := context.Background()

	t.Run("new user gets account and bonus", func(t *testing.T) {
		factory, uow, accounts, ledger, _ := setupServiceMocks()
		svc := NewEarningService(factory)

		account := testutil.CreateTestAccount(123, "alice")
		uow.On("Begin", ctx).Return(nil)
		uow.On("Commit").Return(nil)
		uow.On("Rollback").Return(nil)
		accounts.On("GetByUserID", ctx, int64(123)).Return(nil, nil)
		accounts.On("Create", ctx, int64(123), "alice").Return(account, nil)
		accounts.On("ApplyDelta", ctx, int64(123), int64(50)).Return(int64(50), nil)
		ledger.On("Append", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.UserID == 123 && e.Amount == 50 && e.Reason == models.ReasonRegistration
		})).Return(nil)

		balance, err := svc.Credit(ctx, CreditRequest{
			UserID:   123,
			Username: "alice",
			Amount:   50,
			Reason:   models.ReasonRegistration,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(50), balance)

		published := uow.PublishedEvents()
		require.Len(t, published, 2)
		created, ok := published[0].(events.AccountCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, int64(123), created.UserID)
		change, ok := published[1].(events.CoinChangeEvent)
		require.True(t, ok)
		assert.Equal(t, int64(0), change.OldBalance)
		assert.Equal(t, int64(50), change.NewBalance)

		accounts.AssertExpectations(t)
		ledger.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("existing account skips creation", func(t *testing.T) {
		factory, uow, accounts, ledger, _ := setupServiceMocks()
		svc := NewEarningService(factory)

		account := testutil.CreateTestAccount(123, "alice")
		uow.On("Begin", ctx).Return(nil)
		uow.On("Commit").Return(nil)
		uow.On("Rollback").Return(nil)
		accounts.On("GetByUserID", ctx, int64(123)).Return(account, nil)
		accounts.On("ApplyDelta", ctx, int64(123), int64(50)).Return(int64(50), nil)
		ledger.On("Append", ctx, mock.Anything).Return(nil)

		_, err := svc.Credit(ctx, CreditRequest{
			UserID:   123,
			Username: "alice",
			Amount:   50,
			Reason:   models.ReasonRegistration,
		})
		require.NoError(t, err)

		accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		// No account-created event for a pre-existing account
		for _, e := range uow.PublishedEvents() {
			_, isCreated := e.(events.AccountCreatedEvent)
			assert.False(t, isCreated)
		}
	})

	t.Run("second bonus rejected by the store", func(t *testing.T) {
		factory, uow, accounts, ledger, _ := setupServiceMocks()
		svc := NewEarningService(factory)

		account := testutil.CreateTestAccount(123, "alice")
		uow.On("Begin", ctx).Return(nil)
		uow.On("Rollback").Return(nil)
		accounts.On("GetByUserID", ctx, int64(123)).Return(account, nil)
		accounts.On("ApplyDelta", ctx, int64(123), int64(50)).Return(int64(100), nil)
		ledger.On("Append", ctx, mock.Anything).Return(models.ErrAlreadyRegistered)

		_, err := svc.Credit(ctx, CreditRequest{
			UserID:   123,
			Username: "alice",
			Amount:   50,
			Reason:   models.ReasonRegistration,
		})
		assert.ErrorIs(t, err, models.ErrAlreadyRegistered)
		uow.AssertNotCalled(t, "Commit")
	})
}

func TestEarningService_Credit_DailyLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("first claim of the day", func(t *testing.T) {
		factory, uow, accounts, ledger, _ := setupServiceMocks()
		svc := NewEarningService(factory)

		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		uow.On("Begin", ctx).Return(nil)
		uow.On("Commit").Return(nil)
		uow.On("Rollback").Return(nil)
		ledger.On("LastDailyLoginAt", ctx, int64(123)).Return(&yesterday, nil)
		accounts.On("ApplyDelta", ctx, int64(123), int64(10)).Return(int64(60), nil)
		ledger.On("Append", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.Amount == 10 && e.Reason == models.ReasonDailyLogin
		})).Return(nil)

		balance, err := svc.Credit(ctx, CreditRequest{
			UserID: 123,
			Amount: 10,
			Reason: models.ReasonDailyLogin,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(60), balance)
	})

	t.Run("never claimed before", func(t *testing.T) {
		factory, uow, accounts, ledger, _ := setupServiceMocks()
		svc := NewEarningService(factory)

		uow.On("Begin", ctx).Return(nil)
		uow.On("Commit").Return(nil)
		uow.On("Rollback").Return(nil)
		ledger.On("LastDailyLoginAt", ctx, int64(123)).Return(nil, nil)
		accounts.On("ApplyDelta", ctx, int64(123), int64(10)).Return(int64(10), nil)
		ledger.On("Append", ctx, mock.Anything).Return(nil)

		_, err := svc.Credit(ctx, CreditRequest{
			UserID: 123,
			Amount: 10,
			Reason: models.ReasonDailyLogin,
		})
		assert.NoError(t, err)
	})

	t.Run("already claimed today", func(t *testing.T) {
		factory, uow, accounts, ledger, _ := setupServiceMocks()
		svc := NewEarningService(factory)

		earlier := time.Now()
		uow.On("Begin", ctx).Return(nil)
		uow.On("Rollback").Return(nil)
		ledger.On("LastDailyLoginAt", ctx, int64(123)).Return(&earlier, nil)

		_, err := svc.Credit(ctx, CreditRequest{
			UserID: 123,
			Amount: 10,
			Reason: models.ReasonDailyLogin,
		})
		assert.ErrorIs(t, err, models.ErrAlreadyClaimedToday)
		accounts.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
		uow.AssertNotCalled(t, "Commit")
	})
}

func TestEarningService_Credit_AdminAdjustment(t *testing.T) {
	ctx := context.Background()

	t.Run("records actor and note", func(t *testing.T) {
		factory, uow, accounts, ledger, _ := setupServiceMocks()
		svc := NewEarningService(factory)

		uow.On("Begin", ctx).Return(nil)
		uow.On("Commit").Return(nil)
		uow.On("Rollback").Return(nil)
		accounts.On("ApplyDelta", ctx, int64(123), int64(-25)).Return(int64(35), nil)
		ledger.On("Append", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.Amount == -25 &&
				e.Reason == models.ReasonAdminAdjustment &&
				e.Metadata["actor_id"] == int64(999) &&
				e.Metadata["note"] == "returned item"
		})).Return(nil)

		balance, err := svc.Credit(ctx, CreditRequest{
			UserID:  123,
			Amount:  -25,
			Reason:  models.ReasonAdminAdjustment,
			Note:    "returned item",
			ActorID: 999,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(35), balance)
	})

	t.Run("debit past zero rejected", func(t *testing.T) {
		factory, uow, accounts, _, _ := setupServiceMocks()
		svc := NewEarningService(factory)

		uow.On("Begin", ctx).Return(nil)
		uow.On("Rollback").Return(nil)
		accounts.On("ApplyDelta", ctx, int64(123), int64(-200)).
			Return(int64(0), &models.InsufficientFundsError{Required: 200, Current: 60})

		_, err := svc.Credit(ctx, CreditRequest{
			UserID:  123,
			Amount:  -200,
			Reason:  models.ReasonAdminAdjustment,
			ActorID: 999,
		})
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
		uow.AssertNotCalled(t, "Commit")
	})
}

func TestEarningService_Credit_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreditRequest
		wantErr error
	}{
		{
			name:    "registration amount must be positive",
			req:     CreditRequest{UserID: 1, Amount: 0, Reason: models.ReasonRegistration},
			wantErr: models.ErrInvalidAmount,
		},
		{
			name:    "daily login amount must be positive",
			req:     CreditRequest{UserID: 1, Amount: -10, Reason: models.ReasonDailyLogin},
			wantErr: models.ErrInvalidAmount,
		},
		{
			name:    "admin adjustment must be nonzero",
			req:     CreditRequest{UserID: 1, Amount: 0, Reason: models.ReasonAdminAdjustment},
			wantErr: models.ErrInvalidAmount,
		},
		{
			name:    "redemption reason not accepted here",
			req:     CreditRequest{UserID: 1, Amount: 10, Reason: models.ReasonRewardRedeemed},
			wantErr: models.ErrInvalidReason,
		},
		{
			name:    "unknown reason",
			req:     CreditRequest{UserID: 1, Amount: 10, Reason: models.Reason("jackpot")},
			wantErr: models.ErrInvalidReason,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := new(MockUnitOfWorkFactory)
			svc := NewEarningService(factory)

			_, err := svc.Credit(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			// Validation failures never touch the store
			factory.AssertNotCalled(t, "Create")
		})
	}
}
