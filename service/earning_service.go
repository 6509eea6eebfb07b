package service

import (
	"context"
	"fmt"
	"time"

	"closetcoins/events"
	"closetcoins/models"
)

type earningService struct {
	uowFactory UnitOfWorkFactory
}

// NewEarningService creates a new earning service
func NewEarningService(uowFactory UnitOfWorkFactory) EarningService {
	return &earningService{
		uowFactory: uowFactory,
	}
}

// Credit applies a credit-type mutation after evaluating the earning rules
// for its reason. All validation failures are rejected before any store
// call; the partial unique indexes close the remaining races at commit.
func (s *earningService) Credit(ctx context.Context, req CreditRequest) (int64, error) {
	switch req.Reason {
	case models.ReasonRegistration, models.ReasonDailyLogin:
		if req.Amount <= 0 {
			return 0, models.ErrInvalidAmount
		}
	case models.ReasonAdminAdjustment:
		if req.Amount == 0 {
			return 0, models.ErrInvalidAmount
		}
	default:
		// reward_redeemed never arrives through the earning rules
		return 0, models.ErrInvalidReason
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	metadata := map[string]any{}

	switch req.Reason {
	case models.ReasonRegistration:
		created, err := s.provisionAccount(ctx, uow, req)
		if err != nil {
			return 0, err
		}
		metadata["username"] = req.Username
		if created {
			uow.EventBus().Publish(events.AccountCreatedEvent{
				UserID:         req.UserID,
				Username:       req.Username,
				InitialBalance: req.Amount,
			})
		}

	case models.ReasonDailyLogin:
		last, err := uow.Ledger().LastDailyLoginAt(ctx, req.UserID)
		if err != nil {
			return 0, fmt.Errorf("failed to check daily bonus eligibility: %w", err)
		}
		if last != nil && SameUTCDay(*last, time.Now()) {
			return 0, models.ErrAlreadyClaimedToday
		}

	case models.ReasonAdminAdjustment:
		metadata["actor_id"] = req.ActorID
		if req.Note != "" {
			metadata["note"] = req.Note
		}
	}

	newBalance, err := applyDelta(ctx, uow, deltaParams{
		userID:   req.UserID,
		amount:   req.Amount,
		reason:   req.Reason,
		metadata: metadata,
	})
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

// provisionAccount creates the account row on first registration. Reports
// whether a new account was created; a pre-existing account is fine, the
// registration unique index still rejects a second bonus for it.
func (s *earningService) provisionAccount(ctx context.Context, uow UnitOfWork, req CreditRequest) (bool, error) {
	account, err := uow.Accounts().GetByUserID(ctx, req.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing account: %w", err)
	}
	if account != nil {
		return false, nil
	}

	if _, err := uow.Accounts().Create(ctx, req.UserID, req.Username); err != nil {
		return false, fmt.Errorf("failed to create account: %w", err)
	}
	return true, nil
}
