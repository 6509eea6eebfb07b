package service

import (
	"context"
	"fmt"

	"closetcoins/events"
	"closetcoins/models"

	"github.com/google/uuid"
)

type redemptionService struct {
	uowFactory UnitOfWorkFactory
}

// NewRedemptionService creates a new redemption service
func NewRedemptionService(uowFactory UnitOfWorkFactory) RedemptionService {
	return &redemptionService{
		uowFactory: uowFactory,
	}
}

// Redeem spends coins on a catalog reward. The balance pre-check only
// exists for a friendly shortfall error; the conditional debit inside
// applyDelta is the guard that holds under concurrent redemptions.
func (s *redemptionService) Redeem(ctx context.Context, userID, rewardID int64, idemKey *uuid.UUID) (*models.RedemptionResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	reward, err := uow.Rewards().GetByID(ctx, rewardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	if reward == nil {
		return nil, models.ErrRewardNotFound
	}
	if !reward.Active {
		return nil, models.ErrRewardInactive
	}

	balance, err := uow.Accounts().GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < reward.Cost {
		return nil, &models.InsufficientFundsError{Required: reward.Cost, Current: balance}
	}

	// Snapshot before the debit so the entry records the reward exactly
	// as the user saw it, whatever the catalog admin does later.
	snapshot := reward.Snapshot()
	metadata := map[string]any{
		"reward_name": snapshot.Name,
		"reward_cost": snapshot.Cost,
	}
	if snapshot.Description != nil {
		metadata["reward_description"] = *snapshot.Description
	}

	newBalance, err := applyDelta(ctx, uow, deltaParams{
		userID:   userID,
		amount:   -reward.Cost,
		reason:   models.ReasonRewardRedeemed,
		rewardID: &reward.ID,
		idemKey:  idemKey,
		metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.RewardRedeemedEvent{
		UserID:     userID,
		RewardID:   reward.ID,
		RewardName: reward.Name,
		Cost:       reward.Cost,
		NewBalance: newBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.RedemptionResult{
		NewBalance: newBalance,
		Reward:     snapshot,
	}, nil
}

// ListRewards returns the active catalog ordered by cost
func (s *redemptionService) ListRewards(ctx context.Context) ([]*models.Reward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rewards, err := uow.Rewards().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	return rewards, nil
}
