package service

import (
	"context"
	"fmt"

	"closetcoins/events"
	"closetcoins/models"

	"github.com/google/uuid"
)

// deltaParams describes one balance mutation
type deltaParams struct {
	userID   int64
	amount   int64
	reason   models.Reason
	rewardID *int64
	idemKey  *uuid.UUID
	metadata map[string]any
}

// applyDelta is the single entry point for all balance changes. Within the
// caller's unit of work it adjusts the account balance, appends exactly one
// ledger entry and queues the coin-change event, so balance and log can
// never diverge: either all three commit together or none do.
func applyDelta(ctx context.Context, uow UnitOfWork, p deltaParams) (int64, error) {
	if p.amount == 0 {
		return 0, models.ErrInvalidAmount
	}
	if !models.ValidReason(p.reason) {
		return 0, models.ErrInvalidReason
	}
	if p.reason == models.ReasonRewardRedeemed && p.rewardID == nil {
		return 0, fmt.Errorf("reward reference required for %s entries", models.ReasonRewardRedeemed)
	}

	newBalance, err := uow.Accounts().ApplyDelta(ctx, p.userID, p.amount)
	if err != nil {
		return 0, err
	}

	entry := &models.LedgerEntry{
		UserID:         p.userID,
		Amount:         p.amount,
		Reason:         p.reason,
		RewardID:       p.rewardID,
		Metadata:       p.metadata,
		IdempotencyKey: p.idemKey,
	}
	if err := uow.Ledger().Append(ctx, entry); err != nil {
		return 0, err
	}

	uow.EventBus().Publish(events.CoinChangeEvent{
		UserID:     p.userID,
		OldBalance: newBalance - p.amount,
		NewBalance: newBalance,
		Amount:     p.amount,
		Reason:     p.reason,
	})

	return newBalance, nil
}
