package api

import (
	"time"

	"closetcoins/models"
)

type creditRequest struct {
	Reason string `json:"reason"`
	// Amount is ignored for bonus reasons; those use configured values.
	Amount int64 `json:"amount,omitempty"`
}

type redeemRequest struct {
	RewardID       int64  `json:"reward_id"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type adminAdjustRequest struct {
	UserID int64  `json:"user_id"`
	Amount int64  `json:"amount"`
	Note   string `json:"note,omitempty"`
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

type rewardJSON struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Cost        int64   `json:"cost"`
}

type redeemResponse struct {
	Balance int64      `json:"balance"`
	Reward  rewardJSON `json:"reward"`
}

type rewardsResponse struct {
	Rewards []rewardJSON `json:"rewards"`
}

type entryJSON struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Username  string         `json:"username,omitempty"`
	Amount    int64          `json:"amount"`
	Reason    models.Reason  `json:"reason"`
	RewardID  *int64         `json:"reward_id,omitempty"`
	Reward    *string        `json:"reward_name,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type ledgerResponse struct {
	Entries []entryJSON `json:"entries"`
	HasMore bool        `json:"has_more"`
}

func toRewardJSON(r *models.Reward) rewardJSON {
	return rewardJSON{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Cost:        r.Cost,
	}
}

func snapshotJSON(s models.RewardSnapshot) rewardJSON {
	return rewardJSON{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Cost:        s.Cost,
	}
}

func toEntryJSON(e *models.LedgerEntry) entryJSON {
	return entryJSON{
		ID:        e.ID,
		UserID:    e.UserID,
		Amount:    e.Amount,
		Reason:    e.Reason,
		RewardID:  e.RewardID,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}

func toAdminEntryJSON(e *models.AdminLedgerEntry) entryJSON {
	out := toEntryJSON(&e.LedgerEntry)
	out.Username = e.Username
	out.Reward = e.RewardName
	return out
}
