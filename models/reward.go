package models

import (
	"time"
)

// Reward represents a catalog entity users can spend coins on.
// Rewards are created and edited by the admin tooling; this service
// only ever reads them.
type Reward struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Cost        int64     `db:"cost"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// RewardSnapshot is a point-in-time copy of a reward's display fields,
// captured at redemption so later catalog edits cannot alter how a
// historical redemption renders
type RewardSnapshot struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Cost        int64   `json:"cost"`
}

// Snapshot captures the reward's display fields as they are right now
func (r *Reward) Snapshot() RewardSnapshot {
	return RewardSnapshot{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Cost:        r.Cost,
	}
}

// RedemptionResult is returned by a successful redemption
type RedemptionResult struct {
	NewBalance int64
	Reward     RewardSnapshot
}
