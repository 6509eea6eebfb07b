package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"closetcoins/models"
	"closetcoins/service"

	"github.com/google/uuid"
)

// handleCredit grants one of the self-service bonuses. Amounts come from
// service config, never from the caller; admin adjustments go through
// /api/admin/adjust instead.
func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "malformed JSON body")
		return
	}
	if req.Reason == "" {
		writeInvalidRequest(w, "reason is required")
		return
	}

	var amount int64
	switch models.Reason(req.Reason) {
	case models.ReasonRegistration:
		amount = s.cfg.RegistrationBonus
	case models.ReasonDailyLogin:
		amount = s.cfg.DailyLoginBonus
	case models.ReasonAdminAdjustment:
		writeErrorCode(w, http.StatusForbidden, "forbidden", "admin adjustments use /api/admin/adjust")
		return
	default:
		writeError(w, models.ErrInvalidReason)
		return
	}

	balance, err := s.earning.Credit(r.Context(), service.CreditRequest{
		UserID:   id.UserID,
		Username: id.Username,
		Amount:   amount,
		Reason:   models.Reason(req.Reason),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

// handleRedeem spends coins on a catalog reward
func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "malformed JSON body")
		return
	}
	if req.RewardID <= 0 {
		writeInvalidRequest(w, "reward_id is required")
		return
	}

	var idemKey *uuid.UUID
	if req.IdempotencyKey != "" {
		key, err := uuid.Parse(req.IdempotencyKey)
		if err != nil {
			writeInvalidRequest(w, "idempotency_key must be a UUID")
			return
		}
		idemKey = &key
	}

	result, err := s.redemption.Redeem(r.Context(), id.UserID, req.RewardID, idemKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, redeemResponse{
		Balance: result.NewBalance,
		Reward:  snapshotJSON(result.Reward),
	})
}

// handleBalance returns the caller's committed balance
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	balance, err := s.history.GetBalance(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

// handleLedger returns a page of the caller's ledger, newest first
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")
	reason := queryReason(r)

	entries, hasMore, err := s.history.ListEntries(r.Context(), id.UserID, limit, offset, reason)
	if err != nil {
		writeError(w, err)
		return
	}

	out := ledgerResponse{Entries: make([]entryJSON, 0, len(entries)), HasMore: hasMore}
	for _, e := range entries {
		out.Entries = append(out.Entries, toEntryJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListRewards returns the active reward catalog
func (s *Server) handleListRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := s.redemption.ListRewards(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := rewardsResponse{Rewards: make([]rewardJSON, 0, len(rewards))}
	for _, reward := range rewards {
		out.Rewards = append(out.Rewards, toRewardJSON(reward))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAdminAdjust applies a manual balance correction to any account
func (s *Server) handleAdminAdjust(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req adminAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "malformed JSON body")
		return
	}
	if req.UserID <= 0 {
		writeInvalidRequest(w, "user_id is required")
		return
	}

	balance, err := s.earning.Credit(r.Context(), service.CreditRequest{
		UserID:  req.UserID,
		Amount:  req.Amount,
		Reason:  models.ReasonAdminAdjustment,
		Note:    req.Note,
		ActorID: id.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

// handleAdminLedger lists entries across all users with display fields
func (s *Server) handleAdminLedger(w http.ResponseWriter, r *http.Request) {
	filter := models.AdminLedgerFilter{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
		Reason: queryReason(r),
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			writeInvalidRequest(w, "user_id must be a positive integer")
			return
		}
		filter.UserID = &userID
	}

	entries, hasMore, err := s.history.AdminListEntries(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	out := ledgerResponse{Entries: make([]entryJSON, 0, len(entries)), HasMore: hasMore}
	for _, e := range entries {
		out.Entries = append(out.Entries, toAdminEntryJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func queryReason(r *http.Request) *models.Reason {
	raw := r.URL.Query().Get("reason")
	if raw == "" {
		return nil
	}
	reason := models.Reason(raw)
	return &reason
}
