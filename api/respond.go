package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"closetcoins/models"

	log "github.com/sirupsen/logrus"
)

type apiError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Required *int64 `json:"required,omitempty"`
	Current  *int64 `json:"current,omitempty"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: message}})
}

func writeInvalidRequest(w http.ResponseWriter, message string) {
	writeErrorCode(w, http.StatusBadRequest, "invalid_request", message)
}

// writeError maps domain errors onto stable machine-readable codes.
// Anything unrecognized is an internal store failure and is logged with
// its cause but reported opaquely.
func writeError(w http.ResponseWriter, err error) {
	var shortfall *models.InsufficientFundsError
	if errors.As(err, &shortfall) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: apiError{
			Code:     "insufficient_funds",
			Message:  shortfall.Error(),
			Required: &shortfall.Required,
			Current:  &shortfall.Current,
		}})
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, models.ErrRewardNotFound):
		writeErrorCode(w, http.StatusNotFound, "reward_not_found", err.Error())
	case errors.Is(err, models.ErrRewardInactive):
		writeErrorCode(w, http.StatusConflict, "reward_inactive", err.Error())
	case errors.Is(err, models.ErrInsufficientFunds):
		writeErrorCode(w, http.StatusConflict, "insufficient_funds", err.Error())
	case errors.Is(err, models.ErrAlreadyClaimedToday):
		writeErrorCode(w, http.StatusConflict, "already_claimed_today", err.Error())
	case errors.Is(err, models.ErrAlreadyRegistered):
		writeErrorCode(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, models.ErrDuplicateRedemption):
		writeErrorCode(w, http.StatusConflict, "duplicate_redemption", err.Error())
	case errors.Is(err, models.ErrConflict):
		writeErrorCode(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, models.ErrInvalidAmount):
		writeErrorCode(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, models.ErrInvalidReason):
		writeErrorCode(w, http.StatusBadRequest, "invalid_reason", err.Error())
	default:
		log.WithError(err).Error("Request failed")
		writeErrorCode(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
