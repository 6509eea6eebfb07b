package service

import (
	"context"
	"fmt"

	"closetcoins/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type historyService struct {
	uowFactory UnitOfWorkFactory
}

// NewHistoryService creates a new history service
func NewHistoryService(uowFactory UnitOfWorkFactory) HistoryService {
	return &historyService{
		uowFactory: uowFactory,
	}
}

// GetBalance returns the committed balance for a user
func (s *historyService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.Accounts().GetBalance(ctx, userID)
}

// ListEntries returns a page of the user's ledger, newest first. hasMore is
// a heuristic: true iff the page came back full, so the last page of an
// exactly divisible ledger reports one extra empty page.
func (s *historyService) ListEntries(ctx context.Context, userID int64, limit, offset int, reason *models.Reason) ([]*models.LedgerEntry, bool, error) {
	limit, offset = clampPage(limit, offset)
	if reason != nil && !models.ValidReason(*reason) {
		return nil, false, models.ErrInvalidReason
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.Ledger().ListByUser(ctx, userID, limit, offset, reason)
	if err != nil {
		return nil, false, err
	}

	return entries, len(entries) == limit, nil
}

// AdminListEntries lists entries across all users with display fields
func (s *historyService) AdminListEntries(ctx context.Context, filter models.AdminLedgerFilter) ([]*models.AdminLedgerEntry, bool, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	if filter.Reason != nil && !models.ValidReason(*filter.Reason) {
		return nil, false, models.ErrInvalidReason
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.Ledger().ListAll(ctx, filter)
	if err != nil {
		return nil, false, err
	}

	return entries, len(entries) == filter.Limit, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
