package repository

import (
	"context"
	"errors"

	"closetcoins/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable abstracts over a connection pool and a transaction so the same
// repository code runs standalone or inside a unit of work
type queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// Partial unique indexes on ledger_entries enforce the once-only invariants
// at commit time; constraint names identify which invariant tripped.
const (
	constraintOneRegistration = "ledger_entries_one_registration_key"
	constraintDailyLoginDay   = "ledger_entries_daily_login_day_key"
	constraintIdempotencyKey  = "ledger_entries_idempotency_key_key"
)

// mapPgError translates store-detected invariant violations into domain
// errors; anything unrecognized is returned as-is
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return models.ErrConflict
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintOneRegistration:
			return models.ErrAlreadyRegistered
		case constraintDailyLoginDay:
			return models.ErrAlreadyClaimedToday
		case constraintIdempotencyKey:
			return models.ErrDuplicateRedemption
		}
	}
	return err
}
