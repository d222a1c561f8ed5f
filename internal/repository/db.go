package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// pgCheckViolation is the SQLSTATE for check_violation.
const pgCheckViolation = "23514"

// pgNumericOutOfRange is the SQLSTATE for numeric_value_out_of_range.
const pgNumericOutOfRange = "22003"

// pgRepo holds the pool and logger shared by every PostgreSQL repository.
type pgRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func newPgRepo(pool *pgxpool.Pool, logger zerolog.Logger, name string) pgRepo {
	return pgRepo{
		pool:   pool,
		logger: logger.With().Str("repository", name).Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *pgRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// isPgError reports whether err is a PostgreSQL error with the given SQLSTATE.
func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
