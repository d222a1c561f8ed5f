package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const userColumns = `id, username, email, password_hash, mobile, coin_balance, created_at`

// userRepository implements UserRepository using PostgreSQL.
type userRepository struct {
	pgRepo
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{pgRepo: newPgRepo(pool, logger, "user")}
}

// Create inserts a user. Returns model.ErrEmailTaken when the email already exists.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, mobile, coin_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Mobile, user.CoinBalance, user.CreatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			r.logger.Debug().Msg("email already registered")
			return model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug().Str("user_id", user.ID.String()).Msg("user created")
	return nil
}

// GetByEmail returns the user with the given email, or nil when none exists.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query user by email")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetByID returns the user with the given ID, or nil when none exists.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetForUpdate returns the user row locked for the rest of tx, or nil when none exists.
func (r *userRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	user, err := scanUser(tx.QueryRow(ctx, query, id))
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to lock user")
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	return user, nil
}

// UpdateProfile sets username and mobile within tx.
func (r *userRepository) UpdateProfile(ctx context.Context, tx pgx.Tx, id uuid.UUID, username, mobile string) error {
	tag, err := tx.Exec(ctx, `UPDATE users SET username = $2, mobile = $3 WHERE id = $1`, id, username, mobile)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to update profile")
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUnauthenticated
	}
	return nil
}

// DebitCoins subtracts coins from the balance within tx.
func (r *userRepository) DebitCoins(ctx context.Context, tx pgx.Tx, id uuid.UUID, coins int64) error {
	if coins == 0 {
		return nil
	}

	query := `
		UPDATE users
		SET coin_balance = coin_balance - $2
		WHERE id = $1 AND coin_balance >= $2
	`

	tag, err := tx.Exec(ctx, query, id, coins)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Int64("coins", coins).Msg("failed to debit coins")
		return fmt.Errorf("failed to debit coins: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("user_id", id.String()).Int64("coins", coins).Msg("coin balance too low for debit")
		return model.ErrInsufficientCoins
	}

	r.logger.Debug().Str("user_id", id.String()).Int64("coins", coins).Msg("coins debited")
	return nil
}

// scanUser scans one user row; a missing row yields (nil, nil).
func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Mobile, &u.CoinBalance, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
