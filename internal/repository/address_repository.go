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

// addressRepository implements AddressRepository using PostgreSQL.
type addressRepository struct {
	pgRepo
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{pgRepo: newPgRepo(pool, logger, "address")}
}

// Create inserts an address within tx.
func (r *addressRepository) Create(ctx context.Context, tx pgx.Tx, a *model.Address) error {
	query := `
		INSERT INTO addresses (id, user_id, name, address_line, city, state, zip, phone, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.Exec(ctx, query,
		a.ID, a.UserID, a.Name, a.AddressLine, a.City, a.State, a.Zip, a.Phone, a.IsDefault, a.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", a.UserID.String()).Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}

	r.logger.Debug().
		Str("user_id", a.UserID.String()).
		Str("address_id", a.ID.String()).
		Bool("is_default", a.IsDefault).
		Msg("address created")
	return nil
}

// ClearDefault unsets the default flag on every address of the user within tx.
func (r *addressRepository) ClearDefault(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear default address")
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}

// MarkDefault flags one address as default within tx.
func (r *addressRepository) MarkDefault(ctx context.Context, tx pgx.Tx, userID, addressID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE addresses SET is_default = TRUE WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", addressID.String()).Msg("failed to mark default address")
		return false, fmt.Errorf("failed to mark default address: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// LockOwner takes the user row lock within tx. Returns false when the user is gone.
func (r *addressRepository) LockOwner(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (bool, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to lock address owner")
		return false, fmt.Errorf("failed to lock address owner: %w", err)
	}
	return true, nil
}

// CountByUser returns how many addresses the user has, read within tx.
func (r *addressRepository) CountByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int, error) {
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, userID).Scan(&count); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to count addresses")
		return 0, fmt.Errorf("failed to count addresses: %w", err)
	}
	return count, nil
}

// ListByUser returns the user's addresses, default first.
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	query := `
		SELECT id, user_id, name, address_line, city, state, zip, phone, is_default, created_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query addresses")
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	addresses := []model.Address{}
	for rows.Next() {
		var a model.Address
		err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.AddressLine, &a.City, &a.State, &a.Zip, &a.Phone, &a.IsDefault, &a.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan address row")
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating address rows")
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// HasAny reports whether the user has at least one address.
func (r *addressRepository) HasAny(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM addresses WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to check addresses")
		return false, fmt.Errorf("failed to check addresses: %w", err)
	}
	return exists, nil
}

// Delete removes one of the user's addresses.
func (r *addressRepository) Delete(ctx context.Context, userID, addressID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", addressID.String()).Msg("failed to delete address")
		return false, fmt.Errorf("failed to delete address: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
