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

// cartRepository implements CartRepository using PostgreSQL.
type cartRepository struct {
	pgRepo
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{pgRepo: newPgRepo(pool, logger, "cart")}
}

// Increment adds line.Quantity to the (user, product) line, inserting it when absent.
// The upsert is a single statement so concurrent increments never lose an update.
func (r *cartRepository) Increment(ctx context.Context, tx pgx.Tx, line *model.CartLine) error {
	query := `
		INSERT INTO cart_items (user_id, product_name, unit_price, image, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, product_name)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
		              unit_price = EXCLUDED.unit_price,
		              image = EXCLUDED.image
	`

	_, err := tx.Exec(ctx, query,
		line.UserID, line.ProductName, line.UnitPrice, line.Image, line.Quantity, line.AddedAt)
	if err != nil {
		if isPgError(err, pgNumericOutOfRange) {
			return model.ErrQuantityTooLarge
		}
		r.logger.Error().
			Err(err).
			Str("user_id", line.UserID.String()).
			Str("product", line.ProductName).
			Msg("failed to increment cart line")
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	r.logger.Debug().
		Str("user_id", line.UserID.String()).
		Str("product", line.ProductName).
		Int("quantity", line.Quantity).
		Msg("cart line incremented")
	return nil
}

// GetForUpdate returns the line locked for the rest of tx, or nil when absent.
func (r *cartRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productName string) (*model.CartLine, error) {
	query := `
		SELECT user_id, product_name, unit_price, image, quantity, added_at
		FROM cart_items
		WHERE user_id = $1 AND product_name = $2
		FOR UPDATE
	`

	var l model.CartLine
	err := tx.QueryRow(ctx, query, userID, productName).
		Scan(&l.UserID, &l.ProductName, &l.UnitPrice, &l.Image, &l.Quantity, &l.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product", productName).Msg("failed to lock cart line")
		return nil, fmt.Errorf("failed to lock cart item: %w", err)
	}
	return &l, nil
}

// SetQuantity overwrites the quantity of an existing line within tx.
func (r *cartRepository) SetQuantity(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productName string, quantity int) error {
	_, err := tx.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_name = $2`,
		userID, productName, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("product", productName).Int("quantity", quantity).Msg("failed to set cart quantity")
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

// Delete removes a line within tx. Deleting an absent line is not an error.
func (r *cartRepository) Delete(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productName string) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_name = $2`, userID, productName)
	if err != nil {
		r.logger.Error().Err(err).Str("product", productName).Msg("failed to delete cart line")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// DeleteAll removes every line of the user within tx.
func (r *cartRepository) DeleteAll(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListForUpdate returns the user's lines locked for the rest of tx.
func (r *cartRepository) ListForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT user_id, product_name, unit_price, image, quantity, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at, product_name
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to lock cart lines")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	return r.collect(rows)
}

// List returns the user's lines in a stable order.
func (r *cartRepository) List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT user_id, product_name, unit_price, image, quantity, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at, product_name
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	return r.collect(rows)
}

func (r *cartRepository) collect(rows pgx.Rows) ([]model.CartLine, error) {
	defer rows.Close()

	lines := []model.CartLine{}
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.UserID, &l.ProductName, &l.UnitPrice, &l.Image, &l.Quantity, &l.AddedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return lines, nil
}
