package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// addressService implements AddressService.
type addressService struct {
	addresses repository.AddressRepository
	logger    zerolog.Logger
	clock     func() time.Time
}

// NewAddressService creates a new address service.
func NewAddressService(addresses repository.AddressRepository, logger zerolog.Logger) AddressService {
	return &addressService{
		addresses: addresses,
		logger:    logger.With().Str("service", "address").Logger(),
		clock:     time.Now,
	}
}

// List returns the user's addresses, default first.
func (s *addressService) List(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	addresses, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// Add saves an address. It becomes the default when requested or when it is the user's first.
func (s *addressService) Add(ctx context.Context, userID uuid.UUID, req *model.AddressRequest) (_ *model.Address, err error) {
	addr, err := normalizeAddress(req)
	if err != nil {
		return nil, err
	}

	tx, err := s.addresses.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.lockOwner(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}

	count, err := s.addresses.CountByUser(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}

	isDefault := addr.IsDefault || count == 0
	if isDefault {
		if err = s.addresses.ClearDefault(ctx, tx, userID); err != nil {
			return nil, fmt.Errorf("failed to add address: %w", err)
		}
	}

	address := newAddress(userID, addr, isDefault, s.clock())
	if err = s.addresses.Create(ctx, tx, address); err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("address_id", address.ID.String()).
		Bool("is_default", isDefault).
		Msg("address added")

	return address, nil
}

// Delete removes one of the user's addresses.
func (s *addressService) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	deleted, err := s.addresses.Delete(ctx, userID, addressID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if !deleted {
		return model.ErrAddressNotFound
	}

	s.logger.Info().Str("user_id", userID.String()).Str("address_id", addressID.String()).Msg("address deleted")
	return nil
}

// SetDefault makes one of the user's addresses the only default.
func (s *addressService) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (err error) {
	tx, err := s.addresses.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.lockOwner(ctx, tx, userID); err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}

	if err = s.addresses.ClearDefault(ctx, tx, userID); err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}

	marked, err := s.addresses.MarkDefault(ctx, tx, userID, addressID)
	if err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}
	if !marked {
		return model.ErrAddressNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}

	return nil
}

// lockOwner serialises default-flag changes per user on the user row.
func (s *addressService) lockOwner(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	found, err := s.addresses.LockOwner(ctx, tx, userID)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrUnauthenticated
	}
	return nil
}
