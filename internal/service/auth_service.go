package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// authService implements AuthService.
type authService struct {
	users      repository.UserRepository
	addresses  repository.AddressRepository
	bonusCoins int64
	cost       int
	logger     zerolog.Logger
	dummyOnce  sync.Once
	dummyHash  []byte
	clock      func() time.Time
}

// NewAuthService creates a new auth service. New accounts are credited bonusCoins.
func NewAuthService(
	users repository.UserRepository,
	addresses repository.AddressRepository,
	bonusCoins int64,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:      users,
		addresses:  addresses,
		bonusCoins: bonusCoins,
		cost:       bcrypt.DefaultCost,
		logger:     logger.With().Str("service", "auth").Logger(),
		clock:      time.Now,
	}
}

// Register creates an account after validating email, password and username.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req == nil {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "Request body is required")
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	var username *string
	if u := strings.TrimSpace(req.Username); u != "" {
		if err := validateUsername(u); err != nil {
			return nil, err
		}
		username = &u
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CoinBalance:  s.bonusCoins,
		CreatedAt:    s.clock().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

// Login verifies credentials without revealing which part was wrong.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	if req == nil {
		return nil, model.ErrInvalidCredentials
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		// Equalise timing with the known-user path.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(req.Password))
		s.logger.Debug().Msg("login failed")
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug().Str("user_id", user.ID.String()).Msg("login failed")
		return nil, model.ErrInvalidCredentials
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return user, nil
}

func (s *authService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), s.cost)
	})
	return s.dummyHash
}

// Gate resolves the user and checks profile completeness.
func (s *authService) Gate(ctx context.Context, userID uuid.UUID) (model.Access, error) {
	if userID == uuid.Nil {
		return model.Access{Status: model.AccessNeedsLogin}, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.Access{}, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return model.Access{Status: model.AccessNeedsLogin}, nil
	}

	if !user.HasBasicInfo() {
		return model.Access{Status: model.AccessNeedsProfile, User: user}, nil
	}

	hasAddress, err := s.addresses.HasAny(ctx, userID)
	if err != nil {
		return model.Access{}, fmt.Errorf("failed to check addresses: %w", err)
	}
	if !hasAddress {
		return model.Access{Status: model.AccessNeedsProfile, User: user}, nil
	}

	return model.Access{Status: model.AccessOK, User: user}, nil
}

// Profile returns the user and their completion flags.
func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*model.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthenticated
	}

	hasAddress, err := s.addresses.HasAny(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check addresses: %w", err)
	}

	return &model.ProfileResponse{
		User:         user,
		HasBasicInfo: user.HasBasicInfo(),
		HasAddress:   hasAddress,
	}, nil
}

// CompleteProfile updates the user and adds a default address in one transaction.
func (s *authService) CompleteProfile(ctx context.Context, userID uuid.UUID, req *model.CompleteProfileRequest) (err error) {
	if req == nil {
		return model.NewValidationError(model.ErrCodeMissingField, "Request body is required")
	}

	username := strings.TrimSpace(req.Username)
	mobile := strings.TrimSpace(req.Mobile)
	if err := validateUsername(username); err != nil {
		return err
	}
	if err := validateMobile(mobile); err != nil {
		return err
	}
	addr, err := normalizeAddress(&req.Address)
	if err != nil {
		return err
	}

	tx, err := s.users.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete profile: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// The UPDATE holds the user row lock, same as AddressService, before the default flag moves.
	if err = s.users.UpdateProfile(ctx, tx, userID, username, mobile); err != nil {
		return err
	}
	if err = s.addresses.ClearDefault(ctx, tx, userID); err != nil {
		return fmt.Errorf("failed to complete profile: %w", err)
	}

	address := newAddress(userID, addr, true, s.clock())
	if err = s.addresses.Create(ctx, tx, address); err != nil {
		return fmt.Errorf("failed to complete profile: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to complete profile: %w", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("profile completed")
	return nil
}

func newAddress(userID uuid.UUID, req model.AddressRequest, isDefault bool, now time.Time) *model.Address {
	return &model.Address{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		AddressLine: req.AddressLine,
		City:        req.City,
		State:       req.State,
		Zip:         req.Zip,
		Phone:       req.Phone,
		IsDefault:   isDefault,
		CreatedAt:   now.UTC(),
	}
}
