// Package account handles registration, authentication, wallet linking and
// the public and private views of a user.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	domainerrors "github.com/usdt-vault/vault_service/internal/domain/errors"
	"github.com/usdt-vault/vault_service/internal/domain/repositories"
	"github.com/usdt-vault/vault_service/internal/domain/services/wallet"
	"github.com/usdt-vault/vault_service/pkg/auth"
	"github.com/usdt-vault/vault_service/pkg/crypto"
)

const qrScheme = "ethereum:"

// BalanceLookup fetches the live chain balance for a linked address.
type BalanceLookup interface {
	GetWalletBalance(ctx context.Context, address string) (*entities.BalanceSnapshot, error)
}

// Blacklist revokes access tokens before they expire.
type Blacklist interface {
	Blacklist(ctx context.Context, token string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

type Config struct {
	Tokens            auth.TokenConfig
	BcryptCost        int
	PasswordMinLength int
	UsernameMinLength int
}

type Service struct {
	store     repositories.Store
	balances  BalanceLookup
	blacklist Blacklist
	config    Config
	logger    *zap.Logger
}

func NewService(store repositories.Store, balances BalanceLookup, blacklist Blacklist, config Config, logger *zap.Logger) *Service {
	if config.PasswordMinLength <= 0 {
		config.PasswordMinLength = 8
	}
	if config.UsernameMinLength <= 0 {
		config.UsernameMinLength = 3
	}
	return &Service{
		store:     store,
		balances:  balances,
		blacklist: blacklist,
		config:    config,
		logger:    logger,
	}
}

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (s *Service) Register(ctx context.Context, req *entities.RegisterRequest) (*entities.AuthResponse, error) {
	username := NormalizeUsername(req.Username)
	if len(username) < s.config.UsernameMinLength {
		return nil, &domainerrors.DomainError{
			Err:     domainerrors.ErrInvalidUsername,
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("Username must be at least %d characters", s.config.UsernameMinLength),
			Details: map[string]interface{}{"field": "username"},
		}
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, domainerrors.WeakPasswordError([]string{
			fmt.Sprintf("at least %d characters", s.config.PasswordMinLength),
		})
	}
	if req.Password != req.ConfirmPassword {
		return nil, &domainerrors.DomainError{
			Err:     domainerrors.ErrPasswordMismatch,
			Code:    "VALIDATION_ERROR",
			Message: "Passwords do not match",
			Details: map[string]interface{}{"field": "confirm_password"},
		}
	}

	hash, err := crypto.HashWithCost(req.Password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &entities.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()), zap.String("username", username))
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req *entities.LoginRequest) (*entities.AuthResponse, error) {
	user, err := s.store.Users().GetByUsername(ctx, NormalizeUsername(req.Username))
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return nil, domainerrors.InvalidCredentialsError()
		}
		return nil, err
	}
	if !crypto.ValidatePassword(req.Password, user.PasswordHash) {
		s.logger.Warn("Failed login attempt", zap.String("username", user.Username))
		return nil, domainerrors.InvalidCredentialsError()
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *Service) issue(user *entities.User) (*entities.AuthResponse, error) {
	pair, err := auth.GenerateTokenPair(user.ID, user.Username, s.config.Tokens)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}
	return &entities.AuthResponse{
		User:         user.Info(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	pair, err := auth.RefreshAccessToken(refreshToken, s.config.Tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidToken, err)
	}
	return pair, nil
}

// Authenticate validates an access token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ValidateToken(token, s.config.Tokens.Secret)
	if err != nil {
		return nil, domainerrors.ErrInvalidToken
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, token)
		if err != nil {
			s.logger.Warn("Token blacklist lookup failed", zap.Error(err))
		} else if revoked {
			return nil, domainerrors.ErrTokenBlacklisted
		}
	}
	return claims, nil
}

// Logout revokes the access token until it would have expired.
func (s *Service) Logout(ctx context.Context, token string, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.blacklist.Blacklist(ctx, token, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID.String()))
	return nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*entities.UserInfo, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Info(), nil
}

// LinkWallet stores the checksummed form of address as the user's linked wallet.
func (s *Service) LinkWallet(ctx context.Context, userID uuid.UUID, address string) (*entities.UserInfo, error) {
	normalized, err := wallet.ChecksumAddress(strings.TrimSpace(address))
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().UpdateLinkedAddress(ctx, userID, &normalized); err != nil {
		return nil, fmt.Errorf("link wallet: %w", err)
	}
	s.logger.Info("Wallet linked", zap.String("user_id", userID.String()), zap.String("address", normalized))
	return s.Me(ctx, userID)
}

func (s *Service) UnlinkWallet(ctx context.Context, userID uuid.UUID) (*entities.UserInfo, error) {
	if err := s.store.Users().UpdateLinkedAddress(ctx, userID, nil); err != nil {
		return nil, fmt.Errorf("unlink wallet: %w", err)
	}
	s.logger.Info("Wallet unlinked", zap.String("user_id", userID.String()))
	return s.Me(ctx, userID)
}

// Stats summarises the user's ledger records.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (*entities.AccountStats, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Transactions().CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	goals, err := s.store.Goals().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	plans, err := s.store.Plans().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	stats := &entities.AccountStats{
		Balance:          user.Balance,
		TransactionCount: count,
		GoalCount:        len(goals),
		PlanCount:        len(plans),
		TotalSaved:       decimal.Zero,
	}
	for _, g := range goals {
		stats.TotalSaved = stats.TotalSaved.Add(g.CurrentAmount)
	}
	return stats, nil
}

// PublicProfile is the unauthenticated lookup by username. A chain failure
// leaves the profile intact with BalanceError set.
func (s *Service) PublicProfile(ctx context.Context, username string) (*entities.PublicProfile, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, domainerrors.ValidationError("user", "username is required")
	}
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &entities.PublicProfile{
		Username:      user.Username,
		LinkedAddress: user.LinkedAddress,
		MemberSince:   user.CreatedAt,
	}
	if user.LinkedAddress == nil {
		return profile, nil
	}

	profile.QRPayload = qrScheme + *user.LinkedAddress
	if s.balances == nil {
		return profile, nil
	}
	snapshot, err := s.balances.GetWalletBalance(ctx, *user.LinkedAddress)
	if err != nil {
		s.logger.Warn("Public profile balance lookup failed",
			zap.String("username", username),
			zap.Error(err))
		profile.BalanceError = "balance unavailable"
		return profile, nil
	}
	profile.ChainBalance = snapshot
	return profile, nil
}
