package pin

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/internal/domain/repositories"
	"github.com/usdt-vault/vault_service/pkg/crypto"
	"github.com/usdt-vault/vault_service/pkg/metrics"
)

const (
	pinLength          = 6
	defaultMaxAttempts = 5
)

var (
	// ErrPINAlreadySet is returned when attempting to create a PIN that already exists
	ErrPINAlreadySet = errors.New("PIN already set")
	// ErrPINNotSet is returned when operations require a PIN but none exists
	ErrPINNotSet = errors.New("PIN not configured")
	// ErrPINMismatch is returned when the supplied PIN is incorrect
	ErrPINMismatch = errors.New("PIN is incorrect")
	// ErrPINLocked is returned once the failure counter reaches the limit
	ErrPINLocked = errors.New("PIN locked due to too many failed attempts")
	// ErrPINInvalidFormat is returned when the PIN is not six digits
	ErrPINInvalidFormat = errors.New("PIN must be 6 digits")
	// ErrPINConfirmMismatch is returned when the confirmation differs from the PIN
	ErrPINConfirmMismatch = errors.New("PINs do not match")
	// ErrPINSameAsCurrent is returned when the new PIN matches the existing one
	ErrPINSameAsCurrent = errors.New("new PIN must be different from the current PIN")
)

// Config tunes hashing cost and the lockout threshold.
type Config struct {
	MaxAttempts int
	BcryptCost  int
}

// Service manages withdrawal PINs. Failures accumulate until an explicit
// reset; there is no time-based unlock.
type Service struct {
	users       repositories.UserRepository
	logger      *zap.Logger
	maxAttempts int
	cost        int
}

func NewService(users repositories.UserRepository, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	return &Service{
		users:       users,
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		cost:        cfg.BcryptCost,
	}
}

// ValidateFormat checks that pin is exactly six ASCII digits.
func ValidateFormat(pin string) error {
	if len(pin) != pinLength {
		return ErrPINInvalidFormat
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrPINInvalidFormat
		}
	}
	return nil
}

// GetStatus returns the current PIN configuration for a user
func (s *Service) GetStatus(ctx context.Context, userID uuid.UUID) (*entities.PINStatus, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.status(user), nil
}

func (s *Service) status(user *entities.User) *entities.PINStatus {
	remaining := s.maxAttempts - user.PINFailures
	if remaining < 0 {
		remaining = 0
	}
	return &entities.PINStatus{
		Enabled:           user.HasPIN(),
		Locked:            s.locked(user),
		FailedAttempts:    user.PINFailures,
		RemainingAttempts: remaining,
	}
}

func (s *Service) locked(user *entities.User) bool {
	return user.PINFailures >= s.maxAttempts
}

// SetPIN configures a PIN for the user when one does not exist
func (s *Service) SetPIN(ctx context.Context, userID uuid.UUID, pin, confirm string) (*entities.PINStatus, error) {
	if err := ValidateFormat(pin); err != nil {
		return nil, err
	}
	if pin != confirm {
		return nil, ErrPINConfirmMismatch
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.HasPIN() {
		return nil, ErrPINAlreadySet
	}

	if err := s.store(ctx, userID, pin); err != nil {
		return nil, err
	}

	s.logger.Info("PIN configured", zap.String("user_id", userID.String()))
	return s.GetStatus(ctx, userID)
}

// ChangePIN rotates an existing PIN after verifying the current one. A wrong
// current PIN counts as a failed attempt.
func (s *Service) ChangePIN(ctx context.Context, userID uuid.UUID, current, newPIN, confirm string) (*entities.PINStatus, error) {
	if err := ValidateFormat(newPIN); err != nil {
		return nil, err
	}
	if newPIN != confirm {
		return nil, ErrPINConfirmMismatch
	}
	if err := s.Verify(ctx, userID, current); err != nil {
		return nil, err
	}
	if current == newPIN {
		return nil, ErrPINSameAsCurrent
	}

	if err := s.store(ctx, userID, newPIN); err != nil {
		return nil, err
	}

	s.logger.Info("PIN updated", zap.String("user_id", userID.String()))
	return s.GetStatus(ctx, userID)
}

func (s *Service) store(ctx context.Context, userID uuid.UUID, pin string) error {
	hash, err := crypto.HashWithCost(pin, s.cost)
	if err != nil {
		return fmt.Errorf("hash PIN: %w", err)
	}
	if err := s.users.UpdatePINHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("persist PIN: %w", err)
	}
	return nil
}

// Verify checks pin against the stored hash. A locked PIN is rejected even
// when correct. A mismatch increments the failure counter and a match resets it.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, pin string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	return s.VerifyUser(ctx, user, pin)
}

// VerifyUser is Verify for an already loaded user.
func (s *Service) VerifyUser(ctx context.Context, user *entities.User, pin string) error {
	if !user.HasPIN() {
		return ErrPINNotSet
	}
	if s.locked(user) {
		metrics.PINVerificationsTotal.WithLabelValues("locked").Inc()
		return ErrPINLocked
	}

	if !crypto.ValidatePassword(pin, *user.PINHash) {
		// An unrecorded failure must not read as an ordinary mismatch, or the
		// lockout stops counting while the store is faulty.
		failures, err := s.users.IncrementPINFailures(ctx, user.ID)
		if err != nil {
			s.logger.Error("Failed to record PIN failure", zap.String("user_id", user.ID.String()), zap.Error(err))
			metrics.PINVerificationsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("record PIN failure: %w", err)
		}
		if failures >= s.maxAttempts {
			s.logger.Warn("PIN locked", zap.String("user_id", user.ID.String()), zap.Int("failures", failures))
		}
		metrics.PINVerificationsTotal.WithLabelValues("mismatch").Inc()
		return ErrPINMismatch
	}

	if user.PINFailures > 0 {
		if err := s.users.ResetPINFailures(ctx, user.ID); err != nil {
			s.logger.Warn("Failed to reset PIN failures", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	metrics.PINVerificationsTotal.WithLabelValues("success").Inc()
	return nil
}

// ResetFailures clears the failure counter, unlocking the PIN.
func (s *Service) ResetFailures(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.ResetPINFailures(ctx, userID); err != nil {
		return fmt.Errorf("reset PIN failures: %w", err)
	}
	s.logger.Info("PIN failures reset", zap.String("user_id", userID.String()))
	return nil
}

// ResetFailuresByUsername is ResetFailures keyed by username.
func (s *Service) ResetFailuresByUsername(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	return s.ResetFailures(ctx, user.ID)
}
