package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	apperrors "github.com/usdt-vault/vault_service/internal/domain/errors"
)

const userColumns = `id, username, password_hash, pin_hash, pin_failures, balance, linked_address, created_at, updated_at`

// UserRepository handles user persistence
type UserRepository struct {
	db executor
}

func NewUserRepository(db executor) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.PINHash, user.PINFailures,
		user.Balance, user.LinkedAddress, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.UserAlreadyExistsError(user.Username)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String(), id)
}

func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id.String(), id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username, username)
}

func (r *UserRepository) get(ctx context.Context, query, identifier string, arg interface{}) (*entities.User, error) {
	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if isNoRows(err) {
			return nil, apperrors.UserNotFoundError(identifier)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) ListWithLinkedAddress(ctx context.Context) ([]*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE linked_address IS NOT NULL ORDER BY created_at`

	var users []*entities.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users with linked address: %w", err)
	}
	return users, nil
}

func (r *UserRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET balance = $2, updated_at = NOW() WHERE id = $1`, id, balance)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return checkAffected(res, apperrors.UserNotFoundError(id.String()))
}

func (r *UserRepository) UpdatePINHash(ctx context.Context, id uuid.UUID, pinHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET pin_hash = $2, pin_failures = 0, updated_at = NOW() WHERE id = $1`, id, pinHash)
	if err != nil {
		return fmt.Errorf("update pin hash: %w", err)
	}
	return checkAffected(res, apperrors.UserNotFoundError(id.String()))
}

func (r *UserRepository) IncrementPINFailures(ctx context.Context, id uuid.UUID) (int, error) {
	var failures int
	err := r.db.QueryRowxContext(ctx,
		`UPDATE users SET pin_failures = pin_failures + 1, updated_at = NOW() WHERE id = $1 RETURNING pin_failures`,
		id,
	).Scan(&failures)
	if err != nil {
		if isNoRows(err) {
			return 0, apperrors.UserNotFoundError(id.String())
		}
		return 0, fmt.Errorf("increment pin failures: %w", err)
	}
	return failures, nil
}

func (r *UserRepository) ResetPINFailures(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET pin_failures = 0, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("reset pin failures: %w", err)
	}
	return checkAffected(res, apperrors.UserNotFoundError(id.String()))
}

func (r *UserRepository) UpdateLinkedAddress(ctx context.Context, id uuid.UUID, address *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET linked_address = $2, updated_at = NOW() WHERE id = $1`, id, address)
	if err != nil {
		return fmt.Errorf("update linked address: %w", err)
	}
	return checkAffected(res, apperrors.UserNotFoundError(id.String()))
}
