package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	apperrors "github.com/usdt-vault/vault_service/internal/domain/errors"
)

type userRepo struct{ db access }

func (r *userRepo) Create(_ context.Context, user *entities.User) error {
	return r.db.write(func(st *state) error {
		if _, exists := st.usernames[user.Username]; exists {
			return apperrors.UserAlreadyExistsError(user.Username)
		}
		st.users[user.ID] = *user
		st.usernames[user.Username] = user.ID
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	var (
		user entities.User
		ok   bool
	)
	r.db.read(func(st *state) { user, ok = st.users[id] })
	if !ok {
		return nil, apperrors.UserNotFoundError(id.String())
	}
	return &user, nil
}

func (r *userRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	var (
		id uuid.UUID
		ok bool
	)
	r.db.read(func(st *state) { id, ok = st.usernames[username] })
	if !ok {
		return nil, apperrors.UserNotFoundError(username)
	}
	return r.GetByID(ctx, id)
}

func (r *userRepo) ListWithLinkedAddress(_ context.Context) ([]*entities.User, error) {
	var users []*entities.User
	r.db.read(func(st *state) {
		for _, u := range st.users {
			if u.LinkedAddress != nil {
				u := u
				users = append(users, &u)
			}
		}
	})
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *userRepo) update(id uuid.UUID, fn func(u *entities.User)) error {
	return r.db.write(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperrors.UserNotFoundError(id.String())
		}
		fn(&u)
		st.users[id] = u
		return nil
	})
}

func (r *userRepo) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return r.update(id, func(u *entities.User) { u.Balance = balance })
}

func (r *userRepo) UpdatePINHash(_ context.Context, id uuid.UUID, pinHash string) error {
	return r.update(id, func(u *entities.User) {
		u.PINHash = &pinHash
		u.PINFailures = 0
	})
}

func (r *userRepo) IncrementPINFailures(_ context.Context, id uuid.UUID) (int, error) {
	var failures int
	err := r.update(id, func(u *entities.User) {
		u.PINFailures++
		failures = u.PINFailures
	})
	return failures, err
}

func (r *userRepo) ResetPINFailures(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(u *entities.User) { u.PINFailures = 0 })
}

func (r *userRepo) UpdateLinkedAddress(_ context.Context, id uuid.UUID, address *string) error {
	return r.update(id, func(u *entities.User) { u.LinkedAddress = address })
}

type transactionRepo struct{ db access }

func (r *transactionRepo) Create(_ context.Context, tx *entities.Transaction) error {
	return r.db.write(func(st *state) error {
		st.transactions = append(st.transactions, *tx)
		return nil
	})
}

// ListByUser returns entries newest first; entries with equal timestamps keep
// reverse insertion order.
func (r *transactionRepo) ListByUser(_ context.Context, userID uuid.UUID, filter entities.TransactionFilter) ([]*entities.Transaction, error) {
	var out []*entities.Transaction
	r.db.read(func(st *state) {
		for i := len(st.transactions) - 1; i >= 0; i-- {
			t := st.transactions[i]
			if t.UserID != userID {
				continue
			}
			if filter.Type != nil && t.Type != *filter.Type {
				continue
			}
			out = append(out, &t)
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *transactionRepo) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	r.db.read(func(st *state) {
		for _, t := range st.transactions {
			if t.UserID == userID {
				count++
			}
		}
	})
	return count, nil
}

type goalRepo struct{ db access }

func (r *goalRepo) Create(_ context.Context, goal *entities.SavingsGoal) error {
	return r.db.write(func(st *state) error {
		st.goals[goal.ID] = *goal
		return nil
	})
}

func (r *goalRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.SavingsGoal, error) {
	var (
		goal entities.SavingsGoal
		ok   bool
	)
	r.db.read(func(st *state) { goal, ok = st.goals[id] })
	if !ok {
		return nil, apperrors.NotFoundError("GOAL")
	}
	return &goal, nil
}

func (r *goalRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.SavingsGoal, error) {
	return r.GetByID(ctx, id)
}

func (r *goalRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*entities.SavingsGoal, error) {
	var out []*entities.SavingsGoal
	r.db.read(func(st *state) {
		for _, g := range st.goals {
			if g.UserID == userID {
				g := g
				out = append(out, &g)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *goalRepo) update(id uuid.UUID, fn func(g *entities.SavingsGoal)) error {
	return r.db.write(func(st *state) error {
		g, ok := st.goals[id]
		if !ok {
			return apperrors.NotFoundError("GOAL")
		}
		fn(&g)
		st.goals[id] = g
		return nil
	})
}

func (r *goalRepo) UpdateCurrentAmount(_ context.Context, id uuid.UUID, current decimal.Decimal) error {
	return r.update(id, func(g *entities.SavingsGoal) { g.CurrentAmount = current })
}

func (r *goalRepo) UpdateAutoSave(_ context.Context, id uuid.UUID, settings entities.AutoSaveSettings) error {
	return r.update(id, func(g *entities.SavingsGoal) {
		g.AutoSaveEnabled = settings.Enabled
		g.AutoSaveAmount = settings.Amount
		g.AutoSaveFrequency = settings.Frequency
	})
}

func (r *goalRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.goals[id]; !ok {
			return apperrors.NotFoundError("GOAL")
		}
		delete(st.goals, id)
		return nil
	})
}

type planRepo struct{ db access }

func (r *planRepo) Create(_ context.Context, plan *entities.InvestmentPlan) error {
	return r.db.write(func(st *state) error {
		st.plans[plan.ID] = *plan
		return nil
	})
}

func (r *planRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.InvestmentPlan, error) {
	var (
		plan entities.InvestmentPlan
		ok   bool
	)
	r.db.read(func(st *state) { plan, ok = st.plans[id] })
	if !ok {
		return nil, apperrors.NotFoundError("PLAN")
	}
	return &plan, nil
}

func (r *planRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*entities.InvestmentPlan, error) {
	var out []*entities.InvestmentPlan
	r.db.read(func(st *state) {
		for _, p := range st.plans {
			if p.UserID == userID {
				p := p
				out = append(out, &p)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *planRepo) update(id uuid.UUID, fn func(p *entities.InvestmentPlan)) error {
	return r.db.write(func(st *state) error {
		p, ok := st.plans[id]
		if !ok {
			return apperrors.NotFoundError("PLAN")
		}
		fn(&p)
		st.plans[id] = p
		return nil
	})
}

func (r *planRepo) UpdateAmount(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.update(id, func(p *entities.InvestmentPlan) { p.Amount = amount })
}

func (r *planRepo) UpdateAutoInvest(_ context.Context, id uuid.UUID, autoInvest bool) error {
	return r.update(id, func(p *entities.InvestmentPlan) { p.AutoInvest = autoInvest })
}

func (r *planRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.plans[id]; !ok {
			return apperrors.NotFoundError("PLAN")
		}
		delete(st.plans, id)
		return nil
	})
}
