// Package memory is an in-process ledger store. Transactions operate on a
// private copy of the data that replaces the shared copy on commit.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/internal/domain/repositories"
)

type state struct {
	users        map[uuid.UUID]entities.User
	usernames    map[string]uuid.UUID
	transactions []entities.Transaction
	goals        map[uuid.UUID]entities.SavingsGoal
	plans        map[uuid.UUID]entities.InvestmentPlan
}

func newState() *state {
	return &state{
		users:     make(map[uuid.UUID]entities.User),
		usernames: make(map[string]uuid.UUID),
		goals:     make(map[uuid.UUID]entities.SavingsGoal),
		plans:     make(map[uuid.UUID]entities.InvestmentPlan),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:        make(map[uuid.UUID]entities.User, len(s.users)),
		usernames:    make(map[string]uuid.UUID, len(s.usernames)),
		transactions: append([]entities.Transaction(nil), s.transactions...),
		goals:        make(map[uuid.UUID]entities.SavingsGoal, len(s.goals)),
		plans:        make(map[uuid.UUID]entities.InvestmentPlan, len(s.plans)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.usernames {
		c.usernames[k] = v
	}
	for k, v := range s.goals {
		c.goals[k] = v
	}
	for k, v := range s.plans {
		c.plans[k] = v
	}
	return c
}

// access abstracts how repositories reach the data: directly under the store
// locks, or through a transaction's private copy.
type access interface {
	read(fn func(*state))
	write(fn func(*state) error) error
}

// Store implements repositories.Store in memory.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	st      *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) read(fn func(*state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

func (s *Store) write(fn func(*state) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) Users() repositories.UserRepository               { return &userRepo{db: s} }
func (s *Store) Transactions() repositories.TransactionRepository { return &transactionRepo{db: s} }
func (s *Store) Goals() repositories.SavingsGoalRepository        { return &goalRepo{db: s} }
func (s *Store) Plans() repositories.InvestmentPlanRepository     { return &planRepo{db: s} }

// WithinTransaction serialises writers, runs fn on a copy and publishes the copy
// only when fn succeeds.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Repositories) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	working := s.st.clone()
	s.mu.RUnlock()

	tx := &txAccess{st: working}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = working
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }
func (s *Store) Name() string               { return "memory" }

type txAccess struct {
	st *state
}

func (t *txAccess) read(fn func(*state))              { fn(t.st) }
func (t *txAccess) write(fn func(*state) error) error { return fn(t.st) }

func (t *txAccess) Users() repositories.UserRepository               { return &userRepo{db: t} }
func (t *txAccess) Transactions() repositories.TransactionRepository { return &transactionRepo{db: t} }
func (t *txAccess) Goals() repositories.SavingsGoalRepository        { return &goalRepo{db: t} }
func (t *txAccess) Plans() repositories.InvestmentPlanRepository     { return &planRepo{db: t} }
