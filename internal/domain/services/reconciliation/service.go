package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/pkg/logger"
	"github.com/usdt-vault/vault_service/pkg/metrics"
)

// UserSource lists the users whose ledger can be compared with the chain.
type UserSource interface {
	ListWithLinkedAddress(ctx context.Context) ([]*entities.User, error)
}

// BalanceSource reads the on-chain balance of an address.
type BalanceSource interface {
	GetWalletBalance(ctx context.Context, address string) (*entities.BalanceSnapshot, error)
}

// Config holds reconciliation service configuration
type Config struct {
	// Tolerance is the absolute drift below which a user counts as reconciled.
	Tolerance decimal.Decimal
}

// Service compares tracked ledger balances with the USDT held at each user's
// linked address. It only reads: drift is reported, never corrected.
type Service struct {
	users    UserSource
	balances BalanceSource
	logger   *logger.Logger
	config   Config
}

// NewService creates a new reconciliation service
func NewService(users UserSource, balances BalanceSource, logger *logger.Logger, config Config) *Service {
	return &Service{
		users:    users,
		balances: balances,
		logger:   logger,
		config:   config,
	}
}

// RunReconciliation builds a drift report across all users with a linked address.
func (s *Service) RunReconciliation(ctx context.Context, runType string) (*entities.DriftReport, error) {
	ctx, span := otel.Tracer("reconciliation.service").Start(ctx, "RunReconciliation")
	defer span.End()
	span.SetAttributes(attribute.String("run_type", runType))

	report := &entities.DriftReport{
		ID:         uuid.New(),
		RunType:    runType,
		StartedAt:  time.Now().UTC(),
		Entries:    []entities.DriftEntry{},
		TotalDrift: decimal.Zero,
	}

	absoluteDrift := decimal.Zero
	users, err := s.users.ListWithLinkedAddress(ctx)
	if err != nil {
		metrics.ReconciliationRunsTotal.WithLabelValues("failed").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("list users: %w", err)
	}

	for _, user := range users {
		if ctx.Err() != nil {
			metrics.ReconciliationRunsTotal.WithLabelValues("cancelled").Inc()
			return nil, ctx.Err()
		}

		entry, ok := s.checkUser(ctx, user)
		if !ok {
			report.Skipped++
			continue
		}
		report.Checked++

		if entry.Drift.Abs().GreaterThan(s.config.Tolerance) {
			report.Drifted++
			report.TotalDrift = report.TotalDrift.Add(entry.Drift)
			absoluteDrift = absoluteDrift.Add(entry.Drift.Abs())
			report.Entries = append(report.Entries, entry)
			s.logger.Warn("Ledger drift detected",
				"user_id", user.ID,
				"address", entry.Address,
				"ledger_balance", entry.LedgerBalance.String(),
				"chain_balance", entry.ChainBalance.String(),
				"drift", entry.Drift.String(),
			)
		}
	}

	report.FinishedAt = time.Now().UTC()
	span.SetAttributes(
		attribute.Int("checked", report.Checked),
		attribute.Int("drifted", report.Drifted),
		attribute.Int("skipped", report.Skipped),
	)
	metrics.ReconciliationRunsTotal.WithLabelValues("completed").Inc()
	metrics.RecordDrift(absoluteDrift.InexactFloat64(), report.Drifted)

	s.logger.Info("Reconciliation run completed",
		"report_id", report.ID,
		"run_type", runType,
		"checked", report.Checked,
		"drifted", report.Drifted,
		"skipped", report.Skipped,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

// checkUser compares one user. Users whose token leg cannot be read are skipped
// so an unreachable node never reads as drift.
func (s *Service) checkUser(ctx context.Context, user *entities.User) (entities.DriftEntry, bool) {
	if user.LinkedAddress == nil {
		return entities.DriftEntry{}, false
	}
	snapshot, err := s.balances.GetWalletBalance(ctx, *user.LinkedAddress)
	if err != nil {
		s.logger.Warn("Skipping user in reconciliation", "user_id", user.ID, "error", err)
		return entities.DriftEntry{}, false
	}
	if !snapshot.Token.Known {
		s.logger.Warn("Skipping user in reconciliation: token balance unknown", "user_id", user.ID)
		return entities.DriftEntry{}, false
	}

	return entities.DriftEntry{
		UserID:        user.ID,
		Username:      user.Username,
		Address:       *user.LinkedAddress,
		LedgerBalance: user.Balance,
		ChainBalance:  snapshot.Token.Amount,
		Drift:         user.Balance.Sub(snapshot.Token.Amount),
	}, true
}
