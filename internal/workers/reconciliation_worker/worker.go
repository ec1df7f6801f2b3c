package reconciliation_worker

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

const defaultSchedule = "*/15 * * * *"

// Reconciler produces a drift report.
type Reconciler interface {
	RunReconciliation(ctx context.Context, runType string) (*entities.DriftReport, error)
}

type Config struct {
	Schedule string
	Timeout  time.Duration
}

// Worker runs the drift report on a cron schedule. Overlapping runs are skipped.
type Worker struct {
	reconciler Reconciler
	cron       *cron.Cron
	config     Config
	logger     *zap.Logger

	mu      sync.Mutex
	running bool
	last    *entities.DriftReport
}

func NewWorker(reconciler Reconciler, config Config, logger *zap.Logger) *Worker {
	if config.Schedule == "" {
		config.Schedule = defaultSchedule
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}
	return &Worker{
		reconciler: reconciler,
		cron:       cron.New(),
		config:     config,
		logger:     logger,
	}
}

func (w *Worker) Start() error {
	if _, err := w.cron.AddFunc(w.config.Schedule, w.tick); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("Reconciliation worker started", zap.String("schedule", w.config.Schedule))
	return nil
}

// Stop waits for an in-flight run to finish.
func (w *Worker) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info("Reconciliation worker stopped")
}

// Shutdown adapts Stop to the graceful shutdown manager.
func (w *Worker) Shutdown(ctx context.Context) error {
	stopped := w.cron.Stop()
	select {
	case <-stopped.Done():
		w.logger.Info("Reconciliation worker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), w.config.Timeout)
	defer cancel()
	_, _ = w.RunOnce(ctx, "scheduled")
}

// RunOnce executes a single report unless one is already running.
func (w *Worker) RunOnce(ctx context.Context, runType string) (*entities.DriftReport, bool) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Warn("Reconciliation already running, skipping", zap.String("run_type", runType))
		return nil, false
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	report, err := w.reconciler.RunReconciliation(ctx, runType)
	if err != nil {
		w.logger.Error("Reconciliation run failed", zap.String("run_type", runType), zap.Error(err))
		return nil, true
	}

	w.mu.Lock()
	w.last = report
	w.mu.Unlock()
	return report, true
}

// LastReport returns the most recent successful report, if any.
func (w *Worker) LastReport() *entities.DriftReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}
