package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/azis003/tick-track/internal/observability"
	"github.com/azis003/tick-track/internal/workflow"
)

// AutoCloseWorker periodically closes resolved tickets whose confirmation
// window has lapsed.
type AutoCloseWorker struct {
	engine   *workflow.Engine
	interval time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewAutoCloseWorker constructs the worker.
func NewAutoCloseWorker(engine *workflow.Engine, interval time.Duration, logger *zap.Logger, metrics *observability.Metrics) *AutoCloseWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &AutoCloseWorker{engine: engine, interval: interval, logger: logger, metrics: metrics}
}

// Run sweeps on a ticker until the context is cancelled. One sweep runs
// immediately at startup so a restart does not delay overdue closures.
func (w *AutoCloseWorker) Run(ctx context.Context) {
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("auto-close worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *AutoCloseWorker) sweep(ctx context.Context) {
	closed, err := w.engine.SweepAutoClose(ctx)
	if err != nil {
		w.logger.Error("auto-close sweep failed", zap.Error(err))
		return
	}
	if closed > 0 {
		w.metrics.RecordAutoClosed(closed)
		w.logger.Info("auto-close sweep completed", zap.Int("closed", closed))
	}
}
