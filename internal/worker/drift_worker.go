package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ayo6706/booking-billing/internal/observability"
	"github.com/ayo6706/booking-billing/internal/service"
	"go.uber.org/zap"
)

// DriftWorker runs periodic billing integrity checks.
type DriftWorker struct {
	svc      *service.DriftService
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewDriftWorker constructs a worker with a default daily interval.
func NewDriftWorker(svc *service.DriftService) *DriftWorker {
	return &DriftWorker{
		svc:      svc,
		interval: 24 * time.Hour,
		stopCh:   make(chan struct{}),
	}
}

// WithInterval updates the run interval.
func (w *DriftWorker) WithInterval(interval time.Duration) *DriftWorker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// Start blocks and runs drift checks at the configured interval.
func (w *DriftWorker) Start(ctx context.Context) {
	zap.L().Info("drift worker starting", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately at startup.
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("drift worker context canceled")
			return
		case <-w.stopCh:
			zap.L().Info("drift worker stop signal received")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// Stop stops the running worker loop.
func (w *DriftWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the worker in a goroutine and returns a stop function.
func (w *DriftWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *DriftWorker) runOnce(ctx context.Context) {
	if err := w.svc.Run(ctx); err != nil {
		observability.IncrementWorkerRun("drift", "failed")
		zap.L().Error("drift run failed", zap.Error(err))
		return
	}
	observability.IncrementWorkerRun("drift", "success")
}
