package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// BacklogSource reports open work per ticket status.
type BacklogSource interface {
	TicketBacklog(ctx context.Context) (map[string]int64, error)
}

// BacklogGauge receives the latest backlog snapshot.
type BacklogGauge interface {
	SetTicketBacklog(counts map[string]int64)
}

// BacklogWorker refreshes the ticket backlog gauge on a cron schedule.
type BacklogWorker struct {
	source  BacklogSource
	gauge   BacklogGauge
	logger  *zap.Logger
	cron    *cron.Cron
	timeout time.Duration
}

// NewBacklogWorker builds the worker. It does nothing until Start is called.
func NewBacklogWorker(source BacklogSource, gauge BacklogGauge, logger *zap.Logger) *BacklogWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BacklogWorker{
		source:  source,
		gauge:   gauge,
		logger:  logger,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		timeout: 10 * time.Second,
	}
}

// Start validates the schedule, runs one refresh immediately and then keeps
// refreshing on schedule. An empty schedule disables the worker.
func (w *BacklogWorker) Start(schedule string) error {
	if schedule == "" {
		w.logger.Info("backlog worker disabled")
		return nil
	}
	if _, err := w.cron.AddFunc(schedule, func() {
		w.RunOnce(context.Background())
	}); err != nil {
		return err
	}
	w.RunOnce(context.Background())
	w.cron.Start()
	w.logger.Info("backlog worker started", zap.String("schedule", schedule))
	return nil
}

// RunOnce refreshes the gauge. Failures are logged and the previous values kept.
func (w *BacklogWorker) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	counts, err := w.source.TicketBacklog(ctx)
	if err != nil {
		w.logger.Warn("ticket backlog refresh failed", zap.Error(err))
		return
	}
	w.gauge.SetTicketBacklog(counts)
}

// Stop halts the schedule and waits for a running refresh, bounded by ctx.
func (w *BacklogWorker) Stop(ctx context.Context) {
	done := w.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
