package worker

import (
	"context"
	"log/slog"
	"time"

	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/pkg/clock"
	"upi-checkout/internal/pkg/config"
	"upi-checkout/internal/usecase/shared"
)

// Sweeper periodically lapses overdue active locks. Read paths also sweep
// opportunistically, so the service stays correct when the deployment
// environment cannot guarantee this loop is running.
type Sweeper struct {
	uow      shared.UnitOfWork
	locks    shared.LockRepository
	clock    clock.Clock
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(uow shared.UnitOfWork, locks shared.LockRepository, clk clock.Clock, cfg config.Config) *Sweeper {
	return &Sweeper{
		uow:      uow,
		locks:    locks,
		clock:    clk,
		interval: cfg.Payment.SweepInterval,
	}
}

func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
}

func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("lock sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("lock sweeper stopped")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	var swept int64
	err := s.uow.WithDB(ctx, func(ctx context.Context, d db.DBTX) error {
		var sweepErr error
		swept, sweepErr = s.locks.SweepExpired(ctx, d, s.clock.Now())
		return sweepErr
	})
	if err != nil {
		slog.Warn("scheduled lock sweep failed", "error", err)
		return
	}
	if swept > 0 {
		slog.Info("swept expired locks", "count", swept)
	}
}
