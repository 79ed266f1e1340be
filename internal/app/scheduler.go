package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SlotPurger удаляет слоты за прошедшие дни
type SlotPurger interface {
	PurgeBefore(ctx context.Context, day time.Time) (int64, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	purger    SlotPurger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    *zap.Logger
	stopChan  chan struct{}
}

// NewScheduler создаёт планировщик; retentionDays == 0 отключает очистку
func NewScheduler(purger SlotPurger, retentionDays int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  24 * time.Hour,
		now:       time.Now,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	if s.retention <= 0 {
		s.logger.Info("Slot retention disabled")
		return
	}

	s.logger.Info("Starting background scheduler", zap.Duration("retention", s.retention))
	go s.runPurgeTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

func (s *Scheduler) runPurgeTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.purge(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.purge(ctx)
		case <-s.stopChan:
			s.logger.Info("Slot purge task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Slot purge task cancelled")
			return
		}
	}
}

func (s *Scheduler) purge(ctx context.Context) {
	cutoff := s.now().Add(-s.retention)

	count, err := s.purger.PurgeBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to purge old slots", zap.Error(err))
		return
	}

	s.logger.Info("Old slots purged",
		zap.Time("cutoff", cutoff),
		zap.Int64("count", count))
}
