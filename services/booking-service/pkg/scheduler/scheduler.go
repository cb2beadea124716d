package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/slotwise/booking-service/internal/service"
	"github.com/slotwise/booking-service/pkg/logger"
)

// Scheduler runs booking-service's background maintenance tasks.
type Scheduler struct {
	cron    *cron.Cron
	booking *service.BookingService
	logger  logger.Logger
}

// New creates a new scheduler.
func New(booking *service.BookingService, logger logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		booking: booking,
		logger:  logger,
	}
}

// Start schedules the stale-pending-booking sweep and starts the cron
// runner. A pendente booking whose start_time has passed without ever
// being confirmed is auto-cancelled, so it stops counting against the
// resource's availability and stops showing up as actionable to its owner.
func (s *Scheduler) Start() {
	s.logger.Info("starting background scheduler")

	if _, err := s.cron.AddFunc("@every 5m", func() {
		cancelled, err := s.booking.SweepStalePending(context.Background())
		if err != nil {
			s.logger.Error("stale pending booking sweep failed", "error", err)
			return
		}
		if cancelled > 0 {
			s.logger.Info("swept stale pending bookings", "cancelled", cancelled)
		}
	}); err != nil {
		s.logger.Error("failed to schedule stale pending booking sweep", "error", err)
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping background scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
}
