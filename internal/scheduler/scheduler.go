package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper advances bookings whose sessions have finished. Implemented by the
// booking service.
type Sweeper interface {
	CompleteElapsed(ctx context.Context) (int64, error)
}

// Scheduler runs the completion sweep on a fixed interval until its context
// is cancelled.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
}

func New(sweeper Sweeper, interval time.Duration) *Scheduler {
	return &Scheduler{sweeper: sweeper, interval: interval}
}

// Run blocks until ctx is cancelled. An immediate sweep happens on startup
// so a restart does not wait a full interval to catch up.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("booking completion sweeper started")

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("booking completion sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	n, err := s.sweeper.CompleteElapsed(ctx)
	if err != nil {
		log.Error().Err(err).Msg("completion sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int64("completed", n).Msg("bookings marked completed")
	}
}
