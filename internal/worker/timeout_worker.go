package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/service"
)

// TimeoutChecker is the part of the quiz service the worker drives.
type TimeoutChecker interface {
	CheckTimeout(ctx context.Context) (bool, error)
}

// TimeoutWorker auto-submits the active quiz when its deadline passes,
// even when no client is polling.
type TimeoutWorker struct {
	checker  TimeoutChecker
	interval time.Duration
	log      zerolog.Logger
}

func NewTimeoutWorker(checker TimeoutChecker, interval time.Duration, log zerolog.Logger) *TimeoutWorker {
	return &TimeoutWorker{
		checker:  checker,
		interval: interval,
		log:      log.With().Str("component", "timeout_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

func (w *TimeoutWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("TimeoutWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("TimeoutWorker stopped")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *TimeoutWorker) check(ctx context.Context) {
	expired, err := w.checker.CheckTimeout(ctx)
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		return
	case err != nil:
		w.log.Error().Err(err).Msg("Timeout check failed")
	case expired:
		w.log.Info().Msg("Deadline reached, quiz auto-submitted")
	}
}
