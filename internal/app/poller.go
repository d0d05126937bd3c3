package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/prms/console/internal/state"
)

const (
	defaultPollInterval = 15 * time.Second
	maxBackoff          = 2 * time.Minute
)

// StartPoller launches a background goroutine that refreshes the collections
// returned by kinds. Consecutive transport failures stretch the delay. It
// returns immediately.
func StartPoller(ctx context.Context, store *state.Store, kinds func() []state.Kind, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			refresh(ctx, store, kinds(), log)
			delay := calculateBackoff(store.Health().ConsecutiveFailures, interval)
			if delay != interval {
				log.Debug().Dur("delay", delay).Msg("poll backing off")
			}
			timer.Reset(delay)
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, kinds []state.Kind, log zerolog.Logger) error {
	if len(kinds) == 0 {
		return nil
	}
	if err := store.Refresh(ctx, kinds...); err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("poll failed")
		}
		return err
	}
	return nil
}

// calculateBackoff doubles base per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for range failures {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
