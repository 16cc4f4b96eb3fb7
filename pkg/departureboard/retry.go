package departureboard

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const (
	RetryStep       = 5 * time.Second
	RetryMaxDelay   = 15 * time.Second
	RetryMaxRetries = 3
)

// Timer is a scheduled task that can be cancelled before it fires
type Timer interface {
	Stop() bool
}

type AfterFunc func(time.Duration, func()) Timer

func timeAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// linearBackOff waits attempt x Step, never more than Max
type linearBackOff struct {
	Step time.Duration
	Max  time.Duration

	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++

	delay := time.Duration(b.attempt) * b.Step
	if delay > b.Max {
		delay = b.Max
	}

	return delay
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

func newRetryBackOff() backoff.BackOff {
	return backoff.WithMaxRetries(&linearBackOff{Step: RetryStep, Max: RetryMaxDelay}, RetryMaxRetries)
}

// scheduleRetry must be called with the state mutex held
func (b *Board) scheduleRetry(ctx context.Context, tier Tier) {
	b.cancelRetry()

	delay := b.retryBackOff.NextBackOff()
	if delay == backoff.Stop {
		log.Warn().Str("direction", string(b.direction)).Msg("Max retries reached, stopping automatic retry")
		return
	}

	b.retryAttempts++
	generation := b.generation

	log.Info().
		Str("direction", string(b.direction)).
		Int("attempt", b.retryAttempts).
		Dur("delay", delay).
		Msg("Scheduling refresh retry")

	b.retryTimer = b.afterFunc(delay, func() {
		b.mutex.RLock()
		current := b.generation == generation
		b.mutex.RUnlock()

		if !current || ctx.Err() != nil {
			return
		}

		if err := b.Refresh(ctx, tier); err != nil {
			log.Debug().Err(err).Msg("Retry refresh failed")
		}
	})
}

// cancelRetry must be called with the state mutex held
func (b *Board) cancelRetry() {
	if b.retryTimer != nil {
		b.retryTimer.Stop()
		b.retryTimer = nil
	}
}

func (b *Board) resetRetries() {
	b.cancelRetry()
	b.retryAttempts = 0
	b.retryBackOff.Reset()
}
