package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/departureboard"
	"golang.org/x/exp/slices"
)

const (
	DefaultQuickInterval = 30 * time.Second
	DefaultFullInterval  = 3 * time.Minute
)

type Refresher interface {
	Refresh(ctx context.Context, tier departureboard.Tier) error
	ToggleDirection(ctx context.Context) ctdf.Direction
}

// Poller drives the board refresh tiers while the board is being looked at
type Poller struct {
	board         Refresher
	quickInterval time.Duration
	fullInterval  time.Duration

	mutex  sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	cron   *cron.Cron
	active bool

	// Stop contexts of schedulers whose jobs may still be running
	draining []context.Context

	running sync.WaitGroup
}

func New(board Refresher, quickInterval time.Duration, fullInterval time.Duration) *Poller {
	if quickInterval <= 0 {
		quickInterval = DefaultQuickInterval
	}
	if fullInterval <= 0 {
		fullInterval = DefaultFullInterval
	}

	return &Poller{
		board:         board,
		quickInterval: quickInterval,
		fullInterval:  fullInterval,
	}
}

// Start runs a full refresh straight away and then polls on both tiers until Stop
func (p *Poller) Start(ctx context.Context) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctx != nil {
		return errors.New("poller already started")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.active = true

	p.refreshNow(departureboard.TierFull)

	return p.startCron()
}

// SetActive suspends polling while the board is hidden. Becoming active again
// refreshes immediately and restarts both intervals.
func (p *Poller) SetActive(active bool) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctx == nil || p.active == active {
		return nil
	}

	p.active = active

	if !active {
		log.Info().Msg("Board inactive, suspending polling")
		p.stopCron()
		return nil
	}

	log.Info().Msg("Board active, resuming polling")
	p.refreshNow(departureboard.TierFull)

	return p.startCron()
}

func (p *Poller) Active() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.active
}

// ToggleDirection flips the board and refreshes the new direction at once
func (p *Poller) ToggleDirection() ctdf.Direction {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	ctx := p.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	direction := p.board.ToggleDirection(ctx)

	if p.ctx != nil {
		p.refreshNow(departureboard.TierFull)
	}

	return direction
}

// Stop halts polling, cancels pending work and waits for running refreshes,
// including those fired by a scheduler that was suspended earlier
func (p *Poller) Stop() {
	p.mutex.Lock()
	p.stopCron()
	if p.cancel != nil {
		p.cancel()
	}
	p.active = false
	draining := p.draining
	p.draining = nil
	p.mutex.Unlock()

	for _, done := range draining {
		<-done.Done()
	}

	p.running.Wait()
}

// Must be called with the mutex held
func (p *Poller) startCron() error {
	p.cron = cron.New(
		cron.WithLogger(cronLogger{logger: log.Logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: log.Logger})),
	)

	if _, err := p.cron.AddFunc(everySpec(p.quickInterval), p.tierJob(departureboard.TierQuick)); err != nil {
		return err
	}
	if _, err := p.cron.AddFunc(everySpec(p.fullInterval), p.tierJob(departureboard.TierFull)); err != nil {
		return err
	}

	p.cron.Start()

	log.Debug().
		Str("quick", p.quickInterval.String()).
		Str("full", p.fullInterval.String()).
		Msg("Polling started")

	return nil
}

// Must be called with the mutex held. Jobs already running are left to finish.
func (p *Poller) stopCron() {
	if p.cron == nil {
		return
	}

	p.draining = slices.DeleteFunc(p.draining, func(done context.Context) bool {
		return done.Err() != nil
	})
	p.draining = append(p.draining, p.cron.Stop())
	p.cron = nil
}

func (p *Poller) tierJob(tier departureboard.Tier) func() {
	ctx := p.ctx

	return func() {
		p.refresh(ctx, tier)
	}
}

// Must be called with the mutex held
func (p *Poller) refreshNow(tier departureboard.Tier) {
	ctx := p.ctx

	p.running.Add(1)
	go func() {
		defer p.running.Done()
		p.refresh(ctx, tier)
	}()
}

func (p *Poller) refresh(ctx context.Context, tier departureboard.Tier) {
	if ctx.Err() != nil {
		return
	}

	err := p.board.Refresh(ctx, tier)

	switch {
	case err == nil:
	case errors.Is(err, departureboard.ErrRefreshInProgress):
		log.Debug().Str("tier", string(tier)).Msg("Skipped refresh, previous one still running")
	case errors.Is(err, context.Canceled):
	default:
		log.Debug().Err(err).Str("tier", string(tier)).Msg("Polled refresh failed")
	}
}

func everySpec(interval time.Duration) string {
	return fmt.Sprintf("@every %s", interval)
}

// cronLogger sends the cron scheduler's own messages through zerolog
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
