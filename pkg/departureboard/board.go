package departureboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pendler/pkg/boardcache"
	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator"
	"github.com/travigo/pendler/pkg/dataaggregator/source"
)

type Tier string

const (
	TierQuick Tier = "quick"
	TierFull  Tier = "full"
)

const (
	OriginBoardLimit        = 15
	TransferBoardLimitFull  = 100
	TransferBoardLimitQuick = 30
	RouteLimit              = 15
)

var ErrRefreshInProgress = errors.New("refresh already in progress")

type Config struct {
	Aggregator *dataaggregator.Aggregator
	Cache      *boardcache.Cache
	Direction  ctdf.Direction

	// StaleAfter bounds how long quick refreshes may serve planned routes from a full refresh
	StaleAfter time.Duration

	Now       func() time.Time
	AfterFunc AfterFunc
}

// State is the snapshot handed to presentation
type State struct {
	Journeys            []*ctdf.JourneyWithConnection `json:"journeys" groups:"basic,detailed"`
	Station             *ctdf.Station                 `json:"station" groups:"basic,detailed"`
	Loading             bool                          `json:"loading" groups:"basic,detailed"`
	Error               *string                       `json:"error" groups:"basic,detailed"`
	LastUpdate          time.Time                     `json:"lastUpdate" groups:"basic,detailed"`
	Direction           ctdf.Direction                `json:"direction" groups:"basic,detailed"`
	IsDirectionChanging bool                          `json:"isDirectionChanging" groups:"basic,detailed"`
}

// Board is the schedule for the corridor in the currently selected direction
type Board struct {
	aggregator *dataaggregator.Aggregator
	cache      *boardcache.Cache
	staleAfter time.Duration
	now        func() time.Time
	afterFunc  AfterFunc

	// Held for the whole of a refresh, overlapping refreshes are dropped
	refreshMutex sync.Mutex

	mutex               sync.RWMutex
	direction           ctdf.Direction
	generation          uint64
	journeys            []*ctdf.JourneyWithConnection
	station             *ctdf.Station
	loading             bool
	lastError           error
	lastUpdate          time.Time
	isDirectionChanging bool

	retryAttempts int
	retryBackOff  backoff.BackOff
	retryTimer    Timer
}

func New(config Config) *Board {
	board := &Board{
		aggregator: config.Aggregator,
		cache:      config.Cache,
		staleAfter: config.StaleAfter,
		now:        config.Now,
		afterFunc:  config.AfterFunc,

		direction:    config.Direction,
		journeys:     []*ctdf.JourneyWithConnection{},
		loading:      true,
		retryBackOff: newRetryBackOff(),
	}

	if board.cache == nil {
		board.cache = boardcache.NewMemory()
	}
	if board.now == nil {
		board.now = time.Now
	}
	if board.afterFunc == nil {
		board.afterFunc = timeAfterFunc
	}
	if !board.direction.Valid() {
		board.direction = ctdf.DirectionToZurich
	}

	return board
}

type refreshResult struct {
	journeys []*ctdf.JourneyWithConnection
	station  *ctdf.Station

	// Written to the caches only if the result is still wanted
	transferBoard []*ctdf.Journey
	route         []*ctdf.JourneyWithConnection
}

// Refresh rebuilds the journey list for the current direction. A refresh already running
// makes this return ErrRefreshInProgress straight away. If the direction changes while
// fetching, the result is thrown away and a full refresh for the new direction follows.
func (b *Board) Refresh(ctx context.Context, tier Tier) error {
	if !b.refreshMutex.TryLock() {
		log.Debug().Str("tier", string(tier)).Msg("Refresh already running, dropping request")
		return ErrRefreshInProgress
	}
	defer b.refreshMutex.Unlock()

	for {
		stale, err := b.refreshOnce(ctx, tier)
		if !stale {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		tier = TierFull
	}
}

func (b *Board) refreshOnce(ctx context.Context, tier Tier) (bool, error) {
	b.mutex.Lock()
	direction := b.direction
	generation := b.generation
	if tier == TierFull {
		b.loading = true
	}
	b.mutex.Unlock()

	start := b.now()
	logger := log.With().Str("direction", string(direction)).Str("tier", string(tier)).Logger()

	var result *refreshResult
	var err error

	if direction == ctdf.DirectionToMuhen {
		result, err = b.refreshInbound(ctx, direction, tier)
	} else {
		result, err = b.refreshOutbound(ctx, direction, tier)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if generation != b.generation {
		logger.Info().Msg("Direction changed during refresh, discarding result")
		return true, nil
	}

	b.loading = false
	b.isDirectionChanging = false

	if err != nil {
		b.lastError = err
		logger.Error().Err(err).Msg("Refresh failed")

		if source.IsConfigurationError(err) {
			b.cancelRetry()
		} else {
			b.scheduleRetry(ctx, tier)
		}

		return false, err
	}

	b.writeCaches(ctx, direction, result)

	b.journeys = result.journeys
	b.station = result.station
	b.lastError = nil
	b.lastUpdate = b.now()
	b.resetRetries()

	logger.Info().
		Int("count", len(result.journeys)).
		Str("length", b.now().Sub(start).String()).
		Msg("Refreshed departure board")

	return false, nil
}

func (b *Board) writeCaches(ctx context.Context, direction ctdf.Direction, result *refreshResult) {
	if result.transferBoard != nil {
		if err := b.cache.SetTransferBoard(ctx, direction, result.transferBoard); err != nil {
			log.Warn().Err(err).Msg("Failed to cache transfer board")
		}
	}

	if result.route != nil {
		if err := b.cache.SetRoute(ctx, direction, result.route, b.staleAfter); err != nil {
			log.Warn().Err(err).Msg("Failed to cache route")
		}
	}
}

// ToggleDirection switches to the opposite direction. Pending retries are cancelled,
// the retry counter reset and the caches of both directions cleared.
func (b *Board) ToggleDirection(ctx context.Context) ctdf.Direction {
	b.mutex.Lock()
	b.resetRetries()
	b.generation++
	b.direction = b.direction.Opposite()
	b.isDirectionChanging = true
	b.loading = true
	direction := b.direction
	b.mutex.Unlock()

	if err := b.cache.Clear(ctx, ctdf.DirectionToZurich, ctdf.DirectionToMuhen); err != nil {
		log.Error().Err(err).Msg("Failed to clear board caches")
	}

	log.Info().Str("direction", string(direction)).Msg("Direction changed")

	return direction
}

func (b *Board) Direction() ctdf.Direction {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return b.direction
}

func (b *Board) RetryAttempts() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return b.retryAttempts
}

// State returns a copy of the board that callers are free to modify
func (b *Board) State() State {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	state := State{
		Journeys:            []*ctdf.JourneyWithConnection{},
		Loading:             b.loading,
		LastUpdate:          b.lastUpdate,
		Direction:           b.direction,
		IsDirectionChanging: b.isDirectionChanging,
	}

	if err := copier.CopyWithOption(&state.Journeys, &b.journeys, copier.Option{DeepCopy: true}); err != nil {
		log.Error().Err(err).Msg("Failed to copy journeys")
	}

	if b.station != nil {
		station := *b.station
		state.Station = &station
	}

	if b.lastError != nil {
		message := b.lastError.Error()
		state.Error = &message
	}

	return state
}

// Journey returns a copy of the journey at index in the current list
func (b *Board) Journey(index int) (*ctdf.JourneyWithConnection, bool) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	if index < 0 || index >= len(b.journeys) {
		return nil, false
	}

	journey := &ctdf.JourneyWithConnection{}
	if err := copier.CopyWithOption(journey, b.journeys[index], copier.Option{DeepCopy: true}); err != nil {
		return nil, false
	}

	return journey, true
}
