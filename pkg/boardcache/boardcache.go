package boardcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocachestore "github.com/eko/gocache/store/go_cache/v4"
	redisstore "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pendler/pkg/ctdf"
)

const keyPrefix = "pendler"

const (
	transferBoardKey = "transfer-board"
	routeKey         = "route"
)

// Cache holds the transfer station board and the planned route results of the last full refresh
type Cache struct {
	Cache *cache.Cache[string]
}

func NewMemory() *Cache {
	client := gocache.New(gocache.NoExpiration, 10*time.Minute)

	return &Cache{
		Cache: cache.New[string](gocachestore.NewGoCache(client)),
	}
}

func NewRedis(client *redis.Client) *Cache {
	return &Cache{
		Cache: cache.New[string](redisstore.NewRedis(client)),
	}
}

func key(direction ctdf.Direction, name string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, direction, name)
}

func (c *Cache) TransferBoard(ctx context.Context, direction ctdf.Direction) ([]*ctdf.Journey, bool) {
	var board []*ctdf.Journey
	if !c.get(ctx, key(direction, transferBoardKey), &board) {
		return nil, false
	}
	return board, true
}

func (c *Cache) SetTransferBoard(ctx context.Context, direction ctdf.Direction, board []*ctdf.Journey) error {
	return c.set(ctx, key(direction, transferBoardKey), board, 0)
}

func (c *Cache) Route(ctx context.Context, direction ctdf.Direction) ([]*ctdf.JourneyWithConnection, bool) {
	var journeys []*ctdf.JourneyWithConnection
	if !c.get(ctx, key(direction, routeKey), &journeys) {
		return nil, false
	}
	return journeys, true
}

// SetRoute stores the route results, a zero ttl keeps them until cleared
func (c *Cache) SetRoute(ctx context.Context, direction ctdf.Direction, journeys []*ctdf.JourneyWithConnection, ttl time.Duration) error {
	return c.set(ctx, key(direction, routeKey), journeys, ttl)
}

// Clear removes every cached value of the given directions
func (c *Cache) Clear(ctx context.Context, directions ...ctdf.Direction) error {
	for _, direction := range directions {
		for _, name := range []string{transferBoardKey, routeKey} {
			if err := c.Cache.Delete(ctx, key(direction, name)); err != nil && !isNotFound(err) {
				return err
			}
		}
	}

	return nil
}

func (c *Cache) get(ctx context.Context, cacheKey string, target any) bool {
	value, err := c.Cache.Get(ctx, cacheKey)
	if err != nil {
		if !isNotFound(err) {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to read board cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(value), target); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("Discarding undecodable board cache entry")
		return false
	}

	return true
}

func (c *Cache) set(ctx context.Context, cacheKey string, value any, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if ttl > 0 {
		return c.Cache.Set(ctx, cacheKey, string(encoded), store.WithExpiration(ttl))
	}

	return c.Cache.Set(ctx, cacheKey, string(encoded))
}

func isNotFound(err error) bool {
	var notFound *store.NotFound
	return errors.As(err, &notFound)
}
