package redis_client

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/travigo/pendler/pkg/util"
)

const defaultConnectionPassword = ""
const defaultDatabase = 0

// Configured reports whether a Redis server was given, without it the cache stays in memory
func Configured(env map[string]string) bool {
	return env["PENDLER_REDIS_ADDRESS"] != ""
}

// Connect opens and pings the Redis server named by PENDLER_REDIS_ADDRESS
func Connect(ctx context.Context) (*redis.Client, error) {
	env := util.GetEnvironmentVariables()

	address := env["PENDLER_REDIS_ADDRESS"]
	password := util.EnvironmentOrDefault(env, "PENDLER_REDIS_PASSWORD", defaultConnectionPassword)
	database := defaultDatabase

	if env["PENDLER_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["PENDLER_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return nil, err
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
