package redis_client

import (
	"context"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/gbfsmap/pkg/util"
)

var Client *redis.Client

const defaultConnectionPassword = ""
const defaultDatabase = 0
const connectTimeout = 15 * time.Second

// Connect sets up Client from the GBFSMAP_REDIS_ environment. Without an address the
// client stays nil and feed caching is disabled.
func Connect() error {
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	address := env["GBFSMAP_REDIS_ADDRESS"]
	if address == "" {
		log.Info().Msg("Skipping Redis setup")
		Client = nil
		return nil
	}

	if env["GBFSMAP_REDIS_PASSWORD"] != "" {
		password = env["GBFSMAP_REDIS_PASSWORD"]
	}

	if env["GBFSMAP_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["GBFSMAP_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = connectTimeout

	err := backoff.RetryNotify(func() error {
		return client.Ping(context.Background()).Err()
	}, retryBackoff, func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("Redis not ready")
	})
	if err != nil {
		client.Close()
		return err
	}

	Client = client
	log.Info().Msgf("Redis client setup for %s", address)

	return nil
}
