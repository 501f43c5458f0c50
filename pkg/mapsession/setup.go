package mapsession

import (
	"github.com/travigo/gbfsmap/pkg/config"
	"github.com/travigo/gbfsmap/pkg/feedloader"
	"github.com/travigo/gbfsmap/pkg/redis_client"
)

// Setup builds a session backed by the feed loader, caching payloads in Redis when a
// client has been connected.
func Setup(cfg *config.Config) (*Session, error) {
	var payloadCache feedloader.PayloadCache
	if redis_client.Client != nil {
		payloadCache = feedloader.NewRedisCache(redis_client.Client)
	}

	loader := feedloader.NewLoader(cfg.DiscoveryURL, cfg.Language, cfg.RequestSpacing, payloadCache)

	return New(cfg, loader)
}
