package feedloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/gbfsmap/pkg/gbfs"
	"github.com/travigo/gbfsmap/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	DefaultRequestSpacing = 250 * time.Millisecond
	maxConcurrentFetches  = 4
)

// KnownFeeds are the feeds a load tries to fetch, in report order.
var KnownFeeds = []string{
	gbfs.FeedStationInformation,
	gbfs.FeedStationStatus,
	gbfs.FeedVehicleStatus,
	gbfs.FeedVehicleTypes,
	gbfs.FeedGeofencingZones,
	gbfs.FeedSystemPricingPlans,
}

// Loader fetches a discovery document and the feeds it lists. Source is either an
// http(s) URL or a path to a discovery file on disk, in which case feeds are read from
// files of the same name next to it.
type Loader struct {
	Source     string
	Language   string
	HTTPClient *http.Client

	limiter *rate.Limiter
	cache   PayloadCache
}

func NewLoader(source string, language string, spacing time.Duration, payloadCache PayloadCache) *Loader {
	limit := rate.Inf
	if spacing > 0 {
		limit = rate.Every(spacing)
	}
	if language == "" {
		language = gbfs.DefaultDiscoveryLanguage
	}

	return &Loader{
		Source:     source,
		Language:   language,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(limit, 1),
		cache:      payloadCache,
	}
}

type fetchResult struct {
	feed    string
	url     string
	payload []byte
	err     error
}

func (l *Loader) Load(ctx context.Context) (*Result, error) {
	if l.Source == "" {
		return nil, fmt.Errorf("%w: no discovery source configured", ErrDiscovery)
	}

	discoveryPayload, err := l.fetch(ctx, l.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}
	discovery, err := gbfs.Decode[gbfs.DiscoveryData](discoveryPayload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}
	if len(discovery.Data.FeedsFor(l.Language)) == 0 {
		return nil, fmt.Errorf("%w: no feeds listed", ErrDiscovery)
	}

	result := &Result{
		Discovery: discovery,
		Payloads:  map[string][]byte{},
	}

	p := pool.NewWithResults[fetchResult]().WithMaxGoroutines(maxConcurrentFetches)

	for _, feed := range KnownFeeds {
		feedURL, ok := l.feedURL(discovery.Data, feed)
		if !ok {
			continue
		}
		result.Requested++

		feed := feed
		p.Go(func() fetchResult {
			payload, err := l.fetch(ctx, feedURL)
			return fetchResult{feed: feed, url: feedURL, payload: payload, err: err}
		})
	}

	for _, fetched := range p.Wait() {
		if fetched.err != nil {
			log.Error().Err(fetched.err).Str("feed", fetched.feed).Str("url", fetched.url).Msg("Failed to load feed")
			metrics.FeedLoadsTotal.WithLabelValues(fetched.feed, "error").Inc()
			result.Errors = append(result.Errors, &FeedError{Feed: fetched.feed, URL: fetched.url, Err: fetched.err})
			continue
		}

		metrics.FeedLoadsTotal.WithLabelValues(fetched.feed, "ok").Inc()
		result.Payloads[fetched.feed] = fetched.payload
	}
	result.sortErrors()

	log.Info().Str("source", l.Source).Msg(result.Summary())

	// A discovery document listing none of the known feeds loads nothing either
	if len(result.Payloads) == 0 {
		return result, ErrNoFeeds
	}

	return result, nil
}

// feedURL resolves a feed, accepting free_bike_status from 2.x systems in place of
// vehicle_status.
func (l *Loader) feedURL(discovery gbfs.DiscoveryData, feed string) (string, bool) {
	feedURL, ok := discovery.FeedURL(l.Language, feed)
	if !ok && feed == gbfs.FeedVehicleStatus {
		feedURL, ok = discovery.FeedURL(l.Language, gbfs.FeedFreeBikeStatus)
	}
	if !ok {
		return "", false
	}

	if !l.local() {
		return feedURL, true
	}
	return l.localPath(feedURL), true
}

func (l *Loader) local() bool {
	return !strings.HasPrefix(l.Source, "http://") && !strings.HasPrefix(l.Source, "https://")
}

// localPath maps a feed URL onto a file in the discovery file's directory.
func (l *Loader) localPath(feedURL string) string {
	name := feedURL
	if parsed, err := url.Parse(feedURL); err == nil && parsed.Path != "" {
		name = parsed.Path
	}
	name = path.Base(name)
	if path.Ext(name) == "" {
		name += ".json"
	}

	return filepath.Join(filepath.Dir(l.Source), name)
}

// fetch reads one payload. Remote payloads go through the cache and then the limiter;
// anything that is not a GBFS envelope is rejected.
func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	if l.local() {
		payload, err := os.ReadFile(location)
		if err != nil {
			return nil, err
		}
		_, err = envelopeTTL(payload)
		return payload, err
	}

	if l.cache != nil {
		if payload, ok := l.cache.Get(ctx, location); ok {
			metrics.FeedCacheHitsTotal.Inc()
			log.Debug().Str("url", location).Msg("Feed served from cache")
			return payload, nil
		}
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := l.get(ctx, location)
	if err != nil {
		return nil, err
	}

	ttl, err := envelopeTTL(payload)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		l.cache.Set(ctx, location, payload, ttl)
	}

	return payload, nil
}

func (l *Loader) get(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func envelopeTTL(payload []byte) (time.Duration, error) {
	envelope, err := gbfs.Decode[json.RawMessage](payload)
	if err != nil {
		return 0, fmt.Errorf("invalid feed payload: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return 0, errors.New("invalid feed payload: missing data")
	}
	return time.Duration(envelope.TTL) * time.Second, nil
}
