package feedloader

import (
	"errors"
	"fmt"
)

var (
	ErrDiscovery = errors.New("discovery document could not be loaded")
	ErrNoFeeds   = errors.New("none of the discovered feeds could be loaded")
)

// FeedError is a single feed that failed to load. It never fails a whole load on its own.
type FeedError struct {
	Feed string
	URL  string
	Err  error
}

func (e *FeedError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("feed %s: %v", e.Feed, e.Err)
	}
	return fmt.Sprintf("feed %s (%s): %v", e.Feed, e.URL, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}
