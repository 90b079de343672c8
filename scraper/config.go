package scraper

import (
	"github.com/cnosuke/pagemeta/config"
	"github.com/cnosuke/pagemeta/fetcher"
	"github.com/cnosuke/pagemeta/urlclean"
)

// NewFromConfig builds a Scraper with the configured body limit and the
// built-in denylist extended by scrape.extra_tracking_params.
func NewFromConfig(cfg *config.Config) (*Scraper, error) {
	f, err := fetcher.NewHTTPFetcher(&fetcher.Config{MaxBodyBytes: cfg.Scrape.MaxBodyBytes})
	if err != nil {
		return nil, err
	}
	return New(
		WithFetcher(f),
		WithDenylist(urlclean.DefaultDenylist().With(cfg.Scrape.ExtraTrackingParams...)),
	)
}

// DefaultOptions returns the per call options configured in cfg.
func DefaultOptions(cfg *config.Config) Options {
	return Options{
		Timeout:       cfg.TimeoutDuration(),
		UserAgent:     cfg.Scrape.UserAgent,
		StripTracking: !cfg.Scrape.KeepTracking,
	}
}
