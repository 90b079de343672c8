// Package scraper runs the page summary pipeline: validate the URL, strip
// tracking parameters, fetch the page and extract its metadata.
package scraper

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/cnosuke/pagemeta/extractor"
	"github.com/cnosuke/pagemeta/fetcher"
	"github.com/cnosuke/pagemeta/types"
	"github.com/cnosuke/pagemeta/urlclean"
	"go.uber.org/zap"
)

// Options are the per call parameters of Scrape.
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	StripTracking bool
}

// Scraper holds the collaborators shared by every call. It keeps no per
// request state and is safe for concurrent use.
type Scraper struct {
	fetcher  fetcher.Fetcher
	denylist urlclean.Denylist
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(s *Scraper) {
		s.fetcher = f
	}
}

// WithDenylist sets the tracking parameters removed when stripping is enabled.
func WithDenylist(d urlclean.Denylist) Option {
	return func(s *Scraper) {
		s.denylist = d
	}
}

// New creates a Scraper using the built-in denylist and an HTTP fetcher
// unless overridden by opts.
func New(opts ...Option) (*Scraper, error) {
	s := &Scraper{denylist: urlclean.DefaultDenylist()}
	for _, opt := range opts {
		opt(s)
	}

	if s.fetcher == nil {
		f, err := fetcher.NewHTTPFetcher(&fetcher.Config{MaxBodyBytes: fetcher.DefaultMaxBodyBytes})
		if err != nil {
			return nil, err
		}
		s.fetcher = f
	}
	return s, nil
}

// Scrape validates rawURL, optionally strips tracking parameters, fetches the
// page and summarizes it. Every later stage works on the normalized URL
// returned by the validator. Stage failures are returned unchanged.
func (s *Scraper) Scrape(ctx context.Context, rawURL string, opts Options) (*types.ScrapedPage, error) {
	normalized, err := urlclean.Normalize(rawURL)
	if err != nil {
		zap.S().Debugw("URL rejected", "url", rawURL, "error", err)
		return nil, err
	}

	target := normalized
	if opts.StripTracking {
		cleaned, err := urlclean.Strip(normalized, s.denylist)
		if err != nil {
			return nil, err
		}
		if cleaned != normalized {
			zap.S().Debugw("tracking parameters removed", "original", rawURL, "cleaned", cleaned)
		}
		target = cleaned
	}

	resp, err := s.fetcher.Fetch(ctx, fetcher.Request{
		URL:       target,
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
	})
	if err != nil {
		zap.S().Debugw("fetch failed", "url", target, "kind", types.KindOf(err).String(), "error", err)
		return nil, err
	}

	meta := extractor.Extract(resp.Body)

	page := &types.ScrapedPage{
		Title:       types.NoTitle,
		URL:         target,
		Description: meta.Description,
		Language:    meta.Language,
	}
	if meta.Title != nil {
		page.Title = *meta.Title
	}
	if meta.URL != nil {
		base := resp.FinalURL
		if base == "" {
			base = target
		}
		page.URL = resolveReference(base, *meta.URL)
	}

	zap.S().Infow("page scraped",
		"url", target,
		"final_url", resp.FinalURL,
		"canonical_url", page.URL,
		"title", page.Title)

	return page, nil
}

// resolveReference resolves a possibly relative canonical URL against the
// document URL. Unparseable values are returned as declared.
func resolveReference(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

var defaultScraper = sync.OnceValues(func() (*Scraper, error) {
	return New()
})

// Fetch scrapes rawURL with a process-wide Scraper using the built-in denylist.
func Fetch(ctx context.Context, rawURL string, timeout time.Duration, userAgent string, stripTracking bool) (*types.ScrapedPage, error) {
	s, err := defaultScraper()
	if err != nil {
		return nil, err
	}
	return s.Scrape(ctx, rawURL, Options{
		Timeout:       timeout,
		UserAgent:     userAgent,
		StripTracking: stripTracking,
	})
}
