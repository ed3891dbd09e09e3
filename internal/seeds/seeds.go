package seeds

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ohack/grantfinder/internal/config"
)

// Result is the outcome of seed collection.
type Result struct {
	// URLs is the deduplicated seed list: configured targets first,
	// then search results, then feed links.
	URLs []string

	// FromSearch counts seeds contributed by the search API.
	FromSearch int

	// FromFeeds counts seeds contributed by RSS/Atom feeds.
	FromFeeds int
}

// Collector assembles seed URLs from targets, search, and feeds.
type Collector struct {
	cfg    *config.Config
	client *http.Client
	search *SearchClient
	logger *slog.Logger
}

// NewCollector builds a collector from the run configuration. The search
// source is active only when UseSearch is set and credentials exist.
func NewCollector(cfg *config.Config, logger *slog.Logger) *Collector {
	client := &http.Client{Timeout: cfg.Timeout}
	c := &Collector{cfg: cfg, client: client, logger: logger}

	if cfg.UseSearch && cfg.SearchAPIKey != "" && cfg.SearchEngineID != "" {
		c.search = NewSearchClient(cfg.SearchAPIKey, cfg.SearchEngineID, client, logger,
			WithSearchCache(filepath.Join(cfg.CacheDir, "search"), cfg.SearchCacheTTL),
			WithSearchLimits(cfg.MaxSearchQueries, cfg.MaxResultsPerQuery))
	}
	return c
}

// Collect gathers seeds from all enabled sources. Source failures are
// logged and the remaining sources still contribute; the configured
// targets are always present.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	result := &Result{}
	seen := make(map[string]struct{})
	add := func(urls []string) int {
		added := 0
		for _, u := range urls {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			result.URLs = append(result.URLs, u)
			added++
		}
		return added
	}

	add(c.cfg.SeedURLs())

	if c.search != nil {
		queries := config.DefaultQueries
		if c.cfg.File != nil && len(c.cfg.File.Queries) > 0 {
			queries = c.cfg.File.Queries
		}
		links, err := c.search.Search(ctx, queries)
		if err != nil {
			return result, err
		}
		result.FromSearch = add(links)
	}

	if c.cfg.UseFeeds {
		links, err := c.collectFeeds(ctx)
		if err != nil {
			return result, err
		}
		result.FromFeeds = add(links)
	}

	c.logger.Info("seeds collected",
		"total", len(result.URLs),
		"from_search", result.FromSearch,
		"from_feeds", result.FromFeeds)
	return result, nil
}

// collectFeeds fetches all configured feeds concurrently. A failing
// feed is logged and skipped. Link order is stable: feeds contribute in
// configuration order regardless of fetch completion order.
func (c *Collector) collectFeeds(ctx context.Context) ([]string, error) {
	feeds := config.DefaultFeeds
	if c.cfg.File != nil && len(c.cfg.File.Feeds) > 0 {
		feeds = c.cfg.File.Feeds
	}

	perFeed := make([][]string, len(feeds))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, feedURL := range feeds {
		g.Go(func() error {
			links, err := FetchFeed(ctx, c.client, feedURL)
			if err != nil {
				c.logger.Warn("feed fetch failed", "feed", feedURL, "error", err)
				return nil
			}
			mu.Lock()
			perFeed[i] = links
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var links []string
	for _, feedLinks := range perFeed {
		links = append(links, feedLinks...)
	}
	return links, nil
}
