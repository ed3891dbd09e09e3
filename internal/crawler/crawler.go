package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ohack/grantfinder/internal/config"
	"github.com/ohack/grantfinder/internal/model"
)

// idlePoll is how long an idle worker sleeps before re-checking the queues.
const idlePoll = 50 * time.Millisecond

// progressInterval is how often crawl progress is logged.
const progressInterval = 10 * time.Second

// ProcessFunc turns a fetched page into a result. Returning a nil grant
// with a nil error means the page was examined and found irrelevant.
// Errors are logged and do not stop the crawl.
type ProcessFunc func(ctx context.Context, pageURL, body string, depth int) (*model.Grant, error)

// Crawler is the concurrent crawl engine. A single Crawler can run
// multiple crawls; the page cache carries over between runs while all
// other state (queues, visited set, robots rules) is per run.
//
// Design decision: We accept a processing callback rather than returning
// raw pages because:
//  1. Pages can be large; processing them in-flight bounds memory
//  2. The analyzer stays decoupled from crawl mechanics
//  3. Results accumulate as they are found, not after the run
type Crawler struct {
	cfg       *config.Config
	client    *http.Client
	cache     *Cache
	fetcher   *fetcher
	validator *validator
	logger    *slog.Logger
}

// New creates a Crawler from the run configuration. The HTTP client is
// built here so timeouts and redirect policy follow the config.
func New(cfg *config.Config, logger *slog.Logger) (*Crawler, error) {
	cache, err := NewCache(cfg.CacheDir, cfg.CacheTTL, logger)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &Crawler{
		cfg:    cfg,
		client: client,
		cache:  cache,
		fetcher: newFetcher(client, config.UserAgents, cfg.MaxRetryAttempts+1,
			cfg.RetryStartTimeout, cfg.MaxContentLength, logger),
		validator: newValidator(cfg),
		logger:    logger,
	}, nil
}

// run holds the state of one crawl.
type run struct {
	queues   *QueueManager
	robots   *Robots
	limiter  *RateLimiter
	progress *Progress
	process  ProcessFunc

	mu      sync.Mutex
	global  []Task
	visited map[string]struct{}

	inflight atomic.Int64
	stopped  atomic.Bool

	resultsMu sync.Mutex
	results   []*model.Grant
}

// Crawl fetches pages starting from the seed URLs, following links up to
// the configured depth, and returns the results produced by process along
// with the final crawl statistics.
//
// The crawl ends when every queue is empty and no worker has a page in
// flight, when the global URL cap is reached, or when ctx is canceled.
// Cancellation returns the partial results gathered so far together with
// ctx's error.
func (c *Crawler) Crawl(ctx context.Context, seeds []string, process ProcessFunc) ([]*model.Grant, model.CrawlStats, error) {
	r := &run{
		queues:   NewQueueManager(c.cfg.Policies(), c.cfg.MaxDepth),
		robots:   NewRobots(c.client, c.cfg.RespectRobotsTxt, c.logger),
		limiter:  NewRateLimiter(c.cfg),
		progress: NewProgress(),
		process:  process,
		visited:  make(map[string]struct{}),
	}

	for _, seed := range seeds {
		c.enqueue(r, seed, 0)
	}
	c.logger.Info("crawl started",
		"seeds", len(seeds), "workers", c.cfg.MaxConcurrentRequests)

	done := make(chan struct{})
	go c.logProgress(r, done)

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.MaxConcurrentRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.worker(ctx, r)
		}()
	}
	wg.Wait()
	close(done)

	stats := r.progress.Snapshot()
	// For policy-managed domains the queue manager knows exactly what
	// was left behind at run end (cancellation, URL cap, or a dropped
	// exhausted-budget queue); its counts replace the progress tracker's.
	queued := r.queues.Queued()
	for domain, ds := range stats.Domains {
		if c.cfg.Policies().Lookup(domain) == nil {
			continue
		}
		ds.Queued = queued[domain]
		stats.Domains[domain] = ds
	}
	c.logger.Info("crawl finished",
		"crawled", stats.URLsCrawled,
		"failed", stats.URLsFailed,
		"results", stats.ResultsFound,
		"elapsed", r.progress.Elapsed().Round(time.Second))

	r.resultsMu.Lock()
	results := r.results
	r.resultsMu.Unlock()

	if err := ctx.Err(); err != nil {
		return results, stats, err
	}
	return results, stats, nil
}

// worker pulls tasks until the crawl is exhausted, stopped, or canceled.
func (c *Crawler) worker(ctx context.Context, r *run) {
	for {
		if r.stopped.Load() || ctx.Err() != nil {
			return
		}
		task, ok := c.next(r)
		if !ok {
			if r.inflight.Load() == 0 && c.drained(r) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(idlePoll):
			}
			continue
		}
		c.processTask(ctx, r, task)
		r.inflight.Add(-1)
	}
}

// next pops the next task, preferring policy-managed domain queues over
// the global queue. On success the caller owns one in-flight slot. The
// slot is taken before popping so other workers never observe a popped
// but unprocessed task as an idle crawl.
func (c *Crawler) next(r *run) (Task, bool) {
	r.inflight.Add(1)
	if task, ok := r.queues.Next(); ok {
		return task, true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.global) == 0 {
		r.inflight.Add(-1)
		return Task{}, false
	}
	task := r.global[0]
	r.global = r.global[1:]
	return task, true
}

// drained reports whether both queue tiers are empty.
func (c *Crawler) drained(r *run) bool {
	r.mu.Lock()
	globalEmpty := len(r.global) == 0
	r.mu.Unlock()
	return globalEmpty && r.queues.Empty()
}

// enqueue validates, normalizes, and routes a URL to the right queue.
// The visited check and insertion happen under one lock, so a URL can be
// enqueued at most once per run no matter how many workers discover it.
func (c *Crawler) enqueue(r *run, rawURL string, depth int) bool {
	if r.stopped.Load() {
		return false
	}
	normalized := normalizeURL(rawURL)
	if !c.validator.valid(normalized) {
		return false
	}

	r.mu.Lock()
	if _, seen := r.visited[normalized]; seen {
		r.mu.Unlock()
		return false
	}
	if len(r.visited) >= c.cfg.MaxURLsPerRun {
		r.mu.Unlock()
		if r.stopped.CompareAndSwap(false, true) {
			c.logger.Warn("URL cap reached, stopping crawl", "cap", c.cfg.MaxURLsPerRun)
		}
		return false
	}
	r.visited[normalized] = struct{}{}
	r.mu.Unlock()

	if c.cfg.Policies().Lookup(domainOf(normalized)) != nil {
		if !r.queues.Add(normalized, depth) {
			return false
		}
	} else {
		if depth > c.cfg.MaxDepth {
			return false
		}
		r.mu.Lock()
		r.global = append(r.global, Task{URL: normalized, Depth: depth})
		r.mu.Unlock()
	}
	r.progress.URLFound(normalized)
	return true
}

// processTask fetches one page, hands it to the processing callback, and
// feeds extracted links back into the queues.
func (c *Crawler) processTask(ctx context.Context, r *run, task Task) {
	body, ok := c.fetchBody(ctx, r, task)
	if !ok {
		return
	}
	r.progress.URLCrawled(task.URL, true)

	parser, err := NewParser(task.URL)
	if err != nil {
		return
	}
	parsed, err := parser.Parse(strings.NewReader(body))
	if err != nil {
		c.logger.Debug("parse failed", "url", task.URL, "error", err)
		return
	}

	if c.passesContentFilters(task.URL, body, parsed) {
		grant, err := r.process(ctx, task.URL, body, task.Depth)
		if err != nil {
			c.logger.Debug("page processing failed", "url", task.URL, "error", err)
		} else if grant != nil {
			r.resultsMu.Lock()
			r.results = append(r.results, grant)
			r.resultsMu.Unlock()
			r.progress.ResultFound()
			c.logger.Info("result found", "url", task.URL, "title", grant.Title)
		}
	}

	// Links are extracted even from pages the content filters rejected:
	// a thin index page still points at the detail pages we want.
	maxDepth := c.cfg.MaxDepth
	if policy := c.cfg.Policies().Lookup(domainOf(task.URL)); policy != nil {
		maxDepth = policy.EffectiveMaxDepth(c.cfg.MaxDepth)
	}
	if task.Depth < maxDepth {
		for _, link := range parsed.Links {
			c.enqueue(r, link, task.Depth+1)
		}
	}
}

// fetchBody returns the page body from cache or network. It reports
// false when the page could not be obtained; the failure is already
// recorded in progress.
func (c *Crawler) fetchBody(ctx context.Context, r *run, task Task) (string, bool) {
	if body, hit := c.cache.Get(task.URL); hit {
		return body, true
	}

	if !r.robots.Allowed(ctx, task.URL, c.fetcher.userAgent()) {
		c.logger.Debug("skipping URL", "url", task.URL, "reason", ErrDisallowedByRobots)
		r.progress.URLCrawled(task.URL, false)
		return "", false
	}

	if err := r.limiter.Acquire(ctx, task.URL); err != nil {
		r.progress.URLCrawled(task.URL, false)
		return "", false
	}
	body, err := c.fetcher.fetch(ctx, task.URL)
	r.limiter.Release(task.URL)

	if err != nil {
		r.progress.URLCrawled(task.URL, false)
		if errors.Is(err, ErrNotFound) && c.cfg.CrawlRootOn404 {
			c.recoverRoot(r, task)
		} else if !errors.Is(err, ErrNotHTML) && !errors.Is(err, ErrContentTooLarge) {
			c.logger.Debug("fetch failed", "url", task.URL, "error", err)
		}
		return "", false
	}

	c.cache.Set(task.URL, body)
	return body, true
}

// recoverRoot enqueues the site root after a 404, so a stale deep link
// still yields the domain's live pages.
func (c *Crawler) recoverRoot(r *run, task Task) {
	u, err := url.Parse(task.URL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return
	}
	root := u.Scheme + "://" + u.Host + "/"
	if c.enqueue(r, root, task.Depth) {
		c.logger.Debug("recovering via site root", "from", task.URL, "root", root)
	}
}

// passesContentFilters applies the domain policy's content gates.
func (c *Crawler) passesContentFilters(rawURL, body string, parsed *ParseResult) bool {
	policy := c.cfg.Policies().Lookup(domainOf(rawURL))
	if policy == nil {
		return true
	}
	if policy.MinContentLength > 0 && parsed.TextLength < policy.MinContentLength {
		return false
	}
	if len(policy.RequireKeywords) > 0 {
		lower := strings.ToLower(body)
		found := false
		for _, kw := range policy.RequireKeywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// logProgress periodically logs crawl counters until done is closed.
func (c *Crawler) logProgress(r *run, done <-chan struct{}) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			stats := r.progress.Snapshot()
			c.logger.Info("crawl progress",
				"found", stats.URLsFound,
				"crawled", stats.URLsCrawled,
				"failed", stats.URLsFailed,
				"results", stats.ResultsFound,
				"queued", r.queues.Size(),
				"elapsed", r.progress.Elapsed().Round(time.Second))
		}
	}
}
