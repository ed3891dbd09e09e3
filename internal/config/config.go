package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror typical public-web politeness settings; grant sites
// are mostly small nonprofit and government servers that should not be
// hammered.
const (
	// DefaultMaxConcurrentRequests is the size of the crawl worker pool.
	// Each worker holds at most one in-flight HTTP request.
	DefaultMaxConcurrentRequests = 30

	// DefaultMaxConcurrentPerDomain bounds simultaneous requests to a single
	// domain when the domain has no policy override.
	DefaultMaxConcurrentPerDomain = 5

	// DefaultMaxDepth is the crawl depth for domains without a policy.
	// Depth 0 is the seed page itself.
	DefaultMaxDepth = 2

	// DefaultMaxURLsPerRun caps the total number of URLs visited in one run.
	// Reaching the cap triggers a graceful shutdown of the worker pool.
	DefaultMaxURLsPerRun = 5000

	// DefaultTimeout is the total per-request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetryAttempts is the number of attempts for transient
	// network failures before a fetch is recorded as failed.
	DefaultMaxRetryAttempts = 2

	// DefaultRetryStartTimeout is the backoff before the first retry.
	// Subsequent retries double it.
	DefaultRetryStartTimeout = 1 * time.Second

	// DefaultMaxContentLength skips responses larger than 5MB. Grant
	// announcements are text pages; anything bigger is a download.
	DefaultMaxContentLength = 5 * 1024 * 1024

	// DefaultCacheTTL expires cached page bodies after 24 hours, long
	// enough to dedupe within daily runs without serving stale deadlines.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultMinDelay and DefaultMaxDelay bound the randomized
	// inter-request delay per domain. The delay is randomized rather than
	// fixed so that workers hitting the same domain do not fall into
	// synchronized bursts, which also reads less like bot traffic.
	DefaultMinDelay = 700 * time.Millisecond
	DefaultMaxDelay = 2100 * time.Millisecond

	// DefaultMinRelevanceScore is the analyzer gate below which a page is
	// not reported as a grant.
	DefaultMinRelevanceScore = 0.35

	// DefaultHighRelevanceThreshold marks grants worth an email
	// notification.
	DefaultHighRelevanceThreshold = 0.65

	// DefaultMaxGrantsInEmail caps the notification body.
	DefaultMaxGrantsInEmail = 25

	// DefaultMaxSearchQueries caps Google Custom Search queries per run.
	// Each query costs money.
	DefaultMaxSearchQueries = 100

	// DefaultMaxResultsPerQuery is bounded at 10 by the API itself.
	DefaultMaxResultsPerQuery = 10

	// DefaultSearchCacheTTL keeps search results for a week; query result
	// churn is slow and the API budget is the scarce resource.
	DefaultSearchCacheTTL = 7 * 24 * time.Hour

	// AppName is the application name used for XDG directory paths.
	AppName = "grantfinder"
)

// UserAgents is the rotation pool for the User-Agent header. A random entry
// is chosen per request so repeated fetches from the pool of workers do not
// present a single fingerprint.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/109.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/109.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:108.0) Gecko/20100101 Firefox/108.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36 Edg/109.0.1518.55",
}

// URLBlocklist contains substrings that disqualify a URL globally. Entries
// cover paywalled aggregators, social platforms, and navigation endpoints
// (login, cart, ...) that never hold grant content.
var URLBlocklist = []string{
	"instrumentl.com",
	"grantwatch.com",
	"grantforward.com",
	"grantgopher.com",
	"grantselect.com",
	"nerdwallet.com",
	"console.aws.amazon.com",
	"linkedin.com",
	"twitter.com",
	"facebook.com",
	"instagram.com",
	"youtube.com",
	"tiktok.com",
	"google.com/search",
	"pinterest.com",
	"reddit.com",
	"tumblr.com",
	"medium.com/login",
	"wikipedia.org",
	"/login",
	"/signin",
	"/signup",
	"/register",
	"/cart",
	"/checkout",
	"/account",
	"/privacy",
	"/terms",
	"javascript:",
	"mailto:",
	"tel:",
}

// Config holds all configuration options for the grant finder.
// This struct is populated from CLI flags plus the optional YAML file and
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// MaxConcurrentRequests is the number of crawl workers.
	MaxConcurrentRequests int

	// MaxConcurrentPerDomain bounds simultaneous requests per domain for
	// domains without a policy override.
	MaxConcurrentPerDomain int

	// MaxDepth is the crawl recursion depth for domains without a policy.
	MaxDepth int

	// MaxURLsPerRun is the global visited-URL cap for one run. Reaching it
	// stops the crawl gracefully.
	MaxURLsPerRun int

	// Timeout is the total per-request timeout, including redirects and
	// body read.
	Timeout time.Duration

	// MaxRetryAttempts bounds retries on transient network errors.
	MaxRetryAttempts int

	// RetryStartTimeout is the initial exponential-backoff interval.
	RetryStartTimeout time.Duration

	// MaxContentLength skips responses whose Content-Length exceeds it.
	MaxContentLength int64

	// MinDelay and MaxDelay bound the randomized per-domain politeness
	// delay for domains without a policy override.
	MinDelay time.Duration
	MaxDelay time.Duration

	// GlobalRequestsPerSecond, when positive, layers a process-wide token
	// bucket over the per-domain limiter. Zero disables it.
	GlobalRequestsPerSecond float64

	// RespectRobotsTxt gates the robots.txt check. Disabled only for
	// testing against local fixtures.
	RespectRobotsTxt bool

	// FollowRedirects controls whether HTTP redirects are followed.
	FollowRedirects bool

	// CrawlRootOn404 enqueues a domain's root URL when a deep link 404s,
	// recovering from stale links in feeds and search results.
	CrawlRootOn404 bool

	// CacheDir is the page cache directory. Empty disables the disk tier.
	CacheDir string

	// CacheTTL expires cached page bodies.
	CacheTTL time.Duration

	// DBDir is the directory for the SQLite database. When set, grants and
	// run statistics are persisted there.
	DBDir string

	// MinRelevanceScore is the analyzer gate in [0,1].
	MinRelevanceScore float64

	// UseSearch enables Google Custom Search seed discovery.
	UseSearch bool

	// UseFeeds enables RSS/Atom feed seed discovery.
	UseFeeds bool

	// SearchAPIKey and SearchEngineID are the Google Custom Search
	// credentials, normally taken from the environment.
	SearchAPIKey   string
	SearchEngineID string

	// MaxSearchQueries and MaxResultsPerQuery are the API cost controls.
	MaxSearchQueries   int
	MaxResultsPerQuery int

	// SearchCacheTTL is how long search results are reused before the
	// API is queried again.
	SearchCacheTTL time.Duration

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport and MarkdownReport select the report format. Both false
	// means the human-readable simple report. Mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit path to the .grantfinder YAML file.
	ConfigFilePath string

	// File holds the loaded YAML configuration: seeds, domain policies,
	// queries, feeds, keywords, notification settings.
	File *File
}

// NewConfig creates a new Config with default values.
// Many defaults are non-zero, so relying on zero values would be wrong;
// the constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxConcurrentRequests:  DefaultMaxConcurrentRequests,
		MaxConcurrentPerDomain: DefaultMaxConcurrentPerDomain,
		MaxDepth:               DefaultMaxDepth,
		MaxURLsPerRun:          DefaultMaxURLsPerRun,
		Timeout:                DefaultTimeout,
		MaxRetryAttempts:       DefaultMaxRetryAttempts,
		RetryStartTimeout:      DefaultRetryStartTimeout,
		MaxContentLength:       DefaultMaxContentLength,
		MinDelay:               DefaultMinDelay,
		MaxDelay:               DefaultMaxDelay,
		RespectRobotsTxt:       true,
		FollowRedirects:        true,
		CrawlRootOn404:         true,
		CacheDir:               XDGCacheDir(),
		CacheTTL:               DefaultCacheTTL,
		MinRelevanceScore:      DefaultMinRelevanceScore,
		UseSearch:              true,
		UseFeeds:               true,
		MaxSearchQueries:       DefaultMaxSearchQueries,
		MaxResultsPerQuery:     DefaultMaxResultsPerQuery,
		SearchCacheTTL:         DefaultSearchCacheTTL,
	}
}

// XDGDataDir returns the XDG data directory for the grant finder.
// On Linux: ~/.local/share/grantfinder
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the grant finder.
// On Linux: ~/.config/grantfinder
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for the grant finder.
// On Linux: ~/.cache/grantfinder
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It is called once after CLI parsing, before any crawling begins, and
// returns the first error found; fixing one error often makes others
// irrelevant.
func (c *Config) Validate() error {
	if c.MaxConcurrentRequests <= 0 {
		return ErrInvalidConcurrency
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxURLsPerRun <= 0 {
		return ErrInvalidURLCap
	}

	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return ErrInvalidDelayRange
	}

	if c.MaxContentLength < 0 {
		return ErrInvalidMaxContentLength
	}

	if c.MinRelevanceScore < 0 || c.MinRelevanceScore > 1 {
		return ErrInvalidRelevanceScore
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if len(c.SeedURLs()) == 0 && !c.UseSearch && !c.UseFeeds {
		return ErrNoSeeds
	}

	return nil
}

// SeedURLs returns the static seed list from the loaded file, or the
// built-in targets when no file is present.
func (c *Config) SeedURLs() []string {
	if c.File != nil && len(c.File.Seeds) > 0 {
		return c.File.Seeds
	}
	return DefaultSeeds
}

// Policies returns the domain policy table from the loaded file.
// Always non-nil; an empty table resolves every domain to no policy.
func (c *Config) Policies() *PolicyTable {
	if c.File != nil {
		return c.File.PolicyTable()
	}
	return NewPolicyTable(nil)
}
