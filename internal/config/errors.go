package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration. Package-level
// sentinel errors let callers use errors.Is() for programmatic handling
// while keeping the messages human-readable.
var (
	// ErrNoSeeds is returned when there are no static seeds and both seed
	// discovery mechanisms (search, feeds) are disabled. The crawl would
	// have nothing to do.
	ErrNoSeeds = errors.New("no seed URLs: provide seeds in the config file or enable search/feeds")

	// ErrInvalidConcurrency is returned when the worker-pool size is not
	// positive. Zero workers would mean no crawling at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive. A zero timeout would cause immediate failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidURLCap is returned when the per-run URL cap is not
	// positive.
	ErrInvalidURLCap = errors.New("invalid max URLs per run: must be positive")

	// ErrInvalidDelayRange is returned when the politeness delay range is
	// negative or inverted (max below min).
	ErrInvalidDelayRange = errors.New("invalid delay range: min must be non-negative and max >= min")

	// ErrInvalidMaxContentLength is returned when the content-length cap is
	// negative. Use 0 to fall back to the default limit.
	ErrInvalidMaxContentLength = errors.New("invalid max content length: must be non-negative")

	// ErrInvalidRelevanceScore is returned when the minimum relevance score
	// is outside [0,1].
	ErrInvalidRelevanceScore = errors.New("invalid relevance score: must be between 0 and 1")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
