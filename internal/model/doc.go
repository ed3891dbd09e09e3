// Package model defines the core data structures shared across the grant
// finder: grant opportunities extracted from crawled pages, and the run
// report aggregating crawl statistics and results.
package model
