// Package crawler provides the concurrent, domain-aware crawl engine for
// the grant finder.
//
// # Architecture
//
// The crawler is built around a fixed pool of workers pulling from two
// tiers of queues: per-domain queues for domains with a configured policy
// (page budgets, depth caps, breadth/depth ordering, content filters), and
// a global FIFO queue for everything else. Workers fetch pages, extract
// links, feed them back into the queues, and hand page bodies to a
// processing callback supplied by the caller.
//
// # Components
//
//   - Crawler: owns the worker pool and run lifecycle
//   - QueueManager: per-domain queues with policy-driven priority selection
//   - RateLimiter: per-domain concurrency gates with randomized delays
//   - Robots: robots.txt fetch/parse/cache, fail-open
//   - Cache: memory + disk page cache with TTL expiry
//   - Progress: crawl counters with per-domain breakdown
//   - Parser: link and title extraction from HTML
//
// # Politeness
//
// The crawler respects robots.txt (configurable), bounds concurrency per
// domain, randomizes inter-request delays, rotates User-Agent headers, and
// honors per-domain page budgets so no single site absorbs a whole run.
//
// # Guarantees
//
// A URL is fetched at most once per run: the global visited set is checked
// and updated atomically at enqueue time. Per-run state (queues, visited
// sets, robots rules) is fresh on every Crawl call; only the page cache
// persists across runs.
package crawler
