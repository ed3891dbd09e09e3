package crawler

import (
	"sync"
	"time"

	"github.com/ohack/grantfinder/internal/model"
)

// Progress tracks crawl counters, globally and per domain. All methods
// are safe for concurrent use.
type Progress struct {
	mu        sync.Mutex
	startedAt time.Time
	found     int
	crawled   int
	failed    int
	results   int
	domains   map[string]*model.DomainStats
}

// NewProgress returns a tracker with the clock started.
func NewProgress() *Progress {
	return &Progress{
		startedAt: time.Now(),
		domains:   make(map[string]*model.DomainStats),
	}
}

// URLFound records that a URL was enqueued.
func (p *Progress) URLFound(rawURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.found++
	p.domainStats(rawURL).Queued++
}

// URLCrawled records a fetch attempt outcome for the URL.
func (p *Progress) URLCrawled(rawURL string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stats := p.domainStats(rawURL)
	if stats.Queued > 0 {
		stats.Queued--
	}
	if ok {
		p.crawled++
		stats.Crawled++
		return
	}
	p.failed++
	stats.Failed++
}

// ResultFound records one relevant result extracted from a page.
func (p *Progress) ResultFound() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results++
}

// Snapshot returns a copy of the current counters.
func (p *Progress) Snapshot() model.CrawlStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	stats := model.CrawlStats{
		URLsFound:    p.found,
		URLsCrawled:  p.crawled,
		URLsFailed:   p.failed,
		ResultsFound: p.results,
		Domains:      make(map[string]model.DomainStats, len(p.domains)),
	}
	for domain, ds := range p.domains {
		stats.Domains[domain] = *ds
	}
	return stats
}

// Elapsed returns the time since the tracker was created.
func (p *Progress) Elapsed() time.Duration {
	return time.Since(p.startedAt)
}

// domainStats returns the mutable per-domain entry. Caller holds p.mu.
func (p *Progress) domainStats(rawURL string) *model.DomainStats {
	domain := domainOf(rawURL)
	stats, ok := p.domains[domain]
	if !ok {
		stats = &model.DomainStats{}
		p.domains[domain] = stats
	}
	return stats
}
