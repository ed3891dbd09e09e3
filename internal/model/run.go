package model

import (
	"sort"
	"time"
)

// DomainStats is the per-domain crawl breakdown.
type DomainStats struct {
	// Crawled is the number of pages fetched successfully.
	Crawled int `json:"crawled"`

	// Failed is the number of pages that could not be fetched or were
	// rejected (robots, filters, HTTP errors).
	Failed int `json:"failed"`

	// Queued is the number of URLs still queued when the run ended.
	Queued int `json:"queued"`
}

// CrawlStats aggregates crawl counters for one run.
type CrawlStats struct {
	// URLsFound is the number of unique URLs discovered (seeded or
	// extracted from pages).
	URLsFound int `json:"urls_found"`

	// URLsCrawled is the number of pages fetched and processed.
	URLsCrawled int `json:"urls_crawled"`

	// URLsFailed counts fetch failures and policy rejections.
	URLsFailed int `json:"urls_failed"`

	// ResultsFound is the number of grants the page processor reported.
	ResultsFound int `json:"results_found"`

	// Domains breaks the counters down per domain.
	Domains map[string]DomainStats `json:"domains,omitempty"`
}

// RunReport accumulates everything one run produces: the seed list that was
// crawled, the grants found, and the crawl statistics. Pipeline steps fill
// it in sequence.
type RunReport struct {
	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Seeds is the assembled seed list: static targets plus search and
	// feed discoveries, deduplicated.
	Seeds []string `json:"seeds,omitempty"`

	// SeedsFromSearch and SeedsFromFeeds count the discovery sources.
	SeedsFromSearch int `json:"seeds_from_search"`
	SeedsFromFeeds  int `json:"seeds_from_feeds"`

	// Grants are the opportunities found, sorted by descending relevance.
	Grants []*Grant `json:"grants"`

	// Stats are the crawl counters.
	Stats CrawlStats `json:"stats"`

	// GrantsPersisted is the number of grants written to the database.
	GrantsPersisted int `json:"grants_persisted"`

	// NotificationSent reports whether the email summary went out.
	NotificationSent bool `json:"notification_sent"`

	// ErrorMessage records a step failure that did not abort the run.
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewRunReport creates a RunReport stamped with the current time.
func NewRunReport() *RunReport {
	return &RunReport{
		StartedAt: time.Now(),
		Grants:    make([]*Grant, 0),
	}
}

// SortGrants orders grants by descending relevance score, breaking ties by
// title so report output is stable.
func (r *RunReport) SortGrants() {
	sort.SliceStable(r.Grants, func(i, j int) bool {
		if r.Grants[i].RelevanceScore != r.Grants[j].RelevanceScore {
			return r.Grants[i].RelevanceScore > r.Grants[j].RelevanceScore
		}
		return r.Grants[i].Title < r.Grants[j].Title
	})
}

// HighRelevance returns grants at or above the threshold, in the report's
// current order.
func (r *RunReport) HighRelevance(threshold float64) []*Grant {
	out := make([]*Grant, 0)
	for _, g := range r.Grants {
		if g.RelevanceScore >= threshold {
			out = append(out, g)
		}
	}
	return out
}

// Duration returns the wall-clock duration of the run.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
