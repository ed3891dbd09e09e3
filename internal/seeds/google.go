package seeds

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// defaultSearchBaseURL is the Google Programmable Search endpoint.
const defaultSearchBaseURL = "https://www.googleapis.com/customsearch/v1"

// SearchClient queries the Google Programmable Search API and caches
// results on disk. The free tier allows 100 queries per day, so cached
// results are reused for a week and the per-run query count is capped.
type SearchClient struct {
	apiKey     string
	engineID   string
	baseURL    string
	client     *http.Client
	cacheDir   string
	cacheTTL   time.Duration
	maxQueries int
	maxResults int
	logger     *slog.Logger
}

// SearchOption configures a SearchClient.
type SearchOption func(*SearchClient)

// WithSearchBaseURL overrides the API endpoint. Used in tests.
func WithSearchBaseURL(baseURL string) SearchOption {
	return func(c *SearchClient) {
		c.baseURL = baseURL
	}
}

// WithSearchCache sets the on-disk cache location and TTL. An empty dir
// disables caching.
func WithSearchCache(dir string, ttl time.Duration) SearchOption {
	return func(c *SearchClient) {
		c.cacheDir = dir
		c.cacheTTL = ttl
	}
}

// WithSearchLimits caps queries per run and results per query.
func WithSearchLimits(maxQueries, maxResults int) SearchOption {
	return func(c *SearchClient) {
		c.maxQueries = maxQueries
		c.maxResults = maxResults
	}
}

// NewSearchClient creates a search client. apiKey and engineID come
// from the Google Cloud console and the Programmable Search setup.
func NewSearchClient(apiKey, engineID string, client *http.Client, logger *slog.Logger, opts ...SearchOption) *SearchClient {
	c := &SearchClient{
		apiKey:     apiKey,
		engineID:   engineID,
		baseURL:    defaultSearchBaseURL,
		client:     client,
		maxQueries: 100,
		maxResults: 10,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResponse is the subset of the API response we use.
type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

// cachedSearch is the on-disk record for one query.
type cachedSearch struct {
	Query     string    `json:"query"`
	Links     []string  `json:"links"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Search runs the queries (up to the per-run cap) and returns the
// deduplicated result links. Individual query failures are logged and
// skipped; Search fails only when the context is canceled.
func (c *SearchClient) Search(ctx context.Context, queries []string) ([]string, error) {
	if len(queries) > c.maxQueries {
		queries = queries[:c.maxQueries]
	}

	var links []string
	seen := make(map[string]struct{})
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return links, err
		}
		results, err := c.searchOne(ctx, query)
		if err != nil {
			c.logger.Warn("search query failed", "query", query, "error", err)
			continue
		}
		for _, link := range results {
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}
	return links, nil
}

func (c *SearchClient) searchOne(ctx context.Context, query string) ([]string, error) {
	if links, ok := c.cacheGet(query); ok {
		return links, nil
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(c.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	links := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}

	c.cachePut(query, links)
	return links, nil
}

func (c *SearchClient) cacheGet(query string) ([]string, bool) {
	if c.cacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.cachePath(query))
	if err != nil {
		return nil, false
	}
	var entry cachedSearch
	if err := json.Unmarshal(data, &entry); err != nil {
		os.Remove(c.cachePath(query))
		return nil, false
	}
	if c.cacheTTL > 0 && time.Since(entry.FetchedAt) >= c.cacheTTL {
		os.Remove(c.cachePath(query))
		return nil, false
	}
	return entry.Links, true
}

func (c *SearchClient) cachePut(query string, links []string) {
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0o750); err != nil {
		return
	}
	entry := cachedSearch{Query: query, Links: links, FetchedAt: time.Now()}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.cachePath(query), data, 0o600); err != nil {
		c.logger.Debug("search cache write failed", "query", query, "error", err)
	}
}

func (c *SearchClient) cachePath(query string) string {
	sum := sha256.Sum256([]byte(query))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:])+".json")
}
