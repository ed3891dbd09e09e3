package seeds

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ohack/grantfinder/internal/config"
)

func testSlogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseFeed(t *testing.T) {
	t.Parallel()

	t.Run("rss 2.0", func(t *testing.T) {
		t.Parallel()
		body := `<?xml version="1.0"?>
<rss version="2.0"><channel>
<item><link>https://example.org/grant-1</link></item>
<item><link>https://example.org/grant-2</link></item>
</channel></rss>`
		links, err := parseFeed([]byte(body))
		if err != nil {
			t.Fatalf("parseFeed() error = %v", err)
		}
		want := []string{"https://example.org/grant-1", "https://example.org/grant-2"}
		if len(links) != 2 || links[0] != want[0] || links[1] != want[1] {
			t.Errorf("parseFeed() = %v, want %v", links, want)
		}
	})

	t.Run("atom", func(t *testing.T) {
		t.Parallel()
		body := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<entry><link rel="alternate" href="https://example.org/entry-1"/></entry>
<entry><link href="https://example.org/entry-2"/><link rel="self" href="https://example.org/self"/></entry>
</feed>`
		links, err := parseFeed([]byte(body))
		if err != nil {
			t.Fatalf("parseFeed() error = %v", err)
		}
		want := []string{"https://example.org/entry-1", "https://example.org/entry-2"}
		if len(links) != 2 || links[0] != want[0] || links[1] != want[1] {
			t.Errorf("parseFeed() = %v, want %v", links, want)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		if _, err := parseFeed([]byte("not xml at all")); err == nil {
			t.Error("parseFeed() error = nil, want parse failure")
		}
	})
}

func TestFetchFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<rss version="2.0"><channel><item><link>https://example.org/g</link></item></channel></rss>`)
	}))
	defer server.Close()

	links, err := FetchFeed(context.Background(), server.Client(), server.URL)
	if err != nil {
		t.Fatalf("FetchFeed() error = %v", err)
	}
	if len(links) != 1 || links[0] != "https://example.org/g" {
		t.Errorf("FetchFeed() = %v, want one link", links)
	}
}

func TestSearchClient(t *testing.T) {
	t.Parallel()

	t.Run("returns deduplicated links", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items":[{"link":"https://a.org/grant"},{"link":"https://b.org/grant"}]}`)
		}))
		defer server.Close()

		c := NewSearchClient("key", "cx", server.Client(), testSlogger(),
			WithSearchBaseURL(server.URL))
		links, err := c.Search(context.Background(), []string{"tech grants", "nonprofit grants"})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		// Both queries return the same two links; duplicates collapse.
		if len(links) != 2 {
			t.Errorf("Search() returned %d links, want 2", len(links))
		}
	})

	t.Run("cache avoids repeat API calls", func(t *testing.T) {
		t.Parallel()
		var mu sync.Mutex
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls++
			mu.Unlock()
			fmt.Fprint(w, `{"items":[{"link":"https://a.org/grant"}]}`)
		}))
		defer server.Close()

		dir := t.TempDir()
		for i := 0; i < 2; i++ {
			c := NewSearchClient("key", "cx", server.Client(), testSlogger(),
				WithSearchBaseURL(server.URL),
				WithSearchCache(dir, time.Hour))
			if _, err := c.Search(context.Background(), []string{"tech grants"}); err != nil {
				t.Fatalf("Search() run %d error = %v", i+1, err)
			}
		}

		mu.Lock()
		defer mu.Unlock()
		if calls != 1 {
			t.Errorf("API called %d times over two runs, want 1 (cache)", calls)
		}
	})

	t.Run("query cap limits API calls", func(t *testing.T) {
		t.Parallel()
		var mu sync.Mutex
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls++
			mu.Unlock()
			fmt.Fprint(w, `{"items":[]}`)
		}))
		defer server.Close()

		c := NewSearchClient("key", "cx", server.Client(), testSlogger(),
			WithSearchBaseURL(server.URL),
			WithSearchLimits(2, 10))
		queries := []string{"one", "two", "three", "four"}
		if _, err := c.Search(context.Background(), queries); err != nil {
			t.Fatalf("Search() error = %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if calls != 2 {
			t.Errorf("API called %d times, want the cap of 2", calls)
		}
	})

	t.Run("API errors are skipped, not fatal", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := NewSearchClient("key", "cx", server.Client(), testSlogger(),
			WithSearchBaseURL(server.URL))
		links, err := c.Search(context.Background(), []string{"anything"})
		if err != nil {
			t.Fatalf("Search() error = %v, want nil", err)
		}
		if len(links) != 0 {
			t.Errorf("Search() = %v, want no links", links)
		}
	})
}

func TestCollector(t *testing.T) {
	t.Parallel()

	t.Run("targets only when sources disabled", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.UseSearch = false
		cfg.UseFeeds = false
		cfg.File = &config.File{Seeds: []string{"https://example.org/grants"}}

		c := NewCollector(cfg, testSlogger())
		result, err := c.Collect(context.Background())
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if len(result.URLs) != 1 || result.URLs[0] != "https://example.org/grants" {
			t.Errorf("Collect() = %v, want the configured seed only", result.URLs)
		}
		if result.FromSearch != 0 || result.FromFeeds != 0 {
			t.Errorf("source counts = %d/%d, want 0/0", result.FromSearch, result.FromFeeds)
		}
	})

	t.Run("feeds contribute and dedupe against targets", func(t *testing.T) {
		t.Parallel()
		feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<rss version="2.0"><channel>
<item><link>https://example.org/grants</link></item>
<item><link>https://example.org/new-grant</link></item>
</channel></rss>`)
		}))
		defer feed.Close()

		cfg := config.NewConfig()
		cfg.UseSearch = false
		cfg.UseFeeds = true
		cfg.Timeout = 5 * time.Second
		cfg.File = &config.File{
			Seeds: []string{"https://example.org/grants"},
			Feeds: []string{feed.URL},
		}

		c := NewCollector(cfg, testSlogger())
		result, err := c.Collect(context.Background())
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if len(result.URLs) != 2 {
			t.Fatalf("Collect() = %v, want 2 URLs", result.URLs)
		}
		if result.FromFeeds != 1 {
			t.Errorf("FromFeeds = %d, want 1 (duplicate collapsed)", result.FromFeeds)
		}
	})
}
