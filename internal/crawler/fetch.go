package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

// Fetch failure classifications. Callers distinguish them with errors.Is.
var (
	// ErrNotFound indicates the server returned 404 for the URL.
	ErrNotFound = errors.New("page not found")

	// ErrNotHTML indicates the response was not an HTML document.
	ErrNotHTML = errors.New("response is not HTML")

	// ErrContentTooLarge indicates the response body exceeds the
	// configured size cap.
	ErrContentTooLarge = errors.New("response body too large")

	// ErrDisallowedByRobots indicates robots.txt denies the URL to our
	// user agent.
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")
)

// fetcher downloads pages with retries, backoff, and User-Agent rotation.
type fetcher struct {
	client           *http.Client
	userAgents       []string
	maxAttempts      int
	startBackoff     time.Duration
	maxContentLength int64
	logger           *slog.Logger
}

func newFetcher(client *http.Client, userAgents []string, maxAttempts int, startBackoff time.Duration, maxContentLength int64, logger *slog.Logger) *fetcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &fetcher{
		client:           client,
		userAgents:       userAgents,
		maxAttempts:      maxAttempts,
		startBackoff:     startBackoff,
		maxContentLength: maxContentLength,
		logger:           logger,
	}
}

// userAgent picks a random agent string for this request.
func (f *fetcher) userAgent() string {
	if len(f.userAgents) == 0 {
		return "Mozilla/5.0 (compatible; grantfinder/1.0)"
	}
	return f.userAgents[rand.IntN(len(f.userAgents))]
}

// fetch downloads the URL and returns its HTML body.
//
// Network errors and 5xx responses are retried with exponential backoff
// up to the configured attempt count. 404, non-HTML content types, and
// oversized bodies are permanent and returned immediately as their
// sentinel errors.
func (f *fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	var lastErr error
	backoff := f.startBackoff

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
		}

		body, retryable, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err
		f.logger.Debug("fetch attempt failed",
			"url", rawURL, "attempt", attempt, "error", err)
	}
	return "", lastErr
}

// fetchOnce performs a single request. The second return value reports
// whether the failure is worth retrying.
func (f *fetcher) fetchOnce(ctx context.Context, rawURL string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return "", false, ErrNotFound
	case resp.StatusCode >= 500:
		return "", true, fmt.Errorf("server error: status %d", resp.StatusCode)
	default:
		return "", false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return "", false, fmt.Errorf("%w: %s", ErrNotHTML, contentType)
	}
	if resp.ContentLength > f.maxContentLength {
		return "", false, fmt.Errorf("%w: %d bytes", ErrContentTooLarge, resp.ContentLength)
	}

	// ContentLength is often -1; enforce the cap while reading too.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxContentLength+1))
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, err
	}
	if int64(len(body)) > f.maxContentLength {
		return "", false, fmt.Errorf("%w: over %d bytes", ErrContentTooLarge, f.maxContentLength)
	}
	return string(body), false, nil
}
