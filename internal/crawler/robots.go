package crawler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// maxRobotsSize caps how much of a robots.txt body is read.
const maxRobotsSize = 512 * 1024

// Robots fetches, parses, and caches robots.txt rules per domain.
//
// The parser is deliberately permissive: it honors User-agent groups and
// Disallow prefix rules only. Allow directives, Crawl-delay, and wildcards
// inside paths are ignored. Any failure to fetch or read a robots.txt
// (network error, non-200 status) fails open and the domain is treated as
// fully allowed. Rules are fetched once per domain and cached for the
// lifetime of the Robots value, which the crawler recreates each run.
type Robots struct {
	client  *http.Client
	respect bool
	logger  *slog.Logger

	mu    sync.Mutex
	once  map[string]*sync.Once
	rules map[string]robotsRules
}

// robotsRules maps a lowercased user-agent token to its disallowed path
// prefixes.
type robotsRules map[string][]string

// NewRobots returns a robots checker. With respect false every URL is
// allowed and nothing is fetched.
func NewRobots(client *http.Client, respect bool, logger *slog.Logger) *Robots {
	return &Robots{
		client:  client,
		respect: respect,
		logger:  logger,
		once:    make(map[string]*sync.Once),
		rules:   make(map[string]robotsRules),
	}
}

// Allowed reports whether the given user agent may fetch rawURL under the
// domain's robots.txt rules.
//
// Agent groups match by substring: a group applies when its User-agent
// token appears anywhere in the lowercased user agent string, with "*"
// applying to everyone. A path is denied when it has any matching group's
// Disallow value as a prefix.
func (r *Robots) Allowed(ctx context.Context, rawURL, userAgent string) bool {
	if !r.respect {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return true
	}
	rules := r.rulesFor(ctx, u)

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	agent := strings.ToLower(userAgent)
	for token, prefixes := range rules {
		if token != "*" && !strings.Contains(agent, token) {
			continue
		}
		for _, prefix := range prefixes {
			if prefix != "" && strings.HasPrefix(path, prefix) {
				return false
			}
		}
	}
	return true
}

// rulesFor returns the domain's parsed rules, fetching them exactly once
// even under concurrent callers.
func (r *Robots) rulesFor(ctx context.Context, u *url.URL) robotsRules {
	domain := u.Hostname()

	r.mu.Lock()
	once, ok := r.once[domain]
	if !ok {
		once = &sync.Once{}
		r.once[domain] = once
	}
	r.mu.Unlock()

	once.Do(func() {
		rules := r.fetch(ctx, u)
		r.mu.Lock()
		r.rules[domain] = rules
		r.mu.Unlock()
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rules[domain]
}

// fetch downloads and parses the domain's robots.txt. Any failure yields
// empty rules so the domain fails open.
func (r *Robots) fetch(ctx context.Context, u *url.URL) robotsRules {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return robotsRules{}
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("robots.txt unreachable, allowing all", "domain", u.Hostname(), "error", err)
		return robotsRules{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return robotsRules{}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return robotsRules{}
	}
	return parseRobots(string(body))
}

// parseRobots reads User-agent and Disallow lines into per-agent rules.
// Consecutive User-agent lines share the Disallow rules that follow them.
func parseRobots(body string) robotsRules {
	rules := make(robotsRules)
	var agents []string
	sawRule := false

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			if sawRule {
				agents = agents[:0]
				sawRule = false
			}
			agents = append(agents, strings.ToLower(value))
		case "disallow":
			sawRule = true
			if value == "" {
				continue
			}
			for _, agent := range agents {
				rules[agent] = append(rules[agent], value)
			}
		}
	}
	return rules
}
