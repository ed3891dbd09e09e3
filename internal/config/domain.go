package config

import (
	"strings"
	"sync"
	"time"
)

// DomainPolicy holds per-domain crawl overrides. A policy is immutable for
// the duration of a run; sites that need special handling (large archives,
// aggressive rate limits, noisy link graphs) get an entry in the config
// file, everything else uses the global defaults.
type DomainPolicy struct {
	// MaxPages caps the number of pages fetched from this domain in one
	// run. Zero means unlimited.
	MaxPages int `yaml:"maxPages,omitempty"`

	// MaxDepth overrides the global crawl depth for this domain.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// DepthPriority prefers deeper paths over shallow siblings when
	// selecting the next URL. Useful for archive-style sites where the
	// interesting pages are leaves, not index pages.
	DepthPriority bool `yaml:"depthPriority,omitempty"`

	// MaxConcurrent overrides the per-domain concurrency gate.
	MaxConcurrent int `yaml:"maxConcurrent,omitempty"`

	// MinDelaySeconds and MaxDelaySeconds override the randomized
	// politeness delay range.
	MinDelaySeconds float64 `yaml:"minDelaySeconds,omitempty"`
	MaxDelaySeconds float64 `yaml:"maxDelaySeconds,omitempty"`

	// ContentPatterns are URL substrings that raise a queued URL's
	// priority, e.g. "/grants/" or "/opportunities/".
	ContentPatterns []string `yaml:"contentPatterns,omitempty"`

	// URLBlocklist contains URL substrings never queued for this domain,
	// e.g. "/tag/" or "/author/".
	URLBlocklist []string `yaml:"urlBlocklist,omitempty"`

	// MinContentLength drops fetched pages shorter than this from
	// processing. Zero disables the check.
	MinContentLength int `yaml:"minContentLength,omitempty"`

	// RequireKeywords drops fetched pages containing none of these
	// case-insensitive keywords. Empty disables the check.
	RequireKeywords []string `yaml:"requireKeywords,omitempty"`
}

// DelayRange returns the policy's delay bounds, or (0,0) when the policy
// does not override the global range.
func (p *DomainPolicy) DelayRange() (time.Duration, time.Duration) {
	minDelay := time.Duration(p.MinDelaySeconds * float64(time.Second))
	maxDelay := time.Duration(p.MaxDelaySeconds * float64(time.Second))
	return minDelay, maxDelay
}

// EffectiveMaxDepth returns the policy's depth cap, falling back to the
// given global default when the policy does not set one.
func (p *DomainPolicy) EffectiveMaxDepth(globalMax int) int {
	if p == nil || p.MaxDepth == 0 {
		return globalMax
	}
	return p.MaxDepth
}

// PolicyTable resolves domain names to policies. Lookup tries the exact
// domain first and then walks up parent domains, so "us.example.org" falls
// back to an "example.org" entry. Resolution results (including misses) are
// cached because the same domains are looked up on every enqueue.
type PolicyTable struct {
	policies map[string]*DomainPolicy

	mu       sync.RWMutex
	resolved map[string]*DomainPolicy
}

// NewPolicyTable creates a PolicyTable over the given domain->policy map.
// The map is not copied; it must not be mutated after construction.
func NewPolicyTable(policies map[string]*DomainPolicy) *PolicyTable {
	if policies == nil {
		policies = make(map[string]*DomainPolicy)
	}
	return &PolicyTable{
		policies: policies,
		resolved: make(map[string]*DomainPolicy),
	}
}

// Lookup returns the policy for a domain, or nil when neither the domain
// nor any parent domain has an entry.
func (t *PolicyTable) Lookup(domain string) *DomainPolicy {
	domain = strings.ToLower(domain)

	t.mu.RLock()
	if p, ok := t.resolved[domain]; ok {
		t.mu.RUnlock()
		return p
	}
	t.mu.RUnlock()

	p := t.resolve(domain)

	t.mu.Lock()
	t.resolved[domain] = p
	t.mu.Unlock()

	return p
}

// Domains returns the configured domain names, for logging at run start.
func (t *PolicyTable) Domains() []string {
	domains := make([]string, 0, len(t.policies))
	for d := range t.policies {
		domains = append(domains, d)
	}
	return domains
}

func (t *PolicyTable) resolve(domain string) *DomainPolicy {
	if p, ok := t.policies[domain]; ok {
		return p
	}

	// Walk parent domains: sub.example.com -> example.com. The last two
	// labels are kept together; a bare TLD never matches.
	parts := strings.Split(domain, ".")
	for i := 1; i < len(parts)-1; i++ {
		parent := strings.Join(parts[i:], ".")
		if p, ok := t.policies[parent]; ok {
			return p
		}
	}

	return nil
}
