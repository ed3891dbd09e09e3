package crawler

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/ohack/grantfinder/internal/config"
)

// Task is a unit of crawl work: a URL and the link depth it was found at.
// Seeds start at depth 0.
type Task struct {
	// URL is the absolute, normalized page URL.
	URL string
	// Depth is the number of link hops from a seed.
	Depth int
}

// QueueManager holds one queue per policy-managed domain and selects the
// next task across all of them by priority.
//
// Priority works in two layers. Within a domain, ordering follows the
// domain's policy: depth-priority domains prefer URLs with more path
// segments (deeper pages first), then content-pattern score; all other
// domains order by content-pattern score alone, where each configured
// pattern appearing as a substring of the URL adds one point. Across
// domains, the best candidate of each domain competes on pattern score;
// ties go to the lexicographically smallest domain, and within a domain
// equal scores keep arrival order. The selection is fully deterministic
// for a given queue state.
//
// Page budgets (MaxPages) are enforced both at enqueue and at dequeue, so
// a budget raced by concurrent workers can never be exceeded.
type QueueManager struct {
	policies *config.PolicyTable
	maxDepth int

	mu      sync.Mutex
	queues  map[string][]Task
	visited map[string]map[string]struct{}
	counts  map[string]int
}

// NewQueueManager returns an empty manager. The policy table decides which
// domains are managed; maxDepth is the global depth cap used when a policy
// does not set its own.
func NewQueueManager(policies *config.PolicyTable, maxDepth int) *QueueManager {
	return &QueueManager{
		policies: policies,
		maxDepth: maxDepth,
		queues:   make(map[string][]Task),
		visited:  make(map[string]map[string]struct{}),
		counts:   make(map[string]int),
	}
}

// Add enqueues rawURL at the given depth if the owning domain's policy
// admits it. It reports whether the task was enqueued. A URL is rejected
// when it was already seen for its domain, matches the domain's URL
// blocklist, exceeds the domain's depth cap, or the domain's page budget
// is exhausted.
func (m *QueueManager) Add(rawURL string, depth int) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	domain := u.Hostname()
	policy := m.policies.Lookup(domain)
	if policy == nil {
		return false
	}
	if depth > policy.EffectiveMaxDepth(m.maxDepth) {
		return false
	}
	lower := strings.ToLower(rawURL)
	for _, pattern := range policy.URLBlocklist {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return false
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen, ok := m.visited[domain]
	if !ok {
		seen = make(map[string]struct{})
		m.visited[domain] = seen
	}
	if _, dup := seen[rawURL]; dup {
		return false
	}
	if policy.MaxPages > 0 && m.counts[domain] >= policy.MaxPages {
		return false
	}
	seen[rawURL] = struct{}{}
	m.queues[domain] = append(m.queues[domain], Task{URL: rawURL, Depth: depth})
	return true
}

// Next removes and returns the highest-priority task across all domain
// queues. It reports false when no dequeueable task remains. A domain
// whose page budget is exhausted has its leftover queue discarded: those
// tasks can never be dequeued, and their URLs are one-shot within the
// run, so holding them would only keep the manager non-empty forever.
func (m *QueueManager) Next() (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	domains := make([]string, 0, len(m.queues))
	for domain, queue := range m.queues {
		if len(queue) == 0 {
			continue
		}
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	bestDomain := ""
	bestIndex := -1
	bestScore := -1.0
	for _, domain := range domains {
		policy := m.policies.Lookup(domain)
		if policy != nil && policy.MaxPages > 0 && m.counts[domain] >= policy.MaxPages {
			delete(m.queues, domain)
			continue
		}
		idx := m.pickWithinDomain(domain, policy)
		score := patternScore(m.queues[domain][idx].URL, policy)
		if score > bestScore {
			bestDomain, bestIndex, bestScore = domain, idx, score
		}
	}
	if bestIndex < 0 {
		return Task{}, false
	}

	queue := m.queues[bestDomain]
	task := queue[bestIndex]
	m.queues[bestDomain] = append(queue[:bestIndex], queue[bestIndex+1:]...)
	m.counts[bestDomain]++
	return task, true
}

// pickWithinDomain returns the index of the domain's best task. Strictly
// better candidates replace the current pick, so equal candidates keep
// arrival order. Caller holds m.mu.
func (m *QueueManager) pickWithinDomain(domain string, policy *config.DomainPolicy) int {
	queue := m.queues[domain]
	best := 0
	for i := 1; i < len(queue); i++ {
		if m.taskLess(queue[best], queue[i], policy) {
			best = i
		}
	}
	return best
}

// taskLess reports whether b should be crawled before a under the
// domain's ordering policy.
func (m *QueueManager) taskLess(a, b Task, policy *config.DomainPolicy) bool {
	if policy != nil && policy.DepthPriority {
		da, db := pathSegments(a.URL), pathSegments(b.URL)
		if db != da {
			return db > da
		}
	}
	return patternScore(b.URL, policy) > patternScore(a.URL, policy)
}

// Empty reports whether no queued task remains in any domain.
func (m *QueueManager) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, queue := range m.queues {
		if len(queue) > 0 {
			return false
		}
	}
	return true
}

// Size returns the total number of queued tasks across all domains.
func (m *QueueManager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, queue := range m.queues {
		total += len(queue)
	}
	return total
}

// Queued returns the queued-task count per domain, for run statistics.
func (m *QueueManager) Queued() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.queues))
	for domain, queue := range m.queues {
		if len(queue) > 0 {
			out[domain] = len(queue)
		}
	}
	return out
}

// patternScore counts the policy's content patterns appearing as
// case-insensitive substrings of the URL.
func patternScore(rawURL string, policy *config.DomainPolicy) float64 {
	if policy == nil || len(policy.ContentPatterns) == 0 {
		return 0
	}
	lower := strings.ToLower(rawURL)
	score := 0.0
	for _, pattern := range policy.ContentPatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			score++
		}
	}
	return score
}

// pathSegments counts non-empty path segments of the URL.
func pathSegments(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	n := 0
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			n++
		}
	}
	return n
}
