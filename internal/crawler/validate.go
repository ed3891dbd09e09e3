package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ohack/grantfinder/internal/config"
)

// binaryExtensions matches file extensions the crawler never fetches.
var binaryExtensions = regexp.MustCompile(
	`(?i)\.(pdf|docx?|xlsx?|pptx?|zip|gz|tar|rar|7z|png|jpe?g|gif|svg|webp|ico|mp[34]|avi|mov|wmv|exe|dmg|iso)$`)

// validator screens URLs before they enter any queue.
type validator struct {
	blocklist []string
	policies  *config.PolicyTable
}

func newValidator(cfg *config.Config) *validator {
	blocklist := config.URLBlocklist
	if cfg.File != nil && len(cfg.File.Blocklist) > 0 {
		blocklist = append(append([]string{}, blocklist...), cfg.File.Blocklist...)
	}
	return &validator{blocklist: blocklist, policies: cfg.Policies()}
}

// valid reports whether the URL is crawlable: absolute http(s), not a
// binary asset, and clear of both the global blocklist and the owning
// domain's policy blocklist.
func (v *validator) valid(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Hostname() == "" {
		return false
	}
	if binaryExtensions.MatchString(u.Path) {
		return false
	}
	lower := strings.ToLower(rawURL)
	for _, pattern := range v.blocklist {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return false
		}
	}
	if policy := v.policies.Lookup(u.Hostname()); policy != nil {
		for _, pattern := range policy.URLBlocklist {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return false
			}
		}
	}
	return true
}

// normalizeURL canonicalizes a URL for deduplication: lowercased scheme
// and host, fragment dropped, and an explicit "/" path for bare hosts.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
