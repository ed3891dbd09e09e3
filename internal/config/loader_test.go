package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadConfigFile tests configuration file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads full configuration", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".grantfinder")
		content := `
seeds:
  - https://example.org/grants
queries:
  - nonprofit technology grants
feeds:
  - https://example.org/feed.xml
blocklist:
  - /press/
domains:
  example.org:
    maxPages: 25
    maxDepth: 3
    depthPriority: true
    contentPatterns:
      - /grants/
    minDelaySeconds: 1
    maxDelaySeconds: 2
keywords:
  mission:
    - civic tech
  signals:
    - request for proposals
notify:
  to: team@example.org
  smtpServer: smtp.example.org
  smtpPort: 587
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}

		if len(f.Seeds) != 1 || f.Seeds[0] != "https://example.org/grants" {
			t.Errorf("unexpected seeds %v", f.Seeds)
		}
		if len(f.Queries) != 1 {
			t.Errorf("expected 1 query, got %d", len(f.Queries))
		}
		if len(f.Feeds) != 1 {
			t.Errorf("expected 1 feed, got %d", len(f.Feeds))
		}
		if len(f.Blocklist) != 1 || f.Blocklist[0] != "/press/" {
			t.Errorf("unexpected blocklist %v", f.Blocklist)
		}

		policy := f.Domains["example.org"]
		if policy == nil {
			t.Fatal("expected example.org policy")
		}
		if policy.MaxPages != 25 || policy.MaxDepth != 3 || !policy.DepthPriority {
			t.Errorf("unexpected policy %+v", policy)
		}
		if len(policy.ContentPatterns) != 1 || policy.ContentPatterns[0] != "/grants/" {
			t.Errorf("unexpected content patterns %v", policy.ContentPatterns)
		}

		if len(f.Keywords.Mission) != 1 || f.Keywords.Mission[0] != "civic tech" {
			t.Errorf("unexpected mission keywords %v", f.Keywords.Mission)
		}
		if f.Notify.To != "team@example.org" || f.Notify.SMTPPort != 587 {
			t.Errorf("unexpected notify settings %+v", f.Notify)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("{not yaml["), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes empty domains map", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".grantfinder")
		if err := os.WriteFile(path, []byte("seeds:\n  - https://example.org\n"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}
		if f.Domains == nil {
			t.Error("expected non-nil domains map")
		}
	})
}

// TestFindConfigFile tests the configuration search order.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path when it exists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("seeds: []\n"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for missing explicit path", func(t *testing.T) {
		got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestFilePolicyTable tests lazy policy table construction.
func TestFilePolicyTable(t *testing.T) {
	t.Parallel()

	f := &File{
		Domains: map[string]*DomainPolicy{
			"example.org": {MaxPages: 10},
		},
	}

	first := f.PolicyTable()
	second := f.PolicyTable()
	if first != second {
		t.Error("expected PolicyTable to be built once and reused")
	}
	if first.Lookup("example.org") == nil {
		t.Error("expected example.org policy in table")
	}
}
