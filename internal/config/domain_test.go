package config

import (
	"testing"
	"time"
)

// TestPolicyTableLookup tests domain policy resolution.
func TestPolicyTableLookup(t *testing.T) {
	t.Parallel()

	table := NewPolicyTable(map[string]*DomainPolicy{
		"example.org":       {MaxPages: 10},
		"deep.example.org":  {MaxPages: 20},
		"archive.gov":       {DepthPriority: true},
		"UPPER.example.com": {MaxPages: 5},
	})

	t.Run("exact match", func(t *testing.T) {
		t.Parallel()
		p := table.Lookup("example.org")
		if p == nil || p.MaxPages != 10 {
			t.Errorf("expected example.org policy, got %+v", p)
		}
	})

	t.Run("subdomain inherits parent", func(t *testing.T) {
		t.Parallel()
		p := table.Lookup("grants.example.org")
		if p == nil || p.MaxPages != 10 {
			t.Errorf("expected inherited example.org policy, got %+v", p)
		}
	})

	t.Run("specific subdomain entry wins over parent", func(t *testing.T) {
		t.Parallel()
		p := table.Lookup("deep.example.org")
		if p == nil || p.MaxPages != 20 {
			t.Errorf("expected deep.example.org policy, got %+v", p)
		}
	})

	t.Run("nested subdomain walks up to parent", func(t *testing.T) {
		t.Parallel()
		p := table.Lookup("a.b.archive.gov")
		if p == nil || !p.DepthPriority {
			t.Errorf("expected archive.gov policy, got %+v", p)
		}
	})

	t.Run("unknown domain returns nil", func(t *testing.T) {
		t.Parallel()
		if p := table.Lookup("other.net"); p != nil {
			t.Errorf("expected nil for unknown domain, got %+v", p)
		}
	})

	t.Run("bare TLD never matches", func(t *testing.T) {
		t.Parallel()
		if p := table.Lookup("org"); p != nil {
			t.Errorf("expected nil for bare TLD, got %+v", p)
		}
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		t.Parallel()
		if p := table.Lookup("EXAMPLE.ORG"); p == nil || p.MaxPages != 10 {
			t.Errorf("expected case-insensitive match, got %+v", p)
		}
	})

	t.Run("repeated lookups return the same policy", func(t *testing.T) {
		t.Parallel()
		first := table.Lookup("cached.example.org")
		second := table.Lookup("cached.example.org")
		if first != second {
			t.Error("expected cached resolution to return the same policy")
		}
	})
}

// TestPolicyTableNilMap tests construction over a nil policy map.
func TestPolicyTableNilMap(t *testing.T) {
	t.Parallel()

	table := NewPolicyTable(nil)
	if table.Lookup("example.org") != nil {
		t.Error("expected nil policy from empty table")
	}
	if len(table.Domains()) != 0 {
		t.Error("expected no configured domains")
	}
}

// TestEffectiveMaxDepth tests the depth override fallback.
func TestEffectiveMaxDepth(t *testing.T) {
	t.Parallel()

	t.Run("nil policy uses global", func(t *testing.T) {
		t.Parallel()
		var p *DomainPolicy
		if got := p.EffectiveMaxDepth(3); got != 3 {
			t.Errorf("expected 3, got %d", got)
		}
	})

	t.Run("zero depth uses global", func(t *testing.T) {
		t.Parallel()
		p := &DomainPolicy{}
		if got := p.EffectiveMaxDepth(3); got != 3 {
			t.Errorf("expected 3, got %d", got)
		}
	})

	t.Run("policy depth wins", func(t *testing.T) {
		t.Parallel()
		p := &DomainPolicy{MaxDepth: 5}
		if got := p.EffectiveMaxDepth(3); got != 5 {
			t.Errorf("expected 5, got %d", got)
		}
	})
}

// TestDelayRange tests the policy delay conversion.
func TestDelayRange(t *testing.T) {
	t.Parallel()

	t.Run("converts seconds to durations", func(t *testing.T) {
		t.Parallel()
		p := &DomainPolicy{MinDelaySeconds: 0.5, MaxDelaySeconds: 2}
		minDelay, maxDelay := p.DelayRange()
		if minDelay != 500*time.Millisecond {
			t.Errorf("expected 500ms, got %v", minDelay)
		}
		if maxDelay != 2*time.Second {
			t.Errorf("expected 2s, got %v", maxDelay)
		}
	})

	t.Run("unset range is zero", func(t *testing.T) {
		t.Parallel()
		p := &DomainPolicy{}
		minDelay, maxDelay := p.DelayRange()
		if minDelay != 0 || maxDelay != 0 {
			t.Errorf("expected zero range, got %v - %v", minDelay, maxDelay)
		}
	})
}
