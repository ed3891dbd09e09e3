package analyzer

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ohack/grantfinder/internal/config"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	cfg := config.NewConfig()
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const grantPage = `<html><head>
<title>Community Technology Grant Program</title>
<meta name="description" content="Annual grants for nonprofits using technology for social good.">
</head><body>
<h1>Community Technology Grant Program</h1>
<p>Our foundation awards grants of $5,000 to $25,000 to nonprofit
organizations building open source software for underserved communities.
Eligible applicants must be registered 501(c)(3) organizations.
Application deadline: March 15, 2027. Remote participation welcome.</p>
<a href="/apply">Apply Now</a>
</body></html>`

const irrelevantPage = `<html><head><title>Best Pizza Recipes</title></head>
<body><p>How to make pizza dough at home with simple ingredients and a
hot oven. No special equipment required.</p></body></html>`

func TestAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("relevant page becomes a grant", func(t *testing.T) {
		t.Parallel()
		a := newTestAnalyzer(t)
		grant, err := a.Analyze("https://example.org/grants/community-tech", grantPage)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if grant == nil {
			t.Fatal("Analyze() = nil, want a grant")
		}

		if grant.Title != "Community Technology Grant Program" {
			t.Errorf("Title = %q", grant.Title)
		}
		if !strings.Contains(grant.Description, "Annual grants") {
			t.Errorf("Description = %q, want meta description", grant.Description)
		}
		if grant.FundingAmount == nil {
			t.Fatal("FundingAmount = nil, want extracted range")
		}
		if grant.FundingAmount.Amount != 5000 || grant.FundingAmount.RangeMax != 25000 {
			t.Errorf("FundingAmount = %+v, want 5000-25000", grant.FundingAmount)
		}
		if grant.Deadline != "march 15, 2027" {
			t.Errorf("Deadline = %q, want the raw deadline text", grant.Deadline)
		}
		if grant.ApplicationURL != "https://example.org/apply" {
			t.Errorf("ApplicationURL = %q", grant.ApplicationURL)
		}
		if !strings.Contains(grant.Eligibility, "501(c)(3)") {
			t.Errorf("Eligibility = %q, want the eligibility sentence", grant.Eligibility)
		}
		if grant.RemoteParticipation == nil || !*grant.RemoteParticipation {
			t.Error("RemoteParticipation = nil or false, want true")
		}
		if grant.RelevanceScore < 0.5 {
			t.Errorf("RelevanceScore = %v, want a confident score", grant.RelevanceScore)
		}
	})

	t.Run("irrelevant page returns nil", func(t *testing.T) {
		t.Parallel()
		a := newTestAnalyzer(t)
		grant, err := a.Analyze("https://example.org/recipes", irrelevantPage)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if grant != nil {
			t.Errorf("Analyze() = %+v, want nil for irrelevant page", grant)
		}
	})

	t.Run("grant writing services are penalized", func(t *testing.T) {
		t.Parallel()
		a := newTestAnalyzer(t)
		page := `<html><head><title>Grant Writing Services</title></head><body>
<p>Hire a grant writer today! Our grant writing services help nonprofits
win funding. Grant writing course available with certification.</p>
</body></html>`
		grant, err := a.Analyze("https://example.org/services", page)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if grant != nil {
			t.Errorf("Analyze() = %+v, want nil for a services page", grant)
		}
	})
}

func TestExtractFunding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		wantNil    bool
		wantAmount float64
		wantMax    float64
	}{
		{"range", "awards of $5,000 to $25,000 available", false, 5000, 25000},
		{"range with dash", "funding: $1,000 - $10,000", false, 1000, 10000},
		{"millions", "a $2.5 million initiative", false, 2_500_000, 0},
		{"single amount", "grants up to $50,000 each year", false, 50000, 0},
		{"below floor", "registration costs $25", true, 0, 0},
		{"no amount", "generous funding for nonprofits", true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extractFunding(tt.text)
			if tt.wantNil {
				if got != nil {
					t.Errorf("extractFunding(%q) = %+v, want nil", tt.text, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("extractFunding(%q) = nil, want amount", tt.text)
			}
			if got.Amount != tt.wantAmount || got.RangeMax != tt.wantMax {
				t.Errorf("extractFunding(%q) = %+v, want amount %v max %v",
					tt.text, got, tt.wantAmount, tt.wantMax)
			}
		})
	}
}

func TestExtractDeadline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"month day year", "application deadline: march 15, 2027 at noon", "march 15, 2027"},
		{"slash date", "apply by 03/15/2027 to qualify", "03/15/2027"},
		{"iso date", "applications close: submit by 2027-03-15", "2027-03-15"},
		{"no deadline", "rolling applications accepted", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractDeadline(tt.text); got != tt.want {
				t.Errorf("extractDeadline(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatchSectors(t *testing.T) {
	t.Parallel()

	text := "supporting education programs and mental health services for youth"
	got := matchSectors(text)
	want := []string{"education", "health", "youth"}
	if len(got) != len(want) {
		t.Fatalf("matchSectors() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("matchSectors()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
