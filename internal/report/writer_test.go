package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ohack/grantfinder/internal/model"
)

func sampleReport() *model.RunReport {
	report := model.NewRunReport()
	report.StartedAt = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	report.FinishedAt = report.StartedAt.Add(3 * time.Minute)
	report.Seeds = []string{"https://example.org/grants"}
	report.Stats = model.CrawlStats{
		URLsFound:    40,
		URLsCrawled:  35,
		URLsFailed:   5,
		ResultsFound: 2,
	}

	low := model.NewGrant("https://example.org/grants/small")
	low.Title = "Small Grant"
	low.RelevanceScore = 0.5

	high := model.NewGrant("https://example.org/grants/big")
	high.Title = "Big Grant"
	high.RelevanceScore = 0.9
	high.FundingAmount = &model.FundingAmount{Amount: 10000, Currency: "USD"}
	high.Deadline = "march 15, 2027"
	high.NonprofitSectors = []string{"food security", "education"}
	high.TechFocus = []string{"open source"}
	high.ApplicationURL = "https://example.org/apply"
	high.Eligibility = "Registered 501(c)(3) organizations."

	report.Grants = []*model.Grant{low, high}
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders grants best first", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		out := buf.String()
		big := strings.Index(out, "Big Grant")
		small := strings.Index(out, "Small Grant")
		if big < 0 || small < 0 {
			t.Fatalf("output missing grants:\n%s", out)
		}
		if big > small {
			t.Error("higher-scored grant printed after lower-scored one")
		}
		if !strings.Contains(out, "Food Security, Education") {
			t.Errorf("output missing title-cased sectors:\n%s", out)
		}
	})

	t.Run("max grants limits output", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithMaxGrants(1))
		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if strings.Contains(buf.String(), "Small Grant") {
			t.Error("output contains grant beyond the max")
		}
	})

	t.Run("verbose adds application details", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))
		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "https://example.org/apply") {
			t.Error("verbose output missing application URL")
		}
	})

	t.Run("empty report says so", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		if _, err := w.Write(model.NewRunReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "No grants found") {
			t.Errorf("empty report output = %q", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("output is valid JSON", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())
		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		var decoded model.RunReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded.Grants) != 2 {
			t.Errorf("decoded %d grants, want 2", len(decoded.Grants))
		}
		if decoded.Grants[0].Title != "Big Grant" {
			t.Errorf("Grants[0] = %q, want best grant first", decoded.Grants[0].Title)
		}
	})

	t.Run("compact without options", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		// Compact output is a single line plus trailing newline.
		if got := strings.Count(strings.TrimRight(buf.String(), "\n"), "\n"); got != 0 {
			t.Errorf("compact output spans %d extra lines, want 0", got)
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)
	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Grant Finder Report",
		"## Crawl Statistics",
		"### Big Grant",
		"Food Security, Education",
		"pie",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
	if _, err := mw.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("MultiWriter left a destination empty")
	}
}
