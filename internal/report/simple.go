package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ohack/grantfinder/internal/model"
)

// titleCaser renders sector and focus labels for display
// ("food security" -> "Food Security").
var titleCaser = cases.Title(language.English)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// maxGrants limits how many grants are printed. 0 means all.
	maxGrants int

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithMaxGrants limits how many grants the writer prints.
func WithMaxGrants(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.maxGrants = n
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	report.SortGrants()

	var sb strings.Builder
	w.writeHeader(&sb, report)
	w.writeStats(&sb, report)
	w.writeGrants(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("=====================================\n")
	sb.WriteString(" Grant Finder Report\n")
	sb.WriteString("=====================================\n")
	fmt.Fprintf(sb, "Run started:  %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:     %s\n", report.Duration().Round(1e9))
	fmt.Fprintf(sb, "Seeds:        %d (search: %d, feeds: %d)\n",
		len(report.Seeds), report.SeedsFromSearch, report.SeedsFromFeeds)
	if report.ErrorMessage != "" {
		fmt.Fprintf(sb, "Error:        %s\n", report.ErrorMessage)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeStats(sb *strings.Builder, report *model.RunReport) {
	stats := report.Stats
	sb.WriteString("Crawl Statistics\n")
	sb.WriteString("----------------\n")
	fmt.Fprintf(sb, "URLs found:    %d\n", stats.URLsFound)
	fmt.Fprintf(sb, "URLs crawled:  %d\n", stats.URLsCrawled)
	fmt.Fprintf(sb, "URLs failed:   %d\n", stats.URLsFailed)
	fmt.Fprintf(sb, "Grants found:  %d\n", stats.ResultsFound)
	sb.WriteString("\n")

	if w.verbose && len(stats.Domains) > 0 {
		sb.WriteString("Per-domain breakdown:\n")
		for domain, ds := range stats.Domains {
			fmt.Fprintf(sb, "  %-40s crawled=%d failed=%d queued=%d\n",
				domain, ds.Crawled, ds.Failed, ds.Queued)
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeGrants(sb *strings.Builder, report *model.RunReport) {
	if len(report.Grants) == 0 {
		sb.WriteString("No grants found in this run.\n")
		return
	}

	grants := report.Grants
	if w.maxGrants > 0 && len(grants) > w.maxGrants {
		grants = grants[:w.maxGrants]
	}

	fmt.Fprintf(sb, "Grants (%d)\n", len(report.Grants))
	sb.WriteString("----------\n")
	for i, grant := range grants {
		fmt.Fprintf(sb, "%d. %s (score %.2f)\n", i+1, grant.Title, grant.RelevanceScore)
		fmt.Fprintf(sb, "   Source: %s\n", grant.SourceURL)
		if grant.FundingAmount != nil {
			fmt.Fprintf(sb, "   Funding: %s\n", grant.FundingAmount.String())
		}
		if grant.Deadline != "" {
			fmt.Fprintf(sb, "   Deadline: %s\n", grant.Deadline)
		}
		if len(grant.NonprofitSectors) > 0 {
			fmt.Fprintf(sb, "   Sectors: %s\n", formatLabels(grant.NonprofitSectors))
		}
		if w.verbose {
			if grant.ApplicationURL != "" {
				fmt.Fprintf(sb, "   Apply: %s\n", grant.ApplicationURL)
			}
			if grant.Eligibility != "" {
				fmt.Fprintf(sb, "   Eligibility: %s\n", grant.Eligibility)
			}
			if len(grant.TechFocus) > 0 {
				fmt.Fprintf(sb, "   Tech focus: %s\n", formatLabels(grant.TechFocus))
			}
		}
		sb.WriteString("\n")
	}
}

// formatLabels title-cases and joins display labels.
func formatLabels(labels []string) string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i] = titleCaser.String(label)
	}
	return strings.Join(out, ", ")
}
