package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/ohack/grantfinder/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	report.SortGrants()

	md := markdown.NewMarkdown(w.output)
	w.writeHeader(md, report)
	w.writeStats(md, report)
	w.writeSectorChart(md, report)
	w.writeGrants(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Grant Finder Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(1e9).String()},
			{"Seeds", strconv.Itoa(len(report.Seeds))},
			{"Grants Found", strconv.Itoa(len(report.Grants))},
		},
	})
	md.PlainText("")

	switch {
	case report.ErrorMessage != "":
		md.Warningf("Run finished with an error: %s", report.ErrorMessage)
	case len(report.Grants) == 0:
		md.Note("No grants cleared the relevance threshold in this run.")
	default:
		md.Tip(fmt.Sprintf("%d funding opportunities found.", len(report.Grants)))
	}
	md.PlainText("")
}

// writeStats writes the crawl statistics section.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, report *model.RunReport) {
	stats := report.Stats
	md.H2("Crawl Statistics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"URLs Found", strconv.Itoa(stats.URLsFound)},
			{"URLs Crawled", strconv.Itoa(stats.URLsCrawled)},
			{"URLs Failed", strconv.Itoa(stats.URLsFailed)},
			{"Grants Found", strconv.Itoa(stats.ResultsFound)},
		},
	})
	md.PlainText("")
}

// writeSectorChart writes a mermaid pie chart of grants per sector.
func (w *MarkdownWriter) writeSectorChart(md *markdown.Markdown, report *model.RunReport) {
	counts := make(map[string]int)
	var order []string
	for _, grant := range report.Grants {
		for _, sector := range grant.NonprofitSectors {
			if counts[sector] == 0 {
				order = append(order, sector)
			}
			counts[sector]++
		}
	}
	if len(order) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Grants by Nonprofit Sector"),
		piechart.WithShowData(true),
	)
	for _, sector := range order {
		chart.LabelAndIntValue(titleCaser.String(sector), uint64(counts[sector]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeGrants writes one section per grant, best score first.
func (w *MarkdownWriter) writeGrants(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Grants) == 0 {
		return
	}

	md.H2("Grants")
	md.PlainText("")
	for _, grant := range report.Grants {
		md.H3(grant.Title)
		md.PlainText("")

		rows := [][]string{
			{"Source", grant.SourceURL},
			{"Relevance", strconv.FormatFloat(grant.RelevanceScore, 'f', 2, 64)},
		}
		if grant.FundingAmount != nil {
			rows = append(rows, []string{"Funding", grant.FundingAmount.String()})
		}
		if grant.Deadline != "" {
			rows = append(rows, []string{"Deadline", grant.Deadline})
		}
		if grant.ApplicationURL != "" {
			rows = append(rows, []string{"Apply", grant.ApplicationURL})
		}
		if len(grant.NonprofitSectors) > 0 {
			rows = append(rows, []string{"Sectors", formatLabels(grant.NonprofitSectors)})
		}
		if len(grant.TechFocus) > 0 {
			rows = append(rows, []string{"Tech Focus", formatLabels(grant.TechFocus)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows:   rows,
		})

		if grant.Description != "" {
			md.PlainText("")
			md.PlainText(grant.Description)
		}
		if grant.Eligibility != "" {
			md.PlainText("")
			md.BulletList("Eligibility: " + grant.Eligibility)
		}
		md.PlainText("")
	}
}
