// Package report renders run reports in several formats: a plain-text
// summary for terminals, JSON for tool integration, and Markdown for
// sharing with a team. All writers implement the same Writer interface
// so the output format is a runtime choice.
package report
