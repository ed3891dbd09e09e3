// Package pipeline orchestrates a full finder run as an ordered series
// of steps: collect seeds, crawl and analyze, persist results, write
// reports, send notifications. Steps share a RunReport that accumulates
// everything the run produced.
package pipeline
