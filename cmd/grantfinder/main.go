// Package main provides the entry point for the grantfinder CLI.
//
// grantfinder discovers funding opportunities for nonprofit technology
// projects. It crawls foundation and government grant sites, scores
// pages for relevance, and reports the opportunities it finds.
//
// Usage:
//
//	grantfinder find
//	grantfinder find https://example.org/grants
//
// See --help for all available options.
package main

// main is the entry point for grantfinder.
func main() {
	Execute()
}
