// Package config provides configuration structures and utilities for the
// grant finder. It defines the crawl engine settings, per-domain crawl
// policies with parent-domain fallback, seed discovery settings, and report
// generation preferences.
package config
