// Package log provides secure logging utilities for the grant finder.
//
// The crawler's configuration carries credentials (the search API key and
// the SMTP password), and pages themselves occasionally echo tokens back in
// URLs. The SecureHandler wraps any slog.Handler and masks attribute values
// that look like secrets before they reach the log output.
package log
