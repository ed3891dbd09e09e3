// Package notify sends run summaries by email. Only grants above the
// high-relevance threshold appear in the message, so the recipient sees
// the opportunities worth acting on rather than the full crawl output.
package notify
