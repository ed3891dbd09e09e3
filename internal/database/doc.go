// Package database provides SQLite-backed persistence for discovered
// grants and crawl run history. Grants are upserted by source URL so
// repeated runs refresh records instead of duplicating them.
package database
