// Package seeds gathers the starting URLs for a crawl run. Seeds come
// from three sources: the configured target list, Google Programmable
// Search results for the configured queries, and links from grant RSS
// and Atom feeds. Search results are cached on disk because the API has
// a small daily quota.
package seeds
