// Package analyzer turns crawled HTML pages into structured grant
// records. It scores each page for relevance against mission keywords
// and funding signals, and extracts the grant's title, description,
// funding amount, deadline, eligibility, and application link.
package analyzer
