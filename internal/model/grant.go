package model

import (
	"fmt"
	"net/url"
	"time"
)

// FundingAmount holds a parsed award amount. Amounts are frequently
// published as ranges ("$10,000 - $50,000"), so RangeMax is optional.
type FundingAmount struct {
	// Amount is the award amount, or the lower bound of a range.
	Amount float64 `json:"amount"`

	// Currency is an ISO currency code. Extraction only recognizes USD.
	Currency string `json:"currency"`

	// RangeMax is the upper bound when the amount is a range, else zero.
	RangeMax float64 `json:"range_max,omitempty"`
}

// String renders the amount for reports, e.g. "USD 10000.00 - 50000.00".
func (f *FundingAmount) String() string {
	if f.RangeMax > 0 {
		return fmt.Sprintf("%s %.2f - %.2f", f.Currency, f.Amount, f.RangeMax)
	}
	return fmt.Sprintf("%s %.2f", f.Currency, f.Amount)
}

// Grant is a funding opportunity extracted from a crawled page.
type Grant struct {
	// Title is the opportunity title, taken from the page's h1, og:title,
	// or title tag in that order.
	Title string `json:"title"`

	// Description is the page's meta description or first paragraph.
	Description string `json:"description"`

	// SourceURL is the page the grant was found on.
	SourceURL string `json:"source_url"`

	// SourceName is the hostname of SourceURL.
	SourceName string `json:"source_name"`

	// FundingAmount is the parsed award amount, nil when none was found.
	FundingAmount *FundingAmount `json:"funding_amount,omitempty"`

	// Deadline is the application deadline as published, not normalized:
	// sites write dates too many ways to parse reliably, and the report
	// reader wants the original wording anyway.
	Deadline string `json:"deadline,omitempty"`

	// ApplicationURL points at the application form when one was linked.
	ApplicationURL string `json:"application_url,omitempty"`

	// Eligibility is the first eligibility sentence found on the page.
	Eligibility string `json:"eligibility,omitempty"`

	// TechFocus lists technology areas mentioned on the page.
	TechFocus []string `json:"tech_focus,omitempty"`

	// NonprofitSectors lists nonprofit sectors mentioned on the page.
	NonprofitSectors []string `json:"nonprofit_sectors,omitempty"`

	// VolunteerComponent reports whether the page mentions skills-based
	// volunteering.
	VolunteerComponent bool `json:"volunteer_component"`

	// HackathonEligible reports whether prototype/early-stage projects
	// appear to qualify. Defaults to true absent explicit negative signals.
	HackathonEligible bool `json:"hackathon_eligible"`

	// RemoteParticipation is nil when the page says nothing either way.
	RemoteParticipation *bool `json:"remote_participation,omitempty"`

	// RelevanceScore is the analyzer's score in [0,1].
	RelevanceScore float64 `json:"relevance_score"`

	// FoundAt is when the page was processed.
	FoundAt time.Time `json:"found_at"`
}

// NewGrant creates a Grant for the given source URL with the source name
// derived from its hostname and FoundAt stamped to now.
func NewGrant(sourceURL string) *Grant {
	g := &Grant{
		SourceURL:         sourceURL,
		HackathonEligible: true,
		FoundAt:           time.Now(),
	}
	if u, err := url.Parse(sourceURL); err == nil {
		g.SourceName = u.Hostname()
	}
	return g
}

// Validate reports whether the grant is well-formed enough to persist.
func (g *Grant) Validate() error {
	if g.Title == "" {
		return fmt.Errorf("grant from %s has no title", g.SourceURL)
	}
	if g.SourceURL == "" {
		return fmt.Errorf("grant %q has no source URL", g.Title)
	}
	if g.RelevanceScore < 0 || g.RelevanceScore > 1 {
		return fmt.Errorf("grant %q has relevance score %f outside [0,1]", g.Title, g.RelevanceScore)
	}
	return nil
}
