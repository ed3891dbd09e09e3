package analyzer

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ohack/grantfinder/internal/config"
	"github.com/ohack/grantfinder/internal/model"
)

// Analyzer scores pages for grant relevance and extracts structured
// grant records from the ones that qualify.
//
// Design decision: We use goquery for extraction rather than walking the
// raw node tree because:
//  1. CSS selectors keep the extraction rules short and readable
//  2. Meta/OpenGraph lookups become one-liners
//  3. The crawler already did the cheap link pass; this is the rich pass
type Analyzer struct {
	minScore float64
	mission  []string
	signals  []string
	logger   *slog.Logger
}

// New builds an Analyzer from the run configuration. Keyword lists from
// the config file extend the built-in defaults.
func New(cfg *config.Config, logger *slog.Logger) *Analyzer {
	mission := append([]string{}, defaultMissionKeywords...)
	signals := append([]string{}, defaultGrantSignals...)
	if cfg.File != nil {
		mission = append(mission, cfg.File.Keywords.Mission...)
		signals = append(signals, cfg.File.Keywords.Signals...)
	}
	return &Analyzer{
		minScore: cfg.MinRelevanceScore,
		mission:  mission,
		signals:  signals,
		logger:   logger,
	}
}

// Process adapts Analyze to the crawler's processing callback signature.
func (a *Analyzer) Process(_ context.Context, pageURL, body string, _ int) (*model.Grant, error) {
	return a.Analyze(pageURL, body)
}

// Analyze scores the page and, if it clears the relevance threshold,
// returns a populated grant record. Irrelevant pages return (nil, nil).
func (a *Analyzer) Analyze(pageURL, body string) (*model.Grant, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	text := strings.ToLower(collapseSpace(doc.Text()))
	score := a.score(pageURL, text)
	if score < a.minScore {
		return nil, nil
	}

	grant := model.NewGrant(pageURL)
	grant.RelevanceScore = score
	grant.Title = extractTitle(doc)
	grant.Description = extractDescription(doc)
	grant.FundingAmount = extractFunding(text)
	grant.Deadline = extractDeadline(text)
	grant.ApplicationURL = extractApplicationURL(doc, pageURL)
	grant.Eligibility = extractEligibility(doc.Text())
	grant.TechFocus = matchKeywords(text, techSkillKeywords)
	grant.NonprofitSectors = matchSectors(text)
	grant.VolunteerComponent = containsAny(text, volunteerKeywords)
	grant.HackathonEligible = containsAny(text, hackathonKeywords)
	if containsAny(text, remoteKeywords) {
		remote := true
		grant.RemoteParticipation = &remote
	}

	if err := grant.Validate(); err != nil {
		a.logger.Debug("discarding invalid grant", "url", pageURL, "error", err)
		return nil, nil
	}
	return grant, nil
}

// score rates the page between 0 and 1.
//
// The formula is additive and clamped: unique funding signals carry the
// most weight, mission keywords refine it, and concrete evidence of an
// actual opportunity (a deadline, a dollar amount, a grant-ish URL)
// pushes borderline pages over the threshold. Pages that sell grant
// writing services rather than offer funding are penalized.
func (a *Analyzer) score(pageURL, text string) float64 {
	score := 0.0

	hits := 0.0
	for _, signal := range a.signals {
		if strings.Contains(text, signal) {
			hits += 0.1
		}
	}
	score += min(hits, 0.5)

	hits = 0
	for _, kw := range a.mission {
		if strings.Contains(text, strings.ToLower(kw)) {
			hits += 0.08
		}
	}
	score += min(hits, 0.32)

	if u, err := url.Parse(pageURL); err == nil {
		path := strings.ToLower(u.Path)
		if strings.Contains(path, "grant") || strings.Contains(path, "funding") {
			score += 0.1
		}
	}
	if extractDeadline(text) != "" {
		score += 0.08
	}
	if extractFunding(text) != nil {
		score += 0.1
	}
	for _, signal := range excludeSignals {
		if strings.Contains(text, signal) {
			score -= 0.4
			break
		}
	}

	return max(0, min(score, 1))
}

// matchKeywords returns the keywords present in the text, in list order.
func matchKeywords(text string, keywords []string) []string {
	var found []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// matchSectors returns the sector labels whose keywords appear in the
// text, in stable order.
func matchSectors(text string) []string {
	var found []string
	for _, sector := range sectorOrder {
		for _, kw := range sectorKeywords[sector] {
			if strings.Contains(text, kw) {
				found = append(found, sector)
				break
			}
		}
	}
	return found
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// collapseSpace squeezes runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
