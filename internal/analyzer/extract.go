package analyzer

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ohack/grantfinder/internal/model"
)

// minFundingAmount filters out dollar figures that cannot be a grant:
// page prices, fees, and similar noise.
const minFundingAmount = 100

var (
	fundingRangeRe   = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)\s?(?:-|–|to)\s?\$?\s?([\d,]+(?:\.\d+)?)`)
	fundingMillionRe = regexp.MustCompile(`\$\s?([\d.]+)\s?million`)
	fundingSingleRe  = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)`)

	deadlineRe = regexp.MustCompile(
		`(?:deadline|due date|applications? (?:close|are due)|apply by|submit by|closes on)[:\s]+` +
			`([a-z]+\.? \d{1,2},? \d{4}|\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`)

	sentenceSplitRe = regexp.MustCompile(`(?m)[.!?]\s+`)
)

// extractTitle prefers OpenGraph metadata, then the title tag, then the
// first heading.
func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// extractDescription prefers meta descriptions, falling back to the
// first substantial paragraph.
func extractDescription(doc *goquery.Document) string {
	for _, selector := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if desc, ok := doc.Find(selector).Attr("content"); ok {
			if trimmed := strings.TrimSpace(desc); trimmed != "" {
				return truncate(trimmed, 500)
			}
		}
	}
	var paragraph string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseSpace(s.Text())
		if len(text) >= 80 {
			paragraph = text
			return false
		}
		return true
	})
	return truncate(paragraph, 500)
}

// extractFunding pulls the first plausible dollar amount or range from
// the page text. Amounts under minFundingAmount are ignored.
func extractFunding(text string) *model.FundingAmount {
	if m := fundingRangeRe.FindStringSubmatch(text); m != nil {
		low, err1 := parseAmount(m[1])
		high, err2 := parseAmount(m[2])
		if err1 == nil && err2 == nil && low >= minFundingAmount && high >= low {
			return &model.FundingAmount{Amount: low, RangeMax: high, Currency: "USD"}
		}
	}
	if m := fundingMillionRe.FindStringSubmatch(text); m != nil {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err == nil && amount > 0 {
			return &model.FundingAmount{Amount: amount * 1_000_000, Currency: "USD"}
		}
	}
	for _, m := range fundingSingleRe.FindAllStringSubmatch(text, 10) {
		amount, err := parseAmount(m[1])
		if err == nil && amount >= minFundingAmount {
			return &model.FundingAmount{Amount: amount, Currency: "USD"}
		}
	}
	return nil
}

// extractDeadline returns the raw deadline phrase found near a deadline
// marker, unparsed. Sites format dates too inconsistently to normalize
// reliably, and the raw text is what a human wants to read anyway.
func extractDeadline(text string) string {
	if m := deadlineRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractApplicationURL finds the most likely "apply here" link.
func extractApplicationURL(doc *goquery.Document, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		text := strings.ToLower(collapseSpace(s.Text()))
		hrefLower := strings.ToLower(href)
		if strings.Contains(text, "apply") || strings.Contains(text, "application") ||
			strings.Contains(hrefLower, "apply") || strings.Contains(hrefLower, "application") {
			if u, err := url.Parse(href); err == nil {
				found = base.ResolveReference(u).String()
				return false
			}
		}
		return true
	})
	return found
}

// extractEligibility returns the first sentence mentioning eligibility.
func extractEligibility(text string) string {
	for _, sentence := range sentenceSplitRe.Split(collapseSpace(text), -1) {
		if strings.Contains(strings.ToLower(sentence), "eligib") {
			return truncate(strings.TrimSpace(sentence), 300)
		}
	}
	return ""
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
