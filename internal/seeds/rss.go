package seeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
)

// maxFeedSize caps how much of a feed body is read.
const maxFeedSize = 2 << 20

// rssFeed is the RSS 2.0 shape we care about.
type rssFeed struct {
	Channel struct {
		Items []struct {
			Link string `xml:"link"`
		} `xml:"item"`
	} `xml:"channel"`
}

// atomFeed is the Atom shape we care about.
type atomFeed struct {
	Entries []struct {
		Links []struct {
			Rel  string `xml:"rel,attr"`
			Href string `xml:"href,attr"`
		} `xml:"link"`
	} `xml:"entry"`
}

// FetchFeed downloads an RSS 2.0 or Atom feed and returns its item
// links in document order.
func FetchFeed(ctx context.Context, client *http.Client, feedURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, err
	}
	return parseFeed(body)
}

// parseFeed tries RSS first, then Atom.
func parseFeed(body []byte) ([]string, error) {
	var rss rssFeed
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		links := make([]string, 0, len(rss.Channel.Items))
		for _, item := range rss.Channel.Items {
			if item.Link != "" {
				links = append(links, item.Link)
			}
		}
		return links, nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(body, &atom); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	var links []string
	for _, entry := range atom.Entries {
		for _, link := range entry.Links {
			// Atom's default rel is "alternate", the entry's page link.
			if (link.Rel == "" || link.Rel == "alternate") && link.Href != "" {
				links = append(links, link.Href)
				break
			}
		}
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("feed has no recognizable items")
	}
	return links, nil
}
