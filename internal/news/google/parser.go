package google

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/gridiron/internal/news"
)

// SourceName tags items scraped from Google News.
const SourceName = "google-news"

// Scraper fetches targeted injury news for a single player. It implements
// news.Scraper.
type Scraper struct {
	client *Client
}

// NewScraper wraps a headless client.
func NewScraper(client *Client) *Scraper {
	return &Scraper{client: client}
}

// Close implements news.Scraper.
func (s *Scraper) Close() {
	s.client.Close()
}

// FetchPlayerNews searches Google News for recent injury coverage of the
// player and parses the result cards into items.
func (s *Scraper) FetchPlayerNews(ctx context.Context, playerName string) ([]news.Item, error) {
	query := fmt.Sprintf("%s nfl injury", playerName)
	html, err := s.client.FetchSearchHTML(ctx, query)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	items := ParseNewsResults(doc)
	log.Printf("  Parsed %d news results for %s", len(items), playerName)
	return items, nil
}

// ParseNewsResults extracts news cards from a rendered Google News results
// page. Google's markup shifts over time, so two strategies run in order.
func ParseNewsResults(doc *goquery.Document) []news.Item {
	var items []news.Item

	// Strategy 1: news result cards carry role=heading divs inside anchors.
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		heading := s.Find("div[role='heading']")
		if heading.Length() == 0 {
			return
		}
		title := strings.TrimSpace(heading.First().Text())
		if title == "" {
			return
		}
		href, _ := s.Attr("href")
		items = append(items, news.Item{
			Title:       title,
			Description: strings.TrimSpace(s.Find("div[role='heading']").First().Parent().Text()),
			Link:        cleanLink(href),
			Source:      SourceName,
		})
	})

	// Strategy 2: fall back to h3 result headings.
	if len(items) == 0 {
		doc.Find("h3").Each(func(i int, s *goquery.Selection) {
			title := strings.TrimSpace(s.Text())
			if title == "" {
				return
			}
			href, _ := s.Closest("a").Attr("href")
			items = append(items, news.Item{
				Title:  title,
				Link:   cleanLink(href),
				Source: SourceName,
			})
		})
	}

	return items
}

// cleanLink strips Google's redirect wrapper ("/url?q=...") from result
// hrefs.
func cleanLink(href string) string {
	if strings.HasPrefix(href, "/url?q=") {
		href = strings.TrimPrefix(href, "/url?q=")
		if idx := strings.Index(href, "&"); idx >= 0 {
			href = href[:idx]
		}
	}
	return href
}
