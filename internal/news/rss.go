package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultFeeds are the NFL injury news feeds polled each cycle.
var DefaultFeeds = []string{
	"https://sports.yahoo.com/nfl/rss.xml",
	"https://www.nbcsportsedge.com/edge/rss/football",
}

// UserAgent for RSS requests. Some feed hosts reject the default Go agent.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type rssEnvelope struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
}

// RSSFetcher pulls injury news from a set of RSS feeds.
type RSSFetcher struct {
	client *http.Client
	feeds  []string
}

// NewRSSFetcher creates a fetcher over the given feed URLs, falling back to
// DefaultFeeds when none are provided.
func NewRSSFetcher(feeds []string) *RSSFetcher {
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &RSSFetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		feeds:  feeds,
	}
}

// Fetch pulls every configured feed and combines their items. A failed feed
// is logged and skipped; an error is returned only when all feeds fail.
func (f *RSSFetcher) Fetch(ctx context.Context) ([]Item, error) {
	var items []Item
	failures := 0

	for _, feedURL := range f.feeds {
		feedItems, err := f.fetchFeed(ctx, feedURL)
		if err != nil {
			log.Printf("  ⚠️  RSS feed %s failed: %v", feedURL, err)
			failures++
			continue
		}
		items = append(items, feedItems...)
	}

	if failures == len(f.feeds) {
		return nil, fmt.Errorf("all %d RSS feeds failed", len(f.feeds))
	}
	return items, nil
}

func (f *RSSFetcher) fetchFeed(ctx context.Context, feedURL string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var envelope rssEnvelope
	if err := xml.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}

	items := make([]Item, 0, len(envelope.Channel.Items))
	for _, raw := range envelope.Channel.Items {
		items = append(items, Item{
			Title:       strings.TrimSpace(raw.Title),
			Description: stripHTML(raw.Description),
			Link:        strings.TrimSpace(raw.Link),
			Published:   raw.PubDate,
			Source:      envelope.Channel.Title,
		})
	}
	return items, nil
}

// stripHTML flattens embedded markup in feed descriptions to plain text.
// Rotoworld in particular wraps blurbs in anchor and paragraph tags.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
