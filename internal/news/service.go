package news

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scraper fetches targeted news for a single player. The Google scraper
// implements this; it is nil when scraping is disabled.
type Scraper interface {
	FetchPlayerNews(ctx context.Context, playerName string) ([]Item, error)
	Close()
}

// Service combines the broad RSS sweep with optional per-player scraping
// and runs the analyzer over whatever it finds.
type Service struct {
	rss      *RSSFetcher
	scraper  Scraper
	analyzer *Analyzer

	mu        sync.RWMutex
	items     []Item
	fetchedAt time.Time
}

// NewService wires the news pipeline. scraper may be nil.
func NewService(rss *RSSFetcher, scraper Scraper) *Service {
	return &Service{
		rss:      rss,
		scraper:  scraper,
		analyzer: NewAnalyzer(),
	}
}

// Refresh re-pulls the RSS feeds. The previous batch is kept on failure so
// one bad poll does not blind the cycle.
func (s *Service) Refresh(ctx context.Context) error {
	items, err := s.rss.Fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	log.Printf("✓ Fetched %d news items from RSS", len(items))
	return nil
}

// SignalFor returns the strongest timeline signal in news mentioning the
// player, or nil when nothing mentions them. Per-player scraping only runs
// when the RSS sweep came up empty, keeping scraper volume proportional to
// players the feeds missed.
func (s *Service) SignalFor(ctx context.Context, playerName, team string) *Signal {
	s.mu.RLock()
	items := s.items
	s.mu.RUnlock()

	matched := MatchPlayer(items, playerName, team)
	if len(matched) == 0 && s.scraper != nil {
		scraped, err := s.scraper.FetchPlayerNews(ctx, playerName)
		if err != nil {
			log.Printf("  ⚠️  news scrape for %s failed: %v", playerName, err)
		} else {
			matched = scraped
		}
	}

	return s.analyzer.Analyze(matched)
}

// ItemCount reports the size of the current RSS batch, for health output.
func (s *Service) ItemCount() (int, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), s.fetchedAt
}

// Close releases scraper resources.
func (s *Service) Close() {
	if s.scraper != nil {
		s.scraper.Close()
	}
}
