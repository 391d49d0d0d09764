package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Record is one currently-injured player as reported by a feed. Records are
// validated at this boundary; scoring code never sees a malformed one.
type Record struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Team     string `json:"team"`
	Status   string `json:"status"`
	BodyPart string `json:"body_part"`
	Notes    string `json:"notes"`
	Source   string `json:"source"`
}

// Validate reports why a record is unusable, or nil.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.PlayerID) == "" {
		return fmt.Errorf("missing player_id")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("missing player name")
	}
	if strings.TrimSpace(r.Status) == "" {
		return fmt.Errorf("missing injury status")
	}
	return nil
}

// Source fetches one injury snapshot.
type Source interface {
	Name() string
	FetchInjuries(ctx context.Context) ([]Record, error)
}

// FeedIngester tries sources in priority order until one returns records.
type FeedIngester struct {
	sources []Source
}

// NewFeedIngester creates an ingester over the given sources, first is
// primary.
func NewFeedIngester(sources ...Source) *FeedIngester {
	return &FeedIngester{sources: sources}
}

// Fetch returns the current injury snapshot from the first source that
// succeeds. One bad record never fails the batch: it is dropped with a
// logged warning during per-source parsing.
func (f *FeedIngester) Fetch(ctx context.Context) ([]Record, error) {
	var lastErr error
	for _, src := range f.sources {
		records, err := src.FetchInjuries(ctx)
		if err != nil {
			log.Printf("  ⚠️  %s feed failed: %v", src.Name(), err)
			lastErr = err
			continue
		}
		if len(records) == 0 && lastErr == nil {
			// An empty league-wide injury list is suspicious but not an
			// error; keep it and let the caller decide.
			log.Printf("  ⚠️  %s feed returned no injuries", src.Name())
		}
		return records, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no feed sources configured")
	}
	return nil, fmt.Errorf("all injury feeds failed: %w", lastErr)
}

// NormalizeName lowercases and collapses whitespace for name matching.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
