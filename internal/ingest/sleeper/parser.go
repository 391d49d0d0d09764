package sleeper

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/fortuna/gridiron/internal/store"
)

// SourceName tags records produced by this feed.
const SourceName = "sleeper"

// InjurySource adapts the Sleeper player map into the injury feed.
type InjurySource struct {
	client *Client
}

// NewInjurySource creates the Sleeper injury source.
func NewInjurySource(client *Client) *InjurySource {
	return &InjurySource{client: client}
}

// Name implements ingest.Source.
func (s *InjurySource) Name() string { return SourceName }

// FetchInjuries returns every currently-injured player, sorted by player ID
// for deterministic downstream processing.
func (s *InjurySource) FetchInjuries(ctx context.Context) ([]ingest.Record, error) {
	players, err := s.client.FetchPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return ParseInjuries(players), nil
}

// ParseInjuries filters the player map down to validated injury records.
// Malformed entries are skipped with a warning, never failing the batch.
func ParseInjuries(players map[string]Player) []ingest.Record {
	var records []ingest.Record

	for playerID, player := range players {
		if player.InjuryStatus == "" {
			continue
		}
		if _, err := store.ParseInjuryStatus(player.InjuryStatus); err != nil {
			// Sleeper reports a few designations we do not track ("NA",
			// "COV", "DNR"); skip them quietly unless truly unknown.
			if !isIgnoredStatus(player.InjuryStatus) {
				log.Printf("  ⚠️  skipping %s: %v", playerID, err)
			}
			continue
		}

		record := ingest.Record{
			PlayerID: playerID,
			Name:     strings.TrimSpace(player.FirstName + " " + player.LastName),
			Position: player.Position,
			Team:     player.Team,
			Status:   player.InjuryStatus,
			BodyPart: player.InjuryBodyPart,
			Notes:    player.InjuryNotes,
			Source:   SourceName,
		}
		if err := record.Validate(); err != nil {
			log.Printf("  ⚠️  skipping %s: %v", playerID, err)
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].PlayerID < records[j].PlayerID
	})
	return records
}

var ignoredStatuses = map[string]bool{
	"NA":  true,
	"COV": true,
	"DNR": true,
	"Sus": false, // abbreviated Suspended should surface as unknown
}

func isIgnoredStatus(status string) bool {
	return ignoredStatuses[status]
}
