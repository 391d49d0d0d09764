package espn

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/fortuna/gridiron/internal/ingest"
)

// SourceName tags records produced by this feed.
const SourceName = "espn"

// TeamIDs maps team abbreviation to ESPN team ID.
var TeamIDs = map[string]int{
	"ARI": 22, "ATL": 1, "BAL": 33, "BUF": 2, "CAR": 29, "CHI": 3,
	"CIN": 4, "CLE": 5, "DAL": 6, "DEN": 7, "DET": 8, "GB": 9,
	"HOU": 34, "IND": 11, "JAX": 30, "KC": 12, "LAC": 24, "LAR": 14,
	"LV": 13, "MIA": 15, "MIN": 16, "NE": 17, "NO": 18, "NYG": 19,
	"NYJ": 20, "PHI": 21, "PIT": 23, "SEA": 26, "SF": 25, "TB": 27,
	"TEN": 10, "WAS": 28,
}

// InjurySource adapts ESPN's per-team injury listings into the injury feed.
// It is the fallback when Sleeper is unavailable.
type InjurySource struct {
	client *Client

	// requestDelay throttles the 32 sequential team requests.
	requestDelay time.Duration
}

// NewInjurySource creates the ESPN injury source.
func NewInjurySource(client *Client) *InjurySource {
	return &InjurySource{
		client:       client,
		requestDelay: 100 * time.Millisecond,
	}
}

// Name implements ingest.Source.
func (s *InjurySource) Name() string { return SourceName }

// FetchInjuries walks all 32 teams and combines their injury lists. A
// failed team fetch drops that team, not the batch.
func (s *InjurySource) FetchInjuries(ctx context.Context) ([]ingest.Record, error) {
	var records []ingest.Record

	teams := make([]string, 0, len(TeamIDs))
	for abbr := range TeamIDs {
		teams = append(teams, abbr)
	}
	sort.Strings(teams)

	for _, abbr := range teams {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		data, err := s.client.FetchTeamInjuries(ctx, TeamIDs[abbr])
		if err != nil {
			log.Printf("  ⚠️  ESPN injuries for %s failed: %v", abbr, err)
			continue
		}

		records = append(records, ParseTeamInjuries(data, abbr)...)
		time.Sleep(s.requestDelay)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].PlayerID < records[j].PlayerID
	})
	return records, nil
}

// ParseTeamInjuries extracts validated records from one team's injury
// response. ESPN's core API is loosely typed; anything that does not look
// like an injury item is skipped with a warning.
func ParseTeamInjuries(data map[string]interface{}, teamAbbr string) []ingest.Record {
	items, ok := data["items"].([]interface{})
	if !ok {
		return nil
	}

	var records []ingest.Record
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		record := ingest.Record{
			PlayerID: stringField(item, "athleteId"),
			Name:     stringField(item, "athleteName"),
			Position: stringField(item, "position"),
			Team:     teamAbbr,
			Status:   stringField(item, "status"),
			BodyPart: stringField(item, "location"),
			Notes:    stringField(item, "details"),
			Source:   SourceName,
		}
		if record.PlayerID == "" {
			record.PlayerID = stringField(item, "id")
		}
		if err := record.Validate(); err != nil {
			log.Printf("  ⚠️  skipping ESPN injury record (%s): %v", teamAbbr, err)
			continue
		}
		records = append(records, record)
	}
	return records
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
