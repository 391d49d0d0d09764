package depthchart

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/fortuna/gridiron/internal/ingest/espn"
)

// fantasyPositions are the depth-chart slots worth tracking backups for.
var fantasyPositions = map[string]bool{
	"QB": true, "RB": true, "WR": true, "TE": true,
}

// Entry is one player slot on a team's depth chart.
type Entry struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Team     string `json:"team"`
	Depth    int    `json:"depth"` // 1 = starter, 2 = primary backup
	ESPNID   string `json:"espn_id"`
	Jersey   string `json:"jersey"`
}

// Backup describes the next man up behind an injured player.
type Backup struct {
	Entry
	IsInjured    bool   `json:"is_injured"`
	InjuryStatus string `json:"injury_status,omitempty"`
}

// Manager fetches and caches NFL depth charts for backup lookups.
type Manager struct {
	client *espn.Client

	mu     sync.RWMutex
	charts map[string]map[string][]Entry // team -> position -> depth order
}

// NewManager creates a depth chart manager.
func NewManager(client *espn.Client) *Manager {
	return &Manager{
		client: client,
		charts: map[string]map[string][]Entry{},
	}
}

// Loaded reports whether any depth charts are cached.
func (m *Manager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.charts) > 0
}

// FetchAll fetches depth charts for every team. Individual team failures
// are logged and skipped.
func (m *Manager) FetchAll(ctx context.Context) error {
	charts := map[string]map[string][]Entry{}

	for abbr, teamID := range espn.TeamIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, err := m.client.FetchDepthChart(ctx, teamID)
		if err != nil {
			log.Printf("  ⚠️  depth chart for %s failed: %v", abbr, err)
			continue
		}
		charts[abbr] = parseChart(data, abbr)
	}

	if len(charts) == 0 {
		return fmt.Errorf("no depth charts fetched")
	}

	m.mu.Lock()
	m.charts = charts
	m.mu.Unlock()
	return nil
}

// BackupFor returns the player listed directly behind the named player at
// their position, or nil when the depth chart does not resolve one.
// injuredNames maps normalized player name to current status, so a backup
// who is himself hurt is flagged.
func (m *Manager) BackupFor(playerName, team, position string, injuredNames map[string]string) *Backup {
	if !fantasyPositions[position] {
		return nil
	}

	m.mu.RLock()
	chart, ok := m.charts[team]
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	entries := chart[position]
	target := ingest.NormalizeName(playerName)

	for i, entry := range entries {
		if ingest.NormalizeName(entry.Name) != target {
			continue
		}
		if i+1 >= len(entries) {
			return nil
		}
		next := entries[i+1]
		status, injured := injuredNames[ingest.NormalizeName(next.Name)]
		return &Backup{
			Entry:        next,
			IsInjured:    injured,
			InjuryStatus: status,
		}
	}
	return nil
}

// parseChart flattens ESPN's formation/position structure into per-position
// depth order, keeping only fantasy-relevant slots.
func parseChart(data map[string]interface{}, team string) map[string][]Entry {
	parsed := map[string][]Entry{}

	formations, ok := data["depthchart"].([]interface{})
	if !ok {
		return parsed
	}

	for _, rawFormation := range formations {
		formation, ok := rawFormation.(map[string]interface{})
		if !ok {
			continue
		}
		positions, ok := formation["positions"].(map[string]interface{})
		if !ok {
			continue
		}

		for _, rawPos := range positions {
			pos, ok := rawPos.(map[string]interface{})
			if !ok {
				continue
			}

			abbr := positionAbbreviation(pos)
			if !fantasyPositions[abbr] {
				continue
			}

			athletes, _ := pos["athletes"].([]interface{})
			for idx, rawAthlete := range athletes {
				athlete, ok := rawAthlete.(map[string]interface{})
				if !ok {
					continue
				}
				name, _ := athlete["displayName"].(string)
				if name == "" {
					continue
				}
				id, _ := athlete["id"].(string)
				jersey, _ := athlete["jersey"].(string)
				parsed[abbr] = append(parsed[abbr], Entry{
					Name:     name,
					Position: abbr,
					Team:     team,
					Depth:    idx + 1,
					ESPNID:   id,
					Jersey:   jersey,
				})
			}
		}
	}
	return parsed
}

// positionAbbreviation prefers the parent position (RB over HB/FB) so that
// depth slots group under the fantasy-relevant label.
func positionAbbreviation(pos map[string]interface{}) string {
	position, ok := pos["position"].(map[string]interface{})
	if !ok {
		return ""
	}
	if parent, ok := position["parent"].(map[string]interface{}); ok {
		if abbr, ok := parent["abbreviation"].(string); ok && fantasyPositions[abbr] {
			return abbr
		}
	}
	abbr, _ := position["abbreviation"].(string)
	return abbr
}
