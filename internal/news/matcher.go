package news

import (
	"strings"

	"github.com/fortuna/gridiron/internal/ingest"
)

// MatchPlayer returns the items that mention the named player. Full-name
// matches are preferred; when none exist, last-name matches count only if
// the item also mentions the player's team, since last names alone collide
// too often across the league.
func MatchPlayer(items []Item, playerName, team string) []Item {
	fullName := ingest.NormalizeName(playerName)
	if fullName == "" {
		return nil
	}

	parts := strings.Fields(fullName)
	lastName := parts[len(parts)-1]
	teamLower := strings.ToLower(team)

	var full, partial []Item
	for _, item := range items {
		text := ingest.NormalizeName(item.Title + " " + item.Description)
		if strings.Contains(text, fullName) {
			full = append(full, item)
			continue
		}
		if len(parts) > 1 && teamLower != "" &&
			strings.Contains(text, lastName) &&
			strings.Contains(strings.ToLower(item.Title+" "+item.Description), teamLower) {
			partial = append(partial, item)
		}
	}

	if len(full) > 0 {
		return full
	}
	return partial
}
