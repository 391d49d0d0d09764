package sleeper

import (
	"testing"
)

func TestParseInjuries(t *testing.T) {
	players := map[string]Player{
		"4034": {
			FirstName:      "Christian",
			LastName:       "McCaffrey",
			Position:       "RB",
			Team:           "SF",
			InjuryStatus:   "Questionable",
			InjuryBodyPart: "Calf",
			InjuryNotes:    "Limited in practice",
		},
		"1001": {
			FirstName:    "Healthy",
			LastName:     "Player",
			Position:     "WR",
			Team:         "KC",
			InjuryStatus: "",
		},
		"2002": {
			FirstName:    "Weird",
			LastName:     "Status",
			Position:     "TE",
			Team:         "NE",
			InjuryStatus: "Hangnail",
		},
		"3003": {
			FirstName:    "Covid",
			LastName:     "Lister",
			Position:     "QB",
			Team:         "NYJ",
			InjuryStatus: "COV",
		},
		"0500": {
			FirstName:    "Early",
			LastName:     "Sort",
			Position:     "QB",
			Team:         "BUF",
			InjuryStatus: "IR",
		},
	}

	records := ParseInjuries(players)

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (healthy, unknown and ignored statuses skipped)", len(records))
	}

	// Sorted by player ID.
	if records[0].PlayerID != "0500" || records[1].PlayerID != "4034" {
		t.Errorf("order = [%s %s], want [0500 4034]", records[0].PlayerID, records[1].PlayerID)
	}

	cmc := records[1]
	if cmc.Name != "Christian McCaffrey" {
		t.Errorf("Name = %q", cmc.Name)
	}
	if cmc.Status != "Questionable" || cmc.BodyPart != "Calf" {
		t.Errorf("status/body = %s/%s, want Questionable/Calf", cmc.Status, cmc.BodyPart)
	}
	if cmc.Source != SourceName {
		t.Errorf("Source = %q, want %q", cmc.Source, SourceName)
	}
}

func TestParseInjuriesMissingName(t *testing.T) {
	players := map[string]Player{
		"9001": {InjuryStatus: "Out", Position: "RB", Team: "DAL"},
	}

	if records := ParseInjuries(players); len(records) != 0 {
		t.Errorf("got %d records, want 0 (nameless record dropped)", len(records))
	}
}
