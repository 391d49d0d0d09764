package news

import "testing"

func TestMatchPlayer(t *testing.T) {
	batch := []Item{
		{Title: "Christian McCaffrey limited in practice", Description: "Calf tightness lingers"},
		{Title: "49ers sweat out McCaffrey injury scare", Description: "The SF back left early"},
		{Title: "Saquon Barkley dominates", Description: "Eagles roll"},
		{Title: "Jones expected to start", Description: "Giants name their QB"},
	}

	t.Run("full name match wins", func(t *testing.T) {
		got := MatchPlayer(batch, "Christian McCaffrey", "SF")
		if len(got) != 1 {
			t.Fatalf("got %d items, want 1 (full-name only)", len(got))
		}
		if got[0].Title != "Christian McCaffrey limited in practice" {
			t.Errorf("matched %q", got[0].Title)
		}
	})

	t.Run("last name needs the team", func(t *testing.T) {
		got := MatchPlayer(batch, "Daniel Jones", "Giants")
		if len(got) != 1 {
			t.Fatalf("got %d items, want 1", len(got))
		}
		if got[0].Title != "Jones expected to start" {
			t.Errorf("matched %q", got[0].Title)
		}
	})

	t.Run("last name without team stays silent", func(t *testing.T) {
		if got := MatchPlayer(batch, "Daniel Jones", "NYG"); len(got) != 0 {
			t.Errorf("got %d items, want 0 (team abbreviation not in text)", len(got))
		}
	})

	t.Run("no mention at all", func(t *testing.T) {
		if got := MatchPlayer(batch, "Patrick Mahomes", "KC"); len(got) != 0 {
			t.Errorf("got %d items, want 0", len(got))
		}
	})

	t.Run("empty name", func(t *testing.T) {
		if got := MatchPlayer(batch, "  ", "SF"); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<p>RB <a href='x'>out 3 weeks</a></p>", "RB out 3 weeks"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := stripHTML(tt.in); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
