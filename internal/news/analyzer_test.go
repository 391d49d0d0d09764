package news

import (
	"testing"
)

func items(title, description string) []Item {
	return []Item{{Title: title, Description: description, Link: "https://example.com/story"}}
}

func TestAnalyzeSignals(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name     string
		title    string
		desc     string
		wantKind SignalKind
		wantDays int
		wantLow  int
		wantHigh int
	}{
		{
			name:     "designated to return",
			title:    "Cowboys RB designated to return from IR",
			wantKind: SignalReturnImminent,
			wantDays: 3, wantLow: 0, wantHigh: 7,
		},
		{
			name:     "season ending",
			title:    "Star WR suffers season-ending knee injury",
			wantKind: SignalSeasonEnding,
			wantDays: 0, wantLow: 0, wantHigh: 365,
		},
		{
			name:     "torn acl",
			title:    "QB carted off with torn ACL",
			wantKind: SignalSevereInjury,
			wantDays: 270, wantLow: 256, wantHigh: 300,
		},
		{
			name:     "surgery",
			title:    "TE underwent surgery on his ankle",
			wantKind: SignalSurgery,
			wantDays: 42, wantLow: 42, wantHigh: 70,
		},
		{
			name:     "arthroscopic surgery is shorter",
			title:    "RB underwent surgery",
			desc:     "The arthroscopic procedure went well",
			wantKind: SignalSurgery,
			wantDays: 21, wantLow: 21, wantHigh: 49,
		},
		{
			name:     "explicit range",
			title:    "WR expected to miss 2-4 weeks with hamstring strain",
			wantKind: SignalExplicitRange,
			wantDays: 21, wantLow: 14, wantHigh: 28,
		},
		{
			name:     "exact weeks",
			title:    "LB will be out 3 weeks",
			wantKind: SignalExplicitRange,
			wantDays: 21, wantLow: 14, wantHigh: 28,
		},
		{
			name:     "week to week",
			title:    "Coach says QB is week-to-week",
			wantKind: SignalWeekToWeek,
			wantDays: 14, wantLow: 7, wantHigh: 21,
		},
		{
			name:     "day to day",
			title:    "RB is day-to-day with ankle sprain",
			wantKind: SignalDayToDay,
			wantDays: 3, wantLow: 1, wantHigh: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(items(tt.title, tt.desc))
			if got == nil {
				t.Fatal("got nil signal")
			}
			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if got.Days != tt.wantDays || got.Low != tt.wantLow || got.High != tt.wantHigh {
				t.Errorf("days/low/high = %d/%d/%d, want %d/%d/%d",
					got.Days, got.Low, got.High, tt.wantDays, tt.wantLow, tt.wantHigh)
			}
			if got.Headline != tt.title {
				t.Errorf("Headline = %q, want %q", got.Headline, tt.title)
			}
		})
	}
}

func TestAnalyzePriority(t *testing.T) {
	a := NewAnalyzer()

	t.Run("season ending beats severe injury", func(t *testing.T) {
		got := a.Analyze(items("WR out for the season after tearing his ACL", ""))
		if got.Kind != SignalSeasonEnding {
			t.Errorf("Kind = %s, want season_ending", got.Kind)
		}
	})

	t.Run("return imminent beats everything", func(t *testing.T) {
		got := a.Analyze(items("RB activated from IR after torn ligament recovery", ""))
		if got.Kind != SignalReturnImminent {
			t.Errorf("Kind = %s, want return_imminent", got.Kind)
		}
	})

	t.Run("severe injury beats week to week", func(t *testing.T) {
		got := a.Analyze(items("QB week-to-week with fractured thumb", ""))
		if got.Kind != SignalSevereInjury {
			t.Errorf("Kind = %s, want severe_injury", got.Kind)
		}
	})
}

func TestAnalyzeNoMatch(t *testing.T) {
	a := NewAnalyzer()

	t.Run("no items yields nil", func(t *testing.T) {
		if got := a.Analyze(nil); got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("unmatched text yields none kind", func(t *testing.T) {
		got := a.Analyze(items("Coach optimistic about the defense", ""))
		if got == nil || got.Kind != SignalNone {
			t.Fatalf("got %+v, want SignalNone", got)
		}
		if got.HintDays != 0 {
			t.Errorf("HintDays = %d, want 0", got.HintDays)
		}
	})

	t.Run("unmatched text with a number still hints", func(t *testing.T) {
		got := a.Analyze(items("RB has spent 5 weeks rehabbing his knee", ""))
		if got == nil || got.Kind != SignalNone {
			t.Fatalf("got %+v, want SignalNone", got)
		}
		if got.HintDays != 35 {
			t.Errorf("HintDays = %d, want 35", got.HintDays)
		}
	})
}
