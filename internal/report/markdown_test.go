package report

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/gridiron/internal/detector"
	"github.com/fortuna/gridiron/internal/engine"
	"github.com/fortuna/gridiron/internal/risk"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/timeline"
)

func TestRenderSortsByRisk(t *testing.T) {
	rep := &engine.CycleReport{
		RanAt:        time.Date(2025, 10, 12, 9, 0, 0, 0, time.UTC),
		Season:       2025,
		Week:         6,
		TotalInjured: 2,
		NewCount:     1,
		Entries: []engine.PlayerEntry{
			{
				Event: &store.InjuryEvent{
					PlayerName: "Low Risk",
					Position:   "WR",
					Team:       "KC",
					Status:     store.StatusQuestionable,
				},
				Classification: detector.ClassificationUnchanged,
				Risk:           risk.Assessment{Score: 12, Level: risk.LevelMinimal},
				Timeline:       timeline.Estimate{TargetWeek: 7, WeeksOut: 1, Source: timeline.SourceModel},
			},
			{
				Event: &store.InjuryEvent{
					PlayerName: "High Risk",
					Position:   "RB",
					Team:       "SF",
					Status:     store.StatusIR,
					BodyPart:   sql.NullString{String: "Hamstring", Valid: true},
				},
				Classification: detector.ClassificationNew,
				Risk: risk.Assessment{
					Score:   76.33,
					Level:   risk.LevelCritical,
					Reasons: []string{"3 prior injuries on record"},
				},
				Timeline: timeline.Estimate{TargetWeek: 10, WeeksOut: 4, Source: timeline.SourceModel},
			},
		},
	}

	out := Render(rep)

	if !strings.Contains(out, "# NFL Injury Report") {
		t.Error("missing title")
	}
	if !strings.Contains(out, "Season 2025, Week 6") {
		t.Error("missing season/week line")
	}

	high := strings.Index(out, "| High Risk |")
	low := strings.Index(out, "| Low Risk |")
	if high == -1 || low == -1 {
		t.Fatalf("missing player rows:\n%s", out)
	}
	if high > low {
		t.Error("rows not sorted by risk descending")
	}

	if !strings.Contains(out, "### High Risk (RB, SF)") {
		t.Error("missing detail section for high-risk player")
	}
	if !strings.Contains(out, "- 3 prior injuries on record") {
		t.Error("missing risk reason bullet")
	}
}
