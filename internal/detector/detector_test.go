package detector

import (
	"testing"
	"time"

	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/fortuna/gridiron/internal/store"
)

func record(playerID, status string) ingest.Record {
	return ingest.Record{
		PlayerID: playerID,
		Name:     "Test Player " + playerID,
		Position: "RB",
		Team:     "DAL",
		Status:   status,
		Source:   "sleeper",
	}
}

func openEvent(playerID string, status store.InjuryStatus, firstSeen time.Time) *store.InjuryEvent {
	return &store.InjuryEvent{
		PlayerID:   playerID,
		PlayerName: "Test Player " + playerID,
		Status:     status,
		FirstSeen:  firstSeen,
	}
}

func TestDetectClassifications(t *testing.T) {
	now := time.Date(2025, 10, 12, 12, 0, 0, 0, time.UTC)
	firstSeen := now.Add(-2 * time.Hour)

	tests := []struct {
		name      string
		oldStatus store.InjuryStatus
		newStatus string
		want      Classification
	}{
		{"questionable to doubtful worsens", store.StatusQuestionable, "Doubtful", ClassificationWorsened},
		{"questionable to out worsens", store.StatusQuestionable, "Out", ClassificationWorsened},
		{"out to IR worsens", store.StatusOut, "IR", ClassificationWorsened},
		{"doubtful to questionable improves", store.StatusDoubtful, "Questionable", ClassificationImproved},
		{"IR to out improves", store.StatusIR, "Out", ClassificationImproved},
		{"same status unchanged", store.StatusQuestionable, "Questionable", ClassificationUnchanged},
		{"out to PUP same rank unchanged", store.StatusOut, "PUP", ClassificationUnchanged},
		{"out to suspended same rank unchanged", store.StatusOut, "Suspended", ClassificationUnchanged},
	}

	d := New(24)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := map[string]*store.InjuryEvent{
				"p1": openEvent("p1", tt.oldStatus, firstSeen),
			}
			results := d.Detect(prev, []ingest.Record{record("p1", tt.newStatus)}, now)
			if len(results) != 1 {
				t.Fatalf("got %d results, want 1", len(results))
			}
			if results[0].Classification != tt.want {
				t.Errorf("got %s, want %s", results[0].Classification, tt.want)
			}
			if results[0].OldStatus != tt.oldStatus {
				t.Errorf("OldStatus = %s, want %s", results[0].OldStatus, tt.oldStatus)
			}
		})
	}
}

func TestDetectNew(t *testing.T) {
	now := time.Now().UTC()
	d := New(24)

	t.Run("absent from previous snapshot", func(t *testing.T) {
		results := d.Detect(map[string]*store.InjuryEvent{}, []ingest.Record{record("p1", "Questionable")}, now)
		if len(results) != 1 || results[0].Classification != ClassificationNew {
			t.Fatalf("got %+v, want one NEW result", results)
		}
		if !results[0].Alertable() {
			t.Error("NEW must be alertable")
		}
	})

	t.Run("previous event already closed is a re-injury", func(t *testing.T) {
		closed := openEvent("p1", store.StatusOut, now.Add(-30*24*time.Hour))
		closed.RecoveredAt.Valid = true
		closed.RecoveredAt.Time = now.Add(-10 * 24 * time.Hour)

		prev := map[string]*store.InjuryEvent{"p1": closed}
		results := d.Detect(prev, []ingest.Record{record("p1", "Questionable")}, now)
		if len(results) != 1 || results[0].Classification != ClassificationNew {
			t.Fatalf("got %+v, want one NEW result", results)
		}
	})
}

func TestDetectSkipsUnknownStatus(t *testing.T) {
	now := time.Now().UTC()
	d := New(24)

	results := d.Detect(map[string]*store.InjuryEvent{}, []ingest.Record{
		record("p1", "Healthy-ish"),
		record("p2", "Questionable"),
	}, now)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (malformed skipped)", len(results))
	}
	if results[0].Record.PlayerID != "p2" {
		t.Errorf("kept %s, want p2", results[0].Record.PlayerID)
	}
}

func TestAlertWindow(t *testing.T) {
	now := time.Date(2025, 10, 12, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		windowHours float64
		hoursAgo    float64
		oldStatus   store.InjuryStatus
		newStatus   string
		wantAlert   bool
	}{
		{"unchanged inside window alerts", 24, 10, store.StatusQuestionable, "Questionable", true},
		{"unchanged at window boundary alerts", 24, 24, store.StatusQuestionable, "Questionable", true},
		{"unchanged outside window is silent", 24, 30, store.StatusQuestionable, "Questionable", false},
		{"zero window silences continuations", 0, 0.5, store.StatusQuestionable, "Questionable", false},
		{"worsened alerts outside window", 24, 100, store.StatusQuestionable, "Doubtful", true},
		{"worsened alerts with zero window", 0, 100, store.StatusOut, "IR", true},
		{"improved never alerts", 24, 1, store.StatusDoubtful, "Questionable", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.windowHours)
			firstSeen := now.Add(-time.Duration(tt.hoursAgo * float64(time.Hour)))
			prev := map[string]*store.InjuryEvent{
				"p1": openEvent("p1", tt.oldStatus, firstSeen),
			}
			results := d.Detect(prev, []ingest.Record{record("p1", tt.newStatus)}, now)
			if len(results) != 1 {
				t.Fatalf("got %d results, want 1", len(results))
			}
			if got := results[0].Alertable(); got != tt.wantAlert {
				t.Errorf("Alertable() = %v, want %v (classification %s)", got, tt.wantAlert, results[0].Classification)
			}
		})
	}
}

func TestRecovered(t *testing.T) {
	now := time.Now().UTC()
	d := New(24)

	closed := openEvent("p3", store.StatusOut, now.Add(-48*time.Hour))
	closed.RecoveredAt.Valid = true
	closed.RecoveredAt.Time = now.Add(-24 * time.Hour)

	prev := map[string]*store.InjuryEvent{
		"p1": openEvent("p1", store.StatusQuestionable, now.Add(-time.Hour)),
		"p2": openEvent("p2", store.StatusOut, now.Add(-time.Hour)),
		"p3": closed,
	}
	fresh := []ingest.Record{record("p1", "Questionable")}

	recovered := d.Recovered(prev, fresh)
	if len(recovered) != 1 {
		t.Fatalf("got %d recovered, want 1", len(recovered))
	}
	if recovered[0].PlayerID != "p2" {
		t.Errorf("recovered %s, want p2", recovered[0].PlayerID)
	}
}
