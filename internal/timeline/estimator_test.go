package timeline

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/fortuna/gridiron/internal/news"
	"github.com/fortuna/gridiron/internal/store"
)

// stubPredictor returns fixed values.
type stubPredictor struct {
	days, low, high float64
	err             error
}

func (s *stubPredictor) Predict(f Features) (float64, float64, float64, error) {
	return s.days, s.low, s.high, s.err
}

func testEvent(status store.InjuryStatus, week int) *store.InjuryEvent {
	return &store.InjuryEvent{
		PlayerID:   "p1",
		PlayerName: "Test Player",
		Position:   "WR",
		Status:     status,
		BodyPart:   sql.NullString{String: "Hamstring", Valid: true},
		Week:       week,
	}
}

func TestWeekCeiling(t *testing.T) {
	tests := []struct {
		days        float64
		currentWeek int
		wantWeeks   int
		wantTarget  int
	}{
		{19, 7, 3, 10},
		{21, 7, 3, 10},
		{22, 7, 4, 11},
		{1, 7, 1, 8},
		{7, 7, 1, 8},
		{8, 7, 2, 9},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v days", tt.days), func(t *testing.T) {
			e := NewEstimator(&stubPredictor{days: tt.days, low: tt.days - 2, high: tt.days + 5})
			got := e.Estimate(testEvent(store.StatusQuestionable, tt.currentWeek), store.EmptyProfile("p1"), tt.currentWeek, nil)

			if got.WeeksOut != tt.wantWeeks {
				t.Errorf("WeeksOut = %d, want %d", got.WeeksOut, tt.wantWeeks)
			}
			if got.TargetWeek != tt.wantTarget {
				t.Errorf("TargetWeek = %d, want %d", got.TargetWeek, tt.wantTarget)
			}
			if got.Source != SourceModel {
				t.Errorf("Source = %s, want model", got.Source)
			}
		})
	}
}

func TestStatusFloors(t *testing.T) {
	t.Run("IR floors at 28 days", func(t *testing.T) {
		e := NewEstimator(&stubPredictor{days: 10, low: 5, high: 15})
		got := e.Estimate(testEvent(store.StatusIR, 5), store.EmptyProfile("p1"), 5, nil)

		if got.PredictedDays != 28 {
			t.Errorf("PredictedDays = %v, want 28", got.PredictedDays)
		}
		if got.ConfidenceLowDays != 28 {
			t.Errorf("ConfidenceLowDays = %v, want 28", got.ConfidenceLowDays)
		}
		if got.ConfidenceHighDays < 42 {
			t.Errorf("ConfidenceHighDays = %v, want >= 42", got.ConfidenceHighDays)
		}
		if got.WeeksOut != 4 {
			t.Errorf("WeeksOut = %d, want 4", got.WeeksOut)
		}
	})

	t.Run("PUP floors like IR", func(t *testing.T) {
		e := NewEstimator(&stubPredictor{days: 3, low: 1, high: 6})
		got := e.Estimate(testEvent(store.StatusPUP, 5), store.EmptyProfile("p1"), 5, nil)
		if got.PredictedDays != 28 || got.ConfidenceLowDays != 28 {
			t.Errorf("got %v/%v, want 28/28", got.PredictedDays, got.ConfidenceLowDays)
		}
	})

	t.Run("Out floors at 7 days", func(t *testing.T) {
		e := NewEstimator(&stubPredictor{days: 2, low: 1, high: 4})
		got := e.Estimate(testEvent(store.StatusOut, 5), store.EmptyProfile("p1"), 5, nil)
		if got.PredictedDays != 7 {
			t.Errorf("PredictedDays = %v, want 7", got.PredictedDays)
		}
		if got.ConfidenceLowDays != 3 {
			t.Errorf("ConfidenceLowDays = %v, want 3", got.ConfidenceLowDays)
		}
	})

	t.Run("model above floor is untouched", func(t *testing.T) {
		e := NewEstimator(&stubPredictor{days: 40, low: 35, high: 60})
		got := e.Estimate(testEvent(store.StatusIR, 5), store.EmptyProfile("p1"), 5, nil)
		if got.PredictedDays != 40 {
			t.Errorf("PredictedDays = %v, want 40", got.PredictedDays)
		}
	})
}

func TestDegradedModeDefaults(t *testing.T) {
	tests := []struct {
		status store.InjuryStatus
		want   float64
	}{
		{store.StatusQuestionable, 3},
		{store.StatusDoubtful, 5},
		{store.StatusOut, 7},
		{store.StatusPUP, 28},
		{store.StatusIR, 28},
		{store.StatusSuspended, 14},
	}

	e := NewEstimator(nil)
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := e.Estimate(testEvent(tt.status, 3), store.EmptyProfile("p1"), 3, nil)
			if got.PredictedDays != tt.want {
				t.Errorf("PredictedDays = %v, want %v", got.PredictedDays, tt.want)
			}
			if got.Source != SourceStatusFloor {
				t.Errorf("Source = %s, want status_floor", got.Source)
			}
		})
	}

	t.Run("predictor error degrades too", func(t *testing.T) {
		e := NewEstimator(&stubPredictor{err: fmt.Errorf("model not trained")})
		got := e.Estimate(testEvent(store.StatusOut, 3), store.EmptyProfile("p1"), 3, nil)
		if got.Source != SourceStatusFloor || got.PredictedDays != 7 {
			t.Errorf("got %s/%v, want status_floor/7", got.Source, got.PredictedDays)
		}
	})
}

func TestNewsOverrides(t *testing.T) {
	t.Run("season ending depends on current week", func(t *testing.T) {
		e := NewEstimator(&stubPredictor{days: 14, low: 10, high: 20})
		signal := &news.Signal{Kind: news.SignalSeasonEnding, Phrase: "out for the season"}

		got := e.Estimate(testEvent(store.StatusIR, 10), store.EmptyProfile("p1"), 10, signal)
		if got.PredictedDays != 56 {
			t.Errorf("PredictedDays = %v, want 56 (8 weeks left)", got.PredictedDays)
		}
		if got.ConfidenceHighDays != 365 {
			t.Errorf("ConfidenceHighDays = %v, want 365", got.ConfidenceHighDays)
		}
		if got.Source != SourceNewsOverride {
			t.Errorf("Source = %s, want news_override", got.Source)
		}
		if got.TargetWeek != 18 {
			t.Errorf("TargetWeek = %d, want 18", got.TargetWeek)
		}
	})

	t.Run("season ending late in season still covers a week", func(t *testing.T) {
		e := NewEstimator(nil)
		signal := &news.Signal{Kind: news.SignalSeasonEnding}
		got := e.Estimate(testEvent(store.StatusIR, 18), store.EmptyProfile("p1"), 18, signal)
		if got.PredictedDays != 7 {
			t.Errorf("PredictedDays = %v, want 7", got.PredictedDays)
		}
	})

	t.Run("return imminent beats the IR floor", func(t *testing.T) {
		e := NewEstimator(&stubPredictor{days: 50, low: 40, high: 70})
		signal := &news.Signal{Kind: news.SignalReturnImminent, Days: 3, Low: 0, High: 7, Phrase: "designated to return"}

		got := e.Estimate(testEvent(store.StatusIR, 8), store.EmptyProfile("p1"), 8, signal)
		if got.PredictedDays != 3 {
			t.Errorf("PredictedDays = %v, want 3 (floors not reapplied after override)", got.PredictedDays)
		}
		if got.TargetWeek != 9 {
			t.Errorf("TargetWeek = %d, want 9", got.TargetWeek)
		}
		if got.ModelDays != 50 {
			t.Errorf("ModelDays = %v, want 50 (model prediction preserved)", got.ModelDays)
		}
	})

	t.Run("explicit range overrides", func(t *testing.T) {
		e := NewEstimator(&stubPredictor{days: 10, low: 7, high: 14})
		signal := &news.Signal{Kind: news.SignalExplicitRange, Days: 21, Low: 14, High: 28, Phrase: "2-4 weeks"}

		got := e.Estimate(testEvent(store.StatusOut, 6), store.EmptyProfile("p1"), 6, signal)
		if got.PredictedDays != 21 || got.ConfidenceLowDays != 14 || got.ConfidenceHighDays != 28 {
			t.Errorf("got %v/%v/%v, want 21/14/28", got.PredictedDays, got.ConfidenceLowDays, got.ConfidenceHighDays)
		}
		if got.TargetWeek != 9 {
			t.Errorf("TargetWeek = %d, want 9", got.TargetWeek)
		}
	})
}

func TestDisagreementFlag(t *testing.T) {
	e := NewEstimator(&stubPredictor{days: 14, low: 10, high: 20})

	t.Run("wild hint flags but keeps the model", func(t *testing.T) {
		signal := &news.Signal{Kind: news.SignalNone, HintDays: 60}
		got := e.Estimate(testEvent(store.StatusOut, 6), store.EmptyProfile("p1"), 6, signal)

		if got.Source != SourceModel {
			t.Errorf("Source = %s, want model", got.Source)
		}
		if got.PredictedDays != 14 {
			t.Errorf("PredictedDays = %v, want 14", got.PredictedDays)
		}
		if len(got.Flags) != 1 || !strings.Contains(got.Flags[0], "60 days") {
			t.Errorf("Flags = %v, want one disagreement flag", got.Flags)
		}
	})

	t.Run("agreeing hint stays quiet", func(t *testing.T) {
		signal := &news.Signal{Kind: news.SignalNone, HintDays: 20}
		got := e.Estimate(testEvent(store.StatusOut, 6), store.EmptyProfile("p1"), 6, signal)
		if len(got.Flags) != 0 {
			t.Errorf("Flags = %v, want none", got.Flags)
		}
	})

	t.Run("nil signal is fine", func(t *testing.T) {
		got := e.Estimate(testEvent(store.StatusOut, 6), store.EmptyProfile("p1"), 6, nil)
		if got.Source != SourceModel || len(got.Flags) != 0 {
			t.Errorf("got %s/%v, want model with no flags", got.Source, got.Flags)
		}
	})
}
