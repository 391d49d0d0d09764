package timeline

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/fortuna/gridiron/internal/store"
)

// syntheticSamples generates injuries whose recovery time is a clean linear
// function of severity and recurrence, so the fit is checkable.
func syntheticSamples(n int) []store.TrainingSample {
	bodyParts := []string{"Hamstring", "Knee", "Ankle", "Shoulder"}
	positions := []string{"QB", "RB", "WR", "TE"}

	samples := make([]store.TrainingSample, 0, n)
	for i := 0; i < n; i++ {
		// Cycle severity slowly and the categories quickly so the dense
		// features decorrelate from the one-hots.
		severity := 2 + (i/4)%4
		recurrence := i % 3
		samples = append(samples, store.TrainingSample{
			BodyPart:         bodyParts[i%len(bodyParts)],
			Position:         positions[(i/2)%len(positions)],
			Severity:         severity,
			TotalInjuryCount: i % 5,
			RecurrenceCount:  recurrence,
			SeasonProgress:   float64(i%18) / 18,
			DaysOut:          severity*7 + recurrence*3,
		})
	}
	return samples
}

func TestTrainModelRejectsSmallSets(t *testing.T) {
	if _, err := TrainModel(syntheticSamples(MinTrainingSamples - 1)); err == nil {
		t.Fatal("expected error for undersized training set")
	}
}

func TestTrainModelFitsLinearData(t *testing.T) {
	model, err := TrainModel(syntheticSamples(80))
	if err != nil {
		t.Fatalf("TrainModel: %v", err)
	}

	if model.SampleCount != 80 {
		t.Errorf("SampleCount = %d, want 80", model.SampleCount)
	}
	if len(model.BodyParts) != 4 || len(model.Positions) != 4 {
		t.Errorf("vocab sizes = %d/%d, want 4/4", len(model.BodyParts), len(model.Positions))
	}

	// Severity 4, recurrence 1 in the generating function gives 31 days.
	days, low, high, err := model.Predict(Features{
		BodyPart:        "Knee",
		Position:        "RB",
		Severity:        4,
		RecurrenceCount: 1,
		SeasonProgress:  0.5,
	})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if math.Abs(days-31) > 5 {
		t.Errorf("Predict = %v days, want about 31", days)
	}
	if low > days || high < days {
		t.Errorf("band [%v, %v] does not bracket prediction %v", low, high, days)
	}
	if low < 1 {
		t.Errorf("low = %v, must be at least 1", low)
	}
}

func TestModelHandlesUnseenCategories(t *testing.T) {
	model, err := TrainModel(syntheticSamples(40))
	if err != nil {
		t.Fatalf("TrainModel: %v", err)
	}

	days, _, _, err := model.Predict(Features{
		BodyPart: "Spleen",
		Position: "LS",
		Severity: 3,
	})
	if err != nil {
		t.Fatalf("Predict with unseen categories: %v", err)
	}
	if days < 1 {
		t.Errorf("Predict = %v, must be at least 1 day", days)
	}
}

func TestModelSaveLoadRoundTrip(t *testing.T) {
	model, err := TrainModel(syntheticSamples(40))
	if err != nil {
		t.Fatalf("TrainModel: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	f := Features{BodyPart: "Ankle", Position: "WR", Severity: 3, RecurrenceCount: 2}
	want, _, _, _ := model.Predict(f)
	got, _, _, err := loaded.Predict(f)
	if err != nil {
		t.Fatalf("Predict after load: %v", err)
	}
	if math.Abs(want-got) > 1e-9 {
		t.Errorf("prediction changed across save/load: %v vs %v", want, got)
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	if _, err := LoadModel(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing model file")
	}
}
