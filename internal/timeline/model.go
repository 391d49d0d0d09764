package timeline

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/fortuna/gridiron/internal/store"
)

// MinTrainingSamples below which Train refuses to fit. A regression over a
// handful of injuries produces nonsense coefficients.
const MinTrainingSamples = 20

// ridgeLambda stabilizes the normal equations when a one-hot column is
// nearly empty.
const ridgeLambda = 1.0

// Model is a ridge-regularized linear regression over injury features.
// Body part and position are one-hot encoded against the vocabulary seen
// at training time; unseen values encode as all zeros.
type Model struct {
	Intercept   float64   `json:"intercept"`
	Weights     []float64 `json:"weights"`
	BodyParts   []string  `json:"body_parts"`
	Positions   []string  `json:"positions"`
	MAE         float64   `json:"mae"`
	SampleCount int       `json:"sample_count"`
	TrainedAt   time.Time `json:"trained_at"`
}

// LoadModel reads a trained model from disk.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	if len(m.Weights) != m.featureCount() {
		return nil, fmt.Errorf("model weight count %d does not match feature count %d", len(m.Weights), m.featureCount())
	}
	return &m, nil
}

// Save writes the model as JSON.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	return nil
}

// TrainModel fits a model over resolved injuries via the normal equations.
func TrainModel(samples []store.TrainingSample) (*Model, error) {
	if len(samples) < MinTrainingSamples {
		return nil, fmt.Errorf("need at least %d samples, have %d", MinTrainingSamples, len(samples))
	}

	m := &Model{
		BodyParts:   vocabulary(samples, func(s store.TrainingSample) string { return s.BodyPart }),
		Positions:   vocabulary(samples, func(s store.TrainingSample) string { return s.Position }),
		SampleCount: len(samples),
		TrainedAt:   time.Now().UTC(),
	}

	n := m.featureCount()

	// Normal equations with ridge: (X'X + lambda*I) w = X'y, with the
	// intercept folded in as a constant 1 column (not regularized).
	dim := n + 1
	xtx := make([][]float64, dim)
	for i := range xtx {
		xtx[i] = make([]float64, dim)
	}
	xty := make([]float64, dim)

	for _, s := range samples {
		row := append([]float64{1}, m.encode(sampleFeatures(s))...)
		y := float64(s.DaysOut)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * y
		}
	}
	for i := 1; i < dim; i++ {
		xtx[i][i] += ridgeLambda
	}

	solution, err := solve(xtx, xty)
	if err != nil {
		return nil, fmt.Errorf("fitting model: %w", err)
	}
	m.Intercept = solution[0]
	m.Weights = solution[1:]

	// Asymmetric error: underestimating a recovery is worse for lineup
	// decisions than overestimating, so track the mean absolute error of
	// underpredictions separately and keep the larger.
	var sumAbs, sumUnder float64
	var underCount int
	for _, s := range samples {
		pred := m.predictDays(sampleFeatures(s))
		diff := float64(s.DaysOut) - pred
		sumAbs += math.Abs(diff)
		if diff > 0 {
			sumUnder += diff
			underCount++
		}
	}
	m.MAE = sumAbs / float64(len(samples))
	if underCount > 0 {
		if underMAE := sumUnder / float64(underCount); underMAE > m.MAE {
			m.MAE = underMAE
		}
	}

	return m, nil
}

// Predict implements Predictor.
func (m *Model) Predict(f Features) (days, low, high float64, err error) {
	if len(m.Weights) != m.featureCount() {
		return 0, 0, 0, fmt.Errorf("model not trained")
	}
	days = m.predictDays(f)
	if days < 1 {
		days = 1
	}
	low = math.Max(1, days-m.MAE)
	high = days + 1.5*m.MAE
	return days, low, high, nil
}

func (m *Model) predictDays(f Features) float64 {
	encoded := m.encode(f)
	days := m.Intercept
	for i, w := range m.Weights {
		days += w * encoded[i]
	}
	return days
}

func (m *Model) featureCount() int {
	return 4 + len(m.BodyParts) + len(m.Positions)
}

// encode builds the numeric feature vector: four dense features followed by
// the body-part and position one-hots.
func (m *Model) encode(f Features) []float64 {
	row := make([]float64, 0, m.featureCount())
	row = append(row,
		float64(f.Severity),
		float64(f.TotalInjuryCount),
		float64(f.RecurrenceCount),
		f.SeasonProgress,
	)
	for _, part := range m.BodyParts {
		if part == f.BodyPart {
			row = append(row, 1)
		} else {
			row = append(row, 0)
		}
	}
	for _, pos := range m.Positions {
		if pos == f.Position {
			row = append(row, 1)
		} else {
			row = append(row, 0)
		}
	}
	return row
}

func sampleFeatures(s store.TrainingSample) Features {
	return Features{
		BodyPart:         s.BodyPart,
		Position:         s.Position,
		Severity:         s.Severity,
		TotalInjuryCount: s.TotalInjuryCount,
		RecurrenceCount:  s.RecurrenceCount,
		SeasonProgress:   s.SeasonProgress,
	}
}

func vocabulary(samples []store.TrainingSample, field func(store.TrainingSample) string) []string {
	seen := map[string]bool{}
	for _, s := range samples {
		if v := field(s); v != "" {
			seen[v] = true
		}
	}
	vocab := make([]string, 0, len(seen))
	for v := range seen {
		vocab = append(vocab, v)
	}
	sort.Strings(vocab)
	return vocab
}

// solve runs Gaussian elimination with partial pivoting on Ax = b.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular matrix at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}
