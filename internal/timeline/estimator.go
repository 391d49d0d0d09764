package timeline

import (
	"fmt"
	"math"

	"github.com/fortuna/gridiron/internal/news"
	"github.com/fortuna/gridiron/internal/store"
)

// SeasonWeeks in the regular NFL season.
const SeasonWeeks = 18

// Estimate sources.
const (
	SourceModel        = "model"
	SourceNewsOverride = "news_override"
	SourceStatusFloor  = "status_floor"
)

// statusFloorDays are the degraded-mode defaults used when no model is
// available. They are also the minimum days enforced on model output for
// IR/PUP and Out.
var statusFloorDays = map[store.InjuryStatus]float64{
	store.StatusQuestionable: 3,
	store.StatusDoubtful:     5,
	store.StatusOut:          7,
	store.StatusPUP:          28,
	store.StatusIR:           28,
	store.StatusSuspended:    14,
}

// Estimate is a return-timeline projection for one open injury.
type Estimate struct {
	PredictedDays      float64  `json:"predicted_days"`
	ConfidenceLowDays  float64  `json:"confidence_low_days"`
	ConfidenceHighDays float64  `json:"confidence_high_days"`
	TargetWeek         int      `json:"target_week"`
	WeeksOut           int      `json:"weeks_out"`
	Source             string   `json:"source"`
	OverrideReason     string   `json:"override_reason,omitempty"`
	ModelDays          float64  `json:"model_days,omitempty"`
	Flags              []string `json:"flags,omitempty"`
}

// Estimator projects return timelines from the model, status floors, and
// news signals, in that order of application.
type Estimator struct {
	pred Predictor
}

// NewEstimator creates an estimator. pred may be nil, in which case every
// estimate degrades to the per-status defaults.
func NewEstimator(pred Predictor) *Estimator {
	return &Estimator{pred: pred}
}

// Estimate projects when the player returns. The model prediction (or the
// per-status default when no model is usable) is clamped by status floors,
// then converted to a target week, then a news signal overrides everything.
// Floors are not reapplied after a news override: the press corps beats a
// regression on the specific case.
func (e *Estimator) Estimate(event *store.InjuryEvent, profile *store.PlayerInjuryProfile, currentWeek int, signal *news.Signal) Estimate {
	est := e.baseline(event, profile)

	// Status floors.
	switch event.Status {
	case store.StatusIR, store.StatusPUP:
		est.PredictedDays = math.Max(est.PredictedDays, 28)
		est.ConfidenceLowDays = math.Max(est.ConfidenceLowDays, 28)
		est.ConfidenceHighDays = math.Max(est.ConfidenceHighDays, est.PredictedDays+14)
	case store.StatusOut:
		est.PredictedDays = math.Max(est.PredictedDays, 7)
		est.ConfidenceLowDays = math.Max(est.ConfidenceLowDays, 3)
		est.ConfidenceHighDays = math.Max(est.ConfidenceHighDays, est.PredictedDays)
	}

	e.applySignal(&est, signal, currentWeek)

	est.WeeksOut = weeksOut(est.PredictedDays)
	est.TargetWeek = currentWeek + est.WeeksOut
	return est
}

// baseline is the pre-floor model prediction, or the per-status default
// when the model is missing or fails.
func (e *Estimator) baseline(event *store.InjuryEvent, profile *store.PlayerInjuryProfile) Estimate {
	if e.pred != nil {
		f := Features{
			BodyPart:         event.BodyPartOrUnknown(),
			Position:         event.Position,
			Severity:         event.Status.SeverityRank(),
			TotalInjuryCount: profile.TotalInjuryCount,
			RecurrenceCount:  profile.RecurrenceCount(event.BodyPartOrUnknown()),
			SeasonProgress:   float64(event.Week) / SeasonWeeks,
		}
		if days, low, high, err := e.pred.Predict(f); err == nil {
			return Estimate{
				PredictedDays:      days,
				ConfidenceLowDays:  low,
				ConfidenceHighDays: high,
				ModelDays:          days,
				Source:             SourceModel,
			}
		}
	}

	days := statusFloorDays[event.Status]
	return Estimate{
		PredictedDays:      days,
		ConfidenceLowDays:  math.Max(1, days-2),
		ConfidenceHighDays: days + 7,
		Source:             SourceStatusFloor,
	}
}

// applySignal folds a news signal into the estimate. Recognized timelines
// replace the prediction outright; an unrecognized signal that still
// carries a day hint wildly different from the model flags a disagreement
// but keeps the model.
func (e *Estimator) applySignal(est *Estimate, signal *news.Signal, currentWeek int) {
	if signal == nil {
		return
	}

	if signal.Kind == news.SignalNone {
		if signal.HintDays > 0 && est.PredictedDays > 0 {
			ratio := float64(signal.HintDays) / est.PredictedDays
			if ratio > 2 || ratio < 0.5 {
				est.Flags = append(est.Flags,
					fmt.Sprintf("news mentions %d days, model predicts %.0f", signal.HintDays, est.PredictedDays))
			}
		}
		return
	}

	days := float64(signal.Days)
	low := float64(signal.Low)
	high := float64(signal.High)

	if signal.Kind == news.SignalSeasonEnding {
		// Length depends on where we are in the season.
		weeksLeft := SeasonWeeks - currentWeek
		if weeksLeft < 1 {
			weeksLeft = 1
		}
		days = float64(weeksLeft) * 7
		low = days
		high = 365
	}

	est.PredictedDays = days
	est.ConfidenceLowDays = low
	est.ConfidenceHighDays = high
	est.Source = SourceNewsOverride
	est.OverrideReason = fmt.Sprintf("%s: %q", signal.Kind, signal.Phrase)
	if signal.Phrase == "" {
		est.OverrideReason = string(signal.Kind)
	}
}

// weeksOut converts days to whole weeks, rounding up. 19 days is 3 weeks.
func weeksOut(days float64) int {
	d := int(math.Ceil(days))
	if d < 0 {
		d = 0
	}
	return (d + 6) / 7
}
