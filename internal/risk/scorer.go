package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/fortuna/gridiron/internal/store"
)

// Component weights. They sum to 1.0 so the composite stays on 0-100.
const (
	WeightFrequency  = 0.30
	WeightRecurrence = 0.25
	WeightSeverity   = 0.20
	WeightRecency    = 0.15
	WeightRecovery   = 0.10
)

// Level buckets a composite score.
type Level string

const (
	LevelCritical Level = "CRITICAL"
	LevelHigh     Level = "HIGH"
	LevelModerate Level = "MODERATE"
	LevelLow      Level = "LOW"
	LevelMinimal  Level = "MINIMAL"
)

// severityScores maps current status to its severity component. Suspended
// carries no physical injury risk despite ranking with Out for alerts.
var severityScores = map[store.InjuryStatus]float64{
	store.StatusQuestionable: 20,
	store.StatusDoubtful:     40,
	store.StatusOut:          60,
	store.StatusPUP:          90,
	store.StatusIR:           100,
	store.StatusSuspended:    0,
}

// Breakdown holds the raw 0-100 component scores before weighting.
type Breakdown struct {
	Frequency  float64 `json:"frequency"`
	Recurrence float64 `json:"recurrence"`
	Severity   float64 `json:"severity"`
	Recency    float64 `json:"recency"`
	Recovery   float64 `json:"recovery"`
}

// Assessment is the scored risk picture for one injured player.
type Assessment struct {
	Score            float64   `json:"score"`
	Level            Level     `json:"level"`
	Reasons          []string  `json:"reasons"`
	ChronicBodyParts []string  `json:"chronic_body_parts,omitempty"`
	Breakdown        Breakdown `json:"breakdown"`
}

// Score rates re-injury risk from the current event and the player's closed
// injury history. A player with no history floors at the severity component
// alone, so a zero-history Questionable scores 4.0, never 0.
func Score(current *store.InjuryEvent, profile *store.PlayerInjuryProfile) Assessment {
	bodyPart := current.BodyPartOrUnknown()
	priorOnPart := profile.RecurrenceCount(bodyPart)

	b := Breakdown{
		Frequency:  frequencyScore(profile.TotalInjuryCount),
		Recurrence: recurrenceScore(priorOnPart),
		Severity:   severityScores[current.Status],
		Recency:    recencyScore(profile.RecentInjuryCount6Mo),
		Recovery:   recoveryScore(profile.SlowRecoveries, profile.ClosedWithDaysOut),
	}

	score := b.Frequency*WeightFrequency +
		b.Recurrence*WeightRecurrence +
		b.Severity*WeightSeverity +
		b.Recency*WeightRecency +
		b.Recovery*WeightRecovery
	score = math.Round(score*100) / 100

	return Assessment{
		Score:            score,
		Level:            levelFor(score),
		Reasons:          reasons(current, profile, priorOnPart, bodyPart),
		ChronicBodyParts: chronicBodyParts(profile),
		Breakdown:        b,
	}
}

// frequencyScore buckets the total count of prior injuries. The curve is
// steep early because the second and third injuries say the most about a
// player's durability.
func frequencyScore(count int) float64 {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 15
	case count == 2:
		return 35
	case count == 3:
		return 60
	default:
		score := 85 + float64(count-4)*5
		return math.Min(score, 100)
	}
}

// recurrenceScore rates prior injuries to the same body part as the
// current one. Any repeat at all earns a 20-point bonus on top of the
// count bucket.
func recurrenceScore(priorOnPart int) float64 {
	if priorOnPart <= 0 {
		return 0
	}
	var base float64
	switch {
	case priorOnPart == 1:
		base = 0
	case priorOnPart == 2:
		base = 30
	case priorOnPart == 3:
		base = 60
	default:
		base = 90
	}
	return math.Min(base+20, 100)
}

// recencyScore saturates at three injuries inside the last six months.
func recencyScore(recent6Mo int) float64 {
	capped := recent6Mo
	if capped > 3 {
		capped = 3
	}
	return float64(capped) / 3 * 100
}

// recoveryScore is the share of measured past recoveries that took three
// weeks or longer.
func recoveryScore(slow, measured int) float64 {
	if measured == 0 {
		return 0
	}
	return float64(slow) / float64(measured) * 100
}

func levelFor(score float64) Level {
	switch {
	case score >= 75:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelModerate
	case score >= 20:
		return LevelLow
	default:
		return LevelMinimal
	}
}

// reasons builds the human-readable explanation, one line per contributing
// component, in fixed component order.
func reasons(current *store.InjuryEvent, profile *store.PlayerInjuryProfile, priorOnPart int, bodyPart string) []string {
	var out []string

	if profile.TotalInjuryCount > 0 {
		out = append(out, fmt.Sprintf("%d prior injuries on record", profile.TotalInjuryCount))
	}
	if priorOnPart >= 1 {
		out = append(out, fmt.Sprintf("Recurring %s injury (%dx)", bodyPart, priorOnPart+1))
	}
	out = append(out, fmt.Sprintf("Current status %s (severity %d)", current.Status, current.Status.SeverityRank()))
	if profile.RecentInjuryCount6Mo > 0 {
		out = append(out, fmt.Sprintf("%d injuries in last 6 months", profile.RecentInjuryCount6Mo))
	}
	if profile.SlowRecoveries > 0 {
		out = append(out, fmt.Sprintf("Slow healer: %d of %d past injuries took 3+ weeks", profile.SlowRecoveries, profile.ClosedWithDaysOut))
	}
	return out
}

// chronicBodyParts lists parts injured two or more times before, sorted.
func chronicBodyParts(profile *store.PlayerInjuryProfile) []string {
	var parts []string
	for part, count := range profile.RecurrenceByBodyPart {
		if count >= 2 {
			parts = append(parts, part)
		}
	}
	sort.Strings(parts)
	return parts
}
