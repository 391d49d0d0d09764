package store

import (
	"database/sql"
	"fmt"
	"time"
)

// InjuryStatus is the league-reported designation for an injured player.
type InjuryStatus string

const (
	StatusQuestionable InjuryStatus = "Questionable"
	StatusDoubtful     InjuryStatus = "Doubtful"
	StatusOut          InjuryStatus = "Out"
	StatusIR           InjuryStatus = "IR"
	StatusPUP          InjuryStatus = "PUP"
	StatusSuspended    InjuryStatus = "Suspended"
)

// severityRanks orders statuses for worsen/improve comparison.
// Out, PUP and Suspended share a rank: all mean "not playing this week".
var severityRanks = map[InjuryStatus]int{
	StatusQuestionable: 2,
	StatusDoubtful:     3,
	StatusOut:          4,
	StatusPUP:          4,
	StatusSuspended:    4,
	StatusIR:           5,
}

// ParseInjuryStatus validates a feed-reported status string.
func ParseInjuryStatus(s string) (InjuryStatus, error) {
	status := InjuryStatus(s)
	if _, ok := severityRanks[status]; !ok {
		return "", fmt.Errorf("unknown injury status %q", s)
	}
	return status, nil
}

// SeverityRank returns the status's position in the severity order.
// Unknown statuses rank 0, below everything valid.
func (s InjuryStatus) SeverityRank() int {
	return severityRanks[s]
}

// InjuryEvent is one continuous injury occurrence for a player. A new event
// is created only when a previously-healthy player is observed injured again;
// repeat observations of the same injury update the existing event.
type InjuryEvent struct {
	EventID     int64          `json:"event_id" db:"event_id"`
	PlayerID    string         `json:"player_id" db:"player_id"`
	PlayerName  string         `json:"player_name" db:"player_name"`
	Position    string         `json:"position" db:"position"`
	Team        string         `json:"team" db:"team"`
	Status      InjuryStatus   `json:"status" db:"status"`
	BodyPart    sql.NullString `json:"body_part,omitempty" db:"body_part"`
	Notes       sql.NullString `json:"notes,omitempty" db:"notes"`
	FirstSeen   time.Time      `json:"first_seen" db:"first_seen"`
	LastUpdated time.Time      `json:"last_updated" db:"last_updated"`
	RecoveredAt sql.NullTime   `json:"recovered_at,omitempty" db:"recovered_at"`
	DaysOut     sql.NullInt32  `json:"days_out,omitempty" db:"days_out"`
	Season      int            `json:"season" db:"season"`
	Week        int            `json:"week" db:"week"`
	Source      string         `json:"source" db:"source"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// Open reports whether the injury is still ongoing.
func (e *InjuryEvent) Open() bool {
	return !e.RecoveredAt.Valid
}

// BodyPartOrUnknown returns the normalized body part, or "" when the feed
// did not report one.
func (e *InjuryEvent) BodyPartOrUnknown() string {
	if e.BodyPart.Valid {
		return e.BodyPart.String
	}
	return ""
}

// StatusChange records one severity transition on an event.
type StatusChange struct {
	ID         int64        `json:"id" db:"id"`
	EventID    int64        `json:"event_id" db:"event_id"`
	OldStatus  InjuryStatus `json:"old_status" db:"old_status"`
	NewStatus  InjuryStatus `json:"new_status" db:"new_status"`
	ChangeDate time.Time    `json:"change_date" db:"change_date"`
}

// PlayerInjuryProfile aggregates a player's closed injury events. The
// current open event is excluded: by the time a new event opens, all prior
// events have been closed, so "closed" and "prior" coincide.
type PlayerInjuryProfile struct {
	PlayerID             string         `json:"player_id"`
	TotalInjuryCount     int            `json:"total_injury_count"`
	RecurrenceByBodyPart map[string]int `json:"recurrence_by_body_part"`
	RecentInjuryCount6Mo int            `json:"recent_injury_count_6mo"`
	ClosedWithDaysOut    int            `json:"closed_with_days_out"`
	SlowRecoveries       int            `json:"slow_recoveries"` // days_out > 21
	AvgRecoveryDays      float64        `json:"avg_recovery_days"`
	LastInjuryAt         sql.NullTime   `json:"last_injury_at,omitempty"`
}

// EmptyProfile returns the all-zero profile used for players with no
// recorded history. A first-ever injury scores on severity and recency
// alone; it is not an error.
func EmptyProfile(playerID string) *PlayerInjuryProfile {
	return &PlayerInjuryProfile{
		PlayerID:             playerID,
		RecurrenceByBodyPart: map[string]int{},
	}
}

// RecurrenceCount returns how many closed events hit the given body part.
func (p *PlayerInjuryProfile) RecurrenceCount(bodyPart string) int {
	if bodyPart == "" {
		return 0
	}
	return p.RecurrenceByBodyPart[bodyPart]
}

// TrainingSample is one resolved injury used to fit the return-time model.
type TrainingSample struct {
	BodyPart         string
	Position         string
	Severity         int
	TotalInjuryCount int
	RecurrenceCount  int
	SeasonProgress   float64
	DaysOut          int
}
