package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/store"
)

// GetProfile aggregates a player's closed injury events into the profile
// consumed by the risk scorer and return estimator. A player with no
// history gets the all-zero profile, never an error.
func (r *InjuryRepository) GetProfile(ctx context.Context, playerID string) (*store.PlayerInjuryProfile, error) {
	profile := store.EmptyProfile(playerID)

	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE first_seen >= $2) AS recent_6mo,
			COUNT(*) FILTER (WHERE days_out IS NOT NULL) AS with_days_out,
			COUNT(*) FILTER (WHERE days_out > 21) AS slow,
			COALESCE(AVG(days_out) FILTER (WHERE days_out IS NOT NULL), 0) AS avg_days,
			MAX(first_seen) AS last_injury
		FROM injuries
		WHERE player_id = $1 AND recovered_at IS NOT NULL
	`
	cutoff := time.Now().AddDate(0, 0, -180)
	err := r.db.DB().QueryRowContext(ctx, query, playerID, cutoff).Scan(
		&profile.TotalInjuryCount,
		&profile.RecentInjuryCount6Mo,
		&profile.ClosedWithDaysOut,
		&profile.SlowRecoveries,
		&profile.AvgRecoveryDays,
		&profile.LastInjuryAt,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating profile for %s: %w", playerID, err)
	}

	recurrence, err := r.recurrenceByBodyPart(ctx, playerID)
	if err != nil {
		return nil, err
	}
	profile.RecurrenceByBodyPart = recurrence

	return profile, nil
}

func (r *InjuryRepository) recurrenceByBodyPart(ctx context.Context, playerID string) (map[string]int, error) {
	query := `
		SELECT body_part, COUNT(*) AS count
		FROM injuries
		WHERE player_id = $1 AND recovered_at IS NOT NULL AND body_part IS NOT NULL
		GROUP BY body_part
		ORDER BY count DESC
	`
	rows, err := r.db.DB().QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying recurrence for %s: %w", playerID, err)
	}
	defer rows.Close()

	recurrence := map[string]int{}
	for rows.Next() {
		var bodyPart string
		var count int
		if err := rows.Scan(&bodyPart, &count); err != nil {
			return nil, fmt.Errorf("scanning recurrence row: %w", err)
		}
		recurrence[bodyPart] = count
	}
	return recurrence, rows.Err()
}

// UpdatePlayerSummary refreshes the denormalized summary row for a player.
func (r *InjuryRepository) UpdatePlayerSummary(ctx context.Context, playerID, playerName string) error {
	var total, totalDays int
	var lastInjury sql.NullTime

	err := r.db.DB().QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(COALESCE(days_out, 0)), 0), MAX(first_seen)
		FROM injuries WHERE player_id = $1
	`, playerID).Scan(&total, &totalDays, &lastInjury)
	if err != nil {
		return fmt.Errorf("summarizing player %s: %w", playerID, err)
	}

	recurrence, err := r.recurrenceByBodyPart(ctx, playerID)
	if err != nil {
		return err
	}
	recurrenceJSON, err := json.Marshal(recurrence)
	if err != nil {
		return fmt.Errorf("encoding recurrence map: %w", err)
	}

	_, err = r.db.DB().ExecContext(ctx, `
		INSERT INTO player_summary (player_id, player_name, total_injuries, total_days_missed, recurring_body_parts, last_injury_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (player_id) DO UPDATE SET
			player_name = EXCLUDED.player_name,
			total_injuries = EXCLUDED.total_injuries,
			total_days_missed = EXCLUDED.total_days_missed,
			recurring_body_parts = EXCLUDED.recurring_body_parts,
			last_injury_date = EXCLUDED.last_injury_date,
			updated_at = NOW()
	`, playerID, playerName, total, totalDays, recurrenceJSON, lastInjury)
	if err != nil {
		return fmt.Errorf("upserting summary for %s: %w", playerID, err)
	}
	return nil
}

// TrainingSamples exports resolved injuries as model training rows. Only
// events with a known body part and a positive days_out qualify.
func (r *InjuryRepository) TrainingSamples(ctx context.Context) ([]store.TrainingSample, error) {
	query := `
		SELECT
			i.body_part, i.position, i.status, i.days_out, i.week,
			(SELECT COUNT(*) FROM injuries h
				WHERE h.player_id = i.player_id AND h.first_seen < i.first_seen) AS prior_count,
			(SELECT COUNT(*) FROM injuries h
				WHERE h.player_id = i.player_id AND h.body_part = i.body_part
				AND h.first_seen < i.first_seen) AS prior_recurrence
		FROM injuries i
		WHERE i.days_out IS NOT NULL AND i.days_out > 0 AND i.body_part IS NOT NULL
	`
	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying training samples: %w", err)
	}
	defer rows.Close()

	var samples []store.TrainingSample
	for rows.Next() {
		var s store.TrainingSample
		var status store.InjuryStatus
		var week int
		if err := rows.Scan(&s.BodyPart, &s.Position, &status, &s.DaysOut, &week, &s.TotalInjuryCount, &s.RecurrenceCount); err != nil {
			return nil, fmt.Errorf("scanning training sample: %w", err)
		}
		s.Severity = status.SeverityRank()
		s.SeasonProgress = float64(week) / 18.0
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
