package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/store"
)

// InjuryRepository is the history store: append-only injury events per
// player, plus the status-change audit trail.
type InjuryRepository struct {
	db *store.Database
}

// NewInjuryRepository creates a new injury repository.
func NewInjuryRepository(db *store.Database) *InjuryRepository {
	return &InjuryRepository{db: db}
}

const eventColumns = `
	event_id, player_id, player_name, position, team, status, body_part, notes,
	first_seen, last_updated, recovered_at, days_out, season, week, source,
	created_at, updated_at
`

func scanEvent(row interface{ Scan(...interface{}) error }) (*store.InjuryEvent, error) {
	e := &store.InjuryEvent{}
	err := row.Scan(
		&e.EventID, &e.PlayerID, &e.PlayerName, &e.Position, &e.Team, &e.Status,
		&e.BodyPart, &e.Notes, &e.FirstSeen, &e.LastUpdated, &e.RecoveredAt,
		&e.DaysOut, &e.Season, &e.Week, &e.Source, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetOpenEvent returns the player's ongoing injury event, or nil if the
// player is currently healthy.
func (r *InjuryRepository) GetOpenEvent(ctx context.Context, playerID string) (*store.InjuryEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM injuries WHERE player_id = $1 AND recovered_at IS NULL`

	event, err := scanEvent(r.db.DB().QueryRowContext(ctx, query, playerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying open event for %s: %w", playerID, err)
	}
	return event, nil
}

// ListOpenEvents returns all ongoing injuries, most recent first.
func (r *InjuryRepository) ListOpenEvents(ctx context.Context) ([]*store.InjuryEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM injuries WHERE recovered_at IS NULL ORDER BY first_seen DESC`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying open events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// GetHistory returns a player's complete injury history, newest first.
func (r *InjuryRepository) GetHistory(ctx context.Context, playerID string) ([]*store.InjuryEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM injuries WHERE player_id = $1 ORDER BY first_seen DESC`

	rows, err := r.db.DB().QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying injury history for %s: %w", playerID, err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]*store.InjuryEvent, error) {
	var events []*store.InjuryEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning injury event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Observation is one per-player write queued for a poll cycle.
type Observation struct {
	Event     *store.InjuryEvent
	IsNew     bool
	OldStatus store.InjuryStatus // set when the status changed on a continuing event
}

// ApplyCycle persists one poll cycle's observations and recoveries in a
// single transaction: partial cycle writes would corrupt the history the
// scorer depends on. Returns the event ID assigned to each player.
func (r *InjuryRepository) ApplyCycle(ctx context.Context, observations []Observation, recoveredPlayerIDs []string, now time.Time) (map[string]int64, error) {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning cycle transaction: %w", err)
	}
	defer tx.Rollback()

	eventIDs := make(map[string]int64, len(observations))

	for _, obs := range observations {
		var eventID int64
		if obs.IsNew {
			eventID, err = insertEvent(ctx, tx, obs.Event)
		} else {
			eventID, err = updateEvent(ctx, tx, obs.Event, now)
			if err == nil && obs.OldStatus != "" && obs.OldStatus != obs.Event.Status {
				_, err = tx.ExecContext(ctx,
					`INSERT INTO status_changes (event_id, old_status, new_status, change_date) VALUES ($1, $2, $3, $4)`,
					eventID, obs.OldStatus, obs.Event.Status, now)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("recording observation for %s: %w", obs.Event.PlayerID, err)
		}
		eventIDs[obs.Event.PlayerID] = eventID
	}

	for _, playerID := range recoveredPlayerIDs {
		if err := closeEvent(ctx, tx, playerID, now); err != nil {
			return nil, fmt.Errorf("closing event for %s: %w", playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cycle transaction: %w", err)
	}
	return eventIDs, nil
}

// RecordObservation persists a single observation outside a cycle (used by
// the REST manual-check path and tests).
func (r *InjuryRepository) RecordObservation(ctx context.Context, obs Observation, now time.Time) (int64, error) {
	ids, err := r.ApplyCycle(ctx, []Observation{obs}, nil, now)
	if err != nil {
		return 0, err
	}
	return ids[obs.Event.PlayerID], nil
}

// CloseEvent marks the player's open injury as recovered and derives
// days_out from first_seen.
func (r *InjuryRepository) CloseEvent(ctx context.Context, playerID string, recoveredAt time.Time) error {
	_, err := r.ApplyCycle(ctx, nil, []string{playerID}, recoveredAt)
	return err
}

func insertEvent(ctx context.Context, tx *sql.Tx, e *store.InjuryEvent) (int64, error) {
	query := `
		INSERT INTO injuries (
			player_id, player_name, position, team, status, body_part, notes,
			first_seen, last_updated, season, week, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING event_id
	`
	var eventID int64
	err := tx.QueryRowContext(ctx, query,
		e.PlayerID, e.PlayerName, e.Position, e.Team, e.Status, e.BodyPart, e.Notes,
		e.FirstSeen, e.LastUpdated, e.Season, e.Week, e.Source,
	).Scan(&eventID)
	return eventID, err
}

// updateEvent refreshes the open event's mutable fields. first_seen is
// never touched: it defines the event's start for the whole alert window.
func updateEvent(ctx context.Context, tx *sql.Tx, e *store.InjuryEvent, now time.Time) (int64, error) {
	query := `
		UPDATE injuries
		SET status = $2, body_part = COALESCE($3, body_part), notes = COALESCE($4, notes),
			team = $5, last_updated = $6, updated_at = $6
		WHERE player_id = $1 AND recovered_at IS NULL
		RETURNING event_id
	`
	var bodyPart, notes interface{}
	if e.BodyPart.Valid {
		bodyPart = e.BodyPart.String
	}
	if e.Notes.Valid {
		notes = e.Notes.String
	}

	var eventID int64
	err := tx.QueryRowContext(ctx, query, e.PlayerID, e.Status, bodyPart, notes, e.Team, now).Scan(&eventID)
	if err == sql.ErrNoRows {
		// Continuation observed but no open row exists; recover by inserting.
		return insertEvent(ctx, tx, e)
	}
	return eventID, err
}

func closeEvent(ctx context.Context, tx *sql.Tx, playerID string, recoveredAt time.Time) error {
	query := `
		UPDATE injuries
		SET recovered_at = $2,
			days_out = GREATEST(0, (EXTRACT(EPOCH FROM ($2 - first_seen)) / 86400)::int),
			updated_at = $2
		WHERE player_id = $1 AND recovered_at IS NULL
	`
	_, err := tx.ExecContext(ctx, query, playerID, recoveredAt)
	return err
}

// StatusChanges returns the audit trail for an event, oldest first.
func (r *InjuryRepository) StatusChanges(ctx context.Context, eventID int64) ([]*store.StatusChange, error) {
	query := `
		SELECT id, event_id, old_status, new_status, change_date
		FROM status_changes
		WHERE event_id = $1
		ORDER BY change_date
	`
	rows, err := r.db.DB().QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("querying status changes: %w", err)
	}
	defer rows.Close()

	var changes []*store.StatusChange
	for rows.Next() {
		c := &store.StatusChange{}
		if err := rows.Scan(&c.ID, &c.EventID, &c.OldStatus, &c.NewStatus, &c.ChangeDate); err != nil {
			return nil, fmt.Errorf("scanning status change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
