package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/detector"
	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/fortuna/gridiron/internal/ingest/depthchart"
	"github.com/fortuna/gridiron/internal/news"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/risk"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/fortuna/gridiron/internal/timeline"
)

// Alert is one alertable injury change, fully enriched.
type Alert struct {
	PlayerID       string                  `json:"player_id"`
	PlayerName     string                  `json:"player_name"`
	Position       string                  `json:"position"`
	Team           string                  `json:"team"`
	Classification detector.Classification `json:"classification"`
	OldStatus      store.InjuryStatus      `json:"old_status,omitempty"`
	NewStatus      store.InjuryStatus      `json:"new_status"`
	BodyPart       string                  `json:"body_part,omitempty"`
	Notes          string                  `json:"notes,omitempty"`
	Risk           risk.Assessment         `json:"risk"`
	Timeline       timeline.Estimate       `json:"timeline"`
	Backup         *depthchart.Backup      `json:"backup,omitempty"`
	News           *news.Signal            `json:"news,omitempty"`
	Timestamp      time.Time               `json:"timestamp"`
}

// PlayerEntry is one injured player's full picture in a cycle report,
// alertable or not.
type PlayerEntry struct {
	Event          *store.InjuryEvent      `json:"event"`
	Classification detector.Classification `json:"classification"`
	Risk           risk.Assessment         `json:"risk"`
	Timeline       timeline.Estimate       `json:"timeline"`
	Backup         *depthchart.Backup      `json:"backup,omitempty"`
	News           *news.Signal            `json:"news,omitempty"`
}

// CycleReport summarizes one poll cycle.
type CycleReport struct {
	RanAt        time.Time     `json:"ran_at"`
	Duration     time.Duration `json:"duration"`
	Season       int           `json:"season"`
	Week         int           `json:"week"`
	FeedSource   string        `json:"feed_source"`
	TotalInjured int           `json:"total_injured"`
	NewCount     int           `json:"new_count"`
	Worsened     int           `json:"worsened_count"`
	Improved     int           `json:"improved_count"`
	Unchanged    int           `json:"unchanged_count"`
	Recovered    int           `json:"recovered_count"`
	Alerts       []Alert       `json:"alerts"`
	Entries      []PlayerEntry `json:"entries"`
}

// Notifier pushes alerts to an external channel. nil disables it.
type Notifier interface {
	NotifyAlerts(ctx context.Context, alerts []Alert) error
}

// Engine runs the monitoring pipeline: ingest, detect, score, estimate,
// persist, publish.
type Engine struct {
	ingester  *ingest.FeedIngester
	detector  *detector.Detector
	repo      *repository.InjuryRepository
	cache     *cache.RedisCache
	estimator *timeline.Estimator

	// Optional collaborators; any may be nil.
	newsSvc   *news.Service
	publisher *publisher.RedisPublisher
	notifier  Notifier
	depth     *depthchart.Manager

	season      int
	currentWeek int
}

// Config wires an engine.
type Config struct {
	Ingester  *ingest.FeedIngester
	Detector  *detector.Detector
	Repo      *repository.InjuryRepository
	Cache     *cache.RedisCache
	Estimator *timeline.Estimator
	News      *news.Service
	Publisher *publisher.RedisPublisher
	Notifier  Notifier
	Depth     *depthchart.Manager
	Season    int
	Week      int
}

// New creates an engine from its wired collaborators.
func New(cfg Config) *Engine {
	return &Engine{
		ingester:    cfg.Ingester,
		detector:    cfg.Detector,
		repo:        cfg.Repo,
		cache:       cfg.Cache,
		estimator:   cfg.Estimator,
		newsSvc:     cfg.News,
		publisher:   cfg.Publisher,
		notifier:    cfg.Notifier,
		depth:       cfg.Depth,
		season:      cfg.Season,
		currentWeek: cfg.Week,
	}
}

// SetWeek updates the current NFL week between cycles.
func (e *Engine) SetWeek(week int) {
	e.currentWeek = week
}

// RunCycle executes one full poll cycle. Database writes happen in a single
// transaction; enrichment failures (profile, news, depth chart) degrade the
// affected player, never the cycle.
func (e *Engine) RunCycle(ctx context.Context) (*CycleReport, error) {
	started := time.Now()
	now := started.UTC()
	log.Printf("🏈 Starting injury check cycle (season %d week %d)", e.season, e.currentWeek)

	prev, err := e.cache.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading previous snapshot: %w", err)
	}

	fresh, err := e.ingester.Fetch(ctx)
	if err != nil {
		cached, cerr := e.loadCachedFeed(ctx)
		if cerr != nil || len(cached) == 0 {
			return nil, fmt.Errorf("fetching injury feed: %w", err)
		}
		log.Printf("  ⚠️  all feeds failed, reusing cached feed (%d records): %v", len(cached), err)
		fresh = cached
	} else {
		e.saveCachedFeed(ctx, fresh)
	}

	if e.newsSvc != nil {
		if err := e.newsSvc.Refresh(ctx); err != nil {
			log.Printf("  ⚠️  news refresh failed, using previous batch: %v", err)
		}
	}

	results := e.detector.Detect(prev, fresh, now)
	recovered := e.detector.Recovered(prev, fresh)

	report := &CycleReport{
		RanAt:        now,
		Season:       e.season,
		Week:         e.currentWeek,
		TotalInjured: len(results),
		Recovered:    len(recovered),
	}
	if len(fresh) > 0 {
		report.FeedSource = fresh[0].Source
	}

	observations := make([]repository.Observation, 0, len(results))
	nextSnapshot := make(map[string]*store.InjuryEvent, len(results))
	injuredNames := injuredNameIndex(fresh)

	for _, result := range results {
		event := e.buildEvent(result, now)

		entry := PlayerEntry{Event: event, Classification: result.Classification}

		profile, err := e.repo.GetProfile(ctx, event.PlayerID)
		if err != nil {
			log.Printf("  ⚠️  profile for %s unavailable, scoring without history: %v", event.PlayerName, err)
			profile = store.EmptyProfile(event.PlayerID)
		}
		entry.Risk = risk.Score(event, profile)

		if e.newsSvc != nil {
			entry.News = e.newsSvc.SignalFor(ctx, event.PlayerName, event.Team)
		}
		entry.Timeline = e.estimator.Estimate(event, profile, e.currentWeek, entry.News)

		if e.depth != nil && event.Status.SeverityRank() >= store.StatusOut.SeverityRank() {
			entry.Backup = e.depth.BackupFor(event.PlayerName, event.Team, event.Position, injuredNames)
		}

		switch result.Classification {
		case detector.ClassificationNew:
			report.NewCount++
		case detector.ClassificationWorsened:
			report.Worsened++
		case detector.ClassificationImproved:
			report.Improved++
		default:
			report.Unchanged++
		}

		observations = append(observations, repository.Observation{
			Event:     event,
			IsNew:     result.Classification == detector.ClassificationNew,
			OldStatus: result.OldStatus,
		})
		nextSnapshot[event.PlayerID] = event

		if result.Alertable() {
			report.Alerts = append(report.Alerts, Alert{
				PlayerID:       event.PlayerID,
				PlayerName:     event.PlayerName,
				Position:       event.Position,
				Team:           event.Team,
				Classification: result.Classification,
				OldStatus:      result.OldStatus,
				NewStatus:      event.Status,
				BodyPart:       event.BodyPartOrUnknown(),
				Notes:          event.Notes.String,
				Risk:           entry.Risk,
				Timeline:       entry.Timeline,
				Backup:         entry.Backup,
				News:           entry.News,
				Timestamp:      now,
			})
		}
		report.Entries = append(report.Entries, entry)
	}

	recoveredIDs := make([]string, 0, len(recovered))
	for _, event := range recovered {
		recoveredIDs = append(recoveredIDs, event.PlayerID)
	}

	eventIDs, err := e.repo.ApplyCycle(ctx, observations, recoveredIDs, now)
	if err != nil {
		return nil, fmt.Errorf("persisting cycle: %w", err)
	}
	for _, event := range nextSnapshot {
		event.EventID = eventIDs[event.PlayerID]
	}

	for _, event := range recovered {
		if err := e.repo.UpdatePlayerSummary(ctx, event.PlayerID, event.PlayerName); err != nil {
			log.Printf("  ⚠️  summary refresh for %s failed: %v", event.PlayerName, err)
		}
	}

	if err := e.cache.SaveSnapshot(ctx, nextSnapshot); err != nil {
		log.Printf("  ⚠️  saving snapshot failed, next cycle re-alerts: %v", err)
	}

	e.dispatch(ctx, report)

	report.Duration = time.Since(started)
	log.Printf("✓ Cycle complete in %v: %d injured, %d new, %d worsened, %d recovered, %d alerts",
		report.Duration.Round(time.Millisecond), report.TotalInjured,
		report.NewCount, report.Worsened, report.Recovered, len(report.Alerts))
	return report, nil
}

const feedCacheKey = cache.FeedCachePrefix + "latest"

// saveCachedFeed keeps the last good feed batch in Redis so a transient
// source outage does not blind a cycle. Failures only cost the fallback.
func (e *Engine) saveCachedFeed(ctx context.Context, records []ingest.Record) {
	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, feedCacheKey, data, cache.FeedCacheTTL); err != nil {
		log.Printf("  ⚠️  caching feed failed: %v", err)
	}
}

func (e *Engine) loadCachedFeed(ctx context.Context) ([]ingest.Record, error) {
	data, err := e.cache.Get(ctx, feedCacheKey)
	if err != nil {
		return nil, err
	}
	var records []ingest.Record
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// buildEvent constructs the event row for an observation. Continuing events
// keep their identity and first_seen from the previous snapshot.
func (e *Engine) buildEvent(result detector.Result, now time.Time) *store.InjuryEvent {
	record := result.Record

	event := &store.InjuryEvent{
		PlayerID:    record.PlayerID,
		PlayerName:  record.Name,
		Position:    record.Position,
		Team:        record.Team,
		Status:      result.Status,
		BodyPart:    nullString(record.BodyPart),
		Notes:       nullString(record.Notes),
		FirstSeen:   now,
		LastUpdated: now,
		Season:      e.season,
		Week:        e.currentWeek,
		Source:      record.Source,
	}

	if prev := result.Previous; prev != nil {
		event.EventID = prev.EventID
		event.FirstSeen = prev.FirstSeen
		event.Season = prev.Season
		event.Week = prev.Week
		if !event.BodyPart.Valid {
			event.BodyPart = prev.BodyPart
		}
		if !event.Notes.Valid {
			event.Notes = prev.Notes
		}
	}
	return event
}

// dispatch publishes alerts and the report to the optional outputs. Failures
// are logged; the cycle already committed.
func (e *Engine) dispatch(ctx context.Context, report *CycleReport) {
	if e.publisher != nil {
		for _, alert := range report.Alerts {
			if err := e.publisher.PublishAlert(ctx, alert); err != nil {
				log.Printf("  ⚠️  publishing alert for %s failed: %v", alert.PlayerName, err)
			}
		}
		if err := e.publisher.PublishReport(ctx, report); err != nil {
			log.Printf("  ⚠️  publishing report failed: %v", err)
		}
	}

	if e.notifier != nil && len(report.Alerts) > 0 {
		if err := e.notifier.NotifyAlerts(ctx, report.Alerts); err != nil {
			log.Printf("  ⚠️  webhook notification failed: %v", err)
		}
	}
}

// injuredNameIndex maps normalized player name to status, for flagging
// backups who are themselves hurt.
func injuredNameIndex(records []ingest.Record) map[string]string {
	index := make(map[string]string, len(records))
	for _, record := range records {
		index[ingest.NormalizeName(record.Name)] = record.Status
	}
	return index
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
