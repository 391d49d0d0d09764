package detector

import (
	"log"
	"sort"
	"time"

	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/fortuna/gridiron/internal/store"
)

// Classification of one player between two snapshots.
type Classification string

const (
	ClassificationNew       Classification = "NEW"
	ClassificationWorsened  Classification = "WORSENED"
	ClassificationImproved  Classification = "IMPROVED"
	ClassificationUnchanged Classification = "UNCHANGED"
)

// Result is the detector's verdict on one currently-injured player.
type Result struct {
	Classification  Classification
	Record          ingest.Record
	Status          store.InjuryStatus
	Previous        *store.InjuryEvent // nil for NEW
	OldStatus       store.InjuryStatus // zero for NEW
	HoursSinceFirst float64            // 0 for NEW
	WithinWindow    bool
}

// Alertable reports whether this result should produce an alert. New and
// worsened injuries always alert; a worsening is news no matter how stale
// the injury is. Unchanged injuries alert only inside the window, improved
// ones never do.
func (r *Result) Alertable() bool {
	switch r.Classification {
	case ClassificationNew, ClassificationWorsened:
		return true
	case ClassificationUnchanged:
		return r.WithinWindow
	default:
		return false
	}
}

// Detector classifies injury snapshots against the previous cycle.
type Detector struct {
	windowHours float64
}

// New creates a detector. windowHours bounds how long an unchanged injury
// keeps alerting; zero means an injury alerts only when first detected.
func New(windowHours float64) *Detector {
	return &Detector{windowHours: windowHours}
}

// Detect compares the fresh feed against the previous snapshot, keyed by
// player ID. Records whose status does not parse are skipped with a
// warning. Results come back sorted by player ID.
func (d *Detector) Detect(prev map[string]*store.InjuryEvent, fresh []ingest.Record, now time.Time) []Result {
	results := make([]Result, 0, len(fresh))

	for _, record := range fresh {
		status, err := store.ParseInjuryStatus(record.Status)
		if err != nil {
			log.Printf("  ⚠️  skipping %s (%s): %v", record.Name, record.PlayerID, err)
			continue
		}

		prevEvent, seen := prev[record.PlayerID]
		if !seen || !prevEvent.Open() {
			results = append(results, Result{
				Classification: ClassificationNew,
				Record:         record,
				Status:         status,
				WithinWindow:   true,
			})
			continue
		}

		result := Result{
			Record:          record,
			Status:          status,
			Previous:        prevEvent,
			OldStatus:       prevEvent.Status,
			HoursSinceFirst: now.Sub(prevEvent.FirstSeen).Hours(),
		}
		result.WithinWindow = d.windowHours > 0 && result.HoursSinceFirst <= d.windowHours

		oldRank := prevEvent.Status.SeverityRank()
		newRank := status.SeverityRank()
		switch {
		case newRank > oldRank:
			result.Classification = ClassificationWorsened
		case newRank < oldRank:
			result.Classification = ClassificationImproved
		default:
			result.Classification = ClassificationUnchanged
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Record.PlayerID < results[j].Record.PlayerID
	})
	return results
}

// Recovered returns the previous-snapshot events whose players no longer
// appear in the fresh feed. Dropping off the league injury list is the
// only recovery signal the feeds give us.
func (d *Detector) Recovered(prev map[string]*store.InjuryEvent, fresh []ingest.Record) []*store.InjuryEvent {
	current := make(map[string]bool, len(fresh))
	for _, record := range fresh {
		current[record.PlayerID] = true
	}

	var recovered []*store.InjuryEvent
	for playerID, event := range prev {
		if !current[playerID] && event.Open() {
			recovered = append(recovered, event)
		}
	}

	sort.Slice(recovered, func(i, j int) bool {
		return recovered[i].PlayerID < recovered[j].PlayerID
	})
	return recovered
}
