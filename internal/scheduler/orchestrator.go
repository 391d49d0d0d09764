package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fortuna/gridiron/internal/engine"
	"github.com/fortuna/gridiron/internal/ingest/depthchart"
	"github.com/fortuna/gridiron/internal/report"
)

// Config holds scheduler configuration
type Config struct {
	PollInterval      time.Duration // Default: 30m
	DepthChartHour    int           // Default: 4 (4 AM refresh)
	MaxRetries        int           // Default: 3
	RetryDelay        time.Duration // Default: 5s
	ReportPath        string        // "" disables the markdown report
	EnableDepthCharts bool
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval:      30 * time.Minute,
		DepthChartHour:    4,
		MaxRetries:        3,
		RetryDelay:        5 * time.Second,
		EnableDepthCharts: true,
	}
}

// Orchestrator runs the injury check loop and the daily depth chart refresh.
type Orchestrator struct {
	engine *engine.Engine
	depth  *depthchart.Manager
	config *Config
	cancel context.CancelFunc

	// manual trigger from the REST API
	trigger chan chan cycleResult

	mu         sync.RWMutex
	lastReport *engine.CycleReport
	lastError  error
	lastRun    time.Time
}

type cycleResult struct {
	report *engine.CycleReport
	err    error
}

// NewOrchestrator creates a scheduler over a wired engine. depth may be nil.
func NewOrchestrator(eng *engine.Engine, depth *depthchart.Manager, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Orchestrator{
		engine:  eng,
		depth:   depth,
		config:  config,
		trigger: make(chan chan cycleResult),
	}
}

// Start begins all scheduled tasks and blocks until ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	log.Println("╔════════════════════════════════════════╗")
	log.Println("║   Gridiron Injury Monitor              ║")
	log.Println("╚════════════════════════════════════════╝")
	log.Printf("Poll interval: %v", o.config.PollInterval)
	log.Printf("Depth chart refresh: %v (at %02d:00)", o.config.EnableDepthCharts, o.config.DepthChartHour)
	log.Println()

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.config.EnableDepthCharts && o.depth != nil {
		go o.runDepthChartRefresh(ctx)
	}

	o.runPolling(ctx)
	log.Println("Scheduler stopping...")
}

// Stop cancels all scheduled tasks.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

// LastReport returns the most recent cycle outcome for the status endpoint.
func (o *Orchestrator) LastReport() (*engine.CycleReport, time.Time, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lastReport, o.lastRun, o.lastError
}

// TriggerCheck runs a cycle immediately, serialized with the scheduled
// ones, and returns its report.
func (o *Orchestrator) TriggerCheck(ctx context.Context) (*engine.CycleReport, error) {
	reply := make(chan cycleResult, 1)
	select {
	case o.trigger <- reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case result := <-reply:
		return result.report, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// runPolling is the main check loop. Cycles never overlap: scheduled ticks
// and manual triggers share this single goroutine.
func (o *Orchestrator) runPolling(ctx context.Context) {
	log.Printf("→ Injury polling started (interval: %v)", o.config.PollInterval)
	log.Println("  Source priority: Sleeper (primary) → ESPN (fallback)")

	ticker := time.NewTicker(o.config.PollInterval)
	defer ticker.Stop()

	consecutiveErrors := 0
	maxConsecutiveErrors := 5

	// Run immediately on start
	o.runCycleWithRetry(ctx, &consecutiveErrors, maxConsecutiveErrors)

	for {
		select {
		case <-ctx.Done():
			log.Println("→ Injury polling stopped")
			return
		case <-ticker.C:
			o.runCycleWithRetry(ctx, &consecutiveErrors, maxConsecutiveErrors)
		case reply := <-o.trigger:
			log.Println("→ Manual check triggered")
			rep, err := o.runCycleWithRetry(ctx, &consecutiveErrors, maxConsecutiveErrors)
			reply <- cycleResult{report: rep, err: err}
		}
	}
}

// runCycleWithRetry runs one cycle with retry logic.
func (o *Orchestrator) runCycleWithRetry(ctx context.Context, consecutiveErrors *int, maxConsecutiveErrors int) (*engine.CycleReport, error) {
	var rep *engine.CycleReport
	var err error

	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		rep, err = o.engine.RunCycle(ctx)
		if err == nil {
			*consecutiveErrors = 0
			break
		}

		log.Printf("  ⚠️  Check attempt %d/%d failed: %v", attempt, o.config.MaxRetries, err)
		if attempt < o.config.MaxRetries {
			log.Printf("  Retrying in %v...", o.config.RetryDelay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}

	o.mu.Lock()
	o.lastRun = time.Now()
	o.lastError = err
	if err == nil {
		o.lastReport = rep
	}
	o.mu.Unlock()

	if err != nil {
		*consecutiveErrors++
		log.Printf("  ❌ All %d retry attempts failed. Consecutive errors: %d/%d",
			o.config.MaxRetries, *consecutiveErrors, maxConsecutiveErrors)
		if *consecutiveErrors >= maxConsecutiveErrors {
			log.Printf("  ⚠️  High error rate detected. Backing off 60s...")
			select {
			case <-ctx.Done():
			case <-time.After(60 * time.Second):
			}
		}
		return nil, err
	}

	if o.config.ReportPath != "" {
		if werr := report.WriteMarkdown(o.config.ReportPath, rep); werr != nil {
			log.Printf("  ⚠️  Writing report to %s failed: %v", o.config.ReportPath, werr)
		}
	}
	return rep, nil
}

// runDepthChartRefresh refreshes depth charts daily, plus once at startup.
func (o *Orchestrator) runDepthChartRefresh(ctx context.Context) {
	log.Printf("→ Depth chart refresh started (runs at %02d:00 daily)", o.config.DepthChartHour)

	if err := o.depth.FetchAll(ctx); err != nil {
		log.Printf("  ⚠️  Initial depth chart fetch failed: %v", err)
	} else {
		log.Println("  ✓ Depth charts loaded")
	}

	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), o.config.DepthChartHour, 0, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}
		waitDuration := time.Until(nextRun)
		log.Printf("  Next depth chart refresh: %s (in %v)", nextRun.Format("2006-01-02 15:04:05"), waitDuration.Round(time.Second))

		select {
		case <-ctx.Done():
			log.Println("→ Depth chart refresh stopped")
			return
		case <-time.After(waitDuration):
			if err := o.depth.FetchAll(ctx); err != nil {
				log.Printf("  ❌ Depth chart refresh failed: %v", err)
			} else {
				log.Println("  ✓ Depth charts refreshed")
			}
		}
	}
}
