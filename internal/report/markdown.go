package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fortuna/gridiron/internal/engine"
)

// WriteMarkdown renders the cycle report to a markdown file, highest risk
// first. The file is rewritten whole each cycle.
func WriteMarkdown(path string, rep *engine.CycleReport) error {
	content := Render(rep)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Render builds the markdown report body.
func Render(rep *engine.CycleReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# NFL Injury Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s · Season %d, Week %d\n\n",
		rep.RanAt.Format("2006-01-02 15:04 MST"), rep.Season, rep.Week)

	fmt.Fprintf(&sb, "## Summary\n\n")
	fmt.Fprintf(&sb, "| | Count |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Total injured | %d |\n", rep.TotalInjured)
	fmt.Fprintf(&sb, "| New | %d |\n", rep.NewCount)
	fmt.Fprintf(&sb, "| Worsened | %d |\n", rep.Worsened)
	fmt.Fprintf(&sb, "| Improved | %d |\n", rep.Improved)
	fmt.Fprintf(&sb, "| Recovered | %d |\n", rep.Recovered)
	fmt.Fprintf(&sb, "| Alerts | %d |\n\n", len(rep.Alerts))

	entries := make([]engine.PlayerEntry, len(rep.Entries))
	copy(entries, rep.Entries)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Risk.Score > entries[j].Risk.Score
	})

	fmt.Fprintf(&sb, "## Injured Players\n\n")
	fmt.Fprintf(&sb, "| Player | Pos | Team | Status | Body Part | Risk | Level | Return | Change |\n")
	fmt.Fprintf(&sb, "|---|---|---|---|---|---|---|---|---|\n")
	for _, entry := range entries {
		event := entry.Event
		bodyPart := event.BodyPartOrUnknown()
		if bodyPart == "" {
			bodyPart = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %.0f | %s | Week %d | %s |\n",
			event.PlayerName, event.Position, event.Team, event.Status, bodyPart,
			entry.Risk.Score, entry.Risk.Level, entry.Timeline.TargetWeek, entry.Classification)
	}
	sb.WriteString("\n")

	detailed := false
	for _, entry := range entries {
		if len(entry.Risk.Reasons) == 0 && entry.Backup == nil && entry.News == nil {
			continue
		}
		if !detailed {
			fmt.Fprintf(&sb, "## Details\n\n")
			detailed = true
		}
		event := entry.Event
		fmt.Fprintf(&sb, "### %s (%s, %s)\n\n", event.PlayerName, event.Position, event.Team)
		for _, reason := range entry.Risk.Reasons {
			fmt.Fprintf(&sb, "- %s\n", reason)
		}
		fmt.Fprintf(&sb, "- Estimated return: week %d (%.0f-%.0f days, %s)\n",
			entry.Timeline.TargetWeek, entry.Timeline.ConfidenceLowDays,
			entry.Timeline.ConfidenceHighDays, entry.Timeline.Source)
		for _, flag := range entry.Timeline.Flags {
			fmt.Fprintf(&sb, "- ⚠️ %s\n", flag)
		}
		if entry.Backup != nil {
			line := fmt.Sprintf("- Next man up: %s", entry.Backup.Name)
			if entry.Backup.IsInjured {
				line += fmt.Sprintf(" (also %s)", entry.Backup.InjuryStatus)
			}
			sb.WriteString(line + "\n")
		}
		if entry.News != nil && entry.News.Headline != "" {
			fmt.Fprintf(&sb, "- News: [%s](%s)\n", entry.News.Headline, entry.News.Link)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
