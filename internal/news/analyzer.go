package news

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SignalKind tags a recognized timeline pattern in injury news.
type SignalKind string

const (
	// SignalNone means no pattern matched; the signal may still carry a
	// crude numeric hint used for disagreement flagging.
	SignalNone SignalKind = "none"

	SignalReturnImminent SignalKind = "return_imminent"
	SignalSeasonEnding   SignalKind = "season_ending"
	SignalSevereInjury   SignalKind = "severe_injury"
	SignalSurgery        SignalKind = "surgery"
	SignalExplicitRange  SignalKind = "timeline_extracted"
	SignalWeekToWeek     SignalKind = "week_to_week"
	SignalDayToDay       SignalKind = "day_to_day"
)

// Signal is a recognized textual timeline. Day values are absolute, except
// season-ending, whose length depends on the current week and is resolved
// by the estimator.
type Signal struct {
	Kind     SignalKind `json:"kind"`
	Days     int        `json:"days"`
	Low      int        `json:"low"`
	High     int        `json:"high"`
	Phrase   string     `json:"phrase"`
	Headline string     `json:"headline"`
	Link     string     `json:"link"`
	HintDays int        `json:"hint_days,omitempty"`
}

// Item is one news item matched to a player.
type Item struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Published   string `json:"published"`
	Source      string `json:"source"`
}

// Analyzer extracts timeline signals from injury news. The rule table is
// ordered by specificity; the first matching rule wins, so extending the
// table never touches the estimator's floor/ceiling arithmetic.
type Analyzer struct {
	rules []rule
}

type rule struct {
	kind  SignalKind
	match func(text string) (phrase string, days, low, high int, ok bool)
}

var returnKeywords = []string{
	"activated from",
	"designated to return",
	"removed from ir",
	"expected to play",
	"cleared to play",
	"practicing fully",
	"full participant",
	"ready to return",
	"returned to practice",
}

var seasonEndingKeywords = []string{
	"season-ending",
	"out for season",
	"out for the season",
	"done for year",
	"ruled out for remainder",
	"will not return this season",
	"season is over",
	"shut down for season",
}

// severeInjuryDays maps known severe injuries to typical recovery days.
var severeInjuryDays = []struct {
	phrase string
	days   int
}{
	{"torn acl", 270},
	{"ruptured achilles", 270},
	{"achilles tear", 270},
	{"torn achilles", 270},
	{"torn ligament", 180},
	{"pcl tear", 90},
	{"mcl tear", 42},
	{"fractured", 42},
	{"broken", 42},
}

var surgeryKeywords = []string{
	"surgery scheduled",
	"underwent surgery",
	"will undergo surgery",
	"surgical procedure",
	"requires surgery",
}

var weekToWeekKeywords = []string{
	"week-to-week",
	"week to week",
	"evaluated weekly",
	"no timetable",
	"indefinite",
}

var dayToDayKeywords = []string{
	"day-to-day",
	"day to day",
	"game-time decision",
	"gametime decision",
}

var timelinePatterns = []struct {
	re    *regexp.Regexp
	kind  string // "range_weeks", "exact_weeks", "range_games", "exact_games"
}{
	{regexp.MustCompile(`(?:out|miss)\s+(\d+)\s*(?:-|to)\s*(\d+)\s+weeks?`), "range_weeks"},
	{regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s+weeks?`), "range_weeks"},
	{regexp.MustCompile(`(?:out|miss)\s+(\d+)\s+weeks?`), "exact_weeks"},
	{regexp.MustCompile(`(\d+)\s+weeks?\s+out`), "exact_weeks"},
	{regexp.MustCompile(`(?:out|miss)\s+(\d+)\s*(?:-|to)\s*(\d+)\s+games?`), "range_games"},
	{regexp.MustCompile(`(?:out|miss)\s+(\d+)\s+games?`), "exact_games"},
	{regexp.MustCompile(`(\d+)\s+games?\s+out`), "exact_games"},
}

// hintPattern catches any stray day/week number in otherwise unrecognized
// text, feeding the disagreement check.
var hintPattern = regexp.MustCompile(`(\d+)\s+(days?|weeks?)`)

// NewAnalyzer builds the analyzer with its fixed-priority rule table.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{}
	a.rules = []rule{
		{SignalReturnImminent, matchKeywords(returnKeywords, 3, 0, 7)},
		{SignalSeasonEnding, matchKeywords(seasonEndingKeywords, 0, 0, 365)},
		{SignalSevereInjury, matchSevere},
		{SignalSurgery, matchSurgery},
		{SignalExplicitRange, matchTimeline},
		{SignalWeekToWeek, matchKeywords(weekToWeekKeywords, 14, 7, 21)},
		{SignalDayToDay, matchKeywords(dayToDayKeywords, 3, 1, 7)},
	}
	return a
}

// Analyze runs the rule table over the combined news text. It returns nil
// when there are no items at all; a non-nil signal with Kind SignalNone
// means text was present but no pattern matched.
func (a *Analyzer) Analyze(items []Item) *Signal {
	if len(items) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(strings.ToLower(item.Title))
		sb.WriteString(" ")
		sb.WriteString(strings.ToLower(item.Description))
		sb.WriteString(" ")
	}
	text := sb.String()
	top := items[0]

	for _, r := range a.rules {
		phrase, days, low, high, ok := r.match(text)
		if !ok {
			continue
		}
		return &Signal{
			Kind:     r.kind,
			Days:     days,
			Low:      low,
			High:     high,
			Phrase:   phrase,
			Headline: top.Title,
			Link:     top.Link,
		}
	}

	signal := &Signal{Kind: SignalNone, Headline: top.Title, Link: top.Link}
	if m := hintPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "week") {
			n *= 7
		}
		signal.HintDays = n
	}
	return signal
}

func matchKeywords(keywords []string, days, low, high int) func(string) (string, int, int, int, bool) {
	return func(text string) (string, int, int, int, bool) {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return kw, days, low, high, true
			}
		}
		return "", 0, 0, 0, false
	}
}

func matchSevere(text string) (string, int, int, int, bool) {
	for _, injury := range severeInjuryDays {
		if strings.Contains(text, injury.phrase) {
			low := injury.days - 14
			if low < 0 {
				low = 0
			}
			return injury.phrase, injury.days, low, injury.days + 30, true
		}
	}
	return "", 0, 0, 0, false
}

func matchSurgery(text string) (string, int, int, int, bool) {
	days := 42
	if strings.Contains(text, "minor surgery") || strings.Contains(text, "arthroscopic") {
		days = 21
	}
	for _, kw := range surgeryKeywords {
		if strings.Contains(text, kw) {
			return kw, days, days, days + 28, true
		}
	}
	return "", 0, 0, 0, false
}

func matchTimeline(text string) (string, int, int, int, bool) {
	for _, p := range timelinePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch p.kind {
		case "range_weeks", "range_games":
			lo, _ := strconv.Atoi(m[1])
			hi, _ := strconv.Atoi(m[2])
			days := (lo + hi) * 7 / 2
			return fmt.Sprintf("%d-%d weeks", lo, hi), days, lo * 7, hi * 7, true
		case "exact_weeks", "exact_games":
			weeks, _ := strconv.Atoi(m[1])
			days := weeks * 7
			low := days - 7
			if low < 1 {
				low = 1
			}
			return fmt.Sprintf("%d weeks", weeks), days, low, days + 7, true
		}
	}
	return "", 0, 0, 0, false
}
