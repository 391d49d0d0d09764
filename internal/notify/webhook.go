package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fortuna/gridiron/internal/detector"
	"github.com/fortuna/gridiron/internal/engine"
)

// Webhook posts injury alerts to a Slack-compatible incoming webhook.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier. It implements engine.Notifier.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyAlerts posts one message covering the cycle's alerts.
func (w *Webhook) NotifyAlerts(ctx context.Context, alerts []engine.Alert) error {
	payload := map[string]string{"text": formatAlerts(alerts)}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// formatAlerts renders alerts as a compact Slack message.
func formatAlerts(alerts []engine.Alert) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏈 *%d injury alert(s)*\n", len(alerts))

	for _, alert := range alerts {
		emoji := classificationEmoji(alert.Classification)
		fmt.Fprintf(&sb, "\n%s *%s* (%s, %s)", emoji, alert.PlayerName, alert.Position, alert.Team)

		switch alert.Classification {
		case detector.ClassificationWorsened:
			fmt.Fprintf(&sb, " — %s → %s", alert.OldStatus, alert.NewStatus)
		default:
			fmt.Fprintf(&sb, " — %s", alert.NewStatus)
		}
		if alert.BodyPart != "" {
			fmt.Fprintf(&sb, " (%s)", alert.BodyPart)
		}
		fmt.Fprintf(&sb, "\n    Risk: %.0f (%s)", alert.Risk.Score, alert.Risk.Level)
		fmt.Fprintf(&sb, " · Return: ~%d week(s), week %d", alert.Timeline.WeeksOut, alert.Timeline.TargetWeek)
		if alert.Backup != nil {
			fmt.Fprintf(&sb, "\n    Next man up: %s", alert.Backup.Name)
			if alert.Backup.IsInjured {
				fmt.Fprintf(&sb, " (also %s)", alert.Backup.InjuryStatus)
			}
		}
		if alert.News != nil && alert.News.Headline != "" {
			fmt.Fprintf(&sb, "\n    News: %s", alert.News.Headline)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func classificationEmoji(c detector.Classification) string {
	switch c {
	case detector.ClassificationNew:
		return "🆕"
	case detector.ClassificationWorsened:
		return "📉"
	case detector.ClassificationImproved:
		return "📈"
	default:
		return "⏳"
	}
}
