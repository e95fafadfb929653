package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"healthchain/internal/vitals"
)

// Notification carries the context of a risk escalation.
type Notification struct {
	SubjectID       string
	AssessedAt      time.Time
	RiskLevel       vitals.RiskLevel
	RiskFactors     []string
	Recommendations []string
	HealthScore     int
	Channels        []string
}

// Notifier delivers risk escalation notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify posts the rendered message via the sendMessage API.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().
		Str("subject_id", note.SubjectID).
		Str("risk_level", string(note.RiskLevel)).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("alert dispatched via telegram")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[HealthChain Alert]\n")
	builder.WriteString(fmt.Sprintf("Subject: %s\n", note.SubjectID))
	builder.WriteString(fmt.Sprintf("Assessed: %s UTC\n", note.AssessedAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("Risk level: %s\n", note.RiskLevel))
	builder.WriteString(fmt.Sprintf("Health score: %d/100\n", note.HealthScore))
	if len(note.RiskFactors) > 0 {
		builder.WriteString(fmt.Sprintf("Factors: %s\n", strings.Join(note.RiskFactors, ", ")))
	}
	for _, rec := range note.Recommendations {
		builder.WriteString(fmt.Sprintf("- %s\n", rec))
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
