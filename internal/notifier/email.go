package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"moderator/internal/config"
)

// Email sends transactional mail through the Brevo HTTP API. Like Slack,
// it never surfaces an error; the boolean is the whole contract.
type Email struct {
	cfg    config.AlertsConfig
	client *http.Client
	log    zerolog.Logger
}

func NewEmail(cfg config.AlertsConfig, log zerolog.Logger) *Email {
	return &Email{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

type emailParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type emailPayload struct {
	Sender      emailParty   `json:"sender"`
	To          []emailParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

func (e *Email) Send(ctx context.Context, to, subject, content string) bool {
	if e.cfg.BrevoAPIKey == "" {
		e.log.Info().
			Str("to", to).
			Str("subject", subject).
			Str("content", content).
			Msg("email provider not configured")
		return false
	}

	body, err := json.Marshal(emailPayload{
		Sender:      emailParty{Name: e.cfg.SenderName, Email: e.cfg.SenderEmail},
		To:          []emailParty{{Email: to}},
		Subject:     subject,
		HTMLContent: content,
	})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BrevoEndpoint, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", e.cfg.BrevoAPIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		e.log.Warn().Err(err).Str("to", to).Msg("email alert failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 300
}
