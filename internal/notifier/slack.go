package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Slack posts alerts to an incoming-webhook style endpoint. Send never
// returns an error; delivery failure is a false return plus a local log
// line.
type Slack struct {
	webhookURL string
	client     *http.Client
	log        zerolog.Logger
}

func NewSlack(webhookURL string, log zerolog.Logger) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (s *Slack) Send(ctx context.Context, message string) bool {
	if s.webhookURL == "" {
		s.log.Info().Str("message", message).Msg("slack webhook not configured")
		return false
	}

	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Msg("slack alert failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
