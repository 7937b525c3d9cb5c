package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"moderator/internal/config"
	"moderator/internal/models"
)

// Result is what every analysis returns. Analysis never fails to the
// caller; provider errors degrade to the "error" label with zero
// confidence.
type Result struct {
	Label      string
	Confidence float64
	Reasoning  string
	Raw        string
}

var heuristicKeywords = []string{"spam", "harass", "toxic"}

const heuristicReasoning = "Heuristic analysis without OpenAI key."

type Service struct {
	cfg    config.LLMConfig
	client *http.Client
	log    zerolog.Logger
}

func New(cfg config.LLMConfig, log zerolog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

func (s *Service) Analyze(ctx context.Context, content string) Result {
	if s.cfg.APIKey == "" {
		return s.analyzeHeuristic(content)
	}
	return s.analyzeLLM(ctx, content)
}

// AnalyzeImage classifies an image by running the text analyzer over its
// base64 representation. There is no real image understanding here; the
// placeholder behavior is intentional.
func (s *Service) AnalyzeImage(ctx context.Context, imageB64 string) Result {
	return s.Analyze(ctx, imageB64)
}

func (s *Service) analyzeHeuristic(content string) Result {
	lower := strings.ToLower(content)
	for _, word := range heuristicKeywords {
		if strings.Contains(lower, word) {
			return Result{
				Label:      models.ClassificationToxic,
				Confidence: 0.9,
				Reasoning:  heuristicReasoning,
				Raw:        "{}",
			}
		}
	}
	return Result{
		Label:      models.ClassificationSafe,
		Confidence: 0.8,
		Reasoning:  heuristicReasoning,
		Raw:        "{}",
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *Service) analyzeLLM(ctx context.Context, content string) Result {
	prompt := "Classify the following content into one of [toxic, spam, harassment, safe] " +
		"and explain briefly: \n" + content

	body, err := json.Marshal(chatRequest{
		Model:     s.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		return errorResult(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return errorResult(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Msg("llm request failed")
		return errorResult(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResult(err)
	}
	if resp.StatusCode >= 300 {
		s.log.Warn().Int("status", resp.StatusCode).Msg("llm provider error")
		return errorResult(fmt.Errorf("provider status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return errorResult(err)
	}
	if len(parsed.Choices) == 0 {
		return errorResult(fmt.Errorf("no choices in completion"))
	}

	message := strings.TrimSpace(parsed.Choices[0].Message.Content)
	// Label is the first token of the first line, lowercased. The parse is
	// fragile but kept for compatibility with the provider prompt.
	firstLine := strings.SplitN(message, "\n", 2)[0]
	fields := strings.Fields(firstLine)
	if len(fields) == 0 {
		return errorResult(fmt.Errorf("empty completion"))
	}

	return Result{
		Label:      strings.ToLower(fields[0]),
		Confidence: 0.75,
		Reasoning:  message,
		Raw:        string(raw),
	}
}

func errorResult(err error) Result {
	return Result{
		Label:      models.ClassificationError,
		Confidence: 0.0,
		Reasoning:  err.Error(),
		Raw:        "{}",
	}
}
