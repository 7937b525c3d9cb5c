package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"moderator/internal/classifier"
	"moderator/internal/config"
	"moderator/internal/models"
	"moderator/internal/queue"
	"moderator/internal/repository"
	"moderator/internal/service"
)

type requestStoreStub struct {
	created []models.ModerationRequest
}

func (s *requestStoreStub) Create(_ context.Context, req models.ModerationRequest) error {
	s.created = append(s.created, req)
	return nil
}

func (s *requestStoreStub) SetCompleted(_ context.Context, id string) error {
	for i := range s.created {
		if s.created[i].ID == id {
			s.created[i].Status = models.RequestStatusCompleted
		}
	}
	return nil
}

func (s *requestStoreStub) GetByID(_ context.Context, id string) (models.ModerationRequest, error) {
	for _, req := range s.created {
		if req.ID == id {
			return req, nil
		}
	}
	return models.ModerationRequest{}, repository.ErrRequestNotFound
}

type resultStoreStub struct {
	created []models.ModerationResult
}

func (s *resultStoreStub) Create(_ context.Context, result models.ModerationResult) error {
	s.created = append(s.created, result)
	return nil
}

func (s *resultStoreStub) GetByRequestID(_ context.Context, requestID string) (models.ModerationResult, error) {
	for _, result := range s.created {
		if result.RequestID == requestID {
			return result, nil
		}
	}
	return models.ModerationResult{}, repository.ErrResultNotFound
}

type notificationStoreStub struct {
	created []models.NotificationLog
}

func (s *notificationStoreStub) Create(_ context.Context, entry models.NotificationLog) error {
	s.created = append(s.created, entry)
	return nil
}

func (s *notificationStoreStub) ListByRequest(_ context.Context, requestID string) ([]models.NotificationLog, error) {
	var entries []models.NotificationLog
	for _, entry := range s.created {
		if entry.RequestID == requestID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

type alerterStub struct{}

func (alerterStub) Send(_ context.Context, _ string) bool { return false }

type emailAlerterStub struct{}

func (emailAlerterStub) Send(_ context.Context, _, _, _ string) bool { return false }

type queueStub struct {
	tasks []queue.ImageTask
}

func (s *queueStub) EnqueueImageModeration(_ context.Context, task queue.ImageTask) error {
	s.tasks = append(s.tasks, task)
	return nil
}

type counterStub struct {
	counts map[string]int64
}

func (s *counterStub) CountByClassification(_ context.Context, _ string) (map[string]int64, error) {
	return s.counts, nil
}

type testEnv struct {
	engine        *gin.Engine
	notifications *notificationStoreStub
	queue         *queueStub
}

// newTestEnv wires real services over stub stores, with the real keyword
// classifier (no LLM key) and alerters that always fail delivery.
func newTestEnv(counts map[string]int64) *testEnv {
	gin.SetMode(gin.TestMode)

	notifications := &notificationStoreStub{}
	imageQueue := &queueStub{}

	moderation := service.NewModerationService(
		&requestStoreStub{},
		&resultStoreStub{},
		notifications,
		classifier.New(config.LLMConfig{}, zerolog.Nop()),
		alerterStub{},
		emailAlerterStub{},
		imageQueue,
		nil,
		zerolog.Nop(),
	)
	analytics := service.NewAnalyticsService(&counterStub{counts: counts})

	cfg := &config.AppConfig{Environment: "test"}
	handlerSet := NewHandlerSet(zerolog.Nop(), cfg, moderation, analytics, nil, nil)

	engine := gin.New()
	handlerSet.Register(engine.Group("/api"))

	return &testEnv{engine: engine, notifications: notifications, queue: imageQueue}
}

func postJSON(t *testing.T, engine *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestModerateTextToxicScenario(t *testing.T) {
	env := newTestEnv(nil)

	rec := postJSON(t, env.engine, "/api/v1/moderate/text", map[string]string{
		"email": "a@b.com",
		"text":  "you are spam",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RequestID      string  `json:"request_id"`
		Classification string  `json:"classification"`
		Confidence     float64 `json:"confidence"`
		Status         string  `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Classification != "toxic" || resp.Confidence != 0.9 {
		t.Fatalf("unexpected verdict: %+v", resp)
	}
	if resp.Status != "completed" {
		t.Fatalf("status: got %q want completed", resp.Status)
	}
	if resp.RequestID == "" {
		t.Fatalf("missing request id")
	}
	if len(env.notifications.created) != 2 {
		t.Fatalf("expected two notification rows, got %d", len(env.notifications.created))
	}
}

func TestModerateTextSafeScenario(t *testing.T) {
	env := newTestEnv(nil)

	rec := postJSON(t, env.engine, "/api/v1/moderate/text", map[string]string{
		"email": "a@b.com",
		"text":  "hello world",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["classification"] != "safe" || resp["confidence"] != 0.8 {
		t.Fatalf("unexpected verdict: %+v", resp)
	}
	if len(env.notifications.created) != 0 {
		t.Fatalf("safe content must create zero notification rows")
	}
}

func TestModerateTextRejectsMalformedEmail(t *testing.T) {
	env := newTestEnv(nil)

	rec := postJSON(t, env.engine, "/api/v1/moderate/text", map[string]string{
		"email": "not-an-email",
		"text":  "hello",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
}

func TestModerateTextRejectsMissingBody(t *testing.T) {
	env := newTestEnv(nil)

	rec := postJSON(t, env.engine, "/api/v1/moderate/text", map[string]string{
		"email": "a@b.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
}

func TestModerateImageReturnsProcessing(t *testing.T) {
	env := newTestEnv(nil)

	rec := postJSON(t, env.engine, "/api/v1/moderate/image", map[string]string{
		"email":        "a@b.com",
		"image_base64": "aW1hZ2U=",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RequestID string `json:"request_id"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "processing" {
		t.Fatalf("status: got %q want processing", resp.Status)
	}
	if len(env.queue.tasks) != 1 || env.queue.tasks[0].RequestID != resp.RequestID {
		t.Fatalf("task not enqueued for request %q: %+v", resp.RequestID, env.queue.tasks)
	}
}

func TestModerationRequestStatusCompletedText(t *testing.T) {
	env := newTestEnv(nil)

	submit := postJSON(t, env.engine, "/api/v1/moderate/text", map[string]string{
		"email": "a@b.com",
		"text":  "you are spam",
	})
	var submitted struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(submit.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/moderate/requests/"+submitted.RequestID, nil)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RequestID      string  `json:"request_id"`
		Status         string  `json:"status"`
		Classification *string `json:"classification"`
		Notifications  []struct {
			Channel string `json:"channel"`
			Status  string `json:"status"`
		} `json:"notifications"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RequestID != submitted.RequestID || resp.Status != "completed" {
		t.Fatalf("unexpected status payload: %+v", resp)
	}
	if resp.Classification == nil || *resp.Classification != "toxic" {
		t.Fatalf("expected toxic classification, got %+v", resp.Classification)
	}
	if len(resp.Notifications) != 2 {
		t.Fatalf("expected two notification rows, got %d", len(resp.Notifications))
	}
}

func TestModerationRequestStatusPendingImage(t *testing.T) {
	env := newTestEnv(nil)

	submit := postJSON(t, env.engine, "/api/v1/moderate/image", map[string]string{
		"email":        "a@b.com",
		"image_base64": "aW1hZ2U=",
	})
	var submitted struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(submit.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/moderate/requests/"+submitted.RequestID, nil)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rec.Code)
	}

	var resp struct {
		Status         string  `json:"status"`
		Classification *string `json:"classification"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "pending" {
		t.Fatalf("status: got %q want pending", resp.Status)
	}
	if resp.Classification != nil {
		t.Fatalf("pending image must have no classification, got %q", *resp.Classification)
	}
}

func TestModerationRequestStatusUnknownID(t *testing.T) {
	env := newTestEnv(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/moderate/requests/missing", nil)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d want 404", rec.Code)
	}
}

func TestAnalyticsSummary(t *testing.T) {
	env := newTestEnv(map[string]int64{"safe": 3, "toxic": 1})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary?user=a@b.com", nil)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rec.Code)
	}

	var resp struct {
		User             string           `json:"user"`
		TotalRequests    int64            `json:"total_requests"`
		ByClassification map[string]int64 `json:"by_classification"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User != "a@b.com" || resp.TotalRequests != 4 {
		t.Fatalf("unexpected summary: %+v", resp)
	}
	if resp.ByClassification["safe"] != 3 {
		t.Fatalf("unexpected counts: %+v", resp.ByClassification)
	}
}

func TestAnalyticsSummaryEmptyUser(t *testing.T) {
	env := newTestEnv(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary?user=nobody@b.com", nil)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rec.Code)
	}

	var resp struct {
		TotalRequests    int64            `json:"total_requests"`
		ByClassification map[string]int64 `json:"by_classification"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalRequests != 0 || len(resp.ByClassification) != 0 {
		t.Fatalf("expected empty summary, got %+v", resp)
	}
}

func TestAnalyticsSummaryRequiresUser(t *testing.T) {
	env := newTestEnv(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
}
