package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"moderator/internal/classifier"
	"moderator/internal/ids"
	"moderator/internal/metrics"
	"moderator/internal/models"
	"moderator/internal/queue"
	"moderator/internal/repository"
)

type RequestStore interface {
	Create(ctx context.Context, req models.ModerationRequest) error
	SetCompleted(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (models.ModerationRequest, error)
}

type ResultStore interface {
	Create(ctx context.Context, result models.ModerationResult) error
	GetByRequestID(ctx context.Context, requestID string) (models.ModerationResult, error)
}

type NotificationStore interface {
	Create(ctx context.Context, entry models.NotificationLog) error
	ListByRequest(ctx context.Context, requestID string) ([]models.NotificationLog, error)
}

type ContentClassifier interface {
	Analyze(ctx context.Context, content string) classifier.Result
	AnalyzeImage(ctx context.Context, imageB64 string) classifier.Result
}

type ChatAlerter interface {
	Send(ctx context.Context, message string) bool
}

type EmailAlerter interface {
	Send(ctx context.Context, to, subject, content string) bool
}

type ImageQueue interface {
	EnqueueImageModeration(ctx context.Context, task queue.ImageTask) error
}

// PayloadArchive is optional; a nil archive skips the copy.
type PayloadArchive interface {
	Archive(ctx context.Context, requestID string, data []byte) error
}

type TextResult struct {
	RequestID      string
	Classification string
	Confidence     float64
	Reasoning      string
	Status         models.RequestStatus
}

type SubmitResult struct {
	RequestID string
	Status    string
}

const alertSubject = "Content moderation alert"

type ModerationService struct {
	requests      RequestStore
	results       ResultStore
	notifications NotificationStore
	classifier    ContentClassifier
	slack         ChatAlerter
	email         EmailAlerter
	queue         ImageQueue
	archive       PayloadArchive
	metrics       *metrics.Metrics
	log           zerolog.Logger
}

func NewModerationService(
	requests RequestStore,
	results ResultStore,
	notifications NotificationStore,
	contentClassifier ContentClassifier,
	slack ChatAlerter,
	email EmailAlerter,
	imageQueue ImageQueue,
	m *metrics.Metrics,
	log zerolog.Logger,
) *ModerationService {
	return &ModerationService{
		requests:      requests,
		results:       results,
		notifications: notifications,
		classifier:    contentClassifier,
		slack:         slack,
		email:         email,
		queue:         imageQueue,
		metrics:       m,
		log:           log,
	}
}

// AttachArchive enables best-effort payload archiving for image submissions.
func (s *ModerationService) AttachArchive(archive PayloadArchive) {
	s.archive = archive
}

// ModerateText runs the whole pipeline synchronously: intake row,
// classification, result row, then alerts plus log rows when the content
// is not safe. Alert delivery failure never fails the request; a failed
// notification log insert does.
func (s *ModerationService) ModerateText(ctx context.Context, email, text string) (TextResult, error) {
	req := models.ModerationRequest{
		ID:          ids.New(),
		UserEmail:   email,
		ContentType: models.ContentTypeText,
		ContentHash: fingerprint(text),
		Status:      models.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return TextResult{}, fmt.Errorf("create request: %w", err)
	}

	verdict := s.classifier.Analyze(ctx, text)

	if err := s.recordResult(ctx, req.ID, models.ContentTypeText, verdict); err != nil {
		return TextResult{}, err
	}

	if verdict.Label != models.ClassificationSafe {
		message := fmt.Sprintf("Inappropriate content detected: %s", verdict.Label)
		if err := s.notify(ctx, req.ID, email, message); err != nil {
			return TextResult{}, err
		}
	}

	return TextResult{
		RequestID:      req.ID,
		Classification: verdict.Label,
		Confidence:     verdict.Confidence,
		Reasoning:      verdict.Reasoning,
		Status:         models.RequestStatusCompleted,
	}, nil
}

// SubmitImage records intake and hands the rest of the pipeline to the
// queue. The caller gets the request id back immediately; the verdict is
// only reachable later through the store.
func (s *ModerationService) SubmitImage(ctx context.Context, email, imageB64 string) (SubmitResult, error) {
	req := models.ModerationRequest{
		ID:          ids.New(),
		UserEmail:   email,
		ContentType: models.ContentTypeImage,
		ContentHash: fingerprint(imageB64),
		Status:      models.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return SubmitResult{}, fmt.Errorf("create request: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.Archive(ctx, req.ID, []byte(imageB64)); err != nil {
			s.log.Warn().Err(err).Str("request_id", req.ID).Msg("archive payload failed")
		}
	}

	if err := s.queue.EnqueueImageModeration(ctx, queue.ImageTask{
		RequestID:   req.ID,
		Email:       email,
		ImageBase64: imageB64,
	}); err != nil {
		return SubmitResult{}, fmt.Errorf("enqueue image moderation: %w", err)
	}

	return SubmitResult{RequestID: req.ID, Status: "processing"}, nil
}

// ProcessImage is the deferred half of the image path, executed by the
// queue consumer. Errors go back to the consumer for logging and
// re-delivery; the original HTTP caller is long gone.
func (s *ModerationService) ProcessImage(ctx context.Context, requestID, email, imageB64 string) error {
	verdict := s.classifier.AnalyzeImage(ctx, imageB64)

	if err := s.recordResult(ctx, requestID, models.ContentTypeImage, verdict); err != nil {
		return err
	}

	if verdict.Label != models.ClassificationSafe {
		message := fmt.Sprintf("Inappropriate image detected: %s", verdict.Label)
		if err := s.notify(ctx, requestID, email, message); err != nil {
			return err
		}
	}
	return nil
}

func (s *ModerationService) recordResult(ctx context.Context, requestID string, kind models.ContentType, verdict classifier.Result) error {
	if err := s.requests.SetCompleted(ctx, requestID); err != nil {
		return fmt.Errorf("complete request: %w", err)
	}
	if err := s.results.Create(ctx, models.ModerationResult{
		ID:             ids.New(),
		RequestID:      requestID,
		Classification: verdict.Label,
		Confidence:     verdict.Confidence,
		Reasoning:      verdict.Reasoning,
		LLMResponse:    verdict.Raw,
	}); err != nil {
		return fmt.Errorf("create result: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RequestsTotal.WithLabelValues(string(kind), verdict.Label).Inc()
	}
	return nil
}

// notify attempts both channels in order, slack then email, and writes one
// log row per attempt. Delivery failures only show up as "failed" rows;
// a failing log insert is a persistence error and does propagate.
func (s *ModerationService) notify(ctx context.Context, requestID, email, message string) error {
	slackOK := s.slack.Send(ctx, message)
	if err := s.recordNotification(ctx, requestID, models.ChannelSlack, slackOK); err != nil {
		return err
	}

	emailOK := s.email.Send(ctx, email, alertSubject, message)
	return s.recordNotification(ctx, requestID, models.ChannelEmail, emailOK)
}

func (s *ModerationService) recordNotification(ctx context.Context, requestID string, channel models.NotificationChannel, delivered bool) error {
	status := models.DeliveryStatusFailed
	if delivered {
		status = models.DeliveryStatusSent
	}

	if s.metrics != nil {
		s.metrics.NotificationsTotal.WithLabelValues(string(channel), string(status)).Inc()
	}

	if err := s.notifications.Create(ctx, models.NotificationLog{
		ID:        ids.New(),
		RequestID: requestID,
		Channel:   channel,
		Status:    status,
	}); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}

type RequestDetail struct {
	Request       models.ModerationRequest
	Result        *models.ModerationResult
	Notifications []models.NotificationLog
}

// RequestDetail exposes the stored state of a submission. For images this
// is how callers learn the verdict after the deferred path has run.
func (s *ModerationService) RequestDetail(ctx context.Context, requestID string) (RequestDetail, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return RequestDetail{}, err
	}

	detail := RequestDetail{Request: req}

	result, err := s.results.GetByRequestID(ctx, requestID)
	switch {
	case err == nil:
		detail.Result = &result
	case errors.Is(err, repository.ErrResultNotFound):
		// still pending
	default:
		return RequestDetail{}, fmt.Errorf("load result: %w", err)
	}

	notifications, err := s.notifications.ListByRequest(ctx, requestID)
	if err != nil {
		return RequestDetail{}, fmt.Errorf("load notifications: %w", err)
	}
	detail.Notifications = notifications

	return detail, nil
}

func fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
