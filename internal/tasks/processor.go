package tasks

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"moderator/internal/metrics"
	"moderator/internal/queue"
)

type ImageModerator interface {
	ProcessImage(ctx context.Context, requestID, email, imageB64 string) error
}

// Processor dispatches stream messages to the moderation pipeline. It is
// the worker side of the deferred image path.
type Processor struct {
	moderator ImageModerator
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewProcessor(moderator ImageModerator, m *metrics.Metrics, logger zerolog.Logger) *Processor {
	return &Processor{
		moderator: moderator,
		metrics:   m,
		logger:    logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	taskType := stringValue(msg.Values, "type")

	switch taskType {
	case queue.TaskTypeModerateImage:
		return p.handleModerateImage(ctx, msg)
	default:
		p.logger.Warn().Str("type", taskType).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleModerateImage(ctx context.Context, msg redis.XMessage) error {
	requestID := stringValue(msg.Values, "request_id")
	email := stringValue(msg.Values, "email")
	imageB64 := stringValue(msg.Values, "image_b64")
	if requestID == "" {
		return fmt.Errorf("task %s missing request_id", msg.ID)
	}

	err := p.moderator.ProcessImage(ctx, requestID, email, imageB64)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		p.logger.Error().Err(err).Str("request_id", requestID).Msg("deferred moderation failed")
	}
	if p.metrics != nil {
		p.metrics.QueueTasksTotal.WithLabelValues(queue.TaskTypeModerateImage, outcome).Inc()
	}
	return err
}

func stringValue(values map[string]interface{}, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}
