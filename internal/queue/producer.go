package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const TaskTypeModerateImage = "moderate_image"

// ImageTask carries everything the deferred path needs; the payload rides
// in the stream entry so the worker does not depend on request bodies
// staying in memory.
type ImageTask struct {
	RequestID   string
	Email       string
	ImageBase64 string
}

type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

func (p *Producer) EnqueueImageModeration(ctx context.Context, task ImageTask) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":       TaskTypeModerateImage,
			"request_id": task.RequestID,
			"email":      task.Email,
			"image_b64":  task.ImageBase64,
		},
	}).Result()
	return err
}
