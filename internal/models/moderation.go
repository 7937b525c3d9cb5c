package models

import "time"

type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusCompleted RequestStatus = "completed"
)

// Classification labels produced by the classifier. The column is free-form
// text, so anything an LLM answers ends up stored as-is; these are the
// expected values.
const (
	ClassificationSafe       = "safe"
	ClassificationToxic      = "toxic"
	ClassificationSpam       = "spam"
	ClassificationHarassment = "harassment"
	ClassificationError      = "error"
)

type ModerationRequest struct {
	ID          string
	UserEmail   string
	ContentType ContentType
	// ContentHash is intended as a dedup key but uniqueness is not enforced
	// atomically; concurrent identical submissions can both insert.
	ContentHash string
	Status      RequestStatus
	CreatedAt   time.Time
}

type ModerationResult struct {
	ID             string
	RequestID      string
	Classification string
	Confidence     float64
	Reasoning      string
	LLMResponse    string
}

type NotificationChannel string

const (
	ChannelSlack NotificationChannel = "slack"
	ChannelEmail NotificationChannel = "email"
)

type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

type NotificationLog struct {
	ID        string
	RequestID string
	Channel   NotificationChannel
	Status    DeliveryStatus
	SentAt    time.Time
}
