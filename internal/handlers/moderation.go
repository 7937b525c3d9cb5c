package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"moderator/internal/repository"
)

type textModerationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Text  string `json:"text" binding:"required"`
}

type imageModerationRequest struct {
	Email       string `json:"email" binding:"required,email"`
	ImageBase64 string `json:"image_base64" binding:"required"`
}

type moderationResponse struct {
	RequestID      string  `json:"request_id"`
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
	Status         string  `json:"status"`
}

func (h HandlerSet) ModerateText(c *gin.Context) {
	var req textModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.moderation.ModerateText(c.Request.Context(), req.Email, req.Text)
	if err != nil {
		h.log.Error().Err(err).Str("email", req.Email).Msg("text moderation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, moderationResponse{
		RequestID:      result.RequestID,
		Classification: result.Classification,
		Confidence:     result.Confidence,
		Reasoning:      result.Reasoning,
		Status:         string(result.Status),
	})
}

func (h HandlerSet) ModerateImage(c *gin.Context) {
	var req imageModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.moderation.SubmitImage(c.Request.Context(), req.Email, req.ImageBase64)
	if err != nil {
		h.log.Error().Err(err).Str("email", req.Email).Msg("image submission failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": result.RequestID,
		"status":     result.Status,
	})
}

type requestStatusResponse struct {
	RequestID      string             `json:"request_id"`
	ContentType    string             `json:"content_type"`
	Status         string             `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	Classification string             `json:"classification,omitempty"`
	Confidence     *float64           `json:"confidence,omitempty"`
	Reasoning      string             `json:"reasoning,omitempty"`
	Notifications  []notificationItem `json:"notifications"`
}

type notificationItem struct {
	Channel string    `json:"channel"`
	Status  string    `json:"status"`
	SentAt  time.Time `json:"sent_at"`
}

// ModerationRequestStatus is the store-inspection endpoint; image verdicts
// only ever surface here or through analytics.
func (h HandlerSet) ModerationRequestStatus(c *gin.Context) {
	detail, err := h.moderation.RequestDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request_not_found"})
			return
		}
		h.log.Error().Err(err).Str("request_id", c.Param("id")).Msg("request lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	resp := requestStatusResponse{
		RequestID:     detail.Request.ID,
		ContentType:   string(detail.Request.ContentType),
		Status:        string(detail.Request.Status),
		CreatedAt:     detail.Request.CreatedAt,
		Notifications: make([]notificationItem, 0, len(detail.Notifications)),
	}
	if detail.Result != nil {
		resp.Classification = detail.Result.Classification
		resp.Confidence = &detail.Result.Confidence
		resp.Reasoning = detail.Result.Reasoning
	}
	for _, n := range detail.Notifications {
		resp.Notifications = append(resp.Notifications, notificationItem{
			Channel: string(n.Channel),
			Status:  string(n.Status),
			SentAt:  n.SentAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}
