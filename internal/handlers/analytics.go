package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type summaryResponse struct {
	User             string           `json:"user"`
	TotalRequests    int64            `json:"total_requests"`
	ByClassification map[string]int64 `json:"by_classification"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

func (h HandlerSet) AnalyticsSummary(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_required"})
		return
	}

	summary, err := h.analytics.Summarize(c.Request.Context(), user)
	if err != nil {
		h.log.Error().Err(err).Str("user", user).Msg("analytics summary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, summaryResponse{
		User:             summary.User,
		TotalRequests:    summary.TotalRequests,
		ByClassification: summary.ByClassification,
		GeneratedAt:      summary.GeneratedAt,
	})
}
