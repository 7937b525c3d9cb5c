package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"moderator/internal/config"
	"moderator/internal/service"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	moderation *service.ModerationService
	analytics  *service.AnalyticsService
	db         *pgxpool.Pool
	cache      *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	moderation *service.ModerationService,
	analytics *service.AnalyticsService,
	db *pgxpool.Pool,
	cache *redis.Client,
) HandlerSet {
	return HandlerSet{
		log:        log,
		cfg:        cfg,
		moderation: moderation,
		analytics:  analytics,
		db:         db,
		cache:      cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		moderate := v1.Group("/moderate")
		moderate.POST("/text", h.ModerateText)
		moderate.POST("/image", h.ModerateImage)
		moderate.GET("/requests/:id", h.ModerationRequestStatus)

		analytics := v1.Group("/analytics")
		analytics.GET("/summary", h.AnalyticsSummary)
	}
}
