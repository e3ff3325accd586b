package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/chatrelay/internal/api/chat"
	"github.com/liliang-cn/chatrelay/internal/api/middleware"
	"github.com/liliang-cn/chatrelay/internal/config"
	"github.com/liliang-cn/chatrelay/internal/domain"
	"github.com/liliang-cn/chatrelay/internal/service"
	"go.uber.org/zap"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
	RateLimit    config.RateLimitConfig
}

// SetupRouter sets up the Gin router
func SetupRouter(chatService *service.ChatService, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// Catch-all boundary: log the panic in full, reply with a generic 500.
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("panic recovered",
			zap.String("request_id", c.GetString("request_id")),
			zap.Any("panic", err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, domain.ChatResponse{Reply: "Internal server error."})
	}))

	r.Use(middleware.RequestLog(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Static files (browser chat client)
	SetupStaticRoutes(r)

	// Chat API (rate-limited per client address)
	chatHandler := chat.NewHandler(chatService, logger)
	chatGroup := r.Group("/")
	chatGroup.Use(middleware.RateLimit(cfg.RateLimit))
	chatHandler.RegisterRoutes(chatGroup)

	return r
}
