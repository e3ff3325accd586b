package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/chatrelay/internal/domain"
	"github.com/liliang-cn/chatrelay/internal/service"
	"go.uber.org/zap"
)

const (
	invalidInputReply     = "Invalid input."
	modelUnavailableReply = "Language model service unavailable."

	// previewLen bounds the message excerpt written to the request log.
	previewLen = 80
)

// Handler handles chat API requests
type Handler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

// NewHandler creates a new chat handler
func NewHandler(chatService *service.ChatService, logger *zap.Logger) *Handler {
	return &Handler{chatService: chatService, logger: logger}
}

// RegisterRoutes registers chat routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
}

// Chat handles a chat message
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.ChatResponse{Reply: invalidInputReply})
		return
	}

	h.logger.Info("chat request received",
		zap.String("request_id", c.GetString("request_id")),
		zap.String("preview", preview(req.Message)),
		zap.Int("history_len", len(req.History)),
	)

	resp, err := h.chatService.Chat(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, domain.ChatResponse{Reply: invalidInputReply})
			return
		}
		var modelErr *domain.ModelError
		if errors.As(err, &modelErr) {
			// Operator-facing failure: surface the service's own message.
			c.JSON(http.StatusInternalServerError, domain.ChatResponse{Reply: modelErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, domain.ChatResponse{Reply: modelUnavailableReply})
		return
	}

	h.logger.Info("chat reply sent",
		zap.String("request_id", c.GetString("request_id")),
		zap.String("preview", preview(resp.Reply)),
	)

	c.JSON(http.StatusOK, resp)
}

func preview(s string) string {
	if len(s) > previewLen {
		return s[:previewLen] + "..."
	}
	return s
}
