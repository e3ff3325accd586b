package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/liliang-cn/chatrelay/internal/domain"
	"go.uber.org/zap"
)

const (
	// maxMessageLen is the longest accepted user message, in characters.
	maxMessageLen = 1000
	// maxHistoryLen is the most history turns accepted per request.
	maxHistoryLen = 20

	// emptyReplyFallback is returned when the model produces no text.
	emptyReplyFallback = "No reply."
)

// Generator produces a reply for an assembled message sequence.
type Generator interface {
	Complete(ctx context.Context, messages []domain.ModelMessage) (string, error)
}

// ChatService handles a chat turn: validate, enrich, call the model.
type ChatService struct {
	enricher  *Enricher
	generator Generator
	logger    *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(enricher *Enricher, generator Generator, logger *zap.Logger) *ChatService {
	return &ChatService{
		enricher:  enricher,
		generator: generator,
		logger:    logger,
	}
}

// Validate checks the request shape before any collaborator is contacted.
func Validate(req *domain.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return domain.ErrInvalidRequest
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLen {
		return domain.ErrInvalidRequest
	}
	if len(req.History) > maxHistoryLen {
		return domain.ErrInvalidRequest
	}
	return nil
}

// Chat handles one chat turn. Invalid input returns domain.ErrInvalidRequest
// without touching any collaborator. A *domain.ModelError passes through so
// the handler can surface its message; any other model failure is logged in
// full and returned as-is for a generic response.
func (s *ChatService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	messages := s.enricher.Enrich(ctx, req.Message, req.History)

	reply, err := s.generator.Complete(ctx, messages)
	if err != nil {
		var modelErr *domain.ModelError
		if errors.As(err, &modelErr) {
			s.logger.Error("model service reported an error", zap.String("message", modelErr.Message))
		} else {
			s.logger.Error("model service unreachable", zap.Error(err))
		}
		return nil, err
	}

	if reply == "" {
		reply = emptyReplyFallback
	}

	return &domain.ChatResponse{Reply: reply}, nil
}
