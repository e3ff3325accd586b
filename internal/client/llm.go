package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/liliang-cn/chatrelay/internal/config"
	"github.com/liliang-cn/chatrelay/internal/domain"
)

// LLMClient sends assembled message sequences to an OpenAI-compatible
// chat-completions endpoint.
type LLMClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	http        *http.Client
}

// NewLLMClient creates a new language-model service client
func NewLLMClient(cfg config.LLMConfig) *LLMClient {
	return &LLMClient{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		http:        &http.Client{Timeout: cfg.Timeout},
	}
}

type completionRequest struct {
	Model       string                `json:"model"`
	Messages    []domain.ModelMessage `json:"messages"`
	MaxTokens   int                   `json:"max_tokens"`
	Temperature float64               `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the message sequence to the model and returns its reply
// text. An error payload from the service is returned as *domain.ModelError
// so callers can surface its message; transport failures come back as plain
// wrapped errors.
func (c *LLMClient) Complete(ctx context.Context, messages []domain.ModelMessage) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("model service request failed: %w", err)
	}
	defer resp.Body.Close()

	var body completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if body.Error != nil {
		return "", &domain.ModelError{Message: body.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model service returned status %d", resp.StatusCode)
	}
	if len(body.Choices) == 0 {
		return "", nil
	}

	return body.Choices[0].Message.Content, nil
}
