// internal/app/ai/local.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultLocalURL   = "http://localhost:1234"
	defaultLocalModel = "local-model"
)

// LocalClient calls an OpenAI-compatible chat completions endpoint, such
// as a locally hosted model server.
type LocalClient struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

func newLocal(cfg Config, client *http.Client, logger *zap.Logger) *LocalClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultLocalURL
	}
	model := cfg.LocalModel
	if model == "" {
		model = defaultLocalModel
	}
	return &LocalClient{baseURL: baseURL, model: model, client: client, logger: logger}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends a system+user chat completion request.
func (l *LocalClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	messages := []chatMessage{}
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       l.model,
		Messages:    messages,
		Temperature: 0.4,
		MaxTokens:   800,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		l.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		l.logger.Error("local ai request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", msg))
		return "", fmt.Errorf("local ai: status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("local ai: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("local ai: empty response")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
