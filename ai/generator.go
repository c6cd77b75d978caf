// Package ai generates agent replies through an OpenAI-compatible
// chat-completions endpoint (works with OpenAI, OpenRouter, local
// gateways, anything speaking the same dialect).
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
)

const defaultMaxTokens = 1024

type Generator struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
	log      *slog.Logger
}

func NewGenerator(apiKey, apiBase, model string, log *slog.Logger) *Generator {
	return &Generator{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(apiBase, "/") + "/chat/completions",
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
		log:      log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

// chatResponse mirrors the OpenAI chat completion response structure,
// trimmed to the parts a plain text reply needs.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate produces the agent reply for a prompt. The room personality
// becomes the system message and the trailing context is replayed as
// alternating user/assistant turns, oldest first.
func (g *Generator) Generate(ctx context.Context, request contract.GenerationRequest) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:     g.model,
		Messages:  g.buildMessages(request),
		MaxTokens: defaultMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrGenerationFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrGenerationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrGenerationFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		g.log.Warn("Completion endpoint rejected request", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: http %d", errors.ErrGenerationFailed, resp.StatusCode)
	}

	var parsed chatResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrGenerationFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", errors.ErrGenerationFailed)
	}
	return parsed.Choices[0].Message.Content, nil
}

func (g *Generator) buildMessages(request contract.GenerationRequest) []chatMessage {
	messages := make([]chatMessage, 0, len(request.Context)+2)
	if request.Personality != "" {
		messages = append(messages, chatMessage{Role: "system", Content: request.Personality})
	}
	for _, msg := range request.Context {
		role := "user"
		if msg.Role == domain.RoleAgent {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: msg.Text})
	}
	messages = append(messages, chatMessage{Role: "user", Content: promptContent(request)})
	return messages
}

// promptContent returns plain text for text-only prompts and the
// multi-part content form when an image rides along.
func promptContent(request contract.GenerationRequest) any {
	if request.Image == "" {
		return request.Prompt
	}
	return []map[string]any{
		{"type": "text", "text": request.Prompt},
		{"type": "image_url", "image_url": map[string]string{"url": request.Image}},
	}
}
