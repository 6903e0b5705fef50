// Package groq classifies intents and drafts replies through Groq's OpenAI-compatible API.
package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"jan-server/services/engage-api/internal/domain/conversation"
	"jan-server/services/engage-api/internal/domain/inbound"
	"jan-server/services/engage-api/internal/infrastructure/metrics"
)

const providerName = "groq"

// ErrEmptyCompletion is returned when the provider answers without choices.
var ErrEmptyCompletion = errors.New("groq returned no completion")

// Config holds the Groq connection settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Client implements inbound.TextGenerator.
type Client struct {
	api *openai.Client
	cfg Config
	log zerolog.Logger
}

var _ inbound.TextGenerator = (*Client)(nil)

// NewClient creates a Groq client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		api: openai.NewClientWithConfig(apiCfg),
		cfg: cfg,
		log: log.With().Str("component", "groq-client").Logger(),
	}
}

// ClassifyIntent asks the model for a JSON intent classification of text.
func (c *Client) ClassifyIntent(ctx context.Context, text, sector string) (inbound.Intent, error) {
	content, err := c.complete(ctx, "classify_intent", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: intentPrompt(sector)},
		{Role: openai.ChatMessageRoleUser, Content: text},
	}, true)
	if err != nil {
		return inbound.Intent{}, err
	}

	var intent inbound.Intent
	if err := json.Unmarshal([]byte(content), &intent); err != nil {
		return inbound.Intent{}, fmt.Errorf("decode intent: %w", err)
	}
	if intent.Name == "" {
		intent.Name = "general_query"
	}
	return intent, nil
}

// GenerateResponse drafts a reply to req.Query with the recent history as prior turns.
func (c *Client) GenerateResponse(ctx context.Context, req inbound.ResponseRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: responsePrompt(req.Sector, req.Language),
	})
	history := req.History
	// The current query is already the last user turn in history.
	if n := len(history); n > 0 && history[n-1].Role == conversation.RoleUser && history[n-1].Content == req.Query {
		history = history[:n-1]
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == conversation.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt(req.Query, req.Sector),
	})

	return c.complete(ctx, "generate_response", messages, false)
}

func (c *Client) complete(ctx context.Context, operation string, messages []openai.ChatCompletionMessage, jsonMode bool) (content string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCollaborator(providerName, operation, start, err) }()

	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("groq %s: %w", operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content = resp.Choices[0].Message.Content
	c.log.Debug().
		Str("operation", operation).
		Int("chars", len(content)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("groq completion")
	return content, nil
}
