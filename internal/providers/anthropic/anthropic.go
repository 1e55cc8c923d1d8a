// Package anthropic adapts the Anthropic Messages API for mentor chat.
package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/codementor-backend/internal/mentor"
	"github.com/yungbote/codementor-backend/internal/normalize"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
	"github.com/yungbote/codementor-backend/internal/providers"
)

const (
	messagesPath = "/v1/messages"

	// APIVersion is sent as the anthropic-version header.
	APIVersion = "2023-06-01"

	defaultMaxTokens = 1500
)

type Config struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

type Adapter struct {
	client *providers.Client
	cfg    Config
	log    *logger.Logger
}

// ClientConfig returns the shared client settings the Messages API needs on top of base.
func ClientConfig(base providers.ClientConfig) providers.ClientConfig {
	base.Auth = providers.AuthAPIKeyHeader
	headers := map[string]string{"anthropic-version": APIVersion}
	for k, v := range base.Headers {
		headers[k] = v
	}
	base.Headers = headers
	return base
}

func New(client *providers.Client, cfg Config, log *logger.Logger) *Adapter {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "claude-3-7-sonnet-20250219"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{client: client, cfg: cfg, log: log.With("provider", client.ID())}
}

func (a *Adapter) ID() string             { return a.client.ID() }
func (a *Adapter) Name() string           { return a.client.Name() }
func (a *Adapter) Model() string          { return a.cfg.Model }
func (a *Adapter) Configured() bool       { return a.client.Configured() }
func (a *Adapter) CheckCredential() error { return a.client.CheckCredential() }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// mapRoles folds the conversation into the two roles the Messages API accepts.
// Every non-user turn, system included, is sent as assistant.
// TODO: decide whether system turns should be merged into the top-level system prompt instead.
func mapRoles(messages []mentor.ChatMessage) []message {
	out := make([]message, 0, len(messages))
	for _, m := range messages {
		role := "assistant"
		if m.Role == mentor.RoleUser {
			role = "user"
		}
		out = append(out, message{Role: role, Content: m.Content})
	}
	return out
}

// Respond answers a conversation. Provider failures and empty completions
// resolve to fallback responses; only a missing credential is an error.
func (a *Adapter) Respond(ctx context.Context, messages []mentor.ChatMessage, p mentor.Personality, pc mentor.ProgrammingContext) (mentor.ChatbotResponse, error) {
	if err := a.CheckCredential(); err != nil {
		return mentor.ChatbotResponse{}, err
	}
	req := messagesRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		System:      mentor.ChatSystemPrompt(p, pc, mentor.FreeText),
		Messages:    mapRoles(messages),
		Temperature: a.cfg.Temperature,
	}

	var resp messagesResponse
	if err := a.client.PostJSON(ctx, "chat", messagesPath, req, &resp); err != nil {
		if errors.Is(err, providers.ErrCredentialMissing) {
			return mentor.ChatbotResponse{}, err
		}
		a.log.Warn("messages call failed, using fallback", "status", providers.StatusOf(err), "error", err)
		providers.ReportFallback(ctx, a.ID(), "chat", providers.FallbackProviderError, err)
		return mentor.ChatFallback(mentor.ChatUnavailableMessage), nil
	}
	providers.ReportUsage(ctx, a.ID(), a.cfg.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		a.log.Warn("messages call returned no text content", "stop_reason", resp.StopReason)
		providers.ReportFallback(ctx, a.ID(), "chat", providers.FallbackEmpty, providers.ErrEmptyCompletion)
		return mentor.ChatFallback(mentor.ChatEmptyMessage), nil
	}

	out := normalize.ParseStructuredReply(strings.Join(parts, "\n\n")).ChatbotResponse()
	if out.Message == "" && out.Code == "" {
		providers.ReportFallback(ctx, a.ID(), "chat", providers.FallbackEmpty, providers.ErrEmptyCompletion)
		return mentor.ChatFallback(mentor.ChatEmptyMessage), nil
	}
	return out, nil
}
