// Package openai adapts the OpenAI chat completions API to the mentor contract.
// Chat and code review use structured outputs; hints are plain text.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/yungbote/codementor-backend/internal/mentor"
	"github.com/yungbote/codementor-backend/internal/normalize"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
	"github.com/yungbote/codementor-backend/internal/providers"
)

const completionsPath = "/v1/chat/completions"

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

func New(client *providers.Client, cfg Config, log *logger.Logger) *Adapter {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o"
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

type jsonSchemaFormat struct {
	Name   string             `json:"name"`
	Schema *jsonschema.Schema `json:"schema"`
	Strict bool               `json:"strict"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func structured(name string, schema *jsonschema.Schema) *responseFormat {
	return &responseFormat{Type: "json_schema", JSONSchema: &jsonSchemaFormat{Name: name, Schema: schema, Strict: false}}
}

// complete sends one request and returns the first choice's text.
func (a *Adapter) complete(ctx context.Context, op string, req completionRequest) (string, error) {
	req.Model = a.cfg.Model
	if req.MaxTokens == 0 {
		req.MaxTokens = a.cfg.MaxTokens
	}
	if req.Temperature == nil {
		req.Temperature = a.cfg.Temperature
	}
	var resp completionResponse
	if err := a.client.PostJSON(ctx, op, completionsPath, req, &resp); err != nil {
		return "", err
	}
	providers.ReportUsage(ctx, a.ID(), a.cfg.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", a.Name(), providers.ErrEmptyCompletion)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		if r := resp.Choices[0].Message.Refusal; r != "" {
			return "", fmt.Errorf("%s refused: %s: %w", a.Name(), r, providers.ErrEmptyCompletion)
		}
		return "", fmt.Errorf("%s: %w", a.Name(), providers.ErrEmptyCompletion)
	}
	return text, nil
}

// Respond answers a conversation. Provider and parse failures yield a fallback
// response; only a missing credential is returned as an error.
func (a *Adapter) Respond(ctx context.Context, messages []mentor.ChatMessage, p mentor.Personality, pc mentor.ProgrammingContext) (mentor.ChatbotResponse, error) {
	if err := a.CheckCredential(); err != nil {
		return mentor.ChatbotResponse{}, err
	}
	msgs := make([]message, 0, len(messages)+1)
	msgs = append(msgs, message{Role: string(mentor.RoleSystem), Content: mentor.ChatSystemPrompt(p, pc, mentor.StructuredJSON)})
	for _, m := range messages {
		msgs = append(msgs, message{Role: string(m.Role), Content: m.Content})
	}

	text, err := a.complete(ctx, "chat", completionRequest{
		Messages:       msgs,
		ResponseFormat: structured("chatbot_response", normalize.ChatbotResponseSchema()),
	})
	if err != nil {
		if errors.Is(err, providers.ErrCredentialMissing) {
			return mentor.ChatbotResponse{}, err
		}
		a.log.Warn("chat completion failed, using fallback", "status", providers.StatusOf(err), "error", err)
		providers.ReportFallback(ctx, a.ID(), "chat", providers.FallbackProviderError, err)
		return mentor.ChatFallback(mentor.ChatUnavailableMessage), nil
	}

	out, err := normalize.DecodeChatbotResponse(text)
	if err != nil {
		a.log.Warn("chat reply did not match schema, using fallback", "error", err)
		a.log.Debug("unparseable chat reply", "raw", text)
		providers.ReportFallback(ctx, a.ID(), "chat", providers.FallbackUnparseable, err)
		return mentor.ChatFallback(mentor.ChatUnparseableMessage), nil
	}
	return out, nil
}

// Feedback reviews code. Any failure after the credential check resolves to a
// best-effort or fallback review.
func (a *Adapter) Feedback(ctx context.Context, code, language, query string) (mentor.CodeFeedback, error) {
	if err := a.CheckCredential(); err != nil {
		return mentor.CodeFeedback{}, err
	}
	system, user := mentor.FeedbackPrompt(code, language, query, mentor.StructuredJSON)

	text, err := a.complete(ctx, "feedback", completionRequest{
		Messages:       []message{{Role: "system", Content: system}, {Role: "user", Content: user}},
		ResponseFormat: structured("code_feedback", normalize.FeedbackSchema()),
	})
	if err != nil {
		if errors.Is(err, providers.ErrCredentialMissing) {
			return mentor.CodeFeedback{}, err
		}
		a.log.Warn("feedback completion failed, using fallback", "status", providers.StatusOf(err), "error", err)
		providers.ReportFallback(ctx, a.ID(), "feedback", providers.FallbackProviderError, err)
		return mentor.FeedbackUnavailable(), nil
	}

	fb, outcome := normalize.DecodeFeedback(text)
	switch outcome {
	case normalize.OutcomeValid:
		return fb, nil
	case normalize.OutcomePartial:
		a.log.Warn("feedback reply failed schema validation, using partial result")
		providers.ReportFallback(ctx, a.ID(), "feedback", providers.FallbackPartial, nil)
		return fb, nil
	default:
		a.log.Warn("feedback reply held no JSON object, using fallback")
		a.log.Debug("unparseable feedback reply", "raw", text)
		providers.ReportFallback(ctx, a.ID(), "feedback", providers.FallbackUnparseable, nil)
		return mentor.FeedbackUnavailable(), nil
	}
}

// Hint returns one hint. Unlike chat and feedback, provider failures propagate.
func (a *Adapter) Hint(ctx context.Context, req mentor.HintRequest) (string, error) {
	if err := a.CheckCredential(); err != nil {
		return "", err
	}
	system, user := mentor.HintPrompt(req)
	text, err := a.complete(ctx, "hint", completionRequest{
		Messages: []message{{Role: "system", Content: system}, {Role: "user", Content: user}},
	})
	if err != nil {
		a.log.Error("hint completion failed", "status", providers.StatusOf(err), "error", err)
		return "", fmt.Errorf("generate hint: %w", err)
	}
	return text, nil
}

// RecommendVideos suggests tutorial videos for topic. Provider and parse
// failures yield an empty list.
func (a *Adapter) RecommendVideos(ctx context.Context, topic string) ([]mentor.VideoRecommendation, error) {
	if err := a.CheckCredential(); err != nil {
		return nil, err
	}
	text, err := a.complete(ctx, "videos", completionRequest{
		Messages:       []message{{Role: "user", Content: mentor.VideoSearchPrompt(topic)}},
		ResponseFormat: structured("video_recommendations", normalize.VideoRecommendationsSchema()),
	})
	if err != nil {
		a.log.Warn("video search failed, returning no videos", "status", providers.StatusOf(err), "error", err)
		providers.ReportFallback(ctx, a.ID(), "videos", providers.FallbackProviderError, err)
		return []mentor.VideoRecommendation{}, nil
	}
	videos, err := normalize.DecodeVideoRecommendations(text)
	if err != nil {
		a.log.Warn("video reply held no recommendations, returning no videos", "error", err)
		a.log.Debug("unparseable video reply", "raw", text)
		providers.ReportFallback(ctx, a.ID(), "videos", providers.FallbackUnparseable, err)
		return []mentor.VideoRecommendation{}, nil
	}
	return videos, nil
}
