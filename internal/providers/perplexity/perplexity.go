// Package perplexity adapts the Perplexity chat completions API, which serves
// Llama 3 models and answers in free text.
//
// Unlike the OpenAI and Anthropic adapters, transport and status failures are
// returned to the caller rather than replaced by a fallback reply.
package perplexity

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/codementor-backend/internal/mentor"
	"github.com/yungbote/codementor-backend/internal/normalize"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
	"github.com/yungbote/codementor-backend/internal/providers"
)

const completionsPath = "/chat/completions"

type Config struct {
	Model     string
	MaxTokens int
}

type Adapter struct {
	client *providers.Client
	cfg    Config
	log    *logger.Logger
}

func New(client *providers.Client, cfg Config, log *logger.Logger) *Adapter {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "llama-3.1-sonar-small-128k-online"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
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

type completionRequest struct {
	Model            string    `json:"model"`
	Messages         []message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	TopP             float64   `json:"top_p"`
	MaxTokens        int       `json:"max_tokens"`
	Stream           bool      `json:"stream"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
}

type completionResponse struct {
	Model     string   `json:"model"`
	Citations []string `json:"citations,omitempty"`
	Choices   []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// sampling parameters per operation
var (
	chatSampling     = completionRequest{Temperature: 0.7, TopP: 0.95, FrequencyPenalty: 0.5}
	feedbackSampling = completionRequest{Temperature: 0.2, TopP: 0.9, FrequencyPenalty: 1}
)

func (a *Adapter) complete(ctx context.Context, op string, req completionRequest) (string, error) {
	req.Model = a.cfg.Model
	req.MaxTokens = a.cfg.MaxTokens
	req.Stream = false

	var resp completionResponse
	if err := a.client.PostJSON(ctx, op, completionsPath, req, &resp); err != nil {
		return "", err
	}
	providers.ReportUsage(ctx, a.ID(), a.cfg.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s: %w", a.Name(), providers.ErrEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}

// Respond answers a conversation. The system prompt is sent as the first
// message; the caller's roles pass through unchanged.
func (a *Adapter) Respond(ctx context.Context, messages []mentor.ChatMessage, p mentor.Personality, pc mentor.ProgrammingContext) (mentor.ChatbotResponse, error) {
	if err := a.CheckCredential(); err != nil {
		return mentor.ChatbotResponse{}, err
	}
	msgs := make([]message, 0, len(messages)+1)
	msgs = append(msgs, message{Role: string(mentor.RoleSystem), Content: mentor.ChatSystemPrompt(p, pc, mentor.FreeText)})
	for _, m := range messages {
		msgs = append(msgs, message{Role: string(m.Role), Content: m.Content})
	}

	req := chatSampling
	req.Messages = msgs
	raw, err := a.complete(ctx, "chat", req)
	if err != nil {
		a.log.Error("chat completion failed", "status", providers.StatusOf(err), "error", err)
		return mentor.ChatbotResponse{}, err
	}
	return ParseChatReply(raw), nil
}

// ParseChatReply cleans Llama artifacts from raw and splits it into message,
// code and resources.
func ParseChatReply(raw string) mentor.ChatbotResponse {
	return normalize.ParseStructuredReply(normalize.CleanLlamaArtifacts(raw)).ChatbotResponse()
}

// Feedback reviews code. Transport errors propagate; a reply without usable
// JSON becomes the parse fallback and a schema mismatch a best-effort review.
func (a *Adapter) Feedback(ctx context.Context, code, language, query string) (mentor.CodeFeedback, error) {
	if err := a.CheckCredential(); err != nil {
		return mentor.CodeFeedback{}, err
	}
	system, user := mentor.FeedbackPrompt(code, language, query, mentor.FreeText)

	req := feedbackSampling
	req.Messages = []message{{Role: "system", Content: system}, {Role: "user", Content: user}}
	raw, err := a.complete(ctx, "feedback", req)
	if err != nil {
		a.log.Error("feedback completion failed", "status", providers.StatusOf(err), "error", err)
		return mentor.CodeFeedback{}, err
	}

	fb, outcome := normalize.DecodeFeedback(raw)
	switch outcome {
	case normalize.OutcomeValid:
		return fb, nil
	case normalize.OutcomePartial:
		a.log.Warn("feedback reply failed schema validation, using partial result")
		providers.ReportFallback(ctx, a.ID(), "feedback", providers.FallbackPartial, nil)
		return fb, nil
	default:
		a.log.Warn("feedback reply held no JSON object, using fallback")
		a.log.Debug("unparseable feedback reply", "raw", raw)
		providers.ReportFallback(ctx, a.ID(), "feedback", providers.FallbackUnparseable, nil)
		return mentor.FeedbackUnparseable(), nil
	}
}
