// Package dispatch routes mentor requests to a provider adapter.
//
// The dispatcher is stateless between calls. It selects the adapter from the
// request's model token, checks that adapter's credential, coerces the
// personality, and records one audit row per provider call when a call log is
// configured.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/codementor-backend/internal/data/repos"
	"github.com/yungbote/codementor-backend/internal/domain"
	"github.com/yungbote/codementor-backend/internal/mentor"
	"github.com/yungbote/codementor-backend/internal/platform/ctxutil"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
	"github.com/yungbote/codementor-backend/internal/providers"
)

type ChatRequest struct {
	Model       string
	Messages    []mentor.ChatMessage
	Personality string
	Context     mentor.ProgrammingContext
}

type FeedbackRequest struct {
	Model    string
	Code     string
	Language string
	Query    string
}

type HintRequest struct {
	Model string
	mentor.HintRequest
}

// Options wires the adapters. Chat needs all three providers, Feedback needs
// OpenAI and Llama3, and Hint and Videos are OpenAI only. CallLog may be nil.
type Options struct {
	Chat     map[mentor.Provider]providers.ChatResponder
	Feedback map[mentor.Provider]providers.FeedbackProvider
	Hint     providers.HintProvider
	Videos   providers.VideoRecommender
	CallLog  repos.AICallLogRepo
	Log      *logger.Logger
}

type Dispatcher struct {
	chat     map[mentor.Provider]providers.ChatResponder
	feedback map[mentor.Provider]providers.FeedbackProvider
	hint     providers.HintProvider
	videos   providers.VideoRecommender
	callLog  repos.AICallLogRepo
	log      *logger.Logger
}

func New(opts Options) (*Dispatcher, error) {
	for _, p := range mentor.Providers {
		if opts.Chat[p] == nil {
			return nil, fmt.Errorf("dispatch: no chat adapter for %s", p)
		}
	}
	for _, p := range []mentor.Provider{mentor.ProviderOpenAI, mentor.ProviderLlama3} {
		if opts.Feedback[p] == nil {
			return nil, fmt.Errorf("dispatch: no feedback adapter for %s", p)
		}
	}
	if opts.Hint == nil {
		return nil, errors.New("dispatch: no hint adapter")
	}
	if opts.Videos == nil {
		return nil, errors.New("dispatch: no video adapter")
	}
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{
		chat:     opts.Chat,
		feedback: opts.Feedback,
		hint:     opts.Hint,
		videos:   opts.Videos,
		callLog:  opts.CallLog,
		log:      log.With("service", "Dispatcher"),
	}, nil
}

// CoercePersonality maps unknown or empty input onto the default personality.
func CoercePersonality(s string) mentor.Personality {
	if p, ok := mentor.ParsePersonality(s); ok {
		return p
	}
	return mentor.DefaultPersonality
}

func (d *Dispatcher) Chat(ctx context.Context, req ChatRequest) (mentor.ChatbotResponse, error) {
	provider := mentor.ParseProvider(req.Model)
	adapter := d.chat[provider]
	if err := adapter.CheckCredential(); err != nil {
		d.log.Error("provider credential missing", "provider", provider, "op", domain.CallTypeChat, "error", err)
		return mentor.ChatbotResponse{}, err
	}

	personality := CoercePersonality(req.Personality)
	if req.Personality != "" && string(personality) != req.Personality {
		d.log.Debug("personality coerced", "requested", req.Personality, "using", personality)
	}

	ctx, info := providers.WithCallInfo(ctx)
	start := time.Now()
	out, err := adapter.Respond(ctx, req.Messages, personality, req.Context)
	d.record(ctx, provider, domain.CallTypeChat, adapter.Model(), personality, info, err, time.Since(start))
	if err != nil {
		return mentor.ChatbotResponse{}, err
	}
	return out, nil
}

// Feedback routes llama3 to Perplexity and everything else to OpenAI.
func (d *Dispatcher) Feedback(ctx context.Context, req FeedbackRequest) (mentor.CodeFeedback, error) {
	provider := mentor.ParseProvider(req.Model)
	if provider == mentor.ProviderAnthropic {
		d.log.Debug("anthropic has no code review, using openai", "op", domain.CallTypeFeedback)
		provider = mentor.ProviderOpenAI
	}
	adapter := d.feedback[provider]
	if err := adapter.CheckCredential(); err != nil {
		d.log.Error("provider credential missing", "provider", provider, "op", domain.CallTypeFeedback, "error", err)
		return mentor.CodeFeedback{}, err
	}

	ctx, info := providers.WithCallInfo(ctx)
	start := time.Now()
	out, err := adapter.Feedback(ctx, req.Code, req.Language, req.Query)
	d.record(ctx, provider, domain.CallTypeFeedback, adapter.Model(), "", info, err, time.Since(start))
	if err != nil {
		return mentor.CodeFeedback{}, err
	}
	out.Normalize()
	return out, nil
}

// Hint always uses OpenAI; the requested model is ignored.
func (d *Dispatcher) Hint(ctx context.Context, req HintRequest) (string, error) {
	if err := d.hint.CheckCredential(); err != nil {
		d.log.Error("provider credential missing", "provider", mentor.ProviderOpenAI, "op", domain.CallTypeHint, "error", err)
		return "", err
	}
	hr := req.HintRequest
	hr.HintLevel = mentor.ClampHintLevel(hr.HintLevel)

	ctx, info := providers.WithCallInfo(ctx)
	start := time.Now()
	hint, err := d.hint.Hint(ctx, hr)
	d.record(ctx, mentor.ProviderOpenAI, domain.CallTypeHint, d.hint.Model(), "", info, err, time.Since(start))
	return hint, err
}

// RecommendVideos suggests tutorial videos for topic using OpenAI.
func (d *Dispatcher) RecommendVideos(ctx context.Context, topic string) ([]mentor.VideoRecommendation, error) {
	if err := d.videos.CheckCredential(); err != nil {
		d.log.Error("provider credential missing", "provider", mentor.ProviderOpenAI, "op", domain.CallTypeVideos, "error", err)
		return nil, err
	}

	ctx, info := providers.WithCallInfo(ctx)
	start := time.Now()
	videos, err := d.videos.RecommendVideos(ctx, topic)
	d.record(ctx, mentor.ProviderOpenAI, domain.CallTypeVideos, d.videos.Model(), "", info, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []mentor.VideoRecommendation{}
	}
	return videos, nil
}

type ProviderInfo struct {
	ID           mentor.Provider `json:"id"`
	Name         string          `json:"name"`
	Model        string          `json:"model"`
	Configured   bool            `json:"configured"`
	Capabilities []string        `json:"capabilities"`
}

// Providers describes every selectable provider in display order.
func (d *Dispatcher) Providers() []ProviderInfo {
	out := make([]ProviderInfo, 0, len(mentor.Providers))
	for _, p := range mentor.Providers {
		chat := d.chat[p]
		info := ProviderInfo{
			ID:           p,
			Name:         p.DisplayName(),
			Model:        chat.Model(),
			Configured:   chat.Configured(),
			Capabilities: []string{domain.CallTypeChat},
		}
		if p != mentor.ProviderAnthropic && d.feedback[p] != nil {
			info.Capabilities = append(info.Capabilities, domain.CallTypeFeedback)
		}
		if p == mentor.ProviderOpenAI {
			info.Capabilities = append(info.Capabilities, domain.CallTypeHint, domain.CallTypeVideos)
		}
		out = append(out, info)
	}
	return out
}

// record writes the audit row. Failures are logged and never reach the caller.
func (d *Dispatcher) record(ctx context.Context, provider mentor.Provider, callType, model string, personality mentor.Personality, info *providers.CallInfo, callErr error, latency time.Duration) {
	if d.callLog == nil {
		return
	}
	if info.Model != "" {
		model = info.Model
	}
	usage := domain.CallUsage{
		InputTokens:  info.InputTokens,
		OutputTokens: info.OutputTokens,
		Fallback:     info.Fallback,
	}
	if info.FallbackErr != nil {
		usage.FallbackReason = info.FallbackErr.Error()
	}
	usageJSON, _ := json.Marshal(usage)

	row := &domain.AICallLog{
		Provider:    string(provider),
		CallType:    callType,
		Model:       model,
		Success:     callErr == nil && info.Fallback == "",
		LatencyMS:   latency.Milliseconds(),
		RequestID:   ctxutil.RequestID(ctx),
		Personality: string(personality),
		Usage:       datatypes.JSON(usageJSON),
	}
	switch {
	case callErr != nil:
		row.Error = callErr.Error()
	case info.FallbackErr != nil:
		row.Error = info.FallbackErr.Error()
	case info.Fallback != "":
		row.Error = "fallback: " + info.Fallback
	}

	if _, err := d.callLog.Create(context.WithoutCancel(ctx), nil, []*domain.AICallLog{row}); err != nil {
		d.log.Warn("failed to write ai call log", "provider", provider, "op", callType, "error", err)
	}
}
