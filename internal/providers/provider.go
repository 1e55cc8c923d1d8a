package providers

import (
	"context"

	"github.com/yungbote/codementor-backend/internal/mentor"
)

// Credentialed is implemented by every adapter so the caller can check the
// credential before dispatching.
type Credentialed interface {
	ID() string
	Name() string
	Model() string
	Configured() bool
	CheckCredential() error
}

// ChatResponder answers a conversation in a persona.
type ChatResponder interface {
	Credentialed
	Respond(ctx context.Context, messages []mentor.ChatMessage, p mentor.Personality, pc mentor.ProgrammingContext) (mentor.ChatbotResponse, error)
}

// FeedbackProvider reviews a code submission.
type FeedbackProvider interface {
	Credentialed
	Feedback(ctx context.Context, code, language, query string) (mentor.CodeFeedback, error)
}

// HintProvider produces a single exercise hint.
type HintProvider interface {
	Credentialed
	Hint(ctx context.Context, req mentor.HintRequest) (string, error)
}

// VideoRecommender suggests tutorial videos for a topic.
type VideoRecommender interface {
	Credentialed
	RecommendVideos(ctx context.Context, topic string) ([]mentor.VideoRecommendation, error)
}

// Fallback reasons reported through ReportFallback.
const (
	FallbackProviderError = "provider_error"
	FallbackUnparseable   = "unparseable"
	FallbackPartial       = "partial"
	FallbackEmpty         = "empty"
)
