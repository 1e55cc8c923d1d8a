package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/codementor-backend/internal/dispatch"
	"github.com/yungbote/codementor-backend/internal/http/response"
	"github.com/yungbote/codementor-backend/internal/mentor"
	"github.com/yungbote/codementor-backend/internal/platform/apierr"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
	"github.com/yungbote/codementor-backend/internal/providers"
)

// Mentor is the dispatcher surface the AI endpoints need.
type Mentor interface {
	Chat(ctx context.Context, req dispatch.ChatRequest) (mentor.ChatbotResponse, error)
	Feedback(ctx context.Context, req dispatch.FeedbackRequest) (mentor.CodeFeedback, error)
	Hint(ctx context.Context, req dispatch.HintRequest) (string, error)
	RecommendVideos(ctx context.Context, topic string) ([]mentor.VideoRecommendation, error)
	Providers() []dispatch.ProviderInfo
}

type AIHandler struct {
	mentor Mentor
	log    *logger.Logger
}

func NewAIHandler(m Mentor, log *logger.Logger) *AIHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AIHandler{mentor: m, log: log.With("handler", "AIHandler")}
}

type chatMessageReq struct {
	Role      string     `json:"role" binding:"required,oneof=user assistant system"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type chatContextReq struct {
	Language       string `json:"language"`
	CurrentTopic   string `json:"currentTopic"`
	UserSkillLevel string `json:"userSkillLevel"`
}

type chatReq struct {
	Messages        []chatMessageReq `json:"messages" binding:"required,dive"`
	CurrentLanguage string           `json:"currentLanguage"`
	CurrentTopic    string           `json:"currentTopic"`
	Model           string           `json:"model"`
	Personality     string           `json:"personality"`
	Context         *chatContextReq  `json:"context"`
}

// programmingContext merges the nested context with the top-level fields; the
// nested values win when both are set.
func (r chatReq) programmingContext() mentor.ProgrammingContext {
	var pc mentor.ProgrammingContext
	if r.Context != nil {
		pc.Language = strings.TrimSpace(r.Context.Language)
		pc.CurrentTopic = strings.TrimSpace(r.Context.CurrentTopic)
		pc.UserSkillLevel = mentor.ParseSkillLevel(r.Context.UserSkillLevel)
	}
	if pc.Language == "" {
		pc.Language = strings.TrimSpace(r.CurrentLanguage)
	}
	if pc.CurrentTopic == "" {
		pc.CurrentTopic = strings.TrimSpace(r.CurrentTopic)
	}
	return pc
}

// POST /api/ai/chat and POST /api/chatbot/message
func (h *AIHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidRequest("Valid messages array is required", err))
		return
	}

	msgs := make([]mentor.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, mentor.ChatMessage{Role: mentor.Role(m.Role), Content: m.Content, Timestamp: m.Timestamp})
	}

	out, err := h.mentor.Chat(c.Request.Context(), dispatch.ChatRequest{
		Model:       req.Model,
		Messages:    msgs,
		Personality: req.Personality,
		Context:     req.programmingContext(),
	})
	if err != nil {
		h.writeDispatchError(c, "Failed to get chat response", err)
		return
	}
	response.RespondOK(c, out)
}

type codeFeedbackReq struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language" binding:"required"`
	Query    string `json:"query"`
	Model    string `json:"model"`
}

// POST /api/ai/code-feedback
func (h *AIHandler) CodeFeedback(c *gin.Context) {
	var req codeFeedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidRequest("Code and language are required", err))
		return
	}

	fb, err := h.mentor.Feedback(c.Request.Context(), dispatch.FeedbackRequest{
		Model:    req.Model,
		Code:     req.Code,
		Language: req.Language,
		Query:    req.Query,
	})
	if err != nil {
		h.writeDispatchError(c, "Failed to get code feedback", err)
		return
	}
	response.RespondOK(c, fb)
}

type hintReq struct {
	Code       string `json:"code" binding:"required"`
	Language   string `json:"language" binding:"required"`
	HintLevel  int    `json:"hintLevel"`
	Difficulty string `json:"difficulty"`
	ExerciseID string `json:"exerciseId"`
	Model      string `json:"model"`
}

// POST /api/ai/generate-hint
func (h *AIHandler) GenerateHint(c *gin.Context) {
	var req hintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidRequest("Code and language are required", err))
		return
	}

	hint, err := h.mentor.Hint(c.Request.Context(), dispatch.HintRequest{
		Model: req.Model,
		HintRequest: mentor.HintRequest{
			Code:       req.Code,
			Language:   req.Language,
			HintLevel:  req.HintLevel,
			Difficulty: req.Difficulty,
			ExerciseID: req.ExerciseID,
		},
	})
	if err != nil {
		h.writeDispatchError(c, "Failed to generate hint", err)
		return
	}
	response.RespondOK(c, gin.H{"hint": hint})
}

type searchVideosReq struct {
	Topic string `form:"topic" binding:"required"`
}

// GET /api/search-videos?topic=
func (h *AIHandler) SearchVideos(c *gin.Context) {
	var req searchVideosReq
	if err := c.ShouldBindQuery(&req); err != nil || strings.TrimSpace(req.Topic) == "" {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_request", errors.New("Topic parameter is required")).
			WithFields([]apierr.FieldError{{Field: "topic", Message: "is required"}}))
		return
	}

	videos, err := h.mentor.RecommendVideos(c.Request.Context(), strings.TrimSpace(req.Topic))
	if err != nil {
		h.writeDispatchError(c, "Failed to search videos", err)
		return
	}
	response.RespondOK(c, videos)
}

// GET /api/ai/providers
func (h *AIHandler) ListProviders(c *gin.Context) {
	response.RespondOK(c, gin.H{"providers": h.mentor.Providers()})
}

// writeDispatchError maps dispatcher errors onto the public error body. Provider
// details are logged, never returned.
func (h *AIHandler) writeDispatchError(c *gin.Context, failure string, err error) {
	var ce *providers.CredentialError
	if errors.As(err, &ce) {
		h.log.Error("provider not configured", "provider", ce.Provider, "env", ce.EnvVar)
		response.RespondAPIError(c,
			apierr.New(http.StatusInternalServerError, "provider_not_configured", fmt.Errorf("%s API key is missing", ce.Provider)).
				WithMessage(fmt.Sprintf("The %s API key is not configured. Please contact the administrator.", ce.Provider)))
		return
	}
	h.log.Error(strings.ToLower(failure), "status", providers.StatusOf(err), "error", err)
	_ = c.Error(err)
	response.RespondAPIError(c, apierr.New(http.StatusInternalServerError, "provider_error", errors.New(failure)))
}

func invalidRequest(msg string, err error) *apierr.Error {
	return apierr.New(http.StatusBadRequest, "invalid_request", errors.New(msg)).WithFields(fieldErrors(err))
}

func fieldErrors(err error) []apierr.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]apierr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apierr.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return out
}

// fieldPath drops the root struct name: "chatReq.messages[0].role" -> "messages[0].role".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
