package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/codementor-backend/internal/dispatch"
	"github.com/yungbote/codementor-backend/internal/http/response"
	"github.com/yungbote/codementor-backend/internal/mentor"
	"github.com/yungbote/codementor-backend/internal/providers"
)

type fakeMentor struct {
	chatReq     dispatch.ChatRequest
	feedbackReq dispatch.FeedbackRequest
	hintReq     dispatch.HintRequest
	topic       string

	chat     mentor.ChatbotResponse
	feedback mentor.CodeFeedback
	hint     string
	videos   []mentor.VideoRecommendation
	err      error
}

func (f *fakeMentor) Chat(ctx context.Context, req dispatch.ChatRequest) (mentor.ChatbotResponse, error) {
	f.chatReq = req
	return f.chat, f.err
}

func (f *fakeMentor) Feedback(ctx context.Context, req dispatch.FeedbackRequest) (mentor.CodeFeedback, error) {
	f.feedbackReq = req
	return f.feedback, f.err
}

func (f *fakeMentor) Hint(ctx context.Context, req dispatch.HintRequest) (string, error) {
	f.hintReq = req
	return f.hint, f.err
}

func (f *fakeMentor) RecommendVideos(ctx context.Context, topic string) ([]mentor.VideoRecommendation, error) {
	f.topic = topic
	return f.videos, f.err
}

func (f *fakeMentor) Providers() []dispatch.ProviderInfo {
	return []dispatch.ProviderInfo{{ID: mentor.ProviderOpenAI, Name: "OpenAI", Model: "gpt-4o", Configured: true, Capabilities: []string{"chat"}}}
}

func newTestRouter(m Mentor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidation()
	h := NewAIHandler(m, nil)
	r := gin.New()
	r.POST("/api/ai/chat", h.Chat)
	r.POST("/api/chatbot/message", h.Chat)
	r.POST("/api/ai/code-feedback", h.CodeFeedback)
	r.POST("/api/ai/generate-hint", h.GenerateHint)
	r.GET("/api/ai/providers", h.ListProviders)
	r.GET("/api/search-videos", h.SearchVideos)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChatRequiresMessages(t *testing.T) {
	m := &fakeMentor{}
	r := newTestRouter(m)

	for _, body := range []string{`{}`, `{"messages":null}`, `not json`} {
		rec := do(r, http.MethodPost, "/api/ai/chat", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Valid messages array is required", decodeError(t, rec).Error, body)
	}
}

func TestChatRejectsUnknownRole(t *testing.T) {
	r := newTestRouter(&fakeMentor{})
	rec := do(r, http.MethodPost, "/api/chatbot/message", `{"messages":[{"role":"robot","content":"hi"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "invalid_request", body.Code)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "messages[0].role", body.Details[0].Field)
	assert.Equal(t, "must be one of: user, assistant, system", body.Details[0].Message)
}

func TestChatMergesContext(t *testing.T) {
	m := &fakeMentor{chat: mentor.ChatbotResponse{Message: "hello"}}
	r := newTestRouter(m)

	rec := do(r, http.MethodPost, "/api/ai/chat", `{
		"messages":[{"role":"user","content":"help"}],
		"model":"claude",
		"personality":"SOCRATIC",
		"currentLanguage":"go",
		"currentTopic":"loops",
		"context":{"language":"python","userSkillLevel":"advanced"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "claude", m.chatReq.Model)
	assert.Equal(t, "SOCRATIC", m.chatReq.Personality)
	assert.Equal(t, "python", m.chatReq.Context.Language)
	assert.Equal(t, "loops", m.chatReq.Context.CurrentTopic)
	assert.Equal(t, mentor.ParseSkillLevel("advanced"), m.chatReq.Context.UserSkillLevel)
	require.Len(t, m.chatReq.Messages, 1)
	assert.Equal(t, mentor.RoleUser, m.chatReq.Messages[0].Role)

	var out mentor.ChatbotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "hello", out.Message)
}

func TestChatMissingCredential(t *testing.T) {
	m := &fakeMentor{err: &providers.CredentialError{Provider: "Anthropic", EnvVar: "ANTHROPIC_API_KEY"}}
	r := newTestRouter(m)

	rec := do(r, http.MethodPost, "/api/ai/chat", `{"messages":[{"role":"user","content":"hi"}],"model":"anthropic"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "Anthropic API key is missing", body.Error)
	assert.Contains(t, body.Message, "Anthropic API key is not configured")
	assert.Equal(t, "provider_not_configured", body.Code)
	assert.NotContains(t, rec.Body.String(), "ANTHROPIC_API_KEY")
}

func TestProviderFailureHidesDetail(t *testing.T) {
	m := &fakeMentor{err: &providers.HTTPError{Provider: "Perplexity", StatusCode: 502, Body: "secret upstream detail"}}
	r := newTestRouter(m)

	rec := do(r, http.MethodPost, "/api/ai/code-feedback", `{"code":"x = 1","language":"python","model":"llama3"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "Failed to get code feedback", body.Error)
	assert.Equal(t, "provider_error", body.Code)
	assert.NotContains(t, rec.Body.String(), "secret upstream detail")
}

func TestCodeFeedbackValidation(t *testing.T) {
	r := newTestRouter(&fakeMentor{})
	rec := do(r, http.MethodPost, "/api/ai/code-feedback", `{"code":"x = 1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "Code and language are required", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "language", body.Details[0].Field)
	assert.Equal(t, "is required", body.Details[0].Message)
}

func TestCodeFeedbackOK(t *testing.T) {
	m := &fakeMentor{feedback: mentor.CodeFeedback{Feedback: "Good", Suggestions: []string{"a"}, BestPractices: []string{"b"}}}
	r := newTestRouter(m)

	rec := do(r, http.MethodPost, "/api/ai/code-feedback", `{"code":"x = 1","language":"python","query":"ok?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dispatch.FeedbackRequest{Code: "x = 1", Language: "python", Query: "ok?"}, m.feedbackReq)

	var out mentor.CodeFeedback
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Good", out.Feedback)
}

func TestGenerateHint(t *testing.T) {
	m := &fakeMentor{hint: "Look at the loop bound."}
	r := newTestRouter(m)

	rec := do(r, http.MethodPost, "/api/ai/generate-hint", `{"code":"for i in range(10)","language":"python","hintLevel":2,"difficulty":"easy","exerciseId":"ex-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hint":"Look at the loop bound."}`, rec.Body.String())
	assert.Equal(t, 2, m.hintReq.HintLevel)
	assert.Equal(t, "ex-1", m.hintReq.ExerciseID)
}

func TestGenerateHintFailure(t *testing.T) {
	m := &fakeMentor{err: errors.New("generate hint: boom")}
	r := newTestRouter(m)

	rec := do(r, http.MethodPost, "/api/ai/generate-hint", `{"code":"x","language":"go"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate hint", decodeError(t, rec).Error)
}

func TestListProviders(t *testing.T) {
	r := newTestRouter(&fakeMentor{})
	rec := do(r, http.MethodGet, "/api/ai/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Providers []dispatch.ProviderInfo `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Providers, 1)
	assert.Equal(t, mentor.ProviderOpenAI, out.Providers[0].ID)
}

func TestSearchVideosRequiresTopic(t *testing.T) {
	m := &fakeMentor{}
	r := newTestRouter(m)
	for _, path := range []string{"/api/search-videos", "/api/search-videos?topic=", "/api/search-videos?topic=%20%20"} {
		rec := do(r, http.MethodGet, path, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
		body := decodeError(t, rec)
		assert.Equal(t, "Topic parameter is required", body.Error, path)
		require.Len(t, body.Details, 1, path)
		assert.Equal(t, "topic", body.Details[0].Field, path)
	}
	assert.Empty(t, m.topic)
}

func TestSearchVideos(t *testing.T) {
	m := &fakeMentor{videos: []mentor.VideoRecommendation{{Title: "Loops", Creator: "Ann", VideoID: "v1", Duration: 7, Description: "for loops"}}}
	r := newTestRouter(m)

	rec := do(r, http.MethodGet, "/api/search-videos?topic=for+loops", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "for loops", m.topic)
	assert.JSONEq(t, `[{"title":"Loops","creator":"Ann","videoId":"v1","duration":7,"description":"for loops"}]`, rec.Body.String())
}

func TestSearchVideosEmptyListIsArray(t *testing.T) {
	r := newTestRouter(&fakeMentor{videos: []mentor.VideoRecommendation{}})
	rec := do(r, http.MethodGet, "/api/search-videos?topic=maps", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSearchVideosMissingCredential(t *testing.T) {
	r := newTestRouter(&fakeMentor{err: &providers.CredentialError{Provider: "OpenAI", EnvVar: "OPENAI_API_KEY"}})
	rec := do(r, http.MethodGet, "/api/search-videos?topic=maps", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "provider_not_configured", body.Code)
	assert.Contains(t, body.Message, "OpenAI API key is not configured")
}
