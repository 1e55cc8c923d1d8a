package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yungbote/codementor-backend/internal/mentor"
	"github.com/yungbote/codementor-backend/internal/providers"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func reply(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
		"usage":   map[string]any{"prompt_tokens": 11, "completion_tokens": 7},
	})
	return string(b)
}

func newAdapter(t *testing.T, apiKey string, rt roundTripperFunc) *Adapter {
	t.Helper()
	client := providers.NewClientWithHTTPClient(providers.ClientConfig{
		ID: "openai", Name: "OpenAI", BaseURL: "http://upstream", APIKey: apiKey, APIKeyEnv: "OPENAI_API_KEY",
	}, nil, &http.Client{Transport: rt})
	return New(client, Config{Model: "gpt-4o"}, nil)
}

func decodeRequest(t *testing.T, req *http.Request) completionRequest {
	t.Helper()
	if req.URL.Path != completionsPath {
		t.Fatalf("path=%s", req.URL.Path)
	}
	var in completionRequest
	raw, _ := io.ReadAll(req.Body)
	if err := json.Unmarshal(raw, &in); err != nil {
		t.Fatalf("decode req: %v", err)
	}
	return in
}

func TestRespondStructuredOutput(t *testing.T) {
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(raw))
		if !bytes.Contains(raw, []byte(`"type":"json_schema"`)) || !bytes.Contains(raw, []byte(`"strict":false`)) {
			t.Fatalf("missing structured response_format: %s", raw)
		}
		in := decodeRequest(t, req)
		if in.Model != "gpt-4o" {
			t.Fatalf("model=%q", in.Model)
		}
		if len(in.Messages) != 2 || in.Messages[0].Role != "system" || in.Messages[1].Role != "user" {
			t.Fatalf("messages=%+v", in.Messages)
		}
		if !strings.Contains(in.Messages[0].Content, "Cody") {
			t.Fatalf("expected the FRIENDLY persona prompt, got %q", in.Messages[0].Content)
		}
		if !strings.Contains(in.Messages[0].Content, "- Programming language: go") {
			t.Fatalf("missing context clause: %q", in.Messages[0].Content)
		}
		return reply(http.StatusOK, completion(`{"message":"Loops repeat work.","code":"for i := 0; i < 3; i++ {}\n","language":"go"}`)), nil
	})

	ctx, info := providers.WithCallInfo(context.Background())
	out, err := a.Respond(ctx,
		[]mentor.ChatMessage{{Role: mentor.RoleUser, Content: "explain for loops"}},
		mentor.Friendly, mentor.ProgrammingContext{Language: "go"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if out.Message != "Loops repeat work." || out.Code != "for i := 0; i < 3; i++ {}" || out.Language != "go" {
		t.Fatalf("out=%+v", out)
	}
	if info.InputTokens != 11 || info.OutputTokens != 7 || info.Model != "gpt-4o" || info.Fallback != "" {
		t.Fatalf("info=%+v", info)
	}
}

func TestRespondProviderErrorReturnsFallback(t *testing.T) {
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		return reply(http.StatusInternalServerError, `{"error":"boom"}`), nil
	})
	ctx, info := providers.WithCallInfo(context.Background())
	out, err := a.Respond(ctx, []mentor.ChatMessage{{Role: mentor.RoleUser, Content: "hi"}}, mentor.Expert, mentor.ProgrammingContext{})
	if err != nil {
		t.Fatalf("chat must not propagate provider errors: %v", err)
	}
	if out.Message != mentor.ChatUnavailableMessage || out.Code != "" {
		t.Fatalf("out=%+v", out)
	}
	if info.Fallback != providers.FallbackProviderError || providers.StatusOf(info.FallbackErr) != 500 {
		t.Fatalf("info=%+v", info)
	}
}

func TestRespondUnparseableReturnsParseFallback(t *testing.T) {
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		return reply(http.StatusOK, completion("not json at all")), nil
	})
	out, err := a.Respond(context.Background(), []mentor.ChatMessage{{Role: mentor.RoleUser, Content: "hi"}}, mentor.Brief, mentor.ProgrammingContext{})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if out.Message != mentor.ChatUnparseableMessage {
		t.Fatalf("out=%+v", out)
	}
}

func TestRespondMissingCredential(t *testing.T) {
	var calls int32
	a := newAdapter(t, "", func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return reply(http.StatusOK, completion("{}")), nil
	})
	_, err := a.Respond(context.Background(), nil, mentor.Friendly, mentor.ProgrammingContext{})
	if !errors.Is(err, providers.ErrCredentialMissing) {
		t.Fatalf("err=%v", err)
	}
	if calls != 0 {
		t.Fatalf("network called")
	}
}

func TestFeedbackValid(t *testing.T) {
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		in := decodeRequest(t, req)
		if in.ResponseFormat == nil || in.ResponseFormat.JSONSchema == nil || in.ResponseFormat.JSONSchema.Name != "code_feedback" {
			t.Fatalf("response_format=%+v", in.ResponseFormat)
		}
		if !strings.Contains(in.Messages[1].Content, "```python\nprint(x)\n```") {
			t.Fatalf("user prompt=%q", in.Messages[1].Content)
		}
		return reply(http.StatusOK, completion(`{"feedback":"x is undefined","suggestions":["define x"],"bestPractices":[],"errorDetection":[{"line":1,"message":"NameError"}]}`)), nil
	})
	fb, err := a.Feedback(context.Background(), "print(x)", "python", "")
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	if fb.Feedback != "x is undefined" || len(fb.ErrorDetection) != 1 || fb.ErrorDetection[0].Line != 1 {
		t.Fatalf("fb=%+v", fb)
	}
	if fb.BestPractices == nil {
		t.Fatalf("bestPractices must be non-nil")
	}
}

func TestFeedbackProviderErrorReturnsFallback(t *testing.T) {
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection reset")
	})
	fb, err := a.Feedback(context.Background(), "x", "go", "")
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	want := mentor.FeedbackUnavailable()
	if fb.Feedback != want.Feedback || fb.Suggestions[0] != want.Suggestions[0] {
		t.Fatalf("fb=%+v", fb)
	}
}

func TestFeedbackPartial(t *testing.T) {
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		return reply(http.StatusOK, completion(`{"feedback":"Looks fine","suggestions":"use types"}`)), nil
	})
	ctx, info := providers.WithCallInfo(context.Background())
	fb, err := a.Feedback(ctx, "x", "go", "")
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	if fb.Feedback != "Looks fine" || fb.Suggestions[0] != mentor.PartialSuggestionDefault || fb.BestPractices[0] != mentor.PartialBestPracticesDefault {
		t.Fatalf("fb=%+v", fb)
	}
	if info.Fallback != providers.FallbackPartial {
		t.Fatalf("fallback=%q", info.Fallback)
	}
}

func TestFeedbackWithoutJSONReturnsFallback(t *testing.T) {
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		return reply(http.StatusOK, completion("Your code looks fine to me.")), nil
	})
	ctx, info := providers.WithCallInfo(context.Background())
	fb, err := a.Feedback(ctx, "x", "go", "")
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	want := mentor.FeedbackUnavailable()
	if fb.Feedback != want.Feedback || fb.Suggestions[0] != want.Suggestions[0] || fb.BestPractices[0] != want.BestPractices[0] {
		t.Fatalf("fb=%+v", fb)
	}
	if info.Fallback != providers.FallbackUnparseable {
		t.Fatalf("fallback=%q", info.Fallback)
	}
}

func TestHintPropagatesProviderError(t *testing.T) {
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		return reply(http.StatusTooManyRequests, `rate limited`), nil
	})
	_, err := a.Hint(context.Background(), mentor.HintRequest{Code: "x", Language: "go", HintLevel: 1})
	if providers.StatusOf(err) != http.StatusTooManyRequests {
		t.Fatalf("err=%v", err)
	}
}

func TestHintEmptyCompletionIsError(t *testing.T) {
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		return reply(http.StatusOK, completion("  ")), nil
	})
	_, err := a.Hint(context.Background(), mentor.HintRequest{Code: "x", Language: "go"})
	if !errors.Is(err, providers.ErrEmptyCompletion) {
		t.Fatalf("err=%v", err)
	}
}

func TestHintPromptVariesByLevel(t *testing.T) {
	var prompts []string
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		in := decodeRequest(t, req)
		if in.ResponseFormat != nil {
			t.Fatalf("hints are plain text")
		}
		prompts = append(prompts, in.Messages[0].Content)
		return reply(http.StatusOK, completion("Look at the loop bound.")), nil
	})
	for _, level := range []int{1, 3} {
		hint, err := a.Hint(context.Background(), mentor.HintRequest{Code: "for i in range(10): pass", Language: "python", HintLevel: level})
		if err != nil {
			t.Fatalf("Hint: %v", err)
		}
		if hint != "Look at the loop bound." {
			t.Fatalf("hint=%q", hint)
		}
	}
	if prompts[0] == prompts[1] {
		t.Fatalf("level 1 and level 3 prompts must differ")
	}
	if !strings.Contains(prompts[0], "do not include any code") || !strings.Contains(prompts[1], "near-solution") {
		t.Fatalf("prompts=%q", prompts)
	}
}

func TestRecommendVideos(t *testing.T) {
	a := newAdapter(t, "sk-test", func(req *http.Request) (*http.Response, error) {
		in := decodeRequest(t, req)
		if in.ResponseFormat == nil || in.ResponseFormat.JSONSchema == nil || in.ResponseFormat.JSONSchema.Name != "video_recommendations" {
			t.Fatalf("response_format=%+v", in.ResponseFormat)
		}
		if len(in.Messages) != 1 || in.Messages[0].Role != "user" || !strings.Contains(in.Messages[0].Content, `"goroutines"`) {
			t.Fatalf("messages=%+v", in.Messages)
		}
		return reply(http.StatusOK, completion(`{"videos":[{"title":"Goroutines","creator":"Ann","videoId":"g1","duration":9,"description":"intro"}]}`)), nil
	})
	videos, err := a.RecommendVideos(context.Background(), "goroutines")
	if err != nil {
		t.Fatalf("RecommendVideos: %v", err)
	}
	if len(videos) != 1 || videos[0].VideoID != "g1" || videos[0].Duration != 9 {
		t.Fatalf("videos=%+v", videos)
	}
}

func TestRecommendVideosFailuresReturnEmptyList(t *testing.T) {
	for name, rt := range map[string]roundTripperFunc{
		"provider error": func(req *http.Request) (*http.Response, error) {
			return reply(http.StatusBadGateway, `bad gateway`), nil
		},
		"unparseable": func(req *http.Request) (*http.Response, error) {
			return reply(http.StatusOK, completion("I cannot browse YouTube.")), nil
		},
	} {
		videos, err := newAdapter(t, "sk-test", rt).RecommendVideos(context.Background(), "loops")
		if err != nil {
			t.Fatalf("%s: err=%v", name, err)
		}
		if videos == nil || len(videos) != 0 {
			t.Fatalf("%s: videos=%+v", name, videos)
		}
	}
}

func TestRecommendVideosMissingCredential(t *testing.T) {
	a := newAdapter(t, "", func(req *http.Request) (*http.Response, error) {
		t.Fatalf("network must not be called")
		return nil, nil
	})
	_, err := a.RecommendVideos(context.Background(), "loops")
	if !errors.Is(err, providers.ErrCredentialMissing) {
		t.Fatalf("err=%v", err)
	}
}
