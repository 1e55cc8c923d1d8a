package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/yungbote/codementor-backend/internal/mentor"
)

// Outcome reports how much of a provider reply could be used.
type Outcome string

const (
	OutcomeValid       Outcome = "valid"
	OutcomePartial     Outcome = "partial"
	OutcomeUnparseable Outcome = "unparseable"
)

var jsonFenceRE = regexp.MustCompile("```(?:json|JSON)[ \\t]*\\r?\\n")

// ExtractJSONObject returns the first complete JSON object embedded in text.
// A ```json fence is tried first; otherwise each '{' is tried in order. Only one
// object is decoded, so prose or further code fences after it are ignored.
func ExtractJSONObject(text string) (string, bool) {
	if loc := jsonFenceRE.FindStringIndex(text); loc != nil {
		if obj, ok := decodeObjectAt(text, loc[1]); ok {
			return obj, true
		}
	}
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		if obj, ok := decodeObjectAt(text, i); ok {
			return obj, true
		}
	}
	return "", false
}

// decodeObjectAt decodes one JSON value starting at the first '{' at or after
// from and returns its raw text when it is a non-empty object.
func decodeObjectAt(text string, from int) (string, bool) {
	start := strings.IndexByte(text[from:], '{')
	if start < 0 {
		return "", false
	}
	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(text[from+start:])).Decode(&raw); err != nil {
		return "", false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return "", false
	}
	return string(raw), true
}

func floatPtr(v float64) *float64 { return &v }

// FeedbackSchema is the JSON schema of mentor.CodeFeedback.
func FeedbackSchema() *jsonschema.Schema {
	str := func() *jsonschema.Schema { return &jsonschema.Schema{Type: "string"} }
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"feedback", "suggestions", "bestPractices"},
		Properties: map[string]*jsonschema.Schema{
			"feedback":      str(),
			"suggestions":   {Type: "array", Items: str()},
			"bestPractices": {Type: "array", Items: str()},
			"errorDetection": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"line", "message"},
					Properties: map[string]*jsonschema.Schema{
						"line":    {Type: "integer", Minimum: floatPtr(1)},
						"message": str(),
					},
				},
			},
		},
	}
}

// ChatbotResponseSchema is the JSON schema of mentor.ChatbotResponse.
func ChatbotResponseSchema() *jsonschema.Schema {
	str := func() *jsonschema.Schema { return &jsonschema.Schema{Type: "string"} }
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"message"},
		Properties: map[string]*jsonschema.Schema{
			"message":  str(),
			"code":     str(),
			"language": str(),
			"resources": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:       "object",
					Required:   []string{"title", "url"},
					Properties: map[string]*jsonschema.Schema{"title": str(), "url": str()},
				},
			},
		},
	}
}

var (
	resolveFeedback = sync.OnceValues(func() (*jsonschema.Resolved, error) { return FeedbackSchema().Resolve(nil) })
	resolveChat     = sync.OnceValues(func() (*jsonschema.Resolved, error) { return ChatbotResponseSchema().Resolve(nil) })
)

// ValidateFeedback checks a decoded JSON value against FeedbackSchema.
func ValidateFeedback(v any) error {
	rs, err := resolveFeedback()
	if err != nil {
		return fmt.Errorf("resolve feedback schema: %w", err)
	}
	return rs.Validate(v)
}

// DecodeFeedback parses a provider reply into CodeFeedback.
//
// A reply that is valid against the schema is returned as is. A JSON object that
// fails validation yields a best-effort result built from its usable fields. When
// no JSON object can be recovered the outcome is OutcomeUnparseable and the caller
// supplies its own fallback.
func DecodeFeedback(raw string) (mentor.CodeFeedback, Outcome) {
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		return mentor.CodeFeedback{}, OutcomeUnparseable
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(obj), &doc); err != nil || doc == nil {
		return mentor.CodeFeedback{}, OutcomeUnparseable
	}

	if err := ValidateFeedback(doc); err != nil {
		return partialFeedback(doc), OutcomePartial
	}

	var fb mentor.CodeFeedback
	if err := json.Unmarshal([]byte(obj), &fb); err != nil {
		return partialFeedback(doc), OutcomePartial
	}
	fb.Normalize()
	return fb, OutcomeValid
}

func partialFeedback(doc map[string]any) mentor.CodeFeedback {
	fb := mentor.CodeFeedback{Feedback: mentor.PartialFeedbackMessage}
	if s, ok := doc["feedback"].(string); ok && strings.TrimSpace(s) != "" {
		fb.Feedback = s
	}
	fb.Suggestions = stringsOr(doc["suggestions"], mentor.PartialSuggestionDefault)
	fb.BestPractices = stringsOr(doc["bestPractices"], mentor.PartialBestPracticesDefault)

	if items, ok := doc["errorDetection"].([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			line, lok := m["line"].(float64)
			msg, mok := m["message"].(string)
			if !lok || !mok || line < 1 || line != math.Trunc(line) {
				continue
			}
			fb.ErrorDetection = append(fb.ErrorDetection, mentor.LineIssue{Line: int(line), Message: msg})
		}
	}
	fb.Normalize()
	return fb
}

// stringsOr keeps the string entries of an array value; anything else becomes
// a one-entry list holding def.
func stringsOr(v any, def string) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{def}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

var ErrInvalidChatReply = errors.New("chat reply does not match the response schema")

// DecodeChatbotResponse parses a structured-output chat reply.
func DecodeChatbotResponse(raw string) (mentor.ChatbotResponse, error) {
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		return mentor.ChatbotResponse{}, ErrInvalidChatReply
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return mentor.ChatbotResponse{}, fmt.Errorf("%w: %v", ErrInvalidChatReply, err)
	}
	rs, err := resolveChat()
	if err != nil {
		return mentor.ChatbotResponse{}, fmt.Errorf("resolve chat schema: %w", err)
	}
	if err := rs.Validate(doc); err != nil {
		return mentor.ChatbotResponse{}, fmt.Errorf("%w: %v", ErrInvalidChatReply, err)
	}
	var out mentor.ChatbotResponse
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return mentor.ChatbotResponse{}, fmt.Errorf("%w: %v", ErrInvalidChatReply, err)
	}
	out.Normalize()
	return out, nil
}
