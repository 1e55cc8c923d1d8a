package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/yungbote/codementor-backend/internal/mentor"
)

var ErrInvalidVideoReply = errors.New("video reply holds no recommendations")

// VideoRecommendationsSchema wraps the list in an object; structured output
// cannot return a top-level array.
func VideoRecommendationsSchema() *jsonschema.Schema {
	str := func() *jsonschema.Schema { return &jsonschema.Schema{Type: "string"} }
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"videos"},
		Properties: map[string]*jsonschema.Schema{
			"videos": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"title", "creator", "videoId", "duration", "description"},
					Properties: map[string]*jsonschema.Schema{
						"title":       str(),
						"creator":     str(),
						"videoId":     str(),
						"duration":    {Type: "number", Minimum: floatPtr(0)},
						"description": str(),
					},
				},
			},
		},
	}
}

// DecodeVideoRecommendations reads {"videos":[...]} or a bare array. Entries
// without a title or video id are dropped; a non-numeric duration becomes 0.
func DecodeVideoRecommendations(raw string) ([]mentor.VideoRecommendation, error) {
	var items []any
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, ErrInvalidVideoReply
		}
	} else {
		obj, ok := ExtractJSONObject(raw)
		if !ok {
			return nil, ErrInvalidVideoReply
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(obj), &doc); err != nil {
			return nil, ErrInvalidVideoReply
		}
		list, ok := doc["videos"].([]any)
		if !ok {
			return nil, ErrInvalidVideoReply
		}
		items = list
	}

	out := make([]mentor.VideoRecommendation, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		v := mentor.VideoRecommendation{
			Title:       stringField(m, "title"),
			Creator:     stringField(m, "creator"),
			VideoID:     stringField(m, "videoId"),
			Description: stringField(m, "description"),
		}
		if v.Title == "" || v.VideoID == "" {
			continue
		}
		if d, ok := m["duration"].(float64); ok && d > 0 {
			v.Duration = int(math.Round(d))
		}
		out = append(out, v)
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
