// Package mentor holds the provider-neutral tutoring contract: conversation
// messages, learner context, the normalized chat and code-review responses, and
// the prompt text shared by every provider adapter.
package mentor

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// ChatMessage is one turn of a conversation, in chronological order.
type ChatMessage struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// ParseSkillLevel returns "" for anything outside the three known levels.
func ParseSkillLevel(s string) SkillLevel {
	switch lvl := SkillLevel(strings.ToLower(strings.TrimSpace(s))); lvl {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return lvl
	default:
		return ""
	}
}

// ProgrammingContext holds optional learner hints. Empty fields are omitted from prompts.
type ProgrammingContext struct {
	Language       string     `json:"language,omitempty"`
	CurrentTopic   string     `json:"currentTopic,omitempty"`
	UserSkillLevel SkillLevel `json:"userSkillLevel,omitempty"`
}

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ChatbotResponse is the normalized chat reply. Language is only set when Code is.
type ChatbotResponse struct {
	Message   string     `json:"message"`
	Code      string     `json:"code,omitempty"`
	Language  string     `json:"language,omitempty"`
	Resources []Resource `json:"resources,omitempty"`
}

// Normalize enforces the response invariants in place.
func (r *ChatbotResponse) Normalize() {
	r.Code = strings.Trim(r.Code, "\r\n")
	if strings.TrimSpace(r.Code) == "" {
		r.Code = ""
		r.Language = ""
	}
	r.Language = strings.TrimSpace(r.Language)
	if len(r.Resources) == 0 {
		r.Resources = nil
		return
	}
	kept := r.Resources[:0]
	for _, res := range r.Resources {
		res.Title = strings.TrimSpace(res.Title)
		res.URL = strings.TrimSpace(res.URL)
		if res.Title == "" || res.URL == "" {
			continue
		}
		kept = append(kept, res)
	}
	if len(kept) == 0 {
		kept = nil
	}
	r.Resources = kept
}

type LineIssue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// CodeFeedback is the normalized code review. Suggestions and BestPractices are never nil.
type CodeFeedback struct {
	Feedback       string      `json:"feedback"`
	Suggestions    []string    `json:"suggestions"`
	BestPractices  []string    `json:"bestPractices"`
	ErrorDetection []LineIssue `json:"errorDetection,omitempty"`
}

func (f *CodeFeedback) Normalize() {
	if f.Suggestions == nil {
		f.Suggestions = []string{}
	}
	if f.BestPractices == nil {
		f.BestPractices = []string{}
	}
	if len(f.ErrorDetection) == 0 {
		f.ErrorDetection = nil
	}
}

type HintRequest struct {
	Code       string
	Language   string
	HintLevel  int
	Difficulty string
	ExerciseID string
}

// ClampHintLevel maps any requested level onto 1..3; zero means "not given".
func ClampHintLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 3:
		return 3
	default:
		return level
	}
}

// VideoRecommendation is one suggested tutorial video. Duration is in minutes.
type VideoRecommendation struct {
	Title       string `json:"title"`
	Creator     string `json:"creator"`
	VideoID     string `json:"videoId"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}
