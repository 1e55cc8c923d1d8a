package mentor

import (
	"fmt"
	"strings"
)

// Personality selects the mentor persona used for chat replies.
type Personality string

const (
	Friendly    Personality = "FRIENDLY"
	Expert      Personality = "EXPERT"
	Encouraging Personality = "ENCOURAGING"
	Socratic    Personality = "SOCRATIC"
	Brief       Personality = "BRIEF"
)

// DefaultPersonality is substituted for unknown or missing personalities.
const DefaultPersonality = Friendly

var Personalities = []Personality{Friendly, Expert, Encouraging, Socratic, Brief}

// ParsePersonality reports whether s names a known personality. Matching ignores case.
func ParsePersonality(s string) (Personality, bool) {
	p := Personality(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Personalities {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// SystemPrompt returns the persona prompt. It is total over the declared
// personalities only; callers must coerce unknown input with ParsePersonality first.
func (p Personality) SystemPrompt() string {
	switch p {
	case Friendly:
		return "You are Cody, a friendly programming mentor. Be supportive and approachable. " +
			"Use simple analogies, casual language and relatable examples. Keep responses under 300 words."
	case Expert:
		return "You are Dr. Code, an expert programming mentor. Be technically precise and professional. " +
			"Explain the reasoning behind best practices and design patterns. Keep responses under 300 words."
	case Encouraging:
		return "You are Spark, an enthusiastic programming mentor. Be energetic and positive. " +
			"Celebrate progress, normalize mistakes and keep the learner motivated. Keep responses under 300 words."
	case Socratic:
		return "You are Prof. Query, a mentor who teaches through guided questioning. " +
			"Ask thoughtful questions that lead the learner to the solution instead of stating it. Keep responses under 300 words."
	case Brief:
		return "You are Bit, a concise programming mentor. Be clear but minimalist. " +
			"Focus on essentials with short examples. Keep responses under 200 words."
	}
	panic(fmt.Sprintf("mentor: no system prompt for personality %q", string(p)))
}

// Profile is the display card for a personality.
type Profile struct {
	ID          Personality `json:"id"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

func (p Personality) Profile() Profile {
	switch p {
	case Friendly:
		return Profile{p, "Cody", "The Friendly Guide", "Approachable and supportive, Cody makes learning fun with casual language and relatable examples."}
	case Expert:
		return Profile{p, "Dr. Code", "The Technical Expert", "A distinguished professor with deep technical knowledge, providing precise explanations and best practices."}
	case Encouraging:
		return Profile{p, "Spark", "The Motivator", "Enthusiastic and energetic, Spark builds confidence by celebrating wins and encouraging persistence."}
	case Socratic:
		return Profile{p, "Prof. Query", "The Thoughtful Teacher", "Guides through questioning, helping you discover solutions and develop problem-solving skills."}
	case Brief:
		return Profile{p, "Bit", "The Efficient Coach", "Concise and to the point, Bit provides efficient guidance without unnecessary details."}
	}
	panic(fmt.Sprintf("mentor: no profile for personality %q", string(p)))
}
