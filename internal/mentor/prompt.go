package mentor

import (
	"fmt"
	"strings"
)

// ReplyFormat tells the prompt builders how the provider will return its answer.
type ReplyFormat int

const (
	// FreeText replies carry code in fenced blocks and links under a heading.
	FreeText ReplyFormat = iota
	// StructuredJSON replies are constrained to the response JSON schema.
	StructuredJSON
)

const freeTextCapabilities = "When you include code, put it in a single fenced block that starts with three backticks " +
	"followed by the language name (for example ```python) and ends with three backticks. " +
	"When recommending learning material, add a section headed \"Resources:\" with one item per line " +
	"in the form \"Title - https://url\". " +
	"Do not introduce yourself again after the first message. " +
	"If you are not sure about something, say so."

const structuredCapabilities = "Reply with a JSON object. Put your explanation in \"message\". " +
	"When an example helps, put only the code in \"code\" and its language in \"language\"; omit both otherwise. " +
	"When recommending learning material, list it in \"resources\" as objects with \"title\" and \"url\". " +
	"If you are not sure about something, say so."

// ChatSystemPrompt joins the persona prompt, the learner context and the output instructions.
func ChatSystemPrompt(p Personality, pc ProgrammingContext, format ReplyFormat) string {
	parts := []string{p.SystemPrompt()}
	if clause := ContextClause(pc); clause != "" {
		parts = append(parts, clause)
	}
	if format == StructuredJSON {
		parts = append(parts, structuredCapabilities)
	} else {
		parts = append(parts, freeTextCapabilities)
	}
	return strings.Join(parts, "\n\n")
}

// ContextClause renders the known context fields; it is empty when none are set.
func ContextClause(pc ProgrammingContext) string {
	var lines []string
	if v := strings.TrimSpace(pc.Language); v != "" {
		lines = append(lines, "- Programming language: "+v)
	}
	if v := strings.TrimSpace(pc.CurrentTopic); v != "" {
		lines = append(lines, "- Current topic: "+v)
	}
	if pc.UserSkillLevel != "" {
		lines = append(lines, "- Skill level: "+string(pc.UserSkillLevel))
	}
	if len(lines) == 0 {
		return ""
	}
	return "Learner context:\n" + strings.Join(lines, "\n")
}

const feedbackShape = `{
  "feedback": "Overall assessment of the code",
  "suggestions": ["Specific, actionable improvement"],
  "bestPractices": ["Best practice the student should follow"],
  "errorDetection": [{"line": 1, "message": "Description of the error"}]
}`

// FeedbackPrompt builds the system and user messages for a code review.
func FeedbackPrompt(code, language, query string, format ReplyFormat) (system, user string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert programming tutor specializing in %s. ", language)
	sb.WriteString("Analyze the student's code and give constructive feedback. Focus on correctness, best practices, ")
	sb.WriteString("style and readability, efficiency, and potential bugs or edge cases. ")
	sb.WriteString("Line numbers in errorDetection start at 1. Omit errorDetection when there are no errors.\n\n")
	if format == StructuredJSON {
		sb.WriteString("Reply with a JSON object of this shape:\n")
	} else {
		sb.WriteString("Your response MUST be only a JSON object of this shape, with no text before or after it:\n")
	}
	sb.WriteString(feedbackShape)
	system = sb.String()

	var ub strings.Builder
	if q := strings.TrimSpace(query); q != "" {
		fmt.Fprintf(&ub, "The student asks: %s\n\n", q)
	}
	fmt.Fprintf(&ub, "Code to analyze:\n```%s\n%s\n```", language, code)
	return system, ub.String()
}

// hintLevelInstructions grow more specific with the level; index 0 is level 1.
var hintLevelInstructions = [3]string{
	"Give a gentle nudge. Point the student toward the general idea or the part of the problem to think about. " +
		"Do not name the exact fix, do not reference specific lines, and do not include any code.",
	"Give a moderate hint. Name the concept, construct or area of the code that needs attention and explain why. " +
		"You may mention the relevant line or function, but do not write the corrected code.",
	"Give a specific, near-solution hint. Identify exactly what is wrong and describe the concrete change needed, " +
		"including the relevant line. You may show a short fragment of one or two lines for the key step, but never the full solution.",
}

// HintPrompt builds the prompts for one hint. The level is clamped to 1..3.
func HintPrompt(req HintRequest) (system, user string) {
	level := ClampHintLevel(req.HintLevel)

	var sb strings.Builder
	sb.WriteString("You are a patient programming tutor who helps students solve exercises on their own. ")
	fmt.Fprintf(&sb, "Hint level %d of 3. ", level)
	sb.WriteString(hintLevelInstructions[level-1])
	if d := strings.TrimSpace(req.Difficulty); d != "" {
		fmt.Fprintf(&sb, " The exercise difficulty is %s; pitch the hint accordingly.", d)
	}
	sb.WriteString(" Reply with the hint text only, in at most four sentences.")
	system = sb.String()

	var ub strings.Builder
	if id := strings.TrimSpace(req.ExerciseID); id != "" {
		fmt.Fprintf(&ub, "Exercise: %s\n", id)
	}
	fmt.Fprintf(&ub, "The student's current %s code:\n```%s\n%s\n```", req.Language, req.Language, req.Code)
	return system, ub.String()
}

// VideoSearchPrompt asks for tutorial video recommendations on topic.
func VideoSearchPrompt(topic string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert programming educator. A student is looking for the best educational videos to learn about %q.\n\n", strings.TrimSpace(topic))
	sb.WriteString("Recommend high-quality YouTube programming tutorials on this topic. Prefer well-structured, up-to-date series from reputable creators.\n\n")
	sb.WriteString("For each video give the title, the creator name, the YouTube video ID used for embedding, the duration in whole minutes ")
	sb.WriteString("and a brief description of what it covers.\n\n")
	sb.WriteString(`Reply with a JSON object of this shape:
{"videos": [{"title": "Video Title", "creator": "Creator Name", "videoId": "YouTube Video ID", "duration": 12, "description": "Brief description"}]}`)
	sb.WriteString("\n\nProvide 5-7 recommendations.")
	return sb.String()
}
