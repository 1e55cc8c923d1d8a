// Package normalize turns free-form model output into the mentor response types.
//
// Everything here is best effort: a reply that does not follow the requested
// layout still produces a usable result, with the unrecognized parts left in
// the message text.
package normalize

import (
	"regexp"
	"strings"

	"github.com/yungbote/codementor-backend/internal/mentor"
)

// Reply is the partial chat response recovered from free text.
type Reply struct {
	Message   string
	Code      string
	Language  string
	Resources []mentor.Resource
}

// ChatbotResponse converts r and enforces the response invariants.
func (r Reply) ChatbotResponse() mentor.ChatbotResponse {
	out := mentor.ChatbotResponse{
		Message:   r.Message,
		Code:      r.Code,
		Language:  r.Language,
		Resources: r.Resources,
	}
	out.Normalize()
	return out
}

var (
	codeFenceRE = regexp.MustCompile("(?s)```([A-Za-z0-9_+#.-]*)[ \\t]*\\r?\\n(.*?)```")

	resourceHeadingRE = regexp.MustCompile(`(?i)\b(?:recommended resources|resources|references|links)[ \t]*:`)

	resourceItemRE = regexp.MustCompile(`(?i)^(?:\d+[.)]\s*)?(?:[*•]\s*)?(?:-\s*)?(.+?)(?:\s*[-–—:]\s*|\s*\[|\s*\()\s*(https?://[^\s)\]>]+)`)
)

// ParseStructuredReply extracts the first fenced code block and the resources
// section from raw, and returns the remaining prose as the message.
func ParseStructuredReply(raw string) Reply {
	var r Reply
	text := raw

	if loc := codeFenceRE.FindStringSubmatchIndex(text); loc != nil {
		code := strings.Trim(text[loc[4]:loc[5]], "\r\n")
		if strings.TrimSpace(code) != "" {
			r.Code = code
			r.Language = strings.TrimSpace(text[loc[2]:loc[3]])
		}
		text = joinProse(text[:loc[0]], text[loc[1]:])
	}

	if start, end, items, ok := findResources(text); ok {
		r.Resources = items
		text = joinProse(text[:start], text[end:])
	}

	r.Message = strings.TrimSpace(text)
	return r
}

// ExtractResources parses the resources section of text without modifying it.
func ExtractResources(text string) []mentor.Resource {
	_, _, items, _ := findResources(text)
	return items
}

// findResources locates a resources heading and the item lines that follow it,
// up to the first blank line. Blank lines directly under the heading are skipped.
// A heading with no parseable item is not treated as a section.
func findResources(text string) (start, end int, items []mentor.Resource, ok bool) {
	loc := resourceHeadingRE.FindStringIndex(text)
	if loc == nil {
		return 0, 0, nil, false
	}
	start = headingLineStart(text, loc[0])

	pos := loc[1]
	seenContent := false
	end = len(text)
	for pos < len(text) {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		var line string
		next := len(text)
		if lineEnd >= 0 {
			line = text[pos : pos+lineEnd]
			next = pos + lineEnd + 1
		} else {
			line = text[pos:]
		}
		if strings.Trim(line, " \t\r*_#") == "" {
			if seenContent {
				end = pos
				break
			}
			pos = next
			continue
		}
		seenContent = true
		if res, ok := parseResourceLine(line); ok {
			items = append(items, res)
		}
		pos = next
	}
	return start, end, items, len(items) > 0
}

// headingLineStart widens the match over markdown decoration such as "**" or "## "
// that sits between the start of the line and the heading word.
func headingLineStart(text string, at int) int {
	i := at
	for i > 0 {
		c := text[i-1]
		if c == '*' || c == '#' || c == '_' || c == ' ' || c == '\t' {
			i--
			continue
		}
		break
	}
	if i == 0 || text[i-1] == '\n' {
		return i
	}
	return at
}

func parseResourceLine(line string) (mentor.Resource, bool) {
	m := resourceItemRE.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return mentor.Resource{}, false
	}
	title := strings.Trim(strings.TrimSpace(m[1]), "[]*_`\"' ")
	title = strings.TrimRight(title, " -–—:")
	url := strings.TrimRight(m[2], ".,;")
	if title == "" {
		return mentor.Resource{}, false
	}
	return mentor.Resource{Title: title, URL: url}, true
}

func joinProse(before, after string) string {
	before = strings.TrimRight(before, " \t\r\n")
	after = strings.TrimLeft(after, " \t\r\n")
	switch {
	case before == "":
		return after
	case after == "":
		return before
	default:
		return before + "\n\n" + after
	}
}
