package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/codementor-backend/internal/mentor"
)

func TestParseStructuredReplyCodeAndResources(t *testing.T) {
	raw := "Here's a fix:\n```python\nprint(1)\n```\nResources:\n1. NumPy Docs - https://numpy.org"

	got := ParseStructuredReply(raw).ChatbotResponse()

	assert.Equal(t, mentor.ChatbotResponse{
		Message:   "Here's a fix:",
		Code:      "print(1)",
		Language:  "python",
		Resources: []mentor.Resource{{Title: "NumPy Docs", URL: "https://numpy.org"}},
	}, got)
}

func TestParseStructuredReplyFirstBlockOnly(t *testing.T) {
	raw := "A\n```go\nfmt.Println(1)\n```\nB\n```js\nconsole.log(2)\n```"
	r := ParseStructuredReply(raw)

	assert.Equal(t, "fmt.Println(1)", r.Code)
	assert.Equal(t, "go", r.Language)
	assert.NotContains(t, r.Message, "fmt.Println")
	assert.Contains(t, r.Message, "console.log(2)")
}

func TestParseStructuredReplyKeepsIndentation(t *testing.T) {
	raw := "Try:\n```python\n\n    if x:\n        y()\n\n```"
	r := ParseStructuredReply(raw)
	assert.Equal(t, "    if x:\n        y()", r.Code)
}

func TestParseStructuredReplyWithoutCode(t *testing.T) {
	r := ParseStructuredReply("Loops repeat work.")
	resp := r.ChatbotResponse()

	assert.Equal(t, "Loops repeat work.", resp.Message)
	assert.Empty(t, resp.Code)
	assert.Empty(t, resp.Language)

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Loops repeat work."}`, string(b))
}

func TestParseStructuredReplyUntaggedBlock(t *testing.T) {
	r := ParseStructuredReply("```\nx = 1\n```")
	assert.Equal(t, "x = 1", r.Code)
	assert.Empty(t, r.Language)
	assert.Empty(t, r.Message)
}

func TestResourceHeadingsAndDelimiters(t *testing.T) {
	cases := map[string]string{
		"Recommended Resources:\n- Title - https://example.com": "Recommended Resources",
		"Resources:\n* Title: https://example.com":              "Resources",
		"References:\n2) Title (https://example.com)":           "References",
		"links:\nTitle [https://example.com]":                   "links",
		"**Resources:**\n\n1. [Title](https://example.com)":     "bold heading",
	}
	for raw, name := range cases {
		t.Run(name, func(t *testing.T) {
			r := ParseStructuredReply("Intro.\n\n" + raw)
			assert.Equal(t, []mentor.Resource{{Title: "Title", URL: "https://example.com"}}, r.Resources)
			assert.Equal(t, "Intro.", r.Message)
		})
	}
}

func TestResourcesSkipMalformedAndStopAtBlankLine(t *testing.T) {
	raw := "See below.\nResources:\n1. Go Tour - https://go.dev/tour\n2. A book with no link\n3. Effective Go: https://go.dev/doc/effective_go.\n\nHappy coding!"
	r := ParseStructuredReply(raw)

	assert.Equal(t, []mentor.Resource{
		{Title: "Go Tour", URL: "https://go.dev/tour"},
		{Title: "Effective Go", URL: "https://go.dev/doc/effective_go"},
	}, r.Resources)
	assert.Equal(t, "See below.\n\nHappy coding!", r.Message)
}

func TestHeadingWithoutItemsIsKept(t *testing.T) {
	raw := "Resources: ask your teacher for the handout."
	r := ParseStructuredReply(raw)
	assert.Nil(t, r.Resources)
	assert.Equal(t, raw, r.Message)
}

func TestHeadingNeedsWordBoundary(t *testing.T) {
	raw := "You can follow these hyperlinks: Go Tour - https://go.dev/tour"
	r := ParseStructuredReply(raw)
	assert.Nil(t, r.Resources)
	assert.Equal(t, raw, r.Message)
}

func TestExtractResourcesDoesNotNeedCode(t *testing.T) {
	items := ExtractResources("Links:\nMDN - https://developer.mozilla.org")
	require.Len(t, items, 1)
	assert.Equal(t, "MDN", items[0].Title)
}

func TestCleanLlamaArtifacts(t *testing.T) {
	raw := "**My Introduction** Hello! I'm Cody, your guide.\n\n\n\nUse file I/ (input) and file I/ (output) and   streams[1][2, 3]. Keep it in yourhead.\n```python\ndef f():\n    return  1\n```"
	got := CleanLlamaArtifacts(raw)

	assert.NotContains(t, got, "I'm Cody")
	assert.NotContains(t, got, "\n\n\n")
	assert.NotContains(t, got, "[1]")
	assert.NotContains(t, got, "[2, 3]")
	assert.Contains(t, got, "file I/O streams")
	assert.Contains(t, got, "your head")
	assert.Contains(t, got, "def f():\n    return  1\n", "code blocks are not touched")
}

func TestCleanLlamaArtifactsDropsRepeatedGreetings(t *testing.T) {
	got := CleanLlamaArtifacts("Hi, I'm Cody!\nLoops repeat work.\nHi, I'm Cody! Here is more.")
	assert.Equal(t, "Hi, I'm Cody!\nLoops repeat work.\nHere is more.", got)

	got = CleanLlamaArtifacts("Intro text.\nHello there, I'm Prof. Query. Think about it.\n```go\n// Hey, I'm Bit!\n```")
	assert.Equal(t, "Intro text.\nThink about it.\n```go\n// Hey, I'm Bit!\n```", got)
}

func TestExtractJSONObject(t *testing.T) {
	obj, ok := ExtractJSONObject("Sure!\n```json\n{\"a\": {\"b\": 1}}\n```\nThanks")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":{"b":1}}`, obj)

	obj, ok = ExtractJSONObject(`prefix {"x": {"y": [1]}} suffix`)
	require.True(t, ok)
	assert.JSONEq(t, `{"x":{"y":[1]}}`, obj)

	_, ok = ExtractJSONObject("no json here")
	assert.False(t, ok)

	obj, ok = ExtractJSONObject(`Use {} or {"k": "v"} here`)
	require.True(t, ok)
	assert.JSONEq(t, `{"k":"v"}`, obj)
}

func TestDecodeFeedbackIgnoresLaterCodeFences(t *testing.T) {
	raw := "```json\n{\"feedback\":\"Good\",\"suggestions\":[\"a\"],\"bestPractices\":[\"b\"]}\n```\n" +
		"For example:\n```js\nfunction f() { return 1 }\n```"
	fb, outcome := DecodeFeedback(raw)

	assert.Equal(t, OutcomeValid, outcome)
	assert.Equal(t, "Good", fb.Feedback)
	assert.Equal(t, []string{"a"}, fb.Suggestions)
	assert.Equal(t, []string{"b"}, fb.BestPractices)
}

func TestDecodeFeedbackUnfencedObjectWithTrailingBraces(t *testing.T) {
	raw := `{"feedback":"Fine","suggestions":[],"bestPractices":[]} then write function g() { }`
	fb, outcome := DecodeFeedback(raw)
	assert.Equal(t, OutcomeValid, outcome)
	assert.Equal(t, "Fine", fb.Feedback)
}

func TestDecodeFeedbackValid(t *testing.T) {
	raw := `{"feedback":"Good","suggestions":["a"],"bestPractices":[],"errorDetection":[{"line":3,"message":"typo"}]}`
	fb, outcome := DecodeFeedback(raw)

	assert.Equal(t, OutcomeValid, outcome)
	assert.Equal(t, "Good", fb.Feedback)
	assert.Equal(t, []string{"a"}, fb.Suggestions)
	assert.NotNil(t, fb.BestPractices)
	assert.Equal(t, []mentor.LineIssue{{Line: 3, Message: "typo"}}, fb.ErrorDetection)
}

func TestDecodeFeedbackPartial(t *testing.T) {
	raw := "Here you go:\n" + `{"feedback":"Works","suggestions":"split it up","errorDetection":[{"line":0,"message":"bad"},{"line":2,"message":"ok"}]}`
	fb, outcome := DecodeFeedback(raw)

	assert.Equal(t, OutcomePartial, outcome)
	assert.Equal(t, "Works", fb.Feedback)
	assert.Equal(t, []string{mentor.PartialSuggestionDefault}, fb.Suggestions)
	assert.Equal(t, []string{mentor.PartialBestPracticesDefault}, fb.BestPractices)
	assert.Equal(t, []mentor.LineIssue{{Line: 2, Message: "ok"}}, fb.ErrorDetection)
}

func TestDecodeFeedbackPartialWithoutFeedbackText(t *testing.T) {
	fb, outcome := DecodeFeedback(`{"suggestions":["x"],"bestPractices":["y"]}`)
	assert.Equal(t, OutcomePartial, outcome)
	assert.Equal(t, mentor.PartialFeedbackMessage, fb.Feedback)
	assert.Equal(t, []string{"x"}, fb.Suggestions)
	assert.Equal(t, []string{"y"}, fb.BestPractices)
}

func TestDecodeFeedbackUnparseable(t *testing.T) {
	for _, raw := range []string{"", "I could not review this.", "{not json}"} {
		_, outcome := DecodeFeedback(raw)
		assert.Equal(t, OutcomeUnparseable, outcome, raw)
	}
}

func TestDecodeChatbotResponse(t *testing.T) {
	got, err := DecodeChatbotResponse(`{"message":"Hi","code":"x := 1\n","language":"go","resources":[{"title":"Tour","url":"https://go.dev/tour"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "x := 1", got.Code)
	assert.Equal(t, "go", got.Language)
	require.Len(t, got.Resources, 1)

	got, err = DecodeChatbotResponse(`{"message":"Hi","language":"go"}`)
	require.NoError(t, err)
	assert.Empty(t, got.Language, "language is dropped without code")

	_, err = DecodeChatbotResponse(`{"text":"Hi"}`)
	assert.ErrorIs(t, err, ErrInvalidChatReply)
}

func TestDecodeVideoRecommendations(t *testing.T) {
	got, err := DecodeVideoRecommendations(`{"videos":[
		{"title":"Go Loops","creator":"Ann","videoId":"abc123","duration":12.4,"description":"for and range"},
		{"title":"","creator":"Bob","videoId":"zzz","duration":3,"description":"no title"},
		{"title":"Maps","creator":"Cy","videoId":"m1","duration":"long","description":"maps"}
	]}`)
	require.NoError(t, err)
	assert.Equal(t, []mentor.VideoRecommendation{
		{Title: "Go Loops", Creator: "Ann", VideoID: "abc123", Duration: 12, Description: "for and range"},
		{Title: "Maps", Creator: "Cy", VideoID: "m1", Description: "maps"},
	}, got)
}

func TestDecodeVideoRecommendationsBareArray(t *testing.T) {
	got, err := DecodeVideoRecommendations(`[{"title":"T","creator":"C","videoId":"v","duration":5,"description":"d"}]`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Duration)
}

func TestDecodeVideoRecommendationsInvalid(t *testing.T) {
	for _, raw := range []string{"", "no videos today", `{"items":[]}`, "[broken"} {
		_, err := DecodeVideoRecommendations(raw)
		assert.ErrorIs(t, err, ErrInvalidVideoReply, raw)
	}
}
