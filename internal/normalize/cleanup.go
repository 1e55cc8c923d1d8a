package normalize

import (
	"regexp"
	"strings"
)

// Artifacts seen in Llama 3 output served through Perplexity.
var (
	fileIOChainRE     = regexp.MustCompile(`(\bfile I/\s*\([^)]*\)\s*and\s*)+`)
	fileIORE          = regexp.MustCompile(`\bfile I/\s*\([^)]*\)`)
	yourheadRE        = regexp.MustCompile(`\byourhead\b`)
	longCitationRE    = regexp.MustCompile(`\[\d+(?:,\s*\d+){5,}\]`)
	citationRE        = regexp.MustCompile(`\[\d+(?:,\s*\d+)*\]`)
	selfIntroRE       = regexp.MustCompile(`(?i)(\*\*My self\*\*|\*\*My Introduction\*\*|\*\*My self and teaching style\*\*)[\s\S]{0,100}?I['’]m\s+(?:Cody|Bit|Spark|Dr\.\s*Code|Prof(?:essor|\.)?\s*Query)`)
	greetingIntroRE   = regexp.MustCompile(`(?i)\b(?:hi|hello|hey)(?:\s+there)?[,!]?\s+I['’]m\s+(?:Cody|Bit|Spark|Dr\.\s*Code|Prof(?:essor|\.)?\s*Query)\b[.!]*[ \t]*`)
	manyNewlinesRE    = regexp.MustCompile(`\n{3,}`)
	horizontalSpaceRE = regexp.MustCompile(`[ \t]{2,}`)
)

// CleanLlamaArtifacts removes known generation artifacts from prose. Fenced code
// blocks are left untouched so indentation survives.
func CleanLlamaArtifacts(text string) string {
	text = dropRepeatedIntros(text)

	var out strings.Builder
	last := 0
	for _, loc := range codeFenceRE.FindAllStringIndex(text, -1) {
		out.WriteString(cleanProse(text[last:loc[0]]))
		out.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	out.WriteString(cleanProse(text[last:]))
	return strings.TrimSpace(out.String())
}

// dropRepeatedIntros keeps a persona greeting on the first line and removes
// any that appear later, outside code fences.
func dropRepeatedIntros(text string) string {
	nl := strings.IndexByte(text, '\n')
	if nl < 0 {
		return text
	}
	head, rest := text[:nl+1], text[nl+1:]

	var out strings.Builder
	out.WriteString(head)
	last := 0
	for _, loc := range codeFenceRE.FindAllStringIndex(rest, -1) {
		out.WriteString(greetingIntroRE.ReplaceAllString(rest[last:loc[0]], ""))
		out.WriteString(rest[loc[0]:loc[1]])
		last = loc[1]
	}
	out.WriteString(greetingIntroRE.ReplaceAllString(rest[last:], ""))
	return out.String()
}

func cleanProse(s string) string {
	if s == "" {
		return s
	}
	s = fileIOChainRE.ReplaceAllString(s, "file I/O ")
	s = fileIORE.ReplaceAllString(s, "file I/O")
	s = yourheadRE.ReplaceAllString(s, "your head")
	s = longCitationRE.ReplaceAllString(s, "")
	s = citationRE.ReplaceAllString(s, "")
	s = selfIntroRE.ReplaceAllString(s, "")
	s = manyNewlinesRE.ReplaceAllString(s, "\n\n")
	s = horizontalSpaceRE.ReplaceAllString(s, " ")
	return s
}
