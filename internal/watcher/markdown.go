package watcher

import (
	"regexp"
	"strings"
)

// Markdown structure patterns, compiled once. The goal is readable plain
// text for fragmenting and search, not a faithful Markdown parser.
var (
	codeBlockRe    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCodeRe   = regexp.MustCompile("`[^`]+`")
	imageRe        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkRe         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingRe      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquoteRe   = regexp.MustCompile(`(?m)^>\s*`)
	ruleRe         = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkerRe   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedListRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	blankRunsRe    = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown reduces Markdown to plain text so that fragment excerpts
// and lexical matching see prose rather than formatting noise.
func stripMarkdown(text string) string {
	text = codeBlockRe.ReplaceAllString(text, "")
	text = inlineCodeRe.ReplaceAllString(text, "")
	text = imageRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = headingRe.ReplaceAllString(text, "")
	text = blockquoteRe.ReplaceAllString(text, "")
	text = ruleRe.ReplaceAllString(text, "")
	text = listMarkerRe.ReplaceAllString(text, "")
	text = numberedListRe.ReplaceAllString(text, "")

	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.ReplaceAll(text, "*", "")

	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
