// Package format escapes rendered list text for the parse modes of chat
// platforms so record values never break message formatting.
package format

import (
	"fmt"
	"html"
	"regexp"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

const mdV2Specials = "_*[]()~`>#+-=|{}.!"

var (
	mdV1Re = regexp.MustCompile("([_*\\[`\\\\])")
	mdV2Re = regexp.MustCompile("[" + regexp.QuoteMeta(mdV2Specials) + "]")
)

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Re.ReplaceAllString(text, `\$1`), nil
	case MarkdownV2:
		return mdV2Re.ReplaceAllString(text, `\$0`), nil
	}
	return "", fmt.Errorf("format: unsupported markdown version: %d", version)
}

// EscapeHTML escapes text for HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// ForParseMode escapes text according to a Telegram-style parse mode name.
// Unknown and empty modes return the text unchanged.
func ForParseMode(text, mode string) string {
	switch mode {
	case "Markdown":
		out, _ := EscapeMarkdown(text, MarkdownV1)
		return out
	case "MarkdownV2":
		out, _ := EscapeMarkdown(text, MarkdownV2)
		return out
	case "HTML", "html":
		return EscapeHTML(text)
	}
	return text
}
