// Package helpers provides text utilities shared by the sanitizer, the
// classifiers and the pipeline stages.
package helpers

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

var (
	multiSpaceRegex = regexp.MustCompile(`\s+`)

	// blockTags end a line of plain text.
	blockTags = map[string]bool{
		"p": true, "div": true, "li": true, "tr": true, "br": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"blockquote": true, "table": true, "center": true,
	}

	// skipTags have content that is never text.
	skipTags = map[string]bool{
		"script": true, "style": true, "head": true, "xml": true, "title": true,
	}

	strictPolicy = bluemonday.StrictPolicy()
)

// StripTags removes every tag from s and decodes entities. Script and
// style content is dropped with its element.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// PlainText extracts the text of an HTML fragment with the tolerant
// golang.org/x/net/html tokenizer. Block boundaries become newlines; runs of
// spaces inside a line collapse to one.
func PlainText(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			return cleanLines(b.String())
		case xhtml.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTags[tag] && tt == xhtml.StartTagToken {
				skip++
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTags[tag] && skip > 0 {
				skip--
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		}
	}
}

func cleanLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = NormalizeWhitespace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Tokens splits s on whitespace.
func Tokens(s string) []string {
	return strings.Fields(s)
}

// TruncateText truncates text to a maximum length, adding ellipsis if needed.
func TruncateText(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}

	// Try to truncate at a word boundary
	truncated := s[:maxLen-3]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > maxLen/2 {
		truncated = truncated[:lastSpace]
	}

	return strings.ToValidUTF8(truncated, "") + "..."
}

// NormalizeWhitespace normalizes all whitespace to single spaces and trims.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(s, " "))
}

// CommentText makes s safe as the content of an XML comment: whitespace is
// collapsed, "--" sequences are broken up and the text is truncated.
func CommentText(s string, maxLen int) string {
	s = NormalizeWhitespace(s)
	if maxLen > 0 {
		s = TruncateText(s, maxLen)
	}
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	return strings.TrimSuffix(s, "-")
}
