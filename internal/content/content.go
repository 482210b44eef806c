package content

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	ellipsis       = "..."
	wordsPerMinute = 200
)

var (
	htmlTagExpr = regexp.MustCompile(`<[a-zA-Z][^>]*>`)

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
	)
)

// IsHTML reports whether the body already contains markup.
func IsHTML(body string) bool {
	return htmlTagExpr.MatchString(body)
}

// RenderHTML returns HTML for an article body; markdown bodies are converted.
func RenderHTML(body string) (string, error) {
	if IsHTML(body) {
		return body, nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// PlainText strips markup and collapses whitespace.
func PlainText(body string) string {
	html, err := RenderHTML(body)
	if err != nil {
		html = body
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapse(body)
	}
	doc.Find("script, style").Remove()
	return collapse(doc.Text())
}

// WordCount counts words of the rendered text.
func WordCount(body string) int {
	return len(strings.Fields(PlainText(body)))
}

// ReadingMinutes estimates reading time, never below one minute.
func ReadingMinutes(words int) int {
	if words <= 0 {
		return 1
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// Truncate shortens s to at most limit runes, ending with "..." when cut.
// Word boundaries are preferred when one exists in the second half of the kept text.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string([]rune(s)[:limit])
	}

	kept := []rune(s)[:limit-len(ellipsis)]
	if idx := lastSpace(kept); idx > len(kept)/2 {
		kept = kept[:idx]
	}
	return strings.TrimRight(string(kept), " \t\n,.;:-") + ellipsis
}

func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == ' ' {
			return i
		}
	}
	return -1
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
