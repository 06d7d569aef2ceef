package parser

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NewsAPI truncates content and appends a marker like "… [+2154 chars]".
var truncationMarker = regexp.MustCompile(`\s*…?\s*\[\+\d+ chars\]\s*$`)

var whitespace = regexp.MustCompile(`\s+`)

// PlainText strips markup from an HTML fragment and collapses whitespace.
// Non-HTML input is returned with entities decoded.
func PlainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(html.UnescapeString(fragment))
	}
	doc.Find("script, style, noscript").Remove()

	var parts []string
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return collapse(strings.Join(parts, " "))
}

// CleanSnippet turns a news source content snippet into plain prompt text.
func CleanSnippet(content string) string {
	text := PlainText(content)
	return strings.TrimSpace(truncationMarker.ReplaceAllString(text, ""))
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
