package web

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	bodyRenderer  goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	// Mail bodies break lines with single newlines, so they are kept as <br>.
	bodyRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

// RenderMessageBody converts a plain-text mail body to sanitized HTML.
// Quoted replies ("> ") become blockquotes and bare URLs become links.
// Returns empty string for blank input.
func RenderMessageBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	if strings.TrimSpace(body) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := bodyRenderer.Convert([]byte(body), &buf); err != nil {
		return htmlSanitizer.Sanitize(body)
	}

	return htmlSanitizer.Sanitize(buf.String())
}
