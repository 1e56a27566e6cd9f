package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMessageBody_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMessageBody(""))
	assert.Equal(t, "", RenderMessageBody(" \r\n\n"))
}

func TestRenderMessageBody_PlainText(t *testing.T) {
	result := RenderMessageBody("hello world")
	assert.Contains(t, result, "hello world")
}

func TestRenderMessageBody_KeepsLineBreaks(t *testing.T) {
	result := RenderMessageBody("Hi Amy,\r\nThe tiles arrive Tuesday.\r\nBen")
	assert.Contains(t, result, "<br")
	assert.Contains(t, result, "The tiles arrive Tuesday.")
	assert.NotContains(t, result, "\r")
}

func TestRenderMessageBody_QuotedReply(t *testing.T) {
	result := RenderMessageBody("Sounds good.\n\n> Can we move the install?")
	assert.Contains(t, result, "<blockquote>")
	assert.Contains(t, result, "Can we move the install?")
}

func TestRenderMessageBody_Linkify(t *testing.T) {
	result := RenderMessageBody("Samples: https://example.com/tiles")
	assert.Contains(t, result, `<a href="https://example.com/tiles"`)
}

func TestRenderMessageBody_SanitizesScript(t *testing.T) {
	result := RenderMessageBody(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMessageBody_SanitizesEventHandlers(t *testing.T) {
	result := RenderMessageBody(`<img src="x.png" onerror="alert(1)">`)
	assert.NotContains(t, result, "onerror")
}
