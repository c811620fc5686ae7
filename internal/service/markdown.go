package service

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	descriptionEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	descriptionPolicy = bluemonday.UGCPolicy()
)

// renderDescription 把记录描述按 Markdown 渲染并清洗为安全 HTML
func renderDescription(source string) string {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := descriptionEngine.Convert([]byte(trimmed), &buf); err != nil {
		return descriptionPolicy.Sanitize(trimmed)
	}
	return descriptionPolicy.Sanitize(buf.String())
}
