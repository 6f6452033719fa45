// Package markdown renders user-authored markdown into sanitized HTML.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown source to sanitized HTML.
type Renderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// New creates a Renderer with a UGC sanitization policy.
func New() *Renderer {
	sanitizer := bluemonday.UGCPolicy()
	// Scene breaks render as a centered sprout; see RenderBody.
	sanitizer.AllowElements("center")

	// Raw HTML passes through goldmark and is cleaned by the sanitizer
	// afterwards; without it the scene-break markup would be dropped.
	md := goldmark.New(
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)

	return &Renderer{
		md:        md,
		sanitizer: sanitizer,
	}
}

// Render converts markdown to sanitized HTML.
func (r *Renderer) Render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// RenderBody converts page body markdown to sanitized HTML, first
// applying the body conventions: "---" becomes a centered sprout scene
// break, "--" becomes an em dash.
func (r *Renderer) RenderBody(src string) (template.HTML, error) {
	src = strings.ReplaceAll(src, "---", "<center>&#127793;</center>")
	src = strings.ReplaceAll(src, "--", "&#8212;")
	return r.Render(src)
}
