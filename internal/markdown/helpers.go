package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Raw HTML in the source is dropped; goldmark only emits it with html.WithUnsafe.
//
//nolint:gochecknoglobals // Renderer is stateless and safe for concurrent use.
var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Render converts model markdown into HTML that can be embedded in a page.
func Render(source string) (template.HTML, error) {
	var buf bytes.Buffer
	buf.Grow(len(source) * 2)

	if err := renderer.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	//nolint:gosec // Output comes from goldmark with raw HTML disabled.
	return template.HTML(buf.String()), nil
}
