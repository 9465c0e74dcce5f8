package pipeline

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// FontFace is a font embedded into the document as a data URL.
type FontFace struct {
	Family string // CSS font-family name
	Format string // "woff2", "woff", "truetype", "opentype"
	Mime   string // e.g. "font/woff2"
	Data   []byte
}

// Document is the input to BuildDocument.
// HTML and CSS must already be placeholder-substituted.
type Document struct {
	HTML   string
	CSS    string
	Fonts  []FontFace
	Width  int
	Height int
}

// BuildDocument wraps body markup and styling in a minimal HTML shell.
//
// The shell resets default margins and padding, pins html and body to exactly
// Width x Height CSS pixels and hides overflow, so the captured region always
// matches the requested canvas. Font faces are declared first so user CSS can
// reference them by family name.
func BuildDocument(doc Document) string {
	var b strings.Builder
	b.Grow(len(doc.HTML) + len(doc.CSS) + 512)

	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	b.WriteString("<style>")
	b.WriteString(FontFaceCSS(doc.Fonts))
	b.WriteString(baseCSS(doc.Width, doc.Height))
	b.WriteString("</style>")
	if doc.CSS != "" {
		b.WriteString("<style>")
		b.WriteString(sanitizeCSS(doc.CSS))
		b.WriteString("</style>")
	}
	b.WriteString("</head><body>")
	b.WriteString(doc.HTML)
	b.WriteString("</body></html>")

	return b.String()
}

// baseCSS fixes the document box to the canvas size.
func baseCSS(width, height int) string {
	return fmt.Sprintf(
		"*,*::before,*::after{margin:0;padding:0;box-sizing:border-box}"+
			"html,body{width:%dpx;height:%dpx;min-width:%dpx;min-height:%dpx;overflow:hidden}",
		width, height, width, height)
}

// FontFaceCSS renders @font-face rules with base64 data URLs.
// Returns "" when fonts is empty.
func FontFaceCSS(fonts []FontFace) string {
	if len(fonts) == 0 {
		return ""
	}

	var b strings.Builder
	for _, f := range fonts {
		if f.Family == "" || len(f.Data) == 0 {
			continue
		}
		fmt.Fprintf(&b, "@font-face{font-family:%q;src:url(data:%s;base64,%s) format(%q);font-display:block}",
			f.Family, f.Mime, base64.StdEncoding.EncodeToString(f.Data), f.Format)
	}
	return b.String()
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
