package view

import (
	"fmt"
	"html"
	"strings"
)

// Placeholder renders an SVG standing in for an image that failed to load.
func Placeholder(label string, width, height int) []byte {
	if width <= 0 {
		width = 400
	}
	if height <= 0 {
		height = 400
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = "No image"
	}
	if r := []rune(label); len(r) > 32 {
		label = string(r[:31]) + "…"
	}
	fontSize := max(12, min(width, height)/14)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	b.WriteString(`<rect width="100%" height="100%" fill="#e5e7eb"/>`)
	fmt.Fprintf(&b, `<text x="50%%" y="50%%" fill="#6b7280" font-family="sans-serif" font-size="%d" text-anchor="middle" dominant-baseline="middle">%s</text>`,
		fontSize, html.EscapeString(label))
	b.WriteString(`</svg>`)
	return []byte(b.String())
}
