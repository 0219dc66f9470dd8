package crawler

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
)

// tidyHTML re-serializes body through golang.org/x/net/html's
// lenient parser and renderer, the Go-idiomatic stand-in for the
// original's HTML-to-well-formed-XHTML repair step (spec.md §4.7 step
// 7): parsing tolerates malformed markup the same way a browser would,
// and rendering the resulting tree back out always yields well-formed
// markup.
func tidyHTML(body []byte) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var buf bytes.Buffer

	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	return buf.Bytes(), nil
}
