package parsecache

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Tree is a parsed XML or HTML document, selected by content type, and
// exposes a single xpath.NodeNavigator regardless of which it is —
// internal/query's XPath variant never needs to know which branch
// produced it.
type Tree struct {
	html *html.Node
	xml  *xmlquery.Node
}

// Navigator returns an XPath navigator rooted at the parsed document.
func (t *Tree) Navigator() xpath.NodeNavigator {
	if t.xml != nil {
		return xmlquery.CreateXPathNavigator(t.xml)
	}

	return htmlquery.CreateXPathNavigator(t.html)
}

func isXML(contentType string, content []byte) bool {
	if strings.Contains(contentType, "xml") {
		return true
	}

	trimmed := bytes.TrimSpace(content)

	return bytes.HasPrefix(trimmed, []byte("<?xml"))
}

// parseTree parses raw bytes into an XML or HTML tree, branching by
// content class per spec.md §4.4 — grounded on the teacher's two-client
// split in internal/crawler (a dedicated archive HTTP client alongside
// the live one), the same precedent of branching behavior by content
// class applied here to parser selection instead.
func parseTree(content []byte, contentType string) (*Tree, error) {
	if isXML(contentType, content) {
		doc, err := xmlquery.Parse(bytes.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		return &Tree{xml: doc}, nil
	}

	doc, err := htmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return &Tree{html: doc}, nil
}
