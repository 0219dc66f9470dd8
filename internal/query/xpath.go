package query

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// xpathQuery evaluates a compiled XPath 1.0 expression against either
// an HTML or an XML parse tree, selected per call by sniffing the
// input (internal/parsecache hands back an already-typed tree in the
// normal path; this variant also accepts raw bytes directly so it can
// be exercised standalone, e.g. from tests).
type xpathQuery struct {
	expr     *xpath.Expr
	textOnly bool
}

func compileXPath(rec store.QueryRecord) (Query, error) {
	expr, err := xpath.Compile(rec.Text)
	if err != nil {
		return nil, &CompileError{Type: rec.Type, Text: rec.Text, Err: err}
	}

	return &xpathQuery{expr: expr, textOnly: rec.TextOnly}, nil
}

func (q *xpathQuery) navigator(input []byte) (xpath.NodeNavigator, error) {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) > 0 && trimmed[0] == '<' && bytes.HasPrefix(trimmed, []byte("<?xml")) {
		doc, err := xmlquery.Parse(bytes.NewReader(input))
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		return xmlquery.CreateXPathNavigator(doc), nil
	}

	doc, err := htmlquery.Parse(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return htmlquery.CreateXPathNavigator(doc), nil
}

func (q *xpathQuery) Bool(_ context.Context, input []byte) (bool, error) {
	nav, err := q.navigator(input)
	if err != nil {
		return false, err
	}

	result := q.expr.Evaluate(nav)

	switch v := result.(type) {
	case bool:
		return v, nil
	case *xpath.NodeIterator:
		return v.MoveNext(), nil
	default:
		return false, nil
	}
}

func (q *xpathQuery) First(_ context.Context, input []byte) (string, error) {
	nav, err := q.navigator(input)
	if err != nil {
		return "", err
	}

	result := q.expr.Evaluate(nav)

	switch v := result.(type) {
	case string:
		return v, nil
	case float64:
		return fmt.Sprintf("%g", v), nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	case *xpath.NodeIterator:
		if !v.MoveNext() {
			return "", nil
		}

		return q.flatten(v.Current()), nil
	default:
		return "", nil
	}
}

func (q *xpathQuery) All(ctx context.Context, input []byte) ([]string, error) {
	return q.evalNodes(input, q.flatten)
}

func (q *xpathQuery) Subsets(ctx context.Context, input []byte) ([]string, error) {
	return q.evalNodes(input, q.serialize)
}

func (q *xpathQuery) evalNodes(input []byte, render func(xpath.NodeNavigator) string) ([]string, error) {
	nav, err := q.navigator(input)
	if err != nil {
		return nil, err
	}

	result := q.expr.Evaluate(nav)

	it, ok := result.(*xpath.NodeIterator)
	if !ok {
		// non-node result (string/bool/number): single-element result set
		return []string{fmt.Sprint(result)}, nil
	}

	var out []string
	for it.MoveNext() {
		out = append(out, render(it.Current()))
	}

	return out, nil
}

// flatten walks a node's text-bearing descendants and joins trimmed
// fragments with single spaces when textOnly is set, mirroring the
// original's PCDATA walk (Query/XPath.cpp); otherwise the serialized
// sub-tree is returned with CDATA unwrapped.
func (q *xpathQuery) flatten(n xpath.NodeNavigator) string {
	if !q.textOnly {
		return q.serialize(n)
	}

	nn, ok := n.(*htmlquery.NodeNavigator)
	if ok {
		return strings.Join(strings.Fields(htmlquery.InnerText(nodeFromNavigator(nn))), " ")
	}

	return strings.Join(strings.Fields(n.Value()), " ")
}

func (q *xpathQuery) serialize(n xpath.NodeNavigator) string {
	switch nn := n.(type) {
	case *htmlquery.NodeNavigator:
		var buf bytes.Buffer
		_ = html.Render(&buf, nodeFromNavigator(nn))

		return buf.String()
	default:
		return n.Value()
	}
}

func nodeFromNavigator(nn *htmlquery.NodeNavigator) *html.Node {
	return nn.Current()
}
