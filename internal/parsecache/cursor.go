package parsecache

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Cursor is a JSON value prepared for JSONPath evaluation, decoded with
// encoding/json.Decoder rather than json.Unmarshal to keep the parse
// path distinct from parse_json_dom (spec.md §4.4 names them as two
// separate entry points). The decoded value itself is the same
// interface{} shape either way — dolthub/jsonpath's Lookup takes
// exactly that — so the distinction this type preserves is which tick
// operation paid for the decode, not a different in-memory structure.
type Cursor struct {
	Root any
}

func parseCursor(content []byte) (*Cursor, error) {
	dec := json.NewDecoder(bytes.NewReader(content))

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode json cursor: %w", err)
	}

	return &Cursor{Root: root}, nil
}

func parseDOM(content []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal json dom: %w", err)
	}

	return doc, nil
}
