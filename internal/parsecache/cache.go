// Package parsecache is the per-tick scratchpad shared by the Crawler
// and Extractor: each of its three entry points parses its input
// exactly once per tick, and every later caller in the same tick reuses
// the cached artifact (or cached failure) instead of re-parsing.
package parsecache

import "sync"

// Cache holds at most one XML/HTML tree, one JSON DOM, and one JSON
// cursor at a time. Reset clears all three, and must be called at the
// start of every URL tick (spec.md §4.4 "Reset happens at the start of
// every URL tick").
type Cache struct {
	mu sync.Mutex

	xmlDone bool
	xmlTree *Tree
	xmlErr  error

	domDone bool
	dom     any
	domErr  error

	cursorDone bool
	cursor     *Cursor
	cursorErr  error
}

// New returns an empty cache, ready for one tick.
func New() *Cache {
	return &Cache{}
}

// Reset clears every cached artifact and error, preparing the cache for
// the next tick.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.xmlDone, c.xmlTree, c.xmlErr = false, nil, nil
	c.domDone, c.dom, c.domErr = false, nil, nil
	c.cursorDone, c.cursor, c.cursorErr = false, nil, nil
}

// XML parses content as an XML or HTML tree (branching by contentType),
// caching the result. Returns (tree, true) on success; on failure
// returns (nil, false) and the error is available via XMLError for the
// caller to queue as an end-of-tick warning.
func (c *Cache) XML(content []byte, contentType string) (*Tree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.xmlDone {
		c.xmlDone = true
		c.xmlTree, c.xmlErr = parseTree(content, contentType)
	}

	return c.xmlTree, c.xmlErr == nil
}

// XMLError returns the fatal parse error from the most recent XML call
// this tick, or nil if it succeeded or was never called.
func (c *Cache) XMLError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.xmlErr
}

// JSONDOM parses content into a DOM-style tree for JSONPointer
// resolution, caching the result.
func (c *Cache) JSONDOM(content []byte) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.domDone {
		c.domDone = true
		c.dom, c.domErr = parseDOM(content)
	}

	return c.dom, c.domErr == nil
}

// JSONDOMError returns the fatal parse error from the most recent
// JSONDOM call this tick, or nil.
func (c *Cache) JSONDOMError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.domErr
}

// JSONCursor parses content into a cursor-style tree for JSONPath
// evaluation, caching the result.
func (c *Cache) JSONCursor(content []byte) (*Cursor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cursorDone {
		c.cursorDone = true
		c.cursor, c.cursorErr = parseCursor(content)
	}

	return c.cursor, c.cursorErr == nil
}

// JSONCursorError returns the fatal parse error from the most recent
// JSONCursor call this tick, or nil.
func (c *Cache) JSONCursorError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cursorErr
}
