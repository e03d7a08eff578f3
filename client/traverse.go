// Copyright (c) 2026 The usirest Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package client

// Hypermedia traversal: a Document is a value, so walking the API graph
// (following relations, reloading, paginating) goes through the session.

// GetDocument fetches a URL and parses the response body as a Document.
func (c *Client) GetDocument(url string, schema Schema, mode ParseMode) (*Document, error) {
	body, err := c.Get(url)
	if err != nil {
		return nil, err
	}
	return ParseDocument(body, schema, mode)
}

// Follow looks up the named relation and fetches it as a fresh Document. An
// absent relation is a MissingLinkError; callers expecting absence must check
// the document's links first.
func (c *Client) Follow(doc *Document, tag string, schema Schema, mode ParseMode) (*Document, error) {
	link, found := doc.Link(tag)
	if !found {
		return nil, &MissingLinkError{Tag: tag}
	}
	return c.GetDocument(stripTemplate(link.Href), schema, mode)
}

// Reload re-fetches the document's own self link and re-parses into the same
// logical identity, overwriting its attributes. The schema and parse mode the
// document was created with are preserved.
func (c *Client) Reload(doc *Document) error {
	self := doc.SelfURL()
	if self == "" {
		return &MissingLinkError{Tag: "self"}
	}
	fresh, err := c.GetDocument(self, doc.schema, doc.mode)
	if err != nil {
		return err
	}
	*doc = *fresh
	return nil
}

// A Pager stitches a multi-page listing into one logical sequence. Pages are
// fetched on demand: each page's request is issued only when the consumer
// asks for it.
type Pager struct {
	client  *Client
	current *Document // the starting page, until delivered
	nextURL string
	schema  Schema
	mode    ParseMode
}

// Paginate starts a pager on the given document. The pager yields that
// document first, then follows `next` relations until one is absent; a
// single-page listing degenerates to a one-element sequence.
func (c *Client) Paginate(doc *Document) *Pager {
	return &Pager{
		client:  c,
		current: doc,
		schema:  doc.schema,
		mode:    doc.mode,
	}
}

// Next returns the next page, or (nil, nil) when the sequence is exhausted.
func (p *Pager) Next() (*Document, error) {
	var doc *Document
	if p.current != nil {
		doc = p.current
		p.current = nil
	} else if p.nextURL != "" {
		var err error
		doc, err = p.client.GetDocument(p.nextURL, p.schema, p.mode)
		if err != nil {
			return nil, err
		}
	} else {
		return nil, nil
	}

	p.nextURL = ""
	if link, found := doc.Link("next"); found {
		p.nextURL = stripTemplate(link.Href)
	}
	return doc, nil
}
