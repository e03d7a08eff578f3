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

// This package models the resources of the USI submission API (teams,
// submissions, samples, validation results) and of the AAP service (users,
// domains). Each resource holds a session reference and a parsed hypermedia
// document; resource verbs compose link following with HTTP verbs.
package usi

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cnr-ibba/usirest/client"
)

// collectEmbedded walks every page of a listing document, invoking fn for
// each raw record of the named embedded collection. A listing whose first
// page lacks the collection entirely was never populated: that is zero items
// and an advisory warning, not an error.
func collectEmbedded(c *client.Client, doc *client.Document, name string,
	fn func(json.RawMessage) error) error {

	if _, found := doc.EmbeddedRecords(name); !found {
		slog.Warn(fmt.Sprintf("You don't have any %s yet", name))
		return nil
	}
	pager := c.Paginate(doc)
	for {
		page, err := pager.Next()
		if err != nil {
			return err
		}
		if page == nil {
			return nil
		}
		records, _ := page.EmbeddedRecords(name)
		for _, record := range records {
			if err := fn(record); err != nil {
				return err
			}
		}
	}
}
