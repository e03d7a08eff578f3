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

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ParseMode controls what happens to top-level JSON keys that a document's
// schema does not declare.
type ParseMode int

const (
	// Strict drops unknown keys; they remain available in the raw body only.
	// This is the default for the public API.
	Strict ParseMode = iota
	// Permissive collects unknown keys in the document's Extra map.
	Permissive
)

// A Schema is the allow-list of top-level JSON keys a resource type declares.
type Schema []string

// Contains reports whether the schema declares the given key.
func (s Schema) Contains(key string) bool {
	for _, declared := range s {
		if declared == key {
			return true
		}
	}
	return false
}

// a named relation in a HAL document
type Link struct {
	Href string `json:"href"`
}

// the pagination descriptor of a HAL listing
type Page struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// A Document is a parsed HAL hypermedia record: relations, embedded records,
// pagination info, and the resource's own attributes. A Document is a value
// created fresh on every response parse; it holds no transport state.
type Document struct {
	// relation name -> target link
	Links map[string]Link
	// relation name -> ordered nested raw records
	Embedded map[string][]json.RawMessage
	// pagination descriptor, when present
	Page *Page
	// declared attributes, per the document's schema
	Attributes map[string]any
	// unknown top-level keys, collected only in Permissive mode
	Extra map[string]any
	// the full decoded body, retained for fields not modeled
	Raw map[string]json.RawMessage

	schema Schema
	mode   ParseMode
}

// ParseDocument turns a raw JSON body into a Document. The reserved keys
// `_links`, `_embedded` and `page` are split off; remaining top-level keys
// are matched against the schema and assigned as attributes. Any attribute
// whose key names a date, and whose value parses as a timestamp, is converted
// to a time.Time; genuinely unparseable strings are kept as plain strings.
func ParseDocument(body []byte, schema Schema, mode ParseMode) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &DataError{
			Message: fmt.Sprintf("can't decode response body: %s", err),
		}
	}

	doc := Document{
		Links:      make(map[string]Link),
		Embedded:   make(map[string][]json.RawMessage),
		Attributes: make(map[string]any),
		Extra:      make(map[string]any),
		Raw:        raw,
		schema:     schema,
		mode:       mode,
	}

	for key, value := range raw {
		switch key {
		case "_links":
			if err := doc.readLinks(value); err != nil {
				return nil, err
			}
		case "_embedded":
			if err := doc.readEmbedded(value); err != nil {
				return nil, err
			}
		case "page":
			var page Page
			if err := json.Unmarshal(value, &page); err != nil {
				return nil, &DataError{
					Message: fmt.Sprintf("can't decode page descriptor: %s", err),
				}
			}
			doc.Page = &page
		default:
			var decoded any
			if err := json.Unmarshal(value, &decoded); err != nil {
				return nil, &DataError{
					Message: fmt.Sprintf("can't decode key '%s': %s", key, err),
				}
			}
			decoded = normalizeDate(key, decoded)
			if schema.Contains(key) {
				doc.Attributes[key] = decoded
			} else if mode == Permissive {
				slog.Info(fmt.Sprintf("Forcing unmodeled key '%s'", key))
				doc.Extra[key] = decoded
			} else {
				slog.Debug(fmt.Sprintf("Key '%s' not modeled", key))
			}
		}
	}

	if self := doc.SelfURL(); self != "" {
		slog.Debug(fmt.Sprintf("Read document %s", self))
	}
	return &doc, nil
}

// reads the `_links` relation map; a relation can be a single link object or
// an array of them (in which case the first one wins)
func (d *Document) readLinks(value json.RawMessage) error {
	var relations map[string]json.RawMessage
	if err := json.Unmarshal(value, &relations); err != nil {
		return &DataError{
			Message: fmt.Sprintf("can't decode _links: %s", err),
		}
	}
	for tag, relation := range relations {
		var link Link
		if err := json.Unmarshal(relation, &link); err == nil {
			d.Links[tag] = link
			continue
		}
		var links []Link
		if err := json.Unmarshal(relation, &links); err != nil || len(links) == 0 {
			return &DataError{
				Message: fmt.Sprintf("can't decode link '%s'", tag),
			}
		}
		d.Links[tag] = links[0]
	}
	return nil
}

// reads the `_embedded` collection map; a collection is normally an array of
// records, but a lone object is tolerated as a one-element collection
func (d *Document) readEmbedded(value json.RawMessage) error {
	var collections map[string]json.RawMessage
	if err := json.Unmarshal(value, &collections); err != nil {
		return &DataError{
			Message: fmt.Sprintf("can't decode _embedded: %s", err),
		}
	}
	for name, collection := range collections {
		var records []json.RawMessage
		if err := json.Unmarshal(collection, &records); err == nil {
			d.Embedded[name] = records
			continue
		}
		d.Embedded[name] = []json.RawMessage{collection}
	}
	return nil
}

// the timestamp layouts the submission services are known to emit
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// converts date-keyed string values into time.Time values where they parse;
// anything unparseable is left alone
func normalizeDate(key string, value any) any {
	if !strings.Contains(strings.ToLower(key), "date") {
		return value
	}
	text, isString := value.(string)
	if !isString {
		return value
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed
		}
	}
	return value
}

// Link looks up a relation by name.
func (d *Document) Link(tag string) (Link, bool) {
	link, found := d.Links[tag]
	return link, found
}

// SelfURL returns the document's own URL, with any URI-template placeholder
// stripped: the API advertises templated URLs (e.g. a `{?projection}` suffix)
// that are not directly dereferenceable.
func (d *Document) SelfURL() string {
	link, found := d.Links["self"]
	if !found {
		return ""
	}
	return stripTemplate(link.Href)
}

// ID derives the document's identity from its self link.
func (d *Document) ID() string {
	return ExtractID(d.SelfURL())
}

// EmbeddedRecords returns the ordered raw records of the named embedded
// collection. An absent collection (found == false) means "never populated"
// and is distinct from an empty one; callers treat it as zero items.
func (d *Document) EmbeddedRecords(name string) ([]json.RawMessage, bool) {
	records, found := d.Embedded[name]
	return records, found
}

// StringAttr returns the named attribute as a string, or "" if it is absent
// or not a string.
func (d *Document) StringAttr(key string) string {
	value, _ := d.Attributes[key].(string)
	return value
}

// TimeAttr returns the named attribute as a timestamp, or the zero time if it
// is absent or was not parseable as one.
func (d *Document) TimeAttr(key string) time.Time {
	value, _ := d.Attributes[key].(time.Time)
	return value
}

// ExtractID returns a resource's identity: the last path segment of its self
// URL, after stripping any URI-template marker. It is deliberately the single
// place where identity is derived from URL structure.
func ExtractID(selfURL string) string {
	selfURL = strings.TrimSuffix(stripTemplate(selfURL), "/")
	if index := strings.LastIndex(selfURL, "/"); index >= 0 {
		return selfURL[index+1:]
	}
	return selfURL
}

// strips a trailing URI-template expression such as `{?projection}`
func stripTemplate(url string) string {
	if index := strings.Index(url, "{"); index >= 0 {
		return url[:index]
	}
	return url
}
