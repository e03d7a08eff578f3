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

package usi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cnr-ibba/usirest/client"
	"github.com/cnr-ibba/usirest/config"
)

// A Domain wraps an AAP domain: the authorization-side grouping that backs a
// submission team. AAP domain responses are plain JSON objects with a `links`
// array, not hypermedia documents, so they are decoded directly.
type Domain struct {
	client *client.Client

	// Name aliases DomainName: domains have no name attribute of their own.
	Name            string
	DomainName      string
	DomainDesc      string
	DomainReference string

	links []domainLink
	users []*User
}

type domainLink struct {
	Href string `json:"href"`
}

type domainData struct {
	DomainName      string       `json:"domainName"`
	DomainDesc      string       `json:"domainDesc"`
	DomainReference string       `json:"domainReference"`
	Links           []domainLink `json:"links"`
}

func newDomain(c *client.Client, raw []byte) (*Domain, error) {
	var data domainData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &client.DataError{
			Message: fmt.Sprintf("can't read domain data: %s", err),
		}
	}
	return &Domain{
		client:          c,
		Name:            data.DomainName,
		DomainName:      data.DomainName,
		DomainDesc:      data.DomainDesc,
		DomainReference: data.DomainReference,
		links:           data.Links,
	}, nil
}

func (d *Domain) String() string {
	if d.DomainReference == "" {
		return "domain not yet initialized"
	}
	parts := strings.Split(d.DomainReference, "-")
	reference := parts[0]
	if len(parts) > 1 {
		reference = parts[1]
	}
	return fmt.Sprintf("%s %s %s", reference, d.Name, d.DomainDesc)
}

// Users returns the accounts belonging to this domain, fetched once and
// cached. The user listing is the domain link whose href mentions users;
// the AAP answers with a plain JSON array.
func (d *Domain) Users() ([]*User, error) {
	if d.users != nil {
		return d.users, nil
	}

	var userURL string
	for _, link := range d.links {
		if strings.Contains(link.Href, "user") {
			userURL = link.Href
			break
		}
	}
	if userURL == "" {
		return nil, &client.MissingLinkError{Tag: "users"}
	}

	body, err := d.client.Get(userURL)
	if err != nil {
		return nil, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &client.DataError{
			Message: fmt.Sprintf("can't read user listing: %s", err),
		}
	}

	users := make([]*User, 0, len(records))
	for _, record := range records {
		doc, err := client.ParseDocument(record, userSchema, client.Strict)
		if err != nil {
			return nil, err
		}
		user := User{client: d.client, doc: doc}
		user.readDoc()
		user.Name = user.UserName
		users = append(users, &user)
	}
	d.users = users
	return users, nil
}

// CreateProfile attaches a profile with the given attributes to this domain
// and returns the updated domain.
func (d *Domain) CreateProfile(attributes map[string]string) (*Domain, error) {
	url := config.AAP.URL + "/profiles"
	payload := map[string]any{
		"domain": map[string]string{
			"domainReference": d.DomainReference,
		},
		"attributes": attributes,
	}
	body, err := d.client.Post(url, payload, nil)
	if err != nil {
		return nil, err
	}
	return newDomain(d.client, body)
}
