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

	"github.com/cnr-ibba/usirest/client"
)

var teamSchema = client.Schema{"name", "description", "profile"}

// A normalized reference to a team by name. The API represents a team field
// as either a bare string or an embedded object with a `name` key; both
// shapes collapse to a TeamRef at the parsing boundary, and any other shape
// is a data error.
type TeamRef struct {
	Name string
}

// teamRef normalizes the accepted team-field shapes.
func teamRef(value any) (TeamRef, error) {
	switch team := value.(type) {
	case nil:
		return TeamRef{}, nil
	case string:
		return TeamRef{Name: team}, nil
	case map[string]any:
		name, ok := team["name"].(string)
		if !ok {
			return TeamRef{}, &client.DataError{
				Message: "team object carries no 'name' string",
			}
		}
		return TeamRef{Name: name}, nil
	default:
		return TeamRef{}, &client.DataError{
			Message: fmt.Sprintf("unknown team representation: %T", value),
		}
	}
}

// A USI team: the unit of ownership for submissions.
type Team struct {
	client *client.Client
	doc    *client.Document

	Name        string
	Description string
}

func newTeam(c *client.Client, raw []byte) (*Team, error) {
	doc, err := client.ParseDocument(raw, teamSchema, client.Strict)
	if err != nil {
		return nil, err
	}
	team := Team{client: c, doc: doc}
	team.readDoc()
	return &team, nil
}

func (t *Team) readDoc() {
	t.Name = t.doc.StringAttr("name")
	t.Description = t.doc.StringAttr("description")
}

func (t *Team) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Description)
}

// Submissions follows the team's `submissions` relation and returns all of
// the team's submissions, optionally filtered by status.
func (t *Team) Submissions(status string) ([]*Submission, error) {
	doc, err := t.client.Follow(t.doc, "submissions", submissionSchema, client.Strict)
	if err != nil {
		return nil, err
	}

	submissions := make([]*Submission, 0)
	err = collectEmbedded(t.client, doc, "submissions", func(record json.RawMessage) error {
		submission, err := newSubmission(t.client, record)
		if err != nil {
			return err
		}
		if status != "" {
			submissionStatus, err := submission.Status()
			if err != nil {
				return err
			}
			if submissionStatus != status {
				return nil
			}
		}
		submissions = append(submissions, submission)
		return nil
	})
	return submissions, err
}

// CreateSubmission creates a new empty submission owned by this team by
// POSTing to the `submissions:create` relation. The new submission is
// reloaded before being returned: a freshly created submission differs from
// an established one until re-fetched.
func (t *Team) CreateSubmission() (*Submission, error) {
	link, found := t.doc.Link("submissions:create")
	if !found {
		return nil, &client.MissingLinkError{Tag: "submissions:create"}
	}

	body, err := t.client.Post(link.Href, map[string]any{}, nil)
	if err != nil {
		return nil, err
	}
	submission, err := newSubmission(t.client, body)
	if err != nil {
		return nil, err
	}
	if err := submission.Reload(); err != nil {
		return nil, err
	}
	return submission, nil
}
