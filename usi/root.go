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
	"errors"
	"fmt"
	"net/http"

	"github.com/cnr-ibba/usirest/client"
	"github.com/cnr-ibba/usirest/config"
)

// Root is the entry point of the submission API: the index document whose
// links lead to everything else.
type Root struct {
	client *client.Client
	doc    *client.Document
}

// Attach fetches the API index document and returns a Root bound to the
// given session.
func Attach(c *client.Client) (*Root, error) {
	doc, err := c.GetDocument(config.API.Root+"/api/", nil, client.Permissive)
	if err != nil {
		return nil, err
	}
	return &Root{client: c, doc: doc}, nil
}

func (r *Root) String() string {
	return fmt.Sprintf("Root at %s/api/", config.API.Root)
}

// UserTeams returns every team the authenticated user belongs to.
func (r *Root) UserTeams() ([]*Team, error) {
	doc, err := r.client.Follow(r.doc, "userTeams", teamSchema, client.Strict)
	if err != nil {
		return nil, err
	}

	teams := make([]*Team, 0)
	err = collectEmbedded(r.client, doc, "teams", func(record json.RawMessage) error {
		team, err := newTeam(r.client, record)
		if err != nil {
			return err
		}
		teams = append(teams, team)
		return nil
	})
	return teams, err
}

// TeamByName returns the user's team with the given name.
func (r *Root) TeamByName(name string) (*Team, error) {
	teams, err := r.UserTeams()
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		if team.Name == name {
			return team, nil
		}
	}
	return nil, &NotFoundError{Kind: "team", Name: name}
}

// UserSubmissions returns every submission of the authenticated user,
// optionally filtered by status and team name. Empty filters match
// everything.
func (r *Root) UserSubmissions(status, team string) ([]*Submission, error) {
	doc, err := r.client.Follow(r.doc, "userSubmissions", submissionSchema,
		client.Strict)
	if err != nil {
		return nil, err
	}

	submissions := make([]*Submission, 0)
	err = collectEmbedded(r.client, doc, "submissions", func(record json.RawMessage) error {
		submission, err := newSubmission(r.client, record)
		if err != nil {
			return err
		}
		if team != "" && submission.Team.Name != team {
			return nil
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

// SubmissionByName fetches one submission directly by its name (the UUID in
// its self link), without walking the user's submission listing.
func (r *Root) SubmissionByName(name string) (*Submission, error) {
	url := fmt.Sprintf("%s/api/submissions/%s", config.API.Root, name)
	body, err := r.client.Get(url)
	if err != nil {
		var dataErr *client.DataError
		if errors.As(err, &dataErr) && dataErr.StatusCode == http.StatusNotFound {
			return nil, &NotFoundError{Kind: "submission", Name: name}
		}
		return nil, err
	}
	return newSubmission(r.client, body)
}
