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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cnr-ibba/usirest/client"
	"github.com/cnr-ibba/usirest/config"
)

var userSchema = client.Schema{"userName", "email", "userReference"}

// A User wraps the AAP account of the authenticated session (or of another
// account fetched by reference).
type User struct {
	client *client.Client
	doc    *client.Document

	// the account nickname, taken from the session token
	Name          string
	UserName      string
	Email         string
	UserReference string
}

// NewUser binds a User to the given session. The account's nickname comes
// from the session token; the remaining attributes are filled by MyID or
// UserByID.
func NewUser(c *client.Client) *User {
	return &User{client: c, Name: c.Token.Claims.Nickname}
}

func (u *User) readDoc() {
	u.UserName = u.doc.StringAttr("userName")
	u.Email = u.doc.StringAttr("email")
	u.UserReference = u.doc.StringAttr("userReference")
}

func (u *User) String() string {
	return fmt.Sprintf("%s (%s)", u.UserName, u.Email)
}

// MyID fetches the AAP record of the session's own account and returns its
// user reference.
func (u *User) MyID() (string, error) {
	url := fmt.Sprintf("%s/users/%s", config.AAP.URL, u.Name)
	slog.Debug(fmt.Sprintf("Getting info from %s", url))

	doc, err := u.client.GetDocument(url, userSchema, client.Strict)
	if err != nil {
		return "", err
	}
	u.doc = doc
	u.readDoc()
	return u.UserReference, nil
}

// UserByID fetches another account by its user reference.
func (u *User) UserByID(userID string) (*User, error) {
	url := fmt.Sprintf("%s/users/%s", config.AAP.URL, userID)
	slog.Debug(fmt.Sprintf("Getting info from %s", url))

	doc, err := u.client.GetDocument(url, userSchema, client.Strict)
	if err != nil {
		return nil, err
	}
	user := User{client: u.client, doc: doc}
	user.readDoc()
	user.Name = user.UserName
	return &user, nil
}

// CreateUser registers a new AAP account and returns its user reference. No
// session is needed: account creation is the one operation available before
// any token exists.
func CreateUser(userName, password, confirmPwd, email, fullName,
	organisation string) (string, error) {

	if password != confirmPwd {
		return "", &client.DataError{Message: "passwords don't match"}
	}

	payload := map[string]string{
		"username":     userName,
		"password":     password,
		"confirmPwd":   confirmPwd,
		"email":        email,
		"name":         fullName,
		"organisation": organisation,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := config.AAP.URL + "/auth"
	request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json;charset=UTF-8")

	hc := http.Client{Timeout: config.API.Timeout()}
	response, err := hc.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	switch {
	case response.StatusCode/100 == 5:
		return "", &client.ServerError{
			StatusCode: response.StatusCode,
			Body:       string(body),
		}
	case response.StatusCode/100 == 4:
		return "", &client.DataError{
			StatusCode: response.StatusCode,
			Message:    string(body),
		}
	case response.StatusCode != http.StatusOK:
		return "", &client.UnexpectedStatusError{
			StatusCode: response.StatusCode,
			Expected:   http.StatusOK,
			Body:       string(body),
		}
	}
	return string(body), nil
}

// CreateTeam creates a new submission team owned by this account. The
// session token does not cover teams created after it was issued, so a new
// token is needed before the team shows up in the user's listings.
func (u *User) CreateTeam(description, centreName string) (*Team, error) {
	url := config.API.Root + "/api/user/teams"
	payload := map[string]string{
		"description": description,
		"centreName":  centreName,
	}
	body, err := u.client.Post(url, payload, nil)
	if err != nil {
		return nil, err
	}

	slog.Warn("You need to generate a new token in order to see the new generated team")
	return newTeam(u.client, body)
}

// Teams returns the submission teams this account belongs to.
func (u *User) Teams() ([]*Team, error) {
	url := config.API.Root + "/api/user/teams"
	doc, err := u.client.GetDocument(url, teamSchema, client.Strict)
	if err != nil {
		return nil, err
	}

	teams := make([]*Team, 0)
	err = collectEmbedded(u.client, doc, "teams", func(record json.RawMessage) error {
		team, err := newTeam(u.client, record)
		if err != nil {
			return err
		}
		teams = append(teams, team)
		return nil
	})
	return teams, err
}

// TeamByName returns the account's team with the given name.
func (u *User) TeamByName(name string) (*Team, error) {
	slog.Debug(fmt.Sprintf("Searching for %s", name))
	teams, err := u.Teams()
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

// Domains returns the AAP domains this account belongs to. The AAP endpoint
// answers with a plain JSON array rather than a hypermedia document.
func (u *User) Domains() ([]*Domain, error) {
	url := config.AAP.URL + "/my/domains"
	body, err := u.client.Get(url)
	if err != nil {
		return nil, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &client.DataError{
			Message: fmt.Sprintf("can't read domain listing: %s", err),
		}
	}
	domains := make([]*Domain, 0, len(records))
	for _, record := range records {
		domain, err := newDomain(u.client, record)
		if err != nil {
			return nil, err
		}
		slog.Debug(fmt.Sprintf("Found %s domain", domain.Name))
		domains = append(domains, domain)
	}
	return domains, nil
}

// DomainByName returns the account's domain with the given name.
func (u *User) DomainByName(name string) (*Domain, error) {
	slog.Debug(fmt.Sprintf("Searching for %s", name))
	domains, err := u.Domains()
	if err != nil {
		return nil, err
	}
	for _, domain := range domains {
		if domain.Name == name {
			return domain, nil
		}
	}
	return nil, &NotFoundError{Kind: "domain", Name: name}
}

// AddUserToTeam adds an account to a domain's team and returns the updated
// domain.
func (u *User) AddUserToTeam(userID, domainID string) (*Domain, error) {
	url := fmt.Sprintf("%s/domains/%s/%s/user", config.AAP.URL, domainID, userID)
	body, err := u.client.Put(url, nil, nil)
	if err != nil {
		return nil, err
	}
	return newDomain(u.client, body)
}
