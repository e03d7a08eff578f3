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

// This package holds the HTTP session for the submission services: it
// attaches auth headers, enforces the token expiry gate, dispatches HTTP
// verbs with status-code policing, and parses HAL hypermedia documents.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cnr-ibba/usirest/auth"
	"github.com/cnr-ibba/usirest/journal"
)

const version = "0.1.0"

// the read-only default header template; every Client gets its own copy at
// construction, so one session's overrides never leak into another's defaults
var defaultHeaders = map[string]string{
	"Accept":     "application/hal+json",
	"User-Agent": "usirest " + version,
}

// expected success status per verb
var expectedStatus = map[string]int{
	http.MethodGet:    http.StatusOK,
	http.MethodPost:   http.StatusCreated,
	http.MethodPatch:  http.StatusOK,
	http.MethodPut:    http.StatusOK,
	http.MethodDelete: http.StatusNoContent,
}

// An HTTP session holding exactly one bearer token. A Client is meant for one
// logical caller at a time: the header map and the last-response fields are
// not synchronized for concurrent use.
type Client struct {
	// the bearer token attached to every request
	Token *auth.Token
	// per-instance header map, copied from the default template
	Headers map[string]string
	// the last response body and status code read by this session
	LastResponse   []byte
	LastStatusCode int

	hc http.Client
}

// New creates a session around the given token, with its own header map and
// an HSTS-hardened transport.
func New(token *auth.Token, timeout time.Duration) *Client {
	headers := make(map[string]string, len(defaultHeaders)+1)
	for key, value := range defaultHeaders {
		headers[key] = value
	}
	headers["Authorization"] = fmt.Sprintf("Bearer %s", token.Raw)

	return &Client{
		Token:   token,
		Headers: headers,
		hc:      SecureHTTPClient(timeout),
	}
}

// Get performs a GET request on the given URL, returning the response body.
func (c *Client) Get(url string) ([]byte, error) {
	return c.Do(http.MethodGet, url, nil, expectedStatus[http.MethodGet], nil)
}

// Post performs a POST request with a JSON payload, expecting a 201.
func (c *Client) Post(url string, payload any, headers map[string]string) ([]byte, error) {
	return c.Do(http.MethodPost, url, payload, expectedStatus[http.MethodPost], headers)
}

// Patch performs a PATCH request with a JSON payload, expecting a 200.
func (c *Client) Patch(url string, payload any, headers map[string]string) ([]byte, error) {
	return c.Do(http.MethodPatch, url, payload, expectedStatus[http.MethodPatch], headers)
}

// Put performs a PUT request with a JSON payload, expecting a 200.
func (c *Client) Put(url string, payload any, headers map[string]string) ([]byte, error) {
	return c.Do(http.MethodPut, url, payload, expectedStatus[http.MethodPut], headers)
}

// Delete performs a DELETE request on the given URL, expecting a 204.
func (c *Client) Delete(url string) error {
	_, err := c.Do(http.MethodDelete, url, nil, expectedStatus[http.MethodDelete], nil)
	return err
}

// Do dispatches a single request and classifies its response status. Before
// any network activity the held token is checked for expiry. The response
// status is classified three ways: a 5xx is a server-side problem, a 4xx is a
// data problem, and any other status that differs from the expected one is an
// unexpected-status failure; all three carry the response body. Extra headers
// merge over a copy of the session headers, never replacing them.
func (c *Client) Do(method, url string, payload any,
	expected int, headers map[string]string) ([]byte, error) {

	if c.Token.IsExpired() {
		return nil, &TokenExpiredError{User: c.Token.Claims.Nickname}
	}

	merged := make(map[string]string, len(c.Headers)+len(headers))
	for key, value := range c.Headers {
		merged[key] = value
	}
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
		merged["Content-Type"] = "application/json;charset=UTF-8"
	}
	for key, value := range headers {
		merged[key] = value
	}

	slog.Debug(fmt.Sprintf("%s: %s", method, url))
	request, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	for key, value := range merged {
		request.Header.Set(key, value)
	}

	startTime := time.Now()
	response, err := c.hc.Do(request)
	if err != nil {
		// network-level errors are fatal and pass through unclassified
		return nil, err
	}
	defer response.Body.Close()
	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	// track the last response for introspection
	c.LastResponse = responseBody
	c.LastStatusCode = response.StatusCode

	c.record(method, url, response.StatusCode, startTime)

	switch {
	case response.StatusCode/100 == 5:
		return nil, &ServerError{
			StatusCode: response.StatusCode,
			Body:       string(responseBody),
		}
	case response.StatusCode/100 == 4:
		return nil, &DataError{
			StatusCode: response.StatusCode,
			Message:    string(responseBody),
		}
	case response.StatusCode != expected:
		return nil, &UnexpectedStatusError{
			StatusCode: response.StatusCode,
			Expected:   expected,
			Body:       string(responseBody),
		}
	}
	return responseBody, nil
}

// records a completed call in the activity journal, if one is open; journal
// failures are advisory and never affect the call's outcome
func (c *Client) record(method, url string, statusCode int, startTime time.Time) {
	if !journal.IsOpen() {
		return
	}
	err := journal.RecordCall(journal.Record{
		Id:         uuid.New(),
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		StartTime:  startTime,
		StopTime:   time.Now(),
	})
	if err != nil {
		slog.Warn(fmt.Sprintf("Couldn't record %s %s in the activity journal: %s",
			method, url, err))
	}
}
