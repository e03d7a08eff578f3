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
	"fmt"
)

// This error type is returned when a verb is attempted with an expired token.
// It is raised by a local clock check and never reaches the network.
type TokenExpiredError struct {
	User string
}

func (e TokenExpiredError) Error() string {
	if e.User != "" {
		return fmt.Sprintf("The token for %s is expired", e.User)
	}
	return "The token is expired"
}

// indicates a server-side problem (a 5xx status); recoverable only by
// external retry
type ServerError struct {
	StatusCode int
	Body       string
}

func (e ServerError) Error() string {
	return fmt.Sprintf("Problems with API endpoints (%d): %s",
		e.StatusCode, e.Body)
}

// indicates a malformed or invalid request or response (a 4xx status, or a
// successful-looking response whose body fails local post-conditions)
type DataError struct {
	StatusCode int
	Message    string
}

func (e DataError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Invalid request or response (%d): %s",
			e.StatusCode, e.Message)
	}
	return fmt.Sprintf("Invalid data: %s", e.Message)
}

// indicates a response status that is neither a 4xx/5xx error nor the status
// the verb expected (e.g. a 201 in response to a GET)
type UnexpectedStatusError struct {
	StatusCode int
	Expected   int
	Body       string
}

func (e UnexpectedStatusError) Error() string {
	return fmt.Sprintf("Got status %d (expected %d): %s",
		e.StatusCode, e.Expected, e.Body)
}

// This error type is returned when a named relation is absent from a
// document's links. Callers expecting a possibly-absent relation must check
// for it first; following an absent one is never silently tolerated.
type MissingLinkError struct {
	Tag string
}

func (e MissingLinkError) Error() string {
	return fmt.Sprintf("The document has no '%s' link", e.Tag)
}

// this error type is emitted if an endpoint redirects an HTTPS request to an
// HTTP endpoint
type DowngradedRedirectError struct {
	Endpoint string
}

func (e DowngradedRedirectError) Error() string {
	return fmt.Sprintf("The endpoint %s is attempting to downgrade an HTTPS request to HTTP",
		e.Endpoint)
}
