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

package auth

import (
	"fmt"
)

// This error type is returned when the AAP rejects a credential exchange. It
// carries the response body so the remote cause can be diagnosed without
// re-issuing the request.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e AuthenticationError) Error() string {
	return fmt.Sprintf("Authentication failed with status %d: '%s'",
		e.StatusCode, e.Body)
}

// indicates that a token string could not be decoded into a usable token
type InvalidTokenError struct {
	Message string
}

func (e InvalidTokenError) Error() string {
	return fmt.Sprintf("Invalid token: %s", e.Message)
}
