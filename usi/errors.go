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
	"fmt"
)

// This error type is returned when a by-name lookup exhausts its candidate
// sequence without a match. It is distinct from a transport-level 404, which
// is classified as a client.DataError.
type NotFoundError struct {
	// the kind of resource sought ("team", "domain", "submission")
	Kind string
	// the requested name
	Name string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s: '%s' not found", e.Kind, e.Name)
}

// indicates a local precondition failure, e.g. checking errors while
// validation is still pending, or finalizing before the readiness check passes
type NotReadyError struct {
	Message string
}

func (e NotReadyError) Error() string {
	return e.Message
}
