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
	"log/slog"
	"slices"
	"strings"

	"github.com/cnr-ibba/usirest/client"
)

var validationResultSchema = client.Schema{
	"version", "expectedResults", "errorMessages",
	"overallValidationOutcomeByAuthor", "validationStatus",
}

// The validation outcome of a sample, broken down by databank ("author" in
// API parlance: Ena, BioSamples, ...).
type ValidationResult struct {
	client *client.Client
	doc    *client.Document

	// overall validation status ("Pending", "Complete")
	Status string
	// per-databank outcome ("Pass", "Error", ...)
	OutcomeByAuthor map[string]string
	// per-databank error messages
	ErrorMessages map[string][]string
}

func newValidationResult(c *client.Client, raw []byte) (*ValidationResult, error) {
	doc, err := client.ParseDocument(raw, validationResultSchema, client.Strict)
	if err != nil {
		return nil, err
	}
	result := ValidationResult{client: c, doc: doc}
	result.readDoc()
	return &result, nil
}

func (v *ValidationResult) readDoc() {
	v.Status = v.doc.StringAttr("validationStatus")

	v.OutcomeByAuthor = make(map[string]string)
	if outcomes, ok := v.doc.Attributes["overallValidationOutcomeByAuthor"].(map[string]any); ok {
		for author, outcome := range outcomes {
			if text, ok := outcome.(string); ok {
				v.OutcomeByAuthor[author] = text
			}
		}
	}

	v.ErrorMessages = make(map[string][]string)
	if messages, ok := v.doc.Attributes["errorMessages"].(map[string]any); ok {
		for author, list := range messages {
			if items, ok := list.([]any); ok {
				for _, item := range items {
					if text, ok := item.(string); ok {
						v.ErrorMessages[author] = append(v.ErrorMessages[author], text)
					}
				}
			}
		}
	}
}

func (v *ValidationResult) String() string {
	message := v.Status
	if len(v.OutcomeByAuthor) > 0 {
		message += fmt.Sprintf(" %v", v.OutcomeByAuthor)
	}
	return message
}

// HasErrors reports whether any databank outside the ignore list reported an
// error. The messages of each offending databank are logged.
func (v *ValidationResult) HasErrors(ignoreList []string) bool {
	hasErrors := false
	for author, outcome := range v.OutcomeByAuthor {
		if outcome == "Error" && !slices.Contains(ignoreList, author) {
			slog.Error(strings.Join(v.ErrorMessages[author], ", "))
			hasErrors = true
		}
	}
	return hasErrors
}
