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
	"log/slog"
	"time"

	"github.com/cnr-ibba/usirest/client"
	"github.com/cnr-ibba/usirest/config"
)

var submissionSchema = client.Schema{
	"id", "createdDate", "lastModifiedDate", "lastModifiedBy",
	"submissionStatus", "submitter", "createdBy", "submissionDate", "team",
}

// A USI submission: a batch of samples going through validation and
// finalization together.
type Submission struct {
	client *client.Client
	doc    *client.Document

	ID               string
	Team             TeamRef
	CreatedDate      time.Time
	LastModifiedDate time.Time
	SubmissionDate   time.Time
	CreatedBy        string
	LastModifiedBy   string
	Submitter        map[string]any

	// cached status, refreshed by UpdateStatus
	status string
}

func newSubmission(c *client.Client, raw []byte) (*Submission, error) {
	doc, err := client.ParseDocument(raw, submissionSchema, client.Strict)
	if err != nil {
		return nil, err
	}
	submission := Submission{client: c, doc: doc}
	if err := submission.readDoc(); err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *Submission) readDoc() error {
	s.ID = s.doc.ID()
	if s.ID == "" {
		s.ID = s.doc.StringAttr("id")
	}
	s.CreatedDate = s.doc.TimeAttr("createdDate")
	s.LastModifiedDate = s.doc.TimeAttr("lastModifiedDate")
	s.SubmissionDate = s.doc.TimeAttr("submissionDate")
	s.CreatedBy = s.doc.StringAttr("createdBy")
	s.LastModifiedBy = s.doc.StringAttr("lastModifiedBy")
	if submitter, ok := s.doc.Attributes["submitter"].(map[string]any); ok {
		s.Submitter = submitter
	}

	// listing documents embed the status inline, detail documents only link
	// to it
	if status, ok := s.doc.Attributes["submissionStatus"].(string); ok {
		s.status = status
	}

	var err error
	s.Team, err = teamRef(s.doc.Attributes["team"])
	return err
}

func (s *Submission) String() string {
	return fmt.Sprintf("%s %s", s.ID, s.status)
}

// Status returns the submission status (Draft, Submitted, ...), fetching it
// from the `submissionStatus` relation if it is not cached yet.
func (s *Submission) Status() (string, error) {
	if s.status == "" {
		if err := s.UpdateStatus(); err != nil {
			return "", err
		}
	}
	return s.status, nil
}

// UpdateStatus re-fetches the submission status from its relation and
// refreshes the cache.
func (s *Submission) UpdateStatus() error {
	doc, err := s.client.Follow(s.doc, "submissionStatus",
		client.Schema{"status"}, client.Strict)
	if err != nil {
		return err
	}
	status := doc.StringAttr("status")
	if status == "" {
		return &client.DataError{Message: "submission status document has no status"}
	}
	s.status = status
	return nil
}

// contents returns the submission's `contents` document, reloading the
// submission first when the relation is absent. A just-created submission
// comes back without a contents link until re-fetched.
func (s *Submission) contents() (*client.Document, error) {
	if _, found := s.doc.Link("contents"); !found {
		if err := s.Reload(); err != nil {
			return nil, err
		}
	}
	return s.client.Follow(s.doc, "contents", nil, client.Permissive)
}

// CreateSample adds a sample to this submission. A missing team on any
// sample relationship and a missing release date are filled in with
// defaults before the POST.
func (s *Submission) CreateSample(sampleData map[string]any) (*Sample, error) {
	sampleData = withTeamRelationships(sampleData, s.Team.Name)
	sampleData = withReleaseDate(sampleData)

	contents, err := s.contents()
	if err != nil {
		return nil, err
	}
	link, found := contents.Link("samples:create")
	if !found {
		return nil, &client.MissingLinkError{Tag: "samples:create"}
	}
	body, err := s.client.Post(link.Href, sampleData, nil)
	if err != nil {
		return nil, err
	}
	return newSample(s.client, body)
}

// SampleFilter restricts the samples returned by Samples.
type SampleFilter struct {
	// keep only samples whose validation outcome matched this status
	// ("Complete", "Pending")
	ValidationStatus string
	// when set, keep only samples with (or without) validation errors
	HasErrors *bool
	// databanks whose errors don't count
	IgnoreList []string
}

// Samples returns the samples of this submission. The samples listing is not
// linked from the submission document itself: it lives under the contents
// path of the submission's self URL.
func (s *Submission) Samples(filter SampleFilter) ([]*Sample, error) {
	self := s.doc.SelfURL()
	if self == "" {
		return nil, &client.MissingLinkError{Tag: "self"}
	}
	doc, err := s.client.GetDocument(self+"/contents/samples", sampleSchema,
		client.Strict)
	if err != nil {
		return nil, err
	}

	samples := make([]*Sample, 0)
	err = collectEmbedded(s.client, doc, "samples", func(record json.RawMessage) error {
		sample, err := newSample(s.client, record)
		if err != nil {
			return err
		}
		keep, err := filter.matches(sample)
		if err != nil {
			return err
		}
		if keep {
			samples = append(samples, sample)
		}
		return nil
	})
	return samples, err
}

func (f SampleFilter) matches(sample *Sample) (bool, error) {
	if f.ValidationStatus != "" {
		result, err := sample.ValidationResult()
		if err != nil {
			return false, err
		}
		if result.Status != f.ValidationStatus {
			return false, nil
		}
	}
	if f.HasErrors != nil {
		hasErrors, err := sample.HasErrors(f.IgnoreList)
		if err != nil {
			return false, err
		}
		if hasErrors != *f.HasErrors {
			return false, nil
		}
	}
	return true, nil
}

// ValidationResults returns the validation results of every sample in this
// submission, following the `validationResults` relation. The submission is
// reloaded first when the relation is absent.
func (s *Submission) ValidationResults() ([]*ValidationResult, error) {
	if _, found := s.doc.Link("validationResults"); !found {
		if err := s.Reload(); err != nil {
			return nil, err
		}
	}
	doc, err := s.client.Follow(s.doc, "validationResults",
		validationResultSchema, client.Permissive)
	if err != nil {
		return nil, err
	}

	results := make([]*ValidationResult, 0)
	err = collectEmbedded(s.client, doc, "validationResults",
		func(record json.RawMessage) error {
			result, err := newValidationResult(s.client, record)
			if err != nil {
				return err
			}
			results = append(results, result)
			return nil
		})
	return results, err
}

// StatusCounts tallies the validation status of every sample in this
// submission ("Complete": 10, "Pending": 2).
func (s *Submission) StatusCounts() (map[string]int, error) {
	results, err := s.ValidationResults()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, result := range results {
		counts[result.Status]++
	}
	return counts, nil
}

// HasErrors reports whether any sample's validation produced an error in a
// databank outside the ignore list. Validation must have completed for every
// sample first.
func (s *Submission) HasErrors(ignoreList []string) (bool, error) {
	counts, err := s.StatusCounts()
	if err != nil {
		return false, err
	}
	if counts["Pending"] > 0 {
		return false, &NotReadyError{
			Message: fmt.Sprintf("submission %s has pending validations", s.ID),
		}
	}

	results, err := s.ValidationResults()
	if err != nil {
		return false, err
	}
	hasErrors := false
	for _, result := range results {
		if result.HasErrors(ignoreList) {
			hasErrors = true
		}
	}
	return hasErrors, nil
}

// CheckReady reports whether this submission can be finalized, by asking the
// API for its available status transitions.
func (s *Submission) CheckReady() (bool, error) {
	url := fmt.Sprintf("%s/api/submissions/%s/availableSubmissionStatuses",
		config.API.Root, s.ID)
	doc, err := s.client.GetDocument(url, nil, client.Permissive)
	if err != nil {
		return false, err
	}
	_, found := doc.EmbeddedRecords("statusDescriptions")
	return found, nil
}

// Finalize declares the submission complete and submits it for processing.
// It refuses to finalize a submission that is not ready or whose samples
// have validation errors outside the ignore list.
func (s *Submission) Finalize(ignoreList []string) (*client.Document, error) {
	ready, err := s.CheckReady()
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, &NotReadyError{
			Message: fmt.Sprintf("submission %s is not ready for finalization", s.ID),
		}
	}
	hasErrors, err := s.HasErrors(ignoreList)
	if err != nil {
		return nil, err
	}
	if hasErrors {
		return nil, &client.DataError{
			Message: fmt.Sprintf("submission %s has validation errors", s.ID),
		}
	}

	// the PUT goes to the status resource's own self link, so re-fetch both
	if err := s.Reload(); err != nil {
		return nil, err
	}
	statusDoc, err := s.client.Follow(s.doc, "submissionStatus",
		client.Schema{"status"}, client.Permissive)
	if err != nil {
		return nil, err
	}
	link, found := statusDoc.Link("submissionStatus")
	if !found {
		return nil, &client.MissingLinkError{Tag: "submissionStatus"}
	}

	slog.Info(fmt.Sprintf("Finalizing submission %s", s.ID))
	body, err := s.client.Put(link.Href, map[string]any{"status": "Submitted"}, nil)
	if err != nil {
		return nil, err
	}
	doc, err := client.ParseDocument(body, nil, client.Permissive)
	if err != nil {
		return nil, err
	}
	if err := s.UpdateStatus(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes this submission and everything in it.
func (s *Submission) Delete() error {
	link, found := s.doc.Link("self:delete")
	if !found {
		return &client.MissingLinkError{Tag: "self:delete"}
	}
	slog.Info(fmt.Sprintf("Removing submission %s", s.ID))
	return s.client.Delete(link.Href)
}

// Reload re-fetches the submission's self link and refreshes its attributes
// and status.
func (s *Submission) Reload() error {
	if err := s.client.Reload(s.doc); err != nil {
		return err
	}
	if err := s.readDoc(); err != nil {
		return err
	}
	return s.UpdateStatus()
}
