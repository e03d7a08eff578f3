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
	"time"

	"github.com/cnr-ibba/usirest/client"
)

var sampleSchema = client.Schema{
	"alias", "team", "title", "description", "attributes",
	"sampleRelationships", "taxonId", "taxon", "releaseDate",
	"createdDate", "lastModifiedDate", "createdBy", "lastModifiedBy",
	"accession",
}

// A USI sample: one biosample record inside a submission.
type Sample struct {
	client *client.Client
	doc    *client.Document

	// identity derived from the self link
	Name string
	// the sample alias (used to reference the same object across systems)
	Alias       string
	Team        TeamRef
	Title       string
	Description string
	// free-form sample attributes
	Attributes map[string]any
	TaxonID    int64
	Taxon      string
	// when this sample will be released to the public
	ReleaseDate      time.Time
	CreatedDate      time.Time
	LastModifiedDate time.Time
	CreatedBy        string
	LastModifiedBy   string
	// the biosample accession, assigned after submission
	Accession string
}

func newSample(c *client.Client, raw []byte) (*Sample, error) {
	doc, err := client.ParseDocument(raw, sampleSchema, client.Strict)
	if err != nil {
		return nil, err
	}
	sample := Sample{client: c, doc: doc}
	if err := sample.readDoc(); err != nil {
		return nil, err
	}
	return &sample, nil
}

func (s *Sample) readDoc() error {
	s.Name = s.doc.ID()
	s.Alias = s.doc.StringAttr("alias")
	s.Title = s.doc.StringAttr("title")
	s.Description = s.doc.StringAttr("description")
	s.Taxon = s.doc.StringAttr("taxon")
	s.Accession = s.doc.StringAttr("accession")
	s.CreatedBy = s.doc.StringAttr("createdBy")
	s.LastModifiedBy = s.doc.StringAttr("lastModifiedBy")
	s.ReleaseDate = s.doc.TimeAttr("releaseDate")
	s.CreatedDate = s.doc.TimeAttr("createdDate")
	s.LastModifiedDate = s.doc.TimeAttr("lastModifiedDate")
	if taxonID, ok := s.doc.Attributes["taxonId"].(float64); ok {
		s.TaxonID = int64(taxonID)
	}
	if attributes, ok := s.doc.Attributes["attributes"].(map[string]any); ok {
		s.Attributes = attributes
	}

	var err error
	s.Team, err = teamRef(s.doc.Attributes["team"])
	return err
}

func (s *Sample) String() string {
	if s.Accession != "" {
		return fmt.Sprintf("%s (%s)", s.Accession, s.Title)
	}
	return fmt.Sprintf("%s (%s)", s.Alias, s.Title)
}

// Delete removes this sample from its submission.
func (s *Sample) Delete() error {
	link, found := s.doc.Link("self:delete")
	if !found {
		return &client.MissingLinkError{Tag: "self:delete"}
	}
	slog.Info(fmt.Sprintf("Removing sample %s from submission", s.Name))
	return s.client.Delete(link.Href)
}

// Reload re-fetches the sample's self link and refreshes its attributes.
func (s *Sample) Reload() error {
	if err := s.client.Reload(s.doc); err != nil {
		return err
	}
	return s.readDoc()
}

// Patch updates the sample by PATCHing the given data against its self link,
// then reloads it. A missing team relationship or release date in the data is
// filled with defaults, as on creation.
func (s *Sample) Patch(sampleData map[string]any) error {
	sampleData = withTeamRelationships(sampleData, s.Team.Name)
	sampleData = withReleaseDate(sampleData)

	self := s.doc.SelfURL()
	if self == "" {
		return &client.MissingLinkError{Tag: "self"}
	}
	slog.Info(fmt.Sprintf("Patching sample %s", s.Name))
	if _, err := s.client.Patch(self, sampleData, nil); err != nil {
		return err
	}
	return s.Reload()
}

// ValidationResult follows the sample's `validationResult` relation. The
// relation's document shape varies across deployments, so it is parsed
// permissively.
func (s *Sample) ValidationResult() (*ValidationResult, error) {
	doc, err := s.client.Follow(s.doc, "validationResult",
		validationResultSchema, client.Permissive)
	if err != nil {
		return nil, err
	}
	result := ValidationResult{client: s.client, doc: doc}
	result.readDoc()
	return &result, nil
}

// HasErrors reports whether the sample's validation produced an error in any
// databank outside the ignore list.
func (s *Sample) HasErrors(ignoreList []string) (bool, error) {
	result, err := s.ValidationResult()
	if err != nil {
		return false, err
	}
	hasErrors := result.HasErrors(ignoreList)
	if hasErrors {
		slog.Error(fmt.Sprintf("Got error(s) for %s", s))
	}
	return hasErrors, nil
}

// payload-completion helpers: sample data sent to the API must carry a team
// on each relationship and a release date; missing ones are filled in with
// defaults. Both helpers copy the map rather than mutating the caller's.

func withTeamRelationships(sampleData map[string]any, team string) map[string]any {
	copied := make(map[string]any, len(sampleData))
	for key, value := range sampleData {
		copied[key] = value
	}

	relationships, ok := copied["sampleRelationships"].([]any)
	if !ok {
		return copied
	}
	completed := make([]any, len(relationships))
	for i, entry := range relationships {
		relationship, ok := entry.(map[string]any)
		if ok {
			if _, found := relationship["team"]; !found {
				slog.Debug(fmt.Sprintf("Adding %s to relationship", team))
				patched := make(map[string]any, len(relationship)+1)
				for key, value := range relationship {
					patched[key] = value
				}
				patched["team"] = team
				completed[i] = patched
				continue
			}
		}
		completed[i] = entry
	}
	copied["sampleRelationships"] = completed
	return copied
}

func withReleaseDate(sampleData map[string]any) map[string]any {
	copied := make(map[string]any, len(sampleData))
	for key, value := range sampleData {
		copied[key] = value
	}

	if _, found := copied["releaseDate"]; !found {
		today := time.Now().Format("2006-01-02")
		slog.Warn(fmt.Sprintf("Adding %s as releaseDate", today))
		copied["releaseDate"] = today
	}
	return copied
}
