package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// a submission document as the API returns one
const SUBMISSION_BODY string = `{
  "id": "c8c86558-8d3a-4ac5-8638-7aa354291d61",
  "createdDate": "2017-07-04",
  "submissionStatus": "Draft",
  "mysterious": "value",
  "_links": {
    "self": {
      "href": "https://submission-test.ebi.ac.uk/api/submissions/c8c86558-8d3a-4ac5-8638-7aa354291d61{?projection}"
    },
    "submissionStatus": {
      "href": "https://submission-test.ebi.ac.uk/api/submissions/c8c86558-8d3a-4ac5-8638-7aa354291d61/submissionStatus"
    }
  }
}`

// a listing document with an embedded collection and a page descriptor
const LISTING_BODY string = `{
  "_embedded": {
    "submissions": [
      {"id": "one"},
      {"id": "two"}
    ]
  },
  "_links": {
    "self": {"href": "https://example.com/api/user/submissions"},
    "next": {"href": "https://example.com/api/user/submissions?page=1"}
  },
  "page": {
    "size": 20,
    "totalElements": 2,
    "totalPages": 1,
    "number": 0
  }
}`

var submissionTestSchema = Schema{"id", "createdDate", "submissionStatus"}

// tests whether a document splits links, attributes and dates correctly
func TestParseDocument(t *testing.T) {
	assert := assert.New(t)

	doc, err := ParseDocument([]byte(SUBMISSION_BODY), submissionTestSchema, Strict)
	assert.Nil(err)

	assert.Equal("c8c86558-8d3a-4ac5-8638-7aa354291d61", doc.StringAttr("id"))
	assert.Equal("Draft", doc.StringAttr("submissionStatus"))
	assert.Equal(time.Date(2017, 7, 4, 0, 0, 0, 0, time.UTC),
		doc.TimeAttr("createdDate"))

	link, found := doc.Link("submissionStatus")
	assert.True(found)
	assert.Contains(link.Href, "/submissionStatus")

	// the self link is advertised as a URI template
	assert.Equal(
		"https://submission-test.ebi.ac.uk/api/submissions/c8c86558-8d3a-4ac5-8638-7aa354291d61",
		doc.SelfURL())
	assert.Equal("c8c86558-8d3a-4ac5-8638-7aa354291d61", doc.ID())
}

// tests whether the parse mode decides the fate of unknown keys
func TestParseModes(t *testing.T) {
	assert := assert.New(t)

	strict, err := ParseDocument([]byte(SUBMISSION_BODY), submissionTestSchema, Strict)
	assert.Nil(err)
	assert.NotContains(strict.Attributes, "mysterious")
	assert.NotContains(strict.Extra, "mysterious")
	// the raw body still carries the dropped key
	assert.Contains(strict.Raw, "mysterious")

	permissive, err := ParseDocument([]byte(SUBMISSION_BODY), submissionTestSchema, Permissive)
	assert.Nil(err)
	assert.NotContains(permissive.Attributes, "mysterious")
	assert.Equal("value", permissive.Extra["mysterious"])
}

// tests whether a malformed body is a data error
func TestParseDocumentRejectsGarbage(t *testing.T) {
	_, err := ParseDocument([]byte("meow"), nil, Strict)
	assert.NotNil(t, err, "Garbage body didn't trigger an error.")
	assert.IsType(t, &DataError{}, err)
}

// tests embedded collections and the page descriptor
func TestParseListing(t *testing.T) {
	assert := assert.New(t)

	doc, err := ParseDocument([]byte(LISTING_BODY), Schema{"id"}, Strict)
	assert.Nil(err)

	records, found := doc.EmbeddedRecords("submissions")
	assert.True(found)
	assert.Len(records, 2)

	_, found = doc.EmbeddedRecords("samples")
	assert.False(found, "An absent collection should not be found.")

	assert.NotNil(doc.Page)
	assert.Equal(2, doc.Page.TotalElements)
	assert.Equal(1, doc.Page.TotalPages)
}

// tests whether a relation given as an array of links keeps the first one
func TestParseLinkArray(t *testing.T) {
	body := `{"_links": {"profile": [{"href": "https://example.com/a"}, {"href": "https://example.com/b"}]}}`
	doc, err := ParseDocument([]byte(body), nil, Strict)
	assert.Nil(t, err)
	link, found := doc.Link("profile")
	assert.True(t, found)
	assert.Equal(t, "https://example.com/a", link.Href)
}

// tests whether a lone embedded object is treated as a one-element collection
func TestParseLoneEmbeddedObject(t *testing.T) {
	body := `{"_embedded": {"candidates": {"id": "only"}}}`
	doc, err := ParseDocument([]byte(body), nil, Strict)
	assert.Nil(t, err)
	records, found := doc.EmbeddedRecords("candidates")
	assert.True(t, found)
	assert.Len(t, records, 1)
}

// tests the date normalization of date-keyed attribute values
func TestNormalizeDate(t *testing.T) {
	assert := assert.New(t)

	body := `{
	  "createdDate": "2019-03-13T14:15:00.123",
	  "releaseDate": "2019-03-13",
	  "submissionDate": "not a date",
	  "title": "2019-03-13"
	}`
	schema := Schema{"createdDate", "releaseDate", "submissionDate", "title"}
	doc, err := ParseDocument([]byte(body), schema, Strict)
	assert.Nil(err)

	assert.Equal(time.Date(2019, 3, 13, 14, 15, 0, 123000000, time.UTC),
		doc.TimeAttr("createdDate"))
	assert.Equal(time.Date(2019, 3, 13, 0, 0, 0, 0, time.UTC),
		doc.TimeAttr("releaseDate"))

	// unparseable strings stay strings, and non-date keys are left alone
	assert.Equal("not a date", doc.StringAttr("submissionDate"))
	assert.Equal("2019-03-13", doc.StringAttr("title"))
}

// tests the identity extraction from self URLs
func TestExtractID(t *testing.T) {
	tests := []struct {
		url string
		id  string
	}{
		{"https://example.com/api/submissions/feb343", "feb343"},
		{"https://example.com/api/submissions/feb343/", "feb343"},
		{"https://example.com/api/submissions/feb343{?projection}", "feb343"},
		{"https://example.com/api/teams/subs.test-team-1", "subs.test-team-1"},
		{"", ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.id, ExtractID(test.url), "for URL %s", test.url)
	}
}
