package usi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cnr-ibba/usirest/client"
)

// tests the normalization of the team field's wire shapes
func TestTeamRef(t *testing.T) {
	assert := assert.New(t)

	// the team may arrive as a plain name
	ref, err := teamRef("subs.test-team-1")
	assert.Nil(err)
	assert.Equal("subs.test-team-1", ref.Name)

	// or as an object carrying a name
	ref, err = teamRef(map[string]any{"name": "subs.test-team-1"})
	assert.Nil(err)
	assert.Equal("subs.test-team-1", ref.Name)

	// an absent team is an empty reference
	ref, err = teamRef(nil)
	assert.Nil(err)
	assert.Equal("", ref.Name)

	// anything else is malformed data
	_, err = teamRef(42)
	assert.NotNil(err, "A numeric team didn't trigger an error.")
	assert.IsType(&client.DataError{}, err)

	_, err = teamRef(map[string]any{"label": "no name here"})
	assert.NotNil(err, "A nameless team object didn't trigger an error.")
}
