package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// a complete configuration with every section present
const VALID_CONFIG string = `
api:
  root: https://submission.ebi.ac.uk
  timeout_seconds: 10
aap:
  url: https://api.aai.ebi.ac.uk
journal:
  data_directory: /tmp/usirest-journal
`

// tests whether config.Init fills in defaults for blank input
func TestInitAppliesDefaults(t *testing.T) {
	err := Init([]byte(""))
	assert.Nil(t, err, "Blank config triggered an error.")
	assert.Equal(t, "https://submission-test.ebi.ac.uk", API.Root)
	assert.Equal(t, "https://explore.api.aai.ebi.ac.uk", AAP.URL)
	assert.Equal(t, 30*time.Second, API.Timeout())
	assert.Equal(t, "", Journal.DataDirectory)
}

// tests whether config.Init accepts a complete configuration
func TestInitAcceptsValidInput(t *testing.T) {
	err := Init([]byte(VALID_CONFIG))
	assert.Nil(t, err, "Valid config triggered an error.")
	assert.Equal(t, "https://submission.ebi.ac.uk", API.Root)
	assert.Equal(t, 10*time.Second, API.Timeout())
	assert.Equal(t, "https://api.aai.ebi.ac.uk", AAP.URL)
	assert.Equal(t, "/tmp/usirest-journal", Journal.DataDirectory)
}

// tests whether config.Init reports an error for malformed YAML
func TestInitRejectsMalformedInput(t *testing.T) {
	err := Init([]byte("api: [not, a, mapping]"))
	assert.NotNil(t, err, "Malformed config didn't trigger an error.")
}

// tests whether config.Init rejects a base URL with a bad scheme
func TestInitRejectsBadScheme(t *testing.T) {
	yaml := "api:\n  root: ftp://submission.ebi.ac.uk\n"
	err := Init([]byte(yaml))
	assert.NotNil(t, err, "Config with bad URL scheme didn't trigger an error.")
}

// tests whether config.Init rejects a base URL with no host
func TestInitRejectsHostlessURL(t *testing.T) {
	yaml := "aap:\n  url: https://\n"
	err := Init([]byte(yaml))
	assert.NotNil(t, err, "Config with hostless URL didn't trigger an error.")
}

// tests whether config.Init rejects a non-positive timeout
func TestInitRejectsBadTimeout(t *testing.T) {
	yaml := "api:\n  timeout_seconds: -1\n"
	err := Init([]byte(yaml))
	assert.NotNil(t, err, "Config with bad timeout didn't trigger an error.")
}

// tests whether trailing slashes are stripped from base URLs
func TestInitTrimsTrailingSlashes(t *testing.T) {
	yaml := "api:\n  root: https://submission.ebi.ac.uk/\naap:\n  url: https://api.aai.ebi.ac.uk/\n"
	err := Init([]byte(yaml))
	assert.Nil(t, err)
	assert.Equal(t, "https://submission.ebi.ac.uk", API.Root)
	assert.Equal(t, "https://api.aai.ebi.ac.uk", AAP.URL)
}

// tests whether environment variables are expanded in config data
func TestInitExpandsEnvironmentVariables(t *testing.T) {
	os.Setenv("USIREST_TEST_ROOT", "https://submission.ebi.ac.uk")
	defer os.Unsetenv("USIREST_TEST_ROOT")

	yaml := "api:\n  root: ${USIREST_TEST_ROOT}\n"
	err := Init([]byte(yaml))
	assert.Nil(t, err)
	assert.Equal(t, "https://submission.ebi.ac.uk", API.Root)
}
