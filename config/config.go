package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// a type with submission API configuration parameters
type apiConfig struct {
	// base URL for the submission service (no trailing slash)
	Root string `yaml:"root"`
	// timeout for HTTP requests, in seconds
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// a type with AAP (authentication/authorization) service parameters
type aapConfig struct {
	// base URL for the AAP service (no trailing slash)
	URL string `yaml:"url"`
}

// a type with activity journal parameters
type journalConfig struct {
	// directory in which the journal database is kept (empty disables the journal)
	DataDirectory string `yaml:"data_directory"`
}

// global config variables
var API apiConfig
var AAP aapConfig
var Journal journalConfig

// This struct performs the unmarshalling from the YAML config file and then
// copies its fields to the globals above.
type configFile struct {
	API     apiConfig     `yaml:"api"`
	AAP     aapConfig     `yaml:"aap"`
	Journal journalConfig `yaml:"journal"`
}

// Timeout returns the configured request timeout as a duration.
func (c apiConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// This helper reads configuration data, returning an error indicating success
// or failure. All environment variables of the form ${ENV_VAR} are expanded.
func readConfig(bytes []byte) error {
	// Before we do anything else, expand any provided environment variables.
	bytes = []byte(os.ExpandEnv(string(bytes)))

	var conf configFile
	conf.API.Root = "https://submission-test.ebi.ac.uk"
	conf.API.TimeoutSeconds = 30
	conf.AAP.URL = "https://explore.api.aai.ebi.ac.uk"
	err := yaml.Unmarshal(bytes, &conf)
	if err != nil {
		return fmt.Errorf("Couldn't parse configuration data: %s", err)
	}

	// copy the config data into place
	API = conf.API
	AAP = conf.AAP
	Journal = conf.Journal

	return nil
}

// This helper validates a service base URL, returning an error indicating
// success or failure.
func validateServiceURL(name, serviceURL string) error {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("Invalid %s URL: %s", name, serviceURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("Invalid %s URL scheme: %s (must be http or https)",
			name, serviceURL)
	}
	if u.Host == "" {
		return fmt.Errorf("Invalid %s URL: %s (no host)", name, serviceURL)
	}
	return nil
}

// This helper validates the configuration globals, returning an error that
// indicates success or failure.
func validateConfig() error {
	if err := validateServiceURL("api.root", API.Root); err != nil {
		return err
	}
	if err := validateServiceURL("aap.url", AAP.URL); err != nil {
		return err
	}
	if API.TimeoutSeconds <= 0 {
		return fmt.Errorf("Invalid api.timeout_seconds: %d (must be positive)",
			API.TimeoutSeconds)
	}

	// the base URLs are joined with resource paths, so trailing slashes
	// produce malformed resource URLs
	API.Root = strings.TrimSuffix(API.Root, "/")
	AAP.URL = strings.TrimSuffix(AAP.URL, "/")
	return nil
}

// Initializes the client configuration using the given YAML byte data.
func Init(yamlData []byte) error {
	err := readConfig(yamlData)
	if err != nil {
		return err
	}
	return validateConfig()
}
