package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/redhat/virt-capacity-benchmark/feeder/records"
)

// Default connection values, matching a local single-node OpenSearch
const (
	// DefaultURL is the default OpenSearch endpoint
	DefaultURL = "http://localhost:9200"

	// DefaultUsername is the default basic-auth user
	DefaultUsername = "admin"

	// DefaultIndexPrefix is the default destination index prefix
	DefaultIndexPrefix = "kube-burner-data"

	// DefaultDataType requests marker-based detection per record
	DefaultDataType = records.TypeAuto

	// DefaultHTTPTimeout is the default timeout for store requests
	DefaultHTTPTimeout = 60 * time.Second
)

// Environment variable names for configuration overrides. Flags take
// precedence over these, which take precedence over the defaults.
const (
	EnvURL            = "OPENSEARCH_URL"
	EnvUsername       = "OPENSEARCH_USER"
	EnvPassword       = "OPENSEARCH_PASSWORD"
	EnvIndexPrefix    = "OPENSEARCH_INDEX"
	EnvDataType       = "DATA_TYPE"
	EnvOrganizationID = "ORGANIZATION_ID"
)

// Config holds one run's resolved settings. Resolution happens once, before
// the run starts; the rest of the code treats the value as immutable.
type Config struct {
	// URL is the OpenSearch endpoint
	URL string

	// Username and Password are basic-auth credentials. An empty password
	// sends unauthenticated requests.
	Username string
	Password string

	// InsecureSkipVerify disables TLS certificate validation
	InsecureSkipVerify bool

	// IndexPrefix is the destination index prefix; type-specific suffixes
	// are appended per document
	IndexPrefix string

	// DataType forces a classification for every record, or TypeAuto to
	// detect per record
	DataType records.DataType

	// OrganizationID tags every document when non-empty
	OrganizationID string

	// HTTPTimeout bounds each request to the store
	HTTPTimeout time.Duration
}

// Default returns a Config with all default values
func Default() *Config {
	return &Config{
		URL:         DefaultURL,
		Username:    DefaultUsername,
		IndexPrefix: DefaultIndexPrefix,
		DataType:    DefaultDataType,
		HTTPTimeout: DefaultHTTPTimeout,
	}
}

// FromEnv returns a Config with values from environment variables, falling
// back to defaults
func FromEnv() *Config {
	cfg := Default()

	if v := os.Getenv(EnvURL); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv(EnvIndexPrefix); v != "" {
		cfg.IndexPrefix = v
	}
	if v := os.Getenv(EnvDataType); v != "" {
		if t, err := records.ParseDataType(v); err == nil {
			cfg.DataType = t
		}
	}
	if v := os.Getenv(EnvOrganizationID); v != "" {
		cfg.OrganizationID = v
	}

	return cfg
}

// Validate checks the resolved configuration before any work starts
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("store URL is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid store URL %q: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid store URL %q: scheme must be http or https", c.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid store URL %q: missing host", c.URL)
	}

	if c.IndexPrefix == "" {
		return fmt.Errorf("index prefix is required")
	}

	if _, err := records.ParseDataType(string(c.DataType)); err != nil {
		return err
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got %v", c.HTTPTimeout)
	}

	return nil
}

// WithURL returns a copy with an updated endpoint
func (c *Config) WithURL(u string) *Config {
	cp := *c
	cp.URL = u
	return &cp
}

// WithUsername returns a copy with an updated basic-auth user
func (c *Config) WithUsername(u string) *Config {
	cp := *c
	cp.Username = u
	return &cp
}

// WithPassword returns a copy with an updated basic-auth password
func (c *Config) WithPassword(p string) *Config {
	cp := *c
	cp.Password = p
	return &cp
}

// WithInsecureSkipVerify returns a copy with updated TLS verification
func (c *Config) WithInsecureSkipVerify(skip bool) *Config {
	cp := *c
	cp.InsecureSkipVerify = skip
	return &cp
}

// WithIndexPrefix returns a copy with an updated index prefix
func (c *Config) WithIndexPrefix(p string) *Config {
	cp := *c
	cp.IndexPrefix = p
	return &cp
}

// WithDataType returns a copy with an updated data type
func (c *Config) WithDataType(t records.DataType) *Config {
	cp := *c
	cp.DataType = t
	return &cp
}

// WithOrganizationID returns a copy with an updated organization tag
func (c *Config) WithOrganizationID(id string) *Config {
	cp := *c
	cp.OrganizationID = id
	return &cp
}

// WithHTTPTimeout returns a copy with an updated request timeout
func (c *Config) WithHTTPTimeout(d time.Duration) *Config {
	cp := *c
	cp.HTTPTimeout = d
	return &cp
}
