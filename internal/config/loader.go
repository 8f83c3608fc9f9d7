// Package config loads client profiles from YAML files. A profile is a
// persisted configuration record: base URL, default headers, auth
// descriptor, proxy, status gating, and query encoding options.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/grapple/http"
	"github.com/wesleyorama2/grapple/querystring"
)

// Config is the top-level configuration file
type Config struct {
	// Default names the profile used when none is selected
	Default string `yaml:"default,omitempty"`

	// Profiles maps profile names to client configurations
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile describes one client configuration
type Profile struct {
	BaseURL        string            `yaml:"baseUrl"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	Auth           *Auth             `yaml:"auth,omitempty"`
	Proxy          string            `yaml:"proxy,omitempty"`
	OnlySuccessful *bool             `yaml:"onlySuccessful,omitempty"`
	Timeout        string            `yaml:"timeout,omitempty"`
	Query          *Query            `yaml:"query,omitempty"`
}

// Auth is the YAML form of an auth descriptor: either a basic-auth pair
// or a token with an optional scheme.
type Auth struct {
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	AuthType string `yaml:"authType,omitempty"`
}

// Query holds query string encoding options. Boolean knobs are pointers
// so an absent key stays distinguishable from an explicit false.
type Query struct {
	ArrayFormat          string `yaml:"arrayFormat,omitempty"`
	ArrayFormatSeparator string `yaml:"arrayFormatSeparator,omitempty"`
	Sort                 *bool  `yaml:"sort,omitempty"`
	Strict               *bool  `yaml:"strict,omitempty"`
	SkipNull             *bool  `yaml:"skipNull,omitempty"`
	SkipEmptyString      *bool  `yaml:"skipEmptyString,omitempty"`
}

// Load reads and validates a configuration file
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Profile returns the named profile, falling back to the configured
// default when name is empty.
func (c *Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" {
		return Profile{}, fmt.Errorf("no profile selected and no default configured")
	}
	profile, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return profile, nil
}

// ClientOptions converts a profile into client construction options
func (p Profile) ClientOptions() ([]http.ClientOption, error) {
	var opts []http.ClientOption

	if p.BaseURL != "" {
		opts = append(opts, http.WithBaseURL(p.BaseURL))
	}
	for key, value := range p.Headers {
		opts = append(opts, http.WithHeader(key, value))
	}
	if p.Auth != nil {
		opts = append(opts, http.WithAuth(p.Auth.spec()))
	}
	if p.Proxy != "" {
		opts = append(opts, http.WithProxy(http.ProxySpec{URL: p.Proxy}))
	}
	if p.OnlySuccessful != nil {
		opts = append(opts, http.WithOnlySuccessful(*p.OnlySuccessful))
	}
	if p.Timeout != "" {
		timeout, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", p.Timeout, err)
		}
		opts = append(opts, http.WithTimeout(timeout))
	}
	if p.Query != nil {
		opts = append(opts, http.WithQueryOptions(p.Query.options()))
	}

	return opts, nil
}

// spec converts the YAML auth form into the client's descriptor
func (a *Auth) spec() *http.AuthSpec {
	return &http.AuthSpec{
		Username:    a.Username,
		Password:    a.Password,
		Credentials: a.Token,
		AuthType:    a.AuthType,
	}
}

// options converts the YAML query form into encoding options
func (q *Query) options() querystring.Options {
	return querystring.Options{
		ArrayFormat:          querystring.ArrayFormat(q.ArrayFormat),
		ArrayFormatSeparator: q.ArrayFormatSeparator,
		Sort:                 q.Sort,
		Strict:               q.Strict,
		SkipNull:             q.SkipNull,
		SkipEmptyString:      q.SkipEmptyString,
	}
}
