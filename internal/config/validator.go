package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wesleyorama2/grapple/querystring"
)

// ValidateConfig validates every profile in a configuration
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Profiles) == 0 {
		return fmt.Errorf("config must define at least one profile")
	}

	if cfg.Default != "" {
		if _, ok := cfg.Profiles[cfg.Default]; !ok {
			return fmt.Errorf("default profile %q is not defined", cfg.Default)
		}
	}

	for name, profile := range cfg.Profiles {
		if err := ValidateProfile(&profile); err != nil {
			return fmt.Errorf("invalid profile %q: %w", name, err)
		}
	}

	return nil
}

// ValidateProfile validates a single profile
func ValidateProfile(profile *Profile) error {
	if profile == nil {
		return fmt.Errorf("profile cannot be nil")
	}

	if profile.BaseURL != "" {
		u, err := url.Parse(profile.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base url %q: %w", profile.BaseURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base url %q must use http or https", profile.BaseURL)
		}
	}

	if profile.Proxy != "" {
		if _, err := url.Parse(profile.Proxy); err != nil {
			return fmt.Errorf("invalid proxy url %q: %w", profile.Proxy, err)
		}
	}

	if profile.Timeout != "" {
		if _, err := time.ParseDuration(profile.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", profile.Timeout, err)
		}
	}

	if err := validateAuth(profile.Auth); err != nil {
		return err
	}

	return validateQuery(profile.Query)
}

// validateAuth rejects descriptors that mix both variants. A partially
// specified descriptor is allowed; it degrades to no auth header at call
// time.
func validateAuth(auth *Auth) error {
	if auth == nil {
		return nil
	}

	hasBasic := auth.Username != "" || auth.Password != ""
	hasToken := auth.Token != ""
	if hasBasic && hasToken {
		return fmt.Errorf("auth cannot combine a basic-auth pair with a token")
	}
	if auth.AuthType != "" && !hasToken {
		return fmt.Errorf("authType requires a token")
	}

	return nil
}

// validateQuery checks the array format enum
func validateQuery(query *Query) error {
	if query == nil {
		return nil
	}

	if query.ArrayFormat != "" {
		format := querystring.ArrayFormat(query.ArrayFormat)
		if !querystring.IsValidFormat(format) {
			valid := make([]string, 0, len(querystring.ValidFormats()))
			for _, f := range querystring.ValidFormats() {
				valid = append(valid, string(f))
			}
			return fmt.Errorf("invalid arrayFormat %q, must be one of: %s",
				query.ArrayFormat, strings.Join(valid, ", "))
		}
	}

	return nil
}
