package config

import (
	"testing"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name:    "no profiles",
			cfg:     &Config{},
			wantErr: true,
		},
		{
			name: "valid",
			cfg: &Config{Profiles: map[string]Profile{
				"a": {BaseURL: "https://example.com"},
			}},
			wantErr: false,
		},
		{
			name: "default names missing profile",
			cfg: &Config{
				Default: "missing",
				Profiles: map[string]Profile{
					"a": {BaseURL: "https://example.com"},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	sortOff := false

	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{
			name:    "empty profile",
			profile: Profile{},
			wantErr: false,
		},
		{
			name:    "https base url",
			profile: Profile{BaseURL: "https://example.com"},
			wantErr: false,
		},
		{
			name:    "non-http scheme",
			profile: Profile{BaseURL: "ftp://example.com"},
			wantErr: true,
		},
		{
			name:    "bad timeout",
			profile: Profile{Timeout: "soon"},
			wantErr: true,
		},
		{
			name:    "good timeout",
			profile: Profile{Timeout: "1m30s"},
			wantErr: false,
		},
		{
			name:    "basic auth",
			profile: Profile{Auth: &Auth{Username: "u", Password: "p"}},
			wantErr: false,
		},
		{
			name:    "token auth with scheme",
			profile: Profile{Auth: &Auth{Token: "t", AuthType: "Token"}},
			wantErr: false,
		},
		{
			name:    "mixed auth variants",
			profile: Profile{Auth: &Auth{Username: "u", Token: "t"}},
			wantErr: true,
		},
		{
			name:    "authType without token",
			profile: Profile{Auth: &Auth{AuthType: "Token"}},
			wantErr: true,
		},
		{
			name:    "username only degrades, still valid",
			profile: Profile{Auth: &Auth{Username: "u"}},
			wantErr: false,
		},
		{
			name:    "valid query options",
			profile: Profile{Query: &Query{ArrayFormat: "bracket", Sort: &sortOff}},
			wantErr: false,
		},
		{
			name:    "invalid array format",
			profile: Profile{Query: &Query{ArrayFormat: "csv"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfile(&tt.profile)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProfile() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
