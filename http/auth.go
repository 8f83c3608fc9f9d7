package http

import (
	"encoding/base64"
	"strings"
)

// DefaultAuthType is the Authorization scheme used for token credentials
// when none is configured.
const DefaultAuthType = "Bearer"

// AuthSpec describes how to produce an Authorization header. Exactly one
// of the three variants is used, resolved in precedence order:
//
//  1. Username/Password (basic auth)
//  2. CredentialsFunc (a provider invoked fresh on every call)
//  3. Credentials (a static token)
//
// A nil or empty AuthSpec resolves to no Authorization header at all;
// partially specified descriptors degrade the same way rather than
// failing the request.
type AuthSpec struct {
	// Username and Password form a basic-auth pair
	Username string
	Password string

	// Credentials is a static credential string
	Credentials string

	// CredentialsFunc produces a credential string at call time
	CredentialsFunc func() (string, error)

	// AuthType is the Authorization scheme for token credentials
	// (default: Bearer). Basic auth ignores it.
	AuthType string
}

// BasicAuth creates an AuthSpec for HTTP basic authentication
func BasicAuth(username, password string) *AuthSpec {
	return &AuthSpec{Username: username, Password: password}
}

// TokenAuth creates an AuthSpec for a static token credential
func TokenAuth(token string) *AuthSpec {
	return &AuthSpec{Credentials: token}
}

// TokenProviderAuth creates an AuthSpec whose credential is produced by fn
// on every call.
func TokenProviderAuth(fn func() (string, error)) *AuthSpec {
	return &AuthSpec{CredentialsFunc: fn}
}

// clone returns a copy so merged option sets never alias the original
func (a *AuthSpec) clone() *AuthSpec {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// resolve produces the Authorization header value. The second return is
// false when the descriptor is absent, empty, or its provider failed.
func (a *AuthSpec) resolve() (string, bool) {
	if a == nil {
		return "", false
	}

	// Basic-auth pair takes precedence
	if a.Username != "" || a.Password != "" {
		creds := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		return "Basic " + creds, true
	}

	scheme := a.AuthType
	if scheme == "" {
		scheme = DefaultAuthType
	}

	// A provider is evaluated fresh on every call
	if a.CredentialsFunc != nil {
		token, err := a.CredentialsFunc()
		if err != nil || strings.TrimSpace(token) == "" {
			return "", false
		}
		return scheme + " " + token, true
	}

	if a.Credentials != "" {
		return scheme + " " + a.Credentials, true
	}

	return "", false
}
