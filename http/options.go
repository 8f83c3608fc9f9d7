package http

import (
	"time"

	"github.com/wesleyorama2/grapple/querystring"
)

// RedirectPolicy controls how the transport handles 3xx responses
type RedirectPolicy string

const (
	// RedirectFollow follows redirects up to the Follow limit (default)
	RedirectFollow RedirectPolicy = "follow"
	// RedirectError fails the call when a redirect is encountered
	RedirectError RedirectPolicy = "error"
	// RedirectManual returns the 3xx response without following it
	RedirectManual RedirectPolicy = "manual"
)

// DefaultMaxRedirects caps redirect chains when no Follow limit is set
const DefaultMaxRedirects = 20

// Options is the configuration record for a client or a single call.
// Zero values mean "unset"; boolean knobs use pointers so a merge can
// tell unset apart from false.
type Options struct {
	// BaseURL is prepended to request paths
	BaseURL string

	// Headers are sent with every request. Keys are stored as given;
	// case-insensitive lookup is the transport's concern.
	Headers map[string]string

	// Method overrides the request method
	Method string

	// Body is the request body value; see the body encoder for the
	// accepted shapes
	Body any

	// Redirect selects the redirect policy
	Redirect RedirectPolicy

	// Follow caps the number of redirects followed
	Follow int

	// OnlySuccessful converts responses with status >= 400 into a
	// StatusError when true
	OnlySuccessful *bool

	// Auth produces the Authorization header; it is resolved during
	// option preparation and never reaches the transport
	Auth *AuthSpec

	// Proxy routes requests through a forward proxy
	Proxy *ProxySpec

	// Timeout bounds the whole call
	Timeout time.Duration

	// MaxResponseSize caps how many body bytes are read (0 = unlimited)
	MaxResponseSize int64

	// Query holds query parameters for the call
	Query map[string]any

	// QueryOptions configures query string encoding
	QueryOptions *querystring.Options
}

// ProxySpec configures a forward proxy. Disabled bypasses any proxy,
// including environment-configured ones.
type ProxySpec struct {
	URL      string
	Disabled bool
}

// normalize guarantees map-valued fields are present so merges stay
// associative.
func (o *Options) normalize() {
	if o.Headers == nil {
		o.Headers = make(map[string]string)
	}
	if o.Query == nil {
		o.Query = make(map[string]any)
	}
}

// clone deep-copies the record so callers can keep mutating their copy
func (o Options) clone() Options {
	c := o

	c.Headers = make(map[string]string, len(o.Headers))
	for k, v := range o.Headers {
		c.Headers[k] = v
	}

	c.Query = make(map[string]any, len(o.Query))
	for k, v := range o.Query {
		c.Query[k] = v
	}

	c.Auth = o.Auth.clone()
	if o.Proxy != nil {
		p := *o.Proxy
		c.Proxy = &p
	}
	if o.QueryOptions != nil {
		q := *o.QueryOptions
		c.QueryOptions = &q
	}

	return c
}

// MergeOptions deep-merges override onto a copy of base and returns the
// result. Override values win on conflicting scalar keys, map values are
// unioned with override winning per key, and array-valued query params
// are replaced wholesale rather than concatenated. Neither input is
// mutated.
func MergeOptions(base, override Options) Options {
	merged := base.clone()
	merged.normalize()

	if override.BaseURL != "" {
		merged.BaseURL = override.BaseURL
	}
	if override.Method != "" {
		merged.Method = override.Method
	}
	if override.Body != nil {
		merged.Body = override.Body
	}
	if override.Redirect != "" {
		merged.Redirect = override.Redirect
	}
	if override.Follow != 0 {
		merged.Follow = override.Follow
	}
	if override.OnlySuccessful != nil {
		v := *override.OnlySuccessful
		merged.OnlySuccessful = &v
	}
	if override.Auth != nil {
		merged.Auth = override.Auth.clone()
	}
	if override.Proxy != nil {
		p := *override.Proxy
		merged.Proxy = &p
	}
	if override.Timeout != 0 {
		merged.Timeout = override.Timeout
	}
	if override.MaxResponseSize != 0 {
		merged.MaxResponseSize = override.MaxResponseSize
	}

	// Maps union, override wins per key. Array values replace wholesale:
	// a repeated call must not accumulate the same array twice.
	for k, v := range override.Headers {
		merged.Headers[k] = v
	}
	for k, v := range override.Query {
		merged.Query[k] = v
	}

	if override.QueryOptions != nil {
		if merged.QueryOptions == nil {
			q := *override.QueryOptions
			merged.QueryOptions = &q
		} else {
			q := querystring.Merge(*merged.QueryOptions, *override.QueryOptions)
			merged.QueryOptions = &q
		}
	}

	return merged
}

// prepareOptions derives the effective, transport-ready option set for one
// call: merge, then auth resolution. The resolved Authorization value is
// installed as a plain header and the transient auth descriptor is
// dropped; the transport has no knowledge of that concept. A descriptor
// that resolves to nothing leaves any explicit Authorization header alone.
func prepareOptions(defaults, overrides Options) Options {
	eff := MergeOptions(defaults, overrides)

	if header, ok := eff.Auth.resolve(); ok {
		eff.Headers["Authorization"] = header
	}
	eff.Auth = nil

	return eff
}

// onlySuccessful reads the gating flag, defaulting to false
func (o Options) onlySuccessful() bool {
	return o.OnlySuccessful != nil && *o.OnlySuccessful
}

// queryOptions reads the encoding options, defaulting to zero options
func (o Options) queryOptions() querystring.Options {
	if o.QueryOptions == nil {
		return querystring.Options{}
	}
	return *o.QueryOptions
}
