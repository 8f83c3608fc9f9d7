package http

import (
	"time"

	"github.com/wesleyorama2/grapple/querystring"
)

// Request represents one HTTP call with a fluent builder pattern. It
// carries the per-call overrides that are merged onto the client's
// persisted configuration when the call executes.
//
// Example:
//
//	req := http.NewRequest("GET", "/users").
//	    WithQueryParam("limit", 10).
//	    WithHeader("Accept", "application/json")
type Request struct {
	Method string
	Path   string

	Headers map[string]string
	Query   map[string]any
	Body    any

	// QueryOptions overrides the client's query encoding options
	QueryOptions *querystring.Options

	// Auth overrides the client's auth descriptor for this call
	Auth *AuthSpec

	// OnlySuccessful overrides the client's status gating for this call
	OnlySuccessful *bool

	// Timeout overrides the client's timeout for this call
	Timeout time.Duration
}

// NewRequest creates a new request with the specified method and path
func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Headers: make(map[string]string),
		Query:   make(map[string]any),
	}
}

// WithHeader adds a header to the request
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithHeaders adds multiple headers to the request
func (r *Request) WithHeaders(headers map[string]string) *Request {
	for key, value := range headers {
		r.Headers[key] = value
	}
	return r
}

// WithQueryParam adds a query parameter. Array values serialize per the
// effective query encoding options.
func (r *Request) WithQueryParam(key string, value any) *Request {
	r.Query[key] = value
	return r
}

// WithQuery adds multiple query parameters
func (r *Request) WithQuery(params map[string]any) *Request {
	for key, value := range params {
		r.Query[key] = value
	}
	return r
}

// WithQueryOptions overrides the query encoding options for this call
func (r *Request) WithQueryOptions(opts querystring.Options) *Request {
	r.QueryOptions = &opts
	return r
}

// WithBody sets the body of the request
func (r *Request) WithBody(body any) *Request {
	r.Body = body
	return r
}

// WithAuth overrides the client's auth descriptor for this call
func (r *Request) WithAuth(auth *AuthSpec) *Request {
	r.Auth = auth
	return r
}

// WithBasicAuth overrides the client's auth with a basic-auth pair
func (r *Request) WithBasicAuth(username, password string) *Request {
	r.Auth = BasicAuth(username, password)
	return r
}

// WithOnlySuccessful overrides status gating for this call
func (r *Request) WithOnlySuccessful(only bool) *Request {
	r.OnlySuccessful = &only
	return r
}

// WithTimeout overrides the client timeout for this call
func (r *Request) WithTimeout(timeout time.Duration) *Request {
	r.Timeout = timeout
	return r
}

// overrides converts the request into the per-call override record handed
// to the options merger.
func (r *Request) overrides() Options {
	return Options{
		Method:         r.Method,
		Headers:        r.Headers,
		Query:          r.Query,
		Body:           r.Body,
		QueryOptions:   r.QueryOptions,
		Auth:           r.Auth,
		OnlySuccessful: r.OnlySuccessful,
		Timeout:        r.Timeout,
	}
}
