package http

import "fmt"

// StatusError is returned when only-successful gating is enabled and the
// response status code is 400 or greater. It carries the raw response so
// callers can still inspect headers and body.
type StatusError struct {
	// StatusCode is the numeric HTTP status code (e.g., 404)
	StatusCode int

	// Status is the HTTP status line text (e.g., "404 Not Found")
	Status string

	// Response is the raw response that triggered the error
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %s", e.Status)
}

// DecodeError is returned when a response body decode fails after the
// status gate already passed. It is distinct from StatusError: the call
// itself succeeded, the body just wasn't what the caller asked for.
type DecodeError struct {
	// Format names the attempted decode (e.g., "json")
	Format string

	// Err is the underlying decode failure
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response body: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnsupportedBodyTypeError is returned when a request body value has a
// shape this layer cannot encode (e.g., a bare number or boolean).
type UnsupportedBodyTypeError struct {
	// Type is the Go type of the offending value
	Type string
}

func (e *UnsupportedBodyTypeError) Error() string {
	return fmt.Sprintf("unsupported body type %s", e.Type)
}

// UnsupportedContentTypeError is returned when a structured record body is
// combined with a Content-Type this layer cannot encode into.
type UnsupportedContentTypeError struct {
	// ContentType is the offending header value
	ContentType string
}

func (e *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("unsupported content type %q for structured body", e.ContentType)
}
