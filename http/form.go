package http

import (
	"context"

	"github.com/wesleyorama2/grapple/form"
)

// SubmitForm POSTs the form session to the given path. The submission
// routes through the same options-merge and status-gate pipeline as any
// other call; the body encoder picks up the session's multipart content
// type and length.
//
// The form session is shared mutable state: concurrent Append or Reset
// calls racing with an in-flight submission must be serialized by the
// caller.
func (c *Client) SubmitForm(ctx context.Context, path string, f *form.Form) (*Response, error) {
	return c.Do(ctx, NewRequest("POST", path).WithBody(f))
}

// SubmitFormJSON POSTs the form session with status gating forced on,
// sets Accept: application/json, and decodes the response body into v.
func (c *Client) SubmitFormJSON(ctx context.Context, path string, f *form.Form, v any) error {
	req := NewRequest("POST", path).
		WithBody(f).
		WithHeader("Accept", ContentTypeJSON)
	return c.DoJSON(ctx, req, v)
}
