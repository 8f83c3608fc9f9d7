package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/wesleyorama2/grapple/querystring"
)

// DefaultTimeout bounds calls when no timeout is configured
const DefaultTimeout = 30 * time.Second

// ErrRedirect is returned when the redirect policy is RedirectError and
// the server responds with a redirect.
var ErrRedirect = errors.New("redirect refused by policy")

// Client is an HTTP convenience client. It persists a configuration
// record created at construction; every call merges its own overrides
// onto a copy, so concurrent calls never race on shared state. Mutators
// (SetAuth, SetBaseURL, ...) take effect on subsequent calls only.
type Client struct {
	httpClient *http.Client
	defaults   Options
	recorder   *Recorder
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new client with the given options
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{},
		defaults: Options{
			Timeout: DefaultTimeout,
		},
	}
	client.defaults.normalize()

	for _, option := range options {
		option(client)
	}

	return client
}

// WithBaseURL sets the base URL for the client
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.defaults.BaseURL = baseURL
	}
}

// WithTimeout sets the default timeout for calls
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.defaults.Timeout = timeout
	}
}

// WithHeader adds a default header sent with every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaults.Headers[key] = value
	}
}

// WithAuth sets the client's auth descriptor
func WithAuth(auth *AuthSpec) ClientOption {
	return func(c *Client) {
		c.defaults.Auth = auth
	}
}

// WithOnlySuccessful enables status gating: responses with status >= 400
// become StatusErrors.
func WithOnlySuccessful(only bool) ClientOption {
	return func(c *Client) {
		c.defaults.OnlySuccessful = &only
	}
}

// WithProxy routes requests through a forward proxy
func WithProxy(proxy ProxySpec) ClientOption {
	return func(c *Client) {
		p := proxy
		c.defaults.Proxy = &p
	}
}

// WithRedirectPolicy sets the redirect policy
func WithRedirectPolicy(policy RedirectPolicy) ClientOption {
	return func(c *Client) {
		c.defaults.Redirect = policy
	}
}

// WithFollow caps the number of redirects followed
func WithFollow(max int) ClientOption {
	return func(c *Client) {
		c.defaults.Follow = max
	}
}

// WithMaxResponseSize caps how many response body bytes are read
func WithMaxResponseSize(n int64) ClientOption {
	return func(c *Client) {
		c.defaults.MaxResponseSize = n
	}
}

// WithQueryOptions sets the client's query encoding options
func WithQueryOptions(opts querystring.Options) ClientOption {
	return func(c *Client) {
		c.defaults.QueryOptions = &opts
	}
}

// WithHTTPClient sets a custom underlying transport client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRecorder installs a latency recorder fed by every completed call
func WithRecorder(r *Recorder) ClientOption {
	return func(c *Client) {
		c.recorder = r
	}
}

// SetAuth replaces the persisted auth descriptor.
// Takes effect on subsequent calls, never retroactively.
func (c *Client) SetAuth(auth *AuthSpec) {
	c.defaults.Auth = auth
}

// SetBasicAuth replaces the persisted auth with a basic-auth pair
func (c *Client) SetBasicAuth(username, password string) {
	c.defaults.Auth = BasicAuth(username, password)
}

// SetBaseURL replaces the persisted base URL
func (c *Client) SetBaseURL(baseURL string) {
	c.defaults.BaseURL = baseURL
}

// SetOnlySuccessful replaces the persisted status gating flag
func (c *Client) SetOnlySuccessful(only bool) {
	c.defaults.OnlySuccessful = &only
}

// SetProxy replaces the persisted proxy configuration
func (c *Client) SetProxy(proxy ProxySpec) {
	p := proxy
	c.defaults.Proxy = &p
}

// Do executes the request: merge options, resolve auth, encode query and
// body, run the transport call, then apply the status gate. The original
// client configuration is never mutated; each call works on its own
// effective copy.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	eff := prepareOptions(c.defaults, req.overrides())

	httpReq, err := c.buildHTTPRequest(ctx, eff, req.Path)
	if err != nil {
		return nil, err
	}

	resp, err := c.execute(ctx, httpReq, eff)
	if err != nil {
		return nil, err
	}

	if c.recorder != nil {
		c.recorder.Record(resp.Timing.TotalTime)
	}

	// Status gate: only-successful converts >= 400 into a typed error
	// carrying the raw response. Below 400 the response passes through
	// unchanged.
	if eff.onlySuccessful() && resp.StatusCode >= 400 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Response:   resp,
		}
	}

	return resp, nil
}

// buildHTTPRequest turns effective options into a transport request
func (c *Client) buildHTTPRequest(ctx context.Context, eff Options, path string) (*http.Request, error) {
	fullURL, err := buildURL(eff, path)
	if err != nil {
		return nil, err
	}

	body, err := prepareBody(eff.Body, eff.Headers["Content-Type"], eff.queryOptions())
	if err != nil {
		return nil, err
	}

	method := eff.Method
	if method == "" {
		method = "GET"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, body.reader)
	if err != nil {
		return nil, err
	}
	if body.reader != nil && body.length >= 0 {
		httpReq.ContentLength = body.length
	}

	for key, value := range eff.Headers {
		httpReq.Header.Set(key, value)
	}
	// The body encoder only proposes a default content type
	if body.contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", body.contentType)
	}

	return httpReq, nil
}

// buildURL joins the base URL, path, and encoded query parameters
func buildURL(eff Options, path string) (string, error) {
	reqURL, err := resolveTarget(strings.TrimSpace(eff.BaseURL), path)
	if err != nil {
		return "", err
	}

	full := reqURL.String()
	if query := querystring.Prepare(eff.Query, eff.queryOptions()); query != "" {
		if strings.Contains(full, "?") {
			full += "&" + query[1:]
		} else {
			full += query
		}
	}

	return full, nil
}

// resolveTarget resolves the request path against the base URL. Paths may
// be absolute URLs, in which case the base URL is ignored. An inline query
// string on the path stays a query string, it is never folded into the
// path component.
func resolveTarget(baseURL, reqPath string) (*url.URL, error) {
	rel, err := url.Parse(reqPath)
	if err != nil {
		return nil, fmt.Errorf("invalid request url: %w", err)
	}
	if rel.IsAbs() {
		return rel, nil
	}
	if baseURL == "" {
		return nil, fmt.Errorf("relative path %q requires a base url", reqPath)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	// Join the base URL path with the request path
	joined := *base
	if joined.Path == "" {
		joined.Path = rel.Path
	} else {
		joined.Path = strings.TrimRight(joined.Path, "/") + "/" + strings.TrimLeft(rel.Path, "/")
	}
	if !strings.HasPrefix(joined.Path, "/") && joined.Path != "" {
		joined.Path = "/" + joined.Path
	}

	if rel.RawQuery != "" {
		if joined.RawQuery != "" {
			joined.RawQuery += "&" + rel.RawQuery
		} else {
			joined.RawQuery = rel.RawQuery
		}
	}

	return &joined, nil
}

// execute runs the transport call with per-phase timing via httptrace
func (c *Client) execute(ctx context.Context, httpReq *http.Request, eff Options) (*Response, error) {
	if eff.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, eff.Timeout)
		defer cancel()
	}

	timing := TimingInfo{
		StartTime: time.Now(),
	}

	// Trace state for per-phase timing
	var dnsStart, connectStart, tlsHandshakeStart time.Time
	var dnsDone, connectDone bool
	lastPhaseEnd := timing.StartTime

	trace := &httptrace.ClientTrace{
		DNSStart: func(info httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(info httptrace.DNSDoneInfo) {
			now := time.Now()
			timing.DNSLookupTime = now.Sub(dnsStart)
			dnsDone = true
			lastPhaseEnd = now
		},
		ConnectStart: func(network, addr string) {
			if dnsDone {
				connectStart = time.Now()
			}
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				now := time.Now()
				timing.TCPConnectTime = now.Sub(connectStart)
				connectDone = true
				lastPhaseEnd = now
			}
		},
		TLSHandshakeStart: func() {
			if connectDone {
				tlsHandshakeStart = time.Now()
			}
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err == nil {
				now := time.Now()
				timing.TLSHandshakeTime = now.Sub(tlsHandshakeStart)
				lastPhaseEnd = now
			}
		},
		GotFirstResponseByte: func() {
			timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
	}

	httpReq = httpReq.WithContext(httptrace.WithClientTrace(ctx, trace))

	httpResp, err := c.transportClient(eff).Do(httpReq)
	if err != nil {
		return nil, err
	}

	timing.TotalTime = time.Since(timing.StartTime)

	// Buffer the body so decode helpers can re-read it
	contentTransferStart := time.Now()
	var bodyReader io.Reader = httpResp.Body
	if eff.MaxResponseSize > 0 {
		bodyReader = io.LimitReader(bodyReader, eff.MaxResponseSize)
	}
	bodyBytes, readErr := io.ReadAll(bodyReader)
	httpResp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("reading response body: %w", readErr)
	}
	timing.ContentTransferTime = time.Since(contentTransferStart)

	return &Response{
		StatusCode:   httpResp.StatusCode,
		Status:       httpResp.Status,
		Headers:      httpResp.Header,
		Body:         io.NopCloser(bytes.NewReader(bodyBytes)),
		ResponseTime: time.Since(timing.StartTime),
		Timing:       timing,
		rawBody:      bodyBytes,
		parsed:       true,
	}, nil
}

// transportClient derives the underlying client for one call's redirect
// and proxy configuration, sharing the base client when neither is set.
func (c *Client) transportClient(eff Options) *http.Client {
	if eff.Redirect == "" && eff.Proxy == nil {
		return c.httpClient
	}

	// A shallow copy keeps the shared transport unless a proxy demands
	// its own.
	derived := *c.httpClient

	switch eff.Redirect {
	case RedirectManual:
		derived.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	case RedirectError:
		derived.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return ErrRedirect
		}
	default:
		max := eff.Follow
		if max <= 0 {
			max = DefaultMaxRedirects
		}
		derived.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= max {
				return fmt.Errorf("stopped after %d redirects", max)
			}
			return nil
		}
	}

	if eff.Proxy != nil {
		transport := &http.Transport{}
		if base, ok := derived.Transport.(*http.Transport); ok && base != nil {
			transport = base.Clone()
		}
		if eff.Proxy.Disabled {
			transport.Proxy = nil
		} else if proxyURL, err := url.Parse(eff.Proxy.URL); err == nil && eff.Proxy.URL != "" {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
		derived.Transport = transport
	}

	return &derived
}

// Get makes a GET request to the given path
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, NewRequest("GET", path))
}

// Post makes a POST request with the given body
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, NewRequest("POST", path).WithBody(body))
}

// Delete makes a DELETE request to the given path
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, NewRequest("DELETE", path))
}

// DoJSON executes the request with status gating forced on and decodes
// the response body as JSON into v. A decode failure is a DecodeError,
// distinct from the StatusError the gate produces.
func (c *Client) DoJSON(ctx context.Context, req *Request, v any) error {
	resp, err := c.Do(ctx, req.WithOnlySuccessful(true))
	if err != nil {
		return err
	}
	return resp.GetBodyAsJSON(v)
}

// DoText executes the request with status gating forced on and returns
// the response body as a string.
func (c *Client) DoText(ctx context.Context, req *Request) (string, error) {
	resp, err := c.Do(ctx, req.WithOnlySuccessful(true))
	if err != nil {
		return "", err
	}
	return resp.GetBodyAsString()
}

// DoBytes executes the request with status gating forced on and returns
// the raw response body.
func (c *Client) DoBytes(ctx context.Context, req *Request) ([]byte, error) {
	resp, err := c.Do(ctx, req.WithOnlySuccessful(true))
	if err != nil {
		return nil, err
	}
	return resp.GetBody()
}

// GetJSON makes a gated GET request and decodes the body as JSON
func (c *Client) GetJSON(ctx context.Context, path string, v any) error {
	return c.DoJSON(ctx, NewRequest("GET", path), v)
}

// GetText makes a gated GET request and returns the body as a string
func (c *Client) GetText(ctx context.Context, path string) (string, error) {
	return c.DoText(ctx, NewRequest("GET", path))
}

// GetBytes makes a gated GET request and returns the raw body
func (c *Client) GetBytes(ctx context.Context, path string) ([]byte, error) {
	return c.DoBytes(ctx, NewRequest("GET", path))
}

// PostJSON makes a gated POST request and decodes the body as JSON
func (c *Client) PostJSON(ctx context.Context, path string, body, v any) error {
	return c.DoJSON(ctx, NewRequest("POST", path).WithBody(body), v)
}

// PostText makes a gated POST request and returns the body as a string
func (c *Client) PostText(ctx context.Context, path string, body any) (string, error) {
	return c.DoText(ctx, NewRequest("POST", path).WithBody(body))
}

// PostBytes makes a gated POST request and returns the raw body
func (c *Client) PostBytes(ctx context.Context, path string, body any) ([]byte, error) {
	return c.DoBytes(ctx, NewRequest("POST", path).WithBody(body))
}

// DeleteJSON makes a gated DELETE request and decodes the body as JSON
func (c *Client) DeleteJSON(ctx context.Context, path string, v any) error {
	return c.DoJSON(ctx, NewRequest("DELETE", path), v)
}

// DeleteText makes a gated DELETE request and returns the body as a string
func (c *Client) DeleteText(ctx context.Context, path string) (string, error) {
	return c.DoText(ctx, NewRequest("DELETE", path))
}

// DeleteBytes makes a gated DELETE request and returns the raw body
func (c *Client) DeleteBytes(ctx context.Context, path string) ([]byte, error) {
	return c.DoBytes(ctx, NewRequest("DELETE", path))
}
