package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func newTestResponse(status int, body string) *Response {
	return &Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestResponse_GetBodyCaching(t *testing.T) {
	resp := newTestResponse(200, `{"a":1}`)

	first, err := resp.GetBody()
	if err != nil {
		t.Fatalf("Error reading body: %v", err)
	}

	// A second read must serve the cache, not the drained reader
	second, err := resp.GetBody()
	if err != nil {
		t.Fatalf("Error reading cached body: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("Expected identical reads, got %q then %q", first, second)
	}
}

func TestResponse_GetBodyAsJSON(t *testing.T) {
	resp := newTestResponse(200, `{"name":"test","count":3}`)

	var decoded struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := resp.GetBodyAsJSON(&decoded); err != nil {
		t.Fatalf("Error decoding body: %v", err)
	}
	if decoded.Name != "test" || decoded.Count != 3 {
		t.Errorf("Unexpected decoded value: %+v", decoded)
	}
}

func TestResponse_GetBodyAsJSONMalformed(t *testing.T) {
	resp := newTestResponse(200, "not json")

	var decoded map[string]any
	err := resp.GetBodyAsJSON(&decoded)
	if err == nil {
		t.Fatal("Expected DecodeError for malformed body")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected *DecodeError, got %T", err)
	}
	if decodeErr.Format != "json" {
		t.Errorf("Expected json format tag, got %q", decodeErr.Format)
	}
	if decodeErr.Unwrap() == nil {
		t.Error("Expected wrapped cause")
	}
}

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		status      int
		success     bool
		redirect    bool
		clientError bool
		serverError bool
	}{
		{200, true, false, false, false},
		{204, true, false, false, false},
		{301, false, true, false, false},
		{404, false, false, true, false},
		{500, false, false, false, true},
	}

	for _, tt := range tests {
		resp := newTestResponse(tt.status, "")
		if resp.IsSuccess() != tt.success {
			t.Errorf("IsSuccess(%d) = %v", tt.status, resp.IsSuccess())
		}
		if resp.IsRedirect() != tt.redirect {
			t.Errorf("IsRedirect(%d) = %v", tt.status, resp.IsRedirect())
		}
		if resp.IsClientError() != tt.clientError {
			t.Errorf("IsClientError(%d) = %v", tt.status, resp.IsClientError())
		}
		if resp.IsServerError() != tt.serverError {
			t.Errorf("IsServerError(%d) = %v", tt.status, resp.IsServerError())
		}
	}
}

func TestResponse_TimingMillis(t *testing.T) {
	resp := newTestResponse(200, "")
	resp.ResponseTime = 1500 * time.Millisecond
	resp.Timing = TimingInfo{
		DNSLookupTime:       5 * time.Millisecond,
		TCPConnectTime:      10 * time.Millisecond,
		TLSHandshakeTime:    20 * time.Millisecond,
		TimeToFirstByte:     100 * time.Millisecond,
		ContentTransferTime: 50 * time.Millisecond,
		TotalTime:           1500 * time.Millisecond,
	}

	if resp.GetResponseTimeMillis() != 1500 {
		t.Errorf("GetResponseTimeMillis = %d", resp.GetResponseTimeMillis())
	}
	if resp.GetDNSLookupTimeMillis() != 5 {
		t.Errorf("GetDNSLookupTimeMillis = %d", resp.GetDNSLookupTimeMillis())
	}
	if resp.GetTCPConnectTimeMillis() != 10 {
		t.Errorf("GetTCPConnectTimeMillis = %d", resp.GetTCPConnectTimeMillis())
	}
	if resp.GetTLSHandshakeTimeMillis() != 20 {
		t.Errorf("GetTLSHandshakeTimeMillis = %d", resp.GetTLSHandshakeTimeMillis())
	}
	if resp.GetTimeToFirstByteMillis() != 100 {
		t.Errorf("GetTimeToFirstByteMillis = %d", resp.GetTimeToFirstByteMillis())
	}
	if resp.GetContentTransferTimeMillis() != 50 {
		t.Errorf("GetContentTransferTimeMillis = %d", resp.GetContentTransferTimeMillis())
	}
	if resp.GetTotalTimeMillis() != 1500 {
		t.Errorf("GetTotalTimeMillis = %d", resp.GetTotalTimeMillis())
	}
}

func TestStatusError_Message(t *testing.T) {
	resp := newTestResponse(404, `{"error":"missing"}`)
	err := &StatusError{
		StatusCode: 404,
		Status:     "404 Not Found",
		Response:   resp,
	}

	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected status in message, got %q", err.Error())
	}
}
