package http

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/wesleyorama2/grapple/form"
	"github.com/wesleyorama2/grapple/querystring"
)

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	if r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Error reading encoded body: %v", err)
	}
	return string(data)
}

func TestPrepareBody_Nil(t *testing.T) {
	enc, err := prepareBody(nil, "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if enc.reader != nil {
		t.Error("Expected no reader for nil body")
	}
	if enc.contentType != "" {
		t.Errorf("Expected no content type for nil body, got %q", enc.contentType)
	}
}

func TestPrepareBody_String(t *testing.T) {
	enc, err := prepareBody("hello", "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if got := readAll(t, enc.reader); got != "hello" {
		t.Errorf("Expected body 'hello', got %q", got)
	}
	if enc.contentType != ContentTypeText {
		t.Errorf("Expected text/plain, got %q", enc.contentType)
	}
	if enc.length != 5 {
		t.Errorf("Expected length 5, got %d", enc.length)
	}
}

func TestPrepareBody_Blob(t *testing.T) {
	enc, err := prepareBody(Blob{Data: []byte{1, 2, 3}, ContentType: "image/png"}, "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if enc.contentType != "image/png" {
		t.Errorf("Expected blob content type, got %q", enc.contentType)
	}
	if enc.length != 3 {
		t.Errorf("Expected length 3, got %d", enc.length)
	}

	// Untagged blob falls back to octet-stream
	enc, err = prepareBody(Blob{Data: []byte{1}}, "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if enc.contentType != ContentTypeOctetStream {
		t.Errorf("Expected octet-stream fallback, got %q", enc.contentType)
	}
}

func TestPrepareBody_Bytes(t *testing.T) {
	enc, err := prepareBody([]byte("raw"), "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if enc.contentType != ContentTypeOctetStream {
		t.Errorf("Expected octet-stream, got %q", enc.contentType)
	}
	if got := readAll(t, enc.reader); got != "raw" {
		t.Errorf("Expected body 'raw', got %q", got)
	}
}

func TestPrepareBody_Reader(t *testing.T) {
	enc, err := prepareBody(strings.NewReader("stream"), "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if enc.length != -1 {
		t.Errorf("Expected unknown length for bare reader, got %d", enc.length)
	}
	if got := readAll(t, enc.reader); got != "stream" {
		t.Errorf("Expected body 'stream', got %q", got)
	}
}

func TestPrepareBody_Form(t *testing.T) {
	session := form.New()
	if err := session.Append("field", "value"); err != nil {
		t.Fatalf("Error appending field: %v", err)
	}

	enc, err := prepareBody(session, "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if !strings.HasPrefix(enc.contentType, "multipart/form-data; boundary=") {
		t.Errorf("Expected multipart content type, got %q", enc.contentType)
	}

	body := readAll(t, enc.reader)
	if !strings.Contains(body, `name="field"`) || !strings.Contains(body, "value") {
		t.Errorf("Expected multipart body with field, got %q", body)
	}
	if enc.length != int64(len(body)) {
		t.Errorf("Expected declared length %d to match body, got %d", len(body), enc.length)
	}
}

func TestPrepareBody_NilPointers(t *testing.T) {
	// Typed nil pointers behave like an absent body, they never panic
	enc, err := prepareBody((*form.Form)(nil), "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing nil form body: %v", err)
	}
	if enc.reader != nil || enc.contentType != "" {
		t.Errorf("Expected empty body for nil form, got %+v", enc)
	}

	enc, err = prepareBody((*Blob)(nil), "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing nil blob body: %v", err)
	}
	if enc.reader != nil {
		t.Errorf("Expected empty body for nil blob, got %+v", enc)
	}
}

func TestPrepareBody_RecordDefaultsToJSON(t *testing.T) {
	enc, err := prepareBody(map[string]any{"a": 1}, "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if enc.contentType != ContentTypeJSON {
		t.Errorf("Expected application/json default, got %q", enc.contentType)
	}
	if got := readAll(t, enc.reader); got != `{"a":1}` {
		t.Errorf("Expected JSON body, got %q", got)
	}
}

func TestPrepareBody_RecordWithExplicitJSON(t *testing.T) {
	// With an explicit type the encoder must not propose a new one
	enc, err := prepareBody(map[string]any{"a": 1}, "application/json; charset=utf-8", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if enc.contentType != "" {
		t.Errorf("Expected no proposed content type, got %q", enc.contentType)
	}
	if got := readAll(t, enc.reader); got != `{"a":1}` {
		t.Errorf("Expected JSON body, got %q", got)
	}
}

func TestPrepareBody_JSONSuffixTypes(t *testing.T) {
	for _, ct := range []string{"application/hal+json", "application/vnd.api+json"} {
		enc, err := prepareBody(map[string]any{"a": 1}, ct, querystring.Options{})
		if err != nil {
			t.Fatalf("Error preparing body for %s: %v", ct, err)
		}
		if got := readAll(t, enc.reader); got != `{"a":1}` {
			t.Errorf("Expected JSON body for %s, got %q", ct, got)
		}
	}
}

func TestPrepareBody_FormURLEncoded(t *testing.T) {
	enc, err := prepareBody(
		map[string]any{"b": "2", "a": "one two"},
		ContentTypeForm,
		querystring.Options{},
	)
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if got := readAll(t, enc.reader); got != "a=one%20two&b=2" {
		t.Errorf("Expected form-urlencoded body, got %q", got)
	}
}

func TestPrepareBody_FormURLEncodedRequiresMap(t *testing.T) {
	type payload struct{ A int }
	_, err := prepareBody(payload{A: 1}, ContentTypeForm, querystring.Options{})
	if err == nil {
		t.Fatal("Expected error for non-map form body")
	}

	var unsupported *UnsupportedBodyTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Expected *UnsupportedBodyTypeError, got %T", err)
	}
}

func TestPrepareBody_UnsupportedContentType(t *testing.T) {
	_, err := prepareBody(map[string]any{"a": 1}, "application/xml", querystring.Options{})
	if err == nil {
		t.Fatal("Expected error for unsupported content type")
	}

	var unsupported *UnsupportedContentTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Expected *UnsupportedContentTypeError, got %T", err)
	}
	if unsupported.ContentType != "application/xml" {
		t.Errorf("Expected failing type in error, got %q", unsupported.ContentType)
	}
}

func TestPrepareBody_UnsupportedShape(t *testing.T) {
	_, err := prepareBody(42, "", querystring.Options{})
	if err == nil {
		t.Fatal("Expected error for bare primitive body")
	}

	var unsupported *UnsupportedBodyTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Expected *UnsupportedBodyTypeError, got %T", err)
	}
}

func TestPrepareBody_StructRecord(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	enc, err := prepareBody(payload{Name: "x"}, "", querystring.Options{})
	if err != nil {
		t.Fatalf("Error preparing body: %v", err)
	}
	if got := readAll(t, enc.reader); got != `{"name":"x"}` {
		t.Errorf("Expected struct serialized as JSON, got %q", got)
	}
}
