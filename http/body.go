package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/url"
	"reflect"
	"strings"

	"github.com/wesleyorama2/grapple/form"
	"github.com/wesleyorama2/grapple/querystring"
)

// Content type constants used by the body encoder
const (
	ContentTypeJSON        = "application/json"
	ContentTypeForm        = "application/x-www-form-urlencoded"
	ContentTypeText        = "text/plain"
	ContentTypeOctetStream = "application/octet-stream"
)

// Blob is a binary body value carrying its own media-type tag, the
// request-side analog of a browser Blob.
type Blob struct {
	Data        []byte
	ContentType string
}

// encodedBody is the result of body preparation: a reader, a known length
// (-1 when unknown), and the default content type to install when the
// caller didn't set one ("" means don't force one).
type encodedBody struct {
	reader      io.Reader
	length      int64
	contentType string
}

// prepareBody encodes a body value into a reader plus a default
// Content-Type, branching on the value's shape. It is total over the
// documented shapes: every branch either produces a body or fails, there
// is no silent drop. effectiveType is the Content-Type already present in
// the merged headers (may be empty).
func prepareBody(value any, effectiveType string, qopts querystring.Options) (encodedBody, error) {
	switch v := value.(type) {
	case nil:
		return encodedBody{reader: nil, length: 0}, nil

	case string:
		return encodedBody{
			reader:      strings.NewReader(v),
			length:      int64(len(v)),
			contentType: ContentTypeText,
		}, nil

	case Blob:
		ct := v.ContentType
		if ct == "" {
			ct = ContentTypeOctetStream
		}
		return encodedBody{
			reader:      bytes.NewReader(v.Data),
			length:      int64(len(v.Data)),
			contentType: ct,
		}, nil

	case *Blob:
		if v == nil {
			return encodedBody{}, nil
		}
		return prepareBody(*v, effectiveType, qopts)

	case []byte:
		return encodedBody{
			reader:      bytes.NewReader(v),
			length:      int64(len(v)),
			contentType: ContentTypeOctetStream,
		}, nil

	case *form.Form:
		if v == nil {
			return encodedBody{}, nil
		}
		reader, err := v.Reader()
		if err != nil {
			return encodedBody{}, err
		}
		length := int64(-1)
		if n, err := v.Len(); err == nil {
			length = n
		}
		return encodedBody{
			reader:      reader,
			length:      length,
			contentType: v.ContentType(),
		}, nil

	case io.Reader:
		return encodedBody{
			reader:      v,
			length:      -1,
			contentType: ContentTypeOctetStream,
		}, nil
	}

	// Everything else must be a structured record
	if !isRecord(value) {
		return encodedBody{}, &UnsupportedBodyTypeError{Type: fmt.Sprintf("%T", value)}
	}

	return encodeRecord(value, effectiveType, qopts)
}

// encodeRecord serializes a structured record according to the effective
// Content-Type.
func encodeRecord(value any, effectiveType string, qopts querystring.Options) (encodedBody, error) {
	mediaType := ""
	if effectiveType != "" {
		parsed, _, err := mime.ParseMediaType(effectiveType)
		if err != nil {
			return encodedBody{}, &UnsupportedContentTypeError{ContentType: effectiveType}
		}
		mediaType = parsed
	}

	switch {
	case mediaType == "":
		return encodeJSONRecord(value, ContentTypeJSON)

	case mediaType == ContentTypeJSON:
		// Content type already set by the caller; leave it as-is
		return encodeJSONRecord(value, "")

	case mediaType == ContentTypeForm:
		record, ok := asParamMap(value)
		if !ok {
			return encodedBody{}, &UnsupportedBodyTypeError{Type: fmt.Sprintf("%T", value)}
		}
		encoded := querystring.Encode(record, qopts)
		return encodedBody{
			reader: strings.NewReader(encoded),
			length: int64(len(encoded)),
		}, nil

	case isJSONMediaType(mediaType):
		return encodeJSONRecord(value, "")

	default:
		return encodedBody{}, &UnsupportedContentTypeError{ContentType: effectiveType}
	}
}

// encodeJSONRecord marshals value as JSON, optionally proposing a default
// content type.
func encodeJSONRecord(value any, contentType string) (encodedBody, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return encodedBody{}, fmt.Errorf("encoding json body: %w", err)
	}
	return encodedBody{
		reader:      bytes.NewReader(data),
		length:      int64(len(data)),
		contentType: contentType,
	}, nil
}

// isJSONMediaType reports whether the media subtype is json, ignoring a
// structured-syntax suffix (application/hal+json, application/vnd.api+json).
func isJSONMediaType(mediaType string) bool {
	slash := strings.Index(mediaType, "/")
	if slash < 0 {
		return false
	}
	subtype := mediaType[slash+1:]
	if plus := strings.LastIndex(subtype, "+"); plus >= 0 {
		subtype = subtype[plus+1:]
	}
	return subtype == "json"
}

// isRecord reports whether a value is a structured record: a map, struct,
// slice, or array (or pointer to one). Bare primitives are not records.
func isRecord(value any) bool {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// asParamMap normalizes map-shaped records into the query encoder's input
// type. Form-urlencoded bodies require a map; other record shapes cannot
// be expressed as form fields without caller-side serialization.
func asParamMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	case url.Values:
		out := make(map[string]any, len(v))
		for k, vals := range v {
			if len(vals) == 1 {
				out[k] = vals[0]
				continue
			}
			arr := make([]any, len(vals))
			for i, s := range vals {
				arr[i] = s
			}
			out[k] = arr
		}
		return out, true
	default:
		return nil, false
	}
}
