// Package form manages a multipart/form-data session: fields are appended
// over the session's lifetime, serialized on demand, and discarded by an
// explicit reset. The underlying encoding is delegated to mime/multipart.
package form

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// ErrUnknownLength is returned by Len when the session contains a stream
// field without a declared size.
var ErrUnknownLength = fmt.Errorf("form: length unknown (stream field without declared size)")

// UnsupportedValueError is returned by Append for value types the session
// cannot serialize. Array values must be pre-serialized by the caller.
type UnsupportedValueError struct {
	Field string
	Type  string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("form: unsupported value type %s for field %q", e.Type, e.Field)
}

// MaxDataSizeError is returned by Append when buffered field data would
// exceed the session's configured limit.
type MaxDataSizeError struct {
	Limit int64
}

func (e *MaxDataSizeError) Error() string {
	return fmt.Sprintf("form: appended data exceeds max data size %d", e.Limit)
}

// FieldOption configures a single appended field
type FieldOption func(*field)

// WithFilename marks the field as a file part with the given filename
func WithFilename(name string) FieldOption {
	return func(f *field) {
		f.filename = name
	}
}

// WithContentType sets an explicit Content-Type on the part
func WithContentType(contentType string) FieldOption {
	return func(f *field) {
		f.contentType = contentType
	}
}

// WithKnownSize declares the byte size of a stream value so the session's
// total length stays computable.
func WithKnownSize(n int64) FieldOption {
	return func(f *field) {
		f.size = n
		f.sizeKnown = true
	}
}

// field is one appended (name, value, options) entry
type field struct {
	name        string
	filename    string
	contentType string

	data   []byte    // buffered values
	stream io.Reader // stream values; nil when data is set

	size      int64
	sizeKnown bool
}

// Option configures a Form at construction (and survives resets)
type Option func(*Form)

// WithMaxDataSize bounds the total bytes of buffered field data
func WithMaxDataSize(n int64) Option {
	return func(f *Form) {
		f.maxDataSize = n
	}
}

// WithBoundary sets the multipart boundary for every session
func WithBoundary(boundary string) Option {
	return func(f *Form) {
		f.boundary = boundary
	}
}

// Form is a mutable multipart form session. Fields accumulate between
// construction (or Reset) and serialization. A Form is not safe for
// concurrent use; callers must serialize Append, Reset, and submission.
type Form struct {
	fields   []field
	buffered int64

	boundary    string
	maxDataSize int64

	writer *multipart.Writer // carries the boundary for the current session

	// serialized caches the encoded body for length queries and repeat reads
	serialized []byte
}

// New creates an empty form session
func New(opts ...Option) *Form {
	f := &Form{}
	for _, opt := range opts {
		opt(f)
	}
	f.newSession()
	return f
}

// newSession allocates a fresh underlying encoder
func (f *Form) newSession() {
	f.writer = multipart.NewWriter(io.Discard)
	if f.boundary != "" {
		// SetBoundary only fails on malformed boundaries; surface that lazily
		_ = f.writer.SetBoundary(f.boundary)
	}
}

// Reset discards all appended fields, any cached serialization, and the
// current session, allocating a fresh encoder with the persisted options.
func (f *Form) Reset() {
	f.fields = nil
	f.buffered = 0
	f.serialized = nil
	f.newSession()
}

// Append adds a field to the session. Accepted value types are string,
// []byte, and io.Reader; anything else (including arrays) is rejected.
// Fields with identical names are all retained and serialized as
// duplicate parts.
func (f *Form) Append(name string, value any, opts ...FieldOption) error {
	fld := field{name: name}
	for _, opt := range opts {
		opt(&fld)
	}

	switch v := value.(type) {
	case string:
		fld.data = []byte(v)
	case []byte:
		fld.data = append([]byte(nil), v...)
	case io.Reader:
		fld.stream = v
	default:
		return &UnsupportedValueError{Field: name, Type: fmt.Sprintf("%T", value)}
	}

	if fld.data != nil {
		fld.size = int64(len(fld.data))
		fld.sizeKnown = true
		if f.maxDataSize > 0 && f.buffered+fld.size > f.maxDataSize {
			return &MaxDataSizeError{Limit: f.maxDataSize}
		}
		f.buffered += fld.size
	}

	f.fields = append(f.fields, fld)
	f.serialized = nil
	return nil
}

// FieldCount returns the number of appended fields
func (f *Form) FieldCount() int {
	return len(f.fields)
}

// Boundary returns the session's multipart boundary
func (f *Form) Boundary() string {
	return f.writer.Boundary()
}

// SetBoundary overrides the session's boundary. It must be called before
// the form is serialized.
func (f *Form) SetBoundary(boundary string) error {
	if f.serialized != nil {
		return fmt.Errorf("form: boundary cannot change after serialization")
	}
	f.boundary = boundary
	return f.writer.SetBoundary(boundary)
}

// ContentType returns the Content-Type header value for the session,
// including the boundary parameter.
func (f *Form) ContentType() string {
	return f.writer.FormDataContentType()
}

// HasKnownLength reports whether the session's total length can be
// computed without draining stream fields.
func (f *Form) HasKnownLength() bool {
	for _, fld := range f.fields {
		if fld.stream != nil && !fld.sizeKnown {
			return false
		}
	}
	return true
}

// Len returns the encoded body length. Stream fields must carry a
// declared size (WithKnownSize) or ErrUnknownLength is returned.
func (f *Form) Len() (int64, error) {
	if !f.HasKnownLength() {
		return 0, ErrUnknownLength
	}

	// Lengths are boundary math: per-part headers plus declared sizes.
	// Serializing buffered-only sessions is equivalent and simpler, but
	// stream parts must not be drained just to measure them.
	boundary := f.writer.Boundary()
	if len(f.fields) == 0 {
		// An empty session still carries the closing delimiter's leading CRLF
		return int64(len("\r\n--" + boundary + "--\r\n")), nil
	}

	var total int64
	for _, fld := range f.fields {
		total += int64(len("--"+boundary+"\r\n")) + partHeaderLen(fld) + fld.size + 2 // trailing CRLF
	}
	total += int64(len("--" + boundary + "--\r\n"))
	return total, nil
}

// partHeaderLen computes the serialized length of one part's MIME header
func partHeaderLen(fld field) int64 {
	var buf bytes.Buffer
	for key, vals := range partHeader(fld) {
		for _, val := range vals {
			buf.WriteString(key + ": " + val + "\r\n")
		}
	}
	buf.WriteString("\r\n")
	return int64(buf.Len())
}

// partHeader builds the MIME header for one part
func partHeader(fld field) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	disposition := fmt.Sprintf(`form-data; name=%q`, escapeQuotes(fld.name))
	if fld.filename != "" {
		disposition += fmt.Sprintf(`; filename=%q`, escapeQuotes(fld.filename))
	}
	h.Set("Content-Disposition", disposition)

	contentType := fld.contentType
	if contentType == "" && (fld.filename != "" || fld.stream != nil) {
		contentType = "application/octet-stream"
	}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Bytes serializes the whole session into memory, draining any stream
// fields. The result is cached until the next Append or Reset.
func (f *Form) Bytes() ([]byte, error) {
	if f.serialized != nil {
		return f.serialized, nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(f.writer.Boundary()); err != nil {
		return nil, err
	}

	for _, fld := range f.fields {
		part, err := w.CreatePart(partHeader(fld))
		if err != nil {
			return nil, err
		}
		if fld.data != nil {
			if _, err := part.Write(fld.data); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := io.Copy(part, fld.stream); err != nil {
			return nil, fmt.Errorf("form: reading stream field %q: %w", fld.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	f.serialized = buf.Bytes()
	return f.serialized, nil
}

// Reader returns a reader over the serialized session
func (f *Form) Reader() (io.Reader, error) {
	data, err := f.Bytes()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
