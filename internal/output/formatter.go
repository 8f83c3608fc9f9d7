// Package output formats requests, responses, and latency statistics for
// terminal display.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	http "github.com/wesleyorama2/grapple/http"
	"github.com/wesleyorama2/grapple/querystring"
)

// Formatter renders HTTP requests and responses as text
type Formatter struct {
	Verbose bool
	NoColor bool

	scheme *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  scheme,
	}
}

// FormatRequest formats a request for display
func (f *Formatter) FormatRequest(req *http.Request, baseURL string) string {
	var buf strings.Builder

	fullURL := baseURL
	if !strings.HasSuffix(baseURL, "/") && !strings.HasPrefix(req.Path, "/") {
		fullURL += "/"
	}
	fullURL += req.Path

	if len(req.Query) > 0 {
		opts := querystring.Options{}
		if req.QueryOptions != nil {
			opts = *req.QueryOptions
		}
		fullURL += querystring.Prepare(req.Query, opts)
	}

	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n",
		f.scheme.Method.Sprint(req.Method),
		f.scheme.URL.Sprint(fullURL)))

	if f.Verbose || len(req.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		keys := make([]string, 0, len(req.Headers))
		for key := range req.Headers {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			buf.WriteString(fmt.Sprintf("    %s: %s\n",
				f.scheme.HeaderKey.Sprint(key),
				f.scheme.HeaderValue.Sprint(req.Headers[key])))
		}
	}

	if req.Body != nil {
		buf.WriteString("  Body: ")
		switch body := req.Body.(type) {
		case string:
			buf.WriteString(formatJSONString(body))
		case []byte:
			buf.WriteString(formatJSONString(string(body)))
		default:
			jsonBody, err := json.Marshal(body)
			if err != nil {
				buf.WriteString(fmt.Sprintf("%v", body))
			} else {
				buf.WriteString(formatJSONString(string(jsonBody)))
			}
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// statusColor picks the scheme color for a response's status class
func (f *Formatter) statusColor(resp *http.Response) *color.Color {
	switch {
	case resp.IsSuccess():
		return f.scheme.StatusOK
	case resp.IsRedirect():
		return f.scheme.StatusWarn
	default:
		return f.scheme.StatusError
	}
}

// FormatResponse formats a response for display
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n",
		f.statusColor(resp).Sprint(resp.Status),
		resp.GetResponseTimeMillis()))

	if f.Verbose {
		buf.WriteString("  Timing:\n")
		buf.WriteString(fmt.Sprintf("    DNS Lookup:         %dms\n", resp.GetDNSLookupTimeMillis()))
		buf.WriteString(fmt.Sprintf("    TCP Connection:     %dms\n", resp.GetTCPConnectTimeMillis()))
		buf.WriteString(fmt.Sprintf("    TLS Handshake:      %dms\n", resp.GetTLSHandshakeTimeMillis()))
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", resp.GetTimeToFirstByteMillis()))
		buf.WriteString(fmt.Sprintf("    Content Transfer:   %dms\n", resp.GetContentTransferTimeMillis()))
		buf.WriteString(fmt.Sprintf("    Total:              %dms\n", resp.GetTotalTimeMillis()))

		buf.WriteString("  Headers:\n")
		for key, values := range resp.Headers {
			for _, value := range values {
				buf.WriteString(fmt.Sprintf("    %s: %s\n",
					f.scheme.HeaderKey.Sprint(key),
					f.scheme.HeaderValue.Sprint(value)))
			}
		}
	}

	body, err := resp.GetBodyAsString()
	if err == nil && body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatStats formats a latency snapshot for display
func (f *Formatter) FormatStats(stats http.Stats) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("%s (%d requests)\n", f.scheme.Highlight.Sprint("LATENCY"), stats.Count))
	buf.WriteString(fmt.Sprintf("    Min:  %s\n", stats.Min))
	buf.WriteString(fmt.Sprintf("    Mean: %s\n", stats.Mean))
	buf.WriteString(fmt.Sprintf("    P50:  %s\n", stats.P50))
	buf.WriteString(fmt.Sprintf("    P90:  %s\n", stats.P90))
	buf.WriteString(fmt.Sprintf("    P95:  %s\n", stats.P95))
	buf.WriteString(fmt.Sprintf("    P99:  %s\n", stats.P99))
	buf.WriteString(fmt.Sprintf("    Max:  %s\n", stats.Max))

	return buf.String()
}

// FormatError renders a call failure, distinguishing the typed errors the
// client produces.
func (f *Formatter) FormatError(err error) string {
	mark := f.scheme.Error.Sprint("✗")

	switch e := err.(type) {
	case *http.StatusError:
		out := fmt.Sprintf("%s %s\n", mark, e.Status)
		if e.Response != nil {
			if body, berr := e.Response.GetBodyAsString(); berr == nil && body != "" {
				out += "  Body:\n" + formatJSONString(body) + "\n"
			}
		}
		return out
	case *http.DecodeError:
		return fmt.Sprintf("%s decode failed: %v\n", mark, e.Err)
	default:
		return fmt.Sprintf("%s %v\n", mark, err)
	}
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
