// Package http provides a convenience layer over net/http: per-call and
// per-instance options are deep-merged, authentication headers are
// injected from a descriptor, query strings and request bodies are
// encoded from structured values, and non-2xx responses can be converted
// into typed errors.
//
// The package performs no retries, no backoff, and no connection
// management of its own; all of that belongs to the underlying transport.
// Cancellation is delegated to the context passed into every call.
//
// Example:
//
//	client := http.NewClient(
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithAuth(http.BasicAuth("user", "pass")),
//	    http.WithOnlySuccessful(true),
//	)
//
//	var items []Item
//	if err := client.GetJSON(ctx, "/items", &items); err != nil {
//	    var statusErr *http.StatusError
//	    if errors.As(err, &statusErr) {
//	        log.Printf("request failed: %s", statusErr.Status)
//	    }
//	}
package http
