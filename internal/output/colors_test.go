package output

import (
	"strings"
	"testing"
)

func TestNoColorScheme(t *testing.T) {
	scheme := NoColorScheme()

	// Every color in the scheme must render plain text
	if got := scheme.Method.Sprint("GET"); got != "GET" {
		t.Errorf("Expected plain output, got %q", got)
	}
	if got := scheme.StatusError.Sprint("500"); strings.Contains(got, "\x1b[") {
		t.Errorf("Expected no escape codes, got %q", got)
	}
}
