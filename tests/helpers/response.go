package helpers

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

// ReadBody drains and returns the response body
func ReadBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	resp.Body.Close()
	return body
}

// RequireStatus aborts the test when the status code differs, dumping the
// body so a failed flow step is diagnosable.
func RequireStatus(t *testing.T, resp *http.Response, expected int) []byte {
	t.Helper()
	body := ReadBody(t, resp)
	if resp.StatusCode != expected {
		t.Fatalf("Expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(body))
	}
	return body
}

// ParseJSON decodes raw JSON into the target
func ParseJSON(t *testing.T, raw []byte, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("Failed to decode JSON: %v. Body: %s", err, string(raw))
	}
}
