package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestLogger_SetsRequestID(t *testing.T) {
	var requestHeaderID string
	handler := RequestLogger(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestHeaderID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if requestHeaderID == "" {
		t.Error("expected X-Request-ID stamped on the proxied request")
	}
	if got := w.Header().Get("X-Request-ID"); got != requestHeaderID {
		t.Errorf("response X-Request-ID %q does not match request %q", got, requestHeaderID)
	}
}

func TestRequestLogger_RecordsStartTime(t *testing.T) {
	var haveStart bool
	handler := RequestLogger(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, haveStart = StartTime(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !haveStart {
		t.Error("expected arrival time in the request context")
	}
}

func TestRequestLogger_RedactsSensitiveQuery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := RequestLogger(logger)(okHandler())

	req := httptest.NewRequest("GET", "/reset?token=abc123", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}
	path, _ := entry["path"].(string)
	if path != "/reset?[REDACTED]" {
		t.Errorf("logged path: got %q, want /reset?[REDACTED]", path)
	}
}

func TestRequestLogger_LogsStatusAndMethod(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest("POST", "/api/v1/chatbots", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}
	if entry["method"] != "POST" {
		t.Errorf("method: got %v", entry["method"])
	}
	if status, _ := entry["status"].(float64); int(status) != http.StatusNotFound {
		t.Errorf("status: got %v, want 404", entry["status"])
	}
}
