package proxy

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/botgate/botgate/internal/middleware"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := New("localhost:8000", discardLogger()); err == nil {
		t.Error("expected error for non-absolute URL")
	}
	if _, err := New("", discardLogger()); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestBackend_ForwardsToUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	backend, err := New(upstream.URL, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/chatbots", nil)
	w := httptest.NewRecorder()
	backend.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
	if body := w.Body.String(); body != `{"ok":true}` {
		t.Errorf("body: got %q", body)
	}
}

func TestBackend_SetsProcessTime(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	backend, err := New(upstream.URL, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// RequestLogger records the arrival time the proxy mirrors back
	handler := middleware.RequestLogger(discardLogger())(backend)

	req := httptest.NewRequest("GET", "/api/v1/chatbots", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get("X-Process-Time") == "" {
		t.Error("expected X-Process-Time on proxied response")
	}
}

func TestBackend_UnreachableUpstream(t *testing.T) {
	// Port is closed immediately, so the proxy's error handler fires
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	backend, err := New(upstream.URL, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/chatbots", nil)
	w := httptest.NewRecorder()
	backend.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want 502", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if body["error"] != "backend_unavailable" {
		t.Errorf("error code: got %q", body["error"])
	}
}
