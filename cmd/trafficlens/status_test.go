package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newStatusBackend starts a backend answering /status with a fixed payload.
func newStatusBackend(t *testing.T, payload map[string]any) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(payload)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// TestStatusCommand tests the one-shot status check against a fake backend.
func TestStatusCommand(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{
			name:    "running",
			payload: map[string]any{"running": true, "done": false, "error": nil},
			want:    "Status: running",
		},
		{
			name:    "done",
			payload: map[string]any{"running": false, "done": true, "error": nil},
			want:    "Status: done",
		},
		{
			name:    "idle",
			payload: map[string]any{"running": false, "done": false, "error": nil},
			want:    "Status: idle",
		},
		{
			name:    "failed surfaces backend error verbatim",
			payload: map[string]any{"running": false, "done": false, "error": "Не удалось обработать видео"},
			want:    "Не удалось обработать видео",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newStatusBackend(t, tt.payload)

			var buf bytes.Buffer
			root := NewRootCmd()
			root.SetOut(&buf)
			root.SetArgs([]string{"status", "--server", server.URL})

			if err := root.Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

// TestStatusCommandInvalidServer verifies config validation rejects bad URLs.
func TestStatusCommandInvalidServer(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetArgs([]string{"status", "--server", "not-a-url"})

	if err := root.Execute(); err == nil {
		t.Error("expected error for invalid server URL")
	}
}
