package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name   string
		status int
		wantUp bool
	}{
		{"ok", http.StatusOK, true},
		{"server error", http.StatusInternalServerError, false},
		{"not found", http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != HealthPath {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"status":"OK"}`))
			}))
			defer srv.Close()

			h := newHarness(t, srv.URL, "")
			got := h.orch.CheckHealth(context.Background())
			if got.Up != tt.wantUp || got.StatusCode != tt.status {
				t.Errorf("CheckHealth = %+v", got)
			}
			if tt.wantUp && got.Warning != "" {
				t.Errorf("unexpected warning: %s", got.Warning)
			}
			if !tt.wantUp && !strings.Contains(got.Warning, "status") {
				t.Errorf("expected status warning, got %q", got.Warning)
			}
		})
	}
}

func TestCheckHealth_Unreachable(t *testing.T) {
	h := newHarness(t, unreachableURL(t), "")
	got := h.orch.CheckHealth(context.Background())
	if got.Up || got.StatusCode != 0 {
		t.Errorf("CheckHealth = %+v", got)
	}
	if !strings.Contains(got.Warning, "unreachable") {
		t.Errorf("expected unreachable warning, got %q", got.Warning)
	}
	if h.transitions() != 0 {
		t.Error("health check must not touch the portfolio")
	}
}
