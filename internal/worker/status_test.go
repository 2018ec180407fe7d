package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nicholaskarlsen/mdcouple/internal/testutil/testlog"
)

func statusFixture(t *testing.T, opts StatusOptions) *StatusServer {
	t.Helper()
	client, server := couplePair(t)
	loop := NewLoop(server, EvaluatorFunc(nil), testlog.Logger(t), Config{Node: "status-test"})
	loopc := make(chan error, 1)
	go func() { loopc <- loop.Run(context.Background()) }()
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("client close: %v", err)
		}
		if err := <-loopc; err != nil {
			t.Errorf("loop: %v", err)
		}
	})
	return NewStatusServer("status-test", loop, testlog.Logger(t), opts)
}

func TestStatusServerRoutes(t *testing.T) {
	s := statusFixture(t, StatusOptions{})

	for _, path := range []string{"/health", "/ready", "/metrics", "/session"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode session body: %v", err)
	}
	if body["protocol"] != "md" {
		t.Fatalf("session body = %v", body)
	}
	if body["state"] != "ready" {
		t.Fatalf("session state = %v", body["state"])
	}
}

func TestStatusServerAuthGatesSession(t *testing.T) {
	s := statusFixture(t, StatusOptions{AuthToken: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated /session: status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/health should stay open: status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated /session: status %d", rec.Code)
	}
}
