package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMatchWildcard(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"/api/v1/runs/abc", "/api/v1/runs/*", true},
		{"/api/v1/runs/abc/features", "/api/v1/runs/*/features", true},
		{"/api/v1/runs/abc/errors", "/api/v1/runs/*/features", false},
		{"/api/v1/runs", "/api/v1/runs/*", true}, // trailing * also matches an empty remainder
		{"/api/v1/runs/abc/features", "/api/v1/runs/*", true},
		{"/swagger/index.html", "/swagger/*", true},
		{"/api/v1/runs/abc", "/api/v1/jobs/*", false},
		{"/api/v1/runs/abc", "/api/v1/runs/abc", true},
	}

	for _, tt := range tests {
		if got := matchWildcard(tt.path, tt.pattern); got != tt.want {
			t.Errorf("matchWildcard(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}

func TestDispatch(t *testing.T) {
	r := New()
	var hits []string
	record := func(name string) HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			hits = append(hits, name)
			w.WriteHeader(http.StatusOK)
		}
	}

	r.POST("/api/v1/runs", record("create"))
	r.GET("/api/v1/runs", record("list"))
	r.GET("/api/v1/runs/*/features", record("features"))
	r.GET("/api/v1/runs/*", record("get"))

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantHit    string
	}{
		{http.MethodPost, "/api/v1/runs", http.StatusOK, "create"},
		{http.MethodGet, "/api/v1/runs", http.StatusOK, "list"},
		{http.MethodGet, "/api/v1/runs/abc/features", http.StatusOK, "features"},
		{http.MethodGet, "/api/v1/runs/abc", http.StatusOK, "get"},
		{http.MethodDelete, "/api/v1/runs", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		hits = nil
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, req)

		if rec.Code != tt.wantStatus {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
		}
		if tt.wantHit == "" {
			if len(hits) != 0 {
				t.Errorf("%s %s: unexpected handler hit %v", tt.method, tt.path, hits)
			}
			continue
		}
		if len(hits) != 1 || hits[0] != tt.wantHit {
			t.Errorf("%s %s: hits = %v, want [%s]", tt.method, tt.path, hits, tt.wantHit)
		}
	}
}

func TestWildcardRegistrationOrder(t *testing.T) {
	r := New()
	var hit string
	r.GET("/api/v1/runs/*/features", func(w http.ResponseWriter, req *http.Request) { hit = "features" })
	r.GET("/api/v1/runs/*", func(w http.ResponseWriter, req *http.Request) { hit = "generic" })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/abc/features", nil)
	r.Handler().ServeHTTP(httptest.NewRecorder(), req)
	if hit != "features" {
		t.Errorf("dispatched to %q, want the earlier-registered specific route", hit)
	}
}
