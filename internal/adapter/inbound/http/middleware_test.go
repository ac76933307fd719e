package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionMiddleware_IssuesCookieForNewClient(t *testing.T) {
	t.Parallel()

	var seenSessionID string
	h := SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSessionID = SessionIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seenSessionID == "" {
		t.Fatal("no session ID in context for a fresh client")
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie issued")
	}
	if cookie.Value != seenSessionID {
		t.Errorf("cookie value %q != context session ID %q", cookie.Value, seenSessionID)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
	if cookie.Path != "/" {
		t.Errorf("cookie path = %q, want /", cookie.Path)
	}
}

func TestSessionMiddleware_ReusesExistingCookie(t *testing.T) {
	t.Parallel()

	var seenSessionID string
	h := SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSessionID = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "existing-session"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seenSessionID != "existing-session" {
		t.Errorf("session ID = %q, want existing-session", seenSessionID)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			t.Error("re-issued a cookie the client already had")
		}
	}
}

func TestRequestIDMiddleware_EchoesInboundID(t *testing.T) {
	t.Parallel()

	var seenID string
	h := RequestIDMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seenID != "req-42" {
		t.Errorf("context request ID = %q, want req-42", seenID)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("response X-Request-ID = %q, want req-42", got)
	}
}

func TestRequestIDMiddleware_GeneratesIDWhenAbsent(t *testing.T) {
	t.Parallel()

	h := RequestIDMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("no request ID generated")
	}
}

func TestRealIPMiddleware(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"forwarded-for first entry", "203.0.113.7, 10.0.0.1", "", "192.0.2.1:1234", "203.0.113.7"},
		{"real-ip fallback", "", "203.0.113.8", "192.0.2.1:1234", "203.0.113.8"},
		{"remote addr fallback", "", "", "192.0.2.1:1234", "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = ClientIPFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				req.Header.Set("X-Real-IP", tc.xri)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if seen != tc.want {
				t.Errorf("client IP = %q, want %q", seen, tc.want)
			}
		})
	}
}
