package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeaderProvider(t *testing.T) {
	p := HeaderProvider{Header: "X-User-Id"}

	r := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	if got := p.UserID(r); got != "" {
		t.Fatalf("expected empty user id, got %q", got)
	}

	r.Header.Set("X-User-Id", " user_1 ")
	if got := p.UserID(r); got != "user_1" {
		t.Fatalf("expected user_1, got %q", got)
	}
}

func TestStaticTokenProvider(t *testing.T) {
	p := NewStaticTokenProvider(map[string]string{"secret": "user_1"})

	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer secret", "user_1"},
		{"Bearer wrong", ""},
		{"Basic secret", ""},
		{"secret", ""},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/accounts", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		if got := p.UserID(r); got != tc.want {
			t.Fatalf("header %q: expected %q, got %q", tc.header, tc.want, got)
		}
	}
}

func TestMiddlewareInjectsUser(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	})

	handler := Middleware(HeaderProvider{Header: "X-User-Id"})(next)

	r := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	r.Header.Set("X-User-Id", "user_1")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if seen != "user_1" {
		t.Fatalf("expected user_1 in context, got %q", seen)
	}

	r = httptest.NewRequest(http.MethodGet, "/accounts", nil)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if seen != "" {
		t.Fatalf("expected empty user id for unauthenticated request, got %q", seen)
	}
}
