package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenMatches(t *testing.T) {
	t.Parallel()

	cases := []struct {
		got, want string
		match     bool
	}{
		{"provided", "provided", true},
		{"provided", "other", false},
		{"provided", "provided-longer", false},
		{"", "configured", false},
		{"provided", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		if m := tokenMatches(tc.got, tc.want); m != tc.match {
			t.Fatalf("tokenMatches(%q, %q) = %v, want %v", tc.got, tc.want, m, tc.match)
		}
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "bearer", header: "Bearer test-key", want: "test-key"},
		{name: "lowercase scheme", header: "bearer test-key", want: "test-key"},
		{name: "padded", header: "  Bearer   test-key  ", want: "test-key"},
		{name: "missing", header: "", wantErr: errNoCredentials},
		{name: "basic", header: "Basic abc", wantErr: errBadScheme},
		{name: "scheme only", header: "Bearer", wantErr: errBadScheme},
		{name: "blank token", header: "Bearer    ", wantErr: errBadScheme},
		{name: "extra spaces", header: "Bearer    x", want: "x"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "http://example.test", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		token, err := bearerToken(req)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if token != tc.want {
			t.Fatalf("%s: token = %q, want %q", tc.name, token, tc.want)
		}
	}
}

func TestAuthMiddlewareChallenge(t *testing.T) {
	t.Parallel()

	s := New(Config{APIKey: "k"}, Deps{})
	h := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/journal", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("missing WWW-Authenticate challenge")
	}

	req := httptest.NewRequest(http.MethodGet, "/journal", nil)
	req.Header.Set("Authorization", "Bearer k")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
