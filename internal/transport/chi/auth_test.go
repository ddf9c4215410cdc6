package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"no keys passes through", nil, "/v1/errorstats", "", http.StatusOK},
		{"empty keys pass through", []string{"", ""}, "/v1/errorstats", "", http.StatusOK},
		{"missing header", []string{"secret"}, "/v1/errorstats", "", http.StatusUnauthorized},
		{"basic scheme", []string{"secret"}, "/v1/errorstats", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"wrong key", []string{"secret"}, "/v1/errorstats", "Bearer wrong", http.StatusUnauthorized},
		{"prefix of key", []string{"secret"}, "/v1/errorstats", "Bearer secre", http.StatusUnauthorized},
		{"valid key", []string{"secret"}, "/v1/errorstats", "Bearer secret", http.StatusOK},
		{"second key", []string{"key1", "key2"}, "/v1/indexes", "Bearer key2", http.StatusOK},
		{"health exempt", []string{"secret"}, "/health", "", http.StatusOK},
		{"metrics exempt", []string{"secret"}, "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuthMiddleware(tt.keys)(okHandler())
			req := httptest.NewRequest("GET", tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddleware_ErrorBody(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret"})(okHandler())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("DELETE", "/v1/errorstats", http.NoBody))

	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != CodeUnauthorized {
		t.Errorf("code = %q, want %q", resp.Code, CodeUnauthorized)
	}
	if resp.Message == "" {
		t.Error("empty message")
	}
}
