package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		preflight      bool
		wantOrigin     string
		wantCreds      bool
	}{
		{
			name:          "no origins configured sends no headers",
			requestOrigin: "https://example.com",
		},
		{
			name:           "allowed origin gets header with credentials",
			allowedOrigins: []string{"https://app.example.com"},
			requestOrigin:  "https://app.example.com",
			wantOrigin:     "https://app.example.com",
			wantCreds:      true,
		},
		{
			name:           "disallowed origin gets nothing",
			allowedOrigins: []string{"https://app.example.com"},
			requestOrigin:  "https://evil.example",
		},
		{
			name:           "preflight from allowed origin",
			allowedOrigins: []string{"https://app.example.com"},
			requestOrigin:  "https://app.example.com",
			preflight:      true,
			wantOrigin:     "https://app.example.com",
			wantCreds:      true,
		},
		{
			name:           "preflight from disallowed origin",
			allowedOrigins: []string{"https://app.example.com"},
			requestOrigin:  "https://evil.example",
			preflight:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			handler := CORS(tt.allowedOrigins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				w.WriteHeader(http.StatusOK)
			}))

			method := http.MethodGet
			if tt.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/records", nil)
			req.Header.Set("Origin", tt.requestOrigin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials") == "true"; got != tt.wantCreds {
				t.Errorf("Access-Control-Allow-Credentials = %v, want %v", got, tt.wantCreds)
			}
			if tt.preflight && len(tt.allowedOrigins) > 0 && reached {
				t.Error("preflight should not reach the handler")
			}
		})
	}
}
