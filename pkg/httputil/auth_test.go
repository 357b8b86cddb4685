package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "raw token",
			header: "eyJ.abc.xyz",
			want:   "eyJ.abc.xyz",
		},
		{
			name:   "bearer scheme",
			header: "Bearer abc123",
			want:   "abc123",
		},
		{
			name:   "case insensitive",
			header: "bearer xyz789",
			want:   "xyz789",
		},
		{
			name:   "with extra spaces",
			header: "  Bearer   token-with-spaces  ",
			want:   "token-with-spaces",
		},
		{
			name:   "other scheme",
			header: "Basic abc123",
			want:   "",
		},
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			if got := ExtractBearerToken(req); got != tt.want {
				t.Errorf("ExtractBearerToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsJWT(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "jwt structure", token: "header.payload.signature", want: true},
		{name: "no dots", token: "simple-token", want: false},
		{name: "one dot", token: "part1.part2", want: false},
		{name: "three dots", token: "a.b.c.d", want: false},
		{name: "empty string", token: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsJWT(tt.token); got != tt.want {
				t.Errorf("IsJWT(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}
