package httputil

import (
	"net/http"
	"strings"
)

// ExtractBearerToken extracts the token from the Authorization header. The
// collection service sends the raw token without a scheme; a "Bearer " prefix
// is accepted too. Returns an empty string when the header is missing.
func ExtractBearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return ""
	}

	lower := strings.ToLower(auth)
	if strings.HasPrefix(lower, "bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	if strings.Contains(auth, " ") {
		// Some other scheme, e.g. Basic
		return ""
	}
	return auth
}

// IsJWT checks if a token looks like a JWT (has exactly 2 dots separating 3 parts).
func IsJWT(token string) bool {
	return strings.Count(token, ".") == 2
}
