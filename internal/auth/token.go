// Package auth implements admin token extraction and comparison.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// ExtractToken retrieves the admin token from the request.
// 1. Authorization: Bearer <token>
// 2. Authorization: <token> (bare header value)
// 3. Header: X-Admin-Token
func ExtractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimSpace(auth[7:])
		}
		return strings.TrimSpace(auth)
	}
	if t := r.Header.Get("X-Admin-Token"); t != "" {
		return t
	}
	return ""
}

// AuthorizeToken returns true if got matches expected using constant-time comparison.
// Empty tokens are always treated as unauthorized.
func AuthorizeToken(got, expected string) bool {
	if strings.TrimSpace(expected) == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// AuthorizeRequest extracts a token from r and validates it against expectedToken.
func AuthorizeRequest(r *http.Request, expectedToken string) bool {
	if r == nil {
		return false
	}
	return AuthorizeToken(ExtractToken(r), expectedToken)
}
